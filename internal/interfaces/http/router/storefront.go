package router

import (
	"github.com/gin-gonic/gin"
	"github.com/shopflux/storefront/internal/interfaces/http/handler"
	"github.com/shopflux/storefront/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers groups the storefront HTTP handlers
type Handlers struct {
	Catalog    *handler.CatalogHandler
	Cart       *handler.CartHandler
	Wishlist   *handler.WishlistHandler
	Orders     *handler.OrderHandler
	Newsletter *handler.NewsletterHandler
	Profile    *handler.ProfileHandler
	Auth       *handler.AuthHandler
	Health     *handler.HealthHandler
}

// StorefrontConfig configures route-level middleware
type StorefrontConfig struct {
	Auth    middleware.AuthConfig
	Swagger middleware.SwaggerConfig
	// RateLimiter is applied to /api/v1 after the viewer is identified. Nil disables it.
	RateLimiter *middleware.RateLimiter
	// SwaggerHandler serves the docs UI; nil uses gin-swagger's default.
	SwaggerHandler gin.HandlerFunc
}

// RegisterStorefront mounts /health, /swagger/*any and the /api/v1 storefront routes.
//
// Every /api/v1 request passes OptionalAuth, so a presented bearer token is
// always validated; account routes additionally require a viewer.
func RegisterStorefront(engine *gin.Engine, h Handlers, cfg StorefrontConfig) *gin.RouterGroup {
	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}

	swaggerHandler := cfg.SwaggerHandler
	if swaggerHandler == nil {
		swaggerHandler = ginSwagger.WrapHandler(swaggerFiles.Handler)
	}
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, middleware.Authenticated(cfg.Auth)),
		swaggerHandler,
	)

	mw := []gin.HandlerFunc{middleware.OptionalAuth(cfg.Auth), middleware.SpanAttributes()}
	if cfg.RateLimiter != nil {
		mw = append(mw, middleware.RateLimit(cfg.RateLimiter))
	}
	return API(engine, "v1", mw, StorefrontAreas(h)...)
}

// StorefrontAreas is the /api/v1 route table.
func StorefrontAreas(h Handlers) []Area {
	viewer := []gin.HandlerFunc{middleware.RequireAuth()}

	return []Area{
		{
			Name: "catalog", Prefix: "/catalog",
			Routes: []Route{
				get("/featured", h.Catalog.Featured),
				get("/categories", h.Catalog.Categories),
			},
			Nested: []Area{{
				Name: "products", Prefix: "/products",
				Routes: []Route{
					get("", h.Catalog.List),
					get("/:id", h.Catalog.Get),
					get("/:id/presentation", h.Catalog.Presentation),
					get("/:id/reviews", h.Catalog.Reviews),
				},
			}},
		},
		{
			Name: "cart", Prefix: "/cart", Guards: viewer,
			Routes: []Route{
				get("", h.Cart.Get),
				remove("", h.Cart.Clear),
				post("/items", h.Cart.AddItem),
				put("/items/:product_id", h.Cart.UpdateItem),
				remove("/items/:product_id", h.Cart.RemoveItem),
			},
		},
		{
			Name: "wishlist", Prefix: "/wishlist", Guards: viewer,
			Routes: []Route{
				get("", h.Wishlist.List),
				post("/items", h.Wishlist.Add),
				remove("/items/:product_id", h.Wishlist.Remove),
			},
		},
		{
			Name: "orders", Prefix: "/orders", Guards: viewer,
			Routes: []Route{get("", h.Orders.List), get("/:id", h.Orders.Get)},
		},
		{
			Name: "newsletter", Prefix: "/newsletter",
			Routes: []Route{post("/subscriptions", h.Newsletter.Subscribe)},
		},
		{
			Name: "profile", Prefix: "/profile", Guards: viewer,
			Routes: []Route{get("", h.Profile.Get)},
		},
		{
			Name: "auth", Prefix: "/auth", Guards: viewer,
			Routes: []Route{post("/logout", h.Auth.Logout)},
		},
	}
}
