package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/infrastructure/auth"
	"github.com/shopflux/storefront/internal/infrastructure/logger"
	"github.com/shopflux/storefront/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Gin context keys set once a bearer token is accepted.
const (
	ClaimsKey = "auth_claims"
	UserIDKey = "auth_user_id"
)

const bearerScheme = "Bearer "

// TokenValidator checks a bearer token's signature, expiry and revocation.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (*auth.Claims, error)
}

type AuthConfig struct {
	Tokens TokenValidator
	Logger *zap.Logger
}

// OptionalAuth identifies the viewer from the Authorization header. No
// header means an anonymous viewer. A header that is present but does not
// carry a valid, unrevoked bearer token is rejected with 401.
func OptionalAuth(cfg AuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token, err := bearerToken(header)
		if err == nil {
			var claims *auth.Claims
			if claims, err = cfg.Tokens.ValidateAccessToken(c.Request.Context(), token); err == nil {
				c.Set(ClaimsKey, claims)
				c.Set(UserIDKey, claims.UserID)
				c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
				c.Next()
				return
			}
		}
		rejectToken(c, log, err)
	}
}

func bearerToken(header string) (string, error) {
	if len(header) < len(bearerScheme) || !strings.EqualFold(header[:len(bearerScheme)], bearerScheme) {
		return "", auth.ErrInvalidToken
	}
	token := strings.TrimSpace(header[len(bearerScheme):])
	if token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}

// RequireAuth lets through only viewers OptionalAuth identified, so it
// must run after it.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ViewerID(c); !ok {
			abort(c, dto.ErrCodeUnauthorized, "Sign in to continue")
			return
		}
		c.Next()
	}
}

// Authenticated is OptionalAuth followed by RequireAuth, for routes
// mounted outside the API group.
func Authenticated(cfg AuthConfig) gin.HandlerFunc {
	identify, require := OptionalAuth(cfg), RequireAuth()
	return func(c *gin.Context) {
		if identify(c); c.IsAborted() {
			return
		}
		require(c)
	}
}

// rejectToken answers 401 for a bad token. Any other error comes from the
// revocation store and is a 503.
func rejectToken(c *gin.Context, log *zap.Logger, err error) {
	var code, message string
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		code, message = dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, message = dto.ErrCodeTokenInvalid, "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingUserID):
		code, message = dto.ErrCodeTokenInvalid, "Invalid token"
	default:
		log.Error("Token check failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeInternal, "Authentication is temporarily unavailable", GetRequestID(c)))
		return
	}

	log.Debug("Bearer token rejected", zap.Error(err), zap.String("path", c.Request.URL.Path))
	abort(c, code, message)
}

// ClaimsFrom returns the accepted token's claims, or nil for anonymous
// viewers.
func ClaimsFrom(c *gin.Context) *auth.Claims {
	v, _ := c.Get(ClaimsKey)
	claims, _ := v.(*auth.Claims)
	return claims
}

// UserIDFrom is empty for anonymous viewers.
func UserIDFrom(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// ViewerID parses the signed-in user's id. ok is false for anonymous
// viewers and for tokens whose subject is not a UUID.
func ViewerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(UserIDFrom(c))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
