package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is one method+path entry of the route table.
type Route struct {
	Method   string
	Path     string
	Handlers []gin.HandlerFunc
}

func get(path string, h ...gin.HandlerFunc) Route    { return Route{http.MethodGet, path, h} }
func post(path string, h ...gin.HandlerFunc) Route   { return Route{http.MethodPost, path, h} }
func put(path string, h ...gin.HandlerFunc) Route    { return Route{http.MethodPut, path, h} }
func remove(path string, h ...gin.HandlerFunc) Route { return Route{http.MethodDelete, path, h} }

// Area is a storefront area (catalog, cart, orders...) mounted under one
// prefix. Guards run before every route of the area and of its nested areas.
type Area struct {
	Name   string
	Prefix string
	Guards []gin.HandlerFunc
	Routes []Route
	Nested []Area
}

// Mount attaches the area to rg.
func (a Area) Mount(rg *gin.RouterGroup) {
	g := rg.Group(a.Prefix, a.Guards...)
	for _, r := range a.Routes {
		g.Handle(r.Method, r.Path, r.Handlers...)
	}
	for _, n := range a.Nested {
		n.Mount(g)
	}
}

// API opens /api/<version> on engine with mw applied to that group only
// and mounts every area under it.
func API(engine *gin.Engine, version string, mw []gin.HandlerFunc, areas ...Area) *gin.RouterGroup {
	if version == "" {
		version = "v1"
	}
	api := engine.Group("/api/"+version, mw...)
	for _, a := range areas {
		a.Mount(api)
	}
	return api
}
