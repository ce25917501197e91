// Package router mounts the billing API handlers on a gin engine under a
// versioned path prefix.
package router

import "github.com/gin-gonic/gin"

// RouteRegistrar is implemented by HTTP handlers that own a set of routes.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects registrars and mounts them under /api/<version>.
type Router struct {
	engine     *gin.Engine
	version    string
	registrars []RouteRegistrar
}

// Option configures a Router.
type Option func(*Router)

// WithAPIVersion overrides the default "v1" path segment.
func WithAPIVersion(version string) Option {
	return func(r *Router) {
		r.version = version
	}
}

// NewRouter wraps an engine. Routes are not mounted until Setup is called.
func NewRouter(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{
		engine:  engine,
		version: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues one or more registrars for mounting.
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every queued registrar on the versioned API group.
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.version)
	for _, reg := range r.registrars {
		reg.RegisterRoutes(api)
	}
}
