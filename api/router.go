package api

import (
	"slices"
	"time"

	"github.com/beka-birhanu/geoduel-api/api/i"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Router manages the HTTP server and its dependencies, including the
// controllers and the middleware guarding debug routes.
type Router struct {
	addr            string
	baseURL         string
	controllers     []i.Controller
	debugMiddleware gin.HandlerFunc
	allowedOrigins  []string
}

// Config holds configuration settings for creating a new Router instance.
type Config struct {
	Addr            string // Address to listen on
	BaseURL         string // Base URL for API routes
	Controllers     []i.Controller
	DebugMiddleware gin.HandlerFunc // Guards the protected routes
	AllowedOrigins  []string        // CORS origins, "*" allows any
}

// NewRouter creates a new Router instance with the given configuration.
func NewRouter(config Config) *Router {
	debug := config.DebugMiddleware
	if debug == nil {
		debug = DebugOnly(false)
	}
	return &Router{
		addr:            config.Addr,
		baseURL:         config.BaseURL,
		controllers:     config.Controllers,
		debugMiddleware: debug,
		allowedOrigins:  config.AllowedOrigins,
	}
}

// Engine builds the gin engine with every route registered.
//
// Routes are grouped and managed under the base URL, with the following access levels:
// - Public routes: always available.
// - Protected routes: available only when the debug middleware lets them through.
func (r *Router) Engine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), cors.New(r.corsConfig()))

	// Setting up routes under baseURL
	api := router.Group(r.baseURL)

	{
		publicRoutes := api.Group("/v1")
		{
			for _, c := range r.controllers {
				c.RegisterPublic(publicRoutes)
			}
		}

		protectedRoutes := api.Group("/v1")
		protectedRoutes.Use(r.debugMiddleware)
		{
			for _, c := range r.controllers {
				c.RegisterProtected(protectedRoutes)
			}
		}
	}

	return router
}

// Run starts the HTTP server.
func (r *Router) Run() error {
	gin.ForceConsoleColor()
	return r.Engine().Run(r.addr)
}

func (r *Router) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Cache-Control"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(r.allowedOrigins) == 0 || slices.Contains(r.allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = r.allowedOrigins
	}
	return cfg
}
