package routes

import (
	"encoding/json"

	"transient-cache-api/internal/auth"
	"transient-cache-api/internal/cache"
	"transient-cache-api/internal/handlers"
	"transient-cache-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Cache         *cache.Layer[json.RawMessage]
	Issuer        *auth.Issuer
	AdminPassword string
	Logger        *zap.Logger
}

func SetupRoutes(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery(), middleware.Logger(deps.Logger))

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		middleware.Prevent(c)
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Transient cache API is running",
		})
	})

	authHandler := handlers.NewAuthHandler(deps.Issuer, deps.AdminPassword)
	cacheHandler := handlers.NewCacheHandler(deps.Cache, deps.Logger)

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/login", authHandler.Login)
	}

	// Protected routes (authentication required); responses are never cached
	protectedRoutes := api.Group("/cache")
	protectedRoutes.Use(middleware.JWTAuthMiddleware(deps.Issuer), middleware.NoCache())
	{
		protectedRoutes.GET("", cacheHandler.Keys)
		protectedRoutes.DELETE("", cacheHandler.Clear)
		protectedRoutes.POST("/get-multiple", cacheHandler.GetMultiple)
		protectedRoutes.POST("/set-multiple", cacheHandler.SetMultiple)
		protectedRoutes.POST("/delete-multiple", cacheHandler.DeleteMultiple)
		protectedRoutes.GET("/:key", cacheHandler.Get)
		protectedRoutes.HEAD("/:key", cacheHandler.Head)
		protectedRoutes.PUT("/:key", cacheHandler.Put)
		protectedRoutes.DELETE("/:key", cacheHandler.Delete)
	}

	return ginRouter
}
