package api

import (
	"time"

	"panveliq/internal/api/middleware"
	"panveliq/internal/config"
	"panveliq/internal/handlers"
	"panveliq/internal/services"
	"panveliq/internal/tasks"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerRoutes(e *echo.Echo, cfg *config.Config, db *gorm.DB, redisClient *redis.Client, taskClient *tasks.TaskClient, storage *services.S3Service) {
	auth := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	rateLimiter := middleware.RateLimit(middleware.RateLimitConfig{
		RedisClient:  redisClient,
		DefaultLimit: rate.Limit(50),
		DefaultBurst: 100,
		EndpointLimits: map[string]middleware.EndpointLimit{
			"POST /api/v1/auth/login":    {MaxRequests: 10, Window: time.Minute},
			"POST /api/v1/auth/register": {MaxRequests: 5, Window: time.Minute},
			"POST /api/v1/communication/campaigns/:id/send": {MaxRequests: 20, Window: time.Minute},
		},
	})
	e.Use(rateLimiter)

	// Public surface.
	handlers.NewShareHandler(db).RegisterRoutes(e)

	v1 := e.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(db)
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/password-reset", authHandler.RequestPasswordReset)
	authGroup.POST("/password-reset/confirm", authHandler.ConfirmPasswordReset)

	// Everything below requires a bearer token.
	protected := v1.Group("", auth.Middleware())

	comm := protected.Group("/communication", middleware.RequirePermission(db, "campaigns:read"))
	handlers.NewCommunicationHandler(db, taskClient).RegisterRoutes(comm)

	content := protected.Group("/content-intelligence", middleware.RequirePermission(db, "content:read"))
	handlers.NewContentHandler(db).RegisterRoutes(content)

	planner := protected.Group("/project-planner", middleware.RequirePermission(db, "proposals:read"))
	handlers.NewPlannerHandler(db, storage).RegisterRoutes(planner)

	um := protected.Group("/user-management", middleware.RequirePermission(db, "users:read"))
	handlers.NewUserManagementHandler(db).RegisterRoutes(um)

	clients := protected.Group("/clients", middleware.RequirePermission(db, "clients:read"))
	handlers.NewClientsHandler(db).RegisterRoutes(clients)

	handlers.NewUploadHandler(db, storage).RegisterRoutes(protected)
}
