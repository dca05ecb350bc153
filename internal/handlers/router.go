package handlers

import (
	"time"

	"task-tracker/backend/internal/config"
	"task-tracker/backend/internal/logger"
	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/monitoring"
	"task-tracker/backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewRouter assembles the middleware chain and the API route table.
func NewRouter(
	cfg *config.Config,
	log *logger.Logger,
	db *gorm.DB,
	authService services.AuthService,
	taskService services.TaskService,
	monitor *monitoring.Monitor,
) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryWithLog(log))
	router.Use(middleware.RequestLogger(log))
	if monitor != nil {
		router.Use(monitor.Middleware())
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORS.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RateLimit.Enabled {
		rl := middleware.NewRateLimiter(cfg.RateLimit)
		router.Use(rl.Middleware())
	}

	authHandler := NewAuthHandler(db, authService, log, cfg.Auth.TokenTTL, cfg.IsProduction())
	taskHandler := NewTaskHandler(db, taskService, log)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		tasks := api.Group("/tasks")
		tasks.Use(middleware.AuthMiddleware(authService))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}
	}

	if monitor != nil {
		router.GET("/healthz", monitor.HealthHandler())
		router.GET("/metrics", monitor.MetricsHandler())
	}

	return router
}
