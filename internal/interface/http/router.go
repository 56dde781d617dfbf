package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coinboard/coinboard/internal/domain/account"
	"github.com/coinboard/coinboard/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *AccountHandler, svc account.Service) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	limited := rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger)

	router.POST("/", limited, handler.Login)

	users := router.Group("/users")
	users.POST("", limited, handler.Register)

	protected := users.Group("", authMiddleware(svc), blacklistMiddleware(svc))
	{
		protected.POST("/log-out", handler.Logout)
		protected.GET("/user-profile", handler.Profile)
		protected.DELETE("/delete-account", handler.DeleteAccount)
		protected.POST("/create-post", handler.CreatePost)
		protected.POST("/profile-picture", handler.UploadProfilePicture)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
