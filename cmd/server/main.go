package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/caish-collective/luma-proxy/internal/config"
	apperrors "github.com/caish-collective/luma-proxy/internal/errors"
	"github.com/caish-collective/luma-proxy/internal/luma"
	"github.com/caish-collective/luma-proxy/internal/middleware"
	"github.com/caish-collective/luma-proxy/internal/monitoring"
	"github.com/caish-collective/luma-proxy/internal/server"
)

func main() {
	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if cfg.LumaAPIKey == "" {
		slog.Warn("LUMA_API_KEY is not set, /api/events will answer with a configuration error")
	}

	r := setupRouter(cfg)

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port, "keyword", cfg.OrgKeyword)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

// setupRouter assembles the middleware chain and routes for the given
// configuration. Split out of main so tests can drive the full router.
func setupRouter(cfg config.Config) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	r.Use(monitoring.MonitoringMiddleware(appMetrics, appLogger))
	r.Use(apperrors.RecoveryHandler())
	r.Use(middleware.ResponseHeaders())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet},
		AllowHeaders:    []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMin)
	r.Use(limiter.Handler())

	r.NoMethod(func(c *gin.Context) {
		appErr := apperrors.NewMethodError(c.Request.Method)
		apperrors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr.Response())
	})

	client := luma.NewClient(cfg.LumaAPIKey, cfg.LumaEndpoint, cfg.UpstreamTimeout)
	handler := server.NewHandler(cfg, client, appMetrics, appLogger)
	r.GET("/api/events", handler.Events)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, appMetrics.GetStats())
	})

	// Swagger documentation routes
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
