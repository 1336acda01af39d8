// Package main runs the tip distribution HTTP service with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pourboire/backend/config"
	"github.com/pourboire/backend/internal/auth"
	"github.com/pourboire/backend/internal/distributions"
	"github.com/pourboire/backend/internal/identity"
	"github.com/pourboire/backend/internal/middleware"
	"github.com/pourboire/backend/internal/notify"
	"github.com/pourboire/backend/internal/pools"
	"github.com/pourboire/backend/internal/reports"
	"github.com/pourboire/backend/pkg/database"
	"github.com/pourboire/backend/pkg/queue"
	"github.com/pourboire/backend/pkg/redis"
	"github.com/pourboire/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	identityClient := identity.NewClient(cfg.Identity.BaseURL, time.Duration(cfg.Identity.TimeoutSec)*time.Second, logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Pools
	poolRepo := pools.NewRepository(pool)
	poolHandler := pools.NewHandler(poolRepo, logger)

	// Notifications
	notifyRepo := notify.NewRepository(pool)
	notifier := notify.NewNotifier(identityClient, notifyRepo, jobQueue, logger)
	notifyHandler := notify.NewHandler(poolRepo, notifyRepo, logger)

	// Distributions
	distRepo := distributions.NewRepository(pool)
	engine := distributions.NewEngine(logger)
	distHandler := distributions.NewHandler(poolRepo, distRepo, engine, notifier, logger)

	// Reports
	reportService := reports.NewService(identityClient)
	reportHandler := reports.NewHandler(poolRepo, distRepo, reportService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Protected API (JWT required)
	api := router.Group("/api/tips")
	api.Use(middleware.JWT(jwtService))
	{
		manager := middleware.RequireRole("manager")

		api.POST("/pools", manager, poolHandler.Create)
		api.PUT("/pools/:poolId", manager, poolHandler.Update)
		api.POST("/pools/:poolId/calculate-distribution", manager, distHandler.Calculate)
		api.GET("/pools/history", manager, distHandler.PoolHistory)
		api.GET("/pools/summary-by-month", manager, distHandler.MonthlySummary)
		// Report does its own role check so cross-tenant pools answer 404
		// before any 403 is revealed.
		api.GET("/pools/:poolId/report", reportHandler.Get)
		api.GET("/pools/:poolId/notifications", manager, notifyHandler.ListByPool)
		api.GET("/employees/:employeeId/tips", distHandler.EmployeeTips)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
