package main

import (
	"context"   // Redis ping and shutdown deadlines
	"errors"    // Server close detection
	"net/http"  // HTTP server
	"os"        // Signal types
	"os/signal" // Shutdown signals
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"todo_system/internal/api"        // Custom package for API handlers
	"todo_system/internal/config"     // Custom package for configuration
	"todo_system/internal/db"         // Database connection and migration
	"todo_system/internal/repository" // Data access
	"todo_system/internal/service"    // Business logic
	"todo_system/internal/utils"      // Logger setup

	"github.com/gin-gonic/gin"                                  // Gin web framework
	"github.com/prometheus/client_golang/prometheus"            // Metrics registry
	"github.com/prometheus/client_golang/prometheus/collectors" // Runtime collectors
	"github.com/redis/go-redis/v9"                              // Redis client
	"github.com/sirupsen/logrus"                                // Logrus for structured logging
)

// @title Todo System API
// @version 1.0
// @description Multi-user todo service with JWT authentication.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	// Setup logger
	if err := utils.ConfigureLogger(cfg.LogLevel, cfg.IsProd); err != nil {
		logrus.Fatalf("failed to configure logger: %v", err)
	}

	// Connect to the database
	database, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(database); err != nil {
			logrus.Fatalf("failed to migrate DB: %v", err)
		}
	}

	// Setup Redis client when caching is configured
	var redisClient *redis.Client
	if cfg.CacheEnabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logrus.Info("REDIS_ADDR not set, list caching disabled")
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	authService := service.NewAuthService(repository.NewUserRepository(database), cfg.JWTSecret, cfg.JWTExpiry)
	todoService := service.NewTodoService(repository.NewTodoRepository(database), redisClient, cfg.CacheTTL)

	r := api.SetupRouter(api.Deps{
		DB:          database,
		Redis:       redisClient,
		Auth:        authService,
		Todos:       todoService,
		Registry:    registry,
		CORSOrigins: cfg.CORSOrigins,
		EnableDocs:  !cfg.IsProd,
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{"port": cfg.AppPort, "driver": cfg.DBDriver}).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("server forced to shutdown: %v", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logrus.Info("Server exited")
}
