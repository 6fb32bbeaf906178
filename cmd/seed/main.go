package main

import (
	"context" // Root context

	"todo_system/internal/config"     // Custom import path (Config)
	"todo_system/internal/db"         // Custom import path (Database)
	"todo_system/internal/repository" // Data access
	"todo_system/internal/seed"       // Demo data
	"todo_system/internal/service"    // Business services
	"todo_system/internal/utils"      // Logger setup

	"github.com/sirupsen/logrus" // Logging library
)

// Main entry point for seeding demo data
func main() {
	cfg := config.LoadConfig() // Load configuration
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	if err := utils.ConfigureLogger(cfg.LogLevel, cfg.IsProd); err != nil {
		logrus.Fatalf("failed to configure logger: %v", err)
	}

	database, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}

	auth := service.NewAuthService(repository.NewUserRepository(database), cfg.JWTSecret, cfg.JWTExpiry)
	todos := service.NewTodoService(repository.NewTodoRepository(database), nil, cfg.CacheTTL) // Writes only, no cache

	created, err := seed.Run(context.Background(), auth, todos)
	if err != nil {
		logrus.Fatalf("seeding failed: %v", err)
	}
	logrus.WithField("todos", created).Info("Seed data created successfully!")
}
