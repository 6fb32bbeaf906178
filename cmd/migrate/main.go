package main

import (
	"todo_system/internal/config" // Custom import path (Config)
	"todo_system/internal/db"     // Custom import path (Database)
	"todo_system/internal/utils"  // Logger setup

	"github.com/sirupsen/logrus" // Logging library
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
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
}
