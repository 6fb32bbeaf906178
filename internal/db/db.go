package db

import (
	"fmt"  // DSN formatting
	"time" // Slow query threshold

	"todo_system/internal/config" // Custom import path (Config)

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/driver/postgres"    // Postgres driver for GORM
	"gorm.io/driver/sqlite"      // SQLite driver for GORM
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"        // GORM logger
)

// DSN builds the data source name for the configured driver
func DSN(cfg *config.Config) string {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		port := cfg.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, port, cfg.DBSSLMode)
	case config.DriverSQLite:
		return cfg.DBPath
	default:
		port := cfg.DBPort
		if port == "" {
			port = "3306"
		}
		return cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + port + ")/" + cfg.DBName + "?parseTime=true&charset=utf8mb4&loc=UTC"
	}
}

// Dialector picks the GORM dialector for the configured driver
func Dialector(cfg *config.Config) gorm.Dialector {
	dsn := DSN(cfg)
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return postgres.Open(dsn)
	case config.DriverSQLite:
		return sqlite.Open(dsn)
	default:
		return mysql.Open(dsn)
	}
}

// Open connects to the database and returns a GORM handle
func Open(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == config.DriverSQLite {
		return OpenSQLite(cfg.DBPath, cfg.IsProd)
	}
	return OpenDialector(Dialector(cfg), cfg.IsProd)
}

// OpenSQLite opens a SQLite database on a single connection.
// ":memory:" databases exist per connection, and SQLite serializes writers anyway.
func OpenSQLite(path string, quiet bool) (*gorm.DB, error) {
	db, err := OpenDialector(sqlite.Open(path), quiet)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// OpenDialector opens dialector with the shared GORM settings
func OpenDialector(dialector gorm.Dialector, quiet bool) (*gorm.DB, error) {
	level := logger.Warn
	if quiet {
		level = logger.Error
	}
	gormLogger := logger.New(logrus.StandardLogger(), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true, // Not-found is a normal outcome for ownership checks
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true, // Maps unique violations to gorm.ErrDuplicatedKey
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
