package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"lingotrail-backend/internal/config"
)

var gormDB *gorm.DB

// InitDBFromConfig opens the database described by the XML config and applies
// pool settings.
func InitDBFromConfig(cfg *config.APIConfig) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.Username, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode)

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		log.Fatalf("failed to access connection pool: %v", err)
	}
	if cfg.DB.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.Pool.MaxOpenConns)
	}
	if cfg.DB.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.Pool.MaxIdleConns)
	}
	if cfg.DB.Pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DB.Pool.ConnMaxLifetime) * time.Second)
	}

	gormDB = conn
}

// GetDB returns the shared connection.
func GetDB() *gorm.DB {
	return gormDB
}

// SetDB swaps the shared connection; used by tests to point repositories at a
// throwaway database.
func SetDB(conn *gorm.DB) {
	gormDB = conn
}

// Transaction executes a set of operations within a database transaction.
func Transaction(txFunc func(tx *gorm.DB) error) error {
	return gormDB.Transaction(txFunc)
}
