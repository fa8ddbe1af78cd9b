package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
}

// ConnectionConfig holds pool settings for the postgres connection.
type ConnectionConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	IsDevelopment   bool
}

func DefaultConnectionConfig(isDevelopment bool) ConnectionConfig {
	return ConnectionConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    50,
		ConnMaxLifetime: time.Hour,
		IsDevelopment:   isDevelopment,
	}
}

// Open picks the driver from the URL: "sqlite://<path>" opens sqlite, anything
// else is handed to postgres.
func Open(databaseURL string, isDevelopment bool) (*DB, error) {
	if path, ok := strings.CutPrefix(databaseURL, "sqlite://"); ok {
		return NewSQLiteConnection(path, isDevelopment)
	}
	return NewConnection(databaseURL, isDevelopment)
}

func NewConnection(databaseURL string, isDevelopment bool) (*DB, error) {
	return NewConnectionWithConfig(databaseURL, DefaultConnectionConfig(isDevelopment))
}

func NewConnectionWithConfig(databaseURL string, cfg ConnectionConfig) (*DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), gormConfig(cfg.IsDevelopment))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established successfully")

	return &DB{db}, nil
}

// NewSQLiteConnection opens a sqlite database, used for local runs and tests.
// Pass ":memory:" for a throwaway database.
func NewSQLiteConnection(path string, isDevelopment bool) (*DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig(isDevelopment))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// a single connection keeps an in-memory database alive and shared
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return &DB{db}, nil
}

func gormConfig(isDevelopment bool) *gorm.Config {
	logLevel := logger.Error
	if isDevelopment {
		logLevel = logger.Info
	}
	return &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// HealthCheck pings the underlying connection.
func (db *DB) HealthCheck() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
