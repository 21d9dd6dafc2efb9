package database

import (
	"context"
	"fmt"
	"time"

	"github.com/studyaid/core/internal/config"
	"github.com/studyaid/core/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const pingTimeout = 5 * time.Second

// Connect opens the configured database and optionally creates missing tables.
// It returns config.ErrDatabaseNotConfigured when no connection settings exist.
func Connect(cfg *config.AppConfig, autoMigrate bool) (*gorm.DB, error) {
	db, err := openDB(cfg.Database, resolveLogLevel(cfg))
	if err != nil {
		return nil, err
	}

	if autoMigrate {
		if err := Migrate(db); err != nil {
			return db, fmt.Errorf("migration failed: %w", err)
		}
	}
	return db, nil
}

func resolveLogLevel(cfg *config.AppConfig) logger.LogLevel {
	if cfg.IsDev() {
		return logger.Info
	}
	return logger.Warn
}

func openDB(cfg config.DatabaseRuntimeConfig, logLevel logger.LogLevel) (*gorm.DB, error) {
	dsn, err := cfg.DSNValue()
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		dialector = mysql.New(mysql.Config{
			DSN:               dsn,
			DefaultStringSize: 191,
		})
	}

	// The pool dials lazily so a database that is down at boot only fails the
	// requests that need it.
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:               logger.Default.LogMode(logLevel),
		DisableAutomaticPing: true,
		TranslateError:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return db, nil
}

// Migrate creates the posts table when it does not exist yet.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.StudyProjectModel{})
}

// Ping runs a trivial query to verify connectivity.
func Ping(ctx context.Context, db *gorm.DB) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	var one int
	return db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("resolve sql db: %w", err)
	}
	return sqlDB.Close()
}
