package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/storefront-backend/config"
	appLogger "github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

const pingTimeout = 5 * time.Second

// Initialize connects to PostgreSQL and stores the handle in DB.
func Initialize(cfg *config.DatabaseConfig) error {
	appLogger.Info("Connecting to catalog database", map[string]interface{}{
		"host":     cfg.Host,
		"port":     cfg.Port,
		"database": cfg.DBName,
		"user":     cfg.User,
	})

	conn, err := Open(postgres.Open(cfg.DSN()), cfg)
	if err != nil {
		return err
	}
	DB = conn

	appLogger.Info("Catalog database ready", map[string]interface{}{
		"max_idle_conns":    cfg.MaxIdleConns,
		"max_open_conns":    cfg.MaxOpenConns,
		"conn_max_lifetime": cfg.ConnMaxLifetime.String(),
	})
	return nil
}

// Open opens dialector, applies the pool limits from cfg and checks the
// connection is usable. Zero limits leave the database/sql defaults.
func Open(dialector gorm.Dialector, cfg *config.DatabaseConfig) (*gorm.DB, error) {
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return conn, nil
}

// Close closes the shared connection; calling it twice is harmless.
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	DB = nil
	return sqlDB.Close()
}

func GetDB() *gorm.DB {
	return DB
}
