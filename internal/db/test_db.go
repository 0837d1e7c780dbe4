package db

import (
	"fmt"
	"log"

	"github.com/ikkim/storefront-backend/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB() (*gorm.DB, error) {
	// every pooled connection would otherwise get its own empty :memory: database
	db, err := Open(sqlite.Open(":memory:"), &config.DatabaseConfig{MaxOpenConns: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return db, nil
}

// SeedTestDB loads the demo catalog into db
func SeedTestDB(db *gorm.DB) error {
	return seedInitialData(db)
}

// CleanupTestDB cleans up the test database
func CleanupTestDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Failed to get DB instance: %v", err)
		return
	}
	sqlDB.Close()
}

// TruncateAllTables removes all data from tables
func TruncateAllTables(db *gorm.DB) error {
	tables := []string{"cart_items", "feature_values", "feature_groups", "products"}
	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return err
		}
	}
	return nil
}
