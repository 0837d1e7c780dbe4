package db

import (
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Models lists every table the application owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Product{},
		&model.FeatureGroup{},
		&model.FeatureValue{},
		&model.CartItem{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(DB); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds the demo catalog to an empty database
func Seed() error {
	return seedInitialData(DB)
}

func seedInitialData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Catalog already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding demo catalog...")

	products := DemoCatalog()
	if err := db.Create(&products).Error; err != nil {
		logger.Error("Failed to create demo products", err)
		return err
	}

	logger.Info("Demo catalog seeded successfully", map[string]interface{}{
		"products": len(products),
	})
	return nil
}

// DemoCatalog returns a small catalog exercising single and multi groups,
// negative deltas, unavailable values and a sale price.
func DemoCatalog() []model.Product {
	d := decimal.RequireFromString

	return []model.Product{
		{
			Name:        "Aurora Phone",
			Description: "Configurable smartphone",
			Category:    "phones",
			BasePrice:   d("699.00"),
			SalePrice:   decimal.NewNullDecimal(d("649.00")),
			MainImage:   "/static/images/aurora.png",
			FeatureGroups: []model.FeatureGroup{
				{Label: "Color", SelectionMode: model.SelectionSingle, SortOrder: 1, Values: []model.FeatureValue{
					{Label: "#1E3A8A", PriceDelta: d("0"), Available: true, SortOrder: 1},
					{Label: "#B91C1C", PriceDelta: d("0"), Available: true, SortOrder: 2},
					{Label: "#D4AF37", PriceDelta: d("30"), Available: false, SortOrder: 3},
				}},
				{Label: "Storage", SelectionMode: model.SelectionSingle, SortOrder: 2, Values: []model.FeatureValue{
					{Label: "128GB", PriceDelta: d("0"), Available: true, SortOrder: 1},
					{Label: "256GB", PriceDelta: d("100"), Available: true, SortOrder: 2},
					{Label: "512GB", PriceDelta: d("250"), Available: true, SortOrder: 3},
				}},
				{Label: "Accessories", SelectionMode: model.SelectionMulti, SortOrder: 3, Values: []model.FeatureValue{
					{Label: "Case", PriceDelta: d("19.99"), Available: true, SortOrder: 1},
					{Label: "Charger", PriceDelta: d("24.50"), Available: true, SortOrder: 2},
					{Label: "Trade-in credit", PriceDelta: d("-50"), Available: true, SortOrder: 3},
				}},
			},
		},
		{
			Name:        "Trail Runner",
			Description: "Running shoe",
			Category:    "shoes",
			BasePrice:   d("120.00"),
			FeatureGroups: []model.FeatureGroup{
				{Label: "Size", SelectionMode: model.SelectionMulti, SortOrder: 1, Values: []model.FeatureValue{
					{Label: "40", PriceDelta: d("0"), Available: true, SortOrder: 1},
					{Label: "41", PriceDelta: d("0"), Available: true, SortOrder: 2},
					{Label: "42", PriceDelta: d("0"), Available: false, SortOrder: 3},
				}},
				{Label: "Laces", SelectionMode: model.SelectionMulti, SortOrder: 2, Values: []model.FeatureValue{
					{Label: "Reflective", PriceDelta: d("5"), Available: true, SortOrder: 1},
				}},
				{Label: "Engraving", SelectionMode: model.SelectionMulti, SortOrder: 3},
			},
		},
	}
}
