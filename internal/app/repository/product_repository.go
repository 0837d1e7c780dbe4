package repository

import (
	"fmt"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductFilter struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

type ProductRepository interface {
	Create(product *model.Product) error
	BulkCreate(products []model.Product, batchSize int) error
	FindByID(id uint) (*model.Product, error)
	List(filter ProductFilter) ([]model.Product, int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// orderBySortOrder keeps groups and values in declaration order
func orderBySortOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, id ASC")
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":     product.Name,
		"category": product.Category,
		"groups":   len(product.FeatureGroups),
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name":     product.Name,
			"category": product.Category,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

// BulkCreate inserts products with their feature groups and values in batches
func (r *productRepository) BulkCreate(products []model.Product, batchSize int) error {
	if len(products) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	logger.Debug("Bulk creating products in database", map[string]interface{}{
		"count":      len(products),
		"batch_size": batchSize,
	})

	if err := r.db.CreateInBatches(products, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create products in database", err, map[string]interface{}{
			"count": len(products),
		})
		return err
	}

	logger.Debug("Products bulk created in database", map[string]interface{}{
		"count": len(products),
	})
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	logger.Debug("Product found by ID in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return &product, nil
}

func (r *productRepository) List(filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Listing products", map[string]interface{}{
		"category": filter.Category,
		"search":   filter.Search,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})

	query := r.db.Model(&model.Product{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", filter.Search)
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count products", err, map[string]interface{}{
			"category": filter.Category,
		})
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Order("created_at DESC, id DESC").Find(&products).Error; err != nil {
		logger.Error("Failed to list products", err, map[string]interface{}{
			"category": filter.Category,
			"search":   filter.Search,
		})
		return nil, 0, err
	}

	logger.Debug("Products listed", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}
