package repository

import (
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type FeatureRepository interface {
	FindGroupsByProductID(productID uint) ([]model.FeatureGroup, error)
	FindValueByID(id uint) (*model.FeatureValue, error)
	FindGroupByID(id uint) (*model.FeatureGroup, error)
	UpdateValueAvailability(id uint, available bool) error
}

type featureRepository struct {
	db *gorm.DB
}

func NewFeatureRepository(db *gorm.DB) FeatureRepository {
	return &featureRepository{db: db}
}

// FindGroupsByProductID returns the product's groups with their values, both in declaration order
func (r *featureRepository) FindGroupsByProductID(productID uint) ([]model.FeatureGroup, error) {
	logger.Debug("Finding feature groups by product", map[string]interface{}{
		"product_id": productID,
	})

	var groups []model.FeatureGroup
	err := r.db.
		Where("product_id = ?", productID).
		Preload("Values", orderBySortOrder).
		Scopes(orderBySortOrder).
		Find(&groups).Error
	if err != nil {
		logger.Error("Failed to find feature groups", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	logger.Debug("Feature groups found", map[string]interface{}{
		"product_id": productID,
		"count":      len(groups),
	})
	return groups, nil
}

func (r *featureRepository) FindGroupByID(id uint) (*model.FeatureGroup, error) {
	logger.Debug("Finding feature group by ID", map[string]interface{}{
		"group_id": id,
	})

	var group model.FeatureGroup
	if err := r.db.Preload("Values", orderBySortOrder).First(&group, id).Error; err != nil {
		logger.Error("Failed to find feature group", err, map[string]interface{}{
			"group_id": id,
		})
		return nil, err
	}

	return &group, nil
}

func (r *featureRepository) FindValueByID(id uint) (*model.FeatureValue, error) {
	logger.Debug("Finding feature value by ID", map[string]interface{}{
		"value_id": id,
	})

	var value model.FeatureValue
	if err := r.db.First(&value, id).Error; err != nil {
		logger.Error("Failed to find feature value", err, map[string]interface{}{
			"value_id": id,
		})
		return nil, err
	}

	logger.Debug("Feature value found", map[string]interface{}{
		"value_id": value.ID,
		"group_id": value.GroupID,
	})
	return &value, nil
}

func (r *featureRepository) UpdateValueAvailability(id uint, available bool) error {
	logger.Debug("Updating feature value availability", map[string]interface{}{
		"value_id":  id,
		"available": available,
	})

	result := r.db.Model(&model.FeatureValue{}).Where("id = ?", id).Update("available", available)
	if result.Error != nil {
		logger.Error("Failed to update feature value availability", result.Error, map[string]interface{}{
			"value_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Feature value availability updated", map[string]interface{}{
		"value_id":  id,
		"available": available,
	})
	return nil
}
