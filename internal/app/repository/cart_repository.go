package repository

import (
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	Create(cartItem *model.CartItem) error
	FindByUserID(userID uint) ([]model.CartItem, error)
	FindByID(id uint) (*model.CartItem, error)
	FindByUserAndSelection(userID, productID uint, selectionKey string) (*model.CartItem, error)
	Update(cartItem *model.CartItem) error
	Delete(id uint) error
	DeleteByUserID(userID uint) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(cartItem *model.CartItem) error {
	logger.Debug("Creating cart item in database", map[string]interface{}{
		"user_id":       cartItem.UserID,
		"product_id":    cartItem.ProductID,
		"selection_key": cartItem.SelectionKey,
		"quantity":      cartItem.Quantity,
	})

	if err := r.db.Create(cartItem).Error; err != nil {
		logger.Error("Failed to create cart item in database", err, map[string]interface{}{
			"user_id":    cartItem.UserID,
			"product_id": cartItem.ProductID,
			"quantity":   cartItem.Quantity,
		})
		return err
	}

	logger.Debug("Cart item created in database", map[string]interface{}{
		"cart_item_id": cartItem.ID,
		"user_id":      cartItem.UserID,
		"product_id":   cartItem.ProductID,
	})
	return nil
}

func (r *cartRepository) FindByUserID(userID uint) ([]model.CartItem, error) {
	logger.Debug("Finding cart items by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var cartItems []model.CartItem
	err := r.db.Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&cartItems).Error
	if err != nil {
		logger.Error("Failed to find cart items by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Cart items found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(cartItems),
	})
	return cartItems, nil
}

func (r *cartRepository) FindByID(id uint) (*model.CartItem, error) {
	logger.Debug("Finding cart item by ID in database", map[string]interface{}{
		"cart_item_id": id,
	})

	var cartItem model.CartItem
	if err := r.db.First(&cartItem, id).Error; err != nil {
		logger.Error("Failed to find cart item by ID in database", err, map[string]interface{}{
			"cart_item_id": id,
		})
		return nil, err
	}

	logger.Debug("Cart item found by ID in database", map[string]interface{}{
		"cart_item_id": cartItem.ID,
		"user_id":      cartItem.UserID,
		"product_id":   cartItem.ProductID,
	})
	return &cartItem, nil
}

// FindByUserAndSelection finds the line with the same product and the same selected values
func (r *cartRepository) FindByUserAndSelection(userID, productID uint, selectionKey string) (*model.CartItem, error) {
	logger.Debug("Finding cart item by user and selection in database", map[string]interface{}{
		"user_id":       userID,
		"product_id":    productID,
		"selection_key": selectionKey,
	})

	var cartItem model.CartItem
	err := r.db.Where("user_id = ? AND product_id = ? AND selection_key = ?", userID, productID, selectionKey).
		First(&cartItem).Error
	if err != nil {
		// a miss is the normal path for a new line
		logger.Debug("Cart item not found by user and selection", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"error":      err.Error(),
		})
		return nil, err
	}

	logger.Debug("Cart item found by user and selection in database", map[string]interface{}{
		"cart_item_id": cartItem.ID,
		"user_id":      userID,
		"product_id":   productID,
	})
	return &cartItem, nil
}

func (r *cartRepository) Update(cartItem *model.CartItem) error {
	logger.Debug("Updating cart item in database", map[string]interface{}{
		"cart_item_id": cartItem.ID,
		"user_id":      cartItem.UserID,
		"product_id":   cartItem.ProductID,
		"quantity":     cartItem.Quantity,
	})

	if err := r.db.Save(cartItem).Error; err != nil {
		logger.Error("Failed to update cart item in database", err, map[string]interface{}{
			"cart_item_id": cartItem.ID,
			"user_id":      cartItem.UserID,
			"product_id":   cartItem.ProductID,
		})
		return err
	}

	logger.Debug("Cart item updated in database", map[string]interface{}{
		"cart_item_id": cartItem.ID,
		"quantity":     cartItem.Quantity,
	})
	return nil
}

func (r *cartRepository) Delete(id uint) error {
	logger.Debug("Deleting cart item from database", map[string]interface{}{
		"cart_item_id": id,
	})

	if err := r.db.Delete(&model.CartItem{}, id).Error; err != nil {
		logger.Error("Failed to delete cart item from database", err, map[string]interface{}{
			"cart_item_id": id,
		})
		return err
	}

	logger.Debug("Cart item deleted from database", map[string]interface{}{
		"cart_item_id": id,
	})
	return nil
}

func (r *cartRepository) DeleteByUserID(userID uint) error {
	logger.Debug("Deleting cart items by user ID from database", map[string]interface{}{
		"user_id": userID,
	})

	if err := r.db.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to delete cart items by user ID from database", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	logger.Debug("Cart items deleted by user ID from database", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}
