package service

import (
	"context"
	"errors"

	"github.com/ikkim/storefront-backend/internal/app/configurator"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartStore receives committed line items. Identical configurations merge into one line.
type CartStore interface {
	AddLineItem(ctx context.Context, userID uint, item *configurator.LineItemDescriptor) (*model.CartItem, error)
}

type CartSummary struct {
	Items []model.CartItem `json:"items"`
	Count int              `json:"count"`
	Total decimal.Decimal  `json:"total"`
}

type CartService interface {
	CartStore
	GetCart(userID uint) (*CartSummary, error)
	UpdateQuantity(userID, cartItemID uint, quantity int) (*model.CartItem, error)
	RemoveItem(userID, cartItemID uint) error
	ClearCart(userID uint) error
}

type cartService struct {
	cartRepo repository.CartRepository
}

func NewCartService(cartRepo repository.CartRepository) CartService {
	return &cartService{cartRepo: cartRepo}
}

func (s *cartService) AddLineItem(ctx context.Context, userID uint, item *configurator.LineItemDescriptor) (*model.CartItem, error) {
	if item == nil {
		return nil, configurator.ErrEmptyProduct
	}

	key := item.SelectionKey()
	logger.Info("Adding line item to cart", map[string]interface{}{
		"user_id":       userID,
		"product_id":    item.ProductID,
		"selection_key": key,
		"quantity":      item.Quantity,
	})

	existing, err := s.cartRepo.FindByUserAndSelection(userID, item.ProductID, key)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing cart item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": item.ProductID,
		})
		return nil, err
	}

	if existing != nil {
		logger.Debug("Merging into existing cart item", map[string]interface{}{
			"cart_item_id": existing.ID,
			"old_qty":      existing.Quantity,
			"new_qty":      existing.Quantity + item.Quantity,
		})
		existing.Quantity += configurator.ClampQuantity(item.Quantity)
		existing.UnitPrice = item.UnitPrice
		existing.ProductName = item.ProductName
		existing.Image = item.Image
		existing.Summary = item.SelectionSummary
		if err := s.cartRepo.Update(existing); err != nil {
			logger.Error("Failed to update cart item", err, map[string]interface{}{
				"cart_item_id": existing.ID,
			})
			return nil, err
		}
		return existing, nil
	}

	cartItem := &model.CartItem{
		UserID:       userID,
		ProductID:    item.ProductID,
		ProductName:  item.ProductName,
		UnitPrice:    item.UnitPrice,
		Quantity:     configurator.ClampQuantity(item.Quantity),
		Image:        item.Image,
		SelectionKey: key,
		Summary:      item.SelectionSummary,
	}
	if err := s.cartRepo.Create(cartItem); err != nil {
		logger.Error("Failed to create cart item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": item.ProductID,
		})
		return nil, err
	}

	logger.Info("Cart item added successfully", map[string]interface{}{
		"cart_item_id": cartItem.ID,
	})
	return cartItem, nil
}

func (s *cartService) GetCart(userID uint) (*CartSummary, error) {
	logger.Debug("Fetching user cart", map[string]interface{}{
		"user_id": userID,
	})

	items, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	summary := &CartSummary{Items: items, Total: decimal.Zero}
	if summary.Items == nil {
		summary.Items = []model.CartItem{}
	}
	for i := range items {
		summary.Count += items[i].Quantity
		summary.Total = summary.Total.Add(items[i].LineTotal())
	}

	logger.Info("User cart fetched successfully", map[string]interface{}{
		"user_id": userID,
		"lines":   len(items),
	})
	return summary, nil
}

func (s *cartService) findOwned(userID, cartItemID uint) (*model.CartItem, error) {
	cartItem, err := s.cartRepo.FindByID(cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cart item not found", map[string]interface{}{
				"cart_item_id": cartItemID,
			})
			return nil, ErrCartItemNotFound
		}
		logger.Error("Failed to fetch cart item", err, map[string]interface{}{
			"cart_item_id": cartItemID,
		})
		return nil, err
	}

	if cartItem.UserID != userID {
		logger.Warn("Cart item access denied: ownership mismatch", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
			"owner_id":     cartItem.UserID,
		})
		return nil, ErrCartItemNotFound
	}
	return cartItem, nil
}

func (s *cartService) UpdateQuantity(userID, cartItemID uint, quantity int) (*model.CartItem, error) {
	logger.Info("Updating cart item", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": cartItemID,
		"quantity":     quantity,
	})

	if quantity < configurator.MinQuantity {
		return nil, configurator.ErrInvalidQuantity
	}

	cartItem, err := s.findOwned(userID, cartItemID)
	if err != nil {
		return nil, err
	}

	cartItem.Quantity = quantity
	if err := s.cartRepo.Update(cartItem); err != nil {
		logger.Error("Failed to update cart item", err, map[string]interface{}{
			"cart_item_id": cartItemID,
		})
		return nil, err
	}

	logger.Info("Cart item updated successfully", map[string]interface{}{
		"cart_item_id": cartItemID,
	})
	return cartItem, nil
}

func (s *cartService) RemoveItem(userID, cartItemID uint) error {
	logger.Info("Removing cart item", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": cartItemID,
	})

	if _, err := s.findOwned(userID, cartItemID); err != nil {
		return err
	}

	if err := s.cartRepo.Delete(cartItemID); err != nil {
		logger.Error("Failed to delete cart item", err, map[string]interface{}{
			"cart_item_id": cartItemID,
		})
		return err
	}

	logger.Info("Cart item removed successfully", map[string]interface{}{
		"cart_item_id": cartItemID,
	})
	return nil
}

func (s *cartService) ClearCart(userID uint) error {
	logger.Info("Clearing cart", map[string]interface{}{
		"user_id": userID,
	})

	if err := s.cartRepo.DeleteByUserID(userID); err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	logger.Info("Cart cleared successfully", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}
