package service

import (
	"context"
	"errors"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrFeatureValueNotFound = errors.New("feature value not found")
)

// CatalogProvider supplies a product and its fully resolved feature groups.
// A group with zero values is valid.
type CatalogProvider interface {
	FetchProduct(ctx context.Context, id uint) (*model.Product, error)
	FetchFeatureGroups(ctx context.Context, productID uint) ([]model.FeatureGroup, error)
}

type ProductListOptions struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

type CatalogService interface {
	CatalogProvider
	ListProducts(ctx context.Context, opts ProductListOptions) ([]model.Product, int64, error)
	GetProductDetail(ctx context.Context, id uint) (*model.Product, error)
	SetValueAvailability(ctx context.Context, valueID uint, available bool) (*model.FeatureValue, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	featureRepo repository.FeatureRepository
	cache       repository.CatalogCache
}

// NewCatalogService builds the catalog. cache may be nil; otherwise reads go through Redis.
func NewCatalogService(
	productRepo repository.ProductRepository,
	featureRepo repository.FeatureRepository,
	cache repository.CatalogCache,
) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		featureRepo: featureRepo,
		cache:       cache,
	}
}

func (s *catalogService) load(ctx context.Context, productID uint) (*repository.CatalogEntry, error) {
	if s.cache != nil {
		entry, err := s.cache.Get(ctx, productID)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, repository.ErrCacheMiss) {
			logger.Warn("Catalog cache read failed, falling back to database", map[string]interface{}{
				"product_id": productID,
				"error":      err.Error(),
			})
		}
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	groups, err := s.featureRepo.FindGroupsByProductID(productID)
	if err != nil {
		logger.Error("Failed to fetch feature groups", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	if groups == nil {
		groups = []model.FeatureGroup{}
	}

	entry := &repository.CatalogEntry{Product: *product, Groups: groups}
	entry.Product.FeatureGroups = nil

	if s.cache != nil {
		if err := s.cache.Set(ctx, entry); err != nil {
			logger.Warn("Failed to populate catalog cache", map[string]interface{}{
				"product_id": productID,
				"error":      err.Error(),
			})
		}
	}
	return entry, nil
}

func (s *catalogService) FetchProduct(ctx context.Context, id uint) (*model.Product, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	product := entry.Product
	return &product, nil
}

func (s *catalogService) FetchFeatureGroups(ctx context.Context, productID uint) ([]model.FeatureGroup, error) {
	entry, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}
	return entry.Groups, nil
}

func (s *catalogService) GetProductDetail(ctx context.Context, id uint) (*model.Product, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	product := entry.Product
	product.FeatureGroups = entry.Groups
	return &product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, opts ProductListOptions) ([]model.Product, int64, error) {
	logger.Debug("Listing products", map[string]interface{}{
		"category": opts.Category,
		"search":   opts.Search,
		"limit":    opts.Limit,
		"offset":   opts.Offset,
	})

	products, total, err := s.productRepo.List(repository.ProductFilter{
		Category: opts.Category,
		Search:   opts.Search,
		Limit:    opts.Limit,
		Offset:   opts.Offset,
	})
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, 0, err
	}

	logger.Info("Products listed", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

// SetValueAvailability flips a value on or off and drops the product's cached entry.
// Open sessions that selected the value keep it; pricing ignores it while unavailable.
func (s *catalogService) SetValueAvailability(ctx context.Context, valueID uint, available bool) (*model.FeatureValue, error) {
	logger.Info("Updating feature value availability", map[string]interface{}{
		"value_id":  valueID,
		"available": available,
	})

	if err := s.featureRepo.UpdateValueAvailability(valueID, available); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeatureValueNotFound
		}
		logger.Error("Failed to update feature value availability", err, map[string]interface{}{
			"value_id": valueID,
		})
		return nil, err
	}

	value, err := s.featureRepo.FindValueByID(valueID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		group, err := s.featureRepo.FindGroupByID(value.GroupID)
		if err != nil {
			logger.Error("Failed to resolve product for cache invalidation", err, map[string]interface{}{
				"value_id": valueID,
				"group_id": value.GroupID,
			})
			return nil, err
		}
		if err := s.cache.Invalidate(ctx, group.ProductID); err != nil {
			logger.Warn("Failed to invalidate catalog cache", map[string]interface{}{
				"product_id": group.ProductID,
				"error":      err.Error(),
			})
		}
	}

	return value, nil
}
