package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ProductController struct {
	catalogService service.CatalogService
}

func NewProductController(catalogService service.CatalogService) *ProductController {
	return &ProductController{
		catalogService: catalogService,
	}
}

// ListProducts returns a page of products
// GET /api/v1/products?category=&search=&limit=&offset=
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	products, total, err := ctrl.catalogService.ListProducts(c.Request.Context(), service.ProductListOptions{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondServiceError(c, err, "list products")
		return
	}

	log.Info("Products fetched successfully", map[string]interface{}{
		"count": len(products),
		"total": total,
	})

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetProduct returns a product with its feature groups and values
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.catalogService.GetProductDetail(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "get product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}
