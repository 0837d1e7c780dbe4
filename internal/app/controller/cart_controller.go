package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CartController struct {
	cartService   service.CartService
	exportService service.ExportService
}

func NewCartController(cartService service.CartService, exportService service.ExportService) *CartController {
	return &CartController{
		cartService:   cartService,
		exportService: exportService,
	}
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// GetCart returns user's cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.GetCart(userID)
	if err != nil {
		respondServiceError(c, err, "get cart")
		return
	}

	log.Info("Cart fetched successfully", map[string]interface{}{
		"user_id": userID,
		"lines":   len(cart.Items),
		"total":   cart.Total.String(),
	})

	c.JSON(http.StatusOK, gin.H{
		"cart_items": cart.Items,
		"count":      cart.Count,
		"total":      cart.Total,
	})
}

// UpdateCartItem changes a line's quantity
// PUT /api/v1/cart/:id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	cartItemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update cart request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidQuantity, "수량은 1 이상의 정수여야 합니다")
		return
	}

	cartItem, err := ctrl.cartService.UpdateQuantity(userID, cartItemID, req.Quantity)
	if err != nil {
		respondServiceError(c, err, "update cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart_item": cartItem,
	})
}

// RemoveFromCart removes one line
// DELETE /api/v1/cart/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	cartItemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.cartService.RemoveItem(userID, cartItemID); err != nil {
		respondServiceError(c, err, "delete cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "장바구니에서 삭제되었습니다",
	})
}

// ClearCart removes every line
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := ctrl.cartService.ClearCart(userID); err != nil {
		respondServiceError(c, err, "delete cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "장바구니를 비웠습니다",
	})
}

// DownloadExport streams the cart as an xlsx workbook
// GET /api/v1/cart/export
func (ctrl *CartController) DownloadExport(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	data, err := ctrl.exportService.BuildCartWorkbook(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "export cart")
		return
	}

	filename := fmt.Sprintf("cart-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxMIME, data)
}

// PublishExport uploads the cart workbook to object storage
// POST /api/v1/cart/export
func (ctrl *CartController) PublishExport(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	url, err := ctrl.exportService.PublishCartExport(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "export cart")
		return
	}

	log.Info("Cart export published", map[string]interface{}{
		"user_id": userID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"url": url,
	})
}
