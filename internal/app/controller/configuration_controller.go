package controller

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
	ws "github.com/ikkim/storefront-backend/internal/websocket"
)

type ConfigurationController struct {
	configService service.ConfigurationService
	hub           *ws.Hub
	upgrader      websocket.Upgrader
}

// NewConfigurationController wires the REST handlers and the live price socket.
// Browsers may only open the socket from allowedOrigins; clients sending no Origin are accepted.
func NewConfigurationController(configService service.ConfigurationService, hub *ws.Hub, allowedOrigins []string) *ConfigurationController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[origin] = true
	}

	return &ConfigurationController{
		configService: configService,
		hub:           hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins[origin]
			},
		},
	}
}

type StartConfigurationRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

type ToggleValueRequest struct {
	GroupID uint `json:"group_id" binding:"required"`
	ValueID uint `json:"value_id" binding:"required"`
}

// Quantity arrives as raw user input, either a JSON number or a string; parsing happens in the engine.
type SetQuantityRequest struct {
	Quantity json.RawMessage `json:"quantity"`
}

// RawQuantity returns the quantity as typed: a string's contents or a number's literal text.
func (r *SetQuantityRequest) RawQuantity() string {
	var text string
	if err := json.Unmarshal(r.Quantity, &text); err == nil {
		return text
	}
	return strings.TrimSpace(string(r.Quantity))
}

// Start opens a configuration session for a product
// POST /api/v1/configurations
func (ctrl *ConfigurationController) Start(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req StartConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid start configuration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "상품을 선택해주세요")
		return
	}

	userID, _ := middleware.GetUserID(c)
	view, err := ctrl.configService.Start(c.Request.Context(), req.ProductID, userID)
	if err != nil {
		respondServiceError(c, err, "start configuration")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session": view,
	})
}

// Get returns the current state of a session
// GET /api/v1/configurations/:id
func (ctrl *ConfigurationController) Get(c *gin.Context) {
	view, err := ctrl.configService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "get configuration session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": view,
	})
}

// Toggle flips one feature value
// POST /api/v1/configurations/:id/toggle
func (ctrl *ConfigurationController) Toggle(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ToggleValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid toggle request", map[string]interface{}{
			"session_id": c.Param("id"),
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "group_id와 value_id가 필요합니다")
		return
	}

	view, err := ctrl.configService.Toggle(c.Request.Context(), c.Param("id"), req.GroupID, req.ValueID)
	if err != nil {
		respondServiceError(c, err, "update configuration session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": view,
	})
}

// SetQuantity updates the quantity from raw input
// PUT /api/v1/configurations/:id/quantity
func (ctrl *ConfigurationController) SetQuantity(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid quantity request", map[string]interface{}{
			"session_id": c.Param("id"),
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidQuantity, "수량은 1 이상의 정수여야 합니다")
		return
	}

	view, err := ctrl.configService.SetQuantity(c.Request.Context(), c.Param("id"), req.RawQuantity())
	if err != nil {
		respondServiceError(c, err, "update configuration session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": view,
	})
}

// Commit adds the configured product to the caller's cart and closes the session
// POST /api/v1/configurations/:id/commit
func (ctrl *ConfigurationController) Commit(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	descriptor, cartItem, err := ctrl.configService.Commit(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, err, "commit configuration session")
		return
	}

	log.Info("Configuration committed to cart", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": cartItem.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"line_item": descriptor,
		"cart_item": cartItem,
	})
}

// Discard drops a session
// DELETE /api/v1/configurations/:id
func (ctrl *ConfigurationController) Discard(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	if err := ctrl.configService.Discard(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondServiceError(c, err, "delete configuration session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "구성 세션이 삭제되었습니다",
	})
}

// Live streams price changes of a session over a websocket
// GET /api/v1/configurations/:id/live
func (ctrl *ConfigurationController) Live(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := c.Param("id")

	// reject unknown sessions before upgrading so the client gets a JSON error
	if _, err := ctrl.configService.Get(c.Request.Context(), sessionID); err != nil {
		respondServiceError(c, err, "get configuration session")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, sessionID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("Live configuration connection established", map[string]interface{}{
		"session_id": sessionID,
	})
}
