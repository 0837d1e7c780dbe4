package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/configurator"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

// respondServiceError translates service sentinel errors into HTTP responses.
// Anything unrecognised is parsed as a storage error and answered with 500.
func respondServiceError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "상품을 찾을 수 없습니다")
	case errors.Is(err, service.ErrFeatureValueNotFound):
		apperrors.NotFound(c, apperrors.FeatureValueNotFound, "옵션을 찾을 수 없습니다")
	case errors.Is(err, service.ErrSessionNotFound):
		apperrors.NotFound(c, apperrors.ConfigSessionNotFound, "구성 세션이 없거나 만료되었습니다")
	case errors.Is(err, service.ErrIncompleteConfiguration):
		apperrors.Conflict(c, apperrors.ConfigIncomplete, "필수 옵션을 모두 선택해주세요")
	case errors.Is(err, service.ErrSessionAccessDenied):
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.ConfigAccessDenied, "다른 사용자의 구성 세션입니다")
	case errors.Is(err, configurator.ErrInvalidQuantity):
		apperrors.BadRequest(c, apperrors.ValidationInvalidQuantity, "수량은 1 이상의 정수여야 합니다")
	case errors.Is(err, service.ErrCartItemNotFound):
		apperrors.NotFound(c, apperrors.CartItemNotFound, "장바구니 항목을 찾을 수 없습니다")
	case errors.Is(err, service.ErrExportUnavailable):
		apperrors.Unavailable(c, apperrors.CartExportNotEnabled, "내보내기 저장소가 설정되지 않았습니다")
	default:
		middleware.GetLoggerFromContext(c).Error("Request failed", err, map[string]interface{}{
			"context": context,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}

// parseIDParam reads a positive numeric path parameter, answering 400 when it is not one.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid id parameter", map[string]interface{}{
			"param": name,
			"value": c.Param(name),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 ID입니다")
		return 0, false
	}
	return uint(id), true
}

func requireUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.GetLoggerFromContext(c).Warn("Unauthenticated access", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		apperrors.Unauthorized(c, "")
		return 0, false
	}
	return userID, true
}
