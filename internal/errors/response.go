package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 모든 실패 응답의 본문
// Error는 codes.go의 코드, Message는 화면에 그대로 노출되는 문구
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// 호출 측이 메시지를 비워 둔 경우 사용하는 기본 문구
var defaultMessages = map[string]string{
	AuthUnauthorized:    "로그인이 필요합니다",
	AuthzForbidden:      "접근 권한이 없습니다",
	InternalServerError: "서버 오류가 발생했습니다. 잠시 후 다시 시도해주세요",
}

// RespondWithError 상태 코드와 에러 코드로 응답을 기록
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	if message == "" {
		message = defaultMessages[errorCode]
	}
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

func Unauthorized(c *gin.Context, message string) {
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

// Unavailable 설정되지 않은 외부 저장소 등 일시적으로 제공할 수 없는 기능
func Unavailable(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusServiceUnavailable, errorCode, message)
}
