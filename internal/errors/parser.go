package errors

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorInfo 에러 정보 구조
type ErrorInfo struct {
	Code    string // 에러 코드 (codes.go 참조)
	Message string // 사용자 친화적 메시지
}

// ParseError 에러를 파싱하여 사용자 친화적인 메시지와 코드로 변환
// 민감한 정보(SQL, 제약조건 이름)는 응답에 포함하지 않음
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "서버 오류가 발생했습니다",
		}
	}

	errLower := strings.ToLower(err.Error())

	// 1. GORM 기본 에러
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// 2. 제약조건 위반 (PostgreSQL / SQLite 공통 문구)

	// 2-1. Unique constraint
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "이미 존재하는 데이터입니다",
		}
	}

	// 2-2. Foreign key constraint
	if strings.Contains(errLower, "foreign key constraint") {
		if strings.Contains(errLower, "still referenced") {
			return ErrorInfo{
				Code:    ResourceConflict,
				Message: "연결된 데이터가 있어 삭제할 수 없습니다",
			}
		}
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "참조하는 데이터를 찾을 수 없습니다",
		}
	}

	// 2-3. Not null constraint
	if strings.Contains(errLower, "not-null constraint") || strings.Contains(errLower, "not null constraint") {
		return parseNotNullError(errLower)
	}

	// 2-4. Check constraint
	if strings.Contains(errLower, "check constraint") {
		return ErrorInfo{
			Code:    ValidationInvalidInput,
			Message: "입력값이 유효하지 않습니다",
		}
	}

	// 3. 네트워크/연결 에러
	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "외부 서비스 연결에 실패했습니다. 잠시 후 다시 시도해주세요",
		}
	}

	// 4. 기본 내부 서버 오류
	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

// parseNotNullError Not null constraint 위반 에러 파싱
func parseNotNullError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "base_price"):
		return ErrorInfo{Code: ValidationRequired, Message: "기본 가격은 필수 항목입니다"}
	case strings.Contains(errLower, "label"):
		return ErrorInfo{Code: ValidationRequired, Message: "옵션 이름은 필수 항목입니다"}
	case strings.Contains(errLower, "name"):
		return ErrorInfo{Code: ValidationRequired, Message: "상품명은 필수 항목입니다"}
	}

	return ErrorInfo{
		Code:    ValidationRequired,
		Message: "필수 항목이 누락되었습니다",
	}
}

// getNotFoundMessage context에 따른 Not Found 메시지
func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "product") || strings.Contains(contextLower, "상품"):
		return "상품을 찾을 수 없습니다"
	case strings.Contains(contextLower, "value") || strings.Contains(contextLower, "옵션"):
		return "옵션을 찾을 수 없습니다"
	case strings.Contains(contextLower, "session") || strings.Contains(contextLower, "세션"):
		return "구성 세션을 찾을 수 없습니다"
	case strings.Contains(contextLower, "cart") || strings.Contains(contextLower, "장바구니"):
		return "장바구니 항목을 찾을 수 없습니다"
	}

	return "요청한 데이터를 찾을 수 없습니다"
}

// getDefaultErrorMessage context에 따른 기본 에러 메시지
func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "import") || strings.Contains(contextLower, "등록"):
		return "등록 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	case strings.Contains(contextLower, "update") || strings.Contains(contextLower, "수정"):
		return "수정 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	case strings.Contains(contextLower, "delete") || strings.Contains(contextLower, "삭제"):
		return "삭제 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	case strings.Contains(contextLower, "export") || strings.Contains(contextLower, "내보내기"):
		return "내보내기 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	}

	return "서버 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
}

// ParseAndRespond 에러를 파싱하여 응답 반환
func ParseAndRespond(c *gin.Context, statusCode int, err error, context string) {
	info := ParseError(err, context)
	RespondWithError(c, statusCode, info.Code, info.Message)
}
