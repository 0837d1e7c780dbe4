package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 프론트엔드에서 이 코드를 기반으로 메시지를 매핑함

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED"  // 로그인 필요
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED" // 토큰 만료
	AuthTokenInvalid = "AUTH_TOKEN_INVALID" // 잘못된 토큰

	// ==================== 인가/권한 (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"      // 접근 권한 없음
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND" // 권한 정보 없음

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput    = "VALIDATION_INVALID_INPUT"    // 잘못된 입력
	ValidationInvalidID       = "VALIDATION_INVALID_ID"       // 잘못된 ID
	ValidationInvalidFormat   = "VALIDATION_INVALID_FORMAT"   // 잘못된 형식
	ValidationInvalidQuantity = "VALIDATION_INVALID_QUANTITY" // 잘못된 수량
	ValidationRequired        = "VALIDATION_REQUIRED"         // 필수 항목

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // 리소스 없음
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 이미 존재
	ResourceConflict      = "RESOURCE_CONFLICT"       // 충돌

	// ==================== 상품 (PRODUCT_) ====================
	ProductNotFound      = "PRODUCT_NOT_FOUND"       // 상품 없음
	FeatureValueNotFound = "PRODUCT_VALUE_NOT_FOUND" // 옵션 값 없음

	// ==================== 구성 세션 (CONFIG_) ====================
	ConfigSessionNotFound = "CONFIG_SESSION_NOT_FOUND" // 세션 없음 또는 만료
	ConfigIncomplete      = "CONFIG_INCOMPLETE"        // 필수 옵션 미선택
	ConfigAccessDenied    = "CONFIG_ACCESS_DENIED"     // 다른 사용자의 세션

	// ==================== 장바구니 (CART_) ====================
	CartItemNotFound     = "CART_ITEM_NOT_FOUND"     // 장바구니 항목 없음
	CartExportNotEnabled = "CART_EXPORT_NOT_ENABLED" // 저장소 미설정

	// ==================== 업로드 (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // 잘못된 파일 형식
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"    // 파일 너무 큼
	UploadFailed          = "UPLOAD_FAILED"            // 업로드 실패

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR" // 서버 오류
	InternalExternalAPI = "INTERNAL_EXTERNAL_API" // 외부 API 오류
)
