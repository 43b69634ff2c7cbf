package member

// ===========================
// Member Domain 錯誤定義
// ===========================

// ErrorCode Member Domain 錯誤代碼
type ErrorCode string

// Member Domain 錯誤代碼常量
const (
	ErrCodeInvalidEmail          ErrorCode = "INVALID_EMAIL"
	ErrCodeEmailAlreadyUsed      ErrorCode = "EMAIL_ALREADY_USED"
	ErrCodeMemberNotFound        ErrorCode = "MEMBER_NOT_FOUND"
	ErrCodeInvalidMemberID       ErrorCode = "INVALID_MEMBER_ID"
	ErrCodeInvalidDisplayName    ErrorCode = "INVALID_DISPLAY_NAME"
	ErrCodeInvalidBirthDate      ErrorCode = "INVALID_BIRTH_DATE"
	ErrCodeInvalidMemberStatus   ErrorCode = "INVALID_MEMBER_STATUS"
	ErrCodeMemberAlreadyDisabled ErrorCode = "MEMBER_ALREADY_DISABLED"
)

// DomainError Member Domain 錯誤結構
//
// 設計原則：
// 1. 不使用 fmt.Errorf 或 errors.New（避免字串錯誤）
// 2. 使用結構化錯誤（ErrorCode + Message + Context）
// 3. 支援錯誤包裝（errors.Is 檢查）
// 4. 提供上下文信息（WithContext 方法）
type DomainError struct {
	Code    ErrorCode
	Message string
	Context map[string]interface{}
}

// Error 實作 error 介面
func (e *DomainError) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}

	// 包含上下文信息
	return e.Message + " (context: " + formatContext(e.Context) + ")"
}

// WithContext 添加上下文信息
//
// 使用範例：
//   return ErrInvalidEmail.WithContext("email", value, "reason", "cannot be empty")
func (e *DomainError) WithContext(keyValues ...interface{}) *DomainError {
	if len(keyValues)%2 != 0 {
		panic("WithContext requires even number of arguments (key-value pairs)")
	}

	newErr := &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Context: make(map[string]interface{}),
	}

	// 複製現有上下文
	for k, v := range e.Context {
		newErr.Context[k] = v
	}

	// 添加新上下文
	for i := 0; i < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			panic("WithContext keys must be strings")
		}
		newErr.Context[key] = keyValues[i+1]
	}

	return newErr
}

// Is 實作 errors.Is 比較
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// formatContext 格式化上下文信息
func formatContext(context map[string]interface{}) string {
	if len(context) == 0 {
		return ""
	}

	result := ""
	for k, v := range context {
		if result != "" {
			result += ", "
		}
		result += k + "=" + formatValue(v)
	}
	return result
}

// formatValue 格式化單個值
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	default:
		return "<value>"
	}
}

// ===========================
// Member Domain 錯誤實例
// ===========================

var (
	// ErrInvalidEmail 電子郵件格式無效
	ErrInvalidEmail = &DomainError{
		Code:    ErrCodeInvalidEmail,
		Message: "電子郵件格式無效",
	}

	// ErrEmailAlreadyUsed 電子郵件已被其他會員使用
	ErrEmailAlreadyUsed = &DomainError{
		Code:    ErrCodeEmailAlreadyUsed,
		Message: "電子郵件已被其他會員使用",
	}

	// ErrMemberNotFound 會員不存在
	ErrMemberNotFound = &DomainError{
		Code:    ErrCodeMemberNotFound,
		Message: "會員不存在",
	}

	// ErrInvalidMemberID 會員 ID 無效
	ErrInvalidMemberID = &DomainError{
		Code:    ErrCodeInvalidMemberID,
		Message: "會員 ID 格式無效",
	}

	// ErrInvalidDisplayName 顯示名稱無效
	ErrInvalidDisplayName = &DomainError{
		Code:    ErrCodeInvalidDisplayName,
		Message: "顯示名稱不能為空",
	}

	// ErrInvalidBirthDate 生日無效
	//
	// 觸發條件：
	// - 生日晚於註冊時間
	ErrInvalidBirthDate = &DomainError{
		Code:    ErrCodeInvalidBirthDate,
		Message: "生日無效",
	}

	// ErrInvalidMemberStatus 會員狀態無效
	ErrInvalidMemberStatus = &DomainError{
		Code:    ErrCodeInvalidMemberStatus,
		Message: "會員狀態無效",
	}

	// ErrMemberAlreadyDisabled 會員已停用
	ErrMemberAlreadyDisabled = &DomainError{
		Code:    ErrCodeMemberAlreadyDisabled,
		Message: "會員已停用",
	}
)
