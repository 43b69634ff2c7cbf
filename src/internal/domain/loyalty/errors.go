package loyalty

import "fmt"

// ===========================
// 錯誤代碼定義
// ===========================

// ErrorCode 錯誤代碼類型
type ErrorCode string

// 錯誤代碼常量
const (
	ErrCodeInvalidAccountID     ErrorCode = "ACCOUNT_ID_INVALID"
	ErrCodeInvalidUserID        ErrorCode = "USER_ID_INVALID"
	ErrCodeInvalidOrderID       ErrorCode = "ORDER_ID_INVALID"
	ErrCodeInvalidEntryID       ErrorCode = "ENTRY_ID_INVALID"
	ErrCodeInvalidAmount        ErrorCode = "AMOUNT_INVALID"
	ErrCodeInsufficientPoints   ErrorCode = "POINTS_INSUFFICIENT"
	ErrCodeInvalidPolicy        ErrorCode = "POLICY_INVALID"
	ErrCodeInvalidTier          ErrorCode = "TIER_INVALID"
	ErrCodeInvalidEntryType     ErrorCode = "ENTRY_TYPE_INVALID"
	ErrCodeCorruptedAccount     ErrorCode = "ACCOUNT_CORRUPTED"
	ErrCodeAccountNotFound      ErrorCode = "ACCOUNT_NOT_FOUND"
	ErrCodeDuplicateLedgerEntry ErrorCode = "LEDGER_ENTRY_DUPLICATE"
)

// DomainError 領域錯誤
//
// 1. 結構化錯誤代碼（供上層映射 HTTP 狀態碼）
// 2. 上下文信息（供日誌）
// 3. 不可變：WithContext 返回新實例
type DomainError struct {
	Code    ErrorCode
	Message string
	Context map[string]interface{}
}

// Error 實現 error 接口
func (e *DomainError) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s (context: %+v)", e.Code, e.Message, e.Context)
}

// WithContext 添加上下文信息（返回新的錯誤實例）
func (e *DomainError) WithContext(keyValues ...interface{}) error {
	if len(keyValues)%2 != 0 {
		panic("WithContext requires even number of arguments (key-value pairs)")
	}

	ctx := make(map[string]interface{}, len(e.Context)+len(keyValues)/2)
	for k, v := range e.Context {
		ctx[k] = v
	}
	for i := 0; i < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			panic(fmt.Sprintf("context key must be string, got %T", keyValues[i]))
		}
		ctx[key] = keyValues[i+1]
	}

	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Context: ctx,
	}
}

// Is 依錯誤代碼比較（支援 errors.Is）
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ===========================
// 預定義錯誤
// ===========================

// 識別符相關錯誤
var (
	ErrInvalidAccountID = &DomainError{Code: ErrCodeInvalidAccountID, Message: "無效的帳戶 ID"}
	ErrInvalidUserID    = &DomainError{Code: ErrCodeInvalidUserID, Message: "無效的使用者 ID"}
	ErrInvalidOrderID   = &DomainError{Code: ErrCodeInvalidOrderID, Message: "無效的訂單 ID"}
	ErrInvalidEntryID   = &DomainError{Code: ErrCodeInvalidEntryID, Message: "無效的帳目 ID"}
)

// 數量與規則相關錯誤
var (
	ErrInvalidAmount = &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: "無效的金額或積分數量",
	}

	ErrInsufficientPoints = &DomainError{
		Code:    ErrCodeInsufficientPoints,
		Message: "積分餘額不足",
	}

	ErrInvalidPolicy = &DomainError{
		Code:    ErrCodeInvalidPolicy,
		Message: "無效的積分規則設定",
	}

	ErrInvalidTier = &DomainError{
		Code:    ErrCodeInvalidTier,
		Message: "無效的會員等級",
	}

	ErrInvalidEntryType = &DomainError{
		Code:    ErrCodeInvalidEntryType,
		Message: "無效的帳目類型",
	}

	// ErrCorruptedAccount 資料庫中的帳戶資料違反不變條件
	ErrCorruptedAccount = &DomainError{
		Code:    ErrCodeCorruptedAccount,
		Message: "帳戶資料損壞",
	}
)

// Repository 相關錯誤
var (
	ErrAccountNotFound = &DomainError{
		Code:    ErrCodeAccountNotFound,
		Message: "積分帳戶不存在",
	}

	// ErrDuplicateLedgerEntry (order_id, type) 或 external_ref 唯一約束衝突
	//
	// 這不是業務失敗：表示該筆帳目已經寫入過（冪等短路）。
	ErrDuplicateLedgerEntry = &DomainError{
		Code:    ErrCodeDuplicateLedgerEntry,
		Message: "帳目已存在",
	}
)
