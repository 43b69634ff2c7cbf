package coupon

import "fmt"

// ErrorCode 錯誤代碼類型
type ErrorCode string

// 錯誤代碼常量
const (
	ErrCodeInvalidProgramID         ErrorCode = "PROGRAM_ID_INVALID"
	ErrCodeInvalidTemplateID        ErrorCode = "TEMPLATE_ID_INVALID"
	ErrCodeInvalidCouponID          ErrorCode = "COUPON_ID_INVALID"
	ErrCodeInvalidIssuanceID        ErrorCode = "ISSUANCE_ID_INVALID"
	ErrCodeInvalidUserID            ErrorCode = "USER_ID_INVALID"
	ErrCodeInvalidProgram           ErrorCode = "PROGRAM_INVALID"
	ErrCodeInvalidProgramItems      ErrorCode = "PROGRAM_ITEMS_INVALID"
	ErrCodeInvalidRedemptionRule    ErrorCode = "REDEMPTION_RULE_INVALID"
	ErrCodeUnsupportedRule          ErrorCode = "REDEMPTION_RULE_UNSUPPORTED"
	ErrCodeInvalidTriggerType       ErrorCode = "TRIGGER_TYPE_INVALID"
	ErrCodeProgramNotFound          ErrorCode = "PROGRAM_NOT_FOUND"
	ErrCodeTemplateNotFound         ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeCouponNotFound           ErrorCode = "COUPON_NOT_FOUND"
	ErrCodeCouponNotAvailable       ErrorCode = "COUPON_NOT_AVAILABLE"
	ErrCodeCouponNotOwned           ErrorCode = "COUPON_NOT_OWNED"
	ErrCodeMinimumSpendNotMet       ErrorCode = "COUPON_MIN_SPEND_NOT_MET"
	ErrCodeDuplicateIssuance        ErrorCode = "ISSUANCE_DUPLICATE"
)

// DomainError 優惠券領域錯誤
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

	return &DomainError{Code: e.Code, Message: e.Message, Context: ctx}
}

// Is 依錯誤代碼比較
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// 識別符錯誤
var (
	ErrInvalidProgramID  = &DomainError{Code: ErrCodeInvalidProgramID, Message: "無效的活動 ID"}
	ErrInvalidTemplateID = &DomainError{Code: ErrCodeInvalidTemplateID, Message: "無效的模板 ID"}
	ErrInvalidCouponID   = &DomainError{Code: ErrCodeInvalidCouponID, Message: "無效的優惠券 ID"}
	ErrInvalidIssuanceID = &DomainError{Code: ErrCodeInvalidIssuanceID, Message: "無效的發放紀錄 ID"}
	ErrInvalidUserID     = &DomainError{Code: ErrCodeInvalidUserID, Message: "無效的使用者 ID"}
)

// 驗證錯誤：同步返回給發放調用者，不可被吞掉
var (
	ErrInvalidProgram = &DomainError{
		Code:    ErrCodeInvalidProgram,
		Message: "無效的活動設定",
	}

	ErrInvalidProgramItems = &DomainError{
		Code:    ErrCodeInvalidProgramItems,
		Message: "活動發放項目格式錯誤",
	}

	ErrInvalidRedemptionRule = &DomainError{
		Code:    ErrCodeInvalidRedemptionRule,
		Message: "優惠規則格式錯誤",
	}

	// ErrUnsupportedRedemptionRule 百分比折扣不支援自動發放
	ErrUnsupportedRedemptionRule = &DomainError{
		Code:    ErrCodeUnsupportedRule,
		Message: "不支援的優惠規則",
	}

	ErrInvalidTriggerType = &DomainError{
		Code:    ErrCodeInvalidTriggerType,
		Message: "無效的觸發類型",
	}
)

// 使用與查詢錯誤
var (
	ErrProgramNotFound    = &DomainError{Code: ErrCodeProgramNotFound, Message: "優惠活動不存在"}
	ErrTemplateNotFound   = &DomainError{Code: ErrCodeTemplateNotFound, Message: "優惠券模板不存在"}
	ErrCouponNotFound     = &DomainError{Code: ErrCodeCouponNotFound, Message: "優惠券不存在"}
	ErrCouponNotAvailable = &DomainError{Code: ErrCodeCouponNotAvailable, Message: "優惠券已使用或已過期"}
	ErrCouponNotOwned     = &DomainError{Code: ErrCodeCouponNotOwned, Message: "優惠券不屬於此使用者"}
	ErrMinimumSpendNotMet = &DomainError{Code: ErrCodeMinimumSpendNotMet, Message: "未達最低消費"}

	// ErrDuplicateIssuance (program, user, issuance key) 已發放過（冪等短路）
	ErrDuplicateIssuance = &DomainError{Code: ErrCodeDuplicateIssuance, Message: "此次發放已完成"}
)
