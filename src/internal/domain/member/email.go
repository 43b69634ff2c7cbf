package member

import (
	"net/mail"
	"strings"
)

// Email 會員電子郵件值對象（通知寄送地址）
//
// 業務規則：
// 1. 必須是單一 RFC 5322 地址（不含顯示名稱）
// 2. 儲存時去除前後空白並轉為小寫
type Email struct {
	value string
}

// NewEmail 創建電子郵件值對象（Checked Constructor）
func NewEmail(value string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return Email{}, ErrInvalidEmail.WithContext("email", value, "reason", "cannot be empty")
	}

	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Name != "" || addr.Address != normalized {
		return Email{}, ErrInvalidEmail.WithContext("email", value, "reason", "not a bare address")
	}

	return Email{value: normalized}, nil
}

// String 返回地址字串
func (e Email) String() string {
	return e.value
}

// Equals 比較兩個地址是否相等
func (e Email) Equals(other Email) bool {
	return e.value == other.value
}

// IsZero 檢查是否為零值
func (e Email) IsZero() bool {
	return e.value == ""
}
