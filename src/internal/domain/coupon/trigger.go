package coupon

import (
	"fmt"
	"time"
)

// TriggerType 活動觸發類型
type TriggerType string

const (
	// TriggerManual 由營運人員手動發放
	TriggerManual TriggerType = "MANUAL"
	// TriggerSignup 註冊時同步發放
	TriggerSignup TriggerType = "SIGNUP"
	// TriggerBirthdayMonth 每日排程於生日月份發放（每年一次的窗口）
	TriggerBirthdayMonth TriggerType = "BIRTHDAY_MONTH"
	// TriggerOrderPaid 訂單付款確認後發放
	TriggerOrderPaid TriggerType = "ORDER_PAID"
)

// ParseTriggerType 從字串解析觸發類型
func ParseTriggerType(s string) (TriggerType, error) {
	switch t := TriggerType(s); t {
	case TriggerManual, TriggerSignup, TriggerBirthdayMonth, TriggerOrderPaid:
		return t, nil
	}
	return "", ErrInvalidTriggerType.WithContext("trigger_type", s)
}

// IsTimeBased 是否由排程觸發
func (t TriggerType) IsTimeBased() bool {
	return t == TriggerBirthdayMonth
}

// IsAutomatic 是否為自動觸發（非手動）
func (t TriggerType) IsAutomatic() bool {
	return t != TriggerManual
}

// PerUserWindowStart 返回每人上限的計算起點
//
// 生日類活動只計算當年度的發放（年初零點，now 的時區）；
// 其他類型不設窗口（返回 nil）。
func (t TriggerType) PerUserWindowStart(now time.Time) *time.Time {
	if !t.IsTimeBased() {
		return nil
	}
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	return &start
}

// OccurrenceKey 一次觸發的冪等鍵
//
// 同一使用者在同一活動下，相同 key 只會發放一次：
// - SIGNUP: "signup"
// - BIRTHDAY_MONTH: "birthday:<year>"
// - ORDER_PAID: "order:<orderID>"
// - MANUAL: 由呼叫端提供
func (t TriggerType) OccurrenceKey(now time.Time, reference string) string {
	switch t {
	case TriggerSignup:
		return "signup"
	case TriggerBirthdayMonth:
		return fmt.Sprintf("birthday:%d", now.Year())
	case TriggerOrderPaid:
		return "order:" + reference
	}
	return "manual:" + reference
}

// ProgramStatus 活動狀態
type ProgramStatus string

const (
	ProgramActive   ProgramStatus = "ACTIVE"
	ProgramPaused   ProgramStatus = "PAUSED"
	ProgramArchived ProgramStatus = "ARCHIVED"
)

// ParseProgramStatus 從字串解析活動狀態
func ParseProgramStatus(s string) (ProgramStatus, error) {
	switch st := ProgramStatus(s); st {
	case ProgramActive, ProgramPaused, ProgramArchived:
		return st, nil
	}
	return "", ErrInvalidProgram.WithContext("status", s)
}
