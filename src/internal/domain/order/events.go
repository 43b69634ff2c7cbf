package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// ===========================
// 訂單生命週期事件
// ===========================

// 事件名稱
const (
	// EventAccepted 廚房接單（低風險訊號，目前僅記錄）
	EventAccepted = "order.accepted"

	// EventPaidVerified 付款已確認；驅動所有結算處理器
	EventPaidVerified = "order.paid.verified"
)

// Accepted order.accepted 事件
//
// 值類型：發布時每個處理器收到的是一份複本。
type Accepted struct {
	ID         string
	OrderID    string
	OccurredOn time.Time
}

// NewAccepted 創建接單事件
func NewAccepted(orderID string) Accepted {
	return Accepted{
		ID:         uuid.New().String(),
		OrderID:    orderID,
		OccurredOn: time.Now(),
	}
}

// EventID 實現 DomainEvent 介面
func (e Accepted) EventID() string { return e.ID }

// EventType 實現 DomainEvent 介面
func (e Accepted) EventType() string { return EventAccepted }

// OccurredAt 實現 DomainEvent 介面
func (e Accepted) OccurredAt() time.Time { return e.OccurredOn }

// AggregateID 實現 DomainEvent 介面
func (e Accepted) AggregateID() string { return e.OrderID }

// PaidVerified order.paid.verified 事件
//
// 由結帳流程在訂單與付款事務提交後發布一次（上游重試時可能重複）。
// 欄位使用原始類型，由各處理器的 Use Case 轉換為值對象。
type PaidVerified struct {
	ID               string
	OrderID          string
	UserID           *string // 匿名訂單為 nil
	AmountCents      int64
	RedeemValueCents int64
	PickupTime       *time.Time
	OccurredOn       time.Time
}

// NewPaidVerified 創建付款確認事件
func NewPaidVerified(orderID string, userID *string, amountCents, redeemValueCents int64, pickupTime *time.Time) PaidVerified {
	return PaidVerified{
		ID:               uuid.New().String(),
		OrderID:          orderID,
		UserID:           cloneString(userID),
		AmountCents:      amountCents,
		RedeemValueCents: redeemValueCents,
		PickupTime:       cloneTime(pickupTime),
		OccurredOn:       time.Now(),
	}
}

// EventID 實現 DomainEvent 介面
func (e PaidVerified) EventID() string { return e.ID }

// EventType 實現 DomainEvent 介面
func (e PaidVerified) EventType() string { return EventPaidVerified }

// OccurredAt 實現 DomainEvent 介面
func (e PaidVerified) OccurredAt() time.Time { return e.OccurredOn }

// AggregateID 實現 DomainEvent 介面
func (e PaidVerified) AggregateID() string { return e.OrderID }

// HasUser 是否為會員訂單
func (e PaidVerified) HasUser() bool {
	return e.UserID != nil && *e.UserID != ""
}

// Copy 深拷貝（指標欄位不與原事件共享）
func (e PaidVerified) Copy() PaidVerified {
	e.UserID = cloneString(e.UserID)
	e.PickupTime = cloneTime(e.PickupTime)
	return e
}

// CopyEvent 實現 shared.CopyableEvent
func (e PaidVerified) CopyEvent() shared.DomainEvent {
	return e.Copy()
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
