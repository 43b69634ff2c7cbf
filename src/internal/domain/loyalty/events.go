package loyalty

import (
	"time"

	"github.com/google/uuid"
)

// EventTypeTierChanged 等級變更事件類型
const EventTypeTierChanged = "loyalty.tier_changed"

// TierChangedEvent 會員等級變更事件
//
// 在結算事務提交後由 Application Layer 發布到事件匯流排；
// 通知處理器據此寄送升級通知。
type TierChangedEvent struct {
	eventID       string
	accountID     AccountID
	userID        UserID
	from          Tier
	to            Tier
	lifetimeSpend Cents
	occurredAt    time.Time
}

// NewTierChangedEvent 創建等級變更事件
func NewTierChangedEvent(accountID AccountID, userID UserID, from, to Tier, lifetimeSpend Cents) *TierChangedEvent {
	return &TierChangedEvent{
		eventID:       uuid.New().String(),
		accountID:     accountID,
		userID:        userID,
		from:          from,
		to:            to,
		lifetimeSpend: lifetimeSpend,
		occurredAt:    time.Now(),
	}
}

// EventID 實現 DomainEvent 介面
func (e *TierChangedEvent) EventID() string { return e.eventID }

// EventType 實現 DomainEvent 介面
func (e *TierChangedEvent) EventType() string { return EventTypeTierChanged }

// OccurredAt 實現 DomainEvent 介面
func (e *TierChangedEvent) OccurredAt() time.Time { return e.occurredAt }

// AggregateID 實現 DomainEvent 介面
func (e *TierChangedEvent) AggregateID() string { return e.accountID.String() }

// UserID 帳戶持有人
func (e *TierChangedEvent) UserID() UserID { return e.userID }

// From 變更前等級
func (e *TierChangedEvent) From() Tier { return e.from }

// To 變更後等級
func (e *TierChangedEvent) To() Tier { return e.to }

// IsUpgrade 是否為升級
func (e *TierChangedEvent) IsUpgrade() bool { return e.to.IsAbove(e.from) }

// LifetimeSpend 觸發變更時的累積消費
func (e *TierChangedEvent) LifetimeSpend() Cents { return e.lifetimeSpend }
