package shared

import (
	"context"
	"time"
)

// DomainEvent 領域事件基礎介面
type DomainEvent interface {
	EventID() string       // 事件唯一標識
	EventType() string     // 事件類型（例如 "order.paid.verified"）
	OccurredAt() time.Time // 發生時間
	AggregateID() string   // 聚合根 ID（訂單事件為訂單 ID）
}

// EventHandler 事件處理函數
//
// 行為約定：
// - 處理器自行負責冪等性（同一事件可能被發布多次）
// - 返回的錯誤只會被記錄，不會傳回發布者，也不會影響其他處理器
type EventHandler func(ctx context.Context, event DomainEvent) error

// Unsubscribe 取消訂閱
//
// 以訂閱時的註冊身分識別處理器（同一函數註冊兩次會得到兩個獨立的訂閱）。
// 重複調用是安全的。
type Unsubscribe func()

// EventPublisher 事件發布器介面
//
// Publish 為同步扇出：依註冊順序調用當前所有處理器後返回。
// 不重試、不等待非同步處理器完成、不傳播處理器錯誤。
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent)
}

// EventSubscriber 事件訂閱器介面
type EventSubscriber interface {
	Subscribe(eventType string, handler EventHandler) Unsubscribe
}

// EventBus 進程內事件匯流排
type EventBus interface {
	EventPublisher
	EventSubscriber
}

// CopyableEvent 帶有引用類型欄位的事件
//
// 匯流排在交給每個處理器前調用 CopyEvent，
// 使一個處理器對事件的修改不會被其他處理器看到。
type CopyableEvent interface {
	DomainEvent
	CopyEvent() DomainEvent
}
