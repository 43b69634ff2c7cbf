// Package eventbus 進程內事件匯流排
package eventbus

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

type subscription struct {
	id      uint64
	handler shared.EventHandler
}

// Bus shared.EventBus 的同步實作
//
// - Publish 依註冊順序逐一調用處理器，全部返回後才返回
// - 實作 shared.CopyableEvent 的事件在交給每個處理器前各自複製
// - 處理器的錯誤與 panic 只記錄，不影響發布者與其他處理器
// - 不重試
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[string][]subscription
	logger   *zap.Logger
}

// New 創建事件匯流排
func New(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		handlers: make(map[string][]subscription),
		logger:   logger,
	}
}

var _ shared.EventBus = (*Bus)(nil)

// Subscribe 訂閱事件類型
//
// 每次調用都是獨立的訂閱，同一函數註冊兩次會被調用兩次。
func (b *Bus) Subscribe(eventType string, handler shared.EventHandler) shared.Unsubscribe {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(eventType, id) })
	}
}

func (b *Bus) remove(eventType string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			kept := make([]subscription, 0, len(subs)-1)
			kept = append(kept, subs[:i]...)
			kept = append(kept, subs[i+1:]...)
			if len(kept) == 0 {
				delete(b.handlers, eventType)
			} else {
				b.handlers[eventType] = kept
			}
			return
		}
	}
}

// Publish 發布事件給發布當下已註冊的處理器
func (b *Bus) Publish(ctx context.Context, event shared.DomainEvent) {
	b.mu.RLock()
	subs := b.handlers[event.EventType()]
	b.mu.RUnlock()

	for _, s := range subs {
		b.invoke(ctx, s.handler, payloadFor(event))
	}
}

// HandlerCount 事件類型目前的訂閱數
func (b *Bus) HandlerCount(eventType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

func (b *Bus) invoke(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event_type", event.EventType()),
				zap.String("aggregate_id", event.AggregateID()),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	if err := handler(ctx, event); err != nil {
		b.logger.Error("event handler failed",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID()),
			zap.Error(err),
		)
	}
}

func payloadFor(event shared.DomainEvent) shared.DomainEvent {
	if c, ok := event.(shared.CopyableEvent); ok {
		return c.CopyEvent()
	}
	return event
}
