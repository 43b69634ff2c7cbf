package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jackyeh168/order_settlement/src/internal/domain/order"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

func newObservedBus() (*Bus, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.ErrorLevel)
	return New(zap.New(core)), logs
}

func paidEvent() order.PaidVerified {
	user := "2b8f0c5e-0d7a-4f0e-9a43-3d2f5a1c9e11"
	return order.NewPaidVerified("order-1", &user, 1000, 0, nil)
}

// Test 1: 依註冊順序同步扇出
func TestBus_Publish_InvokesInRegistrationOrder(t *testing.T) {
	// Arrange
	bus, _ := newObservedBus()
	var calls []string
	record := func(name string) shared.EventHandler {
		return func(ctx context.Context, event shared.DomainEvent) error {
			calls = append(calls, name)
			return nil
		}
	}
	bus.Subscribe(order.EventPaidVerified, record("loyalty"))
	bus.Subscribe(order.EventPaidVerified, record("fulfillment"))
	bus.Subscribe(order.EventPaidVerified, record("notification"))
	bus.Subscribe(order.EventAccepted, record("accepted-only"))

	// Act
	bus.Publish(context.Background(), paidEvent())

	// Assert
	assert.Equal(t, []string{"loyalty", "fulfillment", "notification"}, calls)
}

// Test 2: 處理器失敗或 panic 不影響其他處理器
func TestBus_Publish_IsolatesFailingHandlers(t *testing.T) {
	// Arrange
	bus, logs := newObservedBus()
	var third bool
	bus.Subscribe(order.EventPaidVerified, func(ctx context.Context, event shared.DomainEvent) error {
		return errors.New("boom")
	})
	bus.Subscribe(order.EventPaidVerified, func(ctx context.Context, event shared.DomainEvent) error {
		panic("handler exploded")
	})
	bus.Subscribe(order.EventPaidVerified, func(ctx context.Context, event shared.DomainEvent) error {
		third = true
		return nil
	})

	// Act
	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), paidEvent())
	})

	// Assert
	assert.True(t, third, "third handler should still run")
	assert.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("event handler panicked").Len())
	entry := logs.FilterMessage("event handler failed").All()[0]
	assert.Equal(t, "order-1", entry.ContextMap()["aggregate_id"])
}

// Test 3: 每個處理器收到獨立的事件複本
func TestBus_Publish_CopiesPayloadPerHandler(t *testing.T) {
	// Arrange
	bus, _ := newObservedBus()
	var seen string
	bus.Subscribe(order.EventPaidVerified, func(ctx context.Context, event shared.DomainEvent) error {
		e := event.(order.PaidVerified)
		*e.UserID = "mutated"
		return nil
	})
	bus.Subscribe(order.EventPaidVerified, func(ctx context.Context, event shared.DomainEvent) error {
		seen = *event.(order.PaidVerified).UserID
		return nil
	})
	event := paidEvent()

	// Act
	bus.Publish(context.Background(), event)

	// Assert
	assert.Equal(t, "2b8f0c5e-0d7a-4f0e-9a43-3d2f5a1c9e11", seen)
	assert.Equal(t, "2b8f0c5e-0d7a-4f0e-9a43-3d2f5a1c9e11", *event.UserID, "publisher's event is untouched")
}

// Test 4: 取消訂閱以註冊身分識別，重複取消安全
func TestBus_Unsubscribe_ByRegistration(t *testing.T) {
	// Arrange
	bus, _ := newObservedBus()
	count := 0
	handler := func(ctx context.Context, event shared.DomainEvent) error {
		count++
		return nil
	}
	unsubscribe := bus.Subscribe(order.EventAccepted, handler)
	bus.Subscribe(order.EventAccepted, handler)

	// Act
	unsubscribe()
	unsubscribe()
	bus.Publish(context.Background(), order.NewAccepted("order-2"))

	// Assert
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, bus.HandlerCount(order.EventAccepted))
}

// Test 5: 發布過程中新增的訂閱不會收到當次事件
func TestBus_Publish_UsesSnapshotOfHandlers(t *testing.T) {
	// Arrange
	bus, _ := newObservedBus()
	late := 0
	bus.Subscribe(order.EventAccepted, func(ctx context.Context, event shared.DomainEvent) error {
		bus.Subscribe(order.EventAccepted, func(ctx context.Context, event shared.DomainEvent) error {
			late++
			return nil
		})
		return nil
	})

	// Act
	bus.Publish(context.Background(), order.NewAccepted("order-3"))

	// Assert
	assert.Equal(t, 0, late)
	assert.Equal(t, 2, bus.HandlerCount(order.EventAccepted))
}

// Test 6: 沒有訂閱者時發布不做任何事
func TestBus_Publish_NoSubscribers(t *testing.T) {
	bus, logs := newObservedBus()

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), order.NewAccepted("order-4"))
	})
	assert.Equal(t, 0, logs.Len())
}

// Test 7: 非同步處理器不阻塞發布者，Drain 等待其完成
func TestAsyncRunner_DoesNotBlockPublisher(t *testing.T) {
	// Arrange
	bus, _ := newObservedBus()
	runner := NewAsyncRunner(zap.NewNop())
	release := make(chan struct{})
	var mu sync.Mutex
	var handlerErr error

	bus.Subscribe(order.EventPaidVerified, runner.Wrap(func(ctx context.Context, event shared.DomainEvent) error {
		<-release
		mu.Lock()
		handlerErr = ctx.Err()
		mu.Unlock()
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())

	// Act
	done := make(chan struct{})
	go func() {
		bus.Publish(ctx, paidEvent())
		close(done)
	}()

	// Assert: 發布者在處理器完成前返回
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on async handler")
	}

	cancel()
	close(release)

	drainCtx, drainCancel := context.WithTimeout(context.Background(), time.Second)
	defer drainCancel()
	require.NoError(t, runner.Drain(drainCtx))

	mu.Lock()
	defer mu.Unlock()
	assert.NoError(t, handlerErr, "handler context is detached from the publisher")
}

// Test 8: 非同步處理器的錯誤與 panic 被記錄
func TestAsyncRunner_LogsFailures(t *testing.T) {
	// Arrange
	core, logs := observer.New(zapcore.ErrorLevel)
	runner := NewAsyncRunner(zap.New(core))
	failing := runner.Wrap(func(ctx context.Context, event shared.DomainEvent) error {
		return errors.New("smtp down")
	})
	panicking := runner.Wrap(func(ctx context.Context, event shared.DomainEvent) error {
		panic("nil map")
	})

	// Act
	require.NoError(t, failing(context.Background(), paidEvent()))
	require.NoError(t, panicking(context.Background(), paidEvent()))
	require.NoError(t, runner.Drain(context.Background()))

	// Assert
	assert.Equal(t, 1, logs.FilterMessage("async event handler failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("async event handler panicked").Len())
}

// Test 9: Drain 在 context 到期時返回錯誤
func TestAsyncRunner_Drain_Timeout(t *testing.T) {
	// Arrange
	runner := NewAsyncRunner(nil)
	block := make(chan struct{})
	defer close(block)
	handler := runner.Wrap(func(ctx context.Context, event shared.DomainEvent) error {
		<-block
		return nil
	})
	require.NoError(t, handler(context.Background(), paidEvent()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Act
	err := runner.Drain(ctx)

	// Assert
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
