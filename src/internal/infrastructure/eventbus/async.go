package eventbus

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// AsyncRunner 把處理器改為在獨立 goroutine 中執行
//
// 發布者不等待處理器完成；處理器收到的 context 不會因發布者返回而取消。
// Drain 用於關機時等待仍在執行的處理器。
type AsyncRunner struct {
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewAsyncRunner 創建非同步執行器
func NewAsyncRunner(logger *zap.Logger) *AsyncRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AsyncRunner{logger: logger}
}

// Wrap 包裝處理器；可直接作為 settlement.HandlerWrapper 使用
func (r *AsyncRunner) Wrap(handler shared.EventHandler) shared.EventHandler {
	return func(ctx context.Context, event shared.DomainEvent) error {
		detached := context.WithoutCancel(ctx)
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			defer func() {
				if p := recover(); p != nil {
					r.logger.Error("async event handler panicked",
						zap.String("event_type", event.EventType()),
						zap.String("aggregate_id", event.AggregateID()),
						zap.String("panic", fmt.Sprint(p)),
					)
				}
			}()

			if err := handler(detached, event); err != nil {
				r.logger.Error("async event handler failed",
					zap.String("event_type", event.EventType()),
					zap.String("aggregate_id", event.AggregateID()),
					zap.Error(err),
				)
			}
		}()
		return nil
	}
}

// Drain 等待所有執行中的處理器，ctx 到期時返回 ctx.Err()
func (r *AsyncRunner) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
