package settlement

import (
	"context"

	"go.uber.org/zap"

	"github.com/jackyeh168/order_settlement/src/internal/domain/order"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// FulfillmentProcessor 接單記錄與付款後派單
type FulfillmentProcessor struct {
	dispatcher Dispatcher
	guard      IdempotencyGuard
	logger     *zap.Logger
}

// NewFulfillmentProcessor 創建處理器
func NewFulfillmentProcessor(dispatcher Dispatcher, guard IdempotencyGuard, logger *zap.Logger) *FulfillmentProcessor {
	return &FulfillmentProcessor{dispatcher: dispatcher, guard: guard, logger: logger.Named("fulfillment")}
}

// HandleAccepted order.accepted 目前只記錄
func (p *FulfillmentProcessor) HandleAccepted(_ context.Context, event shared.DomainEvent) error {
	p.logger.Info("order accepted", zap.String("order_id", event.AggregateID()))
	return nil
}

// HandlePaid 每筆訂單派單一次
func (p *FulfillmentProcessor) HandlePaid(ctx context.Context, event shared.DomainEvent) error {
	paid, ok := event.(order.PaidVerified)
	if !ok {
		return nil
	}

	key := "fulfillment:dispatch:" + paid.OrderID
	acquired, err := p.guard.Acquire(ctx, key)
	if err != nil {
		p.logger.Error("dispatch guard unavailable", zap.String("order_id", paid.OrderID), zap.Error(err))
		return nil
	}
	if !acquired {
		p.logger.Debug("dispatch already done", zap.String("order_id", paid.OrderID))
		return nil
	}

	err = p.dispatcher.Dispatch(ctx, DispatchRequest{
		OrderID:     paid.OrderID,
		AmountCents: paid.AmountCents,
		PickupTime:  paid.PickupTime,
	})
	if err != nil {
		releaseQuietly(ctx, p.guard, key, p.logger)
		p.logger.Error("dispatch failed", zap.String("order_id", paid.OrderID), zap.Error(err))
		return nil
	}

	p.logger.Info("order dispatched", zap.String("order_id", paid.OrderID))
	return nil
}

func releaseQuietly(ctx context.Context, guard IdempotencyGuard, key string, logger *zap.Logger) {
	if err := guard.Release(context.WithoutCancel(ctx), key); err != nil {
		logger.Warn("failed to release guard", zap.String("key", key), zap.Error(err))
	}
}
