package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jackyeh168/order_settlement/src/internal/application/settlement"
)

// LogDispatcher 記錄派單請求（尚未串接外部派單服務）
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher 建立只記錄的派單器
func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

var _ settlement.Dispatcher = (*LogDispatcher)(nil)

// Dispatch 記錄派單
func (d *LogDispatcher) Dispatch(ctx context.Context, req settlement.DispatchRequest) error {
	fields := []zap.Field{
		zap.String("order_id", req.OrderID),
		zap.Int64("amount_cents", req.AmountCents),
	}
	if req.PickupTime != nil {
		fields = append(fields, zap.String("pickup_time", req.PickupTime.Format(time.RFC3339)))
	}
	d.logger.Info("order dispatched", fields...)
	return nil
}
