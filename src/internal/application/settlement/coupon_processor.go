package settlement

import (
	"context"

	"go.uber.org/zap"

	couponapp "github.com/jackyeh168/order_settlement/src/internal/application/coupon"
	"github.com/jackyeh168/order_settlement/src/internal/domain/coupon"
	"github.com/jackyeh168/order_settlement/src/internal/domain/order"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// CouponProcessor order.paid.verified → ORDER_PAID 活動發券
//
// 冪等鍵為 "order:<orderID>"，重複投遞不會重複發放。
type CouponProcessor struct {
	trigger CouponTrigger
	logger  *zap.Logger
}

// NewCouponProcessor 創建處理器
func NewCouponProcessor(trigger CouponTrigger, logger *zap.Logger) *CouponProcessor {
	return &CouponProcessor{trigger: trigger, logger: logger.Named("coupon")}
}

// HandlePaid 處理付款確認事件
func (p *CouponProcessor) HandlePaid(ctx context.Context, event shared.DomainEvent) error {
	paid, ok := event.(order.PaidVerified)
	if !ok || !paid.HasUser() {
		return nil
	}

	result, err := p.trigger.Execute(ctx, couponapp.IssueForTriggerCommand{
		UserID:      *paid.UserID,
		TriggerType: coupon.TriggerOrderPaid,
		Reference:   paid.OrderID,
	})
	if err != nil {
		p.logger.Error("order coupon issuance failed",
			zap.String("order_id", paid.OrderID),
			zap.String("user_id", *paid.UserID),
			zap.Error(err),
		)
	}
	if result != nil && result.TotalIssued() > 0 {
		p.logger.Info("order coupons issued",
			zap.String("order_id", paid.OrderID),
			zap.Int("issued", result.TotalIssued()),
		)
	}
	return nil
}
