package settlement

import (
	"context"

	"go.uber.org/zap"

	loyaltyapp "github.com/jackyeh168/order_settlement/src/internal/application/loyalty"
	"github.com/jackyeh168/order_settlement/src/internal/domain/order"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// LoyaltyProcessor order.paid.verified → 積分結算
type LoyaltyProcessor struct {
	settler LoyaltySettler
	logger  *zap.Logger
}

// NewLoyaltyProcessor 創建處理器
func NewLoyaltyProcessor(settler LoyaltySettler, logger *zap.Logger) *LoyaltyProcessor {
	return &LoyaltyProcessor{settler: settler, logger: logger.Named("loyalty")}
}

// HandlePaid 處理付款確認事件；失敗只記錄
func (p *LoyaltyProcessor) HandlePaid(ctx context.Context, event shared.DomainEvent) error {
	paid, ok := event.(order.PaidVerified)
	if !ok {
		return nil
	}

	result, err := p.settler.Execute(ctx, loyaltyapp.SettleOnPaidCommand{
		OrderID:          paid.OrderID,
		UserID:           paid.UserID,
		SubtotalCents:    paid.AmountCents,
		RedeemValueCents: paid.RedeemValueCents,
	})
	if err != nil {
		p.logger.Error("loyalty settlement failed",
			zap.String("order_id", paid.OrderID),
			zap.Error(err),
		)
		return nil
	}
	if result.Skipped {
		return nil
	}

	p.logger.Info("loyalty settled",
		zap.String("order_id", paid.OrderID),
		zap.String("account_id", result.AccountID),
		zap.Int64("earned_micro", result.EarnedMicro),
		zap.Int64("redeemed_micro", result.RedeemedMicro),
		zap.Bool("already_settled", result.AlreadySettled),
		zap.String("tier", result.Tier),
	)
	return nil
}
