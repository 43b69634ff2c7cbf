package coupon

import (
	"context"
	"fmt"
	"time"

	"github.com/jackyeh168/order_settlement/src/internal/domain/coupon"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// RedeemCouponCommand 結帳時套用優惠券
type RedeemCouponCommand struct {
	CouponID      string
	UserID        string
	OrderID       string
	SubtotalCents int64
}

// RedeemCouponResult 套用結果
type RedeemCouponResult struct {
	CouponID      string
	DiscountCents int64
}

// RedeemCouponUseCase AVAILABLE → USED
type RedeemCouponUseCase struct {
	coupons   coupon.CouponRepository
	txManager shared.TransactionManager
	now       func() time.Time
}

// NewRedeemCouponUseCase 創建 Use Case 實例
func NewRedeemCouponUseCase(coupons coupon.CouponRepository, txManager shared.TransactionManager) *RedeemCouponUseCase {
	return &RedeemCouponUseCase{coupons: coupons, txManager: txManager, now: time.Now}
}

// Execute 執行套用
//
// 錯誤：ErrCouponNotFound、ErrCouponNotOwned、ErrCouponNotAvailable（已使用或過期）、
// ErrMinimumSpendNotMet
func (uc *RedeemCouponUseCase) Execute(ctx context.Context, cmd RedeemCouponCommand) (*RedeemCouponResult, error) {
	couponID, err := coupon.CouponIDFromString(cmd.CouponID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse coupon ID: %w", err)
	}
	userID, err := coupon.UserIDFromString(cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user ID: %w", err)
	}

	var result *RedeemCouponResult
	err = uc.txManager.InTransaction(ctx, func(tx shared.TransactionContext) error {
		c, err := uc.coupons.FindByIDForUpdate(tx, couponID)
		if err != nil {
			return err
		}
		if err := c.MarkUsed(userID, cmd.OrderID, cmd.SubtotalCents, uc.now()); err != nil {
			return err
		}
		if err := uc.coupons.MarkUsed(tx, c); err != nil {
			return fmt.Errorf("failed to mark coupon used: %w", err)
		}
		result = &RedeemCouponResult{
			CouponID:      c.CouponID().String(),
			DiscountCents: c.DiscountCents(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
