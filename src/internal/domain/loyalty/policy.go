package loyalty

import (
	"github.com/shopspring/decimal"
)

// ===========================
// SettlementPolicy 領域服務
// ===========================

// SettlementPolicy 結算換算規則
//
// 無狀態、可在多個 goroutine 共享。所有換算使用 decimal 精確計算，
// 最後一步才四捨五入為 MicroPoints，永遠不會把非整數寫入 ledger。
//
// 公式：
//   earned = (netCents / 100) × earnRatePerDollar × tierMultiplier[tier]
//   redeem = (redeemCents / 100) / redeemDollarsPerPoint
type SettlementPolicy struct {
	earnRatePerDollar     decimal.Decimal
	redeemDollarsPerPoint decimal.Decimal
	tiers                 TierPolicy
}

// NewSettlementPolicy 建構結算規則（checked）
func NewSettlementPolicy(
	earnRatePerDollar decimal.Decimal,
	redeemDollarsPerPoint decimal.Decimal,
	tiers TierPolicy,
) (SettlementPolicy, error) {
	if earnRatePerDollar.IsNegative() {
		return SettlementPolicy{}, ErrInvalidPolicy.WithContext(
			"earn_rate_per_dollar", earnRatePerDollar.String(),
		)
	}
	if !redeemDollarsPerPoint.IsPositive() {
		return SettlementPolicy{}, ErrInvalidPolicy.WithContext(
			"redeem_dollars_per_point", redeemDollarsPerPoint.String(),
		)
	}
	return SettlementPolicy{
		earnRatePerDollar:     earnRatePerDollar,
		redeemDollarsPerPoint: redeemDollarsPerPoint,
		tiers:                 tiers,
	}, nil
}

// Tiers 返回等級規則
func (p SettlementPolicy) Tiers() TierPolicy {
	return p.tiers
}

// EarnedMicro 計算訂單實付金額可獲得的積分
func (p SettlementPolicy) EarnedMicro(netSubtotal Cents, tier Tier) MicroPoints {
	if netSubtotal <= 0 {
		return 0
	}
	points := netSubtotal.Dollars().
		Mul(p.earnRatePerDollar).
		Mul(p.tiers.Multiplier(tier))
	return MicroPointsFromPoints(points)
}

// RedeemMicro 將折抵金額換算為需扣除的積分
func (p SettlementPolicy) RedeemMicro(redeemValue Cents) MicroPoints {
	if redeemValue <= 0 {
		return 0
	}
	return MicroPointsFromPoints(redeemValue.Dollars().Div(p.redeemDollarsPerPoint))
}
