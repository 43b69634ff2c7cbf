package loyalty

import (
	"github.com/shopspring/decimal"
)

// ===========================
// Tier 會員等級
// ===========================

// Tier 會員等級（由累積消費決定）
type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

// rank 等級排序（數值越大等級越高）
func (t Tier) rank() int {
	switch t {
	case TierBronze:
		return 0
	case TierSilver:
		return 1
	case TierGold:
		return 2
	case TierPlatinum:
		return 3
	}
	return -1
}

// IsValid 是否為已知等級
func (t Tier) IsValid() bool {
	return t.rank() >= 0
}

// IsAbove 是否高於另一等級
func (t Tier) IsAbove(other Tier) bool {
	return t.rank() > other.rank()
}

// String 實現 fmt.Stringer
func (t Tier) String() string {
	return string(t)
}

// ParseTier 從字串解析等級
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if !t.IsValid() {
		return "", ErrInvalidTier.WithContext("tier", s)
	}
	return t, nil
}

// ===========================
// TierPolicy 等級規則
// ===========================

// TierPolicy 等級門檻與積分倍率
//
// 不變條件：0 < Silver < Gold < Platinum（單位：分）
type TierPolicy struct {
	silverCents   Cents
	goldCents     Cents
	platinumCents Cents
	multipliers   map[Tier]decimal.Decimal
}

// NewTierPolicy 建構等級規則（checked）
//
// multipliers 必須涵蓋所有等級且為正數。
func NewTierPolicy(silver, gold, platinum Cents, multipliers map[Tier]decimal.Decimal) (TierPolicy, error) {
	if silver <= 0 || gold <= silver || platinum <= gold {
		return TierPolicy{}, ErrInvalidPolicy.WithContext(
			"silver", silver.Int64(),
			"gold", gold.Int64(),
			"platinum", platinum.Int64(),
			"reason", "thresholds must be positive and strictly ascending",
		)
	}

	copied := make(map[Tier]decimal.Decimal, 4)
	for _, tier := range []Tier{TierBronze, TierSilver, TierGold, TierPlatinum} {
		m, ok := multipliers[tier]
		if !ok || !m.IsPositive() {
			return TierPolicy{}, ErrInvalidPolicy.WithContext(
				"tier", tier.String(),
				"reason", "multiplier missing or not positive",
			)
		}
		copied[tier] = m
	}

	return TierPolicy{
		silverCents:   silver,
		goldCents:     gold,
		platinumCents: platinum,
		multipliers:   copied,
	}, nil
}

// Resolve 依累積消費計算等級（純函數）
func (p TierPolicy) Resolve(lifetimeSpend Cents) Tier {
	switch {
	case lifetimeSpend >= p.platinumCents:
		return TierPlatinum
	case lifetimeSpend >= p.goldCents:
		return TierGold
	case lifetimeSpend >= p.silverCents:
		return TierSilver
	default:
		return TierBronze
	}
}

// Multiplier 返回等級的積分倍率（未知等級視為 1）
func (p TierPolicy) Multiplier(t Tier) decimal.Decimal {
	if m, ok := p.multipliers[t]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}
