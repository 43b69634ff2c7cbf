package coupon

import (
	"encoding/json"
	"strings"
)

// 規則類型
const (
	RuleTypeAmount  = "AMOUNT"
	RuleTypePercent = "PERCENT"
)

// AmountRule 固定金額折抵規則
type AmountRule struct {
	DiscountCents int64
	MinSpendCents int64
}

// ruleDocument 模板上儲存的 JSON 規則
//
// 範例：
//   {"type":"AMOUNT","discountCents":500,"minSpendCents":2000}
//   {"type":"PERCENT","percent":10}
type ruleDocument struct {
	Type          string `json:"type"`
	DiscountCents *int64 `json:"discountCents"`
	MinSpendCents *int64 `json:"minSpendCents"`
	Percent       *int64 `json:"percent"`
}

// ParseRedemptionRule 解析並驗證模板規則
//
// 只支援固定金額；百分比規則返回 ErrUnsupportedRedemptionRule。
func ParseRedemptionRule(raw []byte) (AmountRule, error) {
	var doc ruleDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return AmountRule{}, ErrInvalidRedemptionRule.WithContext(
			"reason", err.Error(),
		)
	}

	switch strings.ToUpper(doc.Type) {
	case RuleTypeAmount:
	case RuleTypePercent:
		return AmountRule{}, ErrUnsupportedRedemptionRule.WithContext(
			"type", doc.Type,
			"reason", "percentage rules cannot be issued by programs",
		)
	default:
		return AmountRule{}, ErrInvalidRedemptionRule.WithContext(
			"type", doc.Type,
		)
	}

	if doc.DiscountCents == nil || *doc.DiscountCents <= 0 {
		return AmountRule{}, ErrInvalidRedemptionRule.WithContext(
			"reason", "discountCents must be positive",
		)
	}

	rule := AmountRule{DiscountCents: *doc.DiscountCents}
	if doc.MinSpendCents != nil {
		if *doc.MinSpendCents < 0 {
			return AmountRule{}, ErrInvalidRedemptionRule.WithContext(
				"reason", "minSpendCents cannot be negative",
			)
		}
		rule.MinSpendCents = *doc.MinSpendCents
	}
	return rule, nil
}
