package coupon

import (
	"time"
)

// Status 優惠券狀態（EXPIRED 由時間計算，不是儲存的轉換）
type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusUsed      Status = "USED"
	StatusExpired   Status = "EXPIRED"
)

// Coupon 已發放給使用者的優惠券（含使用狀態）
//
// 持久化時拆為 coupons（券本身）與 user_coupons（使用狀態）兩張表。
type Coupon struct {
	couponID      CouponID
	issuanceID    IssuanceID
	programID     ProgramID
	templateID    TemplateID
	campaign      string
	userID        UserID
	discountCents int64
	minSpendCents int64
	issuedAt      time.Time
	expiresAt     *time.Time
	usedAt        *time.Time
	usedOrderID   *string
}

func newCoupon(issuance *Issuance, templateID TemplateID, rule AmountRule, expiresAt *time.Time) *Coupon {
	return &Coupon{
		couponID:      NewCouponID(),
		issuanceID:    issuance.IssuanceID(),
		programID:     issuance.ProgramID(),
		templateID:    templateID,
		campaign:      issuance.CampaignTag(),
		userID:        issuance.UserID(),
		discountCents: rule.DiscountCents,
		minSpendCents: rule.MinSpendCents,
		issuedAt:      issuance.IssuedAt(),
		expiresAt:     expiresAt,
	}
}

// ReconstructCoupon 從持久化存儲重建優惠券
func ReconstructCoupon(
	couponID CouponID,
	issuanceID IssuanceID,
	programID ProgramID,
	templateID TemplateID,
	campaign string,
	userID UserID,
	discountCents int64,
	minSpendCents int64,
	issuedAt time.Time,
	expiresAt *time.Time,
	usedAt *time.Time,
	usedOrderID *string,
) *Coupon {
	return &Coupon{
		couponID:      couponID,
		issuanceID:    issuanceID,
		programID:     programID,
		templateID:    templateID,
		campaign:      campaign,
		userID:        userID,
		discountCents: discountCents,
		minSpendCents: minSpendCents,
		issuedAt:      issuedAt,
		expiresAt:     expiresAt,
		usedAt:        usedAt,
		usedOrderID:   usedOrderID,
	}
}

func (c *Coupon) CouponID() CouponID     { return c.couponID }
func (c *Coupon) IssuanceID() IssuanceID { return c.issuanceID }
func (c *Coupon) ProgramID() ProgramID   { return c.programID }
func (c *Coupon) TemplateID() TemplateID { return c.templateID }
func (c *Coupon) Campaign() string       { return c.campaign }
func (c *Coupon) UserID() UserID         { return c.userID }
func (c *Coupon) DiscountCents() int64   { return c.discountCents }
func (c *Coupon) MinSpendCents() int64   { return c.minSpendCents }
func (c *Coupon) IssuedAt() time.Time    { return c.issuedAt }
func (c *Coupon) ExpiresAt() *time.Time  { return c.expiresAt }
func (c *Coupon) UsedAt() *time.Time     { return c.usedAt }
func (c *Coupon) UsedOrderID() *string   { return c.usedOrderID }

// StatusAt 計算指定時間的狀態
func (c *Coupon) StatusAt(now time.Time) Status {
	if c.usedAt != nil {
		return StatusUsed
	}
	if c.expiresAt != nil && !now.Before(*c.expiresAt) {
		return StatusExpired
	}
	return StatusAvailable
}

// MarkUsed 套用到訂單（AVAILABLE → USED）
func (c *Coupon) MarkUsed(userID UserID, orderID string, subtotalCents int64, now time.Time) error {
	if !c.userID.Equals(userID) {
		return ErrCouponNotOwned.WithContext("coupon_id", c.couponID.String())
	}
	if status := c.StatusAt(now); status != StatusAvailable {
		return ErrCouponNotAvailable.WithContext(
			"coupon_id", c.couponID.String(),
			"status", string(status),
		)
	}
	if subtotalCents < c.minSpendCents {
		return ErrMinimumSpendNotMet.WithContext(
			"coupon_id", c.couponID.String(),
			"min_spend_cents", c.minSpendCents,
			"subtotal_cents", subtotalCents,
		)
	}

	usedAt := now
	c.usedAt = &usedAt
	c.usedOrderID = &orderID
	return nil
}
