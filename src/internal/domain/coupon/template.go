package coupon

import (
	"time"
)

// CouponTemplate 優惠券模板
//
// rule 以原始 JSON 保存，發放時才解析：
// 不合法或不支援的規則在發放時同步報錯。
type CouponTemplate struct {
	templateID TemplateID
	name       string
	rule       []byte
	validDays  *int
}

// NewCouponTemplate 建立模板
func NewCouponTemplate(templateID TemplateID, name string, rule []byte, validDays *int) (*CouponTemplate, error) {
	if templateID.IsEmpty() {
		return nil, ErrInvalidTemplateID.WithContext("reason", "template id cannot be empty")
	}
	if validDays != nil && *validDays <= 0 {
		return nil, ErrInvalidProgram.WithContext(
			"template_id", templateID.String(),
			"valid_days", *validDays,
		)
	}
	return &CouponTemplate{
		templateID: templateID,
		name:       name,
		rule:       append([]byte(nil), rule...),
		validDays:  validDays,
	}, nil
}

// TemplateID 模板 ID
func (t *CouponTemplate) TemplateID() TemplateID { return t.templateID }

// Name 模板名稱
func (t *CouponTemplate) Name() string { return t.name }

// Rule 原始規則 JSON
func (t *CouponTemplate) Rule() []byte { return t.rule }

// ValidDays 發放後有效天數（nil 表示依活動窗口）
func (t *CouponTemplate) ValidDays() *int { return t.validDays }

// ExpiryFor 計算單張券的到期時間
//
// 優先使用模板的「發放後 N 天」；否則使用活動的絕對結束時間；
// 兩者皆無時不設到期。
func (t *CouponTemplate) ExpiryFor(issuedAt time.Time, programValidTo *time.Time) *time.Time {
	if t.validDays != nil {
		expires := issuedAt.AddDate(0, 0, *t.validDays)
		return &expires
	}
	if programValidTo != nil {
		expires := *programValidTo
		return &expires
	}
	return nil
}
