package coupon

import (
	"time"
)

// ===========================
// CouponProgram 聚合根
// ===========================

// ProgramItem 一次發放中單一模板的張數
type ProgramItem struct {
	TemplateID TemplateID
	Quantity   int
}

// CouponProgram 優惠活動
//
// 不變條件：
// - items 非空，每項張數 > 0
// - perUserLimit >= 1（每位使用者可被發放的次數）
// - issuedCount 只增不減，且 totalLimit 設定時 issuedCount <= totalLimit
//
// issuedCount 的遞增必須與券的建立在同一事務中，並先對活動列加鎖。
type CouponProgram struct {
	programID    ProgramID
	name         string
	campaignTag  string
	triggerType  TriggerType
	items        []ProgramItem
	perUserLimit int
	totalLimit   *int
	issuedCount  int
	validFrom    *time.Time
	validTo      *time.Time
	status       ProgramStatus
	createdAt    time.Time
	updatedAt    time.Time
}

// NewCouponProgram 建立新活動（ACTIVE、尚未發放）
func NewCouponProgram(
	name string,
	campaignTag string,
	triggerType TriggerType,
	items []ProgramItem,
	perUserLimit int,
	totalLimit *int,
	validFrom *time.Time,
	validTo *time.Time,
) (*CouponProgram, error) {
	now := time.Now()
	return ReconstructCouponProgram(
		NewProgramID(), name, campaignTag, triggerType, items,
		perUserLimit, totalLimit, 0, validFrom, validTo, ProgramActive, now, now,
	)
}

// ReconstructCouponProgram 從持久化存儲重建活動
func ReconstructCouponProgram(
	programID ProgramID,
	name string,
	campaignTag string,
	triggerType TriggerType,
	items []ProgramItem,
	perUserLimit int,
	totalLimit *int,
	issuedCount int,
	validFrom *time.Time,
	validTo *time.Time,
	status ProgramStatus,
	createdAt time.Time,
	updatedAt time.Time,
) (*CouponProgram, error) {
	if programID.IsEmpty() {
		return nil, ErrInvalidProgramID.WithContext("reason", "program id cannot be empty")
	}
	if campaignTag == "" {
		return nil, ErrInvalidProgram.WithContext("program_id", programID.String(), "reason", "campaign tag required")
	}
	if err := validateItems(programID, items); err != nil {
		return nil, err
	}
	if perUserLimit < 1 {
		return nil, ErrInvalidProgram.WithContext("program_id", programID.String(), "per_user_limit", perUserLimit)
	}
	if totalLimit != nil && *totalLimit < 1 {
		return nil, ErrInvalidProgram.WithContext("program_id", programID.String(), "total_limit", *totalLimit)
	}
	if issuedCount < 0 {
		return nil, ErrInvalidProgram.WithContext("program_id", programID.String(), "issued_count", issuedCount)
	}
	if validFrom != nil && validTo != nil && !validTo.After(*validFrom) {
		return nil, ErrInvalidProgram.WithContext("program_id", programID.String(), "reason", "validTo must be after validFrom")
	}

	return &CouponProgram{
		programID:    programID,
		name:         name,
		campaignTag:  campaignTag,
		triggerType:  triggerType,
		items:        append([]ProgramItem(nil), items...),
		perUserLimit: perUserLimit,
		totalLimit:   totalLimit,
		issuedCount:  issuedCount,
		validFrom:    validFrom,
		validTo:      validTo,
		status:       status,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

func validateItems(programID ProgramID, items []ProgramItem) error {
	if len(items) == 0 {
		return ErrInvalidProgramItems.WithContext("program_id", programID.String(), "reason", "no items")
	}
	for i, item := range items {
		if item.TemplateID.IsEmpty() || item.Quantity <= 0 {
			return ErrInvalidProgramItems.WithContext(
				"program_id", programID.String(),
				"index", i,
				"quantity", item.Quantity,
			)
		}
	}
	return nil
}

// ===========================
// 查詢方法
// ===========================

func (p *CouponProgram) ProgramID() ProgramID       { return p.programID }
func (p *CouponProgram) Name() string               { return p.name }
func (p *CouponProgram) CampaignTag() string        { return p.campaignTag }
func (p *CouponProgram) TriggerType() TriggerType   { return p.triggerType }
func (p *CouponProgram) Items() []ProgramItem       { return append([]ProgramItem(nil), p.items...) }
func (p *CouponProgram) PerUserLimit() int          { return p.perUserLimit }
func (p *CouponProgram) TotalLimit() *int           { return p.totalLimit }
func (p *CouponProgram) IssuedCount() int           { return p.issuedCount }
func (p *CouponProgram) ValidFrom() *time.Time      { return p.validFrom }
func (p *CouponProgram) ValidTo() *time.Time        { return p.validTo }
func (p *CouponProgram) Status() ProgramStatus      { return p.status }
func (p *CouponProgram) CreatedAt() time.Time       { return p.createdAt }
func (p *CouponProgram) UpdatedAt() time.Time       { return p.updatedAt }

// QuantityPerIssuance 一次發放的總張數
func (p *CouponProgram) QuantityPerIssuance() int {
	total := 0
	for _, item := range p.items {
		total += item.Quantity
	}
	return total
}

// TemplateIDs 活動引用的所有模板
func (p *CouponProgram) TemplateIDs() []TemplateID {
	ids := make([]TemplateID, 0, len(p.items))
	for _, item := range p.items {
		ids = append(ids, item.TemplateID)
	}
	return ids
}

// ===========================
// 發放資格
// ===========================

// RejectReason 拒絕發放原因
type RejectReason string

const (
	RejectNone              RejectReason = ""
	RejectProgramInactive   RejectReason = "PROGRAM_INACTIVE"
	RejectOutsideWindow     RejectReason = "OUTSIDE_VALIDITY_WINDOW"
	RejectTotalLimitReached RejectReason = "TOTAL_LIMIT_REACHED"
	RejectPerUserLimit      RejectReason = "PER_USER_LIMIT_REACHED"
	RejectAlreadyIssued     RejectReason = "ALREADY_ISSUED"
)

// Eligibility 發放資格判斷結果（拒絕不是錯誤）
type Eligibility struct {
	Allowed bool
	Reason  RejectReason
}

func allow() Eligibility                     { return Eligibility{Allowed: true} }
func reject(reason RejectReason) Eligibility { return Eligibility{Reason: reason} }

// CanIssue 判斷本次是否可發放給使用者
//
// 參數：
//   userIssuances - 使用者在此活動標籤下已被發放的次數（生日類限當年度）
//   now - 判斷時間
//
// 檢查順序：狀態 → 有效窗口 → 活動總量 → 每人上限
func (p *CouponProgram) CanIssue(userIssuances int, now time.Time) Eligibility {
	if p.status != ProgramActive {
		return reject(RejectProgramInactive)
	}
	if p.validFrom != nil && now.Before(*p.validFrom) {
		return reject(RejectOutsideWindow)
	}
	if p.validTo != nil && !now.Before(*p.validTo) {
		return reject(RejectOutsideWindow)
	}
	if p.totalLimit != nil && p.issuedCount+p.QuantityPerIssuance() > *p.totalLimit {
		return reject(RejectTotalLimitReached)
	}
	if userIssuances >= p.perUserLimit {
		return reject(RejectPerUserLimit)
	}
	return allow()
}

// Issue 建立一次發放及其所有優惠券，並遞增 issuedCount
//
// 調用前必須已通過 CanIssue。templates 必須包含所有項目引用的模板；
// 任何模板規則不合法都會返回錯誤且不修改活動狀態。
func (p *CouponProgram) Issue(
	userID UserID,
	occurrenceKey string,
	templates map[TemplateID]*CouponTemplate,
	now time.Time,
) (*Issuance, []*Coupon, error) {
	issuance, err := NewIssuance(p.programID, userID, p.campaignTag, occurrenceKey, p.QuantityPerIssuance(), now)
	if err != nil {
		return nil, nil, err
	}

	coupons := make([]*Coupon, 0, issuance.Quantity())
	for _, item := range p.items {
		template, ok := templates[item.TemplateID]
		if !ok {
			return nil, nil, ErrTemplateNotFound.WithContext(
				"program_id", p.programID.String(),
				"template_id", item.TemplateID.String(),
			)
		}

		rule, err := ParseRedemptionRule(template.Rule())
		if err != nil {
			return nil, nil, err
		}

		for i := 0; i < item.Quantity; i++ {
			coupons = append(coupons, newCoupon(
				issuance,
				template.TemplateID(),
				rule,
				template.ExpiryFor(now, p.validTo),
			))
		}
	}

	p.issuedCount += len(coupons)
	p.updatedAt = now

	return issuance, coupons, nil
}
