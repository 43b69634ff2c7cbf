package coupon

import (
	"time"

	"gorm.io/datatypes"

	"github.com/jackyeh168/order_settlement/src/internal/domain/coupon"
)

// ===========================
// GORM Models
// ===========================

// ProgramItemJSON coupon_programs.items 的 JSON 元素
type ProgramItemJSON struct {
	TemplateID string `json:"templateId"`
	Quantity   int    `json:"quantity"`
}

// CouponProgramModel 優惠活動資料表
type CouponProgramModel struct {
	ProgramID    string                               `gorm:"column:program_id;type:varchar(36);primaryKey"`
	Name         string                               `gorm:"column:name;type:varchar(255);not null"`
	CampaignTag  string                               `gorm:"column:campaign_tag;type:varchar(64);not null;index"`
	TriggerType  string                               `gorm:"column:trigger_type;type:varchar(32);not null;index:idx_programs_trigger_status,priority:1"`
	Status       string                               `gorm:"column:status;type:varchar(16);not null;index:idx_programs_trigger_status,priority:2"`
	Items        datatypes.JSONSlice[ProgramItemJSON] `gorm:"column:items;not null"`
	PerUserLimit int                                  `gorm:"column:per_user_limit;not null;default:1"`
	TotalLimit   *int                                 `gorm:"column:total_limit"`
	IssuedCount  int                                  `gorm:"column:issued_count;not null;default:0"`
	ValidFrom    *time.Time                           `gorm:"column:valid_from"`
	ValidTo      *time.Time                           `gorm:"column:valid_to"`
	CreatedAt    time.Time                            `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time                            `gorm:"column:updated_at;not null"`
}

// TableName 指定資料表名稱
func (CouponProgramModel) TableName() string { return "coupon_programs" }

// CouponTemplateModel 優惠券模板資料表（rule 為原始 JSON）
type CouponTemplateModel struct {
	TemplateID string         `gorm:"column:template_id;type:varchar(36);primaryKey"`
	Name       string         `gorm:"column:name;type:varchar(255);not null"`
	Rule       datatypes.JSON `gorm:"column:rule;not null"`
	ValidDays  *int           `gorm:"column:valid_days"`
	CreatedAt  time.Time      `gorm:"column:created_at;not null"`
}

// TableName 指定資料表名稱
func (CouponTemplateModel) TableName() string { return "coupon_templates" }

// CouponIssuanceModel 發放紀錄資料表
//
// (program_id, user_id, occurrence_key) 唯一：同一次觸發重放時由資料庫擋下。
type CouponIssuanceModel struct {
	IssuanceID    string    `gorm:"column:issuance_id;type:varchar(36);primaryKey"`
	ProgramID     string    `gorm:"column:program_id;type:varchar(36);not null;uniqueIndex:idx_issuance_occurrence,priority:1"`
	UserID        string    `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex:idx_issuance_occurrence,priority:2;index:idx_issuance_tag_user,priority:2"`
	OccurrenceKey string    `gorm:"column:occurrence_key;type:varchar(128);not null;uniqueIndex:idx_issuance_occurrence,priority:3"`
	CampaignTag   string    `gorm:"column:campaign_tag;type:varchar(64);not null;index:idx_issuance_tag_user,priority:1"`
	Quantity      int       `gorm:"column:quantity;not null"`
	IssuedAt      time.Time `gorm:"column:issued_at;not null;index:idx_issuance_tag_user,priority:3"`
}

// TableName 指定資料表名稱
func (CouponIssuanceModel) TableName() string { return "coupon_issuances" }

// CouponModel 已發放優惠券（不可變部分）
type CouponModel struct {
	CouponID      string     `gorm:"column:coupon_id;type:varchar(36);primaryKey"`
	IssuanceID    string     `gorm:"column:issuance_id;type:varchar(36);not null;index"`
	ProgramID     string     `gorm:"column:program_id;type:varchar(36);not null;index"`
	TemplateID    string     `gorm:"column:template_id;type:varchar(36);not null"`
	Campaign      string     `gorm:"column:campaign;type:varchar(64);not null"`
	DiscountCents int64      `gorm:"column:discount_cents;not null"`
	MinSpendCents int64      `gorm:"column:min_spend_cents;not null;default:0"`
	IssuedAt      time.Time  `gorm:"column:issued_at;not null"`
	ExpiresAt     *time.Time `gorm:"column:expires_at"`
}

// TableName 指定資料表名稱
func (CouponModel) TableName() string { return "coupons" }

// UserCouponModel 優惠券持有與使用狀態
type UserCouponModel struct {
	CouponID    string     `gorm:"column:coupon_id;type:varchar(36);primaryKey"`
	UserID      string     `gorm:"column:user_id;type:varchar(36);not null;index"`
	UsedAt      *time.Time `gorm:"column:used_at"`
	UsedOrderID *string    `gorm:"column:used_order_id;type:varchar(64)"`
}

// TableName 指定資料表名稱
func (UserCouponModel) TableName() string { return "user_coupons" }

// couponRow coupons JOIN user_coupons 的查詢結果
type couponRow struct {
	CouponModel
	UserID      string
	UsedAt      *time.Time
	UsedOrderID *string
}

// ===========================
// Mapper Functions
// ===========================

func (m *CouponProgramModel) toDomain() (*coupon.CouponProgram, error) {
	programID, err := coupon.ProgramIDFromString(m.ProgramID)
	if err != nil {
		return nil, err
	}
	trigger, err := coupon.ParseTriggerType(m.TriggerType)
	if err != nil {
		return nil, err
	}
	status, err := coupon.ParseProgramStatus(m.Status)
	if err != nil {
		return nil, err
	}

	items := make([]coupon.ProgramItem, 0, len(m.Items))
	for _, item := range m.Items {
		templateID, err := coupon.TemplateIDFromString(item.TemplateID)
		if err != nil {
			return nil, coupon.ErrInvalidProgramItems.WithContext(
				"program_id", m.ProgramID,
				"template_id", item.TemplateID,
			)
		}
		items = append(items, coupon.ProgramItem{TemplateID: templateID, Quantity: item.Quantity})
	}

	return coupon.ReconstructCouponProgram(
		programID,
		m.Name,
		m.CampaignTag,
		trigger,
		items,
		m.PerUserLimit,
		m.TotalLimit,
		m.IssuedCount,
		m.ValidFrom,
		m.ValidTo,
		status,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func programToModel(p *coupon.CouponProgram) *CouponProgramModel {
	items := make(datatypes.JSONSlice[ProgramItemJSON], 0, len(p.Items()))
	for _, item := range p.Items() {
		items = append(items, ProgramItemJSON{TemplateID: item.TemplateID.String(), Quantity: item.Quantity})
	}
	return &CouponProgramModel{
		ProgramID:    p.ProgramID().String(),
		Name:         p.Name(),
		CampaignTag:  p.CampaignTag(),
		TriggerType:  string(p.TriggerType()),
		Status:       string(p.Status()),
		Items:        items,
		PerUserLimit: p.PerUserLimit(),
		TotalLimit:   p.TotalLimit(),
		IssuedCount:  p.IssuedCount(),
		ValidFrom:    p.ValidFrom(),
		ValidTo:      p.ValidTo(),
		CreatedAt:    p.CreatedAt(),
		UpdatedAt:    p.UpdatedAt(),
	}
}

func (m *CouponTemplateModel) toDomain() (*coupon.CouponTemplate, error) {
	templateID, err := coupon.TemplateIDFromString(m.TemplateID)
	if err != nil {
		return nil, err
	}
	return coupon.NewCouponTemplate(templateID, m.Name, []byte(m.Rule), m.ValidDays)
}

func templateToModel(t *coupon.CouponTemplate) *CouponTemplateModel {
	return &CouponTemplateModel{
		TemplateID: t.TemplateID().String(),
		Name:       t.Name(),
		Rule:       datatypes.JSON(t.Rule()),
		ValidDays:  t.ValidDays(),
		CreatedAt:  time.Now(),
	}
}

func issuanceToModel(i *coupon.Issuance) *CouponIssuanceModel {
	return &CouponIssuanceModel{
		IssuanceID:    i.IssuanceID().String(),
		ProgramID:     i.ProgramID().String(),
		UserID:        i.UserID().String(),
		OccurrenceKey: i.OccurrenceKey(),
		CampaignTag:   i.CampaignTag(),
		Quantity:      i.Quantity(),
		IssuedAt:      i.IssuedAt(),
	}
}

func couponToModels(c *coupon.Coupon) (CouponModel, UserCouponModel) {
	return CouponModel{
			CouponID:      c.CouponID().String(),
			IssuanceID:    c.IssuanceID().String(),
			ProgramID:     c.ProgramID().String(),
			TemplateID:    c.TemplateID().String(),
			Campaign:      c.Campaign(),
			DiscountCents: c.DiscountCents(),
			MinSpendCents: c.MinSpendCents(),
			IssuedAt:      c.IssuedAt(),
			ExpiresAt:     c.ExpiresAt(),
		}, UserCouponModel{
			CouponID:    c.CouponID().String(),
			UserID:      c.UserID().String(),
			UsedAt:      c.UsedAt(),
			UsedOrderID: c.UsedOrderID(),
		}
}

func (r *couponRow) toDomain() (*coupon.Coupon, error) {
	couponID, err := coupon.CouponIDFromString(r.CouponID)
	if err != nil {
		return nil, err
	}
	issuanceID, err := coupon.IssuanceIDFromString(r.IssuanceID)
	if err != nil {
		return nil, err
	}
	programID, err := coupon.ProgramIDFromString(r.ProgramID)
	if err != nil {
		return nil, err
	}
	templateID, err := coupon.TemplateIDFromString(r.TemplateID)
	if err != nil {
		return nil, err
	}
	userID, err := coupon.UserIDFromString(r.UserID)
	if err != nil {
		return nil, err
	}
	return coupon.ReconstructCoupon(
		couponID,
		issuanceID,
		programID,
		templateID,
		r.Campaign,
		userID,
		r.DiscountCents,
		r.MinSpendCents,
		r.IssuedAt,
		r.ExpiresAt,
		r.UsedAt,
		r.UsedOrderID,
	), nil
}
