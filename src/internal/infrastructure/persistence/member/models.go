package member

import (
	"time"

	"gorm.io/gorm"

	"github.com/jackyeh168/order_settlement/src/internal/domain/member"
)

// ===========================
// GORM Models
// ===========================

// MemberGORM 會員資料表模型
//
// 資料庫約束：
// - member_id: 主鍵（UUID）
// - email: 唯一索引（防止重複註冊）
// - birth_month: 冗餘欄位，生日排程依月份查詢時不需要資料庫專屬的日期函數
type MemberGORM struct {
	MemberID string `gorm:"column:member_id;type:varchar(36);primaryKey"`
	Email    string `gorm:"column:email;type:varchar(320);uniqueIndex;not null"`

	DisplayName string     `gorm:"column:display_name;type:varchar(255);not null"`
	BirthDate   *time.Time `gorm:"column:birth_date"`
	BirthMonth  *int       `gorm:"column:birth_month;index:idx_members_birth_month_status,priority:1"`
	Status      string     `gorm:"column:status;type:varchar(16);not null;index:idx_members_birth_month_status,priority:2"`

	CreatedAt time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null"`
	Version   int            `gorm:"column:version;not null;default:1"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// TableName 指定資料表名稱
func (MemberGORM) TableName() string {
	return "members"
}

// ===========================
// Mapper Functions
// ===========================

// toDomain 將 GORM 模型轉換為 Domain 模型
func (m *MemberGORM) toDomain() (*member.Member, error) {
	memberID, err := member.MemberIDFromString(m.MemberID)
	if err != nil {
		return nil, err
	}

	email, err := member.NewEmail(m.Email)
	if err != nil {
		return nil, err
	}

	var birthDate *time.Time
	if m.BirthDate != nil {
		d := m.BirthDate.UTC()
		birthDate = &d
	}

	return member.ReconstructMember(
		memberID,
		email,
		m.DisplayName,
		birthDate,
		member.Status(m.Status),
		m.CreatedAt,
		m.UpdatedAt,
		m.Version,
	)
}

// toGORM 將 Domain 模型轉換為 GORM 模型
func toGORM(m *member.Member) *MemberGORM {
	var birthMonth *int
	if bd := m.BirthDate(); bd != nil {
		month := int(bd.Month())
		birthMonth = &month
	}

	return &MemberGORM{
		MemberID:    m.MemberID().String(),
		Email:       m.Email().String(),
		DisplayName: m.DisplayName(),
		BirthDate:   m.BirthDate(),
		BirthMonth:  birthMonth,
		Status:      string(m.Status()),
		CreatedAt:   m.CreatedAt(),
		UpdatedAt:   m.UpdatedAt(),
		Version:     m.Version(),
	}
}
