package member

import (
	"time"
)

// Status 會員狀態
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusDisabled Status = "DISABLED"
)

// ParseStatus 從字串解析會員狀態
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusActive, StatusDisabled:
		return st, nil
	}
	return "", ErrInvalidMemberStatus.WithContext("status", s)
}

// ===========================
// Member Aggregate Root
// ===========================

// Member 會員聚合根
//
// 不變量（Invariants）：
// 1. 會員必須有電子郵件（通知地址）與顯示名稱
// 2. 生日可選；若有，只保留日期部分且不晚於註冊時間
// 3. 只有 ACTIVE 會員參與自動發券
// 4. CreatedAt 不可變更，UpdatedAt 在每次狀態變更時更新
type Member struct {
	memberID    MemberID
	email       Email
	displayName string
	birthDate   *time.Time
	status      Status

	createdAt time.Time
	updatedAt time.Time
	version   int // 樂觀鎖版本號
}

// NewMember 創建新會員（Checked Constructor）
//
// 業務規則：
// 1. DisplayName 不能為空
// 2. 生日正規化為 UTC 的日期，不可晚於今天
// 3. 初始狀態為 ACTIVE
func NewMember(email Email, displayName string, birthDate *time.Time) (*Member, error) {
	if email.IsZero() {
		return nil, ErrInvalidEmail.WithContext("reason", "cannot be empty")
	}
	if displayName == "" {
		return nil, ErrInvalidDisplayName
	}

	now := time.Now()

	var birth *time.Time
	if birthDate != nil {
		d := dateOnly(*birthDate)
		if d.After(now) {
			return nil, ErrInvalidBirthDate.WithContext("birth_date", d.Format(time.DateOnly))
		}
		birth = &d
	}

	return &Member{
		memberID:    NewMemberID(),
		email:       email,
		displayName: displayName,
		birthDate:   birth,
		status:      StatusActive,
		createdAt:   now,
		updatedAt:   now,
		version:     1,
	}, nil
}

// ReconstructMember 重建會員聚合（用於從資料庫載入）
func ReconstructMember(
	memberID MemberID,
	email Email,
	displayName string,
	birthDate *time.Time,
	status Status,
	createdAt time.Time,
	updatedAt time.Time,
	version int,
) (*Member, error) {
	if displayName == "" {
		return nil, ErrInvalidDisplayName
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}

	return &Member{
		memberID:    memberID,
		email:       email,
		displayName: displayName,
		birthDate:   birthDate,
		status:      status,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		version:     version,
	}, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ===========================
// Member Aggregate Behavior Methods
// ===========================

// Disable 停用會員（停用後不再參與自動發券）
func (m *Member) Disable() error {
	if m.status == StatusDisabled {
		return ErrMemberAlreadyDisabled.WithContext("member_id", m.memberID.String())
	}
	m.status = StatusDisabled
	m.updatedAt = time.Now()
	m.version++
	return nil
}

// HasBirthdayIn 生日是否落在指定月份
func (m *Member) HasBirthdayIn(month time.Month) bool {
	return m.birthDate != nil && m.birthDate.Month() == month
}

// ===========================
// Member Aggregate Getters
// ===========================

// MemberID 返回會員 ID
func (m *Member) MemberID() MemberID {
	return m.memberID
}

// Email 返回電子郵件
func (m *Member) Email() Email {
	return m.email
}

// DisplayName 返回顯示名稱
func (m *Member) DisplayName() string {
	return m.displayName
}

// BirthDate 返回生日（可能為 nil）
func (m *Member) BirthDate() *time.Time {
	return m.birthDate
}

// Status 返回狀態
func (m *Member) Status() Status {
	return m.status
}

// IsActive 是否為 ACTIVE
func (m *Member) IsActive() bool {
	return m.status == StatusActive
}

func (m *Member) CreatedAt() time.Time {
	return m.createdAt
}

func (m *Member) UpdatedAt() time.Time {
	return m.updatedAt
}

// Version 返回版本號（用於樂觀鎖）
func (m *Member) Version() int {
	return m.version
}
