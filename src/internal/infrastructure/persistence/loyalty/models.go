package loyalty

import (
	"time"

	"github.com/jackyeh168/order_settlement/src/internal/domain/loyalty"
)

// ===========================
// GORM Models
// ===========================

// LoyaltyAccountModel 積分帳戶資料表
//
// - user_id 唯一：每位顧客只有一個帳戶，get-or-create 依賴此約束
// - points_micro 為定點整數（1 點 = 1,000,000）
type LoyaltyAccountModel struct {
	AccountID          string    `gorm:"column:account_id;type:varchar(36);primaryKey"`
	UserID             string    `gorm:"column:user_id;type:varchar(36);uniqueIndex;not null"`
	PointsMicro        int64     `gorm:"column:points_micro;not null;default:0"`
	Tier               string    `gorm:"column:tier;type:varchar(16);not null"`
	LifetimeSpendCents int64     `gorm:"column:lifetime_spend_cents;not null;default:0"`
	CreatedAt          time.Time `gorm:"column:created_at;not null"`
	UpdatedAt          time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定資料表名稱
func (LoyaltyAccountModel) TableName() string {
	return "loyalty_accounts"
}

// LedgerEntryModel 積分帳目資料表（append-only）
//
// 唯一約束：
// - (order_id, type)：訂單驅動帳目的冪等鍵；NULL order_id 不參與比較
// - (account_id, external_ref)：儲值與人工調整的呼叫端冪等鍵
type LedgerEntryModel struct {
	EntryID           string    `gorm:"column:entry_id;type:varchar(36);primaryKey"`
	AccountID         string    `gorm:"column:account_id;type:varchar(36);not null;index;uniqueIndex:idx_ledger_account_external_ref,priority:1"`
	OrderID           *string   `gorm:"column:order_id;type:varchar(36);uniqueIndex:idx_ledger_order_type,priority:1"`
	Type              string    `gorm:"column:type;type:varchar(32);not null;uniqueIndex:idx_ledger_order_type,priority:2"`
	DeltaMicro        int64     `gorm:"column:delta_micro;not null"`
	BalanceAfterMicro int64     `gorm:"column:balance_after_micro;not null"`
	Note              string    `gorm:"column:note;type:varchar(255)"`
	ExternalRef       *string   `gorm:"column:external_ref;type:varchar(128);uniqueIndex:idx_ledger_account_external_ref,priority:2"`
	CreatedAt         time.Time `gorm:"column:created_at;not null;index"`
}

// TableName 指定資料表名稱
func (LedgerEntryModel) TableName() string {
	return "loyalty_ledger_entries"
}

// ===========================
// Mapper Functions
// ===========================

func (m *LoyaltyAccountModel) toDomain() (*loyalty.LoyaltyAccount, error) {
	accountID, err := loyalty.AccountIDFromString(m.AccountID)
	if err != nil {
		return nil, err
	}
	userID, err := loyalty.UserIDFromString(m.UserID)
	if err != nil {
		return nil, err
	}
	return loyalty.ReconstructLoyaltyAccount(
		accountID,
		userID,
		m.PointsMicro,
		m.Tier,
		m.LifetimeSpendCents,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func accountToModel(a *loyalty.LoyaltyAccount) *LoyaltyAccountModel {
	return &LoyaltyAccountModel{
		AccountID:          a.AccountID().String(),
		UserID:             a.UserID().String(),
		PointsMicro:        a.Points().Int64(),
		Tier:               a.Tier().String(),
		LifetimeSpendCents: a.LifetimeSpend().Int64(),
		CreatedAt:          a.CreatedAt(),
		UpdatedAt:          a.UpdatedAt(),
	}
}

func (m *LedgerEntryModel) toDomain() (*loyalty.LedgerEntry, error) {
	entryID, err := loyalty.EntryIDFromString(m.EntryID)
	if err != nil {
		return nil, err
	}
	accountID, err := loyalty.AccountIDFromString(m.AccountID)
	if err != nil {
		return nil, err
	}
	entryType, err := loyalty.ParseEntryType(m.Type)
	if err != nil {
		return nil, err
	}

	var orderID *loyalty.OrderID
	if m.OrderID != nil {
		parsed, err := loyalty.OrderIDFromString(*m.OrderID)
		if err != nil {
			return nil, err
		}
		orderID = &parsed
	}

	return loyalty.ReconstructLedgerEntry(
		entryID,
		accountID,
		orderID,
		entryType,
		loyalty.MicroPoints(m.DeltaMicro),
		loyalty.MicroPoints(m.BalanceAfterMicro),
		m.Note,
		m.ExternalRef,
		m.CreatedAt,
	)
}

func entryToModel(e *loyalty.LedgerEntry) *LedgerEntryModel {
	var orderID *string
	if e.OrderID() != nil {
		s := e.OrderID().String()
		orderID = &s
	}
	return &LedgerEntryModel{
		EntryID:           e.EntryID().String(),
		AccountID:         e.AccountID().String(),
		OrderID:           orderID,
		Type:              string(e.Type()),
		DeltaMicro:        e.Delta().Int64(),
		BalanceAfterMicro: e.BalanceAfter().Int64(),
		Note:              e.Note(),
		ExternalRef:       e.ExternalRef(),
		CreatedAt:         e.CreatedAt(),
	}
}

func entriesToDomain(models []LedgerEntryModel) ([]*loyalty.LedgerEntry, error) {
	entries := make([]*loyalty.LedgerEntry, 0, len(models))
	for i := range models {
		e, err := models[i].toDomain()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
