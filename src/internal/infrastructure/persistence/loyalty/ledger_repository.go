package loyalty

import (
	"errors"

	"gorm.io/gorm"

	"github.com/jackyeh168/order_settlement/src/internal/domain/loyalty"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
	"github.com/jackyeh168/order_settlement/src/internal/infrastructure/persistence/gormutil"
)

// LedgerRepository 積分帳目倉儲實現（GORM，append-only）
type LedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository 創建帳目倉儲
func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

var _ loyalty.LedgerRepository = (*LedgerRepository)(nil)

// Append 寫入一筆帳目
//
// 唯一約束衝突（(order_id, type) 或 (account_id, external_ref)）→ ErrDuplicateLedgerEntry
func (r *LedgerRepository) Append(tx shared.TransactionContext, entry *loyalty.LedgerEntry) error {
	db, err := gormutil.TxDB(tx)
	if err != nil {
		return err
	}

	if err := db.Create(entryToModel(entry)).Error; err != nil {
		if gormutil.IsUniqueConstraintError(err) {
			return loyalty.ErrDuplicateLedgerEntry.WithContext(
				"entry_type", string(entry.Type()),
				"account_id", entry.AccountID().String(),
			)
		}
		return err
	}
	return nil
}

// ExistsForOrder 檢查 (orderID, type) 是否已存在
func (r *LedgerRepository) ExistsForOrder(tx shared.TransactionContext, orderID loyalty.OrderID, entryType loyalty.EntryType) (bool, error) {
	db := gormutil.DB(tx, r.db)

	var count int64
	result := db.Model(&LedgerEntryModel{}).
		Where("order_id = ? AND type = ?", orderID.String(), string(entryType)).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// FindByOrder 返回訂單的所有帳目
func (r *LedgerRepository) FindByOrder(tx shared.TransactionContext, orderID loyalty.OrderID) ([]*loyalty.LedgerEntry, error) {
	db := gormutil.DB(tx, r.db)

	var models []LedgerEntryModel
	result := db.Where("order_id = ?", orderID.String()).
		Order("created_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return entriesToDomain(models)
}

// FindByAccount 返回帳戶的所有帳目
func (r *LedgerRepository) FindByAccount(tx shared.TransactionContext, accountID loyalty.AccountID) ([]*loyalty.LedgerEntry, error) {
	db := gormutil.DB(tx, r.db)

	var models []LedgerEntryModel
	result := db.Where("account_id = ?", accountID.String()).
		Order("created_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return entriesToDomain(models)
}

// FindByExternalRef 依呼叫端冪等鍵查找（找不到返回 nil, nil）
func (r *LedgerRepository) FindByExternalRef(tx shared.TransactionContext, accountID loyalty.AccountID, externalRef string) (*loyalty.LedgerEntry, error) {
	db := gormutil.DB(tx, r.db)

	var model LedgerEntryModel
	result := db.Where("account_id = ? AND external_ref = ?", accountID.String(), externalRef).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return model.toDomain()
}

// SumDeltas 帳戶所有帳目 delta 的總和
func (r *LedgerRepository) SumDeltas(tx shared.TransactionContext, accountID loyalty.AccountID) (loyalty.MicroPoints, error) {
	db := gormutil.DB(tx, r.db)

	var sum int64
	result := db.Model(&LedgerEntryModel{}).
		Select("COALESCE(SUM(delta_micro), 0)").
		Where("account_id = ?", accountID.String()).
		Scan(&sum)
	if result.Error != nil {
		return 0, result.Error
	}
	return loyalty.MicroPoints(sum), nil
}
