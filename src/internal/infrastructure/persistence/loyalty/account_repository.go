package loyalty

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jackyeh168/order_settlement/src/internal/domain/loyalty"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
	"github.com/jackyeh168/order_settlement/src/internal/infrastructure/persistence/gormutil"
)

// AccountRepository 積分帳戶倉儲實現（GORM）
//
// 行鎖使用 SELECT ... FOR UPDATE（clause.Locking）。
// SQLite 方言會忽略 FOR UPDATE，單一寫入者的特性讓事務本身已經序列化。
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 創建積分帳戶倉儲
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

var _ loyalty.AccountRepository = (*AccountRepository)(nil)

// EnsureForUpdate 取得或建立帳戶並加鎖
//
// 1. INSERT ... ON CONFLICT (user_id) DO NOTHING
// 2. SELECT ... WHERE user_id = ? FOR UPDATE
//
// 並發建立時輸掉競爭的一方不會報錯，而是在第 2 步等待並讀到贏家的列。
func (r *AccountRepository) EnsureForUpdate(tx shared.TransactionContext, userID loyalty.UserID) (*loyalty.LoyaltyAccount, error) {
	db, err := gormutil.TxDB(tx)
	if err != nil {
		return nil, err
	}

	fresh, err := loyalty.NewLoyaltyAccount(userID)
	if err != nil {
		return nil, err
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(accountToModel(fresh))
	if result.Error != nil {
		return nil, result.Error
	}

	var model LoyaltyAccountModel
	result = db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID.String()).
		First(&model)
	if result.Error != nil {
		return nil, result.Error
	}

	return model.toDomain()
}

// FindByIDForUpdate 依帳戶 ID 讀取並加鎖
func (r *AccountRepository) FindByIDForUpdate(tx shared.TransactionContext, accountID loyalty.AccountID) (*loyalty.LoyaltyAccount, error) {
	db, err := gormutil.TxDB(tx)
	if err != nil {
		return nil, err
	}

	var model LoyaltyAccountModel
	result := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_id = ?", accountID.String()).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, loyalty.ErrAccountNotFound.WithContext("account_id", accountID.String())
		}
		return nil, result.Error
	}

	return model.toDomain()
}

// FindByUserID 依使用者讀取（不加鎖）
func (r *AccountRepository) FindByUserID(tx shared.TransactionContext, userID loyalty.UserID) (*loyalty.LoyaltyAccount, error) {
	db := gormutil.DB(tx, r.db)

	var model LoyaltyAccountModel
	result := db.Where("user_id = ?", userID.String()).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, loyalty.ErrAccountNotFound.WithContext("user_id", userID.String())
		}
		return nil, result.Error
	}

	return model.toDomain()
}

// Update 寫回餘額、等級、累積消費
//
// 使用 map 更新，零值（餘額歸零）也會寫入。
func (r *AccountRepository) Update(tx shared.TransactionContext, account *loyalty.LoyaltyAccount) error {
	db, err := gormutil.TxDB(tx)
	if err != nil {
		return err
	}

	updatedAt := account.UpdatedAt()
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	result := db.Model(&LoyaltyAccountModel{}).
		Where("account_id = ?", account.AccountID().String()).
		Updates(map[string]interface{}{
			"points_micro":         account.Points().Int64(),
			"tier":                 account.Tier().String(),
			"lifetime_spend_cents": account.LifetimeSpend().Int64(),
			"updated_at":           updatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return loyalty.ErrAccountNotFound.WithContext("account_id", account.AccountID().String())
	}
	return nil
}
