package coupon

import (
	"time"

	"gorm.io/gorm"

	"github.com/jackyeh168/order_settlement/src/internal/domain/coupon"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
	"github.com/jackyeh168/order_settlement/src/internal/infrastructure/persistence/gormutil"
)

// IssuanceRepository 發放紀錄倉儲實現（GORM）
type IssuanceRepository struct {
	db *gorm.DB
}

// NewIssuanceRepository 創建發放紀錄倉儲
func NewIssuanceRepository(db *gorm.DB) *IssuanceRepository {
	return &IssuanceRepository{db: db}
}

var _ coupon.IssuanceRepository = (*IssuanceRepository)(nil)

// Create 寫入發放紀錄
//
// 錯誤處理：
// - (program_id, user_id, occurrence_key) 唯一約束違反 → ErrDuplicateIssuance
func (r *IssuanceRepository) Create(tx shared.TransactionContext, issuance *coupon.Issuance) error {
	db, err := gormutil.TxDB(tx)
	if err != nil {
		return err
	}

	if err := db.Create(issuanceToModel(issuance)).Error; err != nil {
		if gormutil.IsUniqueConstraintError(err) {
			return coupon.ErrDuplicateIssuance.WithContext(
				"program_id", issuance.ProgramID().String(),
				"user_id", issuance.UserID().String(),
				"occurrence_key", issuance.OccurrenceKey(),
			)
		}
		return err
	}
	return nil
}

// CountForUser 使用者在活動標籤下的發放次數
func (r *IssuanceRepository) CountForUser(tx shared.TransactionContext, campaignTag string, userID coupon.UserID, since *time.Time) (int, error) {
	query := gormutil.DB(tx, r.db).Model(&CouponIssuanceModel{}).
		Where("campaign_tag = ? AND user_id = ?", campaignTag, userID.String())
	if since != nil {
		query = query.Where("issued_at >= ?", *since)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// Exists 檢查同一次觸發是否已發放
func (r *IssuanceRepository) Exists(tx shared.TransactionContext, programID coupon.ProgramID, userID coupon.UserID, occurrenceKey string) (bool, error) {
	var count int64
	result := gormutil.DB(tx, r.db).Model(&CouponIssuanceModel{}).
		Where("program_id = ? AND user_id = ? AND occurrence_key = ?", programID.String(), userID.String(), occurrenceKey).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}
