package coupon

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jackyeh168/order_settlement/src/internal/domain/coupon"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
	"github.com/jackyeh168/order_settlement/src/internal/infrastructure/persistence/gormutil"
)

// createBatchSize 每批 INSERT 的列數
const createBatchSize = 100

// CouponRepository 優惠券倉儲實現（GORM）
//
// 一張券拆為兩列：coupons（發放內容）與 user_coupons（持有人與使用狀態）。
type CouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 創建優惠券倉儲
func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

var _ coupon.CouponRepository = (*CouponRepository)(nil)

// CreateBatch 批量建立優惠券及其使用狀態列
func (r *CouponRepository) CreateBatch(tx shared.TransactionContext, coupons []*coupon.Coupon) error {
	if len(coupons) == 0 {
		return nil
	}
	db, err := gormutil.TxDB(tx)
	if err != nil {
		return err
	}

	couponModels := make([]CouponModel, 0, len(coupons))
	stateModels := make([]UserCouponModel, 0, len(coupons))
	for _, c := range coupons {
		cm, um := couponToModels(c)
		couponModels = append(couponModels, cm)
		stateModels = append(stateModels, um)
	}

	if err := db.CreateInBatches(couponModels, createBatchSize).Error; err != nil {
		return err
	}
	return db.CreateInBatches(stateModels, createBatchSize).Error
}

// FindByIDForUpdate 讀取優惠券並鎖定其使用狀態列
func (r *CouponRepository) FindByIDForUpdate(tx shared.TransactionContext, couponID coupon.CouponID) (*coupon.Coupon, error) {
	db, err := gormutil.TxDB(tx)
	if err != nil {
		return nil, err
	}

	var state UserCouponModel
	result := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("coupon_id = ?", couponID.String()).
		Limit(1).
		Find(&state)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, coupon.ErrCouponNotFound.WithContext("coupon_id", couponID.String())
	}

	rows, err := r.selectRows(db.Where("coupons.coupon_id = ?", couponID.String()))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, coupon.ErrCouponNotFound.WithContext("coupon_id", couponID.String())
	}
	return rows[0], nil
}

// FindByUser 使用者持有的所有優惠券（依發放時間排序）
func (r *CouponRepository) FindByUser(tx shared.TransactionContext, userID coupon.UserID) ([]*coupon.Coupon, error) {
	db := gormutil.DB(tx, r.db)
	return r.selectRows(db.Where("user_coupons.user_id = ?", userID.String()).Order("coupons.issued_at ASC"))
}

func (r *CouponRepository) selectRows(query *gorm.DB) ([]*coupon.Coupon, error) {
	var rows []couponRow
	err := query.Table("coupons").
		Select("coupons.*, user_coupons.user_id, user_coupons.used_at, user_coupons.used_order_id").
		Joins("JOIN user_coupons ON user_coupons.coupon_id = coupons.coupon_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	coupons := make([]*coupon.Coupon, 0, len(rows))
	for i := range rows {
		c, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	return coupons, nil
}

// MarkUsed 寫回使用狀態
//
// 只更新尚未使用的列；並發核銷時後到者得到 ErrCouponNotAvailable。
func (r *CouponRepository) MarkUsed(tx shared.TransactionContext, c *coupon.Coupon) error {
	db, err := gormutil.TxDB(tx)
	if err != nil {
		return err
	}

	result := db.Model(&UserCouponModel{}).
		Where("coupon_id = ? AND used_at IS NULL", c.CouponID().String()).
		Updates(map[string]interface{}{
			"used_at":       c.UsedAt(),
			"used_order_id": c.UsedOrderID(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return coupon.ErrCouponNotAvailable.WithContext("coupon_id", c.CouponID().String())
	}
	return nil
}
