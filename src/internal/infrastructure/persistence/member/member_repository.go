package member

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/jackyeh168/order_settlement/src/internal/domain/member"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
	"github.com/jackyeh168/order_settlement/src/internal/infrastructure/persistence/gormutil"
)

// ===========================
// MemberRepositoryImpl
// ===========================

// MemberRepositoryImpl 會員倉儲實現（GORM）
//
// - 實作 member.MemberRepository 接口
// - 處理 Domain 與 GORM 模型轉換
// - 將 GORM 錯誤轉換為 Domain 錯誤
type MemberRepositoryImpl struct {
	db *gorm.DB
}

// NewMemberRepository 創建新的會員倉儲實例
func NewMemberRepository(db *gorm.DB) *MemberRepositoryImpl {
	return &MemberRepositoryImpl{db: db}
}

// Save 保存會員（Upsert 模式）
//
// 錯誤處理：
// - UNIQUE constraint 違反 → ErrEmailAlreadyUsed
func (r *MemberRepositoryImpl) Save(ctx shared.TransactionContext, m *member.Member) error {
	db := gormutil.DB(ctx, r.db)

	result := db.Save(toGORM(m))
	if result.Error != nil {
		if gormutil.IsUniqueConstraintError(result.Error) {
			return member.ErrEmailAlreadyUsed.WithContext(
				"email", m.Email().String(),
			)
		}
		return result.Error
	}

	return nil
}

// FindByMemberID 根據會員 ID 查找會員
func (r *MemberRepositoryImpl) FindByMemberID(ctx shared.TransactionContext, id member.MemberID) (*member.Member, error) {
	db := gormutil.DB(ctx, r.db)

	var gormModel MemberGORM
	result := db.Where("member_id = ?", id.String()).First(&gormModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, member.ErrMemberNotFound.WithContext(
				"member_id", id.String(),
			)
		}
		return nil, result.Error
	}

	return gormModel.toDomain()
}

// FindByEmail 根據電子郵件查找會員
func (r *MemberRepositoryImpl) FindByEmail(ctx shared.TransactionContext, email member.Email) (*member.Member, error) {
	db := gormutil.DB(ctx, r.db)

	var gormModel MemberGORM
	result := db.Where("email = ?", email.String()).First(&gormModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, member.ErrMemberNotFound.WithContext(
				"email", email.String(),
			)
		}
		return nil, result.Error
	}

	return gormModel.toDomain()
}

// ExistsByEmail 檢查電子郵件是否已註冊
//
// 只做 COUNT，不載入完整會員資料
func (r *MemberRepositoryImpl) ExistsByEmail(ctx shared.TransactionContext, email member.Email) (bool, error) {
	db := gormutil.DB(ctx, r.db)

	var count int64
	result := db.Model(&MemberGORM{}).Where("email = ?", email.String()).Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// FindActiveByBirthMonth 查詢生日在指定月份的 ACTIVE 會員
func (r *MemberRepositoryImpl) FindActiveByBirthMonth(ctx shared.TransactionContext, month time.Month) ([]*member.Member, error) {
	db := gormutil.DB(ctx, r.db)

	var gormModels []MemberGORM
	result := db.
		Where("birth_month = ? AND status = ?", int(month), string(member.StatusActive)).
		Order("created_at ASC").
		Find(&gormModels)
	if result.Error != nil {
		return nil, result.Error
	}

	members := make([]*member.Member, 0, len(gormModels))
	for i := range gormModels {
		m, err := gormModels[i].toDomain()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}
