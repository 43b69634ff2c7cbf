package coupon

import (
	"time"

	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// ProgramRepository 活動倉儲介面
type ProgramRepository interface {
	// FindByIDForUpdate 以 SELECT ... FOR UPDATE 讀取活動，序列化 issuedCount 的讀-改-寫
	FindByIDForUpdate(tx shared.TransactionContext, programID ProgramID) (*CouponProgram, error)

	FindByID(tx shared.TransactionContext, programID ProgramID) (*CouponProgram, error)

	// FindActiveByTrigger 查詢指定觸發類型的所有 ACTIVE 活動
	FindActiveByTrigger(tx shared.TransactionContext, triggerType TriggerType) ([]*CouponProgram, error)

	Create(tx shared.TransactionContext, program *CouponProgram) error

	// UpdateIssuedCount 寫回 issuedCount（只增不減）
	UpdateIssuedCount(tx shared.TransactionContext, program *CouponProgram) error
}

// TemplateRepository 優惠券模板倉儲介面
type TemplateRepository interface {
	Create(tx shared.TransactionContext, template *CouponTemplate) error

	// FindByIDs 批量讀取模板，缺少的模板不會出現在結果中
	FindByIDs(tx shared.TransactionContext, ids []TemplateID) (map[TemplateID]*CouponTemplate, error)
}

// IssuanceRepository 發放紀錄倉儲介面
type IssuanceRepository interface {
	// Create 寫入發放紀錄
	// (program, user, occurrenceKey) 重複時返回 ErrDuplicateIssuance
	Create(tx shared.TransactionContext, issuance *Issuance) error

	// CountForUser 使用者在活動標籤下的發放次數，since 非 nil 時只計算之後的紀錄
	CountForUser(tx shared.TransactionContext, campaignTag string, userID UserID, since *time.Time) (int, error)

	Exists(tx shared.TransactionContext, programID ProgramID, userID UserID, occurrenceKey string) (bool, error)
}

// CouponRepository 優惠券倉儲介面
type CouponRepository interface {
	// CreateBatch 批量建立優惠券及其使用狀態列
	CreateBatch(tx shared.TransactionContext, coupons []*Coupon) error

	FindByIDForUpdate(tx shared.TransactionContext, couponID CouponID) (*Coupon, error)

	FindByUser(tx shared.TransactionContext, userID UserID) ([]*Coupon, error)

	// MarkUsed 寫回使用狀態
	MarkUsed(tx shared.TransactionContext, coupon *Coupon) error
}
