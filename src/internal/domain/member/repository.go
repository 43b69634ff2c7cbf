package member

import (
	"time"

	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// MemberRepository 會員倉儲接口
//
// 事務管理策略：
//   - 寫操作（Save）的 tx 必須 non-nil
//   - 讀操作的 tx 可為 nil；non-nil 時參與當前事務
//
// FindByXXX() 找不到時返回 ErrMemberNotFound。
type MemberRepository interface {
	// Save 保存會員（新增或更新，基於 MemberID）
	// 電子郵件唯一性由資料庫約束保證，衝突時返回 ErrEmailAlreadyUsed
	Save(tx shared.TransactionContext, member *Member) error

	FindByMemberID(tx shared.TransactionContext, id MemberID) (*Member, error)

	FindByEmail(tx shared.TransactionContext, email Email) (*Member, error)

	// ExistsByEmail 檢查電子郵件是否已註冊（COUNT 查詢）
	ExistsByEmail(tx shared.TransactionContext, email Email) (bool, error)

	// FindActiveByBirthMonth 查詢生日在指定月份的 ACTIVE 會員（生日排程使用）
	FindActiveByBirthMonth(tx shared.TransactionContext, month time.Month) ([]*Member, error)
}
