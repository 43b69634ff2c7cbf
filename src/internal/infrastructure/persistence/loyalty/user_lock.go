package loyalty

import (
	"fmt"

	"github.com/jackyeh168/order_settlement/src/internal/domain/loyalty"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// UserLock 以積分帳戶列作為使用者的排他鎖
//
// 帳戶不存在時先建立。結算與發券共用同一把鎖，同一使用者的讀-改-寫因此序列化。
type UserLock struct {
	accounts *AccountRepository
}

// NewUserLock 創建 UserLock
func NewUserLock(accounts *AccountRepository) *UserLock {
	return &UserLock{accounts: accounts}
}

// LockUser 取得使用者帳戶列的 FOR UPDATE 鎖，直到事務結束
func (l *UserLock) LockUser(tx shared.TransactionContext, userID string) error {
	uid, err := loyalty.UserIDFromString(userID)
	if err != nil {
		return fmt.Errorf("failed to parse user ID: %w", err)
	}
	if _, err := l.accounts.EnsureForUpdate(tx, uid); err != nil {
		return err
	}
	return nil
}
