package loyalty

import "github.com/jackyeh168/order_settlement/src/internal/domain/shared"

// ===========================
// Repository 介面
// ===========================

// AccountRepository 積分帳戶倉儲介面
//
// 加鎖方法（...ForUpdate）必須在事務中調用（tx != nil），
// 實作以 SELECT ... FOR UPDATE 取得行鎖，直到事務結束才釋放。
// 這是同一帳戶並發結算的唯一序列化點；不使用應用層 mutex，
// 因為結算可能在多個進程實例上同時執行。
type AccountRepository interface {
	// EnsureForUpdate 取得或建立使用者的帳戶並加鎖（get-or-create）
	//
	// 並發建立時依賴 user_id 唯一約束：輸掉競爭的一方改為讀取並加鎖已存在的列。
	EnsureForUpdate(tx shared.TransactionContext, userID UserID) (*LoyaltyAccount, error)

	// FindByIDForUpdate 依帳戶 ID 讀取並加鎖
	// 返回：ErrAccountNotFound
	FindByIDForUpdate(tx shared.TransactionContext, accountID AccountID) (*LoyaltyAccount, error)

	// FindByUserID 依使用者讀取（不加鎖）
	// 返回：ErrAccountNotFound
	FindByUserID(tx shared.TransactionContext, userID UserID) (*LoyaltyAccount, error)

	// Update 寫回餘額、等級、累積消費
	Update(tx shared.TransactionContext, account *LoyaltyAccount) error
}

// LedgerRepository 帳目倉儲介面（append-only）
//
// 冪等性來自 (order_id, type) 與 external_ref 的唯一約束，而非鎖。
type LedgerRepository interface {
	// Append 寫入一筆帳目
	// 錯誤：唯一約束衝突 → ErrDuplicateLedgerEntry
	Append(tx shared.TransactionContext, entry *LedgerEntry) error

	// ExistsForOrder 檢查 (orderID, type) 是否已存在
	ExistsForOrder(tx shared.TransactionContext, orderID OrderID, entryType EntryType) (bool, error)

	// FindByOrder 返回訂單的所有帳目（依建立時間排序）
	FindByOrder(tx shared.TransactionContext, orderID OrderID) ([]*LedgerEntry, error)

	// FindByAccount 返回帳戶的所有帳目（依建立時間排序）
	FindByAccount(tx shared.TransactionContext, accountID AccountID) ([]*LedgerEntry, error)

	// FindByExternalRef 依呼叫端冪等鍵查找（找不到返回 nil, nil）
	FindByExternalRef(tx shared.TransactionContext, accountID AccountID, externalRef string) (*LedgerEntry, error)

	// SumDeltas 帳戶所有帳目 delta 的總和（用於對帳）
	SumDeltas(tx shared.TransactionContext, accountID AccountID) (MicroPoints, error)
}
