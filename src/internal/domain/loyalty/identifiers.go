package loyalty

import (
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// ===========================
// 實體 ID 類型定義
// ===========================

// AccountMarker 積分帳戶 ID 標記類型
type AccountMarker struct{}

// AccountID 積分帳戶唯一標識符
type AccountID = shared.EntityID[AccountMarker]

// NewAccountID 生成新的帳戶 ID
func NewAccountID() AccountID {
	return shared.NewEntityID[AccountMarker]()
}

// AccountIDFromString 從字串解析帳戶 ID
func AccountIDFromString(s string) (AccountID, error) {
	return shared.EntityIDFromString[AccountMarker](s, ErrInvalidAccountID)
}

// UserMarker 顧客身分 ID 標記類型
//
// 與 member.MemberID 為同一 UUID，但在本 bounded context 中使用獨立類型，
// 轉換通過字串進行（Application Layer 負責）。
type UserMarker struct{}

// UserID 帳戶持有人 ID
type UserID = shared.EntityID[UserMarker]

// UserIDFromString 從字串解析使用者 ID
func UserIDFromString(s string) (UserID, error) {
	return shared.EntityIDFromString[UserMarker](s, ErrInvalidUserID)
}

// OrderMarker 訂單 ID 標記類型
type OrderMarker struct{}

// OrderID 訂單 ID（ledger 冪等鍵的一部分）
type OrderID = shared.EntityID[OrderMarker]

// OrderIDFromString 從字串解析訂單 ID
func OrderIDFromString(s string) (OrderID, error) {
	return shared.EntityIDFromString[OrderMarker](s, ErrInvalidOrderID)
}

// EntryMarker ledger entry ID 標記類型
type EntryMarker struct{}

// EntryID ledger entry ID
type EntryID = shared.EntityID[EntryMarker]

// NewEntryID 生成新的 ledger entry ID
func NewEntryID() EntryID {
	return shared.NewEntityID[EntryMarker]()
}

// EntryIDFromString 從字串解析 ledger entry ID
func EntryIDFromString(s string) (EntryID, error) {
	return shared.EntityIDFromString[EntryMarker](s, ErrInvalidEntryID)
}
