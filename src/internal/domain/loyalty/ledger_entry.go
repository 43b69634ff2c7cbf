package loyalty

import (
	"time"
)

// ===========================
// EntryType 帳目類型
// ===========================

// EntryType ledger 帳目類型
type EntryType string

const (
	EntryEarnOnPurchase     EntryType = "EARN_ON_PURCHASE"
	EntryRedeemOnOrder      EntryType = "REDEEM_ON_ORDER"
	EntryRefundReverseEarn  EntryType = "REFUND_REVERSE_EARN"
	EntryRefundReturnRedeem EntryType = "REFUND_RETURN_REDEEM"
	EntryTopupPurchased     EntryType = "TOPUP_PURCHASED"
	EntryAdjustmentManual   EntryType = "ADJUSTMENT_MANUAL"
)

// ParseEntryType 從字串解析帳目類型
func ParseEntryType(s string) (EntryType, error) {
	switch t := EntryType(s); t {
	case EntryEarnOnPurchase, EntryRedeemOnOrder, EntryRefundReverseEarn,
		EntryRefundReturnRedeem, EntryTopupPurchased, EntryAdjustmentManual:
		return t, nil
	}
	return "", ErrInvalidEntryType.WithContext("type", s)
}

// IsOrderDriven 是否為訂單驅動的帳目（必須帶 orderID）
func (t EntryType) IsOrderDriven() bool {
	switch t {
	case EntryEarnOnPurchase, EntryRedeemOnOrder, EntryRefundReverseEarn, EntryRefundReturnRedeem:
		return true
	}
	return false
}

// ReversalType 返回退款時對應的沖銷類型
//
// 只有 EARN_ON_PURCHASE 與 REDEEM_ON_ORDER 可被沖銷。
func (t EntryType) ReversalType() (EntryType, bool) {
	switch t {
	case EntryEarnOnPurchase:
		return EntryRefundReverseEarn, true
	case EntryRedeemOnOrder:
		return EntryRefundReturnRedeem, true
	}
	return "", false
}

// ===========================
// LedgerEntry 帳目（append-only）
// ===========================

// LedgerEntry 一筆積分異動
//
// 不變條件：
// - 建立後不可修改（所有欄位 unexported，只有 getter）
// - 訂單驅動帳目的 (orderID, type) 唯一，作為冪等鍵
// - balanceAfter 為寫入當下的餘額快照
type LedgerEntry struct {
	entryID      EntryID
	accountID    AccountID
	orderID      *OrderID
	entryType    EntryType
	delta        MicroPoints
	balanceAfter MicroPoints
	note         string
	externalRef  *string
	createdAt    time.Time
}

// newLedgerEntry 由聚合根內部建立帳目
func newLedgerEntry(
	accountID AccountID,
	orderID *OrderID,
	entryType EntryType,
	delta MicroPoints,
	balanceAfter MicroPoints,
	note string,
	externalRef *string,
) *LedgerEntry {
	return &LedgerEntry{
		entryID:      NewEntryID(),
		accountID:    accountID,
		orderID:      orderID,
		entryType:    entryType,
		delta:        delta,
		balanceAfter: balanceAfter,
		note:         note,
		externalRef:  externalRef,
		createdAt:    time.Now(),
	}
}

// ReconstructLedgerEntry 從持久化存儲重建帳目（僅供 Repository 使用）
func ReconstructLedgerEntry(
	entryID EntryID,
	accountID AccountID,
	orderID *OrderID,
	entryType EntryType,
	delta MicroPoints,
	balanceAfter MicroPoints,
	note string,
	externalRef *string,
	createdAt time.Time,
) (*LedgerEntry, error) {
	if entryType.IsOrderDriven() && (orderID == nil || orderID.IsEmpty()) {
		return nil, ErrInvalidOrderID.WithContext(
			"entry_id", entryID.String(),
			"reason", "order-driven entry without order id",
		)
	}
	return &LedgerEntry{
		entryID:      entryID,
		accountID:    accountID,
		orderID:      orderID,
		entryType:    entryType,
		delta:        delta,
		balanceAfter: balanceAfter,
		note:         note,
		externalRef:  externalRef,
		createdAt:    createdAt,
	}, nil
}

// EntryID 帳目 ID
func (e *LedgerEntry) EntryID() EntryID { return e.entryID }

// AccountID 所屬帳戶
func (e *LedgerEntry) AccountID() AccountID { return e.accountID }

// OrderID 關聯訂單（儲值與人工調整為 nil）
func (e *LedgerEntry) OrderID() *OrderID { return e.orderID }

// Type 帳目類型
func (e *LedgerEntry) Type() EntryType { return e.entryType }

// Delta 積分異動量（有正負）
func (e *LedgerEntry) Delta() MicroPoints { return e.delta }

// BalanceAfter 寫入後的餘額快照
func (e *LedgerEntry) BalanceAfter() MicroPoints { return e.balanceAfter }

// Note 備註
func (e *LedgerEntry) Note() string { return e.note }

// ExternalRef 呼叫端提供的冪等鍵（可為 nil）
func (e *LedgerEntry) ExternalRef() *string { return e.externalRef }

// CreatedAt 建立時間
func (e *LedgerEntry) CreatedAt() time.Time { return e.createdAt }
