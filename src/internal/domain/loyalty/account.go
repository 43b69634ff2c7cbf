package loyalty

import (
	"time"

	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// ===========================
// LoyaltyAccount 聚合根
// ===========================

// LoyaltyAccount 積分帳戶聚合根
//
// 設計原則：
// 1. 輕量級聚合：不持有 ledger（帳目存放於獨立的 append-only 表）
// 2. 每個改變餘額的方法都返回一筆 LedgerEntry，調用者必須在同一事務中
//    寫入帳目並更新帳戶，因此 points 永遠等於該帳戶所有 delta 的總和
// 3. 所有修改都必須在持有行鎖（SELECT ... FOR UPDATE）的事務中進行
//
// 業務不變條件：
// - points == sum(ledger.delta)
// - lifetimeSpend 單調不減
// - tier == tiers.Resolve(lifetimeSpend)（在最近一次 AccumulateSpend 後）
// - REDEEM_ON_ORDER 不會讓餘額變成負數（扣除量被夾在餘額內）
type LoyaltyAccount struct {
	accountID AccountID
	userID    UserID

	points        MicroPoints
	tier          Tier
	lifetimeSpend Cents

	createdAt time.Time
	updatedAt time.Time

	events []shared.DomainEvent
}

// NewLoyaltyAccount 創建新的積分帳戶（BRONZE、零餘額）
func NewLoyaltyAccount(userID UserID) (*LoyaltyAccount, error) {
	if userID.IsEmpty() {
		return nil, ErrInvalidUserID.WithContext(
			"reason", "userID cannot be empty",
		)
	}

	now := time.Now()
	return &LoyaltyAccount{
		accountID: NewAccountID(),
		userID:    userID,
		tier:      TierBronze,
		createdAt: now,
		updatedAt: now,
		events:    make([]shared.DomainEvent, 0),
	}, nil
}

// ReconstructLoyaltyAccount 從持久化存儲重建聚合根（僅供 Repository 使用）
//
// 餘額允許為負：退款沖銷 EARN 時，若該筆積分已被其他訂單使用，
// 沖銷仍須精確寫入。
func ReconstructLoyaltyAccount(
	accountID AccountID,
	userID UserID,
	points int64,
	tier string,
	lifetimeSpend int64,
	createdAt time.Time,
	updatedAt time.Time,
) (*LoyaltyAccount, error) {
	if accountID.IsEmpty() {
		return nil, ErrInvalidAccountID.WithContext("reason", "invalid account ID in database")
	}
	if userID.IsEmpty() {
		return nil, ErrInvalidUserID.WithContext("reason", "invalid user ID in database")
	}

	parsedTier, err := ParseTier(tier)
	if err != nil {
		return nil, ErrCorruptedAccount.WithContext(
			"account_id", accountID.String(),
			"tier", tier,
		)
	}
	if lifetimeSpend < 0 {
		return nil, ErrCorruptedAccount.WithContext(
			"account_id", accountID.String(),
			"lifetime_spend_cents", lifetimeSpend,
		)
	}

	return &LoyaltyAccount{
		accountID:     accountID,
		userID:        userID,
		points:        MicroPoints(points),
		tier:          parsedTier,
		lifetimeSpend: Cents(lifetimeSpend),
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		events:        make([]shared.DomainEvent, 0),
	}, nil
}

// ===========================
// 查詢方法
// ===========================

// AccountID 帳戶 ID
func (a *LoyaltyAccount) AccountID() AccountID { return a.accountID }

// UserID 帳戶持有人
func (a *LoyaltyAccount) UserID() UserID { return a.userID }

// Points 目前餘額
func (a *LoyaltyAccount) Points() MicroPoints { return a.points }

// Tier 目前等級
func (a *LoyaltyAccount) Tier() Tier { return a.tier }

// LifetimeSpend 累積消費
func (a *LoyaltyAccount) LifetimeSpend() Cents { return a.lifetimeSpend }

// CreatedAt 創建時間
func (a *LoyaltyAccount) CreatedAt() time.Time { return a.createdAt }

// UpdatedAt 最後更新時間
func (a *LoyaltyAccount) UpdatedAt() time.Time { return a.updatedAt }

// PullEvents 獲取所有待發布事件並清空列表
func (a *LoyaltyAccount) PullEvents() []shared.DomainEvent {
	events := a.events
	a.events = make([]shared.DomainEvent, 0)
	return events
}

// ===========================
// 命令方法：訂單結算
// ===========================

// RedeemForOrder 訂單折抵扣點
//
// 扣除量 = min(requested, 目前餘額)，餘額為負時扣除量為 0。
// 即使扣除量被夾到 0 也會產生帳目，作為 (orderID, REDEEM_ON_ORDER) 的冪等標記。
func (a *LoyaltyAccount) RedeemForOrder(orderID OrderID, requested MicroPoints, note string) (*LedgerEntry, error) {
	if requested.IsNegative() {
		return nil, ErrInvalidAmount.WithContext("requested_micro", requested.Int64())
	}

	available := a.points
	if available.IsNegative() {
		available = 0
	}
	deduct := requested.Min(available)

	a.points -= deduct
	a.touch()

	return newLedgerEntry(a.accountID, &orderID, EntryRedeemOnOrder, deduct.Neg(), a.points, note, nil), nil
}

// EarnForOrder 訂單累積積分
//
// earned <= 0 時仍返回一筆零額帳目：(order, EARN_ON_PURCHASE) 是訂單已結算的標記，
// 重複投遞時據此跳過累積消費。
func (a *LoyaltyAccount) EarnForOrder(orderID OrderID, earned MicroPoints, note string) *LedgerEntry {
	if earned.IsNegative() {
		earned = 0
	}
	if earned.IsPositive() {
		a.points += earned
		a.touch()
	}

	return newLedgerEntry(a.accountID, &orderID, EntryEarnOnPurchase, earned, a.points, note, nil)
}

// AccumulateSpend 累加實付金額並重新計算等級
//
// 等級變更時記錄 TierChangedEvent。
func (a *LoyaltyAccount) AccumulateSpend(netSubtotal Cents, tiers TierPolicy) {
	if netSubtotal > 0 {
		a.lifetimeSpend += netSubtotal
		a.touch()
	}

	newTier := tiers.Resolve(a.lifetimeSpend)
	if newTier != a.tier {
		a.events = append(a.events, NewTierChangedEvent(a.accountID, a.userID, a.tier, newTier, a.lifetimeSpend))
		a.tier = newTier
		a.touch()
	}
}

// Reverse 產生原帳目的精確沖銷
//
// 只接受本帳戶的 EARN_ON_PURCHASE 或 REDEEM_ON_ORDER 帳目。
func (a *LoyaltyAccount) Reverse(original *LedgerEntry, note string) (*LedgerEntry, error) {
	if !original.AccountID().Equals(a.accountID) {
		return nil, ErrInvalidAccountID.WithContext(
			"entry_account_id", original.AccountID().String(),
			"account_id", a.accountID.String(),
		)
	}
	reversal, ok := original.Type().ReversalType()
	if !ok || original.OrderID() == nil {
		return nil, ErrInvalidEntryType.WithContext(
			"type", string(original.Type()),
			"reason", "entry is not reversible",
		)
	}

	delta := original.Delta().Neg()
	a.points += delta
	a.touch()

	orderID := *original.OrderID()
	return newLedgerEntry(a.accountID, &orderID, reversal, delta, a.points, note, nil), nil
}

// ===========================
// 命令方法：儲值與人工調整
// ===========================

// ApplyTopup 購買點數儲值
func (a *LoyaltyAccount) ApplyTopup(amount MicroPoints, note string, externalRef *string) (*LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount.WithContext(
			"amount_micro", amount.Int64(),
			"reason", "topup must be positive",
		)
	}

	a.points += amount
	a.touch()

	return newLedgerEntry(a.accountID, nil, EntryTopupPurchased, amount, a.points, note, externalRef), nil
}

// AdjustManual 人工調整（可正可負）
//
// 負向調整不可使餘額低於零。
func (a *LoyaltyAccount) AdjustManual(delta MicroPoints, note string, externalRef *string) (*LedgerEntry, error) {
	if delta.IsZero() {
		return nil, ErrInvalidAmount.WithContext("reason", "adjustment cannot be zero")
	}
	if (a.points + delta).IsNegative() {
		return nil, ErrInsufficientPoints.WithContext(
			"balance_micro", a.points.Int64(),
			"delta_micro", delta.Int64(),
		)
	}

	a.points += delta
	a.touch()

	return newLedgerEntry(a.accountID, nil, EntryAdjustmentManual, delta, a.points, note, externalRef), nil
}

func (a *LoyaltyAccount) touch() {
	a.updatedAt = time.Now()
}
