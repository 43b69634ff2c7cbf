package loyalty

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/jackyeh168/order_settlement/src/internal/domain/loyalty"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// ===========================
// Mocks
// ===========================

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) EnsureForUpdate(tx shared.TransactionContext, userID loyalty.UserID) (*loyalty.LoyaltyAccount, error) {
	args := m.Called(tx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loyalty.LoyaltyAccount), args.Error(1)
}

func (m *MockAccountRepository) FindByIDForUpdate(tx shared.TransactionContext, accountID loyalty.AccountID) (*loyalty.LoyaltyAccount, error) {
	args := m.Called(tx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loyalty.LoyaltyAccount), args.Error(1)
}

func (m *MockAccountRepository) FindByUserID(tx shared.TransactionContext, userID loyalty.UserID) (*loyalty.LoyaltyAccount, error) {
	args := m.Called(tx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loyalty.LoyaltyAccount), args.Error(1)
}

func (m *MockAccountRepository) Update(tx shared.TransactionContext, account *loyalty.LoyaltyAccount) error {
	return m.Called(tx, account).Error(0)
}

// fakeLedger 記憶體帳目，模擬 (order, type) 唯一約束
type fakeLedger struct {
	mu      sync.Mutex
	entries []*loyalty.LedgerEntry
}

func (f *fakeLedger) Append(_ shared.TransactionContext, entry *loyalty.LedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.OrderID() != nil && entry.OrderID() != nil &&
			e.OrderID().Equals(*entry.OrderID()) && e.Type() == entry.Type() {
			return loyalty.ErrDuplicateLedgerEntry
		}
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLedger) ExistsForOrder(_ shared.TransactionContext, orderID loyalty.OrderID, entryType loyalty.EntryType) (bool, error) {
	entries, _ := f.FindByOrder(nil, orderID)
	for _, e := range entries {
		if e.Type() == entryType {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedger) FindByOrder(_ shared.TransactionContext, orderID loyalty.OrderID) ([]*loyalty.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*loyalty.LedgerEntry
	for _, e := range f.entries {
		if e.OrderID() != nil && e.OrderID().Equals(orderID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedger) FindByAccount(_ shared.TransactionContext, accountID loyalty.AccountID) ([]*loyalty.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*loyalty.LedgerEntry
	for _, e := range f.entries {
		if e.AccountID().Equals(accountID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedger) FindByExternalRef(_ shared.TransactionContext, accountID loyalty.AccountID, ref string) (*loyalty.LedgerEntry, error) {
	entries, _ := f.FindByAccount(nil, accountID)
	for _, e := range entries {
		if e.ExternalRef() != nil && *e.ExternalRef() == ref {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeLedger) SumDeltas(_ shared.TransactionContext, accountID loyalty.AccountID) (loyalty.MicroPoints, error) {
	entries, _ := f.FindByAccount(nil, accountID)
	var sum loyalty.MicroPoints
	for _, e := range entries {
		sum += e.Delta()
	}
	return sum, nil
}

func (f *fakeLedger) ofType(t loyalty.EntryType) []*loyalty.LedgerEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*loyalty.LedgerEntry
	for _, e := range f.entries {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

// MockTransactionManager 直接執行 fn（單元測試不需要真實事務）
type MockTransactionManager struct{}

func (m *MockTransactionManager) InTransaction(_ context.Context, fn func(tx shared.TransactionContext) error) error {
	return fn(nil)
}

// recordingPublisher 記錄發布的事件
type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event shared.DomainEvent) {
	p.events = append(p.events, event)
}

func newPolicy(earn, redeem string) loyalty.SettlementPolicy {
	tiers, err := loyalty.NewTierPolicy(100000, 500000, 3000000, map[loyalty.Tier]decimal.Decimal{
		loyalty.TierBronze:   decimal.NewFromInt(1),
		loyalty.TierSilver:   decimal.RequireFromString("1.25"),
		loyalty.TierGold:     decimal.RequireFromString("1.5"),
		loyalty.TierPlatinum: decimal.NewFromInt(2),
	})
	if err != nil {
		panic(err)
	}
	policy, err := loyalty.NewSettlementPolicy(decimal.RequireFromString(earn), decimal.RequireFromString(redeem), tiers)
	if err != nil {
		panic(err)
	}
	return policy
}
