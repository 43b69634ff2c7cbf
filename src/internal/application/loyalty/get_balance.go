package loyalty

import (
	"fmt"

	"github.com/jackyeh168/order_settlement/src/internal/domain/loyalty"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// GetBalanceQuery 查詢積分餘額
type GetBalanceQuery struct {
	UserID string
}

// GetBalanceResult 查詢結果
//
// Consistent 表示帳戶餘額等於帳目 delta 總和。
type GetBalanceResult struct {
	AccountID     string
	UserID        string
	BalanceMicro  int64
	Points        string
	Tier          string
	LifetimeSpend int64
	LedgerSum     int64
	Consistent    bool
}

// GetBalanceUseCase 查詢積分餘額 Use Case
type GetBalanceUseCase struct {
	accounts loyalty.AccountRepository
	ledger   loyalty.LedgerRepository
}

// NewGetBalanceUseCase 創建 Use Case 實例
func NewGetBalanceUseCase(accounts loyalty.AccountRepository, ledger loyalty.LedgerRepository) *GetBalanceUseCase {
	return &GetBalanceUseCase{
		accounts: accounts,
		ledger:   ledger,
	}
}

// Execute 執行查詢（不參與事務）
func (uc *GetBalanceUseCase) Execute(query GetBalanceQuery) (*GetBalanceResult, error) {
	return uc.ExecuteWithContext(nil, query)
}

// ExecuteWithContext 在事務上下文中執行查詢（tx 可為 nil）
func (uc *GetBalanceUseCase) ExecuteWithContext(tx shared.TransactionContext, query GetBalanceQuery) (*GetBalanceResult, error) {
	userID, err := loyalty.UserIDFromString(query.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user ID: %w", err)
	}

	account, err := uc.accounts.FindByUserID(tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	sum, err := uc.ledger.SumDeltas(tx, account.AccountID())
	if err != nil {
		return nil, fmt.Errorf("failed to sum ledger: %w", err)
	}

	return &GetBalanceResult{
		AccountID:     account.AccountID().String(),
		UserID:        account.UserID().String(),
		BalanceMicro:  account.Points().Int64(),
		Points:        account.Points().String(),
		Tier:          account.Tier().String(),
		LifetimeSpend: account.LifetimeSpend().Int64(),
		LedgerSum:     sum.Int64(),
		Consistent:    sum == account.Points(),
	}, nil
}
