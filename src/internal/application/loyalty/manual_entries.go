package loyalty

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jackyeh168/order_settlement/src/internal/domain/loyalty"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// ===========================
// 儲值與人工調整
// ===========================

// ManualEntryCommand 儲值或人工調整指令
//
// Points 為十進位字串（例如 "12.5"），轉為微點後四捨五入。
// IdempotencyKey 非空時以 (account, key) 去重：重複提交返回第一次的帳目。
type ManualEntryCommand struct {
	UserID         string
	Points         string
	Note           string
	IdempotencyKey string
}

// ManualEntryResult 儲值或調整結果
type ManualEntryResult struct {
	AccountID    string
	EntryID      string
	DeltaMicro   int64
	BalanceMicro int64
	Duplicate    bool
}

// ManualEntryUseCase 非訂單驅動的單筆帳目（TOPUP_PURCHASED / ADJUSTMENT_MANUAL）
type ManualEntryUseCase struct {
	accounts  loyalty.AccountRepository
	ledger    loyalty.LedgerRepository
	txManager shared.TransactionManager
}

// NewManualEntryUseCase 創建 Use Case 實例
func NewManualEntryUseCase(
	accounts loyalty.AccountRepository,
	ledger loyalty.LedgerRepository,
	txManager shared.TransactionManager,
) *ManualEntryUseCase {
	return &ManualEntryUseCase{
		accounts:  accounts,
		ledger:    ledger,
		txManager: txManager,
	}
}

// ApplyTopup 購買點數儲值（必須為正）
func (uc *ManualEntryUseCase) ApplyTopup(ctx context.Context, cmd ManualEntryCommand) (*ManualEntryResult, error) {
	return uc.apply(ctx, cmd, func(account *loyalty.LoyaltyAccount, amount loyalty.MicroPoints, ref *string) (*loyalty.LedgerEntry, error) {
		return account.ApplyTopup(amount, cmd.Note, ref)
	})
}

// AdjustPointsManual 人工調整（可正可負，不可使餘額低於零）
func (uc *ManualEntryUseCase) AdjustPointsManual(ctx context.Context, cmd ManualEntryCommand) (*ManualEntryResult, error) {
	return uc.apply(ctx, cmd, func(account *loyalty.LoyaltyAccount, amount loyalty.MicroPoints, ref *string) (*loyalty.LedgerEntry, error) {
		return account.AdjustManual(amount, cmd.Note, ref)
	})
}

type entryFunc func(account *loyalty.LoyaltyAccount, amount loyalty.MicroPoints, ref *string) (*loyalty.LedgerEntry, error)

func (uc *ManualEntryUseCase) apply(ctx context.Context, cmd ManualEntryCommand, fn entryFunc) (*ManualEntryResult, error) {
	userID, err := loyalty.UserIDFromString(cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user ID: %w", err)
	}
	points, err := decimal.NewFromString(cmd.Points)
	if err != nil {
		return nil, loyalty.ErrInvalidAmount.WithContext("points", cmd.Points, "reason", err.Error())
	}
	amount := loyalty.MicroPointsFromPoints(points)

	var ref *string
	if cmd.IdempotencyKey != "" {
		key := cmd.IdempotencyKey
		ref = &key
	}

	result := &ManualEntryResult{}

	err = uc.txManager.InTransaction(ctx, func(tx shared.TransactionContext) error {
		account, err := uc.accounts.EnsureForUpdate(tx, userID)
		if err != nil {
			return fmt.Errorf("failed to lock account: %w", err)
		}
		result.AccountID = account.AccountID().String()

		if ref != nil {
			existing, err := uc.ledger.FindByExternalRef(tx, account.AccountID(), *ref)
			if err != nil {
				return err
			}
			if existing != nil {
				result.Duplicate = true
				result.EntryID = existing.EntryID().String()
				result.DeltaMicro = existing.Delta().Int64()
				result.BalanceMicro = account.Points().Int64()
				return nil
			}
		}

		entry, err := fn(account, amount, ref)
		if err != nil {
			return err
		}
		if err := uc.ledger.Append(tx, entry); err != nil {
			return fmt.Errorf("failed to append entry: %w", err)
		}
		if err := uc.accounts.Update(tx, account); err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}

		result.EntryID = entry.EntryID().String()
		result.DeltaMicro = entry.Delta().Int64()
		result.BalanceMicro = account.Points().Int64()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
