package loyalty

import (
	"context"
	"fmt"

	"github.com/jackyeh168/order_settlement/src/internal/domain/loyalty"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// RollbackOnRefundCommand 退款回滾指令
type RollbackOnRefundCommand struct {
	OrderID string
}

// RollbackOnRefundResult 回滾結果
//
// Reversed 為本次新寫入的沖銷帳目數；重複調用時為 0。
type RollbackOnRefundResult struct {
	AccountID    string
	Reversed     int
	BalanceMicro int64
}

// RollbackOnRefundUseCase 退款時沖銷訂單的累積與折抵
//
// 訂單擁有者由訂單的帳目推得；沒有任何帳目的訂單（匿名或未結算）不做任何事。
// lifetime spend 與等級不回退。
type RollbackOnRefundUseCase struct {
	accounts  loyalty.AccountRepository
	ledger    loyalty.LedgerRepository
	txManager shared.TransactionManager
}

// NewRollbackOnRefundUseCase 創建 Use Case 實例
func NewRollbackOnRefundUseCase(
	accounts loyalty.AccountRepository,
	ledger loyalty.LedgerRepository,
	txManager shared.TransactionManager,
) *RollbackOnRefundUseCase {
	return &RollbackOnRefundUseCase{
		accounts:  accounts,
		ledger:    ledger,
		txManager: txManager,
	}
}

// Execute 執行回滾
func (uc *RollbackOnRefundUseCase) Execute(ctx context.Context, cmd RollbackOnRefundCommand) (*RollbackOnRefundResult, error) {
	orderID, err := loyalty.OrderIDFromString(cmd.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse order ID: %w", err)
	}

	result := &RollbackOnRefundResult{}

	err = uc.txManager.InTransaction(ctx, func(tx shared.TransactionContext) error {
		entries, err := uc.ledger.FindByOrder(tx, orderID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		account, err := uc.accounts.FindByIDForUpdate(tx, entries[0].AccountID())
		if err != nil {
			return fmt.Errorf("failed to lock account: %w", err)
		}

		// 加鎖後重讀，避免與並發回滾交錯
		entries, err = uc.ledger.FindByOrder(tx, orderID)
		if err != nil {
			return err
		}

		present := make(map[loyalty.EntryType]bool, len(entries))
		for _, entry := range entries {
			present[entry.Type()] = true
		}

		for _, entry := range entries {
			reversalType, ok := entry.Type().ReversalType()
			if !ok || present[reversalType] {
				continue
			}
			reversal, err := account.Reverse(entry, "refund")
			if err != nil {
				return err
			}
			if err := uc.ledger.Append(tx, reversal); err != nil {
				return fmt.Errorf("failed to append reversal: %w", err)
			}
			present[reversalType] = true
			result.Reversed++
		}

		if result.Reversed > 0 {
			if err := uc.accounts.Update(tx, account); err != nil {
				return fmt.Errorf("failed to update account: %w", err)
			}
		}

		result.AccountID = account.AccountID().String()
		result.BalanceMicro = account.Points().Int64()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
