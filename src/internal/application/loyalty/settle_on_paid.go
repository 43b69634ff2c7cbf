package loyalty

import (
	"context"
	"fmt"

	"github.com/jackyeh168/order_settlement/src/internal/domain/loyalty"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// ===========================
// SettleOnPaid Use Case
// ===========================

// SettleOnPaidCommand 訂單付款結算指令
//
// UserID 為 nil 或空字串時代表匿名訂單，不做任何事。
type SettleOnPaidCommand struct {
	OrderID          string
	UserID           *string
	SubtotalCents    int64
	RedeemValueCents int64
}

// SettleOnPaidResult 結算結果
//
// AlreadySettled 表示此訂單先前已結算（冪等短路，非錯誤）。
type SettleOnPaidResult struct {
	Skipped        bool
	AlreadySettled bool
	AccountID      string
	RedeemedMicro  int64
	EarnedMicro    int64
	BalanceMicro   int64
	Tier           string
	LifetimeSpend  int64
}

// SettleOnPaidUseCase 將已付款訂單轉換為積分異動與等級進度
//
// 每筆訂單只結算一次：(orderID, REDEEM_ON_ORDER) 與 (orderID, EARN_ON_PURCHASE)
// 帳目本身就是冪等標記。同一帳戶的並發結算由帳戶行鎖序列化。
type SettleOnPaidUseCase struct {
	accounts  loyalty.AccountRepository
	ledger    loyalty.LedgerRepository
	txManager shared.TransactionManager
	policy    loyalty.SettlementPolicy
	publisher shared.EventPublisher
}

// NewSettleOnPaidUseCase 創建 Use Case 實例
//
// publisher 可為 nil（不發布等級變更事件）。
func NewSettleOnPaidUseCase(
	accounts loyalty.AccountRepository,
	ledger loyalty.LedgerRepository,
	txManager shared.TransactionManager,
	policy loyalty.SettlementPolicy,
	publisher shared.EventPublisher,
) *SettleOnPaidUseCase {
	return &SettleOnPaidUseCase{
		accounts:  accounts,
		ledger:    ledger,
		txManager: txManager,
		policy:    policy,
		publisher: publisher,
	}
}

// Execute 執行結算
//
// 執行流程（單一事務）：
// 1. 取得或建立帳戶並加鎖
// 2. 實付金額 = max(0, subtotal - redeemValue)
// 3. 折抵：redeemValue > 0 且 (order, REDEEM) 不存在時，扣點夾到餘額並寫帳目
// 4. 累積：(order, EARN) 不存在時寫帳目，earned 為 0 也寫（倍率依結算前等級）
// 5. 首次結算時累加 lifetime spend 並重算等級
// 6. 寫回帳戶；提交後發布等級變更事件
//
// 任一步驟失敗整個事務回滾；下一次投遞會重新推導缺少的副作用。
func (uc *SettleOnPaidUseCase) Execute(ctx context.Context, cmd SettleOnPaidCommand) (*SettleOnPaidResult, error) {
	if cmd.UserID == nil || *cmd.UserID == "" {
		return &SettleOnPaidResult{Skipped: true}, nil
	}

	userID, err := loyalty.UserIDFromString(*cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user ID: %w", err)
	}
	orderID, err := loyalty.OrderIDFromString(cmd.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse order ID: %w", err)
	}
	subtotal, err := loyalty.NewCents(cmd.SubtotalCents)
	if err != nil {
		return nil, err
	}
	redeemValue, err := loyalty.NewCents(cmd.RedeemValueCents)
	if err != nil {
		return nil, err
	}

	result := &SettleOnPaidResult{}
	var events []shared.DomainEvent

	err = uc.txManager.InTransaction(ctx, func(tx shared.TransactionContext) error {
		account, err := uc.accounts.EnsureForUpdate(tx, userID)
		if err != nil {
			return fmt.Errorf("failed to lock account: %w", err)
		}

		redeemDone, err := uc.ledger.ExistsForOrder(tx, orderID, loyalty.EntryRedeemOnOrder)
		if err != nil {
			return err
		}
		earnDone, err := uc.ledger.ExistsForOrder(tx, orderID, loyalty.EntryEarnOnPurchase)
		if err != nil {
			return err
		}
		result.AlreadySettled = redeemDone || earnDone

		net := subtotal.SubtractFloorZero(redeemValue)

		if redeemValue > 0 && !redeemDone {
			entry, err := account.RedeemForOrder(orderID, uc.policy.RedeemMicro(redeemValue), "order redemption")
			if err != nil {
				return err
			}
			if err := uc.ledger.Append(tx, entry); err != nil {
				return fmt.Errorf("failed to append redeem entry: %w", err)
			}
			result.RedeemedMicro = entry.Delta().Neg().Int64()
		}

		if !earnDone {
			earned := uc.policy.EarnedMicro(net, account.Tier())
			entry := account.EarnForOrder(orderID, earned, "order purchase")
			if err := uc.ledger.Append(tx, entry); err != nil {
				return fmt.Errorf("failed to append earn entry: %w", err)
			}
			result.EarnedMicro = entry.Delta().Int64()
		}

		if !result.AlreadySettled {
			account.AccumulateSpend(net, uc.policy.Tiers())
		}

		if err := uc.accounts.Update(tx, account); err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}

		result.AccountID = account.AccountID().String()
		result.BalanceMicro = account.Points().Int64()
		result.Tier = account.Tier().String()
		result.LifetimeSpend = account.LifetimeSpend().Int64()
		events = account.PullEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishAll(ctx, uc.publisher, events)
	return result, nil
}

func publishAll(ctx context.Context, publisher shared.EventPublisher, events []shared.DomainEvent) {
	if publisher == nil {
		return
	}
	for _, event := range events {
		publisher.Publish(ctx, event)
	}
}
