// Package bootstrap 組裝 repositories 與 Use Cases
//
// settlement-worker 與嵌入結算管線的宿主進程（結帳 API、後台）共用同一份組裝：
// 宿主直接呼叫會員註冊、儲值、人工調整、套用優惠券等操作，
// 訂單事件則經由匯流排交給結算處理器。
package bootstrap

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	couponapp "github.com/jackyeh168/order_settlement/src/internal/application/coupon"
	loyaltyapp "github.com/jackyeh168/order_settlement/src/internal/application/loyalty"
	memberapp "github.com/jackyeh168/order_settlement/src/internal/application/member"
	"github.com/jackyeh168/order_settlement/src/internal/application/settlement"
	"github.com/jackyeh168/order_settlement/src/internal/domain/loyalty"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
	"github.com/jackyeh168/order_settlement/src/internal/infrastructure/persistence"
	couponrepo "github.com/jackyeh168/order_settlement/src/internal/infrastructure/persistence/coupon"
	loyaltyrepo "github.com/jackyeh168/order_settlement/src/internal/infrastructure/persistence/loyalty"
	memberrepo "github.com/jackyeh168/order_settlement/src/internal/infrastructure/persistence/member"
)

// Services 所有 repositories 與 Use Cases
type Services struct {
	TxManager shared.TransactionManager

	Members   *memberrepo.MemberRepositoryImpl
	Accounts  *loyaltyrepo.AccountRepository
	Ledger    *loyaltyrepo.LedgerRepository
	Programs  *couponrepo.ProgramRepository
	Templates *couponrepo.TemplateRepository
	Issuances *couponrepo.IssuanceRepository
	Coupons   *couponrepo.CouponRepository

	// Loyalty
	Settle   *loyaltyapp.SettleOnPaidUseCase
	Rollback *loyaltyapp.RollbackOnRefundUseCase
	Manual   *loyaltyapp.ManualEntryUseCase
	Balance  *loyaltyapp.GetBalanceUseCase

	// Coupon
	CanIssue *couponapp.CanIssueProgramUseCase
	Issue    *couponapp.IssueProgramUseCase
	Trigger  *couponapp.IssueForTriggerUseCase
	Sweep    *couponapp.BirthdaySweepUseCase
	Redeem   *couponapp.RedeemCouponUseCase

	// Member
	RegisterMember memberapp.RegisterMemberUseCase

	logger *zap.Logger
}

// NewServices 以同一個資料庫與匯流排組裝所有 Use Case
//
// bus 接收提交後的領域事件（等級變更、發券）；可為 nil。
func NewServices(db *gorm.DB, bus shared.EventPublisher, policy loyalty.SettlementPolicy, logger *zap.Logger) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Services{
		TxManager: persistence.NewGORMTransactionManager(db),
		Members:   memberrepo.NewMemberRepository(db),
		Accounts:  loyaltyrepo.NewAccountRepository(db),
		Ledger:    loyaltyrepo.NewLedgerRepository(db),
		Programs:  couponrepo.NewProgramRepository(db),
		Templates: couponrepo.NewTemplateRepository(db),
		Issuances: couponrepo.NewIssuanceRepository(db),
		Coupons:   couponrepo.NewCouponRepository(db),
		logger:    logger,
	}

	s.Settle = loyaltyapp.NewSettleOnPaidUseCase(s.Accounts, s.Ledger, s.TxManager, policy, bus)
	s.Rollback = loyaltyapp.NewRollbackOnRefundUseCase(s.Accounts, s.Ledger, s.TxManager)
	s.Manual = loyaltyapp.NewManualEntryUseCase(s.Accounts, s.Ledger, s.TxManager)
	s.Balance = loyaltyapp.NewGetBalanceUseCase(s.Accounts, s.Ledger)

	s.CanIssue = couponapp.NewCanIssueProgramUseCase(s.Programs, s.Issuances)
	s.Issue = couponapp.NewIssueProgramUseCase(
		s.Programs, s.Templates, s.Issuances, s.Coupons, s.TxManager,
		loyaltyrepo.NewUserLock(s.Accounts), bus,
	)
	s.Trigger = couponapp.NewIssueForTriggerUseCase(s.Programs, s.Issue)
	s.Sweep = couponapp.NewBirthdaySweepUseCase(s.Programs, s.Members, s.Issue, logger.Named("birthday"))
	s.Redeem = couponapp.NewRedeemCouponUseCase(s.Coupons, s.TxManager)

	s.RegisterMember = memberapp.NewRegisterMemberUseCase(s.Members, s.TxManager, s.Trigger, logger.Named("member"))
	return s
}

// Processors 建立四個結算處理器
func (s *Services) Processors(
	dispatcher settlement.Dispatcher,
	mailer settlement.Mailer,
	guard settlement.IdempotencyGuard,
) settlement.Processors {
	return settlement.Processors{
		Loyalty:      settlement.NewLoyaltyProcessor(s.Settle, s.logger),
		Fulfillment:  settlement.NewFulfillmentProcessor(dispatcher, guard, s.logger),
		Notification: settlement.NewNotificationProcessor(s.Members, mailer, guard, s.logger),
		Coupon:       settlement.NewCouponProcessor(s.Trigger, s.logger),
	}
}
