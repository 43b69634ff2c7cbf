package settlement

import (
	"context"
	"time"

	couponapp "github.com/jackyeh168/order_settlement/src/internal/application/coupon"
	loyaltyapp "github.com/jackyeh168/order_settlement/src/internal/application/loyalty"
	"github.com/jackyeh168/order_settlement/src/internal/domain/member"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// LoyaltySettler 積分結算（loyaltyapp.SettleOnPaidUseCase）
type LoyaltySettler interface {
	Execute(ctx context.Context, cmd loyaltyapp.SettleOnPaidCommand) (*loyaltyapp.SettleOnPaidResult, error)
}

// CouponTrigger 觸發發券（couponapp.IssueForTriggerUseCase）
type CouponTrigger interface {
	Execute(ctx context.Context, cmd couponapp.IssueForTriggerCommand) (*couponapp.IssueForTriggerResult, error)
}

// MemberLookup 查詢通知收件人
type MemberLookup interface {
	FindByMemberID(tx shared.TransactionContext, id member.MemberID) (*member.Member, error)
}

// IdempotencyGuard 跨進程的「只做一次」標記
//
// Acquire 返回 false 表示鍵已被佔用（已處理或處理中）。
// 副作用失敗時調用 Release，讓下一次投遞可以重試。
type IdempotencyGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// DispatchRequest 外送/取餐派單
type DispatchRequest struct {
	OrderID     string
	AmountCents int64
	PickupTime  *time.Time
}

// Dispatcher 派單服務
type Dispatcher interface {
	Dispatch(ctx context.Context, req DispatchRequest) error
}

// Message 電子郵件內容
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer 寄送電子郵件
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
