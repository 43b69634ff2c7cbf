package settlement

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jackyeh168/order_settlement/src/internal/domain/coupon"
	"github.com/jackyeh168/order_settlement/src/internal/domain/loyalty"
	"github.com/jackyeh168/order_settlement/src/internal/domain/member"
	"github.com/jackyeh168/order_settlement/src/internal/domain/order"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// NotificationProcessor 顧客通知
//
// - order.paid.verified：訂單確認信，每筆訂單一次
// - loyalty.tier_changed：升級通知（降級不通知），每位會員每個等級一次
// - coupon.issued：領券通知，每次發放一次
type NotificationProcessor struct {
	members MemberLookup
	mailer  Mailer
	guard   IdempotencyGuard
	logger  *zap.Logger
}

// NewNotificationProcessor 創建處理器
func NewNotificationProcessor(members MemberLookup, mailer Mailer, guard IdempotencyGuard, logger *zap.Logger) *NotificationProcessor {
	return &NotificationProcessor{members: members, mailer: mailer, guard: guard, logger: logger.Named("notification")}
}

// HandlePaid 訂單確認信
func (p *NotificationProcessor) HandlePaid(ctx context.Context, event shared.DomainEvent) error {
	paid, ok := event.(order.PaidVerified)
	if !ok || !paid.HasUser() {
		return nil
	}

	subject := "Your order is confirmed"
	body := fmt.Sprintf("Order %s has been paid (NT$%s).", paid.OrderID, formatCents(paid.AmountCents))
	if paid.PickupTime != nil {
		body += fmt.Sprintf("\nPickup time: %s", paid.PickupTime.Format("2006-01-02 15:04"))
	}

	p.notify(ctx, "notify:order:"+paid.OrderID, *paid.UserID, subject, body,
		zap.String("order_id", paid.OrderID))
	return nil
}

// HandleTierChanged 升級通知
func (p *NotificationProcessor) HandleTierChanged(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*loyalty.TierChangedEvent)
	if !ok || !changed.IsUpgrade() {
		return nil
	}

	userID := changed.UserID().String()
	subject := fmt.Sprintf("Welcome to %s", changed.To())
	body := fmt.Sprintf("You have reached the %s tier. Thank you for dining with us!", changed.To())

	p.notify(ctx, "notify:tier:"+userID+":"+changed.To().String(), userID, subject, body,
		zap.String("tier", changed.To().String()))
	return nil
}

// HandleCouponsIssued 領券通知
func (p *NotificationProcessor) HandleCouponsIssued(ctx context.Context, event shared.DomainEvent) error {
	issued, ok := event.(*coupon.CouponsIssuedEvent)
	if !ok || issued.Quantity() == 0 {
		return nil
	}

	userID := issued.UserID().String()
	subject := fmt.Sprintf("You received %d coupon(s)", issued.Quantity())
	body := fmt.Sprintf("%s: %d coupon(s) have been added to your account.", issued.ProgramName(), issued.Quantity())

	key := "notify:coupon:" + issued.AggregateID() + ":" + userID + ":" + issued.OccurrenceKey()
	p.notify(ctx, key, userID, subject, body, zap.String("program_id", issued.AggregateID()))
	return nil
}

// notify 以 guard 保證只寄送一次；寄送失敗時釋放 guard 以便重試
func (p *NotificationProcessor) notify(ctx context.Context, key, userID, subject, body string, fields ...zap.Field) {
	fields = append(fields, zap.String("user_id", userID))

	memberID, err := member.MemberIDFromString(userID)
	if err != nil {
		p.logger.Error("notification skipped: invalid user id", append(fields, zap.Error(err))...)
		return
	}

	acquired, err := p.guard.Acquire(ctx, key)
	if err != nil {
		p.logger.Error("notification guard unavailable", append(fields, zap.Error(err))...)
		return
	}
	if !acquired {
		return
	}

	recipient, err := p.members.FindByMemberID(nil, memberID)
	if err != nil {
		releaseQuietly(ctx, p.guard, key, p.logger)
		p.logger.Error("notification recipient lookup failed", append(fields, zap.Error(err))...)
		return
	}

	if err := p.mailer.Send(ctx, Message{To: recipient.Email().String(), Subject: subject, Body: body}); err != nil {
		releaseQuietly(ctx, p.guard, key, p.logger)
		p.logger.Error("notification send failed", append(fields, zap.Error(err))...)
		return
	}

	p.logger.Info("notification sent", fields...)
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
