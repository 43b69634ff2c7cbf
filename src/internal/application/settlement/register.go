package settlement

import (
	"github.com/jackyeh168/order_settlement/src/internal/domain/coupon"
	"github.com/jackyeh168/order_settlement/src/internal/domain/loyalty"
	"github.com/jackyeh168/order_settlement/src/internal/domain/order"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// HandlerWrapper 包裝處理器（例如改為非同步執行）
type HandlerWrapper func(shared.EventHandler) shared.EventHandler

// Processors 所有結算處理器；nil 的處理器不註冊
type Processors struct {
	Loyalty      *LoyaltyProcessor
	Fulfillment  *FulfillmentProcessor
	Notification *NotificationProcessor
	Coupon       *CouponProcessor
}

// Register 將處理器各自獨立訂閱到匯流排
//
// order.paid.verified 的註冊順序：積分、派單、通知、發券。
// 返回的函數取消所有訂閱。
func Register(bus shared.EventSubscriber, wrap HandlerWrapper, procs Processors) shared.Unsubscribe {
	if wrap == nil {
		wrap = func(h shared.EventHandler) shared.EventHandler { return h }
	}

	var subs []shared.Unsubscribe
	sub := func(eventType string, h shared.EventHandler) {
		subs = append(subs, bus.Subscribe(eventType, wrap(h)))
	}

	if procs.Loyalty != nil {
		sub(order.EventPaidVerified, procs.Loyalty.HandlePaid)
	}
	if procs.Fulfillment != nil {
		sub(order.EventAccepted, procs.Fulfillment.HandleAccepted)
		sub(order.EventPaidVerified, procs.Fulfillment.HandlePaid)
	}
	if procs.Notification != nil {
		sub(order.EventPaidVerified, procs.Notification.HandlePaid)
		sub(loyalty.EventTypeTierChanged, procs.Notification.HandleTierChanged)
		sub(coupon.EventTypeCouponsIssued, procs.Notification.HandleCouponsIssued)
	}
	if procs.Coupon != nil {
		sub(order.EventPaidVerified, procs.Coupon.HandlePaid)
	}

	return func() {
		for _, unsubscribe := range subs {
			unsubscribe()
		}
	}
}
