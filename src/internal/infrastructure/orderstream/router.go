// Package orderstream 從 Redis Stream 讀取結帳流程送出的訂單訊息
package orderstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	loyaltyapp "github.com/jackyeh168/order_settlement/src/internal/application/loyalty"
	"github.com/jackyeh168/order_settlement/src/internal/domain/order"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// 訊息類型（stream 欄位 "type"）
const (
	TypeAccepted     = order.EventAccepted
	TypePaidVerified = order.EventPaidVerified
	TypeRefunded     = "order.refunded"
)

// ErrMalformedMessage 訊息無法解碼；重送也不會成功，直接確認
var ErrMalformedMessage = errors.New("malformed order message")

// Message stream 中的一筆訊息
type Message struct {
	ID      string
	Type    string
	Payload []byte
}

// RefundRollback 退款回滾（loyaltyapp.RollbackOnRefundUseCase）
type RefundRollback interface {
	Execute(ctx context.Context, cmd loyaltyapp.RollbackOnRefundCommand) (*loyaltyapp.RollbackOnRefundResult, error)
}

type acceptedPayload struct {
	OrderID string `json:"orderId"`
}

type paidPayload struct {
	OrderID          string     `json:"orderId"`
	UserID           *string    `json:"userId"`
	AmountCents      int64      `json:"amountCents"`
	RedeemValueCents int64      `json:"redeemValueCents"`
	PickupTime       *time.Time `json:"pickupTime"`
}

type refundedPayload struct {
	OrderID string `json:"orderId"`
}

// Router 將訊息轉為匯流排事件或退款回滾
//
// order.accepted 與 order.paid.verified 發布到匯流排（處理器各自非同步執行）；
// order.refunded 同步執行回滾，失敗時返回錯誤讓訊息留在 pending 中重試。
type Router struct {
	bus      shared.EventPublisher
	rollback RefundRollback
	logger   *zap.Logger
}

// NewRouter 創建 Router
func NewRouter(bus shared.EventPublisher, rollback RefundRollback, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{bus: bus, rollback: rollback, logger: logger.Named("orderstream")}
}

// Route 處理一筆訊息
//
// 返回 ErrMalformedMessage（包裝）表示訊息永遠無法處理；其他錯誤可重試。
func (r *Router) Route(ctx context.Context, msg Message) error {
	switch msg.Type {
	case TypeAccepted:
		var p acceptedPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if p.OrderID == "" {
			return malformed(msg, "orderId is required")
		}
		r.bus.Publish(ctx, order.NewAccepted(p.OrderID))
		return nil

	case TypePaidVerified:
		var p paidPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if p.OrderID == "" {
			return malformed(msg, "orderId is required")
		}
		if p.AmountCents < 0 || p.RedeemValueCents < 0 {
			return malformed(msg, "amounts must not be negative")
		}
		r.bus.Publish(ctx, order.NewPaidVerified(p.OrderID, p.UserID, p.AmountCents, p.RedeemValueCents, p.PickupTime))
		return nil

	case TypeRefunded:
		var p refundedPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if p.OrderID == "" {
			return malformed(msg, "orderId is required")
		}
		result, err := r.rollback.Execute(ctx, loyaltyapp.RollbackOnRefundCommand{OrderID: p.OrderID})
		if err != nil {
			return fmt.Errorf("failed to roll back order %s: %w", p.OrderID, err)
		}
		r.logger.Info("refund rolled back",
			zap.String("order_id", p.OrderID),
			zap.Int("reversed", result.Reversed),
		)
		return nil

	default:
		return malformed(msg, fmt.Sprintf("unknown type %q", msg.Type))
	}
}

func decode(msg Message, v interface{}) error {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%w: message %s: %v", ErrMalformedMessage, msg.ID, err)
	}
	return nil
}

func malformed(msg Message, reason string) error {
	return fmt.Errorf("%w: message %s: %s", ErrMalformedMessage, msg.ID, reason)
}
