package coupon

import (
	"time"

	"github.com/google/uuid"
)

// EventTypeCouponsIssued 發券完成事件類型
const EventTypeCouponsIssued = "coupon.issued"

// CouponsIssuedEvent 一次發放成功（張數 > 0）後發布
//
// 發放數為零時不產生事件，因此也不會觸發通知。
type CouponsIssuedEvent struct {
	eventID       string
	programID     ProgramID
	programName   string
	userID        UserID
	occurrenceKey string
	quantity      int
	occurredAt    time.Time
}

// NewCouponsIssuedEvent 由發放紀錄建立事件
func NewCouponsIssuedEvent(program *CouponProgram, issuance *Issuance) *CouponsIssuedEvent {
	return &CouponsIssuedEvent{
		eventID:       uuid.New().String(),
		programID:     program.ProgramID(),
		programName:   program.Name(),
		userID:        issuance.UserID(),
		occurrenceKey: issuance.OccurrenceKey(),
		quantity:      issuance.Quantity(),
		occurredAt:    issuance.IssuedAt(),
	}
}

func (e *CouponsIssuedEvent) EventID() string       { return e.eventID }
func (e *CouponsIssuedEvent) EventType() string     { return EventTypeCouponsIssued }
func (e *CouponsIssuedEvent) OccurredAt() time.Time { return e.occurredAt }
func (e *CouponsIssuedEvent) AggregateID() string   { return e.programID.String() }

func (e *CouponsIssuedEvent) ProgramName() string   { return e.programName }
func (e *CouponsIssuedEvent) UserID() UserID        { return e.userID }
func (e *CouponsIssuedEvent) OccurrenceKey() string { return e.occurrenceKey }
func (e *CouponsIssuedEvent) Quantity() int         { return e.quantity }
