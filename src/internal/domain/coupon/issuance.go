package coupon

import (
	"time"
)

// Issuance 一次發放紀錄
//
// (programID, userID, occurrenceKey) 唯一：同一觸發事件重複送達時，
// 唯一約束本身就是「已發放」的標記。每人上限以發放次數計算。
type Issuance struct {
	issuanceID    IssuanceID
	programID     ProgramID
	userID        UserID
	campaignTag   string
	occurrenceKey string
	quantity      int
	issuedAt      time.Time
}

// NewIssuance 建立發放紀錄
func NewIssuance(programID ProgramID, userID UserID, campaignTag, occurrenceKey string, quantity int, issuedAt time.Time) (*Issuance, error) {
	if userID.IsEmpty() {
		return nil, ErrInvalidUserID.WithContext("reason", "user id cannot be empty")
	}
	if occurrenceKey == "" {
		return nil, ErrInvalidProgram.WithContext("reason", "occurrence key required")
	}
	return &Issuance{
		issuanceID:    NewIssuanceID(),
		programID:     programID,
		userID:        userID,
		campaignTag:   campaignTag,
		occurrenceKey: occurrenceKey,
		quantity:      quantity,
		issuedAt:      issuedAt,
	}, nil
}

func (i *Issuance) IssuanceID() IssuanceID { return i.issuanceID }
func (i *Issuance) ProgramID() ProgramID   { return i.programID }
func (i *Issuance) UserID() UserID         { return i.userID }
func (i *Issuance) CampaignTag() string    { return i.campaignTag }
func (i *Issuance) OccurrenceKey() string  { return i.occurrenceKey }
func (i *Issuance) Quantity() int          { return i.quantity }
func (i *Issuance) IssuedAt() time.Time    { return i.issuedAt }
