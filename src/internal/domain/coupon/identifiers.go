package coupon

import (
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// ProgramMarker 優惠活動 ID 標記類型
type ProgramMarker struct{}

// ProgramID 優惠活動 ID
type ProgramID = shared.EntityID[ProgramMarker]

// NewProgramID 生成新的活動 ID
func NewProgramID() ProgramID { return shared.NewEntityID[ProgramMarker]() }

// ProgramIDFromString 從字串解析活動 ID
func ProgramIDFromString(s string) (ProgramID, error) {
	return shared.EntityIDFromString[ProgramMarker](s, ErrInvalidProgramID)
}

// TemplateMarker 優惠券模板 ID 標記類型
type TemplateMarker struct{}

// TemplateID 優惠券模板 ID
type TemplateID = shared.EntityID[TemplateMarker]

// NewTemplateID 生成新的模板 ID
func NewTemplateID() TemplateID { return shared.NewEntityID[TemplateMarker]() }

// TemplateIDFromString 從字串解析模板 ID
func TemplateIDFromString(s string) (TemplateID, error) {
	return shared.EntityIDFromString[TemplateMarker](s, ErrInvalidTemplateID)
}

// CouponMarker 優惠券 ID 標記類型
type CouponMarker struct{}

// CouponID 已發放優惠券 ID
type CouponID = shared.EntityID[CouponMarker]

// NewCouponID 生成新的優惠券 ID
func NewCouponID() CouponID { return shared.NewEntityID[CouponMarker]() }

// CouponIDFromString 從字串解析優惠券 ID
func CouponIDFromString(s string) (CouponID, error) {
	return shared.EntityIDFromString[CouponMarker](s, ErrInvalidCouponID)
}

// IssuanceMarker 發放紀錄 ID 標記類型
type IssuanceMarker struct{}

// IssuanceID 發放紀錄 ID
type IssuanceID = shared.EntityID[IssuanceMarker]

// NewIssuanceID 生成新的發放紀錄 ID
func NewIssuanceID() IssuanceID { return shared.NewEntityID[IssuanceMarker]() }

// IssuanceIDFromString 從字串解析發放紀錄 ID
func IssuanceIDFromString(s string) (IssuanceID, error) {
	return shared.EntityIDFromString[IssuanceMarker](s, ErrInvalidIssuanceID)
}

// UserMarker 領券者 ID 標記類型
type UserMarker struct{}

// UserID 領券者 ID
type UserID = shared.EntityID[UserMarker]

// UserIDFromString 從字串解析領券者 ID
func UserIDFromString(s string) (UserID, error) {
	return shared.EntityIDFromString[UserMarker](s, ErrInvalidUserID)
}
