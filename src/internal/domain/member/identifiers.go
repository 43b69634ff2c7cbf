package member

import (
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// MemberMarker 會員 ID 標記類型
type MemberMarker struct{}

// MemberID 會員 ID 值對象
//
// 會員 ID 也是其他領域中的使用者 ID（積分帳戶持有人、領券者），
// 跨領域以字串形式傳遞後再以各自的類型解析。
type MemberID = shared.EntityID[MemberMarker]

// NewMemberID 生成新的會員 ID
func NewMemberID() MemberID {
	return shared.NewEntityID[MemberMarker]()
}

// MemberIDFromString 從字串解析會員 ID
func MemberIDFromString(value string) (MemberID, error) {
	return shared.EntityIDFromString[MemberMarker](value, ErrInvalidMemberID)
}
