package shared

import (
	"github.com/google/uuid"
)

// ===========================
// EntityID[T] 泛型實體 ID
// ===========================

// EntityID 泛型實體 ID 值對象
//
// 泛型參數 T 僅作為標記類型使用：
// - EntityID[AccountMarker] 與 EntityID[UserMarker] 是不同類型，編譯器禁止混用
// - 底層為 UUID v4，不可變（unexported field）
//
// 使用範例：
//   type AccountMarker struct{}
//   type AccountID = shared.EntityID[AccountMarker]
type EntityID[T any] struct {
	value uuid.UUID
}

// NewEntityID 生成新的實體 ID（UUID v4）
func NewEntityID[T any]() EntityID[T] {
	return EntityID[T]{value: uuid.New()}
}

// EntityIDFromString 從字串解析實體 ID
//
// 參數：
//   s - UUID 字串
//   errTemplate - 解析失敗時返回的錯誤（由各 bounded context 提供）
//
// 若 errTemplate 支援 WithContext，會附帶輸入值與解析錯誤。
func EntityIDFromString[T any](s string, errTemplate error) (EntityID[T], error) {
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		reason := "nil uuid"
		if err != nil {
			reason = err.Error()
		}
		if domainErr, ok := errTemplate.(interface {
			WithContext(keyValues ...interface{}) error
		}); ok {
			return EntityID[T]{}, domainErr.WithContext(
				"input", s,
				"parse_error", reason,
			)
		}
		return EntityID[T]{}, errTemplate
	}
	return EntityID[T]{value: id}, nil
}

// String 返回小寫 UUID 字串
func (e EntityID[T]) String() string {
	return e.value.String()
}

// Equals 比較兩個同類型 ID
func (e EntityID[T]) Equals(other EntityID[T]) bool {
	return e.value == other.value
}

// IsEmpty 判斷是否為零值 ID
func (e EntityID[T]) IsEmpty() bool {
	return e.value == uuid.Nil
}

// StringPtr 返回可為 NULL 的欄位表示（nil 或空 ID → nil）
//
// 使用場景：持久化可選外鍵（例如 ledger entry 的 order_id）
func StringPtr[T any](id *EntityID[T]) *string {
	if id == nil || id.IsEmpty() {
		return nil
	}
	s := id.String()
	return &s
}
