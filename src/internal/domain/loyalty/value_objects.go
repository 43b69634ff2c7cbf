package loyalty

import (
	"github.com/shopspring/decimal"
)

// MicroUnitsPerPoint 定點數縮放比例：1 點 = 1,000,000 micro-points
const MicroUnitsPerPoint int64 = 1_000_000

var (
	microScale   = decimal.NewFromInt(MicroUnitsPerPoint)
	centsPerUnit = decimal.NewFromInt(100)
)

// ===========================
// MicroPoints 值對象
// ===========================

// MicroPoints 積分數量（定點整數，×1e6）
//
// 持久化與比較一律使用 int64；decimal 只出現在換算的中間步驟，
// 並在產生 MicroPoints 之前四捨五入為整數。
type MicroPoints int64

// MicroPointsFromPoints 將積分（decimal）換算為 micro-points
//
// 四捨五入規則：half away from zero（shopspring/decimal Round）
func MicroPointsFromPoints(points decimal.Decimal) MicroPoints {
	return MicroPoints(points.Mul(microScale).Round(0).IntPart())
}

// Int64 返回原始整數值
func (m MicroPoints) Int64() int64 {
	return int64(m)
}

// Points 返回以「點」為單位的 decimal 表示（僅供顯示）
func (m MicroPoints) Points() decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(microScale)
}

// IsZero 是否為零
func (m MicroPoints) IsZero() bool {
	return m == 0
}

// IsPositive 是否大於零
func (m MicroPoints) IsPositive() bool {
	return m > 0
}

// IsNegative 是否小於零
func (m MicroPoints) IsNegative() bool {
	return m < 0
}

// Neg 取反（用於退款沖銷）
func (m MicroPoints) Neg() MicroPoints {
	return -m
}

// Min 返回兩者中較小者
func (m MicroPoints) Min(other MicroPoints) MicroPoints {
	if other < m {
		return other
	}
	return m
}

// String 以點為單位輸出（例如 "0.5"）
func (m MicroPoints) String() string {
	return m.Points().String()
}

// ===========================
// Cents 值對象
// ===========================

// Cents 金額（整數分）
type Cents int64

// NewCents 建構函數（checked 版本）
//
// 建構約束：訂單金額與折抵金額不可為負
func NewCents(value int64) (Cents, error) {
	if value < 0 {
		return 0, ErrInvalidAmount.WithContext(
			"cents", value,
			"reason", "amount cannot be negative",
		)
	}
	return Cents(value), nil
}

// Int64 返回原始整數值
func (c Cents) Int64() int64 {
	return int64(c)
}

// Dollars 以元為單位的 decimal（精確）
func (c Cents) Dollars() decimal.Decimal {
	return decimal.NewFromInt(int64(c)).Div(centsPerUnit)
}

// SubtractFloorZero 相減，結果小於零時取零
//
// 使用場景：netSubtotal = max(0, subtotal - redeemValue)
func (c Cents) SubtractFloorZero(other Cents) Cents {
	if other >= c {
		return 0
	}
	return c - other
}
