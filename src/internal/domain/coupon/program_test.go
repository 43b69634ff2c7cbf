package coupon_test

import (
	"testing"
	"time"

	"github.com/jackyeh168/order_settlement/src/internal/domain/coupon"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var amountRule = []byte(`{"type":"AMOUNT","discountCents":500,"minSpendCents":2000}`)

func intPtr(v int) *int { return &v }

func newUserID() coupon.UserID { return shared.NewEntityID[coupon.UserMarker]() }

func timePtr(t time.Time) *time.Time { return &t }

func newTemplate(t *testing.T, rule []byte, validDays *int) *coupon.CouponTemplate {
	t.Helper()
	template, err := coupon.NewCouponTemplate(coupon.NewTemplateID(), "NT$5 off", rule, validDays)
	require.NoError(t, err)
	return template
}

// newProgram 建立單一模板的活動
func newProgram(t *testing.T, template *coupon.CouponTemplate, quantity, perUser int, total *int) *coupon.CouponProgram {
	t.Helper()
	program, err := coupon.NewCouponProgram(
		"Birthday", "birthday-2026", coupon.TriggerBirthdayMonth,
		[]coupon.ProgramItem{{TemplateID: template.TemplateID(), Quantity: quantity}},
		perUser, total, nil, nil,
	)
	require.NoError(t, err)
	return program
}

func templatesOf(ts ...*coupon.CouponTemplate) map[coupon.TemplateID]*coupon.CouponTemplate {
	m := make(map[coupon.TemplateID]*coupon.CouponTemplate, len(ts))
	for _, t := range ts {
		m[t.TemplateID()] = t
	}
	return m
}

// ===========================
// 建構驗證
// ===========================

// Test 1: 沒有項目的活動不合法
func TestNewCouponProgram_NoItems_ReturnsError(t *testing.T) {
	_, err := coupon.NewCouponProgram("x", "tag", coupon.TriggerSignup, nil, 1, nil, nil, nil)
	assert.ErrorIs(t, err, coupon.ErrInvalidProgramItems)
}

// Test 2: 每人上限必須 >= 1
func TestNewCouponProgram_ZeroPerUserLimit_ReturnsError(t *testing.T) {
	template := newTemplate(t, amountRule, nil)
	_, err := coupon.NewCouponProgram(
		"x", "tag", coupon.TriggerSignup,
		[]coupon.ProgramItem{{TemplateID: template.TemplateID(), Quantity: 1}},
		0, nil, nil, nil,
	)
	assert.ErrorIs(t, err, coupon.ErrInvalidProgram)
}

// ===========================
// CanIssue
// ===========================

// Test 3: 全域上限：issuedCount + 本次張數 > totalLimit 時拒絕
func TestCanIssue_TotalLimitExceeded_Rejects(t *testing.T) {
	// Arrange
	template := newTemplate(t, amountRule, nil)
	program, err := coupon.ReconstructCouponProgram(
		coupon.NewProgramID(), "x", "tag", coupon.TriggerSignup,
		[]coupon.ProgramItem{{TemplateID: template.TemplateID(), Quantity: 2}},
		1, intPtr(10), 9, nil, nil, coupon.ProgramActive, time.Now(), time.Now(),
	)
	require.NoError(t, err)

	// Act
	decision := program.CanIssue(0, time.Now())

	// Assert
	assert.False(t, decision.Allowed)
	assert.Equal(t, coupon.RejectTotalLimitReached, decision.Reason)
}

// Test 4: 剛好達到上限仍允許
func TestCanIssue_ExactlyReachesTotalLimit_Allows(t *testing.T) {
	template := newTemplate(t, amountRule, nil)
	program, err := coupon.ReconstructCouponProgram(
		coupon.NewProgramID(), "x", "tag", coupon.TriggerSignup,
		[]coupon.ProgramItem{{TemplateID: template.TemplateID(), Quantity: 2}},
		1, intPtr(10), 8, nil, nil, coupon.ProgramActive, time.Now(), time.Now(),
	)
	require.NoError(t, err)

	assert.True(t, program.CanIssue(0, time.Now()).Allowed)
}

// Test 5: 每人上限
func TestCanIssue_PerUserLimitReached_Rejects(t *testing.T) {
	program := newProgram(t, newTemplate(t, amountRule, nil), 1, 1, nil)

	decision := program.CanIssue(1, time.Now())

	assert.False(t, decision.Allowed)
	assert.Equal(t, coupon.RejectPerUserLimit, decision.Reason)
}

// Test 6: 非 ACTIVE 活動拒絕
func TestCanIssue_PausedProgram_Rejects(t *testing.T) {
	template := newTemplate(t, amountRule, nil)
	program, err := coupon.ReconstructCouponProgram(
		coupon.NewProgramID(), "x", "tag", coupon.TriggerSignup,
		[]coupon.ProgramItem{{TemplateID: template.TemplateID(), Quantity: 1}},
		1, nil, 0, nil, nil, coupon.ProgramPaused, time.Now(), time.Now(),
	)
	require.NoError(t, err)

	assert.Equal(t, coupon.RejectProgramInactive, program.CanIssue(0, time.Now()).Reason)
}

// Test 7: 超出有效窗口拒絕
func TestCanIssue_OutsideWindow_Rejects(t *testing.T) {
	template := newTemplate(t, amountRule, nil)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	program, err := coupon.ReconstructCouponProgram(
		coupon.NewProgramID(), "x", "tag", coupon.TriggerSignup,
		[]coupon.ProgramItem{{TemplateID: template.TemplateID(), Quantity: 1}},
		1, nil, 0,
		timePtr(now.AddDate(0, 0, -10)), timePtr(now.AddDate(0, 0, -1)),
		coupon.ProgramActive, now, now,
	)
	require.NoError(t, err)

	assert.Equal(t, coupon.RejectOutsideWindow, program.CanIssue(0, now).Reason)
}

// ===========================
// Issue
// ===========================

// Test 8: 發放建立所有張數並遞增 issuedCount
func TestIssue_CreatesCouponsAndIncrementsIssuedCount(t *testing.T) {
	// Arrange
	template := newTemplate(t, amountRule, intPtr(30))
	program := newProgram(t, template, 3, 1, intPtr(100))
	userID := newUserID()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// Act
	issuance, coupons, err := program.Issue(userID, "birthday:2026", templatesOf(template), now)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, issuance.Quantity())
	assert.Len(t, coupons, 3)
	assert.Equal(t, 3, program.IssuedCount())
	for _, c := range coupons {
		assert.Equal(t, int64(500), c.DiscountCents())
		assert.Equal(t, int64(2000), c.MinSpendCents())
		assert.Equal(t, "birthday-2026", c.Campaign())
		assert.True(t, c.UserID().Equals(userID))
		require.NotNil(t, c.ExpiresAt())
		assert.Equal(t, now.AddDate(0, 0, 30), *c.ExpiresAt())
		assert.Equal(t, coupon.StatusAvailable, c.StatusAt(now))
	}
}

// Test 9: 模板無天數時以活動結束時間為到期
func TestIssue_TemplateWithoutDays_UsesProgramValidTo(t *testing.T) {
	template := newTemplate(t, amountRule, nil)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	validTo := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	program, err := coupon.NewCouponProgram(
		"x", "tag", coupon.TriggerSignup,
		[]coupon.ProgramItem{{TemplateID: template.TemplateID(), Quantity: 1}},
		1, nil, nil, &validTo,
	)
	require.NoError(t, err)

	_, coupons, err := program.Issue(newUserID(), "signup", templatesOf(template), now)

	require.NoError(t, err)
	require.Len(t, coupons, 1)
	assert.Equal(t, validTo, *coupons[0].ExpiresAt())
}

// Test 10: 百分比規則拒絕發放且不修改 issuedCount
func TestIssue_PercentRule_RejectedWithoutSideEffects(t *testing.T) {
	template := newTemplate(t, []byte(`{"type":"PERCENT","percent":10}`), nil)
	program := newProgram(t, template, 1, 1, nil)

	_, coupons, err := program.Issue(newUserID(), "birthday:2026", templatesOf(template), time.Now())

	assert.ErrorIs(t, err, coupon.ErrUnsupportedRedemptionRule)
	assert.Nil(t, coupons)
	assert.Equal(t, 0, program.IssuedCount())
}

// Test 11: 缺少模板返回錯誤
func TestIssue_MissingTemplate_ReturnsError(t *testing.T) {
	template := newTemplate(t, amountRule, nil)
	program := newProgram(t, template, 1, 1, nil)

	_, _, err := program.Issue(newUserID(), "birthday:2026", templatesOf(), time.Now())

	assert.ErrorIs(t, err, coupon.ErrTemplateNotFound)
}
