package coupon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackyeh168/order_settlement/src/internal/domain/coupon"
)

const amountRule = `{"type":"AMOUNT","discountCents":500,"minSpendCents":2000}`

var fixedNow = time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

// Test 1: perUserLimit=1 時第二次發放為零，issuedCount 只增加一次
func TestIssueProgram_PerUserCap_SecondAttemptIssuesZero(t *testing.T) {
	// Arrange
	h := newHarness(fixedNow)
	program := h.addProgram(coupon.TriggerManual, amountRule, 1, 1, nil)
	userID := uuid.NewString()

	// Act
	first, err := h.issue.Execute(context.Background(), IssueProgramCommand{
		ProgramID: program.ProgramID().String(), UserID: userID, Reference: "batch-1",
	})
	require.NoError(t, err)
	second, err := h.issue.Execute(context.Background(), IssueProgramCommand{
		ProgramID: program.ProgramID().String(), UserID: userID, Reference: "batch-2",
	})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, first.Issued)
	assert.Equal(t, 0, second.Issued)
	assert.Equal(t, coupon.RejectPerUserLimit, second.Reason)
	assert.Equal(t, 1, program.IssuedCount())
	assert.Len(t, h.publisher.events, 1, "zero issued must not notify")
}

// Test 2: 相同冪等鍵重送視為已發放
func TestIssueProgram_SameOccurrence_AlreadyIssued(t *testing.T) {
	h := newHarness(fixedNow)
	program := h.addProgram(coupon.TriggerOrderPaid, amountRule, 2, 5, nil)
	userID := uuid.NewString()
	cmd := IssueProgramCommand{ProgramID: program.ProgramID().String(), UserID: userID, Reference: "order-1"}

	first, err := h.issue.Execute(context.Background(), cmd)
	require.NoError(t, err)
	second, err := h.issue.Execute(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, 2, first.Issued)
	assert.Len(t, first.CouponIDs, 2)
	assert.Equal(t, 0, second.Issued)
	assert.Equal(t, coupon.RejectAlreadyIssued, second.Reason)
	assert.Equal(t, 2, program.IssuedCount())
}

// Test 3: 全域上限
func TestIssueProgram_TotalCap(t *testing.T) {
	h := newHarness(fixedNow)
	program := h.addProgram(coupon.TriggerManual, amountRule, 2, 1, intPtr(3))

	first, err := h.issue.Execute(context.Background(), IssueProgramCommand{
		ProgramID: program.ProgramID().String(), UserID: uuid.NewString(), Reference: "x",
	})
	require.NoError(t, err)
	second, err := h.issue.Execute(context.Background(), IssueProgramCommand{
		ProgramID: program.ProgramID().String(), UserID: uuid.NewString(), Reference: "x",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, first.Issued)
	assert.Equal(t, 0, second.Issued)
	assert.Equal(t, coupon.RejectTotalLimitReached, second.Reason)
}

// Test 4: 百分比規則同步返回錯誤且不建立資料
func TestIssueProgram_PercentRule_ReturnsError(t *testing.T) {
	h := newHarness(fixedNow)
	program := h.addProgram(coupon.TriggerManual, `{"type":"PERCENT","percent":10}`, 1, 1, nil)

	_, err := h.issue.Execute(context.Background(), IssueProgramCommand{
		ProgramID: program.ProgramID().String(), UserID: uuid.NewString(), Reference: "x",
	})

	assert.ErrorIs(t, err, coupon.ErrUnsupportedRedemptionRule)
	assert.Empty(t, h.store.coupons)
	assert.Empty(t, h.store.issuances)
	assert.Empty(t, h.publisher.events)
}

// Test 5: 生日活動的每人上限以年度為窗口
func TestIssueProgram_BirthdayWindowedByYear(t *testing.T) {
	h := newHarness(fixedNow)
	program := h.addProgram(coupon.TriggerBirthdayMonth, amountRule, 1, 1, nil)
	userID, _ := coupon.UserIDFromString(uuid.NewString())

	last, err := coupon.NewIssuance(program.ProgramID(), userID, program.CampaignTag(), "birthday:2025",
		1, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, fakeIssuances{h.store}.Create(nil, last))

	result, err := h.issue.Execute(context.Background(), IssueProgramCommand{
		ProgramID: program.ProgramID().String(), UserID: userID.String(),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Issued, "last year's issuance does not count")
}

// Test 6: CanIssueProgram 反映每人上限
func TestCanIssueProgram_ReflectsPerUserCap(t *testing.T) {
	h := newHarness(fixedNow)
	program := h.addProgram(coupon.TriggerManual, amountRule, 1, 1, nil)
	userID := uuid.NewString()
	query := CanIssueProgramQuery{ProgramID: program.ProgramID().String(), UserID: userID}

	before, err := h.canIssue.Execute(query)
	require.NoError(t, err)
	_, err = h.issue.Execute(context.Background(), IssueProgramCommand{
		ProgramID: program.ProgramID().String(), UserID: userID, Reference: "x",
	})
	require.NoError(t, err)
	after, err := h.canIssue.Execute(query)
	require.NoError(t, err)

	assert.True(t, before.Allowed)
	assert.False(t, after.Allowed)
	assert.Equal(t, 1, after.UserIssuances)
}

// Test 7: 發放事件帶有使用者與張數
func TestIssueProgram_PublishesIssuedEvent(t *testing.T) {
	h := newHarness(fixedNow)
	program := h.addProgram(coupon.TriggerSignup, amountRule, 3, 1, nil)
	userID := uuid.NewString()

	_, err := h.issue.Execute(context.Background(), IssueProgramCommand{ProgramID: program.ProgramID().String(), UserID: userID})
	require.NoError(t, err)

	require.Len(t, h.publisher.events, 1)
	event, ok := h.publisher.events[0].(*coupon.CouponsIssuedEvent)
	require.True(t, ok)
	assert.Equal(t, 3, event.Quantity())
	assert.Equal(t, userID, event.UserID().String())
	assert.Equal(t, "signup", event.OccurrenceKey())
}

// Test 8: 發放前對使用者加鎖
func TestIssueProgram_LocksUserBeforeIssuing(t *testing.T) {
	// Arrange
	h := newHarness(fixedNow)
	program := h.addProgram(coupon.TriggerManual, amountRule, 1, 1, nil)
	userID := uuid.NewString()

	// Act
	result, err := h.issue.Execute(context.Background(), IssueProgramCommand{
		ProgramID: program.ProgramID().String(), UserID: userID, Reference: "batch-1",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.Issued)
	assert.Equal(t, []string{userID}, h.locker.locked)
}

// Test 9: 使用者加鎖失敗時返回錯誤且不發放
func TestIssueProgram_UserLockFails_NothingIssued(t *testing.T) {
	// Arrange
	h := newHarness(fixedNow)
	program := h.addProgram(coupon.TriggerManual, amountRule, 1, 1, nil)
	h.locker.err = errors.New("lock wait timeout")

	// Act
	result, err := h.issue.Execute(context.Background(), IssueProgramCommand{
		ProgramID: program.ProgramID().String(), UserID: uuid.NewString(), Reference: "batch-1",
	})

	// Assert
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 0, program.IssuedCount())
	assert.Empty(t, h.store.issuances)
	assert.Empty(t, h.publisher.events)
}
