package order_test

import (
	"testing"
	"time"

	"github.com/jackyeh168/order_settlement/src/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test 1: 事件實現 DomainEvent 並以訂單 ID 為聚合 ID
func TestPaidVerified_ImplementsDomainEvent(t *testing.T) {
	// Arrange
	user := "6f1c1c2e-5b7a-4c1e-9d43-3c1f0f4b7a10"

	// Act
	event := order.NewPaidVerified("order-1", &user, 5000, 0, nil)

	// Assert
	assert.Equal(t, order.EventPaidVerified, event.EventType())
	assert.Equal(t, "order-1", event.AggregateID())
	assert.NotEmpty(t, event.EventID())
	assert.True(t, event.HasUser())
}

// Test 2: 匿名訂單
func TestPaidVerified_Anonymous_HasNoUser(t *testing.T) {
	empty := ""

	assert.False(t, order.NewPaidVerified("o", nil, 1, 0, nil).HasUser())
	assert.False(t, order.NewPaidVerified("o", &empty, 1, 0, nil).HasUser())
}

// Test 3: Copy 不共享指標欄位
func TestPaidVerified_Copy_DoesNotAliasPointers(t *testing.T) {
	// Arrange
	user := "u"
	pickup := time.Date(2026, 1, 2, 18, 30, 0, 0, time.UTC)
	event := order.NewPaidVerified("o", &user, 1, 0, &pickup)

	// Act
	copied := event.Copy()
	*copied.UserID = "mutated"
	*copied.PickupTime = pickup.Add(time.Hour)

	// Assert
	require.NotNil(t, event.UserID)
	assert.Equal(t, "u", *event.UserID)
	assert.Equal(t, pickup, *event.PickupTime)
}

// Test 4: 建構函數複製呼叫端指標
func TestNewPaidVerified_ClonesCallerPointers(t *testing.T) {
	user := "u"
	event := order.NewPaidVerified("o", &user, 1, 0, nil)

	user = "changed"

	assert.Equal(t, "u", *event.UserID)
}

// Test 5: 接單事件
func TestAccepted_EventType(t *testing.T) {
	event := order.NewAccepted("order-9")

	assert.Equal(t, order.EventAccepted, event.EventType())
	assert.Equal(t, "order-9", event.AggregateID())
}
