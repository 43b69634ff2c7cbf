package loyalty

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jackyeh168/order_settlement/src/internal/domain/loyalty"
)

// Test 1: 餘額與帳目總和一致
func TestGetBalance_ReportsLedgerConsistency(t *testing.T) {
	// Arrange
	f := newSettleFixture(t, 0, 0, newPolicy("1", "1"))
	f.settle(t, uuid.NewString(), 1234, 0)
	uid, _ := loyalty.UserIDFromString(f.userID)
	f.accounts.On("FindByUserID", mock.Anything, uid).Return(f.account, nil)
	query := NewGetBalanceUseCase(f.accounts, f.ledger)

	// Act
	result, err := query.Execute(GetBalanceQuery{UserID: f.userID})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(12340000), result.BalanceMicro)
	assert.Equal(t, "12.34", result.Points)
	assert.Equal(t, result.BalanceMicro, result.LedgerSum)
	assert.True(t, result.Consistent)
}

// Test 2: 帳戶不存在
func TestGetBalance_AccountNotFound(t *testing.T) {
	accounts := new(MockAccountRepository)
	accounts.On("FindByUserID", mock.Anything, mock.Anything).Return(nil, loyalty.ErrAccountNotFound)
	query := NewGetBalanceUseCase(accounts, &fakeLedger{})

	_, err := query.Execute(GetBalanceQuery{UserID: uuid.NewString()})

	assert.ErrorIs(t, err, loyalty.ErrAccountNotFound)
}

// Test 3: 帳戶餘額與帳目不一致時標記
func TestGetBalance_Inconsistent(t *testing.T) {
	userID := uuid.NewString()
	uid, _ := loyalty.UserIDFromString(userID)
	account, _ := loyalty.ReconstructLoyaltyAccount(loyalty.NewAccountID(), uid, 42, "BRONZE", 0, time.Now(), time.Now())
	accounts := new(MockAccountRepository)
	accounts.On("FindByUserID", mock.Anything, uid).Return(account, nil)

	result, err := NewGetBalanceUseCase(accounts, &fakeLedger{}).Execute(GetBalanceQuery{UserID: userID})

	require.NoError(t, err)
	assert.False(t, result.Consistent)
}
