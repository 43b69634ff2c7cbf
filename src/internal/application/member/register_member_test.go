package member

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	couponapp "github.com/jackyeh168/order_settlement/src/internal/application/coupon"
	"github.com/jackyeh168/order_settlement/src/internal/domain/coupon"
	"github.com/jackyeh168/order_settlement/src/internal/domain/member"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// ===========================
// Mocks
// ===========================

// MockMemberRepository mock implementation of MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Save(tx shared.TransactionContext, mem *member.Member) error {
	args := m.Called(tx, mem)
	return args.Error(0)
}

func (m *MockMemberRepository) FindByMemberID(tx shared.TransactionContext, id member.MemberID) (*member.Member, error) {
	args := m.Called(tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByEmail(tx shared.TransactionContext, email member.Email) (*member.Member, error) {
	args := m.Called(tx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

func (m *MockMemberRepository) ExistsByEmail(tx shared.TransactionContext, email member.Email) (bool, error) {
	args := m.Called(tx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockMemberRepository) FindActiveByBirthMonth(tx shared.TransactionContext, month time.Month) ([]*member.Member, error) {
	args := m.Called(tx, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*member.Member), args.Error(1)
}

// MockTransactionManager mock implementation of TransactionManager
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) InTransaction(_ context.Context, fn func(tx shared.TransactionContext) error) error {
	// Directly execute the function with nil context (for unit tests)
	return fn(nil)
}

// MockSignupTrigger mock implementation of SignupCouponTrigger
type MockSignupTrigger struct {
	mock.Mock
}

func (m *MockSignupTrigger) Execute(ctx context.Context, cmd couponapp.IssueForTriggerCommand) (*couponapp.IssueForTriggerResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*couponapp.IssueForTriggerResult), args.Error(1)
}

func validCommand() RegisterMemberCommand {
	return RegisterMemberCommand{
		Email:       "john@example.com",
		DisplayName: "John Doe",
		BirthDate:   "1990-06-15",
	}
}

// ===========================
// RegisterMemberUseCase Tests
// ===========================

// Test 1: Register member successfully and fire signup trigger
func TestRegisterMemberUseCase_Execute_Success(t *testing.T) {
	// Arrange
	mockRepo := new(MockMemberRepository)
	mockTrigger := new(MockSignupTrigger)
	useCase := NewRegisterMemberUseCase(mockRepo, new(MockTransactionManager), mockTrigger, zap.NewNop())

	mockRepo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
	mockRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	mockTrigger.On("Execute", mock.Anything, mock.MatchedBy(func(cmd couponapp.IssueForTriggerCommand) bool {
		return cmd.TriggerType == coupon.TriggerSignup && cmd.UserID != ""
	})).Return(&couponapp.IssueForTriggerResult{
		Outcomes: []couponapp.IssueProgramResult{{Issued: 2}},
	}, nil)

	// Act
	result, err := useCase.Execute(context.Background(), validCommand())

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, result.MemberID, "MemberID should be generated")
	assert.Equal(t, "john@example.com", result.Email)
	assert.Equal(t, 2, result.CouponsIssued)

	mockRepo.AssertExpectations(t)
	mockTrigger.AssertExpectations(t)
}

// Test 2: Invalid email format
func TestRegisterMemberUseCase_Execute_InvalidEmail_ReturnsError(t *testing.T) {
	// Arrange
	mockRepo := new(MockMemberRepository)
	useCase := NewRegisterMemberUseCase(mockRepo, new(MockTransactionManager), nil, zap.NewNop())
	cmd := validCommand()
	cmd.Email = "INVALID"

	// Act
	result, err := useCase.Execute(context.Background(), cmd)

	// Assert
	assert.ErrorIs(t, err, member.ErrInvalidEmail)
	assert.Nil(t, result)
	mockRepo.AssertNotCalled(t, "ExistsByEmail")
	mockRepo.AssertNotCalled(t, "Save")
}

// Test 3: Invalid birth date
func TestRegisterMemberUseCase_Execute_InvalidBirthDate_ReturnsError(t *testing.T) {
	mockRepo := new(MockMemberRepository)
	useCase := NewRegisterMemberUseCase(mockRepo, new(MockTransactionManager), nil, zap.NewNop())
	cmd := validCommand()
	cmd.BirthDate = "15/06/1990"

	result, err := useCase.Execute(context.Background(), cmd)

	assert.ErrorIs(t, err, member.ErrInvalidBirthDate)
	assert.Nil(t, result)
	mockRepo.AssertNotCalled(t, "Save")
}

// Test 4: Email already registered
func TestRegisterMemberUseCase_Execute_EmailExists_ReturnsError(t *testing.T) {
	// Arrange
	mockRepo := new(MockMemberRepository)
	mockTrigger := new(MockSignupTrigger)
	useCase := NewRegisterMemberUseCase(mockRepo, new(MockTransactionManager), mockTrigger, zap.NewNop())
	mockRepo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(true, nil)

	// Act
	result, err := useCase.Execute(context.Background(), validCommand())

	// Assert
	assert.ErrorIs(t, err, member.ErrEmailAlreadyUsed)
	assert.Nil(t, result)
	mockRepo.AssertNotCalled(t, "Save")
	mockTrigger.AssertNotCalled(t, "Execute")
}

// Test 5: Empty display name
func TestRegisterMemberUseCase_Execute_EmptyDisplayName_ReturnsError(t *testing.T) {
	mockRepo := new(MockMemberRepository)
	useCase := NewRegisterMemberUseCase(mockRepo, new(MockTransactionManager), nil, zap.NewNop())
	mockRepo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
	cmd := validCommand()
	cmd.DisplayName = ""

	result, err := useCase.Execute(context.Background(), cmd)

	assert.ErrorIs(t, err, member.ErrInvalidDisplayName)
	assert.Nil(t, result)
	mockRepo.AssertNotCalled(t, "Save")
}

// Test 6: Repository Save fails
func TestRegisterMemberUseCase_Execute_SaveFails_ReturnsError(t *testing.T) {
	// Arrange
	mockRepo := new(MockMemberRepository)
	mockTrigger := new(MockSignupTrigger)
	useCase := NewRegisterMemberUseCase(mockRepo, new(MockTransactionManager), mockTrigger, zap.NewNop())
	dbError := errors.New("database write failed")
	mockRepo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
	mockRepo.On("Save", mock.Anything, mock.Anything).Return(dbError)

	// Act
	result, err := useCase.Execute(context.Background(), validCommand())

	// Assert
	assert.Equal(t, dbError, err)
	assert.Nil(t, result)
	mockTrigger.AssertNotCalled(t, "Execute")
}

// Test 7: Signup issuance failure is logged and does not fail registration
func TestRegisterMemberUseCase_Execute_SignupIssuanceFails_LoggedNotReturned(t *testing.T) {
	// Arrange
	core, logs := observer.New(zap.ErrorLevel)
	mockRepo := new(MockMemberRepository)
	mockTrigger := new(MockSignupTrigger)
	useCase := NewRegisterMemberUseCase(mockRepo, new(MockTransactionManager), mockTrigger, zap.New(core))

	mockRepo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
	mockRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	mockTrigger.On("Execute", mock.Anything, mock.Anything).Return(nil, coupon.ErrUnsupportedRedemptionRule)

	// Act
	result, err := useCase.Execute(context.Background(), validCommand())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0, result.CouponsIssued)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "signup coupon issuance failed", entry.Message)
	assert.Equal(t, result.MemberID, entry.ContextMap()["user_id"])
}
