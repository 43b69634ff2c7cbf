package member

import (
	"context"
	"time"

	"go.uber.org/zap"

	couponapp "github.com/jackyeh168/order_settlement/src/internal/application/coupon"
	"github.com/jackyeh168/order_settlement/src/internal/domain/coupon"
	"github.com/jackyeh168/order_settlement/src/internal/domain/member"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// ===========================
// RegisterMember Use Case
// ===========================

// RegisterMemberCommand 註冊會員指令（Input DTO）
//
// 使用原始類型（string），由 Use Case 轉換為 Value Object。
type RegisterMemberCommand struct {
	Email       string
	DisplayName string
	BirthDate   string // YYYY-MM-DD，可為空
}

// RegisterMemberResult 註冊會員結果（Output DTO）
type RegisterMemberResult struct {
	MemberID      string
	Email         string
	CouponsIssued int
}

// SignupCouponTrigger 註冊後同步發券
type SignupCouponTrigger interface {
	Execute(ctx context.Context, cmd couponapp.IssueForTriggerCommand) (*couponapp.IssueForTriggerResult, error)
}

// RegisterMemberUseCase 註冊會員 Use Case 接口
//
// 業務規則：
// 1. Email 不能重複
// 2. DisplayName 不能為空
// 3. 註冊提交後同步觸發 SIGNUP 活動；發券失敗只記錄，不影響註冊結果
type RegisterMemberUseCase interface {
	Execute(ctx context.Context, cmd RegisterMemberCommand) (*RegisterMemberResult, error)
}

// RegisterMemberUseCaseImpl 註冊會員 Use Case 實作
type RegisterMemberUseCaseImpl struct {
	memberRepo member.MemberRepository
	txManager  shared.TransactionManager
	signup     SignupCouponTrigger
	logger     *zap.Logger
}

// NewRegisterMemberUseCase 創建 RegisterMemberUseCase 實例
//
// signup 可為 nil（不發註冊禮）。
func NewRegisterMemberUseCase(
	memberRepo member.MemberRepository,
	txManager shared.TransactionManager,
	signup SignupCouponTrigger,
	logger *zap.Logger,
) RegisterMemberUseCase {
	return &RegisterMemberUseCaseImpl{
		memberRepo: memberRepo,
		txManager:  txManager,
		signup:     signup,
		logger:     logger,
	}
}

// Execute 執行註冊會員 Use Case
//
// 業務流程：
// 1. 驗證輸入並轉換為 Value Object
// 2. 在事務中執行：
//    a. 檢查 Email 是否已註冊
//    b. 創建 Member 聚合
//    c. 保存到資料庫
// 3. 事務提交後觸發 SIGNUP 發券
//
// 錯誤處理：
// - 輸入驗證失敗 → 返回 Domain 錯誤
// - Email 已存在 → member.ErrEmailAlreadyUsed
// - 資料庫錯誤 → 返回原始錯誤
func (uc *RegisterMemberUseCaseImpl) Execute(ctx context.Context, cmd RegisterMemberCommand) (*RegisterMemberResult, error) {
	// Step 1: 驗證輸入並轉換為 Value Object
	email, err := member.NewEmail(cmd.Email)
	if err != nil {
		return nil, err
	}

	var birthDate *time.Time
	if cmd.BirthDate != "" {
		parsed, err := time.Parse(time.DateOnly, cmd.BirthDate)
		if err != nil {
			return nil, member.ErrInvalidBirthDate.WithContext("birth_date", cmd.BirthDate)
		}
		birthDate = &parsed
	}

	// Step 2: 在事務中執行業務邏輯
	var newMember *member.Member

	err = uc.txManager.InTransaction(ctx, func(tx shared.TransactionContext) error {
		exists, err := uc.memberRepo.ExistsByEmail(tx, email)
		if err != nil {
			return err
		}
		if exists {
			return member.ErrEmailAlreadyUsed.WithContext("email", email.String())
		}

		newMember, err = member.NewMember(email, cmd.DisplayName, birthDate)
		if err != nil {
			return err
		}

		return uc.memberRepo.Save(tx, newMember)
	})

	if err != nil {
		return nil, err
	}

	result := &RegisterMemberResult{
		MemberID: newMember.MemberID().String(),
		Email:    newMember.Email().String(),
	}

	// Step 3: 註冊禮（失敗不影響註冊）
	if uc.signup != nil {
		issued, err := uc.signup.Execute(ctx, couponapp.IssueForTriggerCommand{
			UserID:      result.MemberID,
			TriggerType: coupon.TriggerSignup,
		})
		if issued != nil {
			result.CouponsIssued = issued.TotalIssued()
		}
		if err != nil {
			uc.logger.Error("signup coupon issuance failed",
				zap.String("user_id", result.MemberID),
				zap.Error(err),
			)
		}
	}

	return result, nil
}
