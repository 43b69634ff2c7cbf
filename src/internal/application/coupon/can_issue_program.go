package coupon

import (
	"fmt"
	"time"

	"github.com/jackyeh168/order_settlement/src/internal/domain/coupon"
)

// CanIssueProgramQuery 查詢使用者目前是否可領取活動
type CanIssueProgramQuery struct {
	ProgramID string
	UserID    string
}

// CanIssueProgramResult 查詢結果
type CanIssueProgramResult struct {
	Allowed       bool
	Reason        coupon.RejectReason
	UserIssuances int
}

// CanIssueProgramUseCase 讀取後判斷（不加鎖）
//
// 結果只是建議：真正的上限保證在 IssueProgramUseCase 的鎖內重新檢查。
type CanIssueProgramUseCase struct {
	programs  coupon.ProgramRepository
	issuances coupon.IssuanceRepository
	now       func() time.Time
}

// NewCanIssueProgramUseCase 創建 Use Case 實例
func NewCanIssueProgramUseCase(programs coupon.ProgramRepository, issuances coupon.IssuanceRepository) *CanIssueProgramUseCase {
	return &CanIssueProgramUseCase{programs: programs, issuances: issuances, now: time.Now}
}

// Execute 執行查詢
func (uc *CanIssueProgramUseCase) Execute(query CanIssueProgramQuery) (*CanIssueProgramResult, error) {
	programID, err := coupon.ProgramIDFromString(query.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse program ID: %w", err)
	}
	userID, err := coupon.UserIDFromString(query.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user ID: %w", err)
	}

	program, err := uc.programs.FindByID(nil, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to find program: %w", err)
	}

	now := uc.now()
	count, err := uc.issuances.CountForUser(nil, program.CampaignTag(), userID, program.TriggerType().PerUserWindowStart(now))
	if err != nil {
		return nil, err
	}

	decision := program.CanIssue(count, now)
	return &CanIssueProgramResult{
		Allowed:       decision.Allowed,
		Reason:        decision.Reason,
		UserIssuances: count,
	}, nil
}
