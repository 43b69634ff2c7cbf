package coupon

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackyeh168/order_settlement/src/internal/domain/coupon"
)

// IssueForTriggerCommand 為單一使用者評估某觸發類型的所有 ACTIVE 活動
type IssueForTriggerCommand struct {
	UserID      string
	TriggerType coupon.TriggerType
	Reference   string // ORDER_PAID 為訂單 ID；MANUAL 為批次代號
}

// IssueForTriggerResult 每個活動的發放結果
type IssueForTriggerResult struct {
	Outcomes []IssueProgramResult
}

// TotalIssued 本次觸發總共發放的張數
func (r *IssueForTriggerResult) TotalIssued() int {
	total := 0
	for _, o := range r.Outcomes {
		total += o.Issued
	}
	return total
}

// IssueForTriggerUseCase 同步觸發路徑（註冊、付款完成等）
//
// 每個活動各自一個事務；一個活動失敗不影響其他活動，所有錯誤合併後返回。
type IssueForTriggerUseCase struct {
	programs coupon.ProgramRepository
	issue    *IssueProgramUseCase
}

// NewIssueForTriggerUseCase 創建 Use Case 實例
func NewIssueForTriggerUseCase(programs coupon.ProgramRepository, issue *IssueProgramUseCase) *IssueForTriggerUseCase {
	return &IssueForTriggerUseCase{programs: programs, issue: issue}
}

// Execute 執行觸發
//
// 時間型觸發（BIRTHDAY_MONTH）只由每日掃描發放，這裡返回 ErrInvalidTriggerType。
func (uc *IssueForTriggerUseCase) Execute(ctx context.Context, cmd IssueForTriggerCommand) (*IssueForTriggerResult, error) {
	if cmd.TriggerType.IsTimeBased() {
		return nil, coupon.ErrInvalidTriggerType.WithContext(
			"trigger_type", string(cmd.TriggerType),
			"reason", "time-based triggers are issued by the scheduled sweep",
		)
	}

	programs, err := uc.programs.FindActiveByTrigger(nil, cmd.TriggerType)
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}

	result := &IssueForTriggerResult{}
	var errs []error
	for _, program := range programs {
		outcome, err := uc.issue.Execute(ctx, IssueProgramCommand{
			ProgramID: program.ProgramID().String(),
			UserID:    cmd.UserID,
			Reference: cmd.Reference,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("program %s: %w", program.ProgramID().String(), err))
			continue
		}
		result.Outcomes = append(result.Outcomes, *outcome)
	}

	return result, errors.Join(errs...)
}
