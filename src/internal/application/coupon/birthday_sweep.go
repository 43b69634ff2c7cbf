package coupon

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jackyeh168/order_settlement/src/internal/domain/coupon"
	"github.com/jackyeh168/order_settlement/src/internal/domain/member"
)

// SweepReport 一次排程掃描的統計
type SweepReport struct {
	Programs int
	Members  int
	Issued   int
	Failures int
}

// BirthdaySweepUseCase 每日生日月份發券
//
// 以 ACTIVE 的 BIRTHDAY_MONTH 活動對生日在本月的 ACTIVE 會員逐一發放；
// 冪等鍵為 "birthday:<year>"，因此同月份每天重跑不會重複發放。
// 單一會員失敗只記錄，不中斷掃描。
type BirthdaySweepUseCase struct {
	programs coupon.ProgramRepository
	members  member.MemberRepository
	issue    *IssueProgramUseCase
	logger   *zap.Logger
}

// NewBirthdaySweepUseCase 創建 Use Case 實例
func NewBirthdaySweepUseCase(
	programs coupon.ProgramRepository,
	members member.MemberRepository,
	issue *IssueProgramUseCase,
	logger *zap.Logger,
) *BirthdaySweepUseCase {
	return &BirthdaySweepUseCase{
		programs: programs,
		members:  members,
		issue:    issue,
		logger:   logger,
	}
}

// Execute 以 now 的月份與年份執行掃描
func (uc *BirthdaySweepUseCase) Execute(ctx context.Context, now time.Time) (*SweepReport, error) {
	programs, err := uc.programs.FindActiveByTrigger(nil, coupon.TriggerBirthdayMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to list birthday programs: %w", err)
	}
	report := &SweepReport{Programs: len(programs)}
	if len(programs) == 0 {
		return report, nil
	}

	members, err := uc.members.FindActiveByBirthMonth(nil, now.Month())
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	report.Members = len(members)

	key := coupon.TriggerBirthdayMonth.OccurrenceKey(now, "")
	for _, program := range programs {
		for _, m := range members {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			outcome, err := uc.issue.Execute(ctx, IssueProgramCommand{
				ProgramID:     program.ProgramID().String(),
				UserID:        m.MemberID().String(),
				OccurrenceKey: key,
			})
			if err != nil {
				report.Failures++
				uc.logger.Error("birthday issuance failed",
					zap.String("program_id", program.ProgramID().String()),
					zap.String("user_id", m.MemberID().String()),
					zap.Error(err),
				)
				continue
			}
			report.Issued += outcome.Issued
		}
	}

	uc.logger.Info("birthday sweep finished",
		zap.Int("programs", report.Programs),
		zap.Int("members", report.Members),
		zap.Int("issued", report.Issued),
		zap.Int("failures", report.Failures),
	)
	return report, nil
}
