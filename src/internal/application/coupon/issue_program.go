package coupon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackyeh168/order_settlement/src/internal/domain/coupon"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// ===========================
// IssueProgramToUser Use Case
// ===========================

// IssueProgramCommand 發放活動給單一使用者
//
// OccurrenceKey 為空時依觸發類型由 Reference 推導（見 TriggerType.OccurrenceKey）。
type IssueProgramCommand struct {
	ProgramID     string
	UserID        string
	OccurrenceKey string
	Reference     string
}

// IssueProgramResult 發放結果
//
// Issued == 0 表示沒有建立任何優惠券（Reason 說明原因），也不會發出通知。
type IssueProgramResult struct {
	ProgramID string
	Issued    int
	Reason    coupon.RejectReason
	CouponIDs []string
}

// errAlreadyIssued 在事務內表示並發重複發放，用於回滾後轉為零發放結果
var errAlreadyIssued = errors.New("issuance already recorded")

// UserLocker 在事務中對使用者加排他鎖
//
// 每人上限以活動標籤跨活動計算，同一使用者的發放必須在同一把鎖下檢查。
type UserLocker interface {
	LockUser(tx shared.TransactionContext, userID string) error
}

// IssueProgramUseCase 發放活動
//
// 加鎖順序：先鎖使用者（UserLocker），再以 SELECT ... FOR UPDATE 鎖活動列。
// 使用者鎖序列化共用標籤的每人上限檢查，活動鎖序列化 issuedCount 的讀-改-寫；
// 優惠券、使用狀態與 issuedCount 在同一事務中寫入。
type IssueProgramUseCase struct {
	programs  coupon.ProgramRepository
	templates coupon.TemplateRepository
	issuances coupon.IssuanceRepository
	coupons   coupon.CouponRepository
	txManager shared.TransactionManager
	userLock  UserLocker
	publisher shared.EventPublisher
	now       func() time.Time
}

// NewIssueProgramUseCase 創建 Use Case 實例（userLock、publisher 可為 nil）
func NewIssueProgramUseCase(
	programs coupon.ProgramRepository,
	templates coupon.TemplateRepository,
	issuances coupon.IssuanceRepository,
	coupons coupon.CouponRepository,
	txManager shared.TransactionManager,
	userLock UserLocker,
	publisher shared.EventPublisher,
) *IssueProgramUseCase {
	return &IssueProgramUseCase{
		programs:  programs,
		templates: templates,
		issuances: issuances,
		coupons:   coupons,
		txManager: txManager,
		userLock:  userLock,
		publisher: publisher,
		now:       time.Now,
	}
}

// Execute 執行發放
//
// 錯誤：
// - 規則不合法或不支援（百分比）、缺少模板 → 返回錯誤，不建立任何資料
// - 活動狀態、窗口、上限不符 → 不是錯誤；Issued == 0 並附原因
func (uc *IssueProgramUseCase) Execute(ctx context.Context, cmd IssueProgramCommand) (*IssueProgramResult, error) {
	programID, err := coupon.ProgramIDFromString(cmd.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse program ID: %w", err)
	}
	userID, err := coupon.UserIDFromString(cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user ID: %w", err)
	}

	now := uc.now()
	result := &IssueProgramResult{ProgramID: cmd.ProgramID}
	var event shared.DomainEvent

	err = uc.txManager.InTransaction(ctx, func(tx shared.TransactionContext) error {
		if uc.userLock != nil {
			if err := uc.userLock.LockUser(tx, userID.String()); err != nil {
				return fmt.Errorf("failed to lock user: %w", err)
			}
		}

		program, err := uc.programs.FindByIDForUpdate(tx, programID)
		if err != nil {
			return fmt.Errorf("failed to lock program: %w", err)
		}

		key := cmd.OccurrenceKey
		if key == "" {
			key = program.TriggerType().OccurrenceKey(now, cmd.Reference)
		}

		exists, err := uc.issuances.Exists(tx, programID, userID, key)
		if err != nil {
			return err
		}
		if exists {
			result.Reason = coupon.RejectAlreadyIssued
			return nil
		}

		userIssuances, err := uc.issuances.CountForUser(
			tx, program.CampaignTag(), userID, program.TriggerType().PerUserWindowStart(now),
		)
		if err != nil {
			return err
		}
		decision := program.CanIssue(userIssuances, now)
		if !decision.Allowed {
			result.Reason = decision.Reason
			return nil
		}

		templates, err := uc.templates.FindByIDs(tx, program.TemplateIDs())
		if err != nil {
			return err
		}

		issuance, coupons, err := program.Issue(userID, key, templates, now)
		if err != nil {
			return err
		}

		if err := uc.issuances.Create(tx, issuance); err != nil {
			if errors.Is(err, coupon.ErrDuplicateIssuance) {
				return errAlreadyIssued
			}
			return fmt.Errorf("failed to record issuance: %w", err)
		}
		if err := uc.coupons.CreateBatch(tx, coupons); err != nil {
			return fmt.Errorf("failed to create coupons: %w", err)
		}
		if err := uc.programs.UpdateIssuedCount(tx, program); err != nil {
			return fmt.Errorf("failed to update issued count: %w", err)
		}

		result.Issued = len(coupons)
		for _, c := range coupons {
			result.CouponIDs = append(result.CouponIDs, c.CouponID().String())
		}
		event = coupon.NewCouponsIssuedEvent(program, issuance)
		return nil
	})
	if errors.Is(err, errAlreadyIssued) {
		return &IssueProgramResult{ProgramID: cmd.ProgramID, Reason: coupon.RejectAlreadyIssued}, nil
	}
	if err != nil {
		return nil, err
	}

	if event != nil && uc.publisher != nil {
		uc.publisher.Publish(ctx, event)
	}
	return result, nil
}
