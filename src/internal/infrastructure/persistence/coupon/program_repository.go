package coupon

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jackyeh168/order_settlement/src/internal/domain/coupon"
	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
	"github.com/jackyeh168/order_settlement/src/internal/infrastructure/persistence/gormutil"
)

// ProgramRepository 優惠活動倉儲實現（GORM）
type ProgramRepository struct {
	db *gorm.DB
}

// NewProgramRepository 創建優惠活動倉儲
func NewProgramRepository(db *gorm.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

var _ coupon.ProgramRepository = (*ProgramRepository)(nil)

// FindByIDForUpdate 讀取活動並加鎖，序列化 issued_count 的讀-改-寫
func (r *ProgramRepository) FindByIDForUpdate(tx shared.TransactionContext, programID coupon.ProgramID) (*coupon.CouponProgram, error) {
	db, err := gormutil.TxDB(tx)
	if err != nil {
		return nil, err
	}
	return r.find(db.Clauses(clause.Locking{Strength: "UPDATE"}), programID)
}

// FindByID 讀取活動（不加鎖）
func (r *ProgramRepository) FindByID(tx shared.TransactionContext, programID coupon.ProgramID) (*coupon.CouponProgram, error) {
	return r.find(gormutil.DB(tx, r.db), programID)
}

func (r *ProgramRepository) find(db *gorm.DB, programID coupon.ProgramID) (*coupon.CouponProgram, error) {
	var model CouponProgramModel
	result := db.Where("program_id = ?", programID.String()).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, coupon.ErrProgramNotFound.WithContext("program_id", programID.String())
		}
		return nil, result.Error
	}
	return model.toDomain()
}

// FindActiveByTrigger 查詢指定觸發類型的所有 ACTIVE 活動（依建立時間排序）
func (r *ProgramRepository) FindActiveByTrigger(tx shared.TransactionContext, triggerType coupon.TriggerType) ([]*coupon.CouponProgram, error) {
	db := gormutil.DB(tx, r.db)

	var models []CouponProgramModel
	result := db.Where("trigger_type = ? AND status = ?", string(triggerType), string(coupon.ProgramActive)).
		Order("created_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	programs := make([]*coupon.CouponProgram, 0, len(models))
	for i := range models {
		p, err := models[i].toDomain()
		if err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	return programs, nil
}

// Create 新增活動
func (r *ProgramRepository) Create(tx shared.TransactionContext, program *coupon.CouponProgram) error {
	return gormutil.DB(tx, r.db).Create(programToModel(program)).Error
}

// UpdateIssuedCount 寫回 issued_count
//
// WHERE issued_count <= ? 保證計數只增不減。
func (r *ProgramRepository) UpdateIssuedCount(tx shared.TransactionContext, program *coupon.CouponProgram) error {
	db, err := gormutil.TxDB(tx)
	if err != nil {
		return err
	}

	result := db.Model(&CouponProgramModel{}).
		Where("program_id = ? AND issued_count <= ?", program.ProgramID().String(), program.IssuedCount()).
		Updates(map[string]interface{}{
			"issued_count": program.IssuedCount(),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return coupon.ErrProgramNotFound.WithContext(
			"program_id", program.ProgramID().String(),
			"issued_count", program.IssuedCount(),
		)
	}
	return nil
}

// ===========================
// TemplateRepository
// ===========================

// TemplateRepository 優惠券模板倉儲實現（GORM）
type TemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository 創建模板倉儲
func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

var _ coupon.TemplateRepository = (*TemplateRepository)(nil)

// Create 新增模板
func (r *TemplateRepository) Create(tx shared.TransactionContext, template *coupon.CouponTemplate) error {
	return gormutil.DB(tx, r.db).Create(templateToModel(template)).Error
}

// FindByIDs 批量讀取模板
func (r *TemplateRepository) FindByIDs(tx shared.TransactionContext, ids []coupon.TemplateID) (map[coupon.TemplateID]*coupon.CouponTemplate, error) {
	templates := make(map[coupon.TemplateID]*coupon.CouponTemplate, len(ids))
	if len(ids) == 0 {
		return templates, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}

	var models []CouponTemplateModel
	if err := gormutil.DB(tx, r.db).Where("template_id IN ?", keys).Find(&models).Error; err != nil {
		return nil, err
	}

	for i := range models {
		t, err := models[i].toDomain()
		if err != nil {
			return nil, err
		}
		templates[t.TemplateID()] = t
	}
	return templates, nil
}
