package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// GORMTransactionManager shared.TransactionManager 的 GORM 實作
//
// fn 返回錯誤時回滾；fn panic 時回滾後重新 panic；否則提交。
// 事務期間取得的行鎖（SELECT ... FOR UPDATE）在提交或回滾時釋放。
type GORMTransactionManager struct {
	db *gorm.DB
}

// NewGORMTransactionManager 創建事務管理器
func NewGORMTransactionManager(db *gorm.DB) *GORMTransactionManager {
	return &GORMTransactionManager{db: db}
}

// InTransaction 在事務中執行 fn
func (m *GORMTransactionManager) InTransaction(ctx context.Context, fn func(tx shared.TransactionContext) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMTransactionContext(tx))
	})
}
