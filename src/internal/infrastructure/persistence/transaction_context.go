package persistence

import (
	"gorm.io/gorm"

	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// ===========================
// GORM TransactionContext 實作
// ===========================

// gormTransactionContext GORM 事務上下文實作
//
// 封裝 *gorm.DB，避免洩漏到 Domain Layer；
// Repository 透過 gormutil.DB / gormutil.TxDB 取出連接。
type gormTransactionContext struct {
	db *gorm.DB
}

// NewGORMTransactionContext 創建 GORM 事務上下文
func NewGORMTransactionContext(db *gorm.DB) shared.TransactionContext {
	return &gormTransactionContext{db: db}
}

// GetDB 獲取 GORM DB 連接（僅供 Infrastructure Layer 內部使用）
// 這個方法不在 shared.TransactionContext 介面中，Domain Layer 無法訪問 GORM
func (ctx *gormTransactionContext) GetDB() *gorm.DB {
	return ctx.db
}
