// Package gormutil 供各 Repository 共用的 GORM 輔助函數
package gormutil

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/jackyeh168/order_settlement/src/internal/domain/shared"
)

// ErrTransactionRequired 加鎖讀取或寫入時未提供事務
var ErrTransactionRequired = errors.New("operation requires a transaction context")

// txContext 由 persistence.NewGORMTransactionContext 建立的事務上下文
type txContext interface {
	shared.TransactionContext
	GetDB() *gorm.DB
}

// DB 返回事務中的連接；tx 為 nil 或不是 GORM 事務時返回 fallback（auto-commit）
func DB(tx shared.TransactionContext, fallback *gorm.DB) *gorm.DB {
	if gormTx, ok := tx.(txContext); ok {
		return gormTx.GetDB()
	}
	return fallback
}

// TxDB 返回事務中的連接；沒有事務時返回 ErrTransactionRequired
func TxDB(tx shared.TransactionContext) (*gorm.DB, error) {
	if gormTx, ok := tx.(txContext); ok {
		return gormTx.GetDB(), nil
	}
	return nil, ErrTransactionRequired
}

// IsUniqueConstraintError 檢查是否為唯一約束錯誤
//
// 開啟 TranslateError 時 GORM 會返回 gorm.ErrDuplicatedKey；
// 否則依各資料庫的錯誤訊息判斷：
// - SQLite: "UNIQUE constraint failed"
// - PostgreSQL: "duplicate key value violates unique constraint"
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "violates unique constraint")
}
