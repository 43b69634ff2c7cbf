// Package database 開啟 GORM 連線並遷移所有資料表
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jackyeh168/order_settlement/src/internal/infrastructure/config"
	couponrepo "github.com/jackyeh168/order_settlement/src/internal/infrastructure/persistence/coupon"
	loyaltyrepo "github.com/jackyeh168/order_settlement/src/internal/infrastructure/persistence/loyalty"
	memberrepo "github.com/jackyeh168/order_settlement/src/internal/infrastructure/persistence/member"
)

// Models 所有需要遷移的 GORM 模型
func Models() []interface{} {
	return []interface{}{
		&memberrepo.MemberGORM{},
		&loyaltyrepo.LoyaltyAccountModel{},
		&loyaltyrepo.LedgerEntryModel{},
		&couponrepo.CouponProgramModel{},
		&couponrepo.CouponTemplateModel{},
		&couponrepo.CouponIssuanceModel{},
		&couponrepo.CouponModel{},
		&couponrepo.UserCouponModel{},
	}
}

// Open 依設定選擇 dialector 開啟連線
//
// TranslateError 開啟後唯一鍵衝突會轉為 gorm.ErrDuplicatedKey。
// SQLite 只允許單一寫入者，連接池限制為 1。
func Open(cfg config.DatabaseConfig, logLevel logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

// Migrate 自動遷移所有資料表
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close 關閉底層連線池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
