// Package config 從 .env 與環境變數載入設定
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/jackyeh168/order_settlement/src/internal/domain/loyalty"
)

// Config 進程設定
type Config struct {
	Env      string
	LogLevel string

	Database  DatabaseConfig
	Redis     RedisConfig
	SMTP      SMTPConfig
	Loyalty   LoyaltyConfig
	Scheduler SchedulerConfig
	Stream    StreamConfig
}

// DatabaseConfig 資料庫連線
type DatabaseConfig struct {
	Driver string // sqlite | postgres
	DSN    string
}

// RedisConfig Redis 連線；Addr 為空時使用進程內的冪等標記
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled 是否設定了 Redis
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// SMTPConfig 寄信設定；Host 為空時只記錄不寄送
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled 是否設定了 SMTP
func (c SMTPConfig) Enabled() bool { return c.Host != "" }

// LoyaltyConfig 積分規則
type LoyaltyConfig struct {
	EarnRatePerDollar     decimal.Decimal
	RedeemDollarsPerPoint decimal.Decimal
	SilverCents           int64
	GoldCents             int64
	PlatinumCents         int64
	Multipliers           map[loyalty.Tier]decimal.Decimal
}

// Policy 轉為領域的結算策略
func (c LoyaltyConfig) Policy() (loyalty.SettlementPolicy, error) {
	tiers, err := loyalty.NewTierPolicy(
		loyalty.Cents(c.SilverCents),
		loyalty.Cents(c.GoldCents),
		loyalty.Cents(c.PlatinumCents),
		c.Multipliers,
	)
	if err != nil {
		return loyalty.SettlementPolicy{}, err
	}
	return loyalty.NewSettlementPolicy(c.EarnRatePerDollar, c.RedeemDollarsPerPoint, tiers)
}

// SchedulerConfig 排程設定
type SchedulerConfig struct {
	Location *time.Location
}

// StreamConfig 訂單事件的 Redis Stream（需要 Redis）
type StreamConfig struct {
	Key      string
	Group    string
	Consumer string
}

// Load 讀取 .env（檔案不存在時略過）後解析環境變數
//
// 已存在的環境變數不會被 .env 覆蓋。
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	p := &parser{}
	cfg := &Config{
		Env:      p.str("APP_ENV", "development"),
		LogLevel: p.str("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(p.str("DB_DRIVER", "sqlite")),
			DSN:    p.str("DB_DSN", "file:settlement.db?_busy_timeout=5000"),
		},
		Redis: RedisConfig{
			Addr:     p.str("REDIS_ADDR", ""),
			Password: p.str("REDIS_PASSWORD", ""),
			DB:       p.integer("REDIS_DB", 0),
		},
		SMTP: SMTPConfig{
			Host:     p.str("SMTP_HOST", ""),
			Port:     p.integer("SMTP_PORT", 587),
			Username: p.str("SMTP_USERNAME", ""),
			Password: p.str("SMTP_PASSWORD", ""),
			From:     p.str("SMTP_FROM", "noreply@example.com"),
		},
		Loyalty: LoyaltyConfig{
			EarnRatePerDollar:     p.dec("LOYALTY_EARN_RATE_PER_DOLLAR", "1"),
			RedeemDollarsPerPoint: p.dec("LOYALTY_REDEEM_DOLLARS_PER_POINT", "0.01"),
			SilverCents:           p.int64("LOYALTY_TIER_SILVER_CENTS", 100000),
			GoldCents:             p.int64("LOYALTY_TIER_GOLD_CENTS", 500000),
			PlatinumCents:         p.int64("LOYALTY_TIER_PLATINUM_CENTS", 3000000),
			Multipliers: map[loyalty.Tier]decimal.Decimal{
				loyalty.TierBronze:   p.dec("LOYALTY_MULTIPLIER_BRONZE", "1"),
				loyalty.TierSilver:   p.dec("LOYALTY_MULTIPLIER_SILVER", "1.25"),
				loyalty.TierGold:     p.dec("LOYALTY_MULTIPLIER_GOLD", "1.5"),
				loyalty.TierPlatinum: p.dec("LOYALTY_MULTIPLIER_PLATINUM", "2"),
			},
		},
		Scheduler: SchedulerConfig{
			Location: p.location("SCHEDULER_TIMEZONE", "Local"),
		},
		Stream: StreamConfig{
			Key:      p.str("ORDER_STREAM_KEY", "settlement:orders"),
			Group:    p.str("ORDER_STREAM_GROUP", "settlement-worker"),
			Consumer: p.str("ORDER_STREAM_CONSUMER", defaultConsumerName()),
		},
	}

	if cfg.Database.Driver != "sqlite" && cfg.Database.Driver != "postgres" {
		p.fail("DB_DRIVER", cfg.Database.Driver, errors.New("must be sqlite or postgres"))
	}
	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	if _, err := cfg.Loyalty.Policy(); err != nil {
		return nil, fmt.Errorf("invalid loyalty configuration: %w", err)
	}
	return cfg, nil
}

func defaultConsumerName() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker"
}

// parser 收集所有解析錯誤，一次回報
type parser struct {
	errs []error
}

func (p *parser) fail(key, value string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (p *parser) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (p *parser) integer(key string, def int) int {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p *parser) int64(key string, def int64) int64 {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p *parser) dec(key, def string) decimal.Decimal {
	raw := p.str(key, def)
	v, err := decimal.NewFromString(raw)
	if err != nil {
		p.fail(key, raw, err)
		return decimal.RequireFromString(def)
	}
	return v
}

func (p *parser) location(key, def string) *time.Location {
	raw := p.str(key, def)
	loc, err := time.LoadLocation(raw)
	if err != nil {
		p.fail(key, raw, err)
		return time.Local
	}
	return loc
}
