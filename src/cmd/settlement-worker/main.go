// settlement-worker 訂單結算背景進程
//
// 啟動順序：
//  1. 載入 .env 與環境變數
//  2. 建立 logger、資料庫連線並遷移
//  3. 連線 Redis（未設定時使用進程內冪等標記）與 SMTP（未設定時只記錄）
//  4. 建立事件匯流排並註冊結算處理器
//  5. 啟動訂單事件的 Redis Stream consumer（需要 Redis）
//  6. 啟動每日午夜的生日月發券掃描
//
// 收到 SIGINT/SIGTERM 時停止 consumer 與排程、等待執行中的非同步處理器，再關閉連線。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	"github.com/jackyeh168/order_settlement/src/internal/application/settlement"
	"github.com/jackyeh168/order_settlement/src/internal/bootstrap"
	"github.com/jackyeh168/order_settlement/src/internal/infrastructure/config"
	"github.com/jackyeh168/order_settlement/src/internal/infrastructure/database"
	"github.com/jackyeh168/order_settlement/src/internal/infrastructure/eventbus"
	"github.com/jackyeh168/order_settlement/src/internal/infrastructure/logging"
	"github.com/jackyeh168/order_settlement/src/internal/infrastructure/notification"
	"github.com/jackyeh168/order_settlement/src/internal/infrastructure/orderstream"
	"github.com/jackyeh168/order_settlement/src/internal/infrastructure/scheduler"
)

const drainTimeout = 30 * time.Second

func main() {
	envFile := flag.String("env", ".env", "path to .env file")
	sweepNow := flag.Bool("sweep-now", false, "run the birthday sweep once at startup")
	flag.Parse()

	if err := run(*envFile, *sweepNow); err != nil {
		fmt.Fprintf(os.Stderr, "settlement-worker: %v\n", err)
		os.Exit(1)
	}
}

func run(envFile string, sweepNow bool) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 資料庫
	gormLevel := logger.Warn
	if cfg.LogLevel == "debug" {
		gormLevel = logger.Info
	}
	db, err := database.Open(cfg.Database, gormLevel)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()
	if err := database.Migrate(db); err != nil {
		return err
	}
	log.Info("database ready", zap.String("driver", cfg.Database.Driver))

	policy, err := cfg.Loyalty.Policy()
	if err != nil {
		return err
	}

	// 冪等標記
	var guard settlement.IdempotencyGuard
	var client *redis.Client
	if cfg.Redis.Enabled() {
		client = redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		defer func() { _ = client.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		guard = notification.NewRedisGuard(client, "settlement:", notification.DefaultGuardTTL)
		log.Info("redis idempotency guard enabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		guard = notification.NewMemoryGuard(notification.DefaultGuardTTL)
		log.Warn("REDIS_ADDR not set, using in-process idempotency guard")
	}

	// 寄信
	var mailer settlement.Mailer
	if cfg.SMTP.Enabled() {
		smtp, err := notification.NewSMTPMailer(cfg.SMTP, log)
		if err != nil {
			return err
		}
		mailer = smtp
	} else {
		mailer = notification.NewLogMailer(log)
		log.Warn("SMTP_HOST not set, emails will only be logged")
	}

	// 匯流排
	bus := eventbus.New(log)
	runner := eventbus.NewAsyncRunner(log)

	services := bootstrap.NewServices(db, bus, policy, log)
	unsubscribe := settlement.Register(bus, runner.Wrap,
		services.Processors(notification.NewLogDispatcher(log), mailer, guard))
	defer unsubscribe()

	// 訂單事件來源
	var consumers sync.WaitGroup
	if client != nil {
		router := orderstream.NewRouter(bus, services.Rollback, log)
		consumer := orderstream.NewConsumer(client, cfg.Stream, router, log)
		if err := consumer.EnsureGroup(ctx); err != nil {
			return err
		}
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			if err := consumer.Run(ctx); err != nil {
				log.Error("order stream consumer stopped", zap.Error(err))
			}
		}()
	} else {
		log.Warn("REDIS_ADDR not set, no order stream; events must be published by an embedding host")
	}

	// 排程
	birthday := scheduler.NewMidnightScheduler("birthday-sweep", cfg.Scheduler.Location,
		func(ctx context.Context, now time.Time) error {
			_, err := services.Sweep.Execute(ctx, now)
			return err
		}, log)
	if sweepNow {
		birthday.RunNow(ctx)
	}
	birthday.Start(ctx)

	log.Info("settlement worker started", zap.String("env", cfg.Env))
	<-ctx.Done()
	log.Info("shutting down")

	birthday.Stop()
	consumers.Wait()

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := runner.Drain(drainCtx); err != nil {
		log.Warn("in-flight handlers did not finish before timeout", zap.Duration("timeout", drainTimeout))
	}

	log.Info("settlement worker stopped")
	return nil
}
