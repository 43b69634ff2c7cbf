// Package scheduler 每日本地午夜執行的背景工作
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task 排程工作；now 為觸發時間
type Task func(ctx context.Context, now time.Time) error

// NextMidnight 返回 now 之後（不含）的下一個本地午夜
//
// 以日期加一天後重新建構時間，夏令時間切換日的長度差異由 time.Date 處理。
func NextMidnight(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
}

// MidnightScheduler 每天本地午夜執行一次 Task
//
// 每一輪都重新計算到下一個午夜的等待時間，不使用固定 24 小時的 ticker。
type MidnightScheduler struct {
	name   string
	task   Task
	loc    *time.Location
	logger *zap.Logger

	now      func() time.Time
	newTimer func(d time.Duration) (<-chan time.Time, func() bool)

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMidnightScheduler 建立排程器；loc 為 nil 時使用 time.Local
func NewMidnightScheduler(name string, loc *time.Location, task Task, logger *zap.Logger) *MidnightScheduler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MidnightScheduler{
		name:   name,
		task:   task,
		loc:    loc,
		logger: logger,
		now:    time.Now,
		newTimer: func(d time.Duration) (<-chan time.Time, func() bool) {
			t := time.NewTimer(d)
			return t.C, t.Stop
		},
	}
}

// Start 啟動背景 goroutine；重複調用無效果
func (s *MidnightScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(runCtx)

	s.logger.Info("scheduler started",
		zap.String("scheduler", s.name),
		zap.String("timezone", s.loc.String()),
	)
}

// Stop 停止排程並等待執行中的 Task 返回
func (s *MidnightScheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped", zap.String("scheduler", s.name))
}

func (s *MidnightScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	for {
		next := NextMidnight(s.now(), s.loc)
		wait := next.Sub(s.now())
		if wait < 0 {
			wait = 0
		}
		s.logger.Debug("scheduler waiting",
			zap.String("scheduler", s.name),
			zap.Time("next_run", next),
			zap.Duration("wait", wait),
		)

		fired, stop := s.newTimer(wait)
		select {
		case <-ctx.Done():
			stop()
			return
		case <-fired:
			s.runOnce(ctx, next)
		}
	}
}

// RunNow 立即執行一次 Task（同步）
func (s *MidnightScheduler) RunNow(ctx context.Context) {
	s.runOnce(ctx, s.now())
}

func (s *MidnightScheduler) runOnce(ctx context.Context, at time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled task panicked",
				zap.String("scheduler", s.name),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	start := s.now()
	if err := s.task(ctx, at); err != nil {
		s.logger.Error("scheduled task failed",
			zap.String("scheduler", s.name),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("scheduled task finished",
		zap.String("scheduler", s.name),
		zap.Duration("elapsed", s.now().Sub(start)),
	)
}
