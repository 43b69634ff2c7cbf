package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jackyeh168/order_settlement/src/internal/application/settlement"
)

// DefaultGuardTTL 冪等標記保留時間
//
// 需長於上游可能重送同一事件的時間窗。
const DefaultGuardTTL = 7 * 24 * time.Hour

// RedisGuard 以 SET NX 實作跨實例的冪等標記
type RedisGuard struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisGuard 建立 Redis 冪等標記
func NewRedisGuard(client *redis.Client, prefix string, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = DefaultGuardTTL
	}
	return &RedisGuard{client: client, prefix: prefix, ttl: ttl}
}

var _ settlement.IdempotencyGuard = (*RedisGuard)(nil)

// Acquire SET key NX EX ttl；已存在時返回 false
func (g *RedisGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.prefix+key, time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis SETNX %s: %w", key, err)
	}
	return ok, nil
}

// Release 刪除標記，讓下一次投遞可以重試
func (g *RedisGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis DEL %s: %w", key, err)
	}
	return nil
}

// MemoryGuard 單一進程內的冪等標記（未設定 Redis 時使用）
//
// 過期的鍵在下一次 Acquire 同一鍵時視為不存在。
type MemoryGuard struct {
	mu   sync.Mutex
	keys map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryGuard 建立進程內冪等標記
func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	if ttl <= 0 {
		ttl = DefaultGuardTTL
	}
	return &MemoryGuard{keys: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

var _ settlement.IdempotencyGuard = (*MemoryGuard)(nil)

// Acquire 佔用鍵；已被佔用且未過期時返回 false
func (g *MemoryGuard) Acquire(ctx context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if expires, ok := g.keys[key]; ok && now.Before(expires) {
		return false, nil
	}
	g.keys[key] = now.Add(g.ttl)
	return true, nil
}

// Release 釋放鍵
func (g *MemoryGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	return nil
}
