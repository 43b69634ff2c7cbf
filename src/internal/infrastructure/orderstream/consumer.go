package orderstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jackyeh168/order_settlement/src/internal/infrastructure/config"
)

const (
	defaultBatch = 32
	defaultBlock = 5 * time.Second
	retryBackoff = time.Second
)

// Consumer 以 consumer group 讀取訂單 stream
//
// 處理成功或訊息格式錯誤時 XACK；可重試的錯誤不確認，訊息留在 pending，
// 下次啟動時先重讀自己的 pending 再讀新訊息。
type Consumer struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	router   *Router
	logger   *zap.Logger
	block    time.Duration
}

// NewConsumer 創建 Consumer
func NewConsumer(client *redis.Client, cfg config.StreamConfig, router *Router, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{
		client:   client,
		stream:   cfg.Key,
		group:    cfg.Group,
		consumer: cfg.Consumer,
		router:   router,
		logger:   logger.Named("orderstream"),
		block:    defaultBlock,
	}
}

// EnsureGroup 建立 consumer group（stream 不存在時一併建立）
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group %s on %s: %w", c.group, c.stream, err)
	}
	return nil
}

// Run 持續消費直到 ctx 取消
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.EnsureGroup(ctx); err != nil {
		return err
	}
	c.logger.Info("order stream consumer started",
		zap.String("stream", c.stream),
		zap.String("group", c.group),
		zap.String("consumer", c.consumer),
	)

	// 先從 "0" 往後讀本 consumer 尚未確認的訊息，讀完後改讀新訊息
	cursor := "0"
	for {
		if ctx.Err() != nil {
			return nil
		}

		lastID, n, err := c.poll(ctx, cursor)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("order stream read failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retryBackoff):
			}
			continue
		}
		if cursor != ">" {
			if n == 0 {
				cursor = ">"
			} else {
				cursor = lastID
			}
		}
	}
}

// poll 讀取並處理一批訊息，返回最後一筆 ID 與筆數
func (c *Consumer) poll(ctx context.Context, cursor string) (string, int, error) {
	block := c.block
	if cursor != ">" {
		block = -1
	}
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumer,
		Streams:  []string{c.stream, cursor},
		Count:    defaultBatch,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return cursor, 0, nil
	}
	if err != nil {
		return cursor, 0, err
	}

	lastID := cursor
	count := 0
	for _, stream := range streams {
		for _, xmsg := range stream.Messages {
			count++
			lastID = xmsg.ID
			c.handle(ctx, xmsg)
		}
	}
	return lastID, count, nil
}

func (c *Consumer) handle(ctx context.Context, xmsg redis.XMessage) {
	msg := toMessage(xmsg)
	err := c.router.Route(ctx, msg)
	switch {
	case err == nil:
	case errors.Is(err, ErrMalformedMessage):
		c.logger.Warn("dropping malformed order message",
			zap.String("message_id", msg.ID),
			zap.String("type", msg.Type),
			zap.Error(err),
		)
	default:
		c.logger.Error("order message failed, left pending",
			zap.String("message_id", msg.ID),
			zap.String("type", msg.Type),
			zap.Error(err),
		)
		return
	}

	if err := c.client.XAck(ctx, c.stream, c.group, msg.ID).Err(); err != nil {
		c.logger.Error("failed to ack order message", zap.String("message_id", msg.ID), zap.Error(err))
	}
}

func toMessage(xmsg redis.XMessage) Message {
	msg := Message{ID: xmsg.ID}
	if v, ok := xmsg.Values["type"].(string); ok {
		msg.Type = v
	}
	if v, ok := xmsg.Values["payload"].(string); ok {
		msg.Payload = []byte(v)
	}
	return msg
}

// Publish 寫入一筆訂單訊息（結帳流程與測試使用）
func Publish(ctx context.Context, client *redis.Client, stream, msgType string, payload []byte) (string, error) {
	return client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{"type": msgType, "payload": string(payload)},
	}).Result()
}
