package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"medicore-dashboard/internal/models"
	"medicore-dashboard/internal/store"
)

// StreamConsumer 生命体征事件消费者（Redis Streams 消费者组）
type StreamConsumer struct {
	redisClient  *redis.Client
	sink         EventSink
	logger       *zap.Logger
	stream       string
	groupName    string
	consumerName string
	batchSize    int64
}

// NewStreamConsumer 创建事件消费者
func NewStreamConsumer(
	redisClient *redis.Client,
	sink EventSink,
	logger *zap.Logger,
	stream string,
	groupName string,
	consumerName string,
	batchSize int64,
) *StreamConsumer {
	return &StreamConsumer{
		redisClient:  redisClient,
		sink:         sink,
		logger:       logger,
		stream:       stream,
		groupName:    groupName,
		consumerName: consumerName,
		batchSize:    batchSize,
	}
}

// Start 启动事件消费者（阻塞直到 ctx 取消）
func (c *StreamConsumer) Start(ctx context.Context) error {
	if err := store.CreateConsumerGroup(ctx, c.redisClient, c.stream, c.groupName); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("Stream consumer started",
		zap.String("stream", c.stream),
		zap.String("consumer_group", c.groupName),
		zap.String("consumer_name", c.consumerName),
	)

	// 消费事件（带指数退避）
	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.consumeOnce(ctx); err != nil {
				c.logger.Error("Failed to consume events",
					zap.Error(err),
					zap.Duration("backoff", backoffDuration),
				)

				select {
				case <-ctx.Done():
					return nil
				case <-time.After(backoffDuration):
					backoffDuration *= 2
					if backoffDuration > maxBackoff {
						backoffDuration = maxBackoff
					}
				}
			} else {
				// 成功时重置退避时间
				backoffDuration = time.Second
			}
		}
	}
}

// consumeOnce 读取并处理一批消息
func (c *StreamConsumer) consumeOnce(ctx context.Context) error {
	messages, err := store.ReadFromStream(
		ctx,
		c.redisClient,
		c.stream,
		c.groupName,
		c.consumerName,
		c.batchSize,
	)
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, msg := range messages {
		if err := c.processMessage(msg); err != nil {
			// 坏消息只告警并确认，不阻塞后续事件
			c.logger.Warn("Skipping bad vital event message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
		if err := store.AckMessage(ctx, c.redisClient, c.stream, c.groupName, msg.ID); err != nil {
			c.logger.Warn("Failed to ack message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// processMessage 处理单条消息
func (c *StreamConsumer) processMessage(msg store.StreamMessage) error {
	dataStr, ok := msg.Values["data"].(string)
	if !ok {
		return errors.New("message has no data field")
	}

	event, err := models.ParseVitalEvent([]byte(dataStr))
	if err != nil {
		return fmt.Errorf("failed to parse vital event: %w", err)
	}

	if _, _, err := c.sink.Apply(event); err != nil {
		return fmt.Errorf("failed to apply vital event: %w", err)
	}

	return nil
}
