package consumer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"medicore-dashboard/internal/models"
	"medicore-dashboard/internal/mqttclient"
)

// MQTTConsumer 生命体征事件消费者（MQTT 推送模式）
type MQTTConsumer struct {
	client *mqttclient.Client
	sink   EventSink
	logger *zap.Logger
	topic  string
	qos    byte
}

// NewMQTTConsumer 创建 MQTT 消费者
func NewMQTTConsumer(client *mqttclient.Client, sink EventSink, logger *zap.Logger, topic string, qos byte) *MQTTConsumer {
	return &MQTTConsumer{
		client: client,
		sink:   sink,
		logger: logger,
		topic:  topic,
		qos:    qos,
	}
}

// Start 订阅主题并阻塞直到 ctx 取消
func (c *MQTTConsumer) Start(ctx context.Context) error {
	if err := c.client.Subscribe(c.topic, c.qos, c.HandleMessage); err != nil {
		return fmt.Errorf("failed to subscribe vitals topic: %w", err)
	}

	c.logger.Info("MQTT consumer started",
		zap.String("topic", c.topic),
	)

	<-ctx.Done()
	return nil
}

// HandleMessage 处理单条 MQTT 消息
// 坏消息返回错误由客户端封装记录 warning，摄取不中断
func (c *MQTTConsumer) HandleMessage(topic string, payload []byte) error {
	event, err := models.ParseVitalEvent(payload)
	if err != nil {
		return fmt.Errorf("failed to parse vital event: %w", err)
	}

	if _, _, err := c.sink.Apply(event); err != nil {
		return fmt.Errorf("failed to apply vital event: %w", err)
	}

	return nil
}
