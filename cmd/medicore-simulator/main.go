package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"medicore-dashboard/internal/config"
	"medicore-dashboard/internal/logger"
	"medicore-dashboard/internal/mqttclient"
	"medicore-dashboard/internal/simulator"
	"medicore-dashboard/internal/store"

	"go.uber.org/zap"
)

// 模拟器：按阶段循环（正常 -> 恶化 -> 急救）生成体征事件
// 发布目标随 INGEST_MODE 切换：stream 写 Redis Streams，mqtt 发 MQTT 主题
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	deviceIDs := strings.Split(getEnv("SIM_DEVICE_IDS", "MC-001,MC-002,MC-003"), ",")
	interval := time.Second

	sim := simulator.New(deviceIDs, time.Now().UnixNano())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	publish, cleanup, err := newPublisher(cfg, log)
	if err != nil {
		log.Fatal("Failed to create publisher", zap.Error(err))
	}
	defer cleanup()

	log.Info("Starting vital sign simulator",
		zap.Strings("device_ids", deviceIDs),
		zap.String("ingest_mode", cfg.Ingest.Mode),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Simulator stopped")
			return
		case now := <-ticker.C:
			phase := sim.Phase()
			for _, e := range sim.Next(now) {
				payload, err := e.MarshalRaw()
				if err != nil {
					log.Error("Failed to marshal event", zap.Error(err))
					continue
				}
				if err := publish(ctx, e.DeviceID, payload); err != nil {
					log.Warn("Failed to publish event",
						zap.String("device_id", e.DeviceID),
						zap.Error(err),
					)
				}
			}
			log.Debug("Published tick",
				zap.Int("tick", sim.Tick()),
				zap.String("phase", phase),
			)
		}
	}
}

type publishFunc func(ctx context.Context, deviceID string, payload []byte) error

func newPublisher(cfg *config.Config, log *zap.Logger) (publishFunc, func(), error) {
	switch cfg.Ingest.Mode {
	case config.IngestModeMQTT:
		client, err := mqttclient.NewClient(&cfg.MQTT, log)
		if err != nil {
			return nil, nil, err
		}
		topicPrefix := strings.TrimSuffix(cfg.Ingest.Topic, "+")
		publish := func(_ context.Context, deviceID string, payload []byte) error {
			return client.Publish(topicPrefix+deviceID, cfg.MQTT.QoS, false, payload)
		}
		return publish, client.Disconnect, nil
	default:
		// stream 与 polling 模式都通过 Redis Streams 投递
		redisClient := store.NewRedisClient(&cfg.Redis)
		if err := store.Ping(context.Background(), redisClient); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		publish := func(ctx context.Context, _ string, payload []byte) error {
			_, err := store.PublishJSONToStream(ctx, redisClient, cfg.Ingest.EventStream, json.RawMessage(payload))
			return err
		}
		cleanup := func() { _ = redisClient.Close() }
		return publish, cleanup, nil
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
