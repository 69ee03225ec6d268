package config

import (
	"fmt"
	"os"
	"strconv"

	"medicore-dashboard/internal/mqttclient"
	"medicore-dashboard/internal/store"
)

// 摄取模式
const (
	IngestModeMQTT    = "mqtt"
	IngestModeStream  = "stream"
	IngestModePolling = "polling"
)

// Config 监护看板服务配置
type Config struct {
	Database store.DatabaseConfig
	Redis    store.RedisConfig
	MQTT     mqttclient.Config

	HTTP struct {
		Addr string
	}

	Ingest struct {
		// 生命体征事件的摄取方式
		// 选项：mqtt（推送）、stream（Redis Streams）、polling（Postgres 轮询增量）
		Mode string

		// MQTT 模式配置
		Topic string

		// Redis Streams 模式配置
		EventStream   string
		ConsumerGroup string
		ConsumerName  string
		BatchSize     int

		// 轮询模式配置
		Polling struct {
			IntervalMs int // 轮询间隔（毫秒），默认 1000
			BatchLimit int // 每轮最多拉取的记录数
		}
	}

	Dashboard struct {
		// Coordinator 巡检间隔（秒）
		CoordinationInterval int

		// 快照缓存镜像配置
		SnapshotCache struct {
			Enabled    bool
			Interval   int // 镜像间隔（秒）
			TTLSeconds int
		}
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置（环境变量优先，内置默认值）
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "medicore")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "medicore-dashboard")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = 1

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Ingest.Mode = getEnv("INGEST_MODE", IngestModeStream)
	cfg.Ingest.Topic = getEnv("MQTT_VITALS_TOPIC", "medicore/vitals/+")
	cfg.Ingest.EventStream = getEnv("VITAL_EVENT_STREAM", "vitals:events")
	cfg.Ingest.ConsumerGroup = getEnv("VITAL_CONSUMER_GROUP", "dashboard-group")
	cfg.Ingest.ConsumerName = getEnv("VITAL_CONSUMER_NAME", "dashboard-1")
	cfg.Ingest.BatchSize = getEnvInt("VITAL_BATCH_SIZE", 10)
	cfg.Ingest.Polling.IntervalMs = getEnvInt("POLL_INTERVAL_MS", 1000)
	cfg.Ingest.Polling.BatchLimit = getEnvInt("POLL_BATCH_LIMIT", 100)

	cfg.Dashboard.CoordinationInterval = getEnvInt("COORDINATION_INTERVAL", 10)
	cfg.Dashboard.SnapshotCache.Enabled = getEnv("SNAPSHOT_CACHE_ENABLED", "true") == "true"
	cfg.Dashboard.SnapshotCache.Interval = getEnvInt("SNAPSHOT_CACHE_INTERVAL", 5)
	cfg.Dashboard.SnapshotCache.TTLSeconds = getEnvInt("SNAPSHOT_CACHE_TTL", 10)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	switch cfg.Ingest.Mode {
	case IngestModeMQTT, IngestModeStream, IngestModePolling:
	default:
		return nil, fmt.Errorf("unsupported ingest mode: %s", cfg.Ingest.Mode)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}
