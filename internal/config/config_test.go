package config

import (
	"os"
	"testing"
)

func TestLoad_DefaultValues(t *testing.T) {
	// 清除环境变量
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// 检查默认值
	if cfg.Database.Host != "localhost" {
		t.Errorf("Expected DB_HOST default 'localhost', got '%s'", cfg.Database.Host)
	}

	if cfg.Database.Port != 5432 {
		t.Errorf("Expected DB_PORT default 5432, got %d", cfg.Database.Port)
	}

	if cfg.Database.Database != "medicore" {
		t.Errorf("Expected DB_NAME default 'medicore', got '%s'", cfg.Database.Database)
	}

	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Expected REDIS_ADDR default 'localhost:6379', got '%s'", cfg.Redis.Addr)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("Expected HTTP_ADDR default ':8080', got '%s'", cfg.HTTP.Addr)
	}

	if cfg.Ingest.Mode != IngestModeStream {
		t.Errorf("Expected INGEST_MODE default 'stream', got '%s'", cfg.Ingest.Mode)
	}

	if cfg.Ingest.EventStream != "vitals:events" {
		t.Errorf("Expected VITAL_EVENT_STREAM default 'vitals:events', got '%s'", cfg.Ingest.EventStream)
	}

	if cfg.Ingest.Polling.IntervalMs != 1000 {
		t.Errorf("Expected POLL_INTERVAL_MS default 1000, got %d", cfg.Ingest.Polling.IntervalMs)
	}

	if cfg.Dashboard.CoordinationInterval != 10 {
		t.Errorf("Expected COORDINATION_INTERVAL default 10, got %d", cfg.Dashboard.CoordinationInterval)
	}

	if !cfg.Dashboard.SnapshotCache.Enabled {
		t.Error("Expected SNAPSHOT_CACHE_ENABLED default true")
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Expected LOG_LEVEL default 'info', got '%s'", cfg.Log.Level)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	// 设置环境变量
	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_NAME", "test-db")
	os.Setenv("INGEST_MODE", "mqtt")
	os.Setenv("MQTT_VITALS_TOPIC", "test/vitals/+")
	os.Setenv("COORDINATION_INTERVAL", "30")
	os.Setenv("SNAPSHOT_CACHE_ENABLED", "false")
	os.Setenv("LOG_LEVEL", "debug")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Database.Host != "test-host" {
		t.Errorf("Expected DB_HOST 'test-host', got '%s'", cfg.Database.Host)
	}

	if cfg.Database.Database != "test-db" {
		t.Errorf("Expected DB_NAME 'test-db', got '%s'", cfg.Database.Database)
	}

	if cfg.Ingest.Mode != IngestModeMQTT {
		t.Errorf("Expected INGEST_MODE 'mqtt', got '%s'", cfg.Ingest.Mode)
	}

	if cfg.Ingest.Topic != "test/vitals/+" {
		t.Errorf("Expected MQTT_VITALS_TOPIC 'test/vitals/+', got '%s'", cfg.Ingest.Topic)
	}

	if cfg.Dashboard.CoordinationInterval != 30 {
		t.Errorf("Expected COORDINATION_INTERVAL 30, got %d", cfg.Dashboard.CoordinationInterval)
	}

	if cfg.Dashboard.SnapshotCache.Enabled {
		t.Error("Expected SNAPSHOT_CACHE_ENABLED false")
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Expected LOG_LEVEL 'debug', got '%s'", cfg.Log.Level)
	}
}

func TestLoad_InvalidIngestMode(t *testing.T) {
	os.Clearenv()
	os.Setenv("INGEST_MODE", "carrier-pigeon")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for invalid ingest mode")
	}
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	os.Clearenv()
	os.Setenv("POLL_INTERVAL_MS", "not-a-number")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Ingest.Polling.IntervalMs != 1000 {
		t.Errorf("Expected fallback to default 1000, got %d", cfg.Ingest.Polling.IntervalMs)
	}
}
