package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"medicore-dashboard/internal/aggregator"
	"medicore-dashboard/internal/store"

	"go.uber.org/zap"
)

// SnapshotCache 把患者快照与全局统计镜像到 Redis
// 供其他服务（报表、通知）读取，不参与 dashboard 自身的查询路径
type SnapshotCache struct {
	engine *aggregator.Engine
	kv     store.KVStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewSnapshotCache 创建快照缓存
func NewSnapshotCache(engine *aggregator.Engine, kv store.KVStore, ttl time.Duration, logger *zap.Logger) *SnapshotCache {
	return &SnapshotCache{
		engine: engine,
		kv:     kv,
		ttl:    ttl,
		logger: logger,
	}
}

// Sync 写出当前全部患者快照与统计
func (c *SnapshotCache) Sync(ctx context.Context, now time.Time) error {
	states := c.engine.PatientStates()
	for _, snap := range states {
		key := fmt.Sprintf("vital-dashboard:patient:%s:snapshot", snap.DeviceID)
		jsonData, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to marshal patient snapshot: %w", err)
		}
		if err := c.kv.Set(ctx, key, string(jsonData), c.ttl); err != nil {
			return fmt.Errorf("failed to set cache: %w", err)
		}
	}

	stats := c.engine.Stats(now)
	jsonData, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	if err := c.kv.Set(ctx, "vital-dashboard:stats", string(jsonData), c.ttl); err != nil {
		return fmt.Errorf("failed to set stats cache: %w", err)
	}

	c.logger.Debug("Snapshot cache synced",
		zap.Int("patients", len(states)),
		zap.Duration("ttl", c.ttl),
	)
	return nil
}
