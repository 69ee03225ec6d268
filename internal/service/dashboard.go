package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"medicore-dashboard/internal/aggregator"
	"medicore-dashboard/internal/config"
	"medicore-dashboard/internal/consumer"
	"medicore-dashboard/internal/httpapi"
	"medicore-dashboard/internal/mqttclient"
	"medicore-dashboard/internal/repository"
	"medicore-dashboard/internal/scheduler"
	"medicore-dashboard/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DashboardService 患者监护看板服务
type DashboardService struct {
	config *config.Config
	logger *zap.Logger

	db          *sql.DB
	redisClient *redis.Client
	mqttClient  *mqttclient.Client

	engine        *aggregator.Engine
	vitalRepo     *repository.VitalRecordRepository
	snapshotCache *SnapshotCache
	sched         *scheduler.Scheduler
	httpServer    *http.Server

	handles []*scheduler.Handle
}

// NewDashboardService 创建看板服务
func NewDashboardService(cfg *config.Config, logger *zap.Logger) (*DashboardService, error) {
	// 初始化 Redis（stream 摄取与快照镜像都依赖它）
	redisClient := store.NewRedisClient(&cfg.Redis)
	if err := store.Ping(context.Background(), redisClient); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	// 初始化数据库（仅轮询模式需要）
	var db *sql.DB
	var vitalRepo *repository.VitalRecordRepository
	if cfg.Ingest.Mode == config.IngestModePolling {
		var err error
		db, err = store.NewPostgresDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		vitalRepo = repository.NewVitalRecordRepository(db, logger)
	}

	// 初始化 MQTT（仅 mqtt 模式需要）
	var mqttClient *mqttclient.Client
	if cfg.Ingest.Mode == config.IngestModeMQTT {
		var err error
		mqttClient, err = mqttclient.NewClient(&cfg.MQTT, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mqtt broker: %w", err)
		}
	}

	engine := aggregator.NewEngine(logger)

	var snapshotCache *SnapshotCache
	if cfg.Dashboard.SnapshotCache.Enabled {
		kv := store.NewRedisKVStore(redisClient)
		ttl := time.Duration(cfg.Dashboard.SnapshotCache.TTLSeconds) * time.Second
		snapshotCache = NewSnapshotCache(engine, kv, ttl, logger)
	}

	return &DashboardService{
		config:        cfg,
		logger:        logger,
		db:            db,
		redisClient:   redisClient,
		mqttClient:    mqttClient,
		engine:        engine,
		vitalRepo:     vitalRepo,
		snapshotCache: snapshotCache,
		sched:         scheduler.New(scheduler.RealClock{}, logger),
	}, nil
}

// Engine 暴露聚合引擎（测试与 simulator 复用）
func (s *DashboardService) Engine() *aggregator.Engine {
	return s.engine
}

// Start 启动服务（阻塞直到摄取循环退出）
func (s *DashboardService) Start(ctx context.Context) error {
	s.logger.Info("Starting dashboard service",
		zap.String("ingest_mode", s.config.Ingest.Mode),
		zap.String("http_addr", s.config.HTTP.Addr),
		zap.Bool("snapshot_cache_enabled", s.config.Dashboard.SnapshotCache.Enabled),
	)

	s.startHTTPServer()
	s.startPeriodicTasks(ctx)

	switch s.config.Ingest.Mode {
	case config.IngestModeStream:
		c := consumer.NewStreamConsumer(
			s.redisClient,
			s.engine,
			s.logger,
			s.config.Ingest.EventStream,
			s.config.Ingest.ConsumerGroup,
			s.config.Ingest.ConsumerName,
			int64(s.config.Ingest.BatchSize),
		)
		return c.Start(ctx)
	case config.IngestModeMQTT:
		c := consumer.NewMQTTConsumer(
			s.mqttClient,
			s.engine,
			s.logger,
			s.config.Ingest.Topic,
			s.config.MQTT.QoS,
		)
		return c.Start(ctx)
	case config.IngestModePolling:
		p := consumer.NewPoller(
			s.vitalRepo,
			s.engine,
			s.logger,
			time.Duration(s.config.Ingest.Polling.IntervalMs)*time.Millisecond,
			s.config.Ingest.Polling.BatchLimit,
		)
		return p.Start(ctx)
	default:
		return fmt.Errorf("unsupported ingest mode: %s", s.config.Ingest.Mode)
	}
}

// startHTTPServer 启动查询 API
func (s *DashboardService) startHTTPServer() {
	router := httpapi.NewRouter(s.logger)
	handler := httpapi.NewDashboardHandler(s.engine, s.logger)
	router.RegisterDashboardRoutes(handler)

	s.httpServer = &http.Server{
		Addr:    s.config.HTTP.Addr,
		Handler: router,
	}

	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.config.HTTP.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
}

// startPeriodicTasks 启动 Coordinator 巡检与快照镜像
func (s *DashboardService) startPeriodicTasks(ctx context.Context) {
	coordInterval := time.Duration(s.config.Dashboard.CoordinationInterval) * time.Second
	h := s.sched.Every(ctx, coordInterval, "coordination-sweep", func(now time.Time) {
		stats := s.engine.CoordinationSweep(now)
		s.logger.Debug("Coordination sweep completed",
			zap.Int("total_patients", stats.TotalPatients),
			zap.Int("active_patients", stats.ActivePatients),
			zap.Int("total_alerts", stats.TotalAlerts),
		)
	})
	s.handles = append(s.handles, h)

	if s.snapshotCache != nil {
		cacheInterval := time.Duration(s.config.Dashboard.SnapshotCache.Interval) * time.Second
		h := s.sched.Every(ctx, cacheInterval, "snapshot-cache-sync", func(now time.Time) {
			if err := s.snapshotCache.Sync(ctx, now); err != nil {
				s.logger.Warn("Snapshot cache sync failed", zap.Error(err))
			}
		})
		s.handles = append(s.handles, h)
	}
}

// Stop 停止服务并释放资源
func (s *DashboardService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping dashboard service")

	for _, h := range s.handles {
		h.Stop()
	}

	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("HTTP server shutdown error", zap.Error(err))
		}
	}

	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database", zap.Error(err))
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	s.logger.Info("Dashboard service stopped")
	return nil
}
