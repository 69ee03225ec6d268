package consumer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"medicore-dashboard/internal/repository"
)

// Poller 生命体征事件消费者（Postgres 轮询增量模式）
// 记录上次看到的最大记录 ID，每轮只拉取其后的新记录
type Poller struct {
	repo     *repository.VitalRecordRepository
	sink     EventSink
	logger   *zap.Logger
	interval time.Duration
	limit    int
	lastID   int64
}

// NewPoller 创建轮询消费者
func NewPoller(
	repo *repository.VitalRecordRepository,
	sink EventSink,
	logger *zap.Logger,
	interval time.Duration,
	limit int,
) *Poller {
	return &Poller{
		repo:     repo,
		sink:     sink,
		logger:   logger,
		interval: interval,
		limit:    limit,
	}
}

// Start 启动轮询（阻塞直到 ctx 取消）
// 启动时从当前最大记录 ID 开始，只消费其后新到达的记录
func (p *Poller) Start(ctx context.Context) error {
	latestID, err := p.repo.LatestID()
	if err != nil {
		return fmt.Errorf("failed to resolve polling start position: %w", err)
	}
	p.lastID = latestID

	p.logger.Info("Vital record poller started",
		zap.Int64("start_id", p.lastID),
		zap.Duration("interval", p.interval),
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.PollOnce(); err != nil {
				// 数据源故障不致命：记录后下一轮重试，前端通过 active_patients 回落感知
				p.logger.Error("Failed to poll vital records", zap.Error(err))
			}
		}
	}
}

// PollOnce 执行一轮增量拉取
func (p *Poller) PollOnce() error {
	records, err := p.repo.ListSince(p.lastID, p.limit)
	if err != nil {
		return fmt.Errorf("failed to list new vital records: %w", err)
	}

	for _, rec := range records {
		event := rec.ToEvent()
		if _, _, err := p.sink.Apply(event); err != nil {
			p.logger.Warn("Skipping bad vital record",
				zap.Int64("record_id", rec.ID),
				zap.Error(err),
			)
		}
		p.lastID = rec.ID
	}

	if len(records) > 0 {
		p.logger.Debug("Polled vital records",
			zap.Int("count", len(records)),
			zap.Int64("last_id", p.lastID),
		)
	}

	return nil
}
