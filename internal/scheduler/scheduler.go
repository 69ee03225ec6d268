package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Clock 时间源抽象（测试中用 FakeClock 驱动虚拟时间）
type Clock interface {
	Now() time.Time
	Ticker(d time.Duration) Ticker
}

// Ticker 定时器抽象
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock 真实时钟
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) Ticker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// Task 周期任务回调
type Task func(now time.Time)

// Handle 周期任务的可取消句柄
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop 取消任务并等待其退出
func (h *Handle) Stop() {
	h.cancel()
	<-h.done
}

// Scheduler 周期任务调度器
type Scheduler struct {
	clock  Clock
	logger *zap.Logger
}

// New 创建调度器
func New(clock Clock, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		clock:  clock,
		logger: logger,
	}
}

// Every 启动一个周期任务，返回可取消句柄
func (s *Scheduler) Every(ctx context.Context, interval time.Duration, name string, task Task) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	// 在 goroutine 启动前注册 ticker，保证 Every 返回后时钟推进即可触发
	ticker := s.clock.Ticker(interval)

	go func() {
		defer close(h.done)
		defer ticker.Stop()

		s.logger.Debug("Periodic task started",
			zap.String("task", name),
			zap.Duration("interval", interval),
		)

		for {
			select {
			case <-ctx.Done():
				s.logger.Debug("Periodic task stopped", zap.String("task", name))
				return
			case now := <-ticker.C():
				task(now)
			}
		}
	}()

	return h
}

// FakeClock 虚拟时钟（测试用）
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

// NewFakeClock 创建虚拟时钟
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *FakeClock) Ticker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := &fakeTicker{
		interval: d,
		next:     f.now.Add(d),
		ch:       make(chan time.Time, 16),
	}
	f.tickers = append(f.tickers, t)
	return t
}

// Advance 推进虚拟时间并触发到期的 tick
func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = f.now.Add(d)
	for _, t := range f.tickers {
		for !t.stopped && !t.next.After(f.now) {
			select {
			case t.ch <- t.next:
			default:
			}
			t.next = t.next.Add(t.interval)
		}
	}
}

type fakeTicker struct {
	interval time.Duration
	next     time.Time
	ch       chan time.Time
	stopped  bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               { t.stopped = true }
