package records

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
	"github.com/taoyao-code/walkpad-gateway/internal/metrics"
	"github.com/taoyao-code/walkpad-gateway/internal/protocol/walkpad"
)

// Recorder 异步落库：通知分发协程只做非阻塞投递，写库在独立协程中完成
type Recorder struct {
	store   Store
	breaker *Breaker
	logger  *zap.Logger
	metrics *metrics.AppMetrics
	ch      chan Entry
	timeout time.Duration
	now     func() time.Time
}

func NewRecorder(store Store, breaker *Breaker, buffer int, logger *zap.Logger, m *metrics.AppMetrics) *Recorder {
	if buffer <= 0 {
		buffer = 128
	}
	if breaker == nil {
		breaker = NewBreaker(0, 0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		store:   store,
		breaker: breaker,
		logger:  logger,
		metrics: m,
		ch:      make(chan Entry, buffer),
		timeout: 5 * time.Second,
		now:     time.Now,
	}
}

// Submit 缓冲区满时丢弃并告警，不阻塞调用方
func (r *Recorder) Submit(h ble.Handle, rec walkpad.Record) {
	e := Entry{Device: h, Record: rec, ReceivedAt: r.now()}
	select {
	case r.ch <- e:
	default:
		r.metrics.ObserveRecord("dropped")
		r.logger.Warn("record buffer full, dropping record",
			zap.String("device", h.Address), zap.Int("on_time", rec.OnTime))
	}
}

// Run 消费缓冲区直到 ctx 取消，退出前写完已缓冲的记录
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case e := <-r.ch:
			r.persist(ctx, e)
		case <-ctx.Done():
			r.drain()
			return
		}
	}
}

func (r *Recorder) drain() {
	for {
		select {
		case e := <-r.ch:
			r.persist(context.Background(), e)
		default:
			return
		}
	}
}

func (r *Recorder) persist(ctx context.Context, e Entry) {
	var saved bool
	err := r.breaker.Call(func() error {
		wctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		var err error
		saved, err = r.store.Save(wctx, e)
		return err
	})
	switch {
	case errors.Is(err, ErrBreakerOpen):
		r.metrics.ObserveRecord("breaker_open")
		r.logger.Warn("record store unavailable, skipping record", zap.String("device", e.Device.Address))
	case err != nil:
		r.metrics.ObserveRecord("error")
		r.logger.Error("save record failed", zap.String("device", e.Device.Address), zap.Error(err))
	case saved:
		r.metrics.ObserveRecord("saved")
		r.logger.Debug("record saved",
			zap.String("device", e.Device.Address),
			zap.Int("on_time", e.Record.OnTime),
			zap.Int("steps", e.Record.Steps))
	default:
		r.metrics.ObserveRecord("duplicate")
	}
}

// Breaker 暴露熔断器供健康检查使用
func (r *Recorder) Breaker() *Breaker { return r.breaker }

// List 透传存储查询
func (r *Recorder) List(ctx context.Context, address string, limit int) ([]Entry, error) {
	return r.store.List(ctx, address, limit)
}
