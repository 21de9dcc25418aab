package poller

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/walkpad-gateway/internal/protocol/walkpad"
)

// DefaultInterval 状态查询周期
const DefaultInterval = 750 * time.Millisecond

// Enqueuer 下行命令入口
type Enqueuer interface {
	Enqueue(f walkpad.Frame) bool
}

// Poller 周期性查询状态；参数在本会话收到第一帧参数上报前一并查询
type Poller struct {
	queue       Enqueuer
	interval    time.Duration
	logger      *zap.Logger
	paramsKnown atomic.Bool
}

func New(q Enqueuer, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{queue: q, interval: interval, logger: logger}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick()
		}
	}
}

// Tick 入队一次查询
func (p *Poller) Tick() {
	p.queue.Enqueue(walkpad.Query())
	if !p.paramsKnown.Load() {
		p.queue.Enqueue(walkpad.QueryParams())
	}
}

// MarkParamsKnown 收到参数上报后停止参数查询
func (p *Poller) MarkParamsKnown() {
	if !p.paramsKnown.Swap(true) {
		p.logger.Debug("device params received, stop querying params")
	}
}

func (p *Poller) ParamsKnown() bool {
	return p.paramsKnown.Load()
}

// Reset 新会话重新查询参数
func (p *Poller) Reset() {
	p.paramsKnown.Store(false)
}
