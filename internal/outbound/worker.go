package outbound

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/walkpad-gateway/internal/metrics"
)

// ErrWriteFailed 写特征值失败（记录后丢弃该命令，不影响会话）
var ErrWriteFailed = errors.New("write failed")

// DefaultInterval 两次写之间的最小间隔
const DefaultInterval = 50 * time.Millisecond

// Writer 具备无响应写能力的特征值
type Writer interface {
	WriteWithoutResponse(b []byte) error
}

// Worker 按固定节拍每次写出一条命令
type Worker struct {
	Queue    *Queue
	Writer   Writer
	Interval time.Duration
	Logger   *zap.Logger
	Metrics  *metrics.AppMetrics
}

func NewWorker(q *Queue, w Writer, interval time.Duration, logger *zap.Logger, m *metrics.AppMetrics) *Worker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{Queue: q, Writer: w, Interval: interval, Logger: logger, Metrics: m}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick()
		}
	}
}

// tick 出队一条并写出；写失败只记录，不重试
func (w *Worker) tick() {
	f, ok := w.Queue.DrainOne()
	w.Metrics.SetQueueDepth(w.Queue.Len())
	if !ok {
		return
	}

	err := w.Writer.WriteWithoutResponse(f)
	w.Metrics.ObserveWrite(err)
	if err != nil {
		w.Logger.Warn("command write failed",
			zap.String("frame", f.Hex()),
			zap.Error(fmt.Errorf("%w: %w", ErrWriteFailed, err)))
		return
	}
	w.Logger.Debug("command written", zap.String("frame", f.Hex()))
}
