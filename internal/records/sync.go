package records

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taoyao-code/walkpad-gateway/internal/supervisor"
)

// Syncer 触发设备回传历史记录
type Syncer interface {
	SyncRecords(n byte) error
}

// SyncScheduler 按 cron 表达式定时请求历史记录
type SyncScheduler struct {
	cron   *cron.Cron
	syncer Syncer
	count  byte
	logger *zap.Logger
}

// NewSyncScheduler schedule 支持标准 5 段表达式与 @every 描述符
func NewSyncScheduler(schedule string, syncer Syncer, count byte, logger *zap.Logger) (*SyncScheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SyncScheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		syncer: syncer,
		count:  count,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
	}
	return s, nil
}

// RunOnce 执行一次同步；未连接时静默跳过
func (s *SyncScheduler) RunOnce() {
	err := s.syncer.SyncRecords(s.count)
	switch {
	case err == nil:
		s.logger.Debug("record sync requested", zap.Uint8("count", s.count))
	case errors.Is(err, supervisor.ErrNotConnected):
	default:
		s.logger.Warn("record sync failed", zap.Error(err))
	}
}

func (s *SyncScheduler) Start() { s.cron.Start() }

// Stop 停止调度并等待正在执行的任务结束
func (s *SyncScheduler) Stop() {
	<-s.cron.Stop().Done()
}
