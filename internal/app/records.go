package app

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	cfgpkg "github.com/taoyao-code/walkpad-gateway/internal/config"
	"github.com/taoyao-code/walkpad-gateway/internal/metrics"
	"github.com/taoyao-code/walkpad-gateway/internal/records"
)

// NewRecorder 有数据库时记录落 PostgreSQL，否则保存在内存
func NewRecorder(cfg cfgpkg.RecordsConfig, db *gorm.DB, appm *metrics.AppMetrics, logger *zap.Logger) *records.Recorder {
	var store records.Store
	if db != nil {
		store = records.NewGormStore(db)
		logger.Info("using postgres record store")
	} else {
		store = records.NewMemoryStore()
		logger.Info("using memory record store")
	}
	breaker := records.NewBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown)
	return records.NewRecorder(store, breaker, cfg.Buffer, logger, appm)
}

// NewSyncScheduler 定时请求设备上传历史记录；未配置调度时返回 nil
func NewSyncScheduler(cfg cfgpkg.RecordsConfig, syncer records.Syncer, logger *zap.Logger) (*records.SyncScheduler, error) {
	if cfg.SyncSchedule == "" {
		return nil, nil
	}
	return records.NewSyncScheduler(cfg.SyncSchedule, syncer, 0, logger)
}
