package app

import (
	"github.com/gin-gonic/gin"

	"github.com/taoyao-code/walkpad-gateway/internal/health"
	"github.com/taoyao-code/walkpad-gateway/internal/records"
	"github.com/taoyao-code/walkpad-gateway/internal/session"
	"github.com/taoyao-code/walkpad-gateway/internal/state"
)

// NewHealthAggregator 创建健康检查聚合器，启动状态与设备状态始终参与
func NewHealthAggregator(ready *health.Readiness, store *state.Store, registry *session.Registry, recorder *records.Recorder) *health.Aggregator {
	agg := health.NewAggregator(
		ready,
		health.NewDeviceChecker(store, registry),
	)
	if recorder != nil {
		agg.AddChecker(health.NewRecordsChecker(recorder.Breaker()))
	}
	return agg
}

// RegisterHealthRoutes 注册健康检查HTTP路由
func RegisterHealthRoutes(r *gin.Engine, aggregator *health.Aggregator) {
	health.RegisterHTTPRoutes(r, aggregator)
}
