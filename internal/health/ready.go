package health

import (
	"context"
	"sync/atomic"
)

// Readiness 启动阶段就绪标记，各阶段完成前整体不就绪
type Readiness struct {
	configReady    atomic.Bool
	transportReady atomic.Bool
	httpReady      atomic.Bool
}

func New() *Readiness { return &Readiness{} }

func (r *Readiness) SetConfigReady(v bool)    { r.configReady.Store(v) }
func (r *Readiness) SetTransportReady(v bool) { r.transportReady.Store(v) }
func (r *Readiness) SetHTTPReady(v bool)      { r.httpReady.Store(v) }

// Ready 所有阶段均完成
func (r *Readiness) Ready() bool {
	return r.configReady.Load() && r.transportReady.Load() && r.httpReady.Load()
}

func (r *Readiness) Name() string { return "startup" }

func (r *Readiness) Check(context.Context) CheckResult {
	details := map[string]interface{}{
		"config":    r.configReady.Load(),
		"transport": r.transportReady.Load(),
		"http":      r.httpReady.Load(),
	}
	if !r.Ready() {
		return CheckResult{Status: StatusUnhealthy, Message: "starting", Details: details}
	}
	return CheckResult{Status: StatusHealthy, Message: "ok", Details: details}
}
