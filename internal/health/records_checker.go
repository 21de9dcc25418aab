package health

import (
	"context"
	"time"

	"github.com/taoyao-code/walkpad-gateway/internal/records"
)

// RecordsChecker 记录存储熔断状态检查
type RecordsChecker struct {
	breaker *records.Breaker
}

func NewRecordsChecker(b *records.Breaker) *RecordsChecker {
	return &RecordsChecker{breaker: b}
}

func (c *RecordsChecker) Name() string {
	return "records"
}

func (c *RecordsChecker) Check(context.Context) CheckResult {
	start := time.Now()
	stats := c.breaker.Stats()
	res := CheckResult{
		Status:  StatusHealthy,
		Message: "ok",
		Details: map[string]interface{}{
			"breaker_state":        stats.State,
			"consecutive_failures": stats.Consecutive,
			"trips":                stats.Trips,
		},
	}
	if c.breaker.State() != records.BreakerClosed {
		res.Status = StatusDegraded
		res.Message = "record store circuit open"
	}
	res.Latency = time.Since(start)
	return res
}
