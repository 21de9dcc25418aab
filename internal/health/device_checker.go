package health

import (
	"context"
	"time"

	"github.com/taoyao-code/walkpad-gateway/internal/session"
	"github.com/taoyao-code/walkpad-gateway/internal/state"
)

// SnapshotSource 设备快照来源
type SnapshotSource interface {
	Snapshot() state.Snapshot
}

// DeviceChecker 蓝牙链路健康检查
// 蓝牙不可用为 Unhealthy；设备未连接或通知超时为 Degraded
type DeviceChecker struct {
	source  SnapshotSource
	tracker session.Tracker
	now     func() time.Time
}

func NewDeviceChecker(source SnapshotSource, tracker session.Tracker) *DeviceChecker {
	return &DeviceChecker{source: source, tracker: tracker, now: time.Now}
}

func (c *DeviceChecker) Name() string {
	return "device"
}

func (c *DeviceChecker) Check(context.Context) CheckResult {
	start := time.Now()
	snap := c.source.Snapshot()

	details := map[string]interface{}{
		"session_state":  snap.SessionState.String(),
		"auto_reconnect": snap.AutoReconnect,
		"bluetooth":      snap.Support.Bluetooth,
	}
	if snap.Device != nil {
		details["device"] = snap.Device.Address
	}
	if snap.LastError != "" {
		details["last_error"] = snap.LastError
	}

	result := func(s Status, msg string) CheckResult {
		return CheckResult{Status: s, Message: msg, Details: details, Latency: time.Since(start)}
	}

	if !snap.Support.Bluetooth {
		return result(StatusUnhealthy, "bluetooth unavailable")
	}

	switch snap.SessionState {
	case state.Connected:
	case state.Reconnecting:
		details["reconnect_attempt"] = snap.ReconnectAttempt
		return result(StatusDegraded, "reconnecting")
	default:
		return result(StatusDegraded, "no device connected")
	}

	if c.tracker != nil && snap.Device != nil {
		if seen, ok := c.tracker.LastSeen(snap.Device.Address); ok {
			details["last_seen"] = seen
		}
		if !c.tracker.IsOnline(snap.Device.Address, c.now()) {
			return result(StatusDegraded, "no notifications from device")
		}
	}
	return result(StatusHealthy, "ok")
}
