package session

import "time"

// Tracker 会话在线情况的只读视图，健康检查使用
type Tracker interface {
	// ActiveCount 活动会话数量
	ActiveCount() int

	// IsOnline 超时时间内收到过通知
	IsOnline(address string, now time.Time) bool

	// LastSeen 最近一次通知时间
	LastSeen(address string) (time.Time, bool)
}

var _ Tracker = (*Registry)(nil)
