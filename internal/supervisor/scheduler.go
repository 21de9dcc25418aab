package supervisor

import (
	"sync"
	"time"
)

// scheduler 可整体取消的延时任务集合
// 被取消的任务即使已经触发也不会执行
type scheduler struct {
	mu     sync.Mutex
	timers map[*time.Timer]struct{}
}

func newScheduler() *scheduler {
	return &scheduler{timers: make(map[*time.Timer]struct{})}
}

// After d 之后执行 fn（在独立 goroutine 中）
func (s *scheduler) After(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		_, pending := s.timers[t]
		delete(s.timers, t)
		s.mu.Unlock()
		if pending {
			fn()
		}
	})
	s.timers[t] = struct{}{}
}

// CancelAll 取消全部未执行的任务
func (s *scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for t := range s.timers {
		t.Stop()
		delete(s.timers, t)
	}
}

// Pending 未执行的任务数
func (s *scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
