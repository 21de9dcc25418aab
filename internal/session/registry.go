package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrAttemptInFlight 同一外设已有连接尝试在进行
	ErrAttemptInFlight = errors.New("connection attempt already in flight")
	// ErrAlreadyActive 同一外设已有活动会话
	ErrAlreadyActive = errors.New("session already active for device")
)

// Registry 按外设地址跟踪连接尝试与活动会话
// 保证同一外设同时最多一次连接尝试、最多一个活动会话
type Registry struct {
	mu       sync.RWMutex
	timeout  time.Duration
	lastSeen map[string]time.Time // address -> 最近一次通知
	active   map[string]*Session
	inflight map[string]chan struct{} // 尝试结束时关闭
	presence Presence
}

func NewRegistry(timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Registry{
		timeout:  timeout,
		lastSeen: make(map[string]time.Time),
		active:   make(map[string]*Session),
		inflight: make(map[string]chan struct{}),
	}
}

// SetPresence 设置外部镜像，须在会话建立前调用
func (r *Registry) SetPresence(p Presence) {
	r.mu.Lock()
	r.presence = p
	r.mu.Unlock()
}

// TryBegin 占用连接尝试名额，已被占用返回 false
func (r *Registry) TryBegin(address string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inflight[address]; busy {
		return false
	}
	r.inflight[address] = make(chan struct{})
	return true
}

// Begin 等待进行中的尝试结束后占用名额
func (r *Registry) Begin(ctx context.Context, address string) error {
	for {
		r.mu.Lock()
		done, busy := r.inflight[address]
		if !busy {
			r.inflight[address] = make(chan struct{})
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
		}
	}
}

// End 释放连接尝试名额
func (r *Registry) End(address string) {
	r.mu.Lock()
	if done, ok := r.inflight[address]; ok {
		close(done)
		delete(r.inflight, address)
	}
	r.mu.Unlock()
}

// InFlight 是否有连接尝试在进行
func (r *Registry) InFlight(address string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.inflight[address]
	return ok
}

// Bind 登记活动会话；已有其他活动会话时拒绝
func (r *Registry) Bind(address string, s *Session) error {
	r.mu.Lock()
	if cur, ok := r.active[address]; ok && cur != s {
		r.mu.Unlock()
		return ErrAlreadyActive
	}
	r.active[address] = s
	p := r.presence
	r.mu.Unlock()
	if p != nil {
		p.Bind(address, s.ID(), time.Now())
	}
	return nil
}

// Unbind 仅当登记的是 s 时才移除
func (r *Registry) Unbind(address string, s *Session) {
	r.mu.Lock()
	cur, ok := r.active[address]
	removed := ok && cur == s
	if removed {
		delete(r.active, address)
		delete(r.lastSeen, address)
	}
	p := r.presence
	r.mu.Unlock()
	if removed && p != nil {
		p.Unbind(address, s.ID())
	}
}

// Get 返回活动会话
func (r *Registry) Get(address string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.active[address]
	return s, ok
}

// ActiveCount 活动会话数量
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active)
}

// OnHeartbeat 记录收到通知的时间
func (r *Registry) OnHeartbeat(address string, t time.Time) {
	r.mu.Lock()
	r.lastSeen[address] = t
	p := r.presence
	r.mu.Unlock()
	if p != nil {
		p.Heartbeat(address, t)
	}
}

// IsOnline 超时时间内收到过通知
func (r *Registry) IsOnline(address string, now time.Time) bool {
	r.mu.RLock()
	ts, ok := r.lastSeen[address]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return now.Sub(ts) <= r.timeout
}

// LastSeen 最近一次通知时间
func (r *Registry) LastSeen(address string) (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ts, ok := r.lastSeen[address]
	return ts, ok
}
