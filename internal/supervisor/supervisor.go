package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
	"github.com/taoyao-code/walkpad-gateway/internal/metrics"
	"github.com/taoyao-code/walkpad-gateway/internal/protocol/walkpad"
	"github.com/taoyao-code/walkpad-gateway/internal/session"
	"github.com/taoyao-code/walkpad-gateway/internal/state"
)

var (
	// ErrReconnectExhausted 自动重连次数用尽
	ErrReconnectExhausted = errors.New("reconnect attempts exhausted")
	// ErrNotConnected 当前没有活动会话
	ErrNotConnected = errors.New("device not connected")
	// ErrCancelled 连接尝试完成时已被取消
	ErrCancelled = errors.New("connection attempt cancelled")
	// ErrBusy 已有连接流程在进行
	ErrBusy = errors.New("connection already in progress")
)

// Preferences 持久化的用户偏好
type Preferences interface {
	AutoReconnect(ctx context.Context) (enabled bool, ok bool, err error)
	SetAutoReconnect(ctx context.Context, enabled bool) error
	LastDevice(ctx context.Context) (ble.Handle, bool, error)
	SetLastDevice(ctx context.Context, h ble.Handle) error
}

// RecordSink 运动记录的持久化去向
type RecordSink interface {
	Submit(h ble.Handle, r walkpad.Record)
}

// Supervisor 会话状态机的唯一写入者
// 负责连接、断链后的自动重连、取消与持续重连
type Supervisor struct {
	cfg       Config
	transport ble.Transport
	store     *state.Store
	registry  *session.Registry
	prefs     Preferences
	records   RecordSink
	logger    *zap.Logger
	metrics   *metrics.AppMetrics
	sched     *scheduler

	mu            sync.Mutex
	rootCtx       context.Context
	rootCancel    context.CancelFunc
	state         state.SessionState
	handle        *ble.Handle
	sess          *session.Session
	pending       *session.Session // 正在建立中的会话，取消时中止其重试
	attempts      int
	manual        bool
	autoReconnect bool
	gen           uint64 // 每次取消递增，过期任务据此失效
	persistent    bool
	watching      bool
	stopWatch     func()
}

type Option func(*Supervisor)

func WithLogger(l *zap.Logger) Option {
	return func(s *Supervisor) { s.logger = l }
}

func WithMetrics(m *metrics.AppMetrics) Option {
	return func(s *Supervisor) { s.metrics = m }
}

func WithRegistry(r *session.Registry) Option {
	return func(s *Supervisor) { s.registry = r }
}

func WithPreferences(p Preferences) Option {
	return func(s *Supervisor) { s.prefs = p }
}

func WithRecordSink(r RecordSink) Option {
	return func(s *Supervisor) { s.records = r }
}

// New transport 为 nil 表示宿主没有可用的蓝牙
func New(cfg Config, transport ble.Transport, store *state.Store, opts ...Option) *Supervisor {
	s := &Supervisor{
		cfg:           cfg,
		transport:     transport,
		store:         store,
		logger:        zap.NewNop(),
		sched:         newScheduler(),
		autoReconnect: cfg.AutoReconnect,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = session.NewRegistry(0)
	}
	s.logger = s.logger.Named("supervisor")
	s.rootCtx, s.rootCancel = context.WithCancel(context.Background())

	s.refreshSupport()
	store.SetAutoReconnect(s.autoReconnect)
	store.SetReconnectAttempt(0, cfg.MaxReconnectAttempts)
	return s
}

// Run 载入偏好并在启动等待后尝试自动重连
func (s *Supervisor) Run(ctx context.Context) {
	s.mu.Lock()
	s.rootCancel()
	s.rootCtx, s.rootCancel = context.WithCancel(ctx)
	s.mu.Unlock()
	s.refreshSupport()

	if s.prefs != nil {
		if enabled, ok, err := s.prefs.AutoReconnect(ctx); err != nil {
			s.logger.Warn("load auto-reconnect preference failed", zap.Error(err))
		} else if ok {
			s.mu.Lock()
			s.autoReconnect = enabled
			s.mu.Unlock()
			s.store.SetAutoReconnect(enabled)
		}
		if h, ok, err := s.prefs.LastDevice(ctx); err != nil {
			s.logger.Warn("load last device failed", zap.Error(err))
		} else if ok {
			s.store.SetDevice(h)
		}
	}

	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()
	s.sched.After(s.cfg.StartupDelay, func() {
		s.mu.Lock()
		stale := gen != s.gen
		s.mu.Unlock()
		if !stale {
			s.TryAutoReconnect(s.context())
		}
	})
}

// Close 停止所有任务并释放会话，不改变用户偏好
func (s *Supervisor) Close() {
	s.mu.Lock()
	s.cancelPendingLocked()
	sess := s.sess
	s.sess = nil
	s.setStateLocked(state.Disconnected)
	cancel := s.rootCancel
	s.mu.Unlock()

	if sess != nil {
		sess.Close()
	}
	cancel()
}

// State 当前会话状态
func (s *Supervisor) State() state.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Session 当前活动会话
func (s *Supervisor) Session() (*session.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess, s.sess != nil
}

// Connect 扫描 WalkingPad 系列设备并连接
func (s *Supervisor) Connect(ctx context.Context) error {
	return s.connect(ctx, ble.Filter{NamePrefixes: s.cfg.NamePrefixes})
}

// ConnectAny 不做名称过滤
func (s *Supervisor) ConnectAny(ctx context.Context) error {
	return s.connect(ctx, ble.Filter{AcceptAll: true})
}

func (s *Supervisor) connect(ctx context.Context, f ble.Filter) error {
	if s.transport == nil {
		s.store.SetError(ble.ErrUnsupportedTransport)
		return ble.ErrUnsupportedTransport
	}

	s.mu.Lock()
	switch s.state {
	case state.Connecting:
		s.mu.Unlock()
		return ErrBusy
	case state.Connected:
		s.mu.Unlock()
		return nil
	}
	s.cancelPendingLocked()
	s.manual = false
	gen := s.gen
	s.setStateLocked(state.Connecting)
	s.mu.Unlock()
	s.store.SetError(nil)

	scanCtx := ctx
	if s.cfg.ScanTimeout > 0 {
		var cancel context.CancelFunc
		scanCtx, cancel = context.WithTimeout(ctx, s.cfg.ScanTimeout)
		defer cancel()
	}
	h, err := s.transport.Scan(scanCtx, f)
	if err != nil {
		s.failConnect(gen, fmt.Errorf("scan: %w", err))
		return err
	}
	s.logger.Info("device selected", zap.String("device", h.String()))
	s.remember(ctx, h)

	if err := s.openSession(ctx, h, gen, true); err != nil {
		s.failConnect(gen, err)
		return err
	}
	return nil
}

// failConnect 用户发起的连接失败：回到断开并记录错误
func (s *Supervisor) failConnect(gen uint64, err error) {
	s.logger.Warn("connect failed", zap.Error(err))
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	if s.state == state.Connecting {
		s.setStateLocked(state.Disconnected)
	}
	s.store.SetError(err)
}

func (s *Supervisor) remember(ctx context.Context, h ble.Handle) {
	s.mu.Lock()
	s.handle = &h
	s.mu.Unlock()
	s.store.SetDevice(h)
	if s.prefs != nil {
		if err := s.prefs.SetLastDevice(ctx, h); err != nil {
			s.logger.Warn("persist last device failed", zap.Error(err))
		}
	}
}

// openSession 单次建立会话；同一外设同时只允许一个尝试
// wait 为 true 时等待进行中的尝试结束，否则直接返回 session.ErrAttemptInFlight
func (s *Supervisor) openSession(ctx context.Context, h ble.Handle, gen uint64, wait bool) error {
	if wait {
		if err := s.registry.Begin(ctx, h.Address); err != nil {
			return err
		}
	} else if !s.registry.TryBegin(h.Address) {
		return session.ErrAttemptInFlight
	}
	defer s.registry.End(h.Address)

	sess := session.New(s.context(), s.transport, h, s.cfg.Session, deviceSink{s}, s.registry, s.logger, s.metrics)
	sess.OnLinkLost(s.handleLinkLost)

	s.mu.Lock()
	if gen != s.gen || s.manual {
		s.mu.Unlock()
		sess.Close()
		return ErrCancelled
	}
	s.pending = sess
	s.mu.Unlock()

	err := sess.Open(ctx)

	s.mu.Lock()
	if s.pending == sess {
		s.pending = nil
	}
	if gen != s.gen || s.manual {
		s.mu.Unlock()
		sess.Close()
		return ErrCancelled
	}
	if err != nil {
		s.mu.Unlock()
		sess.Close()
		return err
	}
	if sess.Phase() != session.PhaseActive {
		s.mu.Unlock()
		sess.Close()
		return fmt.Errorf("%w: link dropped during activation", ble.ErrLinkUnstable)
	}
	old := s.sess
	s.sess = sess
	s.handle = &h
	s.attempts = 0
	s.persistent = false
	s.stopWatchLocked()
	s.setStateLocked(state.Connected)
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	s.store.SetError(nil)
	s.store.SetReconnectAttempt(0, s.cfg.MaxReconnectAttempts)
	s.logger.Info("connected", zap.String("device", h.String()), zap.String("session_id", sess.ID()))
	return nil
}

// handleLinkLost 会话报告意外断链
func (s *Supervisor) handleLinkLost(sess *session.Session) {
	s.mu.Lock()
	if s.sess != sess {
		s.mu.Unlock()
		sess.Close()
		return
	}
	s.sess = nil
	s.setStateLocked(state.Disconnected)
	schedule := s.autoReconnect && !s.manual && s.handle != nil
	if schedule {
		gen := s.gen
		s.sched.After(s.cfg.ReconnectDelay, func() { s.attemptReconnect(gen) })
	}
	s.mu.Unlock()

	s.store.ResetDevice()
	sess.Close()
	s.logger.Warn("device disconnected", zap.Bool("auto_reconnect", schedule))
}

// attemptReconnect 断链后的自动重连，串行执行、线性退避
func (s *Supervisor) attemptReconnect(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.manual || s.handle == nil || s.sess != nil {
		s.mu.Unlock()
		return
	}
	s.attempts++
	attempt := s.attempts
	h := *s.handle
	s.setStateLocked(state.Reconnecting)
	s.mu.Unlock()

	s.store.SetReconnectAttempt(attempt, s.cfg.MaxReconnectAttempts)
	s.metrics.ObserveReconnectAttempt()
	s.logger.Info("reconnecting",
		zap.Int("attempt", attempt),
		zap.Int("max_attempts", s.cfg.MaxReconnectAttempts),
		zap.String("device", h.String()))

	err := s.openSession(s.context(), h, gen, false)
	if err == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.manual {
		return
	}
	if s.attempts >= s.cfg.MaxReconnectAttempts {
		s.attempts = 0
		s.setStateLocked(state.Disconnected)
		s.store.SetReconnectAttempt(0, s.cfg.MaxReconnectAttempts)
		s.store.SetError(fmt.Errorf("%w after %d attempts: %v", ErrReconnectExhausted, s.cfg.MaxReconnectAttempts, err))
		s.logger.Warn("reconnect attempts exhausted", zap.Error(err))
		return
	}
	delay := s.cfg.ReconnectDelay * time.Duration(s.attempts)
	s.logger.Info("reconnect attempt failed", zap.Int("attempt", s.attempts), zap.Duration("next_in", delay), zap.Error(err))
	s.sched.After(delay, func() { s.attemptReconnect(gen) })
}

// CancelReconnect 取消所有待执行的重连，并视为用户主动断开
func (s *Supervisor) CancelReconnect() {
	s.mu.Lock()
	s.cancelPendingLocked()
	s.manual = true
	if s.state != state.Connected {
		s.setStateLocked(state.Disconnected)
	}
	s.mu.Unlock()

	s.store.SetReconnectAttempt(0, s.cfg.MaxReconnectAttempts)
	s.logger.Info("reconnect cancelled")
}

// Disconnect 用户主动断开：取消全部任务并释放链路，不触发自动重连
func (s *Supervisor) Disconnect() {
	s.mu.Lock()
	s.cancelPendingLocked()
	s.manual = true
	sess := s.sess
	s.sess = nil
	s.setStateLocked(state.Disconnected)
	s.mu.Unlock()

	if sess != nil {
		sess.Close()
	}
	s.store.ResetDevice()
	s.store.SetReconnectAttempt(0, s.cfg.MaxReconnectAttempts)
	s.logger.Info("disconnected by user")
}

// SetAutoReconnect 开关自动重连；空闲时开启会立即尝试持续重连
// 用户主动断开后只有新的 Connect 才会恢复重连
func (s *Supervisor) SetAutoReconnect(ctx context.Context, enabled bool) {
	s.mu.Lock()
	s.autoReconnect = enabled
	idle := s.state == state.Disconnected && s.sess == nil && !s.manual
	s.mu.Unlock()

	s.store.SetAutoReconnect(enabled)
	if s.prefs != nil {
		if err := s.prefs.SetAutoReconnect(ctx, enabled); err != nil {
			s.logger.Warn("persist auto-reconnect preference failed", zap.Error(err))
		}
	}
	if enabled && idle {
		go s.TryAutoReconnect(s.context())
	}
}

// cancelPendingLocked 让所有已排程或进行中的后台任务失效
func (s *Supervisor) cancelPendingLocked() {
	s.gen++
	s.sched.CancelAll()
	if s.pending != nil {
		s.pending.Abort()
		s.pending = nil
	}
	s.attempts = 0
	s.persistent = false
	s.stopWatchLocked()
}

func (s *Supervisor) stopWatchLocked() {
	if s.stopWatch != nil {
		s.stopWatch()
		s.stopWatch = nil
	}
	s.watching = false
}

func (s *Supervisor) setStateLocked(st state.SessionState) {
	if s.state != st {
		s.logger.Debug("session state", zap.Stringer("from", s.state), zap.Stringer("to", st))
	}
	s.state = st
	s.store.SetSessionState(st)
	s.metrics.SetSessionState(int(st))
}

// refreshSupport 平台能力可能在启动后才就绪
func (s *Supervisor) refreshSupport() {
	s.store.SetSupport(ble.Capabilities(s.transport))
}

func (s *Supervisor) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rootCtx
}

// deviceSink 把会话事件写入快照并转发记录
type deviceSink struct{ s *Supervisor }

func (d deviceSink) OnInfo(_ ble.Handle, i *walkpad.Info) { d.s.store.ApplyInfo(i) }

func (d deviceSink) OnParams(_ ble.Handle, p *walkpad.Params) { d.s.store.ApplyParams(p) }

func (d deviceSink) OnRecord(h ble.Handle, r *walkpad.Record) {
	if !d.s.store.AddRecord(*r) {
		d.s.metrics.ObserveRecord("discarded")
		return
	}
	if d.s.records != nil {
		d.s.records.Submit(h, *r)
	}
}
