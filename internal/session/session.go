package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
	"github.com/taoyao-code/walkpad-gateway/internal/metrics"
	"github.com/taoyao-code/walkpad-gateway/internal/outbound"
	"github.com/taoyao-code/walkpad-gateway/internal/poller"
	"github.com/taoyao-code/walkpad-gateway/internal/protocol/walkpad"
)

// ErrClosed 会话已关闭
var ErrClosed = errors.New("session closed")

// Phase 会话阶段
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseAcquiring
	PhaseResolving
	PhaseActive
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAcquiring:
		return "acquiring"
	case PhaseResolving:
		return "resolving"
	case PhaseActive:
		return "active"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config 会话时序参数
type Config struct {
	SettleDelay   time.Duration // 连接后等待链路稳定
	ActivateDelay time.Duration // 激活后首次查询前的等待
	DrainInterval time.Duration
	PollInterval  time.Duration
	RetryBackoff  time.Duration // 第 n 次重试前等待 RetryBackoff*n
	MaxRetries    int
	Coalesce      bool
	NotifyBuffer  int
}

func DefaultConfig() Config {
	return Config{
		SettleDelay:   500 * time.Millisecond,
		ActivateDelay: 100 * time.Millisecond,
		DrainInterval: outbound.DefaultInterval,
		PollInterval:  poller.DefaultInterval,
		RetryBackoff:  time.Second,
		MaxRetries:    3,
		NotifyBuffer:  64,
	}
}

// EventSink 解码后的设备事件去向
type EventSink interface {
	OnInfo(h ble.Handle, i *walkpad.Info)
	OnParams(h ble.Handle, p *walkpad.Params)
	OnRecord(h ble.Handle, r *walkpad.Record)
}

// Session 一次 GATT 连接的完整生命周期
// 持有链路、特征值、下行队列和所有定时任务，Close 时一并释放
type Session struct {
	id        string
	handle    ble.Handle
	transport ble.Transport
	cfg       Config
	sink      EventSink
	registry  *Registry
	logger    *zap.Logger
	metrics   *metrics.AppMetrics

	queue  *outbound.Queue
	poller *poller.Poller
	notify chan []byte

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	phase   atomic.Int32
	closing atomic.Bool

	mu         sync.Mutex
	link       ble.Link
	notifyChar ble.Characteristic
	onLinkLost func(*Session)
	closeOnce  sync.Once
}

// New 创建会话；parent 决定会话生命周期上限（通常为监督者的根 context）
func New(parent context.Context, transport ble.Transport, h ble.Handle, cfg Config, sink EventSink, registry *Registry, logger *zap.Logger, m *metrics.AppMetrics) *Session {
	if cfg.NotifyBuffer <= 0 {
		cfg.NotifyBuffer = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		id:        id,
		handle:    h,
		transport: transport,
		cfg:       cfg,
		sink:      sink,
		registry:  registry,
		logger:    logger.With(zap.String("session_id", id), zap.String("device", h.Address)),
		metrics:   m,
		queue:     outbound.NewQueue(cfg.Coalesce),
		notify:    make(chan []byte, cfg.NotifyBuffer),
		ctx:       ctx,
		cancel:    cancel,
	}
	s.poller = poller.New(s, cfg.PollInterval, s.logger)
	return s
}

func (s *Session) ID() string         { return s.id }
func (s *Session) Handle() ble.Handle { return s.handle }
func (s *Session) Phase() Phase       { return Phase(s.phase.Load()) }
func (s *Session) QueueLen() int      { return s.queue.Len() }

// OnLinkLost 设置意外断链回调，须在 Open 之前调用
func (s *Session) OnLinkLost(fn func(*Session)) {
	s.mu.Lock()
	s.onLinkLost = fn
	s.mu.Unlock()
}

// Enqueue 追加下行命令，实现 poller.Enqueuer
func (s *Session) Enqueue(f walkpad.Frame) bool {
	coalesced := s.queue.Enqueue(f)
	s.metrics.ObserveEnqueue(coalesced)
	return coalesced
}

// Send 会话活动时追加命令
func (s *Session) Send(frames ...walkpad.Frame) error {
	if s.Phase() != PhaseActive {
		return ErrClosed
	}
	for _, f := range frames {
		s.Enqueue(f)
	}
	return nil
}

// Open 建立会话，对链路不稳（ble.ErrLinkUnstable）最多重试 MaxRetries 次
// Abort 或 Close 之后不再重试
func (s *Session) Open(ctx context.Context) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = s.establish(ctx); err == nil {
			s.metrics.ObserveConnect(nil)
			return nil
		}
		s.metrics.ObserveConnect(err)
		if s.closing.Load() || attempt >= s.cfg.MaxRetries || !errors.Is(err, ble.ErrLinkUnstable) {
			return err
		}
		backoff := s.cfg.RetryBackoff * time.Duration(attempt+1)
		s.logger.Info("connection attempt failed, retrying",
			zap.Int("retry", attempt+1),
			zap.Int("max_retries", s.cfg.MaxRetries),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		if werr := s.wait(ctx, backoff); werr != nil {
			return werr
		}
	}
}

func (s *Session) establish(ctx context.Context) error {
	if s.closing.Load() {
		return ErrClosed
	}

	s.setPhase(PhaseAcquiring)
	link, err := s.transport.ConnectGATT(ctx, s.handle)
	if err != nil {
		return classify("connect", err)
	}
	if s.closing.Load() {
		_ = link.Disconnect()
		return ErrClosed
	}
	link.OnDisconnected(func() { s.handleLinkLost(link) })
	if err := s.wait(ctx, s.cfg.SettleDelay); err != nil {
		_ = link.Disconnect()
		return err
	}
	if !link.IsConnected() {
		_ = link.Disconnect()
		return fmt.Errorf("%w: connection lost right after connect", ble.ErrLinkUnstable)
	}

	s.setPhase(PhaseResolving)
	notifyChar, writeChar, err := resolve(ctx, link)
	if err != nil {
		_ = link.Disconnect()
		return err
	}

	if err := s.activate(ctx, link, notifyChar, writeChar); err != nil {
		_ = link.Disconnect()
		return err
	}
	return nil
}

// resolve 查找服务与两个特征值
func resolve(ctx context.Context, link ble.Link) (notifyChar, writeChar ble.Characteristic, err error) {
	svc, err := link.Service(ctx, walkpad.ServiceUUID)
	if err != nil {
		return nil, nil, resolveError(link, fmt.Sprintf("service 0x%04X", walkpad.ServiceUUID), err)
	}
	notifyChar, err = svc.Characteristic(ctx, walkpad.NotifyCharUUID)
	if err != nil {
		return nil, nil, resolveError(link, fmt.Sprintf("characteristic 0x%04X", walkpad.NotifyCharUUID), err)
	}
	writeChar, err = svc.Characteristic(ctx, walkpad.WriteCharUUID)
	if err != nil {
		return nil, nil, resolveError(link, fmt.Sprintf("characteristic 0x%04X", walkpad.WriteCharUUID), err)
	}
	return notifyChar, writeChar, nil
}

// resolveError 解析中断链归为链路不稳，其余归为不是目标设备
func resolveError(link ble.Link, what string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if ble.IsTransient(err) || !link.IsConnected() {
		return fmt.Errorf("%w: resolving %s: %w", ble.ErrLinkUnstable, what, err)
	}
	return fmt.Errorf("%w: %s: %v", ble.ErrServiceNotFound, what, err)
}

// classify 按平台原始错误判断是否链路抖动，再附加操作名
func classify(op string, err error) error {
	if errors.Is(err, ble.ErrLinkUnstable) || !ble.IsTransient(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ble.ErrLinkUnstable, op, err)
}

func (s *Session) activate(ctx context.Context, link ble.Link, notifyChar, writeChar ble.Characteristic) error {
	if err := notifyChar.Subscribe(s.onValue); err != nil {
		return classify("subscribe notifications", err)
	}

	s.mu.Lock()
	if s.closing.Load() {
		s.mu.Unlock()
		_ = notifyChar.Unsubscribe()
		return ErrClosed
	}
	if s.registry != nil {
		if err := s.registry.Bind(s.handle.Address, s); err != nil {
			s.mu.Unlock()
			_ = notifyChar.Unsubscribe()
			return err
		}
	}
	s.link = link
	s.notifyChar = notifyChar
	s.wg.Add(3)
	s.mu.Unlock()

	worker := outbound.NewWorker(s.queue, writeChar, s.cfg.DrainInterval, s.logger, s.metrics)
	go func() {
		defer s.wg.Done()
		s.dispatch()
	}()
	go func() {
		defer s.wg.Done()
		worker.Run(s.ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.poller.Run(s.ctx)
	}()

	if !s.phase.CompareAndSwap(int32(PhaseResolving), int32(PhaseActive)) {
		return ErrClosed
	}
	s.logger.Info("session active")

	if err := s.wait(ctx, s.cfg.ActivateDelay); err == nil && s.Phase() == PhaseActive {
		s.poller.Tick()
	}
	return nil
}

// onValue 平台通知回调：只做拷贝与投递，不阻塞平台线程
func (s *Session) onValue(b []byte) {
	if s.closing.Load() {
		return
	}
	buf := make([]byte, len(b))
	copy(buf, b)
	select {
	case s.notify <- buf:
	default:
		s.metrics.ObserveNotifyDropped()
		s.logger.Warn("notification dropped, dispatcher saturated", zap.Int("bytes", len(buf)))
	}
}

// dispatch 按到达顺序解码并分发通知
func (s *Session) dispatch() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case b := <-s.notify:
			s.handleValue(b)
		}
	}
}

func (s *Session) handleValue(b []byte) {
	if s.registry != nil {
		s.registry.OnHeartbeat(s.handle.Address, time.Now())
	}
	ev := walkpad.Decode(b)
	s.metrics.ObserveFrame(ev.Kind().String())

	switch e := ev.(type) {
	case *walkpad.Info:
		if s.sink != nil {
			s.sink.OnInfo(s.handle, e)
		}
	case *walkpad.Params:
		s.poller.MarkParamsKnown()
		if s.sink != nil {
			s.sink.OnParams(s.handle, e)
		}
	case *walkpad.Record:
		if e.Duration == 0 {
			s.metrics.ObserveRecord("discarded")
			s.logger.Debug("zero-duration record discarded")
			return
		}
		if s.sink != nil {
			s.sink.OnRecord(s.handle, e)
		}
	case *walkpad.Unknown:
		s.logger.Debug("undecodable notification",
			zap.String("frame", walkpad.Frame(e.Raw).Hex()),
			zap.Error(e.Err))
	}
}

// handleLinkLost 平台报告断链；建立过程中的断链由 Open 自行处理
func (s *Session) handleLinkLost(link ble.Link) {
	if s.closing.Load() || s.Phase() != PhaseActive {
		return
	}
	s.mu.Lock()
	current := s.link == link
	fn := s.onLinkLost
	s.mu.Unlock()
	if !current {
		return
	}
	s.logger.Warn("link lost")

	if fn != nil {
		fn(s)
		return
	}
	s.Close()
}

// Abort 停止后续重试与等待，不阻塞；进行中的 ConnectGATT 照常返回
// 资源仍由 Open 的调用方 Close 释放
func (s *Session) Abort() {
	s.mu.Lock()
	s.closing.Store(true)
	s.mu.Unlock()
	s.cancel()
}

// Close 释放会话持有的全部资源，可重复调用
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closing.Store(true)
		s.mu.Unlock()
		s.cancel()
		s.wg.Wait()

		s.mu.Lock()
		link, notifyChar := s.link, s.notifyChar
		s.link, s.notifyChar = nil, nil
		s.mu.Unlock()

		if notifyChar != nil {
			if err := notifyChar.Unsubscribe(); err != nil {
				s.logger.Debug("unsubscribe failed", zap.Error(err))
			}
		}
		dropped := s.queue.Clear()
		s.metrics.SetQueueDepth(0)
		s.poller.Reset()
		if s.registry != nil {
			s.registry.Unbind(s.handle.Address, s)
		}
		if link != nil && link.IsConnected() {
			if err := link.Disconnect(); err != nil {
				s.logger.Debug("disconnect failed", zap.Error(err))
			}
		}
		s.setPhase(PhaseClosed)
		s.logger.Info("session closed", zap.Int("dropped_commands", dropped))
	})
}

// setPhase 关闭后不再回退到其他阶段
func (s *Session) setPhase(p Phase) {
	for {
		cur := s.phase.Load()
		if Phase(cur) == PhaseClosed && p != PhaseClosed {
			return
		}
		if s.phase.CompareAndSwap(cur, int32(p)) {
			return
		}
	}
}

// wait 等待 d；调用方取消或会话被中止时提前返回
func (s *Session) wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closing.Load() {
		return ErrClosed
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return ErrClosed
	case <-t.C:
		return nil
	}
}
