package supervisor

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
	"github.com/taoyao-code/walkpad-gateway/internal/session"
	"github.com/taoyao-code/walkpad-gateway/internal/state"
)

// TryAutoReconnect 持续重连：从已配对设备（或上次连接的设备）中挑选目标，
// 立即尝试一次；平台支持广播监听时等外设进入范围再试，否则按固定间隔轮询
// 返回是否启动了持续重连
func (s *Supervisor) TryAutoReconnect(ctx context.Context) bool {
	if s.transport == nil {
		return false
	}
	s.refreshSupport()

	s.mu.Lock()
	if !s.autoReconnect || s.manual || s.state != state.Disconnected || s.sess != nil || s.persistent || s.sched.Pending() > 0 {
		s.mu.Unlock()
		return false
	}
	s.persistent = true
	gen := s.gen
	s.setStateLocked(state.Reconnecting)
	s.mu.Unlock()

	target, ok := s.pickTarget(ctx)
	if !ok {
		s.mu.Lock()
		if gen == s.gen {
			s.persistent = false
			s.setStateLocked(state.Disconnected)
		}
		s.mu.Unlock()
		s.logger.Info("no known device for auto-reconnect")
		return false
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return false
	}
	s.handle = &target
	s.mu.Unlock()
	s.store.SetDevice(target)
	s.logger.Info("auto-reconnect started", zap.String("device", target.String()))

	if w, ok := s.transport.(ble.AdvertisementWatcher); ok {
		stop, err := w.WatchAdvertisements(s.context(), target, func() { go s.onAdvertisement(gen, target) })
		if err != nil {
			s.logger.Info("advertisement watch unavailable, polling instead", zap.Error(err))
		} else {
			s.mu.Lock()
			if gen == s.gen {
				s.stopWatch = stop
				s.watching = true
				stop = nil
			}
			s.mu.Unlock()
			if stop != nil {
				stop()
			}
		}
	}

	go s.persistentAttempt(gen, target)
	return true
}

// pickTarget 已配对设备优先，其次上次连接的设备
func (s *Supervisor) pickTarget(ctx context.Context) (ble.Handle, bool) {
	if lister, ok := s.transport.(ble.BondedLister); ok {
		devices, err := lister.BondedDevices(ctx)
		switch {
		case err == nil && len(devices) > 0:
			return ble.PickBonded(devices, s.cfg.BondedHints)
		case err != nil && !errors.Is(err, ble.ErrNotSupported):
			s.logger.Warn("list bonded devices failed", zap.Error(err))
		}
	}
	if s.prefs != nil {
		h, ok, err := s.prefs.LastDevice(ctx)
		if err != nil {
			s.logger.Warn("load last device failed", zap.Error(err))
			return ble.Handle{}, false
		}
		if ok && h.Address != "" {
			return h, true
		}
	}
	return ble.Handle{}, false
}

// onAdvertisement 外设进入范围：停止监听并立即尝试
func (s *Supervisor) onAdvertisement(gen uint64, h ble.Handle) {
	s.mu.Lock()
	if gen != s.gen || !s.watching {
		s.mu.Unlock()
		return
	}
	s.stopWatchLocked()
	s.mu.Unlock()

	s.logger.Info("device advertising, connecting", zap.String("device", h.String()))
	s.persistentAttempt(gen, h)
}

// persistentAttempt 每次尝试前检查取消标志；进行中的尝试会完整结束
func (s *Supervisor) persistentAttempt(gen uint64, h ble.Handle) {
	s.mu.Lock()
	if gen != s.gen || s.manual || s.sess != nil {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	err := s.openSession(s.context(), h, gen, false)
	if err == nil || errors.Is(err, session.ErrAttemptInFlight) || errors.Is(err, ErrCancelled) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.manual {
		return
	}
	if ble.IsOutOfRange(err) {
		if s.watching {
			s.logger.Info("device not reachable, waiting for advertisement", zap.Error(err))
			return
		}
		s.logger.Info("device not reachable, retrying", zap.Duration("interval", s.cfg.PersistentInterval), zap.Error(err))
		s.sched.After(s.cfg.PersistentInterval, func() { s.persistentAttempt(gen, h) })
		return
	}

	s.persistent = false
	s.setStateLocked(state.Disconnected)
	s.store.SetError(err)
	s.logger.Warn("auto-reconnect failed", zap.Error(err))
}
