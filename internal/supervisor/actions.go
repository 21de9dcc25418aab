package supervisor

import (
	"errors"
	"fmt"

	"github.com/taoyao-code/walkpad-gateway/internal/protocol/walkpad"
	"github.com/taoyao-code/walkpad-gateway/internal/session"
)

// ErrInvalidArgument 参数超出设备可接受范围
var ErrInvalidArgument = errors.New("invalid argument")

func (s *Supervisor) send(frames ...walkpad.Frame) error {
	sess, ok := s.Session()
	if !ok {
		return ErrNotConnected
	}
	if err := sess.Send(frames...); err != nil {
		if errors.Is(err, session.ErrClosed) {
			return ErrNotConnected
		}
		return err
	}
	return nil
}

// SetSpeed 速度单位 0.1 km/h
func (s *Supervisor) SetSpeed(speed int) error {
	if speed < 0 || speed > 0xFF {
		return fmt.Errorf("%w: speed %d", ErrInvalidArgument, speed)
	}
	return s.send(walkpad.SetSpeed(byte(speed)))
}

func (s *Supervisor) SetMode(m walkpad.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: mode %d", ErrInvalidArgument, m)
	}
	return s.send(walkpad.SetMode(m))
}

// Start 休眠模式下先切到手动模式再启动
func (s *Supervisor) Start() error {
	if s.store.Snapshot().Status.Mode == walkpad.ModeSleep {
		return s.send(walkpad.SetMode(walkpad.ModeManual), walkpad.Start())
	}
	return s.send(walkpad.Start())
}

// Stop 切到休眠模式
func (s *Supervisor) Stop() error {
	return s.send(walkpad.SetMode(walkpad.ModeSleep))
}

func (s *Supervisor) SetStartSpeed(speed int) error {
	if speed < 0 || speed > 0xFF {
		return fmt.Errorf("%w: start speed %d", ErrInvalidArgument, speed)
	}
	return s.send(walkpad.SetStartSpeed(speed))
}

func (s *Supervisor) SetMaxSpeed(speed int) error {
	if speed <= 0 || speed > 0xFF {
		return fmt.Errorf("%w: max speed %d", ErrInvalidArgument, speed)
	}
	return s.send(walkpad.SetMaxSpeed(speed))
}

func (s *Supervisor) SetSensitivity(v walkpad.Sensitivity) error {
	if !v.Valid() {
		return fmt.Errorf("%w: sensitivity %d", ErrInvalidArgument, v)
	}
	return s.send(walkpad.SetSensitivity(v))
}

func (s *Supervisor) SetAutoStart(enabled bool) error {
	return s.send(walkpad.SetAutoStart(enabled))
}

func (s *Supervisor) SetUnit(u walkpad.Unit) error {
	if !u.Valid() {
		return fmt.Errorf("%w: unit %d", ErrInvalidArgument, u)
	}
	return s.send(walkpad.SetUnit(u))
}

func (s *Supervisor) SetLock(enabled bool) error {
	return s.send(walkpad.SetLock(enabled))
}

// SetDisplayInfo flags 为 walkpad.Display* 位组合
func (s *Supervisor) SetDisplayInfo(flags byte) error {
	if flags&^walkpad.DisplayAll != 0 {
		return fmt.Errorf("%w: display flags 0x%02X", ErrInvalidArgument, flags)
	}
	return s.send(walkpad.SetDisplayInfo(flags))
}

func (s *Supervisor) SetCalibration(enabled bool) error {
	return s.send(walkpad.SetCalibration(enabled))
}

// SyncRecords 请求外设上报最近 n 条运动记录
func (s *Supervisor) SyncRecords(n byte) error {
	if n == 0 {
		n = walkpad.DefaultSyncCount
	}
	return s.send(walkpad.SyncRecord(n))
}
