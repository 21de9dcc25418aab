package state

import (
	"fmt"

	"github.com/taoyao-code/walkpad-gateway/internal/protocol/walkpad"
)

// SessionState 会话状态，只由重连监督者写入
type SessionState int

const (
	Disconnected SessionState = iota
	Connecting
	Connected
	Reconnecting
)

func (s SessionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SessionState) UnmarshalText(b []byte) error {
	for _, v := range []SessionState{Disconnected, Connecting, Connected, Reconnecting} {
		if string(b) == v.String() {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", b)
}

// Status 设备实时状态，只由状态上报写入
type Status struct {
	State     walkpad.BeltState `json:"state"`
	StateName string            `json:"state_name"`
	Speed     int               `json:"speed"`
	Mode      walkpad.Mode      `json:"mode"`
	ModeName  string            `json:"mode_name"`
	Time      int               `json:"time"`
	Distance  int               `json:"distance"`
	Steps     int               `json:"steps"`
	IsRunning bool              `json:"is_running"`
}

// DefaultStatus 断开后的状态：全零、休眠模式
func DefaultStatus() Status {
	return Status{
		State:     walkpad.StateStandby,
		StateName: walkpad.StateStandby.String(),
		Mode:      walkpad.ModeSleep,
		ModeName:  walkpad.ModeSleep.String(),
	}
}

func statusFromInfo(i *walkpad.Info) Status {
	return Status{
		State:     i.State,
		StateName: i.State.String(),
		Speed:     i.Speed,
		Mode:      i.Mode,
		ModeName:  i.Mode.String(),
		Time:      i.Time,
		Distance:  i.Distance,
		Steps:     i.Steps,
		IsRunning: i.IsRunning(),
	}
}

// Params 设备参数，只由参数上报写入
type Params struct {
	GoalType    byte                `json:"goal_type"`
	Goal        int                 `json:"goal"`
	Regulate    byte                `json:"regulate"`
	MaxSpeed    int                 `json:"max_speed"`
	StartSpeed  int                 `json:"start_speed"`
	StartMode   byte                `json:"start_mode"`
	Sensitivity walkpad.Sensitivity `json:"sensitivity"`
	Display     byte                `json:"display"`
	Lock        byte                `json:"lock"`
	Unit        walkpad.Unit        `json:"unit"`
}

// DefaultParams 首次收到参数上报前的默认值
func DefaultParams() Params {
	return Params{
		MaxSpeed:    60,
		StartSpeed:  20,
		Sensitivity: walkpad.SensitivityMedium,
		Unit:        walkpad.UnitMetric,
	}
}

func paramsFrom(p *walkpad.Params) Params {
	return Params{
		GoalType:    p.GoalType,
		Goal:        p.Goal,
		Regulate:    p.Regulate,
		MaxSpeed:    p.MaxSpeed,
		StartSpeed:  p.StartSpeed,
		StartMode:   p.StartMode,
		Sensitivity: p.Sensitivity,
		Display:     p.Display,
		Lock:        p.Lock,
		Unit:        p.Unit,
	}
}
