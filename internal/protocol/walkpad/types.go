package walkpad

import "strings"

// BeltState 跑带状态
type BeltState byte

const (
	StateStandby  BeltState = 0
	StateRunning  BeltState = 1
	StatePaused   BeltState = 2
	StateStarting BeltState = 5 // 启动倒计时，按运行中处理
)

// Running 运行中（含启动中）
func (s BeltState) Running() bool {
	return s == StateRunning || s == StateStarting
}

func (s BeltState) String() string {
	switch s {
	case StateStandby:
		return "Standby"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateStarting:
		return "Starting"
	default:
		return "Unknown"
	}
}

// Mode 控制模式
type Mode byte

const (
	ModeAuto   Mode = 0
	ModeManual Mode = 1
	ModeSleep  Mode = 2
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "Auto"
	case ModeManual:
		return "Manual"
	case ModeSleep:
		return "Sleep"
	default:
		return "Unknown"
	}
}

// Valid 是否为已知模式
func (m Mode) Valid() bool {
	return m <= ModeSleep
}

// ParseMode 按名称解析模式（不区分大小写）
func ParseMode(s string) (Mode, bool) {
	for _, m := range []Mode{ModeAuto, ModeManual, ModeSleep} {
		if strings.EqualFold(s, m.String()) {
			return m, true
		}
	}
	return 0, false
}

// Sensitivity 自动模式感应灵敏度
type Sensitivity byte

const (
	SensitivityHigh   Sensitivity = 1
	SensitivityMedium Sensitivity = 2
	SensitivityLow    Sensitivity = 3
)

func (s Sensitivity) String() string {
	switch s {
	case SensitivityHigh:
		return "High"
	case SensitivityMedium:
		return "Medium"
	case SensitivityLow:
		return "Low"
	default:
		return "Unknown"
	}
}

// Valid 是否为已知灵敏度
func (s Sensitivity) Valid() bool {
	return s >= SensitivityHigh && s <= SensitivityLow
}

// ParseSensitivity 按名称解析灵敏度（不区分大小写）
func ParseSensitivity(s string) (Sensitivity, bool) {
	for _, v := range []Sensitivity{SensitivityHigh, SensitivityMedium, SensitivityLow} {
		if strings.EqualFold(s, v.String()) {
			return v, true
		}
	}
	return 0, false
}

// Unit 显示单位
type Unit byte

const (
	UnitMetric   Unit = 0
	UnitImperial Unit = 1
)

func (u Unit) String() string {
	switch u {
	case UnitMetric:
		return "Metric"
	case UnitImperial:
		return "Imperial"
	default:
		return "Unknown"
	}
}

// Valid 是否为已知单位
func (u Unit) Valid() bool {
	return u <= UnitImperial
}

// ParseUnit 按名称解析单位（不区分大小写）
func ParseUnit(s string) (Unit, bool) {
	for _, u := range []Unit{UnitMetric, UnitImperial} {
		if strings.EqualFold(s, u.String()) {
			return u, true
		}
	}
	return 0, false
}

// 面板显示项位标志，可按位或组合
const (
	DisplayTime     byte = 1
	DisplaySpeed    byte = 2
	DisplayDistance byte = 4
	DisplayCalorie  byte = 8
	DisplayStep     byte = 16

	DisplayAll = DisplayTime | DisplaySpeed | DisplayDistance | DisplayCalorie | DisplayStep
)
