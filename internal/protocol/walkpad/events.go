package walkpad

// EventKind 解码结果类型
type EventKind int

const (
	EventUnknown EventKind = iota
	EventInfo
	EventParams
	EventRecord
)

func (k EventKind) String() string {
	switch k {
	case EventInfo:
		return "info"
	case EventParams:
		return "params"
	case EventRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Event 一帧通知解码后的事件
type Event interface {
	Kind() EventKind
}

// Info 实时状态上报（0xA2）
type Info struct {
	State    BeltState
	Speed    int // 0.1 km/h
	Mode     Mode
	Time     int // 秒
	Distance int // 10 米
	Steps    int
}

func (*Info) Kind() EventKind { return EventInfo }

// IsRunning 跑带是否在转
func (i *Info) IsRunning() bool { return i.State.Running() }

// Params 设备参数上报（0xA6）
type Params struct {
	GoalType    byte
	Goal        int
	Regulate    byte
	MaxSpeed    int
	StartSpeed  int
	StartMode   byte
	Sensitivity Sensitivity
	Display     byte
	Lock        byte
	Unit        Unit
}

func (*Params) Kind() EventKind { return EventParams }

// Record 历史运动记录（0xA7）
type Record struct {
	OnTime    int `json:"on_time"`
	StartTime int `json:"start_time"`
	Duration  int `json:"duration"`
	Distance  int `json:"distance"`
	Steps     int `json:"steps"`
	Remaining int `json:"remaining"`
}

func (*Record) Kind() EventKind { return EventRecord }

// Unknown 无法识别或校验失败的帧，保留原始字节
type Unknown struct {
	Raw []byte
	Err error
}

func (*Unknown) Kind() EventKind { return EventUnknown }
