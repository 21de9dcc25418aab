package walkpad

// 字节型命令（0xA2）
const (
	cmdQuery    byte = 0
	cmdSetSpeed byte = 1
	cmdSetMode  byte = 2
	cmdStart    byte = 4
)

// 整型参数命令（0xA6）
const (
	paramQuery       byte = 0
	paramCalibration byte = 2
	paramMaxSpeed    byte = 3
	paramStartSpeed  byte = 4
	paramAutoStart   byte = 5
	paramSensitivity byte = 6
	paramDisplay     byte = 7
	paramUnit        byte = 8
	paramLock        byte = 9
)

// DefaultSyncCount 记录同步默认请求条数（255 表示全部）
const DefaultSyncCount byte = 255

// Query 查询实时状态
func Query() Frame { return EncodeByteCommand(cmdQuery, 0) }

// QueryParams 查询设备参数
func QueryParams() Frame { return EncodeIntCommand(paramQuery, 0) }

// SetSpeed 设置速度（0.1 km/h）
func SetSpeed(speed byte) Frame { return EncodeByteCommand(cmdSetSpeed, speed) }

// SetMode 切换模式
func SetMode(m Mode) Frame { return EncodeByteCommand(cmdSetMode, byte(m)) }

// Start 启动跑带
func Start() Frame { return EncodeByteCommand(cmdStart, 1) }

func SetStartSpeed(speed int) Frame { return EncodeIntCommand(paramStartSpeed, int32(speed)) }

func SetMaxSpeed(speed int) Frame { return EncodeIntCommand(paramMaxSpeed, int32(speed)) }

func SetAutoStart(enabled bool) Frame { return EncodeIntCommand(paramAutoStart, boolInt(enabled)) }

func SetSensitivity(s Sensitivity) Frame { return EncodeIntCommand(paramSensitivity, int32(s)) }

func SetUnit(u Unit) Frame { return EncodeIntCommand(paramUnit, int32(u)) }

func SetLock(enabled bool) Frame { return EncodeIntCommand(paramLock, boolInt(enabled)) }

// SetDisplayInfo 面板显示项，取值为 Display* 位组合
func SetDisplayInfo(flags byte) Frame { return EncodeIntCommand(paramDisplay, int32(flags)) }

// SetCalibration 进入/退出校准
func SetCalibration(enabled bool) Frame { return EncodeIntCommand(paramCalibration, boolInt(enabled)) }

// SyncRecord 请求同步最近 n 条记录
func SyncRecord(n byte) Frame { return EncodeSyncRecord(n) }

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
