package walkpad

import "encoding/hex"

// GATT 标识（16 位短 UUID）
const (
	ServiceUUID    uint16 = 0xFE00
	NotifyCharUUID uint16 = 0xFE01
	WriteCharUUID  uint16 = 0xFE02
)

// 帧定界与消息类型
const (
	Header  byte = 0xF7
	Trailer byte = 0xFD

	KindByte   byte = 0xA2 // 字节型命令 / 状态上报
	KindInt    byte = 0xA6 // 整型参数命令 / 参数上报
	KindRecord byte = 0xA7 // 运动记录同步 / 记录上报

	recordSyncMarker byte = 0xAA
)

// 上报帧的最小长度
const (
	MinInfoLen   = 15
	MinParamsLen = 14
	MinRecordLen = 18
)

// Frame 一条完整的线路帧：header + kind + payload + checksum + trailer
// 外设回包的首字节不固定（常见 0xF8），解码时只校验帧尾与校验和
type Frame []byte

// Kind 消息类型字节
func (f Frame) Kind() byte {
	if len(f) < 2 {
		return 0
	}
	return f[1]
}

// Command 命令字节（消息类型后的第一个字节）
func (f Frame) Command() byte {
	if len(f) < 3 {
		return 0
	}
	return f[2]
}

// Hex 十六进制表示，用于日志
func (f Frame) Hex() string {
	return hex.EncodeToString(f)
}
