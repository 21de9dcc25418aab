package walkpad

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedFrame 帧无法解码（长度不足、类型未知或校验失败）
	ErrMalformedFrame = errors.New("malformed frame")
	// ErrShortFrame 长度不足以容纳该类型的字段
	ErrShortFrame = errors.New("short frame")
	// ErrUnknownKind 未知消息类型
	ErrUnknownKind = errors.New("unknown message kind")
)

// Decode 解码一帧通知
// 任何异常输入都返回 *Unknown，不会 panic，也不会返回部分解析的结果
func Decode(b []byte) Event {
	if len(b) < 2 {
		return unknown(b, ErrShortFrame)
	}

	kind := b[1]
	minLen, ok := minLength(kind)
	if !ok {
		return unknown(b, fmt.Errorf("%w 0x%02X", ErrUnknownKind, kind))
	}
	if len(b) < minLen {
		return unknown(b, fmt.Errorf("%w: kind 0x%02X needs %d bytes, got %d", ErrShortFrame, kind, minLen, len(b)))
	}
	if err := VerifyFrame(b); err != nil {
		return unknown(b, err)
	}

	switch kind {
	case KindByte:
		return &Info{
			State:    BeltState(b[2]),
			Speed:    int(b[3]),
			Mode:     Mode(b[4]),
			Time:     uint24(b, 5),
			Distance: uint24(b, 8),
			Steps:    uint24(b, 11),
		}
	case KindInt:
		return &Params{
			GoalType:    b[2],
			Goal:        uint24(b, 3),
			Regulate:    b[6],
			MaxSpeed:    int(b[7]),
			StartSpeed:  int(b[8]),
			StartMode:   b[9],
			Sensitivity: Sensitivity(b[10]),
			Display:     b[11],
			Lock:        b[12],
			Unit:        Unit(b[13]),
		}
	default:
		return &Record{
			OnTime:    uint24(b, 2),
			StartTime: uint24(b, 5),
			Duration:  uint24(b, 8),
			Distance:  uint24(b, 11),
			Steps:     uint24(b, 14),
			Remaining: int(b[17]),
		}
	}
}

func minLength(kind byte) (int, bool) {
	switch kind {
	case KindByte:
		return MinInfoLen, true
	case KindInt:
		return MinParamsLen, true
	case KindRecord:
		return MinRecordLen, true
	default:
		return 0, false
	}
}

func uint24(b []byte, off int) int {
	return int(b[off])<<16 | int(b[off+1])<<8 | int(b[off+2])
}

func unknown(b []byte, cause error) *Unknown {
	raw := make([]byte, len(b))
	copy(raw, b)
	return &Unknown{Raw: raw, Err: fmt.Errorf("%w: %w", ErrMalformedFrame, cause)}
}
