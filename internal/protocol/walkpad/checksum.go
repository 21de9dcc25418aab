package walkpad

import (
	"errors"
	"fmt"
)

var (
	// ErrChecksumMismatch 校验和不一致
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrBadTrailer 帧尾不是 0xFD
	ErrBadTrailer = errors.New("bad frame trailer")
)

// CalculateChecksum 字节累加和，溢出只保留低 8 位
func CalculateChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// VerifyFrame 校验帧尾和校验和
// 校验和位于倒数第二个字节，覆盖 [1, len-2) 区间（消息类型到载荷末尾）
func VerifyFrame(b []byte) error {
	if len(b) < 4 {
		return fmt.Errorf("%w: %d bytes", ErrShortFrame, len(b))
	}
	if b[len(b)-1] != Trailer {
		return fmt.Errorf("%w: 0x%02X", ErrBadTrailer, b[len(b)-1])
	}
	want := CalculateChecksum(b[1 : len(b)-2])
	if got := b[len(b)-2]; got != want {
		return fmt.Errorf("%w: got 0x%02X, want 0x%02X", ErrChecksumMismatch, got, want)
	}
	return nil
}

// seal 回填校验和，frame 必须已预留校验和与帧尾位置
func seal(f Frame) Frame {
	f[len(f)-2] = CalculateChecksum(f[1 : len(f)-2])
	f[len(f)-1] = Trailer
	return f
}
