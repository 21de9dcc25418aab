package walkpad

import (
	"errors"
	"testing"
)

func TestCalculateChecksum(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected byte
	}{
		{name: "空数据", data: []byte{}, expected: 0x00},
		{name: "单字节", data: []byte{0xA2}, expected: 0xA2},
		{name: "溢出截断", data: []byte{0xA7, 0xAA, 0xFF}, expected: 0x50}, // 0x250 -> 0x50
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateChecksum(tt.data); got != tt.expected {
				t.Errorf("CalculateChecksum() = 0x%02X, expected 0x%02X", got, tt.expected)
			}
		})
	}
}

func TestVerifyFrame(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "合法帧", data: []byte{0xF7, 0xA2, 0x02, 0x01, 0xA5, 0xFD}},
		{name: "回包首字节不同", data: []byte{0xF8, 0xA2, 0x02, 0x01, 0xA5, 0xFD}},
		{name: "校验和错误", data: []byte{0xF7, 0xA2, 0x02, 0x01, 0xA6, 0xFD}, wantErr: ErrChecksumMismatch},
		{name: "帧尾错误", data: []byte{0xF7, 0xA2, 0x02, 0x01, 0xA5, 0xFE}, wantErr: ErrBadTrailer},
		{name: "过短", data: []byte{0xF7, 0xA2, 0xFD}, wantErr: ErrShortFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyFrame(tt.data)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("VerifyFrame() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("VerifyFrame() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
