package walkpad

// EncodeByteCommand 构造字节型命令 [F7 A2 kind value cs FD]
func EncodeByteCommand(kind, value byte) Frame {
	return seal(Frame{Header, KindByte, kind, value, 0, 0})
}

// EncodeIntCommand 构造整型命令 [F7 A6 kind 00 b2 b1 b0 cs FD]
// value 取低 24 位，大端写入
func EncodeIntCommand(kind byte, value int32) Frame {
	v := uint32(value) & 0xFFFFFF
	return seal(Frame{Header, KindInt, kind, 0x00, byte(v >> 16), byte(v >> 8), byte(v), 0, 0})
}

// EncodeSyncRecord 构造记录同步请求 [F7 A7 AA n cs FD]
func EncodeSyncRecord(n byte) Frame {
	return seal(Frame{Header, KindRecord, recordSyncMarker, n, 0, 0})
}
