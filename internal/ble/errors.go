package ble

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrUnsupportedTransport 平台没有可用的 BLE 适配器
	ErrUnsupportedTransport = errors.New("bluetooth not supported on this host")
	// ErrUserCancelledSelection 扫描被调用方取消
	ErrUserCancelledSelection = errors.New("device selection cancelled")
	// ErrNoDeviceFound 扫描超时未发现匹配设备
	ErrNoDeviceFound = errors.New("no matching device found")
	// ErrServiceNotFound 外设不暴露所需服务或特征值（不是目标设备）
	ErrServiceNotFound = errors.New("service not found: not a WalkingPad")
	// ErrLinkUnstable 连接建立后立即断开，或解析过程中断链
	ErrLinkUnstable = errors.New("link unstable")
	// ErrNotFound 平台查找服务/特征值无结果
	ErrNotFound = errors.New("not found")
	// ErrNotInRange 外设不在范围内
	ErrNotInRange = errors.New("device not in range")
	// ErrNotSupported 平台不支持该可选能力
	ErrNotSupported = errors.New("operation not supported")
)

// transientMarkers 平台错误文本中代表链路抖动的片段
var transientMarkers = []string{"disconnected", "gatt", "connection lost"}

// IsTransient 链路层的暂时性错误，值得重试
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrLinkUnstable) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// IsOutOfRange 外设不可达（不在范围或已断开），持续重连据此等待
func IsOutOfRange(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotInRange) || errors.Is(err, ErrLinkUnstable) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "in range") || strings.Contains(msg, "disconnected")
}
