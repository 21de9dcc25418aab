// Package tinyble 基于 tinygo.org/x/bluetooth 的 BLE 传输实现
package tinyble

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
)

// mapConnectError 平台连接错误归类为 ble 错误
func mapConnectError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not found"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "timed out"),
		strings.Contains(msg, "abort"),
		strings.Contains(msg, "host is down"):
		return fmt.Errorf("%w: %v", ble.ErrNotInRange, err)
	}
	return err
}

// mapScanError 扫描结束原因：超时视为未找到，取消视为放弃选择
func mapScanError(ctxErr error) error {
	switch {
	case errors.Is(ctxErr, context.DeadlineExceeded):
		return ble.ErrNoDeviceFound
	case errors.Is(ctxErr, context.Canceled):
		return ble.ErrUserCancelledSelection
	}
	return ctxErr
}

// mapDiscoverError 服务/特征值发现失败
func mapDiscoverError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "could not find") || strings.Contains(msg, "not found") {
		return fmt.Errorf("%w: %v", ble.ErrNotFound, err)
	}
	return err
}

// matchAdvertisement 名称前缀或服务 UUID 命中
func matchAdvertisement(f ble.Filter, name string, hasService bool) bool {
	return f.Match(name) || hasService
}
