package app

import (
	"go.uber.org/zap"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
	"github.com/taoyao-code/walkpad-gateway/internal/ble/bluez"
	"github.com/taoyao-code/walkpad-gateway/internal/ble/tinyble"
	cfgpkg "github.com/taoyao-code/walkpad-gateway/internal/config"
)

// NewTransport 打开蓝牙适配器
// 未启用或宿主没有可用适配器时返回 nil，网关仍以只读方式运行
func NewTransport(cfg cfgpkg.BLEConfig, logger *zap.Logger) (ble.Transport, func()) {
	noop := func() {}
	if !cfg.Enable {
		logger.Info("bluetooth is disabled")
		return nil, noop
	}

	var bz *bluez.Client
	if cfg.UseBlueZ {
		c, err := bluez.Dial(cfg.AdapterID, logger)
		if err != nil {
			logger.Warn("bluez d-bus unavailable, bonded devices and advertisement watch disabled", zap.Error(err))
		} else {
			bz = c
		}
	}
	closeBZ := func() {
		if bz != nil {
			_ = bz.Close()
		}
	}

	t := tinyble.New(cfg.AdapterID, bz, logger)
	if err := t.Enable(); err != nil {
		logger.Warn("bluetooth adapter unavailable", zap.Error(err))
		closeBZ()
		return nil, noop
	}
	logger.Info("bluetooth transport ready",
		zap.String("adapter", cfg.AdapterID),
		zap.Any("support", ble.Capabilities(t)))
	return t, closeBZ
}
