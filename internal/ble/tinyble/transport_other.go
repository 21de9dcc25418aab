//go:build !linux

package tinyble

import (
	"context"

	"go.uber.org/zap"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
	"github.com/taoyao-code/walkpad-gateway/internal/ble/bluez"
)

// Transport 非 Linux 平台上没有可用的适配器
type Transport struct{}

func New(string, *bluez.Client, *zap.Logger) *Transport { return &Transport{} }

func (t *Transport) Enable() error { return ble.ErrUnsupportedTransport }

func (t *Transport) Support() ble.Support { return ble.Support{} }

func (t *Transport) Scan(context.Context, ble.Filter) (ble.Handle, error) {
	return ble.Handle{}, ble.ErrUnsupportedTransport
}

func (t *Transport) ConnectGATT(context.Context, ble.Handle) (ble.Link, error) {
	return nil, ble.ErrUnsupportedTransport
}
