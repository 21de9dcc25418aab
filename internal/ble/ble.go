// Package ble 定义网关消费的 BLE GATT 能力
// 具体平台实现见 ble/tinygo（tinygo.org/x/bluetooth）与 ble/bluez（BlueZ D-Bus）
package ble

import (
	"context"
	"fmt"
)

// Handle 外设句柄
type Handle struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

func (h Handle) String() string {
	if h.Name == "" {
		return h.Address
	}
	return fmt.Sprintf("%s (%s)", h.Name, h.Address)
}

// Transport 平台 BLE 入口
type Transport interface {
	// Scan 扫描并返回第一个匹配的外设；ctx 取消视为用户放弃选择
	Scan(ctx context.Context, f Filter) (Handle, error)
	// ConnectGATT 建立 GATT 连接
	ConnectGATT(ctx context.Context, h Handle) (Link, error)
}

// Link 一条已建立的 GATT 连接
type Link interface {
	Handle() Handle
	IsConnected() bool
	Service(ctx context.Context, uuid uint16) (Service, error)
	// OnDisconnected 注册断链回调，回调可能在平台线程上执行
	OnDisconnected(fn func())
	Disconnect() error
}

type Service interface {
	UUID() uint16
	Characteristic(ctx context.Context, uuid uint16) (Characteristic, error)
}

type Characteristic interface {
	UUID() uint16
	// Subscribe 开启通知；回调参数可能被平台复用，需要自行拷贝
	Subscribe(fn func(value []byte)) error
	Unsubscribe() error
	WriteWithoutResponse(b []byte) error
}

// BondedLister 可选能力：列出已配对设备
type BondedLister interface {
	BondedDevices(ctx context.Context) ([]Handle, error)
}

// AdvertisementWatcher 可选能力：外设广播（进入范围）时回调
type AdvertisementWatcher interface {
	WatchAdvertisements(ctx context.Context, h Handle, fn func()) (stop func(), err error)
}

// Support 平台能力报告
type Support struct {
	Bluetooth           bool `json:"bluetooth"`
	BondedDevices       bool `json:"bonded_devices"`
	WatchAdvertisements bool `json:"watch_advertisements"`
}

// Capabilities 检测 transport 实现了哪些可选能力
func Capabilities(t Transport) Support {
	if t == nil {
		return Support{}
	}
	_, bonded := t.(BondedLister)
	_, watch := t.(AdvertisementWatcher)
	s := Support{Bluetooth: true, BondedDevices: bonded, WatchAdvertisements: watch}
	if r, ok := t.(interface{ Support() Support }); ok {
		s = r.Support()
	}
	return s
}
