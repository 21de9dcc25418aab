//go:build linux

package tinyble

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
	"github.com/taoyao-code/walkpad-gateway/internal/ble/bluez"
	"github.com/taoyao-code/walkpad-gateway/internal/protocol/walkpad"
)

// Transport BlueZ 上的 tinygo 适配器封装
type Transport struct {
	adapter *bluetooth.Adapter
	bz      *bluez.Client
	logger  *zap.Logger

	mu      sync.Mutex
	enabled bool
	links   map[string]*link
	scanMu  sync.Mutex
}

// New adapterID 为空时使用默认适配器；bz 可为 nil，此时不支持已配对设备与广播监听
func New(adapterID string, bz *bluez.Client, logger *zap.Logger) *Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	adapter := bluetooth.DefaultAdapter
	if adapterID != "" {
		adapter = bluetooth.NewAdapter(adapterID)
	}
	return &Transport{
		adapter: adapter,
		bz:      bz,
		logger:  logger.Named("ble"),
		links:   make(map[string]*link),
	}
}

// Enable 打开适配器，必须在 Scan/ConnectGATT 之前调用
func (t *Transport) Enable() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.enabled {
		return nil
	}
	t.adapter.SetConnectHandler(t.onConnectEvent)
	if err := t.adapter.Enable(); err != nil {
		return fmt.Errorf("%w: %v", ble.ErrUnsupportedTransport, err)
	}
	t.enabled = true
	t.logger.Info("bluetooth adapter enabled")
	return nil
}

func (t *Transport) Support() ble.Support {
	t.mu.Lock()
	enabled := t.enabled
	t.mu.Unlock()
	return ble.Support{
		Bluetooth:           enabled,
		BondedDevices:       enabled && t.bz != nil,
		WatchAdvertisements: enabled && t.bz != nil,
	}
}

func (t *Transport) onConnectEvent(device bluetooth.Device, connected bool) {
	addr := strings.ToUpper(device.Address.String())
	t.logger.Debug("connection event", zap.String("device", addr), zap.Bool("connected", connected))
	if connected {
		return
	}
	t.mu.Lock()
	l := t.links[addr]
	delete(t.links, addr)
	t.mu.Unlock()
	if l != nil {
		l.dropped()
	}
}

func (t *Transport) Scan(ctx context.Context, f ble.Filter) (ble.Handle, error) {
	if !t.Support().Bluetooth {
		return ble.Handle{}, ble.ErrUnsupportedTransport
	}
	// 适配器同一时间只允许一个扫描
	t.scanMu.Lock()
	defer t.scanMu.Unlock()

	svcUUID := bluetooth.New16BitUUID(walkpad.ServiceUUID)
	found := make(chan ble.Handle, 1)
	done := make(chan error, 1)

	go func() {
		done <- t.adapter.Scan(func(a *bluetooth.Adapter, r bluetooth.ScanResult) {
			name := r.LocalName()
			if !matchAdvertisement(f, name, r.HasServiceUUID(svcUUID)) {
				return
			}
			select {
			case found <- ble.Handle{Address: strings.ToUpper(r.Address.String()), Name: name}:
				_ = a.StopScan()
			default:
			}
		})
	}()

	select {
	case h := <-found:
		<-done
		t.logger.Info("device found", zap.String("device", h.String()))
		return h, nil
	case err := <-done:
		if err != nil {
			return ble.Handle{}, fmt.Errorf("scan: %w", err)
		}
		select {
		case h := <-found:
			return h, nil
		default:
			return ble.Handle{}, ble.ErrNoDeviceFound
		}
	case <-ctx.Done():
		_ = t.adapter.StopScan()
		<-done
		select {
		case h := <-found:
			return h, nil
		default:
		}
		return ble.Handle{}, mapScanError(ctx.Err())
	}
}

func (t *Transport) ConnectGATT(ctx context.Context, h ble.Handle) (ble.Link, error) {
	if !t.Support().Bluetooth {
		return nil, ble.ErrUnsupportedTransport
	}
	mac, err := bluetooth.ParseMAC(h.Address)
	if err != nil {
		return nil, fmt.Errorf("parse address %q: %w", h.Address, err)
	}
	addr := bluetooth.Address{MACAddress: bluetooth.MACAddress{MAC: mac}}

	type result struct {
		dev bluetooth.Device
		err error
	}
	ch := make(chan result, 1)
	go func() {
		dev, err := t.adapter.Connect(addr, bluetooth.ConnectionParams{})
		ch <- result{dev, err}
	}()

	var res result
	select {
	case res = <-ch:
	case <-ctx.Done():
		// 连接完成后立即释放
		go func() {
			if r := <-ch; r.err == nil {
				_ = r.dev.Disconnect()
			}
		}()
		return nil, ctx.Err()
	}
	if res.err != nil {
		return nil, mapConnectError(res.err)
	}

	l := &link{handle: h, device: res.dev, connected: true}
	t.mu.Lock()
	t.links[strings.ToUpper(h.Address)] = l
	t.mu.Unlock()
	t.logger.Info("gatt connected", zap.String("device", h.String()))
	return l, nil
}

func (t *Transport) BondedDevices(ctx context.Context) ([]ble.Handle, error) {
	if t.bz == nil {
		return nil, ble.ErrNotSupported
	}
	return t.bz.BondedDevices(ctx)
}

func (t *Transport) WatchAdvertisements(ctx context.Context, h ble.Handle, fn func()) (func(), error) {
	if t.bz == nil {
		return nil, ble.ErrNotSupported
	}
	return t.bz.WatchAdvertisements(ctx, h, fn)
}

type link struct {
	handle ble.Handle
	device bluetooth.Device

	mu        sync.Mutex
	connected bool
	onDrop    []func()
}

func (l *link) Handle() ble.Handle { return l.handle }

func (l *link) IsConnected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

func (l *link) OnDisconnected(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onDrop = append(l.onDrop, fn)
}

func (l *link) dropped() {
	l.mu.Lock()
	if !l.connected {
		l.mu.Unlock()
		return
	}
	l.connected = false
	fns := append([]func(){}, l.onDrop...)
	l.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (l *link) Service(ctx context.Context, uuid uint16) (ble.Service, error) {
	if !l.IsConnected() {
		return nil, fmt.Errorf("%w: device disconnected", ble.ErrLinkUnstable)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	svcs, err := l.device.DiscoverServices([]bluetooth.UUID{bluetooth.New16BitUUID(uuid)})
	if err != nil {
		return nil, mapDiscoverError(err)
	}
	if len(svcs) == 0 {
		return nil, ble.ErrNotFound
	}
	return &service{uuid: uuid, svc: svcs[0]}, nil
}

func (l *link) Disconnect() error {
	l.mu.Lock()
	wasConnected := l.connected
	l.mu.Unlock()
	if !wasConnected {
		return nil
	}
	return l.device.Disconnect()
}

type service struct {
	uuid uint16
	svc  bluetooth.DeviceService
}

func (s *service) UUID() uint16 { return s.uuid }

func (s *service) Characteristic(ctx context.Context, uuid uint16) (ble.Characteristic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	chars, err := s.svc.DiscoverCharacteristics([]bluetooth.UUID{bluetooth.New16BitUUID(uuid)})
	if err != nil {
		return nil, mapDiscoverError(err)
	}
	if len(chars) == 0 {
		return nil, ble.ErrNotFound
	}
	return &characteristic{uuid: uuid, char: chars[0]}, nil
}

type characteristic struct {
	uuid uint16
	char bluetooth.DeviceCharacteristic
}

func (c *characteristic) UUID() uint16 { return c.uuid }

func (c *characteristic) Subscribe(fn func([]byte)) error {
	return c.char.EnableNotifications(fn)
}

func (c *characteristic) Unsubscribe() error {
	return c.char.EnableNotifications(nil)
}

func (c *characteristic) WriteWithoutResponse(b []byte) error {
	_, err := c.char.WriteWithoutResponse(b)
	return err
}
