package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
)

// Transport 模拟的平台适配器
type Transport struct {
	mu          sync.Mutex
	peripherals []*Peripheral
	scanErr     error
	bonded      []ble.Handle
	bondedOn    bool
	watchOn     bool
	watchers    map[string][]func()
	watchStops  int
}

func NewTransport(ps ...*Peripheral) *Transport {
	return &Transport{peripherals: ps, watchers: make(map[string][]func())}
}

func (t *Transport) Add(p *Peripheral) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peripherals = append(t.peripherals, p)
}

func (t *Transport) SetScanError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scanErr = err
}

// EnableBonded 开启已配对设备能力
func (t *Transport) EnableBonded(handles ...ble.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bondedOn = true
	t.bonded = handles
}

// EnableWatch 开启广播监听能力
func (t *Transport) EnableWatch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.watchOn = true
}

func (t *Transport) Support() ble.Support {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ble.Support{Bluetooth: true, BondedDevices: t.bondedOn, WatchAdvertisements: t.watchOn}
}

func (t *Transport) Scan(ctx context.Context, f ble.Filter) (ble.Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.scanErr != nil {
		return ble.Handle{}, t.scanErr
	}
	if err := ctx.Err(); err != nil {
		return ble.Handle{}, ble.ErrUserCancelledSelection
	}
	for _, p := range t.peripherals {
		if f.Match(p.handle.Name) {
			return p.handle, nil
		}
	}
	return ble.Handle{}, ble.ErrNoDeviceFound
}

func (t *Transport) ConnectGATT(ctx context.Context, h ble.Handle) (ble.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := t.find(h.Address)
	if p == nil {
		return nil, fmt.Errorf("connect %s: %w", h.Address, ble.ErrNotInRange)
	}
	l, err := p.connect()
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (t *Transport) BondedDevices(ctx context.Context) ([]ble.Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.bondedOn {
		return nil, ble.ErrNotSupported
	}
	return append([]ble.Handle(nil), t.bonded...), nil
}

func (t *Transport) WatchAdvertisements(ctx context.Context, h ble.Handle, fn func()) (func(), error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.watchOn {
		return nil, ble.ErrNotSupported
	}
	t.watchers[h.Address] = append(t.watchers[h.Address], fn)
	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.watchers, h.Address)
			t.watchStops++
		})
	}, nil
}

// Advertise 模拟外设广播，触发监听回调
func (t *Transport) Advertise(address string) int {
	t.mu.Lock()
	fns := append([]func(){}, t.watchers[address]...)
	t.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

func (t *Transport) Watching(address string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.watchers[address]) > 0
}

func (t *Transport) find(address string) *Peripheral {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.peripherals {
		if p.handle.Address == address {
			return p
		}
	}
	return nil
}
