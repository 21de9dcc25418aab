// Package fake 内存中的 BLE 外设，供会话与重连逻辑测试使用
package fake

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
	"github.com/taoyao-code/walkpad-gateway/internal/protocol/walkpad"
)

// Peripheral 模拟的 WalkingPad
type Peripheral struct {
	handle ble.Handle

	mu              sync.Mutex
	connectErrs     []error
	connects        int
	noService       bool
	dropOnConnect   bool
	writeErr        error
	written         [][]byte
	link            *Link
	subscriber      func([]byte)
	unsubscriptions int
	inRange         bool
}

func NewPeripheral(address, name string) *Peripheral {
	return &Peripheral{handle: ble.Handle{Address: address, Name: name}, inRange: true}
}

func (p *Peripheral) Handle() ble.Handle { return p.handle }

// FailConnects 接下来的连接依次返回这些错误
func (p *Peripheral) FailConnects(errs ...error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connectErrs = append(p.connectErrs, errs...)
}

// SetInRange 不在范围时连接返回 ble.ErrNotInRange
func (p *Peripheral) SetInRange(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inRange = v
}

// WithoutService 不暴露 0xFE00 服务
func (p *Peripheral) WithoutService() *Peripheral {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.noService = true
	return p
}

// DropOnConnect 连接建立后立刻断开
func (p *Peripheral) DropOnConnect(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dropOnConnect = v
}

func (p *Peripheral) SetWriteError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}

func (p *Peripheral) Connects() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connects
}

func (p *Peripheral) Written() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.written))
	copy(out, p.written)
	return out
}

func (p *Peripheral) Subscribed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.subscriber != nil
}

func (p *Peripheral) Unsubscriptions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unsubscriptions
}

// Connected 当前是否存在活动连接
func (p *Peripheral) Connected() bool {
	p.mu.Lock()
	l := p.link
	p.mu.Unlock()
	return l != nil && l.IsConnected()
}

// Notify 模拟外设发出一帧通知
func (p *Peripheral) Notify(b []byte) bool {
	p.mu.Lock()
	fn := p.subscriber
	p.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(b)
	return true
}

// DropLink 模拟链路意外断开
func (p *Peripheral) DropLink() {
	p.mu.Lock()
	l := p.link
	p.mu.Unlock()
	if l != nil {
		l.drop()
	}
}

func (p *Peripheral) connect() (*Link, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connects++
	if len(p.connectErrs) > 0 {
		err := p.connectErrs[0]
		p.connectErrs = p.connectErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if !p.inRange {
		return nil, fmt.Errorf("connect %s: %w", p.handle.Address, ble.ErrNotInRange)
	}
	l := &Link{p: p, connected: !p.dropOnConnect}
	p.link = l
	p.subscriber = nil
	return l, nil
}

// Link 模拟的 GATT 连接
type Link struct {
	p *Peripheral

	mu        sync.Mutex
	connected bool
	callbacks []func()
}

func (l *Link) Handle() ble.Handle { return l.p.handle }

func (l *Link) IsConnected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

func (l *Link) Service(ctx context.Context, uuid uint16) (ble.Service, error) {
	if !l.IsConnected() {
		return nil, errors.New("GATT Server is disconnected")
	}
	l.p.mu.Lock()
	missing := l.p.noService
	l.p.mu.Unlock()
	if missing || uuid != walkpad.ServiceUUID {
		return nil, fmt.Errorf("primary service 0x%04x: %w", uuid, ble.ErrNotFound)
	}
	return &Service{link: l, uuid: uuid}, nil
}

func (l *Link) OnDisconnected(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.callbacks = append(l.callbacks, fn)
}

func (l *Link) Disconnect() error {
	l.drop()
	return nil
}

// drop 断开并异步通知回调，与真实平台一致
func (l *Link) drop() {
	l.mu.Lock()
	if !l.connected {
		l.mu.Unlock()
		return
	}
	l.connected = false
	callbacks := append([]func(){}, l.callbacks...)
	l.mu.Unlock()

	l.p.mu.Lock()
	if l.p.link == l {
		l.p.subscriber = nil
	}
	l.p.mu.Unlock()

	for _, fn := range callbacks {
		go fn()
	}
}

type Service struct {
	link *Link
	uuid uint16
}

func (s *Service) UUID() uint16 { return s.uuid }

func (s *Service) Characteristic(ctx context.Context, uuid uint16) (ble.Characteristic, error) {
	if !s.link.IsConnected() {
		return nil, errors.New("GATT Server is disconnected")
	}
	if uuid != walkpad.NotifyCharUUID && uuid != walkpad.WriteCharUUID {
		return nil, fmt.Errorf("characteristic 0x%04x: %w", uuid, ble.ErrNotFound)
	}
	return &Characteristic{link: s.link, uuid: uuid}, nil
}

type Characteristic struct {
	link *Link
	uuid uint16
}

func (c *Characteristic) UUID() uint16 { return c.uuid }

func (c *Characteristic) Subscribe(fn func([]byte)) error {
	if !c.link.IsConnected() {
		return errors.New("GATT Server is disconnected")
	}
	p := c.link.p
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscriber = fn
	return nil
}

func (c *Characteristic) Unsubscribe() error {
	p := c.link.p
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unsubscriptions++
	if p.link == c.link {
		p.subscriber = nil
	}
	return nil
}

func (c *Characteristic) WriteWithoutResponse(b []byte) error {
	if !c.link.IsConnected() {
		return errors.New("GATT Server is disconnected")
	}
	p := c.link.p
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return p.writeErr
	}
	p.written = append(p.written, append([]byte(nil), b...))
	return nil
}
