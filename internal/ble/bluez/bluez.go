// Package bluez 通过 BlueZ D-Bus 接口提供已配对设备查询与广播监听
package bluez

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
)

const (
	busName          = "org.bluez"
	adapterInterface = "org.bluez.Adapter1"
	deviceInterface  = "org.bluez.Device1"
	propsInterface   = "org.freedesktop.DBus.Properties"
	objectManager    = "org.freedesktop.DBus.ObjectManager"
)

type managedObjects = map[dbus.ObjectPath]map[string]map[string]dbus.Variant

// Client BlueZ D-Bus 客户端
type Client struct {
	conn        *dbus.Conn
	adapterPath dbus.ObjectPath
	logger      *zap.Logger

	mu          sync.Mutex
	discoveries int // 正在进行的广播监听数，归零时停止扫描
}

// Dial 连接系统总线
func Dial(adapterID string, logger *zap.Logger) (*Client, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system D-Bus: %w", err)
	}
	return New(conn, adapterID, logger), nil
}

func New(conn *dbus.Conn, adapterID string, logger *zap.Logger) *Client {
	if adapterID == "" {
		adapterID = "hci0"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		conn:        conn,
		adapterPath: dbus.ObjectPath("/org/bluez/" + adapterID),
		logger:      logger.Named("bluez"),
	}
}

// Available 适配器对象存在
func (c *Client) Available(ctx context.Context) bool {
	objects, err := c.managedObjects(ctx)
	if err != nil {
		return false
	}
	_, ok := objects[c.adapterPath][adapterInterface]
	return ok
}

func (c *Client) managedObjects(ctx context.Context) (managedObjects, error) {
	objects := make(managedObjects)
	obj := c.conn.Object(busName, "/")
	if err := obj.CallWithContext(ctx, objectManager+".GetManagedObjects", 0).Store(&objects); err != nil {
		return nil, fmt.Errorf("get managed objects: %w", err)
	}
	return objects, nil
}

// BondedDevices 当前适配器上已配对的设备，按名称排序
func (c *Client) BondedDevices(ctx context.Context) ([]ble.Handle, error) {
	objects, err := c.managedObjects(ctx)
	if err != nil {
		return nil, err
	}
	return pairedDevices(objects, c.adapterPath), nil
}

func pairedDevices(objects managedObjects, adapter dbus.ObjectPath) []ble.Handle {
	var out []ble.Handle
	for _, ifaces := range objects {
		props, ok := ifaces[deviceInterface]
		if !ok {
			continue
		}
		if a, ok := props["Adapter"].Value().(dbus.ObjectPath); !ok || a != adapter {
			continue
		}
		if paired, _ := props["Paired"].Value().(bool); !paired {
			continue
		}
		addr, _ := props["Address"].Value().(string)
		if addr == "" {
			continue
		}
		name, _ := props["Name"].Value().(string)
		if name == "" {
			name, _ = props["Alias"].Value().(string)
		}
		out = append(out, ble.Handle{Address: addr, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DevicePath BlueZ 设备对象路径，如 /org/bluez/hci0/dev_C0_FF_EE_00_00_01
func DevicePath(adapter dbus.ObjectPath, address string) dbus.ObjectPath {
	return dbus.ObjectPath(string(adapter) + "/dev_" + strings.ReplaceAll(strings.ToUpper(address), ":", "_"))
}

// WatchAdvertisements 外设广播（RSSI 更新或重新出现）时回调一次
// 监听期间保持适配器扫描
func (c *Client) WatchAdvertisements(ctx context.Context, h ble.Handle, fn func()) (func(), error) {
	path := DevicePath(c.adapterPath, h.Address)

	propsRule := []dbus.MatchOption{
		dbus.WithMatchObjectPath(path),
		dbus.WithMatchInterface(propsInterface),
		dbus.WithMatchMember("PropertiesChanged"),
	}
	addedRule := []dbus.MatchOption{
		dbus.WithMatchInterface(objectManager),
		dbus.WithMatchMember("InterfacesAdded"),
	}
	if err := c.conn.AddMatchSignal(propsRule...); err != nil {
		return nil, fmt.Errorf("add match: %w", err)
	}
	if err := c.conn.AddMatchSignal(addedRule...); err != nil {
		_ = c.conn.RemoveMatchSignal(propsRule...)
		return nil, fmt.Errorf("add match: %w", err)
	}
	if err := c.startDiscovery(ctx); err != nil {
		_ = c.conn.RemoveMatchSignal(propsRule...)
		_ = c.conn.RemoveMatchSignal(addedRule...)
		return nil, err
	}

	signals := make(chan *dbus.Signal, 16)
	c.conn.Signal(signals)

	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			c.conn.RemoveSignal(signals)
			_ = c.conn.RemoveMatchSignal(propsRule...)
			_ = c.conn.RemoveMatchSignal(addedRule...)
			c.stopDiscovery()
		})
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				stop()
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				if isAdvertisement(sig, path) {
					c.logger.Debug("advertisement seen", zap.String("device", h.Address))
					go stop()
					fn()
					return
				}
			}
		}
	}()
	return stop, nil
}

// isAdvertisement 设备 RSSI 变化，或设备对象重新出现
func isAdvertisement(sig *dbus.Signal, path dbus.ObjectPath) bool {
	switch sig.Name {
	case propsInterface + ".PropertiesChanged":
		if sig.Path != path || len(sig.Body) < 2 {
			return false
		}
		if iface, _ := sig.Body[0].(string); iface != deviceInterface {
			return false
		}
		changed, _ := sig.Body[1].(map[string]dbus.Variant)
		_, rssi := changed["RSSI"]
		return rssi
	case objectManager + ".InterfacesAdded":
		if len(sig.Body) < 2 {
			return false
		}
		p, _ := sig.Body[0].(dbus.ObjectPath)
		if p != path {
			return false
		}
		ifaces, _ := sig.Body[1].(map[string]map[string]dbus.Variant)
		_, ok := ifaces[deviceInterface]
		return ok
	default:
		return false
	}
}

func (c *Client) startDiscovery(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.discoveries == 0 {
		adapter := c.conn.Object(busName, c.adapterPath)
		filter := map[string]interface{}{"Transport": "le", "DuplicateData": true}
		if err := adapter.CallWithContext(ctx, adapterInterface+".SetDiscoveryFilter", 0, filter).Err; err != nil {
			c.logger.Debug("set discovery filter failed", zap.Error(err))
		}
		if err := adapter.CallWithContext(ctx, adapterInterface+".StartDiscovery", 0).Err; err != nil && !isInProgress(err) {
			return fmt.Errorf("start discovery: %w", err)
		}
	}
	c.discoveries++
	return nil
}

func (c *Client) stopDiscovery() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.discoveries == 0 {
		return
	}
	c.discoveries--
	if c.discoveries == 0 {
		if err := c.conn.Object(busName, c.adapterPath).Call(adapterInterface+".StopDiscovery", 0).Err; err != nil {
			c.logger.Debug("stop discovery failed", zap.Error(err))
		}
	}
}

func isInProgress(err error) bool {
	var derr dbus.Error
	if e, ok := err.(dbus.Error); ok {
		derr = e
	} else if e, ok := err.(*dbus.Error); ok {
		derr = *e
	}
	return derr.Name == "org.bluez.Error.InProgress"
}

// Close 关闭总线连接
func (c *Client) Close() error {
	return c.conn.Close()
}
