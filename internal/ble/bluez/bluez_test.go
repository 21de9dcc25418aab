package bluez

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
)

const adapter = dbus.ObjectPath("/org/bluez/hci0")

func device(addr, name string, paired bool, adapterPath dbus.ObjectPath) map[string]map[string]dbus.Variant {
	return map[string]map[string]dbus.Variant{
		deviceInterface: {
			"Address": dbus.MakeVariant(addr),
			"Name":    dbus.MakeVariant(name),
			"Paired":  dbus.MakeVariant(paired),
			"Adapter": dbus.MakeVariant(adapterPath),
		},
	}
}

func TestPairedDevices(t *testing.T) {
	objects := managedObjects{
		adapter: {adapterInterface: {"Powered": dbus.MakeVariant(true)}},
		DevicePath(adapter, "C0:FF:EE:00:00:02"): device("C0:FF:EE:00:00:02", "WalkingPad R1", true, adapter),
		DevicePath(adapter, "C0:FF:EE:00:00:01"): device("C0:FF:EE:00:00:01", "KS-ST-A1P", true, adapter),
		DevicePath(adapter, "C0:FF:EE:00:00:03"): device("C0:FF:EE:00:00:03", "Headphones", false, adapter),
		"/org/bluez/hci1/dev_C0_FF_EE_00_00_04":  device("C0:FF:EE:00:00:04", "KS-Other", true, "/org/bluez/hci1"),
	}

	got := pairedDevices(objects, adapter)
	assert.Equal(t, []ble.Handle{
		{Address: "C0:FF:EE:00:00:01", Name: "KS-ST-A1P"},
		{Address: "C0:FF:EE:00:00:02", Name: "WalkingPad R1"},
	}, got)
}

func TestPairedDevicesFallsBackToAlias(t *testing.T) {
	obj := device("C0:FF:EE:00:00:05", "", true, adapter)
	obj[deviceInterface]["Alias"] = dbus.MakeVariant("KS-Alias")
	got := pairedDevices(managedObjects{"/org/bluez/hci0/dev_C0_FF_EE_00_00_05": obj}, adapter)
	assert.Equal(t, []ble.Handle{{Address: "C0:FF:EE:00:00:05", Name: "KS-Alias"}}, got)
}

func TestDevicePath(t *testing.T) {
	assert.Equal(t, dbus.ObjectPath("/org/bluez/hci0/dev_C0_FF_EE_00_00_01"), DevicePath(adapter, "c0:ff:ee:00:00:01"))
}

func TestIsAdvertisement(t *testing.T) {
	path := DevicePath(adapter, "C0:FF:EE:00:00:01")

	rssi := &dbus.Signal{
		Path: path,
		Name: propsInterface + ".PropertiesChanged",
		Body: []interface{}{deviceInterface, map[string]dbus.Variant{"RSSI": dbus.MakeVariant(int16(-60))}, []string{}},
	}
	assert.True(t, isAdvertisement(rssi, path))

	other := *rssi
	other.Path = DevicePath(adapter, "C0:FF:EE:00:00:09")
	assert.False(t, isAdvertisement(&other, path))

	connected := &dbus.Signal{
		Path: path,
		Name: propsInterface + ".PropertiesChanged",
		Body: []interface{}{deviceInterface, map[string]dbus.Variant{"Connected": dbus.MakeVariant(false)}, []string{}},
	}
	assert.False(t, isAdvertisement(connected, path))

	added := &dbus.Signal{
		Path: "/",
		Name: objectManager + ".InterfacesAdded",
		Body: []interface{}{path, map[string]map[string]dbus.Variant{deviceInterface: {}}},
	}
	assert.True(t, isAdvertisement(added, path))
}

func TestIsInProgress(t *testing.T) {
	assert.True(t, isInProgress(dbus.Error{Name: "org.bluez.Error.InProgress"}))
	assert.True(t, isInProgress(&dbus.Error{Name: "org.bluez.Error.InProgress"}))
	assert.False(t, isInProgress(errors.New("boom")))
}
