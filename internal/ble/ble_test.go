package ble

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterMatch(t *testing.T) {
	f := Filter{NamePrefixes: DefaultNamePrefixes}
	tests := []struct {
		name string
		want bool
	}{
		{"WalkingPad A1", true},
		{"walkingpad", true},
		{"KS-HD-Z1D", true},
		{"ks-r1", true},
		{"X21 Pro", true},
		{"Mi Band", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Match(tt.name))
		})
	}
	assert.True(t, Filter{AcceptAll: true}.Match(""))
}

func TestPickBonded(t *testing.T) {
	devices := []Handle{
		{Address: "AA:00", Name: "Headphones"},
		{Address: "AA:01", Name: "KS-ST-A1P"},
	}
	got, ok := PickBonded(devices, DefaultBondedHints)
	assert.True(t, ok)
	assert.Equal(t, "AA:01", got.Address)

	got, ok = PickBonded(devices[:1], DefaultBondedHints)
	assert.True(t, ok)
	assert.Equal(t, "AA:00", got.Address)

	_, ok = PickBonded(nil, DefaultBondedHints)
	assert.False(t, ok)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		transient  bool
		outOfRange bool
	}{
		{"nil", nil, false, false},
		{"link unstable", fmt.Errorf("connect: %w", ErrLinkUnstable), true, true},
		{"平台断链文本", errors.New("Device disconnected"), true, true},
		{"GATT 错误", errors.New("GATT operation failed for unknown reason"), true, false},
		{"connection lost", errors.New("Connection lost while reading"), true, false},
		{"不在范围", errors.New("Bluetooth device is no longer in range"), false, true},
		{"服务缺失", ErrServiceNotFound, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, IsTransient(tt.err))
			assert.Equal(t, tt.outOfRange, IsOutOfRange(tt.err))
		})
	}
}
