package records

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
	"github.com/taoyao-code/walkpad-gateway/internal/protocol/walkpad"
)

var (
	padA = ble.Handle{Address: "C0:FF:EE:00:00:01", Name: "KS-ST-A1P"}
	padB = ble.Handle{Address: "C0:FF:EE:00:00:02", Name: "WalkingPad R1"}
)

func entry(h ble.Handle, onTime int, at time.Time) Entry {
	return Entry{
		Device:     h,
		Record:     walkpad.Record{OnTime: onTime, StartTime: onTime - 600, Duration: 600, Distance: 50, Steps: 800},
		ReceivedAt: at,
	}
}

func TestMemoryStoreDeduplicates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()

	saved, err := s.Save(ctx, entry(padA, 1000, now))
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = s.Save(ctx, entry(padA, 1000, now.Add(time.Second)))
	require.NoError(t, err)
	assert.False(t, saved, "same device and timestamps")

	saved, err = s.Save(ctx, entry(padB, 1000, now))
	require.NoError(t, err)
	assert.True(t, saved, "other device")
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now()
	for i := 0; i < 5; i++ {
		_, err := s.Save(ctx, entry(padA, 1000+i, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
	_, err := s.Save(ctx, entry(padB, 42, base))
	require.NoError(t, err)

	all, err := s.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	latest, err := s.List(ctx, padA.Address, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, 1004, latest[0].Record.OnTime, "newest first")
	assert.Equal(t, 1003, latest[1].Record.OnTime)
}

func TestModelConversion(t *testing.T) {
	e := entry(padA, 1234, time.Unix(1700000000, 0).UTC())
	assert.Equal(t, e, fromModel(toModel(e)))
}
