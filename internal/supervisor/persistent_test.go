package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
	"github.com/taoyao-code/walkpad-gateway/internal/ble/fake"
	"github.com/taoyao-code/walkpad-gateway/internal/state"
)

func TestStartupAutoReconnectToBondedDevice(t *testing.T) {
	f := newFixture(t, testConfig())
	f.tr.EnableBonded(
		ble.Handle{Address: "AA:00:00:00:00:01", Name: "Headphones"},
		f.pad.Handle(),
	)

	f.sup.Run(context.Background())

	require.Eventually(t, func() bool { return f.sup.State() == state.Connected }, waitFor, tick)
	snap := f.store.Snapshot()
	require.NotNil(t, snap.Device)
	assert.Equal(t, padAddr, snap.Device.Address)
	assert.True(t, snap.Support.BondedDevices)
}

func TestStartupRespectsDisabledPreference(t *testing.T) {
	f := newFixture(t, testConfig())
	f.tr.EnableBonded(f.pad.Handle())
	require.NoError(t, f.prefs.SetAutoReconnect(context.Background(), false))

	f.sup.Run(context.Background())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, state.Disconnected, f.sup.State())
	assert.Equal(t, 0, f.pad.Connects())
	assert.False(t, f.store.Snapshot().AutoReconnect)
}

func TestStartupFallsBackToLastDevice(t *testing.T) {
	f := newFixture(t, testConfig())
	require.NoError(t, f.prefs.SetLastDevice(context.Background(), f.pad.Handle()))

	f.sup.Run(context.Background())

	require.Eventually(t, func() bool { return f.sup.State() == state.Connected }, waitFor, tick)
}

func TestPersistentReconnectPolls(t *testing.T) {
	f := newFixture(t, testConfig())
	f.tr.EnableBonded(f.pad.Handle())
	f.pad.SetInRange(false)

	require.True(t, f.sup.TryAutoReconnect(context.Background()))
	assert.Equal(t, state.Reconnecting, f.sup.State())

	require.Eventually(t, func() bool { return f.pad.Connects() >= 3 }, waitFor, tick)
	assert.Equal(t, state.Reconnecting, f.sup.State())

	f.pad.SetInRange(true)
	require.Eventually(t, func() bool { return f.sup.State() == state.Connected }, waitFor, tick)
}

func TestPersistentReconnectWaitsForAdvertisement(t *testing.T) {
	f := newFixture(t, testConfig())
	f.tr.EnableBonded(f.pad.Handle())
	f.tr.EnableWatch()
	f.pad.SetInRange(false)

	require.True(t, f.sup.TryAutoReconnect(context.Background()))

	// 立即尝试一次，失败后等待广播而不是轮询
	require.Eventually(t, func() bool { return f.pad.Connects() == 1 }, waitFor, tick)
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, f.pad.Connects())
	assert.True(t, f.tr.Watching(padAddr))

	f.pad.SetInRange(true)
	assert.Equal(t, 1, f.tr.Advertise(padAddr))

	require.Eventually(t, func() bool { return f.sup.State() == state.Connected }, waitFor, tick)
	assert.False(t, f.tr.Watching(padAddr), "watch stopped once connected")
}

func TestPersistentReconnectCancelled(t *testing.T) {
	f := newFixture(t, testConfig())
	f.tr.EnableBonded(f.pad.Handle())
	f.pad.SetInRange(false)

	require.True(t, f.sup.TryAutoReconnect(context.Background()))
	require.Eventually(t, func() bool { return f.pad.Connects() >= 2 }, waitFor, tick)

	f.sup.CancelReconnect()
	connects := f.pad.Connects()
	assert.Equal(t, state.Disconnected, f.sup.State())

	time.Sleep(100 * time.Millisecond)
	assert.LessOrEqual(t, f.pad.Connects(), connects+1, "at most the in-flight attempt completes")
	assert.Equal(t, state.Disconnected, f.sup.State())
	assert.False(t, f.sup.TryAutoReconnect(context.Background()), "manual flag blocks auto-reconnect")
}

func TestPersistentAttemptGatedByInFlight(t *testing.T) {
	f := newFixture(t, testConfig())
	f.tr.EnableBonded(f.pad.Handle())

	reg := f.sup.registry
	require.True(t, reg.TryBegin(padAddr))

	require.True(t, f.sup.TryAutoReconnect(context.Background()))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, f.pad.Connects(), "second attempt must not race the in-flight one")

	reg.End(padAddr)
}

func TestTryAutoReconnectWithoutCandidates(t *testing.T) {
	tr := fake.NewTransport()
	store := state.NewStore()
	sup := New(testConfig(), tr, store, WithLogger(zaptest.NewLogger(t)))
	t.Cleanup(sup.Close)

	assert.False(t, sup.TryAutoReconnect(context.Background()))
	assert.Equal(t, state.Disconnected, sup.State())
}
