package state

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
	"github.com/taoyao-code/walkpad-gateway/internal/protocol/walkpad"
)

func TestStoreDefaults(t *testing.T) {
	s := NewStore()
	snap := s.Snapshot()
	assert.Equal(t, Disconnected, snap.SessionState)
	assert.Equal(t, walkpad.ModeSleep, snap.Status.Mode)
	assert.Equal(t, 60, snap.Params.MaxSpeed)
	assert.False(t, snap.ParamsReceived)
}

func TestApplyInfoAndReset(t *testing.T) {
	s := NewStore()
	s.ApplyInfo(&walkpad.Info{State: walkpad.StateStarting, Speed: 25, Mode: walkpad.ModeManual, Time: 12, Distance: 3, Steps: 40})
	s.ApplyParams(&walkpad.Params{MaxSpeed: 50, StartSpeed: 15, Sensitivity: walkpad.SensitivityLow})

	snap := s.Snapshot()
	assert.True(t, snap.Status.IsRunning)
	assert.Equal(t, "Starting", snap.Status.StateName)
	assert.Equal(t, 25, snap.Status.Speed)
	assert.Equal(t, 50, snap.Params.MaxSpeed)
	assert.True(t, snap.ParamsReceived)

	s.ResetDevice()
	snap = s.Snapshot()
	assert.Equal(t, DefaultStatus(), snap.Status)
	assert.Equal(t, 50, snap.Params.MaxSpeed, "params survive a disconnect")
}

func TestAddRecordDiscardsZeroDuration(t *testing.T) {
	s := NewStore()
	assert.False(t, s.AddRecord(walkpad.Record{Duration: 0, Distance: 100}))
	assert.True(t, s.AddRecord(walkpad.Record{Duration: 60, Distance: 100}))

	records := s.Records()
	require.Len(t, records, 1)
	assert.Equal(t, 60, records[0].Duration)
	assert.Equal(t, 1, s.Snapshot().RecordCount)
}

func TestAddRecordBounded(t *testing.T) {
	s := NewStore()
	for i := 1; i <= MaxRecords+10; i++ {
		s.AddRecord(walkpad.Record{Duration: i})
	}
	records := s.Records()
	require.Len(t, records, MaxRecords)
	assert.Equal(t, 11, records[0].Duration)
}

func TestSetErrorAndDevice(t *testing.T) {
	s := NewStore()
	s.SetError(errors.New("boom"))
	s.SetDevice(ble.Handle{Address: "AA", Name: "WalkingPad"})
	snap := s.Snapshot()
	assert.Equal(t, "boom", snap.LastError)
	require.NotNil(t, snap.Device)
	assert.Equal(t, "WalkingPad", snap.Device.Name)

	snap.Device.Name = "mutated"
	assert.Equal(t, "WalkingPad", s.Snapshot().Device.Name)

	s.SetError(nil)
	assert.Empty(t, s.Snapshot().LastError)
}

func TestSubscribeReceivesLatest(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe()
	defer cancel()

	initial := <-ch
	assert.Equal(t, Disconnected, initial.SessionState)

	s.SetSessionState(Connecting)
	s.SetSessionState(Connected)

	select {
	case snap := <-ch:
		assert.Equal(t, Connected, snap.SessionState)
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}

	cancel()
	s.SetSessionState(Disconnected)
	select {
	case <-ch:
		t.Fatal("cancelled subscriber received update")
	default:
	}
}

func TestSessionStateText(t *testing.T) {
	b, err := Reconnecting.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "reconnecting", string(b))

	var st SessionState
	require.NoError(t, st.UnmarshalText([]byte("connected")))
	assert.Equal(t, Connected, st)
	assert.Error(t, st.UnmarshalText([]byte("asleep")))
}
