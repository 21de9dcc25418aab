package records

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/taoyao-code/walkpad-gateway/internal/supervisor"
)

type fakeSyncer struct {
	mu    sync.Mutex
	err   error
	calls []byte
}

func (f *fakeSyncer) SyncRecords(n byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, n)
	return f.err
}

func TestSyncSchedulerRunOnce(t *testing.T) {
	syncer := &fakeSyncer{}
	s, err := NewSyncScheduler("@every 1h", syncer, 255, nil)
	require.NoError(t, err)

	s.RunOnce()
	assert.Equal(t, []byte{255}, syncer.calls)
}

func TestSyncSchedulerIgnoresNotConnected(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	syncer := &fakeSyncer{err: supervisor.ErrNotConnected}
	s, err := NewSyncScheduler("*/5 * * * *", syncer, 10, zap.New(core))
	require.NoError(t, err)

	s.RunOnce()
	assert.Equal(t, 0, logs.Len())

	syncer.err = errors.New("write failed")
	s.RunOnce()
	assert.Equal(t, 1, logs.FilterMessage("record sync failed").Len())
}

func TestSyncSchedulerInvalidSpec(t *testing.T) {
	_, err := NewSyncScheduler("not a schedule", &fakeSyncer{}, 1, nil)
	assert.Error(t, err)
}

func TestSyncSchedulerStartStop(t *testing.T) {
	s, err := NewSyncScheduler("@every 1h", &fakeSyncer{}, 1, nil)
	require.NoError(t, err)
	s.Start()
	s.Stop()
}
