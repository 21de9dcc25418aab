package session

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
	"github.com/taoyao-code/walkpad-gateway/internal/ble/fake"
	"github.com/taoyao-code/walkpad-gateway/internal/protocol/walkpad"
)

const padAddr = "C0:FF:EE:00:00:01"

func testConfig() Config {
	return Config{
		SettleDelay:   time.Millisecond,
		ActivateDelay: time.Millisecond,
		DrainInterval: 2 * time.Millisecond,
		PollInterval:  20 * time.Millisecond,
		RetryBackoff:  time.Millisecond,
		MaxRetries:    3,
		NotifyBuffer:  16,
	}
}

type recordingSink struct {
	mu      sync.Mutex
	infos   []walkpad.Info
	params  []walkpad.Params
	records []walkpad.Record
}

func (s *recordingSink) OnInfo(_ ble.Handle, i *walkpad.Info) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infos = append(s.infos, *i)
}

func (s *recordingSink) OnParams(_ ble.Handle, p *walkpad.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = append(s.params, *p)
}

func (s *recordingSink) OnRecord(_ ble.Handle, r *walkpad.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *r)
}

func (s *recordingSink) counts() (int, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.infos), len(s.params), len(s.records)
}

func notification(kind byte, body ...byte) []byte {
	b := append([]byte{0xF8, kind}, body...)
	return append(b, walkpad.CalculateChecksum(b[1:]), walkpad.Trailer)
}

func infoFrame(speed byte) []byte {
	return notification(walkpad.KindByte, 1, speed, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
}

func paramsFrame() []byte {
	return notification(walkpad.KindInt, 0, 0, 0, 0, 0, 60, 20, 0, 2, 31, 0, 0)
}

func recordFrame(duration byte) []byte {
	return notification(walkpad.KindRecord, 0, 0, 1, 0, 0, 2, 0, 0, duration, 0, 0, 9, 0, 0, 50, 0)
}

func newTestSession(t *testing.T, p *fake.Peripheral, sink EventSink, reg *Registry) *Session {
	t.Helper()
	tr := fake.NewTransport(p)
	s := New(context.Background(), tr, p.Handle(), testConfig(), sink, reg, zaptest.NewLogger(t), nil)
	t.Cleanup(s.Close)
	return s
}

func containsFrame(written [][]byte, f walkpad.Frame) bool {
	for _, w := range written {
		if bytes.Equal(w, f) {
			return true
		}
	}
	return false
}

func TestOpenActivatesAndPolls(t *testing.T) {
	p := fake.NewPeripheral(padAddr, "WalkingPad")
	reg := NewRegistry(time.Second)
	s := newTestSession(t, p, &recordingSink{}, reg)

	require.NoError(t, s.Open(context.Background()))
	assert.Equal(t, PhaseActive, s.Phase())
	assert.True(t, p.Subscribed())

	active, ok := reg.Get(padAddr)
	require.True(t, ok)
	assert.Same(t, s, active)

	require.Eventually(t, func() bool {
		w := p.Written()
		return containsFrame(w, walkpad.Query()) && containsFrame(w, walkpad.QueryParams())
	}, time.Second, 5*time.Millisecond)
}

func TestNotificationsDispatchedInOrder(t *testing.T) {
	p := fake.NewPeripheral(padAddr, "WalkingPad")
	sink := &recordingSink{}
	s := newTestSession(t, p, sink, nil)
	require.NoError(t, s.Open(context.Background()))

	for speed := byte(1); speed <= 5; speed++ {
		require.True(t, p.Notify(infoFrame(speed)))
	}
	p.Notify([]byte{0xF8, 0xA2, 0x01}) // 过短，忽略
	p.Notify(paramsFrame())
	p.Notify(recordFrame(0))
	p.Notify(recordFrame(30))

	require.Eventually(t, func() bool {
		infos, params, records := sink.counts()
		return infos == 5 && params == 1 && records == 1
	}, time.Second, 5*time.Millisecond)

	sink.mu.Lock()
	for i, info := range sink.infos {
		assert.Equal(t, i+1, info.Speed)
	}
	assert.Equal(t, 30, sink.records[0].Duration)
	sink.mu.Unlock()

	assert.True(t, s.poller.ParamsKnown())
}

func TestOpenRetriesTransientErrors(t *testing.T) {
	p := fake.NewPeripheral(padAddr, "WalkingPad")
	p.FailConnects(errors.New("GATT Server is disconnected"), errors.New("Connection lost"))
	s := newTestSession(t, p, nil, nil)

	require.NoError(t, s.Open(context.Background()))
	assert.Equal(t, 3, p.Connects())
}

func TestOpenGivesUpAfterMaxRetries(t *testing.T) {
	p := fake.NewPeripheral(padAddr, "WalkingPad")
	p.DropOnConnect(true)
	s := newTestSession(t, p, nil, nil)

	err := s.Open(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ble.ErrLinkUnstable))
	assert.Equal(t, 4, p.Connects(), "initial attempt plus three retries")
}

func TestOpenDoesNotRetryPermanentErrors(t *testing.T) {
	p := fake.NewPeripheral(padAddr, "WalkingPad")
	p.FailConnects(errors.New("permission denied"))
	s := newTestSession(t, p, nil, nil)

	err := s.Open(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ble.ErrLinkUnstable))
	assert.Equal(t, 1, p.Connects())
}

func TestOpenDoesNotRetryOutOfRange(t *testing.T) {
	p := fake.NewPeripheral(padAddr, "WalkingPad")
	p.SetInRange(false)
	s := newTestSession(t, p, nil, nil)

	err := s.Open(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ble.ErrNotInRange)
	assert.False(t, errors.Is(err, ble.ErrLinkUnstable))
	assert.Equal(t, 1, p.Connects())
}

func TestClassifyUsesPlatformError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		unstable bool
	}{
		{"权限错误", errors.New("permission denied"), false},
		{"不在范围", ble.ErrNotInRange, false},
		{"平台断链", errors.New("GATT Server is disconnected"), true},
		{"已标记", ble.ErrLinkUnstable, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("connect", tt.err)
			assert.Equal(t, tt.unstable, errors.Is(err, ble.ErrLinkUnstable))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestAbortStopsRetries(t *testing.T) {
	p := fake.NewPeripheral(padAddr, "WalkingPad")
	p.FailConnects(errors.New("Connection lost"), errors.New("Connection lost"), errors.New("Connection lost"))
	cfg := testConfig()
	cfg.RetryBackoff = 200 * time.Millisecond
	s := New(context.Background(), fake.NewTransport(p), p.Handle(), cfg, nil, nil, zaptest.NewLogger(t), nil)
	t.Cleanup(s.Close)

	done := make(chan error, 1)
	go func() { done <- s.Open(context.Background()) }()
	require.Eventually(t, func() bool { return p.Connects() == 1 }, time.Second, time.Millisecond)

	s.Abort()
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("open kept waiting after abort")
	}
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, 1, p.Connects(), "no retry after abort")
}

func TestOpenServiceNotFound(t *testing.T) {
	p := fake.NewPeripheral(padAddr, "Some Speaker").WithoutService()
	s := newTestSession(t, p, nil, nil)

	err := s.Open(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ble.ErrServiceNotFound))
	assert.Equal(t, 1, p.Connects())
	assert.False(t, p.Connected(), "link released after failed attempt")
}

func TestWriteFailureKeepsSessionActive(t *testing.T) {
	p := fake.NewPeripheral(padAddr, "WalkingPad")
	p.SetWriteError(errors.New("write rejected"))
	s := newTestSession(t, p, nil, nil)
	require.NoError(t, s.Open(context.Background()))

	require.NoError(t, s.Send(walkpad.Start()))
	require.Eventually(t, func() bool { return s.QueueLen() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, PhaseActive, s.Phase())
	assert.True(t, p.Connected())
}

func TestCloseReleasesEverything(t *testing.T) {
	p := fake.NewPeripheral(padAddr, "WalkingPad")
	reg := NewRegistry(time.Second)
	tr := fake.NewTransport(p)
	cfg := testConfig()
	cfg.DrainInterval = time.Hour
	s := New(context.Background(), tr, p.Handle(), cfg, nil, reg, zaptest.NewLogger(t), nil)
	require.NoError(t, s.Open(context.Background()))

	require.NoError(t, s.Send(walkpad.SetSpeed(10), walkpad.SetSpeed(20)))
	assert.GreaterOrEqual(t, s.QueueLen(), 2)

	s.Close()
	s.Close()

	assert.Equal(t, PhaseClosed, s.Phase())
	assert.Equal(t, 0, s.QueueLen())
	assert.False(t, p.Connected())
	assert.False(t, p.Subscribed())
	assert.Equal(t, 1, p.Unsubscriptions())
	assert.Equal(t, 0, reg.ActiveCount())
	assert.ErrorIs(t, s.Send(walkpad.Query()), ErrClosed)
	assert.False(t, p.Notify(infoFrame(1)))
}

func TestLinkLostInvokesCallback(t *testing.T) {
	p := fake.NewPeripheral(padAddr, "WalkingPad")
	s := newTestSession(t, p, nil, nil)

	lost := make(chan *Session, 1)
	s.OnLinkLost(func(sess *Session) { lost <- sess })
	require.NoError(t, s.Open(context.Background()))

	p.DropLink()
	select {
	case got := <-lost:
		assert.Same(t, s, got)
	case <-time.After(time.Second):
		t.Fatal("link loss not reported")
	}
}

func TestLinkLossAfterCloseIgnored(t *testing.T) {
	p := fake.NewPeripheral(padAddr, "WalkingPad")
	s := newTestSession(t, p, nil, nil)

	lost := make(chan struct{}, 1)
	s.OnLinkLost(func(*Session) { lost <- struct{}{} })
	require.NoError(t, s.Open(context.Background()))

	s.Close()
	p.DropLink()
	select {
	case <-lost:
		t.Fatal("closed session reported link loss")
	case <-time.After(50 * time.Millisecond):
	}
}
