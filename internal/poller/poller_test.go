package poller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/walkpad-gateway/internal/protocol/walkpad"
)

type captureQueue struct {
	mu     sync.Mutex
	frames []walkpad.Frame
}

func (q *captureQueue) Enqueue(f walkpad.Frame) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.frames = append(q.frames, f)
	return false
}

func (q *captureQueue) all() []walkpad.Frame {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]walkpad.Frame(nil), q.frames...)
}

func TestTickQueriesParamsUntilKnown(t *testing.T) {
	q := &captureQueue{}
	p := New(q, time.Second, nil)

	p.Tick()
	require.Equal(t, []walkpad.Frame{walkpad.Query(), walkpad.QueryParams()}, q.all())

	p.MarkParamsKnown()
	p.Tick()
	frames := q.all()
	require.Len(t, frames, 3)
	assert.Equal(t, walkpad.Query(), frames[2])

	p.Reset()
	assert.False(t, p.ParamsKnown())
	p.Tick()
	assert.Len(t, q.all(), 5)
}

func TestRunTicksPeriodically(t *testing.T) {
	q := &captureQueue{}
	p := New(q, 10*time.Millisecond, nil)
	p.MarkParamsKnown()

	ctx, cancel := context.WithCancel(context.Background())
	go p.Run(ctx)

	require.Eventually(t, func() bool { return len(q.all()) >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	for _, f := range q.all() {
		assert.Equal(t, walkpad.Query(), f)
	}
}
