package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventRecorder struct {
	seen    []EventContext
	handled bool
}

func (r *eventRecorder) onEvent(context EventContext) bool {
	r.seen = append(r.seen, context)
	return r.handled
}

func TestEventRegisterAndFire(t *testing.T) {
	EventInitialize()
	defer EventShutdown()

	rec := &eventRecorder{}
	require.True(t, EventRegister(EVENT_CODE_KEY_PRESSED, rec, rec.onEvent))

	EventFire(EventContext{Type: EVENT_CODE_KEY_PRESSED, U16: [4]uint16{42}})
	require.Len(t, rec.seen, 1)
	assert.Equal(t, uint16(42), rec.seen[0].U16[0])

	// other codes do not reach this listener
	EventFire(EventContext{Type: EVENT_CODE_RESIZED})
	assert.Len(t, rec.seen, 1)
}

func TestEventDuplicateListenerRejected(t *testing.T) {
	EventInitialize()
	defer EventShutdown()

	rec := &eventRecorder{}
	require.True(t, EventRegister(EVENT_CODE_RESIZED, rec, rec.onEvent))
	assert.False(t, EventRegister(EVENT_CODE_RESIZED, rec, rec.onEvent))
}

func TestEventHandledStopsPropagation(t *testing.T) {
	EventInitialize()
	defer EventShutdown()

	first := &eventRecorder{handled: true}
	second := &eventRecorder{}
	require.True(t, EventRegister(EVENT_CODE_APPLICATION_QUIT, first, first.onEvent))
	require.True(t, EventRegister(EVENT_CODE_APPLICATION_QUIT, second, second.onEvent))

	assert.True(t, EventFire(EventContext{Type: EVENT_CODE_APPLICATION_QUIT}))
	assert.Len(t, first.seen, 1)
	assert.Empty(t, second.seen)
}

func TestEventUnregister(t *testing.T) {
	EventInitialize()
	defer EventShutdown()

	rec := &eventRecorder{}
	require.True(t, EventRegister(EVENT_CODE_KEY_RELEASED, rec, rec.onEvent))
	require.True(t, EventUnregister(EVENT_CODE_KEY_RELEASED, rec))

	EventFire(EventContext{Type: EVENT_CODE_KEY_RELEASED})
	assert.Empty(t, rec.seen)

	assert.False(t, EventUnregister(EVENT_CODE_KEY_RELEASED, rec))
}

func TestEventEnqueueDeferred(t *testing.T) {
	EventInitialize()
	defer EventShutdown()

	rec := &eventRecorder{}
	require.True(t, EventRegister(EVENT_CODE_CONFIG_CHANGED, rec, rec.onEvent))

	require.True(t, EventEnqueue(EventContext{Type: EVENT_CODE_CONFIG_CHANGED, String: "a"}))
	require.True(t, EventEnqueue(EventContext{Type: EVENT_CODE_CONFIG_CHANGED, String: "b"}))
	assert.Empty(t, rec.seen)

	ProcessEvents()
	require.Len(t, rec.seen, 2)
	assert.Equal(t, "a", rec.seen[0].String)
	assert.Equal(t, "b", rec.seen[1].String)
}

func TestEventEnqueueFromGoroutines(t *testing.T) {
	EventInitialize()
	defer EventShutdown()

	rec := &eventRecorder{}
	require.True(t, EventRegister(EVENT_CODE_CONFIG_CHANGED, rec, rec.onEvent))

	// enqueue from several goroutines while the main loop drains, the way
	// a file watcher races the frame loop
	const workers = 4
	const perWorker = 200
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				EventEnqueue(EventContext{Type: EVENT_CODE_CONFIG_CHANGED})
			}
		}()
	}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	draining := true
	for draining {
		ProcessEvents()
		select {
		case <-done:
			draining = false
		default:
		}
	}
	ProcessEvents()
	assert.Len(t, rec.seen, workers*perWorker)
}
