package core

import (
	"sync"

	"github.com/krill-engine/krill/engine/containers"
)

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Keyboard key pressed. Context carries the key code.
	EVENT_CODE_KEY_PRESSED SystemEventCode = 0x02

	// Keyboard key released. Context carries the key code.
	EVENT_CODE_KEY_RELEASED SystemEventCode = 0x03

	// Resized/resolution changed from the OS. Context carries width and height.
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	// Configuration file changed on disk.
	EVENT_CODE_CONFIG_CHANGED SystemEventCode = 0x09

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

const MAX_MESSAGE_CODES = 16384

// EventContext carries the payload of a fired event. Which fields are
// meaningful depends on the code.
type EventContext struct {
	Type   SystemEventCode
	U16    [4]uint16
	U32    [4]uint32
	String string
	Data   interface{}
}

// Should return true if handled; handled events stop propagating.
type FnOnEvent func(context EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

type eventSystemState struct {
	registered [MAX_MESSAGE_CODES][]*registeredEvent

	// pendingMu guards the deferred queue; enqueues may come from watcher
	// goroutines while the main loop drains.
	pendingMu sync.Mutex
	pending   *containers.RingQueue[EventContext]
}

var onceEvent sync.Once
var isInitialized bool = false
var eventState *eventSystemState = nil

func EventInitialize() bool {
	if isInitialized {
		return false
	}
	onceEvent.Do(func() {
		eventState = &eventSystemState{
			pending: containers.NewRingQueue[EventContext](1024),
		}
	})
	isInitialized = true
	return true
}

func EventShutdown() error {
	for i := 0; i < MAX_MESSAGE_CODES; i++ {
		if len(eventState.registered[i]) != 0 {
			eventState.registered[i] = nil
		}
	}
	isInitialized = false
	return nil
}

// EventRegister subscribes a listener/callback pair to a code. Duplicate
// listener registrations for the same code are rejected.
func EventRegister(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if !isInitialized {
		return false
	}
	for _, e := range eventState.registered[code] {
		if e.listener == listener {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	eventState.registered[code] = append(eventState.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

func EventUnregister(code SystemEventCode, listener interface{}) bool {
	if !isInitialized {
		return false
	}
	events := eventState.registered[code]
	for i, e := range events {
		if e.listener == listener {
			eventState.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

// EventFire dispatches synchronously to listeners of the context's code. If a
// handler returns true, the event is considered handled and propagation stops.
func EventFire(context EventContext) bool {
	if !isInitialized {
		return false
	}
	for _, e := range eventState.registered[context.Type] {
		if e.callback(context) {
			return true
		}
	}
	return false
}

// EventEnqueue defers an event until the next ProcessEvents call. Safe to use
// from OS callbacks that run while the engine is mid-frame and from other
// goroutines such as file watchers.
func EventEnqueue(context EventContext) bool {
	if !isInitialized {
		return false
	}
	eventState.pendingMu.Lock()
	err := eventState.pending.Enqueue(context)
	eventState.pendingMu.Unlock()
	if err != nil {
		LogWarn("event queue full, dropping event code %d", context.Type)
		return false
	}
	return true
}

// ProcessEvents drains the deferred queue, dispatching each entry in order.
// Dispatch happens outside the queue lock so handlers may enqueue again.
func ProcessEvents() {
	if !isInitialized {
		return
	}
	for {
		eventState.pendingMu.Lock()
		if eventState.pending.IsEmpty() {
			eventState.pendingMu.Unlock()
			return
		}
		context, err := eventState.pending.Dequeue()
		eventState.pendingMu.Unlock()
		if err != nil {
			return
		}
		EventFire(context)
	}
}
