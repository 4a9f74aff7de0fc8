package network

import (
	"sync"
)

type queuedCall struct {
	cb   Callback
	args []interface{}
}

type emittedEvent struct {
	name string
	args []interface{}
}

// recordingRuntime keeps queued callbacks until run is called.
type recordingRuntime struct {
	mu     sync.Mutex
	queued []queuedCall
	events []emittedEvent
}

func (r *recordingRuntime) Queue(cb Callback, args ...interface{}) {
	r.mu.Lock()
	r.queued = append(r.queued, queuedCall{cb: cb, args: args})
	r.mu.Unlock()
}

func (r *recordingRuntime) Emit(name string, args ...interface{}) {
	r.mu.Lock()
	r.events = append(r.events, emittedEvent{name: name, args: args})
	r.mu.Unlock()
}

// run invokes every queued callback in order.
func (r *recordingRuntime) run() {
	r.mu.Lock()
	queued := r.queued
	r.queued = nil
	r.mu.Unlock()

	for _, q := range queued {
		q.cb(q.args...)
	}
}

func (r *recordingRuntime) emitted() []emittedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]emittedEvent, len(r.events))
	copy(events, r.events)

	return events
}

// callRecorder collects the arguments of every invocation of its callback.
type callRecorder struct {
	calls [][]interface{}
}

func (c *callRecorder) cb() Callback {
	return func(args ...interface{}) {
		c.calls = append(c.calls, args)
	}
}
