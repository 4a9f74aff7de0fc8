// Package network adapts a vendor Wi-Fi driver to a scripting runtime. It owns
// the single event handler registered with the driver, turns vendor events
// into named events carrying flat records and resolves at most one pending
// callback per asynchronous operation kind.
package network

// Callback is a runtime function value. Adapter callbacks receive either no
// argument, nil for success, or a single result value.
type Callback func(args ...interface{})

// Runtime is the execution context that owns callbacks and event listeners.
// Both methods must not block: the adapter calls them from the driver's event
// goroutine.
type Runtime interface {
	// Queue schedules cb to be invoked with args on the runtime's context.
	Queue(cb Callback, args ...interface{})
	// Emit publishes a named event to the runtime's listeners.
	Emit(event string, args ...interface{})
}
