// Package eventloop is a single execution context for network callbacks and
// named event listeners. Work is queued from any goroutine and run in order on
// the goroutine that called Run.
package eventloop

import (
	"context"
	"sync"

	"github.com/go-errors/errors"
	"github.com/the-lightning-land/wifid/network"
)

// ErrQueueFull is returned by Do when the task queue has no room left.
var ErrQueueFull = errors.New("event queue is full")

// ErrStopped is returned by Do once the loop has been stopped.
var ErrStopped = errors.New("event loop stopped")

const defaultQueueSize = 64

type Config struct {
	// QueueSize is the number of tasks that may wait for the loop. Further
	// tasks are dropped.
	QueueSize int
	Logger    Logger
}

type listener struct {
	id uint32
	cb network.Callback
}

type nextListener struct {
	sync.Mutex
	id uint32
}

// Subscription is a registered event listener.
type Subscription struct {
	Id     uint32
	Cancel func()
}

type Loop struct {
	log   Logger
	tasks chan func()
	done  chan struct{}
	once  sync.Once

	listenersMu  sync.Mutex
	listeners    map[string][]listener
	nextListener nextListener
}

// Compile time check for protocol compatibility
var _ network.Runtime = (*Loop)(nil)

func New(config *Config) *Loop {
	size := config.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}

	l := &Loop{
		tasks:     make(chan func(), size),
		done:      make(chan struct{}),
		listeners: make(map[string][]listener),
	}

	if config.Logger != nil {
		l.log = config.Logger
	} else {
		l.log = noopLogger{}
	}

	return l
}

// Run executes queued tasks until Stop is called.
func (l *Loop) Run() {
	for {
		select {
		case task := <-l.tasks:
			l.run(task)
		case <-l.done:
			return
		}
	}
}

func (l *Loop) Stop() {
	l.once.Do(func() {
		close(l.done)
	})
}

func (l *Loop) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Errorf("Recovered from panic in task: %v", r)
		}
	}()

	task()
}

func (l *Loop) post(task func()) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}

	select {
	case l.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Queue schedules cb. It never blocks; when the queue is full the callback
// is dropped.
func (l *Loop) Queue(cb network.Callback, args ...interface{}) {
	err := l.post(func() {
		cb(args...)
	})
	if err != nil {
		l.log.Errorf("Dropping callback: %v", err)
	}
}

// Emit schedules the listeners of event. It never blocks; when the queue is
// full the event is dropped.
func (l *Loop) Emit(event string, args ...interface{}) {
	err := l.post(func() {
		l.dispatch(event, args)
	})
	if err != nil {
		l.log.Errorf("Dropping %v event: %v", event, err)
	}
}

func (l *Loop) dispatch(event string, args []interface{}) {
	l.listenersMu.Lock()
	listeners := make([]listener, len(l.listeners[event]))
	copy(listeners, l.listeners[event])
	l.listenersMu.Unlock()

	l.log.Debugf("Dispatching %v to %d listeners", event, len(listeners))

	for _, listener := range listeners {
		listener.cb(args...)
	}
}

// On registers cb for event. Listeners run on the loop in registration order.
func (l *Loop) On(event string, cb network.Callback) *Subscription {
	l.nextListener.Lock()
	id := l.nextListener.id
	l.nextListener.id++
	l.nextListener.Unlock()

	l.listenersMu.Lock()
	l.listeners[event] = append(l.listeners[event], listener{id: id, cb: cb})
	l.listenersMu.Unlock()

	return &Subscription{
		Id: id,
		Cancel: func() {
			l.off(event, id)
		},
	}
}

func (l *Loop) off(event string, id uint32) {
	l.listenersMu.Lock()
	defer l.listenersMu.Unlock()

	listeners := l.listeners[event]
	for i := range listeners {
		if listeners[i].id == id {
			l.listeners[event] = append(listeners[:i:i], listeners[i+1:]...)
			break
		}
	}

	if len(l.listeners[event]) == 0 {
		delete(l.listeners, event)
	}
}

// Do runs fn on the loop and waits for it to return. It must not be called
// from a task running on the loop.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})

	err := l.post(func() {
		defer close(finished)
		fn()
	})
	if err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
}
