package connectivity

import (
	"context"
	"sync"

	"github.com/the-lightning-land/wifid/eventloop"
	"github.com/the-lightning-land/wifid/network"
)

type State int

const (
	Offline State = iota
	Online
)

func (s State) String() string {
	switch s {
	case Offline:
		return "OFFLINE"
	case Online:
		return "ONLINE"
	default:
		return "INVALID STATE"
	}
}

type Reporter interface {
	CurrentState() State
	WaitForStateChange(context.Context, State) bool
}

// Events is where the reporter learns about the station.
type Events interface {
	On(event string, cb network.Callback) *eventloop.Subscription
}

type Config struct {
	Logger Logger
}

// NetworkReporter is online while the station holds an address.
type NetworkReporter struct {
	log     Logger
	mu      sync.Mutex
	state   State
	changed chan struct{}
	subs    []*eventloop.Subscription
}

var _ Reporter = (*NetworkReporter)(nil)

func NewReporter(config *Config) *NetworkReporter {
	r := &NetworkReporter{
		state:   Offline,
		changed: make(chan struct{}),
	}

	if config.Logger != nil {
		r.log = config.Logger
	} else {
		r.log = noopLogger{}
	}

	return r
}

// Attach follows the connected, disconnected and dhcp_timeout events.
func (r *NetworkReporter) Attach(events Events) {
	online := func(args ...interface{}) { r.SetState(Online) }
	offline := func(args ...interface{}) { r.SetState(Offline) }

	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs = append(r.subs,
		events.On(network.EventConnected, online),
		events.On(network.EventDisconnected, offline),
		events.On(network.EventDHCPTimeout, offline),
	)
}

// Detach stops following events.
func (r *NetworkReporter) Detach() {
	r.mu.Lock()
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

func (r *NetworkReporter) SetState(state State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == state {
		return
	}

	r.log.Infof("Connectivity changed from %v to %v", r.state, state)

	r.state = state
	close(r.changed)
	r.changed = make(chan struct{})
}

func (r *NetworkReporter) CurrentState() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

// WaitForStateChange blocks until the state differs from state. It returns
// false if ctx is done first.
func (r *NetworkReporter) WaitForStateChange(ctx context.Context, state State) bool {
	for {
		r.mu.Lock()
		current := r.state
		changed := r.changed
		r.mu.Unlock()

		if current != state {
			return true
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return false
		}
	}
}
