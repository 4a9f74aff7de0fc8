package network

import "sync"

// pending holds at most one callback waiting for an operation to complete.
// Every method is atomic with respect to the others, so a callback is handed
// out by take at most once.
type pending struct {
	mu sync.Mutex
	cb Callback
}

// register replaces the held callback with cb. The previous callback, if
// any, is dropped without being invoked.
func (p *pending) register(cb Callback) {
	p.mu.Lock()
	p.cb = cb
	p.mu.Unlock()
}

// take returns the held callback and empties the slot.
func (p *pending) take() Callback {
	p.mu.Lock()
	defer p.mu.Unlock()

	cb := p.cb
	p.cb = nil

	return cb
}

func (p *pending) clear() {
	p.register(nil)
}

func (p *pending) isSet() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.cb != nil
}
