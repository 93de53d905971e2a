package strategy

import (
	"context"
	"strings"
	"sync"

	"github.com/akc-copilot3/autoreply/internal/autoreply"
)

// Dispatcher runs one strategy for every event, serializing events from the
// same sender. Events from different senders may run concurrently.
type Dispatcher struct {
	kind     Kind
	strategy Strategy

	mu    sync.Mutex
	locks map[string]*senderLock
}

type senderLock struct {
	mu   sync.Mutex
	refs int
}

// NewDispatcher creates a dispatcher for the strategy built from kind.
func NewDispatcher(kind Kind, strategy Strategy) *Dispatcher {
	return &Dispatcher{
		kind:     kind,
		strategy: strategy,
		locks:    make(map[string]*senderLock),
	}
}

// Kind returns the configured strategy kind.
func (d *Dispatcher) Kind() Kind {
	return d.kind
}

// Dispatch produces the reply for ev. A blank reply is treated as no reply.
func (d *Dispatcher) Dispatch(ctx context.Context, ev autoreply.Event) (string, bool) {
	unlock := d.lock(ev.Sender)
	defer unlock()

	reply, ok := d.strategy.Produce(ctx, ev)
	if !ok || strings.TrimSpace(reply) == "" {
		return "", false
	}
	return reply, true
}

func (d *Dispatcher) lock(sender string) func() {
	d.mu.Lock()
	l, ok := d.locks[sender]
	if !ok {
		l = &senderLock{}
		d.locks[sender] = l
	}
	l.refs++
	d.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		d.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(d.locks, sender)
		}
		d.mu.Unlock()
	}
}
