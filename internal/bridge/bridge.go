// Package bridge connects a stream of incoming chat events to the reply
// dispatcher and forwards every decision to a sink.
//
// Events are consumed in sweeps. A sweep takes the events already waiting,
// up to MaxPages of them, dispatches them concurrently (events from one
// sender still run in arrival order) and writes the outcomes in input order.
// Between sweeps the loop pauses for ScrollDelay.
package bridge

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/akc-copilot3/autoreply/internal/autoreply"
	"golang.org/x/sync/errgroup"
)

// Source yields incoming events. Next returns io.EOF when no more events
// will arrive. Errors wrapping ErrMalformed are skipped by Run.
type Source interface {
	Next(ctx context.Context) (autoreply.Event, error)
}

// Sink receives one outcome per dispatched event.
type Sink interface {
	Send(o Outcome) error
}

// Dispatcher decides the reply for one event.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev autoreply.Event) (string, bool)
}

// Outcome is the decision for one event.
type Outcome struct {
	ID     string `json:"id"`
	Sender string `json:"sender"`
	Reply  string `json:"reply,omitempty"`
	Send   bool   `json:"send"`
}

// Options controls the sweep loop.
type Options struct {
	MaxPages    int           // Events per sweep; values below 1 mean 1
	ScrollDelay time.Duration // Pause between sweeps
	Duration    time.Duration // Total run time; 0 = until the source ends

	OnMalformed func(err error)
	OnOutcome   func(ev autoreply.Event, o Outcome)
}

// Stats summarizes a finished run.
type Stats struct {
	Sweeps    int
	Events    int
	Replies   int
	Malformed int
}

type item struct {
	ev  autoreply.Event
	err error
}

// Run consumes src until it is exhausted, Duration elapses or ctx is
// cancelled. Reaching any of these ends the run without error; only sink
// failures and unrecoverable source errors are returned.
func Run(ctx context.Context, src Source, sink Sink, d Dispatcher, opts Options) (Stats, error) {
	if opts.MaxPages < 1 {
		opts.MaxPages = 1
	}
	if opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	items := make(chan item, opts.MaxPages)
	go read(readCtx, src, items)

	var stats Stats
	for {
		batch, open, err := collect(ctx, items, opts.MaxPages, &stats, opts.OnMalformed)
		if err != nil {
			return stats, err
		}
		if len(batch) > 0 {
			stats.Sweeps++
			if err := sweep(ctx, batch, sink, d, &stats, opts.OnOutcome); err != nil {
				return stats, err
			}
		}
		if !open || ctx.Err() != nil {
			return stats, nil
		}
		if len(batch) > 0 && !pause(ctx, opts.ScrollDelay) {
			return stats, nil
		}
	}
}

func read(ctx context.Context, src Source, out chan<- item) {
	defer close(out)
	for {
		ev, err := src.Next(ctx)
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			return
		}
		select {
		case out <- item{ev: ev, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil && !errors.Is(err, ErrMalformed) {
			return
		}
	}
}

// collect blocks for the first event of a sweep, then takes whatever else is
// already queued up to limit. The bool reports whether the source may still
// produce events.
func collect(ctx context.Context, items <-chan item, limit int, stats *Stats, onMalformed func(error)) ([]autoreply.Event, bool, error) {
	var batch []autoreply.Event

	accept := func(it item) error {
		if it.err == nil {
			batch = append(batch, it.ev)
			return nil
		}
		if errors.Is(it.err, ErrMalformed) {
			stats.Malformed++
			if onMalformed != nil {
				onMalformed(it.err)
			}
			return nil
		}
		return it.err
	}

	for len(batch) == 0 {
		select {
		case <-ctx.Done():
			return nil, false, nil
		case it, ok := <-items:
			if !ok {
				return nil, false, nil
			}
			if err := accept(it); err != nil {
				return nil, false, err
			}
		}
	}

	for len(batch) < limit {
		select {
		case it, ok := <-items:
			if !ok {
				return batch, false, nil
			}
			if err := accept(it); err != nil {
				return batch, false, err
			}
		default:
			return batch, true, nil
		}
	}
	return batch, true, nil
}

func sweep(ctx context.Context, batch []autoreply.Event, sink Sink, d Dispatcher, stats *Stats, onOutcome func(autoreply.Event, Outcome)) error {
	outcomes := make([]Outcome, len(batch))

	bySender := make(map[string][]int)
	var senders []string
	for i, ev := range batch {
		if _, ok := bySender[ev.Sender]; !ok {
			senders = append(senders, ev.Sender)
		}
		bySender[ev.Sender] = append(bySender[ev.Sender], i)
	}

	var g errgroup.Group
	for _, sender := range senders {
		g.Go(func() error {
			for _, i := range bySender[sender] {
				ev := batch[i]
				reply, ok := d.Dispatch(ctx, ev)
				outcomes[i] = Outcome{ID: ev.ID, Sender: ev.Sender, Reply: reply, Send: ok}
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, o := range outcomes {
		stats.Events++
		if o.Send {
			stats.Replies++
		}
		if onOutcome != nil {
			onOutcome(batch[i], o)
		}
		if err := sink.Send(o); err != nil {
			return err
		}
	}
	return nil
}

func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
