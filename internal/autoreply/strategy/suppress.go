package strategy

import (
	"context"
	"strings"

	"github.com/akc-copilot3/autoreply/internal/autoreply"
)

// Suppress withholds replies to denylisted senders and to messages containing
// a banned substring, delegating everything else to next. A nil next
// suppresses every event.
type Suppress struct {
	next     Strategy
	denylist map[string]struct{}
	banned   []string
}

// NewSuppress wraps next. Empty banned entries are ignored.
func NewSuppress(next Strategy, denylist, banned []string) *Suppress {
	s := &Suppress{
		next:     next,
		denylist: make(map[string]struct{}, len(denylist)),
	}
	for _, sender := range denylist {
		s.denylist[sender] = struct{}{}
	}
	for _, b := range banned {
		if b != "" {
			s.banned = append(s.banned, b)
		}
	}
	return s
}

// Produce returns ("", false) for suppressed events.
func (s *Suppress) Produce(ctx context.Context, ev autoreply.Event) (string, bool) {
	if s.Suppressed(ev) {
		return "", false
	}
	return s.next.Produce(ctx, ev)
}

// Suppressed reports whether ev would be withheld.
func (s *Suppress) Suppressed(ev autoreply.Event) bool {
	if s.next == nil {
		return true
	}
	if _, ok := s.denylist[ev.Sender]; ok {
		return true
	}
	for _, b := range s.banned {
		if strings.Contains(ev.Message, b) {
			return true
		}
	}
	return false
}

var _ Strategy = (*Suppress)(nil)
