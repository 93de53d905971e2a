package strategy

import (
	"context"
	"time"

	"github.com/akc-copilot3/autoreply/internal/autoreply"
	"github.com/akc-copilot3/autoreply/internal/autoreply/rules"
)

// Keyword replies from a static keyword table. It never suppresses and never fails.
type Keyword struct {
	table *rules.Table
	now   func() time.Time
}

// NewKeyword creates a keyword strategy over table. Empty chat-type defaults
// are taken from the built-in table.
func NewKeyword(table *rules.Table) *Keyword {
	t := *table
	builtin := rules.Default()
	if t.GroupDefault == "" {
		t.GroupDefault = builtin.GroupDefault
	}
	if t.DirectDefault == "" {
		t.DirectDefault = builtin.DirectDefault
	}
	return &Keyword{table: &t, now: time.Now}
}

// Produce returns the reply of the first rule whose keyword occurs in the
// message, or the chat-type default when nothing matches.
func (k *Keyword) Produce(_ context.Context, ev autoreply.Event) (string, bool) {
	return k.Reply(ev), true
}

// Reply is Produce without the context, for callers that need a fallback.
func (k *Keyword) Reply(ev autoreply.Event) string {
	vars := rules.Vars{Sender: ev.Sender, Message: ev.Message, Now: k.now()}

	if r, ok := k.table.Match(ev.Message); ok {
		return rules.Render(r.Reply, vars)
	}
	if ev.ChatType == autoreply.ChatGroup {
		return rules.Render(k.table.GroupDefault, vars)
	}
	return rules.Render(k.table.DirectDefault, vars)
}

var _ Strategy = (*Keyword)(nil)
