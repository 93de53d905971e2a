// Package strategy turns incoming chat events into reply decisions.
//
// Every strategy implements Strategy. The set of strategies is closed and
// selected by Kind through New:
//
//	keyword     static keyword table with a chat-type sensitive default
//	ai          one-shot completion, keyword fallback on failure
//	contextual  completion over the sender's recent transcript
//	silent      never replies
//
// Every kind is wrapped in a Suppress decorator carrying the sender denylist
// and banned keywords.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akc-copilot3/autoreply/internal/autoreply"
	"github.com/akc-copilot3/autoreply/internal/autoreply/conversation"
	"github.com/akc-copilot3/autoreply/internal/autoreply/rules"
)

// Strategy produces a reply for one event. ok == false means "send nothing";
// it is a normal outcome, not an error.
type Strategy interface {
	Produce(ctx context.Context, ev autoreply.Event) (reply string, ok bool)
}

// FailureFunc receives completion failures after they have been converted
// to a fallback reply. It must not block.
type FailureFunc func(ev autoreply.Event, err error)

// Kind selects one strategy.
type Kind string

const (
	KindKeyword    Kind = "keyword"
	KindAI         Kind = "ai"
	KindContextual Kind = "contextual"
	KindSilent     Kind = "silent"
)

// Kinds lists every valid Kind.
var Kinds = []Kind{KindKeyword, KindAI, KindContextual, KindSilent}

// ParseKind validates a strategy name from configuration.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	names := make([]string, len(Kinds))
	for i, known := range Kinds {
		names[i] = string(known)
	}
	return "", fmt.Errorf("unknown strategy %q (expected one of: %s)", s, strings.Join(names, ", "))
}

// Deps carries everything New may need. Only the fields used by the selected
// Kind are required.
type Deps struct {
	Rules           *rules.Table
	Completer       autoreply.Completer
	Store           *conversation.Store
	SystemPrompt    string
	ContextMessages int
	NeverReply      []string
	BannedKeywords  []string
	OnFailure       FailureFunc
}

// DefaultContextMessages is the transcript length used when Deps leaves it unset.
const DefaultContextMessages = 6

// New builds the strategy for kind.
func New(kind Kind, deps Deps) (Strategy, error) {
	table := deps.Rules
	if table == nil {
		table = rules.Default()
	}
	keyword := NewKeyword(table)

	var inner Strategy
	switch kind {
	case KindKeyword:
		inner = keyword
	case KindAI:
		if deps.Completer == nil {
			return nil, errors.New("strategy ai requires a completer")
		}
		inner = NewDirectAI(deps.Completer, keyword, deps.SystemPrompt, deps.OnFailure)
	case KindContextual:
		if deps.Completer == nil {
			return nil, errors.New("strategy contextual requires a completer")
		}
		if deps.Store == nil {
			return nil, errors.New("strategy contextual requires a conversation store")
		}
		window := deps.ContextMessages
		if window <= 0 {
			window = DefaultContextMessages
		}
		inner = NewContextualAI(deps.Completer, deps.Store, keyword, deps.SystemPrompt, window, deps.OnFailure)
	case KindSilent:
		inner = nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", kind)
	}

	return NewSuppress(inner, deps.NeverReply, deps.BannedKeywords), nil
}
