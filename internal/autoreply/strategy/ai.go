package strategy

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/akc-copilot3/autoreply/internal/autoreply"
	"github.com/akc-copilot3/autoreply/internal/autoreply/conversation"
)

// completion wraps a Completer with the failure bookkeeping shared by the AI strategies.
type completion struct {
	completer autoreply.Completer
	system    string
	onFailure FailureFunc
	// disabled is set once the completer reports a missing credential;
	// that condition holds for the rest of the process.
	disabled atomic.Bool
}

func (c *completion) complete(ctx context.Context, ev autoreply.Event, extra string) (string, error) {
	if c.disabled.Load() {
		return "", autoreply.ErrMissingCredential
	}

	system := c.system
	if extra != "" {
		system = strings.TrimSpace(system + extra)
	}
	text, err := c.completer.Complete(ctx, autoreply.CompletionRequest{System: system, Message: ev.Message})
	if err == nil && strings.TrimSpace(text) == "" {
		err = autoreply.ErrEmptyCompletion
	}
	if err != nil {
		if autoreply.IsMisconfigured(err) {
			c.disabled.Store(true)
		}
		if c.onFailure != nil {
			c.onFailure(ev, err)
		}
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// DirectAI asks the completion service for a reply to the single message.
// Any failure falls back to the keyword strategy.
type DirectAI struct {
	ai       completion
	fallback *Keyword
}

// NewDirectAI creates a DirectAI strategy.
func NewDirectAI(completer autoreply.Completer, fallback *Keyword, systemPrompt string, onFailure FailureFunc) *DirectAI {
	s := &DirectAI{fallback: fallback}
	s.ai.completer = completer
	s.ai.system = systemPrompt
	s.ai.onFailure = onFailure
	return s
}

// Produce always returns a reply.
func (s *DirectAI) Produce(ctx context.Context, ev autoreply.Event) (string, bool) {
	text, err := s.ai.complete(ctx, ev, directContext(ev))
	if err != nil {
		return s.fallback.Reply(ev), true
	}
	return text, true
}

func directContext(ev autoreply.Event) string {
	return fmt.Sprintf("发送者：%s，聊天类型：%s。请根据消息内容生成合适的回复。", ev.Sender, ev.ChatType.Label())
}

// ContextualAI sends the sender's recent transcript along with the message and
// records both turns in the conversation store.
type ContextualAI struct {
	ai       completion
	store    *conversation.Store
	fallback *Keyword
	window   int
}

// NewContextualAI creates a ContextualAI strategy that sends the last window entries.
func NewContextualAI(completer autoreply.Completer, store *conversation.Store, fallback *Keyword, systemPrompt string, window int, onFailure FailureFunc) *ContextualAI {
	s := &ContextualAI{store: store, fallback: fallback, window: window}
	s.ai.completer = completer
	s.ai.system = systemPrompt
	s.ai.onFailure = onFailure
	return s
}

// Produce appends the user turn, asks for a reply, and appends whichever reply
// is returned (generated or fallback) as the assistant turn.
func (s *ContextualAI) Produce(ctx context.Context, ev autoreply.Event) (string, bool) {
	s.store.Append(ev.Sender, ev.Message, conversation.RoleUser)
	transcript := FormatTranscript(s.store.Recent(ev.Sender, s.window))

	reply, err := s.ai.complete(ctx, ev, contextualContext(ev, transcript))
	if err != nil {
		reply = s.fallback.Reply(ev)
	}

	s.store.Append(ev.Sender, reply, conversation.RoleAssistant)
	return reply, true
}

// FormatTranscript renders entries as "role: content" lines, oldest first.
func FormatTranscript(entries []conversation.Entry) string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%s: %s", e.Role, e.Content)
	}
	return strings.Join(lines, "\n")
}

func contextualContext(ev autoreply.Event, transcript string) string {
	return fmt.Sprintf("对话历史：\n%s\n\n当前发送者：%s，聊天类型：%s。请根据对话历史生成合适的回复。", transcript, ev.Sender, ev.ChatType.Label())
}

var (
	_ Strategy = (*DirectAI)(nil)
	_ Strategy = (*ContextualAI)(nil)
)
