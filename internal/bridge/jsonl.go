package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/akc-copilot3/autoreply/internal/autoreply"
)

// ErrMalformed marks an input record that could not be turned into an event.
// Run reports it and moves on.
var ErrMalformed = errors.New("malformed event")

const maxLineSize = 1 << 20

// JSONLSource reads one JSON event per line.
type JSONLSource struct {
	scanner *bufio.Scanner
	line    int
}

type rawEvent struct {
	ID       string `json:"id"`
	Message  string `json:"message"`
	Sender   string `json:"sender"`
	ChatType string `json:"chat_type"`
}

// NewJSONLSource creates a source reading from r.
func NewJSONLSource(r io.Reader) *JSONLSource {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &JSONLSource{scanner: s}
}

// Next returns the next event. Blank lines are skipped. At end of input it
// returns io.EOF.
func (s *JSONLSource) Next(ctx context.Context) (autoreply.Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return autoreply.Event{}, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return autoreply.Event{}, fmt.Errorf("reading input: %w", err)
			}
			return autoreply.Event{}, io.EOF
		}
		s.line++

		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		return parseEvent(line, s.line)
	}
}

func parseEvent(line string, n int) (autoreply.Event, error) {
	var raw rawEvent
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return autoreply.Event{}, fmt.Errorf("line %d: %w: %v", n, ErrMalformed, err)
	}
	ev, err := EventFrom(raw.Message, raw.Sender, raw.ChatType)
	if err != nil {
		return autoreply.Event{}, fmt.Errorf("line %d: %w", n, err)
	}
	if raw.ID != "" {
		ev.ID = raw.ID
	}
	return ev, nil
}

// EventFrom validates raw fields and builds an event with a fresh ID.
// An empty chat type means a direct conversation.
func EventFrom(message, sender, chatType string) (autoreply.Event, error) {
	if strings.TrimSpace(sender) == "" {
		return autoreply.Event{}, fmt.Errorf("%w: sender is required", ErrMalformed)
	}
	ct := autoreply.ChatDirect
	if chatType != "" {
		parsed, err := autoreply.ParseChatType(chatType)
		if err != nil {
			return autoreply.Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		ct = parsed
	}
	return autoreply.NewEvent(message, sender, ct), nil
}

// JSONLSink writes one JSON outcome per line. It is safe for concurrent use.
type JSONLSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONLSink creates a sink writing to w.
func NewJSONLSink(w io.Writer) *JSONLSink {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLSink{enc: enc}
}

// Send writes o as a single line.
func (s *JSONLSink) Send(o Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(o); err != nil {
		return fmt.Errorf("writing outcome %s: %w", o.ID, err)
	}
	return nil
}
