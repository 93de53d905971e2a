// Package conversation keeps a bounded, per-sender window of recent dialogue turns.
package conversation

import (
	"sort"
	"sync"
	"time"
)

// MaxHistory is the number of entries retained per sender.
const MaxHistory = 20

// Role identifies who produced a turn.
type Role string

const (
	// RoleUser denotes a message received from the sender.
	RoleUser Role = "user"
	// RoleAssistant denotes a reply produced by us.
	RoleAssistant Role = "assistant"
)

// Entry represents a single turn in a conversation.
type Entry struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// history is the sliding window for one sender.
type history struct {
	mu      sync.Mutex
	entries []Entry
}

// Store maps sender identities to their conversation window.
// It is safe for concurrent use; locking is per sender.
type Store struct {
	mu        sync.RWMutex
	histories map[string]*history
	now       func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		histories: make(map[string]*history),
		now:       time.Now,
	}
}

func (s *Store) get(sender string) (*history, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.histories[sender]
	return h, ok
}

func (s *Store) getOrCreate(sender string) *history {
	if h, ok := s.get(sender); ok {
		return h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.histories[sender]; ok {
		return h
	}
	h := &history{}
	s.histories[sender] = h
	return h
}

// Append adds a new entry at the tail of the sender's history, dropping the
// oldest entries so that at most MaxHistory remain.
func (s *Store) Append(sender, content string, role Role) {
	h := s.getOrCreate(sender)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, Entry{
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	})
	if over := len(h.entries) - MaxHistory; over > 0 {
		// Copy down so the backing array does not grow without bound.
		h.entries = append(h.entries[:0:0], h.entries[over:]...)
	}
}

// Recent returns up to limit of the sender's most recent entries, oldest first.
// Unknown senders yield an empty slice.
func (s *Store) Recent(sender string, limit int) []Entry {
	if limit <= 0 {
		return []Entry{}
	}
	h, ok := s.get(sender)
	if !ok {
		return []Entry{}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	start := len(h.entries) - limit
	if start < 0 {
		start = 0
	}
	out := make([]Entry, len(h.entries)-start)
	copy(out, h.entries[start:])
	return out
}

// Len returns the number of entries stored for the sender.
func (s *Store) Len(sender string) int {
	h, ok := s.get(sender)
	if !ok {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Senders returns every sender with a history, sorted.
func (s *Store) Senders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	senders := make([]string, 0, len(s.histories))
	for sender := range s.histories {
		senders = append(senders, sender)
	}
	sort.Strings(senders)
	return senders
}
