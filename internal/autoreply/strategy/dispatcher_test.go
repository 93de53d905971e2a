package strategy

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akc-copilot3/autoreply/internal/autoreply"
	"github.com/akc-copilot3/autoreply/internal/autoreply/conversation"
	"github.com/akc-copilot3/autoreply/internal/autoreply/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchBlankReplyIsNoReply(t *testing.T) {
	d := NewDispatcher(KindKeyword, &staticStrategy{reply: "  ", ok: true})
	_, ok := d.Dispatch(context.Background(), event("hi", "u1", autoreply.ChatDirect))
	assert.False(t, ok)
}

func TestDispatchPassesReply(t *testing.T) {
	d := NewDispatcher(KindKeyword, NewKeyword(rules.Default()))
	reply, ok := d.Dispatch(context.Background(), event("你好", "u1", autoreply.ChatDirect))
	require.True(t, ok)
	assert.Equal(t, "你好 u1！很高兴收到你的消息 😊", reply)
	assert.Equal(t, KindKeyword, d.Kind())
}

// trackingStrategy records the peak number of concurrent calls per sender and overall.
type trackingStrategy struct {
	mu        sync.Mutex
	active    map[string]int
	maxSender int
	total     atomic.Int32
	maxTotal  atomic.Int32
}

func (s *trackingStrategy) Produce(_ context.Context, ev autoreply.Event) (string, bool) {
	s.mu.Lock()
	s.active[ev.Sender]++
	if s.active[ev.Sender] > s.maxSender {
		s.maxSender = s.active[ev.Sender]
	}
	s.mu.Unlock()

	n := s.total.Add(1)
	for {
		peak := s.maxTotal.Load()
		if n <= peak || s.maxTotal.CompareAndSwap(peak, n) {
			break
		}
	}

	time.Sleep(10 * time.Millisecond)

	s.total.Add(-1)
	s.mu.Lock()
	s.active[ev.Sender]--
	s.mu.Unlock()
	return "ok", true
}

func TestDispatchSerializesPerSender(t *testing.T) {
	ts := &trackingStrategy{active: make(map[string]int)}
	d := NewDispatcher(KindKeyword, ts)

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d.Dispatch(context.Background(), event("m", fmt.Sprintf("s%d", i%3), autoreply.ChatDirect))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ts.maxSender, "one sender never runs twice at once")
	assert.Greater(t, ts.maxTotal.Load(), int32(1), "different senders run concurrently")
	assert.Empty(t, d.locks, "sender locks are released")
}

func TestDispatchContextualConcurrentPairs(t *testing.T) {
	store := conversation.NewStore()
	s, err := New(KindContextual, Deps{Completer: &fakeCompleter{reply: "ok"}, Store: store})
	require.NoError(t, err)
	d := NewDispatcher(KindContextual, s)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d.Dispatch(context.Background(), event(fmt.Sprintf("m%d", i), "u1", autoreply.ChatDirect))
		}(i)
	}
	wg.Wait()

	entries := store.Recent("u1", conversation.MaxHistory)
	require.Len(t, entries, conversation.MaxHistory)
	for i := 0; i < len(entries); i += 2 {
		assert.Equal(t, conversation.RoleUser, entries[i].Role)
		assert.Equal(t, conversation.RoleAssistant, entries[i+1].Role)
	}
}
