package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akc-copilot3/autoreply/internal/autoreply"
	"github.com/akc-copilot3/autoreply/internal/autoreply/conversation"
	"github.com/akc-copilot3/autoreply/internal/autoreply/strategy"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cannedCompleter struct{ reply string }

func (c cannedCompleter) Complete(context.Context, autoreply.CompletionRequest) (string, error) {
	return c.reply, nil
}

func newTestHandler(t *testing.T, kind strategy.Kind) (*Handler, *conversation.Store) {
	t.Helper()
	store := conversation.NewStore()
	s, err := strategy.New(kind, strategy.Deps{
		Completer:  cannedCompleter{reply: "好的"},
		Store:      store,
		NeverReply: []string{"微信团队"},
	})
	require.NoError(t, err)
	return NewHandler(strategy.NewDispatcher(kind, s), store, zap.NewNop()), store
}

func postReply(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/reply", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Reply(c))
	return rec
}

func TestReplyValidation(t *testing.T) {
	h, _ := newTestHandler(t, strategy.KindKeyword)

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{"message":`},
		{name: "missing sender", body: `{"message":"你好"}`},
		{name: "unknown chat type", body: `{"message":"你好","sender":"u1","chat_type":"channel"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postReply(t, h, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestReplyKeyword(t *testing.T) {
	h, _ := newTestHandler(t, strategy.KindKeyword)

	rec := postReply(t, h, `{"message":"谢谢","sender":"u1","chat_type":"direct"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReplyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Send)
	assert.Equal(t, "不客气 u1！很高兴能帮到你 😄", resp.Reply)
	assert.NotEmpty(t, resp.ID)
}

func TestReplySuppressed(t *testing.T) {
	h, _ := newTestHandler(t, strategy.KindKeyword)

	rec := postReply(t, h, `{"message":"你好","sender":"微信团队"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReplyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Send)
	assert.Empty(t, resp.Reply)
}

func TestGetConversation(t *testing.T) {
	h, store := newTestHandler(t, strategy.KindContextual)
	postReply(t, h, `{"message":"在吗","sender":"u1","chat_type":"group"}`)
	require.Equal(t, 2, store.Len("u1"))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/conversations/u1?limit=1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("sender")
	c.SetParamValues("u1")

	require.NoError(t, h.GetConversation(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Sender   string               `json:"sender"`
		Strategy string               `json:"strategy"`
		Entries  []conversation.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.Sender)
	assert.Equal(t, "contextual", resp.Strategy)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, conversation.RoleAssistant, resp.Entries[0].Role)
	assert.Equal(t, "好的", resp.Entries[0].Content)
}

func TestGetConversationBadLimit(t *testing.T) {
	h, _ := newTestHandler(t, strategy.KindKeyword)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/conversations/u1?limit=-2", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("sender")
	c.SetParamValues("u1")

	require.NoError(t, h.GetConversation(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoutes(t *testing.T) {
	h, _ := newTestHandler(t, strategy.KindContextual)
	e := New(h, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/v1/reply", bytes.NewBufferString(`{"message":"hi","sender":"u9"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/conversations", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"senders":["u9"]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestServeStopsOnCancel(t *testing.T) {
	h, _ := newTestHandler(t, strategy.KindSilent)
	e := New(h, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, e, "127.0.0.1:0") }()
	cancel()

	assert.NoError(t, <-done)
}
