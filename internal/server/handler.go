// Package server exposes the reply dispatcher over HTTP.
package server

import (
	"net/http"
	"strconv"

	"github.com/akc-copilot3/autoreply/internal/autoreply/conversation"
	"github.com/akc-copilot3/autoreply/internal/autoreply/strategy"
	"github.com/akc-copilot3/autoreply/internal/bridge"
	"github.com/akc-copilot3/autoreply/internal/version"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handler handles HTTP requests.
type Handler struct {
	dispatcher *strategy.Dispatcher
	store      *conversation.Store
	logger     *zap.Logger
}

// NewHandler creates a new handler. store may be nil when the configured
// strategy keeps no history.
func NewHandler(dispatcher *strategy.Dispatcher, store *conversation.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		dispatcher: dispatcher,
		store:      store,
		logger:     logger,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/reply", h.Reply)
	e.GET("/v1/conversations", h.ListConversations)
	e.GET("/v1/conversations/:sender", h.GetConversation)
	e.GET("/health", h.Health)
}

// ReplyRequest is one incoming message.
type ReplyRequest struct {
	Message  string `json:"message"`
	Sender   string `json:"sender"`
	ChatType string `json:"chat_type"`
}

// ReplyResponse carries the decision for one message.
type ReplyResponse struct {
	ID    string `json:"id"`
	Reply string `json:"reply"`
	Send  bool   `json:"send"`
}

// Reply decides the reply for one message.
// POST /v1/reply
func (h *Handler) Reply(c echo.Context) error {
	var req ReplyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ev, err := bridge.EventFrom(req.Message, req.Sender, req.ChatType)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	reply, ok := h.dispatcher.Dispatch(c.Request().Context(), ev)
	h.logger.Debug("reply decided",
		zap.String("event", ev.GetShortID()),
		zap.String("sender", ev.Sender),
		zap.String("chat_type", string(ev.ChatType)),
		zap.Bool("send", ok),
	)

	return c.JSON(http.StatusOK, ReplyResponse{ID: ev.ID, Reply: reply, Send: ok})
}

// ListConversations lists every sender with retained history.
// GET /v1/conversations
func (h *Handler) ListConversations(c echo.Context) error {
	senders := []string{}
	if h.store != nil {
		senders = h.store.Senders()
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"senders": senders,
	})
}

// GetConversation returns the retained window for one sender.
// GET /v1/conversations/:sender?limit=N
func (h *Handler) GetConversation(c echo.Context) error {
	sender := c.Param("sender")

	limit := conversation.MaxHistory
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
		}
		limit = n
	}

	entries := []conversation.Entry{}
	if h.store != nil {
		entries = h.store.Recent(sender, limit)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"sender":   sender,
		"strategy": h.dispatcher.Kind(),
		"entries":  entries,
	})
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":   "healthy",
		"version":  version.Short(),
		"strategy": string(h.dispatcher.Kind()),
	})
}
