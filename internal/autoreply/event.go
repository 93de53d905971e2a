package autoreply

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ChatType distinguishes one-to-one conversations from group chats.
type ChatType string

const (
	// ChatDirect is a one-to-one conversation with a friend.
	ChatDirect ChatType = "direct"
	// ChatGroup is a group conversation.
	ChatGroup ChatType = "group"
)

// ParseChatType accepts the English names plus the labels the chat client uses.
func ParseChatType(s string) (ChatType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct", "private", "friend", "好友":
		return ChatDirect, nil
	case "group", "群聊":
		return ChatGroup, nil
	default:
		return "", fmt.Errorf("unknown chat type: %q (expected direct or group)", s)
	}
}

// Label returns the name used when describing the chat type to a language model.
func (c ChatType) Label() string {
	if c == ChatGroup {
		return "群聊"
	}
	return "好友"
}

// Event is one incoming message delivered by the chat automation layer.
type Event struct {
	ID       string   `json:"id"`        // Correlation ID (UUID v4), assigned on receipt
	Message  string   `json:"message"`   // Text of the received message
	Sender   string   `json:"sender"`    // Stable identity of the conversation partner
	ChatType ChatType `json:"chat_type"` // direct or group
}

// NewEvent creates an event with a fresh correlation ID.
func NewEvent(message, sender string, chatType ChatType) Event {
	return Event{
		ID:       uuid.New().String(),
		Message:  message,
		Sender:   sender,
		ChatType: chatType,
	}
}

// GetShortID returns the shortened event ID (first 8 characters)
func (e Event) GetShortID() string {
	if len(e.ID) >= 8 {
		return e.ID[:8]
	}
	return e.ID
}
