package autoreply

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseModelString(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantProvider string
		wantModel    string
		wantErr      bool
	}{
		{
			name:         "valid openai model",
			input:        "openai:gpt-3.5-turbo",
			wantProvider: "openai",
			wantModel:    "gpt-3.5-turbo",
		},
		{
			name:         "model with colon",
			input:        "openai:ft:gpt-3.5-turbo:acme",
			wantProvider: "openai",
			wantModel:    "ft:gpt-3.5-turbo:acme",
		},
		{
			name:         "with whitespace",
			input:        " openai : gpt-4o ",
			wantProvider: "openai",
			wantModel:    "gpt-4o",
		},
		{
			name:    "missing colon",
			input:   "openai-gpt-4",
			wantErr: true,
		},
		{
			name:    "empty provider",
			input:   ":gpt-4",
			wantErr: true,
		},
		{
			name:    "empty model",
			input:   "openai:",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, model, err := ParseModelString(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseModelString() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if provider != tt.wantProvider {
				t.Errorf("ParseModelString() provider = %v, want %v", provider, tt.wantProvider)
			}
			if model != tt.wantModel {
				t.Errorf("ParseModelString() model = %v, want %v", model, tt.wantModel)
			}
		})
	}
}

func TestFormatModelString(t *testing.T) {
	assert.Equal(t, "openai:gpt-4o", FormatModelString("openai", "gpt-4o"))
}

func TestParseChatType(t *testing.T) {
	tests := []struct {
		input   string
		want    ChatType
		wantErr bool
	}{
		{input: "direct", want: ChatDirect},
		{input: "Private", want: ChatDirect},
		{input: "好友", want: ChatDirect},
		{input: "group", want: ChatGroup},
		{input: " 群聊 ", want: ChatGroup},
		{input: "channel", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseChatType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChatTypeLabel(t *testing.T) {
	assert.Equal(t, "群聊", ChatGroup.Label())
	assert.Equal(t, "好友", ChatDirect.Label())
}

func TestNewEventAssignsID(t *testing.T) {
	a := NewEvent("hi", "u1", ChatDirect)
	b := NewEvent("hi", "u1", ChatDirect)

	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.ID[:8], a.GetShortID())
	assert.Equal(t, "abc", Event{ID: "abc"}.GetShortID())
}

func TestIsMisconfigured(t *testing.T) {
	assert.True(t, IsMisconfigured(ErrMissingCredential))
	assert.True(t, IsMisconfigured(fmt.Errorf("openai: %w", ErrMissingCredential)))
	assert.False(t, IsMisconfigured(errors.New("status 500")))
	assert.False(t, IsMisconfigured(nil))
}

func TestIsUnsetCredential(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{token: "", want: true},
		{token: "   ", want: true},
		{token: "$OPENAI_API_KEY", want: true},
		{token: "${GEMINI_API_KEY}", want: true},
		{token: "sk-live", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := IsUnsetCredential(tt.token); got != tt.want {
				t.Errorf("IsUnsetCredential(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}
