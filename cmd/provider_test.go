package cmd

import (
	"context"
	"testing"

	"github.com/akc-copilot3/autoreply/internal/anthropic"
	"github.com/akc-copilot3/autoreply/internal/autoreply"
	"github.com/akc-copilot3/autoreply/internal/autoreply/config"
	"github.com/akc-copilot3/autoreply/internal/autoreply/strategy"
	"github.com/akc-copilot3/autoreply/internal/gemini"
	"github.com/akc-copilot3/autoreply/internal/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewCompleter(t *testing.T) {
	tests := []struct {
		model   string
		want    any
		wantErr bool
	}{
		{model: "openai:gpt-3.5-turbo", want: &openai.Provider{}},
		{model: "gemini:gemini-2.0-flash", want: &gemini.Provider{}},
		{model: "anthropic:claude-3-5-haiku-latest", want: &anthropic.Provider{}},
		{model: "mistral:small", wantErr: true},
		{model: "gpt-4o", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			cfg := config.NewDefaultConfig()
			cfg.Model = tt.model
			c, err := newCompleter(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, c)
		})
	}
}

func TestNewDispatcher(t *testing.T) {
	tests := []struct {
		strategy  string
		wantStore bool
		wantErr   bool
	}{
		{strategy: "keyword"},
		{strategy: "ai"},
		{strategy: "contextual", wantStore: true},
		{strategy: "silent"},
		{strategy: "random", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			cfg := config.NewDefaultConfig()
			cfg.Strategy = tt.strategy
			d, store, err := newDispatcher(cfg, zap.NewNop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strategy.Kind(tt.strategy), d.Kind())
			assert.Equal(t, tt.wantStore, store != nil)
		})
	}
}

func TestNewDispatcherMissingRulesFile(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.RulesFile = "/nonexistent/rules.toml"
	_, _, err := newDispatcher(cfg, zap.NewNop())
	assert.ErrorContains(t, err, "loading rules")
}

func TestDispatcherWithoutCredentialFallsBack(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Strategy = "ai"
	cfg.OpenAIToken = openai.PlaceholderToken

	d, _, err := newDispatcher(cfg, zap.NewNop())
	require.NoError(t, err)

	reply, ok := d.Dispatch(context.Background(), autoreply.NewEvent("谢谢", "u1", autoreply.ChatDirect))
	require.True(t, ok)
	assert.Equal(t, "不客气 u1！很高兴能帮到你 😄", reply)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "********", maskToken("short"))
	assert.Equal(t, "sk-a...wxyz", maskToken("sk-abcdefghijklmnopqrstuvwxyz"))
}

func TestConfigValuesCoverFields(t *testing.T) {
	values := configValues(config.NewDefaultConfig())
	names := make([]string, len(values))
	for i, kv := range values {
		names[i] = kv[0]
	}
	for _, field := range []string{"model", "openai_token", "strategy", "max_pages", "scroll_delay"} {
		assert.Contains(t, names, field)
	}
	for _, kv := range values {
		if kv[0] == "openai_token" {
			assert.NotContains(t, kv[1], "OPENAI_API_KEY")
		}
	}
}
