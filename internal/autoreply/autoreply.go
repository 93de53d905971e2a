// Package autoreply provides the core abstractions shared by the reply strategies.
// It defines the inbound Event delivered by the chat automation layer and the
// Completer interface that text-generation backends (openai, gemini, anthropic) implement.
package autoreply

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingCredential is returned by a Completer whose API credential is unset
// or still the placeholder value. It never goes away for the life of the process.
var ErrMissingCredential = errors.New("api credential is not configured")

// ErrEmptyCompletion is returned when the service answered but produced no text.
var ErrEmptyCompletion = errors.New("completion contained no text")

// CompletionRequest is a single system+user exchange sent to a text-generation service.
type CompletionRequest struct {
	System  string // System instruction, including any templated context
	Message string // The user's message, passed through untouched
}

// Completer defines the interface for text-generation backends.
//
// Example usage:
//
//	completer := openai.NewProvider(cfg)
//	text, err := completer.Complete(ctx, autoreply.CompletionRequest{System: sys, Message: "你好"})
type Completer interface {
	// Complete returns the trimmed generated text, or an error for any
	// non-success outcome (status, transport, timeout, missing credential).
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// IsMisconfigured reports whether err marks a permanent configuration problem
// rather than a transient service failure.
func IsMisconfigured(err error) bool {
	return errors.Is(err, ErrMissingCredential)
}

// IsUnsetCredential reports whether token is empty or an environment
// reference that was never expanded.
func IsUnsetCredential(token string) bool {
	token = strings.TrimSpace(token)
	return token == "" || strings.HasPrefix(token, "$")
}

// ParseModelString parses a model string in "provider:model" format.
// Returns (provider, model, error).
//
// Example:
//
//	provider, model, err := ParseModelString("openai:gpt-3.5-turbo")
//	// provider = "openai", model = "gpt-3.5-turbo"
func ParseModelString(modelStr string) (string, string, error) {
	parts := strings.SplitN(modelStr, ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid model format: %s (expected format: provider:model, e.g., openai:gpt-3.5-turbo)", modelStr)
	}

	provider := strings.TrimSpace(parts[0])
	model := strings.TrimSpace(parts[1])

	if provider == "" || model == "" {
		return "", "", fmt.Errorf("provider and model cannot be empty")
	}

	return provider, model, nil
}

// FormatModelString formats provider and model into "provider:model" format.
func FormatModelString(provider, model string) string {
	return fmt.Sprintf("%s:%s", provider, model)
}
