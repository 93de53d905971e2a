package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/akc-copilot3/autoreply/internal/autoreply"
)

const (
	ProviderName     = "anthropic"
	DefaultBaseURL   = "https://api.anthropic.com/v1"
	DefaultModel     = "claude-3-5-haiku-latest"
	AnthropicVersion = "2023-06-01"

	// defaultMaxTokens is used when the configuration leaves max_tokens unset;
	// the Messages API requires the field.
	defaultMaxTokens = 150
)

// MessagesAPIRequest represents the request body for Anthropic's Messages API
type MessagesAPIRequest struct {
	Model       string         `json:"model"`
	MaxTokens   int            `json:"max_tokens"`
	System      string         `json:"system,omitempty"`
	Messages    []MessageInput `json:"messages"`
	Temperature *float64       `json:"temperature,omitempty"`
}

// MessageInput represents a message in the conversation
type MessageInput struct {
	Role    string    `json:"role"`    // "user" or "assistant"
	Content []Content `json:"content"` // Array of content blocks
}

// Content represents a text content block
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// MessagesAPIResponse represents the response from Anthropic's Messages API
type MessagesAPIResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Role       string    `json:"role"`
	Content    []Content `json:"content"`
	Model      string    `json:"model"`
	StopReason string    `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("anthropic API error [%d]: %s (type: %s)", e.StatusCode, e.Message, e.Type)
	}
	return fmt.Sprintf("anthropic API error [%d]: %s", e.StatusCode, e.Message)
}

// Config defines the configuration interface for Anthropic provider
type Config interface {
	GetModelName() (string, error)
	GetBaseURL(provider string) (string, error)
	GetToken(provider string) (string, error)
	GetMaxTokens() int
	GetTemperature() float64
	GetRequestTimeout() time.Duration
}

// Provider implements autoreply.Completer for the Anthropic Messages API
type Provider struct {
	config     Config
	httpClient *http.Client
}

// NewProvider creates a new Anthropic provider instance
func NewProvider(config Config) *Provider {
	return &Provider{
		config:     config,
		httpClient: &http.Client{},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (p *Provider) WithHTTPClient(c *http.Client) *Provider {
	p.httpClient = c
	return p
}

// Complete sends one user message with the system prompt and returns the
// concatenated text blocks of the reply
func (p *Provider) Complete(ctx context.Context, in autoreply.CompletionRequest) (string, error) {
	token, err := p.config.GetToken(ProviderName)
	if err != nil || autoreply.IsUnsetCredential(token) {
		return "", fmt.Errorf("%s: %w", ProviderName, autoreply.ErrMissingCredential)
	}
	baseURL, err := p.config.GetBaseURL(ProviderName)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ProviderName, autoreply.ErrMissingCredential)
	}
	modelName, err := p.config.GetModelName()
	if err != nil {
		return "", fmt.Errorf("resolving model: %w", err)
	}

	maxTokens := p.config.GetMaxTokens()
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := p.config.GetTemperature()
	reqBody := MessagesAPIRequest{
		Model:     modelName,
		MaxTokens: maxTokens,
		System:    in.System,
		Messages: []MessageInput{
			{Role: "user", Content: []Content{{Type: "text", Text: in.Message}}},
		},
		Temperature: &temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	if timeout := p.config.GetRequestTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(baseURL, "/")+"/messages", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", token)
	req.Header.Set("anthropic-version", AnthropicVersion)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	var result MessagesAPIResponse
	parseErr := json.Unmarshal(body, &result)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		if parseErr == nil && result.Error != nil {
			apiErr.Message = result.Error.Message
			apiErr.Type = result.Error.Type
		}
		return "", apiErr
	}
	if parseErr != nil {
		return "", fmt.Errorf("error parsing response: %w", parseErr)
	}

	var text strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	reply := strings.TrimSpace(text.String())
	if reply == "" {
		return "", autoreply.ErrEmptyCompletion
	}
	return reply, nil
}

var _ autoreply.Completer = (*Provider)(nil)
