package gemini

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
	ProviderName   = "gemini"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.0-flash"
)

// GeminiRequest represents the request body for Gemini's generate content API
type GeminiRequest struct {
	Contents          []GeminiContent          `json:"contents"`
	SystemInstruction *GeminiSystemInstruction `json:"system_instruction,omitempty"`
	GenerationConfig  *GenerationConfig        `json:"generationConfig,omitempty"`
}

// GeminiSystemInstruction represents system instruction for Gemini
type GeminiSystemInstruction struct {
	Parts []GeminiPart `json:"parts"`
}

// GeminiContent represents a content item in the Gemini request format
type GeminiContent struct {
	Role  string       `json:"role,omitempty"` // "user" or "model"
	Parts []GeminiPart `json:"parts"`
}

// GeminiPart represents a part of the content in the Gemini request format
type GeminiPart struct {
	Text string `json:"text"`
}

// GenerationConfig caps and tunes the generated reply
type GenerationConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

// GeminiResponse represents the response from Gemini API
type GeminiResponse struct {
	Candidates []GeminiCandidate `json:"candidates"`
	Error      *GeminiError      `json:"error,omitempty"`
}

// GeminiCandidate represents a candidate in the Gemini response
type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

// GeminiError represents an error body returned by the API
type GeminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Status     string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini API error [%d]: %s (status: %s)", e.StatusCode, e.Message, e.Status)
	}
	return fmt.Sprintf("gemini API error [%d]: %s", e.StatusCode, e.Message)
}

// Config defines the configuration interface for Gemini provider
type Config interface {
	GetModelName() (string, error)
	GetBaseURL(provider string) (string, error)
	GetToken(provider string) (string, error)
	GetMaxTokens() int
	GetTemperature() float64
	GetRequestTimeout() time.Duration
}

// Provider implements autoreply.Completer for the Gemini API
type Provider struct {
	config     Config
	httpClient *http.Client
}

// NewProvider creates a new Gemini provider instance
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

// Complete sends the system instruction and message to generateContent and
// returns the trimmed text of the first candidate
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

	temperature := p.config.GetTemperature()
	reqBody := GeminiRequest{
		Contents: []GeminiContent{
			{Role: "user", Parts: []GeminiPart{{Text: in.Message}}},
		},
		GenerationConfig: &GenerationConfig{
			MaxOutputTokens: p.config.GetMaxTokens(),
			Temperature:     &temperature,
		},
	}
	if in.System != "" {
		reqBody.SystemInstruction = &GeminiSystemInstruction{Parts: []GeminiPart{{Text: in.System}}}
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

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimSuffix(baseURL, "/"), modelName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	var result GeminiResponse
	parseErr := json.Unmarshal(body, &result)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		if parseErr == nil && result.Error != nil {
			apiErr.Message = result.Error.Message
			apiErr.Status = result.Error.Status
		}
		return "", apiErr
	}
	if parseErr != nil {
		return "", fmt.Errorf("error parsing response: %w", parseErr)
	}

	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response: %w", autoreply.ErrEmptyCompletion)
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	reply := strings.TrimSpace(text.String())
	if reply == "" {
		return "", autoreply.ErrEmptyCompletion
	}
	return reply, nil
}

var _ autoreply.Completer = (*Provider)(nil)
