package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akc-copilot3/autoreply/internal/autoreply"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	baseURL string
	token   string
}

func (c testConfig) GetModelName() (string, error)     { return "gemini-test", nil }
func (c testConfig) GetBaseURL(string) (string, error) { return c.baseURL, nil }
func (c testConfig) GetToken(string) (string, error)   { return c.token, nil }
func (c testConfig) GetMaxTokens() int                 { return 150 }
func (c testConfig) GetTemperature() float64           { return 0.7 }
func (c testConfig) GetRequestTimeout() time.Duration  { return time.Second }

func TestCompleteSendsRequest(t *testing.T) {
	var got GeminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-test:generateContent" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "g-key" {
			http.Error(w, "missing key", http.StatusForbidden)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"你好"},{"text":"呀 "}]}}]}`)
	}))
	defer server.Close()

	p := NewProvider(testConfig{baseURL: server.URL, token: "g-key"}).WithHTTPClient(server.Client())
	text, err := p.Complete(context.Background(), autoreply.CompletionRequest{System: "sys", Message: "在吗"})
	require.NoError(t, err)
	assert.Equal(t, "你好呀", text)

	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "sys", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 1)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "在吗", got.Contents[0].Parts[0].Text)
	require.NotNil(t, got.GenerationConfig)
	assert.Equal(t, 150, got.GenerationConfig.MaxOutputTokens)
}

func TestCompleteErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)
	}))
	defer server.Close()

	p := NewProvider(testConfig{baseURL: server.URL, token: "g-key"}).WithHTTPClient(server.Client())
	_, err := p.Complete(context.Background(), autoreply.CompletionRequest{Message: "hi"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "API key not valid", apiErr.Message)
	assert.Equal(t, "INVALID_ARGUMENT", apiErr.Status)
	assert.False(t, autoreply.IsMisconfigured(err))
}

func TestCompleteNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	defer server.Close()

	p := NewProvider(testConfig{baseURL: server.URL, token: "g-key"}).WithHTTPClient(server.Client())
	_, err := p.Complete(context.Background(), autoreply.CompletionRequest{Message: "hi"})
	assert.ErrorIs(t, err, autoreply.ErrEmptyCompletion)
}

func TestCompleteUnsetToken(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	p := NewProvider(testConfig{baseURL: server.URL, token: "$GEMINI_API_KEY"}).WithHTTPClient(server.Client())
	_, err := p.Complete(context.Background(), autoreply.CompletionRequest{Message: "hi"})
	assert.True(t, autoreply.IsMisconfigured(err))
	assert.False(t, called)
}
