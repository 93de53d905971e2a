package config

import (
	"fmt"
	"time"

	"github.com/akc-copilot3/autoreply/internal/autoreply"
	"github.com/spf13/viper"
)

// DefaultSystemPrompt is the instruction prepended to every completion request.
const DefaultSystemPrompt = "你是一个友好的微信自动回复助手。请用简洁、友好的语气回复用户消息。"

// Config holds the configuration for the reply service
type Config struct {
	Model            string        `toml:"model" mapstructure:"model"` // Format: "provider:model" (e.g., "openai:gpt-3.5-turbo")
	OpenAIBaseURL    string        `toml:"openai_base_url" mapstructure:"openai_base_url"`
	OpenAIToken      string        `toml:"openai_token" mapstructure:"openai_token"`
	GeminiBaseURL    string        `toml:"gemini_base_url" mapstructure:"gemini_base_url"`
	GeminiToken      string        `toml:"gemini_token" mapstructure:"gemini_token"`
	AnthropicBaseURL string        `toml:"anthropic_base_url" mapstructure:"anthropic_base_url"`
	AnthropicToken   string        `toml:"anthropic_token" mapstructure:"anthropic_token"`
	SystemPrompt     string        `toml:"system_prompt" mapstructure:"system_prompt"`
	MaxTokens        int           `toml:"max_tokens" mapstructure:"max_tokens"`
	Temperature      float64       `toml:"temperature" mapstructure:"temperature"`
	RequestTimeout   time.Duration `toml:"request_timeout" mapstructure:"request_timeout"`

	Strategy        string   `toml:"strategy" mapstructure:"strategy"`                 // keyword, ai, contextual or silent
	ContextMessages int      `toml:"context_messages" mapstructure:"context_messages"` // Transcript length for the contextual strategy
	RulesFile       string   `toml:"rules_file" mapstructure:"rules_file"`             // Empty = built-in rules
	NeverReply      []string `toml:"never_reply" mapstructure:"never_reply"`
	BannedKeywords  []string `toml:"banned_keywords" mapstructure:"banned_keywords"`

	Duration    time.Duration `toml:"duration" mapstructure:"duration"` // 0 = until input ends
	MaxPages    int           `toml:"max_pages" mapstructure:"max_pages"`
	ScrollDelay time.Duration `toml:"scroll_delay" mapstructure:"scroll_delay"`
	ListenAddr  string        `toml:"listen_addr" mapstructure:"listen_addr"`

	LogLevel  string `toml:"log_level" mapstructure:"log_level"`
	LogFormat string `toml:"log_format" mapstructure:"log_format"`
	LogFile   string `toml:"log_file" mapstructure:"log_file"`
}

// GetModel returns the model string
func (c *Config) GetModel() string {
	return c.Model
}

// GetProvider extracts provider name from the model string
func (c *Config) GetProvider() (string, error) {
	provider, _, err := autoreply.ParseModelString(c.Model)
	return provider, err
}

// GetModelName extracts model name from the model string
func (c *Config) GetModelName() (string, error) {
	_, model, err := autoreply.ParseModelString(c.Model)
	return model, err
}

// GetMaxTokens returns the completion token cap
func (c *Config) GetMaxTokens() int {
	return c.MaxTokens
}

// GetTemperature returns the sampling temperature
func (c *Config) GetTemperature() float64 {
	return c.Temperature
}

// GetRequestTimeout returns the per-request timeout for the completion service
func (c *Config) GetRequestTimeout() time.Duration {
	return c.RequestTimeout
}

// NewDefaultConfig returns a new Config with default values
func NewDefaultConfig() *Config {
	return &Config{
		Model:            "openai:gpt-3.5-turbo",
		OpenAIBaseURL:    "https://api.openai.com/v1",
		OpenAIToken:      "$OPENAI_API_KEY", // Default to env var
		GeminiBaseURL:    "https://generativelanguage.googleapis.com/v1beta",
		GeminiToken:      "$GEMINI_API_KEY",
		AnthropicBaseURL: "https://api.anthropic.com/v1",
		AnthropicToken:   "$ANTHROPIC_API_KEY",
		SystemPrompt:     DefaultSystemPrompt,
		MaxTokens:        150,
		Temperature:      0.7,
		RequestTimeout:   30 * time.Second,
		Strategy:         "keyword",
		ContextMessages:  6,
		NeverReply:       []string{"微信团队", "微信支付", "微信运动"},
		BannedKeywords:   []string{"广告", "推销", "垃圾"},
		Duration:         10 * time.Minute,
		MaxPages:         3,
		ScrollDelay:      3 * time.Second,
		ListenAddr:       ":8080",
		LogLevel:         "info",
		LogFormat:        "console",
	}
}

// SetDefaults registers every default with viper
func SetDefaults(v *viper.Viper) {
	d := NewDefaultConfig()
	v.SetDefault("model", d.Model)
	v.SetDefault("openai_base_url", d.OpenAIBaseURL)
	v.SetDefault("openai_token", d.OpenAIToken)
	v.SetDefault("gemini_base_url", d.GeminiBaseURL)
	v.SetDefault("gemini_token", d.GeminiToken)
	v.SetDefault("anthropic_base_url", d.AnthropicBaseURL)
	v.SetDefault("anthropic_token", d.AnthropicToken)
	v.SetDefault("system_prompt", d.SystemPrompt)
	v.SetDefault("max_tokens", d.MaxTokens)
	v.SetDefault("temperature", d.Temperature)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("strategy", d.Strategy)
	v.SetDefault("context_messages", d.ContextMessages)
	v.SetDefault("rules_file", d.RulesFile)
	v.SetDefault("never_reply", d.NeverReply)
	v.SetDefault("banned_keywords", d.BannedKeywords)
	v.SetDefault("duration", d.Duration)
	v.SetDefault("max_pages", d.MaxPages)
	v.SetDefault("scroll_delay", d.ScrollDelay)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("log_file", d.LogFile)
}

// LoadConfig loads configuration from the global viper instance
func LoadConfig() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom loads configuration from v
func LoadFrom(v *viper.Viper) (*Config, error) {
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Expand environment variables in tokens
	for name, token := range map[string]*string{
		"openai_token":    &config.OpenAIToken,
		"gemini_token":    &config.GeminiToken,
		"anthropic_token": &config.AnthropicToken,
	} {
		expanded, err := expandEnvVar(*token)
		if err != nil {
			return nil, fmt.Errorf("error expanding %s: %w", name, err)
		}
		*token = expanded
	}

	if config.RulesFile != "" {
		absPath, err := ResolvePath(v, config.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("error resolving rules file path '%s': %w", config.RulesFile, err)
		}
		config.RulesFile = absPath
	}

	if config.MaxPages < 1 {
		return nil, fmt.Errorf("max_pages must be at least 1 (got %d)", config.MaxPages)
	}
	if config.ContextMessages < 1 {
		return nil, fmt.Errorf("context_messages must be at least 1 (got %d)", config.ContextMessages)
	}

	return config, nil
}
