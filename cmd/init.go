package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/akc-copilot3/autoreply/internal/autoreply/config"
	"github.com/akc-copilot3/autoreply/internal/autoreply/rules"
	"github.com/spf13/cobra"
)

// configFile is the on-disk layout written by init. Durations are kept as
// strings so the file reads "10m" rather than nanoseconds.
type configFile struct {
	Model            string  `toml:"model"`
	OpenAIBaseURL    string  `toml:"openai_base_url"`
	OpenAIToken      string  `toml:"openai_token"`
	GeminiBaseURL    string  `toml:"gemini_base_url"`
	GeminiToken      string  `toml:"gemini_token"`
	AnthropicBaseURL string  `toml:"anthropic_base_url"`
	AnthropicToken   string  `toml:"anthropic_token"`
	SystemPrompt     string  `toml:"system_prompt"`
	MaxTokens        int     `toml:"max_tokens"`
	Temperature      float64 `toml:"temperature"`
	RequestTimeout   string  `toml:"request_timeout"`

	Strategy        string   `toml:"strategy"`
	ContextMessages int      `toml:"context_messages"`
	RulesFile       string   `toml:"rules_file"`
	NeverReply      []string `toml:"never_reply"`
	BannedKeywords  []string `toml:"banned_keywords"`

	Duration    string `toml:"duration"`
	MaxPages    int    `toml:"max_pages"`
	ScrollDelay string `toml:"scroll_delay"`
	ListenAddr  string `toml:"listen_addr"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`
}

func newConfigFile(cfg *config.Config, rulesFile string) configFile {
	return configFile{
		Model:            cfg.Model,
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		OpenAIToken:      cfg.OpenAIToken,
		GeminiBaseURL:    cfg.GeminiBaseURL,
		GeminiToken:      cfg.GeminiToken,
		AnthropicBaseURL: cfg.AnthropicBaseURL,
		AnthropicToken:   cfg.AnthropicToken,
		SystemPrompt:     cfg.SystemPrompt,
		MaxTokens:        cfg.MaxTokens,
		Temperature:      cfg.Temperature,
		RequestTimeout:   cfg.RequestTimeout.String(),
		Strategy:         cfg.Strategy,
		ContextMessages:  cfg.ContextMessages,
		RulesFile:        rulesFile,
		NeverReply:       cfg.NeverReply,
		BannedKeywords:   cfg.BannedKeywords,
		Duration:         cfg.Duration.String(),
		MaxPages:         cfg.MaxPages,
		ScrollDelay:      cfg.ScrollDelay.String(),
		ListenAddr:       cfg.ListenAddr,
		LogLevel:         cfg.LogLevel,
		LogFormat:        cfg.LogFormat,
		LogFile:          cfg.LogFile,
	}
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the configuration file",
	Long: `Initialize the configuration file with default settings.
The config file will be created at $HOME/.config/autoreply/config.toml by default,
together with rules.toml holding the built-in keyword rules.
You can specify a different location using the --config option.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := cfgFile
		if configPath == "" {
			dir, err := userConfigDir()
			if err != nil {
				return err
			}
			configPath = filepath.Join(dir, "config.toml")
		}

		// Create config directory
		configDir := filepath.Dir(configPath)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		// Check if config file already exists
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists at: %s", configPath)
		}

		rulesPath := filepath.Join(configDir, "rules.toml")
		if _, err := os.Stat(rulesPath); os.IsNotExist(err) {
			if err := writeRules(rulesPath); err != nil {
				return err
			}
			fmt.Printf("Rules file created at: %s\n", rulesPath)
		}

		f, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		defer f.Close()

		// rules_file is relative to the config file
		if err := toml.NewEncoder(f).Encode(newConfigFile(config.NewDefaultConfig(), "rules.toml")); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}

		fmt.Printf("Configuration file created at: %s\n", configPath)
		return nil
	},
}

func writeRules(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create rules file: %w", err)
	}
	defer f.Close()

	if err := rules.Default().Encode(f); err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
