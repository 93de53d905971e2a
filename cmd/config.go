package cmd

import (
	"fmt"
	"strings"

	"github.com/akc-copilot3/autoreply/internal/autoreply/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configFields = "configfile, model, openai_base_url, openai_token, gemini_base_url, gemini_token, anthropic_base_url, anthropic_token, system_prompt, max_tokens, temperature, request_timeout, strategy, context_messages, rules_file, never_reply, banned_keywords, duration, max_pages, scroll_delay, listen_addr, log_level, log_format, log_file"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [field]",
	Short: "Display current configuration",
	Long: `Display the current configuration values.
This command shows all configuration values loaded from the config file and environment variables.

If a field name is specified, only that field's value is displayed.
Available fields: ` + configFields + `

Examples:
  autoreply config                 # Show all configuration
  autoreply config model           # Show only model
  autoreply config strategy        # Show only strategy
  autoreply config openai_token    # Show only OpenAI token (masked)`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		values := configValues(cfg)

		// If a field is specified, show only that field
		if len(args) > 0 {
			field := strings.ToLower(args[0])
			for _, kv := range values {
				if kv[0] == field {
					fmt.Println(kv[1])
					return nil
				}
			}
			return fmt.Errorf("unknown field: %s (available fields: %s)", args[0], configFields)
		}

		for _, kv := range values {
			fmt.Printf("%s: %s\n", kv[0], kv[1])
		}
		return nil
	},
}

// configValues lists every displayable field in a stable order
func configValues(cfg *config.Config) [][2]string {
	return [][2]string{
		{"configfile", viper.ConfigFileUsed()},
		{"model", cfg.Model},
		{"openai_base_url", cfg.OpenAIBaseURL},
		{"openai_token", maskToken(cfg.OpenAIToken)},
		{"gemini_base_url", cfg.GeminiBaseURL},
		{"gemini_token", maskToken(cfg.GeminiToken)},
		{"anthropic_base_url", cfg.AnthropicBaseURL},
		{"anthropic_token", maskToken(cfg.AnthropicToken)},
		{"system_prompt", cfg.SystemPrompt},
		{"max_tokens", fmt.Sprint(cfg.MaxTokens)},
		{"temperature", fmt.Sprint(cfg.Temperature)},
		{"request_timeout", cfg.RequestTimeout.String()},
		{"strategy", cfg.Strategy},
		{"context_messages", fmt.Sprint(cfg.ContextMessages)},
		{"rules_file", cfg.RulesFile},
		{"never_reply", strings.Join(cfg.NeverReply, ",")},
		{"banned_keywords", strings.Join(cfg.BannedKeywords, ",")},
		{"duration", cfg.Duration.String()},
		{"max_pages", fmt.Sprint(cfg.MaxPages)},
		{"scroll_delay", cfg.ScrollDelay.String()},
		{"listen_addr", cfg.ListenAddr},
		{"log_level", cfg.LogLevel},
		{"log_format", cfg.LogFormat},
		{"log_file", cfg.LogFile},
	}
}

// maskToken returns a masked version of the token for security
func maskToken(token string) string {
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func init() {
	rootCmd.AddCommand(configCmd)
}
