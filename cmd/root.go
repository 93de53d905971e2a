/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/akc-copilot3/autoreply/internal/autoreply/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "autoreply",
	Short: "Automatic replies for chat messages",
	Long: `autoreply decides what to answer to incoming chat messages.
Replies come from a keyword table, a language model, or a language model
that sees the recent conversation with the sender.

Messages can be fed as JSON lines (run), over HTTP (serve), or one at a time (reply).
You can configure the tool using a TOML configuration file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/autoreply/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringP("strategy", "s", "", "reply strategy: keyword, ai, contextual or silent")
	cobra.CheckErr(viper.BindPFlag("strategy", rootCmd.PersistentFlags().Lookup("strategy")))
}

// userConfigDir returns $HOME/.config/autoreply
func userConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "autoreply"), nil
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// .env in the working directory, if any, feeds the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error reading .env file: %v\n", err)
	}

	viper.SetEnvPrefix("AUTOREPLY")
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// Bind environment variables
	viper.BindEnv("openai_base_url", "AUTOREPLY_OPENAI_BASE_URL")
	viper.BindEnv("openai_token", "AUTOREPLY_OPENAI_TOKEN")
	viper.BindEnv("gemini_base_url", "AUTOREPLY_GEMINI_BASE_URL")
	viper.BindEnv("gemini_token", "AUTOREPLY_GEMINI_TOKEN")
	viper.BindEnv("anthropic_base_url", "AUTOREPLY_ANTHROPIC_BASE_URL")
	viper.BindEnv("anthropic_token", "AUTOREPLY_ANTHROPIC_TOKEN")
	viper.BindEnv("strategy", "AUTOREPLY_STRATEGY")
	viper.BindEnv("rules_file", "AUTOREPLY_RULES_FILE")
	viper.BindEnv("log_level", "AUTOREPLY_LOG_LEVEL")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	} else {
		userDir, err := userConfigDir()
		cobra.CheckErr(err)

		// Load system-wide config first (lower priority)
		for _, path := range []string{"/etc/autoreply", "/usr/local/etc/autoreply"} {
			viper.AddConfigPath(path)
		}
		viper.SetConfigType("toml")
		viper.SetConfigName("config")

		systemConfigLoaded := false
		if err := viper.ReadInConfig(); err == nil {
			systemConfigLoaded = true
			if verbose {
				fmt.Fprintln(os.Stderr, "Loaded system-wide config:", viper.ConfigFileUsed())
			}
		}

		// Load user config (higher priority) - merge with system config
		userConfig := filepath.Join(userDir, "config.toml")
		if systemConfigLoaded {
			if _, err := os.Stat(userConfig); err == nil {
				viper.SetConfigFile(userConfig)
				if err := viper.MergeInConfig(); err != nil {
					fmt.Fprintf(os.Stderr, "Error merging user config file: %v\n", err)
				} else if verbose {
					fmt.Fprintln(os.Stderr, "Merged user config:", userConfig)
				}
			}
		} else {
			viper.AddConfigPath(userDir)
			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
				}
			}
		}
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		fmt.Fprintln(os.Stderr, "Environment variables:")
		fmt.Fprintln(os.Stderr, "  AUTOREPLY_MODEL:", viper.GetString("model"))
		fmt.Fprintln(os.Stderr, "  AUTOREPLY_STRATEGY:", viper.GetString("strategy"))
		fmt.Fprintln(os.Stderr, "  AUTOREPLY_OPENAI_BASE_URL:", viper.GetString("openai_base_url"))
	}
}
