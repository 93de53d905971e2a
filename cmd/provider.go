package cmd

import (
	"fmt"

	"github.com/akc-copilot3/autoreply/internal/anthropic"
	"github.com/akc-copilot3/autoreply/internal/autoreply"
	"github.com/akc-copilot3/autoreply/internal/autoreply/config"
	"github.com/akc-copilot3/autoreply/internal/autoreply/conversation"
	"github.com/akc-copilot3/autoreply/internal/autoreply/rules"
	"github.com/akc-copilot3/autoreply/internal/autoreply/strategy"
	"github.com/akc-copilot3/autoreply/internal/gemini"
	"github.com/akc-copilot3/autoreply/internal/logging"
	"github.com/akc-copilot3/autoreply/internal/openai"
	"go.uber.org/zap"
)

// newCompleter creates the completion client based on the configuration
func newCompleter(cfg *config.Config) (autoreply.Completer, error) {
	provider, err := cfg.GetProvider()
	if err != nil {
		return nil, err
	}
	switch provider {
	case openai.ProviderName:
		return openai.NewProvider(cfg), nil
	case gemini.ProviderName:
		return gemini.NewProvider(cfg), nil
	case anthropic.ProviderName:
		return anthropic.NewProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// newLogger creates the logger; --verbose forces debug level
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{
		Level:  level,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger, nil
}

// newDispatcher wires the configured strategy. The returned store is shared
// with the contextual strategy and is nil for the other kinds.
func newDispatcher(cfg *config.Config, logger *zap.Logger) (*strategy.Dispatcher, *conversation.Store, error) {
	kind, err := strategy.ParseKind(cfg.Strategy)
	if err != nil {
		return nil, nil, err
	}

	table, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading rules: %w", err)
	}

	deps := strategy.Deps{
		Rules:           table,
		SystemPrompt:    cfg.SystemPrompt,
		ContextMessages: cfg.ContextMessages,
		NeverReply:      cfg.NeverReply,
		BannedKeywords:  cfg.BannedKeywords,
		OnFailure: func(ev autoreply.Event, err error) {
			fields := []zap.Field{
				zap.String("event", ev.GetShortID()),
				zap.String("sender", ev.Sender),
				zap.Error(err),
			}
			if autoreply.IsMisconfigured(err) {
				logger.Error("completion disabled, using keyword replies", fields...)
				return
			}
			logger.Warn("completion failed, using keyword reply", fields...)
		},
	}

	var store *conversation.Store
	if kind == strategy.KindAI || kind == strategy.KindContextual {
		completer, err := newCompleter(cfg)
		if err != nil {
			return nil, nil, err
		}
		deps.Completer = completer
	}
	if kind == strategy.KindContextual {
		store = conversation.NewStore()
		deps.Store = store
	}

	s, err := strategy.New(kind, deps)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("strategy ready",
		zap.String("strategy", string(kind)),
		zap.String("model", cfg.GetModel()),
		zap.Int("rules", len(table.Rules)),
	)
	return strategy.NewDispatcher(kind, s), store, nil
}

// setup loads configuration and builds the logger and dispatcher shared by
// the run, serve and reply commands
func setup() (*config.Config, *zap.Logger, *strategy.Dispatcher, *conversation.Store, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	d, store, err := newDispatcher(cfg, logger)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return cfg, logger, d, store, nil
}
