package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akc-copilot3/autoreply/internal/autoreply"
	"github.com/akc-copilot3/autoreply/internal/bridge"
	"github.com/akc-copilot3/autoreply/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var inputFile string

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Answer a stream of messages",
	Long: `Read incoming messages as JSON lines and write one decision per line.

Each input line looks like:
  {"message": "你好", "sender": "张三", "chat_type": "direct"}

Each output line looks like:
  {"id": "...", "sender": "张三", "reply": "...", "send": true}

Messages are taken in sweeps of up to max_pages, with scroll_delay between
sweeps. The run stops when the input ends, when duration elapses, or on interrupt.
Malformed lines are logged and skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, d, _, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		var in io.Reader = os.Stdin
		if inputFile != "" && inputFile != "-" {
			f, err := os.Open(inputFile)
			if err != nil {
				return fmt.Errorf("opening input: %w", err)
			}
			defer f.Close()
			in = f
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("auto reply started",
			zap.String("strategy", string(d.Kind())),
			zap.Duration("duration", cfg.Duration),
			zap.Int("max_pages", cfg.MaxPages),
			zap.Duration("scroll_delay", cfg.ScrollDelay),
		)

		start := time.Now()
		stats, err := bridge.Run(ctx, bridge.NewJSONLSource(in), bridge.NewJSONLSink(os.Stdout), d, bridge.Options{
			MaxPages:    cfg.MaxPages,
			ScrollDelay: cfg.ScrollDelay,
			Duration:    cfg.Duration,
			OnMalformed: func(err error) {
				logger.Warn("skipping input", zap.Error(err))
			},
			OnOutcome: func(ev autoreply.Event, o bridge.Outcome) {
				logger.Debug("reply decided",
					zap.String("event", ev.GetShortID()),
					zap.String("sender", ev.Sender),
					zap.String("chat_type", string(ev.ChatType)),
					zap.Bool("send", o.Send),
				)
			},
		})
		logger.Info("auto reply finished",
			zap.Int("sweeps", stats.Sweeps),
			zap.Int("events", stats.Events),
			zap.Int("replies", stats.Replies),
			zap.Int("malformed", stats.Malformed),
			logging.Elapsed(start),
		)
		if err != nil {
			return fmt.Errorf("running: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&inputFile, "input", "i", "", "read messages from file instead of stdin")
	runCmd.Flags().Duration("duration", 0, "total run time (0 = until input ends)")
	runCmd.Flags().Int("max-pages", 0, "messages handled per sweep")
	runCmd.Flags().Duration("scroll-delay", 0, "pause between sweeps")
	viper.BindPFlag("duration", runCmd.Flags().Lookup("duration"))
	viper.BindPFlag("max_pages", runCmd.Flags().Lookup("max-pages"))
	viper.BindPFlag("scroll_delay", runCmd.Flags().Lookup("scroll-delay"))
}
