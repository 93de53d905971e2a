package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/akc-copilot3/autoreply/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer messages over HTTP",
	Long: `Start an HTTP server that decides replies on request.

Endpoints:
  POST /v1/reply                  {"message", "sender", "chat_type"} -> {"id", "reply", "send"}
  GET  /v1/conversations          senders with retained history
  GET  /v1/conversations/:sender  retained history for one sender (contextual strategy)
  GET  /health`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, d, store, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e := server.New(server.NewHandler(d, store, logger), logger)
		logger.Info("server started",
			zap.String("addr", cfg.ListenAddr),
			zap.String("strategy", string(d.Kind())),
		)
		if err := server.Serve(ctx, e, cfg.ListenAddr); err != nil {
			return err
		}
		logger.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address (default :8080)")
	viper.BindPFlag("listen_addr", serveCmd.Flags().Lookup("listen"))
}
