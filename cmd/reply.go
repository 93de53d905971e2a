package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/akc-copilot3/autoreply/internal/bridge"
	"github.com/spf13/cobra"
)

var (
	sender   string
	chatType string
)

// replyCmd represents the reply command
var replyCmd = &cobra.Command{
	Use:   "reply [message]",
	Short: "Decide the reply for one message",
	Long: `Decide the reply for a single message and print it.
If no message is provided as an argument, it reads from stdin.
Nothing is printed when the message should not be answered.

Examples:
  autoreply reply --sender 张三 你好
  autoreply reply --sender 李四 --chat-type group -s ai 明天开会吗`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, d, _, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		// Get message from arguments or stdin
		var message string
		if len(args) > 0 {
			message = strings.Join(args, " ")
		} else {
			input, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading from stdin: %w", err)
			}
			message = strings.TrimSpace(string(input))
		}

		ev, err := bridge.EventFrom(message, sender, chatType)
		if err != nil {
			return err
		}

		reply, ok := d.Dispatch(context.Background(), ev)
		if !ok {
			if verbose {
				fmt.Fprintln(os.Stderr, "No reply")
			}
			return nil
		}
		fmt.Println(reply)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replyCmd)

	replyCmd.Flags().StringVar(&sender, "sender", "", "sender of the message")
	replyCmd.Flags().StringVarP(&chatType, "chat-type", "t", "direct", "chat type: direct or group")
	replyCmd.MarkFlagRequired("sender")
}
