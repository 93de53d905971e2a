package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/akc-copilot3/autoreply/internal/autoreply/config"
	"github.com/akc-copilot3/autoreply/internal/autoreply/rules"
	"github.com/spf13/cobra"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules [message]",
	Short: "Show the keyword reply rules",
	Long: `List the keyword rules in match order, followed by the chat-type defaults.
Rules come from rules_file, or the built-in table when it is not set.

If a message is given, only the rule it would match is shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		table, err := rules.Load(cfg.RulesFile)
		if err != nil {
			return fmt.Errorf("loading rules: %w", err)
		}

		if len(args) > 0 {
			message := strings.Join(args, " ")
			rule, ok := table.Match(message)
			if !ok {
				fmt.Println("No keyword matches; the chat-type default applies.")
				return nil
			}
			fmt.Printf("%s\t%s\n", rule.Keyword, rule.Reply)
			return nil
		}

		source := cfg.RulesFile
		if source == "" {
			source = "(built-in)"
		}
		fmt.Printf("Rules: %s\n\n", source)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tKEYWORD\tREPLY")
		for i, r := range table.Rules {
			fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, r.Keyword, r.Reply)
		}
		w.Flush()

		fmt.Printf("\nGroupDefault: %s\n", table.GroupDefault)
		fmt.Printf("DirectDefault: %s\n", table.DirectDefault)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
