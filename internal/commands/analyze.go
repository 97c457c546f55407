package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/smartspend-dev/smartspend/internal/tracker"
)

func newAnalyzeCommand(flags *globalFlags) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "analyze [question...]",
		Short: "Ask the assistant about your spending",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags, appOptions{withAnalysis: true, analysisRequired: true})
			if err != nil {
				return err
			}
			defer a.Close()

			answer, err := a.svc.Analyze(cmd.Context(), a.user, strings.Join(args, " "))
			out := cmd.OutOrStdout()
			if errors.Is(err, tracker.ErrNoTransactions) {
				fmt.Fprintln(out, noTransactionsMessage)
				return nil
			}
			if err != nil {
				return err
			}

			if !raw {
				r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
				if err != nil {
					return fmt.Errorf("creating renderer: %w", err)
				}
				if rendered, err := r.Render(answer); err == nil {
					answer = rendered
				}
			}
			fmt.Fprintln(out, answer)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the answer without markdown rendering")

	return cmd
}
