package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/smartspend-dev/smartspend/internal/report"
)

const noTransactionsMessage = "No transactions yet. Add some first."

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTransactionsCommand(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List the recorded transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if asJSON {
				l, err := a.svc.Transactions(cmd.Context(), a.user)
				if err != nil {
					return err
				}
				return writeJSON(out, l)
			}

			records, err := a.svc.Records(cmd.Context(), a.user)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(out, noTransactionsMessage)
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tTYPE\tAMOUNT\tSTATEMENT")
			for _, rec := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					rec.Timestamp.Format("2006-01-02 15:04"),
					rec.Kind,
					report.FormatMoney(rec.Amount, a.cfg.Currency),
					rec.Category)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print per-category totals as JSON")

	return cmd
}

func newSummaryCommand(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals per category and the balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			v, err := a.svc.Summary(cmd.Context(), a.user)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, report.FormatSummary(v))
			}
			if v.Empty() {
				fmt.Fprintln(out, noTransactionsMessage)
				return nil
			}
			return report.WriteText(out, v, a.cfg.Currency)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary payload as JSON")

	return cmd
}

func newStatsCommand(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the balance and transaction count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.svc.Stats(cmd.Context(), a.user)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, stats)
			}
			fmt.Fprintf(out, "Balance:      %s\n", report.FormatMoney(stats.Balance, a.cfg.Currency))
			fmt.Fprintf(out, "Transactions: %d\n", stats.TransactionCount)
			fmt.Fprintf(out, "Records:      %d\n", stats.RecordCount)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print stats as JSON")

	return cmd
}
