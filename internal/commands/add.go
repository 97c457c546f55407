package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/smartspend-dev/smartspend/internal/parser"
	"github.com/smartspend-dev/smartspend/internal/report"
	"github.com/smartspend-dev/smartspend/internal/tracker"
)

func newAddCommand(flags *globalFlags) *cobra.Command {
	var amountFlag string

	cmd := &cobra.Command{
		Use:   "add <statement...>",
		Short: "Record a transaction written in plain language",
		Example: `  smartspend add "I bought a cow for 10 taka"
  smartspend add received salary --amount 2500`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")

			var amount *decimal.Decimal
			if amountFlag != "" {
				d, err := decimal.NewFromString(amountFlag)
				if err != nil {
					return fmt.Errorf("invalid --amount %q: %w", amountFlag, err)
				}
				amount = &d
			}

			a, err := openApp(cmd.Context(), flags, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.svc.AddTransaction(cmd.Context(), a.user, text, amount)
			if errors.Is(err, tracker.ErrAmountRequired) {
				return fmt.Errorf("no amount found in %q; pass --amount", text)
			}
			if err != nil {
				return err
			}

			currency := a.cfg.Currency
			if code := parser.Currency(text); code != "" && amount == nil {
				currency = code
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s: %s (%s)\n", rec.Kind, rec.Category, report.FormatMoney(rec.Amount, currency))
			return nil
		},
	}

	cmd.Flags().StringVar(&amountFlag, "amount", "", "amount to record instead of the one in the statement")

	return cmd
}
