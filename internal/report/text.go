package report

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteText renders a View for a terminal.
func WriteText(w io.Writer, v View, currency string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(tw, "Expenses\t\t")
	for _, e := range v.Expenses {
		fmt.Fprintf(tw, "  %s\t%s\t\n", e.Category, FormatMoney(e.Amount, currency))
	}
	fmt.Fprintln(tw, "Deposits\t\t")
	for _, d := range v.Deposits {
		fmt.Fprintf(tw, "  %s\t%s\t\n", d.Category, FormatMoney(d.Amount, currency))
	}
	fmt.Fprintln(tw, "\t\t")
	fmt.Fprintf(tw, "Total expenses\t%s\t\n", FormatMoney(v.TotalExpenses, currency))
	fmt.Fprintf(tw, "Total deposits\t%s\t\n", FormatMoney(v.TotalDeposits, currency))
	fmt.Fprintf(tw, "Balance\t%s\t\n", FormatMoney(v.Balance, currency))

	if len(v.TopExpenses) > 0 {
		fmt.Fprintln(tw, "\t\t")
		fmt.Fprintln(tw, "Top expenses\t\t")
		for i, e := range v.TopExpenses {
			fmt.Fprintf(tw, "  %d. %s\t%s\t\n", i+1, e.Category, FormatMoney(e.Amount, currency))
		}
	}
	return tw.Flush()
}
