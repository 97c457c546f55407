package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/smartspend-dev/smartspend/internal/importer"
	"github.com/smartspend-dev/smartspend/internal/logging"
)

func newImportCommand(flags *globalFlags) *cobra.Command {
	var history bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Record every statement file in <data_dir>/import",
		Long: `Import reads .txt files (one statement per line) and .csv files
(text,amount rows) from <data_dir>/import, records each statement and moves
the file to <data_dir>/import/processed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if history {
				return printImportHistory(cmd, a)
			}

			res, err := a.svc.ImportDir(cmd.Context(), a.user, a.cfg.DataPath(), importer.DefaultRegistry())
			importLog := logging.WithComponent(a.log, logging.ComponentImport)
			importLog.Debug().
				Str(logging.FieldUser, a.user).
				Int("files", len(res.Files)).
				Int("saved", len(res.Saved)).
				Int("skipped", len(res.Rejected)).
				Msg("import finished")
			out := cmd.OutOrStdout()
			for _, r := range res.Rejected {
				fmt.Fprintf(out, "skipped %s:%d %q: %v\n", r.File, r.Line, r.Text, r.Err)
			}
			if err != nil {
				return err
			}
			if len(res.Files) == 0 {
				fmt.Fprintln(out, "Nothing to import.")
				return nil
			}
			fmt.Fprintf(out, "Imported %d transactions from %d files (%d skipped)\n", len(res.Saved), len(res.Files), len(res.Rejected))
			return nil
		},
	}

	cmd.Flags().BoolVar(&history, "history", false, "List previously imported files instead of importing")

	return cmd
}

func printImportHistory(cmd *cobra.Command, a *app) error {
	entries, err := a.svc.ImportHistory(a.user, a.cfg.DataPath())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No imports yet.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "IMPORTED\tFILE\tFORMAT\tSAVED\tSKIPPED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", e.Timestamp.Local().Format("2006-01-02 15:04"), e.File, e.Format, e.Saved, e.Skipped)
	}
	return tw.Flush()
}
