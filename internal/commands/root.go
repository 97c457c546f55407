package commands

import (
	"github.com/spf13/cobra"

	"github.com/smartspend-dev/smartspend/internal/buildinfo"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	dir  string
	user string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:     "smartspend",
		Short:   "Track expenses and deposits written in plain language",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.dir, "dir", ".", "project directory containing smartspend.yaml")
	rootCmd.PersistentFlags().StringVarP(&flags.user, "user", "u", "", "ledger user (defaults to default_user from the config)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newAddCommand(&flags))
	rootCmd.AddCommand(newTransactionsCommand(&flags))
	rootCmd.AddCommand(newSummaryCommand(&flags))
	rootCmd.AddCommand(newStatsCommand(&flags))
	rootCmd.AddCommand(newAnalyzeCommand(&flags))
	rootCmd.AddCommand(newImportCommand(&flags))
	rootCmd.AddCommand(newServeCommand(&flags))

	return rootCmd
}
