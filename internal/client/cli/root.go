package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/daybook-app/daybook/internal/client/config"
	"github.com/spf13/cobra"
)

// app is initialized by the root command before any subcommand runs.
var app *App

var rootCmd = &cobra.Command{
	Use:   "daybook",
	Short: "Daybook is a local-first journal that syncs across devices",
	Long: `Daybook records dated, categorized journal entries (optionally with a
photo) in a local database and reconciles them with a remote store, so the
same account can be used offline on several devices.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		var err error
		app, err = NewApp(cmd.Context(), cfg)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if app != nil {
			return app.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(entryCmd)
	rootCmd.AddCommand(accountCmd)
}

// Execute runs the CLI.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
