package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile local changes with the remote store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.trigger.TriggerSync(cmd.Context()) {
			return fmt.Errorf("sync skipped: already running or not signed in")
		}
		fmt.Println("Sync finished.")
		return nil
	},
}
