package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/daybook-app/daybook/internal/client/store"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Account-level operations",
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the account, remote data and local data",
	Long: `Delete asks the server to remove every row and stored photo of the
account, then clears the local database. The remote call does not imply local
cleanup, so both happen here explicitly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(os.Stderr, "This permanently deletes all data. Type 'yes' to continue: ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(line) != "yes" {
			return fmt.Errorf("aborted")
		}

		if err := app.remote.DeleteAccount(cmd.Context()); err != nil {
			return err
		}
		if err := store.ClearAll(cmd.Context(), app.db); err != nil {
			return err
		}
		if err := app.media.RemoveAll(); err != nil {
			return err
		}
		if err := app.session.Clear(); err != nil {
			return err
		}
		fmt.Println("Account deleted.")
		return nil
	},
}

func init() {
	accountCmd.AddCommand(accountDeleteCmd)
}
