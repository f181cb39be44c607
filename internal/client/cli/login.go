package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/daybook-app/daybook/internal/client/store"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the access token issued by the auth provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(os.Stderr, "Access token: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}

		token := strings.TrimSpace(string(raw))
		if token == "" {
			return fmt.Errorf("empty token")
		}
		if err := app.session.Save(token); err != nil {
			return err
		}

		// First sync pulls the account's existing rows onto this device.
		app.trigger.TriggerSync(cmd.Context())
		fmt.Println("Signed in.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the session and clear all local data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.session.Clear(); err != nil {
			return err
		}
		if err := store.ClearAll(cmd.Context(), app.db); err != nil {
			return err
		}
		if err := app.media.RemoveAll(); err != nil {
			return err
		}
		fmt.Println("Signed out, local data cleared.")
		return nil
	},
}
