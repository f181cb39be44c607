package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/daybook-app/daybook/internal/client/repositories/entries"
	"github.com/daybook-app/daybook/internal/timex"
	"github.com/spf13/cobra"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage journal entries",
}

var (
	flagEntryDate     string
	flagEntryDesc     string
	flagEntryPhoto    string
	flagEntryCategory string
	flagEntrySearch   string
	flagEntryLimit    int
)

var entryAddCmd = &cobra.Command{
	Use:   "add <category-id> <title>",
	Short: "Create an entry for a day",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := flagEntryDate
		if date == "" {
			date = time.Now().Format(timex.DateOnly)
		}
		if _, err := time.Parse(timex.DateOnly, date); err != nil {
			return fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
		}

		ne := entries.NewEntry{Date: date, CategoryID: args[0], Title: args[1]}
		if flagEntryDesc != "" {
			ne.Description = &flagEntryDesc
		}

		e, err := app.repos.Entries.Create(cmd.Context(), ne)
		if err != nil {
			return err
		}

		if flagEntryPhoto != "" {
			if err := attachPhoto(cmd, e.ID, flagEntryPhoto); err != nil {
				return err
			}
		}

		app.trigger.TriggerSync(cmd.Context())
		fmt.Println(e.ID)
		return nil
	},
}

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := entries.ListOptions{
			CategoryID: flagEntryCategory,
			Search:     flagEntrySearch,
			Limit:      flagEntryLimit,
		}
		items, err := app.repos.Entries.List(cmd.Context(), opts)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tTITLE\tPHOTO\tSTATUS")
		for _, e := range items {
			photo := ""
			switch {
			case e.PhotoURL != nil:
				photo = *e.PhotoURL
			case e.LocalPhotoURI != nil:
				photo = "(uploading)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Title, photo, e.SyncStatus)
		}
		return w.Flush()
	},
}

var entryRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.repos.Entries.SoftDelete(cmd.Context(), args[0]); err != nil {
			return err
		}
		app.trigger.TriggerSync(cmd.Context())
		return nil
	},
}

var entryAttachCmd = &cobra.Command{
	Use:   "attach <id> <photo-file>",
	Short: "Attach a photo to an entry",
	Long: `Attach stages the photo locally and records it on the entry; the actual
upload happens in the background on the next sync and survives restarts.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := attachPhoto(cmd, args[0], args[1]); err != nil {
			return err
		}
		app.trigger.TriggerSync(cmd.Context())
		return nil
	},
}

func attachPhoto(cmd *cobra.Command, entryID, srcPath string) error {
	staged, err := app.media.StageFile(entryID, srcPath)
	if err != nil {
		return err
	}
	return app.repos.Entries.SetLocalPhoto(cmd.Context(), entryID, staged)
}

func init() {
	entryAddCmd.Flags().StringVar(&flagEntryDate, "date", "", "entry date (YYYY-MM-DD, default today)")
	entryAddCmd.Flags().StringVar(&flagEntryDesc, "desc", "", "longer description")
	entryAddCmd.Flags().StringVar(&flagEntryPhoto, "photo", "", "photo file to attach")

	entryListCmd.Flags().StringVar(&flagEntryCategory, "category", "", "filter by category id")
	entryListCmd.Flags().StringVar(&flagEntrySearch, "search", "", "match title or description")
	entryListCmd.Flags().IntVar(&flagEntryLimit, "limit", 0, "maximum entries to print")

	entryCmd.AddCommand(entryAddCmd)
	entryCmd.AddCommand(entryListCmd)
	entryCmd.AddCommand(entryRmCmd)
	entryCmd.AddCommand(entryAttachCmd)
}
