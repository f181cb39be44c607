package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/daybook-app/daybook/internal/client/repositories/categories"
	"github.com/daybook-app/daybook/internal/common"
	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage entry categories",
}

var (
	flagCategoryColor string
	flagCategoryIcon  string
)

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var icon *string
		if flagCategoryIcon != "" {
			icon = &flagCategoryIcon
		}
		c, err := app.repos.Categories.Create(cmd.Context(), args[0], flagCategoryColor, icon)
		if err != nil {
			return err
		}
		app.trigger.TriggerSync(cmd.Context())
		fmt.Println(c.ID)
		return nil
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		cats, err := app.repos.Categories.List(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCOLOR\tSTATUS")
		for _, c := range cats {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Color, c.SyncStatus)
		}
		return w.Flush()
	},
}

var categoryRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[1]
		err := app.repos.Categories.Update(cmd.Context(), args[0], categories.Update{Name: &name})
		if err != nil {
			return err
		}
		app.trigger.TriggerSync(cmd.Context())
		return nil
	},
}

var categoryRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := app.repos.Categories.SoftDelete(cmd.Context(), args[0])
		if errors.Is(err, common.ErrReferentialConflict) {
			return fmt.Errorf("category still has entries; reassign or delete them first")
		}
		if err != nil {
			return err
		}
		app.trigger.TriggerSync(cmd.Context())
		return nil
	},
}

func init() {
	categoryAddCmd.Flags().StringVar(&flagCategoryColor, "color", "#4A9EFF", "display color")
	categoryAddCmd.Flags().StringVar(&flagCategoryIcon, "icon", "", "icon name")

	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryRenameCmd)
	categoryCmd.AddCommand(categoryRmCmd)
}
