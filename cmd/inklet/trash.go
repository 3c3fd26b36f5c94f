package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/inklet-app/inklet/internal/model"
	"github.com/inklet-app/inklet/internal/ui"
)

var (
	rmDepth  int
	emptyYes bool
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Move a document or folder to the trash",
	Long: `Soft-delete an entity. The entity is removed from its live collection
and a trash entry carrying its full snapshot is recorded, so it can be
restored later.

Deleting a folder also trashes the documents inside it. --depth controls
how many folder levels the cascade descends; levels beyond the depth
keep their (now orphaned) contents live.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			fatal("%v", err)
		}
		defer app.Close()

		id := args[0]
		if rmDepth > 0 {
			app.trash = app.trash.WithCascadeDepth(rmDepth)
		}

		// Try document first, fall back to folder.
		err = app.trash.SoftDeleteDocument(ctx, id)
		if err != nil {
			err = app.trash.SoftDeleteFolder(ctx, id)
		}
		if err != nil {
			fatal("%v", err)
		}
		fmt.Printf("%s %s\n", ui.RenderPass("Trashed"), id)
	},
}

var trashCmd = &cobra.Command{
	Use:   "trash",
	Short: "Inspect and manage trashed entities",
}

var trashLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List trash entries",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			fatal("%v", err)
		}
		defer app.Close()

		items, err := app.store.TrashItems(ctx)
		if err != nil {
			fatal("%v", err)
		}
		if len(items) == 0 {
			fmt.Println(ui.RenderDim("(trash is empty)"))
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, item := range items {
			name := trashEntryName(item)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", item.ID, item.Kind, name, item.DeletedAt.Format("2006-01-02 15:04"))
		}
		w.Flush()
	},
}

// trashEntryName decodes the payload just far enough for display.
func trashEntryName(item model.TrashItem) string {
	switch item.Kind {
	case model.KindDocument:
		doc, err := item.Document()
		if err != nil {
			return ui.RenderWarn("(unreadable)")
		}
		return doc.Title
	case model.KindFolder:
		folder, err := item.Folder()
		if err != nil {
			return ui.RenderWarn("(unreadable)")
		}
		return folder.Name + "/"
	}
	return ui.RenderWarn("(unknown kind)")
}

var trashRestoreCmd = &cobra.Command{
	Use:   "restore <trash-id>",
	Short: "Restore a trash entry to its live collection",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			fatal("%v", err)
		}
		defer app.Close()

		if err := app.trash.Restore(ctx, args[0]); err != nil {
			fatal("%v", err)
		}
		fmt.Printf("%s %s\n", ui.RenderPass("Restored"), args[0])
	},
}

var trashRestoreAllCmd = &cobra.Command{
	Use:   "restore-all",
	Short: "Restore every trash entry",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			fatal("%v", err)
		}
		defer app.Close()

		if err := app.trash.RestoreAll(ctx); err != nil {
			fatal("%v", err)
		}
		fmt.Println(ui.RenderPass("Restored all trash entries"))
	},
}

var trashPurgeCmd = &cobra.Command{
	Use:   "purge <trash-id>",
	Short: "Permanently delete a single trash entry",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			fatal("%v", err)
		}
		defer app.Close()

		if err := app.trash.Purge(ctx, args[0]); err != nil {
			fatal("%v", err)
		}
		fmt.Printf("%s %s\n", ui.RenderPass("Purged"), args[0])
	},
}

var trashEmptyCmd = &cobra.Command{
	Use:   "empty",
	Short: "Permanently delete every trash entry",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			fatal("%v", err)
		}
		defer app.Close()

		items, err := app.store.TrashItems(ctx)
		if err != nil {
			fatal("%v", err)
		}
		if len(items) == 0 {
			fmt.Println(ui.RenderDim("(trash is already empty)"))
			return
		}

		if !emptyYes {
			confirmed, err := confirmDestructive(fmt.Sprintf("Permanently delete %d trash entries?", len(items)))
			if err != nil {
				fatal("%v", err)
			}
			if !confirmed {
				fmt.Println(ui.RenderDim("Aborted."))
				return
			}
		}

		if err := app.trash.Empty(ctx); err != nil {
			fatal("%v", err)
		}
		fmt.Printf("%s %d entries\n", ui.RenderPass("Emptied"), len(items))
	},
}

// confirmDestructive prompts before an irreversible operation.
func confirmDestructive(title string) (bool, error) {
	var confirmed bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&confirmed).
		Run()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return confirmed, nil
}

func init() {
	rmCmd.Flags().IntVar(&rmDepth, "depth", 0, "folder cascade depth (default: configured value)")

	trashEmptyCmd.Flags().BoolVar(&emptyYes, "yes", false, "skip the confirmation prompt")

	trashCmd.AddCommand(trashLsCmd, trashRestoreCmd, trashRestoreAllCmd, trashPurgeCmd, trashEmptyCmd)
	rootCmd.AddCommand(rmCmd, trashCmd)
}
