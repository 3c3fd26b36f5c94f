package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inklet-app/inklet/internal/ui"
)

var wipeYes bool

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Manage the remote store",
}

var remoteWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete every document and folder from the remote store",
	Long: `Clear the remote documents and folders tables. The local store is not
touched; the next sync re-uploads the local collections, making the
remote an exact copy.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			fatal("%v", err)
		}
		defer app.Close()

		if !app.remote.IsConfigured() {
			fatal("no remote configured")
		}

		if !wipeYes {
			confirmed, err := confirmDestructive("Delete ALL documents and folders from the remote store?")
			if err != nil {
				fatal("%v", err)
			}
			if !confirmed {
				fmt.Println(ui.RenderDim("Aborted."))
				return
			}
		}

		if err := app.engine.ClearRemote(ctx); err != nil {
			fatal("%v", err)
		}
		fmt.Println(ui.RenderPass("Remote store cleared"))
	},
}

func init() {
	remoteWipeCmd.Flags().BoolVar(&wipeYes, "yes", false, "skip the confirmation prompt")

	remoteCmd.AddCommand(remoteWipeCmd)
	rootCmd.AddCommand(remoteCmd)
}
