package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inklet-app/inklet/internal/model"
	"github.com/inklet-app/inklet/internal/order"
	"github.com/inklet-app/inklet/internal/ui"
)

var (
	addType    string
	addFolder  string
	addContent string
	addFileURL string

	mkdirParent string

	lsFolder string

	pinOff bool

	reorderFolders bool
	reorderScope   string
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			fatal("%v", err)
		}
		defer app.Close()

		doc := model.NewDocument(args[0], model.DocumentType(addType), optionalID(addFolder))
		doc.Content = addContent
		doc.FileURL = addFileURL

		if err := app.store.InsertDocument(ctx, doc); err != nil {
			fatal("%v", err)
		}
		fmt.Printf("%s %s\n", ui.RenderPass("Created"), doc.ID)
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List folders and documents",
	Long: `List the subfolders and documents directly inside a folder.

Without --folder the root level is listed. Pinned items sort first,
then by order index.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			fatal("%v", err)
		}
		defer app.Close()

		parent := optionalID(lsFolder)
		folders, err := app.store.Subfolders(ctx, parent)
		if err != nil {
			fatal("%v", err)
		}
		docs, err := app.store.DocumentsInFolder(ctx, parent)
		if err != nil {
			fatal("%v", err)
		}
		order.SortFolders(folders)
		order.SortDocuments(docs)

		counts, err := app.hierarchy.ChildCounts(ctx)
		if err != nil {
			fatal("%v", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, f := range folders {
			pin := ""
			if f.Pinned {
				pin = ui.RenderAccent("*")
			}
			fmt.Fprintf(w, "%s\t%s/\t%s\t%d items\n", f.ID, f.Name, pin, counts[f.ID])
		}
		for _, d := range docs {
			pin := ""
			if d.Pinned {
				pin = ui.RenderAccent("*")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.Title, pin, d.Type)
		}
		w.Flush()

		if len(folders) == 0 && len(docs) == 0 {
			fmt.Println(ui.RenderDim("(empty)"))
		}
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <name>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			fatal("%v", err)
		}
		defer app.Close()

		folder := model.NewFolder(args[0], optionalID(mkdirParent))
		if err := app.store.InsertFolder(ctx, folder); err != nil {
			fatal("%v", err)
		}
		fmt.Printf("%s %s\n", ui.RenderPass("Created"), folder.ID)
	},
}

var mvCmd = &cobra.Command{
	Use:   "mv <id> <folder-id|root>",
	Short: "Move a document or folder into another folder",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			fatal("%v", err)
		}
		defer app.Close()

		id := args[0]
		var dest *string
		if args[1] != "root" {
			dest = &args[1]
		}

		moved, err := moveEntity(cmd, app, id, dest)
		if err != nil {
			fatal("%v", err)
		}
		if !moved {
			fatal("no document or folder with id %s", id)
		}
		fmt.Printf("%s %s\n", ui.RenderPass("Moved"), id)
	},
}

// moveEntity retargets a document's FolderID or a folder's ParentID,
// whichever matches the id.
func moveEntity(cmd *cobra.Command, app *app, id string, dest *string) (bool, error) {
	ctx := cmd.Context()

	docs, err := app.store.Documents(ctx)
	if err != nil {
		return false, err
	}
	for _, d := range docs {
		if d.ID == id {
			return true, app.store.PatchDocument(ctx, id, func(doc *model.Document) {
				doc.FolderID = dest
			})
		}
	}

	folders, err := app.store.Folders(ctx)
	if err != nil {
		return false, err
	}
	for _, f := range folders {
		if f.ID == id {
			return true, app.store.PatchFolder(ctx, id, func(folder *model.Folder) {
				folder.ParentID = dest
			})
		}
	}
	return false, nil
}

var pinCmd = &cobra.Command{
	Use:   "pin <id>",
	Short: "Pin a document or folder (use --off to unpin)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			fatal("%v", err)
		}
		defer app.Close()

		id := args[0]
		pinned := !pinOff

		found, err := setPinned(cmd, app, id, pinned)
		if err != nil {
			fatal("%v", err)
		}
		if !found {
			fatal("no document or folder with id %s", id)
		}

		verb := "Pinned"
		if pinOff {
			verb = "Unpinned"
		}
		fmt.Printf("%s %s\n", ui.RenderPass(verb), id)
	},
}

// setPinned flips the pin flag on whichever entity carries the id.
func setPinned(cmd *cobra.Command, app *app, id string, pinned bool) (bool, error) {
	ctx := cmd.Context()

	docs, err := app.store.Documents(ctx)
	if err != nil {
		return false, err
	}
	for _, d := range docs {
		if d.ID == id {
			return true, app.store.PatchDocument(ctx, id, func(doc *model.Document) {
				doc.Pinned = pinned
			})
		}
	}

	folders, err := app.store.Folders(ctx)
	if err != nil {
		return false, err
	}
	for _, f := range folders {
		if f.ID == id {
			return true, app.store.PatchFolder(ctx, id, func(folder *model.Folder) {
				folder.Pinned = pinned
			})
		}
	}
	return false, nil
}

var reorderCmd = &cobra.Command{
	Use:   "reorder <moved-id> <over-id>",
	Short: "Drop an item onto another item's position",
	Long: `Reorder within a single level: remove the moved item from the ordering
and reinsert it at the position its target currently occupies. Order
indexes are rewritten densely from zero afterwards.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			fatal("%v", err)
		}
		defer app.Close()

		parent := optionalID(reorderScope)

		if reorderFolders {
			snapshot, err := app.store.Subfolders(ctx, parent)
			if err != nil {
				fatal("%v", err)
			}
			order.SortFolders(snapshot)
			if err := order.CommitFolderReorder(ctx, app.store, args[0], args[1], snapshot); err != nil {
				fatal("%v", err)
			}
		} else {
			snapshot, err := app.store.DocumentsInFolder(ctx, parent)
			if err != nil {
				fatal("%v", err)
			}
			order.SortDocuments(snapshot)
			if err := order.CommitDocumentReorder(ctx, app.store, args[0], args[1], snapshot); err != nil {
				fatal("%v", err)
			}
		}
		fmt.Println(ui.RenderPass("Reordered"))
	},
}

var pathCmd = &cobra.Command{
	Use:   "path <folder-id>",
	Short: "Show the breadcrumb path of a folder",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			fatal("%v", err)
		}
		defer app.Close()

		crumbs, err := app.hierarchy.BreadcrumbPath(ctx, args[0])
		if err != nil {
			fatal("%v", err)
		}
		if len(crumbs) == 0 {
			fmt.Println("/")
			return
		}
		names := make([]string, len(crumbs))
		for i, f := range crumbs {
			names[i] = f.Name
		}
		fmt.Println("/" + strings.Join(names, "/"))
	},
}

// optionalID maps an empty flag value to nil (root level).
func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func init() {
	addCmd.Flags().StringVar(&addType, "type", "text", "document type (text, markdown, code, ...)")
	addCmd.Flags().StringVar(&addFolder, "folder", "", "parent folder id (default: root)")
	addCmd.Flags().StringVar(&addContent, "content", "", "inline document content")
	addCmd.Flags().StringVar(&addFileURL, "file-url", "", "URL of an externally stored file")

	lsCmd.Flags().StringVar(&lsFolder, "folder", "", "folder id to list (default: root)")

	mkdirCmd.Flags().StringVar(&mkdirParent, "parent", "", "parent folder id (default: root)")

	pinCmd.Flags().BoolVar(&pinOff, "off", false, "unpin instead of pin")

	reorderCmd.Flags().BoolVar(&reorderFolders, "folders", false, "reorder folders instead of documents")
	reorderCmd.Flags().StringVar(&reorderScope, "folder", "", "parent folder id scoping the reorder (default: root)")

	rootCmd.AddCommand(addCmd, lsCmd, mkdirCmd, mvCmd, pinCmd, reorderCmd, pathCmd)
}
