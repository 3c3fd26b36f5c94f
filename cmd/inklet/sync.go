package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/inklet-app/inklet/internal/daemon"
	"github.com/inklet-app/inklet/internal/store"
	syncpkg "github.com/inklet-app/inklet/internal/sync"
	"github.com/inklet-app/inklet/internal/ui"
)

var daemonForeground bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one synchronization cycle now",
	Long: `Run a full sync cycle against the remote store: upload the local
documents, folders and trash, then download remote entries that do not
exist locally. The local copy is never deleted from by a sync.

Fails fast if the remote is not configured, the engine is offline, or
another sync is already in flight.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			fatal("%v", err)
		}
		defer app.Close()

		fmt.Printf("%s Syncing...\n", ui.RenderAccent("→"))
		start := time.Now()

		err = app.engine.SyncNow(ctx)
		switch {
		case err == nil:
			fmt.Printf("%s Sync complete in %v\n", ui.RenderPass("✓"), time.Since(start).Round(time.Millisecond))
		case errors.Is(err, syncpkg.ErrNotConfigured):
			fatal("no remote configured; set remote.dsn in the config file or INKLET_REMOTE_DSN")
		case errors.Is(err, syncpkg.ErrSyncInFlight):
			fatal("a sync is already in flight")
		case errors.Is(err, syncpkg.ErrOffline):
			fatal("offline; check connectivity and retry")
		default:
			var partial *syncpkg.PartialFailureError
			if errors.As(err, &partial) {
				fmt.Printf("%s Sync finished with %d failed items\n", ui.RenderWarn("⚠"), partial.Failed)
				return
			}
			fatal("sync failed: %v", err)
		}
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local store and sync status",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app, err := openApp(ctx)
		if err != nil {
			fatal("%v", err)
		}
		defer app.Close()

		docs, err := app.store.Documents(ctx)
		if err != nil {
			fatal("%v", err)
		}
		folders, err := app.store.Folders(ctx)
		if err != nil {
			fatal("%v", err)
		}
		items, err := app.store.TrashItems(ctx)
		if err != nil {
			fatal("%v", err)
		}

		fmt.Printf("\n%s Store\n\n", ui.RenderAccent("inklet"))
		fmt.Printf("Location:  %s\n", app.store.Path())
		fmt.Printf("Documents: %d\n", len(docs))
		fmt.Printf("Folders:   %d\n", len(folders))
		fmt.Printf("Trash:     %d\n", len(items))

		fmt.Printf("\n%s Remote\n\n", ui.RenderAccent("sync"))
		if !app.remote.IsConfigured() {
			fmt.Printf("Remote:  %s\n\n", ui.RenderDim("not configured"))
			return
		}

		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := app.remote.Ping(probeCtx); err != nil {
			fmt.Printf("Remote:  %s (%v)\n", ui.RenderWarn("offline"), err)
		} else {
			fmt.Printf("Remote:  %s\n", ui.RenderPass("reachable"))
		}

		status := app.status.Status()
		fmt.Printf("State:   %s\n", status.State)
		fmt.Printf("Pending: %d\n", status.PendingChanges)
		if !status.LastSyncAt.IsZero() {
			fmt.Printf("Last:    %s\n", status.LastSyncAt.Format("2006-01-02 15:04:05"))
		}
		if status.LastError != "" {
			fmt.Printf("Error:   %s\n", ui.RenderFail(status.LastError))
		}
		fmt.Println()
	},
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the background sync daemon",
	Long: `Run the sync daemon: probe remote connectivity, flip the offline flag
on transitions, and trigger periodic syncs while online.

Logs rotate under the data directory unless --foreground sends them to
stderr. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app, err := openApp(cmd.Context())
		if err != nil {
			fatal("%v", err)
		}
		defer app.Close()

		var logOut io.Writer = os.Stderr
		if !daemonForeground {
			logOut = &lumberjack.Logger{
				Filename:   app.cfg.DaemonLogPath(),
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
			}
		}
		logger := log.New(logOut, "[daemon] ", log.LstdFlags)

		dcfg := daemon.DefaultConfig()
		dcfg.SyncInterval = app.cfg.Sync.Interval
		dcfg.ProbeInterval = app.cfg.Sync.ProbeInterval
		dcfg.AutoSync = app.cfg.Sync.Auto
		dcfg.GuestMode = app.cfg.Sync.Guest
		dcfg.Logger = logger

		d, err := daemon.New(app.engine, app.remote, dcfg)
		if err != nil {
			fatal("%v", err)
		}

		// Advisory watch for writes from a second inklet process. The
		// store is single-process; foreign writes only get a warning.
		watcher, err := store.NewWatcher(app.store.Path())
		if err != nil {
			logger.Printf("File watch unavailable: %v", err)
		} else if err := watcher.Start(); err != nil {
			logger.Printf("File watch unavailable: %v", err)
		} else {
			defer watcher.Stop()
			go func() {
				for range watcher.Events() {
					// Our own download phase also touches the file.
					if app.status.Status().State == syncpkg.StateSyncing {
						continue
					}
					logger.Printf("WARNING: store file modified outside this process")
				}
			}()
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		fmt.Printf("%s Starting sync daemon...\n", ui.RenderAccent("→"))
		fmt.Printf("   Store:    %s\n", app.store.Path())
		fmt.Printf("   Interval: %v\n", dcfg.SyncInterval)
		if !daemonForeground {
			fmt.Printf("   Log:      %s\n", app.cfg.DaemonLogPath())
		}
		fmt.Printf("\nPress Ctrl+C to stop\n\n")

		if err := d.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			fatal("daemon stopped: %v", err)
		}
	},
}

func init() {
	daemonCmd.Flags().BoolVar(&daemonForeground, "foreground", false, "log to stderr instead of the rotating log file")

	rootCmd.AddCommand(syncCmd, statusCmd, daemonCmd)
}
