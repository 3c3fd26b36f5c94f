// Command inklet is a local-first document and folder manager with
// best-effort background sync to a remote Postgres store.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inklet-app/inklet/internal/config"
	"github.com/inklet-app/inklet/internal/hierarchy"
	"github.com/inklet-app/inklet/internal/remote"
	"github.com/inklet-app/inklet/internal/store"
	syncpkg "github.com/inklet-app/inklet/internal/sync"
	"github.com/inklet-app/inklet/internal/trash"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "inklet",
	Short: "Local-first document manager with remote sync",
	Long: `inklet manages a hierarchy of documents and folders that stays usable
offline and converges with a remote copy when connectivity returns.

All commands operate on the local store first; synchronization with the
remote store is a secondary, best-effort concern driven by 'inklet sync'
or the background daemon.`,
	SilenceUsage: true,
}

// app bundles the wired-up core for command Run funcs.
type app struct {
	cfg       *config.Config
	store     *store.Store
	remote    *remote.Postgres
	status    *syncpkg.StatusStore
	engine    *syncpkg.Engine
	trash     *trash.Service
	hierarchy *hierarchy.Resolver
}

// openApp opens the local store and dials the remote (if configured),
// wiring the store's mutation hook into the status store.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.StorePath())
	if err != nil {
		return nil, err
	}

	rem, err := remote.Connect(ctx, cfg.Remote.DSN, cfg.Remote.TablePrefix)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	status := syncpkg.NewStatusStore()
	st.SetMutationHook(status.IncrementPending)

	engine := syncpkg.NewEngine(st, rem, status, nil)

	tr := trash.New(st, trash.Options{CascadeDepth: cfg.Sync.CascadeDepth})

	return &app{
		cfg:       cfg,
		store:     st,
		remote:    rem,
		status:    status,
		engine:    engine,
		trash:     tr,
		hierarchy: hierarchy.New(st),
	}, nil
}

// Close releases the store and remote pool.
func (a *app) Close() {
	a.remote.Close()
	if err := a.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

// fatal prints an error and exits.
func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $HOME/.inklet/inklet.yaml)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
