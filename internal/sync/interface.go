// Package sync reconciles the local store with a remote store: a coarse
// "upload everything, then download anything missing" cycle, not a
// replication protocol.
//
// The engine never owns data. It reads from and writes into the local
// store and the remote adapter, and a cycle never deletes local data:
// the download phase only adds items whose id is absent locally
// (additive local-wins union merge), and the upload phase pushes local
// items outward. Local is always authoritative.
package sync

import (
	"context"
	"errors"

	"github.com/inklet-app/inklet/internal/model"
)

// Sentinel errors returned by Engine.SyncNow.
var (
	// ErrSyncInFlight means a cycle is already running. Manual callers
	// should wait and retry; automatic triggers treat it as a no-op.
	ErrSyncInFlight = errors.New("sync already in progress")

	// ErrNotConfigured means no remote adapter is configured.
	ErrNotConfigured = errors.New("remote store not configured")

	// ErrOffline means connectivity is down; sync attempts are
	// suppressed until the offline flag clears.
	ErrOffline = errors.New("offline")
)

// UpsertResult reports the per-item outcome of a bulk upsert.
type UpsertResult struct {
	ID  string
	Err error
}

// Remote is the remote table-backed store the engine reconciles against.
// It is an injected capability, reachable only when configured and
// online; the core never depends on a concrete implementation. Timeouts
// on remote calls are the adapter's responsibility.
type Remote interface {
	// IsConfigured reports whether the adapter has connection details.
	IsConfigured() bool

	// Ping probes connectivity. The daemon uses this to drive the
	// engine's offline flag.
	Ping(ctx context.Context) error

	// FetchDocuments returns the remote documents collection.
	FetchDocuments(ctx context.Context) ([]model.Document, error)

	// FetchFolders returns the remote folders collection.
	FetchFolders(ctx context.Context) ([]model.Folder, error)

	// UpsertDocuments bulk-upserts documents by id, returning one
	// result per input item.
	UpsertDocuments(ctx context.Context, docs []model.Document) ([]UpsertResult, error)

	// UpsertFolders bulk-upserts folders by id.
	UpsertFolders(ctx context.Context, folders []model.Folder) ([]UpsertResult, error)

	// UpsertTrash bulk-upserts trash snapshots by id.
	UpsertTrash(ctx context.Context, items []model.TrashItem) ([]UpsertResult, error)

	// DeleteAllDocuments wipes the remote documents table. Used only by
	// explicit "clear cloud data" commands, never by normal sync.
	DeleteAllDocuments(ctx context.Context) error

	// DeleteAllFolders wipes the remote folders table. Same caveat.
	DeleteAllFolders(ctx context.Context) error
}
