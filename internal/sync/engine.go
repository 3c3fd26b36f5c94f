package sync

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/inklet-app/inklet/internal/model"
	"github.com/inklet-app/inklet/internal/store"
)

// PartialFailureError reports a cycle whose upload phase had per-item
// failures. The cycle is successful only if zero failures occurred.
type PartialFailureError struct {
	Failed int
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("sync completed with %d failed uploads", e.Failed)
}

// Engine orchestrates full sync cycles between the local store and the
// remote adapter.
//
// Exactly one cycle may be in flight: an atomic flag is checked before a
// cycle starts, so a manual trigger during an active cycle gets
// ErrSyncInFlight instead of racing it.
type Engine struct {
	store  *store.Store
	remote Remote
	status *StatusStore
	logger *log.Logger

	inFlight atomic.Bool
}

// NewEngine creates a sync engine. If logger is nil, a default stderr
// logger is used.
func NewEngine(st *store.Store, remote Remote, status *StatusStore, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &Engine{
		store:  st,
		remote: remote,
		status: status,
		logger: logger,
	}
}

// Status returns the engine's status store for observation.
func (e *Engine) Status() *StatusStore {
	return e.status
}

// SetOffline flips the offline flag. Offline suppresses sync attempts
// regardless of trigger mode.
func (e *Engine) SetOffline(offline bool) {
	e.status.SetOffline(offline)
}

// SyncNow runs one full cycle: upload all three collections, then
// download anything missing locally.
//
// Returns ErrNotConfigured when no remote is configured, ErrOffline when
// the offline flag is set, and ErrSyncInFlight when a cycle is already
// running. A cycle runs to completion or failure; there is no
// cancellation beyond ctx, and no automatic retry. Sync failures never
// roll back or touch local data.
func (e *Engine) SyncNow(ctx context.Context) error {
	if !e.remote.IsConfigured() {
		return ErrNotConfigured
	}
	if e.status.Status().Offline {
		return ErrOffline
	}
	if !e.inFlight.CompareAndSwap(false, true) {
		return ErrSyncInFlight
	}
	defer e.inFlight.Store(false)

	e.status.SetState(StateSyncing)
	e.logger.Printf("Starting sync cycle")
	start := time.Now()

	if err := e.runCycle(ctx); err != nil {
		e.logger.Printf("Sync failed: %v", err)
		e.status.SetError(err.Error())
		e.status.SetState(StateIdle)
		return err
	}

	e.status.MarkSuccess(time.Now().UTC())
	e.status.SetState(StateIdle)
	e.logger.Printf("Sync complete in %v", time.Since(start).Round(time.Millisecond))
	return nil
}

// runCycle performs the upload then download phases, sequentially so the
// additive merge stays deterministic.
func (e *Engine) runCycle(ctx context.Context) error {
	failed, err := e.upload(ctx)
	if err != nil {
		return err
	}
	if failed > 0 {
		return &PartialFailureError{Failed: failed}
	}
	return e.download(ctx)
}

// upload pushes the entire local documents, folders, and trash
// collections to the remote (bulk upsert by id). Returns the total
// per-item failure count.
func (e *Engine) upload(ctx context.Context) (int, error) {
	docs, err := e.store.Documents(ctx)
	if err != nil {
		return 0, err
	}
	folders, err := e.store.Folders(ctx)
	if err != nil {
		return 0, err
	}
	trash, err := e.store.TrashItems(ctx)
	if err != nil {
		return 0, err
	}

	failed := 0

	docResults, err := e.remote.UpsertDocuments(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("failed to upload documents: %w", err)
	}
	failed += countFailures(e.logger, "document", docResults)

	folderResults, err := e.remote.UpsertFolders(ctx, folders)
	if err != nil {
		return 0, fmt.Errorf("failed to upload folders: %w", err)
	}
	failed += countFailures(e.logger, "folder", folderResults)

	trashResults, err := e.remote.UpsertTrash(ctx, trash)
	if err != nil {
		return 0, fmt.Errorf("failed to upload trash: %w", err)
	}
	failed += countFailures(e.logger, "trash item", trashResults)

	e.logger.Printf("Uploaded %d documents, %d folders, %d trash items (failed=%d)",
		len(docs), len(folders), len(trash), failed)
	return failed, nil
}

// download fetches the remote documents and folders and inserts only
// the items whose id is not already present locally. Existing local
// items are never overwritten; this is an additive union merge with an
// explicit local-wins policy, not field-level conflict resolution.
func (e *Engine) download(ctx context.Context) error {
	remoteDocs, err := e.remote.FetchDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch remote documents: %w", err)
	}
	remoteFolders, err := e.remote.FetchFolders(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch remote folders: %w", err)
	}

	localDocs, err := e.store.Documents(ctx)
	if err != nil {
		return err
	}
	localFolders, err := e.store.Folders(ctx)
	if err != nil {
		return err
	}

	haveDoc := make(map[string]bool, len(localDocs))
	for _, d := range localDocs {
		haveDoc[d.ID] = true
	}
	haveFolder := make(map[string]bool, len(localFolders))
	for _, f := range localFolders {
		haveFolder[f.ID] = true
	}

	added := 0
	for _, d := range remoteDocs {
		if haveDoc[d.ID] {
			continue
		}
		if err := e.store.InsertDocument(ctx, d); err != nil {
			return fmt.Errorf("failed to insert downloaded document %s: %w", d.ID, err)
		}
		added++
	}
	for _, f := range remoteFolders {
		if haveFolder[f.ID] {
			continue
		}
		if err := e.store.InsertFolder(ctx, f); err != nil {
			return fmt.Errorf("failed to insert downloaded folder %s: %w", f.ID, err)
		}
		added++
	}

	e.logger.Printf("Downloaded %d new items", added)
	return nil
}

// ClearRemote wipes the remote documents and folders tables. This backs
// the explicit "clear cloud data" command only; normal sync never calls
// it.
func (e *Engine) ClearRemote(ctx context.Context) error {
	if !e.remote.IsConfigured() {
		return ErrNotConfigured
	}
	if err := e.remote.DeleteAllDocuments(ctx); err != nil {
		return fmt.Errorf("failed to clear remote documents: %w", err)
	}
	if err := e.remote.DeleteAllFolders(ctx); err != nil {
		return fmt.Errorf("failed to clear remote folders: %w", err)
	}
	e.logger.Printf("Cleared remote documents and folders")
	return nil
}

func countFailures(logger *log.Logger, kind string, results []UpsertResult) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			logger.Printf("WARNING: failed to upload %s %s: %v", kind, r.ID, r.Err)
			failed++
		}
	}
	return failed
}

var _ Remote = (*noRemote)(nil)

// noRemote is the unconfigured adapter used in guest/local-only mode.
type noRemote struct{}

// NoRemote returns a Remote that reports itself unconfigured. Every
// other method is unreachable through the engine.
func NoRemote() Remote {
	return noRemote{}
}

func (noRemote) IsConfigured() bool         { return false }
func (noRemote) Ping(context.Context) error { return ErrNotConfigured }

func (noRemote) FetchDocuments(context.Context) ([]model.Document, error) {
	return nil, ErrNotConfigured
}
func (noRemote) FetchFolders(context.Context) ([]model.Folder, error) {
	return nil, ErrNotConfigured
}
func (noRemote) UpsertDocuments(context.Context, []model.Document) ([]UpsertResult, error) {
	return nil, ErrNotConfigured
}
func (noRemote) UpsertFolders(context.Context, []model.Folder) ([]UpsertResult, error) {
	return nil, ErrNotConfigured
}
func (noRemote) UpsertTrash(context.Context, []model.TrashItem) ([]UpsertResult, error) {
	return nil, ErrNotConfigured
}
func (noRemote) DeleteAllDocuments(context.Context) error { return ErrNotConfigured }
func (noRemote) DeleteAllFolders(context.Context) error   { return ErrNotConfigured }
