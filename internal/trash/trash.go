// Package trash implements the soft-delete lifecycle for documents and
// folders: live -> trashed -> {restored | purged}.
//
// Soft-deleting snapshots the entity into the trash collection and
// removes it from its live collection. Restore reinserts the snapshot
// verbatim; it never mutates it. All operations are local and fail only
// on storage I/O, which propagates to the caller.
package trash

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/inklet-app/inklet/internal/model"
	"github.com/inklet-app/inklet/internal/store"
)

// Options configures the trash service.
type Options struct {
	// CascadeDepth controls how many folder levels a folder soft-delete
	// cascades through. Depth 1 trashes the folder and its directly
	// contained documents only; depth N additionally recurses into
	// subfolders N-1 levels deep, trashing nested folders and their
	// documents. Zero or negative values are treated as 1.
	CascadeDepth int

	// Logger for trash activity. Defaults to a stderr logger.
	Logger *log.Logger
}

// DefaultOptions returns the observed single-level cascade behavior.
func DefaultOptions() Options {
	return Options{
		CascadeDepth: 1,
		Logger:       log.New(os.Stderr, "[trash] ", log.LstdFlags),
	}
}

// Service performs soft-delete operations against the local store.
type Service struct {
	store  *store.Store
	depth  int
	logger *log.Logger
}

// New creates a trash service over the given store.
func New(st *store.Store, opts Options) *Service {
	depth := opts.CascadeDepth
	if depth < 1 {
		depth = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[trash] ", log.LstdFlags)
	}
	return &Service{
		store:  st,
		depth:  depth,
		logger: logger,
	}
}

// WithCascadeDepth returns a copy of the service using the given
// cascade depth for folder soft-deletes. Values below 1 are clamped.
func (s *Service) WithCascadeDepth(depth int) *Service {
	if depth < 1 {
		depth = 1
	}
	clone := *s
	clone.depth = depth
	return &clone
}

// SoftDeleteDocument moves the document with the given id into trash.
// Returns an error if the document does not exist.
func (s *Service) SoftDeleteDocument(ctx context.Context, id string) error {
	docs, err := s.store.Documents(ctx)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if doc.ID == id {
			return s.trashDocument(ctx, doc)
		}
	}
	return fmt.Errorf("document %s not found", id)
}

// SoftDeleteFolder moves the folder with the given id into trash,
// cascading to its contents per the configured cascade depth.
// Returns an error if the folder does not exist.
func (s *Service) SoftDeleteFolder(ctx context.Context, id string) error {
	folders, err := s.store.Folders(ctx)
	if err != nil {
		return err
	}
	for _, folder := range folders {
		if folder.ID == id {
			return s.trashFolder(ctx, folder, s.depth)
		}
	}
	return fmt.Errorf("folder %s not found", id)
}

// trashDocument snapshots a document into trash and removes it live.
func (s *Service) trashDocument(ctx context.Context, doc model.Document) error {
	item, err := model.NewTrashItem(model.KindDocument, doc.ID, doc)
	if err != nil {
		return err
	}
	if err := s.store.InsertTrashItem(ctx, item); err != nil {
		return err
	}
	if err := s.store.RemoveDocument(ctx, doc.ID); err != nil {
		return err
	}
	s.logger.Printf("Trashed document: %s (%s)", doc.ID, doc.Title)
	return nil
}

// trashFolder snapshots a folder and its contents, depth levels deep.
func (s *Service) trashFolder(ctx context.Context, folder model.Folder, depth int) error {
	item, err := model.NewTrashItem(model.KindFolder, folder.ID, folder)
	if err != nil {
		return err
	}
	if err := s.store.InsertTrashItem(ctx, item); err != nil {
		return err
	}
	if err := s.store.RemoveFolder(ctx, folder.ID); err != nil {
		return err
	}
	s.logger.Printf("Trashed folder: %s (%s)", folder.ID, folder.Name)

	// Cascade: documents directly inside this folder.
	docs, err := s.store.DocumentsInFolder(ctx, &folder.ID)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := s.trashDocument(ctx, doc); err != nil {
			return err
		}
	}

	if depth <= 1 {
		return nil
	}

	// Recurse into subfolders with the remaining depth budget.
	subs, err := s.store.Subfolders(ctx, &folder.ID)
	if err != nil {
		return err
	}
	for _, sub := range subs {
		if err := s.trashFolder(ctx, sub, depth-1); err != nil {
			return err
		}
	}
	return nil
}

// Restore moves a trash item back to its live collection.
//
// The trash entry is removed FIRST, then the snapshot is reinserted, so
// that a retried restore becomes a no-op (the trash id is already gone)
// and a crash between the steps can never leave the item both live and
// trashed. A crash before reinsertion loses the item; that is the
// accepted trade-off.
//
// The snapshot is only reinserted if no live item with the original id
// already exists, defending against double-restore races.
func (s *Service) Restore(ctx context.Context, trashID string) error {
	items, err := s.store.TrashItems(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.ID == trashID {
			if err := s.store.RemoveTrashItem(ctx, trashID); err != nil {
				return err
			}
			return s.reinsert(ctx, item)
		}
	}
	// Already restored or purged; idempotent.
	return nil
}

// RestoreAll restores every trash entry with the same existence check as
// Restore, then clears the trash collection.
func (s *Service) RestoreAll(ctx context.Context) error {
	items, err := s.store.TrashItems(ctx)
	if err != nil {
		return err
	}
	if err := s.store.ReplaceTrash(ctx, nil); err != nil {
		return err
	}
	for _, item := range items {
		if err := s.reinsert(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// reinsert puts a snapshot back into its live collection unless an item
// with the original id already exists there.
func (s *Service) reinsert(ctx context.Context, item model.TrashItem) error {
	switch item.Kind {
	case model.KindDocument:
		doc, err := item.Document()
		if err != nil {
			return err
		}
		docs, err := s.store.Documents(ctx)
		if err != nil {
			return err
		}
		for _, existing := range docs {
			if existing.ID == doc.ID {
				s.logger.Printf("Skipping restore of document %s: already live", doc.ID)
				return nil
			}
		}
		return s.store.InsertDocument(ctx, doc)

	case model.KindFolder:
		folder, err := item.Folder()
		if err != nil {
			return err
		}
		folders, err := s.store.Folders(ctx)
		if err != nil {
			return err
		}
		for _, existing := range folders {
			if existing.ID == folder.ID {
				s.logger.Printf("Skipping restore of folder %s: already live", folder.ID)
				return nil
			}
		}
		return s.store.InsertFolder(ctx, folder)

	default:
		return fmt.Errorf("unknown trash kind %q for item %s", item.Kind, item.ID)
	}
}

// Purge permanently deletes a trash item. No live-side effect.
// Purging a missing id is a no-op.
func (s *Service) Purge(ctx context.Context, trashID string) error {
	return s.store.RemoveTrashItem(ctx, trashID)
}

// Empty discards the entire trash collection.
func (s *Service) Empty(ctx context.Context) error {
	return s.store.ReplaceTrash(ctx, nil)
}
