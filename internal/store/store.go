// Package store provides the persistent local store backing inklet.
//
// The store is an embedded SQLite database (WAL mode) holding three named
// collections: documents, folders, and trash. Each collection is persisted
// as a single row containing the whole collection serialized as a JSON
// array. Every mutation is a whole-collection read-modify-write inside one
// transaction, which trades write efficiency for simplicity and
// crash-atomicity per collection: a write either fully lands or not.
//
// The store is the single source of truth for all three collections; no
// other component persists state. After any successful mutation a
// subsequent read observes it (read-your-writes, single process). The
// database file is process-local: concurrent access from a second process
// is out of scope and is detected, not supported (see Watcher).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/inklet-app/inklet/internal/model"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Collection row names. Stable keys: renaming one orphans existing data.
const (
	colDocuments = "documents"
	colFolders   = "folders"
	colTrash     = "trash"
)

// Store wraps the SQLite connection holding the three collections.
type Store struct {
	conn *sql.DB
	path string

	// mu serializes read-modify-write cycles within the process so that
	// two concurrent mutations to the same collection cannot clobber
	// each other's writes.
	mu sync.Mutex

	onMutate func()
}

// Open creates or opens the store database at the specified path.
//
// The parent directory is created if needed. The caller MUST call Close()
// when done.
//
// Example:
//
//	st, err := store.Open(filepath.Join(dataDir, "inklet.db"))
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(5 * time.Minute)

	st := &Store{
		conn: conn,
		path: path,
	}

	// WAL mode for concurrent readers during writes
	if _, err := st.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := st.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := st.initSchema(context.Background()); err != nil {
		_ = st.Close()
		return nil, err
	}

	return st, nil
}

// Path returns the filesystem path of the backing database file.
func (s *Store) Path() string {
	return s.path
}

// Close closes the store connection after checkpointing the WAL.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}

	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}

	s.conn = nil
	return nil
}

// SetMutationHook registers a callback invoked after every successful
// mutation. The sync status store uses this to maintain its pending
// changes counter. A nil fn clears the hook.
//
// The callback runs with the store's mutation lock held and must not
// call back into the store.
func (s *Store) SetMutationHook(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMutate = fn
}

// initSchema creates the collections table. Idempotent.
func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize store schema: %w", err)
	}
	return nil
}

// readCol loads and decodes a whole collection. A missing row is an empty
// collection, not an error.
func readCol[T any](ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, name string) ([]T, error) {
	var data string
	err := q.QueryRowContext(ctx, "SELECT data FROM collections WHERE name = ?", name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", name, err)
	}

	var items []T
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("failed to decode collection %s: %w", name, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// writeCol encodes and stores a whole collection.
func writeCol[T any](ctx context.Context, q interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, name string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", name, err)
	}

	query := `
	INSERT INTO collections (name, data, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		data = excluded.data,
		updated_at = excluded.updated_at
	`
	if _, err := q.ExecContext(ctx, query, name, string(data), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", name, err)
	}
	return nil
}

// mutateCol runs one whole-collection read-modify-write cycle in a single
// transaction. The mutate func returns the new collection and whether
// anything actually changed; an unchanged collection skips the write and
// the mutation hook (missing-id patches and removes are silent no-ops).
func mutateCol[T any](s *Store, ctx context.Context, name string, mutate func([]T) ([]T, bool)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	items, err := readCol[T](ctx, tx, name)
	if err != nil {
		return err
	}

	next, changed := mutate(items)
	if !changed {
		return nil
	}

	if err := writeCol(ctx, tx, name, next); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit collection %s: %w", name, err)
	}

	if s.onMutate != nil {
		s.onMutate()
	}
	return nil
}

// Documents returns the whole live documents collection.
func (s *Store) Documents(ctx context.Context) ([]model.Document, error) {
	return readCol[model.Document](ctx, s.conn, colDocuments)
}

// DocumentsInFolder returns documents that are direct children of the
// given folder. A nil folderID selects root-level documents.
func (s *Store) DocumentsInFolder(ctx context.Context, folderID *string) ([]model.Document, error) {
	docs, err := s.Documents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		if d.InFolder(folderID) {
			out = append(out, d)
		}
	}
	return out, nil
}

// ReplaceDocuments overwrites the entire documents collection.
func (s *Store) ReplaceDocuments(ctx context.Context, docs []model.Document) error {
	return mutateCol(s, ctx, colDocuments, func([]model.Document) ([]model.Document, bool) {
		return docs, true
	})
}

// InsertDocument validates and appends a document.
func (s *Store) InsertDocument(ctx context.Context, doc model.Document) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	return mutateCol(s, ctx, colDocuments, func(docs []model.Document) ([]model.Document, bool) {
		return append(docs, doc), true
	})
}

// PatchDocument applies mutate to the document with the given id.
// Patching a missing id is a silent no-op, not an error, to keep
// optimistic-UI callers simple.
func (s *Store) PatchDocument(ctx context.Context, id string, mutate func(*model.Document)) error {
	return mutateCol(s, ctx, colDocuments, func(docs []model.Document) ([]model.Document, bool) {
		for i := range docs {
			if docs[i].ID == id {
				mutate(&docs[i])
				return docs, true
			}
		}
		return docs, false
	})
}

// RemoveDocument deletes the document with the given id.
// Removing a missing id is a silent no-op.
func (s *Store) RemoveDocument(ctx context.Context, id string) error {
	return mutateCol(s, ctx, colDocuments, func(docs []model.Document) ([]model.Document, bool) {
		for i := range docs {
			if docs[i].ID == id {
				return append(docs[:i], docs[i+1:]...), true
			}
		}
		return docs, false
	})
}

// Folders returns the whole live folders collection.
func (s *Store) Folders(ctx context.Context) ([]model.Folder, error) {
	return readCol[model.Folder](ctx, s.conn, colFolders)
}

// Subfolders returns folders that are direct children of the given parent.
// A nil parentID selects root-level folders.
func (s *Store) Subfolders(ctx context.Context, parentID *string) ([]model.Folder, error) {
	folders, err := s.Folders(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Folder, 0, len(folders))
	for _, f := range folders {
		if f.HasParent(parentID) {
			out = append(out, f)
		}
	}
	return out, nil
}

// ReplaceFolders overwrites the entire folders collection.
func (s *Store) ReplaceFolders(ctx context.Context, folders []model.Folder) error {
	return mutateCol(s, ctx, colFolders, func([]model.Folder) ([]model.Folder, bool) {
		return folders, true
	})
}

// InsertFolder validates and appends a folder.
func (s *Store) InsertFolder(ctx context.Context, folder model.Folder) error {
	if err := folder.Validate(); err != nil {
		return fmt.Errorf("invalid folder: %w", err)
	}
	return mutateCol(s, ctx, colFolders, func(folders []model.Folder) ([]model.Folder, bool) {
		return append(folders, folder), true
	})
}

// PatchFolder applies mutate to the folder with the given id.
// Patching a missing id is a silent no-op.
func (s *Store) PatchFolder(ctx context.Context, id string, mutate func(*model.Folder)) error {
	return mutateCol(s, ctx, colFolders, func(folders []model.Folder) ([]model.Folder, bool) {
		for i := range folders {
			if folders[i].ID == id {
				mutate(&folders[i])
				return folders, true
			}
		}
		return folders, false
	})
}

// RemoveFolder deletes the folder with the given id.
// Removing a missing id is a silent no-op.
func (s *Store) RemoveFolder(ctx context.Context, id string) error {
	return mutateCol(s, ctx, colFolders, func(folders []model.Folder) ([]model.Folder, bool) {
		for i := range folders {
			if folders[i].ID == id {
				return append(folders[:i], folders[i+1:]...), true
			}
		}
		return folders, false
	})
}

// TrashItems returns the whole trash collection.
func (s *Store) TrashItems(ctx context.Context) ([]model.TrashItem, error) {
	return readCol[model.TrashItem](ctx, s.conn, colTrash)
}

// ReplaceTrash overwrites the entire trash collection.
func (s *Store) ReplaceTrash(ctx context.Context, items []model.TrashItem) error {
	return mutateCol(s, ctx, colTrash, func([]model.TrashItem) ([]model.TrashItem, bool) {
		return items, true
	})
}

// InsertTrashItem appends a trash snapshot.
func (s *Store) InsertTrashItem(ctx context.Context, item model.TrashItem) error {
	if item.ID == "" {
		return fmt.Errorf("invalid trash item: id is required")
	}
	return mutateCol(s, ctx, colTrash, func(items []model.TrashItem) ([]model.TrashItem, bool) {
		return append(items, item), true
	})
}

// RemoveTrashItem deletes the trash item with the given id.
// Removing a missing id is a silent no-op.
func (s *Store) RemoveTrashItem(ctx context.Context, id string) error {
	return mutateCol(s, ctx, colTrash, func(items []model.TrashItem) ([]model.TrashItem, bool) {
		for i := range items {
			if items[i].ID == id {
				return append(items[:i], items[i+1:]...), true
			}
		}
		return items, false
	})
}
