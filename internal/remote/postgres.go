// Package remote provides the Postgres implementation of the sync
// engine's Remote interface: three tables mirroring the local entity
// field sets, written with bulk upserts by id.
package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inklet-app/inklet/internal/model"
	syncpkg "github.com/inklet-app/inklet/internal/sync"
)

// statementTimeout bounds every remote call; the sync engine has no
// cancellation of its own, so timeouts live here.
const statementTimeout = 30 * time.Second

// Postgres is a table-backed remote store over a pgx connection pool.
type Postgres struct {
	pool   *pgxpool.Pool
	tables TableNames
}

// TableNames holds the remote table names, optionally prefixed so
// several environments can share one database.
type TableNames struct {
	Documents string
	Folders   string
	Trash     string
}

// NewTableNames creates table names with the given prefix.
func NewTableNames(prefix string) TableNames {
	return TableNames{
		Documents: prefix + "documents",
		Folders:   prefix + "folders",
		Trash:     prefix + "trash",
	}
}

// Connect dials the remote database and ensures the schema exists.
// An empty DSN yields an unconfigured adapter (IsConfigured reports
// false) rather than an error, so local-only operation stays valid.
func Connect(ctx context.Context, dsn, tablePrefix string) (*Postgres, error) {
	if dsn == "" {
		return &Postgres{tables: NewTableNames(tablePrefix)}, nil
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote pool: %w", err)
	}

	p := &Postgres{
		pool:   pool,
		tables: NewTableNames(tablePrefix),
	}

	if err := p.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return p, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// IsConfigured implements sync.Remote.
func (p *Postgres) IsConfigured() bool {
	return p.pool != nil
}

// Ping implements sync.Remote.
func (p *Postgres) Ping(ctx context.Context) error {
	if p.pool == nil {
		return syncpkg.ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, statementTimeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// initSchema creates the remote tables if they don't exist. Idempotent.
func (p *Postgres) initSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, statementTimeout)
	defer cancel()

	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		type TEXT NOT NULL,
		content TEXT,
		file_url TEXT,
		folder_id TEXT,
		pinned BOOLEAN NOT NULL DEFAULT FALSE,
		order_index INTEGER NOT NULL DEFAULT 0,
		size BIGINT,
		extension TEXT,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		parent_id TEXT,
		pinned BOOLEAN NOT NULL DEFAULT FALSE,
		order_index INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		original_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		payload JSONB NOT NULL,
		deleted_at TIMESTAMPTZ NOT NULL
	);
	`, p.tables.Documents, p.tables.Folders, p.tables.Trash)

	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize remote schema: %w", err)
	}
	return nil
}

// FetchDocuments implements sync.Remote.
func (p *Postgres) FetchDocuments(ctx context.Context) ([]model.Document, error) {
	if p.pool == nil {
		return nil, syncpkg.ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, statementTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT id, title, type, content, file_url, folder_id, pinned,
		       order_index, size, extension, created_at
		FROM %s
		ORDER BY created_at ASC
	`, p.tables.Documents)

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote documents: %w", err)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var d model.Document
		var content, fileURL, extension *string
		if err := rows.Scan(&d.ID, &d.Title, &d.Type, &content, &fileURL,
			&d.FolderID, &d.Pinned, &d.OrderIndex, &d.Size, &extension, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan remote document: %w", err)
		}
		if content != nil {
			d.Content = *content
		}
		if fileURL != nil {
			d.FileURL = *fileURL
		}
		if extension != nil {
			d.Extension = *extension
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating remote documents: %w", err)
	}
	return docs, nil
}

// FetchFolders implements sync.Remote.
func (p *Postgres) FetchFolders(ctx context.Context) ([]model.Folder, error) {
	if p.pool == nil {
		return nil, syncpkg.ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, statementTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT id, name, parent_id, pinned, order_index, created_at
		FROM %s
		ORDER BY created_at ASC
	`, p.tables.Folders)

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote folders: %w", err)
	}
	defer rows.Close()

	var folders []model.Folder
	for rows.Next() {
		var f model.Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.ParentID, &f.Pinned, &f.OrderIndex, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan remote folder: %w", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating remote folders: %w", err)
	}
	return folders, nil
}

// UpsertDocuments implements sync.Remote.
func (p *Postgres) UpsertDocuments(ctx context.Context, docs []model.Document) ([]syncpkg.UpsertResult, error) {
	if p.pool == nil {
		return nil, syncpkg.ErrNotConfigured
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, type, content, file_url, folder_id,
		                pinned, order_index, size, extension, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			type = excluded.type,
			content = excluded.content,
			file_url = excluded.file_url,
			folder_id = excluded.folder_id,
			pinned = excluded.pinned,
			order_index = excluded.order_index,
			size = excluded.size,
			extension = excluded.extension
	`, p.tables.Documents)

	results := make([]syncpkg.UpsertResult, 0, len(docs))
	for _, d := range docs {
		cctx, cancel := context.WithTimeout(ctx, statementTimeout)
		_, err := p.pool.Exec(cctx, query,
			d.ID, d.Title, d.Type, d.Content, d.FileURL, d.FolderID,
			d.Pinned, d.OrderIndex, d.Size, d.Extension, d.CreatedAt)
		cancel()
		results = append(results, syncpkg.UpsertResult{ID: d.ID, Err: err})
	}
	return results, nil
}

// UpsertFolders implements sync.Remote.
func (p *Postgres) UpsertFolders(ctx context.Context, folders []model.Folder) ([]syncpkg.UpsertResult, error) {
	if p.pool == nil {
		return nil, syncpkg.ErrNotConfigured
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, parent_id, pinned, order_index, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			parent_id = excluded.parent_id,
			pinned = excluded.pinned,
			order_index = excluded.order_index
	`, p.tables.Folders)

	results := make([]syncpkg.UpsertResult, 0, len(folders))
	for _, f := range folders {
		cctx, cancel := context.WithTimeout(ctx, statementTimeout)
		_, err := p.pool.Exec(cctx, query,
			f.ID, f.Name, f.ParentID, f.Pinned, f.OrderIndex, f.CreatedAt)
		cancel()
		results = append(results, syncpkg.UpsertResult{ID: f.ID, Err: err})
	}
	return results, nil
}

// UpsertTrash implements sync.Remote.
func (p *Postgres) UpsertTrash(ctx context.Context, items []model.TrashItem) ([]syncpkg.UpsertResult, error) {
	if p.pool == nil {
		return nil, syncpkg.ErrNotConfigured
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, original_id, kind, payload, deleted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, p.tables.Trash)

	results := make([]syncpkg.UpsertResult, 0, len(items))
	for _, it := range items {
		cctx, cancel := context.WithTimeout(ctx, statementTimeout)
		_, err := p.pool.Exec(cctx, query,
			it.ID, it.OriginalID, it.Kind, []byte(it.Payload), it.DeletedAt)
		cancel()
		results = append(results, syncpkg.UpsertResult{ID: it.ID, Err: err})

		if err != nil {
			continue
		}
		// Trashed locally means removed remotely: drop the live row so it
		// cannot reappear on the next download.
		if err := p.deleteLive(ctx, it); err != nil {
			results[len(results)-1].Err = err
		}
	}
	return results, nil
}

// deleteLive removes the live remote row corresponding to a trash
// snapshot's original item.
func (p *Postgres) deleteLive(ctx context.Context, item model.TrashItem) error {
	table := p.tables.Documents
	if item.Kind == model.KindFolder {
		table = p.tables.Folders
	}
	ctx, cancel := context.WithTimeout(ctx, statementTimeout)
	defer cancel()

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table)
	if _, err := p.pool.Exec(ctx, query, item.OriginalID); err != nil {
		return fmt.Errorf("failed to remove trashed %s %s remotely: %w", item.Kind, item.OriginalID, err)
	}
	return nil
}

// DeleteAllDocuments implements sync.Remote.
func (p *Postgres) DeleteAllDocuments(ctx context.Context) error {
	if p.pool == nil {
		return syncpkg.ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, statementTimeout)
	defer cancel()

	if _, err := p.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, p.tables.Documents)); err != nil {
		return fmt.Errorf("failed to wipe remote documents: %w", err)
	}
	return nil
}

// DeleteAllFolders implements sync.Remote.
func (p *Postgres) DeleteAllFolders(ctx context.Context) error {
	if p.pool == nil {
		return syncpkg.ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, statementTimeout)
	defer cancel()

	if _, err := p.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, p.tables.Folders)); err != nil {
		return fmt.Errorf("failed to wipe remote folders: %w", err)
	}
	return nil
}
