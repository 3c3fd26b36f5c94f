// Package hierarchy resolves folder ancestry and per-folder child counts.
package hierarchy

import (
	"context"

	"github.com/inklet-app/inklet/internal/model"
	"github.com/inklet-app/inklet/internal/store"
)

// Resolver answers breadcrumb and child-count queries against the store.
type Resolver struct {
	store *store.Store
}

// New creates a resolver over the given store.
func New(st *store.Store) *Resolver {
	return &Resolver{store: st}
}

// BreadcrumbPath walks parent links from folderID upward and returns the
// chain ordered root-most ancestor first, the folder itself last. An
// empty folderID (the root level) yields an empty path, as does an id
// that no live folder carries.
//
// The walk terminates on a nil parent, a missing parent (dangling
// reference), or a previously visited id, so a corrupted parent graph
// containing a cycle returns a finite path instead of looping.
func (r *Resolver) BreadcrumbPath(ctx context.Context, folderID string) ([]model.Folder, error) {
	if folderID == "" {
		return []model.Folder{}, nil
	}

	folders, err := r.store.Folders(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}

	var path []model.Folder
	visited := make(map[string]bool)

	id := folderID
	for id != "" && !visited[id] {
		folder, ok := byID[id]
		if !ok {
			break
		}
		visited[id] = true
		path = append([]model.Folder{folder}, path...)
		if folder.ParentID == nil {
			break
		}
		id = *folder.ParentID
	}

	if path == nil {
		path = []model.Folder{}
	}
	return path, nil
}

// ChildCount returns the number of documents whose folder reference
// equals folderID. Direct children only, not recursive.
func (r *Resolver) ChildCount(ctx context.Context, folderID string) (int, error) {
	docs, err := r.store.DocumentsInFolder(ctx, &folderID)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// ChildCounts returns direct-child document counts for every folder that
// has at least one document, keyed by folder id.
func (r *Resolver) ChildCounts(ctx context.Context) (map[string]int, error) {
	docs, err := r.store.Documents(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, d := range docs {
		if d.FolderID != nil {
			counts[*d.FolderID]++
		}
	}
	return counts, nil
}
