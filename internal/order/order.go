// Package order maintains the stable display ordering of documents and
// folders: pinned items first, then ascending order index.
package order

import (
	"context"
	"sort"

	"github.com/inklet-app/inklet/internal/model"
	"github.com/inklet-app/inklet/internal/store"
)

// SortDocuments sorts docs in place: pinned first (stable among
// themselves), then ascending by order index.
func SortDocuments(docs []model.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Pinned != docs[j].Pinned {
			return docs[i].Pinned
		}
		return docs[i].OrderIndex < docs[j].OrderIndex
	})
}

// SortFolders sorts folders in place with the same comparator.
func SortFolders(folders []model.Folder) {
	sort.SliceStable(folders, func(i, j int) bool {
		if folders[i].Pinned != folders[j].Pinned {
			return folders[i].Pinned
		}
		return folders[i].OrderIndex < folders[j].OrderIndex
	})
}

// moveIndex computes the new position sequence for a single-element list
// move: the moved element is removed and reinserted at the target's
// position. Returns false if either id is missing from the snapshot.
func moveIndex(ids []string, movedID, overID string) ([]string, bool) {
	from, to := -1, -1
	for i, id := range ids {
		if id == movedID {
			from = i
		}
		if id == overID {
			to = i
		}
	}
	if from < 0 || to < 0 {
		return nil, false
	}

	out := make([]string, 0, len(ids))
	out = append(out, ids[:from]...)
	out = append(out, ids[from+1:]...)

	// Reinsert so the moved element lands at the target's original
	// position: before the target when moving up, after it when moving
	// down.
	if to > len(out) {
		to = len(out)
	}
	out = append(out[:to], append([]string{movedID}, out[to:]...)...)
	return out, true
}

// CommitDocumentReorder moves movedID to overID's position within the
// given snapshot and persists dense order indices 0..n-1 for the whole
// snapshot via individual patches. Indices are only guaranteed dense
// within the snapshot; folder levels are independently indexed.
//
// A movedID or overID absent from the snapshot is a no-op.
func CommitDocumentReorder(ctx context.Context, st *store.Store, movedID, overID string, snapshot []model.Document) error {
	ids := make([]string, len(snapshot))
	for i, d := range snapshot {
		ids[i] = d.ID
	}
	seq, ok := moveIndex(ids, movedID, overID)
	if !ok {
		return nil
	}
	for i, id := range seq {
		idx := i
		if err := st.PatchDocument(ctx, id, func(d *model.Document) {
			d.OrderIndex = idx
		}); err != nil {
			return err
		}
	}
	return nil
}

// CommitFolderReorder is the folder equivalent of CommitDocumentReorder.
func CommitFolderReorder(ctx context.Context, st *store.Store, movedID, overID string, snapshot []model.Folder) error {
	ids := make([]string, len(snapshot))
	for i, f := range snapshot {
		ids[i] = f.ID
	}
	seq, ok := moveIndex(ids, movedID, overID)
	if !ok {
		return nil
	}
	for i, id := range seq {
		idx := i
		if err := st.PatchFolder(ctx, id, func(f *model.Folder) {
			f.OrderIndex = idx
		}); err != nil {
			return err
		}
	}
	return nil
}
