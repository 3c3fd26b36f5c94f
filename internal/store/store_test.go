package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/inklet-app/inklet/internal/model"
)

// testStore opens a store in a temporary directory
func testStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "inklet.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("Close() failed: %v", err)
		}
	})
	return st
}

// TestOpen_CreatesParentDir tests that Open creates missing directories
func TestOpen_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "inklet.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	if st.Path() != path {
		t.Errorf("Path() = %q, want %q", st.Path(), path)
	}
}

// TestDocuments_EmptyStore tests that a fresh store has empty collections
func TestDocuments_EmptyStore(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	docs, err := st.Documents(ctx)
	if err != nil {
		t.Fatalf("Documents() failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("fresh store has %d documents, want 0", len(docs))
	}

	folders, err := st.Folders(ctx)
	if err != nil {
		t.Fatalf("Folders() failed: %v", err)
	}
	if len(folders) != 0 {
		t.Errorf("fresh store has %d folders, want 0", len(folders))
	}

	items, err := st.TrashItems(ctx)
	if err != nil {
		t.Fatalf("TrashItems() failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("fresh store has %d trash items, want 0", len(items))
	}
}

// TestInsertDocument_ThenList tests that a created document appears
// exactly once in a subsequent read
func TestInsertDocument_ThenList(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	doc := model.NewDocument("Notes", model.TypeText, nil)
	if err := st.InsertDocument(ctx, doc); err != nil {
		t.Fatalf("InsertDocument() failed: %v", err)
	}

	docs, err := st.Documents(ctx)
	if err != nil {
		t.Fatalf("Documents() failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("Documents() returned %d items, want 1", len(docs))
	}
	if docs[0].ID != doc.ID || docs[0].Title != doc.Title {
		t.Errorf("read back %+v, want %+v", docs[0], doc)
	}
}

// TestInsertDocument_Invalid tests that validation rejects bad documents
func TestInsertDocument_Invalid(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	bad := model.NewDocument("", model.TypeText, nil)
	if err := st.InsertDocument(ctx, bad); err == nil {
		t.Error("InsertDocument() accepted a document with no title")
	}

	docs, err := st.Documents(ctx)
	if err != nil {
		t.Fatalf("Documents() failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("rejected insert still wrote %d documents", len(docs))
	}
}

// TestPatchDocument_MissingID tests that patching an unknown id is a
// silent no-op
func TestPatchDocument_MissingID(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	called := false
	err := st.PatchDocument(ctx, "nope", func(d *model.Document) {
		called = true
	})
	if err != nil {
		t.Fatalf("PatchDocument() failed: %v", err)
	}
	if called {
		t.Error("mutate func ran for a missing id")
	}
}

// TestPatchDocument_Persists tests that a patch survives a reread
func TestPatchDocument_Persists(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	doc := model.NewDocument("Draft", model.TypeText, nil)
	if err := st.InsertDocument(ctx, doc); err != nil {
		t.Fatalf("InsertDocument() failed: %v", err)
	}

	if err := st.PatchDocument(ctx, doc.ID, func(d *model.Document) {
		d.Pinned = true
		d.Title = "Final"
	}); err != nil {
		t.Fatalf("PatchDocument() failed: %v", err)
	}

	docs, err := st.Documents(ctx)
	if err != nil {
		t.Fatalf("Documents() failed: %v", err)
	}
	if !docs[0].Pinned || docs[0].Title != "Final" {
		t.Errorf("patch did not persist: %+v", docs[0])
	}
}

// TestRemoveDocument tests removal and missing-id no-op
func TestRemoveDocument(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	doc := model.NewDocument("Gone", model.TypeText, nil)
	if err := st.InsertDocument(ctx, doc); err != nil {
		t.Fatalf("InsertDocument() failed: %v", err)
	}

	if err := st.RemoveDocument(ctx, doc.ID); err != nil {
		t.Fatalf("RemoveDocument() failed: %v", err)
	}
	docs, err := st.Documents(ctx)
	if err != nil {
		t.Fatalf("Documents() failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("document still present after removal")
	}

	// Removing again must not error.
	if err := st.RemoveDocument(ctx, doc.ID); err != nil {
		t.Errorf("second RemoveDocument() failed: %v", err)
	}
}

// TestDocumentsInFolder tests direct-child filtering
func TestDocumentsInFolder(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	f1 := "f1"

	rootDoc := model.NewDocument("root", model.TypeText, nil)
	folderDoc := model.NewDocument("inside", model.TypeText, &f1)
	for _, d := range []model.Document{rootDoc, folderDoc} {
		if err := st.InsertDocument(ctx, d); err != nil {
			t.Fatalf("InsertDocument() failed: %v", err)
		}
	}

	atRoot, err := st.DocumentsInFolder(ctx, nil)
	if err != nil {
		t.Fatalf("DocumentsInFolder(nil) failed: %v", err)
	}
	if len(atRoot) != 1 || atRoot[0].ID != rootDoc.ID {
		t.Errorf("root listing = %+v, want only %s", atRoot, rootDoc.ID)
	}

	inF1, err := st.DocumentsInFolder(ctx, &f1)
	if err != nil {
		t.Fatalf("DocumentsInFolder(f1) failed: %v", err)
	}
	if len(inF1) != 1 || inF1[0].ID != folderDoc.ID {
		t.Errorf("f1 listing = %+v, want only %s", inF1, folderDoc.ID)
	}
}

// TestSubfolders tests parent filtering for folders
func TestSubfolders(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	top := model.NewFolder("Top", nil)
	sub := model.NewFolder("Sub", &top.ID)
	for _, f := range []model.Folder{top, sub} {
		if err := st.InsertFolder(ctx, f); err != nil {
			t.Fatalf("InsertFolder() failed: %v", err)
		}
	}

	atRoot, err := st.Subfolders(ctx, nil)
	if err != nil {
		t.Fatalf("Subfolders(nil) failed: %v", err)
	}
	if len(atRoot) != 1 || atRoot[0].ID != top.ID {
		t.Errorf("root subfolders = %+v, want only %s", atRoot, top.ID)
	}

	underTop, err := st.Subfolders(ctx, &top.ID)
	if err != nil {
		t.Fatalf("Subfolders(top) failed: %v", err)
	}
	if len(underTop) != 1 || underTop[0].ID != sub.ID {
		t.Errorf("top subfolders = %+v, want only %s", underTop, sub.ID)
	}
}

// TestMutationHook tests that the hook fires on real mutations and is
// skipped for no-ops
func TestMutationHook(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	fired := 0
	st.SetMutationHook(func() { fired++ })

	doc := model.NewDocument("Tracked", model.TypeText, nil)
	if err := st.InsertDocument(ctx, doc); err != nil {
		t.Fatalf("InsertDocument() failed: %v", err)
	}
	if fired != 1 {
		t.Errorf("hook fired %d times after insert, want 1", fired)
	}

	// Missing-id patch is a no-op: no hook.
	if err := st.PatchDocument(ctx, "missing", func(d *model.Document) {}); err != nil {
		t.Fatalf("PatchDocument() failed: %v", err)
	}
	if fired != 1 {
		t.Errorf("hook fired on a no-op patch (count %d)", fired)
	}

	if err := st.RemoveDocument(ctx, doc.ID); err != nil {
		t.Fatalf("RemoveDocument() failed: %v", err)
	}
	if fired != 2 {
		t.Errorf("hook fired %d times after remove, want 2", fired)
	}
}

// TestStore_ReopenPersists tests that collections survive close/reopen
func TestStore_ReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inklet.db")
	ctx := context.Background()

	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	doc := model.NewDocument("Durable", model.TypeText, nil)
	if err := st.InsertDocument(ctx, doc); err != nil {
		t.Fatalf("InsertDocument() failed: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	st2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer st2.Close()

	docs, err := st2.Documents(ctx)
	if err != nil {
		t.Fatalf("Documents() failed: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != doc.ID {
		t.Errorf("read back %+v after reopen, want %s", docs, doc.ID)
	}
}

// TestTrashCollection tests insert/remove on the trash collection
func TestTrashCollection(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	doc := model.NewDocument("Trashed", model.TypeText, nil)
	item, err := model.NewTrashItem(model.KindDocument, doc.ID, doc)
	if err != nil {
		t.Fatalf("NewTrashItem() failed: %v", err)
	}

	if err := st.InsertTrashItem(ctx, item); err != nil {
		t.Fatalf("InsertTrashItem() failed: %v", err)
	}
	items, err := st.TrashItems(ctx)
	if err != nil {
		t.Fatalf("TrashItems() failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != item.ID {
		t.Fatalf("trash listing = %+v, want only %s", items, item.ID)
	}

	if err := st.RemoveTrashItem(ctx, item.ID); err != nil {
		t.Fatalf("RemoveTrashItem() failed: %v", err)
	}
	items, err = st.TrashItems(ctx)
	if err != nil {
		t.Fatalf("TrashItems() failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("trash item still present after removal")
	}
}
