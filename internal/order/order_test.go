package order

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/inklet-app/inklet/internal/model"
	"github.com/inklet-app/inklet/internal/store"
)

// TestSortDocuments_PinnedFirst tests the pinned-then-index comparator
func TestSortDocuments_PinnedFirst(t *testing.T) {
	docs := []model.Document{
		{ID: "c", OrderIndex: 2},
		{ID: "pinned-late", OrderIndex: 5, Pinned: true},
		{ID: "a", OrderIndex: 0},
		{ID: "pinned-early", OrderIndex: 1, Pinned: true},
		{ID: "b", OrderIndex: 1},
	}

	SortDocuments(docs)

	got := make([]string, len(docs))
	for i, d := range docs {
		got[i] = d.ID
	}
	want := []string{"pinned-early", "pinned-late", "a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sorted order = %v, want %v", got, want)
	}
}

// TestSortDocuments_StableAmongEqual tests that equal keys keep their
// relative order
func TestSortDocuments_StableAmongEqual(t *testing.T) {
	docs := []model.Document{
		{ID: "first", OrderIndex: 3},
		{ID: "second", OrderIndex: 3},
	}
	SortDocuments(docs)
	if docs[0].ID != "first" || docs[1].ID != "second" {
		t.Errorf("sort is not stable for equal keys: %v, %v", docs[0].ID, docs[1].ID)
	}
}

// TestMoveIndex tests the single-element move used by drag-and-drop
func TestMoveIndex(t *testing.T) {
	tests := []struct {
		name   string
		ids    []string
		moved  string
		over   string
		want   []string
		wantOK bool
	}{
		{
			name:   "move down",
			ids:    []string{"a", "b", "c", "d"},
			moved:  "a",
			over:   "c",
			want:   []string{"b", "c", "a", "d"},
			wantOK: true,
		},
		{
			name:   "move up",
			ids:    []string{"a", "b", "c", "d"},
			moved:  "d",
			over:   "b",
			want:   []string{"a", "d", "b", "c"},
			wantOK: true,
		},
		{
			name:   "move onto itself",
			ids:    []string{"a", "b", "c"},
			moved:  "b",
			over:   "b",
			want:   []string{"a", "b", "c"},
			wantOK: true,
		},
		{
			name:   "missing moved id",
			ids:    []string{"a", "b"},
			moved:  "z",
			over:   "a",
			wantOK: false,
		},
		{
			name:   "missing target id",
			ids:    []string{"a", "b"},
			moved:  "a",
			over:   "z",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := moveIndex(tt.ids, tt.moved, tt.over)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("sequence = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestCommitDocumentReorder tests that a commit persists dense indices
func TestCommitDocumentReorder(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "inklet.db"))
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	defer st.Close()
	ctx := context.Background()

	var snapshot []model.Document
	for i, title := range []string{"a", "b", "c", "d"} {
		doc := model.NewDocument(title, model.TypeText, nil)
		doc.OrderIndex = i * 10 // sparse on purpose
		if err := st.InsertDocument(ctx, doc); err != nil {
			t.Fatalf("InsertDocument() failed: %v", err)
		}
		snapshot = append(snapshot, doc)
	}

	// Drop "a" onto "c".
	if err := CommitDocumentReorder(ctx, st, snapshot[0].ID, snapshot[2].ID, snapshot); err != nil {
		t.Fatalf("CommitDocumentReorder() failed: %v", err)
	}

	docs, err := st.Documents(ctx)
	if err != nil {
		t.Fatalf("Documents() failed: %v", err)
	}
	SortDocuments(docs)

	gotTitles := make([]string, len(docs))
	for i, d := range docs {
		gotTitles[i] = d.Title
		if d.OrderIndex != i {
			t.Errorf("OrderIndex for %q = %d, want dense %d", d.Title, d.OrderIndex, i)
		}
	}
	want := []string{"b", "c", "a", "d"}
	if !reflect.DeepEqual(gotTitles, want) {
		t.Errorf("persisted order = %v, want %v", gotTitles, want)
	}
}

// TestCommitDocumentReorder_MissingID tests that unknown ids leave the
// collection untouched
func TestCommitDocumentReorder_MissingID(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "inklet.db"))
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	defer st.Close()
	ctx := context.Background()

	doc := model.NewDocument("only", model.TypeText, nil)
	doc.OrderIndex = 7
	if err := st.InsertDocument(ctx, doc); err != nil {
		t.Fatalf("InsertDocument() failed: %v", err)
	}

	if err := CommitDocumentReorder(ctx, st, "ghost", doc.ID, []model.Document{doc}); err != nil {
		t.Fatalf("CommitDocumentReorder() failed: %v", err)
	}

	docs, _ := st.Documents(ctx)
	if docs[0].OrderIndex != 7 {
		t.Errorf("no-op reorder changed OrderIndex to %d", docs[0].OrderIndex)
	}
}

// TestCommitFolderReorder tests the folder variant end to end
func TestCommitFolderReorder(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "inklet.db"))
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	defer st.Close()
	ctx := context.Background()

	var snapshot []model.Folder
	for i, name := range []string{"x", "y", "z"} {
		folder := model.NewFolder(name, nil)
		folder.OrderIndex = i
		if err := st.InsertFolder(ctx, folder); err != nil {
			t.Fatalf("InsertFolder() failed: %v", err)
		}
		snapshot = append(snapshot, folder)
	}

	// Drop "z" onto "x".
	if err := CommitFolderReorder(ctx, st, snapshot[2].ID, snapshot[0].ID, snapshot); err != nil {
		t.Fatalf("CommitFolderReorder() failed: %v", err)
	}

	folders, err := st.Folders(ctx)
	if err != nil {
		t.Fatalf("Folders() failed: %v", err)
	}
	SortFolders(folders)

	gotNames := make([]string, len(folders))
	for i, f := range folders {
		gotNames[i] = f.Name
	}
	want := []string{"z", "x", "y"}
	if !reflect.DeepEqual(gotNames, want) {
		t.Errorf("persisted folder order = %v, want %v", gotNames, want)
	}
}
