package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes what a trash snapshot originally was.
type Kind string

const (
	KindDocument Kind = "document"
	KindFolder   Kind = "folder"
)

// TrashItem is a soft-deleted entity. The Payload holds a full JSON
// snapshot of the original document or folder and is immutable once the
// item is created; restore reinserts it verbatim.
type TrashItem struct {
	ID         string          `json:"id"`
	OriginalID string          `json:"original_id"`
	Kind       Kind            `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	DeletedAt  time.Time       `json:"deleted_at"`
}

// NewTrashItem snapshots a live entity into a trash record. The trash
// item gets its own identifier, distinct from the original's.
func NewTrashItem(kind Kind, originalID string, payload interface{}) (TrashItem, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return TrashItem{}, fmt.Errorf("failed to snapshot %s %s: %w", kind, originalID, err)
	}
	return TrashItem{
		ID:         uuid.NewString(),
		OriginalID: originalID,
		Kind:       kind,
		Payload:    data,
		DeletedAt:  time.Now().UTC(),
	}, nil
}

// Document unmarshals the snapshot as a Document.
// Returns an error if the item is not a document snapshot.
func (t TrashItem) Document() (Document, error) {
	if t.Kind != KindDocument {
		return Document{}, fmt.Errorf("trash item %s is a %s, not a document", t.ID, t.Kind)
	}
	var doc Document
	if err := json.Unmarshal(t.Payload, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode document snapshot %s: %w", t.ID, err)
	}
	return doc, nil
}

// Folder unmarshals the snapshot as a Folder.
// Returns an error if the item is not a folder snapshot.
func (t TrashItem) Folder() (Folder, error) {
	if t.Kind != KindFolder {
		return Folder{}, fmt.Errorf("trash item %s is a %s, not a folder", t.ID, t.Kind)
	}
	var folder Folder
	if err := json.Unmarshal(t.Payload, &folder); err != nil {
		return Folder{}, fmt.Errorf("failed to decode folder snapshot %s: %w", t.ID, err)
	}
	return folder, nil
}
