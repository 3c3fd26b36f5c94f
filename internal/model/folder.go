package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Folder is a container for documents and other folders. A nil ParentID
// means the folder lives at the root level.
//
// The parent graph must stay acyclic. The store does not enforce this on
// write; the hierarchy resolver guards against cycles when walking parents,
// so a corrupted graph degrades to a truncated breadcrumb rather than an
// infinite loop.
type Folder struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ParentID   *string   `json:"parent_id"`
	Pinned     bool      `json:"pinned"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks the folder's field values before it reaches the store.
func (f Folder) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.ID, validation.Required),
		validation.Field(&f.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&f.CreatedAt, validation.Required),
	)
}

// NewFolder constructs a folder with a fresh ID and creation timestamp.
func NewFolder(name string, parentID *string) Folder {
	return Folder{
		ID:        uuid.NewString(),
		Name:      name,
		ParentID:  parentID,
		CreatedAt: time.Now().UTC(),
	}
}

// HasParent reports whether the folder is a direct child of parentID.
// A nil parentID matches root-level folders.
func (f Folder) HasParent(parentID *string) bool {
	if parentID == nil {
		return f.ParentID == nil
	}
	return f.ParentID != nil && *f.ParentID == *parentID
}
