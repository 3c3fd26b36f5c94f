// Package model provides the data contracts for inklet's local-first
// document store: documents, folders, and trash snapshots.
package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// DocumentType classifies a document's content for presentation layers.
// The set is closed for validation purposes but deliberately easy to extend.
type DocumentType string

const (
	TypeText     DocumentType = "text"
	TypeImage    DocumentType = "image"
	TypeVideo    DocumentType = "video"
	TypePDF      DocumentType = "pdf"
	TypeCode     DocumentType = "code"
	TypeMarkdown DocumentType = "markdown"
	TypeJSON     DocumentType = "json"
	TypeCSV      DocumentType = "csv"
	TypeHTML     DocumentType = "html"
	TypeExcel    DocumentType = "excel"
	TypeAudio    DocumentType = "audio"
)

// KnownDocumentTypes lists every type the validator accepts.
func KnownDocumentTypes() []interface{} {
	return []interface{}{
		TypeText, TypeImage, TypeVideo, TypePDF, TypeCode, TypeMarkdown,
		TypeJSON, TypeCSV, TypeHTML, TypeExcel, TypeAudio,
	}
}

// Document is a single user document. A nil FolderID means the document
// lives at the root level.
//
// A Document may transiently reference a folder that has been moved to
// trash; readers tolerate the dangling reference and treat the document
// as orphaned rather than failing.
type Document struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Type       DocumentType `json:"type"`
	Content    string       `json:"content,omitempty"`
	FileURL    string       `json:"file_url,omitempty"`
	FolderID   *string      `json:"folder_id"`
	Pinned     bool         `json:"pinned"`
	OrderIndex int          `json:"order_index"`
	Size       *int64       `json:"size,omitempty"`
	Extension  string       `json:"extension,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Validate checks the document's field values before it reaches the store.
func (d Document) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required),
		validation.Field(&d.Title, validation.Required, validation.Length(1, 500)),
		validation.Field(&d.Type, validation.Required, validation.In(KnownDocumentTypes()...)),
		validation.Field(&d.CreatedAt, validation.Required),
	)
}

// NewDocument constructs a document with a fresh ID and creation timestamp.
// OrderIndex placement is the caller's concern (see the order package).
func NewDocument(title string, typ DocumentType, folderID *string) Document {
	return Document{
		ID:        uuid.NewString(),
		Title:     title,
		Type:      typ,
		FolderID:  folderID,
		CreatedAt: time.Now().UTC(),
	}
}

// InFolder reports whether the document is a direct child of folderID.
// A nil folderID matches root-level documents.
func (d Document) InFolder(folderID *string) bool {
	if folderID == nil {
		return d.FolderID == nil
	}
	return d.FolderID != nil && *d.FolderID == *folderID
}
