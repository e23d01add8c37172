// Package models defines the domain types for Arbor.
package models

import "time"

// Garden sections. Each section is a top-level directory in the garden
// holding one kind of content.
const (
	SectionNotes     = "notes"
	SectionBookmarks = "bookmarks"
	SectionTIL       = "til"
)

// Sections lists every known content section in display order.
var Sections = []string{SectionNotes, SectionBookmarks, SectionTIL}

// ContentRecord is one content item of the garden as the relationship
// subsystem sees it: immutable within a request, owned by the content layer.
type ContentRecord struct {
	Slug     string   `json:"slug"`
	Section  string   `json:"section"`
	Title    string   `json:"title"`
	Content  string   `json:"content"` // raw Markdown body, frontmatter stripped
	FilePath string   `json:"file_path"`
	Tags     []string `json:"tags,omitempty"`
	Status   string   `json:"status,omitempty"`
}

// ContentMetadata is a lightweight representation returned by list operations.
type ContentMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
