// Package content supplies the corpus of garden items as structured records.
// The relationship subsystem (graph, pathnav) depends on the Provider
// interface only and never touches the file system directly.
package content

import (
	"path"
	"strings"

	"github.com/hollybrook/arbor/internal/linkextract"
	"github.com/hollybrook/arbor/internal/models"
)

// Provider is the single source of truth for content records.
type Provider interface {
	// GetAllContent returns every current content item, unpaginated.
	GetAllContent() ([]models.ContentRecord, error)
	// GetContentBySlug returns the record with the given slug inside one
	// section, or apperr.ErrNotFound.
	GetContentBySlug(section, slug string) (*models.ContentRecord, error)
}

// SlugFromPath derives a content slug from a garden-relative file path:
// the file name without its .md extension, normalized.
func SlugFromPath(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	base = strings.TrimSuffix(base, ".md")
	return linkextract.NormalizeSlug(base)
}

// SectionFromPath returns the known section a path belongs to, or the
// notes section for files outside any section directory.
func SectionFromPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	for _, s := range models.Sections {
		if strings.HasPrefix(p, s+"/") {
			return s
		}
	}
	return models.SectionNotes
}
