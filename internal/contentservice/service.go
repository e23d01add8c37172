// Package contentservice coordinates storage, index, and graph operations
// for garden content.
package contentservice

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/hollybrook/arbor/internal/apperr"
	"github.com/hollybrook/arbor/internal/checksum"
	"github.com/hollybrook/arbor/internal/content"
	"github.com/hollybrook/arbor/internal/graph"
	"github.com/hollybrook/arbor/internal/index"
	"github.com/hollybrook/arbor/internal/parser"
	"github.com/hollybrook/arbor/internal/storage"
)

// ContentDetail is the full representation of a content page.
type ContentDetail struct {
	Path        string                `json:"path"`
	Section     string                `json:"section"`
	Slug        string                `json:"slug"`
	Title       string                `json:"title"`
	Content     string                `json:"content"`
	Checksum    string                `json:"checksum"`
	Status      string                `json:"status"`
	Tags        []string              `json:"tags"`
	Frontmatter map[string]any        `json:"frontmatter,omitempty"`
	Backlinks   []graph.BacklinkEntry `json:"backlinks"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// ContentListItem is a lightweight item in a list response.
type ContentListItem struct {
	Path      string    `json:"path"`
	Section   string    `json:"section"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	Status    string    `json:"status"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage, index, and graph operations.
type Service struct {
	store storage.Provider
	db    *index.DB
	graph *graph.Service
}

// NewService creates a new content service.
func NewService(store storage.Provider, db *index.DB, g *graph.Service) *Service {
	return &Service{store: store, db: db, graph: g}
}

// Get reads a page from storage, parses it, and enriches with backlinks.
func (s *Service) Get(_ context.Context, path string) (*ContentDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildDetail(path, data)
}

// Create writes a new page, indexes it, and invalidates the link graph.
func (s *Service) Create(_ context.Context, path string, data []byte) (*ContentDetail, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, data); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, data); err != nil {
		return nil, err
	}
	s.graph.RefreshCache()
	return s.buildDetail(path, data)
}

// Update writes new content with optimistic concurrency. A non-empty
// ifMatch must equal the checksum of the current stored bytes.
func (s *Service) Update(_ context.Context, path string, data []byte, ifMatch string) (*ContentDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, data); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, data); err != nil {
		return nil, err
	}
	s.graph.RefreshCache()
	return s.buildDetail(path, data)
}

// Delete removes a page from storage and index.
func (s *Service) Delete(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}
	if err := s.db.DeleteContent(path); err != nil {
		return err
	}
	s.graph.RefreshCache()
	return nil
}

// List returns paginated content with optional section and tag filters.
func (s *Service) List(_ context.Context, limit, offset int, section, tag, sort string) ([]ContentListItem, int, error) {
	rows, total, err := s.db.ListContent(limit, offset, section, tag, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]ContentListItem, len(rows))
	for i, r := range rows {
		items[i] = ContentListItem{
			Path:      r.Path,
			Section:   r.Section,
			Slug:      r.Slug,
			Title:     r.Title,
			Checksum:  r.Checksum,
			Status:    r.Status,
			Tags:      nonNilSlice(r.Tags),
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// IndexFile parses data and upserts it into the index.
// Exported so that sync and watcher callbacks can reuse it.
func (s *Service) IndexFile(path string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	title := res.Title
	if title == "" {
		title = content.SlugFromPath(path)
	}
	return s.db.UpsertContent(index.ContentRow{
		Path:      path,
		Section:   content.SectionFromPath(path),
		Slug:      content.SlugFromPath(path),
		Title:     title,
		Checksum:  checksum.Sum(data),
		Status:    res.Status,
		Tags:      nonNilSlice(res.Tags),
		UpdatedAt: time.Now(),
	}, res.Body)
}

// buildDetail constructs a ContentDetail from raw data without re-reading
// the file.
func (s *Service) buildDetail(path string, data []byte) (*ContentDetail, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	slug := content.SlugFromPath(path)
	title := res.Title
	if title == "" {
		title = slug
	}
	bl := s.graph.GetBacklinks(slug)
	if bl == nil {
		bl = []graph.BacklinkEntry{}
	}
	return &ContentDetail{
		Path:        path,
		Section:     content.SectionFromPath(path),
		Slug:        slug,
		Title:       title,
		Content:     string(data),
		Checksum:    checksum.Sum(data),
		Status:      res.Status,
		Tags:        nonNilSlice(res.Tags),
		Frontmatter: res.Frontmatter,
		Backlinks:   bl,
		UpdatedAt:   time.Now(),
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
