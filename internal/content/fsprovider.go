package content

import (
	"github.com/hollybrook/arbor/internal/apperr"
	"github.com/hollybrook/arbor/internal/linkextract"
	"github.com/hollybrook/arbor/internal/models"
	"github.com/hollybrook/arbor/internal/parser"
	"github.com/hollybrook/arbor/internal/storage"
)

// FSProvider implements Provider on top of the garden file system,
// parsing each file on demand. It carries no state of its own; freshness
// is whatever is on disk at call time.
type FSProvider struct {
	store storage.Provider
}

// NewFSProvider creates a provider backed by the given storage.
func NewFSProvider(store storage.Provider) *FSProvider {
	return &FSProvider{store: store}
}

// GetAllContent walks the whole garden and returns a record per file.
// Files that cannot be read or parsed are skipped; the corpus is
// best-effort by contract.
func (p *FSProvider) GetAllContent() ([]models.ContentRecord, error) {
	metas, err := p.store.List("")
	if err != nil {
		return nil, err
	}
	out := make([]models.ContentRecord, 0, len(metas))
	for _, m := range metas {
		rec, err := p.load(m.Path)
		if err != nil {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

// GetContentBySlug scans one section for a file whose derived slug matches.
// Matching is on the normalized form, so case and space/hyphen variants
// are equivalent.
func (p *FSProvider) GetContentBySlug(section, slug string) (*models.ContentRecord, error) {
	want := linkextract.NormalizeSlug(slug)
	if want == "" {
		return nil, apperr.ErrNotFound
	}
	metas, err := p.store.List(section)
	if err != nil {
		return nil, err
	}
	for _, m := range metas {
		if SlugFromPath(m.Path) != want {
			continue
		}
		return p.load(m.Path)
	}
	return nil, apperr.ErrNotFound
}

func (p *FSProvider) load(path string) (*models.ContentRecord, error) {
	data, err := p.store.Read(path)
	if err != nil {
		return nil, err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	slug := SlugFromPath(path)
	title := res.Title
	if title == "" {
		title = slug
	}
	return &models.ContentRecord{
		Slug:     slug,
		Section:  SectionFromPath(path),
		Title:    title,
		Content:  res.Body,
		FilePath: path,
		Tags:     res.Tags,
		Status:   res.Status,
	}, nil
}
