// Package graph answers backlink, forward-link, and orphan queries over the
// garden's content by rebuilding a link graph from a full content scan.
//
// The graph is never persisted and never updated incrementally: every cache
// miss recomputes from scratch through the content provider. All public
// methods are fail-open — internal errors are logged and degrade to empty
// results so that backlink discovery can never break a page render.
package graph

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/hollybrook/arbor/internal/content"
	"github.com/hollybrook/arbor/internal/linkextract"
	"github.com/hollybrook/arbor/internal/ttlcache"
)

// graphKey is the single cache key under which the whole link graph lives.
const graphKey = "link-graph"

// contextRadius bounds the excerpt around a link occurrence; the full
// excerpt never exceeds maxContextLen characters.
const (
	contextRadius = 40
	maxContextLen = 100
)

// BacklinkEntry describes one content item linking to a target.
type BacklinkEntry struct {
	SourceSlug  string `json:"source_slug"`
	SourceTitle string `json:"source_title"`
	LinkContext string `json:"link_context"`
}

// ForwardLink describes an outgoing link resolved to an existing item.
type ForwardLink struct {
	TargetSlug  string `json:"target_slug"`
	TargetTitle string `json:"target_title"`
	LinkText    string `json:"link_text"`
}

// BrokenLink is one diagnostic from ValidateLinks.
type BrokenLink struct {
	SourceSlug string `json:"source_slug"`
	BrokenLink string `json:"broken_link"`
	Error      string `json:"error"`
}

// LinkGraph maps each source slug to the set of slugs it links to. Every
// known content slug appears as a key, isolated nodes with an empty set.
type LinkGraph map[string][]string

// Service orchestrates the content provider, the link extractor, and the
// shared TTL cache.
type Service struct {
	provider content.Provider
	logger   *slog.Logger
	ttl      time.Duration

	backlinks  *ttlcache.Cache[[]BacklinkEntry]
	graphCache *ttlcache.Cache[LinkGraph]
}

// New creates a graph service. ttl bounds staleness for both the per-target
// backlink cache and the whole-graph cache; maxEntries caps the backlink
// cache size.
func New(provider content.Provider, logger *slog.Logger, ttl time.Duration, maxEntries int) *Service {
	return &Service{
		provider:   provider,
		logger:     logger,
		ttl:        ttl,
		backlinks:  ttlcache.New[[]BacklinkEntry](maxEntries),
		graphCache: ttlcache.New[LinkGraph](1),
	}
}

// ExtractInternalLinks returns the normalized internal link targets found
// in content originating from sourcePath.
func (s *Service) ExtractInternalLinks(contentText, sourcePath string) []string {
	return linkextract.InternalLinks(contentText, sourcePath)
}

// GetBacklinks scans all content for items linking to target. Matching is
// case-insensitive and treats wiki-style space/hyphen variants as equal;
// self-references are excluded. Results are cached per target.
func (s *Service) GetBacklinks(target string) []BacklinkEntry {
	key := linkextract.NormalizeSlug(target)
	if key == "" {
		return []BacklinkEntry{}
	}
	entries, err := s.backlinks.GetOrCompute(key, s.ttl, func() ([]BacklinkEntry, error) {
		return s.scanBacklinks(key)
	})
	if err != nil {
		s.logger.Warn("backlink scan failed", slog.String("target", key), slog.String("error", err.Error()))
		return []BacklinkEntry{}
	}
	return entries
}

func (s *Service) scanBacklinks(target string) ([]BacklinkEntry, error) {
	records, err := s.provider.GetAllContent()
	if err != nil {
		return nil, err
	}
	entries := []BacklinkEntry{}
	for _, rec := range records {
		source := linkextract.NormalizeSlug(rec.Slug)
		if source == target {
			continue
		}
		for _, link := range linkextract.InternalLinks(rec.Content, rec.FilePath) {
			if link != target {
				continue
			}
			entries = append(entries, BacklinkEntry{
				SourceSlug:  source,
				SourceTitle: rec.Title,
				LinkContext: linkContext(rec.Content, target),
			})
			break
		}
	}
	return entries, nil
}

// GetForwardLinks resolves every outgoing link of source to an existing
// content item. Links whose target does not exist are silently skipped —
// they are not forward links if nothing lives at that slug.
func (s *Service) GetForwardLinks(source string) []ForwardLink {
	records, err := s.provider.GetAllContent()
	if err != nil {
		s.logger.Warn("forward link scan failed", slog.String("source", source), slog.String("error", err.Error()))
		return []ForwardLink{}
	}

	want := linkextract.NormalizeSlug(source)
	bySlug := make(map[string]int, len(records))
	var src *int
	for i, rec := range records {
		slug := linkextract.NormalizeSlug(rec.Slug)
		bySlug[slug] = i
		if slug == want {
			idx := i
			src = &idx
		}
	}
	if src == nil {
		return []ForwardLink{}
	}

	rec := records[*src]
	out := []ForwardLink{}
	seen := make(map[string]struct{})
	for _, link := range linkextract.Links(rec.Content, rec.FilePath) {
		if link.Target == "" || link.Target == want {
			continue
		}
		i, ok := bySlug[link.Target]
		if !ok {
			continue
		}
		if _, dup := seen[link.Target]; dup {
			continue
		}
		seen[link.Target] = struct{}{}
		out = append(out, ForwardLink{
			TargetSlug:  link.Target,
			TargetTitle: records[i].Title,
			LinkText:    link.Text,
		})
	}
	return out
}

// BuildLinkGraph rebuilds the complete adjacency mapping from a full
// content scan, including isolated nodes. The result is cached as a single
// entry until the TTL elapses or RefreshCache is called.
func (s *Service) BuildLinkGraph() LinkGraph {
	g, err := s.graphCache.GetOrCompute(graphKey, s.ttl, s.buildGraph)
	if err != nil {
		s.logger.Warn("link graph build failed", slog.String("error", err.Error()))
		return LinkGraph{}
	}
	return g
}

func (s *Service) buildGraph() (LinkGraph, error) {
	records, err := s.provider.GetAllContent()
	if err != nil {
		return nil, err
	}
	g := make(LinkGraph, len(records))
	for _, rec := range records {
		source := linkextract.NormalizeSlug(rec.Slug)
		targets := []string{}
		for _, link := range linkextract.InternalLinks(rec.Content, rec.FilePath) {
			if link == source {
				// A slug never links to itself.
				continue
			}
			targets = append(targets, link)
		}
		g[source] = targets
	}
	return g, nil
}

// ValidateLinks reports every extracted link that fails to resolve to a
// known slug. Targets that collapse to nothing during normalization are
// reported distinctly from targets that point at no existing content.
func (s *Service) ValidateLinks() []BrokenLink {
	records, err := s.provider.GetAllContent()
	if err != nil {
		s.logger.Warn("link validation failed", slog.String("error", err.Error()))
		return []BrokenLink{}
	}

	known := make(map[string]struct{}, len(records))
	for _, rec := range records {
		known[linkextract.NormalizeSlug(rec.Slug)] = struct{}{}
	}

	out := []BrokenLink{}
	for _, rec := range records {
		source := linkextract.NormalizeSlug(rec.Slug)
		for _, link := range linkextract.Links(rec.Content, rec.FilePath) {
			switch {
			case link.Target == "":
				out = append(out, BrokenLink{
					SourceSlug: source,
					BrokenLink: link.Raw,
					Error:      "link target not found",
				})
			default:
				if _, ok := known[link.Target]; !ok {
					out = append(out, BrokenLink{
						SourceSlug: source,
						BrokenLink: link.Raw,
						Error:      "target slug does not exist",
					})
				}
			}
		}
	}
	return out
}

// GetOrphanedContent returns the slugs with neither incoming nor outgoing
// edges in the current link graph, sorted.
func (s *Service) GetOrphanedContent() []string {
	g := s.BuildLinkGraph()

	incoming := make(map[string]int, len(g))
	for _, targets := range g {
		for _, t := range targets {
			incoming[t]++
		}
	}

	orphans := []string{}
	for slug, targets := range g {
		if len(targets) == 0 && incoming[slug] == 0 {
			orphans = append(orphans, slug)
		}
	}
	sort.Strings(orphans)
	return orphans
}

// RefreshCache drops all cached backlink entries and the cached graph.
// The content layer must call this after any content mutation; the service
// performs no invalidation of its own.
func (s *Service) RefreshCache() {
	s.backlinks.Clear()
	s.graphCache.Clear()
}

// linkContext extracts an excerpt of at most maxContextLen characters
// surrounding the first occurrence of target (or its space variant) in
// contentText, with whitespace collapsed.
func linkContext(contentText, target string) string {
	lower := strings.ToLower(contentText)
	idx := strings.Index(lower, target)
	if idx < 0 {
		spaced := strings.ReplaceAll(target, "-", " ")
		idx = strings.Index(lower, spaced)
	}
	if idx < 0 {
		idx = 0
	}

	runes := []rune(contentText)
	// Byte offset → rune offset for the window arithmetic.
	pos := len([]rune(contentText[:idx]))
	start := pos - contextRadius
	if start < 0 {
		start = 0
	}
	end := start + maxContextLen
	if end > len(runes) {
		end = len(runes)
	}
	return strings.Join(strings.Fields(string(runes[start:end])), " ")
}
