package api

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hollybrook/arbor/internal/linkextract"
)

// Graph handles GET /api/graph.
//
//	@Summary		Get the garden link graph
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	GraphResponse
//	@Security		BearerAuth
//	@Router			/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	lg := h.graph.BuildLinkGraph()

	titles := map[string]string{}
	if records, err := h.provider.GetAllContent(); err == nil {
		for _, rec := range records {
			titles[rec.Slug] = rec.Title
		}
	} else {
		slog.Warn("graph titles unavailable", slog.String("error", err.Error()))
	}

	// Nodes cover every slug that appears as a source or a target, so
	// dangling link targets show up in the visualization too.
	seen := map[string]bool{}
	var nodes []GraphNode
	var links []GraphLink
	addNode := func(slug string) {
		if !seen[slug] {
			seen[slug] = true
			nodes = append(nodes, GraphNode{ID: slug, Title: titles[slug]})
		}
	}
	slugs := make([]string, 0, len(lg))
	for slug := range lg {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	for _, slug := range slugs {
		addNode(slug)
		for _, target := range lg[slug] {
			addNode(target)
			links = append(links, GraphLink{Source: slug, Target: target})
		}
	}
	if nodes == nil {
		nodes = []GraphNode{}
	}
	if links == nil {
		links = []GraphLink{}
	}
	writeJSON(w, http.StatusOK, GraphResponse{Nodes: nodes, Links: links})
}

// RefreshGraph handles POST /api/graph/refresh.
//
//	@Summary		Invalidate all cached link relationships
//	@Tags			graph
//	@Success		204	"Caches cleared"
//	@Security		BearerAuth
//	@Router			/graph/refresh [post]
func (h *Handler) RefreshGraph(w http.ResponseWriter, _ *http.Request) {
	h.graph.RefreshCache()
	w.WriteHeader(http.StatusNoContent)
}

// Backlinks handles GET /api/backlinks/{slug}.
//
//	@Summary		Get pages that link to the given page
//	@Tags			graph
//	@Produce		json
//	@Param			slug	path		string	true	"Target slug or title"
//	@Success		200		{object}	BacklinksResponse
//	@Security		BearerAuth
//	@Router			/backlinks/{slug} [get]
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("slug is required"))
		return
	}
	entries := h.graph.GetBacklinks(slug)
	writeJSON(w, http.StatusOK, BacklinksResponse{
		Slug:      linkextract.NormalizeSlug(slug),
		Backlinks: entries,
	})
}

// ForwardLinks handles GET /api/forward-links/{slug}.
//
//	@Summary		Get pages the given page links out to
//	@Tags			graph
//	@Produce		json
//	@Param			slug	path		string	true	"Source slug"
//	@Success		200		{object}	ForwardLinksResponse
//	@Security		BearerAuth
//	@Router			/forward-links/{slug} [get]
func (h *Handler) ForwardLinks(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("slug is required"))
		return
	}
	links := h.graph.GetForwardLinks(slug)
	writeJSON(w, http.StatusOK, ForwardLinksResponse{
		Slug:  linkextract.NormalizeSlug(slug),
		Links: links,
	})
}

// Orphans handles GET /api/orphans.
//
//	@Summary		List pages with no inbound or outbound links
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	OrphansResponse
//	@Security		BearerAuth
//	@Router			/orphans [get]
func (h *Handler) Orphans(w http.ResponseWriter, _ *http.Request) {
	orphans := h.graph.GetOrphanedContent()
	if orphans == nil {
		orphans = []string{}
	}
	writeJSON(w, http.StatusOK, OrphansResponse{Orphans: orphans})
}

// LinkReport handles GET /api/links/report.
//
//	@Summary		Report broken internal links across the garden
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	LinkReportResponse
//	@Security		BearerAuth
//	@Router			/links/report [get]
func (h *Handler) LinkReport(w http.ResponseWriter, _ *http.Request) {
	broken := h.graph.ValidateLinks()
	writeJSON(w, http.StatusOK, LinkReportResponse{Broken: broken})
}

// ValidateExplorePath handles GET /api/explore/validate.
//
//	@Summary		Validate a comma-separated exploration path
//	@Tags			explore
//	@Produce		json
//	@Param			path	query		string	true	"Comma-separated slugs"
//	@Success		200		{object}	ExploreValidationResponse
//	@Security		BearerAuth
//	@Router			/explore/validate [get]
func (h *Handler) ValidateExplorePath(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	result := h.explore.ValidateExplorationPath(path)
	writeJSON(w, http.StatusOK, result)
}

// CheckExploreCycles handles GET /api/explore/cycles.
//
//	@Summary		Check an exploration path for circular references
//	@Tags			explore
//	@Produce		json
//	@Param			path	query		string	true	"Comma-separated slugs"
//	@Success		200		{object}	CycleCheckResponse
//	@Security		BearerAuth
//	@Router			/explore/cycles [get]
func (h *Handler) CheckExploreCycles(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	var slugs []string
	for _, s := range strings.Split(path, ",") {
		if s = strings.TrimSpace(s); s != "" {
			slugs = append(slugs, s)
		}
	}
	result := h.explore.CheckCircularReferences(slugs)
	writeJSON(w, http.StatusOK, result)
}
