package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hollybrook/arbor/internal/apperr"
	"github.com/hollybrook/arbor/internal/content"
	"github.com/hollybrook/arbor/internal/contentservice"
	"github.com/hollybrook/arbor/internal/graph"
	"github.com/hollybrook/arbor/internal/parser"
	"github.com/hollybrook/arbor/internal/pathnav"
	"github.com/hollybrook/arbor/internal/render"
)

// Handler holds API route handlers.
type Handler struct {
	svc      *contentservice.Service
	graph    *graph.Service
	explore  *pathnav.Service
	renderer *render.Renderer
	provider content.Provider
}

// NewHandler creates a new Handler.
func NewHandler(svc *contentservice.Service, g *graph.Service, explore *pathnav.Service, renderer *render.Renderer, provider content.Provider) *Handler {
	return &Handler{svc: svc, graph: g, explore: explore, renderer: renderer, provider: provider}
}

// contentPath extracts the page path from the URL (everything after the
// route prefix). Supports encoded slashes from OpenAPI clients
// (e.g. notes%2Fhello.md).
func contentPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListContent handles GET /api/content.
//
//	@Summary		List content with optional pagination and filtering
//	@Tags			content
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			section	query		string	false	"Filter by section"	Enums(notes, bookmarks, til)
//	@Param			tag		query		string	false	"Filter by tag"
//	@Param			sort	query		string	false	"Sort field"		Enums(updated_at, title, path)
//	@Success		200		{object}	ContentListResponse
//	@Security		BearerAuth
//	@Router			/content [get]
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	section := q.Get("section")
	tag := q.Get("tag")
	sort := q.Get("sort")

	items, total, err := h.svc.List(r.Context(), limit, offset, section, tag, sort)
	if err != nil {
		slog.Error("list content failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"content": items,
		"total":   total,
	})
}

// GetContent handles GET /api/content/*.
//
//	@Summary		Get a single page by path
//	@Tags			content
//	@Produce		json
//	@Param			path	path		string	true	"Page path"
//	@Success		200		{object}	ContentDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/content/{path} [get]
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	path := contentPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	page, err := h.svc.Get(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get content failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// CreateContent handles POST /api/content.
//
//	@Summary		Create a new page
//	@Tags			content
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateContentRequest	true	"Page to create"
//	@Success		201		{object}	ContentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/content [post]
func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and content are required"))
		return
	}
	page, err := h.svc.Create(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, errorBody("page already exists"))
		} else {
			slog.Error("create content failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

// UpdateContent handles PUT /api/content/*.
//
//	@Summary		Update a page with optimistic concurrency
//	@Tags			content
//	@Accept			json
//	@Produce		json
//	@Param			path		path	string					true	"Page path"
//	@Param			If-Match	header	string					false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	UpdateContentRequest	true	"Updated content"
//	@Success		200			{object}	ContentDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/content/{path} [put]
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	path := contentPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	ifMatch := r.Header.Get("If-Match")
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch = strings.Trim(ifMatch, `"`)

	page, err := h.svc.Update(r.Context(), path, []byte(req.Content), ifMatch)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrConflict):
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
		default:
			slog.Error("update content failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// DeleteContent handles DELETE /api/content/*.
//
//	@Summary		Delete a page
//	@Tags			content
//	@Param			path	path	string	true	"Page path"
//	@Success		204		"Page deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/content/{path} [delete]
func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	path := contentPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.Delete(r.Context(), path); err != nil {
		slog.Error("delete content failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across the garden
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// RenderContent handles GET /api/render/*.
//
//	@Summary		Render a stored page to HTML
//	@Tags			content
//	@Produce		json
//	@Param			path	path		string	true	"Page path"
//	@Success		200		{object}	RenderResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/render/{path} [get]
func (h *Handler) RenderContent(w http.ResponseWriter, r *http.Request) {
	path := contentPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	page, err := h.svc.Get(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("render content failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	res, err := parser.Parse([]byte(page.Content))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	html, err := h.renderer.HTML([]byte(res.Body))
	if err != nil {
		slog.Error("markdown render failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, RenderResponse{Path: path, HTML: string(html)})
}
