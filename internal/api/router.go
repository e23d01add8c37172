package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hollybrook/arbor/internal/content"
	"github.com/hollybrook/arbor/internal/contentservice"
	"github.com/hollybrook/arbor/internal/graph"
	"github.com/hollybrook/arbor/internal/pathnav"
	"github.com/hollybrook/arbor/internal/render"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// gardenRoot is used to resolve the assets directory.
func NewRouter(svc *contentservice.Service, g *graph.Service, explore *pathnav.Service, renderer *render.Renderer, provider content.Provider, authEnabled bool, token string, sseHandler http.Handler, gardenRoot string) chi.Router {
	h := NewHandler(svc, g, explore, renderer, provider)
	ah := NewAssetHandler(gardenRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Content CRUD.
	r.Get("/content", h.ListContent)
	r.Post("/content", h.CreateContent)
	r.Get("/content/*", h.GetContent)
	r.Put("/content/*", h.UpdateContent)
	r.Delete("/content/*", h.DeleteContent)

	// Search and rendering.
	r.Get("/search", h.Search)
	r.Get("/render/*", h.RenderContent)

	// Link graph.
	r.Get("/graph", h.Graph)
	r.Post("/graph/refresh", h.RefreshGraph)
	r.Get("/backlinks/{slug}", h.Backlinks)
	r.Get("/forward-links/{slug}", h.ForwardLinks)
	r.Get("/orphans", h.Orphans)
	r.Get("/links/report", h.LinkReport)

	// Exploration paths.
	r.Get("/explore/validate", h.ValidateExplorePath)
	r.Get("/explore/cycles", h.CheckExploreCycles)

	// Asset upload (auth-protected).
	r.Post("/assets", ah.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
