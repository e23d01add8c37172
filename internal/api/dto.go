package api

import (
	"github.com/hollybrook/arbor/internal/contentservice"
	"github.com/hollybrook/arbor/internal/graph"
	"github.com/hollybrook/arbor/internal/pathnav"
)

// CreateContentRequest is the request body for creating a page.
type CreateContentRequest struct {
	Path    string `json:"path" example:"notes/hello.md" validate:"required"`
	Content string `json:"content" example:"# Hello\nWorld" validate:"required"`
}

// UpdateContentRequest is the request body for updating a page.
type UpdateContentRequest struct {
	Content string `json:"content" example:"# Updated\nContent" validate:"required"`
}

// ContentDetail is the full page response type (aliased from the domain layer).
type ContentDetail = contentservice.ContentDetail

// ContentListItem is a lightweight item in a list response (aliased from the domain layer).
type ContentListItem = contentservice.ContentListItem

// ContentListResponse wraps paginated content listings.
type ContentListResponse struct {
	Content []ContentListItem `json:"content" validate:"required"`
	Total   int               `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path" example:"notes/hello.md" validate:"required"`
	Title   string `json:"title" example:"Hello" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// GraphNode is a node in the link graph.
type GraphNode struct {
	ID    string `json:"id" example:"hello" validate:"required"`
	Title string `json:"title,omitempty" example:"Hello"`
}

// GraphLink is an edge in the link graph.
type GraphLink struct {
	Source string `json:"source" example:"hello" validate:"required"`
	Target string `json:"target" example:"world" validate:"required"`
}

// GraphResponse wraps the link graph.
type GraphResponse struct {
	Nodes []GraphNode `json:"nodes" validate:"required"`
	Links []GraphLink `json:"links" validate:"required"`
}

// BacklinksResponse wraps the backlinks for one page.
type BacklinksResponse struct {
	Slug      string                `json:"slug" example:"hello" validate:"required"`
	Backlinks []graph.BacklinkEntry `json:"backlinks" validate:"required"`
}

// ForwardLinksResponse wraps the outgoing links for one page.
type ForwardLinksResponse struct {
	Slug  string              `json:"slug" example:"hello" validate:"required"`
	Links []graph.ForwardLink `json:"links" validate:"required"`
}

// OrphansResponse lists pages with no inbound or outbound links.
type OrphansResponse struct {
	Orphans []string `json:"orphans" validate:"required"`
}

// LinkReportResponse lists broken internal links across the garden.
type LinkReportResponse struct {
	Broken []graph.BrokenLink `json:"broken" validate:"required"`
}

// ExploreValidationResponse is a path validation result (aliased from the domain layer).
type ExploreValidationResponse = pathnav.ValidationResult

// CycleCheckResponse is a circular reference report (aliased from the domain layer).
type CycleCheckResponse = pathnav.CircularReference

// RenderResponse wraps a rendered page.
type RenderResponse struct {
	Path string `json:"path" example:"notes/hello.md" validate:"required"`
	HTML string `json:"html" validate:"required"`
}

// AssetUploadResponse is returned after a successful asset upload.
type AssetUploadResponse struct {
	Filename string `json:"filename" example:"image.png" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	URL      string `json:"url" example:"/assets/image.png" validate:"required"`
}
