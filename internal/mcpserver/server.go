// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Arbor tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hollybrook/arbor/internal/contentservice"
	"github.com/hollybrook/arbor/internal/graph"
	"github.com/hollybrook/arbor/internal/pathnav"
	"github.com/hollybrook/arbor/internal/storage"
)

// Server wraps the MCP server with Arbor tools.
type Server struct {
	mcp     *server.MCPServer
	store   storage.Provider
	svc     *contentservice.Service
	graph   *graph.Service
	explore *pathnav.Service
}

// New creates a new MCP server with all Arbor tools registered.
func New(store storage.Provider, svc *contentservice.Service, g *graph.Service, explore *pathnav.Service) *Server {
	s := &Server{store: store, svc: svc, graph: g, explore: explore}

	s.mcp = server.NewMCPServer(
		"Arbor",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_content",
		mcp.WithDescription("Full-text search through garden content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchContent)

	s.mcp.AddTool(mcp.NewTool("read_content",
		mcp.WithDescription("Read the full content of a Markdown page."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the page (e.g. notes/hello.md)")),
	), s.readContent)

	s.mcp.AddTool(mcp.NewTool("create_content",
		mcp.WithDescription("Create a new Markdown page at the specified path. "+
			"Content MUST follow the canonical content format (YAML frontmatter with title, "+
			"optional tags and status, Markdown body with [[wikilinks]]). Read the contract "+
			"first via the get_content_contract tool or the arbor://content-format resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new page (must end with .md)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content following the Arbor content format contract")),
	), s.createContent)

	s.mcp.AddTool(mcp.NewTool("get_content_contract",
		mcp.WithDescription("Returns the canonical Arbor content format contract. "+
			"Call this before creating or updating pages to ensure correct structure."),
	), s.getContentContract)

	s.mcp.AddTool(mcp.NewTool("list_content",
		mcp.WithDescription("List all pages or pages in a specific section directory."),
		mcp.WithString("section", mcp.Description("Optional section directory to list (empty for all)")),
	), s.listContent)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all pages that link to the specified page."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Slug or title of the page to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("get_forward_links",
		mcp.WithDescription("List the pages the specified page links out to."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Slug of the source page")),
	), s.getForwardLinks)

	s.mcp.AddTool(mcp.NewTool("get_orphans",
		mcp.WithDescription("List pages with no inbound or outbound links."),
	), s.getOrphans)

	s.mcp.AddTool(mcp.NewTool("validate_exploration_path",
		mcp.WithDescription("Validate a comma-separated exploration path of page slugs: "+
			"existence, length limit, and immediate revisits."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Comma-separated slugs, e.g. \"intro,graphs,intro-to-go\"")),
	), s.validateExplorationPath)

	s.mcp.AddTool(mcp.NewTool("upload_asset",
		mcp.WithDescription("Download an image or PDF from a URL (or decode a data URI) and "+
			"store it in the shared assets directory. Returns a markdownImage snippet ready "+
			"to paste into a page body."),
		mcp.WithString("url", mcp.Required(), mcp.Description("HTTP(S) URL or base64 data URI of the asset")),
		mcp.WithString("filename", mcp.Description("Optional filename override")),
	), s.uploadAsset)

	// Resource: content format contract.
	s.mcp.AddResource(
		mcp.NewResource("arbor://content-format", "Content Format Contract",
			mcp.WithResourceDescription("Canonical Markdown content format that all pages must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContentFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readContent(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := s.svc.Create(ctx, path, []byte(body)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) listContent(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section := ""
	if v, err := req.RequireString("section"); err == nil {
		section = v
	}

	metas, err := s.store.List(section)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getContentContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ContentFormatContract), nil
}

func (s *Server) readContentFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "arbor://content-format",
			MIMEType: "text/markdown",
			Text:     ContentFormatContract,
		},
	}, nil
}

func (s *Server) getBacklinks(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries := s.graph.GetBacklinks(slug)
	if len(entries) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getForwardLinks(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	links := s.graph.GetForwardLinks(slug)
	if len(links) == 0 {
		return mcp.NewToolResultText("no forward links found"), nil
	}
	out, _ := json.MarshalIndent(links, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getOrphans(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	orphans := s.graph.GetOrphanedContent()
	if len(orphans) == 0 {
		return mcp.NewToolResultText("no orphaned content"), nil
	}
	return mcp.NewToolResultText(strings.Join(orphans, "\n")), nil
}

func (s *Server) validateExplorationPath(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result := s.explore.ValidateExplorationPath(path)
	out, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
