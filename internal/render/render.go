// Package render converts Markdown bodies to HTML for page views.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Renderer wraps a configured goldmark engine. It is stateless and safe
// for concurrent use; callers share a single instance across requests.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a renderer with GFM extensions and automatic heading IDs.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

// HTML renders a Markdown body to HTML.
func (r *Renderer) HTML(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
