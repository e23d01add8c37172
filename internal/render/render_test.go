package render

import (
	"strings"
	"testing"
)

func TestHTML_Basic(t *testing.T) {
	r := New()
	out, err := r.HTML([]byte("# Title\n\nSome *text*.\n"))
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "<em>text</em>") {
		t.Errorf("html = %q", html)
	}
}

func TestHTML_GFMTable(t *testing.T) {
	r := New()
	out, err := r.HTML([]byte("| a | b |\n|---|---|\n| 1 | 2 |\n"))
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(string(out), "<table>") {
		t.Errorf("GFM tables not rendered: %q", out)
	}
}

func TestHTML_HeadingID(t *testing.T) {
	r := New()
	out, _ := r.HTML([]byte("## Deep Dive\n"))
	if !strings.Contains(string(out), `id="deep-dive"`) {
		t.Errorf("auto heading id missing: %q", out)
	}
}
