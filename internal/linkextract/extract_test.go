package linkextract

import (
	"reflect"
	"testing"
)

func TestInternalLinks_MarkdownSyntax(t *testing.T) {
	content := "See [B](notes/b.md) and [docs](https://example.com/doc.md)."
	got := InternalLinks(content, "notes/a.md")
	want := []string{"b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("links = %v, want %v", got, want)
	}
}

func TestInternalLinks_WikiSyntax(t *testing.T) {
	content := "Related: [[Note Title]] and [[other-note|an alias]]."
	got := InternalLinks(content, "notes/src.md")
	want := []string{"note-title", "other-note"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("links = %v, want %v", got, want)
	}
}

func TestInternalLinks_RelativeResolution(t *testing.T) {
	content := "Up: [parent](../notes/parent.md), sibling: [s](./sibling.md)"
	got := InternalLinks(content, "til/2024/entry.md")
	want := []string{"parent", "sibling"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("links = %v, want %v", got, want)
	}
}

func TestInternalLinks_FragmentStripped(t *testing.T) {
	got := InternalLinks("See [sec](notes/b.md#heading) and [top](#heading).", "notes/a.md")
	want := []string{"b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("links = %v, want %v", got, want)
	}
}

func TestInternalLinks_ExternalSkipped(t *testing.T) {
	content := "Go to [site](https://example.com), [mail](mailto:a@b.c), [ftp](ftp://x/y)."
	if got := InternalLinks(content, "notes/a.md"); len(got) != 0 {
		t.Errorf("expected no internal links, got %v", got)
	}
}

func TestInternalLinks_Dedup(t *testing.T) {
	content := "[[Target]] then [target](notes/target.md) then [[target]] again"
	got := InternalLinks(content, "notes/a.md")
	if len(got) != 1 || got[0] != "target" {
		t.Errorf("links = %v, want [target]", got)
	}
}

func TestInternalLinks_NoLinks(t *testing.T) {
	if got := InternalLinks("plain text, no links here", "notes/a.md"); len(got) != 0 {
		t.Errorf("expected empty set, got %v", got)
	}
}

func TestInternalLinks_SelfAllowedAtExtraction(t *testing.T) {
	// Self-exclusion is the graph layer's job; the extractor reports
	// whatever the text contains.
	got := InternalLinks("loop: [[a]]", "notes/a.md")
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("links = %v, want [a]", got)
	}
}

func TestNormalizeSlug_Idempotent(t *testing.T) {
	for _, in := range []string{"Note Title", "already-normal", "MiXeD Case Here", "x"} {
		once := NormalizeSlug(in)
		if twice := NormalizeSlug(once); twice != once {
			t.Errorf("NormalizeSlug not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestNormalizeTarget_Idempotent(t *testing.T) {
	for _, in := range []string{"notes/B.md", "Note Title", "../til/x.md", "a.md.md"} {
		once := normalizeTarget(in, "notes/src.md")
		if twice := normalizeTarget(once, "notes/src.md"); twice != once {
			t.Errorf("normalizeTarget not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestLinks_TextAndRawPreserved(t *testing.T) {
	links := Links("read [the intro](notes/intro.md) and [[Deep Dive|the deep dive]]", "notes/a.md")
	if len(links) != 2 {
		t.Fatalf("len(links) = %d, want 2", len(links))
	}
	if links[0].Text != "the intro" || links[0].Raw != "notes/intro.md" || links[0].Target != "intro" {
		t.Errorf("markdown link = %+v", links[0])
	}
	if links[1].Text != "the deep dive" || links[1].Target != "deep-dive" {
		t.Errorf("wiki link = %+v", links[1])
	}
}

func TestLinks_MalformedTargetKept(t *testing.T) {
	// An extension-only target collapses to nothing but is still
	// reported so the link report can flag it.
	links := Links("[x](.md)", "notes/a.md")
	if len(links) != 1 || links[0].Target != "" {
		t.Fatalf("links = %+v, want one entry with empty target", links)
	}
}
