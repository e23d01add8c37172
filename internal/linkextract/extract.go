// Package linkextract scans raw Markdown for internal links written in
// either inline syntax ([text](target) or [[target]]) and normalizes their
// targets to slugs. All functions are pure: identical inputs always produce
// identical outputs, which is what makes results safe to cache upstream.
package linkextract

import (
	"path"
	"regexp"
	"strings"
)

var (
	mdLinkRe   = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)[^)]*\)`)
	wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)
	schemeRe   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)
)

// sectionPrefixes are path prefixes that always mark a target as internal.
var sectionPrefixes = []string{"notes/", "bookmarks/", "til/"}

// Link is one internal link occurrence before resolution against the corpus.
type Link struct {
	Text   string // display text as written
	Raw    string // target exactly as written
	Target string // normalized slug; empty when normalization collapses to nothing
}

// Links returns every internal link in content, in order of first appearance,
// deduplicated by normalized target. sourcePath is the garden-relative path
// of the file the content came from; relative targets resolve against its
// directory. External links (scheme://host, mailto: and friends) and bare
// fragments are skipped.
func Links(content, sourcePath string) []Link {
	var out []Link
	seen := make(map[string]struct{})

	add := func(text, raw string) {
		if !isInternal(raw) {
			return
		}
		target := normalizeTarget(raw, sourcePath)
		key := target
		if key == "" {
			// Keep malformed targets (they collapse to nothing) so the
			// link report can surface them; dedupe by raw form instead.
			key = "\x00" + raw
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, Link{Text: text, Raw: raw, Target: target})
	}

	for _, m := range mdLinkRe.FindAllStringSubmatch(content, -1) {
		add(strings.TrimSpace(m[1]), strings.TrimSpace(m[2]))
	}

	for _, m := range wikilinkRe.FindAllStringSubmatch(content, -1) {
		raw := m[1]
		text := raw
		// Handle aliases: [[Target|Alias]] → target "Target", text "Alias".
		if i := strings.Index(raw, "|"); i >= 0 {
			text = raw[i+1:]
			raw = raw[:i]
		}
		add(strings.TrimSpace(text), strings.TrimSpace(raw))
	}

	return out
}

// InternalLinks returns the deduplicated set of normalized internal link
// targets found in content. Targets that normalize to nothing are dropped.
func InternalLinks(content, sourcePath string) []string {
	links := Links(content, sourcePath)
	out := make([]string, 0, len(links))
	for _, l := range links {
		if l.Target != "" {
			out = append(out, l.Target)
		}
	}
	return out
}

// isInternal reports whether a raw target points inside the garden.
// A target is internal when it has no URL scheme, or when it explicitly
// starts with ./, ../ or a known section prefix, or ends in .md.
func isInternal(target string) bool {
	if target == "" || strings.HasPrefix(target, "#") {
		return false
	}
	if strings.HasPrefix(target, "./") || strings.HasPrefix(target, "../") {
		return true
	}
	for _, p := range sectionPrefixes {
		if strings.HasPrefix(target, p) {
			return true
		}
	}
	// Absolute URLs (scheme://host) and scheme-only targets like mailto:
	// are external; everything else, including bare slugs and .md paths,
	// stays inside the garden.
	return !schemeRe.MatchString(target)
}

// normalizeTarget converts a raw internal target into a slug: the fragment
// is stripped, ./ and ../ resolve against the source file's directory, the
// .md suffix is removed, and the final path element is slugified.
func normalizeTarget(raw, sourcePath string) string {
	t := stripFragment(strings.TrimSpace(raw))
	if t == "" {
		return ""
	}
	if strings.HasPrefix(t, "./") || strings.HasPrefix(t, "../") {
		t = path.Join(path.Dir(strings.ReplaceAll(sourcePath, "\\", "/")), t)
	}
	for strings.HasSuffix(t, ".md") {
		t = strings.TrimSuffix(t, ".md")
	}
	t = path.Base(t)
	if t == "." || t == "/" {
		return ""
	}
	return NormalizeSlug(t)
}

// NormalizeSlug lower-cases s and converts spaces to hyphens. Matching
// throughout the relationship subsystem is done on this form, so wiki-style
// "Note Title" and "note-title" compare equal. Idempotent.
func NormalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "-")
}

func stripFragment(s string) string {
	if i := strings.Index(s, "#"); i >= 0 {
		return s[:i]
	}
	return s
}
