// Package pathnav validates user-supplied exploration paths — ordered
// slug sequences describing a navigation trail through the garden.
//
// Two cycle checks live here on purpose and must stay distinct: the
// sliding-window check inside ValidateExplorationPath cheaply rejects
// immediately-revisited slugs during parsing, while CheckCircularReferences
// is a thorough, caller-invoked scan over the whole sequence. Neither
// supersedes the other.
package pathnav

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hollybrook/arbor/internal/apperr"
	"github.com/hollybrook/arbor/internal/content"
)

const (
	// maxPathLength bounds exploration paths to keep multi-panel views usable.
	maxPathLength = 10
	// revisitWindow is how far the in-line duplicate check looks back.
	revisitWindow = 2
)

// ValidationResult reports the outcome of validating one exploration path.
// Produced fresh per call; never cached.
type ValidationResult struct {
	Success      bool     `json:"success"`
	Errors       []string `json:"errors"`
	ValidSlugs   []string `json:"valid_slugs"`
	InvalidSlugs []string `json:"invalid_slugs"`
}

// CircularReference identifies the first repeated slug in a sequence.
// Position is the zero-based index of the repeat, -1 when there is none.
type CircularReference struct {
	HasCycle bool   `json:"has_cycle"`
	Position int    `json:"cycle_position"`
	Slug     string `json:"cycle_slug,omitempty"`
}

// Service validates exploration paths against the content provider.
type Service struct {
	provider content.Provider
	sections []string
	logger   *slog.Logger
}

// New creates a path navigation service. sections names the content
// collections slugs are resolved against, in order; an empty list falls
// back to the notes section.
func New(provider content.Provider, sections []string, logger *slog.Logger) *Service {
	if len(sections) == 0 {
		sections = []string{"notes"}
	}
	return &Service{provider: provider, sections: sections, logger: logger}
}

// ValidateExplorationPath parses a comma-separated slug list and validates
// it: non-empty input, no empty segments, at most 10 slugs, no slug
// repeated within a look-back window of 2, and every slug resolvable
// through the provider. Errors are reported in the result, never raised.
func (s *Service) ValidateExplorationPath(pathString string) ValidationResult {
	if strings.TrimSpace(pathString) == "" {
		return failed("Path cannot be empty.")
	}

	rawSegments := strings.Split(pathString, ",")
	slugs := make([]string, 0, len(rawSegments))
	for _, seg := range rawSegments {
		if trimmed := strings.TrimSpace(seg); trimmed != "" {
			slugs = append(slugs, trimmed)
		}
	}
	if len(slugs) != len(rawSegments) {
		return failed("Path contains empty segments.")
	}
	if len(slugs) > maxPathLength {
		return failed(fmt.Sprintf("Path exceeds maximum length of %d notes.", maxPathLength))
	}

	// Cheap early rejection of immediately-revisited slugs. The full
	// cycle check is CheckCircularReferences and is invoked separately.
	for i := range slugs {
		start := i - revisitWindow
		if start < 0 {
			start = 0
		}
		for j := start; j < i; j++ {
			if slugs[j] == slugs[i] {
				return failed(fmt.Sprintf("Path revisits %q at positions %d and %d.", slugs[i], j, i))
			}
		}
	}

	result := ValidationResult{
		Errors:       []string{},
		ValidSlugs:   []string{},
		InvalidSlugs: []string{},
	}
	for _, slug := range slugs {
		exists, err := s.slugExists(slug)
		if err != nil {
			// Provider failure: degrade to a failed result, never propagate.
			s.logger.Warn("path validation lookup failed",
				slog.String("slug", slug), slog.String("error", err.Error()))
			return failed(err.Error())
		}
		if exists {
			result.ValidSlugs = append(result.ValidSlugs, slug)
		} else {
			result.InvalidSlugs = append(result.InvalidSlugs, slug)
			result.Errors = append(result.Errors, fmt.Sprintf("Content not found: %s", slug))
		}
	}
	result.Success = len(result.InvalidSlugs) == 0
	return result
}

// CheckCircularReferences walks the whole sequence and reports the first
// slug that appears twice, wherever the repeat occurs. Nil or empty input
// has no cycle.
func (s *Service) CheckCircularReferences(slugs []string) CircularReference {
	seen := make(map[string]struct{}, len(slugs))
	for i, slug := range slugs {
		if _, dup := seen[slug]; dup {
			return CircularReference{HasCycle: true, Position: i, Slug: slug}
		}
		seen[slug] = struct{}{}
	}
	return CircularReference{HasCycle: false, Position: -1}
}

func (s *Service) slugExists(slug string) (bool, error) {
	for _, section := range s.sections {
		_, err := s.provider.GetContentBySlug(section, slug)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, apperr.ErrNotFound):
			continue
		default:
			return false, err
		}
	}
	return false, nil
}

func failed(msg string) ValidationResult {
	return ValidationResult{
		Success:      false,
		Errors:       []string{msg},
		ValidSlugs:   []string{},
		InvalidSlugs: []string{},
	}
}
