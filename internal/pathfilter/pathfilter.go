// Package pathfilter implements C3: deciding which ChangedPaths of a commit
// are in scope for diff-based analysis.
package pathfilter

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/svnchurn/svnchurn/internal/model"
)

// Config enumerates the filter configuration from spec.md §4.3.
type Config struct {
	IncludeExtensions   map[string]struct{}
	ExcludeExtensions   map[string]struct{}
	IncludePathPatterns []string
	ExcludePathPatterns []string
}

// NewConfig builds a Config from extension lists (with or without a
// leading dot, case-insensitive) and glob pattern lists.
func NewConfig(includeExt, excludeExt, includePatterns, excludePatterns []string) Config {
	return Config{
		IncludeExtensions:   toExtSet(includeExt),
		ExcludeExtensions:   toExtSet(excludeExt),
		IncludePathPatterns: includePatterns,
		ExcludePathPatterns: excludePatterns,
	}
}

func toExtSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e == "" {
			continue
		}
		set[e] = struct{}{}
	}
	return set
}

// Apply returns the subset of paths that pass the filter, in their
// original order, per the five rules in spec.md §4.3.
func Apply(cfg Config, paths []model.ChangedPath) []model.ChangedPath {
	out := make([]model.ChangedPath, 0, len(paths))
	for _, p := range paths {
		if Passes(cfg, p) {
			out = append(out, p)
		}
	}
	return out
}

// Passes evaluates a single path against cfg.
func Passes(cfg Config, p model.ChangedPath) bool {
	if p.Kind != model.KindFile {
		return false
	}

	ext := extensionOf(p.Path)

	if len(cfg.IncludeExtensions) > 0 {
		if _, ok := cfg.IncludeExtensions[ext]; !ok {
			return false
		}
	}
	if _, excluded := cfg.ExcludeExtensions[ext]; excluded {
		return false
	}

	normalized := strings.ToLower(p.Path)

	if len(cfg.IncludePathPatterns) > 0 {
		matched := false
		for _, pat := range cfg.IncludePathPatterns {
			if globMatch(pat, normalized) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, pat := range cfg.ExcludePathPatterns {
		if globMatch(pat, normalized) {
			return false
		}
	}

	return true
}

// globMatch matches pattern against path case-insensitively, using
// doublestar so "**" traverses path separators while "*"/"?" do not.
func globMatch(pattern, path string) bool {
	ok, err := doublestar.Match(strings.ToLower(pattern), strings.TrimPrefix(path, "/"))
	if err != nil {
		return false
	}
	return ok
}

// extensionOf returns the lower-cased extension (no leading dot) of path,
// or "" if path has none.
func extensionOf(path string) string {
	base := path
	if idx := strings.LastIndexAny(base, "/\\"); idx >= 0 {
		base = base[idx+1:]
	}
	idx := strings.LastIndex(base, ".")
	if idx <= 0 || idx == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[idx+1:])
}
