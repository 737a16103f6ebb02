package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
)

// ValidationSeverity indicates whether a validation issue is an error or warning.
type ValidationSeverity string

const (
	// SeverityError indicates a fatal validation issue; the configuration is unusable.
	SeverityError ValidationSeverity = "error"
	// SeverityWarning indicates an informational validation issue; the configuration works
	// but may have problems.
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssue represents a single validation finding.
type ValidationIssue struct {
	Severity ValidationSeverity
	Field    string // dotted path, e.g., "repo.url"
	Message  string
}

// ValidationResult holds all validation findings.
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasErrors returns true if any issue has error severity.
func (vr *ValidationResult) HasErrors() bool {
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if any issue has warning severity.
func (vr *ValidationResult) HasWarnings() bool {
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Errors returns only error-severity issues.
func (vr *ValidationResult) Errors() []ValidationIssue {
	var errs []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityError {
			errs = append(errs, issue)
		}
	}
	return errs
}

// Warnings returns only warning-severity issues.
func (vr *ValidationResult) Warnings() []ValidationIssue {
	var warns []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityWarning {
			warns = append(warns, issue)
		}
	}
	return warns
}

// Validate checks the configuration for correctness and completeness.
// It performs structural validation, semantic validation, and unknown key
// detection.
//
// Parameters:
//   - cfg: the configuration to validate
//   - meta: TOML metadata from BurntSushi/toml (may be nil if no file was loaded)
//
// Returns validation results. Check HasErrors() to determine if the config is usable.
func Validate(cfg *Config, meta *toml.MetaData) *ValidationResult {
	vr := &ValidationResult{}

	if cfg == nil {
		addError(vr, "", "configuration is nil")
		return vr
	}

	validateRepo(vr, &cfg.Repo)
	validateFilter(vr, &cfg.Filter)
	validateOutput(vr, &cfg.Output)
	validateUnknownKeys(vr, meta)

	return vr
}

// validateRepo checks the [repo] section.
func validateRepo(vr *ValidationResult, r *RepoConfig) {
	if strings.TrimSpace(r.URL) == "" {
		addError(vr, "repo.url", "must not be empty")
	}
	if r.Parallelism < 1 {
		addError(vr, "repo.parallelism", fmt.Sprintf("must be >= 1, got %d", r.Parallelism))
	}
	if r.PerCallTimeoutSeconds < 0 {
		addError(vr, "repo.per_call_timeout_seconds", fmt.Sprintf("must be >= 0, got %d", r.PerCallTimeoutSeconds))
	}
}

// validateFilter checks the [filter] section: glob patterns must compile.
// Extension lists are neither checked nor normalized here; NormalizeFilter
// is a separate helper that Validate does not call.
func validateFilter(vr *ValidationResult, f *FilterConfig) {
	for _, pat := range f.IncludePathPatterns {
		if _, err := doublestar.Match(pat, "probe"); err != nil {
			addError(vr, "filter.include_path_patterns", fmt.Sprintf("invalid glob %q: %v", pat, err))
		}
	}
	for _, pat := range f.ExcludePathPatterns {
		if _, err := doublestar.Match(pat, "probe"); err != nil {
			addError(vr, "filter.exclude_path_patterns", fmt.Sprintf("invalid glob %q: %v", pat, err))
		}
	}
}

// validateOutput checks the [output] section.
func validateOutput(vr *ValidationResult, o *OutputConfig) {
	if o.MessageMaxLength < 0 {
		addError(vr, "output.message_max_length", fmt.Sprintf("must be >= 0, got %d", o.MessageMaxLength))
	}
}

// NormalizeFilter lower-cases and deduplicates an extension list, per
// SPEC_FULL.md §10.3.
func NormalizeFilter(exts []string) []string {
	seen := make(map[string]struct{}, len(exts))
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// validateUnknownKeys checks for TOML keys that did not map to any config struct field.
func validateUnknownKeys(vr *ValidationResult, meta *toml.MetaData) {
	if meta == nil {
		return
	}

	for _, key := range meta.Undecoded() {
		p := strings.Join(key, ".")
		addWarning(vr, p, "unknown configuration key")
	}
}

// addError appends an error-severity issue to the validation result.
func addError(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityError,
		Field:    field,
		Message:  message,
	})
}

// addWarning appends a warning-severity issue to the validation result.
func addWarning(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityWarning,
		Field:    field,
		Message:  message,
	})
}
