package config

// ConfigSource identifies where a configuration value came from.
type ConfigSource string

const (
	// SourceDefault indicates the value came from built-in defaults.
	SourceDefault ConfigSource = "default"
	// SourceFile indicates the value came from the svnchurn.toml config file.
	SourceFile ConfigSource = "file"
	// SourceEnv indicates the value came from an environment variable.
	SourceEnv ConfigSource = "env"
	// SourceCLI indicates the value came from a CLI flag.
	SourceCLI ConfigSource = "cli"
)

// ResolvedConfig holds the fully-resolved configuration with source tracking.
// The Config field contains the merged values; Sources tracks where each came from.
type ResolvedConfig struct {
	Config  *Config
	Sources map[string]ConfigSource // key is dotted path, e.g., "repo.url"
	Path    string                  // path to the config file used (empty if none)
}

// CLIOverrides captures flag values that can override configuration
// (SPEC_FULL.md §10.4's `svnchurn analyze` flags). Nil fields mean "not
// set" (do not override).
type CLIOverrides struct {
	RepoURL                 *string
	SvnExecutable           *string
	CacheDir                *string
	Parallelism             *int
	OutDirectory            *string
	Encoding                *string
	ExcludeCommentOnlyLines *bool
	IncludeExtensions       []string
	ExcludeExtensions       []string
	IncludePathPatterns     []string
	ExcludePathPatterns     []string
}

// EnvFunc is a function that looks up environment variables.
// Default implementation is os.LookupEnv. Injected for testability.
type EnvFunc func(key string) (string, bool)

// Resolve merges configuration from all sources in priority order:
// CLI flags > environment variables > config file > defaults.
//
// Parameters:
//   - defaults: built-in default config (from NewDefaults())
//   - fileConfig: parsed config from svnchurn.toml (nil if no file found)
//   - envFn: function to look up environment variables
//   - overrides: CLI flag values (nil fields mean "not set")
//
// Returns the fully-resolved config with source annotations.
func Resolve(defaults *Config, fileConfig *Config, envFn EnvFunc, overrides *CLIOverrides) *ResolvedConfig {
	rc := &ResolvedConfig{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
	}

	if defaults == nil {
		defaults = &Config{}
	}
	if envFn == nil {
		envFn = func(string) (string, bool) { return "", false }
	}
	if overrides == nil {
		overrides = &CLIOverrides{}
	}

	resolveFromDefaults(rc, defaults)
	if fileConfig != nil {
		resolveFromFile(rc, fileConfig)
	}
	resolveFromEnv(rc, envFn)
	resolveFromCLI(rc, overrides)

	return rc
}

// --- Layer 1: Defaults ---

func resolveFromDefaults(rc *ResolvedConfig, defaults *Config) {
	repo := &rc.Config.Repo
	d := &defaults.Repo
	setString(&repo.URL, d.URL, "repo.url", SourceDefault, rc.Sources)
	setString(&repo.SvnExecutable, d.SvnExecutable, "repo.svn_executable", SourceDefault, rc.Sources)
	setString(&repo.CacheDir, d.CacheDir, "repo.cache_dir", SourceDefault, rc.Sources)
	repo.Parallelism = d.Parallelism
	rc.Sources["repo.parallelism"] = SourceDefault
	repo.PerCallTimeoutSeconds = d.PerCallTimeoutSeconds
	rc.Sources["repo.per_call_timeout_seconds"] = SourceDefault

	out := &rc.Config.Output
	od := &defaults.Output
	setString(&out.OutDirectory, od.OutDirectory, "output.out_directory", SourceDefault, rc.Sources)
	setString(&out.Encoding, od.Encoding, "output.encoding", SourceDefault, rc.Sources)
	out.MessageMaxLength = od.MessageMaxLength
	rc.Sources["output.message_max_length"] = SourceDefault
	out.ExcludeCommentOnlyLines = od.ExcludeCommentOnlyLines
	rc.Sources["output.exclude_comment_only_lines"] = SourceDefault

	rc.Config.Filter = copyFilterConfig(defaults.Filter)
	for _, k := range []string{"filter.include_extensions", "filter.exclude_extensions",
		"filter.include_path_patterns", "filter.exclude_path_patterns"} {
		rc.Sources[k] = SourceDefault
	}
}

// --- Layer 2: File ---

func resolveFromFile(rc *ResolvedConfig, file *Config) {
	repo := &rc.Config.Repo
	f := &file.Repo
	mergeString(&repo.URL, f.URL, "repo.url", SourceFile, rc.Sources)
	mergeString(&repo.SvnExecutable, f.SvnExecutable, "repo.svn_executable", SourceFile, rc.Sources)
	mergeString(&repo.CacheDir, f.CacheDir, "repo.cache_dir", SourceFile, rc.Sources)
	if f.Parallelism > 0 {
		repo.Parallelism = f.Parallelism
		rc.Sources["repo.parallelism"] = SourceFile
	}
	if f.PerCallTimeoutSeconds > 0 {
		repo.PerCallTimeoutSeconds = f.PerCallTimeoutSeconds
		rc.Sources["repo.per_call_timeout_seconds"] = SourceFile
	}

	out := &rc.Config.Output
	of := &file.Output
	mergeString(&out.OutDirectory, of.OutDirectory, "output.out_directory", SourceFile, rc.Sources)
	mergeString(&out.Encoding, of.Encoding, "output.encoding", SourceFile, rc.Sources)
	if of.MessageMaxLength > 0 {
		out.MessageMaxLength = of.MessageMaxLength
		rc.Sources["output.message_max_length"] = SourceFile
	}
	out.ExcludeCommentOnlyLines = out.ExcludeCommentOnlyLines || of.ExcludeCommentOnlyLines
	if of.ExcludeCommentOnlyLines {
		rc.Sources["output.exclude_comment_only_lines"] = SourceFile
	}

	if len(file.Filter.IncludeExtensions) > 0 || len(file.Filter.ExcludeExtensions) > 0 ||
		len(file.Filter.IncludePathPatterns) > 0 || len(file.Filter.ExcludePathPatterns) > 0 {
		rc.Config.Filter = copyFilterConfig(file.Filter)
		rc.Sources["filter"] = SourceFile
		for _, k := range []string{"filter.include_extensions", "filter.exclude_extensions",
			"filter.include_path_patterns", "filter.exclude_path_patterns"} {
			rc.Sources[k] = SourceFile
		}
	}
}

// --- Layer 3: Environment ---

// Environment variable mapping:
//
//	SVNCHURN_REPO_URL        -> repo.url
//	SVNCHURN_SVN_EXECUTABLE  -> repo.svn_executable
//	SVNCHURN_CACHE_DIR       -> repo.cache_dir
//	SVNCHURN_OUT_DIRECTORY   -> output.out_directory
func resolveFromEnv(rc *ResolvedConfig, envFn EnvFunc) {
	repo := &rc.Config.Repo
	out := &rc.Config.Output

	if val, ok := envFn("SVNCHURN_REPO_URL"); ok {
		repo.URL = val
		rc.Sources["repo.url"] = SourceEnv
	}
	if val, ok := envFn("SVNCHURN_SVN_EXECUTABLE"); ok {
		repo.SvnExecutable = val
		rc.Sources["repo.svn_executable"] = SourceEnv
	}
	if val, ok := envFn("SVNCHURN_CACHE_DIR"); ok {
		repo.CacheDir = val
		rc.Sources["repo.cache_dir"] = SourceEnv
	}
	if val, ok := envFn("SVNCHURN_OUT_DIRECTORY"); ok {
		out.OutDirectory = val
		rc.Sources["output.out_directory"] = SourceEnv
	}
}

// --- Layer 4: CLI overrides ---

func resolveFromCLI(rc *ResolvedConfig, overrides *CLIOverrides) {
	repo := &rc.Config.Repo
	out := &rc.Config.Output
	filter := &rc.Config.Filter

	if overrides.RepoURL != nil {
		repo.URL = *overrides.RepoURL
		rc.Sources["repo.url"] = SourceCLI
	}
	if overrides.SvnExecutable != nil {
		repo.SvnExecutable = *overrides.SvnExecutable
		rc.Sources["repo.svn_executable"] = SourceCLI
	}
	if overrides.CacheDir != nil {
		repo.CacheDir = *overrides.CacheDir
		rc.Sources["repo.cache_dir"] = SourceCLI
	}
	if overrides.Parallelism != nil {
		repo.Parallelism = *overrides.Parallelism
		rc.Sources["repo.parallelism"] = SourceCLI
	}
	if overrides.OutDirectory != nil {
		out.OutDirectory = *overrides.OutDirectory
		rc.Sources["output.out_directory"] = SourceCLI
	}
	if overrides.Encoding != nil {
		out.Encoding = *overrides.Encoding
		rc.Sources["output.encoding"] = SourceCLI
	}
	if overrides.ExcludeCommentOnlyLines != nil {
		out.ExcludeCommentOnlyLines = *overrides.ExcludeCommentOnlyLines
		rc.Sources["output.exclude_comment_only_lines"] = SourceCLI
	}
	if len(overrides.IncludeExtensions) > 0 {
		filter.IncludeExtensions = append([]string(nil), overrides.IncludeExtensions...)
		rc.Sources["filter.include_extensions"] = SourceCLI
	}
	if len(overrides.ExcludeExtensions) > 0 {
		filter.ExcludeExtensions = append([]string(nil), overrides.ExcludeExtensions...)
		rc.Sources["filter.exclude_extensions"] = SourceCLI
	}
	if len(overrides.IncludePathPatterns) > 0 {
		filter.IncludePathPatterns = append([]string(nil), overrides.IncludePathPatterns...)
		rc.Sources["filter.include_path_patterns"] = SourceCLI
	}
	if len(overrides.ExcludePathPatterns) > 0 {
		filter.ExcludePathPatterns = append([]string(nil), overrides.ExcludePathPatterns...)
		rc.Sources["filter.exclude_path_patterns"] = SourceCLI
	}
}

// --- Helpers ---

// setString unconditionally sets the target to the given value and records the source.
func setString(target *string, value string, path string, source ConfigSource, sources map[string]ConfigSource) {
	*target = value
	sources[path] = source
}

// mergeString overwrites the target only if value is non-empty (non-zero string).
// For file-layer merging, an empty string in the file means "not set in file",
// so it does not override the default.
func mergeString(target *string, value string, path string, source ConfigSource, sources map[string]ConfigSource) {
	if value != "" {
		*target = value
		sources[path] = source
	}
}

// copyFilterConfig returns a deep copy of a FilterConfig.
func copyFilterConfig(src FilterConfig) FilterConfig {
	return FilterConfig{
		IncludeExtensions:   append([]string(nil), src.IncludeExtensions...),
		ExcludeExtensions:   append([]string(nil), src.ExcludeExtensions...),
		IncludePathPatterns: append([]string(nil), src.IncludePathPatterns...),
		ExcludePathPatterns: append([]string(nil), src.ExcludePathPatterns...),
	}
}
