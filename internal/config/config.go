package config

// Config is the top-level configuration structure mapping to
// svnchurn.toml.
type Config struct {
	Repo   RepoConfig   `toml:"repo"`
	Filter FilterConfig `toml:"filter"`
	Output OutputConfig `toml:"output"`
}

// RepoConfig maps to the [repo] section in svnchurn.toml.
type RepoConfig struct {
	URL                   string `toml:"url"`
	SvnExecutable         string `toml:"svn_executable"`
	CacheDir              string `toml:"cache_dir"`
	Parallelism           int    `toml:"parallelism"`
	PerCallTimeoutSeconds int    `toml:"per_call_timeout_seconds"`
}

// FilterConfig maps to the [filter] section in svnchurn.toml.
type FilterConfig struct {
	IncludeExtensions   []string `toml:"include_extensions"`
	ExcludeExtensions   []string `toml:"exclude_extensions"`
	IncludePathPatterns []string `toml:"include_path_patterns"`
	ExcludePathPatterns []string `toml:"exclude_path_patterns"`
}

// OutputConfig maps to the [output] section in svnchurn.toml.
type OutputConfig struct {
	OutDirectory            string `toml:"out_directory"`
	ExcludeCommentOnlyLines bool   `toml:"exclude_comment_only_lines"`
	MessageMaxLength        int    `toml:"message_max_length"`
	Encoding                string `toml:"encoding"`
}
