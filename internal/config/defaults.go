package config

// NewDefaults returns a Config populated with the defaults from
// SPEC_FULL.md §10.3.
func NewDefaults() *Config {
	return &Config{
		Repo: RepoConfig{
			SvnExecutable:         "svn",
			CacheDir:              ".svnchurn-cache",
			Parallelism:           4,
			PerCallTimeoutSeconds: 120,
		},
		Output: OutputConfig{
			OutDirectory:     "out",
			MessageMaxLength: 120,
			Encoding:         "UTF-8",
		},
	}
}
