package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	t.Parallel()
	cfg := NewDefaults()
	require.NotNil(t, cfg)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "SvnExecutable", got: cfg.Repo.SvnExecutable, want: "svn"},
		{name: "CacheDir", got: cfg.Repo.CacheDir, want: ".svnchurn-cache"},
		{name: "OutDirectory", got: cfg.Output.OutDirectory, want: "out"},
		{name: "Encoding", got: cfg.Output.Encoding, want: "UTF-8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.got)
		})
	}

	assert.Equal(t, 4, cfg.Repo.Parallelism)
	assert.Equal(t, 120, cfg.Repo.PerCallTimeoutSeconds)
	assert.Equal(t, 120, cfg.Output.MessageMaxLength)

	// Repo URL is project-specific and not defaulted.
	assert.Empty(t, cfg.Repo.URL, "repo url should be empty by default")
}

func TestNewDefaults_EmptyFilter(t *testing.T) {
	t.Parallel()
	cfg := NewDefaults()
	assert.Empty(t, cfg.Filter.IncludeExtensions)
	assert.Empty(t, cfg.Filter.ExcludeExtensions)
	assert.Empty(t, cfg.Filter.IncludePathPatterns)
	assert.Empty(t, cfg.Filter.ExcludePathPatterns)
}

func TestNewDefaults_ExcludeCommentOnlyLinesOff(t *testing.T) {
	t.Parallel()
	cfg := NewDefaults()
	assert.False(t, cfg.Output.ExcludeCommentOnlyLines, "exclude_comment_only_lines should default to false")
}
