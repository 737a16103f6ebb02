package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "svnchurn.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// --- LoadFromFile tests ---

func TestLoadFromFile_ValidFull(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
[repo]
url = "https://svn.example.com/repo/trunk"
svn_executable = "svn"
cache_dir = ".svnchurn-cache"
parallelism = 8
per_call_timeout_seconds = 60

[filter]
include_extensions = ["go", "java"]
exclude_extensions = ["min.js"]
include_path_patterns = ["src/**"]
exclude_path_patterns = ["**/vendor/**", "**/testdata/**"]

[output]
out_directory = "build/reports"
exclude_comment_only_lines = true
message_max_length = 80
encoding = "UTF-8"
`)

	cfg, md, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://svn.example.com/repo/trunk", cfg.Repo.URL)
	assert.Equal(t, "svn", cfg.Repo.SvnExecutable)
	assert.Equal(t, ".svnchurn-cache", cfg.Repo.CacheDir)
	assert.Equal(t, 8, cfg.Repo.Parallelism)
	assert.Equal(t, 60, cfg.Repo.PerCallTimeoutSeconds)

	assert.Equal(t, []string{"go", "java"}, cfg.Filter.IncludeExtensions)
	assert.Equal(t, []string{"min.js"}, cfg.Filter.ExcludeExtensions)
	assert.Equal(t, []string{"src/**"}, cfg.Filter.IncludePathPatterns)
	assert.Equal(t, []string{"**/vendor/**", "**/testdata/**"}, cfg.Filter.ExcludePathPatterns)

	assert.Equal(t, "build/reports", cfg.Output.OutDirectory)
	assert.True(t, cfg.Output.ExcludeCommentOnlyLines)
	assert.Equal(t, 80, cfg.Output.MessageMaxLength)
	assert.Equal(t, "UTF-8", cfg.Output.Encoding)

	assert.Empty(t, md.Undecoded(), "expected no undecoded keys for a fully valid config")
}

func TestLoadFromFile_PartialConfig(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
[repo]
url = "https://svn.example.com/repo/trunk"
`)
	cfg, _, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://svn.example.com/repo/trunk", cfg.Repo.URL)
	assert.Empty(t, cfg.Repo.SvnExecutable)
	assert.Zero(t, cfg.Repo.Parallelism)
	assert.Nil(t, cfg.Filter.IncludeExtensions)
	assert.Empty(t, cfg.Output.OutDirectory)
}

func TestLoadFromFile_MalformedTOML(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, "this is not [ valid toml")
	_, _, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

func TestLoadFromFile_NonExistentFile(t *testing.T) {
	t.Parallel()
	_, _, err := LoadFromFile("/nonexistent/path/svnchurn.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

func TestLoadFromFile_ReturnsMetadataForUnknownKeys(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
[repo]
url = "https://svn.example.com/repo"
unknown_key = "surprise"

[unknown_section]
foo = "bar"
`)
	_, md, err := LoadFromFile(path)
	require.NoError(t, err)

	undecoded := md.Undecoded()
	require.NotEmpty(t, undecoded, "expected undecoded keys for config with unknown keys")

	keys := make([]string, 0, len(undecoded))
	for _, k := range undecoded {
		keys = append(keys, k.String())
	}
	assert.Contains(t, keys, "repo.unknown_key")
	assert.Contains(t, keys, "unknown_section.foo")
}

func TestLoadFromFile_EmptyFile(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, "")
	cfg, _, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Empty(t, cfg.Repo.URL)
	assert.Nil(t, cfg.Filter.IncludeExtensions)
	assert.Empty(t, cfg.Output.OutDirectory)
}

func TestLoadFromFile_CommentsOnly(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, "# just a comment\n# another one\n")
	cfg, _, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Repo.URL)
}

func TestLoadFromFile_UTF8(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
[repo]
url = "https://svn.example.com/prøject-naïve"
`)
	cfg, _, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://svn.example.com/prøject-naïve", cfg.Repo.URL)
}

// --- FindConfigFile tests ---

func TestFindConfigFile_InCurrentDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("# test\n"), 0o644))

	found, err := FindConfigFile(dir)
	require.NoError(t, err)
	assert.Equal(t, configPath, found)
}

func TestFindConfigFile_InParentDir(t *testing.T) {
	t.Parallel()
	parent := t.TempDir()
	child := filepath.Join(parent, "sub", "deep")
	require.NoError(t, os.MkdirAll(child, 0o755))

	configPath := filepath.Join(parent, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("# test\n"), 0o644))

	found, err := FindConfigFile(child)
	require.NoError(t, err)
	assert.Equal(t, configPath, found)
}

func TestFindConfigFile_NotFound(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	found, err := FindConfigFile(dir)
	require.NoError(t, err)
	assert.Empty(t, found, "expected empty string when config not found")
}

func TestFindConfigFile_AtRoot(t *testing.T) {
	t.Parallel()
	found, err := FindConfigFile("/")
	require.NoError(t, err)
	_ = found
}

func TestFindConfigFile_DeeplyNested(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	deepPath := root
	for i := 0; i < 25; i++ {
		deepPath = filepath.Join(deepPath, "level")
	}
	require.NoError(t, os.MkdirAll(deepPath, 0o755))

	configPath := filepath.Join(root, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("# deep test\n"), 0o644))

	found, err := FindConfigFile(deepPath)
	require.NoError(t, err)
	assert.Equal(t, configPath, found)
}

func TestFindConfigFile_ReturnsAbsolutePath(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("# test\n"), 0o644))

	found, err := FindConfigFile(dir)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(found), "expected absolute path, got %s", found)
}
