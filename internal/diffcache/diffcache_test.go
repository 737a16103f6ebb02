package diffcache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svnchurn/svnchurn/internal/diffcache"
)

func TestKey_StableUnderArgumentReordering(t *testing.T) {
	a := diffcache.Key("https://svn/repo", 7, []string{"-x", "--ignore-eol-style"})
	b := diffcache.Key("https://svn/repo", 7, []string{"--ignore-eol-style", "-x"})
	assert.Equal(t, a, b)
}

func TestKey_DiffersByRevisionOrURL(t *testing.T) {
	base := diffcache.Key("https://svn/repo", 7, nil)
	assert.NotEqual(t, base, diffcache.Key("https://svn/repo", 8, nil))
	assert.NotEqual(t, base, diffcache.Key("https://svn/other", 7, nil))
}

func TestCache_PutThenGet(t *testing.T) {
	c := diffcache.New(t.TempDir())
	key := diffcache.Key("https://svn/repo", 7, nil)

	require.NoError(t, c.Put(7, key, nil, []byte("diff body")))

	got, ok := c.Get(7, key)
	require.True(t, ok)
	assert.Equal(t, []byte("diff body"), got)
}

func TestCache_GetMissingIsMiss(t *testing.T) {
	c := diffcache.New(t.TempDir())
	_, ok := c.Get(7, "deadbeef")
	assert.False(t, ok)
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	writer := diffcache.New(dir)
	key := diffcache.Key("https://svn/repo", 7, nil)
	require.NoError(t, writer.Put(7, key, nil, []byte("diff body")))

	// Truncate the stored file below headerLen to simulate corruption.
	entryDir := filepath.Join(dir, "diff", key[:2])
	entries, err := os.ReadDir(entryDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	path := filepath.Join(entryDir, entries[0].Name())
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	// A fresh Cache over the same directory has an empty in-memory index,
	// so this Get must hit disk and observe the corruption — unlike
	// writer, which would still serve the good bytes from its own index.
	reader := diffcache.New(dir)
	_, ok := reader.Get(7, key)
	assert.False(t, ok)
}

func TestCache_LayoutUsesFirstTwoCharsAsShard(t *testing.T) {
	dir := t.TempDir()
	c := diffcache.New(dir)
	key := diffcache.Key("https://svn/repo", 7, nil)
	require.NoError(t, c.Put(7, key, nil, []byte("x")))

	expected := filepath.Join(dir, "diff", key[:2], key)
	_, err := os.Stat(expected)
	assert.NoError(t, err)
}

func TestCache_GetIsServedFromMemoryIndexOnSecondCall(t *testing.T) {
	dir := t.TempDir()
	c := diffcache.New(dir)
	key := diffcache.Key("https://svn/repo", 9, nil)
	require.NoError(t, c.Put(9, key, nil, []byte("diff body")))

	// Remove the on-disk entry entirely; a hit on the in-memory index
	// (keyed by IndexKey(revision, key)) must still succeed, proving the
	// index — not a second disk read — served the value.
	entryDir := filepath.Join(dir, "diff", key[:2])
	entries, err := os.ReadDir(entryDir)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(entryDir, entries[0].Name())))

	got, ok := c.Get(9, key)
	require.True(t, ok)
	assert.Equal(t, []byte("diff body"), got)
}

func TestIndexKey_Deterministic(t *testing.T) {
	a := diffcache.IndexKey(7, "abc")
	b := diffcache.IndexKey(7, "abc")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, diffcache.IndexKey(8, "abc"))
}
