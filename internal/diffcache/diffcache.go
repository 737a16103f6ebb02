// Package diffcache implements C4: a content-addressed, on-disk cache of
// raw svn diff output keyed on (repo URL, revision, diff arguments).
package diffcache

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/svnchurn/svnchurn/internal/errs"
)

// headerLen is the size of the fixed record written before the raw diff
// bytes in each cache file: an 8-byte Unix timestamp followed by a
// 32-byte SHA-256 digest of the arguments used to produce the cached
// diff (spec.md §4.4).
const headerLen = 8 + 32

// Key computes the SHA-256 cache key for (repoURL, revision, diffArgs).
// diffArgs is sorted before hashing so argument order never affects the
// key.
func Key(repoURL string, revision int, diffArgs []string) string {
	sorted := append([]string(nil), diffArgs...)
	sort.Strings(sorted)

	h := sha256.New()
	h.Write([]byte(repoURL))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(revision)))
	for _, a := range sorted {
		h.Write([]byte{0})
		h.Write([]byte(a))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func argDigest(diffArgs []string) [32]byte {
	sorted := append([]string(nil), diffArgs...)
	sort.Strings(sorted)
	h := sha256.New()
	for _, a := range sorted {
		h.Write([]byte{0})
		h.Write([]byte(a))
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Cache is a filesystem-backed diff cache rooted at Dir/diff, fronted by
// an in-memory index so repeated Get calls for the same (revision, key)
// within a single run — the prefetch executor's own write followed by
// the orchestrator's read-back during C7 — never re-touch disk.
type Cache struct {
	Dir string

	idxMu sync.RWMutex
	idx   map[uint64][]byte
}

// New returns a Cache rooted at filepath.Join(baseDir, "diff").
func New(baseDir string) *Cache {
	return &Cache{
		Dir: filepath.Join(baseDir, "diff"),
		idx: make(map[uint64][]byte),
	}
}

func (c *Cache) pathFor(key string) string {
	prefix := key
	if len(prefix) > 2 {
		prefix = key[:2]
	}
	return filepath.Join(c.Dir, prefix, key)
}

// Get returns the cached raw diff bytes for (revision, key), and false if
// the entry is absent or corrupt (corruption is treated as a miss per
// spec.md §4.4). revision only disambiguates the in-memory index; the
// on-disk path is keyed on key alone, same as before.
func (c *Cache) Get(revision int, key string) ([]byte, bool) {
	idxKey := IndexKey(revision, key)

	c.idxMu.RLock()
	cached, ok := c.idx[idxKey]
	c.idxMu.RUnlock()
	if ok {
		return cached, true
	}

	path := c.pathFor(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	if len(raw) < headerLen {
		return nil, false
	}
	diff := raw[headerLen:]

	c.idxMu.Lock()
	c.idx[idxKey] = diff
	c.idxMu.Unlock()

	return diff, true
}

// Put writes diff bytes for (revision, key) atomically
// (write-tmp-then-rename) and populates the in-memory index so a
// same-process Get for this revision skips the disk entirely. Concurrent
// writers of the same key are idempotent: content is equal by
// construction, so whichever write wins last is fine.
func (c *Cache) Put(revision int, key string, diffArgs []string, diff []byte) error {
	path := c.pathFor(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.New(errs.KindCacheIO, "diffcache: Put", err)
	}

	var buf bytes.Buffer
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(nowUnix()))
	buf.Write(ts[:])
	digest := argDigest(diffArgs)
	buf.Write(digest[:])
	buf.Write(diff)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errs.New(errs.KindCacheIO, "diffcache: Put", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errs.New(errs.KindCacheIO, "diffcache: Put", err)
	}
	if err := tmp.Close(); err != nil {
		return errs.New(errs.KindCacheIO, "diffcache: Put", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errs.New(errs.KindCacheIO, "diffcache: Put", err)
	}

	c.idxMu.Lock()
	c.idx[IndexKey(revision, key)] = diff
	c.idxMu.Unlock()

	return nil
}

// nowUnix is isolated behind a var so tests can pin a deterministic value
// if ever needed; production always uses wall-clock time.
var nowUnix = func() int64 { return time.Now().Unix() }

// IndexKey returns a fast, non-cryptographic in-process lookup key for
// (revision, key) pairs held in Cache's in-memory index — never persisted
// to disk and never the on-disk cache key itself, which stays SHA-256 per
// spec.md §4.4.
func IndexKey(revision int, key string) uint64 {
	h := xxhash.New()
	var rb [8]byte
	binary.BigEndian.PutUint64(rb[:], uint64(revision))
	h.Write(rb[:])
	h.Write([]byte(key))
	return h.Sum64()
}
