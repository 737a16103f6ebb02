package prefetch

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/svnchurn/svnchurn/internal/diffcache"
	"github.com/svnchurn/svnchurn/internal/svn"
)

// backoffSchedule is the exponential retry delay sequence from spec.md
// §4.6 (250ms, then 1s). fetchOne retries once, so only the first step
// is used before the revision is given up on.
var backoffSchedule = []time.Duration{250 * time.Millisecond, 1 * time.Second}

// Progress is the narrow collaborator prefetch reports completion counts
// to (SPEC_FULL.md §10.6). A nil Progress is valid and simply means no
// reporting.
type Progress interface {
	DiffFetched(done, total int)
}

// Result is the outcome of running a Plan: which revisions failed twice
// (and are therefore marked diff_unavailable per spec.md §4.6).
// Individual fetch failures are never fatal.
type Result struct {
	Unavailable map[int]bool
}

// Executor runs a Plan's items through the cache and, on miss, through
// the SVN invoker, bounded by a worker pool of size
// min(Concurrency, len(items)) exactly like the teacher's
// ReviewOrchestrator.Run / ScatterOrchestrator.Scatter.
type Executor struct {
	Invoker     svn.Invoker
	Cache       *diffcache.Cache
	RepoURL     string
	DiffArgs    []string
	Concurrency int
	Logger      *log.Logger
	Progress    Progress
}

// Run executes plan.Items, writing fetched diffs into e.Cache. It returns
// a Result naming revisions that failed both the initial attempt and the
// retry. Per-item goroutines always return nil (same shape as the
// teacher's ReviewOrchestrator.Run), so per-item failures never abort the
// group and the returned error is always nil: a cancelled ctx shows up as
// revisions marked unavailable, and the caller checks ctx itself.
func (e *Executor) Run(ctx context.Context, items []Item) (*Result, error) {
	concurrency := e.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	if concurrency > len(items) {
		concurrency = len(items)
	}
	if concurrency == 0 {
		return &Result{Unavailable: map[int]bool{}}, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	unavailable := make(map[int]bool)
	var done int
	total := len(items)

	for _, it := range items {
		it := it
		g.Go(func() error {
			ok := e.fetchOne(gctx, it)

			mu.Lock()
			if !ok {
				unavailable[it.Revision] = true
			}
			done++
			n := done
			mu.Unlock()

			if e.Progress != nil {
				e.Progress.DiffFetched(n, total)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Result{Unavailable: unavailable}, nil
}

// fetchOne probes the cache, then on miss invokes svn diff with one retry
// on failure, after a 250ms backoff. Returns false when both the
// initial attempt and the retry failed, meaning the revision should be
// marked diff_unavailable.
func (e *Executor) fetchOne(ctx context.Context, it Item) bool {
	key := diffcache.Key(e.RepoURL, it.Revision, e.DiffArgs)
	if _, ok := e.Cache.Get(it.Revision, key); ok {
		return true
	}

	var lastErr error
	attempts := []time.Duration{0, backoffSchedule[0]}
	for i, delay := range attempts {
		if delay > 0 {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(delay):
			}
		}

		diff, err := e.Invoker.Diff(ctx, e.RepoURL, it.Revision, e.DiffArgs)
		if err == nil {
			if putErr := e.Cache.Put(it.Revision, key, e.DiffArgs, diff); putErr != nil {
				if e.Logger != nil {
					e.Logger.Warn("diffcache write failed", "revision", it.Revision, "error", putErr)
				}
				// A cache write failure (spec.md §7's CacheIOError) is
				// logged and treated as success for this revision: the
				// diff itself was fetched, it just didn't persist.
			}
			return true
		}
		lastErr = err

		if e.Logger != nil {
			e.Logger.Warn("diff fetch failed",
				"revision", it.Revision,
				"attempt", i+1,
				"error", err,
			)
		}

		if ctx.Err() != nil {
			return false
		}
	}

	if e.Logger != nil {
		e.Logger.Warn("diff unavailable after retry", "revision", it.Revision, "error", lastErr)
	}
	return false
}
