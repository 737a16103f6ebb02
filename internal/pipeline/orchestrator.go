// Package pipeline implements the single-pass commit-churn analysis run:
// log parsing (C2), path filtering (C3), prefetch planning and execution
// (C5/C6, themselves backed by C4/C1), diff parsing (C7), rename
// resolution (C8), churn derivation (C9), committer aggregation (C10),
// and message summarization (C12), in the ascending-revision order
// spec.md §5 requires.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/svnchurn/svnchurn/internal/aggregate"
	"github.com/svnchurn/svnchurn/internal/churn"
	"github.com/svnchurn/svnchurn/internal/diffcache"
	"github.com/svnchurn/svnchurn/internal/diffparse"
	"github.com/svnchurn/svnchurn/internal/errs"
	"github.com/svnchurn/svnchurn/internal/logparser"
	"github.com/svnchurn/svnchurn/internal/model"
	"github.com/svnchurn/svnchurn/internal/output"
	"github.com/svnchurn/svnchurn/internal/pathfilter"
	"github.com/svnchurn/svnchurn/internal/prefetch"
	"github.com/svnchurn/svnchurn/internal/progress"
	"github.com/svnchurn/svnchurn/internal/rename"
	"github.com/svnchurn/svnchurn/internal/summarize"
	"github.com/svnchurn/svnchurn/internal/svn"
)

// RunOpts configures a single analysis run, the same shape as the CLI's
// analyze command feeds in (SPEC_FULL.md §10.4), following the teacher's
// convention of a plain options struct rather than positional parameters.
type RunOpts struct {
	RepoURL      string
	FromRevision int
	ToRevision   int

	SvnExecutable  string
	PerCallTimeout time.Duration
	Parallelism    int
	CacheDir       string

	IncludeExtensions   []string
	ExcludeExtensions   []string
	IncludePathPatterns []string
	ExcludePathPatterns []string

	OutDirectory            string
	Encoding                string
	ExcludeCommentOnlyLines bool
	MessageMaxLength        int

	// DiffExtraArgs is passed verbatim to every `svn diff` invocation
	// (e.g. for server-specific options); usually empty.
	DiffExtraArgs []string
}

// Result is the outcome of a completed run: the fully-resolved commits
// (ascending revision order, ready for CommitRow projection), the
// committer aggregate, and the rename transitions, plus the set of
// revisions whose diff could not be fetched after retry.
type Result struct {
	Commits           []*model.Commit
	Committers        []model.CommitterTotals
	RenameTransitions []model.RenameTransition
	Unavailable       map[int]bool
}

// Orchestrator runs a single analysis pass. Invoker is the only
// collaborator that must be supplied explicitly; the rest have working
// defaults (no-op progress, a charmbracelet/log logger with the
// "pipeline" prefix).
type Orchestrator struct {
	invoker  svn.Invoker
	logger   *log.Logger
	progress progress.Reporter
}

// Option is a functional option for configuring an Orchestrator,
// following the teacher's PipelineOption pattern
// (internal/pipeline/orchestrator.go's WithPipelineLogger/WithPipelineEvents).
type Option func(*Orchestrator)

// WithLogger attaches a charmbracelet/log Logger to the orchestrator.
func WithLogger(logger *log.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithProgress attaches a progress.Reporter the prefetch executor reports
// fetch counts to. A nil Reporter (the default) reports nothing.
func WithProgress(r progress.Reporter) Option {
	return func(o *Orchestrator) { o.progress = r }
}

// New returns an Orchestrator driving SVN through invoker.
func New(invoker svn.Invoker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		invoker:  invoker,
		logger:   log.WithPrefix("pipeline"),
		progress: progress.NoOp{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the full pipeline for opts against o.invoker, honoring
// ctx cancellation at each stage boundary (spec.md §5, "cancel token
// checked before each C6 dispatch"). Per §7's Cancelled policy, a
// cancellation that occurs before the log phase completes aborts with no
// partial Result; cancellation after that point still returns whatever
// was computed, with err set so the caller can decide whether to write
// partial CSVs.
func (o *Orchestrator) Run(ctx context.Context, opts RunOpts) (*Result, error) {
	logXML, err := o.invoker.Log(ctx, opts.RepoURL, opts.FromRevision, opts.ToRevision)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errs.New(errs.KindCancelled, "pipeline: Run", ctx.Err())
		}
		return nil, errs.New(errs.KindSvnCallFailed, "pipeline: Run: svn log", err)
	}

	commits, err := logparser.Parse(logXML)
	if err != nil {
		return nil, errs.New(errs.KindParse, "pipeline: Run: log XML", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, errs.New(errs.KindCancelled, "pipeline: Run", err)
	}

	filterCfg := pathfilter.NewConfig(
		opts.IncludeExtensions, opts.ExcludeExtensions,
		opts.IncludePathPatterns, opts.ExcludePathPatterns,
	)
	for _, c := range commits {
		c.ChangedPathsFiltered = pathfilter.Apply(filterCfg, c.ChangedPaths)
	}

	cache := diffcache.New(opts.CacheDir)
	argsKey := diffcache.Key(opts.RepoURL, 0, opts.DiffExtraArgs)
	plan := prefetch.Build(commits, argsKey)

	if err := ctx.Err(); err != nil {
		return nil, errs.New(errs.KindCancelled, "pipeline: Run", err)
	}

	executor := &prefetch.Executor{
		Invoker:     o.invoker,
		Cache:       cache,
		RepoURL:     opts.RepoURL,
		DiffArgs:    opts.DiffExtraArgs,
		Concurrency: opts.Parallelism,
		Logger:      o.logger,
		Progress:    o.progress,
	}
	prefetchResult, err := executor.Run(ctx, plan.Items)
	if err != nil {
		return nil, errs.New(errs.KindCancelled, "pipeline: Run: prefetch", err)
	}

	diffOpts := diffparse.Options{ExcludeCommentOnlyLines: opts.ExcludeCommentOnlyLines}
	seenTransitions := make(map[string]struct{})
	var allTransitions []model.RenameTransition

	for _, c := range commits {
		if prefetchResult.Unavailable[c.Revision] {
			c.DiffUnavailable = true
			o.logger.Warn("diff unavailable for revision, emitting zero churn", "revision", c.Revision)
		}

		if len(c.ChangedPathsFiltered) > 0 && !c.DiffUnavailable {
			key := diffcache.Key(opts.RepoURL, c.Revision, opts.DiffExtraArgs)
			raw, ok := cache.Get(c.Revision, key)
			if !ok {
				c.DiffUnavailable = true
				o.logger.Warn("diff missing from cache after prefetch, treating as unavailable", "revision", c.Revision)
			} else {
				stats, err := diffparse.Parse(raw, diffOpts)
				if err != nil {
					c.DiffUnavailable = true
					o.logger.Warn("diff parse failed, demoting to unavailable", "revision", c.Revision, "error", err)
				} else {
					c.FileDiffStats = stats
				}
			}
		}

		for path := range c.FileDiffStats {
			c.FilesChanged[path] = struct{}{}
		}

		pairs := rename.Detect(c)
		for _, pair := range pairs {
			// Correction is unconditional: a pure rename with no content
			// change has no diff block for NewPath at all, so the zero
			// value here (all-zero stat) is exactly the correct "unchanged"
			// stat to write, not a reason to skip the correction.
			rename.ApplyStatCorrection(c, pair, c.FileDiffStats[pair.NewPath])
		}
		allTransitions = append(allTransitions, rename.Transitions(c, pairs, seenTransitions)...)
	}

	committers := aggregate.Committers(commits)

	if err := ctx.Err(); err != nil {
		return &Result{
			Commits:           commits,
			Committers:        committers,
			RenameTransitions: allTransitions,
			Unavailable:       prefetchResult.Unavailable,
		}, errs.New(errs.KindCancelled, "pipeline: Run", err)
	}

	return &Result{
		Commits:           commits,
		Committers:        committers,
		RenameTransitions: allTransitions,
		Unavailable:       prefetchResult.Unavailable,
	}, nil
}

// CommitRows projects r.Commits into output.CommitRow values via C9
// (churn.Derive) and C12 (summarize.Summarize), in ascending revision
// order per spec.md §5.
func (r *Result) CommitRows(cfg summarize.Config) []output.CommitRow {
	rows := make([]output.CommitRow, 0, len(r.Commits))
	for _, c := range r.Commits {
		totals := churn.Derive(c)
		summary := summarize.Summarize(cfg, c.Message)
		rows = append(rows, output.CommitRow{
			Revision:     c.Revision,
			Author:       c.Author,
			Date:         c.Date,
			FileCount:    len(c.FilesChanged),
			AddedLines:   totals.Added,
			DeletedLines: totals.Deleted,
			Churn:        totals.Churn,
			Entropy:      totals.Entropy,
			ShortMessage: summary.Short,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Revision < rows[j].Revision })
	return rows
}
