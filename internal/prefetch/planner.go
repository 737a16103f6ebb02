// Package prefetch implements C5 (Prefetch Planner) and C6 (Prefetch
// Executor): deciding which revisions need a diff fetched, then fetching
// them concurrently through the diff cache.
package prefetch

import (
	"github.com/svnchurn/svnchurn/internal/model"
)

// Item is one unit of prefetch work: a revision and the cache-key digest
// of the diff arguments used to fetch it.
type Item struct {
	Revision int
	ArgsKey  string
}

// Plan is the output of the planner: the work items to execute, plus an
// author lookup populated for every commit regardless of whether it
// produced a prefetch item (spec.md §4.5 — needed later for committer
// aggregation of action-only commits).
type Plan struct {
	Items       []Item
	RevToAuthor map[int]string
}

// Build constructs a Plan from commits whose ChangedPathsFiltered has
// already been populated by the path filter (C3). argsKey is the cache-key
// digest of the extra `svn diff` arguments and is copied into every Item;
// the planner fetches nothing itself (the executor does).
func Build(commits []*model.Commit, argsKey string) Plan {
	plan := Plan{
		RevToAuthor: make(map[int]string, len(commits)),
	}

	for _, c := range commits {
		plan.RevToAuthor[c.Revision] = c.Author
		if len(c.ChangedPathsFiltered) == 0 {
			continue
		}
		plan.Items = append(plan.Items, Item{Revision: c.Revision, ArgsKey: argsKey})
	}

	return plan
}
