// Package aggregate implements C10: grouping commits by author into
// CommitterTotals rows.
package aggregate

import (
	"sort"

	"github.com/svnchurn/svnchurn/internal/model"
)

// Committers groups commits by Author and sums CommitCount, Added,
// Deleted, Churn, and per-action counts (counted from
// ChangedPathsFiltered, not ChangedPaths, per spec.md §4.10). The result
// is sorted by Author ascending using Go's default string ordering,
// which compares byte-by-byte over UTF-8 code points — a
// locale-independent lexicographic order.
func Committers(commits []*model.Commit) []model.CommitterTotals {
	byAuthor := make(map[string]*model.CommitterTotals)

	for _, c := range commits {
		t, ok := byAuthor[c.Author]
		if !ok {
			t = &model.CommitterTotals{Author: c.Author}
			byAuthor[c.Author] = t
		}

		t.CommitCount++
		t.Added += c.Added()
		t.Deleted += c.Deleted()
		t.Churn += c.Churn()

		for _, p := range c.ChangedPathsFiltered {
			switch p.Action {
			case model.ActionAdd:
				t.ActionA++
			case model.ActionModify:
				t.ActionM++
			case model.ActionDelete:
				t.ActionD++
			case model.ActionReplace:
				t.ActionR++
			}
		}
	}

	out := make([]model.CommitterTotals, 0, len(byAuthor))
	for _, t := range byAuthor {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Author < out[j].Author
	})
	return out
}
