// Package rename implements C8: detecting SVN copy+delete pairs as
// renames within a single commit, correcting their diff stats, and
// emitting RenameTransition rows.
package rename

import (
	"strconv"

	"github.com/svnchurn/svnchurn/internal/model"
)

// Pair is one detected rename within a commit.
type Pair struct {
	OldPath      string
	NewPath      string
	CopyRevision int
}

// Detect scans a commit's changed paths for copy+delete pairs per
// spec.md §4.8: a path with Action in {A, R} and a CopyFromPath is a
// rename only if the same commit also deletes CopyFromPath. Copies
// without a matching delete are not renames.
func Detect(commit *model.Commit) []Pair {
	deleted := make(map[string]struct{})
	for _, p := range commit.ChangedPaths {
		if p.Action == model.ActionDelete {
			deleted[p.Path] = struct{}{}
		}
	}

	var pairs []Pair
	for _, p := range commit.ChangedPaths {
		if p.Action != model.ActionAdd && p.Action != model.ActionReplace {
			continue
		}
		if !p.HasCopyFrom() {
			continue
		}
		if _, ok := deleted[p.CopyFromPath]; !ok {
			continue
		}
		pairs = append(pairs, Pair{
			OldPath:      p.CopyFromPath,
			NewPath:      p.Path,
			CopyRevision: p.EffectiveCopyFromRev(commit.Revision),
		})
	}
	return pairs
}

// ApplyStatCorrection mutates commit.FileDiffStats so a rename pair's
// "before" path carries a zero stat and its "after" path carries
// realStat (spec.md §4.8, "Stat correction"). The pipeline passes the stat
// that `svn diff -c` reported for NewPath in the same commit (the zero
// stat when that diff has no block for it); no separate diff between
// old@pair.CopyRevision and new@commit.Revision is run. This function only
// performs the bookkeeping.
func ApplyStatCorrection(commit *model.Commit, pair Pair, realStat model.FileDiffStat) {
	commit.FileDiffStats[pair.NewPath] = realStat
	commit.FileDiffStats[pair.OldPath] = model.ZeroStat()
}

// Transitions emits one RenameTransition per changed path in a commit,
// per spec.md §4.8's "Transition emission" rules: one row per detected
// rename pair (deduplicated globally by (old,new,revision)), one row per
// unconsumed delete, and one row per added path that is not part of a
// rename. seen is the caller-owned global dedup set, keyed by
// "old\x00new\x00revision"; Transitions mutates it.
func Transitions(commit *model.Commit, pairs []Pair, seen map[string]struct{}) []model.RenameTransition {
	consumedOld := make(map[string]struct{}, len(pairs))
	consumedNew := make(map[string]struct{}, len(pairs))
	var out []model.RenameTransition

	for _, pair := range pairs {
		consumedOld[pair.OldPath] = struct{}{}
		consumedNew[pair.NewPath] = struct{}{}

		key := dedupKey(pair.OldPath, pair.NewPath, commit.Revision)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, model.RenameTransition{
			Revision:   commit.Revision,
			BeforePath: pair.OldPath,
			AfterPath:  pair.NewPath,
		})
	}

	for _, p := range commit.ChangedPaths {
		switch p.Action {
		case model.ActionDelete:
			if _, consumed := consumedOld[p.Path]; consumed {
				continue
			}
			out = append(out, model.RenameTransition{Revision: commit.Revision, BeforePath: p.Path})
		case model.ActionAdd, model.ActionReplace:
			if _, consumed := consumedNew[p.Path]; consumed {
				continue
			}
			out = append(out, model.RenameTransition{Revision: commit.Revision, AfterPath: p.Path})
		}
	}

	return out
}

func dedupKey(old, newPath string, revision int) string {
	return old + "\x00" + newPath + "\x00" + strconv.Itoa(revision)
}
