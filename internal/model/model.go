// Package model defines the shared data types that flow through the commit
// analysis pipeline: Commit, ChangedPath, FileDiffStat, RenameTransition, and
// CommitterTotals. Nothing in this package talks to SVN, the filesystem, or
// the network — it is pure data plus the small helpers every downstream
// stage needs (sorting, lookup).
package model

import "sort"

// Action is the single-character SVN change action reported by `svn log
// --verbose` and `svn diff`.
type Action string

const (
	ActionAdd     Action = "A"
	ActionModify  Action = "M"
	ActionDelete  Action = "D"
	ActionReplace Action = "R"
)

// Kind classifies a changed path as a file, a directory, or unknown (when the
// log entry's kind attribute holds an unrecognised value; the log parser
// treats a missing attribute as a file).
type Kind string

const (
	KindFile    Kind = "file"
	KindDir     Kind = "dir"
	KindUnknown Kind = "unknown"
)

// UnknownAuthor is substituted for commits whose log entry has no author
// (e.g. produced by a pre-commit hook running as an anonymous user).
const UnknownAuthor = "(unknown)"

// ChangedPath is a single entry from a commit's <paths> block.
type ChangedPath struct {
	Path         string
	Action       Action
	Kind         Kind
	CopyFromPath string // empty when this is not a copy/rename
	CopyFromRev  int    // 0 means "not present"; callers should prefer HasCopyFrom
}

// HasCopyFrom reports whether this path carries copy-from information.
func (c ChangedPath) HasCopyFrom() bool {
	return c.CopyFromPath != ""
}

// EffectiveCopyFromRev returns CopyFromRev when set, otherwise the
// documented fallback of revision-1 per spec.md §3 / §9 Open Question.
func (c ChangedPath) EffectiveCopyFromRev(revision int) int {
	if c.CopyFromRev > 0 {
		return c.CopyFromRev
	}
	return revision - 1
}

// Hunk is one @@ block from a unified diff.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
}

// Overlaps reports whether this hunk's old-side line range overlaps other's,
// using the strict (touching-endpoints-count) semantics of the overlap
// oracle in spec.md §4.11.
func (h Hunk) Overlaps(other Hunk) bool {
	a0, a1 := h.OldStart, h.OldStart+maxInt(h.OldCount-1, 0)
	b0, b1 := other.OldStart, other.OldStart+maxInt(other.OldCount-1, 0)
	return !(a1 < b0 || b1 < a0)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// FileDiffStat is the per-file outcome of parsing a unified diff, after any
// rename correction has been applied.
type FileDiffStat struct {
	AddedLines        int
	DeletedLines      int
	Hunks             []Hunk
	IsBinary          bool
	AddedLineHashes   []string
	DeletedLineHashes []string
}

// Churn returns AddedLines + DeletedLines.
func (f FileDiffStat) Churn() int {
	return f.AddedLines + f.DeletedLines
}

// ZeroStat returns the stat used to tombstone the "old" side of a resolved
// rename pair: zero lines, no hunks, not binary (spec.md §4.8).
func ZeroStat() FileDiffStat {
	return FileDiffStat{
		Hunks:             []Hunk{},
		AddedLineHashes:   []string{},
		DeletedLineHashes: []string{},
	}
}

// Commit is one SVN revision as it flows through the pipeline. Fields are
// filled in progressively: ChangedPaths/Author/Message by the log parser,
// ChangedPathsFiltered by the path filter, FilesChanged/FileDiffStats by the
// diff parser and the rename resolver.
type Commit struct {
	Revision              int
	Author                string
	Date                  string
	Message               string
	ChangedPaths          []ChangedPath
	ChangedPathsFiltered  []ChangedPath
	FilesChanged          map[string]struct{}
	FileDiffStats         map[string]FileDiffStat
	DiffUnavailable       bool
}

// NewCommit returns a Commit with its maps initialised.
func NewCommit(revision int) *Commit {
	return &Commit{
		Revision:      revision,
		FilesChanged:  make(map[string]struct{}),
		FileDiffStats: make(map[string]FileDiffStat),
	}
}

// Added sums AddedLines across FileDiffStats.
func (c *Commit) Added() int {
	total := 0
	for _, s := range c.FileDiffStats {
		total += s.AddedLines
	}
	return total
}

// Deleted sums DeletedLines across FileDiffStats.
func (c *Commit) Deleted() int {
	total := 0
	for _, s := range c.FileDiffStats {
		total += s.DeletedLines
	}
	return total
}

// Churn returns Added()+Deleted().
func (c *Commit) Churn() int {
	return c.Added() + c.Deleted()
}

// SortByRevision sorts commits ascending by revision, in place.
func SortByRevision(commits []*Commit) {
	sort.Slice(commits, func(i, j int) bool {
		return commits[i].Revision < commits[j].Revision
	})
}

// RenameTransition describes one path's fate within a single revision: an
// add (BeforePath == ""), a delete (AfterPath == ""), or a rename (both set).
type RenameTransition struct {
	Revision   int
	BeforePath string
	AfterPath  string
}

// IsRename reports whether both sides of the transition are populated.
func (r RenameTransition) IsRename() bool {
	return r.BeforePath != "" && r.AfterPath != ""
}

// CommitterTotals is the per-author aggregate row produced by C10.
type CommitterTotals struct {
	Author      string
	CommitCount int
	Added       int
	Deleted     int
	Churn       int
	ActionA     int
	ActionM     int
	ActionD     int
	ActionR     int
}
