// Package output implements the run's file outputs from spec.md §6:
// commits.csv, committers.csv, rename_transitions.csv, and run_meta.json,
// written under the configured OutDirectory. It is a narrow collaborator
// like the teacher's pipeline.savePipelineState: no business logic, only
// serialization of values the orchestrator already computed.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/svnchurn/svnchurn/internal/model"
)

// utf8BOM is the three-byte UTF-8 byte order mark spec.md §6 requires at
// the head of commits.csv.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Labels holds the localizable column headers for commits.csv. The
// column order and semantics are fixed by spec.md §6; only the header
// text varies. DefaultLabels returns the English defaults.
type Labels struct {
	Revision     string
	Author       string
	Date         string
	FileCount    string
	AddedLines   string
	DeletedLines string
	Churn        string
	Entropy      string
	ShortMessage string
}

// DefaultLabels returns the English column headers for commits.csv.
func DefaultLabels() Labels {
	return Labels{
		Revision:     "revision",
		Author:       "author",
		Date:         "date",
		FileCount:    "file_count",
		AddedLines:   "added_lines",
		DeletedLines: "deleted_lines",
		Churn:        "churn",
		Entropy:      "entropy",
		ShortMessage: "short_message",
	}
}

// CommitRow is one commits.csv row: a commit's identity plus the derived
// churn totals (C9) and message summary (C12) computed for it.
type CommitRow struct {
	Revision     int
	Author       string
	Date         string
	FileCount    int
	AddedLines   int
	DeletedLines int
	Churn        int
	Entropy      float64
	ShortMessage string
}

// WriteCommitsCSV writes commits.csv at path, UTF-8-with-BOM, one row per
// CommitRow in the order given (callers are expected to have already
// sorted rows by ascending revision per spec.md §5).
func WriteCommitsCSV(path string, rows []CommitRow, labels Labels) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: WriteCommitsCSV: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("output: WriteCommitsCSV: %w", err)
	}

	w := csv.NewWriter(f)
	header := []string{
		labels.Revision, labels.Author, labels.Date, labels.FileCount,
		labels.AddedLines, labels.DeletedLines, labels.Churn, labels.Entropy,
		labels.ShortMessage,
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("output: WriteCommitsCSV: %w", err)
	}

	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Revision),
			r.Author,
			r.Date,
			strconv.Itoa(r.FileCount),
			strconv.Itoa(r.AddedLines),
			strconv.Itoa(r.DeletedLines),
			strconv.Itoa(r.Churn),
			strconv.FormatFloat(r.Entropy, 'f', -1, 64),
			r.ShortMessage,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("output: WriteCommitsCSV: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("output: WriteCommitsCSV: %w", err)
	}
	return nil
}

// WriteCommittersCSV writes committers.csv: author, commit count, added,
// deleted, total churn, and per-action counts, per spec.md §6.
func WriteCommittersCSV(path string, rows []model.CommitterTotals) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: WriteCommittersCSV: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"author", "commit_count", "added", "deleted", "churn",
		"action_a", "action_m", "action_d", "action_r",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("output: WriteCommittersCSV: %w", err)
	}

	for _, r := range rows {
		record := []string{
			r.Author,
			strconv.Itoa(r.CommitCount),
			strconv.Itoa(r.Added),
			strconv.Itoa(r.Deleted),
			strconv.Itoa(r.Churn),
			strconv.Itoa(r.ActionA),
			strconv.Itoa(r.ActionM),
			strconv.Itoa(r.ActionD),
			strconv.Itoa(r.ActionR),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("output: WriteCommittersCSV: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("output: WriteCommittersCSV: %w", err)
	}
	return nil
}

// WriteRenameTransitionsCSV writes rename_transitions.csv: revision,
// before path, after path (either may be empty for a pure add/delete).
func WriteRenameTransitionsCSV(path string, rows []model.RenameTransition) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: WriteRenameTransitionsCSV: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"revision", "before_path", "after_path"}); err != nil {
		return fmt.Errorf("output: WriteRenameTransitionsCSV: %w", err)
	}

	for _, r := range rows {
		record := []string{strconv.Itoa(r.Revision), r.BeforePath, r.AfterPath}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("output: WriteRenameTransitionsCSV: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("output: WriteRenameTransitionsCSV: %w", err)
	}
	return nil
}

// RunParameters mirrors the CLI flags verbatim, including
// ExcludeCommentOnlyLines, for run_meta.json's Parameters field
// (spec.md §6).
type RunParameters struct {
	RepoURL                 string   `json:"repo_url"`
	FromRevision            int      `json:"from_revision"`
	ToRevision              int      `json:"to_revision"`
	OutDirectory            string   `json:"out_directory"`
	SvnExecutable           string   `json:"svn_executable"`
	Encoding                string   `json:"encoding"`
	ExcludeCommentOnlyLines bool     `json:"exclude_comment_only_lines"`
	IncludeExtensions       []string `json:"include_extensions"`
	ExcludeExtensions       []string `json:"exclude_extensions"`
	IncludePathPatterns     []string `json:"include_path_patterns"`
	ExcludePathPatterns     []string `json:"exclude_path_patterns"`
	Parallelism             int      `json:"parallelism"`
	CacheDir                string   `json:"cache_dir"`
}

// RunTiming records wall-clock timing for run_meta.json.
type RunTiming struct {
	StartedAt       string  `json:"started_at"`
	FinishedAt      string  `json:"finished_at"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// RunVersions records the SVN client and tool versions for run_meta.json.
type RunVersions struct {
	Svn  string `json:"svn"`
	Tool string `json:"tool"`
}

// RunMeta is the full run_meta.json document.
type RunMeta struct {
	Parameters RunParameters `json:"parameters"`
	Timing     RunTiming     `json:"timing"`
	Versions   RunVersions   `json:"versions"`
}

// WriteRunMeta writes run_meta.json, pretty-printed like the teacher's
// own JSON checkpoints (pipeline.savePipelineState uses
// json.MarshalIndent).
func WriteRunMeta(path string, meta RunMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("output: WriteRunMeta: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("output: WriteRunMeta: %w", err)
	}
	return nil
}
