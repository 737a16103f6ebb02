package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/svnchurn/svnchurn/internal/errs"
	"github.com/svnchurn/svnchurn/internal/logging"
	"github.com/svnchurn/svnchurn/internal/output"
	"github.com/svnchurn/svnchurn/internal/pipeline"
	"github.com/svnchurn/svnchurn/internal/progress"
	"github.com/svnchurn/svnchurn/internal/summarize"
	"github.com/svnchurn/svnchurn/internal/svn"
)

// analyzeFlags holds all parsed flag values for the analyze command, the
// same shape as the teacher's pipelineFlags struct feeding PipelineOpts.
type analyzeFlags struct {
	RepoURL      string
	FromRevision int
	ToRevision   int

	OutDirectory  string
	SvnExecutable string
	Encoding      string
	NoProgress    bool

	ExcludeCommentOnlyLines bool
	IncludeExtensions       []string
	ExcludeExtensions       []string
	IncludePathPatterns     []string
	ExcludePathPatterns     []string

	Parallelism int
	CacheDir    string
}

// newAnalyzeCmd creates the "svnchurn analyze" command.
func newAnalyzeCmd() *cobra.Command {
	var flags analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze commit-churn metrics across an SVN revision range",
		Long: `Analyze walks an SVN repository's commit history between two revisions and
reports per-commit and per-author churn metrics without ever checking out a
working copy.

It writes four files to --out-directory: commits.csv, committers.csv,
rename_transitions.csv, and run_meta.json.

Exit codes:
  0 - Success
  2 - Usage error
  3 - SVN unreachable or a call failed
  4 - Parse failure
  5 - I/O failure`,
		Example: `  svnchurn analyze --repo-url https://svn.example.com/repo --from-revision 100 --to-revision 200

  svnchurn analyze --repo-url https://svn.example.com/repo --from-revision 1 --to-revision 500 \
    --exclude-extensions png,jpg --parallelism 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.RepoURL, "repo-url", "", "SVN repository URL (required)")
	cmd.Flags().IntVar(&flags.FromRevision, "from-revision", 0, "First revision to analyze, inclusive (required)")
	cmd.Flags().IntVar(&flags.ToRevision, "to-revision", 0, "Last revision to analyze, inclusive (required)")

	cmd.Flags().StringVar(&flags.OutDirectory, "out-directory", "out", "Directory to write commits.csv/committers.csv/rename_transitions.csv/run_meta.json")
	cmd.Flags().StringVar(&flags.SvnExecutable, "svn-executable", "svn", "Path to the svn binary")
	cmd.Flags().StringVar(&flags.Encoding, "encoding", "UTF-8", "Output text encoding")
	cmd.Flags().BoolVar(&flags.NoProgress, "no-progress", false, "Suppress the \"fetched N/M diffs\" progress line")

	cmd.Flags().BoolVar(&flags.ExcludeCommentOnlyLines, "exclude-comment-only-lines", false, "Exclude comment-only line changes from churn counts")
	cmd.Flags().StringSliceVar(&flags.IncludeExtensions, "include-extensions", nil, "Only count files with these extensions (comma-separated, no leading dot)")
	cmd.Flags().StringSliceVar(&flags.ExcludeExtensions, "exclude-extensions", nil, "Exclude files with these extensions (comma-separated, no leading dot)")
	cmd.Flags().StringSliceVar(&flags.IncludePathPatterns, "include-path-patterns", nil, "Only count paths matching these globs (comma-separated)")
	cmd.Flags().StringSliceVar(&flags.ExcludePathPatterns, "exclude-path-patterns", nil, "Exclude paths matching these globs (comma-separated)")

	cmd.Flags().IntVar(&flags.Parallelism, "parallelism", 4, "Maximum concurrent diff fetches")
	cmd.Flags().StringVar(&flags.CacheDir, "cache-dir", ".svnchurn-cache", "Directory to cache fetched diffs")

	return cmd
}

func init() {
	rootCmd.AddCommand(newAnalyzeCmd())
}

// runAnalyze is the RunE implementation for the analyze command.
func runAnalyze(cmd *cobra.Command, flags analyzeFlags) error {
	logger := logging.New("analyze")

	if err := validateAnalyzeFlags(flags); err != nil {
		return errs.New(errs.KindUsage, "cli.analyze", err)
	}

	invoker := svn.NewExecInvoker(flags.SvnExecutable, 120*time.Second)

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if !flags.NoProgress && !flagQuiet {
		opts = append(opts, pipeline.WithProgress(progress.NewTerminal(os.Stderr)))
	} else {
		opts = append(opts, pipeline.WithProgress(progress.NoOp{}))
	}
	orch := pipeline.New(invoker, opts...)

	runOpts := pipeline.RunOpts{
		RepoURL:      flags.RepoURL,
		FromRevision: flags.FromRevision,
		ToRevision:   flags.ToRevision,

		SvnExecutable:  flags.SvnExecutable,
		PerCallTimeout: 120 * time.Second,
		Parallelism:    flags.Parallelism,
		CacheDir:       flags.CacheDir,

		IncludeExtensions:   flags.IncludeExtensions,
		ExcludeExtensions:   flags.ExcludeExtensions,
		IncludePathPatterns: flags.IncludePathPatterns,
		ExcludePathPatterns: flags.ExcludePathPatterns,

		OutDirectory:            flags.OutDirectory,
		Encoding:                flags.Encoding,
		ExcludeCommentOnlyLines: flags.ExcludeCommentOnlyLines,
		MessageMaxLength:        120,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	started := time.Now()
	logger.Info("starting analysis",
		"repo_url", runOpts.RepoURL,
		"from_revision", runOpts.FromRevision,
		"to_revision", runOpts.ToRevision,
		"parallelism", runOpts.Parallelism,
	)

	result, runErr := orch.Run(ctx, runOpts)
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			fmt.Fprintln(os.Stderr, "\nAnalysis cancelled.")
		}
		return runErr
	}
	finished := time.Now()

	if err := os.MkdirAll(flags.OutDirectory, 0o755); err != nil {
		return errs.New(errs.KindCacheIO, "cli.analyze", fmt.Errorf("creating out directory: %w", err))
	}

	rows := result.CommitRows(summarize.Config{MessageMaxLength: runOpts.MessageMaxLength})
	if err := output.WriteCommitsCSV(filepath.Join(flags.OutDirectory, "commits.csv"), rows, output.DefaultLabels()); err != nil {
		return errs.New(errs.KindCacheIO, "cli.analyze", fmt.Errorf("writing commits.csv: %w", err))
	}
	if err := output.WriteCommittersCSV(filepath.Join(flags.OutDirectory, "committers.csv"), result.Committers); err != nil {
		return errs.New(errs.KindCacheIO, "cli.analyze", fmt.Errorf("writing committers.csv: %w", err))
	}
	if err := output.WriteRenameTransitionsCSV(filepath.Join(flags.OutDirectory, "rename_transitions.csv"), result.RenameTransitions); err != nil {
		return errs.New(errs.KindCacheIO, "cli.analyze", fmt.Errorf("writing rename_transitions.csv: %w", err))
	}

	meta := output.RunMeta{
		Parameters: output.RunParameters{
			RepoURL:                 runOpts.RepoURL,
			FromRevision:            runOpts.FromRevision,
			ToRevision:              runOpts.ToRevision,
			OutDirectory:            runOpts.OutDirectory,
			SvnExecutable:           runOpts.SvnExecutable,
			Encoding:                runOpts.Encoding,
			ExcludeCommentOnlyLines: runOpts.ExcludeCommentOnlyLines,
			IncludeExtensions:       runOpts.IncludeExtensions,
			ExcludeExtensions:       runOpts.ExcludeExtensions,
			IncludePathPatterns:     runOpts.IncludePathPatterns,
			ExcludePathPatterns:     runOpts.ExcludePathPatterns,
			Parallelism:             runOpts.Parallelism,
			CacheDir:                runOpts.CacheDir,
		},
		Timing: output.RunTiming{
			StartedAt:       started.UTC().Format(time.RFC3339),
			FinishedAt:      finished.UTC().Format(time.RFC3339),
			DurationSeconds: finished.Sub(started).Seconds(),
		},
		Versions: output.RunVersions{
			Svn:  flags.SvnExecutable,
			Tool: "svnchurn",
		},
	}
	if err := output.WriteRunMeta(filepath.Join(flags.OutDirectory, "run_meta.json"), meta); err != nil {
		return errs.New(errs.KindCacheIO, "cli.analyze", fmt.Errorf("writing run_meta.json: %w", err))
	}

	printAnalyzeSummary(cmd, result, finished.Sub(started))
	logger.Info("analysis complete", "commits", len(result.Commits), "duration", finished.Sub(started))

	return nil
}

// printAnalyzeSummary writes a human-readable result summary to cmd's stdout.
func printAnalyzeSummary(cmd *cobra.Command, result *pipeline.Result, duration time.Duration) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nAnalyzed %d commit(s) from %d committer(s) in %s\n",
		len(result.Commits), len(result.Committers), duration.Round(time.Millisecond))
	if len(result.Unavailable) > 0 {
		fmt.Fprintf(out, "%d revision(s) had an unavailable diff (churn counted as zero)\n", len(result.Unavailable))
	}
	if len(result.RenameTransitions) > 0 {
		fmt.Fprintf(out, "%d rename transition(s) detected\n", len(result.RenameTransitions))
	}
}

// validateAnalyzeFlags performs semantic validation of analyze flags.
func validateAnalyzeFlags(flags analyzeFlags) error {
	if strings.TrimSpace(flags.RepoURL) == "" {
		return fmt.Errorf("--repo-url is required")
	}
	if flags.FromRevision < 1 {
		return fmt.Errorf("--from-revision must be >= 1, got %d", flags.FromRevision)
	}
	if flags.ToRevision < flags.FromRevision {
		return fmt.Errorf("--to-revision (%d) must be >= --from-revision (%d)", flags.ToRevision, flags.FromRevision)
	}
	if flags.Parallelism < 1 {
		return fmt.Errorf("--parallelism must be >= 1, got %d", flags.Parallelism)
	}
	return nil
}
