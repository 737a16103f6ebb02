package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/svnchurn/svnchurn/internal/errs"
	"github.com/svnchurn/svnchurn/internal/logging"
)

// Global flag values accessible to all subcommands.
var (
	flagVerbose bool
	flagQuiet   bool
	flagConfig  string
	flagDir     string
	flagNoColor bool
)

// rootCmd is the base command for svnchurn.
var rootCmd = &cobra.Command{
	Use:   "svnchurn",
	Short: "SVN commit-churn analysis pipeline",
	Long: `svnchurn analyzes a Subversion repository's commit history and reports
per-commit and per-author churn metrics -- lines added/deleted, entropy across
touched files, and rename-aware transition tracking -- without ever checking
out a working copy.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	// RunE shows full help when invoked with no subcommand. Without RunE,
	// Cobra only prints the Long description (omitting Usage and Flags).
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Check env vars for flags not explicitly set on command line.
		if !cmd.Flags().Changed("verbose") && os.Getenv("SVNCHURN_VERBOSE") != "" {
			flagVerbose = true
		}
		if !cmd.Flags().Changed("quiet") && os.Getenv("SVNCHURN_QUIET") != "" {
			flagQuiet = true
		}
		if !cmd.Flags().Changed("no-color") && (os.Getenv("NO_COLOR") != "" || os.Getenv("SVNCHURN_NO_COLOR") != "") {
			flagNoColor = true
		}

		// Initialize logging.
		jsonFormat := os.Getenv("SVNCHURN_LOG_FORMAT") == "json"
		logging.Setup(flagVerbose, flagQuiet, jsonFormat)

		// Handle --no-color: disable colored output.
		if flagNoColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}

		// Handle --dir (change working directory).
		if flagDir != "" {
			if err := os.Chdir(flagDir); err != nil {
				return fmt.Errorf("changing directory to %s: %w", flagDir, err)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose (debug) output (env: SVNCHURN_VERBOSE)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress all output except errors (env: SVNCHURN_QUIET)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to svnchurn.toml config file")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "Override working directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output (env: SVNCHURN_NO_COLOR, NO_COLOR)")
}

// Execute runs the root command and returns the process exit code, mapping
// any *errs.Error that surfaces to the code table in spec.md §6/§10.2.
// A plain error (not wrapped with errs.New) exits 1, same as the teacher's
// undifferentiated Execute().
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var kindErr *errs.Error
		if errors.As(err, &kindErr) {
			return kindErr.Kind.ExitCode()
		}
		return 1
	}
	return 0
}

// NewRootCmd returns a new instance of the root command for use in external
// tools such as the shell completion and man page generators. It copies the
// global rootCmd's Use, Short and Long and attaches the same subcommand
// instances (they are not copied; AddCommand re-parents them to the new
// command). The global root's persistent flags and PersistentPreRunE are not
// carried over.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           rootCmd.Use,
		Short:         rootCmd.Short,
		Long:          rootCmd.Long,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// Attach all registered subcommands from the global tree.
	for _, child := range rootCmd.Commands() {
		cmd.AddCommand(child)
	}
	return cmd
}
