package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// completionCmd generates shell completion scripts for svnchurn.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for svnchurn.

To install completions:

  Bash (Linux):
    svnchurn completion bash | sudo tee /etc/bash_completion.d/svnchurn > /dev/null

  Bash (macOS with Homebrew):
    svnchurn completion bash > $(brew --prefix)/etc/bash_completion.d/svnchurn

  Zsh:
    svnchurn completion zsh > "${fpath[1]}/_svnchurn"
    # or
    svnchurn completion zsh > ~/.zsh/completions/_svnchurn

  Fish:
    svnchurn completion fish > ~/.config/fish/completions/svnchurn.fish

  PowerShell:
    svnchurn completion powershell > svnchurn.ps1
    # Then add ". svnchurn.ps1" to your PowerShell profile`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(os.Stdout, true)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
