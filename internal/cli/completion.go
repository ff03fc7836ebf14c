package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// completionCmd generates shell completion scripts for Bash, Zsh, Fish, and
// PowerShell. When run without arguments, it displays installation
// instructions for each supported shell.
var completionCmd = &cobra.Command{
	Use:       "completion [bash|zsh|fish|powershell]",
	Short:     "Generate shell completion scripts",
	Long:      completionLongHelp,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE:      runCompletion,
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

const completionLongHelp = `Generate shell completion scripts for rwx.

To load completions:

Bash:
  $ source <(rwx completion bash)
  $ rwx completion bash > /etc/bash_completion.d/rwx

Zsh:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  $ rwx completion zsh > "${fpath[1]}/_rwx"

Fish:
  $ rwx completion fish > ~/.config/fish/completions/rwx.fish

PowerShell:
  PS> rwx completion powershell | Out-String | Invoke-Expression
  PS> rwx completion powershell >> $PROFILE
`

func runCompletion(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	out := cmd.OutOrStdout()

	switch args[0] {
	case "bash":
		return cmd.Root().GenBashCompletionV2(out, true)
	case "zsh":
		return cmd.Root().GenZshCompletion(out)
	case "fish":
		return cmd.Root().GenFishCompletion(out, true)
	case "powershell":
		return cmd.Root().GenPowerShellCompletionWithDesc(out)
	default:
		return fmt.Errorf("unsupported shell: %s", args[0])
	}
}
