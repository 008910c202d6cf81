package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/snhsdiag/pkg/errors"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// completionCommand creates the completion command. Without an argument the
// shell is taken from $SHELL.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for snhsdiag. Diagram names and aliases
complete after render, source, inspect and export.

  $ source <(snhsdiag completion bash)
  $ snhsdiag completion zsh > "${fpath[1]}/_snhsdiag"
  $ snhsdiag completion fish > ~/.config/fish/completions/snhsdiag.fish
  PS> snhsdiag completion powershell | Out-String | Invoke-Expression

With no argument the shell is detected from $SHELL.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := detectShell(os.Getenv("SHELL"))
			if len(args) == 1 {
				shell = args[0]
			}
			out := cmd.OutOrStdout()
			switch shell {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return errs.New(errs.ErrCodeInvalidInput, "cannot detect shell from $SHELL; pass one of bash, zsh, fish, powershell")
		},
	}
}

// detectShell maps a login shell path such as /bin/zsh to a completion
// shell name, or "" when unsupported.
func detectShell(path string) string {
	switch name := filepath.Base(path); name {
	case "bash", "zsh", "fish":
		return name
	case "pwsh", "powershell", "pwsh.exe", "powershell.exe":
		return "powershell"
	}
	return ""
}
