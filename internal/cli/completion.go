package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for vfconsole.

Bash:
  $ source <(vfconsole completion bash)

Zsh:
  $ vfconsole completion zsh > "${fpath[1]}/_vfconsole"

Fish:
  $ vfconsole completion fish > ~/.config/fish/completions/vfconsole.fish

PowerShell:
  PS> vfconsole completion powershell | Out-String | Invoke-Expression

Project ids complete from your project list when you are signed in.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			}
			return nil
		},
	}
}

// completeProjectIDs completes the first argument with the user's project
// ids, described by project name.
func (c *CLI) completeProjectIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if c.Config == nil {
		if err := c.loadConfig(); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
	}
	client, err := c.newClient()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	projects, err := client.ListProjects(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID+"\t"+p.Name)
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// withProjectCompletion attaches project id completion to cmd.
func (c *CLI) withProjectCompletion(cmd *cobra.Command) *cobra.Command {
	cmd.ValidArgsFunction = c.completeProjectIDs
	return cmd
}
