package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/videofonik/vfconsole/pkg/api"
	vferrors "github.com/videofonik/vfconsole/pkg/errors"
)

// embedCommand creates the embed command with subcommands.
func (c *CLI) embedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Show the embed snippet and manage allowed domains",
		Long: `Show the HTML snippet that embeds a project on a website, and manage
the domains allowed to host it. Domains are bare hosts such as example.com or
localhost:3000.`,
	}

	cmd.AddCommand(c.withProjectCompletion(c.embedShowCommand()))
	cmd.AddCommand(c.withProjectCompletion(c.embedAddDomainCommand()))
	cmd.AddCommand(c.withProjectCompletion(c.embedRemoveDomainCommand()))

	return cmd
}

func (c *CLI) embedShowCommand() *cobra.Command {
	var codeOnly bool

	cmd := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Print the embed snippet and allowed domains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.newClient()
			if err != nil {
				return err
			}
			info, err := spin(cmd.Context(), "Loading embed settings...", func(ctx context.Context) (*api.EmbedInfo, error) {
				return client.GetEmbedCode(ctx, args[0])
			})
			if err != nil {
				return explain(err)
			}

			if codeOnly {
				fmt.Println(info.EmbedCode)
				return nil
			}
			fmt.Println(StyleTitle.Render("Embed code"))
			fmt.Println(StyleValue.Render(info.EmbedCode))
			printNewline()
			printDomains(info.AllowedDomains)
			return nil
		},
	}

	cmd.Flags().BoolVar(&codeOnly, "code", false, "print only the snippet")
	return cmd
}

func printDomains(domains []string) {
	fmt.Println(StyleTitle.Render("Allowed domains"))
	if len(domains) == 0 {
		printDetail("none: the widget can be embedded anywhere")
		return
	}
	for _, d := range domains {
		fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(d))
	}
}

func (c *CLI) embedAddDomainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add-domain <project-id> <domain>",
		Short: "Allow a domain to embed the project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.changeDomain(cmd.Context(), args[0], args[1], true)
		},
	}
}

func (c *CLI) embedRemoveDomainCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove-domain <project-id> <domain>",
		Aliases: []string{"rm-domain"},
		Short:   "Stop allowing a domain to embed the project",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.changeDomain(cmd.Context(), args[0], args[1], false)
		},
	}
}

// changeDomain adds or removes an allowed domain and prints the new list.
func (c *CLI) changeDomain(ctx context.Context, projectID, domain string, add bool) error {
	domain = strings.TrimSpace(domain)
	if err := vferrors.ValidateDomain(domain); err != nil {
		return err
	}
	client, err := c.newClient()
	if err != nil {
		return err
	}

	msg, change := "Removing "+domain+"...", client.RemoveAllowedDomain
	if add {
		msg, change = "Adding "+domain+"...", client.AddAllowedDomain
	}
	info, err := spin(ctx, msg, func(ctx context.Context) (*api.EmbedInfo, error) {
		if err := change(ctx, projectID, domain); err != nil {
			return nil, err
		}
		return client.GetEmbedCode(ctx, projectID)
	})
	if err != nil {
		return explain(err)
	}

	if add {
		printSuccess("Allowed %s", StyleHighlight.Render(domain))
	} else {
		printSuccess("Removed %s", StyleHighlight.Render(domain))
	}
	printDomains(info.AllowedDomains)
	return nil
}
