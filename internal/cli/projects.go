package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/videofonik/vfconsole/pkg/api"
	vferrors "github.com/videofonik/vfconsole/pkg/errors"
	"github.com/videofonik/vfconsole/pkg/graph"
	"github.com/videofonik/vfconsole/pkg/pipeline"
	"github.com/videofonik/vfconsole/pkg/tree"
)

// projectsCommand creates the projects command with subcommands.
func (c *CLI) projectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "Manage interactive video projects",
	}

	cmd.AddCommand(c.projectsListCommand())
	cmd.AddCommand(c.projectsCreateCommand())
	cmd.AddCommand(c.withProjectCompletion(c.projectsDeleteCommand()))
	cmd.AddCommand(c.withProjectCompletion(c.projectsShowCommand()))

	return cmd
}

func (c *CLI) projectsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.newClient()
			if err != nil {
				return err
			}
			projects, err := spin(cmd.Context(), "Loading projects...", func(ctx context.Context) ([]*tree.Project, error) {
				return client.ListProjects(ctx)
			})
			if err != nil {
				return explain(err)
			}
			if len(projects) == 0 {
				printInfo("No projects yet")
				printNextStep("Create one", appName+" projects create <name> --video intro.mp4")
				return nil
			}
			fmt.Println(projectTable(projects))
			return nil
		},
	}
}

// projectTable renders the project listing.
func projectTable(projects []*tree.Project) string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		nodes := 0
		if root := p.Root(); root != nil {
			nodes = root.Count()
		}
		rows = append(rows, []string{
			p.ID,
			p.Name,
			fmt.Sprintf("%d", nodes),
			fmt.Sprintf("%d", len(p.AllowedDomains)),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Nodes", "Domains").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 0:
				return StyleDim
			case col == 1:
				return StyleValue
			default:
				return StyleNumber
			}
		})
	return t.Render()
}

func (c *CLI) projectsCreateCommand() *cobra.Command {
	var videoPath string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project from a main video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if err := vferrors.ValidateProjectName(name); err != nil {
				return err
			}
			video, f, err := openVideo(videoPath)
			if err != nil {
				return err
			}
			defer f.Close()

			client, err := c.newClient()
			if err != nil {
				return err
			}
			p, err := spin(cmd.Context(), "Uploading "+video.Filename+"...", func(ctx context.Context) (*tree.Project, error) {
				return client.CreateProject(ctx, name, video)
			})
			if err != nil {
				return explain(err)
			}

			printSuccess("Created project %s", StyleHighlight.Render(p.Name))
			printKeyValue("ID", p.ID)
			if p.MainVideoURL != "" {
				printKeyValue("Video", StyleLink.Render(p.MainVideoURL))
			}
			printNextStep("Add the first question", appName+" open "+p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&videoPath, "video", "", "main video file (required)")
	_ = cmd.MarkFlagRequired("video")
	return cmd
}

// openVideo validates and opens a video file for upload. The caller closes
// the returned file once the upload is done.
func openVideo(path string) (*api.Upload, *os.File, error) {
	name := filepath.Base(path)
	if err := vferrors.ValidateVideoFile(name, ""); err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open video: %w", err)
	}
	return &api.Upload{
		Filename:    name,
		ContentType: vferrors.VideoContentType(name),
		Body:        f,
	}, f, nil
}

func (c *CLI) projectsDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project and all of its videos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.newClient()
			if err != nil {
				return err
			}

			p, err := client.GetProject(ctx, args[0])
			if err != nil {
				return explain(err)
			}
			if !yes {
				vals, err := prompt(ctx, fmt.Sprintf("Delete %q? This cannot be undone.", p.Name),
					formField{Label: "Type the project name to confirm"})
				if err != nil {
					return err
				}
				if strings.TrimSpace(vals[0]) != p.Name {
					printWarning("Name did not match, nothing deleted")
					return nil
				}
			}

			if _, err := spin(ctx, "Deleting...", func(ctx context.Context) (struct{}, error) {
				return struct{}{}, client.DeleteProject(ctx, p.ID)
			}); err != nil {
				return explain(err)
			}
			printSuccess("Deleted project %s", p.Name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (c *CLI) projectsShowCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project and its question/answer tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.newClient()
			if err != nil {
				return err
			}
			p, err := spin(cmd.Context(), "Loading project...", func(ctx context.Context) (*tree.Project, error) {
				return client.GetProject(ctx, args[0])
			})
			if err != nil {
				return explain(err)
			}

			if output != "" {
				if err := tree.WriteFile(p, output); err != nil {
					return fmt.Errorf("write project: %w", err)
				}
				printSuccess("Saved project %s", p.Name)
				printFile(output)
				return nil
			}

			printSuccess("%s", StyleTitle.Render(p.Name))
			printKeyValue("ID", p.ID)
			if p.MainVideoURL != "" {
				printKeyValue("Video", StyleLink.Render(p.MainVideoURL))
			}
			if len(p.AllowedDomains) > 0 {
				printKeyValue("Domains", strings.Join(p.AllowedDomains, ", "))
			}

			l, err := c.computeLayout(p)
			if err != nil {
				return err
			}
			printNewline()
			printTree(l)
			printStats(len(l.Nodes), len(l.Edges), false)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "save the project JSON instead of printing it")
	return cmd
}

// computeLayout lays out a project with the configured spacing.
func (c *CLI) computeLayout(p *tree.Project) (graph.Layout, error) {
	return pipeline.ComputeLayout(p, c.pipelineOptions())
}
