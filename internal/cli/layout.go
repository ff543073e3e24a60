package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/videofonik/vfconsole/pkg/graph"
	"github.com/videofonik/vfconsole/pkg/pipeline"
	"github.com/videofonik/vfconsole/pkg/tree"
)

const layoutSuffix = ".layout.json"

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		hs, vs  float64
	)

	cmd := &cobra.Command{
		Use:   "layout <project-id | project.json>",
		Short: "Compute the positioned graph of a project",
		Long: `Compute the positioned graph of a project's question/answer tree.

The source is a project id, fetched from the backend, or a project file saved
with 'projects show -o'. The output is a layout.json file (same format as
'render -f json') that 'render' turns into a diagram.

Layouts are cached by tree content and spacing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			if hs > 0 {
				opts.HorizontalSpacing = hs
			}
			if vs > 0 {
				opts.VerticalSpacing = vs
			}
			opts.Refresh = refresh
			return c.runLayout(cmd.Context(), args[0], output, noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <source>"+layoutSuffix+")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().Float64Var(&hs, "horizontal-spacing", 0, "distance between tree levels (default from config)")
	cmd.Flags().Float64Var(&vs, "vertical-spacing", 0, "distance between rows (default from config)")

	return cmd
}

// runLayout loads the project, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, source, output string, noCache bool, opts pipeline.Options) error {
	runner, err := c.sourceRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	p, err := c.loadProject(ctx, runner, source)
	if err != nil {
		return err
	}

	prog := newProgress(loggerFromContext(ctx))
	l, _, hit, err := runner.LayoutWithCacheInfo(ctx, p, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	c.Logger.Debug("layout computed", "project", p.ID, "nodes", len(l.Nodes), "cached", hit)

	outputPath := output
	if outputPath == "" {
		outputPath = sourceBase(source) + layoutSuffix
	}
	if err := graph.WriteLayoutFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	prog.done("Layout written")

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(l.Nodes), len(l.Edges), hit)
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)
	return nil
}

// =============================================================================
// Sources
// =============================================================================

// sourceRunner creates a runner that fetches with the user's credentials.
func (c *CLI) sourceRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	client, err := c.newClient()
	if err != nil {
		return nil, err
	}
	return c.newRunner(ctx, client, noCache)
}

// isFile reports whether source names an existing file rather than a
// project id.
func isFile(source string) bool {
	info, err := os.Stat(source)
	return err == nil && !info.IsDir()
}

// loadProject reads a project file, or fetches the project with the given id.
func (c *CLI) loadProject(ctx context.Context, runner *pipeline.Runner, source string) (*tree.Project, error) {
	if isFile(source) {
		p, err := tree.ReadFile(source)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("loaded project file", "path", source, "project", p.ID)
		return p, nil
	}
	p, err := spin(ctx, "Fetching project...", func(ctx context.Context) (*tree.Project, error) {
		return runner.Fetch(ctx, source)
	})
	if err != nil {
		return nil, explain(err)
	}
	return p, nil
}

// sourceBase strips the extension of a file source; project ids are used
// as they are.
func sourceBase(source string) string {
	if !isFile(source) {
		return source
	}
	if strings.HasSuffix(source, layoutSuffix) {
		return strings.TrimSuffix(source, layoutSuffix)
	}
	return strings.TrimSuffix(source, filepath.Ext(source))
}
