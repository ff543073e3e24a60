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
	"github.com/videofonik/vfconsole/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output file (single format) or base path (multiple)
	formats  string  // comma-separated output formats
	detailed bool    // media references and commands in node labels
	scale    float64 // PNG resolution multiplier
	noCache  bool
	refresh  bool
}

// renderCommand creates the render command for generating diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{scale: pipeline.DefaultPNGScale}

	cmd := &cobra.Command{
		Use:   "render <project-id | project.json | layout.json>",
		Short: "Render a project's question/answer tree as a diagram",
		Long: `Render a project's question/answer tree as a diagram.

The source is a project id, a project file saved with 'projects show -o', or a
layout file written by 'layout'. Nodes are drawn at their computed positions;
PDF and PNG output need rsvg-convert (librsvg).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseRenderFormats(opts.formats)
			if err != nil {
				return err
			}
			for _, f := range formats {
				if f.NeedsRSVG() && !render.RSVGAvailable() {
					return fmt.Errorf("%s output needs rsvg-convert: brew install librsvg (macOS), apt install librsvg2-bin (Linux)", f)
				}
			}

			popts := c.pipelineOptions()
			popts.Formats = formats
			popts.Detailed = opts.detailed
			popts.PNGScale = opts.scale
			popts.Refresh = opts.refresh
			return c.runRender(cmd.Context(), args[0], popts, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), json, dot, pdf, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show videos and available actions in node labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG resolution multiplier")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if cached")

	return cmd
}

// parseRenderFormats parses the --format flag.
func parseRenderFormats(s string) ([]render.Format, error) {
	var out []render.Format
	for _, name := range parseFormats(s) {
		f, err := render.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// runRender renders source to every requested format and writes the files.
func (c *CLI) runRender(ctx context.Context, source string, popts pipeline.Options, opts *renderOpts) error {
	runner, err := c.sourceRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var (
		artifacts map[render.Format][]byte
		l         graph.Layout
		cached    bool
	)
	if isFile(source) && strings.HasSuffix(source, layoutSuffix) {
		if l, err = graph.ReadLayoutFile(source); err != nil {
			return err
		}
		artifacts, cached, err = runner.RenderWithCacheInfo(ctx, l, popts)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
	} else {
		p, err := c.loadProject(ctx, runner, source)
		if err != nil {
			return err
		}
		popts.Project = p
		res, err := spin(ctx, "Rendering...", func(ctx context.Context) (*pipeline.Result, error) {
			return runner.Execute(ctx, popts)
		})
		if err != nil {
			return err
		}
		artifacts, l, cached = res.Artifacts, res.Layout, res.CacheInfo.RenderHit
	}

	base := basePath(opts.output, sourceBase(source))
	for _, f := range popts.Formats {
		path := base + f.Ext()
		if len(popts.Formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := writeOutput(path, artifacts[f]); err != nil {
			return err
		}
		loggerFromContext(ctx).Debug("wrote artifact", "format", f, "bytes", len(artifacts[f]))
	}

	printSuccess("Rendered %s", StyleHighlight.Render(renderTitle(l, source)))
	for _, f := range popts.Formats {
		if len(popts.Formats) == 1 && opts.output != "" {
			printFile(opts.output)
		} else {
			printFile(base + f.Ext())
		}
	}
	printStats(len(l.Nodes), len(l.Edges), cached)
	return nil
}

func renderTitle(l graph.Layout, source string) string {
	if l.ProjectName != "" {
		return l.ProjectName
	}
	return filepath.Base(source)
}

// basePath derives the base output path. A known format extension on output
// is stripped so "-o tree.svg -f svg,png" writes tree.svg and tree.png.
func basePath(output, fallback string) string {
	if output == "" {
		return fallback
	}
	ext := filepath.Ext(output)
	if _, err := render.ParseFormat(strings.TrimPrefix(ext, ".")); err == nil && ext != "" {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
