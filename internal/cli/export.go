package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/cache"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	mcio "github.com/tyrandev/mindmap-canvas-sub000/pkg/io"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/render/sink"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
)

// =============================================================================
// Renderer
// =============================================================================

// renderer renders trees through the artifact cache.
type renderer struct {
	cache cache.Cache
	keyer cache.Keyer
	cfg   RenderConfig
}

// render returns the artifact for root in format f and whether it came
// from the cache.
func (r *renderer) render(ctx context.Context, root *shape.Shape, f sink.Format) ([]byte, bool, error) {
	tree, err := mcio.Marshal(root)
	if err != nil {
		return nil, false, err
	}
	key := r.keyer.RenderKey(cache.Hash(tree), cache.RenderKeyOpts{
		Format:         string(f),
		Background:     r.cfg.Background,
		ConnectorColor: r.cfg.ConnectorColor,
		Padding:        r.cfg.Padding,
		FontFamily:     r.cfg.FontFamily,
		Scale:          r.cfg.Scale,
	})

	computed := false
	data, err := cache.Fetch(ctx, r.cache, key, cache.DefaultTTL, func() ([]byte, error) {
		computed = true
		return sink.Render(ctx, root, f, r.cfg.renderOptions()...)
	})
	return data, !computed, err
}

// =============================================================================
// Export Command
// =============================================================================

// exportOpts holds the flags of the export command.
type exportOpts struct {
	output  string
	formats string
	noCache bool
	copy    bool
	render  RenderConfig
}

func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export <map>",
		Short: "Render a map to SVG, PNG, PDF, DOT, text or JSON",
		Long: `Render a map in one or more formats. Formats are rendered concurrently and
cached; an unchanged map exports from the cache.

With a single format, --output names the file ("-" writes to stdout). With
several formats, --output is the base path and each format adds its own
extension. The default base path is the map name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.render = c.mergeRenderFlags(cmd, opts.render)
			return c.runExport(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "svg", "output format(s): "+formatList()+" (comma-separated)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "copy the text outline to the clipboard")
	cmd.Flags().StringVar(&opts.render.Background, "background", "", "background color")
	cmd.Flags().Float64Var(&opts.render.Padding, "padding", 0, "margin around the drawing")
	cmd.Flags().Float64Var(&opts.render.Scale, "scale", 0, "PNG scale factor")

	return cmd
}

// mergeRenderFlags layers the flags that were set over the configured
// render settings.
func (c *CLI) mergeRenderFlags(cmd *cobra.Command, flags RenderConfig) RenderConfig {
	cfg := c.Config.Render
	if cmd.Flags().Changed("background") {
		cfg.Background = flags.Background
	}
	if cmd.Flags().Changed("padding") {
		cfg.Padding = flags.Padding
	}
	if cmd.Flags().Changed("scale") {
		cfg.Scale = flags.Scale
	}
	return cfg
}

func (c *CLI) runExport(cmd *cobra.Command, name string, opts exportOpts) error {
	ctx := withMap(cmd.Context(), name)
	logger := loggerFromContext(ctx)

	formats, err := parseFormats(opts.formats)
	if err != nil {
		return err
	}
	toStdout := opts.output == "-"
	if toStdout && len(formats) > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "--output - needs exactly one format")
	}

	ws, err := c.openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	e, _, err := ws.open(ctx, name)
	if err != nil {
		return err
	}
	root := e.Map.Root()

	artifacts, err := newCache(opts.noCache || opts.render.NoCache)
	if err != nil {
		return err
	}
	defer artifacts.Close()
	r := &renderer{cache: artifacts, keyer: cache.NewDefaultKeyer(), cfg: opts.render}

	prog := startStopwatch(logger, "rendering", "formats", len(formats))
	spinner := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Rendering %s...", name))
	if !toStdout {
		spinner.Start()
	}

	type result struct {
		data   []byte
		cached bool
	}
	results := make([]result, len(formats))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		g.Go(func() error {
			data, cached, err := r.render(gctx, root, f)
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
			results[i] = result{data: data, cached: cached}
			return nil
		})
	}
	err = g.Wait()
	spinner.Stop()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if toStdout {
		_, err := out.Write(results[0].data)
		return err
	}

	p := newPrinter(out)
	p.success("Exported %s", StyleHighlight.Render(name))
	for i, f := range formats {
		path := outputPath(opts.output, name, f, len(formats) > 1)
		if err := writeArtifact(path, results[i].data); err != nil {
			return err
		}
		p.file(path, results[i].cached)
	}
	prog.done("exported")

	if opts.copy {
		outline := sink.RenderText(root)
		if err := clipboard.WriteAll(string(outline)); err != nil {
			p.warning("Could not copy to the clipboard: %v", err)
		} else {
			p.info("Outline copied to the clipboard")
		}
	}
	return nil
}

// parseFormats parses a comma-separated format list, dropping duplicates.
func parseFormats(s string) ([]sink.Format, error) {
	if strings.TrimSpace(s) == "" {
		return []sink.Format{sink.FormatSVG}, nil
	}
	var formats []sink.Format
	seen := make(map[sink.Format]bool)
	for _, part := range strings.Split(s, ",") {
		f, err := sink.ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	return formats, nil
}

func formatList() string {
	names := make([]string, len(sink.Formats))
	for i, f := range sink.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// outputPath resolves where format f is written. A single format uses
// output verbatim when given; otherwise output (or the map name) is a base
// path that gets the format's extension.
func outputPath(output, name string, f sink.Format, multi bool) string {
	if output != "" && !multi {
		return output
	}
	base := output
	if base == "" {
		base = name
	}
	return base + "." + f.Extension()
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeStorage, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", path)
	}
	return nil
}
