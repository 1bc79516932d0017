package sink

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/fonts"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/observability"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/render"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
)

// Format names an output format.
type Format string

// Supported formats.
const (
	FormatSVG      Format = "svg"
	FormatPNG      Format = "png"
	FormatPDF      Format = "pdf"
	FormatDOT      Format = "dot"
	FormatGraphviz Format = "graphviz"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// Formats lists every supported format in display order.
var Formats = []Format{FormatSVG, FormatPNG, FormatPDF, FormatDOT, FormatGraphviz, FormatText, FormatJSON}

// ParseFormat resolves a format name, accepting "text" for txt.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "text" {
		name = string(FormatText)
	}
	f := Format(name)
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", s)
	}
	return f, nil
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	if f == FormatGraphviz {
		return "graphviz.svg"
	}
	return string(f)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG, FormatGraphviz:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

// =============================================================================
// Options
// =============================================================================

// DefaultConnectorColor is the stroke of parent/child lines.
const DefaultConnectorColor = "#555555"

// Options configure every sink. Each sink reads the fields it needs.
type Options struct {
	Background     string
	ConnectorColor string
	FontFamily     string
	Padding        float64
	Scale          float64
	ShowIDs        bool
}

// Option sets a field of Options.
type Option func(*Options)

// WithBackground fills the drawing area. SVG output is transparent and PNG
// output white when unset.
func WithBackground(c string) Option { return func(o *Options) { o.Background = c } }

// WithConnectorColor sets the stroke of connector lines.
func WithConnectorColor(c string) Option { return func(o *Options) { o.ConnectorColor = c } }

// WithFontFamily sets the CSS font family of SVG labels.
func WithFontFamily(f string) Option { return func(o *Options) { o.FontFamily = f } }

// WithPadding sets the margin [Render] adds around the drawing.
func WithPadding(p float64) Option { return func(o *Options) { o.Padding = p } }

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) Option { return func(o *Options) { o.Scale = s } }

// WithIDs appends shape ids to text outline entries.
func WithIDs() Option { return func(o *Options) { o.ShowIDs = true } }

func newOptions(opts ...Option) Options {
	o := Options{
		ConnectorColor: DefaultConnectorColor,
		FontFamily:     fonts.FallbackFontFamily,
		Padding:        render.DefaultPadding,
		Scale:          2.0,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Scale <= 0 {
		o.Scale = 1
	}
	return o
}

// =============================================================================
// Dispatch
// =============================================================================

// Render writes the tree rooted at root in format f.
func Render(ctx context.Context, root *shape.Shape, f Format, opts ...Option) ([]byte, error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to render")
	}
	hooks := observability.Render()
	hooks.OnRenderStart(ctx, string(f), 1+root.Descendants())
	start := time.Now()

	out, err := dispatch(ctx, root, f, opts)

	hooks.OnRenderComplete(ctx, string(f), len(out), time.Since(start), err)
	return out, err
}

func dispatch(ctx context.Context, root *shape.Shape, f Format, opts []Option) ([]byte, error) {
	switch f {
	case FormatText:
		return RenderText(root, opts...), nil
	case FormatDOT:
		return []byte(ToDOT(root, opts...)), nil
	case FormatGraphviz:
		return RenderGraphviz(ctx, ToDOT(root, opts...))
	}

	o := newOptions(opts...)
	scene, err := render.Extract(root, o.Padding)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "extract scene")
	}
	switch f {
	case FormatSVG:
		return RenderSVG(scene, opts...), nil
	case FormatPNG:
		return RenderPNG(scene, opts...)
	case FormatPDF:
		return RenderPDF(scene, opts...)
	case FormatJSON:
		return RenderJSON(scene)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
}
