package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/helmdraw/pkg/diagram"
	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/graph"
	"github.com/matzehuels/helmdraw/pkg/observability"
	"github.com/matzehuels/helmdraw/pkg/render/nodelink"
	"github.com/matzehuels/helmdraw/pkg/render/sink"
)

// Render writes d in every requested format. m must be the structure d
// was built from; the DOT export and node-link diagrams read it directly.
func Render(ctx context.Context, m *graph.Manager, d diagram.Drawing, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := render(ctx, m, d, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func render(ctx context.Context, m *graph.Manager, d diagram.Drawing, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch {
		case format == diagram.FormatJSON:
			data, err = diagram.Marshal(d)
		case format == diagram.FormatDOT:
			data = []byte(toDOT(m, opts))
		case opts.IsNodelink():
			data, err = renderNodelink(ctx, m, format, opts)
		default:
			data, err = renderSchematic(ctx, d, format, opts)
		}
		if err != nil {
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeInternal
			}
			return nil, errors.Wrap(code, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func toDOT(m *graph.Manager, opts Options) string {
	return nodelink.ToDOT(m, nodelink.Options{Detailed: opts.Detailed, Engine: opts.Engine})
}

func renderNodelink(ctx context.Context, m *graph.Manager, format string, opts Options) ([]byte, error) {
	dot := toDOT(m, opts)
	switch format {
	case diagram.FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case diagram.FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	case diagram.FormatPNG:
		return nodelink.RenderPNG(ctx, dot, opts.Scale)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported nodelink format: %s", format)
}

func renderSchematic(ctx context.Context, d diagram.Drawing, format string, opts Options) ([]byte, error) {
	style, err := sink.StyleFor(opts.Style)
	if err != nil {
		return nil, err
	}
	svgOpts := []sink.SVGOption{sink.WithStyle(style)}
	if opts.LoopGuides {
		svgOpts = append(svgOpts, sink.WithLoopGuides())
	}
	if opts.Warnings {
		svgOpts = append(svgOpts, sink.WithWarnings())
	}

	switch format {
	case diagram.FormatSVG:
		return sink.RenderSVG(d, svgOpts...), nil
	case diagram.FormatPDF:
		return sink.RenderPDF(ctx, d, svgOpts...)
	case diagram.FormatPNG:
		return sink.RenderPNG(ctx, d, opts.Scale, svgOpts...)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported schematic format: %s", format)
}
