package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/helmdraw/pkg/diagram"
	"github.com/matzehuels/helmdraw/pkg/graph"
	"github.com/matzehuels/helmdraw/pkg/layout"
	"github.com/matzehuels/helmdraw/pkg/observability"
)

// GenerateLayout lays out m and converts the result to a drawing. Layout
// warnings are logged on opts.Logger and kept in the drawing.
//
// The manager's graph receives the computed coordinates.
func GenerateLayout(ctx context.Context, m *graph.Manager, opts Options) (diagram.Drawing, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return diagram.Drawing{}, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, m.Graph().NodeCount())
	start := time.Now()

	res, err := layout.Layout(m, opts.LayoutOptions())
	if err != nil {
		hooks.OnLayoutComplete(ctx, "", time.Since(start), err)
		return diagram.Drawing{}, err
	}
	hooks.OnLayoutComplete(ctx, res.Motif.String(), time.Since(start), nil)

	for _, w := range res.Warnings {
		opts.Logger.Warn("layout", "code", w.Code, "msg", w.Message)
	}
	return diagram.Build(m, res), nil
}
