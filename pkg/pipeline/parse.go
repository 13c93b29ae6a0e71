package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/helmdraw/pkg/graph"
	"github.com/matzehuels/helmdraw/pkg/monomer"
	"github.com/matzehuels/helmdraw/pkg/observability"
	"github.com/matzehuels/helmdraw/pkg/translate"
)

// Parse resolves notation text against db and returns the structure built
// from its canonical form, together with that form.
//
// Parsing the canonical text rather than the input gives every equivalent
// input the same node handles, which cached drawings rely on.
func Parse(ctx context.Context, db monomer.Database, text string) (*graph.Manager, string, error) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, len(text))
	start := time.Now()

	m, canonical, err := parseCanonical(db, text)
	nodes := 0
	if m != nil {
		nodes = m.Graph().NodeCount()
	}
	hooks.OnParseComplete(ctx, nodes, time.Since(start), err)
	return m, canonical, err
}

func parseCanonical(db monomer.Database, text string) (*graph.Manager, string, error) {
	canonical, err := translate.Canonical(text, db)
	if err != nil {
		return nil, "", err
	}
	m, err := translate.Parse(canonical, db)
	if err != nil {
		return nil, "", err
	}
	return m, canonical, nil
}
