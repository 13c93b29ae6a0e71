package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/helmdraw/pkg/graph"
	"github.com/matzehuels/helmdraw/pkg/render"
	"github.com/matzehuels/helmdraw/pkg/translate"
)

// Graphviz layout engines accepted in [Options].
const (
	EngineDot   = "dot"
	EngineNeato = "neato"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the canonical reference and monomer kind to each label.
	// When false, only the symbol is shown.
	Detailed bool
	// Engine is the Graphviz layout engine; empty means neato.
	Engine string
}

// ToDOT converts the monomer graph of m to an undirected Graphviz graph,
// one cluster per chain in starting-node order. Backbone bonds are bold,
// base pairs dashed and modifier links dotted.
func ToDOT(m *graph.Manager, opts Options) string {
	g := m.Graph()
	engine := opts.Engine
	if engine == "" {
		engine = EngineNeato
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  layout=%s;\n", engine)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12, fixedsize=true, width=0.4];\n")
	buf.WriteString("\n")

	positions := translate.Positions(m)
	for _, s := range m.Starts() {
		ref, _ := translate.Ref(m, s.Node)
		id, _, _ := strings.Cut(ref, ":")
		fmt.Fprintf(&buf, "  subgraph %q {\n", "cluster_"+id)
		fmt.Fprintf(&buf, "    label=%q;\n", id)
		for i, n := range positions[id] {
			node, _ := g.Node(n)
			label := node.Symbol
			if opts.Detailed {
				label = fmt.Sprintf("%s\n%s:%d\n%s", node.Symbol, id, i+1, node.Kind)
			}
			attrs := []string{fmt.Sprintf("label=%q", label)}
			if node.Role == graph.Branch {
				attrs = append(attrs, "shape=doublecircle")
			}
			fmt.Fprintf(&buf, "    n%d [%s];\n", n, strings.Join(attrs, ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, id := range g.Edges() {
		e, _ := g.Edge(id)
		fmt.Fprintf(&buf, "  n%d -- n%d [%s];\n", e.Src, e.Tgt, edgeAttrs(e))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func edgeAttrs(e *graph.Edge) string {
	switch e.Kind {
	case graph.Regular:
		return fmt.Sprintf("penwidth=2, tooltip=%q", string(e.SrcPort)+"-"+string(e.TgtPort))
	case graph.Pair:
		return "style=dashed, color=grey40"
	case graph.Chem:
		return fmt.Sprintf("style=dotted, tooltip=%q", string(e.SrcPort)+"-"+string(e.TgtPort))
	}
	return fmt.Sprintf("tooltip=%q", string(e.SrcPort)+"-"+string(e.TgtPort))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-sized svg header with one
// whose viewBox starts at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion at the given
// scale.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
