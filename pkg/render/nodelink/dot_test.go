package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/helmdraw/pkg/monomer"
	"github.com/matzehuels/helmdraw/pkg/translate"
)

func TestToDOT(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		opts     Options
		contains []string
		edges    int
	}{
		{
			name:     "peptide",
			text:     "PEPTIDE1{A.G.C}$$$$",
			contains: []string{"layout=neato;", `subgraph "cluster_PEPTIDE1"`, `[label="G"]`},
			edges:    2,
		},
		{
			name:     "detailed duplex",
			text:     "RNA1{R(A)P.R(C)}|RNA2{R(G)P.R(U)}$$RNA1,RNA2,2:pair-5:pair$$",
			opts:     Options{Detailed: true, Engine: EngineDot},
			contains: []string{"layout=dot;", `"A\nRNA1:2\nbase"`, "shape=doublecircle", "style=dashed"},
			edges:    9,
		},
		{
			name:     "modifier link",
			text:     "PEPTIDE1{A.G}|CHEM1{[Biotin]}$PEPTIDE1,CHEM1,2:R2-1:R1$$$",
			contains: []string{`subgraph "cluster_CHEM1"`, `style=dotted`},
			edges:    2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := translate.Parse(tt.text, monomer.Default())
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			dot := ToDOT(m, tt.opts)
			for _, want := range tt.contains {
				if !strings.Contains(dot, want) {
					t.Errorf("DOT missing %q:\n%s", want, dot)
				}
			}
			if got := strings.Count(dot, " -- "); got != tt.edges {
				t.Errorf("edges = %d, want %d", got, tt.edges)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	m, err := translate.Parse("PEPTIDE1{A.G.C}$$$$", monomer.Default())
	if err != nil {
		t.Fatal(err)
	}
	svg, err := RenderSVG(context.Background(), ToDOT(m, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Errorf("svg header not normalized:\n%.300s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := `<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`
	got := string(normalizeViewBox([]byte(in)))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 44.00" width="62" height="44"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() =\n%s\nwant\n%s", got, want)
	}
	if out := normalizeViewBox([]byte("<svg/>")); string(out) != "<svg/>" {
		t.Errorf("svg without viewBox changed: %s", out)
	}
}
