package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/helmdraw/pkg/diagram"
	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/layout"
	"github.com/matzehuels/helmdraw/pkg/monomer"
	"github.com/matzehuels/helmdraw/pkg/translate"
)

func drawing(t *testing.T, text string) diagram.Drawing {
	t.Helper()
	m, err := translate.Parse(text, monomer.Default())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res, err := layout.Layout(m, layout.Options{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	return diagram.Build(m, res)
}

func TestRenderSVG(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		opts     []SVGOption
		contains []string
		circles  int
	}{
		{
			name:     "peptide",
			text:     "PEPTIDE1{A.G.C}$$$$",
			contains: []string{`viewBox="0 0 184.0 104.0"`, `>N</text>`, `<title>PEPTIDE1:2</title>`},
			circles:  3,
		},
		{
			name:     "duplex pairs are dashed",
			text:     "RNA1{R(A)P.R(C)}|RNA2{R(G)P.R(U)}$$RNA1,RNA2,2:pair-5:pair|RNA1,RNA2,5:pair-2:pair$$",
			contains: []string{`class="edge pair"`, `stroke-dasharray="4 3"`, `>5&#39;</text>`},
			circles:  10,
		},
		{
			name:     "loop guides",
			text:     "RNA1{R(G)P.R(C)P.R(A)P.R(A)P.R(A)P.R(A)P.R(G)P.R(C)}$$RNA1,RNA1,2:pair-23:pair|RNA1,RNA1,5:pair-20:pair$$",
			opts:     []SVGOption{WithLoopGuides()},
			contains: []string{`class="loop"`},
			circles:  23 + 1,
		},
		{
			name:     "warnings listed",
			text:     "RNA1{R(A)P.R(C)P.R(U)P.R(G)}$$RNA1,RNA1,2:pair-8:pair|RNA1,RNA1,5:pair-11:pair$$",
			opts:     []SVGOption{WithWarnings(), WithStyle(Outline{})},
			contains: []string{"LAYOUT_UNSUPPORTED_MOTIF", `stroke="black"`},
			circles:  11,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svg := string(RenderSVG(drawing(t, tt.text), tt.opts...))
			if !strings.HasPrefix(svg, "<svg ") || !strings.HasSuffix(svg, "</svg>\n") {
				t.Fatalf("not an svg document:\n%s", svg)
			}
			for _, want := range tt.contains {
				if !strings.Contains(svg, want) {
					t.Errorf("missing %q", want)
				}
			}
			if got := strings.Count(svg, "<circle"); got != tt.circles {
				t.Errorf("circles = %d, want %d", got, tt.circles)
			}
		})
	}
}

func TestStyleFor(t *testing.T) {
	tests := []struct {
		name string
		want Style
		code errors.Code
	}{
		{"", Simple{}, ""},
		{diagram.StyleSimple, Simple{}, ""},
		{diagram.StyleOutline, Outline{}, ""},
		{"handdrawn", nil, errors.ErrCodeInvalidStyle},
	}
	for _, tt := range tests {
		got, err := StyleFor(tt.name)
		if tt.code != "" {
			if !errors.Is(err, tt.code) {
				t.Errorf("StyleFor(%q) err = %v, want %s", tt.name, err, tt.code)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("StyleFor(%q) = %v, %v", tt.name, got, err)
		}
	}
}

func TestFontSizeShrinksLongSymbols(t *testing.T) {
	short := fontSize(Node{Symbol: "A", R: defaultRadius})
	long := fontSize(Node{Symbol: "Biotin", R: defaultRadius})
	if short != fontSizeMax || long >= short || long < fontSizeMin {
		t.Errorf("fontSize: short %v, long %v", short, long)
	}
}

func TestEscapeXML(t *testing.T) {
	var buf bytes.Buffer
	Simple{}.RenderLabel(&buf, Label{Text: `<3'>`, Anchor: "start"})
	if !strings.Contains(buf.String(), "&lt;3&#39;&gt;") {
		t.Errorf("label not escaped: %s", buf.String())
	}
}
