package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/helmdraw/pkg/cache"
	"github.com/matzehuels/helmdraw/pkg/diagram"
	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/layout"
	"github.com/matzehuels/helmdraw/pkg/monomer"
	"github.com/matzehuels/helmdraw/pkg/observability"
	"github.com/matzehuels/helmdraw/pkg/translate"
)

const (
	peptide = "PEPTIDE1{A.G.C}$$$$"
	duplex  = "RNA1{R(A)P.R(C)}|RNA2{R(G)P.R(U)}$$RNA1,RNA2,2:pair-5:pair|RNA1,RNA2,5:pair-2:pair$$"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(&strings.Builder{}, log.Options{Level: log.ErrorLevel})
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateStyleAndViz(t *testing.T) {
	if err := ValidateStyle("outline"); err != nil {
		t.Errorf("outline: %v", err)
	}
	if err := ValidateStyle("handdrawn"); !errors.Is(err, errors.ErrCodeInvalidStyle) {
		t.Errorf("handdrawn: %v", err)
	}
	if err := ValidateVizType("nodelink"); err != nil {
		t.Errorf("nodelink: %v", err)
	}
	if err := ValidateVizType("tower"); err == nil {
		t.Error("tower should be rejected")
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Notation: peptide}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.VizType != VizSchematic || opts.Style != diagram.StyleSimple || opts.Engine != "neato" {
		t.Errorf("render defaults = %q %q %q", opts.VizType, opts.Style, opts.Engine)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != "svg" {
		t.Errorf("Formats = %v", opts.Formats)
	}
	if opts.Spacing != layout.DefaultSpacing || opts.MaxOverlapIterations != layout.DefaultMaxOverlapIterations {
		t.Errorf("layout defaults = %v, %v", opts.Spacing, opts.MaxOverlapIterations)
	}
	if opts.Logger == nil {
		t.Error("Logger not set")
	}

	again := opts
	if err := again.ValidateAndSetDefaults(); err != nil || again.Spacing != opts.Spacing {
		t.Errorf("second call changed options: %v", err)
	}
}

func TestOptionsValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"empty notation", Options{}, errors.ErrCodeInvalidInput},
		{"negative spacing", Options{Notation: peptide, Spacing: -1}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Notation: peptide, Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad style", Options{Notation: peptide, Style: "neon"}, errors.ErrCodeInvalidStyle},
		{"bad engine", Options{Notation: peptide, Engine: "fdp"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	base := Options{Notation: peptide}
	if err := base.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	outline := base
	outline.Style = diagram.StyleOutline
	if base.ArtifactKeyOpts("svg") == outline.ArtifactKeyOpts("svg") {
		t.Error("style should change the svg key")
	}
	if base.ArtifactKeyOpts("json") != outline.ArtifactKeyOpts("json") {
		t.Error("style should not change the json key")
	}
	if base.ArtifactKeyOpts("dot") != outline.ArtifactKeyOpts("dot") {
		t.Error("style should not change the dot key")
	}
	scaled := base
	scaled.Scale = 4
	if base.ArtifactKeyOpts("png") == scaled.ArtifactKeyOpts("png") {
		t.Error("scale should change the png key")
	}
	if base.ArtifactKeyOpts("svg") != scaled.ArtifactKeyOpts("svg") {
		t.Error("scale should not change the svg key")
	}
}

func TestParseCanonical(t *testing.T) {
	m, canonical, err := Parse(context.Background(), monomer.Default(), "RNA1{R(A).P.R(C)}$$$$")
	if err != nil {
		t.Fatal(err)
	}
	if canonical != "RNA1{R(A)P.R(C)}$$$$" {
		t.Errorf("canonical = %q", canonical)
	}
	if got := translate.Serialize(m); got != canonical {
		t.Errorf("manager serializes to %q", got)
	}
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil, quietLogger())
	defer r.Close()

	opts := Options{Notation: peptide, Formats: []string{"svg", "json", "dot"}}
	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run hit the cache: %+v", first.CacheInfo)
	}
	if first.Drawing.Motif != layout.Linear || len(first.Drawing.Nodes) != 3 {
		t.Errorf("drawing = %v with %d nodes", first.Drawing.Motif, len(first.Drawing.Nodes))
	}
	if first.Stats.NodeCount != 3 || first.Stats.ChainCount != 1 {
		t.Errorf("stats = %+v", first.Stats)
	}
	if first.NotationHash != cache.NotationHash(first.Canonical) {
		t.Error("NotationHash does not match Canonical")
	}
	for _, f := range opts.Formats {
		if len(first.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if !strings.HasPrefix(string(first.Artifacts["svg"]), "<svg ") {
		t.Errorf("svg artifact: %.40s", first.Artifacts["svg"])
	}
	if !strings.HasPrefix(string(first.Artifacts["dot"]), "graph G {") {
		t.Errorf("dot artifact: %.40s", first.Artifacts["dot"])
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run missed the cache: %+v", second.CacheInfo)
	}
	if string(second.Artifacts["svg"]) != string(first.Artifacts["svg"]) {
		t.Error("cached svg differs")
	}

	// Equivalent spellings share the layout cache entry.
	if _, err := r.Execute(ctx, Options{Notation: "RNA1{R(A)P.R(C)}$$$$"}); err != nil {
		t.Fatal(err)
	}
	third, err := r.Execute(ctx, Options{Notation: "RNA1{R(A).P.R(C)}$$$$"})
	if err != nil {
		t.Fatal(err)
	}
	if !third.CacheInfo.LayoutHit {
		t.Error("equivalent notation missed the layout cache")
	}

	refreshed := opts
	refreshed.Refresh = true
	fourth, err := r.Execute(ctx, refreshed)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.LayoutHit || fourth.CacheInfo.RenderHit {
		t.Errorf("refresh hit the cache: %+v", fourth.CacheInfo)
	}
}

func TestRunnerErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil, quietLogger())
	tests := []struct {
		name string
		text string
		code errors.Code
	}{
		{"syntax", "PEPTIDE1{A.G$$$$", errors.ErrCodeNotationSyntax},
		{"unknown monomer", "PEPTIDE1{A.[Xyz]}$$$$", errors.ErrCodeUnresolvedMonomer},
		{"empty", "  ", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(context.Background(), Options{Notation: tt.text})
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExecuteAllKeepsOrder(t *testing.T) {
	r := NewRunner(nil, nil, nil, quietLogger())
	inputs := []Options{
		{Notation: peptide, Formats: []string{"json"}},
		{Notation: duplex, Formats: []string{"json"}},
		{Notation: "PEPTIDE1{G}$$$$", Formats: []string{"json"}},
	}
	results, err := r.ExecuteAll(context.Background(), inputs)
	if err != nil {
		t.Fatal(err)
	}
	want := []layout.Motif{layout.Linear, layout.Complementary, layout.Linear}
	for i, res := range results {
		if res.Drawing.Motif != want[i] {
			t.Errorf("result %d motif = %v, want %v", i, res.Drawing.Motif, want[i])
		}
	}
	if len(results[2].Drawing.Nodes) != 1 {
		t.Errorf("result 2 has %d nodes", len(results[2].Drawing.Nodes))
	}

	inputs = append(inputs, Options{Notation: "PEPTIDE1{"})
	if _, err := r.ExecuteAll(context.Background(), inputs); err == nil {
		t.Error("ExecuteAll should report the failing run")
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	mu     sync.Mutex
	hits   map[string]int
	misses map[string]int
}

func (h *countingHooks) OnCacheHit(_ context.Context, k string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits[k]++
}

func (h *countingHooks) OnCacheMiss(_ context.Context, k string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses[k]++
}

func TestRunnerEmitsCacheHooks(t *testing.T) {
	h := &countingHooks{hits: map[string]int{}, misses: map[string]int{}}
	observability.SetCacheHooks(h)
	defer observability.Reset()

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil, quietLogger())
	opts := Options{Notation: peptide, Formats: []string{"json"}}
	for range 2 {
		if _, err := r.Execute(context.Background(), opts); err != nil {
			t.Fatal(err)
		}
	}
	if h.misses["layout"] != 1 || h.hits["layout"] != 1 {
		t.Errorf("layout hits/misses = %d/%d", h.hits["layout"], h.misses["layout"])
	}
	if h.misses["artifact"] != 1 || h.hits["artifact"] != 1 {
		t.Errorf("artifact hits/misses = %d/%d", h.hits["artifact"], h.misses["artifact"])
	}
}

func TestRenderNodelinkSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	r := NewRunner(nil, nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), Options{Notation: peptide, VizType: VizNodelink})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(res.Artifacts["svg"]), "<svg") {
		t.Errorf("nodelink svg: %.60s", res.Artifacts["svg"])
	}
}
