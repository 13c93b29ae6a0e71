// Package pipeline provides the parse → layout → render pipeline shared by
// the CLI and the HTTP API.
//
// # Stages
//
//  1. Parse: resolve notation text against the monomer database
//  2. Layout: classify the motif and compute a [diagram.Drawing]
//  3. Render: write the drawing as JSON, SVG, DOT, PDF or PNG
//
// Each stage can be run on its own or through a [Runner], which adds
// caching keyed by the canonical notation, stage timings and logging.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, monomer.Default(), logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Notation: "RNA1{R(A)P.R(C)P.R(G)}$$$$",
//	    Formats:  []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
//
// [diagram.Drawing]: github.com/matzehuels/helmdraw/pkg/diagram.Drawing
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/helmdraw/pkg/cache"
	"github.com/matzehuels/helmdraw/pkg/diagram"
	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/graph"
	"github.com/matzehuels/helmdraw/pkg/layout"
	"github.com/matzehuels/helmdraw/pkg/render/nodelink"
)

// Visualization types.
const (
	VizSchematic = "schematic"
	VizNodelink  = "nodelink"
)

const (
	DefaultVizType = VizSchematic
	DefaultStyle   = diagram.StyleSimple
	DefaultScale   = 2.0
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	diagram.FormatJSON: true,
	diagram.FormatSVG:  true,
	diagram.FormatDOT:  true,
	diagram.FormatPDF:  true,
	diagram.FormatPNG:  true,
}

// ValidStyles is the set of supported schematic styles.
var ValidStyles = map[string]bool{
	diagram.StyleSimple:  true,
	diagram.StyleOutline: true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizSchematic: true,
	VizNodelink:  true,
}

// Options contains all configuration for one pipeline run. The JSON form is
// the body of the API's layout request.
type Options struct {
	Notation string `json:"notation" validate:"required"`

	// Layout geometry; zero takes the layout package defaults.
	Spacing              float64 `json:"spacing,omitempty" validate:"gte=0"`
	BranchOffset         float64 `json:"branch_offset,omitempty" validate:"gte=0"`
	StrandGap            float64 `json:"strand_gap,omitempty" validate:"gte=0"`
	RowGap               float64 `json:"row_gap,omitempty" validate:"gte=0"`
	DockOffset           float64 `json:"dock_offset,omitempty" validate:"gte=0"`
	MaxOverlapIterations int     `json:"max_overlap_iterations,omitempty" validate:"gte=0,lte=10000"`

	// Render options. Scale applies to PNG only; LoopGuides to schematic
	// drawings; Engine and Detailed to node-link diagrams. Warnings lists
	// the layout warnings under a schematic drawing.
	VizType    string   `json:"viz_type,omitempty" validate:"omitempty,oneof=schematic nodelink"`
	Formats    []string `json:"formats,omitempty" validate:"dive,oneof=json svg dot pdf png"`
	Style      string   `json:"style,omitempty" validate:"omitempty,oneof=simple outline"`
	Scale      float64  `json:"scale,omitempty" validate:"gte=0,lte=16"`
	LoopGuides bool     `json:"loop_guides,omitempty"`
	Warnings   bool     `json:"warnings,omitempty"`
	Engine     string   `json:"engine,omitempty" validate:"omitempty,oneof=dot neato"`
	Detailed   bool     `json:"detailed,omitempty"`

	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-" validate:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Manager is the parsed structure. It is built from Canonical, so node
	// handles match those in Drawing.
	Manager *graph.Manager

	Canonical    string
	NotationHash string

	Drawing   diagram.Drawing
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	ChainCount int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each cached stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, svg, dot, pdf, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return errors.New(errors.ErrCodeInvalidStyle, "invalid style: %q (must be one of: simple, outline)", style)
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid viz_type: %q (must be one of: schematic, nodelink)", vizType)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. Calling it twice has the same effect as once.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// ValidateForParse checks the notation input.
func (o *Options) ValidateForParse() error {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return errors.ValidateNotationInput(o.Notation)
}

// SetLayoutDefaults fills zero geometry fields.
func (o *Options) SetLayoutDefaults() {
	lo := o.LayoutOptions().WithDefaults()
	o.Spacing = lo.Spacing
	o.BranchOffset = lo.BranchOffset
	o.StrandGap = lo.StrandGap
	o.RowGap = lo.RowGap
	o.DockOffset = lo.DockOffset
	o.MaxOverlapIterations = lo.MaxOverlapIterations
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout applies layout defaults and rejects negative geometry.
func (o *Options) ValidateForLayout() error {
	if err := o.LayoutOptions().Validate(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	return nil
}

// SetRenderDefaults fills zero render fields.
func (o *Options) SetRenderDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{diagram.FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Engine == "" {
		o.Engine = nodelink.EngineNeato
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for layout and rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateStyle(o.Style); err != nil {
		return err
	}
	if o.Engine != nodelink.EngineDot && o.Engine != nodelink.EngineNeato {
		return errors.New(errors.ErrCodeInvalidInput, "invalid engine: %q (must be one of: dot, neato)", o.Engine)
	}
	return nil
}

// LayoutOptions returns the geometry fields as layout options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		Spacing:              o.Spacing,
		BranchOffset:         o.BranchOffset,
		StrandGap:            o.StrandGap,
		RowGap:               o.RowGap,
		DockOffset:           o.DockOffset,
		MaxOverlapIterations: o.MaxOverlapIterations,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	lo := o.LayoutOptions().WithDefaults()
	return cache.LayoutKeyOpts{
		Spacing:              lo.Spacing,
		BranchOffset:         lo.BranchOffset,
		StrandGap:            lo.StrandGap,
		RowGap:               lo.RowGap,
		DockOffset:           lo.DockOffset,
		MaxOverlapIterations: lo.MaxOverlapIterations,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format. Only
// the settings that affect that format take part in the key.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: o.VizType + "/" + format}
	if format == diagram.FormatJSON {
		return k
	}
	if format == diagram.FormatDOT || o.VizType == VizNodelink {
		k.Style = fmt.Sprintf("%s/detailed=%t", o.Engine, o.Detailed)
	} else {
		k.Style = o.Style
		k.Guides = o.LoopGuides
		k.Warnings = o.Warnings
	}
	if format == diagram.FormatPNG {
		k.Scale = o.Scale
	}
	return k
}

// IsNodelink reports whether this run draws a Graphviz node-link diagram.
func (o *Options) IsNodelink() bool { return o.VizType == VizNodelink }

// HasFormat reports whether format was requested.
func (o *Options) HasFormat(format string) bool { return slices.Contains(o.Formats, format) }
