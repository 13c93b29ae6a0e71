package layout

import "github.com/matzehuels/helmdraw/pkg/errors"

// Default geometry, in drawing units.
const (
	DefaultSpacing              = 40.0
	DefaultBranchOffset         = 30.0
	DefaultStrandGap            = 80.0
	DefaultRowGap               = 120.0
	DefaultDockOffset           = 40.0
	DefaultMaxOverlapIterations = 64
)

// Epsilon is the tolerance for coordinate equality.
const Epsilon = 1e-3

// Options control the geometry of a layout pass. Zero fields take the
// package defaults.
type Options struct {
	Spacing              float64 `json:"spacing,omitempty" toml:"spacing" mapstructure:"spacing"`                                  // between consecutive backbone nodes
	BranchOffset         float64 `json:"branch_offset,omitempty" toml:"branch_offset" mapstructure:"branch_offset"`                // backbone node to its branch
	StrandGap            float64 `json:"strand_gap,omitempty" toml:"strand_gap" mapstructure:"strand_gap"`                         // between antiparallel strands
	RowGap               float64 `json:"row_gap,omitempty" toml:"row_gap" mapstructure:"row_gap"`                                  // between unrelated chains
	DockOffset           float64 `json:"dock_offset,omitempty" toml:"dock_offset" mapstructure:"dock_offset"`                      // modifier to its anchor
	MaxOverlapIterations int     `json:"max_overlap_iterations,omitempty" toml:"max_overlap_iterations" mapstructure:"max_overlap_iterations"`
}

// WithDefaults returns o with zero fields filled in.
func (o Options) WithDefaults() Options {
	if o.Spacing == 0 {
		o.Spacing = DefaultSpacing
	}
	if o.BranchOffset == 0 {
		o.BranchOffset = DefaultBranchOffset
	}
	if o.StrandGap == 0 {
		o.StrandGap = DefaultStrandGap
	}
	if o.RowGap == 0 {
		o.RowGap = DefaultRowGap
	}
	if o.DockOffset == 0 {
		o.DockOffset = DefaultDockOffset
	}
	if o.MaxOverlapIterations == 0 {
		o.MaxOverlapIterations = DefaultMaxOverlapIterations
	}
	return o
}

// Validate rejects negative distances and iteration caps.
func (o Options) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"spacing", o.Spacing},
		{"branch offset", o.BranchOffset},
		{"strand gap", o.StrandGap},
		{"row gap", o.RowGap},
		{"dock offset", o.DockOffset},
	} {
		if f.v < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s must not be negative, got %g", f.name, f.v)
		}
	}
	if o.MaxOverlapIterations < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "overlap iteration cap must not be negative, got %d", o.MaxOverlapIterations)
	}
	return nil
}
