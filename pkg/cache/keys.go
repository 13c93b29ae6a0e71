package cache

// Keyer builds cache keys. Keys from different methods never collide.
type Keyer interface {
	// LayoutKey addresses a serialized drawing for a structure.
	LayoutKey(notationHash string, opts LayoutKeyOpts) string
	// ArtifactKey addresses rendered output (SVG, PNG, ...) of a drawing.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
	// DocumentKey addresses a stored editing document.
	DocumentKey(id string) string
}

// LayoutKeyOpts holds every layout setting that changes coordinates.
type LayoutKeyOpts struct {
	Spacing              float64 `json:"spacing"`
	BranchOffset         float64 `json:"branch_offset"`
	StrandGap            float64 `json:"strand_gap"`
	RowGap               float64 `json:"row_gap"`
	DockOffset           float64 `json:"dock_offset"`
	MaxOverlapIterations int     `json:"max_overlap_iterations"`
}

// ArtifactKeyOpts holds every render setting that changes output bytes.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Style    string  `json:"style,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	Guides   bool    `json:"guides,omitempty"`
	Warnings bool    `json:"warnings,omitempty"`
}

// DefaultKeyer hashes key options with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(notationHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", notationHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

func (DefaultKeyer) DocumentKey(id string) string { return "document:" + id }
