package notation

import (
	"github.com/matzehuels/helmdraw/pkg/monomer"
)

// Version2 is the version trailer accepted at the end of a notation string.
const Version2 = "V2.0"

// PairPort is the pseudo-port used by pair tokens.
const PairPort = "pair"

// Document is a parsed notation string.
type Document struct {
	Polymers    []Polymer
	Connections []Connection
	Pairs       []Pair
	Annotations []Annotation
	Version     string // Version2 or empty
}

// Polymer is one ID{...} block.
type Polymer struct {
	ID    string
	Type  monomer.Polymer
	Units []Unit // every monomer in position order
}

// Unit is one monomer occurrence inside a polymer. Branch units hang off the
// closest preceding backbone unit.
type Unit struct {
	Symbol string
	Branch bool
}

// Connection links two monomers through named attachment ports.
type Connection struct {
	From     string
	FromPos  int
	FromPort monomer.Port
	To       string
	ToPos    int
	ToPort   monomer.Port
}

// Pair records complementary base pairing between two monomers.
type Pair struct {
	From    string
	FromPos int
	To      string
	ToPos   int
}

// Annotation attaches free text to a polymer (Pos == 0) or a single monomer.
type Annotation struct {
	Polymer string
	Pos     int
	Text    string
}

// Polymer returns the polymer with the given ID.
func (d *Document) Polymer(id string) (*Polymer, bool) {
	for i := range d.Polymers {
		if d.Polymers[i].ID == id {
			return &d.Polymers[i], true
		}
	}
	return nil, false
}
