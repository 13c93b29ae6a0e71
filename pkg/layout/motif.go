package layout

import (
	"strings"

	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/graph"
	"github.com/matzehuels/helmdraw/pkg/monomer"
)

// Motif is the secondary-structure pattern a layout pass draws.
type Motif int

const (
	// Linear places each chain on its own row.
	Linear Motif = iota
	// Hairpin folds one chain back on itself around a single loop.
	Hairpin
	// Dumbbell is one chain with two loops joined by a duplex.
	Dumbbell
	// Complementary stacks paired chains as antiparallel strands.
	Complementary
)

func (m Motif) String() string {
	switch m {
	case Linear:
		return "LINEAR"
	case Hairpin:
		return "HAIRPIN"
	case Dumbbell:
		return "DUMBBELL"
	case Complementary:
		return "COMPLEMENTARY"
	}
	return "UNKNOWN"
}

// MarshalText encodes the motif by name.
func (m Motif) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText decodes a motif name written by MarshalText.
func (m *Motif) UnmarshalText(text []byte) error {
	v, err := ParseMotif(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMotif returns the motif with the given name, ignoring case.
func ParseMotif(s string) (Motif, error) {
	for _, m := range []Motif{Linear, Hairpin, Dumbbell, Complementary} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return Linear, errors.New(errors.ErrCodeInvalidInput, "unknown motif %q", s)
}

// chain is one laid-out polymer: its backbone in traversal order.
type chain struct {
	order   int
	polymer monomer.Polymer
	nodes   []graph.NodeID
}

// stem is a run of nested pairs, outermost first, as chain indices.
type stem struct {
	pairs [][2]int
}

func (s stem) outer() [2]int { return s.pairs[0] }
func (s stem) inner() [2]int { return s.pairs[len(s.pairs)-1] }

// chains returns the polymer chains of m in starting-node order. Chemical
// modifiers are docked separately and left out.
func chains(m *graph.Manager) []chain {
	g := m.Graph()
	var out []chain
	for i, s := range m.Starts() {
		head, _ := g.Node(s.Node)
		if head.Polymer == monomer.Chem {
			continue
		}
		out = append(out, chain{order: i, polymer: head.Polymer, nodes: g.TraverseChain(s.Node, graph.None, nil)})
	}
	return out
}

// stems groups the self-pairings of c into nested runs. Pairings that
// neither nest inside the current run nor follow it are interleaved and
// rejected.
func stems(g *graph.Graph, c chain) ([]stem, error) {
	partners := partnerRanks(g, c.nodes)
	var out []stem
	for i, j := range partners {
		if j <= i {
			continue
		}
		if len(out) > 0 {
			cur := &out[len(out)-1]
			in, outer := cur.inner(), cur.outer()
			switch {
			case i > in[0] && j < in[1]:
				cur.pairs = append(cur.pairs, [2]int{i, j})
				continue
			case i <= outer[1]:
				return nil, errors.New(errors.ErrCodeLayoutUnsupportedMotif,
					"interleaved pairing at positions %d-%d and %d-%d", in[0]+1, in[1]+1, i+1, j+1).WithNode(int(c.nodes[i]))
			}
		}
		out = append(out, stem{pairs: [][2]int{{i, j}}})
	}
	return out, nil
}

// crossPaired reports whether any base of c pairs with a base on another
// chain.
func crossPaired(g *graph.Graph, c chain) bool {
	for _, n := range c.nodes {
		for _, b := range g.BranchChildren(n) {
			partner, _ := g.PairPartner(b)
			if partner == graph.None {
				continue
			}
			a := g.Anchor(partner)
			if a == graph.None {
				continue
			}
			an, _ := g.Node(a)
			if nn, _ := g.Node(n); an.Component != nn.Component {
				return true
			}
		}
	}
	return false
}

// Classify picks the motif for m from its shape alone:
//
//   - pairs between chains: COMPLEMENTARY
//   - one chain with one stem: HAIRPIN, with two stems: DUMBBELL
//   - no pairing: LINEAR
//
// Peptide cross-links only count as a stem when the peptide is the sole
// polymer chain. Anything else is a LAYOUT_UNSUPPORTED_MOTIF error.
func Classify(m *graph.Manager) (Motif, error) {
	g := m.Graph()
	cs := chains(m)

	var cross, self bool
	var paired []stem
	for _, c := range cs {
		if crossPaired(g, c) {
			cross = true
		}
		if c.polymer != monomer.Nucleotide && len(cs) > 1 {
			continue
		}
		st, err := stems(g, c)
		if err != nil {
			return Linear, err
		}
		if len(st) > 0 {
			self = true
			paired = st
		}
	}

	switch {
	case cross && self:
		return Linear, errors.New(errors.ErrCodeLayoutUnsupportedMotif, "strands pair with themselves and with each other")
	case cross:
		return Complementary, nil
	case !self:
		return Linear, nil
	case len(cs) > 1:
		return Linear, errors.New(errors.ErrCodeLayoutUnsupportedMotif, "self-paired strand alongside %d other chains", len(cs)-1)
	case len(paired) == 1:
		return Hairpin, nil
	case len(paired) == 2:
		return Dumbbell, nil
	}
	return Linear, errors.New(errors.ErrCodeLayoutUnsupportedMotif, "%d separate stems in one strand", len(paired))
}
