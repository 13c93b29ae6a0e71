package graph

import (
	"errors"
	"slices"
	"testing"

	helmerrors "github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/monomer"
)

var (
	residue = monomer.Monomer{Symbol: "A", Polymer: monomer.Peptide, Kind: monomer.AminoAcid, Role: monomer.Backbone, Ports: []monomer.Port{"R1", "R2", "R3"}}
	sugar   = monomer.Monomer{Symbol: "R", Polymer: monomer.Nucleotide, Kind: monomer.Sugar, Role: monomer.Backbone, Ports: []monomer.Port{"R1", "R2", "R3"}}
	base    = monomer.Monomer{Symbol: "A", Polymer: monomer.Nucleotide, Kind: monomer.Base, Role: monomer.Branch, Ports: []monomer.Port{"R1"}}
)

// buildChain adds a linear chain of n residues and registers its start.
func buildChain(t *testing.T, m *Manager, name string, n int) []NodeID {
	t.Helper()
	g := m.Graph()
	c := g.AddComponent(Component{Name: name, Polymer: monomer.Peptide, Order: len(g.Components())})
	var ids []NodeID
	for i := range n {
		id, err := g.AddNode(Node{Symbol: residue.Symbol, Polymer: residue.Polymer, Kind: residue.Kind, Ports: residue.Ports, Component: c, Position: i + 1})
		if err != nil {
			t.Fatalf("AddNode: %v", err)
		}
		if i > 0 {
			if _, err := g.AddEdge(Edge{Kind: Regular, Src: ids[i-1], SrcPort: monomer.R2, Tgt: id, TgtPort: monomer.R1}); err != nil {
				t.Fatalf("AddEdge: %v", err)
			}
		}
		ids = append(ids, id)
	}
	m.AddStartingNode(m.StartCount(), ids[0], "N")
	return ids
}

func TestAddEdgePorts(t *testing.T) {
	m := NewManager(New())
	ids := buildChain(t, m, "PEPTIDE1", 3)
	g := m.Graph()

	n0, _ := g.Node(ids[0])
	if !n0.Occupied(monomer.R2) || n0.Occupied(monomer.R1) {
		t.Errorf("head occupancy = %v, want [R2]", n0.OccupiedPorts())
	}

	tests := []struct {
		name string
		edge Edge
		want error
	}{
		{"occupied", Edge{Kind: Regular, Src: ids[0], SrcPort: monomer.R2, Tgt: ids[2], TgtPort: monomer.R1}, ErrPortOccupied},
		{"missing port", Edge{Kind: BranchEdge, Src: ids[0], SrcPort: "R4", Tgt: ids[2], TgtPort: monomer.R3}, ErrPortUnavailable},
		{"unknown node", Edge{Kind: BranchEdge, Src: 99, SrcPort: monomer.R3, Tgt: ids[2], TgtPort: monomer.R3}, ErrUnknownNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.AddEdge(tt.edge); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge() error = %v, want %v", err, tt.want)
			}
		})
	}

	id, err := g.AddEdge(Edge{Kind: BranchEdge, Src: ids[0], SrcPort: monomer.R3, Tgt: ids[2], TgtPort: monomer.R3})
	if err != nil {
		t.Fatalf("AddEdge cross-link: %v", err)
	}
	if err := g.RemoveEdge(id); err != nil {
		t.Fatalf("RemoveEdge: %v", err)
	}
	if n0.Occupied(monomer.R3) {
		t.Error("R3 still occupied after RemoveEdge")
	}
	if err := g.RemoveEdge(id); !errors.Is(err, ErrUnknownEdge) {
		t.Errorf("second RemoveEdge error = %v, want ErrUnknownEdge", err)
	}
}

func TestChainWalks(t *testing.T) {
	m := NewManager(New())
	ids := buildChain(t, m, "PEPTIDE1", 4)
	g := m.Graph()

	if got := g.ChainHead(ids[2], nil); got != ids[0] {
		t.Errorf("ChainHead = %d, want %d", got, ids[0])
	}
	if got := g.ChainTail(ids[1], nil); got != ids[3] {
		t.Errorf("ChainTail = %d, want %d", got, ids[3])
	}
	if got := g.TraverseChain(ids[0], None, nil); !slices.Equal(got, ids) {
		t.Errorf("TraverseChain = %v, want %v", got, ids)
	}
	if got := g.TraverseChain(ids[1], ids[2], nil); !slices.Equal(got, ids[1:3]) {
		t.Errorf("TraverseChain(1, 2) = %v, want %v", got, ids[1:3])
	}
	if got := g.TraverseReverse(ids[3], None, nil); !slices.Equal(got, []NodeID{ids[3], ids[2], ids[1], ids[0]}) {
		t.Errorf("TraverseReverse = %v", got)
	}

	// Probe with the middle edge hidden; the graph itself is unchanged.
	mid := g.Out(ids[1])[0]
	if got := g.ChainHead(ids[3], Without(mid)); got != ids[2] {
		t.Errorf("masked ChainHead = %d, want %d", got, ids[2])
	}
	if got := g.Fragment(ids[0], Without(mid)); !slices.Equal(got, ids[:2]) {
		t.Errorf("masked Fragment = %v, want %v", got, ids[:2])
	}
	if got := g.ChainHead(ids[3], nil); got != ids[0] {
		t.Errorf("ChainHead after probe = %d, want %d", got, ids[0])
	}
}

func TestCyclicChain(t *testing.T) {
	m := NewManager(New())
	ids := buildChain(t, m, "PEPTIDE1", 3)
	g := m.Graph()
	if _, err := g.Connect(Link{Src: ids[0], SrcPort: monomer.R1, Tgt: ids[2], TgtPort: monomer.R2}); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if !g.IsCyclic(ids[1], nil) {
		t.Fatal("chain should be cyclic")
	}
	for _, n := range ids {
		if got := g.ChainHead(n, nil); got != n {
			t.Errorf("ChainHead(%d) = %d, want itself", n, got)
		}
		if got := g.ChainTail(n, nil); got != n {
			t.Errorf("ChainTail(%d) = %d, want itself", n, got)
		}
	}
	if got := g.TraverseChain(ids[1], None, nil); !slices.Equal(got, []NodeID{ids[1], ids[2], ids[0]}) {
		t.Errorf("TraverseChain = %v", got)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestClassifyLink(t *testing.T) {
	m := NewManager(New())
	a := buildChain(t, m, "PEPTIDE1", 2)
	b := buildChain(t, m, "PEPTIDE2", 2)
	g := m.Graph()
	chemComp := g.AddComponent(Component{Name: "CHEM1", Polymer: monomer.Chem})
	chem, _ := g.AddNode(Node{Symbol: "Biotin", Polymer: monomer.Chem, Kind: monomer.Chemical, Ports: []monomer.Port{"R1"}, Component: chemComp})

	tests := []struct {
		name     string
		src, tgt NodeID
		sp, tp   monomer.Port
		want     EdgeKind
	}{
		{"cyclization", a[1], a[0], monomer.R2, monomer.R1, Regular},
		{"cyclization reversed", a[0], a[1], monomer.R1, monomer.R2, Regular},
		{"cross chain backbone ports", a[1], b[0], monomer.R2, monomer.R1, BranchEdge},
		{"side chain", a[0], b[0], monomer.R3, monomer.R3, BranchEdge},
		{"chem", a[1], chem, monomer.R2, monomer.R1, Chem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ClassifyLink(tt.src, tt.sp, tt.tgt, tt.tp); got != tt.want {
				t.Errorf("ClassifyLink() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStartingNodeList(t *testing.T) {
	m := NewManager(New())
	a := buildChain(t, m, "PEPTIDE1", 2)
	b := buildChain(t, m, "PEPTIDE2", 2)

	if m.Index(a[0]) != 0 || m.Index(b[0]) != 1 {
		t.Fatalf("indices = %d, %d", m.Index(a[0]), m.Index(b[0]))
	}
	if m.IsStartingNode(a[1]) {
		t.Error("a[1] reported as start")
	}
	if !m.Annotate(b[0], "C") || m.StartAnnotation(b[0]) != "C" {
		t.Error("Annotate did not stick")
	}
	if m.Annotate(a[1], "x") {
		t.Error("Annotate on non-start returned true")
	}

	m.AddStartingNode(0, b[0], "moved")
	if m.Index(b[0]) != 0 || m.Index(a[0]) != 1 {
		t.Errorf("move failed: %v", m.Starts())
	}
	m.ReplaceStartingNode(0, b[1])
	if m.Index(b[1]) != 0 || m.StartAnnotation(b[1]) != "moved" {
		t.Errorf("ReplaceStartingNode lost slot or annotation: %v", m.Starts())
	}
	if !m.RemoveStartingNode(b[1]) || m.StartCount() != 1 {
		t.Errorf("RemoveStartingNode: %v", m.Starts())
	}
	if m.StartIndexOf(a[1], nil) != 0 {
		t.Errorf("StartIndexOf = %d, want 0", m.StartIndexOf(a[1], nil))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(t *testing.T, m *Manager, ids []NodeID)
	}{
		{"missing start", func(t *testing.T, m *Manager, ids []NodeID) {
			m.RemoveStartingNode(ids[0])
		}},
		{"start not head", func(t *testing.T, m *Manager, ids []NodeID) {
			m.ReplaceStartingNode(0, ids[1])
		}},
		{"duplicate coverage", func(t *testing.T, m *Manager, ids []NodeID) {
			m.AddStartingNode(1, ids[0], "")
			m.starts = append(m.starts, Start{Node: ids[0]})
		}},
		{"pair between residues", func(t *testing.T, m *Manager, ids []NodeID) {
			if _, err := m.Graph().AddEdge(Edge{Kind: Pair, Src: ids[0], Tgt: ids[2]}); err != nil {
				t.Fatal(err)
			}
		}},
		{"stale occupancy", func(t *testing.T, m *Manager, ids []NodeID) {
			n, _ := m.Graph().Node(ids[1])
			n.setOccupied(monomer.R3, true)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(New())
			ids := buildChain(t, m, "PEPTIDE1", 3)
			m.Reconcile()
			if err := m.Validate(); err != nil {
				t.Fatalf("valid graph rejected: %v", err)
			}
			tt.corrupt(t, m, ids)
			err := m.Validate()
			if !helmerrors.Is(err, helmerrors.ErrCodeStructuralInvariant) {
				t.Errorf("Validate() = %v, want STRUCTURAL_INVARIANT", err)
			}
		})
	}
}

func TestApplyCommitOrReject(t *testing.T) {
	m := NewManager(New())
	ids := buildChain(t, m, "PEPTIDE1", 3)
	m.Reconcile()

	// Removing a backbone bond without fixing the start list is rejected.
	err := m.Apply(func(w *Manager) error {
		return w.Graph().RemoveEdge(w.Graph().Out(ids[0])[0])
	})
	if !helmerrors.Is(err, helmerrors.ErrCodeStructuralInvariant) {
		t.Fatalf("Apply() = %v, want STRUCTURAL_INVARIANT", err)
	}
	if got := m.Graph().EdgeCount(); got != 2 {
		t.Errorf("rejected edit leaked: edges = %d, want 2", got)
	}

	// The same edit with the new fragment registered commits.
	err = m.Apply(func(w *Manager) error {
		if err := w.Graph().RemoveEdge(w.Graph().Out(ids[0])[0]); err != nil {
			return err
		}
		w.AddStartingNode(1, ids[1], "N")
		return nil
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if m.StartCount() != 2 || len(m.Graph().Components()) != 2 {
		t.Errorf("starts = %d, components = %d, want 2, 2", m.StartCount(), len(m.Graph().Components()))
	}
	n, _ := m.Graph().Node(ids[2])
	if n.Position != 2 {
		t.Errorf("renumbered position = %d, want 2", n.Position)
	}
	c0, _ := m.Graph().Component(0)
	c1, _ := m.Graph().Component(1)
	if c0.Name != "PEPTIDE1" || c1.Name != "PEPTIDE2" {
		t.Errorf("component names = %s, %s", c0.Name, c1.Name)
	}
}

func TestBranchHelpers(t *testing.T) {
	g := New()
	c := g.AddComponent(Component{Name: "RNA1", Polymer: monomer.Nucleotide})
	s, _ := g.AddNode(Node{Symbol: sugar.Symbol, Polymer: sugar.Polymer, Kind: sugar.Kind, Ports: sugar.Ports, Component: c})
	b, _ := g.AddNode(Node{Symbol: base.Symbol, Polymer: base.Polymer, Kind: base.Kind, Ports: base.Ports, Role: Branch, Component: c})
	if _, err := g.AddEdge(Edge{Kind: BranchEdge, Src: s, SrcPort: monomer.R3, Tgt: b, TgtPort: monomer.R1}); err != nil {
		t.Fatal(err)
	}

	if got := g.BranchChildren(s); !slices.Equal(got, []NodeID{b}) {
		t.Errorf("BranchChildren = %v", got)
	}
	if got := g.Anchor(b); got != s {
		t.Errorf("Anchor = %d, want %d", got, s)
	}
	if got := g.ChainWithBranches(s, nil); !slices.Equal(got, []NodeID{s, b}) {
		t.Errorf("ChainWithBranches = %v", got)
	}
	if p, _ := g.PairPartner(b); p != None {
		t.Errorf("PairPartner = %d, want None", p)
	}
}

func TestClone(t *testing.T) {
	m := NewManager(New())
	ids := buildChain(t, m, "PEPTIDE1", 3)
	c := m.Clone()

	if err := c.Graph().RemoveNode(ids[2]); err != nil {
		t.Fatal(err)
	}
	c.RemoveStartingNode(ids[0])

	if m.Graph().NodeCount() != 3 || m.StartCount() != 1 {
		t.Error("clone shares state with original")
	}
	n, _ := m.Graph().Node(ids[1])
	if !n.Occupied(monomer.R2) {
		t.Error("original lost port occupancy")
	}
}
