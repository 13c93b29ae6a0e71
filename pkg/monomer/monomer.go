package monomer

import (
	"fmt"
	"strconv"
	"strings"
)

// Polymer is the polymer type a monomer belongs to.
type Polymer string

const (
	Peptide    Polymer = "PEPTIDE"
	Nucleotide Polymer = "RNA"
	Chem       Polymer = "CHEM"
)

// Valid reports whether p is one of the known polymer types.
func (p Polymer) Valid() bool {
	switch p {
	case Peptide, Nucleotide, Chem:
		return true
	}
	return false
}

// ParsePolymer extracts the polymer type from a polymer identifier such as
// "PEPTIDE1" or "RNA2".
func ParsePolymer(id string) (Polymer, error) {
	for _, p := range []Polymer{Peptide, Nucleotide, Chem} {
		if rest, ok := strings.CutPrefix(id, string(p)); ok {
			if n, err := strconv.Atoi(rest); err == nil && n > 0 {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("unknown polymer id %q", id)
}

// Kind tags what a monomer is chemically, as far as layout cares.
type Kind string

const (
	AminoAcid Kind = "amino_acid"
	Sugar     Kind = "sugar"
	Phosphate Kind = "phosphate"
	Base      Kind = "base"
	Chemical  Kind = "chemical"
)

// Role is the chain role a monomer plays when it is placed in a polymer.
type Role string

const (
	// Backbone monomers sit on the main path of a chain (residues, sugars,
	// phosphates).
	Backbone Role = "backbone"
	// Branch monomers hang off a backbone monomer (nucleobases).
	Branch Role = "branch"
	// Terminal monomers cap a chain and have a single attachment port.
	Terminal Role = "terminal"
)

// Port names an attachment point on a monomer, "R1".."Rn".
type Port string

const (
	R1 Port = "R1"
	R2 Port = "R2"
	R3 Port = "R3"
)

// Index returns the numeric part of the port label, or 0 if malformed.
func (p Port) Index() int {
	rest, ok := strings.CutPrefix(string(p), "R")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// IsBackbone reports whether the port is one of the backbone ports R1/R2.
func (p Port) IsBackbone() bool { return p == R1 || p == R2 }

// ParsePort validates a port label such as "R3".
func ParsePort(s string) (Port, error) {
	p := Port(s)
	if p.Index() == 0 {
		return "", fmt.Errorf("invalid attachment port %q", s)
	}
	return p, nil
}

// Monomer describes one entry of the monomer database.
type Monomer struct {
	Symbol  string  `toml:"symbol" json:"symbol"`
	Name    string  `toml:"name" json:"name,omitempty"`
	Polymer Polymer `toml:"polymer" json:"polymer"`
	Kind    Kind    `toml:"kind" json:"kind"`
	Role    Role    `toml:"role" json:"role"`
	Ports   []Port  `toml:"ports" json:"ports"`
}

// HasPort reports whether the monomer exposes the given attachment port.
func (m Monomer) HasPort(p Port) bool {
	for _, q := range m.Ports {
		if q == p {
			return true
		}
	}
	return false
}

// Notation returns the symbol as it is written inside a polymer: single
// letters bare, everything else in brackets.
func (m Monomer) Notation() string {
	return FormatSymbol(m.Symbol)
}

// FormatSymbol brackets every symbol that is not a single ASCII letter.
func FormatSymbol(symbol string) string {
	if len(symbol) == 1 && isLetter(symbol[0]) {
		return symbol
	}
	return "[" + symbol + "]"
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// Database resolves monomer symbols. Implementations must be safe for
// concurrent reads.
type Database interface {
	Lookup(polymer Polymer, symbol string) (Monomer, bool)
}
