package monomer

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed default.toml
var defaultTOML []byte

var (
	defaultLib     *Library
	defaultLibErr  error
	defaultLibOnce sync.Once
)

// Library is an in-memory monomer database loaded from TOML.
//
// The file format is a list of [[monomer]] tables:
//
//	[[monomer]]
//	symbol  = "C"
//	name    = "Cysteine"
//	polymer = "PEPTIDE"
//	kind    = "amino_acid"
//	role    = "backbone"
//	ports   = ["R1", "R2", "R3"]
//
// A Library is immutable after loading and safe for concurrent use.
type Library struct {
	entries map[key]Monomer
}

type key struct {
	polymer Polymer
	symbol  string
}

type libraryFile struct {
	Monomers []Monomer `toml:"monomer"`
}

// Default returns the embedded default library. The result is shared and
// must not be modified.
func Default() *Library {
	defaultLibOnce.Do(func() {
		defaultLib, defaultLibErr = Load(bytes.NewReader(defaultTOML))
	})
	if defaultLibErr != nil {
		panic(fmt.Sprintf("monomer: embedded library is invalid: %v", defaultLibErr))
	}
	return defaultLib
}

// Load parses a TOML monomer library.
func Load(r io.Reader) (*Library, error) {
	var f libraryFile
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode monomer library: %w", err)
	}
	lib := &Library{entries: make(map[key]Monomer, len(f.Monomers))}
	for i, m := range f.Monomers {
		if err := validate(m); err != nil {
			return nil, fmt.Errorf("monomer #%d: %w", i+1, err)
		}
		lib.entries[key{m.Polymer, m.Symbol}] = m
	}
	return lib, nil
}

// LoadFile reads a TOML monomer library from disk.
func LoadFile(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Merge returns a new library containing l's entries overridden by other's.
func (l *Library) Merge(other *Library) *Library {
	out := &Library{entries: make(map[key]Monomer, len(l.entries)+len(other.entries))}
	for k, m := range l.entries {
		out.entries[k] = m
	}
	for k, m := range other.entries {
		out.entries[k] = m
	}
	return out
}

// Lookup implements Database.
func (l *Library) Lookup(polymer Polymer, symbol string) (Monomer, bool) {
	m, ok := l.entries[key{polymer, symbol}]
	return m, ok
}

// Len returns the number of entries in the library.
func (l *Library) Len() int { return len(l.entries) }

// Symbols returns the sorted symbols known for a polymer type.
func (l *Library) Symbols(polymer Polymer) []string {
	var out []string
	for k := range l.entries {
		if k.polymer == polymer {
			out = append(out, k.symbol)
		}
	}
	slices.Sort(out)
	return out
}

// Candidates returns monomers of the given polymer type and role that expose
// every port in required, sorted by symbol.
func (l *Library) Candidates(polymer Polymer, role Role, required []Port) []Monomer {
	var out []Monomer
	for _, sym := range l.Symbols(polymer) {
		m := l.entries[key{polymer, sym}]
		if m.Role != role {
			continue
		}
		ok := true
		for _, p := range required {
			if !m.HasPort(p) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, m)
		}
	}
	return out
}

func validate(m Monomer) error {
	if m.Symbol == "" {
		return fmt.Errorf("missing symbol")
	}
	if !m.Polymer.Valid() {
		return fmt.Errorf("%s: unknown polymer %q", m.Symbol, m.Polymer)
	}
	switch m.Kind {
	case AminoAcid, Sugar, Phosphate, Base, Chemical:
	default:
		return fmt.Errorf("%s: unknown kind %q", m.Symbol, m.Kind)
	}
	switch m.Role {
	case Backbone, Branch, Terminal:
	default:
		return fmt.Errorf("%s: unknown role %q", m.Symbol, m.Role)
	}
	if len(m.Ports) == 0 {
		return fmt.Errorf("%s: at least one port is required", m.Symbol)
	}
	for _, p := range m.Ports {
		if p.Index() == 0 {
			return fmt.Errorf("%s: invalid port %q", m.Symbol, p)
		}
	}
	return nil
}
