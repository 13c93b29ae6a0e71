package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/helmdraw/pkg/errors"
)

// Marshal serializes a Drawing to pretty-printed JSON bytes.
func Marshal(d Drawing) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes d as indented JSON to w.
func Write(d Drawing, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Unmarshal deserializes JSON bytes into a Drawing and checks that every
// edge and loop refers to a listed node.
func Unmarshal(data []byte) (Drawing, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes a Drawing from r. It does not close r.
func Read(r io.Reader) (Drawing, error) {
	var d Drawing
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Drawing{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode drawing")
	}
	if err := d.validate(); err != nil {
		return Drawing{}, err
	}
	return d, nil
}

func (d *Drawing) validate() error {
	ids := make(map[int]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if ids[n.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate node %d", n.ID).WithNode(n.ID)
		}
		ids[n.ID] = true
	}
	for _, e := range d.Edges {
		if !ids[e.From] || !ids[e.To] {
			return errors.New(errors.ErrCodeInvalidInput, "edge %d refers to an unknown node", e.ID).WithEdge(e.ID)
		}
		if len(e.Points) < 2 {
			return errors.New(errors.ErrCodeInvalidInput, "edge %d has %d points", e.ID, len(e.Points)).WithEdge(e.ID)
		}
	}
	for i, l := range d.Loops {
		for _, n := range l.Nodes {
			if !ids[n] {
				return errors.New(errors.ErrCodeInvalidInput, "loop %d refers to unknown node %d", i, n).WithNode(n)
			}
		}
	}
	return nil
}

// WriteFile writes a Drawing to a JSON file.
func WriteFile(d Drawing, path string) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a Drawing from a JSON file.
func ReadFile(path string) (Drawing, error) {
	f, err := os.Open(path)
	if err != nil {
		return Drawing{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
