package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/monomer"
	"github.com/matzehuels/helmdraw/pkg/translate"
)

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"PEPTIDE1{A.G.C}$$$$",
		"RNA1{R(A)P.R(C)}|RNA2{R(G)P.R(U)}$$RNA1,RNA2,2:pair-5:pair|RNA1,RNA2,5:pair-2:pair$$",
		"PEPTIDE1{C.A.C}|CHEM1{[Biotin]}$PEPTIDE1,PEPTIDE1,1:R3-3:R3|PEPTIDE1,CHEM1,3:R2-1:R1$$PEPTIDE1:2{x}$",
		"PEPTIDE1{C.A.G.C}$PEPTIDE1,PEPTIDE1,1:R1-4:R2$$$",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			m, err := translate.Parse(in, monomer.Default())
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			var buf bytes.Buffer
			if err := WriteJSON(m, &buf); err != nil {
				t.Fatalf("WriteJSON: %v", err)
			}
			back, err := ReadJSON(&buf)
			if err != nil {
				t.Fatalf("ReadJSON: %v", err)
			}
			if got, want := translate.Serialize(back), translate.Serialize(m); got != want {
				t.Errorf("round trip = %q, want %q", got, want)
			}
			if back.StartCount() != m.StartCount() {
				t.Errorf("starts = %d, want %d", back.StartCount(), m.StartCount())
			}
		})
	}
}

func TestExportImportFile(t *testing.T) {
	m, err := translate.Parse("PEPTIDE1{A.G}$$$$", monomer.Default())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := ExportJSON(m, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	back, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if back.Graph().NodeCount() != 2 {
		t.Errorf("nodes = %d, want 2", back.Graph().NodeCount())
	}
	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ImportJSON of a missing file succeeded")
	}
}

func TestReadJSONRejects(t *testing.T) {
	const a = `{"id": 0, "chain": "PEPTIDE1", "symbol": "A", "polymer": "PEPTIDE", "kind": "amino_acid", "role": "BACKBONE", "ports": ["R1", "R2"]}`
	const g = `{"id": 1, "chain": "PEPTIDE1", "symbol": "G", "polymer": "PEPTIDE", "kind": "amino_acid", "role": "BACKBONE", "ports": ["R1", "R2"]}`
	const chain = `"chains": [{"id": "PEPTIDE1", "polymer": "PEPTIDE", "start": 0}]`
	tests := []struct {
		name string
		json string
		code errors.Code
	}{
		{"malformed", `{"nodes": [`, errors.ErrCodeInvalidInput},
		{"duplicate node", `{` + chain + `, "nodes": [` + a + `, ` + a + `]}`, errors.ErrCodeInvalidInput},
		{"unknown role", `{` + chain + `, "nodes": [` + strings.Replace(a, "BACKBONE", "SIDE", 1) + `]}`, errors.ErrCodeInvalidInput},
		{"unknown kind", `{` + chain + `, "nodes": [` + a + `, ` + g + `], "edges": [{"kind": "BOND", "from": 0, "to": 1}]}`, errors.ErrCodeInvalidInput},
		{"dangling edge", `{` + chain + `, "nodes": [` + a + `], "edges": [{"kind": "REGULAR", "from": 0, "to": 7, "from_port": "R2", "to_port": "R1"}]}`, errors.ErrCodeInvalidInput},
		{"bad start", `{"chains": [{"id": "PEPTIDE1", "polymer": "PEPTIDE", "start": 9}], "nodes": [` + a + `]}`, errors.ErrCodeInvalidInput},
		{"unreached node", `{` + chain + `, "nodes": [` + a + `, ` + g + `]}`, errors.ErrCodeStructuralInvariant},
		{"occupied port", `{` + chain + `, "nodes": [` + a + `, ` + g + `], "edges": [` +
			`{"kind": "REGULAR", "from": 0, "to": 1, "from_port": "R2", "to_port": "R1"},` +
			`{"kind": "BRANCH", "from": 0, "to": 1, "from_port": "R2", "to_port": "R2"}]}`, errors.ErrCodeStructuralInvariant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.json))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}
