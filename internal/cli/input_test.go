package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/helmdraw/pkg/errors"
)

func TestReadInput(t *testing.T) {
	dir := t.TempDir()
	helm := filepath.Join(dir, "duplex.helm")
	if err := os.WriteFile(helm, []byte("PEPTIDE1{A.G}$$$$\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		arg      string
		wantText string
		wantPath string
		wantErr  bool
	}{
		{"literal notation", "PEPTIDE1{A}$$$$", "PEPTIDE1{A}$$$$", "", false},
		{"file trimmed", helm, "PEPTIDE1{A.G}$$$$", helm, false},
		{"missing file", filepath.Join(dir, "missing.helm"), "", "", true},
		{"plain word", "alanine", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := readInput(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("readInput(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Errorf("error code = %s, want INVALID_INPUT", errors.GetCode(err))
				}
				return
			}
			if in.text != tt.wantText || in.path != tt.wantPath {
				t.Errorf("readInput(%q) = %+v, want text %q path %q", tt.arg, in, tt.wantText, tt.wantPath)
			}
		})
	}
}

func TestReadInputStdin(t *testing.T) {
	old := stdin
	stdin = strings.NewReader("  RNA1{R(A)P}$$$$\n")
	t.Cleanup(func() { stdin = old })

	in, err := readInput("-")
	if err != nil {
		t.Fatal(err)
	}
	if in.text != "RNA1{R(A)P}$$$$" || in.path != "" {
		t.Errorf("readInput(-) = %+v", in)
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		in     input
		want   string
	}{
		{"format extension stripped", "out/drawing.svg", input{}, "out/drawing"},
		{"unknown extension kept", "drawing.v2", input{}, "drawing.v2"},
		{"from input file", "", input{path: "data/duplex.helm"}, "data/duplex"},
		{"literal notation", "", input{text: "PEPTIDE1{A}$$$$"}, "structure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.in); got != tt.want {
				t.Errorf("basePath(%q) = %q, want %q", tt.output, got, tt.want)
			}
		})
	}
}

func TestBatchPath(t *testing.T) {
	got, err := batchPath("out", input{path: "data/duplex.helm"}, 0)
	if err != nil || got != filepath.Join("out", "duplex") {
		t.Errorf("batchPath(file) = %q, %v", got, err)
	}

	got, err = batchPath("out", input{text: "PEPTIDE1{A}$$$$"}, 2)
	if err != nil || got != filepath.Join("out", "structure3") {
		t.Errorf("batchPath(literal) = %q, %v", got, err)
	}

	if _, err := batchPath("out", input{path: "data/..."}, 0); err == nil {
		t.Error("batchPath accepted a name with ..")
	}
}
