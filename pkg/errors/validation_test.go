package errors

import (
	"strings"
	"testing"
)

func TestValidateNotationInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid peptide", "PEPTIDE1{A.G.C}$$$$", false},
		{"trailing newline", "PEPTIDE1{A}$$$$\n", false},

		{"empty", "", true},
		{"whitespace only", "   \n", true},
		{"null byte", "PEPTIDE1{A}\x00$$$$", true},
		{"tab", "PEPTIDE1{A}\t$$$$", true},
		{"too long", strings.Repeat("A", MaxNotationLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNotationInput(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNotationInput() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidatePolymerID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"PEPTIDE1", false},
		{"RNA12", false},
		{"CHEM3", false},

		{"", true},
		{"PEPTIDE", true},
		{"PEPTIDE0", true},
		{"DNA1", true},
		{"rna1", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidatePolymerID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePolymerID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSymbol(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"A", false},
		{"dR", false},
		{"meA", false},
		{"5'-Biotin", false},

		{"", true},
		{"A.G", true},
		{"A{", true},
		{strings.Repeat("x", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateSymbol(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSymbol(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "out.svg", false},
		{"nested", "diagrams/out.svg", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "../out.svg", true},
		{"backslash", "a\\b.svg", true},
		{"null byte", "a\x00.svg", true},
		{"too long", strings.Repeat("a", 501), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
