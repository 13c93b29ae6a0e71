package notation

import (
	"testing"

	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/monomer"
)

func TestParsePeptide(t *testing.T) {
	doc, err := Parse("PEPTIDE1{A.G.[meA]}$$$$")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Polymers) != 1 {
		t.Fatalf("polymers = %d, want 1", len(doc.Polymers))
	}
	p := doc.Polymers[0]
	if p.ID != "PEPTIDE1" || p.Type != monomer.Peptide {
		t.Errorf("polymer = %s/%s", p.ID, p.Type)
	}
	want := []string{"A", "G", "meA"}
	if len(p.Units) != len(want) {
		t.Fatalf("units = %d, want %d", len(p.Units), len(want))
	}
	for i, u := range p.Units {
		if u.Symbol != want[i] || u.Branch {
			t.Errorf("unit %d = %+v, want backbone %s", i, u, want[i])
		}
	}
	if doc.Version != "" {
		t.Errorf("Version = %q, want empty", doc.Version)
	}
}

func TestParseNucleotideUnits(t *testing.T) {
	doc, err := Parse("RNA1{R(A)P.[dR](T)P.R(G)}$$$$V2.0")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	units := doc.Polymers[0].Units
	want := []Unit{
		{"R", false}, {"A", true}, {"P", false},
		{"dR", false}, {"T", true}, {"P", false},
		{"R", false}, {"G", true},
	}
	if len(units) != len(want) {
		t.Fatalf("units = %d, want %d", len(units), len(want))
	}
	for i := range want {
		if units[i] != want[i] {
			t.Errorf("unit %d = %+v, want %+v", i, units[i], want[i])
		}
	}
	if doc.Version != Version2 {
		t.Errorf("Version = %q, want %q", doc.Version, Version2)
	}
}

func TestParseLinks(t *testing.T) {
	text := "RNA1{R(A)P.R(C)}|RNA2{R(G)P.R(U)}|CHEM1{[Biotin]}" +
		"$RNA1,CHEM1,1:R1-1:R1|RNA1,RNA2,5:pair-2:pair" +
		"$RNA1,RNA2,2:pair-5:pair" +
		"$RNA1{sense}|RNA2:1{5'}$"
	doc, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Connections) != 1 {
		t.Fatalf("connections = %d, want 1", len(doc.Connections))
	}
	c := doc.Connections[0]
	if c.From != "RNA1" || c.To != "CHEM1" || c.FromPos != 1 || c.FromPort != monomer.R1 || c.ToPort != monomer.R1 {
		t.Errorf("connection = %+v", c)
	}
	// pair written in the connection section is moved to Pairs
	if len(doc.Pairs) != 2 {
		t.Fatalf("pairs = %d, want 2", len(doc.Pairs))
	}
	if doc.Pairs[0] != (Pair{From: "RNA1", FromPos: 5, To: "RNA2", ToPos: 2}) {
		t.Errorf("pair[0] = %+v", doc.Pairs[0])
	}
	if len(doc.Annotations) != 2 {
		t.Fatalf("annotations = %d, want 2", len(doc.Annotations))
	}
	if a := doc.Annotations[1]; a.Polymer != "RNA2" || a.Pos != 1 || a.Text != "5'" {
		t.Errorf("annotation[1] = %+v", a)
	}
	if doc.Polymers[2].Units[0].Symbol != "Biotin" {
		t.Errorf("chem symbol = %q", doc.Polymers[2].Units[0].Symbol)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		code errors.Code
	}{
		{"empty", "", errors.ErrCodeInvalidInput},
		{"missing sections", "PEPTIDE1{A}$$", errors.ErrCodeNotationSyntax},
		{"too many sections", "PEPTIDE1{A}$$$$V2.0$", errors.ErrCodeNotationSyntax},
		{"bad version", "PEPTIDE1{A}$$$$V9", errors.ErrCodeNotationSyntax},
		{"no polymers", "$$$$", errors.ErrCodeNotationSyntax},
		{"bad id", "PROTEIN1{A}$$$$", errors.ErrCodeNotationSyntax},
		{"unterminated polymer", "PEPTIDE1{A.G$$$$", errors.ErrCodeNotationSyntax},
		{"empty element", "PEPTIDE1{A..G}$$$$", errors.ErrCodeNotationSyntax},
		{"peptide branch", "PEPTIDE1{A(G)}$$$$", errors.ErrCodeNotationSyntax},
		{"unbracketed multi", "PEPTIDE1{AG}$$$$", errors.ErrCodeNotationSyntax},
		{"missing paren", "RNA1{R(A}$$$$", errors.ErrCodeNotationSyntax},
		{"duplicate id", "PEPTIDE1{A}|PEPTIDE1{G}$$$$", errors.ErrCodeNotationSyntax},
		{"unknown polymer ref", "PEPTIDE1{A.C}$PEPTIDE1,PEPTIDE2,1:R3-1:R3$$$", errors.ErrCodeNotationSyntax},
		{"position out of range", "PEPTIDE1{A.C}$PEPTIDE1,PEPTIDE1,1:R3-3:R3$$$", errors.ErrCodeNotationSyntax},
		{"bad port", "PEPTIDE1{A.C}$PEPTIDE1,PEPTIDE1,1:X3-2:R3$$$", errors.ErrCodeNotationSyntax},
		{"half pair", "RNA1{R(A)}$RNA1,RNA1,2:pair-1:R1$$$", errors.ErrCodeNotationSyntax},
		{"pair section port", "RNA1{R(A)P.R(U)}$$RNA1,RNA1,2:R1-5:R1$$", errors.ErrCodeNotationSyntax},
		{"bad annotation", "PEPTIDE1{A}$$$PEPTIDE1$", errors.ErrCodeNotationSyntax},
		{"annotation position", "PEPTIDE1{A}$$$PEPTIDE1:4{x}$", errors.ErrCodeNotationSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.text)
			if err == nil {
				t.Fatalf("Parse(%q) = %+v, want error", tt.text, doc)
			}
			if doc != nil {
				t.Error("partial document returned on error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %v, want %v (%v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestSyntaxErrorFragment(t *testing.T) {
	_, err := Parse("PEPTIDE1{A.G}|DNA1{A}$$$$")
	var e *errors.Error
	if !errors.As(err, &e) {
		t.Fatalf("error type = %T", err)
	}
	if e.Fragment != "DNA1" {
		t.Errorf("Fragment = %q, want %q", e.Fragment, "DNA1")
	}
}

func TestFormatRoundTrip(t *testing.T) {
	tests := []string{
		"PEPTIDE1{A.G.C}$$$$",
		"PEPTIDE1{A.[meA].C}$$$$V2.0",
		"RNA1{R(A)P.R(C)P.R(G)}$$$$",
		"RNA1{R(A)P.R(C)}|RNA2{R(G)P.R(U)}$$RNA1,RNA2,2:pair-5:pair|RNA1,RNA2,5:pair-2:pair$$",
		"PEPTIDE1{C.A.C}|CHEM1{[Biotin]}$PEPTIDE1,PEPTIDE1,1:R3-3:R3|PEPTIDE1,CHEM1,3:R2-1:R1$$PEPTIDE1{cyclic}|PEPTIDE1:2{x}$",
		"RNA1{R(A).R(C)}$$$$",
		"RNA1{P.R(A)P.R}$$$$",
		"PEPTIDE1{[5].A.[*]}$$$$",
		"RNA1{R([_])P.R(['])}$$$$",
	}
	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			doc, err := Parse(text)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := Format(doc); got != text {
				t.Errorf("Format() = %q, want %q", got, text)
			}
		})
	}
}

func TestFormatNormalizesElements(t *testing.T) {
	// R(A).P and R(A)P describe the same monomers
	doc, err := Parse("RNA1{R(A).P.R(C)}$$$$")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, want := Format(doc), "RNA1{R(A)P.R(C)}$$$$"; got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}
