// Package notation parses and formats the textual polymer notation.
//
// A notation string has four "$"-separated sections followed by an optional
// version trailer:
//
//	RNA1{R(A)P.R(C)P.R(G)}|RNA2{R(C)P.R(G)}$RNA1,RNA2,2:pair-5:pair$$RNA1{sense}$V2.0
//	└──────── polymers ──────────────────┘ └──── pairs ─────────┘  └ annotations ┘
//
// The sections are, in order: polymers, connections, pairs and annotations.
// Polymers are written as ID{element.element...} where ID is PEPTIDE, RNA or
// CHEM followed by a positive number. A nucleotide element such as R(A)P
// contributes three monomers: the sugar, the base in parentheses and the
// trailing linker. Symbols longer than one character are bracketed: [dR].
//
// Positions in connections, pairs and annotations are 1-based and count every
// monomer of the polymer, including bases.
//
// This package only deals with text. It checks that references point at
// existing polymers and positions but does not resolve monomer symbols; that
// is the job of the translator, which builds the monomer graph.
package notation
