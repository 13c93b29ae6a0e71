// Package monomer provides the monomer database used to resolve symbols in
// polymer notation.
//
// Every monomer has a polymer type (PEPTIDE, RNA, CHEM), a kind (amino acid,
// sugar, phosphate, base, chemical), a chain role and a list of attachment
// ports. Ports R1 and R2 join backbone monomers; R3 and above carry branches
// and cross-links.
//
// A default library covering the standard amino acids, common nucleotide
// components and a handful of chemical modifiers is embedded in the binary.
// Additional entries are loaded from TOML and merged over it:
//
//	lib, err := monomer.LoadFile("custom.toml")
//	if err != nil {
//	    return err
//	}
//	db := monomer.Default().Merge(lib)
package monomer
