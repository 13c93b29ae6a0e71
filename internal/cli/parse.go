package cli

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/graph"
	pkgio "github.com/matzehuels/helmdraw/pkg/io"
	"github.com/matzehuels/helmdraw/pkg/pipeline"
)

// parseCommand creates the parse command, which dumps the monomer graph.
func (c *CLI) parseCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "parse <notation|file|->",
		Short: "Parse notation and write the monomer graph as JSON",
		Long: `Parse notation and write the monomer graph as JSON.

The graph lists every chain with its starting node, every monomer with its
ports and every bond or pair with its kind. The file can be read back by any
command that takes notation.`,
		Example: `  helmdraw parse 'PEPTIDE1{A.G.C}$$$$'
  helmdraw parse structure.helm -o structure.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func (c *CLI) runParse(ctx context.Context, arg, output string) error {
	m, _, err := c.parse(ctx, arg)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := pkgio.WriteJSON(m, &buf); err != nil {
		return err
	}
	if err := writeOutput(output, buf.Bytes()); err != nil {
		return err
	}
	if output != "" {
		printSuccess("Parsed structure")
		printFile(output)
		g := m.Graph()
		printStats(m.StartCount(), g.NodeCount(), g.EdgeCount(), false)
	}
	return nil
}

// canonicalCommand creates the canonical command.
func (c *CLI) canonicalCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "canonical <notation|file|->",
		Short: "Print the canonical form of notation",
		Long: `Print the canonical form of notation.

Equivalent spellings of one structure have the same canonical form. With
--check the command prints nothing and fails when the input is not already
canonical.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(args[0])
			if err != nil {
				return err
			}
			_, canonical, err := pipeline.Parse(cmd.Context(), c.monomers(), in.text)
			if err != nil {
				return err
			}
			if check {
				if canonical != in.text {
					return errors.New(errors.ErrCodeInvalidInput, "not canonical, expected %s", canonical)
				}
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), canonical)
			return err
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "fail unless the input is already canonical")
	return cmd
}

// parse reads one argument and parses it into a structure and its
// canonical notation.
func (c *CLI) parse(ctx context.Context, arg string) (*graph.Manager, string, error) {
	in, err := readInput(arg)
	if err != nil {
		return nil, "", err
	}
	if err := errors.ValidateNotationInput(in.text); err != nil {
		return nil, "", err
	}
	prog := newProgress(c.Logger)
	m, canonical, err := pipeline.Parse(ctx, c.monomers(), in.text)
	if err != nil {
		return nil, "", err
	}
	prog.done("Parsed notation", "chains", m.StartCount(), "nodes", m.Graph().NodeCount())
	return m, canonical, nil
}
