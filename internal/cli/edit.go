package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/helmdraw/pkg/document"
	"github.com/matzehuels/helmdraw/pkg/edit"
)

// editFlags are shared by the non-interactive edit commands.
type editFlags struct {
	output string
}

func (f *editFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write the edited notation to a file (stdout if empty)")
}

func (c *CLI) deleteCommand() *cobra.Command {
	var (
		flags editFlags
		nodes []string
		edges []string
	)

	cmd := &cobra.Command{
		Use:   "delete <notation|file|->",
		Short: "Delete monomers and bonds",
		Long: `Delete monomers and bonds and print the edited notation.

Nodes are named POLYMER:position ("RNA1:3") and edges by the nodes they
join ("RNA1:2-RNA2:5"). Positions count every monomer as written in the
canonical notation. Deleting a backbone monomer removes its branches too and
splits the chain when it sat in the middle.`,
		Example: `  helmdraw delete 'PEPTIDE1{A.G.C.K}$$$$' --node PEPTIDE1:2
  helmdraw delete duplex.helm --edge RNA1:2-RNA2:5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), args[0], flags, "delete", func(ctx context.Context, d *document.Document) (*edit.Result, error) {
				return d.Delete(ctx, nodes, edges)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&nodes, "node", "n", nil, "node to delete (repeatable)")
	cmd.Flags().StringSliceVarP(&edges, "edge", "e", nil, "edge to delete (repeatable)")
	flags.bind(cmd)
	return cmd
}

func (c *CLI) replaceCommand() *cobra.Command {
	var flags editFlags

	cmd := &cobra.Command{
		Use:   "replace <notation|file|-> <node> <symbol>",
		Short: "Swap the monomer at a node",
		Long: `Swap the monomer at a node and print the edited notation.

The new monomer must have the same polymer type and role, and offer every
port the node currently bonds through.`,
		Example: `  helmdraw replace 'PEPTIDE1{A.G.C}$$$$' PEPTIDE1:2 Nle`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), args[0], flags, "replace", func(ctx context.Context, d *document.Document) (*edit.Result, error) {
				return d.Replace(ctx, args[1], args[2])
			})
		},
	}

	flags.bind(cmd)
	return cmd
}

func (c *CLI) connectCommand() *cobra.Command {
	var (
		flags editFlags
		req   document.LinkRequest
	)

	cmd := &cobra.Command{
		Use:   "connect <notation|file|-> <from> <to>",
		Short: "Add a bond or base pair between two monomers",
		Long: `Add a bond or base pair between two monomers and print the edited
notation.

Bonds name a free port on each side. Pairs (--pair) join two unpaired bases
and take no ports.`,
		Example: `  helmdraw connect 'PEPTIDE1{C.A.C}$$$$' PEPTIDE1:1 PEPTIDE1:3 --from-port R3 --to-port R3
  helmdraw connect strands.helm RNA1:2 RNA2:5 --pair`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.From, req.To = args[1], args[2]
			return c.runEdit(cmd.Context(), args[0], flags, "connect", func(ctx context.Context, d *document.Document) (*edit.Result, error) {
				return d.Connect(ctx, req)
			})
		},
	}

	cmd.Flags().StringVar(&req.FromPort, "from-port", "", "port on the first monomer (R1, R2, R3...)")
	cmd.Flags().StringVar(&req.ToPort, "to-port", "", "port on the second monomer")
	cmd.Flags().BoolVar(&req.Pair, "pair", false, "add a base pair instead of a bond")
	flags.bind(cmd)
	return cmd
}

// runEdit opens the input as a document, applies fn and writes the
// resulting notation.
func (c *CLI) runEdit(ctx context.Context, arg string, flags editFlags, op string, fn func(context.Context, *document.Document) (*edit.Result, error)) error {
	in, err := readInput(arg)
	if err != nil {
		return err
	}
	store := document.NewStore(c.monomers(), document.WithLogger(c.Logger))
	d, err := store.Create(ctx, in.text)
	if err != nil {
		return err
	}

	res, err := fn(ctx, d)
	if err != nil {
		return err
	}
	c.Logger.Debug("edit applied", "op", op, "added_starts", len(res.AddedStarts), "removed_starts", len(res.RemovedStarts))

	if err := writeOutput(flags.output, []byte(res.Notation+"\n")); err != nil {
		return err
	}
	snap := d.Snapshot()
	if flags.output != "" {
		printSuccess("Applied %s", op)
		printFile(flags.output)
	}
	if n := len(res.AddedStarts); n > 0 {
		printInfo("%s added", plural(n, "chain"))
	}
	if n := len(res.RemovedStarts); n > 0 {
		printInfo("%s removed", plural(n, "chain"))
	}
	c.Logger.Debug("edited structure", "chains", snap.Chains, "nodes", snap.Nodes, "edges", snap.Edges)
	return nil
}
