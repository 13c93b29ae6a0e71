package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/helmdraw/pkg/diagram"
	"github.com/matzehuels/helmdraw/pkg/pipeline"
)

// layoutCommand creates the layout command for computing drawings.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		refresh bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout <notation|file|->",
		Short: "Compute the 2D layout of a structure",
		Long: `Compute the 2D layout of a structure.

The layout command classifies the structure's motif (linear, hairpin,
dumbbell or complementary strands), places every monomer and writes the
drawing as JSON (same format as 'render -f json'). The drawing can be turned
into SVG, PDF or PNG with 'visualize'.

Results are cached by canonical notation, so equivalent spellings share one
cache entry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Refresh = refresh
			return c.runLayout(cmd.Context(), args[0], opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json, stdout for literal notation)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")
	addLayoutFlags(cmd, &opts)

	return cmd
}

// addLayoutFlags binds the geometry options. Zero keeps the configured or
// built-in value.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().Float64Var(&opts.Spacing, "spacing", 0, "distance between consecutive backbone monomers")
	cmd.Flags().Float64Var(&opts.BranchOffset, "branch-offset", 0, "distance from a backbone monomer to its branch")
	cmd.Flags().Float64Var(&opts.StrandGap, "strand-gap", 0, "distance between paired strands")
	cmd.Flags().Float64Var(&opts.RowGap, "row-gap", 0, "distance between unpaired chains")
	cmd.Flags().Float64Var(&opts.DockOffset, "dock-offset", 0, "distance of docked chemical modifiers")
	cmd.Flags().IntVar(&opts.MaxOverlapIterations, "max-overlap-iterations", 0, "cap on overlap resolution passes")
}

func (c *CLI) runLayout(ctx context.Context, arg string, opts pipeline.Options, output string) error {
	in, err := readInput(arg)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Notation = in.text
	opts.Logger = c.Logger
	c.Config.apply(&opts)

	spinner := newSpinner(ctx, "Computing layout...")
	spinner.Start()
	res, err := runner.Layout(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, err := diagram.Marshal(res.Drawing)
	if err != nil {
		return err
	}
	if output == "" && in.path != "" {
		output = basePath("", in) + ".layout.json"
	}
	if err := writeOutput(output, data); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete: %s", StyleHighlight.Render(res.Drawing.Motif.String()))
	if output != "" {
		printFile(output)
	}
	printStats(res.Stats.ChainCount, res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.LayoutHit)
	printWarnings(res.Drawing.Warnings)
	if output != "" {
		printNewline()
		printNextStep("Render", appName+" visualize "+output)
	}
	return nil
}
