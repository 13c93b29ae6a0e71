package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/helmdraw/pkg/pipeline"
)

// renderCommand creates the render command, which runs the whole pipeline.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		outDir     string
		refresh    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render <notation|file|->...",
		Short: "Render structures to SVG, PDF, PNG, DOT or JSON",
		Long: `Render structures to SVG, PDF, PNG, DOT or JSON.

Render parses, lays out and draws each input in one go. Schematic drawings
(-t schematic) place monomers by motif; node-link diagrams (-t nodelink) are
laid out by Graphviz. DOT output is always the Graphviz source of the
monomer graph.

With several inputs the structures are rendered in parallel and written to
--out-dir, one file per input and format.`,
		Example: `  helmdraw render 'RNA1{R(A)P.R(C)P.R(G)}$$$$' -f svg > hairpin.svg
  helmdraw render duplex.helm -f svg,png --style outline --guides
  helmdraw render *.helm --out-dir drawings -f svg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			opts.Refresh = refresh
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if len(args) == 1 {
				return c.runRender(cmd.Context(), args[0], opts, output)
			}
			if output != "" {
				return fmt.Errorf("--output takes a single input; use --out-dir for %d inputs", len(args))
			}
			return c.runRenderBatch(cmd.Context(), args, opts, outDir)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "output directory for several inputs")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, pdf, png (comma-separated)")
	addRenderFlags(cmd, &opts)
	addLayoutFlags(cmd, &opts)

	return cmd
}

// addRenderFlags binds the drawing options.
func addRenderFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&opts.VizType, "type", "t", pipeline.DefaultVizType, "visualization type: schematic, nodelink")
	cmd.Flags().StringVar(&opts.Style, "style", "", "schematic style: simple (default), outline")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "PNG scale factor (default 2)")
	cmd.Flags().BoolVar(&opts.LoopGuides, "guides", false, "draw loop guide circles (schematic)")
	cmd.Flags().BoolVar(&opts.Warnings, "warnings", false, "print layout warnings under the drawing (schematic)")
	cmd.Flags().StringVar(&opts.Engine, "engine", "", "Graphviz engine: neato (default), dot (nodelink)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "label nodes with ports and roles (nodelink, dot)")
}

func (c *CLI) runRender(ctx context.Context, arg string, opts pipeline.Options, output string) error {
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

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s...", opts.VizType))
	spinner.Start()
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	toStdout := output == "" && in.path == "" && len(opts.Formats) == 1
	if toStdout {
		if err := writeOutput("", res.Artifacts[opts.Formats[0]]); err != nil {
			return err
		}
		printWarnings(res.Drawing.Warnings)
		return nil
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: res.Artifacts,
		formats:   opts.Formats,
		base:      basePath(output, in),
		output:    output,
		result:    res,
	})
}

func (c *CLI) runRenderBatch(ctx context.Context, args []string, opts pipeline.Options, outDir string) error {
	inputs := make([]input, len(args))
	all := make([]pipeline.Options, len(args))
	for i, arg := range args {
		in, err := readInput(arg)
		if err != nil {
			return err
		}
		inputs[i] = in
		o := opts
		o.Formats = slices.Clone(opts.Formats)
		o.Notation = in.text
		o.Logger = c.Logger
		c.Config.apply(&o)
		all[i] = o
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %d structures...", len(args)))
	spinner.Start()
	results, err := runner.ExecuteAll(ctx, all)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done("Rendered batch", "inputs", len(args))

	for i, res := range results {
		base, err := batchPath(outDir, inputs[i], i)
		if err != nil {
			return err
		}
		if err := writeArtifacts(artifactWriteParams{
			artifacts: res.Artifacts,
			formats:   opts.Formats,
			base:      base,
			result:    res,
		}); err != nil {
			return err
		}
	}
	return nil
}

// artifactWriteParams describes one run's artifacts and where they go.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	base      string
	output    string // used as is for a single format
	result    *pipeline.Result
}

// writeArtifacts writes each artifact to <base>.<format>, or to output when
// there is only one.
func writeArtifacts(p artifactWriteParams) error {
	var paths []string
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			continue
		}
		path := p.base + "." + format
		if len(p.formats) == 1 && p.output != "" {
			path = p.output
		}
		if err := writeOutput(path, data); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	printSuccess("Rendered %s", StyleHighlight.Render(p.base))
	for _, path := range paths {
		printFile(path)
	}
	if res := p.result; res != nil {
		printKeyValue("motif", res.Drawing.Motif.String())
		printStats(res.Stats.ChainCount, res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit)
		printWarnings(res.Drawing.Warnings)
	}
	return nil
}
