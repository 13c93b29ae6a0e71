package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/helmdraw/pkg/diagram"
	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/pipeline"
)

// visualizeCommand creates the visualize command for rendering a saved
// drawing.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "visualize <layout.json>",
		Short: "Render a drawing computed by 'layout'",
		Long: `Render a drawing computed by 'layout'.

The drawing holds every position, so this step only draws it. Only
schematic output is available here; node-link diagrams and DOT need the
structure itself and come from 'render'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if slices.Contains(opts.Formats, diagram.FormatDOT) {
				return errors.New(errors.ErrCodeInvalidFormat, "dot needs the structure; use 'render -f dot'")
			}
			return c.runVisualize(cmd.Context(), args[0], opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), pdf, png (comma-separated)")
	cmd.Flags().StringVar(&opts.Style, "style", "", "schematic style: simple (default), outline")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "PNG scale factor (default 2)")
	cmd.Flags().BoolVar(&opts.LoopGuides, "guides", false, "draw loop guide circles")
	cmd.Flags().BoolVar(&opts.Warnings, "warnings", false, "print layout warnings under the drawing")

	return cmd
}

func (c *CLI) runVisualize(ctx context.Context, path string, opts pipeline.Options, output string) error {
	d, err := diagram.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load drawing %s: %w", path, err)
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Notation = d.Notation
	opts.VizType = pipeline.VizSchematic
	opts.Logger = c.Logger
	c.Config.apply(&opts)

	spinner := newSpinner(ctx, "Drawing...")
	spinner.Start()
	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, nil, d, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return err
	}
	spinner.Stop()

	base := output
	if ext := filepath.Ext(base); pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" {
		base = strings.TrimSuffix(strings.TrimSuffix(path, filepath.Ext(path)), ".layout")
	}
	if err := writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		base:      base,
		output:    output,
	}); err != nil {
		return err
	}
	printStats(len(d.Chains), len(d.Nodes), len(d.Edges), cacheHit)
	return nil
}
