package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/pipeline"
)

type outlineOpts struct {
	source
	output   string
	format   string
	page     int
	detailed bool
}

// outlineCommand draws the block tree of a page for debugging.
func (c *CLI) outlineCommand() *cobra.Command {
	var opts outlineOpts

	cmd := &cobra.Command{
		Use:   "outline [file]",
		Short: "Draw the block tree of a page",
		Long: `Outline draws every reference a page makes as a Graphviz diagram, including
the dangling ids, shared nodes and cycles the renderers skip.

Formats: dot (Graphviz source), svg, png. PNG output requires rsvg-convert.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.args(args); err != nil {
				return err
			}
			if err := pipeline.ValidateOutlineFormat(opts.format); err != nil {
				return err
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runOutline(ctx, &opts, cmd.OutOrStdout())
		},
	}

	opts.source.flags(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout, <name>.png for png)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.FormatSVG, "output format: dot, svg, png")
	cmd.Flags().IntVar(&opts.page, "page", 0, "page index")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node ids and props")

	return cmd
}

func (c *CLI) runOutline(ctx context.Context, opts *outlineOpts, w io.Writer) error {
	r, id, err := opts.open(ctx, c)
	if err != nil {
		return err
	}
	defer r.Close()

	var spinner *Spinner
	if opts.format != pipeline.FormatDOT {
		spinner = newSpinnerWithContext(ctx, "Laying out outline...")
		spinner.Start()
	}
	data, err := r.Outline(ctx, id, pipeline.OutlineOptions{
		Page:     opts.page,
		Detailed: opts.detailed,
		Format:   opts.format,
	})
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	if err := writeOutput(w, binaryOutput(opts.output, opts.format, opts.source, id), data); err != nil {
		return err
	}
	loggerFromContext(ctx).Debug(fmt.Sprintf("outline of %s", id), "format", opts.format, "bytes", len(data))
	return nil
}
