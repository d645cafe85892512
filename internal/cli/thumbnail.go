package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/render/thumbnail"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/pipeline"
)

// thumbnailOpts holds the command-line flags for the thumbnail command.
type thumbnailOpts struct {
	source
	output string
	format string
	page   int
	width  float64
	height float64
	limits thumbnail.Limits
}

// thumbnailCommand renders the dashboard preview of a document.
func (c *CLI) thumbnailCommand() *cobra.Command {
	var opts thumbnailOpts

	cmd := &cobra.Command{
		Use:   "thumbnail [file]",
		Short: "Render a dashboard preview",
		Long: `Thumbnail draws a small, cheap preview of a page: the first top-level blocks,
a bounded number of children and a short line of text per block.

Content that cannot be previewed yields a placeholder, not an error.
PNG output requires rsvg-convert.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.args(args); err != nil {
				return err
			}
			if err := pipeline.ValidateThumbnailFormat(opts.format); err != nil {
				return err
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runThumbnail(ctx, &opts, cmd.OutOrStdout())
		},
	}

	opts.source.flags(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout, <name>.png for png)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.FormatSVG, "output format: svg, png, json")
	cmd.Flags().IntVar(&opts.page, "page", 0, "page index")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "image width (svg, png)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "image height (svg, png)")
	cmd.Flags().IntVar(&opts.limits.MaxTopLevel, "max-top-level", 0, "top-level blocks to draw (default from config)")
	cmd.Flags().IntVar(&opts.limits.MaxChildren, "max-children", 0, "children to draw per block (default from config)")
	cmd.Flags().IntVar(&opts.limits.MaxDepth, "max-depth", 0, "nesting levels to draw (default from config)")
	cmd.Flags().IntVar(&opts.limits.TextLimit, "text-limit", 0, "characters of text per block (default from config)")

	return cmd
}

func (c *CLI) runThumbnail(ctx context.Context, opts *thumbnailOpts, w io.Writer) error {
	r, id, err := opts.open(ctx, c)
	if err != nil {
		return err
	}
	defer r.Close()

	prog := newProgress(loggerFromContext(ctx))
	data, err := r.Thumbnail(ctx, id, pipeline.ThumbnailOptions{
		Page:   opts.page,
		Format: opts.format,
		Width:  opts.width,
		Height: opts.height,
		Limits: opts.limits,
	})
	if err != nil {
		return err
	}
	if err := writeOutput(w, binaryOutput(opts.output, opts.format, opts.source, id), data); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s thumbnail of %s", opts.format, id))
	return nil
}

// binaryOutput keeps PNG bytes off the terminal: without -o they go to a
// file named after the input.
func binaryOutput(output, format string, src source, id string) string {
	if output != "" || format != pipeline.FormatPNG {
		return output
	}
	if src.file != "" && src.file != "-" {
		return outputPath(src.file, format)
	}
	return id + "." + format
}
