package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/editorgraph"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/serialize"
)

// serializeOpts holds the flags of the serialize command.
type serializeOpts struct {
	output  string
	lenient bool
}

// serializeCommand converts an editor graph to a document.
func (c *CLI) serializeCommand() *cobra.Command {
	var opts serializeOpts

	cmd := &cobra.Command{
		Use:   "serialize [editor.json]",
		Short: "Convert an editor graph to a document",
		Long: `Serialize converts a raw editor graph (node id -> node, with a ROOT entry)
into a single-page document.

Strict mode rejects dangling ids, cycles, shared nodes and untyped nodes.
With --lenient they are repaired instead. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return runSerialize(ctx, data, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.lenient, "lenient", false, "repair corrupt graphs instead of failing")

	return cmd
}

func runSerialize(ctx context.Context, data []byte, opts serializeOpts, w io.Writer) error {
	logger := loggerFromContext(ctx)

	g, err := editorgraph.Parse(data)
	if err != nil {
		return err
	}
	convOpts := []serialize.Option{serialize.WithLogger(logger)}
	if opts.lenient {
		convOpts = append(convOpts, serialize.Lenient())
	}
	doc, err := serialize.FromGraph(g, convOpts...)
	if err != nil {
		return err
	}
	logger.Debug("serialized", "graph_nodes", g.Len(), "nodes", doc.NodeCount())

	out, err := marshalDocument(doc)
	if err != nil {
		return err
	}
	return writeOutput(w, opts.output, out)
}

// marshalDocument encodes doc as indented JSON.
func marshalDocument(doc *document.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := document.Write(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deserializeOpts holds the flags of the deserialize command.
type deserializeOpts struct {
	output   string
	page     int
	freshIDs bool
}

// deserializeCommand converts one page of a document to an editor graph.
func (c *CLI) deserializeCommand() *cobra.Command {
	var opts deserializeOpts

	cmd := &cobra.Command{
		Use:   "deserialize [document.json]",
		Short: "Convert a document page to an editor graph",
		Long: `Deserialize rebuilds the editor graph of one page of a document, ready to
be loaded back into the editor.

Legacy content (a raw editor graph or a JSON string wrapping a document) is
accepted. --fresh-ids assigns new ids to every node, for duplicating a page.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return runDeserialize(ctx, data, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&opts.page, "page", 0, "page index")
	cmd.Flags().BoolVar(&opts.freshIDs, "fresh-ids", false, "assign new node ids")

	return cmd
}

func runDeserialize(ctx context.Context, data []byte, opts deserializeOpts, w io.Writer) error {
	logger := loggerFromContext(ctx)

	doc, err := serialize.Normalize(data, serialize.WithLogger(logger))
	if err != nil {
		return err
	}
	convOpts := []serialize.Option{serialize.WithLogger(logger)}
	if opts.freshIDs {
		convOpts = append(convOpts, serialize.WithFreshIDs(nil))
	}
	g, err := serialize.ToGraph(doc, opts.page, convOpts...)
	if err != nil {
		return fmt.Errorf("page %d: %w", opts.page, err)
	}

	var buf bytes.Buffer
	if err := editorgraph.Write(g, &buf); err != nil {
		return err
	}
	return writeOutput(w, opts.output, buf.Bytes())
}
