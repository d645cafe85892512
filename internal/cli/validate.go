package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/editorgraph"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/serialize"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
)

// validateCommand reports every violation of the document format.
func (c *CLI) validateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a document or editor graph for problems",
		Long: `Validate lists every problem of a document at once: version, page ids,
node records and tree structure (dangling ids, cycles, shared nodes).

An editor graph is checked by a strict serialization. Orphaned nodes are
reported as a warning; they are not invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return runValidate(ctx, args[0], data)
		},
	}
	return cmd
}

// validation is the outcome of checking one input.
type validation struct {
	shape    serialize.Shape
	doc      *document.Document
	problems []string
}

func runValidate(ctx context.Context, name string, data []byte) error {
	v := check(data)
	loggerFromContext(ctx).Debug("validated", "file", name, "shape", v.shape, "problems", len(v.problems))

	fmt.Println(StyleTitle.Render(name))
	printKeyValue("Format", v.shape.String())
	if v.doc != nil {
		printStats(len(v.doc.Pages), v.doc.NodeCount(), len(v.doc.Orphans()))
	}
	printNewline()

	if len(v.problems) == 0 {
		printSuccess("No problems found")
		if v.doc != nil {
			if orphans := v.doc.Orphans(); len(orphans) > 0 {
				printWarning("%d nodes are not reachable from any page", len(orphans))
			}
		}
		return nil
	}

	fmt.Println(problemTable(v.problems))
	return fmt.Errorf("%s found", plural(len(v.problems), "problem"))
}

// check decodes data in the shape it was detected as and collects every
// problem.
func check(data []byte) validation {
	v := validation{shape: serialize.Detect(data)}

	switch v.shape {
	case serialize.ShapeEditorGraph:
		g, err := editorgraph.Parse(data)
		if err != nil {
			v.problems = messages(err)
			return v
		}
		doc, err := serialize.FromGraph(g)
		if err != nil {
			v.problems = messages(err)
			return v
		}
		v.doc = doc
	default:
		doc, err := serialize.Normalize(data)
		if err != nil {
			v.problems = messages(err)
			return v
		}
		v.doc = doc
		v.problems = messages(document.Validate(doc))
	}
	return v
}

func messages(err error) []string {
	var out []string
	for _, p := range document.Problems(err) {
		msg := errors.UserMessage(p)
		if cause := stderrors.Unwrap(p); cause != nil {
			msg += ": " + cause.Error()
		}
		out = append(out, msg)
	}
	return out
}

// problemTable renders problems as a numbered table.
func problemTable(problems []string) string {
	rows := make([][]string, len(problems))
	for i, p := range problems {
		rows[i] = []string{strconv.Itoa(i + 1), p}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Problem").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return StyleDim
			}
			return StyleError
		}).
		String()
}
