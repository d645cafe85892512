package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/pipeline"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage"
)

// draftCommand groups the draft store subcommands.
func (c *CLI) draftCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Read and write drafts in the configured store",
	}

	cmd.AddCommand(c.draftGetCommand())
	cmd.AddCommand(c.draftPutCommand())
	cmd.AddCommand(c.draftSaveCommand())
	cmd.AddCommand(c.draftEditorCommand())
	cmd.AddCommand(c.draftListCommand())
	cmd.AddCommand(c.draftDeleteCommand())

	return cmd
}

// withRunner opens the configured store for the duration of fn.
func (c *CLI) withRunner(ctx context.Context, fn func(*pipeline.Runner) error) error {
	r, _, err := c.newRunner(ctx, true)
	if err != nil {
		return err
	}
	defer r.Close()
	return fn(r)
}

func (c *CLI) draftGetCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get <project>",
		Short: "Print the stored document of a project",
		Long: `Get loads a draft, upgrading legacy content, and prints it as a document.
Use --raw to print the stored bytes unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetBool("raw")
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.withRunner(ctx, func(r *pipeline.Runner) error {
				return runDraftGet(ctx, r, args[0], raw, output, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().Bool("raw", false, "print stored content as is")
	return cmd
}

func runDraftGet(ctx context.Context, r *pipeline.Runner, id string, raw bool, output string, w io.Writer) error {
	if raw {
		draft, err := r.Fetch(ctx, id)
		if err != nil {
			return err
		}
		return writeOutput(w, output, draft.Content)
	}
	doc, _, err := r.Load(ctx, id)
	if err != nil {
		return err
	}
	data, err := marshalDocument(doc)
	if err != nil {
		return err
	}
	return writeOutput(w, output, data)
}

func (c *CLI) draftPutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put <project> <document.json>",
		Short: "Store a document as the draft of a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.withRunner(ctx, func(r *pipeline.Runner) error {
				doc, err := r.PutDocument(ctx, args[0], data)
				if err != nil {
					return err
				}
				printSuccess("Stored %s", args[0])
				printStats(len(doc.Pages), doc.NodeCount(), len(doc.Orphans()))
				return nil
			})
		},
	}
}

func (c *CLI) draftSaveCommand() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "save <project> <editor.json>",
		Short: "Save an editor graph into a page of a project",
		Long: `Save serializes an editor graph strictly and stores it as one page of the
project's document, creating the project when it has no draft. A page index
equal to the page count appends a page.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.withRunner(ctx, func(r *pipeline.Runner) error {
				doc, err := r.Save(ctx, args[0], data, page)
				if err != nil {
					return err
				}
				printSuccess("Saved page %d of %s", page, args[0])
				printStats(len(doc.Pages), doc.NodeCount(), len(doc.Orphans()))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "page index to replace")
	return cmd
}

func (c *CLI) draftEditorCommand() *cobra.Command {
	var (
		page   int
		output string
	)
	cmd := &cobra.Command{
		Use:   "editor <project>",
		Short: "Print one page of a project as an editor graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.withRunner(ctx, func(r *pipeline.Runner) error {
				data, err := r.Editor(ctx, args[0], page)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), output, data)
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "page index")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *CLI) draftListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects with a draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.withRunner(ctx, func(r *pipeline.Runner) error {
				lister, ok := r.Store.(storage.Lister)
				if !ok {
					return fmt.Errorf("the configured store cannot list projects")
				}
				ids, err := lister.ListProjects(ctx)
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	}
}

func (c *CLI) draftDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project>",
		Short: "Delete the draft of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.withRunner(ctx, func(r *pipeline.Runner) error {
				deleter, ok := r.Store.(storage.Deleter)
				if !ok {
					return fmt.Errorf("the configured store cannot delete drafts")
				}
				if err := storage.ValidateProjectID(args[0]); err != nil {
					return err
				}
				if err := deleter.DeleteDraft(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Deleted %s", args[0])
				return nil
			})
		},
	}
}
