package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/render/page"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/pipeline"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	source
	output   string // output file (default stdout)
	page     int    // page index
	mode     string // "public" or "embedded"
	fragment bool   // omit the HTML document shell
	title    string // <title> of the shell
	maxDepth int    // nesting cap, 0 for the configured default
	refresh  bool   // drop the cached page first
	watch    bool   // re-render when the file changes
	pick     bool   // choose the page interactively
}

// renderCommand renders one page of a document as HTML.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a document page as HTML",
		Long: `Render converts one page of a document to HTML.

The input may be a document, a legacy editor graph or a JSON string wrapping
either. Public mode produces storefront markup; embedded mode keeps node ids
and hidden blocks for the editor canvas.

With --watch the file is rendered again whenever it changes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.args(args); err != nil {
				return err
			}
			if opts.watch && opts.file == "" {
				return fmt.Errorf("--watch needs a file argument")
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runRender(ctx, &opts, cmd.OutOrStdout())
		},
	}

	opts.source.flags(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&opts.page, "page", 0, "page index")
	cmd.Flags().StringVar(&opts.mode, "mode", "public", "render mode: public, embedded")
	cmd.Flags().BoolVar(&opts.fragment, "fragment", false, "emit only the page element, without <html> shell")
	cmd.Flags().StringVar(&opts.title, "title", "", "document title (default from config)")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "maximum block nesting to render")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore the cached page")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-render when the file changes")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose the page interactively")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts *renderOpts, w io.Writer) error {
	logger := loggerFromContext(ctx)

	mode, err := page.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	r, id, err := opts.open(ctx, c)
	if err != nil {
		return err
	}
	defer r.Close()

	if opts.pick {
		doc, _, err := r.Load(ctx, id)
		if err != nil {
			return err
		}
		idx, ok, err := pickPage(ctx, doc)
		if err != nil {
			return err
		}
		if !ok {
			printDetail("No selection made")
			return nil
		}
		opts.page = idx
	}

	pageOpts := pipeline.PageOptions{
		Page:     opts.page,
		Mode:     mode,
		Shell:    !opts.fragment,
		Title:    opts.title,
		MaxDepth: opts.maxDepth,
		Refresh:  opts.refresh,
	}
	render := func() error {
		prog := newProgress(logger)
		html, err := r.RenderPage(ctx, id, pageOpts)
		if err != nil {
			return err
		}
		if err := writeOutput(w, opts.output, html); err != nil {
			return err
		}
		prog.done(fmt.Sprintf("Rendered page %d of %s", opts.page, id))
		return nil
	}

	if !opts.watch {
		return render()
	}
	if err := render(); err != nil {
		logger.Error("render failed", "err", err)
	}
	return watchFile(ctx, opts.file, func() error {
		if err := loadFile(ctx, r.Store, opts.file); err != nil {
			return err
		}
		return render()
	})
}

// watchFile calls onChange after each write to path until ctx is done.
// Failures of onChange are logged; watching continues.
func watchFile(ctx context.Context, path string, onChange func() error) error {
	logger := loggerFromContext(ctx)

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so the directory is watched.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	printInfo("Watching %s", path)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if name, _ := filepath.Abs(event.Name); name != abs {
				continue
			}
			pending = time.After(watchDebounce)
		case <-pending:
			pending = nil
			logger.Debug("file changed", "path", path)
			if err := onChange(); err != nil {
				logger.Error("render failed", "err", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}
