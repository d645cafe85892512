package cli

import (
	"github.com/spf13/cobra"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/observability"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/server"
)

// serveCommand runs the HTTP API until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve storefront pages, thumbnails and the editor API",
		Long: `Serve starts an HTTP server over the configured draft store.

Storefront pages are served at /sites/{project}, dashboard thumbnails at
/thumbnails/{project}.svg and the editor API under /api/projects.
The server shuts down gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			r, cfg, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer r.Close()

			if addr != "" {
				cfg.Server.Addr = addr
			}
			observability.NewLogHooks(c.Logger).Register()
			defer observability.Reset()

			printInfo("Storage: %s · Cache: %s", cfg.Storage.Backend, cacheBackend(cfg.Cache.Backend, noCache))
			return server.New(r, cfg.Server, c.Logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func cacheBackend(name string, disabled bool) string {
	if disabled {
		return "none"
	}
	return name
}
