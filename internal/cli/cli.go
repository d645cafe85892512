package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/buildinfo"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/cache"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/config"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/pipeline"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage/backends"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage/memory"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "sitebuilder"

	// configEnv names a config file when --config is not given.
	configEnv = "SITEBUILDER_CONFIG"

	// localProject is the project id under which a file argument is loaded.
	localProject = "local"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath  string
	storage     string
	storagePath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Sitebuilder serializes and renders page builder documents",
		Long:         `Sitebuilder converts editor graphs to portable documents and back, and renders documents as storefront HTML, dashboard thumbnails and debug outlines.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $"+configEnv+")")
	root.PersistentFlags().StringVar(&c.storage, "storage", "", "draft store backend (overrides config)")
	root.PersistentFlags().StringVar(&c.storagePath, "storage-path", "", "draft directory or database file (overrides config)")

	root.AddCommand(c.serializeCommand())
	root.AddCommand(c.deserializeCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.thumbnailCommand())
	root.AddCommand(c.outlineCommand())
	root.AddCommand(c.draftCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file named by --config or $SITEBUILDER_CONFIG
// and applies the storage flags on top. Without a file the defaults apply.
func (c *CLI) loadConfig() (*config.Config, error) {
	path := c.configPath
	if path == "" {
		path = os.Getenv(configEnv)
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.storage != "" {
		cfg.Storage.Backend = c.storage
	}
	if c.storagePath != "" {
		cfg.Storage.Path = c.storagePath
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner over the configured draft store and
// artifact cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, *config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := backends.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}

	var ch cache.Cache = cache.NewNullCache()
	if !noCache {
		if ch, err = cache.Open(ctx, cfg.Cache); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("open %s cache: %w", cfg.Cache.Backend, err)
		}
	}
	return configure(pipeline.NewRunner(store, ch, nil, c.Logger), cfg), cfg, nil
}

// fileRunner creates an uncached runner whose only project, localProject,
// holds the content of path.
func (c *CLI) fileRunner(ctx context.Context, path string) (*pipeline.Runner, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	store := memory.NewStore()
	if err := loadFile(ctx, store, path); err != nil {
		return nil, err
	}
	return configure(pipeline.NewRunner(store, cache.NewNullCache(), nil, c.Logger), cfg), nil
}

func loadFile(ctx context.Context, store storage.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return store.SaveDraft(ctx, localProject, data)
}

func configure(r *pipeline.Runner, cfg *config.Config) *pipeline.Runner {
	r.Limits = cfg.Thumbnail
	r.Workers = cfg.Server.ThumbnailWorkers
	r.TTL = cfg.Cache.TTL.Duration
	r.Title = cfg.Render.Title
	r.MaxDepth = cfg.Render.MaxDepth
	return r
}

// source resolves the input of a render command: a file argument, or a
// project in the configured store when --project is set.
type source struct {
	file    string
	project string
	noCache bool
}

func (s *source) flags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.project, "project", "p", "", "render a project from the draft store instead of a file")
	cmd.Flags().BoolVar(&s.noCache, "no-cache", false, "disable the artifact cache (with --project)")
}

func (s *source) args(args []string) error {
	switch {
	case len(args) == 1 && s.project == "":
		s.file = args[0]
	case len(args) == 0 && s.project != "":
	case len(args) == 0:
		return fmt.Errorf("a file argument or --project is required")
	default:
		return fmt.Errorf("use either a file argument or --project, not both")
	}
	return nil
}

// open returns the runner and the project id to render.
func (s *source) open(ctx context.Context, c *CLI) (*pipeline.Runner, string, error) {
	if s.file != "" {
		r, err := c.fileRunner(ctx, s.file)
		return r, localProject, err
	}
	r, _, err := c.newRunner(ctx, s.noCache)
	return r, s.project, err
}
