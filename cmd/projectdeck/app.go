package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectdeck/internal/cache"
	"github.com/fyrsmithlabs/projectdeck/internal/config"
	"github.com/fyrsmithlabs/projectdeck/internal/host"
	"github.com/fyrsmithlabs/projectdeck/internal/logging"
	"github.com/fyrsmithlabs/projectdeck/internal/mutation"
	"github.com/fyrsmithlabs/projectdeck/internal/project"
	"github.com/fyrsmithlabs/projectdeck/internal/registry"
	"github.com/fyrsmithlabs/projectdeck/internal/render"
	"github.com/fyrsmithlabs/projectdeck/internal/settings"
)

type appOptions struct {
	configPath   string
	settingsPath string
	logLevel     string

	// logToFile sends logs to a file so a TUI owns the terminal.
	logToFile bool
}

// app holds the collaborators shared by all commands.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	backend  *settings.File
	store    *registry.Store
	terminal *host.Terminal
	renderer *render.Renderer

	metrics         *prometheus.Registry
	mutationMetrics *mutation.Metrics

	// coordinator uses terminal dialogs; the panel builds its own.
	coordinator *mutation.Coordinator
}

// newApp loads configuration and wires the registry stack.
func newApp(cmd *cobra.Command, opts appOptions) (*app, error) {
	cfg, err := config.LoadWithFile(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.settingsPath != "" {
		p, err := config.ExpandHome(opts.settingsPath)
		if err != nil {
			return nil, err
		}
		cfg.Settings.Path = p
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	logCfg, err := loggingConfig(cfg.Logging, opts.logToFile)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	backend, err := settings.NewFile(cfg.Settings.Path)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	cacheMetrics := cache.NewMetrics(reg)
	snap := cache.NewSnapshot[project.Collection]("snapshot", cacheMetrics)
	store := registry.NewStore(backend,
		registry.WithKeys(cfg.Settings.ProjectsKey, cfg.Settings.FaviconsKey),
		registry.WithSnapshot(snap),
		registry.WithPreferences(cache.NewSnapshot[bool]("preferences", cacheMetrics)),
		registry.WithLogger(logger),
	)

	term := host.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	a := &app{
		cfg:      cfg,
		logger:   logger,
		backend:  backend,
		store:    store,
		terminal: term,
		renderer: render.NewRenderer(store,
			render.WithAssets(render.NewAssets(cache.NewMemo("assets", cacheMetrics))),
			render.WithBlocks(render.NewBlocks(cache.NewMemo("blocks", cacheMetrics))),
			render.WithLogger(logger),
		),
		metrics:         reg,
		mutationMetrics: mutation.NewMetrics(reg),
	}

	a.coordinator, err = a.newCoordinator(term, term, nil)
	if err != nil {
		a.Close()
		return nil, err
	}

	logger.Debug(cmd.Context(), "settings resolved",
		zap.String("settings", backend.Path()),
		zap.String("projects_key", cfg.Settings.ProjectsKey))
	return a, nil
}

// newCoordinator builds a coordinator over the app's store with the given
// dialogs. Coordinators share one set of metrics.
func (a *app) newCoordinator(p host.Prompter, n host.Notifier, r mutation.Redrawer) (*mutation.Coordinator, error) {
	opener, err := host.NewCommandOpener(a.cfg.Open.Command)
	if err != nil {
		return nil, err
	}
	return mutation.New(mutation.Deps{
		Registry:  a.store,
		Prompter:  p,
		Notifier:  n,
		Redrawer:  r,
		Opener:    opener,
		Revealer:  host.NewFileBrowser(),
		Logger:    a.logger,
		Metrics:   a.mutationMetrics,
		ScanDepth: a.cfg.Scan.MaxDepth,
	})
}

// reportNotFound tells the user no project matched ref. Not finding a
// project is an outcome, not a failure, so the command still succeeds.
func reportNotFound(cmd *cobra.Command, ref string) {
	fmt.Fprintf(cmd.OutOrStdout(), "No project matches %s; nothing changed\n", ref)
}

// Close flushes and closes the logger.
func (a *app) Close() {
	_ = a.logger.Sync() // Best-effort sync on shutdown
	_ = a.logger.Close()
}

// loggingConfig maps the user-facing logging section onto logging.Config.
func loggingConfig(lc config.LoggingConfig, toFile bool) (*logging.Config, error) {
	cfg := logging.NewDefaultConfig()

	level, err := logging.LevelFromString(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", lc.Level, err)
	}
	cfg.Level = level
	cfg.Format = lc.Format
	cfg.Output.File = lc.File

	if toFile {
		cfg.Output.Stderr = false
		if cfg.Output.File == "" {
			dir, err := os.UserCacheDir()
			if err != nil {
				return nil, fmt.Errorf("failed to locate cache directory: %w", err)
			}
			cfg.Output.File = filepath.Join(dir, "projectdeck", "panel.log")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logging config: %w", err)
	}
	return cfg, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithLogger(ctx, deck.logger)
}
