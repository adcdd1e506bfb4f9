package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/specialistvlad/buildgrid/internal/config"
	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/executor"
	"github.com/specialistvlad/buildgrid/internal/hcl"
	"github.com/specialistvlad/buildgrid/internal/model"
	"github.com/specialistvlad/buildgrid/internal/moduleconfig"
	"github.com/specialistvlad/buildgrid/internal/ordermonitor"
	"github.com/specialistvlad/buildgrid/internal/plugin"
	"github.com/specialistvlad/buildgrid/internal/registry"
	"github.com/specialistvlad/buildgrid/internal/reportstream"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	cfg       *Config
	model     *config.Model
	converter config.Converter
	catalog   *plugin.Catalog
	publisher reportstream.Publisher

	manager  *registry.Manager
	schemas  *moduleconfig.Schemas
	monitor  *ordermonitor.Monitor
	executor *executor.Executor

	orderConfirmed int
}

// Option customizes NewApp.
type Option func(*App)

// WithCatalog replaces the process-wide catalog of core plugins.
func WithCatalog(c *plugin.Catalog) Option {
	return func(a *App) { a.catalog = c }
}

// WithPublisher replaces the socket.io report stream built from ReportURL.
func WithPublisher(p reportstream.Publisher) Option {
	return func(a *App) { a.publisher = p }
}

// NewApp is the constructor for the main application. It loads the
// pipeline file, enables every plugin, and connects the report stream.
func NewApp(ctx context.Context, outW io.Writer, cfg *Config, loader config.Loader, opts ...Option) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	cfgModel, err := loader.Load(ctx, cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	a := &App{
		outW:      outW,
		logger:    logger,
		cfg:       cfg,
		model:     cfgModel,
		converter: hcl.NewConverter(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.catalog == nil {
		a.catalog = defaultCatalog()
	}

	if err := a.start(ctx); err != nil {
		return nil, err
	}

	if a.publisher == nil && cfg.ReportURL != "" {
		client, err := reportstream.Dial(ctx, reportstream.Options{URL: cfg.ReportURL})
		if err != nil {
			a.manager.Close(ctx)
			return nil, fmt.Errorf("failed to connect report stream: %w", err)
		}
		a.publisher = client
	}
	return a, nil
}

// start builds the per-session state: registry, schemas, monitor, executor.
func (a *App) start(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	manager, err := registry.New(ctx, a.catalog, registry.Options{
		Disabled:  a.model.Disabled(),
		Runtimes:  a.model.Runtimes,
		Configure: a.configurePlugin,
	})
	if err != nil {
		return fmt.Errorf("failed to enable plugins: %w", err)
	}

	schemas, err := a.collectSchemas(manager)
	if err != nil {
		manager.Close(ctx)
		return err
	}

	for _, id := range a.unknownPluginBlocks(manager) {
		logger.Warn("Pipeline file configures a plugin that is not available.", "plugin", string(id))
	}

	opts := executor.Options{
		Stages:          a.model.Pipeline.Stages,
		CheckpointStage: a.model.Pipeline.CheckpointStage,
	}
	var monitor *ordermonitor.Monitor
	if m := a.model.Monitor; m != nil {
		monitor = ordermonitor.New(m.First, m.Second, func() {
			a.orderConfirmed++
			logger.Info("✅ Runtime order confirmed.", "first", string(m.First), "second", string(m.Second))
		})
		opts.Monitor = monitor
	}

	a.manager = manager
	a.schemas = schemas
	a.monitor = monitor
	a.executor = executor.New(manager, opts)
	logger.Debug("App session started.", "schemas", len(schemas.Names()))
	return nil
}

// configurePlugin points printing plugins at the app's writer and binds
// the settings of a plugin block onto the plugin.
func (a *App) configurePlugin(ctx context.Context, p plugin.Plugin) error {
	if printer, ok := p.(plugin.Printer); ok {
		printer.SetOutput(a.outW)
	}
	block, ok := a.model.Plugins[p.ID()]
	if !ok || len(block.Settings) == 0 {
		return nil
	}
	c, ok := p.(plugin.Configurable)
	if !ok {
		return fmt.Errorf("plugin accepts no settings")
	}
	return a.converter.DecodeSettings(ctx, block.Settings, c.Settings())
}

// collectSchemas gathers module schemas from enabled plugins, then from
// module blocks in the pipeline file.
func (a *App) collectSchemas(manager *registry.Manager) (*moduleconfig.Schemas, error) {
	schemas := moduleconfig.NewSchemas()
	add := func(owner string, s moduleconfig.Schema) error {
		if _, exists := schemas.Lookup(s.Name); exists {
			return fmt.Errorf("module schema '%s' from %s is already registered", s.Name, owner)
		}
		schemas.Register(s)
		return nil
	}

	for _, p := range manager.Plugins() {
		provider, ok := p.(plugin.SchemaProvider)
		if !ok {
			continue
		}
		for _, s := range provider.ModuleSchemas() {
			if err := add("plugin '"+string(p.ID())+"'", s); err != nil {
				return nil, err
			}
		}
	}
	for _, k := range a.model.Modules {
		if err := add("the pipeline file", moduleconfig.Schema{Name: k.Name, Type: k.Type}); err != nil {
			return nil, err
		}
	}
	return schemas, nil
}

func (a *App) unknownPluginBlocks(manager *registry.Manager) []model.Identifier {
	known := make(map[model.Identifier]bool)
	for _, id := range manager.Discovered() {
		known[id] = true
	}
	var unknown []model.Identifier
	for id := range a.model.Plugins {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	slices.Sort(unknown)
	return unknown
}

// Manager returns the plugin registry. This is primarily for testing.
func (a *App) Manager() *registry.Manager { return a.manager }

// Schemas returns the module schemas of the current session.
func (a *App) Schemas() *moduleconfig.Schemas { return a.schemas }

// OrderConfirmed returns how many times the monitor observed the expected
// runtime order since the last Reset.
func (a *App) OrderConfirmed() int { return a.orderConfirmed }

// Reset tears the session down and builds a fresh one: plugins are
// disabled in reverse order, the catalog discovery cache and the order
// monitor are cleared, and plugins are discovered and enabled again. If
// enabling fails, Build returns ErrNoSession until a later Reset succeeds.
func (a *App) Reset(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Info("Resetting session.")

	if a.manager != nil {
		a.manager.Close(ctx)
	}
	a.manager, a.schemas, a.executor = nil, nil, nil
	a.catalog.Reset()
	if a.monitor != nil {
		a.monitor.Reset()
	}
	a.orderConfirmed = 0
	if err := a.start(ctx); err != nil {
		return fmt.Errorf("failed to restart session: %w", err)
	}
	return nil
}

// Close disables all plugins and closes the report stream.
func (a *App) Close(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	if a.manager != nil {
		a.manager.Close(ctx)
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			return fmt.Errorf("failed to close report stream: %w", err)
		}
	}
	return nil
}
