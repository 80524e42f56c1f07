package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-claims-dashboard/components/dashboard"
	"github.com/goliatone/go-claims-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-claims-dashboard/pkg/activity"
	"github.com/goliatone/go-claims-dashboard/pkg/activity/usersink"
	"github.com/goliatone/go-claims-dashboard/pkg/aiprovider"
	"github.com/goliatone/go-claims-dashboard/pkg/claims"
	"github.com/goliatone/go-claims-dashboard/pkg/config"
	"github.com/goliatone/go-claims-dashboard/pkg/kvstore"
	"github.com/goliatone/go-claims-dashboard/pkg/telemetry"
)

// app holds the collaborators shared by every command.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	telemetry dashboard.Telemetry
	claims    claims.Client
	generator dashboard.Generator
	service   *dashboard.Service
	panels    *dashboard.ClaimsPanels
	closers   []func() error
}

type appOptions struct {
	refresh dashboard.RefreshHook
	// skipGenerator avoids dialing the model backend for commands that do not
	// generate widgets.
	skipGenerator bool
}

// newApp wires the claims client, generator and a loaded board service.
func newApp(ctx context.Context, cfg config.Config, opts appOptions) (*app, error) {
	logger, err := telemetry.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:       cfg,
		logger:    logger,
		telemetry: telemetry.NewZapTelemetry(logger),
	}
	a.closers = append(a.closers, func() error {
		_ = logger.Sync()
		return nil
	})

	a.claims, err = newClaimsClient(cfg.Backend)
	if err != nil {
		return nil, a.fail(err)
	}
	a.panels = dashboard.NewClaimsPanels(a.claims, dashboard.WithPanelTelemetry(a.telemetry))

	if !opts.skipGenerator {
		a.generator, err = newGenerator(ctx, cfg, a.claims)
		if err != nil {
			return nil, a.fail(err)
		}
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, a.fail(err)
	}
	a.service = dashboard.NewService(dashboard.Options{
		Store:       store,
		RefreshHook: opts.refresh,
		Telemetry:   a.telemetry,
		ActivityHooks: activity.Hooks{
			usersink.Hook{Sink: telemetry.NewActivityLog(logger)},
		},
		ActivityConfig: activity.Config{Enabled: true},
	})
	if err := commands.NewLoadBoardCommand(a.service, a.telemetry).Execute(ctx, commands.LoadBoardInput{}); err != nil {
		return nil, a.fail(err)
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) (dashboard.KeyValueStore, error) {
	switch a.cfg.Storage.Driver {
	case config.StorageSQLite:
		store, err := kvstore.OpenSQLite(ctx, a.cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		a.logger.Debug("sqlite store opened", zap.String("path", a.cfg.Storage.Path))
		return store, nil
	default:
		return dashboard.NewMemoryStore(), nil
	}
}

func newClaimsClient(cfg config.Backend) (claims.Client, error) {
	if cfg.URL == "" {
		return claims.NewMockClient(claims.DemoData()), nil
	}
	return claims.NewHTTPClient(claims.HTTPConfig{
		BaseURL: cfg.URL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	})
}

func newGenerator(ctx context.Context, cfg config.Config, repo dashboard.ClaimsRepository) (dashboard.Generator, error) {
	switch cfg.Generator.Kind {
	case config.GeneratorHTTP:
		return aiprovider.NewHTTPGenerator(aiprovider.HTTPConfig{
			BaseURL: cfg.Backend.URL,
			APIKey:  cfg.Backend.APIKey,
			Timeout: cfg.Backend.Timeout,
		})
	case config.GeneratorGenAI:
		return aiprovider.NewGenAIGenerator(ctx, aiprovider.GenAIConfig{
			APIKey:  cfg.Generator.APIKey,
			Model:   cfg.Generator.Model,
			BaseURL: cfg.Generator.BaseURL,
			Claims:  repo,
			MaxRows: cfg.Generator.MaxRows,
		})
	case config.GeneratorMock:
		return aiprovider.NewMockGenerator(), nil
	default:
		return nil, fmt.Errorf("claimsctl: unknown generator %q", cfg.Generator.Kind)
	}
}

func (a *app) fail(err error) error {
	return errors.Join(err, a.Close())
}

// Close releases the store and flushes the logger.
func (a *app) Close() error {
	var errs error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = errors.Join(errs, a.closers[i]())
	}
	a.closers = nil
	return errs
}

// openApp loads configuration and wires the app.
func openApp(ctx context.Context, g *Globals, opts appOptions) (*app, error) {
	cfg, err := g.load()
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, opts)
}
