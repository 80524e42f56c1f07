package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-claims-dashboard/components/dashboard"
	"github.com/goliatone/go-claims-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-claims-dashboard/components/dashboard/gorouter"
	"github.com/goliatone/go-claims-dashboard/components/dashboard/httpapi"
)

const shutdownTimeout = 10 * time.Second

type serveCmd struct {
	Addr      string `help:"Listen address (overrides server.address)."`
	BasePath  string `name:"base-path" help:"Route prefix (overrides server.base_path)."`
	Transport string `enum:"fiber,http" default:"fiber" help:"HTTP stack: go-router on fiber or net/http."`
	NoSeed    bool   `name:"no-seed" help:"Do not place the claims panels on an empty board."`
}

// server bundles everything the HTTP surface needs.
type server struct {
	app        *app
	broadcast  *dashboard.BroadcastHook
	controller *dashboard.Controller
	executor   *httpapi.CommandExecutor
	reader     *httpapi.QueryReader
	basePath   string
}

func (cmd *serveCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if cmd.Addr != "" {
		cfg.Server.Address = cmd.Addr
	}
	if cmd.BasePath != "" {
		cfg.Server.BasePath = "/" + strings.Trim(cmd.BasePath, "/")
	}
	if cmd.NoSeed {
		cfg.Seed.Enabled = false
	}

	templates, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return err
	}
	broadcast := dashboard.NewBroadcastHook()
	defer broadcast.Close()

	charts := dashboard.NewEChartsRenderer(dashboard.WithChartTheme(cfg.Charts.Theme))
	host := dashboard.NewViewHost(dashboard.DefaultEngineFactory{Charts: charts, Templates: templates}, nil)
	defer host.Close()
	widgets := dashboard.NewWidgetRenderer(host, dashboard.WithRenderCache(dashboard.NewChartCache(cfg.Charts.CacheTTL)))

	a, err := newApp(ctx, cfg, appOptions{refresh: dashboard.RefreshHooks{broadcast, widgets}})
	if err != nil {
		return err
	}
	defer a.Close()

	srv := newServer(a, broadcast, widgets, templates)
	if cfg.Seed.Enabled {
		seed := commands.NewSeedBoardCommand(a.service, a.panels, a.telemetry)
		if err := seed.Execute(ctx, commands.SeedBoardInput{Year: cfg.Seed.Year}); err != nil {
			a.logger.Warn("seed claims board", zap.Error(err))
		}
	}

	a.logger.Info("claims dashboard listening",
		zap.String("address", cfg.Server.Address),
		zap.String("transport", cmd.Transport),
		zap.String("page", srv.basePath+"/dashboard"),
	)
	if cmd.Transport == "http" {
		return srv.serveHTTP(ctx, cfg.Server.Address)
	}
	return srv.serveFiber(ctx, cfg.Server.Address)
}

func newServer(a *app, broadcast *dashboard.BroadcastHook, widgets *dashboard.WidgetRenderer, templates dashboard.Renderer) *server {
	base := a.cfg.Server.BasePath
	if base == "/" {
		base = ""
	}
	flows := dashboard.NewFlowManager(a.service, dashboard.FlowOptions{
		Generator: a.generator,
		Telemetry: a.telemetry,
	})
	return &server{
		app:       a,
		broadcast: broadcast,
		controller: dashboard.NewController(dashboard.ControllerOptions{
			Service:           a.service,
			Widgets:           widgets,
			Templates:         templates,
			Telemetry:         a.telemetry,
			BoardEndpoint:     base + "/dashboard/_board",
			WebSocketEndpoint: base + "/dashboard/ws",
		}),
		executor: httpapi.NewCommandExecutor(a.service, flows, a.telemetry),
		reader:   httpapi.NewQueryReader(a.service, flows, widgets, a.panels),
		basePath: base,
	}
}

func (s *server) handlers() *httpapi.Handlers {
	return &httpapi.Handlers{
		API:        s.executor,
		Reader:     s.reader,
		Controller: s.controller,
		Broadcast:  s.broadcast,
		Predictor:  s.app.claims,
	}
}

func (s *server) serveFiber(ctx context.Context, addr string) error {
	adapter := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     adapter.Router(),
		Controller: s.controller,
		API:        s.executor,
		Reader:     s.reader,
		Predictor:  s.app.claims,
		Broadcast:  s.broadcast,
		BasePath:   s.basePath,
	}); err != nil {
		return err
	}
	return run(ctx, func() error {
		return adapter.Serve(addr)
	}, adapter.Shutdown)
}

func (s *server) serveHTTP(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	s.handlers().Mount(mux, s.basePath)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return run(ctx, func() error {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, httpServer.Shutdown)
}

// run serves until ctx is cancelled or serve fails, then shuts down.
func run(ctx context.Context, serve func() error, shutdown func(context.Context) error) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(serve)
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return shutdown(shutdownCtx)
	})
	err := group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
