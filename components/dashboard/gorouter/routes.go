package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	router "github.com/goliatone/go-router"
	"github.com/google/uuid"

	"github.com/goliatone/go-claims-dashboard/components/dashboard"
	"github.com/goliatone/go-claims-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-claims-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-claims-dashboard/components/dashboard/queries"
	"github.com/goliatone/go-claims-dashboard/pkg/claims"
)

// ActivityResolver extracts the acting user from a router.Context.
type ActivityResolver func(router.Context) dashboard.ActivityContext

// Config wires go-router with the dashboard controller, APIs and hooks.
type Config[T any] struct {
	Router           router.Router[T]
	Controller       *dashboard.Controller
	API              httpapi.Executor
	Reader           httpapi.Reader
	Predictor        claims.Predictor
	Broadcast        *dashboard.BroadcastHook
	ActivityResolver ActivityResolver
	BasePath         string
	Routes           RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML       string
	Board      string
	Widget     string
	WidgetView string
	Layout     string
	Refresh    string
	Flows      string
	Flow       string
	FlowSubmit string
	FlowRetry  string
	FlowCancel string
	FlowAccept string
	Claims     string
	Predict    string
	WebSocket  string
}

// Register mounts dashboard routes (HTML, JSON, REST, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := DefaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	resolver := cfg.ActivityResolver
	if resolver == nil {
		resolver = defaultActivityResolver
	}
	h := handlers{
		controller: cfg.Controller,
		api:        cfg.API,
		reader:     cfg.Reader,
		predictor:  cfg.Predictor,
		resolver:   resolver,
	}

	group := cfg.Router.Group(base)
	group.Get(routes.HTML, router.WrapHandler(h.page))
	group.Get(routes.Board, router.WrapHandler(h.board))

	if cfg.Reader != nil {
		group.Get(routes.WidgetView, router.WrapHandler(h.widgetView))
		group.Get(routes.Flow, router.WrapHandler(h.flow))
		group.Get(routes.Claims, router.WrapHandler(h.claimsPanel))
	}
	if cfg.API != nil {
		group.Delete(routes.Widget, router.WrapHandler(h.removeWidget))
		group.Put(routes.WidgetView, router.WrapHandler(h.setView))
		group.Put(routes.Layout, router.WrapHandler(h.updateLayout))
		group.Post(routes.Refresh, router.WrapHandler(h.refresh))
		group.Post(routes.Flows, router.WrapHandler(h.openFlow))
		group.Post(routes.FlowSubmit, router.WrapHandler(h.submit))
		group.Post(routes.FlowRetry, router.WrapHandler(h.retry))
		group.Post(routes.FlowCancel, router.WrapHandler(h.cancel))
		group.Post(routes.FlowAccept, router.WrapHandler(h.accept))
	}
	if cfg.Predictor != nil {
		group.Post(routes.Predict, router.WrapHandler(h.predict))
	}
	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

type handlers struct {
	controller *dashboard.Controller
	api        httpapi.Executor
	reader     httpapi.Reader
	predictor  claims.Predictor
	resolver   ActivityResolver
}

func (h handlers) context(ctx router.Context) context.Context {
	return dashboard.ContextWithActivity(ctx.Context(), h.resolver(ctx))
}

func (h handlers) page(ctx router.Context) error {
	var buf bytes.Buffer
	if err := h.controller.RenderPage(ctx.Context(), &buf); err != nil {
		return respondError(ctx, err)
	}
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(buf.Bytes())
}

func (h handlers) board(ctx router.Context) error {
	payload, err := h.controller.BoardPayload(ctx.Context())
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, payload)
}

func (h handlers) widgetView(ctx router.Context) error {
	view, err := h.reader.WidgetView(ctx.Context(), queries.WidgetViewInput{
		WidgetID: ctx.Param("id"),
		Mode:     dashboard.ViewMode(ctx.Query("mode")),
	})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, view)
}

func (h handlers) removeWidget(ctx router.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return respondStatus(ctx, http.StatusBadRequest, errors.New("widget id is required"))
	}
	if err := h.api.Remove(h.context(ctx), commands.RemoveWidgetInput{WidgetID: id}); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusNoContent, map[string]string{"status": "removed"})
}

func (h handlers) setView(ctx router.Context) error {
	var payload commands.SetWidgetViewInput
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return respondStatus(ctx, http.StatusBadRequest, err)
	}
	payload.WidgetID = ctx.Param("id")
	if err := h.api.SetView(h.context(ctx), payload); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
}

func (h handlers) updateLayout(ctx router.Context) error {
	var payload commands.UpdateLayoutInput
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return respondStatus(ctx, http.StatusBadRequest, err)
	}
	if err := h.api.UpdateLayout(h.context(ctx), payload); err != nil {
		return respondError(ctx, err)
	}
	return h.board(ctx)
}

func (h handlers) refresh(ctx router.Context) error {
	input := commands.RefreshBoardInput{Event: dashboard.BoardEvent{Reason: dashboard.EventRefresh}}
	if err := h.api.Refresh(h.context(ctx), input); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h handlers) openFlow(ctx router.Context) error {
	var payload commands.OpenFlowInput
	if body := ctx.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			return respondStatus(ctx, http.StatusBadRequest, err)
		}
	}
	if payload.FlowID == "" {
		payload.FlowID = uuid.NewString()
	}
	if err := h.api.OpenFlow(h.context(ctx), payload); err != nil {
		return respondError(ctx, err)
	}
	return h.respondFlow(ctx, payload.FlowID, http.StatusCreated)
}

func (h handlers) submit(ctx router.Context) error {
	var payload commands.SubmitPromptInput
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return respondStatus(ctx, http.StatusBadRequest, err)
	}
	payload.FlowID = ctx.Param("id")
	if err := h.api.Submit(h.context(ctx), payload); err != nil {
		return respondError(ctx, err)
	}
	return h.respondFlow(ctx, payload.FlowID, http.StatusOK)
}

func (h handlers) retry(ctx router.Context) error {
	id := ctx.Param("id")
	if err := h.api.Retry(h.context(ctx), commands.FlowInput{FlowID: id}); err != nil {
		return respondError(ctx, err)
	}
	return h.respondFlow(ctx, id, http.StatusOK)
}

func (h handlers) cancel(ctx router.Context) error {
	id := ctx.Param("id")
	if err := h.api.Cancel(h.context(ctx), commands.FlowInput{FlowID: id}); err != nil {
		return respondError(ctx, err)
	}
	return h.respondFlow(ctx, id, http.StatusOK)
}

func (h handlers) accept(ctx router.Context) error {
	if err := h.api.Accept(h.context(ctx), commands.AcceptWidgetInput{FlowID: ctx.Param("id")}); err != nil {
		return respondError(ctx, err)
	}
	payload, err := h.controller.BoardPayload(ctx.Context())
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, payload)
}

func (h handlers) flow(ctx router.Context) error {
	return h.respondFlow(ctx, ctx.Param("id"), http.StatusOK)
}

func (h handlers) respondFlow(ctx router.Context, id string, status int) error {
	if h.reader == nil {
		return ctx.JSON(status, map[string]string{"flow_id": id})
	}
	snap, err := h.reader.Flow(ctx.Context(), queries.FlowInput{FlowID: id})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(status, snap)
}

func (h handlers) claimsPanel(ctx router.Context) error {
	year := 0
	if raw := ctx.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return respondError(ctx, fmt.Errorf("%w: year %q", dashboard.ErrInvalidYear, raw))
		}
		year = parsed
	}
	widget, err := h.reader.ClaimsPanel(ctx.Context(), queries.ClaimsPanelInput{Panel: ctx.Param("panel"), Year: year})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, widget)
}

func (h handlers) predict(ctx router.Context) error {
	var claim claims.WarrantyClaim
	if err := json.Unmarshal(ctx.Body(), &claim); err != nil {
		return respondStatus(ctx, http.StatusBadRequest, err)
	}
	prediction, err := h.predictor.Predict(ctx.Context(), claim)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, prediction)
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func defaultActivityResolver(ctx router.Context) dashboard.ActivityContext {
	var actor dashboard.ActivityContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		actor.UserID = v
		actor.ActorID = v
	}
	if v, ok := ctx.Locals("actor_id").(string); ok && v != "" {
		actor.ActorID = v
	}
	if v, ok := ctx.Locals("tenant_id").(string); ok {
		actor.TenantID = v
	}
	return actor
}

func respondError(ctx router.Context, err error) error {
	return respondStatus(ctx, httpapi.StatusFor(err), err)
}

func respondStatus(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

// DefaultRouteConfig fills empty route paths with their defaults.
func DefaultRouteConfig(routes RouteConfig) RouteConfig {
	defaults := []struct {
		field *string
		value string
	}{
		{&routes.HTML, "/dashboard"},
		{&routes.Board, "/dashboard/_board"},
		{&routes.Widget, "/dashboard/widgets/:id"},
		{&routes.WidgetView, "/dashboard/widgets/:id/view"},
		{&routes.Layout, "/dashboard/layout"},
		{&routes.Refresh, "/dashboard/refresh"},
		{&routes.Flows, "/dashboard/flows"},
		{&routes.Flow, "/dashboard/flows/:id"},
		{&routes.FlowSubmit, "/dashboard/flows/:id/submit"},
		{&routes.FlowRetry, "/dashboard/flows/:id/retry"},
		{&routes.FlowCancel, "/dashboard/flows/:id/cancel"},
		{&routes.FlowAccept, "/dashboard/flows/:id/accept"},
		{&routes.Claims, "/dashboard/claims/:panel"},
		{&routes.Predict, "/dashboard/claims/predict"},
		{&routes.WebSocket, "/dashboard/ws"},
	}
	for _, d := range defaults {
		if *d.field == "" {
			*d.field = d.value
		}
	}
	return routes
}
