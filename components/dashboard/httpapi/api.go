package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-claims-dashboard/components/dashboard"
	"github.com/goliatone/go-claims-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-claims-dashboard/components/dashboard/queries"
	"github.com/goliatone/go-claims-dashboard/pkg/claims"
)

const maxBodyBytes = 1 << 20

// Handlers exposes the dashboard over net/http. Optional dependencies that are
// nil leave their routes unmounted.
type Handlers struct {
	API        Executor
	Reader     Reader
	Controller *dashboard.Controller
	Broadcast  *dashboard.BroadcastHook
	Predictor  claims.Predictor
}

// Mount registers every route under base on mux using method patterns.
func (h *Handlers) Mount(mux *http.ServeMux, base string) {
	base = "/" + strings.Trim(base, "/")
	if base == "/" {
		base = ""
	}
	route := func(method, path string, fn http.HandlerFunc) {
		mux.HandleFunc(method+" "+base+path, fn)
	}
	if h.Controller != nil {
		route(http.MethodGet, "/dashboard", h.HandlePage)
	}
	if h.Reader != nil {
		route(http.MethodGet, "/dashboard/_board", h.HandleBoard)
		route(http.MethodGet, "/dashboard/widgets/{id}/view", h.HandleWidgetView)
		route(http.MethodGet, "/dashboard/flows/{id}", h.HandleFlow)
		route(http.MethodGet, "/dashboard/claims/{panel}", h.HandleClaimsPanel)
	}
	if h.API != nil {
		route(http.MethodDelete, "/dashboard/widgets/{id}", h.HandleRemoveWidget)
		route(http.MethodPut, "/dashboard/widgets/{id}/view", h.HandleSetView)
		route(http.MethodPut, "/dashboard/layout", h.HandleUpdateLayout)
		route(http.MethodPost, "/dashboard/refresh", h.HandleRefresh)
		route(http.MethodPost, "/dashboard/flows", h.HandleOpenFlow)
		route(http.MethodPost, "/dashboard/flows/{id}/submit", h.HandleSubmit)
		route(http.MethodPost, "/dashboard/flows/{id}/retry", h.HandleRetry)
		route(http.MethodPost, "/dashboard/flows/{id}/cancel", h.HandleCancel)
		route(http.MethodPost, "/dashboard/flows/{id}/accept", h.HandleAccept)
	}
	if h.Predictor != nil {
		route(http.MethodPost, "/dashboard/claims/predict", h.HandlePredict)
	}
	if h.Broadcast != nil {
		route(http.MethodGet, "/dashboard/ws", h.Broadcast.ServeWebSocket)
		route(http.MethodGet, "/dashboard/events", h.Broadcast.ServeSSE)
	}
}

func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.Controller.RenderPage(r.Context(), &buf); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (h *Handlers) HandleBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.Reader.Board(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *Handlers) HandleWidgetView(w http.ResponseWriter, r *http.Request) {
	view, err := h.Reader.WidgetView(r.Context(), queries.WidgetViewInput{
		WidgetID: r.PathValue("id"),
		Mode:     dashboard.ViewMode(r.URL.Query().Get("mode")),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) HandleRemoveWidget(w http.ResponseWriter, r *http.Request) {
	if err := h.API.Remove(r.Context(), commands.RemoveWidgetInput{WidgetID: r.PathValue("id")}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleSetView(w http.ResponseWriter, r *http.Request) {
	var payload commands.SetWidgetViewInput
	if err := decode(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	payload.WidgetID = r.PathValue("id")
	if err := h.API.SetView(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "mode": string(payload.Mode)})
}

func (h *Handlers) HandleUpdateLayout(w http.ResponseWriter, r *http.Request) {
	var payload commands.UpdateLayoutInput
	if err := decode(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	if err := h.API.UpdateLayout(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	h.respondBoard(w, r, http.StatusOK)
}

func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	input := commands.RefreshBoardInput{Event: dashboard.BoardEvent{Reason: dashboard.EventRefresh}}
	if err := h.API.Refresh(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

type openFlowRequest struct {
	FlowID string `json:"flow_id"`
}

func (h *Handlers) HandleOpenFlow(w http.ResponseWriter, r *http.Request) {
	var payload openFlowRequest
	if err := decodeOptional(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	if payload.FlowID == "" {
		payload.FlowID = uuid.NewString()
	}
	if err := h.API.OpenFlow(r.Context(), commands.OpenFlowInput{FlowID: payload.FlowID}); err != nil {
		writeError(w, err)
		return
	}
	h.respondFlow(w, r, payload.FlowID, http.StatusCreated)
}

type submitRequest struct {
	Prompt string `json:"prompt"`
}

func (h *Handlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload submitRequest
	if err := decode(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	id := r.PathValue("id")
	if err := h.API.Submit(r.Context(), commands.SubmitPromptInput{FlowID: id, Prompt: payload.Prompt}); err != nil {
		h.flowError(w, r, id, err)
		return
	}
	h.respondFlow(w, r, id, http.StatusOK)
}

func (h *Handlers) HandleRetry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.API.Retry(r.Context(), commands.FlowInput{FlowID: id}); err != nil {
		h.flowError(w, r, id, err)
		return
	}
	h.respondFlow(w, r, id, http.StatusOK)
}

func (h *Handlers) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.API.Cancel(r.Context(), commands.FlowInput{FlowID: id}); err != nil {
		writeError(w, err)
		return
	}
	h.respondFlow(w, r, id, http.StatusOK)
}

func (h *Handlers) HandleAccept(w http.ResponseWriter, r *http.Request) {
	if err := h.API.Accept(r.Context(), commands.AcceptWidgetInput{FlowID: r.PathValue("id")}); err != nil {
		writeError(w, err)
		return
	}
	h.respondBoard(w, r, http.StatusCreated)
}

func (h *Handlers) HandleFlow(w http.ResponseWriter, r *http.Request) {
	h.respondFlow(w, r, r.PathValue("id"), http.StatusOK)
}

func (h *Handlers) HandleClaimsPanel(w http.ResponseWriter, r *http.Request) {
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, fmt.Errorf("%w: year %q", dashboard.ErrInvalidYear, raw))
			return
		}
		year = parsed
	}
	widget, err := h.Reader.ClaimsPanel(r.Context(), queries.ClaimsPanelInput{Panel: r.PathValue("panel"), Year: year})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, widget)
}

func (h *Handlers) HandlePredict(w http.ResponseWriter, r *http.Request) {
	var claim claims.WarrantyClaim
	if err := decode(r, &claim); err != nil {
		writeError(w, err)
		return
	}
	prediction, err := h.Predictor.Predict(r.Context(), claim)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

func (h *Handlers) respondFlow(w http.ResponseWriter, r *http.Request, id string, status int) {
	if h.Reader == nil {
		writeJSON(w, status, map[string]string{"flow_id": id})
		return
	}
	snap, err := h.Reader.Flow(r.Context(), queries.FlowInput{FlowID: id})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, snap)
}

// flowError reports a failed generation together with the flow state so the
// client can show the prompt again.
func (h *Handlers) flowError(w http.ResponseWriter, r *http.Request, id string, err error) {
	body := errorBody{Error: err.Error()}
	if h.Reader != nil {
		if snap, snapErr := h.Reader.Flow(r.Context(), queries.FlowInput{FlowID: id}); snapErr == nil {
			body.Flow = &snap
		}
	}
	writeJSON(w, StatusFor(err), body)
}

func (h *Handlers) respondBoard(w http.ResponseWriter, r *http.Request, status int) {
	if h.Reader == nil {
		writeJSON(w, status, map[string]string{"status": "ok"})
		return
	}
	board, err := h.Reader.Board(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, board)
}

func decode(r *http.Request, target any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: request body is required", errBadRequest)
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(target); err != nil {
		if err == io.EOF {
			return fmt.Errorf("%w: request body is required", errBadRequest)
		}
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

func decodeOptional(r *http.Request, target any) error {
	err := decode(r, target)
	if err != nil && r.ContentLength == 0 {
		return nil
	}
	return err
}
