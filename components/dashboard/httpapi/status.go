package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goliatone/go-claims-dashboard/components/dashboard"
	"github.com/goliatone/go-claims-dashboard/pkg/claims"
)

// StatusFor maps dashboard errors onto HTTP status codes.
func StatusFor(err error) int {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, dashboard.ErrEmptyPrompt),
		errors.Is(err, dashboard.ErrInvalidViewMode),
		errors.Is(err, dashboard.ErrInvalidYear),
		errors.Is(err, dashboard.ErrInvalidConfig),
		errors.Is(err, claims.ErrUnsupportedDocument),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrWidgetNotFound),
		errors.Is(err, dashboard.ErrFlowNotFound),
		errors.Is(err, dashboard.ErrUnknownPanel),
		errors.Is(err, claims.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrFlowBusy),
		errors.Is(err, dashboard.ErrInvalidTransition),
		errors.Is(err, dashboard.ErrFlowClosed),
		errors.Is(err, dashboard.ErrStaleResponse):
		return http.StatusConflict
	case errors.Is(err, dashboard.ErrGenerationFailed),
		errors.Is(err, dashboard.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, errNotConfigured):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("httpapi: bad request")

type errorBody struct {
	Error string                  `json:"error"`
	Flow  *dashboard.FlowSnapshot `json:"flow,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil || status == http.StatusNoContent {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), errorBody{Error: err.Error()})
}
