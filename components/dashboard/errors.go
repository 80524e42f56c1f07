package dashboard

import "errors"

var (
	ErrEmptyPrompt       = errors.New("dashboard: prompt is required")
	ErrFlowBusy          = errors.New("dashboard: generation already in progress")
	ErrInvalidTransition = errors.New("dashboard: invalid flow transition")
	ErrFlowClosed        = errors.New("dashboard: flow is closed")
	ErrFlowNotFound      = errors.New("dashboard: flow not found")
	ErrStaleResponse     = errors.New("dashboard: response superseded by a newer request")
	ErrGenerationFailed  = errors.New("dashboard: generation request failed")
	ErrMalformedResponse = errors.New("dashboard: malformed generation response")
	ErrInvalidConfig     = errors.New("dashboard: invalid chart configuration")
	ErrWidgetNotFound    = errors.New("dashboard: widget not found")
	ErrInvalidViewMode   = errors.New("dashboard: view mode must be chart or table")
	ErrUnknownPanel      = errors.New("dashboard: unknown claims panel")
	ErrInvalidYear       = errors.New("dashboard: year must be between 1900 and 2100")

	errMissingWidgetID = errors.New("dashboard: widget id is required")
)
