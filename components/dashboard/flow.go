package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// FlowState is a stage of the widget creation flow.
type FlowState string

const (
	FlowPrompt     FlowState = "prompt"
	FlowGenerating FlowState = "generating"
	FlowPreview    FlowState = "preview"
	FlowCommitted  FlowState = "committed"
)

// Preview is a generated widget shown in both display modes before acceptance.
type Preview struct {
	Widget Widget          `json:"widget"`
	Table  TableProjection `json:"table"`
}

// FlowSnapshot is a read-only view of a creation flow.
type FlowSnapshot struct {
	ID      string    `json:"id"`
	State   FlowState `json:"state"`
	Prompt  string    `json:"prompt,omitempty"`
	Error   string    `json:"error,omitempty"`
	Preview *Preview  `json:"preview,omitempty"`
}

// FlowOptions configures creation flows.
type FlowOptions struct {
	Generator Generator
	Parser    *ChartConfigParser
	Telemetry Telemetry
	// WidgetID assigns ids to generated widgets.
	WidgetID func() string
}

func (o FlowOptions) normalize() FlowOptions {
	if o.Generator == nil {
		o.Generator = unconfiguredGenerator{}
	}
	if o.Parser == nil {
		o.Parser = defaultChartParser
	}
	if o.WidgetID == nil {
		o.WidgetID = newWidgetID
	}
	o.Telemetry = NormalizeTelemetry(o.Telemetry)
	return o
}

func newWidgetID() string {
	return "widget-" + uuid.NewString()
}

// CreationFlow walks a prompt through generation and preview until the widget
// is accepted onto the board. Failures return the flow to the prompt state and
// never touch the board.
type CreationFlow struct {
	id       string
	board    *Service
	opts     FlowOptions
	requests *requestSequencer

	mu      sync.Mutex
	state   FlowState
	prompt  string
	preview *Preview
	lastErr error
}

// NewCreationFlow builds a flow that commits accepted widgets to board.
func NewCreationFlow(id string, board *Service, opts FlowOptions) *CreationFlow {
	return newCreationFlow(id, board, opts.normalize(), newRequestSequencer())
}

func newCreationFlow(id string, board *Service, opts FlowOptions, requests *requestSequencer) *CreationFlow {
	if id == "" {
		id = uuid.NewString()
	}
	return &CreationFlow{
		id:       id,
		board:    board,
		opts:     opts,
		requests: requests,
		state:    FlowPrompt,
	}
}

// ID returns the flow identifier.
func (f *CreationFlow) ID() string {
	return f.id
}

// State returns the current stage.
func (f *CreationFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Snapshot returns the current stage, prompt, last error and preview.
func (f *CreationFlow) Snapshot() FlowSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := FlowSnapshot{ID: f.id, State: f.state, Prompt: f.prompt}
	if f.lastErr != nil {
		snap.Error = f.lastErr.Error()
	}
	if f.preview != nil {
		p := clonePreview(*f.preview)
		snap.Preview = &p
	}
	return snap
}

// Submit requests a widget for prompt. A blank prompt is rejected without a
// request; a second submit while generating is rejected with ErrFlowBusy.
func (f *CreationFlow) Submit(ctx context.Context, prompt string) (Preview, error) {
	text := strings.TrimSpace(prompt)
	f.mu.Lock()
	switch {
	case f.state == FlowCommitted:
		f.mu.Unlock()
		return Preview{}, ErrFlowClosed
	case text == "":
		f.mu.Unlock()
		return Preview{}, ErrEmptyPrompt
	case f.state == FlowGenerating:
		f.mu.Unlock()
		return Preview{}, ErrFlowBusy
	}
	f.state = FlowGenerating
	f.prompt = text
	f.preview = nil
	f.lastErr = nil
	token := f.requests.Begin(f.id)
	f.mu.Unlock()

	f.record(ctx, "dashboard.flow.submit", map[string]any{"prompt_length": len(text)})
	preview, err := f.generate(ctx, text)

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.requests.Current(f.id, token) {
		f.record(ctx, "dashboard.flow.stale_response", nil)
		return Preview{}, ErrStaleResponse
	}
	f.requests.Finish(f.id, token)
	if err != nil {
		f.state = FlowPrompt
		f.lastErr = err
		f.record(ctx, "dashboard.flow.error", map[string]any{"error": err.Error()})
		return Preview{}, err
	}
	f.state = FlowPreview
	f.preview = &preview
	f.record(ctx, "dashboard.flow.preview", map[string]any{
		"widget_id":  preview.Widget.ID,
		"chart_type": preview.Widget.Config.Type,
	})
	return clonePreview(preview), nil
}

// Retry submits the last prompt again.
func (f *CreationFlow) Retry(ctx context.Context) (Preview, error) {
	f.mu.Lock()
	prompt := f.prompt
	f.mu.Unlock()
	if prompt == "" {
		return Preview{}, ErrEmptyPrompt
	}
	return f.Submit(ctx, prompt)
}

// Cancel discards the preview (or abandons the in-flight request) and returns
// to the prompt state. A late response for the abandoned request is ignored.
func (f *CreationFlow) Cancel(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FlowCommitted {
		return ErrFlowClosed
	}
	f.requests.Invalidate(f.id)
	previous := f.state
	f.state = FlowPrompt
	f.preview = nil
	f.lastErr = nil
	f.record(ctx, "dashboard.flow.cancel", map[string]any{"from": string(previous)})
	return nil
}

// Accept commits the previewed widget to the board together with its layout
// entry and closes the flow.
func (f *CreationFlow) Accept(ctx context.Context) (Widget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FlowCommitted {
		return Widget{}, ErrFlowClosed
	}
	if f.state != FlowPreview || f.preview == nil {
		return Widget{}, fmt.Errorf("%w: accept from %s", ErrInvalidTransition, f.state)
	}
	if f.board == nil {
		return Widget{}, errors.New("dashboard: creation flow has no board")
	}
	widget := cloneWidget(f.preview.Widget)
	if _, err := f.board.addWidget(ctx, widget); err != nil {
		return Widget{}, err
	}
	f.state = FlowCommitted
	f.preview = nil
	f.record(ctx, "dashboard.flow.accept", map[string]any{"widget_id": widget.ID})
	return widget, nil
}

func (f *CreationFlow) generate(ctx context.Context, prompt string) (Preview, error) {
	resp, err := f.opts.Generator.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, ErrGenerationFailed) || errors.Is(err, ErrMalformedResponse) {
			return Preview{}, err
		}
		return Preview{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	widget, err := f.opts.Parser.ParseGenerated(resp)
	if err != nil {
		return Preview{}, err
	}
	widget.ID = f.opts.WidgetID()
	if widget.Title == "" {
		widget.Title = prompt
	}
	return Preview{Widget: widget, Table: ProjectTable(widget.Config)}, nil
}

func (f *CreationFlow) record(ctx context.Context, event string, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["flow_id"] = f.id
	f.opts.Telemetry.Record(ctx, event, payload)
}

func clonePreview(p Preview) Preview {
	out := Preview{Widget: cloneWidget(p.Widget)}
	out.Table.Headers = append([]string(nil), p.Table.Headers...)
	out.Table.Rows = make([][]string, len(p.Table.Rows))
	for i, row := range p.Table.Rows {
		out.Table.Rows[i] = append([]string(nil), row...)
	}
	return out
}

type unconfiguredGenerator struct{}

func (unconfiguredGenerator) Generate(context.Context, string) (GenerationResponse, error) {
	return GenerationResponse{}, fmt.Errorf("%w: generator not configured", ErrGenerationFailed)
}
