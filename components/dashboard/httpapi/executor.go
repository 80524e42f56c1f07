package httpapi

import (
	"context"
	"errors"

	"github.com/goliatone/go-claims-dashboard/components/dashboard"
	"github.com/goliatone/go-claims-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-claims-dashboard/components/dashboard/queries"
	gocommand "github.com/goliatone/go-command"
)

// Executor runs dashboard mutations on behalf of transports.
type Executor interface {
	Remove(ctx context.Context, input commands.RemoveWidgetInput) error
	UpdateLayout(ctx context.Context, input commands.UpdateLayoutInput) error
	SetView(ctx context.Context, input commands.SetWidgetViewInput) error
	Refresh(ctx context.Context, input commands.RefreshBoardInput) error
	OpenFlow(ctx context.Context, input commands.OpenFlowInput) error
	Submit(ctx context.Context, input commands.SubmitPromptInput) error
	Retry(ctx context.Context, input commands.FlowInput) error
	Cancel(ctx context.Context, input commands.FlowInput) error
	Accept(ctx context.Context, input commands.AcceptWidgetInput) error
}

// Reader answers read-only requests.
type Reader interface {
	Board(ctx context.Context) (dashboard.Board, error)
	WidgetView(ctx context.Context, input queries.WidgetViewInput) (dashboard.RenderedView, error)
	Flow(ctx context.Context, input queries.FlowInput) (dashboard.FlowSnapshot, error)
	ClaimsPanel(ctx context.Context, input queries.ClaimsPanelInput) (dashboard.Widget, error)
}

var errNotConfigured = errors.New("httpapi: operation not configured")

// CommandExecutor adapts go-command commanders into an Executor. Nil fields
// report errNotConfigured.
type CommandExecutor struct {
	RemoveCommander  gocommand.Commander[commands.RemoveWidgetInput]
	LayoutCommander  gocommand.Commander[commands.UpdateLayoutInput]
	ViewCommander    gocommand.Commander[commands.SetWidgetViewInput]
	RefreshCommander gocommand.Commander[commands.RefreshBoardInput]
	OpenCommander    gocommand.Commander[commands.OpenFlowInput]
	SubmitCommander  gocommand.Commander[commands.SubmitPromptInput]
	RetryCommander   gocommand.Commander[commands.FlowInput]
	CancelCommander  gocommand.Commander[commands.FlowInput]
	AcceptCommander  gocommand.Commander[commands.AcceptWidgetInput]
}

var _ Executor = (*CommandExecutor)(nil)

// NewCommandExecutor wires every dashboard command against a service and a
// flow manager.
func NewCommandExecutor(service *dashboard.Service, flows *dashboard.FlowManager, telemetry dashboard.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		RemoveCommander:  commands.NewRemoveWidgetCommand(service, telemetry),
		LayoutCommander:  commands.NewUpdateLayoutCommand(service, telemetry),
		ViewCommander:    commands.NewSetWidgetViewCommand(service, telemetry),
		RefreshCommander: commands.NewRefreshBoardCommand(service, telemetry),
		OpenCommander:    commands.NewOpenFlowCommand(flows, telemetry),
		SubmitCommander:  commands.NewSubmitPromptCommand(flows, telemetry),
		RetryCommander:   commands.NewRetryFlowCommand(flows, telemetry),
		CancelCommander:  commands.NewCancelFlowCommand(flows, telemetry),
		AcceptCommander:  commands.NewAcceptWidgetCommand(flows, telemetry),
	}
}

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return errNotConfigured
	}
	return cmd.Execute(ctx, msg)
}

func (e *CommandExecutor) Remove(ctx context.Context, input commands.RemoveWidgetInput) error {
	return execute(ctx, e.RemoveCommander, input)
}

func (e *CommandExecutor) UpdateLayout(ctx context.Context, input commands.UpdateLayoutInput) error {
	return execute(ctx, e.LayoutCommander, input)
}

func (e *CommandExecutor) SetView(ctx context.Context, input commands.SetWidgetViewInput) error {
	return execute(ctx, e.ViewCommander, input)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshBoardInput) error {
	return execute(ctx, e.RefreshCommander, input)
}

func (e *CommandExecutor) OpenFlow(ctx context.Context, input commands.OpenFlowInput) error {
	return execute(ctx, e.OpenCommander, input)
}

func (e *CommandExecutor) Submit(ctx context.Context, input commands.SubmitPromptInput) error {
	return execute(ctx, e.SubmitCommander, input)
}

func (e *CommandExecutor) Retry(ctx context.Context, input commands.FlowInput) error {
	return execute(ctx, e.RetryCommander, input)
}

func (e *CommandExecutor) Cancel(ctx context.Context, input commands.FlowInput) error {
	return execute(ctx, e.CancelCommander, input)
}

func (e *CommandExecutor) Accept(ctx context.Context, input commands.AcceptWidgetInput) error {
	return execute(ctx, e.AcceptCommander, input)
}

// QueryReader adapts go-command queriers into a Reader.
type QueryReader struct {
	BoardQuerier       gocommand.Querier[queries.BoardInput, dashboard.Board]
	WidgetViewQuerier  gocommand.Querier[queries.WidgetViewInput, dashboard.RenderedView]
	FlowQuerier        gocommand.Querier[queries.FlowInput, dashboard.FlowSnapshot]
	ClaimsPanelQuerier gocommand.Querier[queries.ClaimsPanelInput, dashboard.Widget]
}

var _ Reader = (*QueryReader)(nil)

// NewQueryReader wires the dashboard queries. panels may be nil when no
// claims backend is configured.
func NewQueryReader(service *dashboard.Service, flows *dashboard.FlowManager, renderer dashboard.WidgetViewRenderer, panels *dashboard.ClaimsPanels) *QueryReader {
	reader := &QueryReader{
		BoardQuerier:      queries.NewBoardQuery(service),
		WidgetViewQuerier: queries.NewWidgetViewQuery(service, renderer),
		FlowQuerier:       queries.NewFlowQuery(flows),
	}
	if panels != nil {
		reader.ClaimsPanelQuerier = queries.NewClaimsPanelQuery(panels)
	}
	return reader
}

func query[In, Out any](ctx context.Context, q gocommand.Querier[In, Out], input In) (Out, error) {
	if q == nil {
		var zero Out
		return zero, errNotConfigured
	}
	return q.Query(ctx, input)
}

func (r *QueryReader) Board(ctx context.Context) (dashboard.Board, error) {
	return query(ctx, r.BoardQuerier, queries.BoardInput{})
}

func (r *QueryReader) WidgetView(ctx context.Context, input queries.WidgetViewInput) (dashboard.RenderedView, error) {
	return query(ctx, r.WidgetViewQuerier, input)
}

func (r *QueryReader) Flow(ctx context.Context, input queries.FlowInput) (dashboard.FlowSnapshot, error) {
	return query(ctx, r.FlowQuerier, input)
}

func (r *QueryReader) ClaimsPanel(ctx context.Context, input queries.ClaimsPanelInput) (dashboard.Widget, error) {
	return query(ctx, r.ClaimsPanelQuerier, input)
}
