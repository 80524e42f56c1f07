package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// RefreshBoardInput emits a board event to refresh hooks.
type RefreshBoardInput struct {
	Event dashboard.BoardEvent
}

type refreshNotifier interface {
	NotifyBoardUpdated(ctx context.Context, event dashboard.BoardEvent) error
}

// RefreshBoardCommand triggers refresh hooks without touching the board.
type RefreshBoardCommand struct {
	service   refreshNotifier
	telemetry dashboard.Telemetry
}

// NewRefreshBoardCommand creates the command.
func NewRefreshBoardCommand(service refreshNotifier, telemetry dashboard.Telemetry) *RefreshBoardCommand {
	return &RefreshBoardCommand{service: service, telemetry: dashboard.NormalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshBoardInput] = (*RefreshBoardCommand)(nil)

// Execute notifies the dashboard service's refresh hooks.
func (c *RefreshBoardCommand) Execute(ctx context.Context, msg RefreshBoardInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if err := c.service.NotifyBoardUpdated(ctx, msg.Event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.refresh", map[string]any{
		"reason":    msg.Event.Reason,
		"widget_id": msg.Event.WidgetID,
	})
	return nil
}
