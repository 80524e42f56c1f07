package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// SetWidgetViewInput selects the persisted display mode of a widget.
type SetWidgetViewInput struct {
	WidgetID string             `json:"widget_id"`
	Mode     dashboard.ViewMode `json:"mode"`
}

type viewService interface {
	SetWidgetView(ctx context.Context, widgetID string, mode dashboard.ViewMode) error
}

// SetWidgetViewCommand toggles a widget between chart and table display.
type SetWidgetViewCommand struct {
	service   viewService
	telemetry dashboard.Telemetry
}

// NewSetWidgetViewCommand creates the command.
func NewSetWidgetViewCommand(service viewService, telemetry dashboard.Telemetry) *SetWidgetViewCommand {
	return &SetWidgetViewCommand{service: service, telemetry: dashboard.NormalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetWidgetViewInput] = (*SetWidgetViewCommand)(nil)

// Execute stores the display mode.
func (c *SetWidgetViewCommand) Execute(ctx context.Context, msg SetWidgetViewInput) error {
	if c.service == nil {
		return errors.New("view command requires service")
	}
	if err := c.service.SetWidgetView(ctx, msg.WidgetID, msg.Mode); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.view", map[string]any{
		"widget_id": msg.WidgetID,
		"mode":      string(msg.Mode),
	})
	return nil
}
