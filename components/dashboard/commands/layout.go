package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// UpdateLayoutInput carries the grid layout reported after a drag or resize.
type UpdateLayoutInput struct {
	Layout []dashboard.LayoutEntry `json:"layout"`
}

type layoutService interface {
	UpdateLayout(ctx context.Context, entries []dashboard.LayoutEntry) ([]dashboard.LayoutEntry, error)
}

// UpdateLayoutCommand replaces the persisted layout.
type UpdateLayoutCommand struct {
	service   layoutService
	telemetry dashboard.Telemetry
}

// NewUpdateLayoutCommand creates the command.
func NewUpdateLayoutCommand(service layoutService, telemetry dashboard.Telemetry) *UpdateLayoutCommand {
	return &UpdateLayoutCommand{service: service, telemetry: dashboard.NormalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateLayoutInput] = (*UpdateLayoutCommand)(nil)

// Execute forwards the layout to the service.
func (c *UpdateLayoutCommand) Execute(ctx context.Context, msg UpdateLayoutInput) error {
	if c.service == nil {
		return errors.New("layout command requires service")
	}
	layout, err := c.service.UpdateLayout(ctx, msg.Layout)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.layout", map[string]any{
		"submitted": len(msg.Layout),
		"kept":      len(layout),
	})
	return nil
}
