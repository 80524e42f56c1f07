package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// AcceptWidgetInput names the flow whose preview should be committed.
type AcceptWidgetInput struct {
	FlowID string `json:"flow_id"`
}

type flowAcceptor interface {
	Accept(ctx context.Context, flowID string) (dashboard.Widget, error)
}

// AcceptWidgetCommand commits a previewed widget to the board. It is the only
// path by which widgets are added.
type AcceptWidgetCommand struct {
	flows     flowAcceptor
	telemetry dashboard.Telemetry
}

// NewAcceptWidgetCommand creates a command instance.
func NewAcceptWidgetCommand(flows flowAcceptor, telemetry dashboard.Telemetry) *AcceptWidgetCommand {
	return &AcceptWidgetCommand{flows: flows, telemetry: dashboard.NormalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AcceptWidgetInput] = (*AcceptWidgetCommand)(nil)

// Execute delegates to the flow manager.
func (c *AcceptWidgetCommand) Execute(ctx context.Context, msg AcceptWidgetInput) error {
	if c.flows == nil {
		return errors.New("accept command requires flow manager")
	}
	if msg.FlowID == "" {
		return errors.New("accept command requires flow id")
	}
	widget, err := c.flows.Accept(ctx, msg.FlowID)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.accept", map[string]any{
		"flow_id":   msg.FlowID,
		"widget_id": widget.ID,
	})
	return nil
}
