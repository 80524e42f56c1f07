package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// SeedBoardInput controls which claims year the starter board shows.
type SeedBoardInput struct {
	Year int `json:"year"`
}

// SeedBoardCommand fills an empty board with the claims panels.
type SeedBoardCommand struct {
	service   *dashboard.Service
	panels    *dashboard.ClaimsPanels
	telemetry dashboard.Telemetry
}

// NewSeedBoardCommand wires dependencies.
func NewSeedBoardCommand(service *dashboard.Service, panels *dashboard.ClaimsPanels, telemetry dashboard.Telemetry) *SeedBoardCommand {
	return &SeedBoardCommand{
		service:   service,
		panels:    panels,
		telemetry: dashboard.NormalizeTelemetry(telemetry),
	}
}

var _ gocommand.Commander[SeedBoardInput] = (*SeedBoardCommand)(nil)

// Execute seeds the board.
func (c *SeedBoardCommand) Execute(ctx context.Context, msg SeedBoardInput) error {
	if c.service == nil {
		return errors.New("seed command requires service")
	}
	if err := dashboard.SeedClaimsBoard(ctx, c.service, c.panels, msg.Year); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.seed", map[string]any{"year": msg.Year})
	return nil
}
