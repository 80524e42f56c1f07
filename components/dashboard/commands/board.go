package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// LoadBoardInput triggers the initial read from storage.
type LoadBoardInput struct{}

type boardLoader interface {
	Load(ctx context.Context) error
}

// LoadBoardCommand reads the persisted board and enables persistence.
type LoadBoardCommand struct {
	service   boardLoader
	telemetry dashboard.Telemetry
}

// NewLoadBoardCommand creates the command.
func NewLoadBoardCommand(service boardLoader, telemetry dashboard.Telemetry) *LoadBoardCommand {
	return &LoadBoardCommand{service: service, telemetry: dashboard.NormalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[LoadBoardInput] = (*LoadBoardCommand)(nil)

// Execute loads the board.
func (c *LoadBoardCommand) Execute(ctx context.Context, _ LoadBoardInput) error {
	if c.service == nil {
		return errors.New("load command requires service")
	}
	if err := c.service.Load(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.load", nil)
	return nil
}

// ImportBoardInput replaces the board with an exported document.
type ImportBoardInput struct {
	Board dashboard.Board `json:"board"`
}

type boardImporter interface {
	ImportBoard(ctx context.Context, board dashboard.Board) error
}

// ImportBoardCommand replaces the widget collection and layout.
type ImportBoardCommand struct {
	service   boardImporter
	telemetry dashboard.Telemetry
}

// NewImportBoardCommand creates the command.
func NewImportBoardCommand(service boardImporter, telemetry dashboard.Telemetry) *ImportBoardCommand {
	return &ImportBoardCommand{service: service, telemetry: dashboard.NormalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ImportBoardInput] = (*ImportBoardCommand)(nil)

// Execute imports the board.
func (c *ImportBoardCommand) Execute(ctx context.Context, msg ImportBoardInput) error {
	if c.service == nil {
		return errors.New("import command requires service")
	}
	if err := c.service.ImportBoard(ctx, msg.Board); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.import", map[string]any{
		"widgets": len(msg.Board.Widgets),
	})
	return nil
}
