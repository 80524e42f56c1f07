package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

type flowService interface {
	Open(ctx context.Context, id string) (*dashboard.CreationFlow, error)
	Submit(ctx context.Context, id, prompt string) (dashboard.Preview, error)
	Retry(ctx context.Context, id string) (dashboard.Preview, error)
	Cancel(ctx context.Context, id string) error
}

// OpenFlowInput starts a creation flow. Callers pick the id so they can query
// the flow afterwards.
type OpenFlowInput struct {
	FlowID string `json:"flow_id"`
}

// OpenFlowCommand opens a widget creation flow.
type OpenFlowCommand struct {
	flows     flowService
	telemetry dashboard.Telemetry
}

// NewOpenFlowCommand creates the command.
func NewOpenFlowCommand(flows flowService, telemetry dashboard.Telemetry) *OpenFlowCommand {
	return &OpenFlowCommand{flows: flows, telemetry: dashboard.NormalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[OpenFlowInput] = (*OpenFlowCommand)(nil)

// Execute opens the flow.
func (c *OpenFlowCommand) Execute(ctx context.Context, msg OpenFlowInput) error {
	if c.flows == nil {
		return errors.New("open flow command requires flow manager")
	}
	if msg.FlowID == "" {
		return errors.New("open flow command requires flow id")
	}
	if _, err := c.flows.Open(ctx, msg.FlowID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.flow_open", map[string]any{"flow_id": msg.FlowID})
	return nil
}

// SubmitPromptInput sends a prompt through a flow.
type SubmitPromptInput struct {
	FlowID string `json:"flow_id"`
	Prompt string `json:"prompt"`
}

// SubmitPromptCommand generates a preview for the prompt.
type SubmitPromptCommand struct {
	flows     flowService
	telemetry dashboard.Telemetry
}

// NewSubmitPromptCommand creates the command.
func NewSubmitPromptCommand(flows flowService, telemetry dashboard.Telemetry) *SubmitPromptCommand {
	return &SubmitPromptCommand{flows: flows, telemetry: dashboard.NormalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SubmitPromptInput] = (*SubmitPromptCommand)(nil)

// Execute submits the prompt and waits for the preview.
func (c *SubmitPromptCommand) Execute(ctx context.Context, msg SubmitPromptInput) error {
	if c.flows == nil {
		return errors.New("submit command requires flow manager")
	}
	preview, err := c.flows.Submit(ctx, msg.FlowID, msg.Prompt)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.flow_submit", map[string]any{
		"flow_id":   msg.FlowID,
		"widget_id": preview.Widget.ID,
	})
	return nil
}

// FlowInput identifies a flow for retry and cancel.
type FlowInput struct {
	FlowID string `json:"flow_id"`
}

// RetryFlowCommand resubmits the last prompt of a flow.
type RetryFlowCommand struct {
	flows     flowService
	telemetry dashboard.Telemetry
}

// NewRetryFlowCommand creates the command.
func NewRetryFlowCommand(flows flowService, telemetry dashboard.Telemetry) *RetryFlowCommand {
	return &RetryFlowCommand{flows: flows, telemetry: dashboard.NormalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[FlowInput] = (*RetryFlowCommand)(nil)

// Execute retries the flow.
func (c *RetryFlowCommand) Execute(ctx context.Context, msg FlowInput) error {
	if c.flows == nil {
		return errors.New("retry command requires flow manager")
	}
	if _, err := c.flows.Retry(ctx, msg.FlowID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.flow_retry", map[string]any{"flow_id": msg.FlowID})
	return nil
}

// CancelFlowCommand abandons the preview or in-flight request of a flow.
type CancelFlowCommand struct {
	flows     flowService
	telemetry dashboard.Telemetry
}

// NewCancelFlowCommand creates the command.
func NewCancelFlowCommand(flows flowService, telemetry dashboard.Telemetry) *CancelFlowCommand {
	return &CancelFlowCommand{flows: flows, telemetry: dashboard.NormalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[FlowInput] = (*CancelFlowCommand)(nil)

// Execute cancels the flow.
func (c *CancelFlowCommand) Execute(ctx context.Context, msg FlowInput) error {
	if c.flows == nil {
		return errors.New("cancel command requires flow manager")
	}
	if err := c.flows.Cancel(ctx, msg.FlowID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.flow_cancel", map[string]any{"flow_id": msg.FlowID})
	return nil
}
