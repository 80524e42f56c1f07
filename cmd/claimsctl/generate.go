package main

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-claims-dashboard/components/dashboard"
	"github.com/goliatone/go-claims-dashboard/components/dashboard/commands"
)

type generateCmd struct {
	Prompt []string `arg:"" help:"Describe the chart to build."`
	Accept bool     `help:"Add the previewed widget to the persisted board."`
}

func (cmd *generateCmd) Run(ctx context.Context, g *Globals) error {
	a, err := openApp(ctx, g, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	flows := dashboard.NewFlowManager(a.service, dashboard.FlowOptions{
		Generator: a.generator,
		Telemetry: a.telemetry,
	})
	preview, err := cmd.generate(ctx, a, flows)
	if err != nil {
		return err
	}
	out := g.out()
	printf(out, "%s", renderPreview(preview.Preview))

	if !cmd.Accept {
		return nil
	}
	accept := commands.NewAcceptWidgetCommand(flows, a.telemetry)
	if err := accept.Execute(ctx, commands.AcceptWidgetInput{FlowID: preview.flowID}); err != nil {
		return err
	}
	printf(out, "added %s (%d widgets on the board)\n", preview.Widget.ID, len(a.service.Widgets()))
	return nil
}

type flowPreview struct {
	dashboard.Preview
	flowID string
}

// generate drives a flow to the preview state with a single request. A failed
// request leaves the flow at the prompt; running the command again retries.
func (cmd *generateCmd) generate(ctx context.Context, a *app, flows *dashboard.FlowManager) (flowPreview, error) {
	id := uuid.NewString()
	open := commands.NewOpenFlowCommand(flows, a.telemetry)
	if err := open.Execute(ctx, commands.OpenFlowInput{FlowID: id}); err != nil {
		return flowPreview{}, err
	}
	submit := commands.NewSubmitPromptCommand(flows, a.telemetry)
	if err := submit.Execute(ctx, commands.SubmitPromptInput{FlowID: id, Prompt: strings.Join(cmd.Prompt, " ")}); err != nil {
		a.logger.Warn("generation failed", zap.String("flow_id", id), zap.Error(err))
		return flowPreview{}, err
	}
	snapshot, err := flows.Snapshot(id)
	if err != nil {
		return flowPreview{}, err
	}
	if snapshot.Preview == nil {
		return flowPreview{}, dashboard.ErrInvalidTransition
	}
	return flowPreview{Preview: *snapshot.Preview, flowID: id}, nil
}
