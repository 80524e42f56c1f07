package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-claims-dashboard/components/dashboard/queries"
	"github.com/goliatone/go-claims-dashboard/pkg/claims"
)

type summaryCmd struct {
	Status string `default:"T" enum:"T,A,R,P" help:"Claim status code (T total, A approved, R rejected, P pending)."`
}

func (cmd *summaryCmd) Run(ctx context.Context, g *Globals) error {
	a, err := openApp(ctx, g, appOptions{skipGenerator: true})
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := queries.NewClaimsSummaryQuery(a.panels).Query(ctx, queries.ClaimsSummaryInput{StatusCode: cmd.Status})
	if err != nil {
		return err
	}
	printf(g.out(), "%s\n%s\n", titleStyle.Render(claims.StatusName(cmd.Status)+" claims"), renderSummary(summary))
	return nil
}

type askCmd struct {
	Prompt []string `arg:"" help:"Question about the claims data."`
	Raw    bool     `help:"Print the markdown answer without rendering."`
	Width  int      `default:"100" help:"Word wrap width."`
}

func (cmd *askCmd) Run(ctx context.Context, g *Globals) error {
	a, err := openApp(ctx, g, appOptions{skipGenerator: true})
	if err != nil {
		return err
	}
	defer a.Close()

	answer, err := a.claims.Ask(ctx, strings.Join(cmd.Prompt, " "))
	if err != nil {
		return err
	}
	if cmd.Raw {
		printf(g.out(), "%s\n", answer.Content)
		return nil
	}
	rendered, err := renderMarkdown(answer.Content, cmd.Width)
	if err != nil {
		return err
	}
	printf(g.out(), "%s", rendered)
	return nil
}

type tableCmd struct {
	Prompt []string `arg:"" help:"Describe the rows to list."`
	JSON   bool     `name:"json" help:"Print the rows as JSON."`
}

func (cmd *tableCmd) Run(ctx context.Context, g *Globals) error {
	a, err := openApp(ctx, g, appOptions{skipGenerator: true})
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.claims.SmartTable(ctx, strings.Join(cmd.Prompt, " "))
	if err != nil {
		return err
	}
	if cmd.JSON {
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(result.Rows)
	}
	if len(result.Rows) == 0 {
		printf(g.out(), "%s\n", mutedStyle.Render("no rows"))
		return nil
	}
	printf(g.out(), "%s\n", renderClaimsTable(result))
	return nil
}

type predictCmd struct {
	File string `arg:"" type:"existingfile" help:"Warranty claim as JSON (backend field names) or YAML."`
}

func (cmd *predictCmd) Run(ctx context.Context, g *Globals) error {
	claim, err := readClaimFile(cmd.File)
	if err != nil {
		return err
	}
	a, err := openApp(ctx, g, appOptions{skipGenerator: true})
	if err != nil {
		return err
	}
	defer a.Close()

	prediction, err := a.claims.Predict(ctx, claim)
	if err != nil {
		return err
	}
	printf(g.out(), "%s\n", renderPrediction(prediction))
	return nil
}

// readClaimFile decodes a claim. JSON files use the backend field names, YAML
// files the snake_case names.
func readClaimFile(path string) (claims.WarrantyClaim, error) {
	raw, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return claims.WarrantyClaim{}, fmt.Errorf("claimsctl: read claim: %w", err)
	}
	var claim claims.WarrantyClaim
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &claim)
	default:
		err = yaml.Unmarshal(raw, &claim)
	}
	if err != nil {
		return claims.WarrantyClaim{}, fmt.Errorf("claimsctl: decode claim %s: %w", path, err)
	}
	return claim, nil
}

type extractCmd struct {
	File string `arg:"" type:"existingfile" help:"Scanned claim document (png, jpg, webp)."`
	JSON bool   `name:"json" help:"Print the claim with backend field names."`
}

func (cmd *extractCmd) Run(ctx context.Context, g *Globals) error {
	a, err := openApp(ctx, g, appOptions{skipGenerator: true})
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Open(cmd.File) //nolint:gosec
	if err != nil {
		return fmt.Errorf("claimsctl: open document: %w", err)
	}
	defer f.Close()

	claim, err := a.claims.Extract(ctx, filepath.Base(cmd.File), f)
	if err != nil {
		return err
	}
	if cmd.JSON {
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(claim)
	}
	enc := yaml.NewEncoder(g.out())
	enc.SetIndent(2)
	if err := enc.Encode(claim); err != nil {
		return err
	}
	return enc.Close()
}
