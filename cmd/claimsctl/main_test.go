package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-claims-dashboard/components/dashboard"
	"github.com/goliatone/go-claims-dashboard/pkg/config"
)

func parse(t *testing.T, args ...string) (*cli, *kong.Context) {
	t.Helper()
	var app cli
	parser, err := kong.New(&app, kong.Name("claimsctl"), kong.Exit(func(int) { t.Fatalf("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &app, kctx
}

func TestParseGenerateCommand(t *testing.T) {
	app, kctx := parse(t, "--db", "board.db", "generate", "top", "5", "models", "--accept")
	assert.Equal(t, "generate <prompt>", kctx.Command())
	assert.Equal(t, []string{"top", "5", "models"}, app.Generate.Prompt)
	assert.True(t, app.Generate.Accept)
	assert.Contains(t, app.DB, "board.db")
}

func TestParseServeDefaults(t *testing.T) {
	app, kctx := parse(t, "serve", "--addr", ":9000")
	assert.Equal(t, "serve", kctx.Command())
	assert.Equal(t, "fiber", app.Serve.Transport)
	assert.Equal(t, ":9000", app.Serve.Addr)
}

func TestGlobalsApplyOverrides(t *testing.T) {
	g := Globals{
		BackendURL: "http://claims.local",
		DB:         "/tmp/claims.db",
		Generator:  "HTTP",
		Timeout:    5 * time.Second,
		Debug:      true,
	}
	cfg := config.Default()
	g.apply(&cfg)
	assert.Equal(t, "http://claims.local", cfg.Backend.URL)
	assert.Equal(t, config.StorageSQLite, cfg.Storage.Driver, "a database path implies sqlite")
	assert.Equal(t, "/tmp/claims.db", cfg.Storage.Path)
	assert.Equal(t, config.GeneratorHTTP, cfg.Generator.Kind)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestGlobalsLoadRejectsInvalidOverrides(t *testing.T) {
	g := Globals{Generator: "genai"}
	_, err := g.load()
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestExportPath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "claims-dashboard.yaml", exportPath("", "Claims Dashboard"))
	assert.Equal(t, filepath.Join(dir, "q1-review.yaml"), exportPath(dir, "Q1 Review"))
	assert.Equal(t, "custom.yml", exportPath("custom.yml", "ignored"))
	assert.Equal(t, "board.yaml", exportPath("", "  "))
}

func sqliteGlobals(t *testing.T, path string, out *bytes.Buffer) *Globals {
	t.Helper()
	return &Globals{Storage: config.StorageSQLite, DB: path, Generator: config.GeneratorMock, stdout: out}
}

func TestGenerateAcceptExportImport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	var out bytes.Buffer
	g := sqliteGlobals(t, filepath.Join(dir, "board.db"), &out)

	gen := &generateCmd{Prompt: []string{"top", "5", "models", "by", "claims"}, Accept: true}
	require.NoError(t, gen.Run(ctx, g))
	assert.Contains(t, out.String(), "Top 5 Models By Claims")
	assert.Contains(t, out.String(), "MAZDA_CX_5")
	assert.Contains(t, out.String(), "1 widgets on the board")

	exportFile := filepath.Join(dir, "export.yaml")
	require.NoError(t, (&exportCmd{Name: "Claims", Out: exportFile}).Run(ctx, g))
	assert.Error(t, (&exportCmd{Name: "Claims", Out: exportFile}).Run(ctx, g), "existing files need --force")

	doc, err := dashboard.ReadBoardFile(exportFile)
	require.NoError(t, err)
	require.Len(t, doc.Widgets, 1)
	require.Len(t, doc.Layout, 1)
	assert.Equal(t, doc.Widgets[0].ID, doc.Layout[0].ID)

	out.Reset()
	other := sqliteGlobals(t, filepath.Join(dir, "other.db"), &out)
	require.NoError(t, (&importCmd{File: exportFile}).Run(ctx, other))
	assert.Contains(t, out.String(), "imported 1 widgets")

	out.Reset()
	require.NoError(t, (&exportCmd{Out: "-"}).Run(ctx, other))
	assert.Contains(t, out.String(), doc.Widgets[0].ID)
}

func TestGenerateWithoutAcceptLeavesBoardEmpty(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	g := sqliteGlobals(t, filepath.Join(t.TempDir(), "board.db"), &out)
	require.NoError(t, (&generateCmd{Prompt: []string{"claims"}}).Run(ctx, g))

	out.Reset()
	require.NoError(t, (&exportCmd{Out: "-"}).Run(ctx, g))
	assert.Contains(t, out.String(), "widgets: []")
}

type failingGenerator struct {
	calls int
}

func (g *failingGenerator) Generate(context.Context, string) (dashboard.GenerationResponse, error) {
	g.calls++
	return dashboard.GenerationResponse{}, fmt.Errorf("%w: status 500", dashboard.ErrGenerationFailed)
}

func TestGenerateSendsOneRequestPerRun(t *testing.T) {
	ctx := context.Background()
	a, err := newApp(ctx, config.Default(), appOptions{skipGenerator: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	generator := &failingGenerator{}
	flows := dashboard.NewFlowManager(a.service, dashboard.FlowOptions{Generator: generator})
	_, err = (&generateCmd{Prompt: []string{"claims", "by", "model"}, Accept: true}).generate(ctx, a, flows)
	assert.ErrorIs(t, err, dashboard.ErrGenerationFailed)
	assert.Equal(t, 1, generator.calls, "a failed generation is not resent")
	assert.Empty(t, a.service.Widgets())
}

func TestExportSeededBoard(t *testing.T) {
	var out bytes.Buffer
	g := &Globals{stdout: &out}
	require.NoError(t, (&exportCmd{Out: "-", Seeded: true}).Run(context.Background(), g))
	assert.Contains(t, out.String(), "claims-status-distribution-")
	assert.Contains(t, out.String(), "claims-last-month")
}

func TestAssistantCommandsWithDemoData(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	g := &Globals{stdout: &out}

	require.NoError(t, (&askCmd{Prompt: []string{"how", "many"}, Raw: true}).Run(ctx, g))
	assert.Contains(t, out.String(), "**approved**")

	out.Reset()
	require.NoError(t, (&tableCmd{Prompt: []string{"claims", "per", "model"}}).Run(ctx, g))
	assert.Contains(t, out.String(), "model")
	assert.Contains(t, out.String(), "MAZDA3_SEDAN")

	out.Reset()
	require.NoError(t, (&summaryCmd{Status: "T"}).Run(ctx, g))
	assert.Contains(t, out.String(), "Total claims")
	assert.Contains(t, out.String(), "Projected")

	claimFile := filepath.Join(t.TempDir(), "claim.yaml")
	require.NoError(t, os.WriteFile(claimFile, []byte("vin: JM1BPBJM1N1512345\nmodel_name: MAZDA_CX_5\n"), 0o600))
	out.Reset()
	require.NoError(t, (&predictCmd{File: claimFile}).Run(ctx, g))
	assert.Contains(t, out.String(), "Approved (A)")
	assert.Contains(t, out.String(), "81%")

	image := filepath.Join(t.TempDir(), "claim.png")
	require.NoError(t, os.WriteFile(image, []byte("\x89PNG"), 0o600))
	out.Reset()
	require.NoError(t, (&extractCmd{File: image}).Run(ctx, g))
	assert.Contains(t, out.String(), "claim_number: WC-2025-00042")
}

func TestReadClaimFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claim.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"VIN":"JM1","MiledgeIn":1200}`), 0o600))
	claim, err := readClaimFile(path)
	require.NoError(t, err)
	assert.Equal(t, "JM1", claim.VIN)
	assert.Equal(t, 1200, claim.MileageIn)

	bad := filepath.Join(t.TempDir(), "claim.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{`), 0o600))
	_, err = readClaimFile(bad)
	assert.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	shutdown := func(context.Context) error {
		close(stopped)
		return nil
	}
	serve := func() error {
		<-stopped
		return nil
	}
	cancel()
	assert.NoError(t, run(ctx, serve, shutdown))
}

func TestRunReturnsServeError(t *testing.T) {
	boom := errors.New("address in use")
	err := run(context.Background(), func() error { return boom }, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, boom)
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "3", formatCell(3.0))
	assert.Equal(t, "3.14", formatCell(3.14159))
	assert.Equal(t, "", formatCell(nil))
	assert.Equal(t, "a=1 b=x", formatCell(map[string]any{"b": "x", "a": 1.0}))
}
