package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/goliatone/go-claims-dashboard/pkg/config"
)

type cli struct {
	Globals

	Serve    serveCmd    `cmd:"" help:"Serve the claims dashboard over HTTP."`
	Generate generateCmd `cmd:"" help:"Generate a widget from a prompt and preview it in the terminal."`
	Export   exportCmd   `cmd:"" help:"Export the persisted board as YAML."`
	Import   importCmd   `cmd:"" help:"Replace the persisted board with a YAML export."`
	Summary  summaryCmd  `cmd:"" help:"Print the week, month and year claim summary."`
	Ask      askCmd      `cmd:"" help:"Ask the claims assistant a question."`
	Table    tableCmd    `cmd:"" help:"Ask the claims assistant for a table."`
	Predict  predictCmd  `cmd:"" help:"Predict the outcome of a warranty claim file."`
	Extract  extractCmd  `cmd:"" help:"Extract a warranty claim from a scanned document image."`
}

// Globals are shared by every command. Flags override the config file.
type Globals struct {
	Config     string        `short:"c" type:"path" env:"CLAIMSCTL_CONFIG" help:"Path to the YAML configuration file."`
	BackendURL string        `name:"backend-url" env:"CLAIMS_BACKEND_URL" help:"Claims backend base URL. Empty uses the bundled demo data."`
	APIKey     string        `name:"api-key" env:"CLAIMS_API_KEY" help:"API key sent to the claims backend."`
	Timeout    time.Duration `env:"CLAIMS_TIMEOUT" help:"Claims backend request timeout."`
	Storage    string        `env:"CLAIMS_STORAGE" help:"Board storage driver (memory, sqlite)."`
	DB         string        `name:"db" type:"path" env:"CLAIMS_DB" help:"SQLite database path."`
	Generator  string        `env:"CLAIMS_GENERATOR" help:"Widget generator (http, genai, mock)."`
	Model      string        `env:"CLAIMS_GENAI_MODEL" help:"Model used by the genai generator."`
	GenAIKey   string        `name:"genai-key" env:"GEMINI_API_KEY" help:"API key for the genai generator."`
	Debug      bool          `help:"Enable debug logging."`

	stdout io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var app cli
	kctx := kong.Parse(&app,
		kong.Name("claimsctl"),
		kong.Description("Claims dashboard server and terminal tools."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(&app.Globals),
	)
	err := kctx.Run()
	kctx.FatalIfErrorf(err)
}

// load reads the config file and applies flag overrides.
func (g *Globals) load() (config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return config.Config{}, err
	}
	g.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (g *Globals) apply(cfg *config.Config) {
	set := func(dst *string, value string) {
		if v := strings.TrimSpace(value); v != "" {
			*dst = v
		}
	}
	set(&cfg.Backend.URL, g.BackendURL)
	set(&cfg.Backend.APIKey, g.APIKey)
	set(&cfg.Storage.Path, g.DB)
	set(&cfg.Generator.Model, g.Model)
	set(&cfg.Generator.APIKey, g.GenAIKey)
	if v := strings.TrimSpace(g.Storage); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(g.Generator); v != "" {
		cfg.Generator.Kind = strings.ToLower(v)
	}
	if g.DB != "" && g.Storage == "" {
		cfg.Storage.Driver = config.StorageSQLite
	}
	if g.Timeout > 0 {
		cfg.Backend.Timeout = g.Timeout
	}
	if g.Debug {
		cfg.Log.Level = "debug"
		cfg.Log.Development = true
	}
}

func (g *Globals) out() io.Writer {
	if g.stdout != nil {
		return g.stdout
	}
	return os.Stdout
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
