// Package config loads the claimsctl configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Generator backends.
const (
	GeneratorHTTP  = "http"
	GeneratorGenAI = "genai"
	GeneratorMock  = "mock"
)

var ErrInvalid = errors.New("config: invalid configuration")

// Config is the root configuration document.
type Config struct {
	Server    Server    `yaml:"server"`
	Backend   Backend   `yaml:"backend"`
	Storage   Storage   `yaml:"storage"`
	Generator Generator `yaml:"generator"`
	Charts    Charts    `yaml:"charts"`
	Seed      Seed      `yaml:"seed"`
	Log       Log       `yaml:"log"`
}

type Server struct {
	Address  string `yaml:"address"`
	BasePath string `yaml:"base_path"`
}

// Backend points at the claims API. An empty URL selects the bundled demo
// data.
type Backend struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type Storage struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type Generator struct {
	Kind    string `yaml:"kind"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	MaxRows int    `yaml:"max_rows"`
}

type Charts struct {
	Theme    string        `yaml:"theme"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Seed controls the claims panels placed on an empty board.
type Seed struct {
	Enabled bool `yaml:"enabled"`
	Year    int  `yaml:"year"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: Server{
			Address:  ":8080",
			BasePath: "/admin",
		},
		Backend: Backend{Timeout: 30 * time.Second},
		Storage: Storage{
			Driver: StorageMemory,
			Path:   "claims-dashboard.db",
		},
		Generator: Generator{
			Kind:    GeneratorMock,
			Model:   "gemini-2.5-flash",
			MaxRows: 200,
		},
		Charts: Charts{
			Theme:    "westeros",
			CacheTTL: 5 * time.Minute,
		},
		Seed: Seed{Enabled: true},
		Log:  Log{Level: "info"},
	}
}

// Load reads path on top of the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Decode(bytes.NewReader(raw))
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses a YAML document on top of the defaults. Unknown keys are
// rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode yaml: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Server.BasePath = "/" + strings.Trim(strings.TrimSpace(c.Server.BasePath), "/")
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Generator.Kind = strings.ToLower(strings.TrimSpace(c.Generator.Kind))
	c.Backend.URL = strings.TrimSpace(c.Backend.URL)
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Address) == "" {
		errs = append(errs, errors.New("server.address is required"))
	}
	if c.Backend.URL != "" {
		if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("backend.url %q is not an absolute URL", c.Backend.URL))
		}
	}
	if c.Backend.Timeout < 0 {
		errs = append(errs, errors.New("backend.timeout must not be negative"))
	}
	switch c.Storage.Driver {
	case StorageMemory:
	case StorageSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			errs = append(errs, errors.New("storage.path is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of memory, sqlite", c.Storage.Driver))
	}
	switch c.Generator.Kind {
	case GeneratorMock:
	case GeneratorHTTP:
		if c.Backend.URL == "" {
			errs = append(errs, errors.New("generator.kind http requires backend.url"))
		}
	case GeneratorGenAI:
		if strings.TrimSpace(c.Generator.APIKey) == "" {
			errs = append(errs, errors.New("generator.api_key is required for genai"))
		}
	default:
		errs = append(errs, fmt.Errorf("generator.kind %q is not one of http, genai, mock", c.Generator.Kind))
	}
	if c.Generator.MaxRows < 0 {
		errs = append(errs, errors.New("generator.max_rows must not be negative"))
	}
	if c.Charts.CacheTTL < 0 {
		errs = append(errs, errors.New("charts.cache_ttl must not be negative"))
	}
	if c.Seed.Year != 0 && (c.Seed.Year < 1900 || c.Seed.Year > 2100) {
		errs = append(errs, fmt.Errorf("seed.year %d is outside 1900-2100", c.Seed.Year))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}
