// Package config loads run settings from defaults, a YAML file and ECA_*
// environment variables, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"eca-morph/internal/eca"
	"eca-morph/internal/errs"
	"eca-morph/internal/initstate"
	"eca-morph/internal/logging"
	"eca-morph/internal/morph"
	"eca-morph/internal/raster"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ECA_"

// Store drivers.
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

type InitConfig struct {
	Method   string  `yaml:"method" env:"METHOD"`
	Density  float64 `yaml:"density" env:"DENSITY"`
	Seed     string  `yaml:"seed" env:"SEED"`
	Centered bool    `yaml:"centered" env:"CENTERED"`
}

type BackendConfig struct {
	Kind    string `yaml:"kind" env:"KIND"`
	Workers int    `yaml:"workers" env:"WORKERS"`
}

type RenderConfig struct {
	Palette string `yaml:"palette" env:"PALETTE"`
	Format  string `yaml:"format" env:"FORMAT"`
	Output  string `yaml:"output" env:"OUTPUT"`
}

type ScanConfig struct {
	Foreground uint8 `yaml:"foreground" env:"FOREGROUND"`
	Workers    int   `yaml:"workers" env:"WORKERS"`
}

type MorphConfig struct {
	Kernel     string   `yaml:"kernel" env:"KERNEL"`
	Iterations int      `yaml:"iterations" env:"ITERATIONS"`
	Ops        []string `yaml:"ops" env:"OPS"`
}

type StoreConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"`
	Path   string `yaml:"path" env:"PATH"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// Config is the full set of run settings.
type Config struct {
	Rule       int           `yaml:"rule" env:"RULE"`
	Size       int           `yaml:"size" env:"SIZE"`
	Evolutions int           `yaml:"evolutions" env:"EVOLUTIONS"`
	Init       InitConfig    `yaml:"init" envPrefix:"INIT_"`
	RandomSeed int64         `yaml:"random_seed" env:"RANDOM_SEED"`
	Backend    BackendConfig `yaml:"backend" envPrefix:"BACKEND_"`
	Render     RenderConfig  `yaml:"render" envPrefix:"RENDER_"`
	Scan       ScanConfig    `yaml:"scan" envPrefix:"SCAN_"`
	Morph      MorphConfig   `yaml:"morph" envPrefix:"MORPH_"`
	Store      StoreConfig   `yaml:"store" envPrefix:"STORE_"`
	Server     ServerConfig  `yaml:"server" envPrefix:"SERVER_"`
	Log        LogConfig     `yaml:"log" envPrefix:"LOG_"`
}

// Default returns the settings of the reference rule 22 experiment.
func Default() Config {
	return Config{
		Rule:       22,
		Size:       50,
		Evolutions: 25,
		Init:       InitConfig{Method: string(initstate.MethodSingleActive), Density: 0.5, Centered: true},
		Backend:    BackendConfig{Kind: "serial"},
		Render:     RenderConfig{Palette: "dark", Format: string(raster.PNG)},
		Scan:       ScanConfig{Foreground: 1},
		Morph: MorphConfig{
			Kernel:     morph.DefaultKernel().String(),
			Iterations: 2,
			Ops:        []string{string(morph.Dilate), string(morph.Open), string(morph.Gradient), string(morph.BlackHat)},
		},
		Store:  StoreConfig{Driver: DriverNone},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults and then applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := Decode(bytes.NewReader(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode reads YAML from r into cfg. Unknown keys are rejected.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from ECA_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks every field that later stages would otherwise reject.
func (c Config) Validate() error {
	if _, err := c.EngineConfig(); err != nil {
		return err
	}
	if _, err := c.EngineBackend(); err != nil {
		return err
	}
	if _, err := raster.ParsePalette(c.Render.Palette); err != nil {
		return err
	}
	if _, err := raster.ParseFormat(c.Render.Format); err != nil {
		return err
	}
	if c.Scan.Foreground > 1 {
		return errs.Invalid("scan.foreground", c.Scan.Foreground, "must be 0 or 1")
	}
	if _, err := c.MorphRequests(); err != nil {
		return err
	}
	switch c.Store.Driver {
	case "", DriverNone, DriverMemory:
	case DriverSQLite, DriverBadger:
		if strings.TrimSpace(c.Store.Path) == "" {
			return errs.Invalid("store.path", c.Store.Path, "is required for driver "+c.Store.Driver)
		}
	default:
		return errs.Invalid("store.driver", c.Store.Driver, "must be none, memory, sqlite or badger")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// EngineConfig converts the settings into an engine configuration. Range
// checks on the rule and sizes are left to eca.Engine.Configure.
func (c Config) EngineConfig() (eca.Config, error) {
	method, err := initstate.ParseMethod(c.Init.Method)
	if err != nil {
		return eca.Config{}, err
	}
	spec := initstate.Spec{
		Method:   method,
		Size:     c.Size,
		Density:  c.Init.Density,
		Seed:     c.Init.Seed,
		Centered: c.Init.Centered,
	}
	if err := spec.Validate(); err != nil {
		return eca.Config{}, err
	}
	if c.Evolutions < 0 {
		return eca.Config{}, errs.Invalid("evolutions", c.Evolutions, "must not be negative")
	}
	return eca.Config{
		Rule:       c.Rule,
		Size:       c.Size,
		Evolutions: c.Evolutions,
		Init:       spec,
		RandomSeed: c.RandomSeed,
	}, nil
}

// EngineBackend returns the configured execution backend.
func (c Config) EngineBackend() (eca.Backend, error) {
	return eca.ParseBackend(c.Backend.Kind, c.Backend.Workers)
}

// Palette returns the configured presentation palette.
func (c Config) Palette() raster.Palette {
	p, err := raster.ParsePalette(c.Render.Palette)
	if err != nil {
		return raster.DarkOnes
	}
	return p
}

// MorphRequests expands Morph into ordered pipeline requests.
func (c Config) MorphRequests() ([]morph.Request, error) {
	k, err := morph.ParseKernel(c.Morph.Kernel)
	if err != nil {
		return nil, err
	}
	reqs := make([]morph.Request, 0, len(c.Morph.Ops))
	for _, name := range c.Morph.Ops {
		op, err := morph.ParseOp(name)
		if err != nil {
			return nil, err
		}
		req := morph.Request{Op: op, Kernel: k, Iterations: c.Morph.Iterations}
		if err := req.Validate(); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// FromMap overlays the viewer's key=value settings on the defaults. Invalid
// values are ignored.
func FromMap(m map[string]string) Config {
	c := Default()
	if m == nil {
		return c
	}
	atoi := func(key string, dst *int, floor int) {
		if v, ok := m[key]; ok {
			if parsed, err := strconv.Atoi(v); err == nil && parsed >= floor {
				*dst = parsed
			}
		}
	}
	atoi("rule", &c.Rule, 0)
	atoi("size", &c.Size, 1)
	atoi("w", &c.Size, 1)
	atoi("evolutions", &c.Evolutions, 0)
	atoi("h", &c.Evolutions, 0)
	atoi("workers", &c.Backend.Workers, 0)
	if v, ok := m["init"]; ok {
		if method, err := initstate.ParseMethod(v); err == nil {
			c.Init.Method = string(method)
		}
	}
	if v, ok := m["density"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.Init.Density = parsed
		}
	}
	if v, ok := m["seed"]; ok {
		c.Init.Seed = v
	}
	if v, ok := m["centered"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Init.Centered = parsed
		}
	}
	if v, ok := m["random_seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.RandomSeed = parsed
		}
	}
	if v, ok := m["backend"]; ok {
		c.Backend.Kind = v
	}
	if v, ok := m["palette"]; ok {
		c.Render.Palette = v
	}
	return c
}
