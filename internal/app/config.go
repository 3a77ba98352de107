package app

import (
	"flag"
	"fmt"
	"sort"
	"strings"
)

// Config holds the viewer's command-line settings.
type Config struct {
	Sim      string
	Scale    int
	TPS      int
	Seed     int64
	HUDWidth int
	// Set carries key=value overrides handed to the sim factory.
	Set Settings
}

// NewConfig returns the viewer defaults.
func NewConfig() *Config {
	return &Config{Sim: "elementary", Scale: 8, TPS: 12, Seed: 42, HUDWidth: 220, Set: Settings{}}
}

// Bind attaches the configuration to fs.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to run")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "generations per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset")
	fs.IntVar(&c.HUDWidth, "hud", c.HUDWidth, "width of the parameter panel, 0 hides it")
	if c.Set == nil {
		c.Set = Settings{}
	}
	fs.Var(c.Set, "set", "sim setting as key=value, repeatable (e.g. -set rule=30)")
}

// Validate rejects settings the viewer cannot display.
func (c *Config) Validate() error {
	if c.Scale < 1 {
		return fmt.Errorf("scale must be at least 1, got %d", c.Scale)
	}
	if c.TPS < 1 {
		return fmt.Errorf("tps must be at least 1, got %d", c.TPS)
	}
	if c.HUDWidth < 0 {
		return fmt.Errorf("hud width must not be negative, got %d", c.HUDWidth)
	}
	return nil
}

// Settings is a repeatable key=value flag.
type Settings map[string]string

// String renders the settings sorted by key.
func (s Settings) String() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + s[k]
	}
	return strings.Join(parts, ",")
}

// Set parses one key=value pair; later values win.
func (s Settings) Set(v string) error {
	k, val, ok := strings.Cut(v, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return fmt.Errorf("setting %q is not key=value", v)
	}
	s[strings.ToLower(k)] = strings.TrimSpace(val)
	return nil
}
