package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"eca-morph/internal/config"
	"eca-morph/internal/core"
	"eca-morph/internal/logging"
	"eca-morph/internal/raster"
	"eca-morph/internal/rule"
	"eca-morph/internal/scan"
	"eca-morph/internal/service"

	"github.com/spf13/cobra"
)

func runRun(cmd *cobra.Command, args []string) error {
	if err := overlayRunFlags(cmd, &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	plan, err := planFor(cfg)
	if err != nil {
		return err
	}
	runner, closeStore, err := newRunner(cfg, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := runner.Run(cmd.Context(), plan)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	st := res.Histogram.Stats()
	fmt.Fprintf(out, "run %s: rule %d, %dx%d, %s backend, %s\n",
		res.RunID, res.Config.Rule, res.History.Width(), res.History.Len(), res.Backend, res.Elapsed)
	fmt.Fprintf(out, "segments=%d wrapped=%d isolated=%d longest=%d mean=%.2f\n",
		st.Segments, st.Wrapped, st.Isolated, st.Longest, st.MeanLen)
	for _, o := range res.Outputs {
		fmt.Fprintf(out, "morph %s: %s x%d kernel %s\n", o.ID, o.Request.Op, o.Request.Iterations, o.Request.Kernel)
	}
	if res.MorphErr != nil {
		fmt.Fprintf(out, "morphology stopped early: %v\n", res.MorphErr)
	}
	if res.PersistErr != nil {
		fmt.Fprintf(out, "run not persisted: %v\n", res.PersistErr)
	}

	if cfg.Render.Output != "" {
		if err := writeImage(cfg.Render.Output, cfg.Render.Format, res.Surface); err != nil {
			return err
		}
		ext := filepath.Ext(cfg.Render.Output)
		stem := strings.TrimSuffix(cfg.Render.Output, ext)
		for _, o := range res.Outputs {
			if err := writeImage(stem+"_"+o.ID+ext, cfg.Render.Format, o.Surface); err != nil {
				return err
			}
		}
	}
	if on, _ := cmd.Flags().GetBool("segments"); on {
		return printSegments(out, res.Histogram)
	}
	return nil
}

// overlayRunFlags copies explicitly set flags over the loaded config.
func overlayRunFlags(cmd *cobra.Command, c *config.Config) error {
	f := cmd.Flags()
	var err error
	set := func(name string, apply func() error) {
		if err == nil && f.Changed(name) {
			err = apply()
		}
	}
	set("rule", func() (e error) { c.Rule, e = f.GetInt("rule"); return })
	set("size", func() (e error) { c.Size, e = f.GetInt("size"); return })
	set("evolutions", func() (e error) { c.Evolutions, e = f.GetInt("evolutions"); return })
	set("init", func() (e error) { c.Init.Method, e = f.GetString("init"); return })
	set("density", func() (e error) { c.Init.Density, e = f.GetFloat64("density"); return })
	set("seed", func() (e error) { c.Init.Seed, e = f.GetString("seed"); return })
	set("centered", func() (e error) { c.Init.Centered, e = f.GetBool("centered"); return })
	set("random-seed", func() (e error) { c.RandomSeed, e = f.GetInt64("random-seed"); return })
	set("backend", func() (e error) { c.Backend.Kind, e = f.GetString("backend"); return })
	set("workers", func() (e error) { c.Backend.Workers, e = f.GetInt("workers"); return })
	set("palette", func() (e error) { c.Render.Palette, e = f.GetString("palette"); return })
	set("output", func() (e error) { c.Render.Output, e = f.GetString("output"); return })
	set("ops", func() (e error) { c.Morph.Ops, e = f.GetStringSlice("ops"); return })
	set("kernel", func() (e error) { c.Morph.Kernel, e = f.GetString("kernel"); return })
	set("iterations", func() (e error) { c.Morph.Iterations, e = f.GetInt("iterations"); return })
	set("store", func() (e error) { c.Store.Driver, e = f.GetString("store"); return })
	set("store-path", func() (e error) { c.Store.Path, e = f.GetString("store-path"); return })
	if err == nil && c.Render.Output != "" {
		if format, ferr := raster.FormatForPath(c.Render.Output); ferr == nil {
			c.Render.Format = string(format)
		}
	}
	return err
}

func planFor(c config.Config) (service.Plan, error) {
	ec, err := c.EngineConfig()
	if err != nil {
		return service.Plan{}, err
	}
	reqs, err := c.MorphRequests()
	if err != nil {
		return service.Plan{}, err
	}
	return service.Plan{
		Engine:   ec,
		Palette:  c.Palette(),
		Scan:     scan.Options{Foreground: c.Scan.Foreground, Workers: c.Scan.Workers},
		Requests: reqs,
	}, nil
}

// newRunner builds a runner over the full rule table with the configured
// backend and store. The returned func closes the store.
func newRunner(c config.Config, opts []service.Option) (*service.Runner, func(), error) {
	backend, err := c.EngineBackend()
	if err != nil {
		return nil, nil, err
	}
	gw, err := service.OpenStore(c.Store)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {}
	all := []service.Option{service.WithBackend(backend)}
	if gw != nil {
		all = append(all, service.WithStore(gw))
		closeStore = func() {
			if err := gw.Close(); err != nil {
				logging.Logger().Warn("close store", "error", err)
			}
		}
	}
	all = append(all, opts...)
	return service.NewRunner(rule.Full(), all...), closeStore, nil
}

func writeImage(path, format string, s *core.ByteGrid) error {
	f, err := raster.FormatForPath(path)
	if err != nil {
		if f, err = raster.ParseFormat(format); err != nil {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := raster.Encode(file, s, f); err != nil {
		_ = file.Close()
		return err
	}
	logging.Logger().Info("raster written", "path", path, "format", f)
	return file.Close()
}

func printSegments(w io.Writer, h *scan.Histogram) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(h.Export())
}
