package main

import (
	"encoding/json"
	"fmt"

	"eca-morph/internal/raster"

	"github.com/spf13/cobra"
)

func runShow(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	if f.Changed("store") {
		cfg.Store.Driver, _ = f.GetString("store")
	}
	if f.Changed("store-path") {
		cfg.Store.Path, _ = f.GetString("store-path")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	runner, closeStore, err := newRunner(cfg, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	replay, err := runner.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	meta, err := json.MarshalIndent(replay.Run, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n%d generations of %d cells\n", meta, replay.Raster.Height(), replay.Raster.Width())

	if path, _ := f.GetString("output"); path != "" {
		return writeImage(path, cfg.Render.Format, raster.Render(replay.Raster, cfg.Palette()))
	}
	return nil
}
