package main

import (
	"os"

	"eca-morph/internal/config"
	"eca-morph/internal/logging"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	// cfg is loaded by the root PersistentPreRunE before any subcommand runs.
	cfg config.Config

	rootCmd = &cobra.Command{
		Use:           "eca",
		Short:         "Evolve elementary cellular automata and analyze their rasters",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				loaded.Log.Level = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				loaded.Log.Format = logFormat
			}
			logger, err := logging.New(os.Stderr, loaded.Log.Level, loaded.Log.Format)
			if err != nil {
				return err
			}
			logging.SetLogger(logger)
			cfg = loaded
			return nil
		},
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Evolve, render, scan, apply morphology and optionally persist one run",
		Args:  cobra.NoArgs,
		RunE:  runRun,
	}

	scanCmd = &cobra.Command{
		Use:   "scan <image>",
		Short: "Scan an existing raster image for run segments",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}

	rulesCmd = &cobra.Command{
		Use:   "rules",
		Short: "List the registered rules with their Wolfram codes",
		Args:  cobra.NoArgs,
		RunE:  runRules,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	showCmd = &cobra.Command{
		Use:   "show <run-id>",
		Short: "Load a persisted run and optionally write its raster",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "text or json")

	rootCmd.AddCommand(runCmd)
	f := runCmd.Flags()
	f.Int("rule", 22, "rule id")
	f.Int("size", 50, "cells per generation")
	f.Int("evolutions", 25, "generations after the initial row")
	f.String("init", "single_active_cell", "initialization method")
	f.Float64("density", 0.5, "density for uniform_random")
	f.String("seed", "", "bit string for seed_insert methods")
	f.Bool("centered", true, "place the single cell at size/2")
	f.Int64("random-seed", 0, "seed for uniform_random")
	f.String("backend", "serial", "evolution backend: serial or parallel")
	f.Int("workers", 0, "parallel backend workers (0 = GOMAXPROCS)")
	f.String("palette", "dark", "dark (ones black) or light (ones white)")
	f.StringP("output", "o", "", "write the raster here; morphology outputs go next to it")
	f.StringSlice("ops", nil, "morphology operations in order")
	f.String("kernel", "", "structuring element rows, e.g. 010;111")
	f.Int("iterations", 0, "morphology iterations")
	f.String("store", "", "persistence driver: none, memory, sqlite or badger")
	f.String("store-path", "", "sqlite file or badger directory")
	f.Bool("segments", false, "print every segment as JSON")

	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().Uint8("threshold", 128, "gray level separating on and off pixels")
	scanCmd.Flags().String("palette", "dark", "palette the image was rendered with")
	scanCmd.Flags().Int("workers", 0, "rows scanned in parallel")
	scanCmd.Flags().Bool("segments", false, "print every segment as JSON")

	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().Bool("full", false, "list all 256 Wolfram codes")

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (default from config)")

	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringP("output", "o", "", "write the stored raster here")
	showCmd.Flags().String("store", "", "persistence driver: sqlite or badger")
	showCmd.Flags().String("store-path", "", "sqlite file or badger directory")
}
