package main

import (
	"fmt"
	"os"

	"eca-morph/internal/raster"
	"eca-morph/internal/scan"

	"github.com/spf13/cobra"
)

func runScan(cmd *cobra.Command, args []string) error {
	threshold, _ := cmd.Flags().GetUint8("threshold")
	paletteName, _ := cmd.Flags().GetString("palette")
	workers, _ := cmd.Flags().GetInt("workers")
	palette, err := raster.ParsePalette(paletteName)
	if err != nil {
		return err
	}

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer file.Close()
	surface, err := raster.Decode(file)
	if err != nil {
		return err
	}

	bits := raster.Threshold(surface, threshold, palette)
	hist, err := scan.Scan(cmd.Context(), bits, scan.Options{Foreground: cfg.Scan.Foreground, Workers: workers})
	if err != nil {
		return err
	}
	st := hist.Stats()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %dx%d rows=%d segments=%d wrapped=%d isolated=%d longest=%d mean=%.2f\n",
		args[0], bits.Width(), bits.Height(), st.Rows, st.Segments, st.Wrapped, st.Isolated, st.Longest, st.MeanLen)
	if on, _ := cmd.Flags().GetBool("segments"); on {
		return printSegments(out, hist)
	}
	return nil
}
