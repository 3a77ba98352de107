package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"eca-morph/internal/eca"
	"eca-morph/internal/initstate"
	"eca-morph/internal/logging"
	"eca-morph/internal/raster"
	"eca-morph/internal/rule"
	"eca-morph/internal/scan"
)

type scenario struct {
	rule   int
	method initstate.Method
}

func (s scenario) String() string { return fmt.Sprintf("rule=%d init=%s", s.rule, s.method) }

type scenarioResult struct {
	scenario scenario
	stats    scan.Stats
	density  float64
	elapsed  time.Duration
	err      error
}

func main() {
	size := flag.Int("size", 201, "cells per generation")
	evolutions := flag.Int("evolutions", 100, "generations per scenario")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	density := flag.Float64("density", 0.5, "density for uniform_random")
	seed := flag.String("seed", "1011", "bit string for seed_insert methods")
	full := flag.Bool("full", false, "sweep all 256 Wolfram codes instead of the catalog")
	top := flag.Int("top", 10, "results to print")
	flag.Parse()

	logger, err := logging.New(os.Stderr, "warn", "text")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.SetLogger(logger)

	table := rule.Default()
	if *full {
		table = rule.Full()
	}

	var sets []scenario
	for _, id := range table.IDs() {
		for _, m := range initstate.Methods() {
			sets = append(sets, scenario{rule: id, method: m})
		}
	}

	*workers = max(*workers, 1)
	fmt.Printf("Sweeping %d scenarios (%d workers, size %d, %d evolutions)\n", len(sets), *workers, *size, *evolutions)

	base := eca.Config{
		Size:       *size,
		Evolutions: *evolutions,
		Init:       initstate.Spec{Density: *density, Seed: *seed, Centered: true},
		RandomSeed: 1337,
	}

	start := time.Now()
	var all []scenarioResult
	for _, res := range sweep(table, base, sets, *workers) {
		if res.err != nil {
			fmt.Printf("%s failed: %v\n", res.scenario, res.err)
			continue
		}
		all = append(all, res)
	}

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i].stats, all[j].stats
		if a.Longest != b.Longest {
			return a.Longest > b.Longest
		}
		if a.Segments != b.Segments {
			return a.Segments > b.Segments
		}
		if all[i].scenario.rule != all[j].scenario.rule {
			return all[i].scenario.rule < all[j].scenario.rule
		}
		return all[i].scenario.method < all[j].scenario.method
	})
	elapsed := time.Since(start)

	fmt.Printf("\nTop %d results by longest run (elapsed %s):\n", *top, elapsed.Round(time.Millisecond))
	for i := 0; i < len(all) && i < *top; i++ {
		res := all[i]
		fmt.Printf("%2d) longest=%d segments=%d wrapped=%d isolated=%d mean=%.2f density=%.3f time=%s %s\n",
			i+1, res.stats.Longest, res.stats.Segments, res.stats.Wrapped, res.stats.Isolated,
			res.stats.MeanLen, res.density, res.elapsed.Round(time.Microsecond), res.scenario)
	}
}

// sweep runs every scenario on a pool of workers. Fewer than one worker is
// treated as one.
func sweep(table *rule.Table, base eca.Config, sets []scenario, workers int) []scenarioResult {
	workers = max(workers, 1)
	jobs := make(chan scenario)
	results := make(chan scenarioResult)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sc := range jobs {
				results <- runScenario(table, base, sc)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, sc := range sets {
			jobs <- sc
		}
		close(jobs)
	}()

	out := make([]scenarioResult, 0, len(sets))
	for res := range results {
		out = append(out, res)
	}
	return out
}

func runScenario(table *rule.Table, base eca.Config, sc scenario) scenarioResult {
	res := scenarioResult{scenario: sc}
	cfg := base
	cfg.Rule = sc.rule
	cfg.Init.Method = sc.method

	e := eca.New(table)
	if err := e.Configure(cfg); err != nil {
		res.err = err
		return res
	}
	began := time.Now()
	h, err := e.Evolution(context.Background(), nil)
	if err != nil {
		res.err = err
		return res
	}
	hist, err := scan.Scan(context.Background(), raster.FromHistory(h), scan.Options{Foreground: 1})
	if err != nil {
		res.err = err
		return res
	}
	res.elapsed = time.Since(began)
	res.stats = hist.Stats()
	res.density = onesDensity(h)
	return res
}

func onesDensity(h *eca.History) float64 {
	var ones, total int
	for i := 0; i < h.Len(); i++ {
		for x := 0; x < h.Width(); x++ {
			ones += int(h.At(x, i))
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(ones) / float64(total)
}
