package service

import (
	"context"
	"fmt"

	"eca-morph/internal/config"
	"eca-morph/internal/errs"
	"eca-morph/internal/logging"
	"eca-morph/internal/raster"
	"eca-morph/internal/store"
	"eca-morph/internal/store/badgerstore"
	"eca-morph/internal/store/sqlite"
)

// OpenStore opens the gateway selected by cfg. Driver "none" returns nil.
func OpenStore(cfg config.StoreConfig) (store.Gateway, error) {
	switch cfg.Driver {
	case "", config.DriverNone:
		return nil, nil
	case config.DriverMemory:
		return store.NewMemory(), nil
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverBadger:
		bc := badgerstore.DefaultConfig(cfg.Path)
		bc.Logger = logging.Logger().With("component", "badger")
		s, err := badgerstore.Open(bc)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, errs.Invalid("store.driver", cfg.Driver, "unknown driver")
	}
}

// Replay is a run loaded back from a store.
type Replay struct {
	Run    store.RunRecord
	Raster *raster.Bits
}

// Load reads runID from the runner's store.
func (r *Runner) Load(ctx context.Context, runID string) (*Replay, error) {
	if r.store == nil {
		return nil, errs.Unavailable("store", "load", fmt.Errorf("no store configured"))
	}
	ctx, span := r.tracer.Start(ctx, "load")
	defer span.End()

	run, err := r.store.LoadRun(ctx, runID)
	if err != nil {
		return nil, fail(span, err)
	}
	gens, err := r.store.LoadGenerations(ctx, runID)
	if err != nil {
		return nil, fail(span, err)
	}
	if len(gens) == 0 {
		return nil, fail(span, fmt.Errorf("%w: %s has no generations", store.ErrNotFound, runID))
	}
	bits, err := raster.NewBits(store.Rows(gens))
	if err != nil {
		return nil, fail(span, err)
	}
	return &Replay{Run: run, Raster: bits}, nil
}
