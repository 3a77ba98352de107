// Package badgerstore stores runs in an embedded BadgerDB.
//
// Keys:
//
//	run/<id>              JSON RunRecord
//	gen/<id>/<step:%08d>  encoded row
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"eca-morph/internal/errs"
	"eca-morph/internal/store"

	"github.com/dgraph-io/badger/v4"
)

const collaborator = "badger"

// Config controls how the database is opened.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path       string
	InMemory   bool
	SyncWrites bool
	// Logger receives BadgerDB's internal messages; nil silences them.
	Logger *slog.Logger
}

// DefaultConfig returns a durable on-disk configuration for path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns a configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store is a BadgerDB-backed store.Gateway.
type Store struct {
	db *badger.DB
}

var _ store.Gateway = (*Store)(nil)

// Open opens the database described by cfg.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errs.Invalid("store.path", cfg.Path, "is required for a persistent database")
	}
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, errs.Unavailable(collaborator, "open", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errs.Unavailable(collaborator, "open", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func runKey(id string) []byte { return []byte("run/" + id) }

func genPrefix(id string) []byte { return []byte("gen/" + id + "/") }

func genKey(id string, step int) []byte {
	return []byte(fmt.Sprintf("gen/%s/%08d", id, step))
}

// SaveRun writes the run metadata.
func (s *Store) SaveRun(ctx context.Context, run store.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if run.RunID == "" {
		return errs.Invalid("run_id", run.RunID, "is required")
	}
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(runKey(run.RunID), data)
	})
	if err != nil {
		return errs.Unavailable(collaborator, "save run", err)
	}
	return nil
}

// SaveGenerations writes gens in batches.
func (s *Store) SaveGenerations(ctx context.Context, runID string, gens []store.GenerationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, g := range gens {
		if err := wb.Set(genKey(runID, g.Index), store.EncodeRow(g.Vector)); err != nil {
			return errs.Unavailable(collaborator, "save generations", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return errs.Unavailable(collaborator, "save generations", err)
	}
	return nil
}

// LoadRun reads the run metadata.
func (s *Store) LoadRun(ctx context.Context, runID string) (store.RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return store.RunRecord{}, err
	}
	var run store.RunRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(runKey(runID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &run)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return store.RunRecord{}, fmt.Errorf("%w: %s", store.ErrNotFound, runID)
	}
	if err != nil {
		return store.RunRecord{}, errs.Unavailable(collaborator, "load run", err)
	}
	return run, nil
}

// LoadGenerations reads every stored row of runID ordered by step.
func (s *Store) LoadGenerations(ctx context.Context, runID string) ([]store.GenerationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := genPrefix(runID)
	var out []store.GenerationRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			step, err := strconv.Atoi(strings.TrimPrefix(string(item.Key()), string(prefix)))
			if err != nil {
				return fmt.Errorf("parse key %q: %w", item.Key(), err)
			}
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			vec, err := store.DecodeRow(raw)
			if err != nil {
				return err
			}
			out = append(out, store.GenerationRecord{RunID: runID, Index: step, Vector: vec})
		}
		return nil
	})
	if err != nil {
		return nil, errs.Unavailable(collaborator, "load generations", err)
	}
	return out, nil
}
