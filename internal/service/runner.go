// Package service runs the full evolve, scan, morph and persist pipeline
// for one configuration.
package service

import (
	"context"
	"errors"
	"time"

	"eca-morph/internal/core"
	"eca-morph/internal/eca"
	"eca-morph/internal/errs"
	"eca-morph/internal/logging"
	"eca-morph/internal/metrics"
	"eca-morph/internal/morph"
	"eca-morph/internal/raster"
	"eca-morph/internal/rule"
	"eca-morph/internal/scan"
	"eca-morph/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "eca-morph/service"

// Plan is one pipeline invocation.
type Plan struct {
	Engine   eca.Config
	Palette  raster.Palette
	Scan     scan.Options
	Requests []morph.Request
	// Start overrides the configured initial row when non-nil.
	Start []uint8
}

// Result collects everything one run produced. MorphErr and PersistErr hold
// recoverable collaborator failures; the history and histogram stay valid.
type Result struct {
	RunID      string
	Config     eca.Config
	Backend    string
	History    *eca.History
	Histogram  *scan.Histogram
	Surface    *core.ByteGrid
	Outputs    []morph.Output
	MorphErr   error
	PersistErr error
	Elapsed    time.Duration
}

// Runner wires the stages together. It is safe for concurrent use; every
// Run gets its own engine.
type Runner struct {
	table   *rule.Table
	backend eca.Backend
	morph   morph.Backend
	store   store.Gateway
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option customizes a Runner.
type Option func(*Runner)

// WithBackend sets the evolution backend.
func WithBackend(b eca.Backend) Option { return func(r *Runner) { r.backend = b } }

// WithMorphBackend sets the morphology backend.
func WithMorphBackend(b morph.Backend) Option { return func(r *Runner) { r.morph = b } }

// WithStore enables persistence.
func WithStore(g store.Gateway) Option { return func(r *Runner) { r.store = g } }

// WithMetrics enables Prometheus accounting.
func WithMetrics(m *metrics.Metrics) Option { return func(r *Runner) { r.metrics = m } }

// WithTracerProvider replaces the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Runner) { r.tracer = tp.Tracer(tracerName) }
}

// NewRunner builds a runner over table.
func NewRunner(table *rule.Table, opts ...Option) *Runner {
	r := &Runner{
		table:   table,
		backend: eca.Serial{},
		morph:   morph.Flat{},
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the rule table the runner evolves with.
func (r *Runner) Table() *rule.Table { return r.table }

// Store returns the configured gateway, or nil.
func (r *Runner) Store() store.Gateway { return r.store }

// Run executes plan. Parameter errors and cancellation abort the run; morph
// backend and store failures are reported on the Result.
func (r *Runner) Run(ctx context.Context, plan Plan) (*Result, error) {
	for _, req := range plan.Requests {
		if err := req.Validate(); err != nil {
			return nil, err
		}
	}
	began := time.Now()
	res := &Result{RunID: store.NewRunID(), Backend: r.backend.Name()}
	log := logging.Logger().With("run_id", res.RunID)

	engine := eca.New(r.table, eca.WithBackend(r.backend))
	if err := r.evolve(ctx, engine, plan, res); err != nil {
		return nil, err
	}
	if err := r.scan(ctx, plan, res); err != nil {
		return nil, err
	}
	if err := r.applyMorph(ctx, engine, plan, res); err != nil {
		return nil, err
	}
	r.persist(ctx, res)

	res.Elapsed = time.Since(began)
	log.Info("run complete",
		"rule", res.Config.Rule,
		"size", res.Config.Size,
		"evolutions", res.Config.Evolutions,
		"segments", res.Histogram.Stats().Segments,
		"outputs", len(res.Outputs),
		"elapsed", res.Elapsed)
	return res, nil
}

func (r *Runner) evolve(ctx context.Context, engine *eca.Engine, plan Plan, res *Result) error {
	ctx, span := r.tracer.Start(ctx, "evolve", trace.WithAttributes(
		attribute.Int("eca.rule", plan.Engine.Rule),
		attribute.Int("eca.size", plan.Engine.Size),
		attribute.Int("eca.evolutions", plan.Engine.Evolutions),
		attribute.String("eca.backend", r.backend.Name()),
	))
	defer span.End()

	if err := engine.Configure(plan.Engine); err != nil {
		return fail(span, err)
	}
	began := time.Now()
	h, err := engine.Evolution(ctx, plan.Start)
	if err != nil {
		return fail(span, err)
	}
	res.Config = engine.Config()
	res.History = h
	r.metrics.ObserveEvolution(plan.Engine.Rule, plan.Engine.Evolutions, time.Since(began).Seconds())
	return nil
}

func (r *Runner) scan(ctx context.Context, plan Plan, res *Result) error {
	ctx, span := r.tracer.Start(ctx, "scan")
	defer span.End()

	began := time.Now()
	hist, err := scan.Scan(ctx, raster.FromHistory(res.History), plan.Scan)
	if err != nil {
		return fail(span, err)
	}
	st := hist.Stats()
	span.SetAttributes(attribute.Int("scan.segments", st.Segments), attribute.Int("scan.isolated", st.Isolated))
	res.Histogram = hist
	r.metrics.ObserveScan(st.Segments, time.Since(began).Seconds())
	return nil
}

func (r *Runner) applyMorph(ctx context.Context, engine *eca.Engine, plan Plan, res *Result) error {
	ctx, span := r.tracer.Start(ctx, "morph", trace.WithAttributes(attribute.Int("morph.requests", len(plan.Requests))))
	defer span.End()

	p := morph.NewPipeline(engine, plan.Palette, morph.WithBackend(r.morph))
	surface, err := p.Surface()
	if err != nil {
		return fail(span, err)
	}
	res.Surface = surface
	outs, err := p.Run(ctx, plan.Requests...)
	res.Outputs = outs
	for _, out := range outs {
		r.metrics.ObserveMorph(string(out.Request.Op))
	}
	if err == nil {
		return nil
	}
	if !errors.Is(err, errs.ErrCollaboratorUnavailable) {
		return fail(span, err)
	}
	span.RecordError(err)
	res.MorphErr = err
	r.metrics.ObserveCollaboratorError("morph")
	logging.Logger().Warn("morphology backend failed", "run_id", res.RunID, "error", err)
	return nil
}

// persist stores the run. Failures never touch the in-memory results.
func (r *Runner) persist(ctx context.Context, res *Result) {
	if r.store == nil {
		return
	}
	ctx, span := r.tracer.Start(ctx, "persist")
	defer span.End()

	run := store.RunRecord{
		RunID:     res.RunID,
		CreatedAt: time.Now().UTC(),
		Config:    store.ConfigOf(res.Config, res.Backend),
	}
	err := r.store.SaveRun(ctx, run)
	if err == nil {
		err = r.store.SaveGenerations(ctx, res.RunID, store.Generations(res.RunID, res.History))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		res.PersistErr = err
		r.metrics.ObserveCollaboratorError("store")
		logging.Logger().Warn("persist run failed", "run_id", res.RunID, "error", err)
	}
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
