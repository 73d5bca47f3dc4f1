package extraction

import (
	"iter"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/graphweave/internal/core/model"
	gwerrors "github.com/agenthands/graphweave/internal/errors"
	"github.com/agenthands/graphweave/internal/logging"
	"github.com/agenthands/graphweave/internal/metrics"
)

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	// Workers bounds parallel record processing. Zero runs sequentially.
	Workers int
	Metrics *metrics.Metrics
	Logger  *zerolog.Logger
}

// Summary reports the counters of one run.
type Summary struct {
	RunID string
	// Rows and Transformations count viable records only.
	Rows            int
	Transformations int
	Nodes           int
	Edges           int
	// NonViable lists the row indices that produced no subject, sorted.
	NonViable []int
	Errors    gwerrors.Summary
	Elapsed   time.Duration
}

// Output is the eager result of a run.
type Output struct {
	Nodes   []model.Node
	Edges   []model.Edge
	Errors  []error
	Summary Summary
}

// Runner drives a Pipeline over a Source.
type Runner struct {
	Pipeline *Pipeline
	opts     RunnerOptions
	logger   zerolog.Logger
}

// NewRunner returns a runner for p.
func NewRunner(p *Pipeline, opts RunnerOptions) (*Runner, error) {
	if p == nil {
		return nil, gwerrors.NewConfigError("runner", "a pipeline is required", nil)
	}
	if opts.Workers < 0 {
		return nil, gwerrors.NewConfigError("runner", "workers must not be negative", nil)
	}
	logger := logging.Default()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Runner{Pipeline: p, opts: opts, logger: logger}, nil
}

// accumulator collects results of concurrent record processing. Each slice has
// its own lock and counters are atomic.
type accumulator struct {
	nodesMu sync.Mutex
	nodes   []model.Node

	edgesMu sync.Mutex
	edges   []model.Edge

	errorsMu sync.Mutex
	errors   []error

	nonViableMu sync.Mutex
	nonViable   []int

	rows            atomic.Int64
	transformations atomic.Int64
	nodeCount       atomic.Int64
	edgeCount       atomic.Int64
}

// add records res. A non-viable record keeps its errors but adds nothing to the
// counters.
func (a *accumulator) add(res *Result, keep bool) {
	if len(res.Errors) > 0 {
		a.errorsMu.Lock()
		a.errors = append(a.errors, res.Errors...)
		a.errorsMu.Unlock()
	}
	if !res.Viable {
		a.nonViableMu.Lock()
		a.nonViable = append(a.nonViable, res.Index)
		a.nonViableMu.Unlock()
		return
	}

	a.rows.Add(int64(res.Rows))
	a.transformations.Add(int64(res.Transformations))
	a.nodeCount.Add(int64(res.NodeCount))
	a.edgeCount.Add(int64(len(res.Edges)))
	if !keep {
		return
	}
	a.nodesMu.Lock()
	a.nodes = append(a.nodes, res.Nodes...)
	a.nodesMu.Unlock()

	a.edgesMu.Lock()
	a.edges = append(a.edges, res.Edges...)
	a.edgesMu.Unlock()
}

// Stream is one lazy sequential run. Errors and Summary are complete once
// Batches has been fully consumed.
type Stream struct {
	runner *Runner
	src    Source
	acc    *accumulator
	runID   string
	start   time.Time
	elapsed time.Duration
	done    bool
}

// Stream starts a lazy run over src.
func (r *Runner) Stream(src Source) *Stream {
	return &Stream{runner: r, src: src, acc: &accumulator{}, runID: uuid.NewString()}
}

// Batches yields one batch per viable record, in record order. A raised error
// is yielded once and ends the sequence.
func (s *Stream) Batches() iter.Seq2[model.Batch, error] {
	return func(yield func(model.Batch, error) bool) {
		s.start = time.Now()
		defer func() {
			s.elapsed = time.Since(s.start)
			s.done = true
			s.runner.report(s.runID, s.acc, s.elapsed)
		}()
		for index, rec := range s.src.Records() {
			res, err := s.runner.Pipeline.Process(index, rec)
			if err != nil {
				s.acc.errors = append(s.acc.errors, err)
				yield(model.Batch{Index: index}, err)
				return
			}
			s.acc.add(res, false)
			if !res.Viable {
				continue
			}
			if !yield(model.Batch{Index: index, Nodes: res.Nodes, Edges: res.Edges}, nil) {
				return
			}
		}
	}
}

// Errors returns the accumulated errors.
func (s *Stream) Errors() []error { return s.acc.errors }

// Summary returns the run counters. Elapsed is zero until Batches starts and
// stops growing once it ends.
func (s *Stream) Summary() Summary {
	var elapsed time.Duration
	switch {
	case s.done:
		elapsed = s.elapsed
	case !s.start.IsZero():
		elapsed = time.Since(s.start)
	}
	return s.acc.summary(s.runID, elapsed)
}

// Run processes every record of src and collects the declared graph. With
// Workers above zero records are processed concurrently and the order of the
// collected elements is unspecified.
func (r *Runner) Run(src Source) (*Output, error) {
	if r.opts.Workers == 0 {
		return r.runSequential(src)
	}
	return r.runParallel(src)
}

func (r *Runner) runSequential(src Source) (*Output, error) {
	stream := r.Stream(src)
	out := &Output{}
	for batch, err := range stream.Batches() {
		if err != nil {
			return nil, err
		}
		out.Nodes = append(out.Nodes, batch.Nodes...)
		out.Edges = append(out.Edges, batch.Edges...)
	}
	out.Errors = stream.Errors()
	out.Summary = stream.Summary()
	return out, nil
}

func (r *Runner) runParallel(src Source) (*Output, error) {
	runID := uuid.NewString()
	start := time.Now()
	acc := &accumulator{}

	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	var failed atomic.Bool
	for index, rec := range src.Records() {
		if failed.Load() {
			break
		}
		g.Go(func() error {
			res, err := r.Pipeline.Process(index, rec)
			if err != nil {
				failed.Store(true)
				return err
			}
			acc.add(res, true)
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		acc.errors = append(acc.errors, err)
	}
	r.report(runID, acc, time.Since(start))
	if err != nil {
		return nil, err
	}
	return &Output{
		Nodes:   acc.nodes,
		Edges:   acc.edges,
		Errors:  acc.errors,
		Summary: acc.summary(runID, time.Since(start)),
	}, nil
}

func (a *accumulator) summary(runID string, elapsed time.Duration) Summary {
	nonViable := slices.Clone(a.nonViable)
	slices.Sort(nonViable)
	return Summary{
		RunID:           runID,
		Rows:            int(a.rows.Load()),
		Transformations: int(a.transformations.Load()),
		Nodes:           int(a.nodeCount.Load()),
		Edges:           int(a.edgeCount.Load()),
		NonViable:       nonViable,
		Errors:          gwerrors.Summarize(a.errors),
		Elapsed:         elapsed,
	}
}

// report logs the end-of-run aggregates and feeds the metrics.
func (r *Runner) report(runID string, acc *accumulator, elapsed time.Duration) {
	s := acc.summary(runID, elapsed)
	logger := r.logger.With().Str("run_id", runID).Logger()

	if n := len(s.NonViable); n > 0 {
		logger.Warn().Int("count", n).Msg("records produced no subject and were skipped")
		logger.Debug().Ints("rows", s.NonViable).Msg("non-viable records")
	}
	for _, t := range r.Pipeline.all() {
		if n := t.Rejected(); n > 0 {
			logger.Error().Str("transformer", t.String()).Int64("count", n).Msg("values rejected by validation")
		}
		if n := t.Unmatched(); n > 0 {
			logger.Info().Str("transformer", t.String()).Int64("count", n).Msg("values matched no branching rule")
		}
	}
	if total := s.Errors.Total(); total > 0 {
		logger.Error().Int("count", total).Msgf("extraction finished with %s", s.Errors)
	}
	logger.Info().
		Int("rows", s.Rows).
		Int("transformations", s.Transformations).
		Int("nodes", s.Nodes).
		Int("edges", s.Edges).
		Dur("elapsed", elapsed).
		Msg("performed extraction")

	r.opts.Metrics.ObserveExtraction(s.Rows, s.Transformations, s.Nodes, s.Edges, len(s.NonViable), acc.errors, elapsed)
}
