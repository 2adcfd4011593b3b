// Package ihtp wires instance loading, the oracle, the warm start generator,
// the genetic search and its observers into a single solver run.
package ihtp

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/rand"
	"k8s.io/klog/v2"
	"k8s.io/utils/ptr"

	"github.com/ihtc/ihtp-ga/pkg/algorithms"
	"github.com/ihtc/ihtp-ga/pkg/api/v1alpha1"
	"github.com/ihtc/ihtp-ga/pkg/chromosome"
	"github.com/ihtc/ihtp-ga/pkg/history"
	"github.com/ihtc/ihtp-ga/pkg/hospital"
	"github.com/ihtc/ihtp-ga/pkg/metrics"
	"github.com/ihtc/ihtp-ga/pkg/oracle"
	"github.com/ihtc/ihtp-ga/pkg/oracle/builtin"
	"github.com/ihtc/ihtp-ga/pkg/util"
	"github.com/ihtc/ihtp-ga/pkg/warmstart"
)

// Solver runs the genetic search on one instance.
type Solver struct {
	args       *Args
	instance   *v1alpha1.Instance
	catalog    *hospital.Catalog
	oracle     oracle.CostFunc
	registerer prometheus.Registerer
	observers  []algorithms.Observer
	logger     klog.Logger
}

type Option func(*Solver)

// WithOracle replaces the oracle selected by Args.Oracle.
func WithOracle(f oracle.CostFunc) Option {
	return func(s *Solver) { s.oracle = f }
}

// WithRegisterer exports search metrics to reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Solver) { s.registerer = reg }
}

// WithObservers adds observers notified after every era.
func WithObservers(observers ...algorithms.Observer) Option {
	return func(s *Solver) { s.observers = append(s.observers, observers...) }
}

// Outcome is the result of a solver run.
type Outcome struct {
	// RunID identifies the run in the history database, empty without one
	RunID    string
	Best     *chromosome.Chromosome
	Solution *v1alpha1.Solution
	Result   oracle.Result
	Trace    []util.TracePoint

	// OutputPath is where the solution was written
	OutputPath string

	// Stopped is set when the run ended early on Args.Timeout or
	// cancellation; the best schedule found so far is still returned
	Stopped bool
}

// NewSolver validates args, loads the instance and selects the oracle.
// Args must already carry their defaults.
func NewSolver(ctx context.Context, args *Args, opts ...Option) (*Solver, error) {
	if err := ValidateArgs(args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	in, err := LoadInstance(args.InstancePath)
	if err != nil {
		return nil, err
	}
	c, err := hospital.NewCatalog(in)
	if err != nil {
		return nil, fmt.Errorf("loading instance %s: %w", args.InstancePath, err)
	}
	s := &Solver{
		args:     args,
		instance: in,
		catalog:  c,
		logger:   klog.FromContext(ctx).WithValues("instance", args.InstancePath),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.oracle == nil {
		switch args.Oracle {
		case OracleValidator:
			cfg, err := oracle.LoadValidatorConfig()
			if err != nil {
				return nil, err
			}
			s.oracle = oracle.NewValidator(ctx, cfg, args.InstancePath)
		default:
			s.oracle = builtin.New(ctx, c)
		}
	}
	return s, nil
}

// Instance returns the loaded instance.
func (s *Solver) Instance() *v1alpha1.Instance { return s.instance }

// Solve runs the search and writes the best schedule to the output path.
func (s *Solver) Solve(ctx context.Context) (*Outcome, error) {
	if s.args.Timeout.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.args.Timeout.Duration)
		defer cancel()
	}
	ctx = klog.NewContext(ctx, s.logger)

	seed := ptr.Deref(s.args.Seed, uint64(time.Now().UnixNano()))
	rng := rand.New(rand.NewSource(seed))
	cfg := s.args.Config()
	out := &Outcome{OutputPath: s.args.OutputPath}
	if out.OutputPath == "" {
		out.OutputPath = DefaultOutputPath(s.args.InstancePath)
	}

	f := s.oracle
	trace := &util.Trace{}
	observers := []algorithms.Observer{trace}
	var sampling []warmstart.Option
	if s.registerer != nil {
		rec, err := metrics.NewRecorder(s.registerer)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
		f = rec.InstrumentOracle(f)
		sampling = append(sampling, warmstart.WithRejectionHook(rec.ObserveRejection))
		observers = append(observers, rec)
	}
	if s.args.HistoryPath != "" {
		store, err := history.Open(s.args.HistoryPath)
		if err != nil {
			return nil, err
		}
		defer func() { _ = store.Close() }()
		run, err := store.StartRun(ctx, s.args.InstancePath, cfg)
		if err != nil {
			return nil, err
		}
		out.RunID = run.ID()
		observers = append(observers, run)
	}
	if s.args.Checkpoint {
		observers = append(observers, algorithms.ObserverFunc(func(_ context.Context, st algorithms.EraStats) error {
			if !st.BestChanged || st.Best == nil {
				return nil
			}
			s.logger.V(2).Info("Checkpointing best schedule", "era", st.Era, "softCost", st.BestSoftCost, "path", out.OutputPath)
			return WriteSolution(out.OutputPath, st.Best.Solution())
		}))
	}
	observers = append(observers, s.observers...)

	sampler := warmstart.New(ctx, s.catalog, rng, f, ptr.Deref(s.args.AssignProbability, DefaultAssignProbability), sampling...)
	ga, err := algorithms.New(ctx, cfg, f, sampler, rng, algorithms.WithObservers(observers...))
	if err != nil {
		return nil, err
	}
	s.logger.Info("Solving", "seed", seed, "oracle", s.args.Oracle, "patients", len(s.instance.Patients), "days", s.instance.Days)

	best, err := ga.Run(ctx)
	out.Trace = trace.Points()
	if err != nil {
		if best == nil || ctx.Err() == nil {
			return out, err
		}
		out.Stopped = true
		s.logger.Info("Search stopped, keeping the best schedule so far", "reason", context.Cause(ctx), "eras", len(out.Trace))
	}

	out.Best = best
	out.Solution = best.Solution()
	out.Result, _ = best.Cost()
	if err := WriteSolution(out.OutputPath, out.Solution); err != nil {
		return out, fmt.Errorf("writing solution: %w", err)
	}
	if s.args.PlotPath != "" && len(out.Trace) > 0 {
		if err := util.PlotConvergence(out.Trace, instanceName(s.args.InstancePath), algorithms.Name, s.args.PlotPath); err != nil {
			return out, fmt.Errorf("plotting convergence: %w", err)
		}
	}
	s.logger.Info("Best schedule written",
		"path", out.OutputPath,
		"softCost", out.Result.SoftCost,
		"hardViolations", out.Result.HardViolations,
		"eras", len(out.Trace))
	return out, nil
}
