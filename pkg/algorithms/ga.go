// Package algorithms implements the adaptive genetic search over hospital
// schedules.
//
// Every era the best SelectionFraction of the population survives as
// parents. Children are produced by exchanging patient placements between
// two parents and mutating the result; a child joins the next population
// only when it changed, its nurse coverage could be repaired and the oracle
// reports no hard violation. When the best soft cost stops improving, the
// operator probabilities drift towards more disruptive values and fresh
// feasible chromosomes are injected.
package algorithms

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/exp/rand"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/klog/v2"

	"github.com/ihtc/ihtp-ga/pkg/chromosome"
	"github.com/ihtc/ihtp-ga/pkg/oracle"
)

const (
	Name = "AdaptiveGA"

	tracerName = "github.com/ihtc/ihtp-ga/pkg/algorithms"
)

// Sampler produces fresh evaluated hard-feasible chromosomes.
type Sampler interface {
	Feasible(ctx context.Context) (*chromosome.Chromosome, error)
}

// GeneticAlgorithm runs the search. It is not safe for concurrent use.
type GeneticAlgorithm struct {
	cfg       Config
	oracle    oracle.CostFunc
	sampler   Sampler
	rng       *rand.Rand
	observers []Observer
	logger    klog.Logger
	tracer    trace.Tracer

	population []*chromosome.Chromosome
	adaptive   *adaptiveControl
}

// Option customizes a GeneticAlgorithm.
type Option func(*GeneticAlgorithm)

// WithObservers registers observers notified after every era.
func WithObservers(observers ...Observer) Option {
	return func(g *GeneticAlgorithm) {
		g.observers = append(g.observers, observers...)
	}
}

// WithPopulation starts the search from the given evaluated chromosomes
// instead of sampling the initial population.
func WithPopulation(population []*chromosome.Chromosome) Option {
	return func(g *GeneticAlgorithm) {
		g.population = slices.Clone(population)
	}
}

// New validates cfg and returns a search scoring children with f and
// drawing fresh chromosomes from sampler.
func New(ctx context.Context, cfg Config, f oracle.CostFunc, sampler Sampler, rng *rand.Rand, opts ...Option) (*GeneticAlgorithm, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	g := &GeneticAlgorithm{
		cfg:      cfg,
		oracle:   f,
		sampler:  sampler,
		rng:      rng,
		logger:   klog.FromContext(ctx).WithValues("algorithm", Name),
		tracer:   otel.Tracer(tracerName),
		adaptive: newAdaptiveControl(cfg),
	}
	for _, opt := range opts {
		opt(g)
	}
	for i, c := range g.population {
		if !c.Feasible() {
			return nil, fmt.Errorf("initial chromosome %d is not an evaluated feasible schedule", i)
		}
	}
	return g, nil
}

// Run executes the configured number of eras and returns the best
// chromosome. When the context is cancelled or an oracle call fails, the
// best chromosome found so far is returned together with the error.
func (g *GeneticAlgorithm) Run(ctx context.Context) (*chromosome.Chromosome, error) {
	ctx, span := g.tracer.Start(ctx, "Run", trace.WithAttributes(
		attribute.Int("population", g.cfg.PopulationSize),
		attribute.Int("eras", g.cfg.Eras),
	))
	defer span.End()
	start := time.Now()

	g.logger.Info("Starting evolution",
		"populationSize", g.cfg.PopulationSize,
		"eras", g.cfg.Eras,
		"parents", g.cfg.Parents(),
		"crossover", g.cfg.Probabilities.Crossover,
		"mutation", g.cfg.Probabilities.Mutation,
		"stagnationThreshold", g.cfg.StagnationThreshold,
	)

	if missing := g.cfg.PopulationSize - len(g.population); missing > 0 {
		fresh, err := g.fresh(ctx, missing)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "initial population")
			return g.Best(), fmt.Errorf("building initial population: %w", err)
		}
		g.population = append(g.population, fresh...)
	}
	g.sortPopulation()
	g.logger.V(2).Info("Initial population ready", "size", len(g.population), "bestSoftCost", g.population[0].SoftCost())

	for era := 0; era < g.cfg.Eras; era++ {
		stats, err := g.step(ctx, era)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "era failed")
			return g.Best(), fmt.Errorf("era %d: %w", era, err)
		}
		for _, o := range g.observers {
			if err := o.ObserveEra(ctx, stats); err != nil {
				return g.Best(), fmt.Errorf("observing era %d: %w", era, err)
			}
		}
	}

	best := g.Best()
	span.SetAttributes(attribute.Int("best.soft_cost", best.SoftCost()))
	g.logger.Info("Evolution complete", "bestSoftCost", best.SoftCost(), "elapsed", time.Since(start))
	return best, nil
}

// Best returns the lowest soft-cost chromosome of the current population, or
// nil before any population exists. Ties go to the earliest member.
func (g *GeneticAlgorithm) Best() *chromosome.Chromosome {
	if len(g.population) == 0 {
		return nil
	}
	return slices.MinFunc(g.population, bySoftCost)
}

// Population returns the current population, best first after an era.
func (g *GeneticAlgorithm) Population() []*chromosome.Chromosome {
	return g.population
}

// Probabilities returns the operator probabilities in effect.
func (g *GeneticAlgorithm) Probabilities() Probabilities {
	return g.adaptive.current
}

// Stagnation returns the number of eras the tracked best has been held.
func (g *GeneticAlgorithm) Stagnation() int {
	return g.adaptive.stagnation
}

func (g *GeneticAlgorithm) step(ctx context.Context, era int) (EraStats, error) {
	ctx, span := g.tracer.Start(ctx, "Era", trace.WithAttributes(attribute.Int("era", era)))
	defer span.End()
	start := time.Now()
	stats := EraStats{Era: era}
	n := g.cfg.PopulationSize

	parents := g.selection()
	if g.adaptive.stagnation >= 2*g.cfg.StagnationThreshold && g.rng.Float64() > 0.5 {
		if err := g.enforceInjection(ctx, parents); err != nil {
			return stats, err
		}
		stats.EnforcedInjection = true
		g.logger.V(2).Info("Injection enforced", "era", era, "stagnation", g.adaptive.stagnation)
	}

	next := make([]*chromosome.Chromosome, 0, n)
	next = append(next, parents...)
	for len(next) < n {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		i, j := g.pickParents(len(parents))
		var c1, c2 *chromosome.Chromosome
		if g.rng.Float64() < g.adaptive.current.Crossover {
			c1, c2 = g.crossover(parents[i], parents[j])
		} else {
			c1, c2 = parents[i].Clone(), parents[j].Clone()
		}
		for _, child := range []*chromosome.Chromosome{c1, c2} {
			if len(next) == n {
				break
			}
			accepted, err := g.offspring(ctx, child, &stats)
			if err != nil {
				return stats, err
			}
			if accepted {
				next = append(next, child)
			}
		}
	}
	g.population = next
	g.sortPopulation()

	stats.BestChanged = g.adaptive.observe(g.population[0])
	if g.adaptive.stagnating() {
		injected, err := g.inject(ctx)
		if err != nil {
			return stats, err
		}
		stats.Injected = injected
		g.logger.V(2).Info("Injected fresh chromosomes", "era", era, "count", injected, "stagnation", g.adaptive.stagnation)
	}

	g.fillStats(&stats)
	stats.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("best.soft_cost", stats.BestSoftCost),
		attribute.Int("children.accepted", stats.Accepted),
		attribute.Int("children.infeasible", stats.Infeasible),
	)
	g.logger.V(2).Info("Era complete",
		"era", era,
		"bestSoftCost", stats.BestSoftCost,
		"meanSoftCost", stats.MeanSoftCost,
		"stagnation", stats.Stagnation,
		"accepted", stats.Accepted,
		"infeasible", stats.Infeasible,
		"unchanged", stats.Unchanged,
		"repairFailed", stats.RepairFailed,
		"overbooked", stats.Overbooked,
		"unique", stats.Unique,
	)
	return stats, nil
}

// offspring mutates, repairs and scores a child and reports whether it may
// join the next population.
func (g *GeneticAlgorithm) offspring(ctx context.Context, child *chromosome.Chromosome, stats *EraStats) (bool, error) {
	g.mutate(child)
	if !child.FixUncoveredRooms() {
		stats.RepairFailed++
		return false, nil
	}
	if !child.HasChanged() {
		stats.Unchanged++
		return false, nil
	}
	if child.Hospital().Overbooked() {
		stats.Overbooked++
		return false, nil
	}

	ctx, span := g.tracer.Start(ctx, "Evaluate")
	err := child.ComputeCost(ctx, g.oracle)
	span.End()
	if err != nil {
		return false, fmt.Errorf("evaluating child: %w", err)
	}
	if !child.Feasible() {
		res, _ := child.Cost()
		stats.Infeasible++
		g.logger.V(2).Info("Discarded infeasible child", "hardViolations", res.HardViolations)
		return false, nil
	}
	g.logger.V(4).Info("Accepted child",
		"softCost", child.SoftCost(),
		"crossovered", child.Crossovered(),
		"mutated", child.Mutated(),
	)
	child.ResetFlags()
	stats.Accepted++
	return true, nil
}

// selection returns the best chromosomes of the population, best first.
func (g *GeneticAlgorithm) selection() []*chromosome.Chromosome {
	g.sortPopulation()
	return slices.Clone(g.population[:g.cfg.Parents()])
}

// pickParents draws two distinct parent positions.
func (g *GeneticAlgorithm) pickParents(n int) (int, int) {
	i := g.rng.Intn(n)
	j := g.rng.Intn(n - 1)
	if j >= i {
		j++
	}
	return i, j
}

// enforceInjection replaces the worst sorted parents with fresh chromosomes
// and shuffles the result.
func (g *GeneticAlgorithm) enforceInjection(ctx context.Context, parents []*chromosome.Chromosome) error {
	n := len(parents) - int(g.cfg.EnforcedKeepFraction*float64(len(parents)))
	fresh, err := g.fresh(ctx, n)
	if err != nil {
		return fmt.Errorf("enforced injection: %w", err)
	}
	copy(parents[len(parents)-n:], fresh)
	g.rng.Shuffle(len(parents), func(i, j int) { parents[i], parents[j] = parents[j], parents[i] })
	return nil
}

// inject appends fresh chromosomes and keeps the best PopulationSize.
func (g *GeneticAlgorithm) inject(ctx context.Context) (int, error) {
	n := int(g.cfg.InjectionFraction * float64(g.cfg.PopulationSize))
	fresh, err := g.fresh(ctx, n)
	if err != nil {
		return 0, fmt.Errorf("injection: %w", err)
	}
	g.population = append(g.population, fresh...)
	g.sortPopulation()
	g.population = g.population[:g.cfg.PopulationSize]
	return n, nil
}

func (g *GeneticAlgorithm) fresh(ctx context.Context, n int) ([]*chromosome.Chromosome, error) {
	out := make([]*chromosome.Chromosome, 0, n)
	for len(out) < n {
		c, err := g.sampler.Feasible(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (g *GeneticAlgorithm) sortPopulation() {
	slices.SortStableFunc(g.population, bySoftCost)
}

func (g *GeneticAlgorithm) fillStats(stats *EraStats) {
	stats.Best = g.population[0]
	stats.BestSoftCost = g.population[0].SoftCost()
	stats.Stagnation = g.adaptive.stagnation
	stats.Probabilities = g.adaptive.current

	unique := sets.New[string]()
	total := 0
	for _, c := range g.population {
		unique.Insert(c.Fingerprint())
		total += c.SoftCost()
		stats.WorstSoftCost = max(stats.WorstSoftCost, c.SoftCost())
	}
	stats.Unique = unique.Len()
	stats.MeanSoftCost = float64(total) / float64(len(g.population))
}

func bySoftCost(a, b *chromosome.Chromosome) int {
	return cmp.Compare(a.SoftCost(), b.SoftCost())
}
