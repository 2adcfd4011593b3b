// Package warmstart builds the hard-feasible chromosomes the genetic search
// starts from and injects when it stagnates.
//
// Chromosomes are drawn by rejection sampling: a random construction is kept
// only when it succeeds and the oracle reports no hard violation. There is no
// cap on attempts; callers bound the search through the context.
package warmstart

import (
	"context"
	"fmt"

	"golang.org/x/exp/rand"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/klog/v2"

	"github.com/ihtc/ihtp-ga/pkg/chromosome"
	"github.com/ihtc/ihtp-ga/pkg/hospital"
	"github.com/ihtc/ihtp-ga/pkg/oracle"
)

// Rejection tells why a sampled chromosome was dropped.
type Rejection string

const (
	// RejectedConstruction means a mandatory patient could not be placed or
	// nurse coverage could not be completed.
	RejectedConstruction Rejection = "construction"
	// RejectedInfeasible means the oracle reported hard violations.
	RejectedInfeasible Rejection = "infeasible"
)

// Generator samples feasible chromosomes.
type Generator struct {
	catalog    *hospital.Catalog
	rng        *rand.Rand
	oracle     oracle.CostFunc
	assignProb float64
	onReject   func(Rejection)
	logger     klog.Logger
}

// Option customizes a Generator.
type Option func(*Generator)

// WithRejectionHook registers a callback invoked for every dropped sample.
func WithRejectionHook(f func(Rejection)) Option {
	return func(g *Generator) {
		g.onReject = f
	}
}

// New returns a generator scheduling optional patients with probability
// assignProb.
func New(ctx context.Context, c *hospital.Catalog, rng *rand.Rand, f oracle.CostFunc, assignProb float64, opts ...Option) *Generator {
	g := &Generator{
		catalog:    c,
		rng:        rng,
		oracle:     f,
		assignProb: assignProb,
		onReject:   func(Rejection) {},
		logger:     klog.FromContext(ctx).WithValues("component", "warmstart"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Feasible samples chromosomes until one is hard-feasible. The returned
// chromosome carries its evaluation and clear flags.
func (g *Generator) Feasible(ctx context.Context) (*chromosome.Chromosome, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ch := chromosome.New(g.catalog, g.rng)
		if !ch.RandomInitialize(g.assignProb) {
			g.onReject(RejectedConstruction)
			continue
		}
		if err := ch.ComputeCost(ctx, g.oracle); err != nil {
			return nil, fmt.Errorf("evaluating sampled chromosome: %w", err)
		}
		if !ch.Feasible() {
			res, _ := ch.Cost()
			g.logger.V(5).Info("Rejected infeasible sample", "attempt", attempt, "hardViolations", res.HardViolations)
			g.onReject(RejectedInfeasible)
			continue
		}
		g.logger.V(4).Info("Sampled feasible chromosome", "attempts", attempt, "softCost", ch.SoftCost())
		return ch, nil
	}
}

// Population samples n feasible chromosomes.
func (g *Generator) Population(ctx context.Context, n int) ([]*chromosome.Chromosome, error) {
	pop := make([]*chromosome.Chromosome, 0, n)
	unique := sets.New[string]()
	for len(pop) < n {
		ch, err := g.Feasible(ctx)
		if err != nil {
			return nil, err
		}
		unique.Insert(ch.Fingerprint())
		pop = append(pop, ch)
	}
	g.logger.V(2).Info("Generated initial population", "size", len(pop), "unique", unique.Len())
	return pop, nil
}
