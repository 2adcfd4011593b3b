package algorithms

import (
	"context"
	"time"

	"github.com/ihtc/ihtp-ga/pkg/chromosome"
)

// EraStats summarizes one era of the search.
type EraStats struct {
	Era int

	// Best is the lowest soft-cost member of the population after the era.
	// It is never modified by the search and may be kept by observers.
	// BestChanged reports that the era improved on the previous best.
	Best        *chromosome.Chromosome
	BestChanged bool

	BestSoftCost  int
	MeanSoftCost  float64
	WorstSoftCost int
	// Unique counts distinct schedules in the population.
	Unique int

	Stagnation    int
	Probabilities Probabilities

	// Children produced by the operators, split by outcome. Unchanged,
	// RepairFailed and Overbooked children never reach the oracle.
	Accepted     int
	Infeasible   int
	Unchanged    int
	RepairFailed int
	Overbooked   int

	Injected          int
	EnforcedInjection bool

	Duration time.Duration
}

// Evaluated returns how many children were sent to the oracle.
func (s EraStats) Evaluated() int {
	return s.Accepted + s.Infeasible
}

// Observer is notified after every era. A returned error stops the search.
type Observer interface {
	ObserveEra(ctx context.Context, stats EraStats) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, stats EraStats) error

func (f ObserverFunc) ObserveEra(ctx context.Context, stats EraStats) error {
	return f(ctx, stats)
}
