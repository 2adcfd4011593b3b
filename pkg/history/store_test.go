package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/exp/rand"

	"github.com/ihtc/ihtp-ga/pkg/algorithms"
	"github.com/ihtc/ihtp-ga/pkg/benchmarks"
	"github.com/ihtc/ihtp-ga/pkg/chromosome"
	"github.com/ihtc/ihtp-ga/pkg/hospital"
	"github.com/ihtc/ihtp-ga/pkg/oracle/builtin"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func feasibleChromosome(t *testing.T) *chromosome.Chromosome {
	t.Helper()
	ctx := context.Background()
	c, err := hospital.NewCatalog(benchmarks.Tiny())
	if err != nil {
		t.Fatal(err)
	}
	ch := chromosome.New(c, rand.New(rand.NewSource(3)))
	if !ch.RandomInitialize(0.5) {
		t.Fatal("Tiny instance could not be initialized")
	}
	if err := ch.ComputeCost(ctx, builtin.New(ctx, c)); err != nil {
		t.Fatal(err)
	}
	return ch
}

func TestRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	cfg := algorithms.DefaultConfig()
	run, err := s.StartRun(ctx, "tiny", cfg)
	if err != nil {
		t.Fatal(err)
	}

	best := feasibleChromosome(t)
	stats := []algorithms.EraStats{
		{Era: 0, Best: best, BestChanged: true, BestSoftCost: best.SoftCost(), MeanSoftCost: 40.5, WorstSoftCost: 50,
			Unique: 3, Stagnation: 1, Accepted: 4, Probabilities: cfg.Probabilities, Duration: 12 * time.Millisecond},
		{Era: 1, Best: best, BestSoftCost: best.SoftCost(), MeanSoftCost: 39, WorstSoftCost: 45,
			Unique: 2, Stagnation: 2, Infeasible: 1, Injected: 1, EnforcedInjection: true, Probabilities: cfg.Probabilities},
	}
	for _, st := range stats {
		if err := run.ObserveEra(ctx, st); err != nil {
			t.Fatal(err)
		}
	}

	eras, err := s.Eras(ctx, run.ID())
	if err != nil {
		t.Fatal(err)
	}
	want := []EraRecord{
		{Era: 0, BestSoftCost: best.SoftCost(), MeanSoftCost: 40.5, WorstSoftCost: 50, Unique: 3, Stagnation: 1, Accepted: 4,
			Crossover: 0.8, Mutation: 0.1, Duration: 12 * time.Millisecond},
		{Era: 1, BestSoftCost: best.SoftCost(), MeanSoftCost: 39, WorstSoftCost: 45, Unique: 2, Stagnation: 2, Infeasible: 1,
			Injected: 1, EnforcedInjection: true, Crossover: 0.8, Mutation: 0.1},
	}
	if diff := cmp.Diff(want, eras); diff != "" {
		t.Errorf("eras mismatch (-want +got):\n%s", diff)
	}

	sol, cost, err := s.BestSolution(ctx, run.ID())
	if err != nil {
		t.Fatal(err)
	}
	if cost != best.SoftCost() {
		t.Errorf("best cost = %d, want %d", cost, best.SoftCost())
	}
	if diff := cmp.Diff(best.Solution(), sol); diff != "" {
		t.Errorf("best schedule mismatch (-want +got):\n%s", diff)
	}

	runs, err := s.Runs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID() || runs[0].Instance != "tiny" {
		t.Fatalf("Runs() = %+v", runs)
	}
	if diff := cmp.Diff(cfg, runs[0].Config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateEraRollsBack(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	run, err := s.StartRun(ctx, "tiny", algorithms.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	st := algorithms.EraStats{Era: 4, BestSoftCost: 10}
	if err := run.ObserveEra(ctx, st); err != nil {
		t.Fatal(err)
	}
	if err := run.ObserveEra(ctx, st); err == nil {
		t.Fatal("expected a primary key conflict")
	}
	eras, err := s.Eras(ctx, run.ID())
	if err != nil {
		t.Fatal(err)
	}
	if len(eras) != 1 {
		t.Errorf("got %d eras, want 1", len(eras))
	}
}

func TestBestSolutionMissing(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	run, err := s.StartRun(ctx, "tiny", algorithms.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.BestSolution(ctx, run.ID()); !errors.Is(err, ErrNoSolution) {
		t.Errorf("BestSolution() error = %v, want ErrNoSolution", err)
	}
}
