package warmstart_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/exp/rand"

	"github.com/ihtc/ihtp-ga/pkg/api/v1alpha1"
	"github.com/ihtc/ihtp-ga/pkg/benchmarks"
	"github.com/ihtc/ihtp-ga/pkg/hospital"
	"github.com/ihtc/ihtp-ga/pkg/oracle"
	"github.com/ihtc/ihtp-ga/pkg/oracle/builtin"
	"github.com/ihtc/ihtp-ga/pkg/warmstart"
)

func tinyCatalog(t *testing.T) *hospital.Catalog {
	t.Helper()
	c, err := hospital.NewCatalog(benchmarks.Tiny())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestFeasibleWithBuiltinOracle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	c, err := hospital.NewCatalog(benchmarks.Generate(benchmarks.DefaultConfig()))
	if err != nil {
		t.Fatal(err)
	}
	rejected := map[warmstart.Rejection]int{}
	g := warmstart.New(ctx, c, rand.New(rand.NewSource(5)), builtin.New(ctx, c), 0.5,
		warmstart.WithRejectionHook(func(r warmstart.Rejection) { rejected[r]++ }))

	for i := 0; i < 5; i++ {
		ch, err := g.Feasible(ctx)
		if err != nil {
			t.Fatalf("Feasible: %v", err)
		}
		res, ok := ch.Cost()
		if !ok || res.HardViolations != 0 {
			t.Errorf("sample %d: cost %+v (evaluated %v)", i, res, ok)
		}
		if ch.HasChanged() {
			t.Errorf("sample %d: fresh chromosome reports a change", i)
		}
		if err := ch.Hospital().Verify(); err != nil {
			t.Errorf("sample %d: %v", i, err)
		}
	}
	t.Logf("rejections: %v", rejected)
}

func TestFeasibleRejectsInfeasibleSamples(t *testing.T) {
	ctx := context.Background()
	calls := 0
	stub := oracle.Func(func(context.Context, *v1alpha1.Solution) (oracle.Result, error) {
		calls++
		if calls <= 3 {
			return oracle.Result{HardViolations: 1, SoftCost: 1}, nil
		}
		return oracle.Result{SoftCost: 7}, nil
	})
	rejected := map[warmstart.Rejection]int{}
	g := warmstart.New(ctx, tinyCatalog(t), rand.New(rand.NewSource(1)), stub, 0.5,
		warmstart.WithRejectionHook(func(r warmstart.Rejection) { rejected[r]++ }))

	ch, err := g.Feasible(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := ch.SoftCost(); got != 7 {
		t.Errorf("SoftCost() = %d, want 7", got)
	}
	if rejected[warmstart.RejectedInfeasible] != 3 {
		t.Errorf("infeasible rejections = %d, want 3", rejected[warmstart.RejectedInfeasible])
	}
}

func TestFeasibleErrors(t *testing.T) {
	boom := errors.New("validator missing")
	tests := []struct {
		name    string
		oracle  oracle.Func
		cancel  bool
		wantErr error
	}{
		{
			name:    "oracle failure",
			oracle:  func(context.Context, *v1alpha1.Solution) (oracle.Result, error) { return oracle.Result{}, boom },
			wantErr: boom,
		},
		{
			name:    "cancelled",
			oracle:  func(context.Context, *v1alpha1.Solution) (oracle.Result, error) { return oracle.Result{HardViolations: 1}, nil },
			cancel:  true,
			wantErr: context.Canceled,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tc.cancel {
				cancel()
			}
			g := warmstart.New(ctx, tinyCatalog(t), rand.New(rand.NewSource(1)), tc.oracle, 0.5)
			if _, err := g.Feasible(ctx); !errors.Is(err, tc.wantErr) {
				t.Errorf("Feasible() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestPopulation(t *testing.T) {
	ctx := context.Background()
	c := tinyCatalog(t)
	g := warmstart.New(ctx, c, rand.New(rand.NewSource(9)), builtin.New(ctx, c), 0.5)
	pop, err := g.Population(ctx, 6)
	if err != nil {
		t.Fatal(err)
	}
	if len(pop) != 6 {
		t.Fatalf("got %d chromosomes, want 6", len(pop))
	}
	for i, ch := range pop {
		if !ch.Feasible() {
			t.Errorf("chromosome %d is not feasible", i)
		}
		for j := 0; j < i; j++ {
			if pop[j].Hospital() == ch.Hospital() {
				t.Errorf("chromosomes %d and %d share an arena", j, i)
			}
		}
	}
}
