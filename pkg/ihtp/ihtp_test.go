package ihtp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	"github.com/ihtc/ihtp-ga/pkg/algorithms"
	"github.com/ihtc/ihtp-ga/pkg/api/v1alpha1"
	"github.com/ihtc/ihtp-ga/pkg/benchmarks"
	"github.com/ihtc/ihtp-ga/pkg/history"
	"github.com/ihtc/ihtp-ga/pkg/hospital"
	"github.com/ihtc/ihtp-ga/pkg/oracle"
	"github.com/ihtc/ihtp-ga/pkg/oracle/builtin"
)

func writeTiny(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiny.json")
	if err := WriteInstance(path, benchmarks.Tiny()); err != nil {
		t.Fatal(err)
	}
	return path
}

func defaulted(t *testing.T, configure func(*Args)) *Args {
	t.Helper()
	args, err := LoadArgs("")
	if err != nil {
		t.Fatal(err)
	}
	configure(args)
	return args
}

func TestSetDefaults(t *testing.T) {
	args, err := LoadArgs("")
	if err != nil {
		t.Fatal(err)
	}
	want := &Args{
		Oracle:                            OracleBuiltin,
		PopulationSize:                    20,
		Eras:                              ptr.To(500),
		SelectionFraction:                 ptr.To(0.4),
		CrossoverProbability:              ptr.To(0.8),
		MutationProbability:               ptr.To(0.1),
		ScheduleNonMandatoryProbability:   ptr.To(0.5),
		UnscheduleNonMandatoryProbability: ptr.To(0.4),
		AssignProbability:                 ptr.To(0.5),
		StagnationThreshold:               10,
		MaxCrossoverPatients:              10,
	}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadArgs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    func(*Args)
		wantErr bool
	}{
		{
			name: "yaml overrides",
			content: `apiVersion: ihtp/v1alpha1
kind: Args
instancePath: i01.json
seed: 7
eras: 40
mutationProbability: 0
timeout: 90s
`,
			want: func(a *Args) {
				a.TypeMeta = metav1.TypeMeta{APIVersion: "ihtp/v1alpha1", Kind: "Args"}
				a.InstancePath = "i01.json"
				a.Seed = ptr.To[uint64](7)
				a.Eras = ptr.To(40)
				a.MutationProbability = ptr.To(0.0)
				a.Timeout = metav1.Duration{Duration: 90 * time.Second}
			},
		},
		{
			name:    "json",
			content: `{"instancePath": "i02.json", "oracle": "validator", "populationSize": 8}`,
			want: func(a *Args) {
				a.InstancePath = "i02.json"
				a.Oracle = OracleValidator
				a.PopulationSize = 8
			},
		},
		{
			name:    "zero eras",
			content: "instancePath: i03.json\neras: 0\nselectionFraction: 0.5\n",
			want: func(a *Args) {
				a.InstancePath = "i03.json"
				a.Eras = ptr.To(0)
				a.SelectionFraction = ptr.To(0.5)
			},
		},
		{name: "unknown field", content: "populationSise: 8\n", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "args.yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0o600); err != nil {
				t.Fatal(err)
			}
			got, err := LoadArgs(path)
			if (err != nil) != tc.wantErr {
				t.Fatalf("LoadArgs() error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			want := defaulted(t, tc.want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateArgs(t *testing.T) {
	tests := []struct {
		name      string
		configure func(*Args)
		wantErr   bool
	}{
		{name: "valid", configure: func(a *Args) { a.InstancePath = "i01.json" }},
		{name: "missing instance", configure: func(*Args) {}, wantErr: true},
		{name: "unknown oracle", configure: func(a *Args) { a.InstancePath = "i01.json"; a.Oracle = "remote" }, wantErr: true},
		{name: "checkpoint without output", configure: func(a *Args) { a.InstancePath = "i01.json"; a.Checkpoint = true }, wantErr: true},
		{name: "population too small", configure: func(a *Args) { a.InstancePath = "i01.json"; a.PopulationSize = 4 }, wantErr: true},
		{name: "half selection keeps two of four", configure: func(a *Args) {
			a.InstancePath = "i01.json"
			a.PopulationSize = 4
			a.SelectionFraction = ptr.To(0.5)
		}},
		{name: "selection too small", configure: func(a *Args) {
			a.InstancePath = "i01.json"
			a.PopulationSize = 20
			a.SelectionFraction = ptr.To(0.05)
		}, wantErr: true},
		{name: "selection above one", configure: func(a *Args) { a.InstancePath = "i01.json"; a.SelectionFraction = ptr.To(1.5) }, wantErr: true},
		{name: "zero eras", configure: func(a *Args) { a.InstancePath = "i01.json"; a.Eras = ptr.To(0) }},
		{name: "negative eras", configure: func(a *Args) { a.InstancePath = "i01.json"; a.Eras = ptr.To(-1) }, wantErr: true},
		{name: "probability out of range", configure: func(a *Args) { a.InstancePath = "i01.json"; a.AssignProbability = ptr.To(1.2) }, wantErr: true},
		{name: "negative timeout", configure: func(a *Args) {
			a.InstancePath = "i01.json"
			a.Timeout = metav1.Duration{Duration: -time.Second}
		}, wantErr: true},
		{name: "unset probability", configure: func(a *Args) { a.InstancePath = "i01.json"; a.MutationProbability = nil }, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateArgs(defaulted(t, tc.configure))
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateArgs() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestArgsConfig(t *testing.T) {
	args := defaulted(t, func(a *Args) {
		a.PopulationSize = 6
		a.Eras = ptr.To(0)
		a.SelectionFraction = ptr.To(0.5)
		a.MutationProbability = ptr.To(0.3)
	})
	want := algorithms.DefaultConfig()
	want.PopulationSize = 6
	want.Eras = 0
	want.SelectionFraction = 0.5
	want.Probabilities.Mutation = 0.3
	got := args.Config()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if got.Parents() != 3 {
		t.Errorf("parents = %d, want 3", got.Parents())
	}
}

func TestDeepCopy(t *testing.T) {
	args := defaulted(t, func(a *Args) { a.Seed = ptr.To[uint64](3) })
	c := args.DeepCopy()
	*c.Seed = 4
	*c.CrossoverProbability = 0.1
	*c.Eras = 1
	*c.SelectionFraction = 0.9
	if *args.Seed != 3 || *args.CrossoverProbability != 0.8 || *args.Eras != 500 || *args.SelectionFraction != 0.4 {
		t.Errorf("copy shares pointers with the original")
	}
}

func TestSolveTiny(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	args := defaulted(t, func(a *Args) {
		a.InstancePath = writeTiny(t)
		a.OutputPath = filepath.Join(dir, "best.json")
		a.HistoryPath = filepath.Join(dir, "history.db")
		a.PlotPath = filepath.Join(dir, "trace.html")
		a.Checkpoint = true
		a.Seed = ptr.To[uint64](11)
		a.PopulationSize = 5
		a.Eras = ptr.To(6)
	})
	reg := prometheus.NewRegistry()
	s, err := NewSolver(ctx, args, WithRegisterer(reg))
	if err != nil {
		t.Fatal(err)
	}
	out, err := s.Solve(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Result.Feasible() || out.Stopped {
		t.Fatalf("unexpected outcome %+v", out.Result)
	}
	if len(out.Trace) != 6 {
		t.Errorf("trace has %d eras, want 6", len(out.Trace))
	}

	written, err := LoadSolution(args.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(out.Solution, written); diff != "" {
		t.Errorf("written solution mismatch (-want +got):\n%s", diff)
	}
	c, err := hospital.NewCatalog(benchmarks.Tiny())
	if err != nil {
		t.Fatal(err)
	}
	res, err := builtin.New(ctx, c).Evaluate(ctx, written)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(out.Result, res); diff != "" {
		t.Errorf("rescored result mismatch (-want +got):\n%s", diff)
	}

	store, err := history.Open(args.HistoryPath)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = store.Close() }()
	eras, err := store.Eras(ctx, out.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if len(eras) != 6 {
		t.Errorf("history has %d eras, want 6", len(eras))
	}
	if _, err := os.Stat(args.PlotPath); err != nil {
		t.Errorf("convergence chart: %v", err)
	}
	if n, err := testutil.GatherAndCount(reg, "ihtp_eras_total"); err != nil || n != 1 {
		t.Errorf("GatherAndCount() = %d, %v", n, err)
	}
}

func TestSolveKeepsBestOnTimeout(t *testing.T) {
	ctx := context.Background()
	c, err := hospital.NewCatalog(benchmarks.Tiny())
	if err != nil {
		t.Fatal(err)
	}
	scorer := builtin.New(ctx, c)
	var calls atomic.Int32
	slow := oracle.Func(func(ctx context.Context, sol *v1alpha1.Solution) (oracle.Result, error) {
		if calls.Add(1) > 20 {
			<-ctx.Done()
			return oracle.Result{}, ctx.Err()
		}
		return scorer.Evaluate(ctx, sol)
	})
	args := defaulted(t, func(a *Args) {
		a.InstancePath = writeTiny(t)
		a.OutputPath = filepath.Join(t.TempDir(), "best.json")
		a.Seed = ptr.To[uint64](5)
		a.PopulationSize = 5
		a.Eras = ptr.To(100000)
		a.Timeout = metav1.Duration{Duration: 300 * time.Millisecond}
	})
	s, err := NewSolver(ctx, args, WithOracle(slow))
	if err != nil {
		t.Fatal(err)
	}
	out, err := s.Solve(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Stopped || out.Best == nil {
		t.Fatalf("expected a stopped run with a best schedule, got %+v", out)
	}
	if _, err := LoadSolution(args.OutputPath); err != nil {
		t.Errorf("solution not written: %v", err)
	}
}

func TestSolveFailsWithoutPopulation(t *testing.T) {
	ctx := context.Background()
	failing := oracle.Func(func(context.Context, *v1alpha1.Solution) (oracle.Result, error) {
		return oracle.Result{}, errors.New("validator crashed")
	})
	args := defaulted(t, func(a *Args) {
		a.InstancePath = writeTiny(t)
		a.OutputPath = filepath.Join(t.TempDir(), "best.json")
		a.PopulationSize = 5
	})
	s, err := NewSolver(ctx, args, WithOracle(failing))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Solve(ctx); err == nil {
		t.Fatal("expected the oracle failure")
	}
	if _, err := os.Stat(args.OutputPath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("no solution should be written, stat error = %v", err)
	}
}

func TestNewSolverErrors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name      string
		configure func(*Args)
	}{
		{name: "invalid args", configure: func(a *Args) {}},
		{name: "missing instance file", configure: func(a *Args) { a.InstancePath = filepath.Join(t.TempDir(), "none.json") }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSolver(ctx, defaulted(t, tc.configure)); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestDefaultOutputPath(t *testing.T) {
	if got, want := DefaultOutputPath(filepath.Join("data", "i05.json")), filepath.Join("data", "i05_solution.json"); got != want {
		t.Errorf("DefaultOutputPath() = %q, want %q", got, want)
	}
}
