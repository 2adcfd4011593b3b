package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"k8s.io/utils/ptr"

	"github.com/ihtc/ihtp-ga/pkg/ihtp"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(&out)
	cmd.SetArgs(args)
	cmd.SetErr(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestGenerateSolveEvaluate(t *testing.T) {
	dir := t.TempDir()
	instance := filepath.Join(dir, "tiny.json")
	solution := filepath.Join(dir, "tiny_solution.json")

	execute(t, "generate", "--tiny", "-o", instance)
	got := execute(t, "solve", "-i", instance, "--seed", "3", "--population", "5", "--eras", "3",
		"--history", filepath.Join(dir, "runs.db"))
	for _, want := range []string{"=== " + solution + " ===", "Hard violations: 0", "History run: "} {
		if !strings.Contains(got, want) {
			t.Errorf("solve output is missing %q:\n%s", want, got)
		}
	}
	if _, err := os.Stat(solution); err != nil {
		t.Fatalf("solution not written: %v", err)
	}

	got = execute(t, "evaluate", "-i", instance, "-s", solution)
	if !strings.Contains(got, "COST BREAKDOWN:") {
		t.Errorf("evaluate output is missing the cost breakdown:\n%s", got)
	}
}

func TestSolveOptionsPrecedence(t *testing.T) {
	config := filepath.Join(t.TempDir(), "args.yaml")
	if err := os.WriteFile(config, []byte("instancePath: from-file.json\neras: 40\npopulationSize: 8\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	o := &SolveOptions{}
	fs := pflag.NewFlagSet("solve", pflag.ContinueOnError)
	o.AddFlags(fs)
	if err := fs.Parse([]string{"--config", config, "--eras", "7", "--selection", "0.5", "--mutation", "0", "--checkpoint"}); err != nil {
		t.Fatal(err)
	}
	got, err := o.Args(fs)
	if err != nil {
		t.Fatal(err)
	}
	want, err := ihtp.LoadArgs("")
	if err != nil {
		t.Fatal(err)
	}
	want.InstancePath = "from-file.json"
	want.OutputPath = "from-file_solution.json"
	want.Eras = ptr.To(7)
	want.SelectionFraction = ptr.To(0.5)
	want.PopulationSize = 8
	want.MutationProbability = ptr.To(0.0)
	want.Checkpoint = true
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateRequiresFlags(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCommand(&out)
	cmd.SetArgs([]string{"evaluate", "-i", "x.json"})
	cmd.SetErr(&out)
	if err := cmd.Execute(); err == nil {
		t.Errorf("expected a missing flag error")
	}
}
