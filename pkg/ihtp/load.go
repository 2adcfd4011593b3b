package ihtp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/yaml"

	"github.com/ihtc/ihtp-ga/pkg/api/v1alpha1"
)

// LoadInstance reads an instance file. JSON and YAML are both accepted.
func LoadInstance(path string) (*v1alpha1.Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading instance: %w", err)
	}
	in := &v1alpha1.Instance{}
	if err := yaml.Unmarshal(data, in); err != nil {
		return nil, fmt.Errorf("decoding instance %s: %w", path, err)
	}
	return in, nil
}

// LoadSolution reads a solution file.
func LoadSolution(path string) (*v1alpha1.Solution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading solution: %w", err)
	}
	sol := &v1alpha1.Solution{}
	if err := yaml.Unmarshal(data, sol); err != nil {
		return nil, fmt.Errorf("decoding solution %s: %w", path, err)
	}
	return sol, nil
}

// LoadArgs reads solver arguments from path, or starts from empty arguments
// when path is empty, and applies the defaults. Unknown fields are errors.
func LoadArgs(path string) (*Args, error) {
	args := &Args{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading args: %w", err)
		}
		if err := yaml.UnmarshalStrict(data, args); err != nil {
			return nil, fmt.Errorf("decoding args %s: %w", path, err)
		}
	}
	scheme := runtime.NewScheme()
	if err := AddToScheme(scheme); err != nil {
		return nil, err
	}
	scheme.Default(args)
	return args, nil
}

// DefaultOutputPath derives the solution file name from the instance path.
func DefaultOutputPath(instancePath string) string {
	return filepath.Join(filepath.Dir(instancePath), instanceName(instancePath)+"_solution.json")
}

func instanceName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// WriteSolution stores sol as indented JSON. The file is replaced
// atomically so that a checkpoint is never seen half written.
func WriteSolution(path string, sol *v1alpha1.Solution) error {
	return writeJSON(path, sol)
}

// WriteInstance stores in as indented JSON.
func WriteInstance(path string, in *v1alpha1.Instance) error {
	return writeJSON(path, in)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
