package oracle

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/ihtc/ihtp-ga/pkg/api/v1alpha1"
)

var (
	violationsLine = regexp.MustCompile(`^Total violations\s*=\s*(-?\d+)`)
	costLine       = regexp.MustCompile(`^Total cost\s*=\s*(-?\d+)`)
)

// ValidatorConfig locates the IHTP validator binary. Fields are read from
// IHTP_ prefixed environment variables.
type ValidatorConfig struct {
	// Path of the validator executable
	Path string `env:"VALIDATOR_PATH" envDefault:"IHTP_Validator"`
	// WorkDir receives the temporary solution files, the system temp dir when empty
	WorkDir string `env:"WORK_DIR"`
	// KeepFiles leaves solution files behind for inspection
	KeepFiles bool `env:"KEEP_FILES" envDefault:"false"`
}

// LoadValidatorConfig reads the validator settings from the environment.
func LoadValidatorConfig() (ValidatorConfig, error) {
	var cfg ValidatorConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "IHTP_"}); err != nil {
		return cfg, fmt.Errorf("reading validator settings: %w", err)
	}
	return cfg, nil
}

// Validator scores schedules by running the official IHTP validator as
// `<path> <instance> <solution>` and reading its totals.
type Validator struct {
	cfg          ValidatorConfig
	instancePath string
	logger       klog.Logger
}

var _ CostFunc = &Validator{}

func NewValidator(ctx context.Context, cfg ValidatorConfig, instancePath string) *Validator {
	return &Validator{
		cfg:          cfg,
		instancePath: instancePath,
		logger:       klog.FromContext(ctx).WithValues("oracle", "validator"),
	}
}

func (v *Validator) Evaluate(ctx context.Context, sol *v1alpha1.Solution) (Result, error) {
	data, err := json.Marshal(sol)
	if err != nil {
		return Result{}, fmt.Errorf("encoding solution: %w", err)
	}
	dir := v.cfg.WorkDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, fmt.Sprintf("ch_%s.json", uuid.NewString()))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return Result{}, fmt.Errorf("writing solution file: %w", err)
	}
	if !v.cfg.KeepFiles {
		defer os.Remove(path)
	}

	out, err := exec.CommandContext(ctx, v.cfg.Path, v.instancePath, path).CombinedOutput()
	if err != nil {
		return Result{}, fmt.Errorf("running validator %s: %w: %s", v.cfg.Path, err, bytes.TrimSpace(out))
	}
	res, err := ParseReport(out)
	if err != nil {
		return Result{}, fmt.Errorf("validator %s: %w", v.cfg.Path, err)
	}
	v.logger.V(4).Info("Validated solution", "file", path, "violations", res.HardViolations, "cost", res.SoftCost)
	return res, nil
}

// ParseReport extracts the totals from the validator's standard output.
func ParseReport(out []byte) (Result, error) {
	var (
		res                Result
		haveViol, haveCost bool
	)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Bytes()
		if m := violationsLine.FindSubmatch(line); m != nil {
			n, err := strconv.Atoi(string(m[1]))
			if err != nil {
				return Result{}, fmt.Errorf("parsing violations: %w", err)
			}
			res.HardViolations, haveViol = n, true
		} else if m := costLine.FindSubmatch(line); m != nil {
			n, err := strconv.Atoi(string(m[1]))
			if err != nil {
				return Result{}, fmt.Errorf("parsing cost: %w", err)
			}
			res.SoftCost, haveCost = n, true
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, err
	}
	if !haveViol || !haveCost {
		return Result{}, fmt.Errorf("report has no totals")
	}
	if res.HardViolations < 0 {
		return Result{}, fmt.Errorf("negative violation count %d", res.HardViolations)
	}
	return res, nil
}
