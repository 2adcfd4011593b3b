// Package oracle defines how candidate schedules are scored. The search never
// computes costs itself: it serializes a candidate and asks a CostFunc.
package oracle

import (
	"context"

	"github.com/ihtc/ihtp-ga/pkg/api/v1alpha1"
)

// Result is the score of a schedule.
type Result struct {
	HardViolations int
	SoftCost       int
}

// Feasible reports whether the schedule violates no hard constraint.
func (r Result) Feasible() bool {
	return r.HardViolations == 0
}

// CostFunc scores complete schedules. An error means the schedule could not
// be scored at all; it never stands for an infeasible schedule.
type CostFunc interface {
	Evaluate(ctx context.Context, sol *v1alpha1.Solution) (Result, error)
}

// Func adapts a plain function to CostFunc.
type Func func(ctx context.Context, sol *v1alpha1.Solution) (Result, error)

func (f Func) Evaluate(ctx context.Context, sol *v1alpha1.Solution) (Result, error) {
	return f(ctx, sol)
}
