package algorithms

import (
	"github.com/ihtc/ihtp-ga/pkg/chromosome"
)

// adaptiveControl tracks the best chromosome of the current population and
// owns the operator probabilities. Nothing else changes the probabilities.
type adaptiveControl struct {
	cfg       Adaptation
	threshold int

	original Probabilities
	current  Probabilities

	best       *chromosome.Chromosome
	stagnation int
}

func newAdaptiveControl(cfg Config) *adaptiveControl {
	return &adaptiveControl{
		cfg:       cfg.Adaptation,
		threshold: cfg.StagnationThreshold,
		original:  cfg.Probabilities,
		current:   cfg.Probabilities,
	}
}

// observe records the best chromosome of an era and reports whether the
// soft cost improved. Only a strictly lower soft cost counts as progress, but
// on a tie the tracked pointer follows the population so that it never refers
// to a chromosome that was dropped.
func (a *adaptiveControl) observe(best *chromosome.Chromosome) bool {
	changed := false
	switch {
	case a.best == nil:
		a.best = best
		a.stagnation++
		changed = true
	case best.SoftCost() < a.best.SoftCost():
		a.best = best
		a.stagnation = 1
		a.current = a.original
		changed = true
	default:
		if best.SoftCost() == a.best.SoftCost() {
			a.best = best
		}
		a.stagnation++
	}
	if a.stagnating() {
		a.drift()
	}
	return changed
}

func (a *adaptiveControl) stagnating() bool {
	return a.stagnation >= a.threshold
}

// drift moves the probabilities towards more disruptive values, except every
// ResetPeriod stagnant eras where the original values come back.
func (a *adaptiveControl) drift() {
	if a.stagnation%a.cfg.ResetPeriod == 0 {
		a.current = a.original
		return
	}
	p := &a.current
	p.Crossover = max(a.cfg.CrossoverFloor, p.Crossover-a.cfg.CrossoverStep)
	p.Mutation = min(a.cfg.MutationCeiling, p.Mutation+a.cfg.MutationStep)
	p.UnscheduleNonMandatory = min(a.cfg.UnscheduleCeiling, p.UnscheduleNonMandatory+a.cfg.UnscheduleStep)
	p.ScheduleNonMandatory = min(a.cfg.ScheduleCeiling, p.ScheduleNonMandatory+a.cfg.ScheduleStep)
}
