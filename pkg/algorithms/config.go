package algorithms

import (
	"errors"
	"fmt"
)

// Probabilities are the operator probabilities the adaptive control tunes.
type Probabilities struct {
	Crossover float64
	Mutation  float64
	// ScheduleNonMandatory is the chance an unscheduled optional patient is
	// offered a slot during mutation.
	ScheduleNonMandatory float64
	// UnscheduleNonMandatory is the chance a scheduled optional patient that
	// escaped the mutation draw is dropped.
	UnscheduleNonMandatory float64
}

// Adaptation holds the drift applied to the probabilities while the search
// stagnates.
type Adaptation struct {
	CrossoverFloor    float64
	CrossoverStep     float64
	MutationCeiling   float64
	MutationStep      float64
	UnscheduleCeiling float64
	UnscheduleStep    float64
	ScheduleCeiling   float64
	ScheduleStep      float64
	// ResetPeriod restores the original probabilities every ResetPeriod
	// stagnant eras.
	ResetPeriod int
}

// Config holds configuration parameters for the genetic search.
type Config struct {
	PopulationSize int
	Eras           int
	Probabilities  Probabilities

	// SelectionFraction of the population survives each era as parents.
	SelectionFraction float64
	// StagnationThreshold is the number of eras without improvement after
	// which probabilities drift and fresh chromosomes are injected.
	StagnationThreshold int
	// MaxCrossoverPatients bounds the patients drawn for exchange.
	MaxCrossoverPatients int
	// InjectionFraction of the population is injected on stagnation.
	InjectionFraction float64
	// EnforcedKeepFraction of the parents survives an enforced injection.
	EnforcedKeepFraction float64

	Adaptation Adaptation
}

// DefaultConfig returns the settings the search was tuned with.
func DefaultConfig() Config {
	return Config{
		PopulationSize: 20,
		Eras:           500,
		Probabilities: Probabilities{
			Crossover:              0.8,
			Mutation:               0.1,
			ScheduleNonMandatory:   0.5,
			UnscheduleNonMandatory: 0.4,
		},
		SelectionFraction:    0.4,
		StagnationThreshold:  10,
		MaxCrossoverPatients: 10,
		InjectionFraction:    0.2,
		EnforcedKeepFraction: 0.8,
		Adaptation: Adaptation{
			CrossoverFloor:    0.6,
			CrossoverStep:     0.0025,
			MutationCeiling:   0.5,
			MutationStep:      0.01,
			UnscheduleCeiling: 0.5,
			UnscheduleStep:    0.005,
			ScheduleCeiling:   0.7,
			ScheduleStep:      0.005,
			ResetPeriod:       50,
		},
	}
}

// Parents returns how many chromosomes survive selection.
func (c Config) Parents() int {
	return int(c.SelectionFraction * float64(c.PopulationSize))
}

// Validate reports every inconsistent setting.
func (c Config) Validate() error {
	var errs []error
	if c.PopulationSize < 2 {
		errs = append(errs, fmt.Errorf("population size must be at least 2, got %d", c.PopulationSize))
	}
	if c.Eras < 0 {
		errs = append(errs, fmt.Errorf("eras must not be negative, got %d", c.Eras))
	}
	if c.Parents() < 2 {
		errs = append(errs, fmt.Errorf("selection keeps %d parents out of %d, at least 2 are needed", c.Parents(), c.PopulationSize))
	}
	if c.StagnationThreshold < 1 {
		errs = append(errs, fmt.Errorf("stagnation threshold must be positive, got %d", c.StagnationThreshold))
	}
	if c.MaxCrossoverPatients < 1 {
		errs = append(errs, fmt.Errorf("crossover must exchange at least one patient, got %d", c.MaxCrossoverPatients))
	}
	if c.Adaptation.ResetPeriod < 1 {
		errs = append(errs, fmt.Errorf("reset period must be positive, got %d", c.Adaptation.ResetPeriod))
	}
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"crossover probability", c.Probabilities.Crossover},
		{"mutation probability", c.Probabilities.Mutation},
		{"schedule probability", c.Probabilities.ScheduleNonMandatory},
		{"unschedule probability", c.Probabilities.UnscheduleNonMandatory},
		{"selection fraction", c.SelectionFraction},
		{"injection fraction", c.InjectionFraction},
		{"enforced injection keep ratio", c.EnforcedKeepFraction},
		{"crossover floor", c.Adaptation.CrossoverFloor},
		{"mutation ceiling", c.Adaptation.MutationCeiling},
		{"unschedule ceiling", c.Adaptation.UnscheduleCeiling},
		{"schedule ceiling", c.Adaptation.ScheduleCeiling},
	} {
		if p.value < 0 || p.value > 1 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 1, got %v", p.name, p.value))
		}
	}
	return errors.Join(errs...)
}
