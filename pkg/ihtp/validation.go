/*
Copyright 2024 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package ihtp

import (
	"fmt"

	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// ValidateArgs validates defaulted solver arguments.
func ValidateArgs(obj runtime.Object) error {
	args := obj.(*Args)
	var allErrs field.ErrorList

	if args.InstancePath == "" {
		allErrs = append(allErrs, field.Required(field.NewPath("instancePath"), "an instance is required"))
	}
	switch args.Oracle {
	case OracleBuiltin, OracleValidator:
	default:
		allErrs = append(allErrs, field.NotSupported(field.NewPath("oracle"), args.Oracle, []string{OracleBuiltin, OracleValidator}))
	}
	if args.Checkpoint && args.OutputPath == "" {
		allErrs = append(allErrs, field.Required(field.NewPath("outputPath"), "checkpointing needs an output path"))
	}
	if args.Timeout.Duration < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("timeout"), args.Timeout.Duration.String(), "must not be negative"))
	}
	switch {
	case args.Eras == nil:
		allErrs = append(allErrs, field.Required(field.NewPath("eras"), "number of eras must be set"))
	case *args.Eras < 0:
		allErrs = append(allErrs, field.Invalid(field.NewPath("eras"), *args.Eras, "must not be negative"))
	}
	// selection must leave two parents to pair
	if frac := args.SelectionFraction; frac != nil && *frac >= 0 && *frac <= 1 {
		if parents := args.Config().Parents(); parents < 2 {
			allErrs = append(allErrs, field.Invalid(field.NewPath("populationSize"), args.PopulationSize,
				fmt.Sprintf("selection fraction %v keeps %d parents, at least 2 are needed", *frac, parents)))
		}
	}
	if args.StagnationThreshold < 1 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("stagnationThreshold"), args.StagnationThreshold, "must be positive"))
	}
	if args.MaxCrossoverPatients < 1 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("maxCrossoverPatients"), args.MaxCrossoverPatients, "must be positive"))
	}
	for _, p := range []struct {
		name  string
		value *float64
	}{
		{"crossoverProbability", args.CrossoverProbability},
		{"mutationProbability", args.MutationProbability},
		{"scheduleNonMandatoryProbability", args.ScheduleNonMandatoryProbability},
		{"unscheduleNonMandatoryProbability", args.UnscheduleNonMandatoryProbability},
		{"assignProbability", args.AssignProbability},
		{"selectionFraction", args.SelectionFraction},
	} {
		path := field.NewPath(p.name)
		switch {
		case p.value == nil:
			allErrs = append(allErrs, field.Required(path, "probability must be set"))
		case *p.value < 0 || *p.value > 1:
			allErrs = append(allErrs, field.Invalid(path, *p.value, "must be between 0 and 1"))
		}
	}
	return allErrs.ToAggregate()
}
