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
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/klog/v2"
	"k8s.io/utils/ptr"

	"github.com/ihtc/ihtp-ga/pkg/algorithms"
)

// DefaultAssignProbability is the chance an optional patient is admitted by
// random construction.
const DefaultAssignProbability = 0.5

func addDefaultingFuncs(scheme *runtime.Scheme) error {
	return RegisterDefaults(scheme)
}

func RegisterDefaults(scheme *runtime.Scheme) error {
	klog.V(5).InfoS("Registering defaults", "solver", algorithms.Name)
	scheme.AddTypeDefaultingFunc(&Args{}, func(obj interface{}) {
		SetDefaults_Args(obj.(*Args))
	})
	return nil
}

func SetDefaults_Args(obj runtime.Object) {
	args := obj.(*Args)
	d := algorithms.DefaultConfig()

	if args.Oracle == "" {
		args.Oracle = OracleBuiltin
	}
	if args.PopulationSize == 0 {
		args.PopulationSize = d.PopulationSize
	}
	if args.Eras == nil {
		args.Eras = ptr.To(d.Eras)
	}
	if args.SelectionFraction == nil {
		args.SelectionFraction = ptr.To(d.SelectionFraction)
	}
	if args.CrossoverProbability == nil {
		args.CrossoverProbability = ptr.To(d.Probabilities.Crossover)
	}
	if args.MutationProbability == nil {
		args.MutationProbability = ptr.To(d.Probabilities.Mutation)
	}
	if args.ScheduleNonMandatoryProbability == nil {
		args.ScheduleNonMandatoryProbability = ptr.To(d.Probabilities.ScheduleNonMandatory)
	}
	if args.UnscheduleNonMandatoryProbability == nil {
		args.UnscheduleNonMandatoryProbability = ptr.To(d.Probabilities.UnscheduleNonMandatory)
	}
	if args.AssignProbability == nil {
		args.AssignProbability = ptr.To(DefaultAssignProbability)
	}
	if args.StagnationThreshold == 0 {
		args.StagnationThreshold = d.StagnationThreshold
	}
	if args.MaxCrossoverPatients == 0 {
		args.MaxCrossoverPatients = d.MaxCrossoverPatients
	}
}

// Config translates defaulted args into the search configuration.
func (a *Args) Config() algorithms.Config {
	cfg := algorithms.DefaultConfig()
	cfg.PopulationSize = a.PopulationSize
	cfg.Eras = ptr.Deref(a.Eras, cfg.Eras)
	cfg.SelectionFraction = ptr.Deref(a.SelectionFraction, cfg.SelectionFraction)
	cfg.StagnationThreshold = a.StagnationThreshold
	cfg.MaxCrossoverPatients = a.MaxCrossoverPatients
	cfg.Probabilities = algorithms.Probabilities{
		Crossover:              ptr.Deref(a.CrossoverProbability, cfg.Probabilities.Crossover),
		Mutation:               ptr.Deref(a.MutationProbability, cfg.Probabilities.Mutation),
		ScheduleNonMandatory:   ptr.Deref(a.ScheduleNonMandatoryProbability, cfg.Probabilities.ScheduleNonMandatory),
		UnscheduleNonMandatory: ptr.Deref(a.UnscheduleNonMandatoryProbability, cfg.Probabilities.UnscheduleNonMandatory),
	}
	return cfg
}
