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
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Oracle names accepted in Args.Oracle.
const (
	OracleBuiltin   = "builtin"
	OracleValidator = "validator"
)

// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object

// Args holds the arguments of a solver run.
type Args struct {
	metav1.TypeMeta `json:",inline"`

	// InstancePath is the IHTP instance to solve
	InstancePath string `json:"instancePath"`

	// OutputPath receives the best solution; defaults to <instance>_solution.json
	OutputPath string `json:"outputPath,omitempty"`

	// Oracle selects the scorer, "builtin" or "validator"
	Oracle string `json:"oracle,omitempty"`

	// Seed of the random source; a time based seed is used when unset
	Seed *uint64 `json:"seed,omitempty"`

	PopulationSize int `json:"populationSize,omitempty"`

	// Eras is the number of generations to evolve; zero only scores the
	// initial population
	Eras *int `json:"eras,omitempty"`

	// SelectionFraction of the population survives each era as parents
	SelectionFraction *float64 `json:"selectionFraction,omitempty"`

	CrossoverProbability              *float64 `json:"crossoverProbability,omitempty"`
	MutationProbability               *float64 `json:"mutationProbability,omitempty"`
	ScheduleNonMandatoryProbability   *float64 `json:"scheduleNonMandatoryProbability,omitempty"`
	UnscheduleNonMandatoryProbability *float64 `json:"unscheduleNonMandatoryProbability,omitempty"`

	// AssignProbability is the chance an optional patient is admitted when a
	// chromosome is built from scratch
	AssignProbability *float64 `json:"assignProbability,omitempty"`

	StagnationThreshold  int `json:"stagnationThreshold,omitempty"`
	MaxCrossoverPatients int `json:"maxCrossoverPatients,omitempty"`

	// Timeout bounds the whole run; zero means no limit
	Timeout metav1.Duration `json:"timeout,omitempty"`

	// Checkpoint writes OutputPath every time the best solution improves
	Checkpoint bool `json:"checkpoint,omitempty"`

	// HistoryPath is a SQLite database recording every era; disabled when empty
	HistoryPath string `json:"historyPath,omitempty"`

	// PlotPath receives a convergence chart; disabled when empty
	PlotPath string `json:"plotPath,omitempty"`
}
