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

package v1alpha1

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NotAdmitted is the AdmissionDay of a patient left out of the schedule.
const NotAdmitted AdmissionDay = -1

var noneLiteral = []byte(`"none"`)

// AdmissionDay is a day index serialized as a number, or as the string
// "none" when the patient is not admitted.
type AdmissionDay int

func (d AdmissionDay) MarshalJSON() ([]byte, error) {
	if d < 0 {
		return noneLiteral, nil
	}
	return json.Marshal(int(d))
}

func (d *AdmissionDay) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), noneLiteral) {
		*d = NotAdmitted
		return nil
	}
	var day int
	if err := json.Unmarshal(data, &day); err != nil {
		return fmt.Errorf("admission_day must be a day index or \"none\": %w", err)
	}
	*d = AdmissionDay(day)
	return nil
}

// Admitted reports whether the day refers to an actual admission.
func (d AdmissionDay) Admitted() bool {
	return d >= 0
}

// Solution is a complete schedule in the format read by the IHTP validator.
type Solution struct {
	// Patients holds one entry per instance patient, sorted by id
	Patients []PatientAssignment `json:"patients"`

	// Nurses holds one entry per instance nurse, sorted by id
	Nurses []NurseAssignment `json:"nurses"`
}

// PatientAssignment places a patient. Room and OperatingTheater are empty
// when the patient is not admitted.
type PatientAssignment struct {
	ID               string       `json:"id"`
	AdmissionDay     AdmissionDay `json:"admission_day"`
	Room             string       `json:"room,omitempty"`
	OperatingTheater string       `json:"operating_theater,omitempty"`
}

// NurseAssignment lists the rooms covered by a nurse in each working shift.
type NurseAssignment struct {
	ID          string            `json:"id"`
	Assignments []ShiftAssignment `json:"assignments"`
}

type ShiftAssignment struct {
	Day   int      `json:"day"`
	Shift string   `json:"shift"`
	Rooms []string `json:"rooms"`
}
