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

// Gender values used by patients and occupants.
const (
	GenderA = "A"
	GenderB = "B"
)

// Instance is an IHTP problem instance as published by the competition
// organizers. Every per-day vector is indexed from day 0; every per-shift
// vector of an occupant is indexed by absolute shift while a patient's is
// relative to its admission day.
type Instance struct {
	// Days is the length of the scheduling horizon
	Days int `json:"days"`

	// SkillLevels is the number of distinct nurse skill levels
	SkillLevels int `json:"skill_levels"`

	// ShiftTypes names the shifts of a day in order (early, late, night)
	ShiftTypes []string `json:"shift_types"`

	// AgeGroups lists age groups from youngest to oldest
	AgeGroups []string `json:"age_groups"`

	// Weights scales each soft cost component
	Weights Weights `json:"weights"`

	Occupants         []Occupant         `json:"occupants"`
	Patients          []Patient          `json:"patients"`
	Surgeons          []Surgeon          `json:"surgeons"`
	OperatingTheaters []OperatingTheater `json:"operating_theaters"`
	Rooms             []Room             `json:"rooms"`
	Nurses            []Nurse            `json:"nurses"`
}

// Weights holds the soft cost multipliers. The misspelled key of
// NurseExcessiveWorkload is the one used by the instance files.
type Weights struct {
	RoomMixedAge           int `json:"room_mixed_age"`
	RoomNurseSkill         int `json:"room_nurse_skill"`
	ContinuityOfCare       int `json:"continuity_of_care"`
	NurseExcessiveWorkload int `json:"nurse_eccessive_workload"`
	OpenOperatingTheater   int `json:"open_operating_theater"`
	SurgeonTransfer        int `json:"surgeon_transfer"`
	PatientDelay           int `json:"patient_delay"`
	UnscheduledOptional    int `json:"unscheduled_optional"`
}

// Occupant is a patient already in a room at day 0. Occupants are never
// rescheduled.
type Occupant struct {
	ID                 string `json:"id"`
	Gender             string `json:"gender"`
	AgeGroup           string `json:"age_group"`
	LengthOfStay       int    `json:"length_of_stay"`
	WorkloadProduced   []int  `json:"workload_produced"`
	SkillLevelRequired []int  `json:"skill_level_required"`
	RoomID             string `json:"room_id"`
}

// Patient is an elective patient waiting for admission and surgery.
type Patient struct {
	ID        string `json:"id"`
	Mandatory bool   `json:"mandatory"`
	Gender    string `json:"gender"`
	AgeGroup  string `json:"age_group"`

	// LengthOfStay counts days starting at the admission day
	LengthOfStay int `json:"length_of_stay"`

	SurgeryReleaseDay int `json:"surgery_release_day"`

	// SurgeryDueDay is only present for mandatory patients
	SurgeryDueDay *int `json:"surgery_due_day,omitempty"`

	SurgeryDuration     int      `json:"surgery_duration"`
	SurgeonID           string   `json:"surgeon_id"`
	IncompatibleRoomIDs []string `json:"incompatible_room_ids"`
	WorkloadProduced    []int    `json:"workload_produced"`
	SkillLevelRequired  []int    `json:"skill_level_required"`
}

// Surgeon has a maximum operating time per day.
type Surgeon struct {
	ID             string `json:"id"`
	MaxSurgeryTime []int  `json:"max_surgery_time"`
}

// OperatingTheater has an available operating time per day.
type OperatingTheater struct {
	ID           string `json:"id"`
	Availability []int  `json:"availability"`
}

type Room struct {
	ID       string `json:"id"`
	Capacity int    `json:"capacity"`
}

// Nurse works the listed shifts only.
type Nurse struct {
	ID            string         `json:"id"`
	SkillLevel    int            `json:"skill_level"`
	WorkingShifts []WorkingShift `json:"working_shifts"`
}

// WorkingShift is a shift of the roster with the nurse's maximum workload.
type WorkingShift struct {
	Day     int    `json:"day"`
	Shift   string `json:"shift"`
	MaxLoad int    `json:"max_load"`
}
