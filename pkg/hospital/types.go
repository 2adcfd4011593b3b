package hospital

import (
	"k8s.io/apimachinery/pkg/util/sets"
)

const (
	// Unscheduled is the admission day of a patient without assignment
	Unscheduled = -1
	// NoNurse marks a room shift nobody covers
	NoNurse = -1
	// NotWorking is the max load of a nurse outside the roster
	NotWorking = -1
)

// Occupant contains the fixed placement of a patient already admitted at day 0
type Occupant struct {
	Index         int
	ID            string
	Gender        string
	AgeGroup      int
	LengthOfStay  int
	Workload      []int // indexed by absolute shift
	SkillRequired []int // indexed by absolute shift
	Room          int
}

// PatientSpec contains the immutable data of an elective patient
type PatientSpec struct {
	Index        int
	ID           string
	Mandatory    bool
	Gender       string
	AgeGroup     int
	LengthOfStay int
	ReleaseDay   int
	// DueDay is the last admissible day: the surgery due day of mandatory
	// patients, the last day of the horizon otherwise.
	DueDay            int
	SurgeryDuration   int
	SurgeonID         string
	Surgeon           int
	IncompatibleRooms sets.Set[int]
	Workload          []int // indexed by shift since admission
	SkillRequired     []int // indexed by shift since admission
}

// Window returns the first and last day the patient may be admitted on,
// clipped to a horizon of the given number of days.
func (p *PatientSpec) Window(days int) (first, last int) {
	return p.ReleaseDay, min(p.DueDay, days-1)
}

// Resident is a patient or occupant present in a room on a day
type Resident struct {
	Index    int
	Gender   string
	Occupant bool
}
