// Package benchmarks builds IHTP instances for tests, demos and profiling.
// Generated instances are deterministic for a given seed and are sized so that
// constructive initialization finds feasible schedules quickly.
package benchmarks

import (
	"fmt"

	"golang.org/x/exp/rand"
	"k8s.io/utils/ptr"

	"github.com/ihtc/ihtp-ga/pkg/api/v1alpha1"
)

var (
	shiftTypes = []string{"early", "late", "night"}
	ageGroups  = []string{"infant", "adult", "elderly"}
)

// Config sizes a generated instance.
type Config struct {
	Days              int
	Rooms             int
	RoomCapacity      int
	Theaters          int
	Surgeons          int
	Nurses            int
	Patients          int
	Occupants         int
	MandatoryFraction float64
	Seed              uint64
}

// DefaultConfig returns a one-week ward small enough for unit tests.
func DefaultConfig() Config {
	return Config{
		Days:              7,
		Rooms:             4,
		RoomCapacity:      3,
		Theaters:          2,
		Surgeons:          3,
		Nurses:            6,
		Patients:          12,
		Occupants:         2,
		MandatoryFraction: 0.4,
		Seed:              1,
	}
}

// DefaultWeights mirrors the weight profile of the public competition instances.
func DefaultWeights() v1alpha1.Weights {
	return v1alpha1.Weights{
		RoomMixedAge:           5,
		RoomNurseSkill:         1,
		ContinuityOfCare:       1,
		NurseExcessiveWorkload: 1,
		OpenOperatingTheater:   10,
		SurgeonTransfer:        5,
		PatientDelay:           5,
		UnscheduledOptional:    20,
	}
}

// Generate builds a random instance. Every shift has at least one working
// nurse and every mandatory window fits in the horizon.
func Generate(cfg Config) *v1alpha1.Instance {
	rng := rand.New(rand.NewSource(cfg.Seed))
	spd := len(shiftTypes)

	in := &v1alpha1.Instance{
		Days:        cfg.Days,
		SkillLevels: 3,
		ShiftTypes:  shiftTypes,
		AgeGroups:   ageGroups,
		Weights:     DefaultWeights(),
	}

	for r := 0; r < cfg.Rooms; r++ {
		in.Rooms = append(in.Rooms, v1alpha1.Room{ID: fmt.Sprintf("r%02d", r), Capacity: cfg.RoomCapacity})
	}
	for t := 0; t < cfg.Theaters; t++ {
		in.OperatingTheaters = append(in.OperatingTheaters, v1alpha1.OperatingTheater{
			ID:           fmt.Sprintf("t%02d", t),
			Availability: constant(cfg.Days, 480),
		})
	}
	for s := 0; s < cfg.Surgeons; s++ {
		in.Surgeons = append(in.Surgeons, v1alpha1.Surgeon{
			ID:             fmt.Sprintf("s%02d", s),
			MaxSurgeryTime: constant(cfg.Days, 360),
		})
	}
	for n := 0; n < cfg.Nurses; n++ {
		nurse := v1alpha1.Nurse{ID: fmt.Sprintf("n%03d", n), SkillLevel: rng.Intn(3)}
		for s := 0; s < cfg.Days*spd; s++ {
			if s%cfg.Nurses == n || rng.Float64() < 0.5 {
				nurse.WorkingShifts = append(nurse.WorkingShifts, v1alpha1.WorkingShift{
					Day:     s / spd,
					Shift:   shiftTypes[s%spd],
					MaxLoad: 10 + rng.Intn(11),
				})
			}
		}
		in.Nurses = append(in.Nurses, nurse)
	}

	for o := 0; o < cfg.Occupants; o++ {
		los := 1 + rng.Intn(3)
		in.Occupants = append(in.Occupants, v1alpha1.Occupant{
			ID:                 fmt.Sprintf("a%02d", o),
			Gender:             gender(rng),
			AgeGroup:           ageGroups[rng.Intn(len(ageGroups))],
			LengthOfStay:       los,
			WorkloadProduced:   randomVector(rng, los*spd, 1, 3),
			SkillLevelRequired: randomVector(rng, los*spd, 0, 2),
			RoomID:             in.Rooms[o%cfg.Rooms].ID,
		})
	}

	for p := 0; p < cfg.Patients; p++ {
		los := 1 + rng.Intn(4)
		release := rng.Intn(max(1, cfg.Days-2))
		patient := v1alpha1.Patient{
			ID:                 fmt.Sprintf("p%03d", p),
			Mandatory:          rng.Float64() < cfg.MandatoryFraction,
			Gender:             gender(rng),
			AgeGroup:           ageGroups[rng.Intn(len(ageGroups))],
			LengthOfStay:       los,
			SurgeryReleaseDay:  release,
			SurgeryDuration:    30 * (2 + rng.Intn(5)),
			SurgeonID:          in.Surgeons[rng.Intn(cfg.Surgeons)].ID,
			WorkloadProduced:   randomVector(rng, los*spd, 1, 3),
			SkillLevelRequired: randomVector(rng, los*spd, 0, 2),
		}
		if patient.Mandatory {
			patient.SurgeryDueDay = ptr.To(min(cfg.Days-1, release+2+rng.Intn(3)))
		}
		if cfg.Rooms > 1 && rng.Float64() < 0.2 {
			patient.IncompatibleRoomIDs = []string{in.Rooms[rng.Intn(cfg.Rooms)].ID}
		}
		in.Patients = append(in.Patients, patient)
	}
	return in
}

// Tiny is the smallest interesting instance: one room with two beds, one
// theater, one surgeon, one nurse working every shift, and two mandatory
// patients staying one day with a surgery of 4 time units each.
func Tiny() *v1alpha1.Instance {
	const days = 3
	spd := len(shiftTypes)
	nurse := v1alpha1.Nurse{ID: "n000", SkillLevel: 1}
	for s := 0; s < days*spd; s++ {
		nurse.WorkingShifts = append(nurse.WorkingShifts, v1alpha1.WorkingShift{Day: s / spd, Shift: shiftTypes[s%spd], MaxLoad: 10})
	}
	patient := func(id string) v1alpha1.Patient {
		return v1alpha1.Patient{
			ID:                 id,
			Mandatory:          true,
			Gender:             v1alpha1.GenderA,
			AgeGroup:           "adult",
			LengthOfStay:       1,
			SurgeryReleaseDay:  0,
			SurgeryDueDay:      ptr.To(2),
			SurgeryDuration:    4,
			SurgeonID:          "s00",
			WorkloadProduced:   []int{1, 1, 1},
			SkillLevelRequired: []int{1, 1, 1},
		}
	}
	return &v1alpha1.Instance{
		Days:              days,
		SkillLevels:       3,
		ShiftTypes:        shiftTypes,
		AgeGroups:         ageGroups,
		Weights:           DefaultWeights(),
		Patients:          []v1alpha1.Patient{patient("p000"), patient("p001")},
		Surgeons:          []v1alpha1.Surgeon{{ID: "s00", MaxSurgeryTime: constant(days, 10)}},
		OperatingTheaters: []v1alpha1.OperatingTheater{{ID: "t00", Availability: constant(days, 10)}},
		Rooms:             []v1alpha1.Room{{ID: "r00", Capacity: 2}},
		Nurses:            []v1alpha1.Nurse{nurse},
	}
}

func constant(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func randomVector(rng *rand.Rand, n, lo, hi int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = lo + rng.Intn(hi-lo+1)
	}
	return out
}

func gender(rng *rand.Rand) string {
	if rng.Intn(2) == 0 {
		return v1alpha1.GenderA
	}
	return v1alpha1.GenderB
}
