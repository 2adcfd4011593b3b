// Package builtin scores schedules in process with the rules of the official
// IHTP validator, so the search can run without the external binary.
package builtin

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/ihtc/ihtp-ga/pkg/api/v1alpha1"
	"github.com/ihtc/ihtp-ga/pkg/hospital"
	"github.com/ihtc/ihtp-ga/pkg/oracle"
)

// Component is one term of the score. Hard components have no weight.
type Component struct {
	Name   string
	Weight int
	Count  func(s *schedule) int
}

// Report details the score of a schedule per component. Costs are
// unweighted.
type Report struct {
	Violations map[string]int
	Costs      map[string]int
	Result     oracle.Result
}

// Evaluator implements oracle.CostFunc for one instance.
type Evaluator struct {
	catalog *hospital.Catalog
	// pristine arena, read for capacities, budgets and rosters
	base   *hospital.Hospital
	hard   []Component
	soft   []Component
	logger klog.Logger
}

var _ oracle.CostFunc = &Evaluator{}

func New(ctx context.Context, c *hospital.Catalog) *Evaluator {
	w := c.Weights
	return &Evaluator{
		catalog: c,
		base:    c.NewHospital(),
		hard: []Component{
			{Name: "RoomGenderMix", Count: roomGenderMix},
			{Name: "PatientRoomCompatibility", Count: patientRoomCompatibility},
			{Name: "SurgeonOvertime", Count: surgeonOvertime},
			{Name: "OperatingTheaterOvertime", Count: operatingTheaterOvertime},
			{Name: "MandatoryUnscheduledPatients", Count: mandatoryUnscheduled},
			{Name: "AdmissionDay", Count: admissionDay},
			{Name: "RoomCapacity", Count: roomCapacity},
			{Name: "NursePresence", Count: nursePresence},
			{Name: "UncoveredRoom", Count: uncoveredRoom},
		},
		soft: []Component{
			{Name: "RoomAgeMix", Weight: w.RoomMixedAge, Count: roomAgeMix},
			{Name: "RoomSkillLevel", Weight: w.RoomNurseSkill, Count: roomSkillLevel},
			{Name: "ContinuityOfCare", Weight: w.ContinuityOfCare, Count: continuityOfCare},
			{Name: "ExcessiveNurseWorkload", Weight: w.NurseExcessiveWorkload, Count: excessiveNurseWorkload},
			{Name: "OpenOperatingTheater", Weight: w.OpenOperatingTheater, Count: openOperatingTheater},
			{Name: "SurgeonTransfer", Weight: w.SurgeonTransfer, Count: surgeonTransfer},
			{Name: "PatientDelay", Weight: w.PatientDelay, Count: patientDelay},
			{Name: "ElectiveUnscheduledPatients", Weight: w.UnscheduledOptional, Count: electiveUnscheduled},
		},
		logger: klog.FromContext(ctx).WithValues("oracle", "builtin"),
	}
}

func (e *Evaluator) Evaluate(ctx context.Context, sol *v1alpha1.Solution) (oracle.Result, error) {
	if err := ctx.Err(); err != nil {
		return oracle.Result{}, err
	}
	r, err := e.Report(sol)
	if err != nil {
		return oracle.Result{}, err
	}
	if loggerV := e.logger.V(4); loggerV.Enabled() {
		loggerV.Info("Evaluated solution",
			"violations", r.Result.HardViolations,
			"cost", r.Result.SoftCost,
			"violationBreakdown", r.Violations,
			"costBreakdown", r.Costs)
	}
	return r.Result, nil
}

// Weights returns the weight of every soft component by name.
func (e *Evaluator) Weights() map[string]int {
	w := make(map[string]int, len(e.soft))
	for _, c := range e.soft {
		w[c.Name] = c.Weight
	}
	return w
}

// Report scores a schedule. Schedules referring to unknown entities, or
// admitting a patient twice, are rejected with an error.
func (e *Evaluator) Report(sol *v1alpha1.Solution) (Report, error) {
	s, err := e.decode(sol)
	if err != nil {
		return Report{}, err
	}
	r := Report{
		Violations: make(map[string]int, len(e.hard)),
		Costs:      make(map[string]int, len(e.soft)),
	}
	for _, c := range e.hard {
		n := c.Count(s)
		r.Violations[c.Name] = n
		r.Result.HardViolations += n
	}
	for _, c := range e.soft {
		n := c.Count(s)
		r.Costs[c.Name] = n
		r.Result.SoftCost += c.Weight * n
	}
	return r, nil
}

// schedule is a decoded solution laid out for counting.
type schedule struct {
	c    *hospital.Catalog
	base *hospital.Hospital

	admission []int // per patient, hospital.Unscheduled when not admitted
	room      []int
	theater   []int

	roomDay         [][][]hospital.Resident // room, day
	roomShiftNurse  [][]int                 // room, shift
	nurseShiftRooms [][][]int               // nurse, shift
	theaterDay      [][][]int               // theater, day: patients
}

func (e *Evaluator) decode(sol *v1alpha1.Solution) (*schedule, error) {
	c := e.catalog
	days, shifts := c.Days, c.Shifts()
	s := &schedule{
		c:               c,
		base:            e.base,
		admission:       make([]int, len(c.Patients)),
		room:            make([]int, len(c.Patients)),
		theater:         make([]int, len(c.Patients)),
		roomDay:         make([][][]hospital.Resident, len(e.base.Rooms)),
		roomShiftNurse:  make([][]int, len(e.base.Rooms)),
		nurseShiftRooms: make([][][]int, len(e.base.Nurses)),
		theaterDay:      make([][][]int, len(e.base.Theaters)),
	}
	for p := range s.admission {
		s.admission[p], s.room[p], s.theater[p] = hospital.Unscheduled, -1, -1
	}
	for r := range s.roomDay {
		s.roomDay[r] = make([][]hospital.Resident, days)
		for d := range s.roomDay[r] {
			s.roomDay[r][d] = append([]hospital.Resident(nil), e.base.Rooms[r].Residents(d)...)
		}
		s.roomShiftNurse[r] = make([]int, shifts)
		for sh := range s.roomShiftNurse[r] {
			s.roomShiftNurse[r][sh] = hospital.NoNurse
		}
	}
	for n := range s.nurseShiftRooms {
		s.nurseShiftRooms[n] = make([][]int, shifts)
	}
	for t := range s.theaterDay {
		s.theaterDay[t] = make([][]int, days)
	}

	for _, pa := range sol.Patients {
		p, ok := c.PatientIndex(pa.ID)
		if !ok {
			return nil, fmt.Errorf("unknown patient %q", pa.ID)
		}
		if !pa.AdmissionDay.Admitted() {
			continue
		}
		if s.admission[p] != hospital.Unscheduled {
			return nil, fmt.Errorf("patient %s assigned twice", pa.ID)
		}
		day := int(pa.AdmissionDay)
		if day >= days {
			return nil, fmt.Errorf("patient %s admitted on day %d after the horizon", pa.ID, day)
		}
		r, ok := c.RoomIndex(pa.Room)
		if !ok {
			return nil, fmt.Errorf("patient %s: unknown room %q", pa.ID, pa.Room)
		}
		t, ok := c.TheaterIndex(pa.OperatingTheater)
		if !ok {
			return nil, fmt.Errorf("patient %s: unknown operating theater %q", pa.ID, pa.OperatingTheater)
		}
		s.admission[p], s.room[p], s.theater[p] = day, r, t
		spec := &c.Patients[p]
		for d := day; d < min(days, day+spec.LengthOfStay); d++ {
			s.roomDay[r][d] = append(s.roomDay[r][d], hospital.Resident{Index: p, Gender: spec.Gender})
		}
		s.theaterDay[t][day] = append(s.theaterDay[t][day], p)
	}

	for _, na := range sol.Nurses {
		n, ok := c.NurseIndex(na.ID)
		if !ok {
			return nil, fmt.Errorf("unknown nurse %q", na.ID)
		}
		for _, a := range na.Assignments {
			if a.Day < 0 || a.Day >= days {
				return nil, fmt.Errorf("nurse %s: day %d outside the horizon", na.ID, a.Day)
			}
			sh, ok := c.ShiftOf(a.Day, a.Shift)
			if !ok {
				return nil, fmt.Errorf("nurse %s: unknown shift %q", na.ID, a.Shift)
			}
			for _, id := range a.Rooms {
				r, ok := c.RoomIndex(id)
				if !ok {
					return nil, fmt.Errorf("nurse %s: unknown room %q", na.ID, id)
				}
				s.roomShiftNurse[r][sh] = n
				s.nurseShiftRooms[n][sh] = append(s.nurseShiftRooms[n][sh], r)
			}
		}
	}
	return s, nil
}

// workload returns the workload a resident produces during an absolute shift.
func (s *schedule) workload(res hospital.Resident, shift int) int {
	if res.Occupant {
		return at(s.c.Occupants[res.Index].Workload, shift)
	}
	return at(s.c.Patients[res.Index].Workload, shift-s.admission[res.Index]*s.c.ShiftsPerDay())
}

// skill returns the nurse skill a resident requires during an absolute shift.
func (s *schedule) skill(res hospital.Resident, shift int) int {
	if res.Occupant {
		return at(s.c.Occupants[res.Index].SkillRequired, shift)
	}
	return at(s.c.Patients[res.Index].SkillRequired, shift-s.admission[res.Index]*s.c.ShiftsPerDay())
}

func (s *schedule) ageGroup(res hospital.Resident) int {
	if res.Occupant {
		return s.c.Occupants[res.Index].AgeGroup
	}
	return s.c.Patients[res.Index].AgeGroup
}

func at(v []int, i int) int {
	if i < 0 || i >= len(v) {
		return 0
	}
	return v[i]
}
