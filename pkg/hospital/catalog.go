package hospital

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/utils/ptr"

	"github.com/ihtc/ihtp-ga/pkg/api/v1alpha1"
)

// Catalog is the read-only part of an instance shared by every chromosome.
// It resolves ids to arena indices and holds the pristine arena every
// chromosome starts from.
type Catalog struct {
	Days        int
	ShiftTypes  []string
	SkillLevels int
	AgeGroups   []string
	Weights     v1alpha1.Weights

	Occupants []Occupant
	Patients  []PatientSpec

	rooms     map[string]int
	theaters  map[string]int
	surgeons  map[string]int
	nurses    map[string]int
	patients  map[string]int
	shiftType map[string]int

	template *Hospital
}

// NewCatalog indexes an instance. Dangling references between entities are
// reported as errors.
func NewCatalog(in *v1alpha1.Instance) (*Catalog, error) {
	if in.Days <= 0 {
		return nil, fmt.Errorf("instance has %d days", in.Days)
	}
	if len(in.ShiftTypes) == 0 {
		return nil, fmt.Errorf("instance has no shift types")
	}

	c := &Catalog{
		Days:        in.Days,
		ShiftTypes:  in.ShiftTypes,
		SkillLevels: in.SkillLevels,
		AgeGroups:   in.AgeGroups,
		Weights:     in.Weights,
	}

	var err error
	if c.shiftType, err = indexIDs("shift type", in.ShiftTypes, func(s string) string { return s }); err != nil {
		return nil, err
	}
	ageGroups, err := indexIDs("age group", in.AgeGroups, func(s string) string { return s })
	if err != nil {
		return nil, err
	}
	if c.rooms, err = indexIDs("room", in.Rooms, func(r v1alpha1.Room) string { return r.ID }); err != nil {
		return nil, err
	}
	if c.theaters, err = indexIDs("operating theater", in.OperatingTheaters, func(t v1alpha1.OperatingTheater) string { return t.ID }); err != nil {
		return nil, err
	}
	if c.surgeons, err = indexIDs("surgeon", in.Surgeons, func(s v1alpha1.Surgeon) string { return s.ID }); err != nil {
		return nil, err
	}
	if c.nurses, err = indexIDs("nurse", in.Nurses, func(n v1alpha1.Nurse) string { return n.ID }); err != nil {
		return nil, err
	}
	if c.patients, err = indexIDs("patient", in.Patients, func(p v1alpha1.Patient) string { return p.ID }); err != nil {
		return nil, err
	}

	shifts := c.Shifts()
	h := &Hospital{
		Catalog:  c,
		Rooms:    make([]Room, len(in.Rooms)),
		Theaters: make([]OperatingTheater, len(in.OperatingTheaters)),
		Surgeons: make([]Surgeon, len(in.Surgeons)),
		Nurses:   make([]Nurse, len(in.Nurses)),
		Patients: make([]Patient, len(in.Patients)),
	}
	for i, r := range in.Rooms {
		h.Rooms[i] = newRoom(i, r.ID, r.Capacity, c.Days, shifts)
	}
	for i, t := range in.OperatingTheaters {
		if len(t.Availability) < c.Days {
			return nil, fmt.Errorf("operating theater %s: availability covers %d of %d days", t.ID, len(t.Availability), c.Days)
		}
		h.Theaters[i] = OperatingTheater{Index: i, ID: t.ID, availability: append([]int(nil), t.Availability[:c.Days]...)}
	}
	for i, s := range in.Surgeons {
		if len(s.MaxSurgeryTime) < c.Days {
			return nil, fmt.Errorf("surgeon %s: max surgery time covers %d of %d days", s.ID, len(s.MaxSurgeryTime), c.Days)
		}
		h.Surgeons[i] = Surgeon{Index: i, ID: s.ID, available: append([]int(nil), s.MaxSurgeryTime[:c.Days]...)}
	}
	for i, n := range in.Nurses {
		nurse := Nurse{
			Index:      i,
			ID:         n.ID,
			SkillLevel: n.SkillLevel,
			maxLoad:    make([]int, shifts),
			rooms:      make([][]int, shifts),
		}
		for s := range nurse.maxLoad {
			nurse.maxLoad[s] = NotWorking
		}
		for _, ws := range n.WorkingShifts {
			st, ok := c.shiftType[ws.Shift]
			if !ok {
				return nil, fmt.Errorf("nurse %s: unknown shift type %q", n.ID, ws.Shift)
			}
			if ws.Day < 0 || ws.Day >= c.Days {
				return nil, fmt.Errorf("nurse %s: working day %d outside the horizon", n.ID, ws.Day)
			}
			nurse.maxLoad[ws.Day*c.ShiftsPerDay()+st] = ws.MaxLoad
		}
		h.Nurses[i] = nurse
	}

	c.Occupants = make([]Occupant, len(in.Occupants))
	for i, o := range in.Occupants {
		room, ok := c.rooms[o.RoomID]
		if !ok {
			return nil, fmt.Errorf("occupant %s: unknown room %q", o.ID, o.RoomID)
		}
		age, ok := ageGroups[o.AgeGroup]
		if !ok {
			return nil, fmt.Errorf("occupant %s: unknown age group %q", o.ID, o.AgeGroup)
		}
		c.Occupants[i] = Occupant{
			Index:         i,
			ID:            o.ID,
			Gender:        o.Gender,
			AgeGroup:      age,
			LengthOfStay:  o.LengthOfStay,
			Workload:      o.WorkloadProduced,
			SkillRequired: o.SkillLevelRequired,
			Room:          room,
		}
		h.Rooms[room].addOccupant(&c.Occupants[i])
	}

	c.Patients = make([]PatientSpec, len(in.Patients))
	for i, p := range in.Patients {
		surgeon, ok := c.surgeons[p.SurgeonID]
		if !ok {
			return nil, fmt.Errorf("patient %s: unknown surgeon %q", p.ID, p.SurgeonID)
		}
		age, ok := ageGroups[p.AgeGroup]
		if !ok {
			return nil, fmt.Errorf("patient %s: unknown age group %q", p.ID, p.AgeGroup)
		}
		incompatible := sets.New[int]()
		for _, id := range p.IncompatibleRoomIDs {
			r, ok := c.rooms[id]
			if !ok {
				return nil, fmt.Errorf("patient %s: unknown incompatible room %q", p.ID, id)
			}
			incompatible.Insert(r)
		}
		if need := p.LengthOfStay * c.ShiftsPerDay(); len(p.WorkloadProduced) < need || len(p.SkillLevelRequired) < need {
			return nil, fmt.Errorf("patient %s: per-shift vectors shorter than %d shifts of stay", p.ID, need)
		}
		due := c.Days - 1
		if p.Mandatory {
			due = ptr.Deref(p.SurgeryDueDay, due)
		}
		c.Patients[i] = PatientSpec{
			Index:             i,
			ID:                p.ID,
			Mandatory:         p.Mandatory,
			Gender:            p.Gender,
			AgeGroup:          age,
			LengthOfStay:      p.LengthOfStay,
			ReleaseDay:        p.SurgeryReleaseDay,
			DueDay:            due,
			SurgeryDuration:   p.SurgeryDuration,
			SurgeonID:         p.SurgeonID,
			Surgeon:           surgeon,
			IncompatibleRooms: incompatible,
			Workload:          p.WorkloadProduced,
			SkillRequired:     p.SkillLevelRequired,
		}
		h.Patients[i] = Patient{
			PatientSpec:  &c.Patients[i],
			AdmissionDay: Unscheduled,
			Room:         -1,
			Theater:      -1,
			Surgeon:      surgeon,
		}
	}

	c.template = h
	return c, nil
}

func indexIDs[T any](kind string, items []T, id func(T) string) (map[string]int, error) {
	index := make(map[string]int, len(items))
	for i, item := range items {
		key := id(item)
		if _, dup := index[key]; dup {
			return nil, fmt.Errorf("duplicate %s id %q", kind, key)
		}
		index[key] = i
	}
	return index, nil
}

// NewHospital returns a fresh arena with every patient unscheduled and no
// nurse assigned.
func (c *Catalog) NewHospital() *Hospital {
	return c.template.Clone()
}

func (c *Catalog) ShiftsPerDay() int {
	return len(c.ShiftTypes)
}

// Shifts is the number of shifts in the horizon.
func (c *Catalog) Shifts() int {
	return c.Days * c.ShiftsPerDay()
}

// ShiftOf returns the absolute shift index of a named shift type on a day.
func (c *Catalog) ShiftOf(day int, shiftType string) (int, bool) {
	st, ok := c.shiftType[shiftType]
	if !ok {
		return 0, false
	}
	return day*c.ShiftsPerDay() + st, true
}

// ShiftName splits an absolute shift into its day and shift type name.
func (c *Catalog) ShiftName(shift int) (int, string) {
	return shift / c.ShiftsPerDay(), c.ShiftTypes[shift%c.ShiftsPerDay()]
}

func (c *Catalog) RoomIndex(id string) (int, bool) {
	i, ok := c.rooms[id]
	return i, ok
}

func (c *Catalog) TheaterIndex(id string) (int, bool) {
	i, ok := c.theaters[id]
	return i, ok
}

func (c *Catalog) SurgeonIndex(id string) (int, bool) {
	i, ok := c.surgeons[id]
	return i, ok
}

func (c *Catalog) NurseIndex(id string) (int, bool) {
	i, ok := c.nurses[id]
	return i, ok
}

func (c *Catalog) PatientIndex(id string) (int, bool) {
	i, ok := c.patients[id]
	return i, ok
}
