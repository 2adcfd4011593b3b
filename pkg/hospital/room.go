package hospital

import (
	"fmt"
	"slices"
)

// Room holds the residents of every day of the horizon and the nurse
// covering every shift.
type Room struct {
	Index    int
	ID       string
	Capacity int

	residents [][]Resident // per day
	nurses    []int        // per shift
}

func newRoom(index int, id string, capacity, days, shifts int) Room {
	r := Room{
		Index:     index,
		ID:        id,
		Capacity:  capacity,
		residents: make([][]Resident, days),
		nurses:    make([]int, shifts),
	}
	for s := range r.nurses {
		r.nurses[s] = NoNurse
	}
	return r
}

func (r *Room) clone() Room {
	cp := *r
	cp.residents = make([][]Resident, len(r.residents))
	for d, list := range r.residents {
		cp.residents[d] = slices.Clone(list)
	}
	cp.nurses = slices.Clone(r.nurses)
	return cp
}

// stay returns the days [from, to) spent by a stay of los days starting at
// day, clipped to the horizon.
func (r *Room) stay(day, los int) (int, int) {
	return day, min(day+los, len(r.residents))
}

// IsCompatible reports whether the patient can stay in the room starting at
// day: every day of the stay has a free bed and no resident of the other
// gender.
func (r *Room) IsCompatible(p *PatientSpec, day int) bool {
	from, to := r.stay(day, p.LengthOfStay)
	for d := from; d < to; d++ {
		if len(r.residents[d]) >= r.Capacity {
			return false
		}
		for _, res := range r.residents[d] {
			if res.Gender != p.Gender {
				return false
			}
		}
	}
	return true
}

// AddPatient puts the patient in the room for every day of its stay.
func (r *Room) AddPatient(p *Patient) {
	if !p.Scheduled() {
		panic(fmt.Sprintf("adding unscheduled patient %s to room %s", p.ID, r.ID))
	}
	from, to := r.stay(p.AdmissionDay, p.LengthOfStay)
	for d := from; d < to; d++ {
		r.residents[d] = append(r.residents[d], Resident{Index: p.Index, Gender: p.Gender})
	}
}

// RemovePatient undoes AddPatient.
func (r *Room) RemovePatient(p *Patient) {
	if !p.Scheduled() {
		panic(fmt.Sprintf("removing unscheduled patient %s from room %s", p.ID, r.ID))
	}
	from, to := r.stay(p.AdmissionDay, p.LengthOfStay)
	for d := from; d < to; d++ {
		i := slices.IndexFunc(r.residents[d], func(res Resident) bool {
			return !res.Occupant && res.Index == p.Index
		})
		if i < 0 {
			panic(fmt.Sprintf("patient %s is not in room %s on day %d", p.ID, r.ID, d))
		}
		r.residents[d] = slices.Delete(r.residents[d], i, i+1)
	}
}

func (r *Room) addOccupant(o *Occupant) {
	from, to := r.stay(0, o.LengthOfStay)
	for d := from; d < to; d++ {
		r.residents[d] = append(r.residents[d], Resident{Index: o.Index, Gender: o.Gender, Occupant: true})
	}
}

// Residents returns the patients and occupants present on day. The slice
// must not be modified.
func (r *Room) Residents(day int) []Resident {
	return r.residents[day]
}

func (r *Room) Occupied(day int) bool {
	return len(r.residents[day]) > 0
}

// Nurse returns the nurse covering shift, or NoNurse.
func (r *Room) Nurse(shift int) int {
	return r.nurses[shift]
}
