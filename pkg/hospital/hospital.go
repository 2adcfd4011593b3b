package hospital

import (
	"fmt"
	"slices"
)

// Patient is the mutable assignment of a patient inside one arena. Room,
// Theater and AdmissionDay are either all set or all unset.
type Patient struct {
	*PatientSpec

	AdmissionDay int
	Room         int
	Theater      int
	Surgeon      int
}

func (p *Patient) Scheduled() bool {
	return p.AdmissionDay != Unscheduled
}

// Hospital is the arena of one candidate schedule. Entities refer to each
// other through indices into its slices, so cloning the slices is enough to
// get a fully independent copy.
type Hospital struct {
	Catalog *Catalog

	Rooms    []Room
	Theaters []OperatingTheater
	Surgeons []Surgeon
	Nurses   []Nurse
	Patients []Patient
}

// Clone returns a deep copy sharing only the read-only catalog.
func (h *Hospital) Clone() *Hospital {
	cp := &Hospital{
		Catalog:  h.Catalog,
		Rooms:    make([]Room, len(h.Rooms)),
		Theaters: make([]OperatingTheater, len(h.Theaters)),
		Surgeons: make([]Surgeon, len(h.Surgeons)),
		Nurses:   make([]Nurse, len(h.Nurses)),
		Patients: slices.Clone(h.Patients),
	}
	for i := range h.Rooms {
		cp.Rooms[i] = h.Rooms[i].clone()
	}
	for i := range h.Theaters {
		cp.Theaters[i] = h.Theaters[i].clone()
	}
	for i := range h.Surgeons {
		cp.Surgeons[i] = h.Surgeons[i].clone()
	}
	for i := range h.Nurses {
		cp.Nurses[i] = h.Nurses[i].clone()
	}
	return cp
}

// Patient returns the arena patient with the given id.
func (h *Hospital) Patient(id string) (*Patient, bool) {
	i, ok := h.Catalog.PatientIndex(id)
	if !ok {
		return nil, false
	}
	return &h.Patients[i], true
}

// CompatibleRooms lists the rooms, other than exclude, the patient may stay in
// from day.
func (h *Hospital) CompatibleRooms(p *Patient, day, exclude int) []int {
	var rooms []int
	for i := range h.Rooms {
		if i == exclude || p.IncompatibleRooms.Has(i) {
			continue
		}
		if h.Rooms[i].IsCompatible(p.PatientSpec, day) {
			rooms = append(rooms, i)
		}
	}
	return rooms
}

// CompatibleTheaters lists the theaters, other than exclude, with enough time
// for the patient's surgery on day.
func (h *Hospital) CompatibleTheaters(p *Patient, day, exclude int) []int {
	var theaters []int
	for i := range h.Theaters {
		if i != exclude && h.Theaters[i].IsCompatible(p.PatientSpec, day) {
			theaters = append(theaters, i)
		}
	}
	return theaters
}

// Schedule admits the patient on day and books its surgeon, room and theater
// in that order. No compatibility check is made.
func (h *Hospital) Schedule(p *Patient, day, room, theater int) {
	if p.Scheduled() {
		panic(fmt.Sprintf("patient %s is already scheduled on day %d", p.ID, p.AdmissionDay))
	}
	p.AdmissionDay, p.Room, p.Theater = day, room, theater
	h.Surgeons[p.Surgeon].Schedule(day, p.SurgeryDuration)
	h.Rooms[room].AddPatient(p)
	h.Theaters[theater].Schedule(p)
}

// Unschedule releases everything booked by Schedule.
func (h *Hospital) Unschedule(p *Patient) {
	if !p.Scheduled() {
		panic(fmt.Sprintf("patient %s is not scheduled", p.ID))
	}
	h.Surgeons[p.Surgeon].Unschedule(p.AdmissionDay, p.SurgeryDuration)
	h.Rooms[p.Room].RemovePatient(p)
	h.Theaters[p.Theater].Unschedule(p)
	p.AdmissionDay, p.Room, p.Theater = Unscheduled, -1, -1
}

// Overbooked reports whether a theater or a surgeon has negative time left
// on some day. Only placements made without a compatibility check, such as
// the exchanges of a crossover, can get there.
func (h *Hospital) Overbooked() bool {
	for i := range h.Theaters {
		if slices.ContainsFunc(h.Theaters[i].availability, negative) {
			return true
		}
	}
	for i := range h.Surgeons {
		if slices.ContainsFunc(h.Surgeons[i].available, negative) {
			return true
		}
	}
	return false
}

func negative(v int) bool { return v < 0 }

// MoveRoom moves a scheduled patient to another room.
func (h *Hospital) MoveRoom(p *Patient, room int) {
	h.Rooms[p.Room].RemovePatient(p)
	p.Room = room
	h.Rooms[room].AddPatient(p)
}

// MoveTheater moves the surgery of a scheduled patient to another theater.
func (h *Hospital) MoveTheater(p *Patient, theater int) {
	h.Theaters[p.Theater].Unschedule(p)
	p.Theater = theater
	h.Theaters[theater].Schedule(p)
}

// AssignNurse makes nurse cover room during shift, updating both sides.
func (h *Hospital) AssignNurse(nurse, room, shift int) {
	if prev := h.Rooms[room].nurses[shift]; prev != NoNurse {
		h.UnassignNurse(prev, room, shift)
	}
	h.Rooms[room].nurses[shift] = nurse
	h.Nurses[nurse].rooms[shift] = append(h.Nurses[nurse].rooms[shift], room)
}

// UnassignNurse undoes AssignNurse.
func (h *Hospital) UnassignNurse(nurse, room, shift int) {
	if h.Rooms[room].nurses[shift] == nurse {
		h.Rooms[room].nurses[shift] = NoNurse
	}
	n := &h.Nurses[nurse]
	n.rooms[shift] = slices.DeleteFunc(n.rooms[shift], func(r int) bool { return r == room })
}

// AvailableNurses lists the nurses working shift.
func (h *Hospital) AvailableNurses(shift int) []int {
	var nurses []int
	for i := range h.Nurses {
		if h.Nurses[i].Available(shift) {
			nurses = append(nurses, i)
		}
	}
	return nurses
}
