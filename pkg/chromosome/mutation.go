package chromosome

import (
	"fmt"

	"github.com/ihtc/ihtp-ga/pkg/hospital"
)

// assignment is the part of a patient placement that travels between
// chromosomes. Rooms and theaters are carried by id and resolved again in
// the destination arena.
type assignment struct {
	day     int
	room    string
	theater string
}

func (c *Chromosome) assignmentOf(p *hospital.Patient) assignment {
	return assignment{day: p.AdmissionDay, room: c.h.Rooms[p.Room].ID, theater: c.h.Theaters[p.Theater].ID}
}

// apply books a placement for an unscheduled patient without any
// compatibility check.
func (c *Chromosome) apply(p *hospital.Patient, a assignment) {
	cat := c.h.Catalog
	room, ok := cat.RoomIndex(a.room)
	if !ok {
		panic(fmt.Sprintf("room %s is not part of the instance", a.room))
	}
	theater, ok := cat.TheaterIndex(a.theater)
	if !ok {
		panic(fmt.Sprintf("operating theater %s is not part of the instance", a.theater))
	}
	if s, ok := cat.SurgeonIndex(p.SurgeonID); ok {
		p.Surgeon = s
	}
	c.h.Schedule(p, a.day, room, theater)
}

// Exchange swaps the placements of the patient with the given id between two
// chromosomes. It only acts when the patient is scheduled in both, and
// reports whether it did. Destination budgets are not checked: the oracle
// rejects the children that end up infeasible.
func Exchange(a, b *Chromosome, id string) bool {
	pa, ok := a.h.Patient(id)
	if !ok || !pa.Scheduled() {
		return false
	}
	pb, ok := b.h.Patient(id)
	if !ok || !pb.Scheduled() {
		return false
	}
	fromA, fromB := a.assignmentOf(pa), b.assignmentOf(pb)
	a.h.Unschedule(pa)
	b.h.Unschedule(pb)
	a.apply(pa, fromB)
	b.apply(pb, fromA)
	return true
}

// ReassignRoom moves a scheduled patient to another compatible room, if any.
func (c *Chromosome) ReassignRoom(i int) bool {
	p := &c.h.Patients[i]
	if !p.Scheduled() {
		return false
	}
	rooms := c.h.CompatibleRooms(p, p.AdmissionDay, p.Room)
	if len(rooms) == 0 {
		return false
	}
	c.h.MoveRoom(p, rooms[c.rng.Intn(len(rooms))])
	return true
}

// ReassignTheater moves the surgery of a scheduled patient to another
// theater with enough time, if any.
func (c *Chromosome) ReassignTheater(i int) bool {
	p := &c.h.Patients[i]
	if !p.Scheduled() {
		return false
	}
	theaters := c.h.CompatibleTheaters(p, p.AdmissionDay, p.Theater)
	if len(theaters) == 0 {
		return false
	}
	c.h.MoveTheater(p, theaters[c.rng.Intn(len(theaters))])
	return true
}

// ReassignAdmissionDay moves a scheduled patient to another day of its
// window. Candidate days are tried in random order and checked while the
// patient still holds its current placement; the first day where the surgeon
// has time and some room and theater fit wins.
func (c *Chromosome) ReassignAdmissionDay(i int) bool {
	h := c.h
	p := &h.Patients[i]
	if !p.Scheduled() {
		return false
	}
	first, last := p.Window(h.Catalog.Days)
	var days []int
	for d := first; d <= last; d++ {
		if d != p.AdmissionDay {
			days = append(days, d)
		}
	}
	c.rng.Shuffle(len(days), func(i, j int) { days[i], days[j] = days[j], days[i] })

	for _, d := range days {
		theaters := h.CompatibleTheaters(p, d, -1)
		if len(theaters) == 0 {
			continue
		}
		rooms := h.CompatibleRooms(p, d, -1)
		if len(rooms) == 0 {
			continue
		}
		if !h.Surgeons[p.Surgeon].CheckScheduleSurgery(d, p.SurgeryDuration) {
			continue
		}
		h.Unschedule(p)
		h.Schedule(p, d, rooms[c.rng.Intn(len(rooms))], theaters[c.rng.Intn(len(theaters))])
		return true
	}
	return false
}

// UnschedulePatient drops a scheduled patient from the schedule.
func (c *Chromosome) UnschedulePatient(i int) bool {
	p := &c.h.Patients[i]
	if !p.Scheduled() {
		return false
	}
	c.h.Unschedule(p)
	return true
}

// AddNurseRooms assigns the nurse to a random number, possibly zero, of the
// uncovered occupied rooms of shift and returns how many it took.
func (c *Chromosome) AddNurseRooms(n, shift int) int {
	nurse := &c.h.Nurses[n]
	candidates := nurse.FindCompatibleRooms(c.h, shift)
	k := c.rng.Intn(len(candidates) + 1)
	for _, r := range hospital.Sample(c.rng, candidates, k) {
		c.h.AssignNurse(n, r, shift)
	}
	return k
}

// RemoveNurseRooms releases a random number, possibly zero, of the rooms the
// nurse covers during shift and returns how many it released.
func (c *Chromosome) RemoveNurseRooms(n, shift int) int {
	assigned := c.h.Nurses[n].Rooms(shift)
	k := c.rng.Intn(len(assigned) + 1)
	for _, r := range hospital.Sample(c.rng, assigned, k) {
		c.h.UnassignNurse(n, r, shift)
	}
	return k
}
