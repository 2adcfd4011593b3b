package hospital

import (
	"fmt"
	"slices"
)

// OperatingTheater tracks the operating time still free on every day.
type OperatingTheater struct {
	Index int
	ID    string

	availability []int
}

func (t *OperatingTheater) clone() OperatingTheater {
	cp := *t
	cp.availability = slices.Clone(t.availability)
	return cp
}

// IsCompatible reports whether the patient's surgery fits the theater on day.
func (t *OperatingTheater) IsCompatible(p *PatientSpec, day int) bool {
	return t.availability[day] >= p.SurgeryDuration
}

// Schedule books the surgery of the patient on its admission day.
func (t *OperatingTheater) Schedule(p *Patient) {
	if !p.Scheduled() {
		panic(fmt.Sprintf("booking theater %s for unscheduled patient %s", t.ID, p.ID))
	}
	t.availability[p.AdmissionDay] -= p.SurgeryDuration
}

// Unschedule releases the time booked by Schedule.
func (t *OperatingTheater) Unschedule(p *Patient) {
	if !p.Scheduled() {
		panic(fmt.Sprintf("releasing theater %s for unscheduled patient %s", t.ID, p.ID))
	}
	t.availability[p.AdmissionDay] += p.SurgeryDuration
}

// Remaining returns the free operating time on day.
func (t *OperatingTheater) Remaining(day int) int {
	return t.availability[day]
}

// Surgeon tracks the operating time a surgeon has left on every day.
type Surgeon struct {
	Index int
	ID    string

	available []int
}

func (s *Surgeon) clone() Surgeon {
	cp := *s
	cp.available = slices.Clone(s.available)
	return cp
}

func (s *Surgeon) CheckScheduleSurgery(day, duration int) bool {
	return s.available[day] >= duration
}

func (s *Surgeon) Schedule(day, duration int) {
	s.available[day] -= duration
}

func (s *Surgeon) Unschedule(day, duration int) {
	s.available[day] += duration
}

func (s *Surgeon) Remaining(day int) int {
	return s.available[day]
}
