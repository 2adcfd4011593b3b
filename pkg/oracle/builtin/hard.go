package builtin

import (
	"github.com/ihtc/ihtp-ga/pkg/api/v1alpha1"
	"github.com/ihtc/ihtp-ga/pkg/hospital"
)

// roomGenderMix counts, per room and day, the residents of the minority gender.
func roomGenderMix(s *schedule) int {
	violations := 0
	for r := range s.roomDay {
		for _, residents := range s.roomDay[r] {
			a, b := 0, 0
			for _, res := range residents {
				if res.Gender == v1alpha1.GenderA {
					a++
				} else {
					b++
				}
			}
			violations += min(a, b)
		}
	}
	return violations
}

func patientRoomCompatibility(s *schedule) int {
	violations := 0
	for p, r := range s.room {
		if r != -1 && s.c.Patients[p].IncompatibleRooms.Has(r) {
			violations++
		}
	}
	return violations
}

// surgeonOvertime sums the operating time booked beyond each surgeon's daily maximum.
func surgeonOvertime(s *schedule) int {
	load := make([][]int, len(s.base.Surgeons))
	for i := range load {
		load[i] = make([]int, s.c.Days)
	}
	for p, day := range s.admission {
		if day != hospital.Unscheduled {
			spec := &s.c.Patients[p]
			load[spec.Surgeon][day] += spec.SurgeryDuration
		}
	}
	violations := 0
	for i := range load {
		for d, l := range load[i] {
			if limit := s.base.Surgeons[i].Remaining(d); l > limit {
				violations += l - limit
			}
		}
	}
	return violations
}

// operatingTheaterOvertime sums the operating time booked beyond each theater's availability.
func operatingTheaterOvertime(s *schedule) int {
	violations := 0
	for t := range s.theaterDay {
		for d, patients := range s.theaterDay[t] {
			used := 0
			for _, p := range patients {
				used += s.c.Patients[p].SurgeryDuration
			}
			if limit := s.base.Theaters[t].Remaining(d); used > limit {
				violations += used - limit
			}
		}
	}
	return violations
}

func mandatoryUnscheduled(s *schedule) int {
	violations := 0
	for p, day := range s.admission {
		if day == hospital.Unscheduled && s.c.Patients[p].Mandatory {
			violations++
		}
	}
	return violations
}

// admissionDay counts patients admitted before their release day or after
// their last admissible day.
func admissionDay(s *schedule) int {
	violations := 0
	for p, day := range s.admission {
		if day == hospital.Unscheduled {
			continue
		}
		spec := &s.c.Patients[p]
		if day < spec.ReleaseDay || day > spec.DueDay {
			violations++
		}
	}
	return violations
}

// roomCapacity sums the residents exceeding each room's capacity per day.
func roomCapacity(s *schedule) int {
	violations := 0
	for r := range s.roomDay {
		capacity := s.base.Rooms[r].Capacity
		for _, residents := range s.roomDay[r] {
			if len(residents) > capacity {
				violations += len(residents) - capacity
			}
		}
	}
	return violations
}

// nursePresence counts room shifts covered by a nurse outside its roster.
func nursePresence(s *schedule) int {
	violations := 0
	for r := range s.roomShiftNurse {
		for sh, n := range s.roomShiftNurse[r] {
			if n != hospital.NoNurse && !s.base.Nurses[n].Available(sh) {
				violations++
			}
		}
	}
	return violations
}

// uncoveredRoom counts occupied room shifts nobody covers.
func uncoveredRoom(s *schedule) int {
	violations := 0
	spd := s.c.ShiftsPerDay()
	for r := range s.roomShiftNurse {
		for sh, n := range s.roomShiftNurse[r] {
			if n == hospital.NoNurse && len(s.roomDay[r][sh/spd]) > 0 {
				violations++
			}
		}
	}
	return violations
}
