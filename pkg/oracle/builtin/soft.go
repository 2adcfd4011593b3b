package builtin

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/ihtc/ihtp-ga/pkg/hospital"
)

// roomAgeMix sums, per room and day, the spread between the oldest and the
// youngest age group present.
func roomAgeMix(s *schedule) int {
	cost := 0
	for r := range s.roomDay {
		for _, residents := range s.roomDay[r] {
			if len(residents) == 0 {
				continue
			}
			lo, hi := s.ageGroup(residents[0]), s.ageGroup(residents[0])
			for _, res := range residents[1:] {
				g := s.ageGroup(res)
				lo, hi = min(lo, g), max(hi, g)
			}
			cost += hi - lo
		}
	}
	return cost
}

// roomSkillLevel sums the skill missing to the nurse covering each resident.
// Uncovered shifts are already counted as hard violations.
func roomSkillLevel(s *schedule) int {
	cost := 0
	spd := s.c.ShiftsPerDay()
	for r := range s.roomShiftNurse {
		for sh, n := range s.roomShiftNurse[r] {
			if n == hospital.NoNurse {
				continue
			}
			skill := s.base.Nurses[n].SkillLevel
			for _, res := range s.roomDay[r][sh/spd] {
				if need := s.skill(res, sh); need > skill {
					cost += need - skill
				}
			}
		}
	}
	return cost
}

// continuityOfCare sums the distinct nurses met by every occupant and every
// admitted patient during their stay.
func continuityOfCare(s *schedule) int {
	cost := 0
	spd := s.c.ShiftsPerDay()
	shifts := s.c.Shifts()
	distinct := func(room, from, to int) int {
		nurses := sets.New[int]()
		for sh := from; sh < min(to, shifts); sh++ {
			if n := s.roomShiftNurse[room][sh]; n != hospital.NoNurse {
				nurses.Insert(n)
			}
		}
		return nurses.Len()
	}
	for _, o := range s.c.Occupants {
		cost += distinct(o.Room, 0, o.LengthOfStay*spd)
	}
	for p, day := range s.admission {
		if day == hospital.Unscheduled {
			continue
		}
		cost += distinct(s.room[p], day*spd, (day+s.c.Patients[p].LengthOfStay)*spd)
	}
	return cost
}

// excessiveNurseWorkload sums the workload assigned to nurses beyond their
// maximum load in each working shift.
func excessiveNurseWorkload(s *schedule) int {
	cost := 0
	spd := s.c.ShiftsPerDay()
	for n := range s.nurseShiftRooms {
		nurse := &s.base.Nurses[n]
		for _, sh := range nurse.WorkingShifts() {
			load := 0
			for _, r := range s.nurseShiftRooms[n][sh] {
				for _, res := range s.roomDay[r][sh/spd] {
					load += s.workload(res, sh)
				}
			}
			if limit := nurse.MaxLoad(sh); load > limit {
				cost += load - limit
			}
		}
	}
	return cost
}

func openOperatingTheater(s *schedule) int {
	cost := 0
	for t := range s.theaterDay {
		for _, patients := range s.theaterDay[t] {
			if len(patients) > 0 {
				cost++
			}
		}
	}
	return cost
}

// surgeonTransfer counts, per surgeon and day, the theaters used beyond the first.
func surgeonTransfer(s *schedule) int {
	used := make([][]sets.Set[int], len(s.base.Surgeons))
	for i := range used {
		used[i] = make([]sets.Set[int], s.c.Days)
		for d := range used[i] {
			used[i][d] = sets.New[int]()
		}
	}
	for p, day := range s.admission {
		if day != hospital.Unscheduled {
			used[s.c.Patients[p].Surgeon][day].Insert(s.theater[p])
		}
	}
	cost := 0
	for i := range used {
		for _, theaters := range used[i] {
			if theaters.Len() > 1 {
				cost += theaters.Len() - 1
			}
		}
	}
	return cost
}

// patientDelay sums the days between release and admission.
func patientDelay(s *schedule) int {
	cost := 0
	for p, day := range s.admission {
		if day != hospital.Unscheduled && day > s.c.Patients[p].ReleaseDay {
			cost += day - s.c.Patients[p].ReleaseDay
		}
	}
	return cost
}

func electiveUnscheduled(s *schedule) int {
	cost := 0
	for p, day := range s.admission {
		if day == hospital.Unscheduled && !s.c.Patients[p].Mandatory {
			cost++
		}
	}
	return cost
}
