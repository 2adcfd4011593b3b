package algorithms

import (
	"github.com/ihtc/ihtp-ga/pkg/chromosome"
	"github.com/ihtc/ihtp-ga/pkg/hospital"
)

// crossover clones both parents and exchanges the placements of up to
// MaxCrossoverPatients patients drawn from the first child. A drawn patient
// that is unscheduled in either child is skipped, not replaced.
func (g *GeneticAlgorithm) crossover(p1, p2 *chromosome.Chromosome) (*chromosome.Chromosome, *chromosome.Chromosome) {
	c1, c2 := p1.Clone(), p2.Clone()
	patients := c1.Hospital().Patients
	if len(patients) == 0 {
		return c1, c2
	}
	k := min(1+g.rng.Intn(g.cfg.MaxCrossoverPatients), len(patients))

	swapped := false
	for _, i := range g.rng.Perm(len(patients))[:k] {
		if chromosome.Exchange(c1, c2, patients[i].ID) {
			swapped = true
		}
	}
	if swapped {
		c1.MarkCrossovered()
		c2.MarkCrossovered()
	}
	return c1, c2
}

// mutate applies patient and nurse mutation to a child in place.
func (g *GeneticAlgorithm) mutate(c *chromosome.Chromosome) {
	p := g.adaptive.current
	h := c.Hospital()

	for _, i := range g.rng.Perm(len(h.Patients)) {
		patient := &h.Patients[i]
		switch {
		case patient.Mandatory:
			if g.rng.Float64() < p.Mutation && g.mutatePatient(c, i) {
				c.MarkMutated()
			}
		case !patient.Scheduled():
			if c.InitializePatient(i, p.ScheduleNonMandatory) && patient.Scheduled() {
				c.MarkMutated()
			}
		case g.rng.Float64() < p.Mutation:
			if g.mutatePatient(c, i) {
				c.MarkMutated()
			}
		case g.rng.Float64() < p.UnscheduleNonMandatory:
			if c.UnschedulePatient(i) {
				c.MarkMutated()
			}
		}
	}

	for _, n := range g.rng.Perm(len(h.Nurses)) {
		if g.rng.Float64() < p.Mutation && g.mutateNurse(c, n) {
			c.MarkMutated()
		}
	}
}

// mutatePatient applies one of the three placement operators, picked
// uniformly.
func (g *GeneticAlgorithm) mutatePatient(c *chromosome.Chromosome, i int) bool {
	switch g.rng.Intn(3) {
	case 0:
		return c.ReassignRoom(i)
	case 1:
		return c.ReassignTheater(i)
	default:
		return c.ReassignAdmissionDay(i)
	}
}

// mutateNurse revisits a random non-empty subset of the nurse's working
// shifts, adding uncovered rooms or releasing covered ones with equal odds.
func (g *GeneticAlgorithm) mutateNurse(c *chromosome.Chromosome, n int) bool {
	shifts := c.Hospital().Nurses[n].WorkingShifts()
	if len(shifts) == 0 {
		return false
	}
	changed := false
	for _, s := range hospital.Sample(g.rng, shifts, 1+g.rng.Intn(len(shifts))) {
		var k int
		if g.rng.Float64() > 0.5 {
			k = c.AddNurseRooms(n, s)
		} else {
			k = c.RemoveNurseRooms(n, s)
		}
		if k > 0 {
			changed = true
		}
	}
	return changed
}
