// Package chromosome implements a complete candidate schedule for the genetic
// search. Each chromosome owns a private hospital arena: no room, theater,
// surgeon, nurse or patient assignment is ever shared between two
// chromosomes, so operators can modify one without locks or copies on read.
package chromosome

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"golang.org/x/exp/rand"

	"github.com/ihtc/ihtp-ga/pkg/api/v1alpha1"
	"github.com/ihtc/ihtp-ga/pkg/hospital"
	"github.com/ihtc/ihtp-ga/pkg/oracle"
)

// Chromosome is one candidate schedule with its last evaluation.
type Chromosome struct {
	h   *hospital.Hospital
	rng *rand.Rand

	cost        *oracle.Result
	crossovered bool
	mutated     bool
}

// New returns an empty chromosome: every patient unscheduled and every
// nurse idle. rng is used by all randomized operations of the chromosome and
// of its clones.
func New(c *hospital.Catalog, rng *rand.Rand) *Chromosome {
	return &Chromosome{h: c.NewHospital(), rng: rng}
}

// Hospital exposes the arena of the chromosome.
func (c *Chromosome) Hospital() *hospital.Hospital {
	return c.h
}

// Clone returns an independent copy, evaluation and flags included.
func (c *Chromosome) Clone() *Chromosome {
	cp := &Chromosome{
		h:           c.h.Clone(),
		rng:         c.rng,
		crossovered: c.crossovered,
		mutated:     c.mutated,
	}
	if c.cost != nil {
		cost := *c.cost
		cp.cost = &cost
	}
	return cp
}

// RandomInitialize builds a schedule from scratch. Mandatory patients are
// placed first, tightest admission window first, then optional patients in
// random order; every nurse then picks random uncovered rooms and the repair
// pass covers the rest. It returns false when a mandatory patient cannot be
// placed or the repair fails, in which case the chromosome must be dropped.
func (c *Chromosome) RandomInitialize(assignProb float64) bool {
	h := c.h
	var mandatory, optional []int
	for i := range h.Patients {
		if h.Patients[i].Mandatory {
			mandatory = append(mandatory, i)
		} else {
			optional = append(optional, i)
		}
	}
	sort.SliceStable(mandatory, func(a, b int) bool {
		pa, pb := &h.Patients[mandatory[a]], &h.Patients[mandatory[b]]
		return pa.DueDay-pa.ReleaseDay < pb.DueDay-pb.ReleaseDay
	})
	c.rng.Shuffle(len(optional), func(i, j int) { optional[i], optional[j] = optional[j], optional[i] })

	for _, i := range append(mandatory, optional...) {
		p := &h.Patients[i]
		if s, ok := h.Catalog.SurgeonIndex(p.SurgeonID); ok {
			p.Surgeon = s
		}
		if !c.InitializePatient(i, assignProb) && p.Mandatory {
			return false
		}
	}

	for _, n := range c.rng.Perm(len(h.Nurses)) {
		h.Nurses[n].InitializeNurse(h, c.rng)
	}
	return c.FixUncoveredRooms()
}

// InitializePatient admits an unscheduled patient on a random day of its
// window where its surgeon has time and some room and theater fit. Optional
// patients are skipped, successfully, with probability 1-assignProb. It
// returns false when no day of the window fits.
func (c *Chromosome) InitializePatient(i int, assignProb float64) bool {
	h := c.h
	p := &h.Patients[i]
	if p.Scheduled() {
		return true
	}
	if !p.Mandatory && c.rng.Float64() > assignProb {
		return true
	}

	first, last := p.Window(h.Catalog.Days)
	if last < first {
		return false
	}
	days := make([]int, 0, last-first+1)
	for d := first; d <= last; d++ {
		days = append(days, d)
	}
	c.rng.Shuffle(len(days), func(i, j int) { days[i], days[j] = days[j], days[i] })

	for _, d := range days {
		if !h.Surgeons[p.Surgeon].CheckScheduleSurgery(d, p.SurgeryDuration) {
			continue
		}
		rooms := h.CompatibleRooms(p, d, -1)
		if len(rooms) == 0 {
			continue
		}
		theaters := h.CompatibleTheaters(p, d, -1)
		if len(theaters) == 0 {
			continue
		}
		h.Schedule(p, d, rooms[c.rng.Intn(len(rooms))], theaters[c.rng.Intn(len(theaters))])
		return true
	}
	return false
}

// FixUncoveredRooms gives every occupied room a nurse in each shift of the
// days it is occupied, drawing among the nurses working that shift. It
// returns false as soon as a shift has no working nurse at all.
func (c *Chromosome) FixUncoveredRooms() bool {
	h := c.h
	spd := h.Catalog.ShiftsPerDay()
	for _, r := range c.rng.Perm(len(h.Rooms)) {
		room := &h.Rooms[r]
		for d := 0; d < h.Catalog.Days; d++ {
			if !room.Occupied(d) {
				continue
			}
			for s := d * spd; s < (d+1)*spd; s++ {
				if room.Nurse(s) != hospital.NoNurse {
					continue
				}
				nurses := h.AvailableNurses(s)
				if len(nurses) == 0 {
					return false
				}
				h.AssignNurse(nurses[c.rng.Intn(len(nurses))], r, s)
			}
		}
	}
	return true
}

// ComputeCost scores the chromosome with the oracle. On error the previous
// evaluation is discarded and the cost stays undefined.
func (c *Chromosome) ComputeCost(ctx context.Context, f oracle.CostFunc) error {
	c.cost = nil
	res, err := f.Evaluate(ctx, c.Solution())
	if err != nil {
		return err
	}
	c.cost = &res
	return nil
}

// Cost returns the last evaluation, if any.
func (c *Chromosome) Cost() (oracle.Result, bool) {
	if c.cost == nil {
		return oracle.Result{}, false
	}
	return *c.cost, true
}

// SoftCost returns the evaluated soft cost, or math.MaxInt before evaluation
// so unevaluated chromosomes sort last.
func (c *Chromosome) SoftCost() int {
	if c.cost == nil {
		return math.MaxInt
	}
	return c.cost.SoftCost
}

// Feasible reports whether the last evaluation found no hard violation.
func (c *Chromosome) Feasible() bool {
	return c.cost != nil && c.cost.Feasible()
}

func (c *Chromosome) MarkCrossovered() { c.crossovered = true }

func (c *Chromosome) MarkMutated() { c.mutated = true }

func (c *Chromosome) Crossovered() bool { return c.crossovered }

func (c *Chromosome) Mutated() bool { return c.mutated }

// HasChanged reports whether an operator modified the chromosome since the
// last ResetFlags.
func (c *Chromosome) HasChanged() bool {
	return c.crossovered || c.mutated
}

func (c *Chromosome) ResetFlags() {
	c.crossovered, c.mutated = false, false
}

// Solution serializes the chromosome in the validator's input format.
func (c *Chromosome) Solution() *v1alpha1.Solution {
	h := c.h
	sol := &v1alpha1.Solution{
		Patients: make([]v1alpha1.PatientAssignment, 0, len(h.Patients)),
		Nurses:   make([]v1alpha1.NurseAssignment, 0, len(h.Nurses)),
	}
	for i := range h.Patients {
		p := &h.Patients[i]
		pa := v1alpha1.PatientAssignment{ID: p.ID, AdmissionDay: v1alpha1.NotAdmitted}
		if p.Scheduled() {
			pa.AdmissionDay = v1alpha1.AdmissionDay(p.AdmissionDay)
			pa.Room = h.Rooms[p.Room].ID
			pa.OperatingTheater = h.Theaters[p.Theater].ID
		}
		sol.Patients = append(sol.Patients, pa)
	}
	slices.SortFunc(sol.Patients, func(a, b v1alpha1.PatientAssignment) int { return strings.Compare(a.ID, b.ID) })

	for i := range h.Nurses {
		n := &h.Nurses[i]
		na := v1alpha1.NurseAssignment{ID: n.ID, Assignments: []v1alpha1.ShiftAssignment{}}
		for _, s := range n.WorkingShifts() {
			day, name := h.Catalog.ShiftName(s)
			rooms := make([]string, 0, len(n.Rooms(s)))
			for _, r := range n.Rooms(s) {
				rooms = append(rooms, h.Rooms[r].ID)
			}
			slices.Sort(rooms)
			na.Assignments = append(na.Assignments, v1alpha1.ShiftAssignment{Day: day, Shift: name, Rooms: rooms})
		}
		sol.Nurses = append(sol.Nurses, na)
	}
	slices.SortFunc(sol.Nurses, func(a, b v1alpha1.NurseAssignment) int { return strings.Compare(a.ID, b.ID) })
	return sol
}

// Fingerprint identifies the schedule content, independently of flags and
// evaluation.
func (c *Chromosome) Fingerprint() string {
	data, err := json.Marshal(c.Solution())
	if err != nil {
		panic(fmt.Sprintf("encoding solution: %v", err))
	}
	return fmt.Sprintf("%x", sha256.Sum256(data))[:16]
}
