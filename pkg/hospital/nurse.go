package hospital

import (
	"slices"

	"golang.org/x/exp/rand"
)

// Nurse holds the roster of a nurse and the rooms it covers per shift.
type Nurse struct {
	Index      int
	ID         string
	SkillLevel int

	maxLoad []int   // per shift, NotWorking outside the roster
	rooms   [][]int // per shift
}

func (n *Nurse) clone() Nurse {
	cp := *n
	cp.rooms = make([][]int, len(n.rooms))
	for s, list := range n.rooms {
		cp.rooms[s] = slices.Clone(list)
	}
	return cp
}

// Available reports whether the nurse works shift.
func (n *Nurse) Available(shift int) bool {
	return n.maxLoad[shift] >= 0
}

func (n *Nurse) MaxLoad(shift int) int {
	return n.maxLoad[shift]
}

// WorkingShifts returns the shifts of the roster in increasing order.
func (n *Nurse) WorkingShifts() []int {
	var shifts []int
	for s := range n.maxLoad {
		if n.Available(s) {
			shifts = append(shifts, s)
		}
	}
	return shifts
}

// Rooms returns the rooms covered during shift. The slice must not be
// modified.
func (n *Nurse) Rooms(shift int) []int {
	return n.rooms[shift]
}

// FindCompatibleRooms returns the occupied rooms nobody covers during shift.
func (n *Nurse) FindCompatibleRooms(h *Hospital, shift int) []int {
	day := shift / h.Catalog.ShiftsPerDay()
	var rooms []int
	for i := range h.Rooms {
		r := &h.Rooms[i]
		if r.Occupied(day) && r.Nurse(shift) == NoNurse {
			rooms = append(rooms, i)
		}
	}
	return rooms
}

// InitializeNurse assigns the nurse to a random number of the uncovered rooms
// of each of its working shifts.
func (n *Nurse) InitializeNurse(h *Hospital, rng *rand.Rand) {
	for _, s := range n.WorkingShifts() {
		candidates := n.FindCompatibleRooms(h, s)
		if len(candidates) == 0 {
			continue
		}
		k := rng.Intn(len(candidates) + 1)
		for _, r := range Sample(rng, candidates, k) {
			h.AssignNurse(n.Index, r, s)
		}
	}
}

// Sample returns k distinct elements of items picked uniformly at random.
func Sample(rng *rand.Rand, items []int, k int) []int {
	picked := slices.Clone(items)
	rng.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	return picked[:k]
}
