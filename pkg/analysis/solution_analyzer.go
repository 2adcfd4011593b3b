// Package analysis summarizes a schedule for humans: resource usage per room,
// theater and nurse next to the cost breakdown of the builtin evaluator.
package analysis

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/ihtc/ihtp-ga/pkg/api/v1alpha1"
	"github.com/ihtc/ihtp-ga/pkg/hospital"
	"github.com/ihtc/ihtp-ga/pkg/oracle"
	"github.com/ihtc/ihtp-ga/pkg/oracle/builtin"
)

// Admissions counts patients by outcome.
type Admissions struct {
	Admitted             int
	MandatoryUnscheduled int
	OptionalUnscheduled  int

	// TotalDelay sums admission day minus release day over admitted patients.
	TotalDelay int
}

// RoomUsage is the bed usage of a room over the horizon.
type RoomUsage struct {
	ID           string
	Capacity     int
	PeakOccupied int

	// Utilization is occupied bed-days over available bed-days.
	Utilization float64
}

// TheaterUsage is the surgery time booked in a theater over the horizon.
type TheaterUsage struct {
	ID        string
	Booked    int
	Available int
	OpenDays  int
}

// NurseUsage is the room coverage of a nurse.
type NurseUsage struct {
	ID            string
	ShiftsWorked  int
	ShiftsAvail   int
	RoomsCovered  int
	MaxRoomsShift int
}

// CostLine is one soft component of the score.
type CostLine struct {
	Name     string
	Count    int
	Weight   int
	Weighted int
}

// SolutionResult is the full analysis of a schedule.
type SolutionResult struct {
	Result     oracle.Result
	Admissions Admissions
	Rooms      []RoomUsage
	Theaters   []TheaterUsage
	Nurses     []NurseUsage

	// Violations holds the non-zero hard components.
	Violations map[string]int

	// Costs is ordered by weighted contribution, largest first.
	Costs []CostLine
}

// Analyze scores sol against the instance and summarizes it.
func Analyze(ctx context.Context, in *v1alpha1.Instance, sol *v1alpha1.Solution) (*SolutionResult, error) {
	c, err := hospital.NewCatalog(in)
	if err != nil {
		return nil, fmt.Errorf("loading instance: %w", err)
	}
	e := builtin.New(ctx, c)
	report, err := e.Report(sol)
	if err != nil {
		return nil, fmt.Errorf("scoring solution: %w", err)
	}

	r := &SolutionResult{Result: report.Result, Violations: map[string]int{}}
	for name, n := range report.Violations {
		if n > 0 {
			r.Violations[name] = n
		}
	}
	weights := e.Weights()
	for name, n := range report.Costs {
		r.Costs = append(r.Costs, CostLine{Name: name, Count: n, Weight: weights[name], Weighted: n * weights[name]})
	}
	slices.SortFunc(r.Costs, func(a, b CostLine) int {
		if d := cmp.Compare(b.Weighted, a.Weighted); d != 0 {
			return d
		}
		return cmp.Compare(a.Name, b.Name)
	})

	r.analyzeStays(in, sol)
	r.analyzeNurses(in, sol)
	return r, nil
}

func (r *SolutionResult) analyzeStays(in *v1alpha1.Instance, sol *v1alpha1.Solution) {
	occupied := make(map[string][]int, len(in.Rooms))
	for _, room := range in.Rooms {
		occupied[room.ID] = make([]int, in.Days)
	}
	stay := func(room string, first, length int) {
		days, ok := occupied[room]
		if !ok {
			return
		}
		for d := max(first, 0); d < min(in.Days, first+length); d++ {
			days[d]++
		}
	}
	for _, o := range in.Occupants {
		stay(o.RoomID, 0, o.LengthOfStay)
	}

	booked := map[string]int{}
	openDays := map[string]map[int]bool{}
	patients := make(map[string]*v1alpha1.Patient, len(in.Patients))
	for i := range in.Patients {
		patients[in.Patients[i].ID] = &in.Patients[i]
	}
	scheduled := map[string]bool{}
	for _, pa := range sol.Patients {
		p, ok := patients[pa.ID]
		if !ok || !pa.AdmissionDay.Admitted() {
			continue
		}
		day := int(pa.AdmissionDay)
		scheduled[pa.ID] = true
		r.Admissions.Admitted++
		r.Admissions.TotalDelay += day - p.SurgeryReleaseDay
		stay(pa.Room, day, p.LengthOfStay)
		booked[pa.OperatingTheater] += p.SurgeryDuration
		if openDays[pa.OperatingTheater] == nil {
			openDays[pa.OperatingTheater] = map[int]bool{}
		}
		openDays[pa.OperatingTheater][day] = true
	}
	for _, p := range in.Patients {
		switch {
		case scheduled[p.ID]:
		case p.Mandatory:
			r.Admissions.MandatoryUnscheduled++
		default:
			r.Admissions.OptionalUnscheduled++
		}
	}

	for _, room := range in.Rooms {
		u := RoomUsage{ID: room.ID, Capacity: room.Capacity}
		beds := 0
		for _, n := range occupied[room.ID] {
			u.PeakOccupied = max(u.PeakOccupied, n)
			beds += n
		}
		if capacity := room.Capacity * in.Days; capacity > 0 {
			u.Utilization = float64(beds) / float64(capacity)
		}
		r.Rooms = append(r.Rooms, u)
	}
	for _, t := range in.OperatingTheaters {
		u := TheaterUsage{ID: t.ID, Booked: booked[t.ID], OpenDays: len(openDays[t.ID])}
		for _, minutes := range t.Availability {
			u.Available += minutes
		}
		r.Theaters = append(r.Theaters, u)
	}
}

func (r *SolutionResult) analyzeNurses(in *v1alpha1.Instance, sol *v1alpha1.Solution) {
	assigned := make(map[string]v1alpha1.NurseAssignment, len(sol.Nurses))
	for _, na := range sol.Nurses {
		assigned[na.ID] = na
	}
	for _, n := range in.Nurses {
		u := NurseUsage{ID: n.ID, ShiftsAvail: len(n.WorkingShifts)}
		for _, a := range assigned[n.ID].Assignments {
			if len(a.Rooms) == 0 {
				continue
			}
			u.ShiftsWorked++
			u.RoomsCovered += len(a.Rooms)
			u.MaxRoomsShift = max(u.MaxRoomsShift, len(a.Rooms))
		}
		r.Nurses = append(r.Nurses, u)
	}
}

// Fprint writes a human readable report of the analysis.
func Fprint(w io.Writer, name string, r *SolutionResult) {
	fmt.Fprintf(w, "\n=== %s ===\n", name)
	fmt.Fprintf(w, "Hard violations: %d\n", r.Result.HardViolations)
	fmt.Fprintf(w, "Soft cost: %d\n", r.Result.SoftCost)
	if len(r.Violations) > 0 {
		names := make([]string, 0, len(r.Violations))
		for n := range r.Violations {
			names = append(names, n)
		}
		slices.Sort(names)
		fmt.Fprintln(w, "\nVIOLATIONS:")
		for _, n := range names {
			fmt.Fprintf(w, "  %s: %d\n", n, r.Violations[n])
		}
	}

	fmt.Fprintln(w, "\nADMISSIONS:")
	fmt.Fprintf(w, "  Admitted: %d\n", r.Admissions.Admitted)
	fmt.Fprintf(w, "  Mandatory unscheduled: %d\n", r.Admissions.MandatoryUnscheduled)
	fmt.Fprintf(w, "  Optional unscheduled: %d\n", r.Admissions.OptionalUnscheduled)
	fmt.Fprintf(w, "  Total delay: %d days\n", r.Admissions.TotalDelay)

	fmt.Fprintln(w, "\nCOST BREAKDOWN:")
	for _, c := range r.Costs {
		fmt.Fprintf(w, "  %s: %d (%d × %d)\n", c.Name, c.Weighted, c.Count, c.Weight)
	}

	fmt.Fprintln(w, "\nROOMS:")
	for _, u := range r.Rooms {
		fmt.Fprintf(w, "  %s: peak %d/%d, utilization %.1f%%\n", u.ID, u.PeakOccupied, u.Capacity, 100*u.Utilization)
	}
	fmt.Fprintln(w, "\nOPERATING THEATERS:")
	for _, u := range r.Theaters {
		fmt.Fprintf(w, "  %s: %d/%d minutes over %d open days\n", u.ID, u.Booked, u.Available, u.OpenDays)
	}
	fmt.Fprintln(w, "\nNURSES:")
	for _, u := range r.Nurses {
		fmt.Fprintf(w, "  %s: %d/%d shifts, %d room-shifts, at most %d rooms per shift\n",
			u.ID, u.ShiftsWorked, u.ShiftsAvail, u.RoomsCovered, u.MaxRoomsShift)
	}
}
