package hospital

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/exp/rand"

	"github.com/ihtc/ihtp-ga/pkg/api/v1alpha1"
	"github.com/ihtc/ihtp-ga/pkg/benchmarks"
)

// ward returns two rooms, an occupant of gender B staying two days in r00 and
// three patients of which p2 cannot stay in r01.
func ward() *v1alpha1.Instance {
	in := benchmarks.Tiny()
	in.Days = 4
	in.Rooms = []v1alpha1.Room{{ID: "r00", Capacity: 2}, {ID: "r01", Capacity: 1}}
	in.Surgeons[0].MaxSurgeryTime = []int{10, 10, 10, 10}
	in.OperatingTheaters = []v1alpha1.OperatingTheater{
		{ID: "t00", Availability: []int{10, 10, 10, 10}},
		{ID: "t01", Availability: []int{3, 3, 3, 3}},
	}
	in.Occupants = []v1alpha1.Occupant{{
		ID: "a00", Gender: v1alpha1.GenderB, AgeGroup: "elderly", LengthOfStay: 2,
		WorkloadProduced: make([]int, 6), SkillLevelRequired: make([]int, 6), RoomID: "r00",
	}}
	p := in.Patients[0]
	p.LengthOfStay = 2
	p.WorkloadProduced = make([]int, 6)
	p.SkillLevelRequired = make([]int, 6)
	p0, p1, p2 := p, p, p
	p0.ID = "p0"
	p1.ID, p1.Gender = "p1", v1alpha1.GenderB
	p2.ID, p2.Mandatory, p2.SurgeryDueDay, p2.IncompatibleRoomIDs = "p2", false, nil, []string{"r01"}
	in.Patients = []v1alpha1.Patient{p0, p1, p2}
	in.Nurses[0].WorkingShifts = nil
	for s := 0; s < 12; s++ {
		in.Nurses[0].WorkingShifts = append(in.Nurses[0].WorkingShifts, v1alpha1.WorkingShift{Day: s / 3, Shift: in.ShiftTypes[s%3], MaxLoad: 5})
	}
	return in
}

func newWard(t *testing.T) *Hospital {
	t.Helper()
	c, err := NewCatalog(ward())
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c.NewHospital()
}

func TestNewCatalogRejectsDanglingReferences(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *v1alpha1.Instance)
		wantErr string
	}{
		{
			name:    "unknown surgeon",
			mutate:  func(in *v1alpha1.Instance) { in.Patients[0].SurgeonID = "s99" },
			wantErr: "unknown surgeon",
		},
		{
			name:    "unknown occupant room",
			mutate:  func(in *v1alpha1.Instance) { in.Occupants[0].RoomID = "r99" },
			wantErr: "unknown room",
		},
		{
			name:    "duplicate room",
			mutate:  func(in *v1alpha1.Instance) { in.Rooms[1].ID = "r00" },
			wantErr: "duplicate room",
		},
		{
			name:    "unknown shift",
			mutate:  func(in *v1alpha1.Instance) { in.Nurses[0].WorkingShifts[0].Shift = "noon" },
			wantErr: "unknown shift type",
		},
		{
			name:    "short workload",
			mutate:  func(in *v1alpha1.Instance) { in.Patients[1].WorkloadProduced = []int{1} },
			wantErr: "per-shift vectors",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := ward()
			tc.mutate(in)
			_, err := NewCatalog(in)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCatalogResolvesPatients(t *testing.T) {
	c, err := NewCatalog(ward())
	if err != nil {
		t.Fatal(err)
	}
	p2 := c.Patients[2]
	if p2.DueDay != 3 {
		t.Errorf("optional patient due day = %d, want last day 3", p2.DueDay)
	}
	if !p2.IncompatibleRooms.Has(1) || p2.IncompatibleRooms.Len() != 1 {
		t.Errorf("incompatible rooms = %v, want {1}", p2.IncompatibleRooms.UnsortedList())
	}
	if first, last := c.Patients[0].Window(c.Days); first != 0 || last != 2 {
		t.Errorf("mandatory window = [%d, %d], want [0, 2]", first, last)
	}
	if s, ok := c.ShiftOf(2, "night"); !ok || s != 8 {
		t.Errorf("ShiftOf(2, night) = %d, %v", s, ok)
	}
	if d, name := c.ShiftName(7); d != 2 || name != "late" {
		t.Errorf("ShiftName(7) = %d, %s", d, name)
	}
}

func TestRoomIsCompatible(t *testing.T) {
	h := newWard(t)
	p0, p1 := &h.Patients[0], &h.Patients[1]

	tests := []struct {
		name    string
		patient *Patient
		room    int
		day     int
		want    bool
	}{
		{name: "gender clash with occupant", patient: p0, room: 0, day: 0, want: false},
		{name: "stay overlaps occupant last day", patient: p0, room: 0, day: 1, want: false},
		{name: "after occupant leaves", patient: p0, room: 0, day: 2, want: true},
		{name: "same gender as occupant", patient: p1, room: 0, day: 0, want: true},
		{name: "empty room", patient: p0, room: 1, day: 0, want: true},
		{name: "stay clipped at horizon", patient: p0, room: 1, day: 3, want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := h.Rooms[tc.room].IsCompatible(tc.patient.PatientSpec, tc.day); got != tc.want {
				t.Errorf("IsCompatible = %v, want %v", got, tc.want)
			}
		})
	}

	// a second patient fills the single bed of r01
	h.Schedule(p0, 0, 1, 0)
	if h.Rooms[1].IsCompatible(p1.PatientSpec, 1) {
		t.Errorf("full room reported compatible")
	}
	if !h.Rooms[1].IsCompatible(p1.PatientSpec, 2) {
		t.Errorf("room free from day 2 reported incompatible")
	}
}

func TestCompatibleRoomsHonoursIncompatibleIDs(t *testing.T) {
	h := newWard(t)
	p2 := &h.Patients[2]
	if diff := cmp.Diff([]int{0}, h.CompatibleRooms(p2, 2, -1)); diff != "" {
		t.Errorf("compatible rooms mismatch (-want +got):\n%s", diff)
	}
	if got := h.CompatibleRooms(p2, 2, 0); len(got) != 0 {
		t.Errorf("excluding the only compatible room left %v", got)
	}
	if diff := cmp.Diff([]int{0}, h.CompatibleTheaters(p2, 0, -1)); diff != "" {
		t.Errorf("theater t01 has 3 units left for a surgery of 4 (-want +got):\n%s", diff)
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	h := newWard(t)
	before := h.Clone()
	p := &h.Patients[1]

	h.Schedule(p, 1, 0, 0)
	if err := h.Verify(); err != nil {
		t.Fatalf("inconsistent after schedule: %v", err)
	}
	if got := h.Theaters[0].Remaining(1); got != 6 {
		t.Errorf("theater remaining = %d, want 6", got)
	}
	if got := h.Surgeons[0].Remaining(1); got != 6 {
		t.Errorf("surgeon remaining = %d, want 6", got)
	}
	if got := len(h.Rooms[0].Residents(1)); got != 2 {
		t.Errorf("residents on day 1 = %d, want occupant and patient", got)
	}

	h.Unschedule(p)
	if err := h.Verify(); err != nil {
		t.Fatalf("inconsistent after unschedule: %v", err)
	}
	if diff := cmp.Diff(before, h, cmp.AllowUnexported(Room{}, OperatingTheater{}, Surgeon{}, Nurse{}, Catalog{}), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("unschedule did not restore the arena (-want +got):\n%s", diff)
	}
}

func TestOverbooked(t *testing.T) {
	tests := []struct {
		name    string
		theater int
		surgeon []int
		want    bool
	}{
		{name: "fits", theater: 0},
		{name: "theater too short", theater: 1, want: true},
		{name: "surgeon too short", theater: 0, surgeon: []int{10, 2, 10, 10}, want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := ward()
			if tc.surgeon != nil {
				in.Surgeons[0].MaxSurgeryTime = tc.surgeon
			}
			c, err := NewCatalog(in)
			if err != nil {
				t.Fatal(err)
			}
			h := c.NewHospital()
			p := &h.Patients[0]
			h.Schedule(p, 1, 0, tc.theater)
			if got := h.Overbooked(); got != tc.want {
				t.Errorf("Overbooked() = %v, want %v", got, tc.want)
			}
			h.Unschedule(p)
			if h.Overbooked() {
				t.Errorf("still overbooked after unschedule")
			}
		})
	}
}

func TestUnscheduledPatientPanics(t *testing.T) {
	h := newWard(t)
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic")
		}
	}()
	h.Theaters[0].Unschedule(&h.Patients[0])
}

func TestCloneIsIndependent(t *testing.T) {
	h := newWard(t)
	cp := h.Clone()

	cp.Schedule(&cp.Patients[1], 0, 0, 0)
	cp.AssignNurse(0, 0, 0)

	if h.Patients[1].Scheduled() {
		t.Errorf("original patient scheduled through the clone")
	}
	if got := len(h.Rooms[0].Residents(0)); got != 1 {
		t.Errorf("original room has %d residents, want the occupant only", got)
	}
	if h.Rooms[0].Nurse(0) != NoNurse || len(h.Nurses[0].Rooms(0)) != 0 {
		t.Errorf("nurse assignment leaked into the original")
	}
	if h.Theaters[0].Remaining(0) != 10 || h.Surgeons[0].Remaining(0) != 10 {
		t.Errorf("budgets leaked into the original")
	}
	if h.Patients[1].PatientSpec != cp.Patients[1].PatientSpec {
		t.Errorf("patient specifications should be shared")
	}
}

func TestNurseRooms(t *testing.T) {
	h := newWard(t)
	n := &h.Nurses[0]

	if diff := cmp.Diff([]int{0}, n.FindCompatibleRooms(h, 0)); diff != "" {
		t.Errorf("only the occupied room needs a nurse (-want +got):\n%s", diff)
	}

	h.AssignNurse(0, 0, 0)
	if got := n.FindCompatibleRooms(h, 0); len(got) != 0 {
		t.Errorf("covered room still offered: %v", got)
	}
	h.UnassignNurse(0, 0, 0)
	if h.Rooms[0].Nurse(0) != NoNurse || len(n.Rooms(0)) != 0 {
		t.Errorf("unassign left a link behind")
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		n.InitializeNurse(h, rng)
		if err := h.Verify(); err != nil {
			t.Fatalf("inconsistent after InitializeNurse: %v", err)
		}
	}
	for _, s := range n.WorkingShifts() {
		for _, r := range n.Rooms(s) {
			if !h.Rooms[r].Occupied(s / 3) {
				t.Errorf("nurse assigned to empty room %d in shift %d", r, s)
			}
		}
	}
}

func TestNurseAvailability(t *testing.T) {
	in := ward()
	in.Nurses = append(in.Nurses, v1alpha1.Nurse{
		ID: "n001", SkillLevel: 2,
		WorkingShifts: []v1alpha1.WorkingShift{{Day: 0, Shift: "late", MaxLoad: 0}},
	})
	c, err := NewCatalog(in)
	if err != nil {
		t.Fatal(err)
	}
	h := c.NewHospital()
	if diff := cmp.Diff([]int{0, 1}, h.AvailableNurses(1)); diff != "" {
		t.Errorf("a zero max load still means working (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0}, h.AvailableNurses(0)); diff != "" {
		t.Errorf("available nurses mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1}, h.Nurses[1].WorkingShifts()); diff != "" {
		t.Errorf("working shifts mismatch (-want +got):\n%s", diff)
	}
}

func TestSample(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	items := []int{4, 5, 6, 7}
	got := Sample(rng, items, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	seen := map[int]bool{}
	for _, v := range got {
		if v < 4 || v > 7 || seen[v] {
			t.Errorf("bad sample %v", got)
		}
		seen[v] = true
	}
	if diff := cmp.Diff([]int{4, 5, 6, 7}, items); diff != "" {
		t.Errorf("Sample modified its input")
	}
}
