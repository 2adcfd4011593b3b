package hospital

import (
	"errors"
	"fmt"
	"slices"
)

// Verify recomputes every derived quantity of the arena from the patient
// assignments and reports each mismatch with the incrementally maintained
// state.
func (h *Hospital) Verify() error {
	tmpl := h.Catalog.template
	var errs []error

	theaters := make([][]int, len(tmpl.Theaters))
	for t := range tmpl.Theaters {
		theaters[t] = slices.Clone(tmpl.Theaters[t].availability)
	}
	surgeons := make([][]int, len(tmpl.Surgeons))
	for s := range tmpl.Surgeons {
		surgeons[s] = slices.Clone(tmpl.Surgeons[s].available)
	}
	rooms := make([]Room, len(tmpl.Rooms))
	for r := range tmpl.Rooms {
		rooms[r] = tmpl.Rooms[r].clone()
	}

	for i := range h.Patients {
		p := &h.Patients[i]
		if !p.Scheduled() {
			if p.Room != -1 || p.Theater != -1 {
				errs = append(errs, fmt.Errorf("patient %s: unscheduled but holds room %d theater %d", p.ID, p.Room, p.Theater))
			}
			continue
		}
		if p.Room < 0 || p.Theater < 0 {
			errs = append(errs, fmt.Errorf("patient %s: admitted on day %d without room or theater", p.ID, p.AdmissionDay))
			continue
		}
		theaters[p.Theater][p.AdmissionDay] -= p.SurgeryDuration
		surgeons[p.Surgeon][p.AdmissionDay] -= p.SurgeryDuration
		rooms[p.Room].AddPatient(p)
	}

	for t := range h.Theaters {
		if !slices.Equal(theaters[t], h.Theaters[t].availability) {
			errs = append(errs, fmt.Errorf("theater %s: availability %v, expected %v", h.Theaters[t].ID, h.Theaters[t].availability, theaters[t]))
		}
	}
	for s := range h.Surgeons {
		if !slices.Equal(surgeons[s], h.Surgeons[s].available) {
			errs = append(errs, fmt.Errorf("surgeon %s: availability %v, expected %v", h.Surgeons[s].ID, h.Surgeons[s].available, surgeons[s]))
		}
	}
	for r := range h.Rooms {
		for d := range h.Rooms[r].residents {
			if !sameResidents(rooms[r].residents[d], h.Rooms[r].residents[d]) {
				errs = append(errs, fmt.Errorf("room %s day %d: residents %v, expected %v", h.Rooms[r].ID, d, h.Rooms[r].residents[d], rooms[r].residents[d]))
			}
		}
		for s, n := range h.Rooms[r].nurses {
			if n != NoNurse && !slices.Contains(h.Nurses[n].rooms[s], r) {
				errs = append(errs, fmt.Errorf("room %s shift %d: covered by nurse %s which does not list it", h.Rooms[r].ID, s, h.Nurses[n].ID))
			}
		}
	}
	for n := range h.Nurses {
		for s, list := range h.Nurses[n].rooms {
			for _, r := range list {
				if h.Rooms[r].nurses[s] != n {
					errs = append(errs, fmt.Errorf("nurse %s shift %d: lists room %s covered by %d", h.Nurses[n].ID, s, h.Rooms[r].ID, h.Rooms[r].nurses[s]))
				}
			}
		}
	}
	return errors.Join(errs...)
}

func sameResidents(a, b []Resident) bool {
	if len(a) != len(b) {
		return false
	}
	key := func(r Resident) int {
		if r.Occupant {
			return -r.Index - 1
		}
		return r.Index
	}
	ka := make([]int, len(a))
	kb := make([]int, len(b))
	for i := range a {
		ka[i], kb[i] = key(a[i]), key(b[i])
	}
	slices.Sort(ka)
	slices.Sort(kb)
	return slices.Equal(ka, kb)
}
