package model

import (
	"fmt"
	"strings"
)

// Role tags an actor or profile as the patient or the clinician.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

// ParseRole converts a role string supplied by the auth gateway.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Profile holds a patient's display and contact fields. The record
// engines treat it as opaque data; it is stored and returned verbatim.
type Profile struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Address     string `json:"address,omitempty"`
	Role        Role   `json:"role"`
}

// PatientRecord is the aggregate: one patient's full record, the only
// unit ever read or written atomically. Version increases by exactly
// one per committed mutation and guards optimistic concurrency.
type PatientRecord struct {
	PatientID      string         `json:"patientId"`
	Profile        Profile        `json:"profile"`
	Appointments   []Appointment  `json:"appointments"`
	MedicalHistory []HistoryEntry `json:"medicalHistory"`
	Version        int64          `json:"version"`
}

// NewPatientRecord returns the empty aggregate created alongside a
// patient account: empty collections, version zero.
func NewPatientRecord(patientID string, profile Profile) *PatientRecord {
	return &PatientRecord{
		PatientID:      patientID,
		Profile:        profile,
		Appointments:   []Appointment{},
		MedicalHistory: []HistoryEntry{},
		Version:        0,
	}
}

// Clone returns a deep copy. Mutations are always applied to a clone so
// a failed commit leaves the loaded aggregate untouched.
func (r *PatientRecord) Clone() *PatientRecord {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Appointments = make([]Appointment, len(r.Appointments))
	copy(cp.Appointments, r.Appointments)
	cp.MedicalHistory = make([]HistoryEntry, len(r.MedicalHistory))
	copy(cp.MedicalHistory, r.MedicalHistory)
	return &cp
}

// AppointmentIndex returns the position of the appointment with the
// given ID, or -1.
func (r *PatientRecord) AppointmentIndex(id string) int {
	for i := range r.Appointments {
		if r.Appointments[i].ID == id {
			return i
		}
	}
	return -1
}

// Validate checks the invariants that must hold for every committed
// aggregate in isolation: unique appointment IDs, known statuses,
// well-formed dates and required fields.
func (r *PatientRecord) Validate() error {
	if r.PatientID == "" {
		return fmt.Errorf("patient id is empty")
	}
	if r.Version < 0 {
		return fmt.Errorf("version %d is negative", r.Version)
	}

	seen := make(map[string]bool, len(r.Appointments))
	for i, a := range r.Appointments {
		if a.ID == "" {
			return fmt.Errorf("appointment %d has empty id", i)
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate appointment id %q", a.ID)
		}
		seen[a.ID] = true

		if !a.Status.Valid() {
			return fmt.Errorf("appointment %q has unknown status %q", a.ID, a.Status)
		}
		if a.Reason == "" {
			return fmt.Errorf("appointment %q has empty reason", a.ID)
		}
		if _, err := ParseDate(a.Date); err != nil {
			return fmt.Errorf("appointment %q has invalid date %q", a.ID, a.Date)
		}
		if _, err := ParseTimeOfDay(a.Time); err != nil {
			return fmt.Errorf("appointment %q has invalid time %q", a.ID, a.Time)
		}
	}

	for i, e := range r.MedicalHistory {
		if e.Note == "" {
			return fmt.Errorf("history entry %d has empty note", i)
		}
		if e.AuthorRole != RoleDoctor {
			return fmt.Errorf("history entry %d has author role %q", i, e.AuthorRole)
		}
		if e.Timestamp.IsZero() {
			return fmt.Errorf("history entry %d has zero timestamp", i)
		}
	}

	return nil
}

// ValidateSuccessor checks the cross-version invariants between a
// committed aggregate and its candidate successor:
//   - same patient, version incremented by exactly one
//   - no appointment removed, no identity field rewritten, every
//     status change legal per the state machine
//   - medical history is a prefix-extension of at most one entry
func ValidateSuccessor(prev, next *PatientRecord) error {
	if err := next.Validate(); err != nil {
		return err
	}
	if next.PatientID != prev.PatientID {
		return fmt.Errorf("patient id changed from %q to %q", prev.PatientID, next.PatientID)
	}
	if next.Version != prev.Version+1 {
		return fmt.Errorf("version must advance from %d to %d, got %d", prev.Version, prev.Version+1, next.Version)
	}

	for _, old := range prev.Appointments {
		idx := next.AppointmentIndex(old.ID)
		if idx < 0 {
			return fmt.Errorf("appointment %q was removed", old.ID)
		}
		cur := next.Appointments[idx]
		if cur.Date != old.Date || cur.Time != old.Time || cur.Reason != old.Reason {
			return fmt.Errorf("appointment %q identity fields changed", old.ID)
		}
		if cur.Status != old.Status && !old.Status.CanTransitionTo(cur.Status) {
			return fmt.Errorf("appointment %q status %q cannot move to %q", old.ID, old.Status, cur.Status)
		}
	}

	grown := len(next.MedicalHistory) - len(prev.MedicalHistory)
	if grown < 0 || grown > 1 {
		return fmt.Errorf("medical history length moved from %d to %d", len(prev.MedicalHistory), len(next.MedicalHistory))
	}
	for i, old := range prev.MedicalHistory {
		if !next.MedicalHistory[i].Equal(old) {
			return fmt.Errorf("medical history entry %d was modified", i)
		}
	}

	return nil
}
