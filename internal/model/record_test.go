package model

import (
	"testing"
	"time"
)

func validRecord() *PatientRecord {
	return &PatientRecord{
		PatientID: "p1",
		Profile:   Profile{DisplayName: "Sara Moradi", Role: RolePatient},
		Appointments: []Appointment{
			{ID: "a1", Date: "2026-09-01", Time: "14:30", Reason: "checkup", Status: StatusPending},
			{ID: "a2", Date: "2026-09-02", Time: "10:00", Reason: "filling", Status: StatusConfirmed},
		},
		MedicalHistory: []HistoryEntry{
			{Timestamp: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC), AuthorRole: RoleDoctor, Note: "cavity on lower left molar"},
		},
		Version: 3,
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in     string
		want   Role
		wantOK bool
	}{
		{"patient", RolePatient, true},
		{"doctor", RoleDoctor, true},
		{" Doctor ", RoleDoctor, true},
		{"admin", Role("admin"), false},
		{"", Role(""), false},
	}

	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		if ok != tt.wantOK {
			t.Errorf("ParseRole(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
		}
		if ok && got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPatientRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PatientRecord)
		wantErr bool
	}{
		{"valid record", func(r *PatientRecord) {}, false},
		{"empty record is valid", func(r *PatientRecord) {
			r.Appointments = nil
			r.MedicalHistory = nil
		}, false},
		{"empty patient id", func(r *PatientRecord) { r.PatientID = "" }, true},
		{"negative version", func(r *PatientRecord) { r.Version = -1 }, true},
		{"duplicate appointment id", func(r *PatientRecord) { r.Appointments[1].ID = "a1" }, true},
		{"empty appointment id", func(r *PatientRecord) { r.Appointments[0].ID = "" }, true},
		{"unknown status", func(r *PatientRecord) { r.Appointments[0].Status = "archived" }, true},
		{"empty reason", func(r *PatientRecord) { r.Appointments[0].Reason = "" }, true},
		{"bad date", func(r *PatientRecord) { r.Appointments[0].Date = "01-09-2026" }, true},
		{"bad time", func(r *PatientRecord) { r.Appointments[0].Time = "2pm" }, true},
		{"empty history note", func(r *PatientRecord) { r.MedicalHistory[0].Note = "" }, true},
		{"history by patient", func(r *PatientRecord) { r.MedicalHistory[0].AuthorRole = RolePatient }, true},
		{"zero history timestamp", func(r *PatientRecord) { r.MedicalHistory[0].Timestamp = time.Time{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(r)
			err := r.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSuccessor(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PatientRecord)
		wantErr bool
	}{
		{"no-op commit", func(n *PatientRecord) {}, false},
		{"append appointment", func(n *PatientRecord) {
			n.Appointments = append(n.Appointments, Appointment{
				ID: "a3", Date: "2026-09-03", Time: "09:00", Reason: "cleaning", Status: StatusPending,
			})
		}, false},
		{"legal status change", func(n *PatientRecord) {
			n.Appointments[0].Status = StatusConfirmed
		}, false},
		{"append one history entry", func(n *PatientRecord) {
			n.MedicalHistory = append(n.MedicalHistory, HistoryEntry{
				Timestamp: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC), AuthorRole: RoleDoctor, Note: "follow-up scheduled",
			})
		}, false},
		{"write notes", func(n *PatientRecord) {
			n.Appointments[0].Notes = "bring previous x-rays"
		}, false},
		{"version not advanced", func(n *PatientRecord) { n.Version-- }, true},
		{"version skipped", func(n *PatientRecord) { n.Version++ }, true},
		{"patient id changed", func(n *PatientRecord) { n.PatientID = "p2" }, true},
		{"appointment removed", func(n *PatientRecord) {
			n.Appointments = n.Appointments[:1]
		}, true},
		{"appointment date rewritten", func(n *PatientRecord) {
			n.Appointments[0].Date = "2026-09-05"
		}, true},
		{"appointment reason rewritten", func(n *PatientRecord) {
			n.Appointments[0].Reason = "surgery"
		}, true},
		{"illegal status jump", func(n *PatientRecord) {
			n.Appointments[0].Status = StatusCompleted // pending -> completed
		}, true},
		{"status moved backwards", func(n *PatientRecord) {
			n.Appointments[1].Status = StatusPending // confirmed -> pending
		}, true},
		{"history entry modified", func(n *PatientRecord) {
			n.MedicalHistory[0].Note = "rewritten"
		}, true},
		{"history entry dropped", func(n *PatientRecord) {
			n.MedicalHistory = nil
		}, true},
		{"two history entries at once", func(n *PatientRecord) {
			e := HistoryEntry{Timestamp: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC), AuthorRole: RoleDoctor, Note: "x"}
			n.MedicalHistory = append(n.MedicalHistory, e, e)
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := validRecord()
			next := prev.Clone()
			next.Version = prev.Version + 1
			tt.mutate(next)
			err := ValidateSuccessor(prev, next)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSuccessor() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClone(t *testing.T) {
	orig := validRecord()
	cp := orig.Clone()

	cp.Appointments[0].Status = StatusCancelled
	cp.MedicalHistory[0].Note = "changed"
	cp.Version = 99

	if orig.Appointments[0].Status != StatusPending {
		t.Error("Clone() shares appointment backing array with original")
	}
	if orig.MedicalHistory[0].Note == "changed" {
		t.Error("Clone() shares history backing array with original")
	}
	if orig.Version != 3 {
		t.Error("Clone() shares version with original")
	}

	var nilRec *PatientRecord
	if nilRec.Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}
}
