package record

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dentelia/dentelia_backend/internal/model"
	"github.com/dentelia/dentelia_backend/internal/store"
)

var (
	patientActor = Actor{ID: "p1", Role: model.RolePatient}
	doctorActor  = Actor{ID: "d1", Role: model.RoleDoctor}

	testClock = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T, cfg Config) *recordService {
	t.Helper()

	svc := New(store.NewMemory(), cfg).(*recordService)

	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("appt-%d", n)
	}
	svc.now = func() time.Time { return testClock }

	return svc
}

func register(t *testing.T, svc Service, patientID string) *model.PatientRecord {
	t.Helper()

	rec, err := svc.Register(context.Background(), RegisterRequest{
		PatientID: patientID,
		Profile:   model.Profile{DisplayName: "Sara Moradi", Role: model.RolePatient},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return rec
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})

	rec := register(t, svc, "p1")
	if rec.Version != 0 {
		t.Errorf("new record version = %d, want 0", rec.Version)
	}
	if len(rec.Appointments) != 0 || len(rec.MedicalHistory) != 0 {
		t.Error("new record should have empty collections")
	}
	if rec.Profile.Role != model.RolePatient {
		t.Errorf("new record role = %q, want patient", rec.Profile.Role)
	}

	_, err := svc.Register(ctx, RegisterRequest{
		PatientID: "p1",
		Profile:   model.Profile{DisplayName: "Sara Moradi"},
	})
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("Register(duplicate) error = %v, want ErrAlreadyRegistered", err)
	}

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing patient id", RegisterRequest{Profile: model.Profile{DisplayName: "x"}}},
		{"missing display name", RegisterRequest{PatientID: "p9"}},
		{"unknown role", RegisterRequest{PatientID: "p9", Profile: model.Profile{DisplayName: "x", Role: "admin"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tt.req); !errors.Is(err, ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreateAppointment(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{SlotGuard: true})
	register(t, svc, "p1")

	rec, err := svc.CreateAppointment(ctx, patientActor, CreateAppointmentRequest{
		PatientID: "p1", Date: "2026-09-01", Time: "14:30", Reason: "checkup",
	})
	if err != nil {
		t.Fatalf("CreateAppointment() error = %v", err)
	}
	if rec.Version != 1 {
		t.Errorf("version after booking = %d, want 1", rec.Version)
	}
	if len(rec.Appointments) != 1 {
		t.Fatalf("appointments = %d, want 1", len(rec.Appointments))
	}
	appt := rec.Appointments[0]
	if appt.Status != model.StatusPending {
		t.Errorf("new appointment status = %q, want pending", appt.Status)
	}
	if appt.ID == "" {
		t.Error("new appointment has no id")
	}

	// Same slot while the first booking is still active.
	_, err = svc.CreateAppointment(ctx, patientActor, CreateAppointmentRequest{
		PatientID: "p1", Date: "2026-09-01", Time: "14:30", Reason: "second opinion",
	})
	if !errors.Is(err, ErrSlotTaken) {
		t.Errorf("CreateAppointment(same slot) error = %v, want ErrSlotTaken", err)
	}

	// A different slot is fine.
	rec, err = svc.CreateAppointment(ctx, patientActor, CreateAppointmentRequest{
		PatientID: "p1", Date: "2026-09-01", Time: "15:00", Reason: "second opinion",
	})
	if err != nil {
		t.Fatalf("CreateAppointment(other slot) error = %v", err)
	}
	if rec.Version != 2 {
		t.Errorf("version after second booking = %d, want 2", rec.Version)
	}

	tests := []struct {
		name    string
		req     CreateAppointmentRequest
		wantErr error
	}{
		{"missing date", CreateAppointmentRequest{PatientID: "p1", Time: "14:30", Reason: "x"}, ErrValidation},
		{"missing time", CreateAppointmentRequest{PatientID: "p1", Date: "2026-09-01", Reason: "x"}, ErrValidation},
		{"missing reason", CreateAppointmentRequest{PatientID: "p1", Date: "2026-09-01", Time: "14:30", Reason: "  "}, ErrValidation},
		{"bad date", CreateAppointmentRequest{PatientID: "p1", Date: "01-09-2026", Time: "14:30", Reason: "x"}, ErrValidation},
		{"bad time", CreateAppointmentRequest{PatientID: "p1", Date: "2026-09-01", Time: "2pm", Reason: "x"}, ErrValidation},
		{"unknown patient", CreateAppointmentRequest{PatientID: "ghost", Date: "2026-09-01", Time: "09:00", Reason: "x"}, ErrRecordNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateAppointment(ctx, patientActor, tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateAppointment() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateAppointmentWithoutSlotGuard(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{SlotGuard: false})
	register(t, svc, "p1")

	req := CreateAppointmentRequest{PatientID: "p1", Date: "2026-09-01", Time: "14:30", Reason: "checkup"}
	if _, err := svc.CreateAppointment(ctx, patientActor, req); err != nil {
		t.Fatalf("CreateAppointment() error = %v", err)
	}
	rec, err := svc.CreateAppointment(ctx, patientActor, req)
	if err != nil {
		t.Fatalf("CreateAppointment(duplicate slot, guard off) error = %v", err)
	}
	if len(rec.Appointments) != 2 {
		t.Errorf("appointments = %d, want 2", len(rec.Appointments))
	}
}

func TestChangeStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})
	register(t, svc, "p1")

	rec, err := svc.CreateAppointment(ctx, patientActor, CreateAppointmentRequest{
		PatientID: "p1", Date: "2026-09-01", Time: "14:30", Reason: "checkup",
	})
	if err != nil {
		t.Fatalf("CreateAppointment() error = %v", err)
	}
	apptID := rec.Appointments[0].ID

	// A patient may not confirm their own appointment.
	_, err = svc.ChangeStatus(ctx, patientActor, ChangeStatusRequest{
		PatientID: "p1", AppointmentID: apptID, NewStatus: model.StatusConfirmed,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("ChangeStatus(patient confirms) error = %v, want ErrForbidden", err)
	}

	// The rejected attempt must not have moved the record.
	cur, _ := svc.Get(ctx, "p1")
	if cur.Version != 1 || cur.Appointments[0].Status != model.StatusPending {
		t.Errorf("rejected transition changed the record: %+v", cur)
	}

	// The clinician confirms.
	rec, err = svc.ChangeStatus(ctx, doctorActor, ChangeStatusRequest{
		PatientID: "p1", AppointmentID: apptID, NewStatus: model.StatusConfirmed,
	})
	if err != nil {
		t.Fatalf("ChangeStatus(doctor confirms) error = %v", err)
	}
	if rec.Version != 2 || rec.Appointments[0].Status != model.StatusConfirmed {
		t.Errorf("after confirm: version %d status %q", rec.Version, rec.Appointments[0].Status)
	}

	// Illegal transition beats the role check: a patient moving
	// confirmed -> pending gets the transition error.
	_, err = svc.ChangeStatus(ctx, patientActor, ChangeStatusRequest{
		PatientID: "p1", AppointmentID: apptID, NewStatus: model.StatusPending,
	})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("ChangeStatus(confirmed -> pending) error = %v, want ErrInvalidTransition", err)
	}

	// The patient may cancel.
	rec, err = svc.ChangeStatus(ctx, patientActor, ChangeStatusRequest{
		PatientID: "p1", AppointmentID: apptID, NewStatus: model.StatusCancelled,
	})
	if err != nil {
		t.Fatalf("ChangeStatus(patient cancels) error = %v", err)
	}
	if rec.Appointments[0].Status != model.StatusCancelled {
		t.Errorf("status = %q, want cancelled", rec.Appointments[0].Status)
	}

	// Cancelled is terminal.
	_, err = svc.ChangeStatus(ctx, doctorActor, ChangeStatusRequest{
		PatientID: "p1", AppointmentID: apptID, NewStatus: model.StatusConfirmed,
	})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("ChangeStatus(cancelled -> confirmed) error = %v, want ErrInvalidTransition", err)
	}

	_, err = svc.ChangeStatus(ctx, doctorActor, ChangeStatusRequest{
		PatientID: "p1", AppointmentID: "ghost", NewStatus: model.StatusConfirmed,
	})
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("ChangeStatus(unknown appointment) error = %v, want ErrAppointmentNotFound", err)
	}

	_, err = svc.ChangeStatus(ctx, doctorActor, ChangeStatusRequest{
		PatientID: "p1", AppointmentID: apptID, NewStatus: "archived",
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("ChangeStatus(unknown status) error = %v, want ErrValidation", err)
	}
}

func TestSetNotes(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})
	register(t, svc, "p1")

	rec, err := svc.CreateAppointment(ctx, patientActor, CreateAppointmentRequest{
		PatientID: "p1", Date: "2026-09-01", Time: "14:30", Reason: "checkup",
	})
	if err != nil {
		t.Fatalf("CreateAppointment() error = %v", err)
	}
	apptID := rec.Appointments[0].ID

	_, err = svc.SetNotes(ctx, patientActor, SetNotesRequest{
		PatientID: "p1", AppointmentID: apptID, Notes: "self-diagnosis",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("SetNotes(patient) error = %v, want ErrForbidden", err)
	}

	rec, err = svc.SetNotes(ctx, doctorActor, SetNotesRequest{
		PatientID: "p1", AppointmentID: apptID, Notes: "bring previous x-rays",
	})
	if err != nil {
		t.Fatalf("SetNotes(doctor) error = %v", err)
	}
	if rec.Appointments[0].Notes != "bring previous x-rays" {
		t.Errorf("notes = %q", rec.Appointments[0].Notes)
	}
	if rec.Version != 2 {
		t.Errorf("version after notes = %d, want 2", rec.Version)
	}

	_, err = svc.SetNotes(ctx, doctorActor, SetNotesRequest{
		PatientID: "p1", AppointmentID: "ghost", Notes: "x",
	})
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("SetNotes(unknown appointment) error = %v, want ErrAppointmentNotFound", err)
	}
}

func TestAppendHistory(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})
	register(t, svc, "p1")

	_, err := svc.AppendHistory(ctx, patientActor, AppendHistoryRequest{PatientID: "p1", Note: "note"})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("AppendHistory(patient) error = %v, want ErrForbidden", err)
	}

	_, err = svc.AppendHistory(ctx, doctorActor, AppendHistoryRequest{PatientID: "p1", Note: "   "})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("AppendHistory(blank note) error = %v, want ErrValidation", err)
	}

	// Neither rejected attempt may have touched the log.
	cur, _ := svc.Get(ctx, "p1")
	if len(cur.MedicalHistory) != 0 || cur.Version != 0 {
		t.Errorf("rejected appends changed the record: %+v", cur)
	}

	rec, err := svc.AppendHistory(ctx, doctorActor, AppendHistoryRequest{
		PatientID: "p1", Note: "cavity on lower left molar",
	})
	if err != nil {
		t.Fatalf("AppendHistory(doctor) error = %v", err)
	}
	if len(rec.MedicalHistory) != 1 {
		t.Fatalf("history entries = %d, want 1", len(rec.MedicalHistory))
	}
	entry := rec.MedicalHistory[0]
	if entry.Note != "cavity on lower left molar" || entry.AuthorRole != model.RoleDoctor {
		t.Errorf("entry = %+v", entry)
	}
	if !entry.Timestamp.Equal(testClock) {
		t.Errorf("entry timestamp = %v, want %v", entry.Timestamp, testClock)
	}
	if rec.Version != 1 {
		t.Errorf("version after append = %d, want 1", rec.Version)
	}
}

func TestCommit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})
	register(t, svc, "p1")

	appendNote := func(rec *model.PatientRecord) error {
		rec.MedicalHistory = append(rec.MedicalHistory, model.HistoryEntry{
			Timestamp: testClock, AuthorRole: model.RoleDoctor, Note: "entry",
		})
		return nil
	}

	rec, err := svc.Commit(ctx, "p1", 0, appendNote)
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if rec.Version != 1 {
		t.Errorf("version = %d, want 1", rec.Version)
	}

	// A stale snapshot loses.
	if _, err := svc.Commit(ctx, "p1", 0, appendNote); !errors.Is(err, ErrConflict) {
		t.Errorf("Commit(stale version) error = %v, want ErrConflict", err)
	}

	if _, err := svc.Commit(ctx, "p1", -1, appendNote); !errors.Is(err, ErrValidation) {
		t.Errorf("Commit(negative version) error = %v, want ErrValidation", err)
	}

	if _, err := svc.Commit(ctx, "ghost", 0, appendNote); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Commit(unknown patient) error = %v, want ErrRecordNotFound", err)
	}

	// A mutation that violates an invariant persists nothing.
	_, err = svc.Commit(ctx, "p1", 1, func(rec *model.PatientRecord) error {
		rec.MedicalHistory = nil
		return nil
	})
	if !errors.Is(err, ErrInvalidMutation) {
		t.Errorf("Commit(drop history) error = %v, want ErrInvalidMutation", err)
	}
	cur, _ := svc.Get(ctx, "p1")
	if cur.Version != 1 || len(cur.MedicalHistory) != 1 {
		t.Errorf("failed commit leaked into the store: %+v", cur)
	}
}

func TestVersionCountsCommittedIntents(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})
	register(t, svc, "p1")

	rec, err := svc.CreateAppointment(ctx, patientActor, CreateAppointmentRequest{
		PatientID: "p1", Date: "2026-09-01", Time: "14:30", Reason: "checkup",
	})
	if err != nil {
		t.Fatal(err)
	}
	apptID := rec.Appointments[0].ID

	if _, err := svc.ChangeStatus(ctx, doctorActor, ChangeStatusRequest{
		PatientID: "p1", AppointmentID: apptID, NewStatus: model.StatusConfirmed,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AppendHistory(ctx, doctorActor, AppendHistoryRequest{
		PatientID: "p1", Note: "checked in",
	}); err != nil {
		t.Fatal(err)
	}

	// One failed intent in between.
	if _, err := svc.AppendHistory(ctx, patientActor, AppendHistoryRequest{
		PatientID: "p1", Note: "does not count",
	}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden append, got %v", err)
	}

	cur, err := svc.Get(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if cur.Version != 3 {
		t.Errorf("version = %d, want 3 (one per committed intent)", cur.Version)
	}
}

func TestListPatients(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})
	register(t, svc, "p1")
	register(t, svc, "p2")

	if _, err := svc.Register(ctx, RegisterRequest{
		PatientID: "d1",
		Profile:   model.Profile{DisplayName: "Dr. Leila Ahmadi", Role: model.RoleDoctor},
	}); err != nil {
		t.Fatal(err)
	}

	recs, err := svc.ListPatients(ctx)
	if err != nil {
		t.Fatalf("ListPatients() error = %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("ListPatients() returned %d records, want 2 (doctor excluded)", len(recs))
	}
	for _, rec := range recs {
		if rec.Profile.Role != model.RolePatient {
			t.Errorf("ListPatients() returned non-patient record %q", rec.PatientID)
		}
	}
}
