package record

import (
	"fmt"
	"strings"

	"github.com/dentelia/dentelia_backend/internal/model"
)

// buildAppointment validates the booking input and shapes the new
// appointment. Every appointment starts out pending.
func buildAppointment(req CreateAppointmentRequest, newID func() string) (model.Appointment, error) {
	if strings.TrimSpace(req.Date) == "" {
		return model.Appointment{}, fmt.Errorf("%w: date is required", ErrValidation)
	}
	if strings.TrimSpace(req.Time) == "" {
		return model.Appointment{}, fmt.Errorf("%w: time is required", ErrValidation)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return model.Appointment{}, fmt.Errorf("%w: reason is required", ErrValidation)
	}
	if _, err := model.ParseDate(req.Date); err != nil {
		return model.Appointment{}, fmt.Errorf("%w: date %q is not a calendar date (want %s)", ErrValidation, req.Date, model.DateLayout)
	}
	if _, err := model.ParseTimeOfDay(req.Time); err != nil {
		return model.Appointment{}, fmt.Errorf("%w: time %q is not a time of day (want %s)", ErrValidation, req.Time, model.TimeLayout)
	}

	return model.Appointment{
		ID:     newID(),
		Date:   req.Date,
		Time:   req.Time,
		Reason: req.Reason,
		Status: model.StatusPending,
	}, nil
}

// addAppointment appends the appointment to the record, optionally
// rejecting a double-booked slot: no two appointments may hold the
// same date+time while pending or confirmed.
func addAppointment(rec *model.PatientRecord, appt model.Appointment, slotGuard bool) error {
	if slotGuard {
		for _, existing := range rec.Appointments {
			if existing.Active() && existing.SameSlot(appt) {
				return fmt.Errorf("%w: %s %s", ErrSlotTaken, appt.Date, appt.Time)
			}
		}
	}
	rec.Appointments = append(rec.Appointments, appt)
	return nil
}

// transitionAppointment moves one appointment through the status state
// machine. Patients may only cancel; confirming and completing are
// clinician actions.
func transitionAppointment(rec *model.PatientRecord, apptID string, next model.Status, role model.Role) error {
	idx := rec.AppointmentIndex(apptID)
	if idx < 0 {
		return ErrAppointmentNotFound
	}

	cur := rec.Appointments[idx].Status
	if !cur.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, next)
	}
	if role == model.RolePatient && next != model.StatusCancelled {
		return fmt.Errorf("%w: patients may only cancel appointments", ErrForbidden)
	}

	rec.Appointments[idx].Status = next
	return nil
}

// setAppointmentNotes writes the clinician's notes on an appointment.
func setAppointmentNotes(rec *model.PatientRecord, apptID, notes string, role model.Role) error {
	if role != model.RoleDoctor {
		return fmt.Errorf("%w: only clinicians may write appointment notes", ErrForbidden)
	}

	idx := rec.AppointmentIndex(apptID)
	if idx < 0 {
		return ErrAppointmentNotFound
	}

	rec.Appointments[idx].Notes = notes
	return nil
}
