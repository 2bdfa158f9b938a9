package record

import "errors"

var (
	// ErrValidation marks malformed input: a required field is empty or
	// a date/time does not parse.
	ErrValidation = errors.New("invalid input")
	// ErrForbidden marks an actor lacking the role a mutation requires.
	ErrForbidden = errors.New("actor is not allowed to perform this action")
	// ErrInvalidTransition marks a status change the state machine does
	// not permit.
	ErrInvalidTransition = errors.New("status transition not allowed")
	// ErrSlotTaken marks an appointment that would double-book an
	// occupied date+time slot.
	ErrSlotTaken = errors.New("time slot is already booked")
	// ErrRecordNotFound marks a missing patient record aggregate.
	ErrRecordNotFound = errors.New("patient record not found")
	// ErrAppointmentNotFound marks a missing appointment ID.
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrConflict marks a commit that lost the race to another writer.
	// Reloading the record and retrying the intent may succeed.
	ErrConflict = errors.New("patient record was modified concurrently")
	// ErrInvalidMutation marks a mutation whose result violates a
	// record invariant; nothing is persisted.
	ErrInvalidMutation = errors.New("mutation violates record invariants")
	// ErrAlreadyRegistered marks a second registration for a patient.
	ErrAlreadyRegistered = errors.New("patient record already registered")
)
