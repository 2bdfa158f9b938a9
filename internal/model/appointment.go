package model

import "time"

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// transitions encodes the status state machine:
// pending -> confirmed -> completed, pending|confirmed -> cancelled.
// completed and cancelled are terminal.
var transitions = map[Status]map[Status]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted: {},
	StatusCancelled: {},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no transition leaves this status.
func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// CanTransitionTo reports whether the state machine permits s -> next.
func (s Status) CanTransitionTo(next Status) bool {
	return transitions[s][next]
}

const (
	// DateLayout is the calendar date format for appointments.
	DateLayout = "2006-01-02"
	// TimeLayout is the time-of-day format for appointments.
	TimeLayout = "15:04"
)

// ParseDate validates an appointment date. Dates are clinic-local wall
// time; no timezone is attached.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// ParseTimeOfDay validates an appointment time of day.
func ParseTimeOfDay(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

// Appointment is one entry in a patient record's appointment collection.
// ID is generated at creation, unique within the record, and never
// reused. Date, Time and Reason are fixed at creation; only Status and
// Notes change afterwards.
type Appointment struct {
	ID     string `json:"id"`
	Date   string `json:"date"` // DateLayout
	Time   string `json:"time"` // TimeLayout
	Reason string `json:"reason"`
	Status Status `json:"status"`
	// Notes is free text writable only by the clinician.
	Notes string `json:"notes,omitempty"`
}

// SameSlot reports whether two appointments occupy the same
// date+time slot.
func (a Appointment) SameSlot(other Appointment) bool {
	return a.Date == other.Date && a.Time == other.Time
}

// Active reports whether the appointment still occupies its slot
// (pending or confirmed).
func (a Appointment) Active() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}
