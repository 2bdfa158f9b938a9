package model

import "testing"

func TestStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"pending to completed", StatusPending, StatusCompleted, false},
		{"confirmed to completed", StatusConfirmed, StatusCompleted, true},
		{"confirmed to cancelled", StatusConfirmed, StatusCancelled, true},
		{"confirmed to pending", StatusConfirmed, StatusPending, false},
		{"completed is terminal", StatusCompleted, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusPending, false},
		{"unknown source", Status("archived"), StatusPending, false},
		{"unknown target", StatusPending, Status("archived"), false},
		{"self transition", StatusPending, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%q -> %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, false},
		{StatusConfirmed, false},
		{StatusCompleted, true},
		{StatusCancelled, true},
		{Status("archived"), false},
	}

	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("Terminal(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2026-09-01"); err != nil {
		t.Errorf("ParseDate(valid) error = %v", err)
	}
	for _, bad := range []string{"", "01-09-2026", "2026-13-40", "tomorrow"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) expected error", bad)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	if _, err := ParseTimeOfDay("14:30"); err != nil {
		t.Errorf("ParseTimeOfDay(valid) error = %v", err)
	}
	for _, bad := range []string{"", "25:00", "2pm", "14:30:15"} {
		if _, err := ParseTimeOfDay(bad); err == nil {
			t.Errorf("ParseTimeOfDay(%q) expected error", bad)
		}
	}
}

func TestAppointmentActive(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, true},
		{StatusConfirmed, true},
		{StatusCompleted, false},
		{StatusCancelled, false},
	}

	for _, tt := range tests {
		a := Appointment{Status: tt.status}
		if got := a.Active(); got != tt.want {
			t.Errorf("Active(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestAppointmentSameSlot(t *testing.T) {
	a := Appointment{Date: "2026-09-01", Time: "14:30"}

	if !a.SameSlot(Appointment{Date: "2026-09-01", Time: "14:30"}) {
		t.Error("SameSlot() = false for identical slot")
	}
	if a.SameSlot(Appointment{Date: "2026-09-01", Time: "15:00"}) {
		t.Error("SameSlot() = true for different time")
	}
	if a.SameSlot(Appointment{Date: "2026-09-02", Time: "14:30"}) {
		t.Error("SameSlot() = true for different date")
	}
}
