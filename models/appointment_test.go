package models

import "testing"

func TestAppointmentCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    AppointmentStatus
		to      AppointmentStatus
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusPending, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusConfirmed, false},
	}

	for _, c := range cases {
		appt := Appointment{Status: c.from}
		err := appt.CanTransitionTo(c.to)
		if c.allowed && err != nil {
			t.Errorf("%s -> %s should be allowed, got %v", c.from, c.to, err)
		}
		if !c.allowed && err == nil {
			t.Errorf("%s -> %s should be rejected", c.from, c.to)
		}
	}

	unknown := Appointment{Status: "archived"}
	if err := unknown.CanTransitionTo(StatusCancelled); err == nil {
		t.Error("unknown status must reject all transitions")
	}
}

func TestAppointmentOccupies(t *testing.T) {
	cases := map[AppointmentStatus]bool{
		StatusPending:   true,
		StatusConfirmed: true,
		StatusCancelled: false,
		StatusCompleted: false,
	}
	for status, want := range cases {
		appt := Appointment{Status: status}
		if got := appt.Occupies(); got != want {
			t.Errorf("Occupies() with status %s = %v, want %v", status, got, want)
		}
	}
}
