package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Appointment is a committed booking on a business calendar.
//
// Date/StartTime/EndTime carry the business-local wall clock and are the
// stored truth: when a business changes timezone the wall clock stays fixed
// and only StartsAtUTC/EndsAtUTC are recomputed. Version is the optimistic
// token bumped on every status change.
type Appointment struct {
	gorm.Model
	BusinessID uint     `json:"business_id" gorm:"index:idx_appointments_business_date,priority:1"`
	Business   Business `json:"business,omitempty" gorm:"foreignKey:BusinessID"`
	ServiceID  uint     `json:"service_id"`
	Service    Service  `json:"service,omitempty" gorm:"foreignKey:ServiceID"`

	Date      string `json:"date" gorm:"size:10;index:idx_appointments_business_date,priority:2"` // "YYYY-MM-DD"
	StartTime string `json:"start_time" gorm:"size:5"`                                            // "HH:MM"
	EndTime   string `json:"end_time" gorm:"size:5"`

	StartsAtUTC time.Time `json:"starts_at_utc" gorm:"index"`
	EndsAtUTC   time.Time `json:"ends_at_utc"`

	Status AppointmentStatus `json:"status"`

	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`

	ConfirmationNumber string `json:"confirmation_number" gorm:"uniqueIndex"`
	Version            uint   `json:"version"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = StatusPending
	}
	return nil
}

// Occupies reports whether the appointment blocks its interval on the
// calendar. Cancelled and completed appointments never do.
func (a *Appointment) Occupies() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanTransitionTo validates the status state machine: pending|confirmed may
// become cancelled or completed; cancelled and completed are terminal.
func (a *Appointment) CanTransitionTo(next AppointmentStatus) error {
	switch a.Status {
	case StatusPending:
		if next != StatusConfirmed && next != StatusCancelled && next != StatusCompleted {
			return fmt.Errorf("invalid transition from pending to %s", next)
		}
	case StatusConfirmed:
		if next != StatusCompleted && next != StatusCancelled {
			return fmt.Errorf("invalid transition from confirmed to %s", next)
		}
	case StatusCompleted, StatusCancelled:
		return fmt.Errorf("no transitions allowed from %s", a.Status)
	default:
		return fmt.Errorf("unknown status %q", a.Status)
	}
	return nil
}
