package scheduling

import (
	"errors"
	"fmt"
)

// ErrNotFound covers lookups of appointments, businesses and services that do
// not exist (or that the caller may not see).
var ErrNotFound = errors.New("not found")

// ValidationError means the caller's input is malformed or impossible and
// retrying without fixing it will never succeed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnavailableError means the requested time falls outside the business's open
// window for that day. Nothing was ever bookable there, which is different
// from losing a race for a real slot.
type UnavailableError struct {
	BusinessID uint
	Date       string
	Reason     string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("business %d unavailable on %s: %s", e.BusinessID, e.Date, e.Reason)
}

// ConflictError means the atomic commit found an overlapping appointment. The
// caller may refetch availability and retry with another slot.
type ConflictError struct {
	BusinessID uint
	Date       string
	StartTime  string
	EndTime    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot %s %s-%s already booked for business %d", e.Date, e.StartTime, e.EndTime, e.BusinessID)
}

// StaleVersionError means an optimistic version check failed on update: the
// appointment changed under the caller. Distinct from ConflictError, which is
// losing the race for a slot.
type StaleVersionError struct {
	AppointmentID uint
}

func (e *StaleVersionError) Error() string {
	return fmt.Sprintf("appointment %d was changed by another request", e.AppointmentID)
}

func IsStaleVersion(err error) bool {
	var s *StaleVersionError
	return errors.As(err, &s)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsUnavailable(err error) bool {
	var u *UnavailableError
	return errors.As(err, &u)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
