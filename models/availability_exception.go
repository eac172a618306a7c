package models

import (
	"gorm.io/gorm"
)

// AvailabilityException overrides the weekly schedule for one calendar date.
// Without times it covers the whole day; with times it covers only that
// sub-window. IsAvailable says whether the covered span is open or closed.
type AvailabilityException struct {
	gorm.Model
	BusinessID  uint    `json:"business_id" gorm:"index:idx_exceptions_business_date"`
	Date        string  `json:"date" gorm:"size:10;index:idx_exceptions_business_date"` // "YYYY-MM-DD" in the business timezone
	StartTime   *string `json:"start_time"`                                             // "HH:MM", nil for all-day
	EndTime     *string `json:"end_time"`
	IsAvailable bool    `json:"is_available"`
	Reason      string  `json:"reason"`
}

// AllDay reports whether the exception covers the entire date.
func (e *AvailabilityException) AllDay() bool {
	return e.StartTime == nil || e.EndTime == nil
}
