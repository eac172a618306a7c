package models

import (
	"gorm.io/gorm"
)

type DayOfWeek int

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// WeeklyAvailability is the recurring default window for one day of the week.
// At most one row per (business, day); exceptions override it per date.
type WeeklyAvailability struct {
	gorm.Model
	BusinessID  uint      `json:"business_id" gorm:"uniqueIndex:idx_weekly_business_day"`
	DayOfWeek   DayOfWeek `json:"day_of_week" gorm:"uniqueIndex:idx_weekly_business_day"` // 0=Sunday .. 6=Saturday
	IsAvailable bool      `json:"is_available" gorm:"default:true"`
	StartTime   string    `json:"start_time"` // "HH:MM" in the business timezone
	EndTime     string    `json:"end_time"`   // "HH:MM", must be after StartTime when available
}
