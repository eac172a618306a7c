package models

import (
	"gorm.io/gorm"
)

// Business owns a calendar: weekly hours, exceptions, services and
// appointments all hang off it. Timezone is the IANA identifier used for every
// wall-clock conversion on this calendar.
type Business struct {
	gorm.Model
	OwnerID     uint   `json:"owner_id"`
	Owner       User   `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Timezone    string `json:"timezone"` // e.g. "America/New_York"; platform default when empty

	AutoConfirmBookings bool `json:"auto_confirm_bookings"`
	MinLeadTimeMinutes  int  `json:"min_lead_time_minutes"` // notice required before a slot can be booked
	AdvanceBookingDays  int  `json:"advance_booking_days"`  // 0 means no horizon beyond the query bound
}
