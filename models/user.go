package models

import (
	"time"
)

// User is the authenticated subject behind a JWT. Token issuance lives in the
// identity service; this row only anchors business ownership.
type User struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	Name       string     `json:"name"`
	Email      string     `json:"email" gorm:"unique"`
	Businesses []Business `json:"businesses,omitempty" gorm:"foreignKey:OwnerID"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
