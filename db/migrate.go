package db

import (
	"fmt"
	"log"

	"github.com/bookloop/booking-engine/models"
)

func Migrate() {
	// Initialize DB connection
	Init()

	// Run AutoMigrate only when explicitly called
	err := DB.AutoMigrate(
		&models.User{},
		&models.Business{},
		&models.WeeklyAvailability{},
		&models.AvailabilityException{},
		&models.Service{},
		&models.Appointment{},
	)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	fmt.Println("✅ Migrations applied successfully!")
}
