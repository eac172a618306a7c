package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/bookloop/booking-engine/db"
	"github.com/bookloop/booking-engine/models"
	"github.com/bookloop/booking-engine/utils"
)

// StartCronJobs initializes and starts the cron scheduler for appointment
// completion and reminders
func StartCronJobs() {
	fmt.Println("Starting cron job scheduler...")
	c := cron.New()
	// Run every minute: complete elapsed appointments, then send reminders
	_, err := c.AddFunc("* * * * *", completeElapsedAppointments)
	if err != nil {
		log.Fatalf("Failed to add cron job: %v", err)
	}
	_, err = c.AddFunc("* * * * *", sendAppointmentReminders)
	if err != nil {
		log.Fatalf("Failed to add cron job: %v", err)
	}
	c.Start()
	log.Println("Cron job scheduler started")
}

// completeElapsedAppointments marks pending/confirmed appointments whose end
// time has passed as completed. Completed appointments stop occupying their
// interval, but past intervals are never re-offered anyway: the engine drops
// every slot at or before "now".
func completeElapsedAppointments() {
	res := db.DB.Model(&models.Appointment{}).
		Where("status IN ? AND ends_at_utc < ?",
			[]models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}, time.Now().UTC()).
		Updates(map[string]interface{}{
			"status":  models.StatusCompleted,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		log.Printf("Error completing elapsed appointments: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Marked %d appointments completed", res.RowsAffected)
	}
}

// sendAppointmentReminders checks for appointments and sends reminders
func sendAppointmentReminders() {
	var appointments []models.Appointment
	now := time.Now().UTC()
	// Look for appointments starting in the next hour
	startWindow := now.Add(55 * time.Minute)
	endWindow := now.Add(65 * time.Minute)

	err := db.DB.Preload("Service").
		Where("status = ? AND starts_at_utc BETWEEN ? AND ?", models.StatusConfirmed, startWindow, endWindow).
		Find(&appointments).Error
	if err != nil {
		log.Printf("Error fetching appointments for reminders: %v", err)
		return
	}

	for _, appointment := range appointments {
		if appointment.CustomerEmail == "" {
			continue
		}
		if err := sendReminderEmail(&appointment); err != nil {
			log.Printf("Failed to send reminder for appointment %d: %v", appointment.ID, err)
			continue
		}
		log.Printf("Sent reminder for appointment %d to %s", appointment.ID, appointment.CustomerEmail)
	}
}

// sendReminderEmail constructs and sends the reminder email
func sendReminderEmail(appointment *models.Appointment) error {
	subject := fmt.Sprintf("Reminder: Upcoming Appointment - %s", appointment.Service.Name)
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>This is a reminder for your upcoming appointment scheduled in one hour.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Service:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Time:</strong> %s - %s</li>
			<li><strong>Status:</strong> %s</li>
		</ul>
		<p>Please arrive on time. If you need to cancel, use your confirmation number as soon as possible.</p>
	`, appointment.CustomerName, appointment.Service.Name,
		appointment.Date, appointment.StartTime, appointment.EndTime,
		appointment.Status)

	return utils.SendEmail(appointment.CustomerEmail, subject, body)
}
