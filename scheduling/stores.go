package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bookloop/booking-engine/models"
)

// Store is the read surface the availability engine consumes. The engine owns
// no persistent state of its own; it is a pure function of these stores plus
// the current instant.
type Store interface {
	BusinessByID(ctx context.Context, id uint) (*models.Business, error)
	WeeklyFor(ctx context.Context, businessID uint, day models.DayOfWeek) (*models.WeeklyAvailability, error)
	ExceptionsOn(ctx context.Context, businessID uint, date string) ([]models.AvailabilityException, error)
	BookedOn(ctx context.Context, businessID uint, date string) ([]models.Appointment, error)
	ServiceByID(ctx context.Context, id uint) (*models.Service, error)
}

// CalendarTx is the mutation surface available while a business calendar is
// locked. Update must apply an optimistic version check and report a stale
// version when the row moved underneath.
type CalendarTx interface {
	BookedOn(businessID uint, date string) ([]models.Appointment, error)
	AppointmentByID(businessID, id uint) (*models.Appointment, error)
	Insert(a *models.Appointment) error
	Update(a *models.Appointment, expectedVersion uint) error
	FutureOccupying(businessID uint, after time.Time) ([]models.Appointment, error)
}

// CalendarStore serializes all mutations of one business calendar.
// WithBusinessLock must guarantee that two concurrent invocations for the
// same business never interleave between check and insert.
type CalendarStore interface {
	WithBusinessLock(ctx context.Context, businessID uint, fn func(tx CalendarTx) error) error
}

// GormStore backs Store and CalendarStore with Postgres through GORM.
//
// The lock is a SELECT ... FOR UPDATE on the business row: every calendar
// mutation (create, cancel, re-stamp) takes it, so check-then-insert is
// atomic per business. Row locks on conflicting appointments alone would not
// serialize two inserts into an empty range.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) BusinessByID(ctx context.Context, id uint) (*models.Business, error) {
	var business models.Business
	if err := s.db.WithContext(ctx).First(&business, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load business %d: %w", id, err)
	}
	return &business, nil
}

func (s *GormStore) WeeklyFor(ctx context.Context, businessID uint, day models.DayOfWeek) (*models.WeeklyAvailability, error) {
	var weekly models.WeeklyAvailability
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND day_of_week = ?", businessID, day).
		First(&weekly).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // no row means the day is closed
		}
		return nil, fmt.Errorf("load weekly availability: %w", err)
	}
	return &weekly, nil
}

func (s *GormStore) ExceptionsOn(ctx context.Context, businessID uint, date string) ([]models.AvailabilityException, error) {
	var exceptions []models.AvailabilityException
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND date = ?", businessID, date).
		Order("start_time ASC").
		Find(&exceptions).Error
	if err != nil {
		return nil, fmt.Errorf("load exceptions: %w", err)
	}
	return exceptions, nil
}

func (s *GormStore) BookedOn(ctx context.Context, businessID uint, date string) ([]models.Appointment, error) {
	return bookedOn(s.db.WithContext(ctx), businessID, date)
}

func (s *GormStore) ServiceByID(ctx context.Context, id uint) (*models.Service, error) {
	var service models.Service
	if err := s.db.WithContext(ctx).First(&service, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load service %d: %w", id, err)
	}
	return &service, nil
}

func (s *GormStore) WithBusinessLock(ctx context.Context, businessID uint, fn func(tx CalendarTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lockedID uint
		err := tx.Raw(`SELECT id FROM businesses WHERE id = ? AND deleted_at IS NULL FOR UPDATE`, businessID).
			Scan(&lockedID).Error
		if err != nil {
			return fmt.Errorf("lock business %d: %w", businessID, err)
		}
		if lockedID == 0 {
			return ErrNotFound
		}
		return fn(&gormCalendarTx{tx: tx})
	})
}

type gormCalendarTx struct {
	tx *gorm.DB
}

func (t *gormCalendarTx) BookedOn(businessID uint, date string) ([]models.Appointment, error) {
	return bookedOn(t.tx, businessID, date)
}

func (t *gormCalendarTx) AppointmentByID(businessID, id uint) (*models.Appointment, error) {
	var appt models.Appointment
	err := t.tx.Where("business_id = ?", businessID).First(&appt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load appointment %d: %w", id, err)
	}
	return &appt, nil
}

func (t *gormCalendarTx) Insert(a *models.Appointment) error {
	if err := t.tx.Create(a).Error; err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (t *gormCalendarTx) Update(a *models.Appointment, expectedVersion uint) error {
	res := t.tx.Model(&models.Appointment{}).
		Where("id = ? AND version = ?", a.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":        a.Status,
			"version":       a.Version,
			"starts_at_utc": a.StartsAtUTC,
			"ends_at_utc":   a.EndsAtUTC,
		})
	if res.Error != nil {
		return fmt.Errorf("update appointment %d: %w", a.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return &StaleVersionError{AppointmentID: a.ID}
	}
	return nil
}

func (t *gormCalendarTx) FutureOccupying(businessID uint, after time.Time) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := t.tx.
		Where("business_id = ? AND status IN ? AND starts_at_utc > ?",
			businessID, []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}, after).
		Order("starts_at_utc ASC").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("load future appointments: %w", err)
	}
	return appts, nil
}

func bookedOn(tx *gorm.DB, businessID uint, date string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := tx.
		Where("business_id = ? AND date = ? AND status IN ?",
			businessID, date, []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}).
		Order("start_time ASC").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("load booked appointments: %w", err)
	}
	return appts, nil
}
