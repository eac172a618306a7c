package scheduling

import (
	"context"
	"strings"
	"time"

	"github.com/bookloop/booking-engine/models"
	"github.com/bookloop/booking-engine/utils"
)

// Guard is the transactional boundary around the appointment store. The
// engine's slot list is a best-effort read; the guard re-validates the
// requested interval under the business calendar lock before committing, so
// two customers racing for the same slot get exactly one success.
//
// Mechanism: transactional check-then-insert serialized by a FOR UPDATE lock
// on the business row (see GormStore.WithBusinessLock). Cancellation and
// timezone re-stamping take the same lock, so they cannot race a booking.
type Guard struct {
	store    Store
	calendar CalendarStore
	engine   *Engine
	tz       *Resolver
	cache    *Cache
	now      func() time.Time
}

func NewGuard(store Store, calendar CalendarStore, engine *Engine, tz *Resolver, cache *Cache) *Guard {
	return &Guard{store: store, calendar: calendar, engine: engine, tz: tz, cache: cache, now: time.Now}
}

type BookingRequest struct {
	BusinessID    uint
	ServiceID     uint
	Date          string // "YYYY-MM-DD" in the business timezone
	StartTime     string // "HH:MM"
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// CreateBooking validates the request, re-checks the slot against the open
// window, then atomically checks for overlaps and inserts. Returns the
// persisted appointment with its confirmation number.
func (g *Guard) CreateBooking(ctx context.Context, req BookingRequest) (*models.Appointment, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, &ValidationError{Field: "customerName", Reason: "required"}
	}

	business, err := g.store.BusinessByID(ctx, req.BusinessID)
	if err != nil {
		if IsNotFound(err) {
			return nil, &ValidationError{Field: "businessId", Reason: "business does not exist"}
		}
		return nil, err
	}

	service, err := g.store.ServiceByID(ctx, req.ServiceID)
	if err != nil {
		if IsNotFound(err) {
			return nil, &ValidationError{Field: "serviceId", Reason: "service does not exist"}
		}
		return nil, err
	}
	if service.BusinessID != req.BusinessID {
		return nil, &ValidationError{Field: "serviceId", Reason: "service does not belong to this business"}
	}
	if !service.IsActive {
		return nil, &ValidationError{Field: "serviceId", Reason: "service is not active"}
	}
	if service.DurationMinutes <= 0 {
		return nil, &ValidationError{Field: "serviceId", Reason: "service has no duration"}
	}

	loc := g.tz.LocationOrDefault(business.Timezone)

	day, err := time.ParseInLocation(dateLayout, req.Date, loc)
	if err != nil {
		return nil, &ValidationError{Field: "date", Reason: "want YYYY-MM-DD"}
	}
	startMin, err := ParseClock(req.StartTime)
	if err != nil {
		return nil, &ValidationError{Field: "startTime", Reason: "want HH:MM"}
	}
	endMin := startMin + service.DurationMinutes
	if endMin > minutesPerDay {
		return nil, &ValidationError{Field: "startTime", Reason: "appointment may not cross midnight"}
	}
	requested := Interval{Start: startMin, End: endMin}

	now := g.now()
	year, month, dayOfMonth := day.Date()
	startUTC := g.tz.ResolveLocal(loc, year, month, dayOfMonth, startMin)
	endUTC := g.tz.ResolveLocal(loc, year, month, dayOfMonth, endMin)

	if !startUTC.After(now) {
		return nil, &ValidationError{Field: "date", Reason: "slot is in the past"}
	}
	if lead := time.Duration(business.MinLeadTimeMinutes) * time.Minute; lead > 0 && !startUTC.After(now.Add(lead)) {
		return nil, &UnavailableError{
			BusinessID: req.BusinessID,
			Date:       req.Date,
			Reason:     "slot is within the business's minimum notice period",
		}
	}
	if business.AdvanceBookingDays > 0 {
		today, _ := time.ParseInLocation(dateLayout, now.In(loc).Format(dateLayout), loc)
		if horizon := today.AddDate(0, 0, business.AdvanceBookingDays); !day.Before(horizon) {
			return nil, &UnavailableError{
				BusinessID: req.BusinessID,
				Date:       req.Date,
				Reason:     "date is beyond the business's advance booking horizon",
			}
		}
	}

	// Defense in depth: never trust the client that the slot lies inside an
	// open window, even though the engine only ever offered valid ones.
	windows, err := g.engine.DayWindows(ctx, req.BusinessID, req.Date, models.DayOfWeek(day.Weekday()))
	if err != nil {
		return nil, err
	}
	if windows.Closed || !containedInAny(requested, windows.Open) || overlapsAny(requested, windows.Blackouts) {
		return nil, &UnavailableError{
			BusinessID: req.BusinessID,
			Date:       req.Date,
			Reason:     "requested time is outside the business's open hours",
		}
	}

	status := models.StatusPending
	if business.AutoConfirmBookings {
		status = models.StatusConfirmed
	}

	appt := &models.Appointment{
		BusinessID:         req.BusinessID,
		ServiceID:          req.ServiceID,
		Date:               req.Date,
		StartTime:          FormatClock(startMin),
		EndTime:            FormatClock(endMin),
		StartsAtUTC:        startUTC,
		EndsAtUTC:          endUTC,
		Status:             status,
		CustomerName:       strings.TrimSpace(req.CustomerName),
		CustomerEmail:      strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:      strings.TrimSpace(req.CustomerPhone),
		ConfirmationNumber: utils.ConfirmationNumber(),
		Version:            1,
	}

	err = g.calendar.WithBusinessLock(ctx, req.BusinessID, func(tx CalendarTx) error {
		booked, err := tx.BookedOn(req.BusinessID, req.Date)
		if err != nil {
			return err
		}
		busy, err := apptIntervals(booked)
		if err != nil {
			return err
		}
		if overlapsAny(requested, busy) {
			return &ConflictError{
				BusinessID: req.BusinessID,
				Date:       req.Date,
				StartTime:  appt.StartTime,
				EndTime:    appt.EndTime,
			}
		}
		return tx.Insert(appt)
	})
	if err != nil {
		return nil, err
	}

	g.cache.Invalidate(ctx, req.BusinessID)
	return appt, nil
}

// CancelBooking transitions an appointment to cancelled under the same
// calendar lock as CreateBooking, releasing its interval. Customers must
// present the confirmation number and may cancel strictly before the start
// time; owners may cancel until the appointment ends.
func (g *Guard) CancelBooking(ctx context.Context, businessID, appointmentID uint, confirmation string, byOwner bool) (*models.Appointment, error) {
	now := g.now()

	var cancelled *models.Appointment
	err := g.calendar.WithBusinessLock(ctx, businessID, func(tx CalendarTx) error {
		appt, err := tx.AppointmentByID(businessID, appointmentID)
		if err != nil {
			return err
		}
		if !byOwner && appt.ConfirmationNumber != confirmation {
			// Do not reveal whether the appointment exists.
			return ErrNotFound
		}

		deadline := appt.StartsAtUTC
		if byOwner {
			deadline = appt.EndsAtUTC
		}
		if !now.Before(deadline) {
			return &ValidationError{Field: "id", Reason: "appointment can no longer be cancelled"}
		}

		if err := appt.CanTransitionTo(models.StatusCancelled); err != nil {
			return &ValidationError{Field: "id", Reason: err.Error()}
		}

		expected := appt.Version
		appt.Status = models.StatusCancelled
		appt.Version++
		if err := tx.Update(appt, expected); err != nil {
			return err
		}
		cancelled = appt
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.cache.Invalidate(ctx, businessID)
	return cancelled, nil
}

// RestampAppointments recomputes the UTC instants of all future occupying
// appointments after a business timezone change. The wall-clock time of each
// appointment is fixed; only its UTC representation moves.
func (g *Guard) RestampAppointments(ctx context.Context, businessID uint) error {
	business, err := g.store.BusinessByID(ctx, businessID)
	if err != nil {
		return err
	}
	loc, err := g.tz.Location(business.Timezone)
	if err != nil {
		return &ValidationError{Field: "timezone", Reason: "unknown IANA identifier"}
	}

	now := g.now()
	err = g.calendar.WithBusinessLock(ctx, businessID, func(tx CalendarTx) error {
		appts, err := tx.FutureOccupying(businessID, now)
		if err != nil {
			return err
		}
		for i := range appts {
			appt := &appts[i]
			day, err := time.ParseInLocation(dateLayout, appt.Date, loc)
			if err != nil {
				continue
			}
			startMin, err := ParseClock(appt.StartTime)
			if err != nil {
				continue
			}
			endMin, err := ParseClock(appt.EndTime)
			if err != nil {
				continue
			}
			year, month, dayOfMonth := day.Date()
			expected := appt.Version
			appt.StartsAtUTC = g.tz.ResolveLocal(loc, year, month, dayOfMonth, startMin)
			appt.EndsAtUTC = g.tz.ResolveLocal(loc, year, month, dayOfMonth, endMin)
			appt.Version++
			if err := tx.Update(appt, expected); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	g.cache.Invalidate(ctx, businessID)
	return nil
}

func containedInAny(iv Interval, windows []Interval) bool {
	for _, w := range windows {
		if w.Contains(iv) {
			return true
		}
	}
	return false
}
