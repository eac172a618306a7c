package scheduling

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bookloop/booking-engine/models"
)

// memCalendar implements CalendarStore over the stubStore's appointment map.
// Its mutex plays the role of the business row lock: callbacks never
// interleave, which is exactly the guarantee the Postgres implementation
// provides per business.
type memCalendar struct {
	mu     sync.Mutex
	store  *stubStore
	nextID uint
}

func newMemCalendar(store *stubStore) *memCalendar {
	return &memCalendar{store: store, nextID: 1}
}

func (m *memCalendar) WithBusinessLock(ctx context.Context, businessID uint, fn func(tx CalendarTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store.business == nil || m.store.business.ID != businessID {
		return ErrNotFound
	}
	return fn(&memTx{c: m})
}

type memTx struct {
	c *memCalendar
}

func (t *memTx) BookedOn(businessID uint, date string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range t.c.store.appointments[date] {
		if a.Occupies() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (t *memTx) AppointmentByID(businessID, id uint) (*models.Appointment, error) {
	for date := range t.c.store.appointments {
		for _, a := range t.c.store.appointments[date] {
			if a.ID == id && a.BusinessID == businessID {
				found := a
				return &found, nil
			}
		}
	}
	return nil, ErrNotFound
}

func (t *memTx) Insert(a *models.Appointment) error {
	a.ID = t.c.nextID
	t.c.nextID++
	t.c.store.appointments[a.Date] = append(t.c.store.appointments[a.Date], *a)
	return nil
}

func (t *memTx) Update(a *models.Appointment, expectedVersion uint) error {
	for date, appts := range t.c.store.appointments {
		for i := range appts {
			if appts[i].ID == a.ID {
				if appts[i].Version != expectedVersion {
					return &StaleVersionError{AppointmentID: a.ID}
				}
				t.c.store.appointments[date][i] = *a
				return nil
			}
		}
	}
	return ErrNotFound
}

func (t *memTx) FutureOccupying(businessID uint, after time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for date := range t.c.store.appointments {
		for _, a := range t.c.store.appointments[date] {
			if a.BusinessID == businessID && a.Occupies() && a.StartsAtUTC.After(after) {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func newTestGuard(store *stubStore, now time.Time) (*Guard, *memCalendar) {
	tz := NewResolver("")
	engine := NewEngine(store, tz, nil)
	engine.now = func() time.Time { return now }
	calendar := newMemCalendar(store)
	guard := NewGuard(store, calendar, engine, tz, nil)
	guard.now = func() time.Time { return now }
	return guard, calendar
}

func validRequest() BookingRequest {
	return BookingRequest{
		BusinessID:   1,
		ServiceID:    10,
		Date:         mondayDate,
		StartTime:    "10:00",
		CustomerName: "Ada Lovelace",
	}
}

func TestCreateBooking_Success(t *testing.T) {
	store := newStubStore()
	store.openMonday("09:00", "12:00")
	guard, _ := newTestGuard(store, nyTime(t, 8, 0))

	appt, err := guard.CreateBooking(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.EndTime != "10:30" {
		t.Fatalf("expected end 10:30, got %s", appt.EndTime)
	}
	if appt.Status != models.StatusPending {
		t.Fatalf("expected pending, got %s", appt.Status)
	}
	if appt.ConfirmationNumber == "" {
		t.Fatal("expected a confirmation number")
	}
	if appt.ID == 0 {
		t.Fatal("expected a persisted ID")
	}
}

func TestCreateBooking_AutoConfirm(t *testing.T) {
	store := newStubStore()
	store.openMonday("09:00", "12:00")
	store.business.AutoConfirmBookings = true
	guard, _ := newTestGuard(store, nyTime(t, 8, 0))

	appt, err := guard.CreateBooking(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.Status != models.StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", appt.Status)
	}
}

func TestCreateBooking_Conflict(t *testing.T) {
	store := newStubStore()
	store.openMonday("09:00", "12:00")
	guard, _ := newTestGuard(store, nyTime(t, 8, 0))
	ctx := context.Background()

	if _, err := guard.CreateBooking(ctx, validRequest()); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	if _, err := guard.CreateBooking(ctx, validRequest()); !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Partially overlapping request loses too.
	req := validRequest()
	req.StartTime = "09:45"
	if _, err := guard.CreateBooking(ctx, req); !IsConflict(err) {
		t.Fatalf("expected conflict for partial overlap, got %v", err)
	}

	// Back-to-back is not a conflict.
	req.StartTime = "10:30"
	if _, err := guard.CreateBooking(ctx, req); err != nil {
		t.Fatalf("back-to-back booking failed: %v", err)
	}
}

func TestCreateBooking_ExactlyOneWinnerUnderConcurrency(t *testing.T) {
	store := newStubStore()
	store.openMonday("09:00", "12:00")
	guard, _ := newTestGuard(store, nyTime(t, 8, 0))

	const attempts = 25
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := guard.CreateBooking(context.Background(), validRequest())
			errs[i] = err
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error kind: %v", err)
		}
	}
	if successes != 1 || conflicts != attempts-1 {
		t.Fatalf("expected exactly one winner, got %d successes and %d conflicts", successes, conflicts)
	}
}

func TestCreateBooking_Validation(t *testing.T) {
	store := newStubStore()
	store.openMonday("09:00", "12:00")
	guard, _ := newTestGuard(store, nyTime(t, 8, 0))
	ctx := context.Background()

	req := validRequest()
	req.CustomerName = "  "
	if _, err := guard.CreateBooking(ctx, req); !IsValidation(err) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}

	req = validRequest()
	req.ServiceID = 999
	if _, err := guard.CreateBooking(ctx, req); !IsValidation(err) {
		t.Fatalf("expected validation error for unknown service, got %v", err)
	}

	req = validRequest()
	req.Date = "2026-09-01" // a week before "now"
	if _, err := guard.CreateBooking(ctx, req); !IsValidation(err) {
		t.Fatalf("expected validation error for past date, got %v", err)
	}

	req = validRequest()
	req.StartTime = "25:00"
	if _, err := guard.CreateBooking(ctx, req); !IsValidation(err) {
		t.Fatalf("expected validation error for bad clock, got %v", err)
	}

	store.services[13] = &models.Service{Model: gormModel(13), BusinessID: 1, DurationMinutes: 30, IsActive: false}
	req = validRequest()
	req.ServiceID = 13
	if _, err := guard.CreateBooking(ctx, req); !IsValidation(err) {
		t.Fatalf("expected validation error for inactive service, got %v", err)
	}
}

func TestCreateBooking_OutsideOpenWindow(t *testing.T) {
	store := newStubStore()
	store.openMonday("09:00", "12:00")
	guard, _ := newTestGuard(store, nyTime(t, 8, 0))
	ctx := context.Background()

	req := validRequest()
	req.StartTime = "11:45" // 11:45-12:15 overruns the window
	if _, err := guard.CreateBooking(ctx, req); !IsUnavailable(err) {
		t.Fatalf("expected unavailable error for overrun, got %v", err)
	}

	req.StartTime = "14:00"
	if _, err := guard.CreateBooking(ctx, req); !IsUnavailable(err) {
		t.Fatalf("expected unavailable error outside hours, got %v", err)
	}

	// Closed-all-day exception beats the weekly schedule in the guard too.
	store.exceptions[mondayDate] = []models.AvailabilityException{
		{BusinessID: 1, Date: mondayDate, IsAvailable: false},
	}
	req = validRequest()
	if _, err := guard.CreateBooking(ctx, req); !IsUnavailable(err) {
		t.Fatalf("expected unavailable error on closed day, got %v", err)
	}
}

func TestCreateBooking_LeadTime(t *testing.T) {
	store := newStubStore()
	store.openMonday("09:00", "12:00")
	store.business.MinLeadTimeMinutes = 180
	guard, _ := newTestGuard(store, nyTime(t, 8, 0))

	// 10:00 is only two hours out; three hours' notice required.
	if _, err := guard.CreateBooking(context.Background(), validRequest()); !IsUnavailable(err) {
		t.Fatalf("expected unavailable error inside notice period, got %v", err)
	}
}

func TestCreateBooking_AdvanceBookingHorizon(t *testing.T) {
	store := newStubStore()
	store.openMonday("09:00", "12:00")
	store.business.AdvanceBookingDays = 3
	guard, _ := newTestGuard(store, nyTime(t, 8, 0))
	ctx := context.Background()

	// 2026-09-14 lies past the three day horizon from "now". The engine
	// reports no slots there, so the guard must refuse it too.
	req := validRequest()
	req.Date = "2026-09-14"
	if _, err := guard.CreateBooking(ctx, req); !IsUnavailable(err) {
		t.Fatalf("expected unavailable error beyond the horizon, got %v", err)
	}

	// Widening the horizon past the date makes the same request bookable.
	store.business.AdvanceBookingDays = 8
	if _, err := guard.CreateBooking(ctx, req); err != nil {
		t.Fatalf("booking inside the horizon failed: %v", err)
	}
}

func TestCreateBooking_MalformedStoredTime(t *testing.T) {
	store := newStubStore()
	store.openMonday("09:00", "12:00")
	store.appointments[mondayDate] = append(store.appointments[mondayDate], models.Appointment{
		BusinessID: 1, Date: mondayDate, StartTime: "garbage", EndTime: "10:30",
		Status: models.StatusConfirmed,
	})
	guard, _ := newTestGuard(store, nyTime(t, 8, 0))

	// A busy row whose time cannot be parsed must fail the booking instead of
	// being skipped and double booked over.
	_, err := guard.CreateBooking(context.Background(), validRequest())
	if err == nil {
		t.Fatal("expected an error for a corrupt stored time")
	}
	if IsConflict(err) || IsValidation(err) || IsUnavailable(err) {
		t.Fatalf("corruption must not masquerade as a caller error, got %v", err)
	}
}

func TestCalendarUpdate_StaleVersion(t *testing.T) {
	store := newStubStore()
	store.openMonday("09:00", "12:00")
	guard, calendar := newTestGuard(store, nyTime(t, 8, 0))
	ctx := context.Background()

	appt, err := guard.CreateBooking(ctx, validRequest())
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	err = calendar.WithBusinessLock(ctx, 1, func(tx CalendarTx) error {
		stale := *appt
		stale.Status = models.StatusCancelled
		return tx.Update(&stale, appt.Version+1)
	})
	if !IsStaleVersion(err) {
		t.Fatalf("expected stale version error, got %v", err)
	}
	if IsConflict(err) {
		t.Fatal("a stale update must not look like losing a slot race")
	}
}

func TestCancelBooking_ReleasesInterval(t *testing.T) {
	store := newStubStore()
	store.openMonday("09:00", "12:00")
	guard, _ := newTestGuard(store, nyTime(t, 8, 0))
	ctx := context.Background()

	appt, err := guard.CreateBooking(ctx, validRequest())
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	cancelled, err := guard.CancelBooking(ctx, 1, appt.ID, appt.ConfirmationNumber, false)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if cancelled.Version != appt.Version+1 {
		t.Fatalf("expected version bump, got %d", cancelled.Version)
	}

	// The interval is free again.
	if _, err := guard.CreateBooking(ctx, validRequest()); err != nil {
		t.Fatalf("rebooking a cancelled slot failed: %v", err)
	}
}

func TestCancelBooking_WrongConfirmation(t *testing.T) {
	store := newStubStore()
	store.openMonday("09:00", "12:00")
	guard, _ := newTestGuard(store, nyTime(t, 8, 0))
	ctx := context.Background()

	appt, err := guard.CreateBooking(ctx, validRequest())
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	if _, err := guard.CancelBooking(ctx, 1, appt.ID, "BK-WRONG", false); !IsNotFound(err) {
		t.Fatalf("expected not found for wrong confirmation, got %v", err)
	}

	// The owner needs no confirmation number.
	if _, err := guard.CancelBooking(ctx, 1, appt.ID, "", true); err != nil {
		t.Fatalf("owner cancel failed: %v", err)
	}
}

func TestCancelBooking_Terminal(t *testing.T) {
	store := newStubStore()
	store.openMonday("09:00", "12:00")
	guard, _ := newTestGuard(store, nyTime(t, 8, 0))
	ctx := context.Background()

	appt, err := guard.CreateBooking(ctx, validRequest())
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if _, err := guard.CancelBooking(ctx, 1, appt.ID, appt.ConfirmationNumber, false); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := guard.CancelBooking(ctx, 1, appt.ID, appt.ConfirmationNumber, false); !IsValidation(err) {
		t.Fatalf("expected validation error cancelling twice, got %v", err)
	}
}

func TestRestampAppointments_WallClockFixed(t *testing.T) {
	store := newStubStore()
	store.openMonday("09:00", "12:00")
	guard, calendar := newTestGuard(store, nyTime(t, 8, 0))
	ctx := context.Background()

	appt, err := guard.CreateBooking(ctx, validRequest())
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	oldStart := appt.StartsAtUTC

	// Chicago is one hour behind New York: the same wall clock maps to a
	// UTC instant one hour later.
	store.business.Timezone = "America/Chicago"
	if err := guard.RestampAppointments(ctx, 1); err != nil {
		t.Fatalf("restamp failed: %v", err)
	}

	restamped, err := (&memTx{c: calendar}).AppointmentByID(1, appt.ID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if restamped.StartTime != "10:00" || restamped.Date != mondayDate {
		t.Fatalf("wall clock moved: %s %s", restamped.Date, restamped.StartTime)
	}
	if want := oldStart.Add(time.Hour); !restamped.StartsAtUTC.Equal(want) {
		t.Fatalf("expected UTC %s, got %s", want, restamped.StartsAtUTC)
	}
}
