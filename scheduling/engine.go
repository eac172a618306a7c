package scheduling

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bookloop/booking-engine/models"
)

const (
	// DefaultGranularityMinutes sizes preview slots when no service is given.
	// Nothing is bookable in preview mode; it only shows the grid.
	DefaultGranularityMinutes = 30

	// MaxRangeDays bounds one availability query.
	MaxRangeDays = 30

	defaultRangeDays = 7

	dateLayout = "2006-01-02"
)

// TimeSlot is a candidate bookable interval. Derived on every query, never
// persisted as truth.
type TimeSlot struct {
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}

// DayAvailability is one day's ordered open slots. An empty Slots list is a
// valid answer for a closed or fully booked day.
type DayAvailability struct {
	Date  string     `json:"date"`
	Slots []TimeSlot `json:"slots"`
}

// Windows is the effective bookable shape of one day after exception
// precedence is applied: the open windows, minus blackout sub-windows.
type Windows struct {
	Closed    bool
	Open      []Interval
	Blackouts []Interval
}

// Engine computes day-by-day open slots for a business. All slot and overlap
// logic lives here and in the guard's re-validation, which reuses the same
// window resolution, so call sites cannot drift apart.
type Engine struct {
	store Store
	tz    *Resolver
	cache *Cache
	now   func() time.Time
}

func NewEngine(store Store, tz *Resolver, cache *Cache) *Engine {
	return &Engine{store: store, tz: tz, cache: cache, now: time.Now}
}

// CalculateAvailability returns ordered open slots per day for
// [startDate, startDate+days). serviceID 0 means preview mode on the default
// grid. Empty startDate means today in the business timezone.
func (e *Engine) CalculateAvailability(ctx context.Context, businessID, serviceID uint, startDate string, days int) ([]DayAvailability, error) {
	business, err := e.store.BusinessByID(ctx, businessID)
	if err != nil {
		if IsNotFound(err) {
			return nil, &ValidationError{Field: "businessId", Reason: "business does not exist"}
		}
		return nil, err
	}

	loc := e.tz.LocationOrDefault(business.Timezone)
	now := e.now()

	if days <= 0 {
		days = defaultRangeDays
	}
	if days > MaxRangeDays {
		days = MaxRangeDays
	}

	if startDate == "" {
		startDate = now.In(loc).Format(dateLayout)
	}
	start, err := time.ParseInLocation(dateLayout, startDate, loc)
	if err != nil {
		return nil, &ValidationError{Field: "startDate", Reason: "want YYYY-MM-DD"}
	}

	duration := DefaultGranularityMinutes
	if serviceID != 0 {
		service, err := e.store.ServiceByID(ctx, serviceID)
		if err != nil {
			if IsNotFound(err) {
				return nil, &ValidationError{Field: "serviceId", Reason: "service does not exist"}
			}
			return nil, err
		}
		if service.BusinessID != businessID {
			return nil, &ValidationError{Field: "serviceId", Reason: "service does not belong to this business"}
		}
		if !service.IsActive {
			return nil, &ValidationError{Field: "serviceId", Reason: "service is not active"}
		}
		if service.DurationMinutes <= 0 {
			return nil, &ValidationError{Field: "serviceId", Reason: "service has no duration"}
		}
		duration = service.DurationMinutes
	}
	// The step equals the slot duration, so slot starts are stable across
	// repeated queries.
	step := duration

	cacheKey := fmt.Sprintf("%d:%s:%d", serviceID, startDate, days)
	if cached, ok := e.cache.Get(ctx, businessID, cacheKey); ok {
		return cached, nil
	}

	cutoff := now.Add(time.Duration(business.MinLeadTimeMinutes) * time.Minute)

	var horizon time.Time
	if business.AdvanceBookingDays > 0 {
		today, _ := time.ParseInLocation(dateLayout, now.In(loc).Format(dateLayout), loc)
		horizon = today.AddDate(0, 0, business.AdvanceBookingDays)
	}

	result := make([]DayAvailability, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		date := day.Format(dateLayout)

		slots, err := e.slotsForDay(ctx, business, loc, day, duration, step, cutoff, horizon)
		if err != nil {
			return nil, err
		}
		result = append(result, DayAvailability{Date: date, Slots: slots})
	}

	e.cache.Set(ctx, businessID, cacheKey, result)
	return result, nil
}

func (e *Engine) slotsForDay(ctx context.Context, business *models.Business, loc *time.Location, day time.Time, duration, step int, cutoff, horizon time.Time) ([]TimeSlot, error) {
	slots := []TimeSlot{}
	date := day.Format(dateLayout)

	if !horizon.IsZero() && !day.Before(horizon) {
		return slots, nil
	}

	windows, err := e.DayWindows(ctx, business.ID, date, models.DayOfWeek(day.Weekday()))
	if err != nil {
		return nil, err
	}
	if windows.Closed {
		return slots, nil
	}

	busy, err := e.bookedIntervals(ctx, business.ID, date)
	if err != nil {
		return nil, err
	}

	year, month, dayOfMonth := day.Date()
	for _, window := range windows.Open {
		for _, candidate := range CandidateSlots(window, duration, step) {
			if overlapsAny(candidate, windows.Blackouts) || overlapsAny(candidate, busy) {
				continue
			}
			startUTC := e.tz.ResolveLocal(loc, year, month, dayOfMonth, candidate.Start)
			if !startUTC.After(cutoff) {
				continue
			}
			slots = append(slots, TimeSlot{
				Date:        date,
				StartTime:   FormatClock(candidate.Start),
				EndTime:     FormatClock(candidate.End),
				IsAvailable: true,
			})
		}
	}
	return slots, nil
}

// DayWindows resolves exception precedence for one date. An all-day closure
// wins outright; open partial exceptions replace the weekly window; closed
// partial exceptions become blackouts inside whatever window applies. With no
// exception the weekly schedule decides.
func (e *Engine) DayWindows(ctx context.Context, businessID uint, date string, weekday models.DayOfWeek) (Windows, error) {
	exceptions, err := e.store.ExceptionsOn(ctx, businessID, date)
	if err != nil {
		return Windows{}, err
	}

	var opens, blackouts []Interval
	for _, ex := range exceptions {
		if ex.AllDay() {
			if !ex.IsAvailable {
				return Windows{Closed: true}, nil
			}
			// All-day open override carries no window of its own; the weekly
			// schedule still supplies the hours.
			continue
		}
		iv, err := exceptionInterval(&ex)
		if err != nil {
			return Windows{}, err
		}
		if ex.IsAvailable {
			opens = append(opens, iv)
		} else {
			blackouts = append(blackouts, iv)
		}
	}

	if len(opens) == 0 {
		weekly, err := e.store.WeeklyFor(ctx, businessID, weekday)
		if err != nil {
			return Windows{}, err
		}
		if weekly == nil || !weekly.IsAvailable {
			return Windows{Closed: true}, nil
		}
		start, err := ParseClock(weekly.StartTime)
		if err != nil {
			return Windows{}, fmt.Errorf("weekly schedule for business %d: %w", businessID, err)
		}
		end, err := ParseClock(weekly.EndTime)
		if err != nil {
			return Windows{}, fmt.Errorf("weekly schedule for business %d: %w", businessID, err)
		}
		opens = []Interval{{Start: start, End: end}}
	}

	sort.Slice(opens, func(i, j int) bool { return opens[i].Start < opens[j].Start })
	return Windows{Open: opens, Blackouts: blackouts}, nil
}

func (e *Engine) bookedIntervals(ctx context.Context, businessID uint, date string) ([]Interval, error) {
	appts, err := e.store.BookedOn(ctx, businessID, date)
	if err != nil {
		return nil, err
	}
	return apptIntervals(appts)
}

// apptIntervals fails on unparseable times rather than skipping them: a busy
// interval silently dropped here would be offered and double booked. Stored
// times only ever come from FormatClock, so a parse failure is corruption.
func apptIntervals(appts []models.Appointment) ([]Interval, error) {
	intervals := make([]Interval, 0, len(appts))
	for _, a := range appts {
		start, err := ParseClock(a.StartTime)
		if err != nil {
			return nil, fmt.Errorf("appointment %d: %w", a.ID, err)
		}
		end, err := ParseClock(a.EndTime)
		if err != nil {
			return nil, fmt.Errorf("appointment %d: %w", a.ID, err)
		}
		intervals = append(intervals, Interval{Start: start, End: end})
	}
	return intervals, nil
}

func exceptionInterval(ex *models.AvailabilityException) (Interval, error) {
	start, err := ParseClock(*ex.StartTime)
	if err != nil {
		return Interval{}, fmt.Errorf("exception %d: %w", ex.ID, err)
	}
	end, err := ParseClock(*ex.EndTime)
	if err != nil {
		return Interval{}, fmt.Errorf("exception %d: %w", ex.ID, err)
	}
	return Interval{Start: start, End: end}, nil
}
