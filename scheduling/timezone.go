package scheduling

import (
	"fmt"
	"sync"
	"time"
)

// Resolver converts business-local wall clock to and from UTC instants.
//
// DST policy, applied identically by the availability engine and the booking
// guard so they can never disagree about whether a slot exists:
//   - an ambiguous wall time (fall-back overlap) resolves to the LATER of the
//     two possible UTC instants
//   - a nonexistent wall time (spring-forward gap) shifts forward to the
//     first valid instant
type Resolver struct {
	def *time.Location

	mu    sync.RWMutex
	cache map[string]*time.Location
}

// NewResolver builds a resolver whose fallback is defaultTZ, or UTC when
// defaultTZ is empty or unknown.
func NewResolver(defaultTZ string) *Resolver {
	def := time.UTC
	if defaultTZ != "" {
		if loc, err := time.LoadLocation(defaultTZ); err == nil {
			def = loc
		}
	}
	return &Resolver{def: def, cache: make(map[string]*time.Location)}
}

// Location resolves an IANA identifier, erroring on unknown names. Write
// paths use this so a bad timezone surfaces as a validation failure.
func (r *Resolver) Location(name string) (*time.Location, error) {
	if name == "" {
		return r.def, nil
	}

	r.mu.RLock()
	loc, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}

	r.mu.Lock()
	r.cache[name] = loc
	r.mu.Unlock()
	return loc, nil
}

// LocationOrDefault resolves an IANA identifier, falling back to the platform
// default. Read paths use this so a stale identifier degrades instead of
// failing the whole query.
func (r *Resolver) LocationOrDefault(name string) *time.Location {
	loc, err := r.Location(name)
	if err != nil {
		return r.def
	}
	return loc
}

// ResolveLocal maps a wall-clock minute of a calendar day in loc to a UTC
// instant under the resolver's DST policy.
func (r *Resolver) ResolveLocal(loc *time.Location, year int, month time.Month, day, minuteOfDay int) time.Time {
	t := time.Date(year, month, day, minuteOfDay/60, minuteOfDay%60, 0, 0, loc)

	// Spring-forward gap: the requested wall time does not exist.
	// Normalization can land on the earlier side of the gap, so push forward
	// across it to the first valid instant.
	if wallMinute(t) != minuteOfDay || t.Day() != day {
		if delta := minuteOfDay - wallMinute(t); delta > 0 && t.Day() == day {
			t = t.Add(time.Duration(delta) * time.Minute)
		}
		return t.UTC()
	}

	// Fall-back overlap: if adding an hour lands on the same wall clock, the
	// time is ambiguous and the later instant wins.
	if later := t.Add(time.Hour); wallMinute(later) == minuteOfDay && later.Day() == day {
		return later.UTC()
	}

	return t.UTC()
}

// FromUTC renders an instant as a business-local calendar date and clock.
func (r *Resolver) FromUTC(t time.Time, loc *time.Location) (date string, clock string) {
	local := t.In(loc)
	return local.Format("2006-01-02"), FormatClock(wallMinute(local))
}

func wallMinute(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
