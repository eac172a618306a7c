package scheduling

import (
	"fmt"
	"strconv"
	"strings"
)

// Slot arithmetic runs on minutes from local midnight. Within one calendar
// day every interval shares the same timezone, so candidate generation and
// overlap checks never need to touch UTC conversion.

const minutesPerDay = 24 * 60

// Interval is a half-open [Start, End) span in minutes from midnight.
type Interval struct {
	Start int
	End   int
}

// Overlaps uses half-open semantics: back-to-back intervals where one's end
// equals the other's start do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Contains reports whether other lies entirely within iv.
func (iv Interval) Contains(other Interval) bool {
	return iv.Start <= other.Start && other.End <= iv.End
}

func overlapsAny(iv Interval, busy []Interval) bool {
	for _, b := range busy {
		if iv.Overlaps(b) {
			return true
		}
	}
	return false
}

// CandidateSlots steps through the window by step minutes, emitting every
// [start, start+duration) that fits. A slot that would overrun the window end
// is dropped, never truncated.
func CandidateSlots(window Interval, duration, step int) []Interval {
	if duration <= 0 || step <= 0 {
		return nil
	}
	var out []Interval
	for start := window.Start; start+duration <= window.End; start += step {
		out = append(out, Interval{Start: start, End: start + duration})
	}
	return out
}

// ParseClock parses "HH:MM" (24h) into minutes from midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("clock time %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("clock time %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("clock time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes from midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
