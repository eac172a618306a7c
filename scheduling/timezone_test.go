package scheduling

import (
	"testing"
	"time"
)

func TestResolveLocal_Normal(t *testing.T) {
	r := NewResolver("")
	ny, err := r.Location("America/New_York")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 09:00 EDT is 13:00 UTC.
	got := r.ResolveLocal(ny, 2026, time.September, 7, 9*60)
	want := time.Date(2026, time.September, 7, 13, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestResolveLocal_SpringForwardGap(t *testing.T) {
	r := NewResolver("")
	ny, _ := r.Location("America/New_York")

	// 2026-03-08 02:30 does not exist in New York; policy shifts forward to
	// the first valid instant, 03:30 EDT = 07:30 UTC. The instant must never
	// land before the requested wall time.
	got := r.ResolveLocal(ny, 2026, time.March, 8, 2*60+30)
	want := time.Date(2026, time.March, 8, 7, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}

	// The first minute of the gap maps to the first minute after it.
	got = r.ResolveLocal(ny, 2026, time.March, 8, 2*60)
	want = time.Date(2026, time.March, 8, 7, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestResolveLocal_FallBackAmbiguity(t *testing.T) {
	r := NewResolver("")
	ny, _ := r.Location("America/New_York")

	// 2026-11-01 01:30 happens twice in New York: 05:30 UTC (EDT) and
	// 06:30 UTC (EST). Policy picks the later instant.
	got := r.ResolveLocal(ny, 2026, time.November, 1, 60+30)
	want := time.Date(2026, time.November, 1, 6, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestLocation_Unknown(t *testing.T) {
	r := NewResolver("")
	if _, err := r.Location("Mars/Olympus_Mons"); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
	if loc := r.LocationOrDefault("Mars/Olympus_Mons"); loc != time.UTC {
		t.Fatalf("expected UTC fallback, got %s", loc)
	}
}

func TestLocation_EmptyUsesDefault(t *testing.T) {
	r := NewResolver("Europe/London")
	loc, err := r.Location("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.String() != "Europe/London" {
		t.Fatalf("expected Europe/London, got %s", loc)
	}
}

func TestFromUTC(t *testing.T) {
	r := NewResolver("")
	ny, _ := r.Location("America/New_York")

	date, clock := r.FromUTC(time.Date(2026, time.September, 7, 13, 0, 0, 0, time.UTC), ny)
	if date != "2026-09-07" || clock != "09:00" {
		t.Fatalf("expected 2026-09-07 09:00, got %s %s", date, clock)
	}
}
