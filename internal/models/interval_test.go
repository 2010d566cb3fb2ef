package models

import (
	"math/rand"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func day(d int) time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func interval(from, to int) ReservedInterval {
	return ReservedInterval{From: day(from), To: day(to), BookingID: primitive.NewObjectID()}
}

func TestOverlapsHalfOpen(t *testing.T) {
	set := IntervalSet{interval(5, 10)}

	cases := []struct {
		name     string
		from, to int
		want     bool
	}{
		{"fully inside", 6, 8, true},
		{"straddles start", 3, 6, true},
		{"straddles end", 9, 12, true},
		{"covers entirely", 4, 11, true},
		{"identical", 5, 10, true},
		{"before", 1, 4, false},
		{"after", 11, 14, false},
		{"touching at checkout", 10, 14, false},
		{"touching at checkin", 2, 5, false},
	}
	for _, tc := range cases {
		if got := set.Overlaps(day(tc.from), day(tc.to)); got != tc.want {
			t.Errorf("%s: Overlaps([%d,%d)) = %v, want %v", tc.name, tc.from, tc.to, got, tc.want)
		}
	}
}

func TestAddKeepsOrder(t *testing.T) {
	var set IntervalSet
	set = set.Add(interval(10, 12))
	set = set.Add(interval(2, 4))
	set = set.Add(interval(6, 8))

	if len(set) != 3 {
		t.Fatalf("expected 3 intervals, got %d", len(set))
	}
	for i := 1; i < len(set); i++ {
		if set[i].From.Before(set[i-1].From) {
			t.Errorf("set not ordered by From at index %d", i)
		}
	}
	if err := set.Validate(); err != nil {
		t.Errorf("valid set failed validation: %v", err)
	}
}

func TestAddDoesNotMutateReceiver(t *testing.T) {
	base := IntervalSet{interval(2, 4)}
	_ = base.Add(interval(6, 8))
	if len(base) != 1 {
		t.Errorf("Add mutated the receiver, len = %d", len(base))
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	target := interval(5, 8)
	set := IntervalSet{interval(1, 3), target, interval(10, 12)}

	removed := set.Remove(target.BookingID)
	if len(removed) != 2 {
		t.Fatalf("expected 2 intervals after removal, got %d", len(removed))
	}
	if removed.Overlaps(day(5), day(8)) {
		t.Error("removed interval still reported as overlapping")
	}

	// Removing again must be a no-op.
	again := removed.Remove(target.BookingID)
	if len(again) != 2 {
		t.Errorf("second removal changed the set, len = %d", len(again))
	}
}

func TestValidateRejectsOverlap(t *testing.T) {
	set := IntervalSet{interval(1, 5), interval(4, 8)}
	if err := set.Validate(); err == nil {
		t.Error("expected validation error for overlapping intervals")
	}
}

func TestValidateRejectsEmptyRange(t *testing.T) {
	set := IntervalSet{interval(5, 5)}
	if err := set.Validate(); err == nil {
		t.Error("expected validation error for zero-length interval")
	}
}

// Build sets through the availability gate (Overlaps then Add) with random
// ranges and verify the non-overlap invariant always holds afterwards.
func TestRandomizedAddPreservesInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		var set IntervalSet
		for i := 0; i < 40; i++ {
			from := rng.Intn(60)
			to := from + 1 + rng.Intn(10)
			if set.Overlaps(day(from), day(to)) {
				continue
			}
			set = set.Add(interval(from, to))
		}
		if err := set.Validate(); err != nil {
			t.Fatalf("trial %d: invariant broken: %v", trial, err)
		}
	}
}
