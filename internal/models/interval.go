package models

import (
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReservedInterval is one entry in a room's reserved-date set. Ranges are
// half-open [From, To): the checkout day itself is free, so back-to-back
// turnover (one guest's checkout equals the next guest's checkin) is allowed.
type ReservedInterval struct {
	From      time.Time          `bson:"from" json:"from"`
	To        time.Time          `bson:"to" json:"to"`
	BookingID primitive.ObjectID `bson:"booking_id" json:"booking_id"`
}

// IntervalSet is the ordered reserved-interval set owned by a room document.
// Entries are kept sorted by From and must be pairwise non-overlapping; that
// invariant is maintained by the booking lifecycle, which is the only writer.
type IntervalSet []ReservedInterval

// Overlaps reports whether the candidate half-open range [from, to) collides
// with any existing entry: [a,b) overlaps [c,d) iff a < d && b > c.
func (s IntervalSet) Overlaps(from, to time.Time) bool {
	for _, iv := range s {
		if from.Before(iv.To) && to.After(iv.From) {
			return true
		}
	}
	return false
}

// Add inserts the interval keeping the set ordered by From. The caller must
// already have verified non-overlap; Add does not re-check (the availability
// engine is the sole gate).
func (s IntervalSet) Add(iv ReservedInterval) IntervalSet {
	out := append(IntervalSet{}, s...)
	out = append(out, iv)
	sort.Slice(out, func(i, j int) bool { return out[i].From.Before(out[j].From) })
	return out
}

// Remove drops the interval owned by the given booking. Removing a booking
// that holds no interval is a no-op.
func (s IntervalSet) Remove(bookingID primitive.ObjectID) IntervalSet {
	out := make(IntervalSet, 0, len(s))
	for _, iv := range s {
		if iv.BookingID == bookingID {
			continue
		}
		out = append(out, iv)
	}
	return out
}

// Validate checks the pairwise non-overlap invariant and that every entry is
// a well-formed half-open range.
func (s IntervalSet) Validate() error {
	sorted := append(IntervalSet{}, s...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].From.Before(sorted[j].From) })
	for i, iv := range sorted {
		if !iv.To.After(iv.From) {
			return fmt.Errorf("interval %s has non-positive length", iv.BookingID.Hex())
		}
		if i > 0 && iv.From.Before(sorted[i-1].To) {
			return fmt.Errorf("intervals %s and %s overlap",
				sorted[i-1].BookingID.Hex(), iv.BookingID.Hex())
		}
	}
	return nil
}
