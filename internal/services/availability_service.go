package services

import (
	"context"
	"time"

	"github.com/Rishabhmishra45/StaySync-sub001/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AvailabilityService is the single gate deciding whether a room is free for
// a candidate date range and what a stay costs. Booking creation uses exactly
// the same checks and math, so a client's pre-quote equals the persisted
// amount.
type AvailabilityService struct {
	roomRepo models.RoomRepo
}

func NewAvailabilityService(roomRepo models.RoomRepo) *AvailabilityService {
	return &AvailabilityService{
		roomRepo: roomRepo,
	}
}

// ValidateRange enforces the half-open date-range preconditions shared by
// availability queries and booking creation.
func ValidateRange(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return models.InvalidRange("check-in and check-out dates are required")
	}
	if !checkOut.After(checkIn) {
		return models.InvalidRange("check-out must be after check-in")
	}
	return nil
}

// CheckAvailability reports whether the room is free for [checkIn, checkOut).
// A room that is flagged unavailable is blocked for every range, independent
// of its reserved intervals.
func CheckAvailability(room *models.Room, checkIn, checkOut time.Time) (bool, error) {
	if err := ValidateRange(checkIn, checkOut); err != nil {
		return false, err
	}
	if !room.Available {
		return false, nil
	}
	if room.Reserved.Overlaps(checkIn, checkOut) {
		return false, nil
	}
	return true, nil
}

// Quote computes nights and the frozen total for a stay. Nights is the
// calendar-day ceiling, so partial days round up.
func Quote(room *models.Room, checkIn, checkOut time.Time) (int, float64, error) {
	if err := ValidateRange(checkIn, checkOut); err != nil {
		return 0, 0, err
	}
	nights := models.NightsBetween(checkIn, checkOut)
	return nights, float64(nights) * room.PricePerNight, nil
}

// CheckCapacity enforces the occupancy policy: only adults count against room
// capacity; children and infants are recorded but unconstrained.
func CheckCapacity(room *models.Room, guests models.Guests) bool {
	return guests.Adults <= room.Capacity
}

// CheckRoomAvailability answers the public availability query for one room.
func (as *AvailabilityService) CheckRoomAvailability(ctx context.Context, roomID primitive.ObjectID, checkIn, checkOut time.Time) (bool, error) {
	room, err := as.roomRepo.GetRoomByID(ctx, roomID)
	if err != nil {
		return false, models.Internal("Failed to fetch room", err)
	}
	if room == nil {
		return false, models.NotFound("room")
	}
	return CheckAvailability(room, checkIn, checkOut)
}
