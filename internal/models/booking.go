package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingCheckedIn  BookingStatus = "checked_in"
	BookingCheckedOut BookingStatus = "checked_out"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// statusTransitions is the central transition table for booking status.
// Anything not listed is an illegal transition and is rejected rather than
// trusting the caller.
var statusTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingConfirmed, BookingCancelled},
	BookingConfirmed:  {BookingCheckedIn, BookingCancelled},
	BookingCheckedIn:  {BookingCheckedOut},
	BookingCheckedOut: {},
	BookingCancelled:  {},
}

// CanTransition reports whether moving from one booking status to another is
// legal. Self-transitions are not legal; idempotent operations are handled at
// the lifecycle level (duplicate check-in is a no-op, not a transition).
func CanTransition(from, to BookingStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ValidBookingStatus(s BookingStatus) bool {
	_, ok := statusTransitions[s]
	return ok
}

func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Guests breaks a party down by age band. Only adults count against room
// capacity; children and infants are tracked for the record but are not
// capacity-constrained (documented policy).
type Guests struct {
	Adults   int `bson:"adults" json:"adults" validate:"required,gte=1"`
	Children int `bson:"children" json:"children" validate:"gte=0"`
	Infants  int `bson:"infants" json:"infants" validate:"gte=0"`
}

// UserSnapshot freezes the guest facts shown on invoices at creation time.
type UserSnapshot struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

type Booking struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	RoomID primitive.ObjectID `bson:"room_id" json:"room_id"`

	CheckIn  time.Time `bson:"check_in" json:"check_in"`
	CheckOut time.Time `bson:"check_out" json:"check_out"`
	Guests   Guests    `bson:"guests" json:"guests"`

	// Nights and TotalAmount are derived at creation time and frozen; a later
	// room price change never alters an existing booking.
	Nights      int     `bson:"nights" json:"nights"`
	TotalAmount float64 `bson:"total_amount" json:"total_amount"`

	Status        BookingStatus `bson:"status" json:"status"`
	PaymentStatus PaymentStatus `bson:"payment_status" json:"payment_status"`
	PaymentMethod string        `bson:"payment_method" json:"payment_method"`
	PaymentID     string        `bson:"payment_id,omitempty" json:"payment_id,omitempty"`

	CancellationReason string     `bson:"cancellation_reason,omitempty" json:"cancellation_reason,omitempty"`
	CheckedInAt        *time.Time `bson:"checked_in_at,omitempty" json:"checked_in_at,omitempty"`
	CheckedOutAt       *time.Time `bson:"checked_out_at,omitempty" json:"checked_out_at,omitempty"`

	RoomSnapshot RoomSnapshot  `bson:"room_snapshot" json:"room_snapshot"`
	UserSnapshot *UserSnapshot `bson:"user_snapshot,omitempty" json:"user_snapshot,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Interval returns the reserved-date entry this booking owns on its room.
func (b *Booking) Interval() ReservedInterval {
	return ReservedInterval{From: b.CheckIn, To: b.CheckOut, BookingID: b.ID}
}

// NightsBetween computes the calendar-day ceiling of a half-open stay. A
// partial day counts as a full night so a client's pre-quote always equals
// the persisted amount.
func NightsBetween(checkIn, checkOut time.Time) int {
	hours := checkOut.Sub(checkIn).Hours()
	nights := int(hours / 24)
	if hours > float64(nights)*24 {
		nights++
	}
	return nights
}
