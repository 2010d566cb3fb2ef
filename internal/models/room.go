package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Room struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CityID      primitive.ObjectID `bson:"city_id,omitempty" json:"city_id,omitempty"`
	Name        string             `bson:"name" json:"name" validate:"required"`
	RoomType    string             `bson:"room_type" json:"room_type"` // e.g. "standard", "deluxe", "suite"
	Description string             `bson:"description" json:"description,omitempty"`
	Images      []string           `bson:"images" json:"images,omitempty"`
	Amenities   []string           `bson:"amenities" json:"amenities,omitempty"`

	PricePerNight float64 `bson:"price_per_night" json:"price_per_night" validate:"required,gt=0"`
	Capacity      int     `bson:"capacity" json:"capacity" validate:"required,gt=0"`

	// Available is a hard offline flag independent of dates; an unavailable
	// room is blocked for every range.
	Available bool `bson:"available" json:"available"`

	// Reserved is the room's ordered reserved-interval set. It is mutated
	// only through the booking lifecycle (reserve/release), never by clients.
	Reserved IntervalSet `bson:"reserved" json:"reserved,omitempty"`

	// Version guards the read-check-reserve sequence: reservations are
	// committed with a conditional update that fails if the room document
	// changed since it was read.
	Version int64 `bson:"version" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// RoomSnapshot is the frozen subset of room facts captured onto a booking at
// creation time. Later edits to the room never alter historical bookings.
type RoomSnapshot struct {
	Name          string   `bson:"name" json:"name"`
	RoomType      string   `bson:"room_type" json:"room_type"`
	PricePerNight float64  `bson:"price_per_night" json:"price_per_night"`
	Images        []string `bson:"images" json:"images,omitempty"`
}

// Snapshot captures the frozen room facts for a new booking.
func (r *Room) Snapshot() RoomSnapshot {
	images := append([]string{}, r.Images...)
	return RoomSnapshot{
		Name:          r.Name,
		RoomType:      r.RoomType,
		PricePerNight: r.PricePerNight,
		Images:        images,
	}
}
