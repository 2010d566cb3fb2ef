package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrStatusConflict is returned when a conditional status transition matched
// no document: the booking moved to a different status concurrently.
var ErrStatusConflict = errors.New("booking status conflict")

type BookingRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) (*Booking, error)
	GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	ListBookingsByUser(ctx context.Context, userID primitive.ObjectID, offset, limit int) ([]*Booking, int, error)
	ListBookings(ctx context.Context, filter bson.M, offset, limit int) ([]*Booking, int, error)

	// TransitionStatus applies updates iff the booking currently sits in one
	// of the expected statuses, making each lifecycle step atomic against
	// concurrent transitions. ErrStatusConflict on a lost race.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from []BookingStatus, updates bson.M) (*Booking, error)
}

func (mdb *MongodbRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if _, err := col.InsertOne(ctx, booking); err != nil {
		return nil, fmt.Errorf("error inserting booking: %v", err)
	}
	return booking, nil
}

func (mdb *MongodbRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var booking Booking
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding booking: %v", err)
	}
	return &booking, nil
}

func (mdb *MongodbRepo) ListBookingsByUser(ctx context.Context, userID primitive.ObjectID, offset, limit int) ([]*Booking, int, error) {
	return mdb.ListBookings(ctx, bson.M{"user_id": userID}, offset, limit)
}

func (mdb *MongodbRepo) ListBookings(ctx context.Context, filter bson.M, offset, limit int) ([]*Booking, int, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsCollection)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}
	if filter == nil {
		filter = bson.M{}
	}

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting bookings: %v", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding bookings: %v", err)
	}
	defer cursor.Close(ctx)

	var bookings []*Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, fmt.Errorf("error decoding bookings: %v", err)
	}
	return bookings, int(total), nil
}

func (mdb *MongodbRepo) TransitionStatus(ctx context.Context, id primitive.ObjectID, from []BookingStatus, updates bson.M) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"_id": id}
	if len(from) > 0 {
		filter["status"] = bson.M{"$in": from}
	}
	updates["updated_at"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking Booking
	err = col.FindOneAndUpdate(ctx, filter, bson.M{"$set": updates}, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrStatusConflict
		}
		return nil, fmt.Errorf("error updating booking: %v", err)
	}
	return &booking, nil
}
