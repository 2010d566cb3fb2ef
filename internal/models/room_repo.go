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

// ErrVersionConflict is returned when a conditional room update finds the
// document's version changed since it was read. Callers re-read and retry.
var ErrVersionConflict = errors.New("room version conflict")

type RoomRepo interface {
	CreateRoom(ctx context.Context, room *Room) (*Room, error)
	GetRoomByID(ctx context.Context, id primitive.ObjectID) (*Room, error)
	ListRooms(ctx context.Context, filter bson.M, offset, limit int) ([]*Room, int, error)
	UpdateRoom(ctx context.Context, id primitive.ObjectID, updates bson.M) (*Room, error)
	DeleteRoom(ctx context.Context, id primitive.ObjectID) error

	// ReserveInterval appends an interval to the room's reserved set iff the
	// room document still carries the given version. ErrVersionConflict means
	// another reservation or release won the race; re-read and retry.
	ReserveInterval(ctx context.Context, roomID primitive.ObjectID, iv ReservedInterval, version int64) error

	// ReleaseInterval removes the interval owned by the booking. A single
	// $pull is atomic with respect to concurrent reservations and idempotent
	// when the booking holds no interval.
	ReleaseInterval(ctx context.Context, roomID, bookingID primitive.ObjectID) error
}

func (mdb *MongodbRepo) CreateRoom(ctx context.Context, room *Room) (*Room, error) {
	col, err := mdb.GetCollection(ctx, DBName, RoomsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now().UTC()
	if room.ID.IsZero() {
		room.ID = primitive.NewObjectID()
	}
	if room.Reserved == nil {
		room.Reserved = IntervalSet{}
	}
	room.Version = 0
	room.CreatedAt = now
	room.UpdatedAt = now

	if _, err := col.InsertOne(ctx, room); err != nil {
		return nil, fmt.Errorf("error inserting room: %v", err)
	}
	return room, nil
}

func (mdb *MongodbRepo) GetRoomByID(ctx context.Context, id primitive.ObjectID) (*Room, error) {
	col, err := mdb.GetCollection(ctx, DBName, RoomsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var room Room
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding room: %v", err)
	}
	return &room, nil
}

func (mdb *MongodbRepo) ListRooms(ctx context.Context, filter bson.M, offset, limit int) ([]*Room, int, error) {
	col, err := mdb.GetCollection(ctx, DBName, RoomsCollection)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}
	if filter == nil {
		filter = bson.M{}
	}

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting rooms: %v", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding rooms: %v", err)
	}
	defer cursor.Close(ctx)

	var rooms []*Room
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, 0, fmt.Errorf("error decoding rooms: %v", err)
	}
	return rooms, int(total), nil
}

func (mdb *MongodbRepo) UpdateRoom(ctx context.Context, id primitive.ObjectID, updates bson.M) (*Room, error) {
	col, err := mdb.GetCollection(ctx, DBName, RoomsCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	// Reserved set and version are owned by the booking lifecycle; plain
	// updates must never touch them.
	delete(updates, "reserved")
	delete(updates, "version")
	updates["updated_at"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var room Room
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": updates}, opts).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error updating room: %v", err)
	}
	return &room, nil
}

func (mdb *MongodbRepo) DeleteRoom(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DBName, RoomsCollection)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting room: %v", err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (mdb *MongodbRepo) ReserveInterval(ctx context.Context, roomID primitive.ObjectID, iv ReservedInterval, version int64) error {
	col, err := mdb.GetCollection(ctx, DBName, RoomsCollection)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"_id": roomID, "version": version}
	update := bson.M{
		"$push": bson.M{"reserved": bson.M{
			"$each": []ReservedInterval{iv},
			"$sort": bson.M{"from": 1},
		}},
		"$inc": bson.M{"version": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error reserving interval: %v", err)
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (mdb *MongodbRepo) ReleaseInterval(ctx context.Context, roomID, bookingID primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DBName, RoomsCollection)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"_id": roomID}
	update := bson.M{
		"$pull": bson.M{"reserved": bson.M{"booking_id": bookingID}},
		"$inc":  bson.M{"version": 1},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	if _, err := col.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("error releasing interval: %v", err)
	}
	return nil
}
