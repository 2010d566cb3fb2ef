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

type CatalogRepo interface {
	CreateState(ctx context.Context, state *State) (*State, error)
	ListStates(ctx context.Context) ([]*State, error)
	UpdateState(ctx context.Context, id primitive.ObjectID, updates bson.M) (*State, error)
	DeleteState(ctx context.Context, id primitive.ObjectID) error

	CreateCity(ctx context.Context, city *City) (*City, error)
	ListCities(ctx context.Context, stateID *primitive.ObjectID) ([]*City, error)
	UpdateCity(ctx context.Context, id primitive.ObjectID, updates bson.M) (*City, error)
	DeleteCity(ctx context.Context, id primitive.ObjectID) error
}

func (mdb *MongodbRepo) CreateState(ctx context.Context, state *State) (*State, error) {
	col, err := mdb.GetCollection(ctx, DBName, StatesCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now().UTC()
	if state.ID.IsZero() {
		state.ID = primitive.NewObjectID()
	}
	state.CreatedAt = now
	state.UpdatedAt = now

	if _, err := col.InsertOne(ctx, state); err != nil {
		return nil, fmt.Errorf("error inserting state: %v", err)
	}
	return state, nil
}

func (mdb *MongodbRepo) ListStates(ctx context.Context) ([]*State, error) {
	col, err := mdb.GetCollection(ctx, DBName, StatesCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding states: %v", err)
	}
	defer cursor.Close(ctx)

	var states []*State
	if err := cursor.All(ctx, &states); err != nil {
		return nil, fmt.Errorf("error decoding states: %v", err)
	}
	return states, nil
}

func (mdb *MongodbRepo) UpdateState(ctx context.Context, id primitive.ObjectID, updates bson.M) (*State, error) {
	col, err := mdb.GetCollection(ctx, DBName, StatesCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	updates["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var state State
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": updates}, opts).Decode(&state)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error updating state: %v", err)
	}
	return &state, nil
}

func (mdb *MongodbRepo) DeleteState(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DBName, StatesCollection)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting state: %v", err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (mdb *MongodbRepo) CreateCity(ctx context.Context, city *City) (*City, error) {
	col, err := mdb.GetCollection(ctx, DBName, CitiesCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now().UTC()
	if city.ID.IsZero() {
		city.ID = primitive.NewObjectID()
	}
	city.CreatedAt = now
	city.UpdatedAt = now

	if _, err := col.InsertOne(ctx, city); err != nil {
		return nil, fmt.Errorf("error inserting city: %v", err)
	}
	return city, nil
}

func (mdb *MongodbRepo) ListCities(ctx context.Context, stateID *primitive.ObjectID) ([]*City, error) {
	col, err := mdb.GetCollection(ctx, DBName, CitiesCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{}
	if stateID != nil {
		filter["state_id"] = *stateID
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding cities: %v", err)
	}
	defer cursor.Close(ctx)

	var cities []*City
	if err := cursor.All(ctx, &cities); err != nil {
		return nil, fmt.Errorf("error decoding cities: %v", err)
	}
	return cities, nil
}

func (mdb *MongodbRepo) UpdateCity(ctx context.Context, id primitive.ObjectID, updates bson.M) (*City, error) {
	col, err := mdb.GetCollection(ctx, DBName, CitiesCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	updates["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var city City
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": updates}, opts).Decode(&city)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error updating city: %v", err)
	}
	return &city, nil
}

func (mdb *MongodbRepo) DeleteCity(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DBName, CitiesCollection)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting city: %v", err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
