package services

import (
	"context"
	"time"

	"github.com/Rishabhmishra45/StaySync-sub001/internal/cache"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/connect"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/helpers"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const roomListCacheKey = "catalog:rooms"

// DefaultPageLimit is the listing page size handlers fall back to.
const DefaultPageLimit = 10

type RoomService struct {
	roomRepo models.RoomRepo
	cache    *cache.Cache
}

func NewRoomService(roomRepo models.RoomRepo, c *cache.Cache) *RoomService {
	return &RoomService{
		roomRepo: roomRepo,
		cache:    c,
	}
}

func (rs *RoomService) CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	if err := models.Validate.Struct(room); err != nil {
		return nil, models.Validation("invalid room data provided", err)
	}

	// Upload local image references before persisting; the stored document
	// only ever carries CDN URLs.
	if len(room.Images) > 0 {
		uploadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		urls, err := helpers.UploadImages(uploadCtx, connect.Cld, room.Images, helpers.RoomFolder)
		if err != nil {
			return nil, models.Internal("Failed to upload room images", err)
		}
		room.Images = urls
	}

	room.Available = true
	created, err := rs.roomRepo.CreateRoom(ctx, room)
	if err != nil {
		return nil, models.Internal("Failed to create room", err)
	}
	rs.cache.Invalidate(ctx, roomListCacheKey)
	return created, nil
}

func (rs *RoomService) GetRoomByID(ctx context.Context, id primitive.ObjectID) (*models.Room, error) {
	room, err := rs.roomRepo.GetRoomByID(ctx, id)
	if err != nil {
		return nil, models.Internal("Failed to fetch room", err)
	}
	if room == nil {
		return nil, models.NotFound("room")
	}
	return room, nil
}

type roomPage struct {
	Rooms []*models.Room `json:"rooms"`
	Total int            `json:"total"`
}

func (rs *RoomService) ListRooms(ctx context.Context, cityID *primitive.ObjectID, offset, limit int) ([]*models.Room, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, models.InvalidInput("invalid offset or limit")
	}

	// Only the unfiltered default first page is cached; it is the hot path
	// and a single key keeps invalidation exact.
	cacheable := cityID == nil && offset == 0 && limit == DefaultPageLimit
	key := roomListCacheKey
	if cacheable {
		var cached roomPage
		if rs.cache.Get(ctx, key, &cached) {
			return cached.Rooms, cached.Total, nil
		}
	}

	filter := bson.M{}
	if cityID != nil {
		filter["city_id"] = *cityID
	}
	rooms, total, err := rs.roomRepo.ListRooms(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, models.Internal("Failed to list rooms", err)
	}

	if cacheable {
		rs.cache.Set(ctx, key, roomPage{Rooms: rooms, Total: total})
	}
	return rooms, total, nil
}

func (rs *RoomService) UpdateRoom(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.Room, error) {
	if len(updates) == 0 {
		return nil, models.InvalidInput("nothing to update")
	}

	room, err := rs.roomRepo.UpdateRoom(ctx, id, updates)
	if err != nil {
		return nil, models.Internal("Failed to update room", err)
	}
	if room == nil {
		return nil, models.NotFound("room")
	}
	rs.cache.Invalidate(ctx, roomListCacheKey)
	return room, nil
}

func (rs *RoomService) DeleteRoom(ctx context.Context, id primitive.ObjectID) error {
	if err := rs.roomRepo.DeleteRoom(ctx, id); err != nil {
		return models.NotFound("room")
	}
	rs.cache.Invalidate(ctx, roomListCacheKey)
	return nil
}
