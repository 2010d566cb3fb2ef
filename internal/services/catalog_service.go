package services

import (
	"context"

	"github.com/Rishabhmishra45/StaySync-sub001/internal/cache"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	stateListCacheKey = "catalog:states"
	cityListCacheKey  = "catalog:cities"
)

// CatalogService handles the geographic taxonomy: states and the cities
// inside them. Plain CRUD with a read-through cache on the public lists.
type CatalogService struct {
	catalogRepo models.CatalogRepo
	cache       *cache.Cache
}

func NewCatalogService(catalogRepo models.CatalogRepo, c *cache.Cache) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		cache:       c,
	}
}

func (cs *CatalogService) CreateState(ctx context.Context, state *models.State) (*models.State, error) {
	if err := models.Validate.Struct(state); err != nil {
		return nil, models.Validation("invalid state data provided", err)
	}
	created, err := cs.catalogRepo.CreateState(ctx, state)
	if err != nil {
		return nil, models.Internal("Failed to create state", err)
	}
	cs.cache.Invalidate(ctx, stateListCacheKey)
	return created, nil
}

func (cs *CatalogService) ListStates(ctx context.Context) ([]*models.State, error) {
	var cached []*models.State
	if cs.cache.Get(ctx, stateListCacheKey, &cached) {
		return cached, nil
	}

	states, err := cs.catalogRepo.ListStates(ctx)
	if err != nil {
		return nil, models.Internal("Failed to list states", err)
	}
	cs.cache.Set(ctx, stateListCacheKey, states)
	return states, nil
}

func (cs *CatalogService) UpdateState(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.State, error) {
	if len(updates) == 0 {
		return nil, models.InvalidInput("nothing to update")
	}
	state, err := cs.catalogRepo.UpdateState(ctx, id, updates)
	if err != nil {
		return nil, models.Internal("Failed to update state", err)
	}
	if state == nil {
		return nil, models.NotFound("state")
	}
	cs.cache.Invalidate(ctx, stateListCacheKey)
	return state, nil
}

func (cs *CatalogService) DeleteState(ctx context.Context, id primitive.ObjectID) error {
	if err := cs.catalogRepo.DeleteState(ctx, id); err != nil {
		return models.NotFound("state")
	}
	cs.cache.Invalidate(ctx, stateListCacheKey, cityListCacheKey)
	return nil
}

func (cs *CatalogService) CreateCity(ctx context.Context, city *models.City) (*models.City, error) {
	if err := models.Validate.Struct(city); err != nil {
		return nil, models.Validation("invalid city data provided", err)
	}
	if city.StateID.IsZero() {
		return nil, models.InvalidInput("state_id is required")
	}
	created, err := cs.catalogRepo.CreateCity(ctx, city)
	if err != nil {
		return nil, models.Internal("Failed to create city", err)
	}
	cs.cache.Invalidate(ctx, cityListCacheKey)
	return created, nil
}

func (cs *CatalogService) ListCities(ctx context.Context, stateID *primitive.ObjectID) ([]*models.City, error) {
	// Only the unfiltered list is cached; per-state listings go to Mongo.
	if stateID == nil {
		var cached []*models.City
		if cs.cache.Get(ctx, cityListCacheKey, &cached) {
			return cached, nil
		}
	}

	cities, err := cs.catalogRepo.ListCities(ctx, stateID)
	if err != nil {
		return nil, models.Internal("Failed to list cities", err)
	}
	if stateID == nil {
		cs.cache.Set(ctx, cityListCacheKey, cities)
	}
	return cities, nil
}

func (cs *CatalogService) UpdateCity(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.City, error) {
	if len(updates) == 0 {
		return nil, models.InvalidInput("nothing to update")
	}
	city, err := cs.catalogRepo.UpdateCity(ctx, id, updates)
	if err != nil {
		return nil, models.Internal("Failed to update city", err)
	}
	if city == nil {
		return nil, models.NotFound("city")
	}
	cs.cache.Invalidate(ctx, cityListCacheKey)
	return city, nil
}

func (cs *CatalogService) DeleteCity(ctx context.Context, id primitive.ObjectID) error {
	if err := cs.catalogRepo.DeleteCity(ctx, id); err != nil {
		return models.NotFound("city")
	}
	cs.cache.Invalidate(ctx, cityListCacheKey)
	return nil
}
