package handlers

import (
	"net/http"

	"github.com/Rishabhmishra45/StaySync-sub001/internal/helpers"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/models"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func CreateState(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var state models.State
		if err := c.ShouldBindJSON(&state); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		created, err := cs.CreateState(c.Request.Context(), &state)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "State created successfully"))
	}
}

func ListStates(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		states, err := cs.ListStates(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(states, ""))
	}
}

func UpdateState(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		var updates map[string]interface{}
		if err := c.ShouldBindJSON(&updates); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		state, err := cs.UpdateState(c.Request.Context(), id, bson.M(updates))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(state, "State updated successfully"))
	}
}

func DeleteState(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		if err := cs.DeleteState(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "State deleted successfully"))
	}
}

func CreateCity(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var city models.City
		if err := c.ShouldBindJSON(&city); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		created, err := cs.CreateCity(c.Request.Context(), &city)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "City created successfully"))
	}
}

func ListCities(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var stateID *primitive.ObjectID
		if raw := helpers.StringTrim(c.Query("state_id")); raw != "" {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid state_id format"))
				return
			}
			stateID = &id
		}

		cities, err := cs.ListCities(c.Request.Context(), stateID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(cities, ""))
	}
}

func UpdateCity(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		var updates map[string]interface{}
		if err := c.ShouldBindJSON(&updates); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		city, err := cs.UpdateCity(c.Request.Context(), id, bson.M(updates))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(city, "City updated successfully"))
	}
}

func DeleteCity(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		if err := cs.DeleteCity(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "City deleted successfully"))
	}
}
