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

func CreateRoomHandler(r *services.RoomService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var room models.Room
		if err := c.ShouldBindJSON(&room); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		created, err := r.CreateRoom(c.Request.Context(), &room)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Room created successfully"))
	}
}

func ListRooms(r *services.RoomService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := parsePagination(c)
		if !ok {
			return
		}

		var cityID *primitive.ObjectID
		if raw := helpers.StringTrim(c.Query("city_id")); raw != "" {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid city_id format"))
				return
			}
			cityID = &id
		}

		rooms, total, err := r.ListRooms(c.Request.Context(), cityID, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}

		page := (offset / limit) + 1
		c.JSON(http.StatusOK, models.PaginatedResponse(rooms, page, limit, total))
	}
}

func GetRoomByID(r *services.RoomService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		room, err := r.GetRoomByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(room, ""))
	}
}

func UpdateRoom(r *services.RoomService) gin.HandlerFunc {
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

		room, err := r.UpdateRoom(c.Request.Context(), id, bson.M(updates))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(room, "Room updated successfully"))
	}
}

func DeleteRoom(r *services.RoomService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		if err := r.DeleteRoom(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Room deleted successfully"))
	}
}

// RoomAvailability answers the public availability query:
// GET /rooms/:id/availability?checkIn=YYYY-MM-DD&checkOut=YYYY-MM-DD
func RoomAvailability(a *services.AvailabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}

		checkIn, err := helpers.ParseDate(c.Query("checkIn"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		checkOut, err := helpers.ParseDate(c.Query("checkOut"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		available, err := a.CheckRoomAvailability(c.Request.Context(), id, checkIn, checkOut)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"available": available}, ""))
	}
}
