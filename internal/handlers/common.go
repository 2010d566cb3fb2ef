package handlers

import (
	"net/http"
	"strconv"

	"github.com/Rishabhmishra45/StaySync-sub001/internal/helpers"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/models"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentClaims pulls the resolved identity out of the gin context.
func currentClaims(c *gin.Context) (*helpers.Claims, bool) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
		return nil, false
	}
	claims, ok := user.(*helpers.Claims)
	if !ok {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse("invalid user claims"))
		return nil, false
	}
	return claims, true
}

// respondError maps a typed domain error onto its status code and the
// uniform envelope. Unexpected errors become a generic 500.
func respondError(c *gin.Context, err error) {
	appErr := models.AsAppError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(appErr.HTTPStatus, models.ErrorResponse("Internal server error"))
		return
	}
	c.JSON(appErr.HTTPStatus, models.ErrorResponse(appErr.Message))
}

func parseObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	raw := helpers.StringTrim(c.Param(param))
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid id format"))
		return primitive.NilObjectID, false
	}
	return id, true
}

func parsePagination(c *gin.Context) (offset, limit int, ok bool) {
	limitStr := c.DefaultQuery("limit", "10")
	offsetStr := c.DefaultQuery("offset", "0")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid limit parameter"))
		return 0, 0, false
	}
	offset, err = strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid offset parameter"))
		return 0, 0, false
	}
	return offset, limit, true
}
