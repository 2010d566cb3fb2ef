package handlers

import (
	"net/http"

	"github.com/Rishabhmishra45/StaySync-sub001/internal/helpers"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/models"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func CreatePaymentIntent(p *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentClaims(c)
		if !ok {
			return
		}

		var req struct {
			BookingID string  `json:"booking_id" binding:"required"`
			Amount    float64 `json:"amount" binding:"required,gt=0"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		bookingID, err := primitive.ObjectIDFromHex(helpers.StringTrim(req.BookingID))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking_id format"))
			return
		}

		intent, err := p.CreateIntent(c.Request.Context(), claims, bookingID, req.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(intent, "Payment intent created"))
	}
}

func ConfirmPayment(p *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentClaims(c)
		if !ok {
			return
		}

		var req struct {
			PaymentIntentID string `json:"payment_intent_id" binding:"required"`
			BookingID       string `json:"booking_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		bookingID, err := primitive.ObjectIDFromHex(helpers.StringTrim(req.BookingID))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking_id format"))
			return
		}

		booking, err := p.Confirm(c.Request.Context(), claims, helpers.StringTrim(req.PaymentIntentID), bookingID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking.Summary(), "Payment confirmed"))
	}
}

func ListPaymentMethods() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.SuccessResponse(models.PaymentMethods(), ""))
	}
}
