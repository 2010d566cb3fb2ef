package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/Rishabhmishra45/StaySync-sub001/internal/events"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/helpers"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/models"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/payments"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentService reconciles external payments against bookings. The amount
// is verified before any money moves and again after capture, because the
// processor, not the client, is the source of truth for what was settled.
type PaymentService struct {
	provider    payments.Provider
	bookingRepo models.BookingRepo
	publisher   *events.Publisher
	logger      *slog.Logger
	currency    string
	timeout     time.Duration
}

func NewPaymentService(
	provider payments.Provider,
	bookingRepo models.BookingRepo,
	publisher *events.Publisher,
	logger *slog.Logger,
	currency string,
	timeout time.Duration,
) *PaymentService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PaymentService{
		provider:    provider,
		bookingRepo: bookingRepo,
		publisher:   publisher,
		logger:      logger,
		currency:    currency,
		timeout:     timeout,
	}
}

// MinorUnits converts a decimal currency amount to processor minor units.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

type IntentResult struct {
	PaymentIntentID string  `json:"payment_intent_id"`
	ClientSecret    string  `json:"client_secret"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
}

// CreateIntent opens a payment intent for a booking after verifying the
// client-supplied amount against the frozen booking total. This defends
// against tampered totals before any money moves.
func (ps *PaymentService) CreateIntent(ctx context.Context, claims *helpers.Claims, bookingID primitive.ObjectID, amount float64) (*IntentResult, error) {
	booking, err := ps.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, models.Internal("Failed to fetch booking", err)
	}
	if booking == nil {
		return nil, models.NotFound("booking")
	}
	if !claims.IsAdmin() && !claims.IsOwner(booking.UserID.Hex()) {
		return nil, models.Forbidden("you can only pay for your own bookings")
	}
	if booking.PaymentStatus == models.PaymentCompleted {
		return nil, models.Conflict("booking is already paid")
	}
	if booking.Status != models.BookingPending {
		return nil, models.Conflict("only pending bookings can be paid")
	}
	if MinorUnits(amount) != MinorUnits(booking.TotalAmount) {
		return nil, models.AmountMismatch("amount does not match the booking total")
	}

	callCtx, cancel := context.WithTimeout(ctx, ps.timeout)
	defer cancel()

	intent, err := ps.provider.CreateIntent(callCtx, MinorUnits(booking.TotalAmount), ps.currency, map[string]string{
		"booking_id": booking.ID.Hex(),
		"user_id":    booking.UserID.Hex(),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, models.Timeout("payment processor timed out")
		}
		return nil, models.Internal("Failed to create payment intent", err)
	}

	ps.logger.Info("Payment intent created",
		"booking_id", booking.ID.Hex(),
		"payment_intent_id", intent.ID,
		"amount_minor", intent.AmountMinor,
	)
	return &IntentResult{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          booking.TotalAmount,
		Currency:        ps.currency,
	}, nil
}

// Confirm retrieves the intent from the processor and, only if it succeeded
// for exactly the booking total, advances the booking to confirmed/completed
// and records the payment reference. Any failure leaves the booking
// untouched; a processor timeout is a failure, never a silent success.
func (ps *PaymentService) Confirm(ctx context.Context, claims *helpers.Claims, intentID string, bookingID primitive.ObjectID) (*models.Booking, error) {
	booking, err := ps.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, models.Internal("Failed to fetch booking", err)
	}
	if booking == nil {
		return nil, models.NotFound("booking")
	}
	if !claims.IsAdmin() && !claims.IsOwner(booking.UserID.Hex()) {
		return nil, models.Forbidden("you can only confirm your own payments")
	}
	if booking.PaymentStatus == models.PaymentCompleted {
		if booking.PaymentID == intentID {
			// Duplicate confirmation of the same intent is harmless.
			return booking, nil
		}
		return nil, models.Conflict("booking is already paid with a different payment")
	}

	callCtx, cancel := context.WithTimeout(ctx, ps.timeout)
	defer cancel()

	intent, err := ps.provider.RetrieveIntent(callCtx, intentID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, models.Timeout("payment processor timed out")
		}
		return nil, models.Internal("Failed to retrieve payment intent", err)
	}

	if !intent.Succeeded() {
		return nil, models.PaymentNotSucceeded("payment has not succeeded")
	}
	if intent.AmountMinor != MinorUnits(booking.TotalAmount) {
		ps.logger.Warn("Settled amount does not match booking total",
			"booking_id", booking.ID.Hex(),
			"payment_intent_id", intentID,
			"settled_minor", intent.AmountMinor,
			"expected_minor", MinorUnits(booking.TotalAmount),
		)
		return nil, models.AmountMismatch("settled amount does not match the booking total")
	}

	updated, err := ps.bookingRepo.TransitionStatus(ctx, bookingID,
		[]models.BookingStatus{models.BookingPending},
		bson.M{
			"status":         models.BookingConfirmed,
			"payment_status": models.PaymentCompleted,
			"payment_id":     intentID,
		})
	if errors.Is(err, models.ErrStatusConflict) {
		return nil, models.Conflict("booking status changed during payment confirmation")
	}
	if err != nil {
		return nil, models.Internal("Failed to confirm booking", err)
	}

	ps.logger.Info("Payment reconciled",
		"booking_id", updated.ID.Hex(),
		"payment_intent_id", intentID,
	)
	ps.publisher.Publish(ctx, events.QueueBookingConfirmed, bookingEvent(updated))
	return updated, nil
}
