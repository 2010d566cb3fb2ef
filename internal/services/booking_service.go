package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Rishabhmishra45/StaySync-sub001/internal/events"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/helpers"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingService owns the booking lifecycle: creation behind the
// availability gate, the status state machine, and the side effects that keep
// a room's reserved-interval set consistent with booking transitions.
type BookingService struct {
	bookingRepo models.BookingRepo
	roomRepo    models.RoomRepo
	userRepo    models.UserRepo
	publisher   *events.Publisher
	logger      *slog.Logger

	cancellationWindow time.Duration
	reserveMaxRetries  int
	taxRate            float64
	invoicePrefix      string
}

type BookingConfig struct {
	CancellationWindow time.Duration
	ReserveMaxRetries  int
	TaxRate            float64
	InvoicePrefix      string
}

func NewBookingService(
	bookingRepo models.BookingRepo,
	roomRepo models.RoomRepo,
	userRepo models.UserRepo,
	publisher *events.Publisher,
	logger *slog.Logger,
	cfg BookingConfig,
) *BookingService {
	if cfg.ReserveMaxRetries <= 0 {
		cfg.ReserveMaxRetries = 3
	}
	return &BookingService{
		bookingRepo:        bookingRepo,
		roomRepo:           roomRepo,
		userRepo:           userRepo,
		publisher:          publisher,
		logger:             logger,
		cancellationWindow: cfg.CancellationWindow,
		reserveMaxRetries:  cfg.ReserveMaxRetries,
		taxRate:            cfg.TaxRate,
		invoicePrefix:      cfg.InvoicePrefix,
	}
}

type CreateBookingInput struct {
	RoomID        primitive.ObjectID
	CheckIn       time.Time
	CheckOut      time.Time
	Guests        models.Guests
	PaymentMethod string
}

// CreateBooking runs the read-check-reserve sequence for one room. The
// interval is committed with a version-conditional update, so two concurrent
// requests for overlapping dates cannot both win: the loser re-reads the
// room and re-checks availability before retrying. Reservations on different
// rooms never contend.
func (bs *BookingService) CreateBooking(ctx context.Context, userID primitive.ObjectID, in CreateBookingInput) (*models.Booking, error) {
	if err := ValidateRange(in.CheckIn, in.CheckOut); err != nil {
		return nil, err
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if in.CheckIn.Before(today) {
		return nil, models.InvalidRange("check-in date is in the past")
	}
	if err := models.Validate.Struct(in.Guests); err != nil {
		return nil, models.Validation("at least one adult is required and guest counts cannot be negative", err)
	}
	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return nil, models.InvalidInput("unsupported payment method")
	}

	user, err := bs.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, models.Internal("Failed to fetch user", err)
	}
	if user == nil {
		return nil, models.NotFound("user")
	}

	for attempt := 0; attempt < bs.reserveMaxRetries; attempt++ {
		room, err := bs.roomRepo.GetRoomByID(ctx, in.RoomID)
		if err != nil {
			return nil, models.Internal("Failed to fetch room", err)
		}
		if room == nil {
			return nil, models.NotFound("room")
		}

		available, err := CheckAvailability(room, in.CheckIn, in.CheckOut)
		if err != nil {
			return nil, err
		}
		if !available {
			return nil, models.Conflict("room is not available for the selected dates")
		}
		if !CheckCapacity(room, in.Guests) {
			return nil, models.Conflict("adult guest count exceeds room capacity")
		}

		nights, total, err := Quote(room, in.CheckIn, in.CheckOut)
		if err != nil {
			return nil, err
		}

		booking := &models.Booking{
			ID:            primitive.NewObjectID(),
			UserID:        userID,
			RoomID:        room.ID,
			CheckIn:       in.CheckIn,
			CheckOut:      in.CheckOut,
			Guests:        in.Guests,
			Nights:        nights,
			TotalAmount:   total,
			Status:        models.BookingPending,
			PaymentStatus: models.PaymentPending,
			PaymentMethod: in.PaymentMethod,
			RoomSnapshot:  room.Snapshot(),
			UserSnapshot:  user.Snapshot(),
		}

		err = bs.roomRepo.ReserveInterval(ctx, room.ID, booking.Interval(), room.Version)
		if errors.Is(err, models.ErrVersionConflict) {
			// Another reservation or release touched this room between our
			// read and the commit; re-read and re-check.
			continue
		}
		if err != nil {
			return nil, models.Internal("Failed to reserve room", err)
		}

		created, err := bs.bookingRepo.CreateBooking(ctx, booking)
		if err != nil {
			// The interval must not outlive a booking that was never
			// persisted; roll it back so the room is not left blocked.
			if releaseErr := bs.roomRepo.ReleaseInterval(ctx, room.ID, booking.ID); releaseErr != nil {
				bs.logger.Error("Failed to roll back interval after booking insert failure",
					"booking_id", booking.ID.Hex(), "room_id", room.ID.Hex(), "error", releaseErr)
			}
			return nil, models.Internal("Failed to create booking", err)
		}

		bs.logger.Info("Booking created",
			"booking_id", created.ID.Hex(),
			"room_id", room.ID.Hex(),
			"user_id", userID.Hex(),
			"nights", nights,
			"total_amount", total,
		)
		bs.publisher.Publish(ctx, events.QueueBookingCreated, bookingEvent(created))
		return created, nil
	}

	return nil, models.Conflict("room is being reserved by another request, please try again")
}

// GetBooking fetches one booking, visible only to its owner or an admin.
func (bs *BookingService) GetBooking(ctx context.Context, claims *helpers.Claims, id primitive.ObjectID) (*models.Booking, error) {
	booking, err := bs.bookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, models.Internal("Failed to fetch booking", err)
	}
	if booking == nil {
		return nil, models.NotFound("booking")
	}
	if !claims.IsAdmin() && !claims.IsOwner(booking.UserID.Hex()) {
		return nil, models.Forbidden("you can only view your own bookings")
	}
	return booking, nil
}

func (bs *BookingService) ListMyBookings(ctx context.Context, userID primitive.ObjectID, offset, limit int) ([]*models.Booking, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, models.InvalidInput("invalid offset or limit")
	}
	bookings, total, err := bs.bookingRepo.ListBookingsByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, 0, models.Internal("Failed to list bookings", err)
	}
	return bookings, total, nil
}

func (bs *BookingService) ListBookings(ctx context.Context, status string, offset, limit int) ([]*models.Booking, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, models.InvalidInput("invalid offset or limit")
	}
	filter := bson.M{}
	if status != "" {
		if !models.ValidBookingStatus(models.BookingStatus(status)) {
			return nil, 0, models.InvalidInput("unknown booking status filter")
		}
		filter["status"] = status
	}
	bookings, total, err := bs.bookingRepo.ListBookings(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, models.Internal("Failed to list bookings", err)
	}
	return bookings, total, nil
}

// CancelBooking transitions a pending or confirmed booking to cancelled and
// releases its interval. Confirmed bookings are refused inside the
// cancellation window before check-in; pending ones may cancel any time up to
// check-in. The asymmetry is intentional policy.
func (bs *BookingService) CancelBooking(ctx context.Context, claims *helpers.Claims, id primitive.ObjectID, reason string) (*models.Booking, error) {
	booking, err := bs.bookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, models.Internal("Failed to fetch booking", err)
	}
	if booking == nil {
		return nil, models.NotFound("booking")
	}
	if !claims.IsAdmin() && !claims.IsOwner(booking.UserID.Hex()) {
		return nil, models.Forbidden("you can only cancel your own bookings")
	}

	if booking.Status != models.BookingPending && booking.Status != models.BookingConfirmed {
		return nil, models.Conflict("booking cannot be cancelled in its current status")
	}
	now := time.Now().UTC()
	if !now.Before(booking.CheckIn) {
		return nil, models.Conflict("booking can no longer be cancelled after check-in date")
	}
	if booking.Status == models.BookingConfirmed && booking.CheckIn.Sub(now) < bs.cancellationWindow {
		return nil, models.Conflict("confirmed bookings cannot be cancelled inside the cancellation window")
	}

	updates := bson.M{
		"status":              models.BookingCancelled,
		"cancellation_reason": reason,
	}
	cancelled, err := bs.bookingRepo.TransitionStatus(ctx, id,
		[]models.BookingStatus{models.BookingPending, models.BookingConfirmed}, updates)
	if errors.Is(err, models.ErrStatusConflict) {
		return nil, models.Conflict("booking status changed, please retry")
	}
	if err != nil {
		return nil, models.Internal("Failed to cancel booking", err)
	}

	if err := bs.roomRepo.ReleaseInterval(ctx, cancelled.RoomID, cancelled.ID); err != nil {
		// The booking is cancelled either way; log loudly so the interval can
		// be reconciled.
		bs.logger.Error("Failed to release interval for cancelled booking",
			"booking_id", cancelled.ID.Hex(), "room_id", cancelled.RoomID.Hex(), "error", err)
	}

	bs.logger.Info("Booking cancelled", "booking_id", cancelled.ID.Hex(), "reason", reason)
	bs.publisher.Publish(ctx, events.QueueBookingCancelled, bookingEvent(cancelled))
	return cancelled, nil
}

// CheckIn marks a confirmed booking as checked in. Repeating the call is a
// no-op: the first checked-in timestamp is immutable. The room's interval is
// untouched; only cancellation frees a room.
func (bs *BookingService) CheckIn(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	booking, err := bs.bookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, models.Internal("Failed to fetch booking", err)
	}
	if booking == nil {
		return nil, models.NotFound("booking")
	}
	if booking.CheckedInAt != nil {
		return booking, nil
	}
	if booking.Status != models.BookingConfirmed {
		return nil, models.Conflict("only confirmed bookings can be checked in")
	}

	now := time.Now().UTC()
	updated, err := bs.bookingRepo.TransitionStatus(ctx, id,
		[]models.BookingStatus{models.BookingConfirmed},
		bson.M{"status": models.BookingCheckedIn, "checked_in_at": now})
	if errors.Is(err, models.ErrStatusConflict) {
		// A concurrent admin may have won the same transition; surface the
		// stored state if so.
		current, fetchErr := bs.bookingRepo.GetBookingByID(ctx, id)
		if fetchErr == nil && current != nil && current.CheckedInAt != nil {
			return current, nil
		}
		return nil, models.Conflict("booking status changed, please retry")
	}
	if err != nil {
		return nil, models.Internal("Failed to check in booking", err)
	}
	return updated, nil
}

// CheckOut mirrors CheckIn for the final stay transition.
func (bs *BookingService) CheckOut(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	booking, err := bs.bookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, models.Internal("Failed to fetch booking", err)
	}
	if booking == nil {
		return nil, models.NotFound("booking")
	}
	if booking.CheckedOutAt != nil {
		return booking, nil
	}
	if booking.Status != models.BookingCheckedIn {
		return nil, models.Conflict("only checked-in bookings can be checked out")
	}

	now := time.Now().UTC()
	updated, err := bs.bookingRepo.TransitionStatus(ctx, id,
		[]models.BookingStatus{models.BookingCheckedIn},
		bson.M{"status": models.BookingCheckedOut, "checked_out_at": now})
	if errors.Is(err, models.ErrStatusConflict) {
		current, fetchErr := bs.bookingRepo.GetBookingByID(ctx, id)
		if fetchErr == nil && current != nil && current.CheckedOutAt != nil {
			return current, nil
		}
		return nil, models.Conflict("booking status changed, please retry")
	}
	if err != nil {
		return nil, models.Internal("Failed to check out booking", err)
	}
	return updated, nil
}

type StatusUpdateInput struct {
	Status        string
	PaymentStatus string
}

// UpdateStatus is the admin escape hatch. Status changes are still validated
// against the transition table; payment status may move even after a terminal
// booking status (a refund after cancellation, for instance).
func (bs *BookingService) UpdateStatus(ctx context.Context, id primitive.ObjectID, in StatusUpdateInput) (*models.Booking, error) {
	if in.Status == "" && in.PaymentStatus == "" {
		return nil, models.InvalidInput("nothing to update")
	}

	booking, err := bs.bookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, models.Internal("Failed to fetch booking", err)
	}
	if booking == nil {
		return nil, models.NotFound("booking")
	}

	updates := bson.M{}
	from := []models.BookingStatus{booking.Status}
	now := time.Now().UTC()

	if in.Status != "" {
		target := models.BookingStatus(in.Status)
		if !models.ValidBookingStatus(target) {
			return nil, models.InvalidInput("unknown booking status")
		}
		if !models.CanTransition(booking.Status, target) {
			return nil, models.Conflict("illegal status transition")
		}
		updates["status"] = target
		switch target {
		case models.BookingCheckedIn:
			if booking.CheckedInAt == nil {
				updates["checked_in_at"] = now
			}
		case models.BookingCheckedOut:
			if booking.CheckedOutAt == nil {
				updates["checked_out_at"] = now
			}
		case models.BookingCancelled:
			updates["cancellation_reason"] = "cancelled by admin"
		}
	}
	if in.PaymentStatus != "" {
		target := models.PaymentStatus(in.PaymentStatus)
		if !models.ValidPaymentStatus(target) {
			return nil, models.InvalidInput("unknown payment status")
		}
		updates["payment_status"] = target
	}

	updated, err := bs.bookingRepo.TransitionStatus(ctx, id, from, updates)
	if errors.Is(err, models.ErrStatusConflict) {
		return nil, models.Conflict("booking status changed, please retry")
	}
	if err != nil {
		return nil, models.Internal("Failed to update booking", err)
	}

	if updates["status"] == models.BookingCancelled {
		if err := bs.roomRepo.ReleaseInterval(ctx, updated.RoomID, updated.ID); err != nil {
			bs.logger.Error("Failed to release interval for cancelled booking",
				"booking_id", updated.ID.Hex(), "room_id", updated.RoomID.Hex(), "error", err)
		}
		bs.publisher.Publish(ctx, events.QueueBookingCancelled, bookingEvent(updated))
	}
	return updated, nil
}

// GetInvoice derives the invoice projection for a booking visible to the
// caller.
func (bs *BookingService) GetInvoice(ctx context.Context, claims *helpers.Claims, id primitive.ObjectID) (*models.Invoice, error) {
	booking, err := bs.GetBooking(ctx, claims, id)
	if err != nil {
		return nil, err
	}
	invoice := booking.GenerateInvoice(bs.taxRate, bs.invoicePrefix)
	return &invoice, nil
}

func bookingEvent(b *models.Booking) events.BookingEvent {
	return events.BookingEvent{
		BookingID:   b.ID.Hex(),
		RoomID:      b.RoomID.Hex(),
		UserID:      b.UserID.Hex(),
		Status:      string(b.Status),
		TotalAmount: b.TotalAmount,
		OccurredAt:  time.Now().UTC(),
	}
}
