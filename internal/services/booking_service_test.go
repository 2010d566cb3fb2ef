package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Rishabhmishra45/StaySync-sub001/internal/helpers"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repos implementing the same contracts as the Mongo-backed ones,
// including the version check on ReserveInterval and the conditional status
// filter on TransitionStatus.

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[primitive.ObjectID]*models.Room
}

func newFakeRoomRepo(rooms ...*models.Room) *fakeRoomRepo {
	f := &fakeRoomRepo{rooms: make(map[primitive.ObjectID]*models.Room)}
	for _, r := range rooms {
		f.rooms[r.ID] = r
	}
	return f
}

func (f *fakeRoomRepo) CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms[room.ID] = room
	return room, nil
}

func (f *fakeRoomRepo) GetRoomByID(ctx context.Context, id primitive.ObjectID) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return nil, nil
	}
	// Hand out a copy, like a document read would.
	cp := *room
	cp.Reserved = append(models.IntervalSet{}, room.Reserved...)
	return &cp, nil
}

func (f *fakeRoomRepo) ListRooms(ctx context.Context, filter bson.M, offset, limit int) ([]*models.Room, int, error) {
	return nil, 0, nil
}

func (f *fakeRoomRepo) UpdateRoom(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.Room, error) {
	return f.GetRoomByID(ctx, id)
}

func (f *fakeRoomRepo) DeleteRoom(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rooms, id)
	return nil
}

func (f *fakeRoomRepo) ReserveInterval(ctx context.Context, roomID primitive.ObjectID, iv models.ReservedInterval, version int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok || room.Version != version {
		return models.ErrVersionConflict
	}
	room.Reserved = room.Reserved.Add(iv)
	room.Version++
	return nil
}

func (f *fakeRoomRepo) ReleaseInterval(ctx context.Context, roomID, bookingID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return nil
	}
	room.Reserved = room.Reserved.Remove(bookingID)
	room.Version++
	return nil
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[primitive.ObjectID]*models.Booking
	failNext bool
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[primitive.ObjectID]*models.Booking)}
}

func (f *fakeBookingRepo) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return nil, errors.New("insert failed")
	}
	booking.CreatedAt = time.Now().UTC()
	booking.UpdatedAt = booking.CreatedAt
	f.bookings[booking.ID] = booking
	return booking, nil
}

func (f *fakeBookingRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *booking
	return &cp, nil
}

func (f *fakeBookingRepo) ListBookingsByUser(ctx context.Context, userID primitive.ObjectID, offset, limit int) ([]*models.Booking, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (f *fakeBookingRepo) ListBookings(ctx context.Context, filter bson.M, offset, limit int) ([]*models.Booking, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Booking
	for _, b := range f.bookings {
		if status, ok := filter["status"]; ok && string(b.Status) != status {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeBookingRepo) TransitionStatus(ctx context.Context, id primitive.ObjectID, from []models.BookingStatus, updates bson.M) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, models.ErrStatusConflict
	}
	matched := false
	for _, s := range from {
		if booking.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return nil, models.ErrStatusConflict
	}
	applyBookingUpdates(booking, updates)
	cp := *booking
	return &cp, nil
}

func applyBookingUpdates(b *models.Booking, updates bson.M) {
	for k, v := range updates {
		switch k {
		case "status":
			b.Status = v.(models.BookingStatus)
		case "payment_status":
			b.PaymentStatus = v.(models.PaymentStatus)
		case "payment_id":
			b.PaymentID = v.(string)
		case "cancellation_reason":
			b.CancellationReason = v.(string)
		case "checked_in_at":
			t := v.(time.Time)
			b.CheckedInAt = &t
		case "checked_out_at":
			t := v.(time.Time)
			b.CheckedOutAt = &t
		}
	}
	b.UpdatedAt = time.Now().UTC()
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) UpdateUser(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.User, error) {
	return f.users[id], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBookingService(rooms *fakeRoomRepo, bookings *fakeBookingRepo, users *fakeUserRepo) *BookingService {
	return NewBookingService(bookings, rooms, users, nil, testLogger(), BookingConfig{
		CancellationWindow: 24 * time.Hour,
		ReserveMaxRetries:  3,
		TaxRate:            0.10,
		InvoicePrefix:      "INV-",
	})
}

func testUser() *models.User {
	return &models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Asha",
		Email: "asha@example.com",
		Role:  models.RoleCustomer,
	}
}

func futureDate(days int) time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, days)
}

func ownerClaims(u *models.User) *helpers.Claims {
	return &helpers.Claims{UserID: u.ID.Hex(), Role: u.Role, Email: u.Email}
}

func TestCreateBooking(t *testing.T) {
	user := testUser()
	room := testRoom(100, 2)
	rooms := newFakeRoomRepo(room)
	bookings := newFakeBookingRepo()
	svc := newTestBookingService(rooms, bookings, newFakeUserRepo(user))

	booking, err := svc.CreateBooking(context.Background(), user.ID, CreateBookingInput{
		RoomID:        room.ID,
		CheckIn:       futureDate(10),
		CheckOut:      futureDate(13),
		Guests:        models.Guests{Adults: 2},
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	if booking.Status != models.BookingPending || booking.PaymentStatus != models.PaymentPending {
		t.Errorf("new booking should be pending/pending, got %s/%s", booking.Status, booking.PaymentStatus)
	}
	if booking.Nights != 3 || booking.TotalAmount != 300 {
		t.Errorf("got nights=%d total=%v, want 3 and 300", booking.Nights, booking.TotalAmount)
	}
	if booking.RoomSnapshot.PricePerNight != 100 {
		t.Errorf("room snapshot not frozen, price=%v", booking.RoomSnapshot.PricePerNight)
	}

	stored, _ := rooms.GetRoomByID(context.Background(), room.ID)
	if !stored.Reserved.Overlaps(futureDate(10), futureDate(13)) {
		t.Error("reserved interval not recorded on the room")
	}
	if stored.Version != 1 {
		t.Errorf("room version = %d, want 1", stored.Version)
	}
}

func TestCreateBookingOverlapRejected(t *testing.T) {
	user := testUser()
	room := testRoom(100, 4)
	rooms := newFakeRoomRepo(room)
	svc := newTestBookingService(rooms, newFakeBookingRepo(), newFakeUserRepo(user))

	input := CreateBookingInput{
		RoomID:        room.ID,
		CheckIn:       futureDate(10),
		CheckOut:      futureDate(15),
		Guests:        models.Guests{Adults: 1},
		PaymentMethod: "card",
	}
	if _, err := svc.CreateBooking(context.Background(), user.ID, input); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	input.CheckIn = futureDate(12)
	input.CheckOut = futureDate(17)
	_, err := svc.CreateBooking(context.Background(), user.ID, input)
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeConflict {
		t.Fatalf("expected conflict for overlapping dates, got %v", err)
	}

	// Back-to-back turnover at the boundary stays allowed.
	input.CheckIn = futureDate(15)
	input.CheckOut = futureDate(18)
	if _, err := svc.CreateBooking(context.Background(), user.ID, input); err != nil {
		t.Errorf("boundary-touching booking should succeed, got %v", err)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	user := testUser()
	room := testRoom(100, 2)
	svc := newTestBookingService(newFakeRoomRepo(room), newFakeBookingRepo(), newFakeUserRepo(user))
	ctx := context.Background()

	base := CreateBookingInput{
		RoomID:        room.ID,
		CheckIn:       futureDate(10),
		CheckOut:      futureDate(12),
		Guests:        models.Guests{Adults: 1},
		PaymentMethod: "card",
	}

	past := base
	past.CheckIn = futureDate(-2)
	past.CheckOut = futureDate(1)
	if _, err := svc.CreateBooking(ctx, user.ID, past); err == nil {
		t.Error("expected rejection of past check-in")
	}

	noAdults := base
	noAdults.Guests = models.Guests{Adults: 0, Children: 2}
	_, err := svc.CreateBooking(ctx, user.ID, noAdults)
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeValidation {
		t.Errorf("expected validation error when no adults in party, got %v", err)
	}

	tooMany := base
	tooMany.Guests = models.Guests{Adults: 3}
	if _, err := svc.CreateBooking(ctx, user.ID, tooMany); err == nil {
		t.Error("expected rejection when adults exceed capacity")
	}

	badMethod := base
	badMethod.PaymentMethod = "barter"
	if _, err := svc.CreateBooking(ctx, user.ID, badMethod); err == nil {
		t.Error("expected rejection of unsupported payment method")
	}
}

func TestCreateBookingRetriesOnVersionConflict(t *testing.T) {
	user := testUser()
	room := testRoom(100, 2)
	rooms := newFakeRoomRepo(room)
	flaky := &flakyRoomRepo{fakeRoomRepo: rooms, failures: 2}
	svc := newTestBookingService(rooms, newFakeBookingRepo(), newFakeUserRepo(user))
	svc.roomRepo = flaky

	booking, err := svc.CreateBooking(context.Background(), user.ID, CreateBookingInput{
		RoomID:        room.ID,
		CheckIn:       futureDate(5),
		CheckOut:      futureDate(7),
		Guests:        models.Guests{Adults: 1},
		PaymentMethod: "upi",
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if booking == nil || flaky.calls != 3 {
		t.Errorf("expected 3 reserve attempts, got %d", flaky.calls)
	}
}

func TestCreateBookingRetriesExhausted(t *testing.T) {
	user := testUser()
	room := testRoom(100, 2)
	rooms := newFakeRoomRepo(room)
	flaky := &flakyRoomRepo{fakeRoomRepo: rooms, failures: 10}
	svc := newTestBookingService(rooms, newFakeBookingRepo(), newFakeUserRepo(user))
	svc.roomRepo = flaky

	_, err := svc.CreateBooking(context.Background(), user.ID, CreateBookingInput{
		RoomID:        room.ID,
		CheckIn:       futureDate(5),
		CheckOut:      futureDate(7),
		Guests:        models.Guests{Adults: 1},
		PaymentMethod: "card",
	})
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeConflict {
		t.Fatalf("expected conflict after exhausted retries, got %v", err)
	}
}

type flakyRoomRepo struct {
	*fakeRoomRepo
	failures int
	calls    int
}

func (f *flakyRoomRepo) ReserveInterval(ctx context.Context, roomID primitive.ObjectID, iv models.ReservedInterval, version int64) error {
	f.calls++
	if f.calls <= f.failures {
		return models.ErrVersionConflict
	}
	return f.fakeRoomRepo.ReserveInterval(ctx, roomID, iv, version)
}

func TestCreateBookingRollsBackIntervalOnInsertFailure(t *testing.T) {
	user := testUser()
	room := testRoom(100, 2)
	rooms := newFakeRoomRepo(room)
	bookings := newFakeBookingRepo()
	bookings.failNext = true
	svc := newTestBookingService(rooms, bookings, newFakeUserRepo(user))

	_, err := svc.CreateBooking(context.Background(), user.ID, CreateBookingInput{
		RoomID:        room.ID,
		CheckIn:       futureDate(5),
		CheckOut:      futureDate(7),
		Guests:        models.Guests{Adults: 1},
		PaymentMethod: "card",
	})
	if err == nil {
		t.Fatal("expected insert failure to surface")
	}

	stored, _ := rooms.GetRoomByID(context.Background(), room.ID)
	if stored.Reserved.Overlaps(futureDate(5), futureDate(7)) {
		t.Error("interval must not survive a failed booking insert")
	}
}

func TestCancelBookingReleasesInterval(t *testing.T) {
	user := testUser()
	room := testRoom(100, 2)
	rooms := newFakeRoomRepo(room)
	svc := newTestBookingService(rooms, newFakeBookingRepo(), newFakeUserRepo(user))
	ctx := context.Background()

	input := CreateBookingInput{
		RoomID:        room.ID,
		CheckIn:       futureDate(10),
		CheckOut:      futureDate(12),
		Guests:        models.Guests{Adults: 1},
		PaymentMethod: "card",
	}
	booking, err := svc.CreateBooking(ctx, user.ID, input)
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	cancelled, err := svc.CancelBooking(ctx, ownerClaims(user), booking.ID, "change of plans")
	if err != nil {
		t.Fatalf("CancelBooking failed: %v", err)
	}
	if cancelled.Status != models.BookingCancelled || cancelled.CancellationReason != "change of plans" {
		t.Errorf("got status=%s reason=%q", cancelled.Status, cancelled.CancellationReason)
	}

	// The freed dates can be booked again.
	if _, err := svc.CreateBooking(ctx, user.ID, input); err != nil {
		t.Errorf("rebooking freed dates should succeed, got %v", err)
	}
}

func TestCancelConfirmedInsideWindow(t *testing.T) {
	user := testUser()
	room := testRoom(100, 2)
	rooms := newFakeRoomRepo(room)
	bookings := newFakeBookingRepo()
	svc := newTestBookingService(rooms, bookings, newFakeUserRepo(user))
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, user.ID, CreateBookingInput{
		RoomID:        room.ID,
		CheckIn:       time.Now().UTC().Add(6 * time.Hour),
		CheckOut:      futureDate(3),
		Guests:        models.Guests{Adults: 1},
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	// Pending bookings may cancel right up to check-in.
	if _, err := svc.CancelBooking(ctx, ownerClaims(user), booking.ID, "pending cancel"); err != nil {
		t.Fatalf("pending booking inside window should cancel, got %v", err)
	}

	// A confirmed booking 6 hours from check-in sits inside the 24h window.
	second, err := svc.CreateBooking(ctx, user.ID, CreateBookingInput{
		RoomID:        room.ID,
		CheckIn:       time.Now().UTC().Add(6 * time.Hour),
		CheckOut:      futureDate(3),
		Guests:        models.Guests{Adults: 1},
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if _, err := bookings.TransitionStatus(ctx, second.ID,
		[]models.BookingStatus{models.BookingPending},
		bson.M{"status": models.BookingConfirmed}); err != nil {
		t.Fatalf("failed to confirm booking: %v", err)
	}

	_, err = svc.CancelBooking(ctx, ownerClaims(user), second.ID, "too late")
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeConflict {
		t.Fatalf("expected conflict inside cancellation window, got %v", err)
	}
}

func TestCancelForbiddenForOtherUser(t *testing.T) {
	user := testUser()
	room := testRoom(100, 2)
	svc := newTestBookingService(newFakeRoomRepo(room), newFakeBookingRepo(), newFakeUserRepo(user))
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, user.ID, CreateBookingInput{
		RoomID:        room.ID,
		CheckIn:       futureDate(10),
		CheckOut:      futureDate(12),
		Guests:        models.Guests{Adults: 1},
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	stranger := &helpers.Claims{UserID: primitive.NewObjectID().Hex(), Role: "customer"}
	_, err = svc.CancelBooking(ctx, stranger, booking.ID, "not mine")
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeForbidden {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}
}

func TestCheckInIdempotent(t *testing.T) {
	user := testUser()
	room := testRoom(100, 2)
	bookings := newFakeBookingRepo()
	svc := newTestBookingService(newFakeRoomRepo(room), bookings, newFakeUserRepo(user))
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, user.ID, CreateBookingInput{
		RoomID:        room.ID,
		CheckIn:       futureDate(10),
		CheckOut:      futureDate(12),
		Guests:        models.Guests{Adults: 1},
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	// Check-in requires confirmed.
	if _, err := svc.CheckIn(ctx, booking.ID); err == nil {
		t.Error("expected check-in of pending booking to fail")
	}

	if _, err := bookings.TransitionStatus(ctx, booking.ID,
		[]models.BookingStatus{models.BookingPending},
		bson.M{"status": models.BookingConfirmed}); err != nil {
		t.Fatalf("failed to confirm booking: %v", err)
	}

	first, err := svc.CheckIn(ctx, booking.ID)
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	if first.Status != models.BookingCheckedIn || first.CheckedInAt == nil {
		t.Fatalf("got status=%s checkedInAt=%v", first.Status, first.CheckedInAt)
	}

	second, err := svc.CheckIn(ctx, booking.ID)
	if err != nil {
		t.Fatalf("repeated CheckIn must be a no-op, got %v", err)
	}
	if !second.CheckedInAt.Equal(*first.CheckedInAt) {
		t.Error("repeated check-in moved the original timestamp")
	}

	out, err := svc.CheckOut(ctx, booking.ID)
	if err != nil {
		t.Fatalf("CheckOut failed: %v", err)
	}
	if out.Status != models.BookingCheckedOut || out.CheckedOutAt == nil {
		t.Fatalf("got status=%s checkedOutAt=%v", out.Status, out.CheckedOutAt)
	}
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	user := testUser()
	room := testRoom(100, 2)
	svc := newTestBookingService(newFakeRoomRepo(room), newFakeBookingRepo(), newFakeUserRepo(user))
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, user.ID, CreateBookingInput{
		RoomID:        room.ID,
		CheckIn:       futureDate(10),
		CheckOut:      futureDate(12),
		Guests:        models.Guests{Adults: 1},
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	_, err = svc.UpdateStatus(ctx, booking.ID, StatusUpdateInput{Status: string(models.BookingCheckedOut)})
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeConflict {
		t.Fatalf("expected conflict for pending -> checked_out, got %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, booking.ID, StatusUpdateInput{Status: string(models.BookingConfirmed)})
	if err != nil {
		t.Fatalf("legal transition failed: %v", err)
	}
	if updated.Status != models.BookingConfirmed {
		t.Errorf("status = %s, want confirmed", updated.Status)
	}
}

func TestGetInvoiceFromBooking(t *testing.T) {
	user := testUser()
	room := testRoom(120, 2)
	svc := newTestBookingService(newFakeRoomRepo(room), newFakeBookingRepo(), newFakeUserRepo(user))
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, user.ID, CreateBookingInput{
		RoomID:        room.ID,
		CheckIn:       futureDate(10),
		CheckOut:      futureDate(12),
		Guests:        models.Guests{Adults: 1},
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	invoice, err := svc.GetInvoice(ctx, ownerClaims(user), booking.ID)
	if err != nil {
		t.Fatalf("GetInvoice failed: %v", err)
	}
	if invoice.Subtotal != 240 || invoice.Tax != 24 || invoice.Total != 264 {
		t.Errorf("got subtotal=%v tax=%v total=%v, want 240/24/264", invoice.Subtotal, invoice.Tax, invoice.Total)
	}
	if invoice.Guest == nil || invoice.Guest.Email != user.Email {
		t.Error("invoice must carry the frozen guest snapshot")
	}
}
