package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rishabhmishra45/StaySync-sub001/internal/helpers"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func newTestUserService(users *fakeUserRepo) *UserService {
	return NewUserService(users, testSecret, time.Hour)
}

func TestRegisterHashesPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestUserService(users)

	created, err := svc.Register(context.Background(), &models.User{
		ID:       primitive.NewObjectID(),
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "Sup3rSecret!",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if created.Password == "Sup3rSecret!" {
		t.Error("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("Sup3rSecret!")); err != nil {
		t.Errorf("stored hash does not match original password: %v", err)
	}
	if created.Role != models.RoleCustomer {
		t.Errorf("default role = %s, want customer", created.Role)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc := newTestUserService(newFakeUserRepo())

	for _, password := range []string{"short1!", "alllowercase1!", "NOUPPER no", "NoSpecials123"} {
		_, err := svc.Register(context.Background(), &models.User{
			ID:       primitive.NewObjectID(),
			Name:     "Asha",
			Email:    "asha@example.com",
			Password: password,
		})
		if err == nil {
			t.Errorf("expected weak password %q to be rejected", password)
		}
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestUserService(users)
	ctx := context.Background()

	first := &models.User{ID: primitive.NewObjectID(), Name: "Asha", Email: "asha@example.com", Password: "Sup3rSecret!"}
	if _, err := svc.Register(ctx, first); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	_, err := svc.Register(ctx, &models.User{
		ID: primitive.NewObjectID(), Name: "Other", Email: "asha@example.com", Password: "An0therSecret!",
	})
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeConflict {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestUserService(users)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &models.User{
		ID: primitive.NewObjectID(), Name: "Asha", Email: "asha@example.com", Password: "Sup3rSecret!",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, token, err := svc.Authenticate(ctx, "asha@example.com", "Sup3rSecret!")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Error("authenticated as the wrong user")
	}

	claims, err := helpers.ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("issued token failed validation: %v", err)
	}
	if claims.UserID != registered.ID.Hex() || claims.Role != models.RoleCustomer {
		t.Errorf("claims uid=%s role=%s", claims.UserID, claims.Role)
	}

	// Wrong password and unknown email produce the same unauthorized error.
	if _, _, err := svc.Authenticate(ctx, "asha@example.com", "WrongPass1!"); err == nil {
		t.Error("expected failure for wrong password")
	}
	if _, _, err := svc.Authenticate(ctx, "nobody@example.com", "Sup3rSecret!"); err == nil {
		t.Error("expected failure for unknown email")
	}
}

func TestUpdateProfileFiltersFields(t *testing.T) {
	user := testUser()
	users := newFakeUserRepo(user)
	svc := newTestUserService(users)

	_, err := svc.UpdateProfile(context.Background(), user.ID, map[string]interface{}{
		"role":     "admin",
		"password": "hijack",
	})
	if err == nil {
		t.Error("expected error when only protected fields are supplied")
	}

	if _, err := svc.UpdateProfile(context.Background(), user.ID, map[string]interface{}{
		"name": "New Name",
	}); err != nil {
		t.Errorf("display-field update failed: %v", err)
	}
}
