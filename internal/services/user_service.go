package services

import (
	"context"
	"time"

	"github.com/Rishabhmishra45/StaySync-sub001/internal/helpers"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo      models.UserRepo
	jwtSecret     string
	tokenLifetime time.Duration
}

func NewUserService(userRepo models.UserRepo, jwtSecret string, tokenLifetime time.Duration) *UserService {
	return &UserService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		tokenLifetime: tokenLifetime,
	}
}

func (us *UserService) Register(ctx context.Context, user *models.User) (*models.User, error) {
	if err := models.Validate.Struct(user); err != nil {
		return nil, models.Validation("invalid user data provided", err)
	}
	if !helpers.IsPasswordStrong(user.Password) {
		return nil, models.InvalidInput("password is not strong enough")
	}

	existing, err := us.userRepo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return nil, models.Internal("Failed to check existing user", err)
	}
	if existing != nil {
		return nil, models.Conflict("email already in use")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.Internal("Failed to hash password", err)
	}
	user.Password = string(hashed)
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}

	created, err := us.userRepo.CreateUser(ctx, user)
	if err != nil {
		return nil, models.Internal("Failed to create user", err)
	}
	return created, nil
}

// Authenticate verifies credentials and issues an access token.
func (us *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, "", models.InvalidInput("invalid email format")
	}
	if err := models.Validate.Var(password, "required,min=8"); err != nil {
		return nil, "", models.InvalidInput("invalid password format")
	}

	user, err := us.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", models.Internal("Failed to fetch user", err)
	}
	if user == nil {
		return nil, "", models.Unauthorized("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", models.Unauthorized("invalid email or password")
	}

	token, err := helpers.IssueToken(us.jwtSecret, user.ID.Hex(), user.Role, user.Email, us.tokenLifetime)
	if err != nil {
		return nil, "", models.Internal("Failed to issue token", err)
	}
	return user, token, nil
}

func (us *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := us.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, models.Internal("Failed to fetch user", err)
	}
	if user == nil {
		return nil, models.NotFound("user")
	}
	return user, nil
}

func (us *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.User, error) {
	if len(updates) == 0 {
		return nil, models.InvalidInput("nothing to update")
	}
	// Password and email changes have their own flows; profile updates only
	// touch display fields.
	allowed := map[string]bool{"name": true, "phone_number": true, "avatar_url": true}
	for key := range updates {
		if !allowed[key] {
			delete(updates, key)
		}
	}
	if len(updates) == 0 {
		return nil, models.InvalidInput("no updatable fields provided")
	}

	user, err := us.userRepo.UpdateUser(ctx, id, updates)
	if err != nil {
		return nil, models.Internal("Failed to update user", err)
	}
	if user == nil {
		return nil, models.NotFound("user")
	}
	return user, nil
}
