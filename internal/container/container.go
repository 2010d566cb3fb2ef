package container

import (
	"log/slog"

	"github.com/Rishabhmishra45/StaySync-sub001/internal/cache"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/config"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/events"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/models"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/payments"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/services"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *slog.Logger
	Cloudinary *cloudinary.Cloudinary

	MongoDBClient *mongo.Client
	RedisClient   *redis.Client
	Publisher     *events.Publisher

	UserService         *services.UserService
	RoomService         *services.RoomService
	CatalogService      *services.CatalogService
	AvailabilityService *services.AvailabilityService
	BookingService      *services.BookingService
	PaymentService      *services.PaymentService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	cloudinary *cloudinary.Cloudinary,
	mongoDBClient *mongo.Client,
	redisClient *redis.Client,
	publisher *events.Publisher,
) *Container {
	// Initialize repositories
	repo := models.MongodbNewRepo(mongoDBClient)
	appCache := cache.New(redisClient, cfg.CacheTTL)
	provider := payments.NewStripeProvider(cfg.StripeSecretKey)

	userService := services.NewUserService(repo, cfg.JWTSecret, cfg.TokenLifetime)
	roomService := services.NewRoomService(repo, appCache)
	catalogService := services.NewCatalogService(repo, appCache)
	availabilityService := services.NewAvailabilityService(repo)
	bookingService := services.NewBookingService(repo, repo, repo, publisher, logger, services.BookingConfig{
		CancellationWindow: cfg.CancellationWindow,
		ReserveMaxRetries:  cfg.ReserveMaxRetries,
		TaxRate:            cfg.TaxRate,
		InvoicePrefix:      cfg.InvoicePrefix,
	})
	paymentService := services.NewPaymentService(provider, repo, publisher, logger, cfg.Currency, cfg.PaymentTimeout)

	return &Container{
		Config:              cfg,
		Logger:              logger,
		Cloudinary:          cloudinary,
		MongoDBClient:       mongoDBClient,
		RedisClient:         redisClient,
		Publisher:           publisher,
		UserService:         userService,
		RoomService:         roomService,
		CatalogService:      catalogService,
		AvailabilityService: availabilityService,
		BookingService:      bookingService,
		PaymentService:      paymentService,
	}
}
