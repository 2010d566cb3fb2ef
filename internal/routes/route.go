package routes

import (
	"github.com/Rishabhmishra45/StaySync-sub001/internal/container"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/handlers"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	if container.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	// API version 1
	v1 := r.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "staysync-api",
			})
		})

		// public routes
		v1.POST("/auth/register", handlers.Register(container.UserService))
		v1.POST("/auth/login", handlers.Login(container.UserService))
		v1.POST("/auth/logout", handlers.Logout())

		// public catalog browsing
		v1.GET("/states", handlers.ListStates(container.CatalogService))
		v1.GET("/cities", handlers.ListCities(container.CatalogService))
		v1.GET("/rooms", handlers.ListRooms(container.RoomService))
		v1.GET("/rooms/:id", handlers.GetRoomByID(container.RoomService))
		v1.GET("/rooms/:id/availability", handlers.RoomAvailability(container.AvailabilityService))
		v1.GET("/payment-methods", handlers.ListPaymentMethods())
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.Config.JWTSecret, container.Logger))

	protected.GET("/auth/profile", handlers.Profile(container.UserService))

	userRoutes := protected.Group("/users")
	{
		userRoutes.GET("/:id", handlers.GetUser(container.UserService))
		userRoutes.PATCH("/:id", handlers.UpdateUser(container.UserService))
	}

	bookingRoutes := protected.Group("/bookings")
	{
		bookingRoutes.POST("", handlers.CreateBooking(container.BookingService))
		bookingRoutes.GET("/my", handlers.ListMyBookings(container.BookingService))
		bookingRoutes.GET("/:id", handlers.GetBooking(container.BookingService))
		bookingRoutes.GET("/:id/invoice", handlers.GetInvoice(container.BookingService))
		bookingRoutes.DELETE("/:id", handlers.CancelBooking(container.BookingService))
	}

	paymentRoutes := protected.Group("/payments")
	{
		paymentRoutes.POST("/create-intent", handlers.CreatePaymentIntent(container.PaymentService))
		paymentRoutes.POST("/confirm", handlers.ConfirmPayment(container.PaymentService))
	}

	admin := protected.Group("/")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/bookings", handlers.ListBookings(container.BookingService))
		admin.PUT("/bookings/:id", handlers.UpdateBookingStatus(container.BookingService))
		admin.POST("/bookings/:id/check-in", handlers.CheckInBooking(container.BookingService))
		admin.POST("/bookings/:id/check-out", handlers.CheckOutBooking(container.BookingService))

		admin.POST("/rooms", handlers.CreateRoomHandler(container.RoomService))
		admin.PATCH("/rooms/:id", handlers.UpdateRoom(container.RoomService))
		admin.DELETE("/rooms/:id", handlers.DeleteRoom(container.RoomService))

		admin.POST("/states", handlers.CreateState(container.CatalogService))
		admin.PATCH("/states/:id", handlers.UpdateState(container.CatalogService))
		admin.DELETE("/states/:id", handlers.DeleteState(container.CatalogService))

		admin.POST("/cities", handlers.CreateCity(container.CatalogService))
		admin.PATCH("/cities/:id", handlers.UpdateCity(container.CatalogService))
		admin.DELETE("/cities/:id", handlers.DeleteCity(container.CatalogService))
	}

	return r
}
