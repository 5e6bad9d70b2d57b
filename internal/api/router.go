package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/a5adamaty/booking-platform/internal/api/handler"
	"github.com/a5adamaty/booking-platform/internal/api/middleware"
	"github.com/a5adamaty/booking-platform/internal/core/domain"
	"github.com/a5adamaty/booking-platform/internal/core/service"
	mongodb "github.com/a5adamaty/booking-platform/internal/infrastructure/db/mongo"
	redisdb "github.com/a5adamaty/booking-platform/internal/infrastructure/db/redis"
)

// Options carries the runtime parameters the router needs beyond its
// infrastructure handles.
type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, log zerolog.Logger, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("booking"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	bookingRepo := mongodb.NewBookingRepository(db)
	idemStore := redisdb.NewIdempotencyStore(rdb)

	authService := service.NewAuthService(userRepo, opts.JWTSecret, opts.TokenTTL, log)
	userService := service.NewUserService(userRepo, log)
	bookingService := service.NewBookingService(bookingRepo, userRepo, idemStore, log)

	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)
	bookingHandler := handler.NewBookingHandler(bookingService)

	auth := middleware.Auth(opts.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	authGroup := e.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", authHandler.Me, auth)

	// --- User routes ---
	users := e.Group("/api/users", auth)
	users.GET("", userHandler.List, adminOnly)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.UpdateProfile)
	users.PUT("/:id/role", userHandler.UpdateRole, adminOnly)
	users.DELETE("/:id", userHandler.Delete, adminOnly)

	// --- Booking routes ---
	bookings := e.Group("/api/bookings", auth)
	bookings.GET("", bookingHandler.ListAll, adminOnly)
	bookings.GET("/my-bookings", bookingHandler.ListMine)
	bookings.POST("", bookingHandler.Create)
	bookings.GET("/:id", bookingHandler.Get)
	bookings.PUT("/:id", bookingHandler.Update)
	bookings.PATCH("/:id/status", bookingHandler.UpdateStatus, adminOnly)
	bookings.PATCH("/:id/cancel", bookingHandler.Cancel)
	bookings.DELETE("/:id", bookingHandler.Delete, adminOnly)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
