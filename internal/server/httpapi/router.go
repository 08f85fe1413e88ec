package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RouterOptions tune the cross-cutting middleware.
type RouterOptions struct {
	RateLimitPerSec        float64
	RateLimitBurst         int
	IdempotencyTTL         time.Duration
	RequireAuthForBookings bool
}

// NewRouter builds the gin engine serving /api and /healthz.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(h.logger))

	r.GET("/healthz", h.Health)

	ttl := opts.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	idempotency := Idempotency(cache.New(ttl, 10*time.Minute), ttl)

	authenticated := RequireAuthenticated(h.users, h)
	admin := []gin.HandlerFunc{authenticated, RequireAdmin()}

	// Booking changes are open unless the deployment asks for tokens.
	var bookingAuth []gin.HandlerFunc
	if opts.RequireAuthForBookings {
		bookingAuth = append(bookingAuth, authenticated)
	}

	api := r.Group("/api")
	if opts.RateLimitPerSec > 0 {
		api.Use(RateLimiter(NewIPRateLimiter(rate.Limit(opts.RateLimitPerSec), opts.RateLimitBurst)))
	}
	// Login stays out of idempotent replay: a cached token must never
	// answer a different set of credentials.
	{
		api.POST("/login", h.Login)

		api.GET("/devices", h.ListDevices)
		api.GET("/devices/:id", h.GetDevice)
		api.POST("/devices", append(admin, idempotency, h.CreateDevice)...)
		api.PUT("/devices/:id", append(admin, h.UpdateDevice)...)
		api.DELETE("/devices/:id", append(admin, h.DeleteDevice)...)

		api.GET("/bookings", h.ListBookings)
		api.GET("/bookings/:id", h.GetBooking)
		api.POST("/bookings", append(bookingAuth, idempotency, h.CreateBooking)...)
		api.PUT("/bookings/:id", append(bookingAuth, h.UpdateBooking)...)
		api.DELETE("/bookings/:id", append(bookingAuth, h.DeleteBooking)...)

		api.GET("/users", append(admin, h.ListUsers)...)
		api.POST("/users", append(admin, idempotency, h.CreateUser)...)
	}

	return r
}
