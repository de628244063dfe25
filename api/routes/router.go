package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/parkloop/parkloop-backend/api/controllers"
	webhookcontrollers "github.com/parkloop/parkloop-backend/api/controllers/webhooks"
	"github.com/parkloop/parkloop-backend/api/middleware"
	"github.com/parkloop/parkloop-backend/internal/booking"
	"github.com/parkloop/parkloop-backend/internal/spots"
	"github.com/parkloop/parkloop-backend/internal/users"
	razorpaywebhook "github.com/parkloop/parkloop-backend/internal/webhooks/razorpay"
	"github.com/parkloop/parkloop-backend/pkg/config"
	"github.com/parkloop/parkloop-backend/pkg/db"
	"github.com/parkloop/parkloop-backend/pkg/logger"
	"github.com/parkloop/parkloop-backend/pkg/razorpay"
	"github.com/parkloop/parkloop-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	userService users.Service,
	spotService spots.Service,
	bookingService booking.Service,
	razorpayClient *razorpay.Client,
	webhookService *razorpaywebhook.Service,
	webhookGuard *razorpaywebhook.IdempotencyGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/razorpay", webhookcontrollers.RazorpayWebhook(webhookService, razorpayClient, webhookGuard, logg))
	})

	r.Route("/api/v1/spots", func(r chi.Router) {
		r.Post("/", controllers.CreateSpot(spotService, userService, logg))
		r.Get("/", controllers.ListSpots(spotService, logg))
		r.Get("/{spotId}", controllers.GetSpot(spotService, logg))
		r.Get("/{spotId}/bookings", controllers.ListSpotBookings(bookingService, logg))
	})

	r.Route("/api/v1/bookings", func(r chi.Router) {
		r.Post("/", controllers.CreateBooking(bookingService, userService, logg))
		r.Post("/confirm", controllers.ConfirmPayment(bookingService, logg))
		r.Get("/", controllers.ListBookings(bookingService, logg))
		r.Get("/{bookingId}", controllers.GetBooking(bookingService, logg))
		r.Delete("/{bookingId}", controllers.CancelBooking(bookingService, logg))
		r.Put("/{bookingId}/check-in", controllers.CheckIn(bookingService, logg))
		r.Put("/{bookingId}/check-out", controllers.CheckOut(bookingService, logg))
	})

	r.Route("/api/v1/owners", func(r chi.Router) {
		r.Get("/{ownerId}/bookings", controllers.ListOwnerBookings(bookingService, logg))
	})

	return r
}
