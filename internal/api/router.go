package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/clinicdesk/clinic-booking/internal/booking"
	"github.com/clinicdesk/clinic-booking/internal/clinic"
	"github.com/clinicdesk/clinic-booking/internal/notification"
)

type RouterConfig struct {
	ClinicRepo    clinic.Repository
	Bookings      *booking.Service
	Notifications *notification.Service
	Feed          *notification.Feed
	PgPool        *pgxpool.Pool
	Redis         *redis.Client
	Env           string
	Version       string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Reference data and eligibility
	r.Get("/booking/options", bookingOptionsHandler(cfg.ClinicRepo))
	r.Get("/booking/specialists", eligibleSpecialistsHandler(cfg.ClinicRepo))

	// Booking form sessions
	r.Route("/booking/sessions", func(r chi.Router) {
		r.Post("/", startSessionHandler(cfg.Bookings))
		r.Get("/{id}", getSessionHandler(cfg.Bookings))
		r.Put("/{id}/type", selectTypeHandler(cfg.Bookings))
		r.Put("/{id}/specialist", selectSpecialistHandler(cfg.Bookings))
		r.Put("/{id}/date", selectDateHandler(cfg.Bookings))
		r.Put("/{id}/time", selectTimeHandler(cfg.Bookings))
		r.Put("/{id}/details", sessionDetailsHandler(cfg.Bookings))
		r.Post("/{id}/submit", submitSessionHandler(cfg.Bookings))
	})

	// Submitted bookings
	r.Get("/bookings", listBookingsHandler(cfg.Bookings))
	r.Get("/bookings/{id}", getBookingHandler(cfg.Bookings))
	r.Post("/bookings/{id}/approve", approveBookingHandler(cfg.Bookings))
	r.Post("/bookings/{id}/decline", declineBookingHandler(cfg.Bookings))

	// Notifications
	r.Get("/notifications", notificationsSnapshotHandler(cfg.Notifications))
	r.Post("/notifications/{id}/read", markNotificationReadHandler(cfg.Notifications))
	r.Get("/notifications/feed", notificationFeedHandler(cfg.Feed))

	return r
}
