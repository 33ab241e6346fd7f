package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicdesk/clinic-booking/internal/api"
	"github.com/clinicdesk/clinic-booking/internal/availability"
	"github.com/clinicdesk/clinic-booking/internal/booking"
	"github.com/clinicdesk/clinic-booking/internal/clinic"
	"github.com/clinicdesk/clinic-booking/internal/config"
	"github.com/clinicdesk/clinic-booking/internal/db"
	"github.com/clinicdesk/clinic-booking/internal/notification"
	redisclient "github.com/clinicdesk/clinic-booking/internal/redis"
)

const version = "0.3.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s push_enabled=%t", cfg.Env, cfg.HTTPPort, cfg.PushEnabled)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}()
	log.Println("connected to Redis")

	clinicRepo := clinic.NewPgRepository(pgPool)
	bookingRepo := booking.NewPgRepository(pgPool)
	notificationRepo := notification.NewPgRepository(pgPool)

	hours := availability.Hours{
		OpenHour:    cfg.ClinicOpenHour,
		CloseHour:   cfg.ClinicCloseHour,
		SlotMinutes: cfg.SlotMinutes,
	}
	resolver := availability.NewResolver(
		availability.NewPgSource(pgPool, hours),
		availability.NewRedisCache(rdb, cfg.SlotCacheTTL),
	)

	// The push channel is an injected capability. When disabled, the
	// publisher and subscriber stay nil and notification feeds serve
	// snapshots only; nothing else changes.
	var publisher notification.Publisher
	var subscriber notification.Subscriber
	if cfg.PushEnabled {
		ps := redisclient.NewPubSub(rdb)
		publisher = notification.NewRedisPublisher(ps, cfg.ChannelNamespace)
		subscriber = notification.NewRedisSubscriber(ps, cfg.ChannelNamespace)
	} else {
		log.Println("push channel disabled, notification feeds are snapshot-only")
	}

	notifications := notification.NewService(notificationRepo, publisher)
	feed := notification.NewFeed(notificationRepo, subscriber, 50)

	store := booking.NewRedisSessionStore(rdb, cfg.SessionTTL)
	locker := redisclient.NewRedisLocker(rdb, cfg.BookingLockTTL)
	bookings := booking.NewService(clinicRepo, bookingRepo, store, resolver, locker, notifications)

	router := api.NewRouter(api.RouterConfig{
		ClinicRepo:    clinicRepo,
		Bookings:      bookings,
		Notifications: notifications,
		Feed:          feed,
		PgPool:        pgPool,
		Redis:         rdb,
		Env:           cfg.Env,
		Version:       version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()

	log.Println("shutting down api-server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}
