package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clinicdesk/clinic-booking/internal/availability"
	"github.com/clinicdesk/clinic-booking/internal/booking"
	"github.com/clinicdesk/clinic-booking/internal/config"
	"github.com/clinicdesk/clinic-booking/internal/db"
	"github.com/clinicdesk/clinic-booking/internal/notification"
	redisclient "github.com/clinicdesk/clinic-booking/internal/redis"
)

// The reminder worker walks tomorrow's approved bookings once per interval
// and sends each patient a visit reminder, at most one per booking per day.
// The dedup mark lives in Redis so multiple worker replicas stay quiet.

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("reminder-worker starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running reminder worker in env=%s interval=%s", cfg.Env, cfg.WorkerInterval)

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

	bookingRepo := booking.NewPgRepository(pgPool)
	notificationRepo := notification.NewPgRepository(pgPool)

	var publisher notification.Publisher
	if cfg.PushEnabled {
		publisher = notification.NewRedisPublisher(redisclient.NewPubSub(rdb), cfg.ChannelNamespace)
	}
	notifications := notification.NewService(notificationRepo, publisher)

	w := &worker{
		bookings:      bookingRepo,
		notifications: notifications,
		marks:         redisMarks{rdb: rdb},
	}

	// Run once at startup
	runOnce(rootCtx, w)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Println("shutdown signal received, stopping reminder worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, w)
		}
	}
}

func runOnce(ctx context.Context, w *worker) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	if err := w.remindTomorrow(runCtx); err != nil {
		log.Printf("reminder run error: %v", err)
		return
	}
	log.Printf("reminder run complete in %s", time.Since(start))
}

// approvedLister is the slice of the booking repository the worker needs.
type approvedLister interface {
	ListApprovedForDate(ctx context.Context, date string) ([]booking.Booking, error)
}

type notifier interface {
	Notify(ctx context.Context, n *notification.Notification) (*notification.Notification, error)
}

// reminderMarks claims at most one reminder per booking per day.
type reminderMarks interface {
	claim(ctx context.Context, bookingID, date string) (bool, error)
	release(ctx context.Context, bookingID, date string)
}

type worker struct {
	bookings      approvedLister
	notifications notifier
	marks         reminderMarks
}

type redisMarks struct {
	rdb *redis.Client
}

func markKey(bookingID, date string) string {
	return fmt.Sprintf("reminder:%s:%s", bookingID, date)
}

// claim takes the reminder for one booking and day. The key outlives the
// visit date so a restarted worker cannot re-send.
func (m redisMarks) claim(ctx context.Context, bookingID, date string) (bool, error) {
	return m.rdb.SetNX(ctx, markKey(bookingID, date), 1, 48*time.Hour).Result()
}

// release gives the claim back so a failed send retries next run.
func (m redisMarks) release(ctx context.Context, bookingID, date string) {
	if err := m.rdb.Del(ctx, markKey(bookingID, date)).Err(); err != nil {
		log.Printf("reminder mark release failed booking=%s err=%v", bookingID, err)
	}
}

func (w *worker) remindTomorrow(ctx context.Context) error {
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	approved, err := w.bookings.ListApprovedForDate(ctx, tomorrow)
	if err != nil {
		return fmt.Errorf("list approved bookings: %w", err)
	}

	sent := 0
	for _, b := range approved {
		fresh, err := w.marks.claim(ctx, b.ID.String(), tomorrow)
		if err != nil {
			log.Printf("reminder dedup check failed booking=%s err=%v", b.ID, err)
			continue
		}
		if !fresh {
			continue
		}

		_, err = w.notifications.Notify(ctx, &notification.Notification{
			UserID:  b.PatientID,
			Type:    notification.TypeVisitReminder,
			Title:   "Visit reminder",
			Message: fmt.Sprintf("You have an appointment tomorrow at %s.", availability.DisplayLabel(b.Time)),
			Data: map[string]any{
				"booking_id": b.ID.String(),
				"date":       b.Date,
				"time":       b.Time,
			},
		})
		if err != nil {
			log.Printf("reminder notification failed booking=%s err=%v", b.ID, err)
			w.marks.release(ctx, b.ID.String(), tomorrow)
			continue
		}
		sent++
	}

	if sent > 0 {
		log.Printf("sent %d reminders for %s", sent, tomorrow)
	}
	return nil
}
