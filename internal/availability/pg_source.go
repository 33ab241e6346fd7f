package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Hours describes the clinic's bookable grid: slots every SlotMinutes from
// OpenHour up to but excluding CloseHour.
type Hours struct {
	OpenHour    int
	CloseHour   int
	SlotMinutes int
}

// PgSource derives free slots from the clinic hours grid minus the times
// already taken by pending or approved bookings for that specialist and
// date. Declined bookings release their time.
type PgSource struct {
	pool  *pgxpool.Pool
	hours Hours
}

func NewPgSource(pool *pgxpool.Pool, hours Hours) *PgSource {
	return &PgSource{pool: pool, hours: hours}
}

func (s *PgSource) FreeSlots(ctx context.Context, specialistID uuid.UUID, date string) ([]TimeSlot, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT visit_time
		FROM bookings
		WHERE specialist_id = $1
		  AND visit_date = $2
		  AND status IN ('pending_approval', 'approved')
	`, specialistID, date)
	if err != nil {
		return nil, fmt.Errorf("load booked times: %w", err)
	}
	defer rows.Close()

	taken := make(map[string]bool)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		taken[t] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var slots []TimeSlot
	for _, value := range GridTimes(s.hours) {
		if taken[value] {
			continue
		}
		slots = append(slots, TimeSlot{Value: value, Label: DisplayLabel(value)})
	}

	return slots, nil
}

// GridTimes enumerates the clinic's slot grid as "HH:MM" values.
func GridTimes(h Hours) []string {
	var values []string
	start := h.OpenHour * 60
	end := h.CloseHour * 60
	for m := start; m < end; m += h.SlotMinutes {
		values = append(values, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return values
}

// DisplayLabel renders a slot value the way the form shows it, "2:30 PM".
// A value that does not parse falls back to itself.
func DisplayLabel(value string) string {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return value
	}
	return t.Format("3:04 PM")
}
