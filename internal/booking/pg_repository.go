package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const bookingColumns = `id, patient_id, appointment_type_id, specialist_id, specialist_kind,
	visit_date, visit_time, chief_complaint, notes, price, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking

	err := row.Scan(
		&b.ID,
		&b.PatientID,
		&b.AppointmentTypeID,
		&b.SpecialistID,
		&b.SpecialistKind,
		&b.Date,
		&b.Time,
		&b.ChiefComplaint,
		&b.Notes,
		&b.Price,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &b, nil
}

func (r *PgRepository) CreateBooking(ctx context.Context, b *Booking) (*Booking, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO bookings (id, patient_id, appointment_type_id, specialist_id, specialist_kind,
			visit_date, visit_time, chief_complaint, notes, price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'pending_approval', now(), now())
		RETURNING %s
	`, bookingColumns),
		id, b.PatientID, b.AppointmentTypeID, b.SpecialistID, b.SpecialistKind,
		b.Date, b.Time, b.ChiefComplaint, b.Notes, b.Price)

	return scanBooking(row)
}

func (r *PgRepository) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s
		FROM bookings
		WHERE id = $1
	`, bookingColumns), id)
	return scanBooking(row)
}

func (r *PgRepository) ListBookingsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM bookings
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, bookingColumns), patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *PgRepository) GetActiveBookingForSlot(ctx context.Context, specialistID uuid.UUID, date, timeValue string) (*Booking, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s
		FROM bookings
		WHERE specialist_id = $1
		  AND visit_date = $2
		  AND visit_time = $3
		  AND status IN ('pending_approval', 'approved')
	`, bookingColumns), specialistID, date, timeValue)
	return scanBooking(row)
}

func (r *PgRepository) UpdateBookingStatus(ctx context.Context, id uuid.UUID, from, to BookingStatus) (*Booking, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE bookings
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING %s
	`, bookingColumns), id, to, from)

	return scanBooking(row)
}

func (r *PgRepository) ListApprovedForDate(ctx context.Context, date string) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM bookings
		WHERE visit_date = $1
		  AND status = 'approved'
		ORDER BY visit_time
	`, bookingColumns), date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]Booking, error) {
	var result []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
