package clinic

import (
	"context"
	"errors"

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

// Helpers

func scanAppointmentType(row pgx.Row) (*AppointmentType, error) {
	var t AppointmentType

	err := row.Scan(
		&t.ID,
		&t.Code,
		&t.Name,
		&t.BasePrice,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentTypeNotFound
		}
		return nil, err
	}

	return &t, nil
}

func scanSpecialist(row pgx.Row) (*Specialist, error) {
	var s Specialist
	var specialization *string

	err := row.Scan(
		&s.ID,
		&s.Name,
		&specialization,
		&s.ConsultationFee,
		&s.IsAvailable,
		&s.Kind,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSpecialistNotFound
		}
		return nil, err
	}

	s.Specialization = specialization
	return &s, nil
}

// Interface methods

func (r *PgRepository) ListAppointmentTypes(ctx context.Context) ([]AppointmentType, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, code, name, base_price, created_at, updated_at
		FROM appointment_types
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AppointmentType
	for rows.Next() {
		t, err := scanAppointmentType(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetAppointmentType(ctx context.Context, id uuid.UUID) (*AppointmentType, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, code, name, base_price, created_at, updated_at
		FROM appointment_types
		WHERE id = $1
	`, id)
	return scanAppointmentType(row)
}

func (r *PgRepository) ListSpecialists(ctx context.Context, kind SpecialistKind) ([]Specialist, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, specialization, consultation_fee, is_available, kind, created_at, updated_at
		FROM specialists
		WHERE kind = $1
		ORDER BY created_at
	`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Specialist
	for rows.Next() {
		s, err := scanSpecialist(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetSpecialist(ctx context.Context, id uuid.UUID) (*Specialist, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, specialization, consultation_fee, is_available, kind, created_at, updated_at
		FROM specialists
		WHERE id = $1
	`, id)
	return scanSpecialist(row)
}
