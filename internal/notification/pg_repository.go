package notification

import (
	"context"
	"encoding/json"
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

func scanNotification(row pgx.Row) (*Notification, error) {
	var n Notification
	var data []byte

	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.Read,
		&data,
		&n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			// Bad extras should not hide the notification itself.
			n.Data = nil
		}
	}

	return &n, nil
}

func (r *PgRepository) Insert(ctx context.Context, n *Notification) (*Notification, error) {
	id := uuid.New()

	var data []byte
	if n.Data != nil {
		raw, err := json.Marshal(n.Data)
		if err != nil {
			return nil, fmt.Errorf("marshal notification data: %w", err)
		}
		data = raw
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, read, data, created_at)
		VALUES ($1, $2, $3, $4, $5, false, $6, now())
		RETURNING id, user_id, type, title, message, read, data, created_at
	`, id, n.UserID, n.Type, n.Title, n.Message, data)

	return scanNotification(row)
}

func (r *PgRepository) Snapshot(ctx context.Context, userID uuid.UUID, limit int) ([]Notification, int, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, type, title, message, read, data, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var unread int
	err = r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM notifications
		WHERE user_id = $1 AND read = false
	`, userID).Scan(&unread)
	if err != nil {
		return nil, 0, err
	}

	return list, unread, nil
}

func (r *PgRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET read = true
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
