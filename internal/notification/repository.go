package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Repository persists the authoritative notification list per user.
type Repository interface {
	Insert(ctx context.Context, n *Notification) (*Notification, error)

	// Snapshot returns the latest notifications newest first, capped at
	// limit, plus the user's total unread count.
	Snapshot(ctx context.Context, userID uuid.UUID, limit int) ([]Notification, int, error)

	MarkRead(ctx context.Context, userID, id uuid.UUID) error
}
