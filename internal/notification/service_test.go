package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	inserted  []Notification
	lastLimit int
}

func (r *fakeRepository) Insert(ctx context.Context, n *Notification) (*Notification, error) {
	stored := *n
	stored.ID = uuid.New()
	r.inserted = append(r.inserted, stored)
	return &stored, nil
}

func (r *fakeRepository) Snapshot(ctx context.Context, userID uuid.UUID, limit int) ([]Notification, int, error) {
	r.lastLimit = limit
	return nil, 0, nil
}

func (r *fakeRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return nil
}

type failingPublisher struct{}

func (failingPublisher) PublishStatusUpdate(ctx context.Context, n *Notification) error {
	return errors.New("channel down")
}

func (failingPublisher) PublishApproved(ctx context.Context, userID uuid.UUID) error {
	return errors.New("channel down")
}

func TestSnapshotClampsLimit(t *testing.T) {
	repo := &fakeRepository{}
	svc := NewService(repo, nil)
	ctx := context.Background()
	userID := uuid.New()

	cases := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero gets default", 0, 50},
		{"negative gets default", -3, 50},
		{"in range untouched", 25, 25},
		{"over max capped", 5000, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Snapshot(ctx, userID, tc.limit)
			require.NoError(t, err)
			assert.Equal(t, tc.want, repo.lastLimit)
		})
	}
}

func TestNotifySurvivesPublishFailure(t *testing.T) {
	repo := &fakeRepository{}
	svc := NewService(repo, failingPublisher{})
	ctx := context.Background()

	stored, err := svc.Notify(ctx, &Notification{
		UserID: uuid.New(),
		Type:   TypeBookingReceived,
		Title:  "Booking received",
	})
	require.NoError(t, err, "publish failure must not surface")
	assert.NotEqual(t, uuid.Nil, stored.ID)
	assert.Len(t, repo.inserted, 1)
}
