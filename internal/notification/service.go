package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// Service persists notifications and pushes them out. The publisher is an
// injected capability and may be nil when the push infrastructure is not
// configured; delivery then degrades to the stored snapshot with no error
// surfaced to the caller.
type Service struct {
	repo      Repository
	publisher Publisher
}

func NewService(repo Repository, publisher Publisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// Notify stores a notification and publishes it as an incremental status
// update. Publish failures are logged, not returned: the stored row is the
// source of truth and will arrive with the next snapshot.
func (s *Service) Notify(ctx context.Context, n *Notification) (*Notification, error) {
	stored, err := s.repo.Insert(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("store notification: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishStatusUpdate(ctx, stored); err != nil {
			log.Printf("push publish failed user=%s type=%s err=%v", stored.UserID, stored.Type, err)
		}
	}

	return stored, nil
}

// NotifyApproved stores the approval notification, then signals connected
// feeds to re-fetch their snapshot rather than merge incrementally.
func (s *Service) NotifyApproved(ctx context.Context, n *Notification) (*Notification, error) {
	stored, err := s.repo.Insert(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("store notification: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishApproved(ctx, stored.UserID); err != nil {
			log.Printf("push publish failed user=%s type=%s err=%v", stored.UserID, stored.Type, err)
		}
	}

	return stored, nil
}

// Snapshot proxies the repository for page loads.
func (s *Service) Snapshot(ctx context.Context, userID uuid.UUID, limit int) ([]Notification, int, error) {
	if limit <= 0 {
		limit = 50 // default
	}
	if limit > 100 {
		limit = 100 // max
	}
	return s.repo.Snapshot(ctx, userID, limit)
}

// MarkRead flips one notification to read.
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, id)
}
