package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	redisclient "github.com/clinicdesk/clinic-booking/internal/redis"
)

// Event kinds on the per-user push channel. A status update carries the
// notification to merge; the approved kind carries nothing reusable and
// tells the feed to re-fetch its snapshot, because an approval changes
// dashboard data (appointment lists) that a notification payload alone
// cannot patch.
const (
	EventStatusUpdated       = "notification.status_updated"
	EventAppointmentApproved = "appointment.approved"
)

// Event is the envelope published on the push channel.
type Event struct {
	Kind         string        `json:"kind"`
	Notification *Notification `json:"notification,omitempty"`
}

// Publisher emits push events for a user. Implementations must be safe to
// call from HTTP handlers and workers alike.
type Publisher interface {
	PublishStatusUpdate(ctx context.Context, n *Notification) error
	PublishApproved(ctx context.Context, userID uuid.UUID) error
}

// Subscriber opens the event stream of one user's channel. The returned
// channel closes when ctx is cancelled or the connection drops.
type Subscriber interface {
	Subscribe(ctx context.Context, userID uuid.UUID) (<-chan Event, error)
}

// RedisPublisher publishes envelopes on "<namespace>.notifications.<userID>".
type RedisPublisher struct {
	ps        *redisclient.PubSub
	namespace string
}

func NewRedisPublisher(ps *redisclient.PubSub, namespace string) *RedisPublisher {
	return &RedisPublisher{ps: ps, namespace: namespace}
}

func (p *RedisPublisher) PublishStatusUpdate(ctx context.Context, n *Notification) error {
	return p.publish(ctx, n.UserID, Event{Kind: EventStatusUpdated, Notification: n})
}

func (p *RedisPublisher) PublishApproved(ctx context.Context, userID uuid.UUID) error {
	return p.publish(ctx, userID, Event{Kind: EventAppointmentApproved})
}

func (p *RedisPublisher) publish(ctx context.Context, userID uuid.UUID, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	channel := redisclient.ChannelName(p.namespace, userID.String())
	return p.ps.Publish(ctx, channel, raw)
}

// RedisSubscriber decodes envelopes arriving on the user's channel.
// Payloads that do not decode are logged and skipped rather than killing
// the stream.
type RedisSubscriber struct {
	ps        *redisclient.PubSub
	namespace string
}

func NewRedisSubscriber(ps *redisclient.PubSub, namespace string) *RedisSubscriber {
	return &RedisSubscriber{ps: ps, namespace: namespace}
}

func (s *RedisSubscriber) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan Event, error) {
	channel := redisclient.ChannelName(s.namespace, userID.String())
	raw, err := s.ps.Subscribe(ctx, channel)
	if err != nil {
		return nil, err
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		for payload := range raw {
			var ev Event
			if err := json.Unmarshal(payload, &ev); err != nil {
				log.Printf("skipping malformed push event channel=%s err=%v", channel, err)
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
