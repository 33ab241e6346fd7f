package redisclient

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ChannelName builds the per-user push channel, e.g.
// "clinicdesk.notifications.4f8c...".
func ChannelName(namespace, userID string) string {
	return fmt.Sprintf("%s.notifications.%s", namespace, userID)
}

// PubSub publishes and subscribes raw payloads on named channels. Payload
// framing (the event envelope) belongs to the caller.
type PubSub struct {
	client *redis.Client
}

func NewPubSub(client *redis.Client) *PubSub {
	return &PubSub{client: client}
}

func (p *PubSub) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

// Subscribe opens a subscription and pumps messages into the returned
// channel until ctx is cancelled. The goroutine owns the PubSub handle and
// closes both on exit, so callers only need to cancel ctx.
func (p *PubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	sub := p.client.Subscribe(ctx, channel)

	// Force the SUBSCRIBE round trip so a dead broker surfaces here, not
	// silently in the pump goroutine.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", channel, err)
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
