package notification

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// Fetcher supplies authoritative snapshots; the pg repository satisfies it.
type Fetcher interface {
	Snapshot(ctx context.Context, userID uuid.UUID, limit int) ([]Notification, int, error)
}

// Update is one reconciled view of the feed pushed to a connected client.
type Update struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}

// Feed runs the reconciliation loop for one user's dashboard: seed from a
// snapshot, then fold push events into the local state. A nil or failing
// subscriber degrades the feed to snapshot-only mode silently; the user
// still gets their list, just without live updates.
type Feed struct {
	fetcher       Fetcher
	subscriber    Subscriber
	snapshotLimit int
}

func NewFeed(fetcher Fetcher, subscriber Subscriber, snapshotLimit int) *Feed {
	if snapshotLimit <= 0 {
		snapshotLimit = 50
	}
	return &Feed{
		fetcher:       fetcher,
		subscriber:    subscriber,
		snapshotLimit: snapshotLimit,
	}
}

// Open starts the loop for one user. The first Update on the returned
// channel is the seeded snapshot; later ones follow each reconciled event.
// The channel closes when ctx is cancelled, and nothing mutates state after
// that.
func (f *Feed) Open(ctx context.Context, userID uuid.UUID) (<-chan Update, error) {
	list, _, err := f.fetcher.Snapshot(ctx, userID, f.snapshotLimit)
	if err != nil {
		return nil, err
	}

	state := NewState()
	state.ApplySnapshot(list)

	var events <-chan Event
	if f.subscriber != nil {
		events, err = f.subscriber.Subscribe(ctx, userID)
		if err != nil {
			log.Printf("push subscribe failed user=%s err=%v, feed degrades to snapshot only", userID, err)
			events = nil
		}
	}

	updates := make(chan Update, 1)
	updates <- snapshotUpdate(state)

	go func() {
		defer close(updates)

		if events == nil {
			// Snapshot-only mode: hold the stream open so the client keeps
			// its seeded list, but nothing further will arrive.
			<-ctx.Done()
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if !f.apply(ctx, userID, state, ev) {
					continue
				}
				select {
				case updates <- snapshotUpdate(state):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return updates, nil
}

// apply folds one event into state and reports whether anything changed.
func (f *Feed) apply(ctx context.Context, userID uuid.UUID, state *State, ev Event) bool {
	switch ev.Kind {
	case EventStatusUpdated:
		if ev.Notification == nil {
			return false
		}
		return state.ApplyPushEvent(*ev.Notification)

	case EventAppointmentApproved:
		// An approval changes dashboard data beyond the feed, so merge by
		// re-fetching the whole snapshot instead of patching.
		list, _, err := f.fetcher.Snapshot(ctx, userID, f.snapshotLimit)
		if err != nil {
			log.Printf("snapshot refetch failed user=%s err=%v", userID, err)
			return false
		}
		state.ApplySnapshot(list)
		return true

	default:
		log.Printf("ignoring unknown push event kind=%q user=%s", ev.Kind, userID)
		return false
	}
}

func snapshotUpdate(state *State) Update {
	return Update{
		Notifications: state.List(),
		UnreadCount:   state.UnreadCount(),
	}
}
