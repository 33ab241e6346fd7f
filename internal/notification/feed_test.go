package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu    sync.Mutex
	list  []Notification
	calls int
	err   error
}

func (f *fakeFetcher) Snapshot(ctx context.Context, userID uuid.UUID, limit int) ([]Notification, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, 0, f.err
	}
	out := make([]Notification, len(f.list))
	copy(out, f.list)
	unread := 0
	for _, n := range out {
		if !n.Read {
			unread++
		}
	}
	return out, unread, nil
}

func (f *fakeFetcher) setList(list []Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list = list
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSubscriber struct {
	ch  chan Event
	err error
}

func (s *fakeSubscriber) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ch, nil
}

func receiveUpdate(t *testing.T, updates <-chan Update) Update {
	t.Helper()
	select {
	case u, ok := <-updates:
		require.True(t, ok, "updates channel closed unexpectedly")
		return u
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for feed update")
		return Update{}
	}
}

func assertNoUpdate(t *testing.T, updates <-chan Update) {
	t.Helper()
	select {
	case u := <-updates:
		t.Fatalf("unexpected update: %+v", u)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFeedSeedsFromSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seeded := makeNotification(false)
	fetcher := &fakeFetcher{list: []Notification{seeded}}
	sub := &fakeSubscriber{ch: make(chan Event)}

	feed := NewFeed(fetcher, sub, 50)
	updates, err := feed.Open(ctx, uuid.New())
	require.NoError(t, err)

	first := receiveUpdate(t, updates)
	require.Len(t, first.Notifications, 1)
	assert.Equal(t, seeded.ID, first.Notifications[0].ID)
	assert.Equal(t, 1, first.UnreadCount)
}

func TestFeedMergesPushEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seeded := makeNotification(true)
	fetcher := &fakeFetcher{list: []Notification{seeded}}
	sub := &fakeSubscriber{ch: make(chan Event)}

	feed := NewFeed(fetcher, sub, 50)
	updates, err := feed.Open(ctx, uuid.New())
	require.NoError(t, err)
	receiveUpdate(t, updates)

	pushed := makeNotification(false)
	sub.ch <- Event{Kind: EventStatusUpdated, Notification: &pushed}

	second := receiveUpdate(t, updates)
	require.Len(t, second.Notifications, 2)
	assert.Equal(t, pushed.ID, second.Notifications[0].ID, "push events prepend newest first")
	assert.Equal(t, 1, second.UnreadCount)

	// The same event again is a duplicate and produces no update.
	sub.ch <- Event{Kind: EventStatusUpdated, Notification: &pushed}
	assertNoUpdate(t, updates)
}

func TestFeedRefetchesOnApproved(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &fakeFetcher{list: []Notification{makeNotification(true)}}
	sub := &fakeSubscriber{ch: make(chan Event)}

	feed := NewFeed(fetcher, sub, 50)
	updates, err := feed.Open(ctx, uuid.New())
	require.NoError(t, err)
	receiveUpdate(t, updates)

	fresh := []Notification{makeNotification(false), makeNotification(true)}
	fetcher.setList(fresh)

	sub.ch <- Event{Kind: EventAppointmentApproved}

	second := receiveUpdate(t, updates)
	assert.Len(t, second.Notifications, 2)
	assert.Equal(t, fresh[0].ID, second.Notifications[0].ID)
	assert.Equal(t, 2, fetcher.callCount(), "approved events re-fetch the snapshot")
}

func TestFeedIgnoresMalformedAndUnknownEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &fakeFetcher{}
	sub := &fakeSubscriber{ch: make(chan Event)}

	feed := NewFeed(fetcher, sub, 50)
	updates, err := feed.Open(ctx, uuid.New())
	require.NoError(t, err)
	receiveUpdate(t, updates)

	// A status update without a payload and an unknown kind both drop.
	sub.ch <- Event{Kind: EventStatusUpdated}
	sub.ch <- Event{Kind: "something.else"}
	assertNoUpdate(t, updates)
}

// A broken or absent push subscription degrades the feed to snapshot-only:
// the seeded update still arrives, no error escapes.
func TestFeedDegradesWithoutSubscriber(t *testing.T) {
	for name, sub := range map[string]Subscriber{
		"nil subscriber": nil,
		"failing":        &fakeSubscriber{err: errors.New("broker down")},
	} {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			fetcher := &fakeFetcher{list: []Notification{makeNotification(false)}}
			feed := NewFeed(fetcher, sub, 50)

			updates, err := feed.Open(ctx, uuid.New())
			require.NoError(t, err)

			first := receiveUpdate(t, updates)
			assert.Len(t, first.Notifications, 1)

			cancel()
			select {
			case _, ok := <-updates:
				assert.False(t, ok, "channel should close after cancellation")
			case <-time.After(time.Second):
				t.Fatal("updates channel did not close")
			}
		})
	}
}

func TestFeedOpenFailsWhenSnapshotFails(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("db down")}
	feed := NewFeed(fetcher, nil, 50)

	_, err := feed.Open(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestFeedStopsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	fetcher := &fakeFetcher{}
	sub := &fakeSubscriber{ch: make(chan Event, 1)}

	feed := NewFeed(fetcher, sub, 50)
	updates, err := feed.Open(ctx, uuid.New())
	require.NoError(t, err)
	receiveUpdate(t, updates)

	cancel()

	for {
		select {
		case _, ok := <-updates:
			if !ok {
				return
			}
		case <-time.After(time.Second):
			t.Fatal("updates channel did not close after cancel")
		}
	}
}
