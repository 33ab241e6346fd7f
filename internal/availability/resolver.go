package availability

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// TimeSlot is one bookable time for a (specialist, date) pair. Value is the
// wire form ("14:30"), Label what the form displays ("2:30 PM").
type TimeSlot struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Key identifies one slot resolution. Every cached entry and every stale
// check compares these, so the format must stay stable.
func Key(specialistID uuid.UUID, date string) string {
	return fmt.Sprintf("%s:%s", specialistID, date)
}

// Source computes free slots from authoritative data.
type Source interface {
	FreeSlots(ctx context.Context, specialistID uuid.UUID, date string) ([]TimeSlot, error)
}

// Cache holds resolved slot lists per key for a short TTL. A miss returns
// ok=false and no error; only broken infrastructure returns an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]TimeSlot, bool, error)
	Set(ctx context.Context, key string, slots []TimeSlot) error
	Invalidate(ctx context.Context, key string) error
}

// Resolver answers "which times are open for this specialist on this date",
// consulting the cache first. Failures degrade to an empty slot list so the
// booking form never crashes on a flaky backend; the error is logged and
// swallowed here on purpose.
type Resolver struct {
	source Source
	cache  Cache
}

func NewResolver(source Source, cache Cache) *Resolver {
	return &Resolver{source: source, cache: cache}
}

// Resolve returns the open slots for the pair, or an empty list on failure.
// Both inputs are required; the zero UUID or an empty date short-circuits
// to empty without touching the backend.
func (r *Resolver) Resolve(ctx context.Context, specialistID uuid.UUID, date string) []TimeSlot {
	if specialistID == uuid.Nil || date == "" {
		return []TimeSlot{}
	}

	key := Key(specialistID, date)

	if r.cache != nil {
		slots, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			log.Printf("slot cache get failed key=%s err=%v", key, err)
		} else if ok {
			return slots
		}
	}

	slots, err := r.source.FreeSlots(ctx, specialistID, date)
	if err != nil {
		log.Printf("slot resolution failed key=%s err=%v", key, err)
		return []TimeSlot{}
	}
	if slots == nil {
		slots = []TimeSlot{}
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, slots); err != nil {
			log.Printf("slot cache set failed key=%s err=%v", key, err)
		}
	}

	return slots
}

// Invalidate drops the cached resolution for a pair, used after a booking
// is created so the taken time disappears promptly.
func (r *Resolver) Invalidate(ctx context.Context, specialistID uuid.UUID, date string) {
	if r.cache == nil {
		return
	}
	key := Key(specialistID, date)
	if err := r.cache.Invalidate(ctx, key); err != nil {
		log.Printf("slot cache invalidate failed key=%s err=%v", key, err)
	}
}
