package notification

import "github.com/google/uuid"

// State is the reconciled notification list for one user, newest first.
// It is fed from two directions: authoritative snapshots that replace
// everything, and incremental push events that prepend. The unread count is
// always derived from the read flags, so it cannot drift from the list the
// way an independently incremented counter can.
type State struct {
	list []Notification
}

func NewState() *State {
	return &State{}
}

// ApplySnapshot replaces the local list with an authoritative one from the
// backend. Used on page load and whenever an event signals a change the
// feed cannot patch incrementally.
func (st *State) ApplySnapshot(list []Notification) {
	st.list = make([]Notification, len(list))
	copy(st.list, list)
}

// ApplyPushEvent prepends a pushed notification unless an entry with the
// same ID is already present. Reports whether the list changed; applying
// the same event twice is a no-op the second time.
func (st *State) ApplyPushEvent(n Notification) bool {
	for _, existing := range st.list {
		if existing.ID == n.ID {
			return false
		}
	}

	st.list = append([]Notification{n}, st.list...)
	return true
}

// MarkRead flips the read flag on one entry. Reports whether anything
// changed.
func (st *State) MarkRead(id uuid.UUID) bool {
	for i := range st.list {
		if st.list[i].ID == id && !st.list[i].Read {
			st.list[i].Read = true
			return true
		}
	}
	return false
}

// List returns a copy of the reconciled list, newest first.
func (st *State) List() []Notification {
	out := make([]Notification, len(st.list))
	copy(out, st.list)
	return out
}

// UnreadCount is derived from the read flags on every call.
func (st *State) UnreadCount() int {
	n := 0
	for _, entry := range st.list {
		if !entry.Read {
			n++
		}
	}
	return n
}

func (st *State) Len() int { return len(st.list) }
