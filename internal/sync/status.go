package sync

import (
	"sync"
	"time"
)

// State is the engine's sync state machine position:
// idle -> syncing -> {success -> idle | error -> idle}.
type State string

const (
	StateIdle    State = "idle"
	StateSyncing State = "syncing"
	StateSuccess State = "success"
	StateError   State = "error"
)

// Status is an observable snapshot of the engine.
//
// Offline is orthogonal to State and authoritative for display: an
// offline engine may report StateIdle but observers should render the
// offline indicator regardless.
type Status struct {
	State          State     `json:"state"`
	Offline        bool      `json:"offline"`
	PendingChanges int       `json:"pending_changes"`
	LastSyncAt     time.Time `json:"last_sync_at,omitempty"`
	LastError      string    `json:"last_error,omitempty"`
}

// StatusStore holds the current status and notifies subscribers on every
// transition. It is the single observation point for presentation glue;
// consumers subscribe instead of duplicating sync state.
type StatusStore struct {
	mu     sync.Mutex
	status Status
	subs   []func(Status)
}

// NewStatusStore creates a status store in the idle state.
func NewStatusStore() *StatusStore {
	return &StatusStore{
		status: Status{State: StateIdle},
	}
}

// Status returns the current snapshot.
func (ss *StatusStore) Status() Status {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.status
}

// Subscribe registers fn to be called with every status transition.
// fn is invoked synchronously on the mutating goroutine and must not
// block or call back into the store.
func (ss *StatusStore) Subscribe(fn func(Status)) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.subs = append(ss.subs, fn)
}

// SetState moves the state machine and notifies subscribers. Entering
// the syncing state clears the previous cycle's error; returning to idle
// keeps it so observers can still display what went wrong.
func (ss *StatusStore) SetState(state State) {
	ss.update(func(st *Status) {
		st.State = state
		if state == StateSyncing {
			st.LastError = ""
		}
	})
}

// SetError records a failed cycle with a human-readable message.
func (ss *StatusStore) SetError(msg string) {
	ss.update(func(st *Status) {
		st.State = StateError
		st.LastError = msg
	})
}

// SetOffline flips the orthogonal offline flag on connectivity change.
func (ss *StatusStore) SetOffline(offline bool) {
	ss.update(func(st *Status) {
		st.Offline = offline
	})
}

// MarkSuccess records a completed cycle: success state, sync timestamp,
// and a cleared pending-changes counter.
func (ss *StatusStore) MarkSuccess(at time.Time) {
	ss.update(func(st *Status) {
		st.State = StateSuccess
		st.LastError = ""
		st.LastSyncAt = at
		st.PendingChanges = 0
	})
}

// IncrementPending bumps the pending-changes counter. The local store's
// mutation hook calls this on every write.
func (ss *StatusStore) IncrementPending() {
	ss.update(func(st *Status) {
		st.PendingChanges++
	})
}

func (ss *StatusStore) update(mutate func(*Status)) {
	ss.mu.Lock()
	mutate(&ss.status)
	snapshot := ss.status
	subs := make([]func(Status), len(ss.subs))
	copy(subs, ss.subs)
	ss.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
