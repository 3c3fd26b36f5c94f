package sync

import (
	"testing"
	"time"
)

// TestStatusStore_InitialState tests the idle starting snapshot
func TestStatusStore_InitialState(t *testing.T) {
	ss := NewStatusStore()

	status := ss.Status()
	if status.State != StateIdle {
		t.Errorf("initial state = %q, want %q", status.State, StateIdle)
	}
	if status.Offline {
		t.Error("initial status is offline")
	}
	if status.PendingChanges != 0 {
		t.Errorf("initial pending = %d, want 0", status.PendingChanges)
	}
}

// TestStatusStore_Subscribe tests that every transition notifies
// subscribers with the post-transition snapshot
func TestStatusStore_Subscribe(t *testing.T) {
	ss := NewStatusStore()

	var seen []Status
	ss.Subscribe(func(st Status) {
		seen = append(seen, st)
	})

	ss.SetState(StateSyncing)
	ss.SetOffline(true)
	ss.IncrementPending()

	if len(seen) != 3 {
		t.Fatalf("subscriber saw %d transitions, want 3", len(seen))
	}
	if seen[0].State != StateSyncing {
		t.Errorf("first snapshot state = %q, want %q", seen[0].State, StateSyncing)
	}
	if !seen[1].Offline {
		t.Error("second snapshot should be offline")
	}
	if seen[2].PendingChanges != 1 {
		t.Errorf("third snapshot pending = %d, want 1", seen[2].PendingChanges)
	}
}

// TestStatusStore_MarkSuccess tests that a successful cycle records the
// timestamp and clears the pending counter
func TestStatusStore_MarkSuccess(t *testing.T) {
	ss := NewStatusStore()

	ss.IncrementPending()
	ss.IncrementPending()
	ss.SetError("connection refused")

	at := time.Now().UTC()
	ss.MarkSuccess(at)

	status := ss.Status()
	if status.State != StateSuccess {
		t.Errorf("state = %q, want %q", status.State, StateSuccess)
	}
	if status.PendingChanges != 0 {
		t.Errorf("pending = %d after success, want 0", status.PendingChanges)
	}
	if status.LastError != "" {
		t.Errorf("LastError = %q after success, want empty", status.LastError)
	}
	if !status.LastSyncAt.Equal(at) {
		t.Errorf("LastSyncAt = %v, want %v", status.LastSyncAt, at)
	}
}

// TestStatusStore_ErrorSurvivesIdle tests that returning to idle after a
// failed cycle keeps the error visible
func TestStatusStore_ErrorSurvivesIdle(t *testing.T) {
	ss := NewStatusStore()

	ss.SetError("remote unreachable")
	ss.SetState(StateIdle)

	status := ss.Status()
	if status.State != StateIdle {
		t.Errorf("state = %q, want %q", status.State, StateIdle)
	}
	if status.LastError != "remote unreachable" {
		t.Errorf("LastError = %q, want it preserved through idle", status.LastError)
	}

	// Starting the next cycle clears it.
	ss.SetState(StateSyncing)
	if got := ss.Status().LastError; got != "" {
		t.Errorf("LastError = %q after new cycle started, want empty", got)
	}
}

// TestStatusStore_OfflineOrthogonal tests that the offline flag is
// independent of the state machine
func TestStatusStore_OfflineOrthogonal(t *testing.T) {
	ss := NewStatusStore()

	ss.SetOffline(true)
	ss.SetState(StateSyncing)
	ss.SetState(StateIdle)

	if !ss.Status().Offline {
		t.Error("state transitions cleared the offline flag")
	}

	ss.SetOffline(false)
	if ss.Status().Offline {
		t.Error("offline flag did not clear")
	}
}
