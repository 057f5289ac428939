package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/rayvision/internal/rayvision"
)

func page(ids ...int64) *rayvision.TaskPage {
	p := &rayvision.TaskPage{Total: len(ids)}
	for _, id := range ids {
		p.Items = append(p.Items, rayvision.TaskSummary{ID: id})
	}
	return p
}

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	profile := &rayvision.UserProfile{UserID: 123, Extra: map[string]any{"k": "v"}}

	before := time.Now()
	s.Update(profile, page(1, 2), nil)

	snap := s.Snapshot()
	if !snap.HasProfile || snap.Profile.UserID != 123 {
		t.Fatalf("snapshot profile = %#v, want user 123 HasProfile=true", snap.Profile)
	}
	if len(snap.Tasks) != 2 || snap.Tasks[0].ID != 1 || snap.TaskTotal != 2 {
		t.Fatalf("snapshot tasks = %#v, want 2 items", snap.Tasks)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Tasks[0].ID = 999
	snap.Profile.Extra["k"] = "changed"
	snap2 := s.Snapshot()
	if snap2.Tasks[0].ID != 1 {
		t.Fatalf("Snapshot should clone tasks; got id %d want 1", snap2.Tasks[0].ID)
	}
	if snap2.Profile.Extra["k"] != "v" {
		t.Fatalf("Snapshot should clone profile extras; got %v", snap2.Profile.Extra)
	}
}

func TestStore_NilProfileKeepsPrevious(t *testing.T) {
	var s Store

	s.Update(&rayvision.UserProfile{UserID: 7}, page(1), nil)
	s.Update(nil, page(2, 3), nil)

	snap := s.Snapshot()
	if !snap.HasProfile || snap.Profile.UserID != 7 {
		t.Fatalf("profile = %#v, want previous profile kept", snap.Profile)
	}
	if len(snap.Tasks) != 2 || snap.Tasks[0].ID != 2 {
		t.Fatalf("tasks = %#v, want new page", snap.Tasks)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update(&rayvision.UserProfile{UserID: 1}, page(1), nil)
	prev := s.Snapshot()

	before := time.Now()
	origErr := errors.New("boom")
	s.Update(nil, nil, origErr)

	snap := s.Snapshot()
	if snap.HasProfile != prev.HasProfile || snap.Profile.UserID != prev.Profile.UserID {
		t.Fatalf("profile changed on error: got %#v want %#v", snap.Profile, prev.Profile)
	}
	if len(snap.Tasks) != 1 || snap.Tasks[0].ID != 1 {
		t.Fatalf("tasks changed on error: got %#v want %#v", snap.Tasks, prev.Tasks)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	if snap := s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("zero store = %#v, want online with 0 failures", snap)
	}

	s.Update(nil, nil, errors.New("fail 1"))
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after 1 failure: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(nil, nil, errors.New("fail 2"))
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after 2 failures: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	// Success resets counter
	s.Update(nil, page(), nil)
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}
}
