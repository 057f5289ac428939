package state

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/five82/rayvision/internal/rayvision"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Profile             rayvision.UserProfile
	HasProfile          bool
	Tasks               []rayvision.TaskSummary
	TaskTotal           int
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored snapshot. When err is non-nil the previous data is
// kept but the error is recorded for visibility. A nil profile keeps the last
// one, so the profile can be refreshed less often than the task list.
func (s *Store) Update(profile *rayvision.UserProfile, page *rayvision.TaskPage, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	if profile != nil {
		s.snapshot.Profile = cloneProfile(*profile)
		s.snapshot.HasProfile = true
	}
	if page != nil {
		s.snapshot.Tasks = cloneTasks(page.Items)
		s.snapshot.TaskTotal = page.Total
	}
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Tasks = cloneTasks(s.snapshot.Tasks)
	snap.Profile = cloneProfile(s.snapshot.Profile)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneTasks(items []rayvision.TaskSummary) []rayvision.TaskSummary {
	if len(items) == 0 {
		return nil
	}
	dup := make([]rayvision.TaskSummary, len(items))
	copy(dup, items)
	return dup
}

func cloneProfile(p rayvision.UserProfile) rayvision.UserProfile {
	p.Extra = maps.Clone(p.Extra)
	return p
}
