// Package state holds the latest account and task data shared between the
// background poller and the terminal monitor.
//
// The poller is the single writer and calls Store.Update after each poll.
// The UI reads with Store.Snapshot on its own schedule. Snapshots are copies,
// so callers may mutate them freely.
//
// On a failed poll Update keeps the previous data and records the error and
// a failure count; IsOffline reports two or more consecutive failures. A
// zero Store is ready to use.
package state
