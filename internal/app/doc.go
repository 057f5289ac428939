// Package app wires configuration, the signed API client, the background
// poller and the terminal monitor together.
//
// Run follows this sequence:
//
//  1. Load and validate ~/.config/rayvision/config.toml (or the -config path)
//  2. Load monitor preferences (theme, page size, status filter)
//  3. Build the rayvision client, wrapped in a Retrier when retry_attempts > 0
//  4. Poll once to populate the state.Store
//  5. With Once set, print the snapshot and return
//  6. Otherwise start the poller and block in ui.Run
//
// The poller fetches the task list every interval and the merged account
// profile every twelfth poll. Consecutive failures double the wait, capped
// at 30 seconds. Poll errors are logged and kept in the store for the UI;
// only configuration and client construction errors are returned from Run.
//
// While the TUI owns the terminal, logs go to
// ~/.local/state/raywatch/raywatch.log. One-shot runs log to stderr.
package app
