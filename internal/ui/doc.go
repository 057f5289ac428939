// Package ui implements the raywatch terminal monitor with Bubble Tea.
//
// The model reads state.Snapshot values that the background poller writes
// and renders them as a header (account, connection state) above a task
// table. Stop and start actions go through the same rayvision.Poster the
// poller uses, so they are signed and validated like any other call.
//
// Key bindings live in keys.go; colours and styles in theme.go. The theme
// choice is saved to the prefs file when cycled.
package ui
