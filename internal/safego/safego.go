// Package safego launches background goroutines that must not take the
// process down with them.
package safego

import "log/slog"

// Go runs fn in a new goroutine, recovering and logging any panic instead of
// crashing the process. Fire-and-forget goroutines such as the HTTP listener
// and the metrics side server in cmd/server go through here so a panic in one
// of them is recorded rather than silently killing it.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("recovered panic in background goroutine", "panic", r)
			}
		}()
		fn()
	}()
}
