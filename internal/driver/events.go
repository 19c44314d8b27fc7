package driver

import "github.com/WriteNaN/buzz/internal/ui"

// EventStatus mirrors internal/ui.Status so driver callers that don't
// want a UI dependency can still read RunTests' progress channel.
type EventStatus = ui.Status

const (
	EventRunning = ui.StatusRunning
	EventPassed  = ui.StatusPassed
	EventFailed  = ui.StatusFailed
)

// Event reports one test block's status change to RunTests' caller.
type Event = ui.Event

func emit(events chan<- Event, e Event) {
	if events == nil {
		return
	}
	events <- e
}
