// Package status defines the lifecycle of an outbound message.
package status

import (
	"fmt"
	"slices"
)

// Status is the delivery state of one outbound message.
type Status string

const (
	// Queued: created while offline, waiting in the durable outbox.
	Queued Status = "queued"
	// Sent: handed to the remote write API, awaiting its ack. Entered
	// optimistically before the call resolves so the UI can render the
	// message immediately.
	Sent Status = "sent"
	// Acknowledged: the remote confirmed persistence. Terminal.
	Acknowledged Status = "acknowledged"
	// Failed: a direct online send errored. The message is re-queued from
	// here so replay-on-reconnect retries it.
	Failed Status = "failed"
)

// validTransitions defines allowed lifecycle transitions. Acknowledged is
// terminal; nothing ever regresses out of it.
var validTransitions = map[Status][]Status{
	Queued:       {Sent},
	Sent:         {Acknowledged, Failed},
	Failed:       {Queued},
	Acknowledged: {},
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to Status) bool {
	return slices.Contains(validTransitions[from], to)
}

// Check returns an error describing an illegal transition, nil otherwise.
func Check(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	return nil
}

// Valid reports whether s is a known status value.
func Valid(s Status) bool {
	switch s {
	case Queued, Sent, Acknowledged, Failed:
		return true
	}
	return false
}
