package booking

import (
	"fmt"
	"strings"
)

// State selects bookings in a listing. It is a query discriminator, never persisted.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

// ParseState converts a query value to a State, case-insensitively. Empty means ALL.
func ParseState(s string) (State, error) {
	if s == "" {
		return StateAll, nil
	}
	switch st := State(strings.ToUpper(s)); st {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown state: %s", s)
}

// status returns the booking status selected by a status-based state.
func (s State) status() (BookingStatus, bool) {
	switch s {
	case StateWaiting:
		return StatusWaiting, true
	case StateRejected:
		return StatusRejected, true
	}
	return "", false
}
