// Package game drives levels: building them from definitions, ticking robots,
// classifying the outcome, and the interactive loop around it.
package game

import "fmt"

// State represents how a level is going.
type State int

const (
	// StateRunning means no terminal condition has been detected yet.
	StateRunning State = iota
	// StateComplete means every robot and box has reached an exit.
	StateComplete
	// StateFailed means the level can no longer be won.
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for _, candidate := range []State{StateRunning, StateComplete, StateFailed} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

// Status is the current classification of a level, with the reason shown to
// the player when it failed.
type Status struct {
	State  State  `json:"state"`
	Reason string `json:"reason,omitempty"`
}

// Over reports whether the level has reached a terminal state.
func (s Status) Over() bool {
	return s.State != StateRunning
}

func (s Status) String() string {
	if s.Reason == "" {
		return s.State.String()
	}
	return s.State.String() + ": " + s.Reason
}
