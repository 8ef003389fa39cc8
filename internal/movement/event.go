package movement

import (
	"fmt"

	"github.com/lcnr/shitty-bot-game/internal/entity"
	"github.com/lcnr/shitty-bot-game/internal/world"
)

// Outcome is what happened to an entity during one resolved step.
type Outcome int

const (
	// Idle - the entity waited
	Idle Outcome = iota
	// Move - the entity moved From -> To
	Move
	// MoveFail - the entity tried to walk and could not
	MoveFail
	// UpdateDir - the robot turned from OldDir to NewDir
	UpdateDir
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Idle:
		return "idle"
	case Move:
		return "move"
	case MoveFail:
		return "move_fail"
	case UpdateDir:
		return "update_dir"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name.
func (o *Outcome) UnmarshalText(text []byte) error {
	for _, c := range []Outcome{Idle, Move, MoveFail, UpdateDir} {
		if c.String() == string(text) {
			*o = c
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Event is emitted for presentation. It never feeds back into simulation.
type Event struct {
	Entity  entity.ID       `json:"entity"`
	Outcome Outcome         `json:"outcome"`
	From    world.GridPos   `json:"from"`
	To      world.GridPos   `json:"to"`
	OldDir  world.Direction `json:"old_dir"`
	NewDir  world.Direction `json:"new_dir"`
}

// String formats the event for logs.
func (e Event) String() string {
	switch e.Outcome {
	case Move:
		return fmt.Sprintf("#%d move %v -> %v", e.Entity, e.From, e.To)
	case UpdateDir:
		return fmt.Sprintf("#%d turn %v -> %v", e.Entity, e.OldDir, e.NewDir)
	default:
		return fmt.Sprintf("#%d %v", e.Entity, e.Outcome)
	}
}

// Frame is one robot's share of a tick: where its program stood and the
// events its step produced, pushed entities included.
type Frame struct {
	Robot  entity.ID `json:"robot"`
	PC     uint8     `json:"pc"`
	PrevPC uint8     `json:"prev_pc"`
	Events []Event   `json:"events"`
}
