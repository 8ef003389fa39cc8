// Package entity holds the robots and boxes placed on a level.
package entity

import (
	"github.com/lcnr/shitty-bot-game/internal/bot"
	"github.com/lcnr/shitty-bot-game/internal/world"
)

// ID identifies an entity for the lifetime of a level. IDs are assigned in
// spawn order and define the order robots act in.
type ID int

// Robot is the per-robot data: its program, where it starts, and its
// execution state.
type Robot struct {
	Program  bot.Program
	StartDir world.Direction
	State    *bot.State
}

// Entity is a robot or a box on the grid.
type Entity struct {
	ID    ID
	Kind  world.EntityKind
	Pos   world.GridPos
	Start world.GridPos

	// Inert entities have fallen into the void or reached an exit. They no
	// longer block anything and never act again.
	Inert bool

	Robot *Robot // nil for boxes
}

// IsRobot reports whether the entity is a robot.
func (e *Entity) IsRobot() bool {
	return e.Kind == world.KindRobot && e.Robot != nil
}

// Facing returns the robot's facing. Boxes always report Up.
func (e *Entity) Facing() world.Direction {
	if e.Robot == nil {
		return world.Up
	}
	return e.Robot.State.Facing
}

// Halted reports whether a robot has stopped executing.
func (e *Entity) Halted() bool {
	return e.Robot != nil && e.Robot.State.Halted
}

// MoveTo updates the entity's position.
func (e *Entity) MoveTo(pos world.GridPos) {
	e.Pos = pos
}

// MarkInert removes the entity from play. A robot's queued steps are
// dropped and it halts.
func (e *Entity) MarkInert() {
	e.Inert = true
	if e.Robot != nil {
		e.Robot.State.Clear()
		e.Robot.State.Halted = true
	}
}

// Reset puts the entity back at its start with fresh execution state.
func (e *Entity) Reset() {
	e.Pos = e.Start
	e.Inert = false
	if e.Robot != nil {
		e.Robot.State.Reset(e.Robot.StartDir)
	}
}
