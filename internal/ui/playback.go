package ui

import (
	"github.com/lcnr/shitty-bot-game/internal/entity"
	"github.com/lcnr/shitty-bot-game/internal/movement"
	"github.com/lcnr/shitty-bot-game/internal/world"
)

// Actor is what the screen shows for one entity. It trails the simulation
// until the frames that moved the entity have been played.
type Actor struct {
	ID     entity.ID
	Kind   world.EntityKind
	Pos    world.GridPos
	Facing world.Direction
	Bumped bool // last step was a failed walk
}

// Playback queues simulated ticks and plays them back one per Step.
// It satisfies game.Presenter.
type Playback struct {
	actors  map[entity.ID]*Actor
	order   []entity.ID
	pending [][]movement.Frame
	cells   map[entity.ID]uint8 // program cell last executed, per robot
}

// NewPlayback creates a playback showing entities where they stand now.
func NewPlayback(entities []*entity.Entity) *Playback {
	p := &Playback{}
	p.Sync(entities)
	return p
}

// Sync drops queued frames and snaps every actor to its entity.
func (p *Playback) Sync(entities []*entity.Entity) {
	p.actors = make(map[entity.ID]*Actor, len(entities))
	p.order = p.order[:0]
	p.cells = make(map[entity.ID]uint8)
	p.pending = nil
	for _, e := range entities {
		p.actors[e.ID] = &Actor{
			ID:     e.ID,
			Kind:   e.Kind,
			Pos:    e.Pos,
			Facing: e.Facing(),
		}
		p.order = append(p.order, e.ID)
	}
}

// Idle reports whether every queued tick has been shown.
func (p *Playback) Idle() bool {
	return len(p.pending) == 0
}

// Present queues one tick of frames.
func (p *Playback) Present(frames []movement.Frame) {
	p.pending = append(p.pending, frames)
}

// Step applies the oldest queued tick to the actors and returns it. It
// returns nil when nothing is queued.
func (p *Playback) Step() []movement.Frame {
	if len(p.pending) == 0 {
		return nil
	}
	frames := p.pending[0]
	p.pending = p.pending[1:]

	for _, a := range p.actors {
		a.Bumped = false
	}
	for _, f := range frames {
		p.cells[f.Robot] = f.PrevPC
		for _, ev := range f.Events {
			a, ok := p.actors[ev.Entity]
			if !ok {
				continue
			}
			switch ev.Outcome {
			case movement.Move:
				a.Pos = ev.To
			case movement.UpdateDir:
				a.Facing = ev.NewDir
			case movement.MoveFail:
				a.Bumped = true
			}
		}
	}
	return frames
}

// Actors returns the actors in entity order.
func (p *Playback) Actors() []*Actor {
	actors := make([]*Actor, 0, len(p.order))
	for _, id := range p.order {
		actors = append(actors, p.actors[id])
	}
	return actors
}

// Actor returns the actor for id, or nil.
func (p *Playback) Actor(id entity.ID) *Actor {
	return p.actors[id]
}

// Cell returns the program cell robot last executed, as of the frames
// played so far.
func (p *Playback) Cell(robot entity.ID) (uint8, bool) {
	c, ok := p.cells[robot]
	return c, ok
}
