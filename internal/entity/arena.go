package entity

import (
	"sort"

	"github.com/lcnr/shitty-bot-game/internal/bot"
	"github.com/lcnr/shitty-bot-game/internal/world"
)

// Arena owns every entity of a level, keyed by ID.
type Arena struct {
	entities []*Entity // sorted by ID
	nextID   ID
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{entities: make([]*Entity, 0)}
}

// SpawnRobot adds a robot running program and returns it.
func (a *Arena) SpawnRobot(pos world.GridPos, dir world.Direction, program bot.Program) *Entity {
	e := &Entity{
		ID:    a.nextID,
		Kind:  world.KindRobot,
		Pos:   pos,
		Start: pos,
		Robot: &Robot{
			Program:  program,
			StartDir: dir,
			State:    bot.NewState(dir),
		},
	}
	a.add(e)
	return e
}

// SpawnBox adds a box and returns it.
func (a *Arena) SpawnBox(pos world.GridPos) *Entity {
	e := &Entity{
		ID:    a.nextID,
		Kind:  world.KindBox,
		Pos:   pos,
		Start: pos,
	}
	a.add(e)
	return e
}

func (a *Arena) add(e *Entity) {
	a.nextID++
	a.entities = append(a.entities, e)
}

// Get returns the entity with the given ID, or nil.
func (a *Arena) Get(id ID) *Entity {
	i := sort.Search(len(a.entities), func(i int) bool { return a.entities[i].ID >= id })
	if i < len(a.entities) && a.entities[i].ID == id {
		return a.entities[i]
	}
	return nil
}

// All returns every entity in ID order, inert ones included.
func (a *Arena) All() []*Entity {
	return a.entities
}

// Robots returns every robot in ID order.
func (a *Arena) Robots() []*Entity {
	robots := make([]*Entity, 0, len(a.entities))
	for _, e := range a.entities {
		if e.IsRobot() {
			robots = append(robots, e)
		}
	}
	return robots
}

// Count returns the number of entities.
func (a *Arena) Count() int {
	return len(a.entities)
}

// OccupantAt returns the active entity standing on pos, or nil.
// Inert entities are ignored.
func (a *Arena) OccupantAt(pos world.GridPos) *Entity {
	for _, e := range a.entities {
		if !e.Inert && e.Pos == pos {
			return e
		}
	}
	return nil
}

// Reset restores every entity to its start state.
func (a *Arena) Reset() {
	for _, e := range a.entities {
		e.Reset()
	}
}
