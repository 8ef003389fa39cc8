package movement

import (
	"github.com/lcnr/shitty-bot-game/internal/entity"
	"github.com/lcnr/shitty-bot-game/internal/world"
)

// Snapshot is the read-only view of a level a push is planned against.
type Snapshot interface {
	Tile(pos world.GridPos) world.Place
	// Occupant returns the active entity blocking pos, if any.
	Occupant(pos world.GridPos) (entity.ID, bool)
}

// Shift is one entity moving one cell.
type Shift struct {
	Entity entity.ID
	From   world.GridPos
	To     world.GridPos
}

// Plan is an ordered set of shifts: the walker first, then each entity it
// pushes, nearest first.
type Plan []Shift

// PlanPush works out what happens when entity id at from walks one cell in
// dir. Any entity in the way is pushed along by the same rules, recursively.
// ok is false when the walk or any push in the chain is illegal; then
// nothing may move.
func PlanPush(s Snapshot, id entity.ID, from world.GridPos, dir world.Direction) (plan Plan, ok bool) {
	// Every link in a chain moves one cell further along dir, so a chain
	// never revisits a position and the recursion ends.
	to := from.Step(dir)
	if !CanMove(s.Tile(from), s.Tile(to), dir) {
		return nil, false
	}

	plan = Plan{{Entity: id, From: from, To: to}}
	if blocker, occupied := s.Occupant(to); occupied {
		rest, ok := PlanPush(s, blocker, to, dir)
		if !ok {
			return nil, false
		}
		plan = append(plan, rest...)
	}
	return plan, true
}
