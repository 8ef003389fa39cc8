package movement

import (
	"github.com/lcnr/shitty-bot-game/internal/bot"
	"github.com/lcnr/shitty-bot-game/internal/entity"
	"github.com/lcnr/shitty-bot-game/internal/world"
)

// Resolver applies queued robot steps to a level.
type Resolver struct {
	tiles    world.TileSource
	entities *entity.Arena
}

// NewResolver creates a resolver over a map and its entities.
func NewResolver(tiles world.TileSource, entities *entity.Arena) *Resolver {
	return &Resolver{
		tiles:    tiles,
		entities: entities,
	}
}

// Tile implements Snapshot.
func (r *Resolver) Tile(pos world.GridPos) world.Place {
	return r.tiles.Tile(pos)
}

// Occupant implements Snapshot.
func (r *Resolver) Occupant(pos world.GridPos) (entity.ID, bool) {
	if e := r.entities.OccupantAt(pos); e != nil {
		return e.ID, true
	}
	return 0, false
}

// Resolve pops the most recently queued step of robot and applies it.
// It returns no events when nothing is queued.
func (r *Resolver) Resolve(robot *entity.Entity) []Event {
	if !robot.IsRobot() {
		return nil
	}
	state := robot.Robot.State
	step, ok := state.Pop()
	if !ok {
		return nil
	}

	switch step.Kind {
	case bot.StepWait:
		return []Event{{Entity: robot.ID, Outcome: Idle, From: robot.Pos, To: robot.Pos}}

	case bot.StepUpdateDir:
		ev := Event{
			Entity:  robot.ID,
			Outcome: UpdateDir,
			From:    robot.Pos,
			To:      robot.Pos,
			OldDir:  state.Facing,
			NewDir:  step.Dir,
		}
		state.Facing = step.Dir
		return []Event{ev}

	default:
		return r.walk(robot)
	}
}

// walk plans the robot's walk and commits it, or reports a MoveFail.
func (r *Resolver) walk(robot *entity.Entity) []Event {
	plan, ok := PlanPush(r, robot.ID, robot.Pos, robot.Facing())
	if !ok {
		return []Event{{Entity: robot.ID, Outcome: MoveFail, From: robot.Pos, To: robot.Pos}}
	}
	return r.Apply(plan)
}

// Apply commits a plan produced by PlanPush. Entities that end up on a void
// or exit tile are taken out of play.
func (r *Resolver) Apply(plan Plan) []Event {
	events := make([]Event, 0, len(plan))
	for _, shift := range plan {
		e := r.entities.Get(shift.Entity)
		if e == nil {
			continue
		}
		events = append(events, Event{
			Entity:  shift.Entity,
			Outcome: Move,
			From:    shift.From,
			To:      shift.To,
		})
		e.MoveTo(shift.To)
		if Removes(r.tiles.Tile(shift.To)) {
			e.MarkInert()
		}
	}
	return events
}
