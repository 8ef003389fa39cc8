package game

import (
	"github.com/lcnr/shitty-bot-game/internal/entity"
	"github.com/lcnr/shitty-bot-game/internal/world"
)

// Failure reasons, in the order they are checked.
const (
	ReasonRobotInVoid = "stage failed: the robot fell into the void and will not make further progress"
	ReasonEarlyExit   = "stage failed: the robot entered the exit without first inserting all boxes"
	ReasonHalted      = "stage failed: the robot halted and will not make further progress"
	ReasonBoxInVoid   = "stage failed: a box fell into the void prevent a successful finish"
)

// Detect classifies the level after a tick. The first matching condition
// wins, so at most one failure is ever reported.
func Detect(tiles world.TileSource, entities *entity.Arena) Status {
	all := entities.All()

	boxesPlaced := true
	for _, e := range all {
		if e.Kind == world.KindBox && tiles.Tile(e.Pos) != world.Exit {
			boxesPlaced = false
			break
		}
	}

	robotsOn := func(p world.Place) bool {
		for _, e := range all {
			if e.Kind == world.KindRobot && tiles.Tile(e.Pos) == p {
				return true
			}
		}
		return false
	}

	switch {
	case robotsOn(world.Void):
		return Status{State: StateFailed, Reason: ReasonRobotInVoid}
	case robotsOn(world.Exit) && !boxesPlaced:
		return Status{State: StateFailed, Reason: ReasonEarlyExit}
	}

	// Robots that reached an exit are halted too; only the ones still in
	// play count.
	for _, e := range all {
		if e.Halted() && !e.Inert {
			return Status{State: StateFailed, Reason: ReasonHalted}
		}
	}

	for _, e := range all {
		if e.Kind == world.KindBox && tiles.Tile(e.Pos) == world.Void {
			return Status{State: StateFailed, Reason: ReasonBoxInVoid}
		}
	}

	if len(all) == 0 {
		return Status{State: StateRunning}
	}
	for _, e := range all {
		if tiles.Tile(e.Pos) != world.Exit {
			return Status{State: StateRunning}
		}
	}
	return Status{State: StateComplete}
}
