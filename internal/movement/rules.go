// Package movement resolves queued robot steps against the map: walking
// legality, chain pushes and the events presentation plays back.
package movement

import "github.com/lcnr/shitty-bot-game/internal/world"

// CanMove reports whether an entity standing on cur may step onto tar while
// travelling in dir. Legality depends on the pair of tiles, not just the
// target.
//
// A ramp facing d descends when walked along d: an upper floor leads onto
// it travelling d, and it leads down to a lower floor travelling d. Two
// ramps connect only when they face opposite ways and the walk follows the
// facing of the ramp being left.
func CanMove(cur, tar world.Place, dir world.Direction) bool {
	if tar == world.Wall {
		return false
	}

	if rampDir, ok := cur.RampDirection(); ok {
		switch tar {
		case world.Void, world.Exit:
			return true
		case world.LowerFloor:
			return dir == rampDir
		case world.UpperFloor:
			return dir == rampDir.Reverse()
		}
		tarDir, _ := tar.RampDirection()
		return rampDir.Opposite(tarDir) && dir == rampDir
	}

	switch cur {
	case world.UpperFloor:
		if rampDir, ok := tar.RampDirection(); ok {
			return dir == rampDir
		}
		return true
	case world.LowerFloor:
		if rampDir, ok := tar.RampDirection(); ok {
			return dir == rampDir.Reverse()
		}
		return tar != world.UpperFloor
	case world.Void:
		return tar == world.Void
	default:
		// Walls are never occupied and exits remove whatever enters them.
		return false
	}
}

// Removes reports whether entering p takes an entity out of play.
func Removes(p world.Place) bool {
	return p == world.Void || p == world.Exit
}
