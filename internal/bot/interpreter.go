package bot

import (
	"errors"
	"fmt"

	"github.com/lcnr/shitty-bot-game/internal/world"
)

// ErrMalformedProgram is returned when the program counter lands on a byte
// that is not an opcode. The editor never produces such programs.
var ErrMalformedProgram = errors.New("malformed program")

// Sighting describes the entity standing on the tile a robot faces.
type Sighting struct {
	Occupied bool
	Kind     world.EntityKind
}

// Saw returns a sighting of an entity of the given kind.
func Saw(kind world.EntityKind) Sighting {
	return Sighting{Occupied: true, Kind: kind}
}

// Interpret executes at most one instruction of p for a robot at pos.
//
// It does nothing while the robot is halted or still has queued steps, so a
// robot advances one instruction per drained step queue. Branch conditions
// are evaluated against tiles and seen as they are now.
func Interpret(p *Program, pos world.GridPos, st *State, tiles world.TileSource, seen Sighting) error {
	if !st.Idle() {
		return nil
	}

	st.PrevPC = st.PC
	addr := st.PC
	instr, err := Decode(p[addr])
	st.advance()
	if err != nil {
		st.Halted = true
		return fmt.Errorf("%w at cell %d: %w", ErrMalformedProgram, addr, err)
	}

	switch instr {
	case Halt:
		st.Halted = true

	case Walk:
		n := st.operand(p)
		for i := 0; i < int(n); i++ {
			st.Push(WalkStep())
		}

	case Wait:
		n := st.operand(p)
		for i := 0; i < int(n); i++ {
			st.Push(WaitStep())
		}

	case TurnAround:
		st.Push(TurnStep(st.Facing.Reverse()))
	case TurnLeft:
		st.Push(TurnStep(st.Facing.TurnLeft()))
	case TurnRight:
		st.Push(TurnStep(st.Facing.TurnRight()))

	case Goto:
		st.jump(st.operand(p))

	default:
		holds := condition(instr, pos, st.Facing, tiles, seen)
		target := st.operand(p)
		if instr.IsPositive() == holds {
			st.jump(target)
		}
	}

	return nil
}

// operand reads the literal at the program counter and advances past it.
func (s *State) operand(p *Program) byte {
	v := p[s.PC]
	s.advance()
	return v
}

// condition evaluates the test of a conditional instruction, ignoring its
// polarity.
func condition(instr Instruction, pos world.GridPos, facing world.Direction, tiles world.TileSource, seen Sighting) bool {
	here := tiles.Tile(pos)
	ahead := tiles.Tile(pos.Step(facing))

	switch instr {
	case IfWall, IfNotWall:
		// Upper floor seen from below blocks like a wall.
		return ahead == world.Wall || (here == world.LowerFloor && ahead == world.UpperFloor)
	case IfEdge, IfNotEdge:
		return ahead == world.Void || (here == world.UpperFloor && ahead == world.LowerFloor)
	case IfBox, IfNotBox:
		return seen.Occupied && seen.Kind == world.KindBox
	case IfRobot, IfNotRobot:
		return seen.Occupied && seen.Kind == world.KindRobot
	}
	panic(fmt.Sprintf("bot: no condition for %v", instr))
}
