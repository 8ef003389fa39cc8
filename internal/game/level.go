package game

import (
	"fmt"

	"github.com/lcnr/shitty-bot-game/internal/asm"
	"github.com/lcnr/shitty-bot-game/internal/bot"
	"github.com/lcnr/shitty-bot-game/internal/entity"
	"github.com/lcnr/shitty-bot-game/internal/gamedata"
	"github.com/lcnr/shitty-bot-game/internal/world"
)

// Level is a playable level: its map and the entities on it.
type Level struct {
	ID       string
	Name     string
	Hint     string
	Map      *world.Map
	Entities *entity.Arena
}

// NewLevel builds a level from its definition. programs[i] is loaded into
// the i-th robot; robots without a program get the zero program, which
// halts at once.
func NewLevel(def *gamedata.LevelDef, programs []bot.Program) (*Level, error) {
	if len(programs) > len(def.Robots) {
		return nil, fmt.Errorf("level %s: %d programs for %d robots", def.ID, len(programs), len(def.Robots))
	}
	m, err := def.ParseMap()
	if err != nil {
		return nil, err
	}

	arena := entity.NewArena()
	for i, r := range def.Robots {
		var prog bot.Program
		if i < len(programs) {
			prog = programs[i]
		}
		arena.SpawnRobot(r.Pos(), r.Facing, prog)
	}
	for _, b := range def.Boxes {
		arena.SpawnBox(b.Pos())
	}

	return &Level{
		ID:       def.ID,
		Name:     def.Name,
		Hint:     def.Hint,
		Map:      m,
		Entities: arena,
	}, nil
}

// SetProgram replaces the program of the i-th robot. The level should be
// reset afterwards.
func (l *Level) SetProgram(i int, prog bot.Program) error {
	robots := l.Entities.Robots()
	if i < 0 || i >= len(robots) {
		return fmt.Errorf("level %s has no robot %d", l.ID, i)
	}
	robots[i].Robot.Program = prog
	return nil
}

// Reset puts every entity back where the level starts.
func (l *Level) Reset() {
	l.Entities.Reset()
}

// AssemblePrograms assembles one program source per robot.
func AssemblePrograms(sources []string) ([]bot.Program, error) {
	programs := make([]bot.Program, len(sources))
	for i, src := range sources {
		prog, err := asm.Assemble(src)
		if err != nil {
			return nil, fmt.Errorf("program %d: %w", i, err)
		}
		programs[i] = prog
	}
	return programs, nil
}

// SolutionLevel builds a level loaded with its reference solution.
func SolutionLevel(def *gamedata.LevelDef) (*Level, error) {
	programs, err := AssemblePrograms(def.Solution)
	if err != nil {
		return nil, fmt.Errorf("level %s solution: %w", def.ID, err)
	}
	return NewLevel(def, programs)
}
