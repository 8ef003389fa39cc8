package gamedata

import (
	"errors"
	"fmt"
	"os"

	"github.com/lcnr/shitty-bot-game/internal/world"
)

const (
	levelsFile       = "levels.json"
	levelsSchemaFile = "levels.schema.json"
)

// SpawnDef places an entity at the start of a level.
type SpawnDef struct {
	X      int             `json:"x"`
	Y      int             `json:"y"`
	Facing world.Direction `json:"facing"` // robots only
}

// Pos returns the spawn cell.
func (s SpawnDef) Pos() world.GridPos {
	return world.Pos(s.X, s.Y)
}

// LevelDef defines a level loaded from JSON.
type LevelDef struct {
	ID       string     `json:"id"`       // Unique identifier (e.g., "first-steps")
	Name     string     `json:"name"`     // Display name
	Hint     string     `json:"hint"`     // Shown while programming
	Map      []string   `json:"map"`      // One string per row, see world.Place
	Robots   []SpawnDef `json:"robots"`   // Robot spawns, in acting order
	Boxes    []SpawnDef `json:"boxes"`    // Box spawns
	Solution []string   `json:"solution"` // Program source per robot that beats the level
}

// ParseMap parses the level's layout.
func (l *LevelDef) ParseMap() (*world.Map, error) {
	m, err := world.ParseMap(l.Map)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", l.ID, err)
	}
	return m, nil
}

// Check verifies that every spawn lies inside the map on a distinct cell
// that is neither a wall, the void nor an exit.
func (l *LevelDef) Check() error {
	m, err := l.ParseMap()
	if err != nil {
		return err
	}
	used := make(map[world.GridPos]bool)
	spawns := append(append([]SpawnDef{}, l.Robots...), l.Boxes...)
	for _, s := range spawns {
		pos := s.Pos()
		if !m.InBounds(pos) {
			return fmt.Errorf("level %s: spawn %v outside the %dx%d map", l.ID, pos, m.Width, m.Height)
		}
		if t := m.Tile(pos); t == world.Wall || t == world.Void || t == world.Exit {
			return fmt.Errorf("level %s: spawn %v on %v", l.ID, pos, t)
		}
		if used[pos] {
			return fmt.Errorf("level %s: two entities spawn at %v", l.ID, pos)
		}
		used[pos] = true
	}
	if len(l.Solution) > 0 && len(l.Solution) != len(l.Robots) {
		return fmt.Errorf("level %s: %d solution programs for %d robots", l.ID, len(l.Solution), len(l.Robots))
	}
	return nil
}

// LevelsFile represents the structure of levels.json.
type LevelsFile struct {
	Levels []LevelDef `json:"levels"`
}

// LoadLevels loads level definitions from the embedded levels.json file.
func LoadLevels() ([]LevelDef, error) {
	file, err := LoadValidated[LevelsFile](levelsFile, levelsSchemaFile)
	if err != nil {
		return nil, err
	}
	return checkLevels(file.Levels)
}

// LoadLevelsFile loads level definitions from a file on disk. The file must
// follow the same schema as the embedded level set.
func LoadLevelsFile(path string) ([]LevelDef, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}
	file, err := Decode[LevelsFile](path, content, levelsSchemaFile)
	if err != nil {
		return nil, err
	}
	return checkLevels(file.Levels)
}

func checkLevels(levels []LevelDef) ([]LevelDef, error) {
	seen := make(map[string]bool)
	for i := range levels {
		if seen[levels[i].ID] {
			return nil, fmt.Errorf("duplicate level id %q", levels[i].ID)
		}
		seen[levels[i].ID] = true
		if err := levels[i].Check(); err != nil {
			return nil, err
		}
	}
	return levels, nil
}

// =============================================================================
// LevelRegistry
// =============================================================================

// LevelRegistry holds the ordered level set and provides lookup utilities.
type LevelRegistry struct {
	levels []LevelDef
	index  map[string]int
}

// NewLevelRegistry creates a registry from loaded level definitions.
func NewLevelRegistry(levels []LevelDef) *LevelRegistry {
	registry := &LevelRegistry{
		levels: levels,
		index:  make(map[string]int),
	}
	for i := range levels {
		registry.index[levels[i].ID] = i
	}
	return registry
}

// LoadLevelRegistry loads and creates a registry from the embedded levels.json,
// or from path when it is not empty.
func LoadLevelRegistry(path string) (*LevelRegistry, error) {
	var (
		levels []LevelDef
		err    error
	)
	if path == "" {
		levels, err = LoadLevels()
	} else {
		levels, err = LoadLevelsFile(path)
	}
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, errors.New("no levels loaded")
	}
	return NewLevelRegistry(levels), nil
}

// MustLoadLevelRegistry loads the embedded registry, panicking on error.
func MustLoadLevelRegistry() *LevelRegistry {
	registry, err := LoadLevelRegistry("")
	if err != nil {
		panic(err)
	}
	return registry
}

// GetByID returns the level definition with the given ID, or nil if not found.
func (r *LevelRegistry) GetByID(id string) *LevelDef {
	i, ok := r.index[id]
	if !ok {
		return nil
	}
	return &r.levels[i]
}

// At returns the level at position i in play order, or nil.
func (r *LevelRegistry) At(i int) *LevelDef {
	if i < 0 || i >= len(r.levels) {
		return nil
	}
	return &r.levels[i]
}

// IndexOf returns the play-order position of a level, or -1.
func (r *LevelRegistry) IndexOf(id string) int {
	i, ok := r.index[id]
	if !ok {
		return -1
	}
	return i
}

// All returns all level definitions in play order.
func (r *LevelRegistry) All() []LevelDef {
	return r.levels
}

// Count returns the number of levels in the registry.
func (r *LevelRegistry) Count() int {
	return len(r.levels)
}
