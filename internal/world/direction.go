package world

import "fmt"

// Direction is a facing on the grid. It is used both for robots and for ramps.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every direction in declaration order.
var Directions = [...]Direction{Up, Down, Left, Right}

// String returns the lowercase direction name.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// ParseDirection converts a direction name back into a Direction.
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions {
		if d.String() == s {
			return d, nil
		}
	}
	return Up, fmt.Errorf("unknown direction %q", s)
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TurnLeft rotates a quarter turn counter-clockwise.
func (d Direction) TurnLeft() Direction {
	switch d {
	case Up:
		return Left
	case Down:
		return Right
	case Left:
		return Down
	default:
		return Up
	}
}

// TurnRight rotates a quarter turn clockwise.
func (d Direction) TurnRight() Direction {
	switch d {
	case Up:
		return Right
	case Down:
		return Left
	case Left:
		return Up
	default:
		return Down
	}
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// Opposite reports whether d and other point in opposite directions.
func (d Direction) Opposite(other Direction) bool {
	return d.Reverse() == other
}

// Delta returns the unit offset for one step in this direction.
// Up decreases Y, matching row-major map rows.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	default:
		return 1, 0
	}
}

// GridPos is a cell coordinate on the map.
type GridPos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pos is shorthand for constructing a GridPos.
func Pos(x, y int) GridPos {
	return GridPos{X: x, Y: y}
}

// Step returns the neighbouring position in direction d.
func (p GridPos) Step(d Direction) GridPos {
	dx, dy := d.Delta()
	return GridPos{X: p.X + dx, Y: p.Y + dy}
}

// DirectionTo returns the direction from p to an orthogonally adjacent cell.
// ok is false when the cells are not neighbours.
func (p GridPos) DirectionTo(adj GridPos) (Direction, bool) {
	for _, d := range Directions {
		if p.Step(d) == adj {
			return d, true
		}
	}
	return Up, false
}

// String formats the position as "(x,y)".
func (p GridPos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}
