// Package world provides the tile grid that robots and boxes move on.
package world

// Place is the kind of a single map tile. Its value is the glyph used in
// textual level layouts.
type Place rune

const (
	// UpperFloor is raised ground; stepping down to a LowerFloor is an edge.
	UpperFloor Place = '-'
	// LowerFloor is ground level; an UpperFloor in front of it acts as a wall.
	LowerFloor Place = '.'
	// RampUp, RampDown, RampLeft and RampRight connect the two floor levels.
	// The facing is the direction of travel that descends the ramp.
	RampUp    Place = '^'
	RampDown  Place = 'v'
	RampLeft  Place = '<'
	RampRight Place = '>'
	// Void swallows anything that enters it. Out-of-bounds reads are Void.
	Void Place = ' '
	// Wall blocks every move.
	Wall Place = 'X'
	// Exit removes whatever enters it from play; the level is won when
	// every robot and box has reached one.
	Exit Place = 'o'
)

// Ramp returns the ramp tile facing d.
func Ramp(d Direction) Place {
	switch d {
	case Up:
		return RampUp
	case Down:
		return RampDown
	case Left:
		return RampLeft
	default:
		return RampRight
	}
}

// RampDirection returns the facing of a ramp tile. ok is false for
// every other place.
func (p Place) RampDirection() (Direction, bool) {
	switch p {
	case RampUp:
		return Up, true
	case RampDown:
		return Down, true
	case RampLeft:
		return Left, true
	case RampRight:
		return Right, true
	default:
		return Up, false
	}
}

// IsRamp reports whether the place is any ramp.
func (p Place) IsRamp() bool {
	_, ok := p.RampDirection()
	return ok
}

// Valid reports whether p is one of the known places.
func (p Place) Valid() bool {
	switch p {
	case UpperFloor, LowerFloor, Void, Wall, Exit:
		return true
	}
	return p.IsRamp()
}

// Rune returns the layout glyph.
func (p Place) Rune() rune {
	return rune(p)
}

// String returns a readable name, used in logs and test failures.
func (p Place) String() string {
	switch p {
	case UpperFloor:
		return "upper"
	case LowerFloor:
		return "lower"
	case Void:
		return "void"
	case Wall:
		return "wall"
	case Exit:
		return "exit"
	}
	if d, ok := p.RampDirection(); ok {
		return "ramp-" + d.String()
	}
	return "unknown"
}

// EntityKind tags the things that occupy tiles.
type EntityKind int

const (
	KindRobot EntityKind = iota
	KindBox
)

// String returns the entity kind name.
func (k EntityKind) String() string {
	switch k {
	case KindRobot:
		return "robot"
	case KindBox:
		return "box"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k EntityKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
