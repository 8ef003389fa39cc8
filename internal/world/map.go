package world

import (
	"fmt"
	"strings"
)

// TileSource answers tile lookups. Implementations must be total.
type TileSource interface {
	Tile(pos GridPos) Place
}

// Map is an immutable level layout.
type Map struct {
	Width  int
	Height int
	layout []Place
}

// ParseMap builds a map from layout rows, one glyph per tile. Trailing
// whitespace is trimmed and short rows are padded with Void.
func ParseMap(rows []string) (*Map, error) {
	lines := make([][]Place, 0, len(rows))
	width := 0
	for y, row := range rows {
		row = strings.TrimRight(row, " \t\r")
		line := make([]Place, 0, len(row))
		for x, c := range row {
			p := Place(c)
			if !p.Valid() {
				return nil, fmt.Errorf("row %d column %d: unexpected tile %q", y, x, c)
			}
			line = append(line, p)
		}
		if len(line) > width {
			width = len(line)
		}
		lines = append(lines, line)
	}

	layout := make([]Place, 0, width*len(lines))
	for _, line := range lines {
		layout = append(layout, line...)
		for i := len(line); i < width; i++ {
			layout = append(layout, Void)
		}
	}

	return &Map{
		Width:  width,
		Height: len(lines),
		layout: layout,
	}, nil
}

// MustParseMap is ParseMap for layouts known to be valid, such as test fixtures.
func MustParseMap(rows ...string) *Map {
	m, err := ParseMap(rows)
	if err != nil {
		panic(err)
	}
	return m
}

// InBounds reports whether pos lies inside the declared width and height.
func (m *Map) InBounds(pos GridPos) bool {
	return pos.X >= 0 && pos.X < m.Width && pos.Y >= 0 && pos.Y < m.Height
}

// Tile returns the place at pos. Anything outside the map is Void.
func (m *Map) Tile(pos GridPos) Place {
	if !m.InBounds(pos) {
		return Void
	}
	return m.layout[pos.Y*m.Width+pos.X]
}

// Rows renders the map back into layout rows.
func (m *Map) Rows() []string {
	rows := make([]string, m.Height)
	var b strings.Builder
	for y := 0; y < m.Height; y++ {
		b.Reset()
		for x := 0; x < m.Width; x++ {
			b.WriteRune(m.Tile(GridPos{X: x, Y: y}).Rune())
		}
		rows[y] = b.String()
	}
	return rows
}
