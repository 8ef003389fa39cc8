package gamedata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/lcnr/shitty-bot-game/internal/world"
)

// PaletteDef is the structure of palette.json. Colors are hex strings.
type PaletteDef struct {
	Tiles     map[string]string `json:"tiles"` // keyed by the tile glyph
	Robot     string            `json:"robot"`
	Box       string            `json:"box"`
	Highlight string            `json:"highlight"` // current program cell
	Text      string            `json:"text"`
}

// Palette is a resolved PaletteDef.
type Palette struct {
	Tiles     map[world.Place]tcell.Color
	Robot     tcell.Color
	Box       tcell.Color
	Highlight tcell.Color
	Text      tcell.Color
}

// TileColor returns the color for p, or the default color.
func (p *Palette) TileColor(place world.Place) tcell.Color {
	if c, ok := p.Tiles[place]; ok {
		return c
	}
	return tcell.ColorDefault
}

// LoadPalette loads and resolves the embedded palette.json.
func LoadPalette() (*Palette, error) {
	def, err := Load[PaletteDef]("palette.json")
	if err != nil {
		return nil, err
	}
	return def.Resolve()
}

// MustLoadPalette loads the palette, panicking on error.
func MustLoadPalette() *Palette {
	p, err := LoadPalette()
	if err != nil {
		panic(err)
	}
	return p
}

// Resolve parses every color of the definition.
func (d *PaletteDef) Resolve() (*Palette, error) {
	p := &Palette{Tiles: make(map[world.Place]tcell.Color, len(d.Tiles))}
	for glyph, hex := range d.Tiles {
		runes := []rune(glyph)
		if len(runes) != 1 || !world.Place(runes[0]).Valid() {
			return nil, fmt.Errorf("palette: unknown tile %q", glyph)
		}
		c, err := ParseHexColor(hex)
		if err != nil {
			return nil, fmt.Errorf("palette: tile %q: %w", glyph, err)
		}
		p.Tiles[world.Place(runes[0])] = c
	}

	for _, field := range []struct {
		name string
		hex  string
		dst  *tcell.Color
	}{
		{"robot", d.Robot, &p.Robot},
		{"box", d.Box, &p.Box},
		{"highlight", d.Highlight, &p.Highlight},
		{"text", d.Text, &p.Text},
	} {
		c, err := ParseHexColor(field.hex)
		if err != nil {
			return nil, fmt.Errorf("palette: %s: %w", field.name, err)
		}
		*field.dst = c
	}
	return p, nil
}

// ParseHexColor converts a hex color string (e.g., "#FF0000" or "FF0000") to a tcell.Color.
func ParseHexColor(hex string) (tcell.Color, error) {
	// Remove leading # if present
	hex = strings.TrimPrefix(hex, "#")

	if len(hex) != 6 {
		return tcell.ColorDefault, fmt.Errorf("invalid hex color length: %s", hex)
	}

	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("invalid hex color %s: %w", hex, err)
	}

	return tcell.NewHexColor(int32(rgb)), nil
}
