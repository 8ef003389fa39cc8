package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lcnr/shitty-bot-game/internal/bot"
	"github.com/lcnr/shitty-bot-game/internal/entity"
	"github.com/lcnr/shitty-bot-game/internal/gamedata"
	"github.com/lcnr/shitty-bot-game/internal/world"
)

// Layout constants.
const (
	mapLeft     = 1
	mapTop      = 2
	listingGap  = 4
	helpMessage = "space: run/pause  r: reset  n: next level  q: quit"
)

// Scene is everything drawn in one frame.
type Scene struct {
	Title    string
	Hint     string
	Status   string
	Map      *world.Map
	Playback *Playback
	Program  *bot.Program
	Robot    entity.ID // whose program is listed
}

// Renderer handles drawing the game to the screen.
type Renderer struct {
	screen  *Screen
	palette *gamedata.Palette
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen, palette *gamedata.Palette) *Renderer {
	return &Renderer{screen: screen, palette: palette}
}

// Render draws the scene: map and actors on the left, the program listing
// on the right, status lines underneath.
func (r *Renderer) Render(sc Scene) {
	r.screen.Clear()

	text := tcell.StyleDefault.Foreground(r.palette.Text)
	r.drawString(0, 0, sc.Title, text.Bold(true))

	// Draw map tiles
	for y := 0; y < sc.Map.Height; y++ {
		for x := 0; x < sc.Map.Width; x++ {
			place := sc.Map.Tile(world.Pos(x, y))
			style := tcell.StyleDefault.Foreground(r.palette.TileColor(place))
			r.screen.SetContent(mapLeft+x, mapTop+y, place.Rune(), style)
		}
	}

	// Draw actors on top
	for _, a := range sc.Playback.Actors() {
		if !sc.Map.InBounds(a.Pos) {
			continue
		}
		style := tcell.StyleDefault.Foreground(r.palette.Box)
		if a.Kind == world.KindRobot {
			style = tcell.StyleDefault.Foreground(r.palette.Robot).Bold(true)
		}
		if a.Bumped {
			style = style.Reverse(true)
		}
		r.screen.SetContent(mapLeft+a.Pos.X, mapTop+a.Pos.Y, actorRune(a), style)
	}

	if sc.Program != nil {
		r.renderListing(mapLeft+sc.Map.Width+listingGap, mapTop, sc)
	}

	y := mapTop + sc.Map.Height + 1
	r.RenderMessage(sc.Hint, y)
	r.RenderMessage(sc.Status, y+1)
	r.RenderMessage(helpMessage, y+3)

	r.screen.Show()
}

// renderListing draws the program, highlighting the cell the robot ran last.
func (r *Renderer) renderListing(left, top int, sc Scene) {
	text := tcell.StyleDefault.Foreground(r.palette.Text)
	highlight := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(r.palette.Highlight)

	current, ran := sc.Playback.Cell(sc.Robot)
	_, height := r.screen.Size()
	r.drawString(left, top-1, fmt.Sprintf("robot #%d", sc.Robot), text.Bold(true))
	for i, c := range sc.Program.Listing() {
		if top+i >= height {
			break
		}
		style := text
		if ran && c.Addr == current {
			style = highlight
		}
		r.drawString(left, top+i, c.String(), style)
	}
}

// actorRune returns the glyph for an actor. Robots point the way they face.
func actorRune(a *Actor) rune {
	if a.Kind == world.KindBox {
		return '■'
	}
	switch a.Facing {
	case world.Up:
		return '▲'
	case world.Down:
		return '▼'
	case world.Left:
		return '◀'
	default:
		return '▶'
	}
}

// RenderMessage displays a message on row y.
func (r *Renderer) RenderMessage(msg string, y int) {
	r.drawString(0, y, msg, tcell.StyleDefault.Foreground(r.palette.Text))
}

func (r *Renderer) drawString(x, y int, msg string, style tcell.Style) {
	for i, ch := range []rune(msg) {
		r.screen.SetContent(x+i, y, ch, style)
	}
}
