package game

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lcnr/shitty-bot-game/internal/bot"
	"github.com/lcnr/shitty-bot-game/internal/gamedata"
	"github.com/lcnr/shitty-bot-game/internal/telemetry"
	"github.com/lcnr/shitty-bot-game/internal/ui"
)

// Progress records beaten levels.
type Progress interface {
	MarkBeaten(ctx context.Context, levelID string, ticks int) error
}

// Game holds the entire interactive game state.
type Game struct {
	screen   *ui.Screen
	renderer *ui.Renderer
	cfg      Config
	levels   *gamedata.LevelRegistry

	index     int
	sim       *Simulation
	playback  *ui.Playback
	selected  int // robot whose program is listed
	progress  Progress
	recorders []Recorder
	message   string

	running  bool
	playing  bool
	reported bool
}

// New creates a new game instance on a fresh terminal screen.
func New(cfg Config, levels *gamedata.LevelRegistry, palette *gamedata.Palette) (*Game, error) {
	screen, err := ui.NewScreen()
	if err != nil {
		return nil, err
	}

	return &Game{
		screen:   screen,
		renderer: ui.NewRenderer(screen, palette),
		cfg:      cfg,
		levels:   levels,
		running:  true,
	}, nil
}

// SetProgress makes the game record beaten levels in p.
func (g *Game) SetProgress(p Progress) {
	g.progress = p
}

// AddRecorder registers r with every level the game loads.
func (g *Game) AddRecorder(r Recorder) {
	g.recorders = append(g.recorders, r)
	if g.sim != nil {
		g.sim.AddRecorder(r)
	}
}

// LoadLevel switches to the level at index i of the registry. Without
// programs the level's reference solution is loaded.
func (g *Game) LoadLevel(i int, programs []bot.Program) error {
	def := g.levels.At(i)
	if def == nil {
		return fmt.Errorf("no level %d", i)
	}

	var (
		level *Level
		err   error
	)
	if programs == nil {
		level, err = SolutionLevel(def)
	} else {
		level, err = NewLevel(def, programs)
	}
	if err != nil {
		return err
	}

	g.index = i
	g.sim = NewSimulation(level)
	for _, r := range g.recorders {
		g.sim.AddRecorder(r)
	}
	g.playback = ui.NewPlayback(level.Entities.All())
	g.selected = 0
	g.playing = false
	g.reported = false
	g.message = ""
	return nil
}

// Run executes the main game loop until the player quits or ctx is done.
func (g *Game) Run(ctx context.Context) error {
	if g.sim == nil {
		if err := g.LoadLevel(0, nil); err != nil {
			return err
		}
	}
	ctx = g.sim.traceStart(ctx)

	// PollEvent blocks, so it gets its own goroutine.
	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(g.cfg.StepDuration)
	defer ticker.Stop()

	// Main game loop
	for g.running {
		g.render()

		select {
		case <-ctx.Done():
			g.running = false
		case ev := <-events:
			g.handleEvent(ctx, ev)
		case <-ticker.C:
			g.step(ctx)
		}
	}

	g.sim.traceEnd(ctx)
	g.screen.Close()
	return nil
}

// step shows the next queued tick and, while playing, simulates another one
// once the previous one has been shown.
func (g *Game) step(ctx context.Context) {
	g.playback.Step()
	if g.playing {
		if _, err := g.sim.Advance(ctx, g.playback); err != nil {
			g.message = err.Error()
		}
	}

	if !g.playback.Idle() || g.reported {
		return
	}
	if status := g.sim.Status(); status.Over() {
		g.reported = true
		g.playing = false
		g.finish(ctx, status)
	}
}

// finish records the outcome of the current level.
func (g *Game) finish(ctx context.Context, status Status) {
	_, span := telemetry.Tracer("game").Start(ctx, "level.finish")
	defer span.End()
	span.SetAttributes(
		attribute.String("level.id", g.sim.Level().ID),
		attribute.String("status", status.State.String()),
		attribute.Int("ticks", g.sim.Ticks()),
	)

	if status.State != StateComplete || g.progress == nil {
		return
	}
	if err := g.progress.MarkBeaten(ctx, g.sim.Level().ID, g.sim.Ticks()); err != nil {
		span.RecordError(err)
		g.message = err.Error()
	}
}

// handleEvent processes a single input event.
func (g *Game) handleEvent(ctx context.Context, ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		g.handleKeyEvent(ctx, ev)
	case *tcell.EventResize:
		g.screen.Sync()
	}
}

// handleKeyEvent processes keyboard input.
func (g *Game) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		g.running = false
	case tcell.KeyTab:
		if n := len(g.sim.Level().Entities.Robots()); n > 0 {
			g.selected = (g.selected + 1) % n
		}
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			g.running = false
		case ' ':
			if !g.sim.Status().Over() {
				g.playing = !g.playing
			}
		case 'r', 'R':
			g.reset()
		case 'n', 'N':
			if err := g.LoadLevel((g.index+1)%g.levels.Count(), nil); err != nil {
				g.message = err.Error()
			}
		}
	}
}

// reset restarts the current level between ticks.
func (g *Game) reset() {
	g.sim.Reset()
	g.playback.Sync(g.sim.Level().Entities.All())
	g.playing = false
	g.reported = false
	g.message = ""
}

// render draws the current level.
func (g *Game) render() {
	level := g.sim.Level()
	scene := ui.Scene{
		Title:    fmt.Sprintf("%s (%d/%d)", level.Name, g.index+1, g.levels.Count()),
		Hint:     level.Hint,
		Status:   g.statusLine(),
		Map:      level.Map,
		Playback: g.playback,
	}
	if robots := level.Entities.Robots(); g.selected < len(robots) {
		scene.Program = &robots[g.selected].Robot.Program
		scene.Robot = robots[g.selected].ID
	}
	g.renderer.Render(scene)
}

func (g *Game) statusLine() string {
	if g.message != "" {
		return g.message
	}
	status := g.sim.Status()
	switch {
	case status.Over() && g.playback.Idle():
		if status.State == StateComplete {
			return fmt.Sprintf("level complete in %d ticks", g.sim.Ticks())
		}
		return status.Reason
	case g.playing:
		return fmt.Sprintf("running, tick %d", g.sim.Ticks())
	default:
		return "paused"
	}
}

// Close cleans up game resources.
func (g *Game) Close() {
	if g.screen != nil {
		g.screen.Close()
	}
}
