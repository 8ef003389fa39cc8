package game

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"

	"github.com/lcnr/shitty-bot-game/internal/asm"
	"github.com/lcnr/shitty-bot-game/internal/bot"
	"github.com/lcnr/shitty-bot-game/internal/entity"
	"github.com/lcnr/shitty-bot-game/internal/gamedata"
	"github.com/lcnr/shitty-bot-game/internal/movement"
	"github.com/lcnr/shitty-bot-game/internal/ui"
	"github.com/lcnr/shitty-bot-game/internal/world"
)

// testLevel builds a level directly from layout rows.
func testLevel(rows ...string) *Level {
	return &Level{
		ID:       "test",
		Name:     "Test",
		Map:      world.MustParseMap(rows...),
		Entities: entity.NewArena(),
	}
}

func tickN(t *testing.T, sim *Simulation, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := sim.Tick(context.Background()); err != nil {
			t.Fatalf("tick %d: %v", sim.Ticks(), err)
		}
	}
}

func TestWalkTurnLoopOnOpenRow(t *testing.T) {
	level := testLevel("......")
	prog := bot.Program{bot.Walk.Byte(), 5, bot.TurnLeft.Byte(), bot.Goto.Byte(), 0}
	robot := level.Entities.SpawnRobot(world.Pos(0, 0), world.Right, prog)
	sim := NewSimulation(level)

	tickN(t, sim, 5)
	if robot.Pos != world.Pos(5, 0) {
		t.Fatalf("after 5 ticks robot at %v, want (5,0)", robot.Pos)
	}

	tickN(t, sim, 1)
	if robot.Facing() != world.Up {
		t.Errorf("after turning robot faces %v, want up", robot.Facing())
	}

	tickN(t, sim, 1)
	if robot.Robot.State.PC != 0 {
		t.Errorf("after goto PC = %d, want 0", robot.Robot.State.PC)
	}
	if sim.Status().Over() {
		t.Fatalf("status = %v before leaving the row", sim.Status())
	}

	// The second pass walks up off the single row.
	tickN(t, sim, 1)
	if got := sim.Status(); got.Reason != ReasonRobotInVoid {
		t.Errorf("status = %v, want the void failure", got)
	}
	if _, err := sim.Tick(context.Background()); !errors.Is(err, ErrLevelOver) {
		t.Errorf("Tick() after failure error = %v, want ErrLevelOver", err)
	}
}

func TestWalkTurnLoopIsStable(t *testing.T) {
	rows := []string{"......", "......", "......", "......", "......", "......"}
	level := testLevel(rows...)
	prog := asm.MustAssemble("walk 5\nturn left\ngoto 0")
	robot := level.Entities.SpawnRobot(world.Pos(0, 5), world.Right, prog)
	sim := NewSimulation(level)

	// Each side is five walks, a turn and a goto.
	const lap = 4 * 7
	corners := []world.GridPos{world.Pos(5, 5), world.Pos(5, 0), world.Pos(0, 0), world.Pos(0, 5)}
	for i, want := range corners {
		tickN(t, sim, 5)
		if robot.Pos != want {
			t.Fatalf("side %d ends at %v, want %v", i, robot.Pos, want)
		}
		tickN(t, sim, 2)
	}
	if robot.Facing() != world.Right || robot.Robot.State.PC != 0 {
		t.Errorf("after a lap: facing %v PC %d, want right and 0", robot.Facing(), robot.Robot.State.PC)
	}

	for i := 0; i < 10*lap; i++ {
		tickN(t, sim, 1)
		if pc := robot.Robot.State.PC; pc >= bot.ProgramSize {
			t.Fatalf("PC %d out of range", pc)
		}
	}
	if sim.Status().Over() {
		t.Errorf("status = %v, the loop should run forever", sim.Status())
	}
	if robot.Pos != world.Pos(0, 5) {
		t.Errorf("after 11 laps robot at %v, want (0,5)", robot.Pos)
	}
}

func TestWalkZeroIsNoOp(t *testing.T) {
	withZero := testLevel("....")
	a := withZero.Entities.SpawnRobot(world.Pos(0, 0), world.Right, bot.Program{bot.Walk.Byte(), 0, bot.Walk.Byte(), 1})
	plain := testLevel("....")
	b := plain.Entities.SpawnRobot(world.Pos(0, 0), world.Right, bot.Program{bot.Walk.Byte(), 1})

	simA, simB := NewSimulation(withZero), NewSimulation(plain)

	frames, err := simA.Tick(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 1 || len(frames[0].Events) != 0 {
		t.Errorf("walk 0 frames = %+v, want one frame without events", frames)
	}
	tickN(t, simA, 1)
	tickN(t, simB, 1)

	if a.Pos != b.Pos || a.Pos != world.Pos(1, 0) {
		t.Errorf("positions %v and %v, want both (1,0)", a.Pos, b.Pos)
	}
}

func TestRobotsActInIDOrder(t *testing.T) {
	level := testLevel("...", "...", "...")
	first := level.Entities.SpawnRobot(world.Pos(1, 0), world.Down, bot.Program{bot.Walk.Byte(), 1})
	second := level.Entities.SpawnRobot(world.Pos(0, 1), world.Right, bot.Program{bot.Walk.Byte(), 1})
	box := level.Entities.SpawnBox(world.Pos(1, 1))
	sim := NewSimulation(level)

	frames, err := sim.Tick(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// The first robot pushes the box down, then the second pushes the
	// first robot aside.
	if box.Pos != world.Pos(1, 2) {
		t.Errorf("box at %v, want (1,2)", box.Pos)
	}
	if first.Pos != world.Pos(2, 1) {
		t.Errorf("first robot at %v, want (2,1)", first.Pos)
	}
	if second.Pos != world.Pos(1, 1) {
		t.Errorf("second robot at %v, want (1,1)", second.Pos)
	}
	if len(frames) != 2 || frames[0].Robot != first.ID || frames[1].Robot != second.ID {
		t.Fatalf("frames = %+v, want one per robot in ID order", frames)
	}
	if n := len(frames[1].Events); n != 2 {
		t.Errorf("second robot's frame has %d events, want 2", n)
	}
}

func TestMalformedProgramHalts(t *testing.T) {
	level := testLevel("...")
	level.Entities.SpawnRobot(world.Pos(0, 0), world.Right, bot.Program{20})
	sim := NewSimulation(level)

	_, err := sim.Tick(context.Background())
	if !errors.Is(err, bot.ErrMalformedProgram) {
		t.Errorf("Tick() error = %v, want ErrMalformedProgram", err)
	}
	if got := sim.Status(); got.Reason != ReasonHalted {
		t.Errorf("status = %v, want the halted failure", got)
	}
}

type fakeRecorder struct {
	records []TickRecord
	err     error
}

func (r *fakeRecorder) Record(rec TickRecord) error {
	r.records = append(r.records, rec)
	return r.err
}

func TestRecorders(t *testing.T) {
	level := testLevel("..o")
	level.Entities.SpawnRobot(world.Pos(0, 0), world.Right, bot.Program{bot.Walk.Byte(), 2})
	sim := NewSimulation(level)

	ok := &fakeRecorder{}
	failing := &fakeRecorder{err: errors.New("disk full")}
	sim.AddRecorder(ok)
	sim.AddRecorder(failing)

	_, err := sim.Tick(context.Background())
	if err == nil || !errors.Is(err, failing.err) {
		t.Errorf("Tick() error = %v, want the recorder error", err)
	}
	_, _ = sim.Tick(context.Background())

	if len(ok.records) != 2 {
		t.Fatalf("recorder saw %d ticks, want 2", len(ok.records))
	}
	last := ok.records[1]
	if last.Tick != 2 || last.Level != "test" || last.Status.State != StateComplete {
		t.Errorf("last record = %+v, want tick 2 of test, complete", last)
	}
}

func TestAdvanceWaitsForPlayback(t *testing.T) {
	level := testLevel("....")
	level.Entities.SpawnRobot(world.Pos(0, 0), world.Right, bot.Program{bot.Walk.Byte(), 3})
	sim := NewSimulation(level)
	playback := ui.NewPlayback(level.Entities.All())
	ctx := context.Background()

	ticked, err := sim.Advance(ctx, playback)
	if err != nil || !ticked {
		t.Fatalf("first Advance() = %v, %v, want a tick", ticked, err)
	}
	ticked, _ = sim.Advance(ctx, playback)
	if ticked {
		t.Error("Advance() ticked before the previous tick was shown")
	}
	if sim.Ticks() != 1 {
		t.Errorf("Ticks() = %d, want 1", sim.Ticks())
	}

	playback.Step()
	if ticked, _ = sim.Advance(ctx, playback); !ticked {
		t.Error("Advance() should tick once playback is idle")
	}
}

func TestRunWithLogPresenter(t *testing.T) {
	level := testLevel(".o")
	level.Entities.SpawnRobot(world.Pos(0, 0), world.Right, bot.Program{bot.Walk.Byte(), 1})
	sim := NewSimulation(level)

	var buf bytes.Buffer
	status, err := sim.Run(context.Background(), ui.NewLogPresenter(log.New(&buf, "", 0)), 10)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if status.State != StateComplete {
		t.Errorf("Run() = %v, want complete", status)
	}
	if buf.Len() == 0 {
		t.Error("log presenter wrote nothing")
	}
}

func TestRunBusyPresenter(t *testing.T) {
	level := testLevel("....")
	level.Entities.SpawnRobot(world.Pos(0, 0), world.Right, bot.Program{bot.Walk.Byte(), 3})
	sim := NewSimulation(level)

	// Playback never drains by itself.
	_, err := sim.Run(context.Background(), ui.NewPlayback(level.Entities.All()), 10)
	if !errors.Is(err, ErrPresenterBusy) {
		t.Errorf("Run() error = %v, want ErrPresenterBusy", err)
	}
}

func TestRunStopsAtMaxTicks(t *testing.T) {
	level := testLevel("....")
	level.Entities.SpawnRobot(world.Pos(0, 0), world.Right, bot.Program{bot.Wait.Byte(), 31, bot.Goto.Byte(), 0})
	sim := NewSimulation(level)

	status, err := sim.Run(context.Background(), nil, 50)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if status.Over() || sim.Ticks() != 50 {
		t.Errorf("Run() = %v after %d ticks, want running after 50", status, sim.Ticks())
	}
}

func TestRunHonoursContext(t *testing.T) {
	level := testLevel("....")
	level.Entities.SpawnRobot(world.Pos(0, 0), world.Right, bot.Program{bot.Goto.Byte(), 0})
	sim := NewSimulation(level)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sim.Run(ctx, nil, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestReset(t *testing.T) {
	level := testLevel("...o")
	robot := level.Entities.SpawnRobot(world.Pos(0, 0), world.Right, asm.MustAssemble("walk 3"))
	box := level.Entities.SpawnBox(world.Pos(1, 0))
	sim := NewSimulation(level)

	status, err := sim.Run(context.Background(), nil, 100)
	if err != nil {
		t.Fatal(err)
	}
	if status.State != StateComplete || sim.Ticks() != 3 {
		t.Fatalf("Run() = %v after %d ticks, want complete after 3", status, sim.Ticks())
	}

	sim.Reset()
	if sim.Ticks() != 0 || sim.Status().Over() {
		t.Errorf("after Reset: ticks %d status %v", sim.Ticks(), sim.Status())
	}
	if robot.Pos != world.Pos(0, 0) || robot.Facing() != world.Right || robot.Inert {
		t.Errorf("robot after Reset = %+v, want back at start", robot)
	}
	st := robot.Robot.State
	if st.PC != 0 || st.Halted || st.Pending() != 0 {
		t.Errorf("robot state after Reset = %+v, want fresh", st)
	}
	if box.Pos != world.Pos(1, 0) || box.Inert {
		t.Errorf("box after Reset = %+v, want back at start", box)
	}

	// The level plays out the same way again.
	status, err = sim.Run(context.Background(), nil, 100)
	if err != nil {
		t.Fatal(err)
	}
	if status.State != StateComplete || sim.Ticks() != 3 {
		t.Errorf("second Run() = %v after %d ticks, want complete after 3", status, sim.Ticks())
	}
}

func TestEmbeddedSolutions(t *testing.T) {
	registry := gamedata.MustLoadLevelRegistry()
	for _, def := range registry.All() {
		t.Run(def.ID, func(t *testing.T) {
			level, err := SolutionLevel(&def)
			if err != nil {
				t.Fatalf("SolutionLevel() error = %v", err)
			}
			status, err := NewSimulation(level).Run(context.Background(), nil, 500)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if status.State != StateComplete {
				t.Errorf("solution ends %v, want complete", status)
			}
		})
	}
}

func TestFramesCarryProgramCells(t *testing.T) {
	level := testLevel("....")
	level.Entities.SpawnRobot(world.Pos(0, 0), world.Right, bot.Program{bot.TurnLeft.Byte(), bot.TurnRight.Byte()})
	sim := NewSimulation(level)

	var frames []movement.Frame
	for i := 0; i < 2; i++ {
		f, err := sim.Tick(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		frames = append(frames, f...)
	}
	if frames[0].PrevPC != 0 || frames[1].PrevPC != 1 {
		t.Errorf("PrevPC = %d, %d, want 0, 1", frames[0].PrevPC, frames[1].PrevPC)
	}
	if ev := frames[1].Events[0]; ev.Outcome != movement.UpdateDir || ev.NewDir != world.Right {
		t.Errorf("second event = %v, want a turn back to right", ev)
	}
}
