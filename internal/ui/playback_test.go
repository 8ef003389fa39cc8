package ui

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/lcnr/shitty-bot-game/internal/bot"
	"github.com/lcnr/shitty-bot-game/internal/entity"
	"github.com/lcnr/shitty-bot-game/internal/movement"
	"github.com/lcnr/shitty-bot-game/internal/world"
)

func newArena() (*entity.Arena, *entity.Entity, *entity.Entity) {
	arena := entity.NewArena()
	robot := arena.SpawnRobot(world.Pos(0, 0), world.Right, bot.Program{})
	box := arena.SpawnBox(world.Pos(1, 0))
	return arena, robot, box
}

func TestPlaybackQueuesTicks(t *testing.T) {
	arena, robot, box := newArena()
	p := NewPlayback(arena.All())

	if !p.Idle() {
		t.Fatal("new playback should be idle")
	}

	p.Present([]movement.Frame{{
		Robot:  robot.ID,
		PrevPC: 0,
		Events: []movement.Event{
			{Entity: robot.ID, Outcome: movement.Move, From: world.Pos(0, 0), To: world.Pos(1, 0)},
			{Entity: box.ID, Outcome: movement.Move, From: world.Pos(1, 0), To: world.Pos(2, 0)},
		},
	}})
	p.Present([]movement.Frame{{
		Robot:  robot.ID,
		PrevPC: 2,
		Events: []movement.Event{
			{Entity: robot.ID, Outcome: movement.UpdateDir, OldDir: world.Right, NewDir: world.Up},
		},
	}})

	if p.Idle() {
		t.Error("playback with queued ticks should not be idle")
	}
	if got := p.Actor(robot.ID).Pos; got != world.Pos(0, 0) {
		t.Errorf("robot shown at %v before playback, want (0,0)", got)
	}

	p.Step()
	if got := p.Actor(robot.ID).Pos; got != world.Pos(1, 0) {
		t.Errorf("robot at %v after first step, want (1,0)", got)
	}
	if got := p.Actor(box.ID).Pos; got != world.Pos(2, 0) {
		t.Errorf("box at %v after first step, want (2,0)", got)
	}
	if p.Idle() {
		t.Error("one tick still queued, playback should not be idle")
	}

	p.Step()
	if got := p.Actor(robot.ID).Facing; got != world.Up {
		t.Errorf("robot facing %v after second step, want up", got)
	}
	if cell, ok := p.Cell(robot.ID); !ok || cell != 2 {
		t.Errorf("Cell() = %d, %v, want 2, true", cell, ok)
	}
	if !p.Idle() {
		t.Error("playback should be idle once drained")
	}
	if frames := p.Step(); frames != nil {
		t.Errorf("Step() on idle playback = %v, want nil", frames)
	}
}

func TestPlaybackBumpLastsOneStep(t *testing.T) {
	arena, robot, _ := newArena()
	p := NewPlayback(arena.All())

	p.Present([]movement.Frame{{Robot: robot.ID, Events: []movement.Event{{Entity: robot.ID, Outcome: movement.MoveFail}}}})
	p.Present([]movement.Frame{{Robot: robot.ID}})

	p.Step()
	if !p.Actor(robot.ID).Bumped {
		t.Error("robot should show a bump after a failed walk")
	}
	p.Step()
	if p.Actor(robot.ID).Bumped {
		t.Error("bump should clear on the next step")
	}
}

func TestPlaybackSync(t *testing.T) {
	arena, robot, _ := newArena()
	p := NewPlayback(arena.All())
	p.Present([]movement.Frame{{Robot: robot.ID}})

	robot.MoveTo(world.Pos(3, 3))
	p.Sync(arena.All())

	if !p.Idle() {
		t.Error("Sync should drop queued ticks")
	}
	if got := p.Actor(robot.ID).Pos; got != world.Pos(3, 3) {
		t.Errorf("robot at %v after Sync, want (3,3)", got)
	}
	if len(p.Actors()) != 2 {
		t.Errorf("Actors() has %d entries, want 2", len(p.Actors()))
	}
}

func TestLogPresenter(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPresenter(log.New(&buf, "", 0))

	if !p.Idle() {
		t.Error("LogPresenter should always be idle")
	}
	p.Present([]movement.Frame{{
		Robot:  0,
		PrevPC: 4,
		Events: []movement.Event{{Entity: 0, Outcome: movement.MoveFail}},
	}})

	if got := buf.String(); !strings.Contains(got, "tick 1: robot #0 cell 04") {
		t.Errorf("log = %q, want the tick, robot and cell", got)
	}
}

func TestActorRune(t *testing.T) {
	tests := []struct {
		actor Actor
		want  rune
	}{
		{Actor{Kind: world.KindBox}, '■'},
		{Actor{Kind: world.KindRobot, Facing: world.Up}, '▲'},
		{Actor{Kind: world.KindRobot, Facing: world.Down}, '▼'},
		{Actor{Kind: world.KindRobot, Facing: world.Left}, '◀'},
		{Actor{Kind: world.KindRobot, Facing: world.Right}, '▶'},
	}

	for _, tt := range tests {
		if got := actorRune(&tt.actor); got != tt.want {
			t.Errorf("actorRune(%+v) = %q, want %q", tt.actor, got, tt.want)
		}
	}
}
