package game

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/lcnr/shitty-bot-game/internal/bot"
	"github.com/lcnr/shitty-bot-game/internal/entity"
	"github.com/lcnr/shitty-bot-game/internal/movement"
	"github.com/lcnr/shitty-bot-game/internal/telemetry"
)

// ErrLevelOver is returned by Tick once the level has completed or failed.
var ErrLevelOver = errors.New("level is over")

// ErrPresenterBusy is returned by Run when its presenter never becomes idle.
var ErrPresenterBusy = errors.New("presenter is still playing")

// Presenter plays frames back. The simulation only ticks while it is idle,
// so each tick's events finish showing before the next tick runs.
type Presenter interface {
	Idle() bool
	Present(frames []movement.Frame)
}

// TickRecord is everything that happened in one tick.
type TickRecord struct {
	Level  string           `json:"level"`
	Tick   int              `json:"tick"`
	Frames []movement.Frame `json:"frames"`
	Status Status           `json:"status"`
}

// Recorder receives every tick, for journals and observers.
type Recorder interface {
	Record(rec TickRecord) error
}

// Simulation ticks a level.
type Simulation struct {
	level     *Level
	resolver  *movement.Resolver
	ticks     int
	status    Status
	recorders []Recorder
}

// NewSimulation creates a simulation over level in its current state.
func NewSimulation(level *Level) *Simulation {
	return &Simulation{
		level:    level,
		resolver: movement.NewResolver(level.Map, level.Entities),
	}
}

// Level returns the simulated level.
func (s *Simulation) Level() *Level { return s.level }

// Status returns the classification after the latest tick.
func (s *Simulation) Status() Status { return s.status }

// Ticks returns the number of ticks since the last reset.
func (s *Simulation) Ticks() int { return s.ticks }

// AddRecorder registers r to receive every following tick.
func (s *Simulation) AddRecorder(r Recorder) {
	s.recorders = append(s.recorders, r)
}

// Tick runs one round: every robot still in play, in ID order, interprets an
// instruction if its queue is empty and then resolves one queued step.
//
// A robot whose program is malformed halts; the error is returned alongside
// the frames and the other robots still act. Recorder errors are returned
// the same way.
func (s *Simulation) Tick(ctx context.Context) ([]movement.Frame, error) {
	if s.status.Over() {
		return nil, ErrLevelOver
	}

	_, span := telemetry.Tracer("game").Start(ctx, "world.tick")
	defer span.End()

	var errs []error
	robots := s.level.Entities.Robots()
	frames := make([]movement.Frame, 0, len(robots))
	for _, r := range robots {
		if r.Inert {
			continue
		}
		if err := s.interpret(r); err != nil {
			errs = append(errs, fmt.Errorf("robot %d: %w", r.ID, err))
		}
		frames = append(frames, movement.Frame{
			Robot:  r.ID,
			PC:     r.Robot.State.PC,
			PrevPC: r.Robot.State.PrevPC,
			Events: s.resolver.Resolve(r),
		})
	}

	s.ticks++
	s.status = Detect(s.level.Map, s.level.Entities)

	events := 0
	for _, f := range frames {
		events += len(f.Events)
	}
	span.SetAttributes(
		attribute.Int("tick", s.ticks),
		attribute.Int("robots", len(frames)),
		attribute.Int("events", events),
		attribute.String("status", s.status.State.String()),
	)

	rec := TickRecord{
		Level:  s.level.ID,
		Tick:   s.ticks,
		Frames: frames,
		Status: s.status,
	}
	for _, r := range s.recorders {
		if err := r.Record(rec); err != nil {
			errs = append(errs, fmt.Errorf("record tick %d: %w", s.ticks, err))
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
	}
	return frames, err
}

// interpret runs the robot's next instruction against what it faces now.
func (s *Simulation) interpret(r *entity.Entity) error {
	var seen bot.Sighting
	if occupant := s.level.Entities.OccupantAt(r.Pos.Step(r.Facing())); occupant != nil {
		seen = bot.Saw(occupant.Kind)
	}
	return bot.Interpret(&r.Robot.Program, r.Pos, r.Robot.State, s.level.Map, seen)
}

// Advance ticks once if p has finished presenting the previous tick and
// hands it the new frames. It reports whether a tick ran.
func (s *Simulation) Advance(ctx context.Context, p Presenter) (bool, error) {
	if s.status.Over() || !p.Idle() {
		return false, nil
	}
	frames, err := s.Tick(ctx)
	p.Present(frames)
	return true, err
}

// Run ticks until the level is over, maxTicks ticks have run (0 means no
// limit), or ctx is done. Each tick goes through Advance when p is not nil,
// so p has to drain by itself, as a LogPresenter does.
func (s *Simulation) Run(ctx context.Context, p Presenter, maxTicks int) (Status, error) {
	ctx = s.traceStart(ctx)
	defer s.traceEnd(ctx)

	for !s.status.Over() {
		if maxTicks > 0 && s.ticks >= maxTicks {
			break
		}
		if err := ctx.Err(); err != nil {
			return s.status, err
		}

		var err error
		if p == nil {
			_, err = s.Tick(ctx)
		} else {
			var ticked bool
			ticked, err = s.Advance(ctx, p)
			if err == nil && !ticked {
				err = ErrPresenterBusy
			}
		}
		if err != nil {
			return s.status, err
		}
	}
	return s.status, nil
}

// Reset restores the level to its start and forgets the status. It must not
// be called during a tick.
func (s *Simulation) Reset() {
	s.level.Reset()
	s.ticks = 0
	s.status = Status{}
}

func (s *Simulation) traceStart(ctx context.Context) context.Context {
	ctx, span := telemetry.Tracer("game").Start(ctx, "level.start")
	span.SetAttributes(
		attribute.String("level.id", s.level.ID),
		attribute.Int("level.robots", len(s.level.Entities.Robots())),
		attribute.Int("level.entities", s.level.Entities.Count()),
		attribute.Int("map.width", s.level.Map.Width),
		attribute.Int("map.height", s.level.Map.Height),
	)
	span.End()
	return ctx
}

func (s *Simulation) traceEnd(ctx context.Context) {
	_, span := telemetry.Tracer("game").Start(ctx, "level.end")
	span.SetAttributes(
		attribute.String("level.id", s.level.ID),
		attribute.Int("ticks", s.ticks),
		attribute.String("status", s.status.State.String()),
		attribute.String("reason", s.status.Reason),
	)
	span.End()
}
