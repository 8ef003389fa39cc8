package ui

import (
	"log"

	"github.com/lcnr/shitty-bot-game/internal/movement"
)

// LogPresenter writes every event to a logger instead of animating it. It is
// always idle, so the simulation runs as fast as it can tick.
type LogPresenter struct {
	logger *log.Logger
	tick   int
}

// NewLogPresenter creates a presenter logging to logger.
func NewLogPresenter(logger *log.Logger) *LogPresenter {
	return &LogPresenter{logger: logger}
}

// Idle always reports true.
func (p *LogPresenter) Idle() bool { return true }

// Present logs the frames of one tick.
func (p *LogPresenter) Present(frames []movement.Frame) {
	p.tick++
	for _, f := range frames {
		if len(f.Events) == 0 {
			p.logger.Printf("tick %d: robot #%d cell %02d", p.tick, f.Robot, f.PrevPC)
			continue
		}
		for _, ev := range f.Events {
			p.logger.Printf("tick %d: robot #%d cell %02d: %v", p.tick, f.Robot, f.PrevPC, ev)
		}
	}
}
