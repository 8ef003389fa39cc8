package bot

import "github.com/lcnr/shitty-bot-game/internal/world"

// StepKind identifies a queued robot action.
type StepKind int

const (
	StepWait StepKind = iota
	StepWalk
	StepUpdateDir
)

// String returns the step kind name.
func (k StepKind) String() string {
	switch k {
	case StepWait:
		return "wait"
	case StepWalk:
		return "walk"
	case StepUpdateDir:
		return "update_dir"
	default:
		return "unknown"
	}
}

// Step is one atomic action produced by the interpreter and consumed by
// the movement resolver.
type Step struct {
	Kind StepKind
	Dir  world.Direction // only for StepUpdateDir
}

// WaitStep returns a step that idles for one tick.
func WaitStep() Step { return Step{Kind: StepWait} }

// WalkStep returns a step that moves one cell forward.
func WalkStep() Step { return Step{Kind: StepWalk} }

// TurnStep returns a step that changes the facing to d.
func TurnStep(d world.Direction) Step { return Step{Kind: StepUpdateDir, Dir: d} }

// State is a robot's mutable execution state.
type State struct {
	Halted bool
	// PC is the address of the next opcode. Always in [0, ProgramSize).
	PC uint8
	// PrevPC is the address of the most recently interpreted opcode,
	// kept for highlighting in the program listing.
	PrevPC uint8
	Facing world.Direction

	steps []Step
}

// NewState returns a fresh state facing dir.
func NewState(dir world.Direction) *State {
	return &State{Facing: dir}
}

// Reset returns the state to its initial values.
func (s *State) Reset(dir world.Direction) {
	s.Halted = false
	s.PC = 0
	s.PrevPC = 0
	s.Facing = dir
	s.steps = s.steps[:0]
}

// Push queues a step. The most recently pushed step is resolved first.
func (s *State) Push(step Step) {
	s.steps = append(s.steps, step)
}

// Pop removes the most recently pushed step.
func (s *State) Pop() (Step, bool) {
	if len(s.steps) == 0 {
		return Step{}, false
	}
	last := len(s.steps) - 1
	step := s.steps[last]
	s.steps = s.steps[:last]
	return step, true
}

// Pending returns the number of queued steps.
func (s *State) Pending() int {
	return len(s.steps)
}

// Clear drops every queued step.
func (s *State) Clear() {
	s.steps = s.steps[:0]
}

// Idle reports whether the interpreter may run: not halted, nothing queued.
func (s *State) Idle() bool {
	return !s.Halted && len(s.steps) == 0
}

func (s *State) advance() {
	s.PC = wrap(int(s.PC) + 1)
}

func (s *State) jump(addr byte) {
	s.PC = wrap(int(addr))
}
