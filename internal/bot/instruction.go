// Package bot implements the robot program store and its bytecode interpreter.
package bot

import (
	"errors"
	"fmt"
)

// Instruction is a decoded opcode. The numeric values are the bytes stored
// in a Program.
type Instruction byte

const (
	Halt Instruction = iota
	Walk
	TurnAround
	TurnLeft
	TurnRight
	Wait
	Goto
	IfBox
	IfWall
	IfEdge
	IfRobot
	IfNotBox
	IfNotWall
	IfNotEdge
	IfNotRobot

	instructionCount
)

// ErrUnknownOpcode is returned by Decode for bytes that name no instruction.
var ErrUnknownOpcode = errors.New("unknown opcode")

var mnemonics = [instructionCount]string{
	Halt:       "halt",
	Walk:       "walk",
	TurnAround: "turn around",
	TurnLeft:   "turn left",
	TurnRight:  "turn right",
	Wait:       "wait",
	Goto:       "goto",
	IfBox:      "if box",
	IfWall:     "if wall",
	IfEdge:     "if edge",
	IfRobot:    "if robot",
	IfNotBox:   "if not box",
	IfNotWall:  "if not wall",
	IfNotEdge:  "if not edge",
	IfNotRobot: "if not robot",
}

// Instructions returns every instruction in opcode order.
func Instructions() []Instruction {
	all := make([]Instruction, instructionCount)
	for i := range all {
		all[i] = Instruction(i)
	}
	return all
}

// Decode maps a program byte to its instruction.
func Decode(b byte) (Instruction, error) {
	if b >= byte(instructionCount) {
		return Halt, fmt.Errorf("%w: %d", ErrUnknownOpcode, b)
	}
	return Instruction(b), nil
}

// Byte returns the opcode as stored in a program.
func (i Instruction) Byte() byte {
	return byte(i)
}

// String returns the mnemonic used by the program editor.
func (i Instruction) String() string {
	if i >= instructionCount {
		return fmt.Sprintf("opcode(%d)", byte(i))
	}
	return mnemonics[i]
}

// Arity is the number of operand bytes following the opcode.
func (i Instruction) Arity() int {
	switch i {
	case Halt, TurnAround, TurnLeft, TurnRight:
		return 0
	default:
		return 1
	}
}

// IsConditional reports whether the instruction is one of the if-branches.
func (i Instruction) IsConditional() bool {
	return i >= IfBox && i <= IfNotRobot
}

// IsPositive reports whether a conditional jumps when its condition holds.
// It panics for non-conditional instructions.
func (i Instruction) IsPositive() bool {
	switch i {
	case IfBox, IfWall, IfEdge, IfRobot:
		return true
	case IfNotBox, IfNotWall, IfNotEdge, IfNotRobot:
		return false
	}
	panic(fmt.Sprintf("bot: IsPositive called on non-conditional %v", i))
}
