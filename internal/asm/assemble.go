package asm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/lcnr/shitty-bot-game/internal/bot"
)

// ErrProgramTooLong is returned when a source needs more cells than a
// program holds.
var ErrProgramTooLong = errors.New("program too long")

// Error is an assembly error tied to a source position.
type Error struct {
	Pos lexer.Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

func errorf(pos lexer.Position, format string, args ...any) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// byMnemonic maps editor mnemonics to instructions.
var byMnemonic = func() map[string]bot.Instruction {
	m := make(map[string]bot.Instruction)
	for _, instr := range bot.Instructions() {
		m[instr.String()] = instr
	}
	return m
}()

// Assemble parses text and lays it out as a program. Unused trailing cells
// are zero, which halts.
func Assemble(text string) (bot.Program, error) {
	var prog bot.Program

	src, err := Parse("", text)
	if err != nil {
		return prog, err
	}

	// First pass: instruction lookup and label addresses.
	labels := make(map[string]int)
	instrs := make(map[*Instr]bot.Instruction)
	addr := 0
	for _, item := range src.Items {
		switch {
		case item.Label != nil:
			name := strings.TrimSuffix(*item.Label, ":")
			if _, dup := labels[name]; dup {
				return prog, errorf(item.Pos, "label `%s` defined twice", name)
			}
			labels[name] = addr
		case item.Instr != nil:
			instr, err := lookup(item.Instr)
			if err != nil {
				return prog, err
			}
			instrs[item.Instr] = instr
			addr += 1 + instr.Arity()
		case item.Data != nil:
			addr++
		}
	}
	if addr > bot.ProgramSize {
		return prog, fmt.Errorf("%w: needs %d cells, only %d available", ErrProgramTooLong, addr, bot.ProgramSize)
	}

	// Second pass: emit.
	addr = 0
	for _, item := range src.Items {
		switch {
		case item.Instr != nil:
			instr := instrs[item.Instr]
			prog[addr] = instr.Byte()
			addr++
			if instr.Arity() == 0 {
				continue
			}
			v, err := resolve(item.Instr.Arg, labels)
			if err != nil {
				return prog, err
			}
			prog[addr] = v
			addr++
		case item.Data != nil:
			v, err := resolve(item.Data, labels)
			if err != nil {
				return prog, err
			}
			prog[addr] = v
			addr++
		}
	}
	return prog, nil
}

// MustAssemble is like Assemble but panics on error. Intended for programs
// known at compile time.
func MustAssemble(text string) bot.Program {
	prog, err := Assemble(text)
	if err != nil {
		panic(fmt.Sprintf("asm: %v", err))
	}
	return prog
}

// lookup resolves the words of an instruction, reporting the same problems
// the in-game editor does.
func lookup(in *Instr) (bot.Instruction, error) {
	if instr, ok := byMnemonic[strings.Join(in.Words, " ")]; ok {
		if instr.Arity() == 0 && in.Arg != nil {
			return 0, errorf(in.Arg.Pos, "`%s` takes no operand", instr)
		}
		if instr.Arity() == 1 && in.Arg == nil {
			return 0, errorf(in.Pos, "`%s` expects an operand", instr)
		}
		return instr, nil
	}

	for k := len(in.Words) - 1; k > 0; k-- {
		prefix := strings.Join(in.Words[:k], " ")
		if _, ok := byMnemonic[prefix]; ok {
			return 0, errorf(in.Pos, "unexpected word `%s`, `%s` is already a complete instruction", in.Words[k], prefix)
		}
	}

	switch in.Words[0] {
	case "turn":
		return 0, errorf(in.Pos, "invalid `turn` command, expected one of `turn around`, `turn right`, or `turn left`")
	case "if":
		return 0, errorf(in.Pos, "invalid branch condition, expected one of `box`, `wall`, `edge`, or `robot`, optionally preceded by `not`")
	}
	return 0, errorf(in.Pos, "invalid start of command `%s`", in.Words[0])
}

func resolve(op *Operand, labels map[string]int) (byte, error) {
	if op.Ref != nil {
		target, ok := labels[*op.Ref]
		if !ok {
			return 0, errorf(op.Pos, "undefined label `%s`", *op.Ref)
		}
		// A label after the last cell addresses past the program.
		if target > bot.MaxOperand {
			return 0, errorf(op.Pos, "the value `%d` cannot be stored as it is larger than %d", target, bot.MaxOperand)
		}
		return byte(target), nil
	}
	if *op.Number > bot.MaxOperand {
		return 0, errorf(op.Pos, "the value `%d` cannot be stored as it is larger than %d", *op.Number, bot.MaxOperand)
	}
	return byte(*op.Number), nil
}

// Disassemble renders a program as source that assembles back to the same
// bytes. Cells that do not decode, and an operand-taking opcode in the last
// cell, are written as data. Bytes above MaxOperand do not round-trip.
func Disassemble(p *bot.Program) string {
	var b strings.Builder
	for _, c := range p.Listing() {
		switch {
		case c.Invalid:
			fmt.Fprintf(&b, "%d\n", c.Operand)
		case c.Instruction.Arity() == 1 && !c.HasOperand:
			fmt.Fprintf(&b, "%d\n", c.Instruction.Byte())
		case c.HasOperand:
			fmt.Fprintf(&b, "%s %d\n", c.Instruction, c.Operand)
		default:
			fmt.Fprintf(&b, "%s\n", c.Instruction)
		}
	}
	return b.String()
}
