package bot

import (
	"fmt"
	"strings"
)

const (
	// ProgramSize is the number of cells in every robot program.
	ProgramSize = 32
	// MaxOperand is the largest literal a data cell may hold.
	MaxOperand = ProgramSize - 1
)

// Program is a robot's memory: opcodes and operand literals interleaved.
// Nothing tags a cell as code or data; the program counter and each
// opcode's arity decide. The zero Program halts immediately.
type Program [ProgramSize]byte

// wrap reduces an address into the program range.
func wrap(addr int) uint8 {
	addr %= ProgramSize
	if addr < 0 {
		addr += ProgramSize
	}
	return uint8(addr)
}

// Cell is one decoded program line, used for listings.
type Cell struct {
	Addr        uint8
	Instruction Instruction
	Operand     byte
	HasOperand  bool
	Invalid     bool // opcode byte did not decode
}

// Listing walks the program from address 0 following instruction arity,
// the way the interpreter would read it without jumps.
func (p *Program) Listing() []Cell {
	var cells []Cell
	for addr := 0; addr < ProgramSize; {
		c := Cell{Addr: uint8(addr)}
		instr, err := Decode(p[addr])
		addr++
		if err != nil {
			c.Invalid = true
			c.Operand = p[c.Addr]
			cells = append(cells, c)
			continue
		}
		c.Instruction = instr
		if instr.Arity() == 1 && addr < ProgramSize {
			c.Operand = p[addr]
			c.HasOperand = true
			addr++
		}
		cells = append(cells, c)
	}
	return cells
}

// String renders a cell as "addr: mnemonic [operand]".
func (c Cell) String() string {
	switch {
	case c.Invalid:
		return fmt.Sprintf("%02d: %d", c.Addr, c.Operand)
	case c.HasOperand:
		return fmt.Sprintf("%02d: %s %d", c.Addr, c.Instruction, c.Operand)
	default:
		return fmt.Sprintf("%02d: %s", c.Addr, c.Instruction)
	}
}

// String returns the listing, one cell per line.
func (p *Program) String() string {
	var b strings.Builder
	for _, c := range p.Listing() {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	return b.String()
}
