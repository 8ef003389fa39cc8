// Package asm turns program text written with the editor's mnemonics into
// 32-cell robot programs, and back.
//
// A source is a sequence of cells separated by whitespace, commas or
// newlines:
//
//	start:
//	  if wall dodge     # jump to label "dodge" when facing a wall
//	  walk 1
//	  goto start
//	dodge:
//	  turn left
//	  goto start
//
// Instructions taking an operand consume the next number or label. A bare
// number or label on its own becomes a data cell. Labels may not reuse
// instruction words.
package asm

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var sourceLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `(?:#|//)[^\n]*`},
	{Name: "Label", Pattern: `[A-Za-z_][A-Za-z0-9_]*:`},
	{Name: "Keyword", Pattern: `\b(?:halt|walk|turn|around|left|right|wait|goto|if|not|box|wall|edge|robot)\b`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "EOL", Pattern: `[\r\n]+`},
	{Name: "Whitespace", Pattern: `[ \t,]+`},
})

// Source is a parsed program text.
type Source struct {
	Items []*Item `parser:"( @@ | EOL )*"`
}

// Item is one label, instruction or data cell.
type Item struct {
	Pos   lexer.Position
	Label *string  `parser:"  @Label"`
	Instr *Instr   `parser:"| @@"`
	Data  *Operand `parser:"| @@"`
}

// Instr is a mnemonic, possibly several words long, and its operand.
type Instr struct {
	Pos   lexer.Position
	Words []string `parser:"@Keyword+"`
	Arg   *Operand `parser:"@@?"`
}

// Operand is a literal or a label reference.
type Operand struct {
	Pos    lexer.Position
	Number *int    `parser:"  @Int"`
	Ref    *string `parser:"| @Ident"`
}

var sourceParser = participle.MustBuild[Source](
	participle.Lexer(sourceLexer),
	participle.Elide("Comment", "Whitespace"),
)

// Parse parses program text without resolving it.
func Parse(filename, text string) (*Source, error) {
	return sourceParser.ParseString(filename, text)
}
