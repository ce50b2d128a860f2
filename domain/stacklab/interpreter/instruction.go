package interpreter

import (
	"strings"

	"github.com/kaspanet/stacklab/domain/stacklab/stackitem"
	"github.com/pkg/errors"
)

// opcodePrefix marks a raw program token as an opcode name.
const opcodePrefix = "OP_"

// Instruction is one element of a program: either an opcode, referenced by
// its "OP_"-prefixed name, or a literal data item that is pushed as-is.
type Instruction struct {
	isOpcode bool
	name     string
	literal  stackitem.Item
}

// Op returns an instruction that executes the named opcode.
func Op(name string) Instruction {
	return Instruction{isOpcode: true, name: name}
}

// Push returns an instruction that pushes a copy of item onto the stack.
func Push(item stackitem.Item) Instruction {
	return Instruction{literal: item.Clone()}
}

// IsOpcode returns whether the instruction names an opcode rather than a
// literal.
func (in Instruction) IsOpcode() bool {
	return in.isOpcode
}

// OpcodeName returns the opcode name of an opcode instruction, or "" for a
// literal.
func (in Instruction) OpcodeName() string {
	return in.name
}

// Literal returns a copy of the item pushed by a literal instruction.
func (in Instruction) Literal() stackitem.Item {
	return in.literal.Clone()
}

// String returns the opcode name, or the display form of the literal.
func (in Instruction) String() string {
	if in.isOpcode {
		return in.name
	}
	return stackitem.Format(in.literal)
}

// ParseProgram converts raw program tokens into instructions. Strings that
// start with "OP_" become opcode instructions and every other token becomes
// a literal push, following the rules of stackitem.FromValue.
func ParseProgram(tokens []interface{}) ([]Instruction, error) {
	program := make([]Instruction, 0, len(tokens))
	for i, token := range tokens {
		if text, ok := token.(string); ok && strings.HasPrefix(text, opcodePrefix) {
			program = append(program, Op(text))
			continue
		}
		item, err := stackitem.FromValue(token)
		if err != nil {
			return nil, errors.Wrapf(err, "token #%d", i)
		}
		program = append(program, Instruction{literal: item})
	}
	return program, nil
}

// ParseProgramStrings converts textual tokens, as typed on a command line,
// into instructions. Opcode names are recognized by their "OP_" prefix and
// the remaining tokens are parsed with stackitem.Parse.
func ParseProgramStrings(tokens ...string) []Instruction {
	program := make([]Instruction, 0, len(tokens))
	for _, token := range tokens {
		if strings.HasPrefix(token, opcodePrefix) {
			program = append(program, Op(token))
			continue
		}
		program = append(program, Instruction{literal: stackitem.Parse(token)})
	}
	return program
}

// FormatProgram returns the program as space separated tokens.
func FormatProgram(program []Instruction) string {
	tokens := make([]string, len(program))
	for i, in := range program {
		tokens[i] = in.String()
	}
	return strings.Join(tokens, " ")
}
