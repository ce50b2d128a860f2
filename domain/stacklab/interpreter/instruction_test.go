package interpreter

import (
	"testing"

	"github.com/kaspanet/stacklab/domain/stacklab/stackitem"
)

func TestParseProgram(t *testing.T) {
	t.Parallel()

	program, err := ParseProgram([]interface{}{
		"OP_DUP", 5, "0xab", "hello", true, []byte{1, 2}, float64(3), stackitem.String("OP_X"), uint8(7),
	})
	if err != nil {
		t.Fatalf("ParseProgram: %s", err)
	}
	expected := []struct {
		isOpcode bool
		str      string
	}{
		{true, "OP_DUP"},
		{false, "5"},
		{false, "0xab"},
		{false, "'hello'"},
		{false, "true"},
		{false, "0x0102"},
		{false, "3"},
		{false, "'OP_X'"},
		{false, "7"},
	}
	if len(program) != len(expected) {
		t.Fatalf("ParseProgram: got %d instructions, want %d", len(program), len(expected))
	}
	for i, in := range program {
		if in.IsOpcode() != expected[i].isOpcode || in.String() != expected[i].str {
			t.Errorf("instruction #%d: got (%t, %s), want (%t, %s)", i,
				in.IsOpcode(), in, expected[i].isOpcode, expected[i].str)
		}
	}
}

func TestParseProgramErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tokens []interface{}
	}{
		{"fractional float", []interface{}{1.5}},
		{"unsupported type", []interface{}{"OP_1", struct{}{}}},
		{"nil", []interface{}{nil}},
	}
	for _, test := range tests {
		_, err := ParseProgram(test.tokens)
		if err == nil {
			t.Errorf("%s: expected an error", test.name)
		}
	}
}

func TestParseProgramStrings(t *testing.T) {
	t.Parallel()

	program := ParseProgramStrings("OP_1", "-3", "'x y'", "false", "0x00")
	if got := FormatProgram(program); got != "OP_1 -3 'x y' false 0x00" {
		t.Fatalf("FormatProgram: got %q", got)
	}
	if !program[0].IsOpcode() || program[0].OpcodeName() != "OP_1" {
		t.Fatalf("expected the first instruction to be OP_1")
	}
	if program[1].IsOpcode() || program[1].OpcodeName() != "" {
		t.Fatalf("expected the second instruction to be a literal")
	}
	if n, ok := program[1].Literal().Int64(); !ok || n != -3 {
		t.Fatalf("expected the literal -3, got %s", program[1].Literal())
	}
}
