package interpreter

import (
	"encoding/hex"
	"math"
	"strconv"
	"testing"

	"github.com/kaspanet/stacklab/domain/stacklab/stackitem"
)

func hexToBytes(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("invalid hex %q: %s", s, err)
	}
	return b
}

// TestOpcodes runs each program and checks the resulting stack or the error
// code of the failing step.
func TestOpcodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		program []string
		// stack is the expected final stack in display form.
		stack string
		// err is the expected error code of a failing step, if any.
		err *ErrorCode
	}{
		{name: "OP_0", program: []string{"OP_0"}, stack: "[0]"},
		{name: "OP_FALSE", program: []string{"OP_FALSE"}, stack: "[0]"},
		{name: "OP_TRUE", program: []string{"OP_TRUE"}, stack: "[1]"},
		{name: "OP_1NEGATE", program: []string{"OP_1NEGATE"}, stack: "[-1]"},
		{name: "OP_16", program: []string{"OP_16"}, stack: "[16]"},
		{name: "OP_NOP", program: []string{"OP_1", "OP_NOP"}, stack: "[1]"},
		{name: "OP_IFDUP true", program: []string{"OP_2", "OP_IFDUP"}, stack: "[2 2]"},
		{name: "OP_IFDUP false", program: []string{"OP_0", "OP_IFDUP"}, stack: "[0]"},
		{name: "OP_DEPTH", program: []string{"OP_1", "OP_1", "OP_DEPTH"}, stack: "[1 1 2]"},
		{name: "OP_DEPTH empty", program: []string{"OP_DEPTH"}, stack: "[0]"},
		{name: "OP_DROP", program: []string{"OP_1", "OP_2", "OP_DROP"}, stack: "[1]"},
		{name: "OP_NIP", program: []string{"OP_1", "OP_2", "OP_NIP"}, stack: "[2]"},
		{name: "OP_OVER", program: []string{"OP_1", "OP_2", "OP_OVER"}, stack: "[1 2 1]"},
		{name: "OP_PICK", program: []string{"OP_1", "OP_2", "OP_3", "OP_2", "OP_PICK"}, stack: "[1 2 3 1]"},
		{name: "OP_PICK 0", program: []string{"OP_1", "OP_2", "OP_0", "OP_PICK"}, stack: "[1 2 2]"},
		{name: "OP_PICK out of range", program: []string{"OP_1", "OP_2", "OP_PICK"}, err: errCode(ErrStackUnderflow)},
		{name: "OP_PICK negative", program: []string{"OP_1", "OP_1NEGATE", "OP_PICK"}, err: errCode(ErrInvalidStackOperation)},
		{name: "OP_ROLL", program: []string{"OP_1", "OP_2", "OP_3", "OP_2", "OP_ROLL"}, stack: "[2 3 1]"},
		{name: "OP_ROLL 0", program: []string{"OP_1", "OP_2", "OP_0", "OP_ROLL"}, stack: "[1 2]"},
		{name: "OP_ROT", program: []string{"OP_1", "OP_2", "OP_3", "OP_ROT"}, stack: "[2 3 1]"},
		{name: "OP_SWAP", program: []string{"OP_1", "OP_2", "OP_SWAP"}, stack: "[2 1]"},
		{name: "OP_TUCK", program: []string{"OP_1", "OP_2", "OP_TUCK"}, stack: "[2 1 2]"},
		{name: "OP_2DROP", program: []string{"OP_1", "OP_2", "OP_3", "OP_2DROP"}, stack: "[1]"},
		{name: "OP_2DUP", program: []string{"OP_1", "OP_2", "OP_2DUP"}, stack: "[1 2 1 2]"},
		{name: "OP_3DUP", program: []string{"OP_1", "OP_2", "OP_3", "OP_3DUP"}, stack: "[1 2 3 1 2 3]"},
		{name: "OP_2OVER", program: []string{"OP_1", "OP_2", "OP_3", "OP_4", "OP_2OVER"}, stack: "[1 2 3 4 1 2]"},
		{name: "OP_2ROT", program: []string{"OP_1", "OP_2", "OP_3", "OP_4", "OP_5", "OP_6", "OP_2ROT"}, stack: "[3 4 5 6 1 2]"},
		{name: "OP_2SWAP", program: []string{"OP_1", "OP_2", "OP_3", "OP_4", "OP_2SWAP"}, stack: "[3 4 1 2]"},
		{name: "OP_2ROT underflow", program: []string{"OP_1", "OP_2", "OP_2ROT"}, err: errCode(ErrStackUnderflow)},
		{name: "OP_SIZE number", program: []string{"128", "OP_SIZE"}, stack: "[128 2]"},
		{name: "OP_SIZE hex", program: []string{"0xabcdef", "OP_SIZE"}, stack: "[0xabcdef 3]"},
		{name: "OP_SIZE text", program: []string{"abc", "OP_SIZE"}, stack: "['abc' 3]"},
		{name: "OP_SIZE zero", program: []string{"OP_0", "OP_SIZE"}, stack: "[0 0]"},
		{name: "OP_EQUAL across kinds", program: []string{"1", "true", "OP_EQUAL"}, stack: "[1]"},
		{name: "OP_EQUAL hex and text", program: []string{"0x616263", "abc", "OP_EQUAL"}, stack: "[1]"},
		{name: "OP_EQUALVERIFY", program: []string{"OP_2", "OP_2", "OP_EQUALVERIFY"}, stack: "[]"},
		{name: "OP_EQUALVERIFY fails", program: []string{"OP_2", "OP_3", "OP_EQUALVERIFY"}, err: errCode(ErrEqualVerify)},
		{name: "OP_1ADD", program: []string{"OP_2", "OP_1ADD"}, stack: "[3]"},
		{name: "OP_1SUB", program: []string{"OP_2", "OP_1SUB"}, stack: "[1]"},
		{name: "OP_NEGATE", program: []string{"OP_2", "OP_NEGATE"}, stack: "[-2]"},
		{name: "OP_ABS", program: []string{"-5", "OP_ABS"}, stack: "[5]"},
		{name: "OP_NOT zero", program: []string{"OP_0", "OP_NOT"}, stack: "[1]"},
		{name: "OP_NOT non-zero", program: []string{"OP_7", "OP_NOT"}, stack: "[0]"},
		{name: "OP_0NOTEQUAL", program: []string{"OP_7", "OP_0NOTEQUAL"}, stack: "[1]"},
		{name: "OP_ADD booleans", program: []string{"true", "true", "OP_ADD"}, stack: "[2]"},
		{name: "OP_ADD hex", program: []string{"0x05", "OP_2", "OP_ADD"}, stack: "[7]"},
		{name: "OP_ADD text number", program: []string{"'40'", "OP_2", "OP_ADD"}, stack: "[42]"},
		{name: "OP_SUB", program: []string{"OP_5", "OP_3", "OP_SUB"}, stack: "[2]"},
		{name: "OP_BOOLAND", program: []string{"OP_1", "OP_0", "OP_BOOLAND"}, stack: "[0]"},
		{name: "OP_BOOLOR", program: []string{"OP_1", "OP_0", "OP_BOOLOR"}, stack: "[1]"},
		{name: "OP_NUMEQUAL", program: []string{"OP_3", "3", "OP_NUMEQUAL"}, stack: "[1]"},
		{name: "OP_NUMEQUALVERIFY", program: []string{"OP_3", "OP_3", "OP_NUMEQUALVERIFY"}, stack: "[]"},
		{name: "OP_NUMEQUALVERIFY fails", program: []string{"OP_3", "OP_4", "OP_NUMEQUALVERIFY"}, err: errCode(ErrNumEqualVerify)},
		{name: "OP_NUMNOTEQUAL", program: []string{"OP_3", "OP_4", "OP_NUMNOTEQUAL"}, stack: "[1]"},
		{name: "OP_LESSTHAN", program: []string{"OP_3", "OP_4", "OP_LESSTHAN"}, stack: "[1]"},
		{name: "OP_GREATERTHAN", program: []string{"OP_3", "OP_4", "OP_GREATERTHAN"}, stack: "[0]"},
		{name: "OP_LESSTHANOREQUAL", program: []string{"OP_4", "OP_4", "OP_LESSTHANOREQUAL"}, stack: "[1]"},
		{name: "OP_GREATERTHANOREQUAL", program: []string{"OP_3", "OP_4", "OP_GREATERTHANOREQUAL"}, stack: "[0]"},
		{name: "OP_MIN", program: []string{"OP_3", "OP_4", "OP_MIN"}, stack: "[3]"},
		{name: "OP_MAX", program: []string{"OP_3", "OP_4", "OP_MAX"}, stack: "[4]"},
		{name: "OP_WITHIN inside", program: []string{"OP_3", "OP_2", "OP_4", "OP_WITHIN"}, stack: "[1]"},
		{name: "OP_WITHIN upper bound", program: []string{"OP_4", "OP_2", "OP_4", "OP_WITHIN"}, stack: "[0]"},
		{name: "OP_WITHIN lower bound", program: []string{"OP_2", "OP_2", "OP_4", "OP_WITHIN"}, stack: "[1]"},
		{name: "OP_ADD overflow", program: []string{strconv.FormatInt(math.MaxInt64, 10), "OP_1ADD"}, err: errCode(ErrNumberOverflow)},
		{name: "OP_NEGATE overflow", program: []string{strconv.FormatInt(math.MinInt64, 10), "OP_NEGATE"}, err: errCode(ErrNumberOverflow)},
		{name: "number too long", program: []string{"0x010203040506070809", "OP_1ADD"}, err: errCode(ErrNumberOverflow)},
		{name: "not a number", program: []string{"abc", "OP_1ADD"}, err: errCode(ErrNotANumber)},
		{name: "OP_CHECKSIG", program: []string{"sig", "pubkey", "OP_CHECKSIG"}, stack: "[1]"},
		{name: "OP_CHECKSIG underflow", program: []string{"pubkey", "OP_CHECKSIG"}, err: errCode(ErrStackUnderflow)},
		{name: "OP_CHECKSIGVERIFY", program: []string{"sig", "pubkey", "OP_CHECKSIGVERIFY"}, stack: "[]"},
		{
			name:    "OP_CHECKMULTISIG",
			program: []string{"OP_0", "sig1", "sig2", "OP_2", "pk1", "pk2", "pk3", "OP_3", "OP_CHECKMULTISIG"},
			stack:   "[1]",
		},
		{
			name:    "OP_CHECKMULTISIGVERIFY",
			program: []string{"OP_0", "sig1", "OP_1", "pk1", "OP_1", "OP_CHECKMULTISIGVERIFY"},
			stack:   "[]",
		},
		{
			name:    "OP_CHECKMULTISIG missing dummy",
			program: []string{"sig1", "OP_1", "pk1", "OP_1", "OP_CHECKMULTISIG"},
			err:     errCode(ErrStackUnderflow),
		},
		{
			name:    "OP_CHECKMULTISIG missing pubkeys",
			program: []string{"pk1", "OP_3", "OP_CHECKMULTISIG"},
			err:     errCode(ErrStackUnderflow),
		},
		{
			name:    "OP_CHECKMULTISIG too many pubkeys",
			program: []string{"21", "OP_CHECKMULTISIG"},
			err:     errCode(ErrInvalidPubKeyCount),
		},
		{
			name:    "OP_CHECKMULTISIG negative pubkeys",
			program: []string{"OP_1NEGATE", "OP_CHECKMULTISIG"},
			err:     errCode(ErrInvalidPubKeyCount),
		},
		{
			name:    "OP_CHECKMULTISIG more signatures than keys",
			program: []string{"OP_0", "sig1", "sig2", "OP_2", "pk1", "OP_1", "OP_CHECKMULTISIG"},
			err:     errCode(ErrInvalidSignatureCount),
		},
		{name: "OP_CHECKLOCKTIMEVERIFY", program: []string{"500", "OP_CHECKLOCKTIMEVERIFY"}, stack: "[500]"},
		{name: "OP_CHECKSEQUENCEVERIFY", program: []string{"OP_0", "OP_CHECKSEQUENCEVERIFY", "OP_1"}, stack: "[0 1]"},
		{name: "OP_CHECKLOCKTIMEVERIFY negative", program: []string{"-1", "OP_CHECKLOCKTIMEVERIFY"}, err: errCode(ErrNegativeLockTime)},
		{name: "OP_CHECKSEQUENCEVERIFY not a number", program: []string{"soon", "OP_CHECKSEQUENCEVERIFY"}, err: errCode(ErrNotANumber)},
		{name: "OP_MUL disabled", program: []string{"OP_2", "OP_2", "OP_MUL"}, err: errCode(ErrDisabledOpcode)},
		{name: "OP_CAT disabled", program: []string{"OP_CAT"}, err: errCode(ErrDisabledOpcode)},
		{name: "unknown", program: []string{"OP_NOSUCHTHING"}, err: errCode(ErrUnknownOpcode)},
	}

	for _, test := range tests {
		result := Execute(ParseProgramStrings(test.program...))
		failed, hasFailed := result.FailedStep()
		if test.err != nil {
			if !hasFailed {
				t.Errorf("%s: expected a failing step with %s, got stack %s",
					test.name, *test.err, stackitem.FormatStack(result.FinalStack))
				continue
			}
			if !IsErrorCode(failed.Err, *test.err) {
				t.Errorf("%s: expected %s, got %v", test.name, *test.err, failed.Err)
			}
			continue
		}
		if hasFailed {
			t.Errorf("%s: unexpected failure: %s", test.name, failed.ErrorMessage())
			continue
		}
		got := stackitem.FormatStack(result.FinalStack)
		if got != test.stack {
			t.Errorf("%s: got stack %s, want %s", test.name, got, test.stack)
		}
	}
}

func errCode(c ErrorCode) *ErrorCode {
	return &c
}

func TestHashOpcodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		opcode string
		want   string
	}{
		{"OP_SHA256", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"OP_HASH256", "4f8b42c22dd3729b519ba6f68d2da7cc5b2d606d05daed5ad5128cc03e6c6358"},
		{"OP_SHA1", "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{"OP_RIPEMD160", "8eb208f7e05d987a9b044a8e98c6b087f15a0bfc"},
		{"OP_HASH160", "bb1be98c142444d7a56aa3981c3942a978e4dc33"},
	}
	for _, test := range tests {
		result := Execute(ParseProgramStrings("abc", test.opcode))
		if !result.Success {
			t.Fatalf("%s: unexpected failure: %s", test.opcode, result.ErrorMessage())
		}
		want := stackitem.Bytes(hexToBytes(t, test.want))
		if len(result.FinalStack) != 1 || !result.FinalStack[0].Equal(want) {
			t.Errorf("%s: got %s, want %s", test.opcode,
				stackitem.FormatStack(result.FinalStack), want)
		}
		if result.FinalStack[0].Kind() != stackitem.KindBytes {
			t.Errorf("%s: got kind %s, want bytes", test.opcode, result.FinalStack[0].Kind())
		}
	}

	result := Execute(ParseProgramStrings("abc", "OP_BLAKE2B", "OP_SIZE"))
	if got := stackitem.FormatStack(result.FinalStack[1:]); got != "[32]" {
		t.Errorf("OP_BLAKE2B: got digest size %s, want [32]", got)
	}
}

func TestIntrospection(t *testing.T) {
	t.Parallel()

	if !IsSupported("OP_ADD") || IsSupported("OP_MUL") || IsSupported("OP_NOSUCHTHING") {
		t.Fatalf("IsSupported: unexpected answers")
	}
	if !IsDisabled("OP_MUL") || IsDisabled("OP_ADD") || IsDisabled("OP_NOSUCHTHING") {
		t.Fatalf("IsDisabled: unexpected answers")
	}
	supported := SupportedOpcodes()
	for i := 1; i < len(supported); i++ {
		if supported[i-1] >= supported[i] {
			t.Fatalf("SupportedOpcodes: not sorted at %d: %s >= %s", i, supported[i-1], supported[i])
		}
	}
	for _, name := range supported {
		if IsDisabled(name) {
			t.Errorf("SupportedOpcodes: %s is disabled", name)
		}
	}
	for _, name := range []string{"OP_0", "OP_16", "OP_CHECKMULTISIGVERIFY", "OP_BLAKE2B"} {
		if !IsSupported(name) {
			t.Errorf("%s should be supported", name)
		}
	}
}
