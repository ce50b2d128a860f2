package interpreter

import (
	"fmt"
	"sort"

	"github.com/kaspanet/stacklab/domain/stacklab/stackitem"
	"github.com/kaspanet/stacklab/util"
	utilMath "github.com/kaspanet/stacklab/util/math"
)

// MaxPubKeysPerMultiSig is the maximum number of public keys allowed in a
// multi-signature check.
const MaxPubKeysPerMultiSig = 20

// An opcode defines the information related to an opcode name such as the
// stack depth its handler needs and the function that executes it.
type opcode struct {
	name string
	// minStack is the number of items that must be on the data stack
	// before the handler runs. Opcodes with a dynamic arity declare the
	// fixed part and check the rest themselves.
	minStack int
	// conditional opcodes are processed on non-executing branches to keep
	// nesting balanced.
	conditional bool
	disabled    bool
	opfunc      func(*opcode, *engine) error
	// value is the number pushed by the small integer opcodes.
	value int64
}

// opcodeTable is the dispatch table of every opcode the interpreter knows,
// keyed by name. It is built once and never modified.
var opcodeTable = buildOpcodeTable()

func buildOpcodeTable() map[string]*opcode {
	ops := []*opcode{
		// Constants.
		{name: "OP_0", opfunc: opcodeN, value: 0},
		{name: "OP_FALSE", opfunc: opcodeN, value: 0},
		{name: "OP_1NEGATE", opfunc: opcodeN, value: -1},
		{name: "OP_TRUE", opfunc: opcodeN, value: 1},

		// Control opcodes.
		{name: "OP_NOP", opfunc: opcodeNop},
		{name: "OP_IF", minStack: 1, conditional: true, opfunc: opcodeIf},
		{name: "OP_NOTIF", minStack: 1, conditional: true, opfunc: opcodeNotIf},
		{name: "OP_ELSE", conditional: true, opfunc: opcodeElse},
		{name: "OP_ENDIF", conditional: true, opfunc: opcodeEndif},
		{name: "OP_VERIFY", minStack: 1, opfunc: opcodeVerify},
		{name: "OP_RETURN", opfunc: opcodeReturn},

		// Stack opcodes.
		{name: "OP_IFDUP", minStack: 1, opfunc: opcodeIfDup},
		{name: "OP_DEPTH", opfunc: opcodeDepth},
		{name: "OP_DROP", minStack: 1, opfunc: opcodeDrop},
		{name: "OP_DUP", minStack: 1, opfunc: opcodeDup},
		{name: "OP_NIP", minStack: 2, opfunc: opcodeNip},
		{name: "OP_OVER", minStack: 2, opfunc: opcodeOver},
		{name: "OP_PICK", minStack: 1, opfunc: opcodePick},
		{name: "OP_ROLL", minStack: 1, opfunc: opcodeRoll},
		{name: "OP_ROT", minStack: 3, opfunc: opcodeRot},
		{name: "OP_SWAP", minStack: 2, opfunc: opcodeSwap},
		{name: "OP_TUCK", minStack: 2, opfunc: opcodeTuck},
		{name: "OP_2DROP", minStack: 2, opfunc: opcode2Drop},
		{name: "OP_2DUP", minStack: 2, opfunc: opcode2Dup},
		{name: "OP_3DUP", minStack: 3, opfunc: opcode3Dup},
		{name: "OP_2OVER", minStack: 4, opfunc: opcode2Over},
		{name: "OP_2ROT", minStack: 6, opfunc: opcode2Rot},
		{name: "OP_2SWAP", minStack: 4, opfunc: opcode2Swap},

		// Splice opcodes.
		{name: "OP_CAT", disabled: true},
		{name: "OP_SUBSTR", disabled: true},
		{name: "OP_LEFT", disabled: true},
		{name: "OP_RIGHT", disabled: true},
		{name: "OP_SIZE", minStack: 1, opfunc: opcodeSize},

		// Bitwise logic opcodes.
		{name: "OP_INVERT", disabled: true},
		{name: "OP_AND", disabled: true},
		{name: "OP_OR", disabled: true},
		{name: "OP_XOR", disabled: true},
		{name: "OP_EQUAL", minStack: 2, opfunc: opcodeEqual},
		{name: "OP_EQUALVERIFY", minStack: 2, opfunc: opcodeEqualVerify},

		// Numeric related opcodes.
		{name: "OP_1ADD", minStack: 1, opfunc: opcode1Add},
		{name: "OP_1SUB", minStack: 1, opfunc: opcode1Sub},
		{name: "OP_2MUL", disabled: true},
		{name: "OP_2DIV", disabled: true},
		{name: "OP_NEGATE", minStack: 1, opfunc: opcodeNegate},
		{name: "OP_ABS", minStack: 1, opfunc: opcodeAbs},
		{name: "OP_NOT", minStack: 1, opfunc: opcodeNot},
		{name: "OP_0NOTEQUAL", minStack: 1, opfunc: opcode0NotEqual},
		{name: "OP_ADD", minStack: 2, opfunc: opcodeAdd},
		{name: "OP_SUB", minStack: 2, opfunc: opcodeSub},
		{name: "OP_MUL", disabled: true},
		{name: "OP_DIV", disabled: true},
		{name: "OP_MOD", disabled: true},
		{name: "OP_LSHIFT", disabled: true},
		{name: "OP_RSHIFT", disabled: true},
		{name: "OP_BOOLAND", minStack: 2, opfunc: opcodeBoolAnd},
		{name: "OP_BOOLOR", minStack: 2, opfunc: opcodeBoolOr},
		{name: "OP_NUMEQUAL", minStack: 2, opfunc: opcodeNumEqual},
		{name: "OP_NUMEQUALVERIFY", minStack: 2, opfunc: opcodeNumEqualVerify},
		{name: "OP_NUMNOTEQUAL", minStack: 2, opfunc: opcodeNumNotEqual},
		{name: "OP_LESSTHAN", minStack: 2, opfunc: opcodeLessThan},
		{name: "OP_GREATERTHAN", minStack: 2, opfunc: opcodeGreaterThan},
		{name: "OP_LESSTHANOREQUAL", minStack: 2, opfunc: opcodeLessThanOrEqual},
		{name: "OP_GREATERTHANOREQUAL", minStack: 2, opfunc: opcodeGreaterThanOrEqual},
		{name: "OP_MIN", minStack: 2, opfunc: opcodeMin},
		{name: "OP_MAX", minStack: 2, opfunc: opcodeMax},
		{name: "OP_WITHIN", minStack: 3, opfunc: opcodeWithin},

		// Crypto opcodes.
		{name: "OP_RIPEMD160", minStack: 1, opfunc: opcodeRipemd160},
		{name: "OP_SHA1", minStack: 1, opfunc: opcodeSha1},
		{name: "OP_SHA256", minStack: 1, opfunc: opcodeSha256},
		{name: "OP_HASH160", minStack: 1, opfunc: opcodeHash160},
		{name: "OP_HASH256", minStack: 1, opfunc: opcodeHash256},
		{name: "OP_BLAKE2B", minStack: 1, opfunc: opcodeBlake2b},
		{name: "OP_CHECKSIG", minStack: 2, opfunc: opcodeCheckSig},
		{name: "OP_CHECKSIGVERIFY", minStack: 2, opfunc: opcodeCheckSigVerify},
		{name: "OP_CHECKMULTISIG", minStack: 1, opfunc: opcodeCheckMultiSig},
		{name: "OP_CHECKMULTISIGVERIFY", minStack: 1, opfunc: opcodeCheckMultiSigVerify},

		// Locktime opcodes.
		{name: "OP_CHECKLOCKTIMEVERIFY", minStack: 1, opfunc: opcodeCheckLockTimeVerify},
		{name: "OP_CHECKSEQUENCEVERIFY", minStack: 1, opfunc: opcodeCheckSequenceVerify},
	}
	for n := int64(1); n <= 16; n++ {
		ops = append(ops, &opcode{name: fmt.Sprintf("OP_%d", n), opfunc: opcodeN, value: n})
	}

	table := make(map[string]*opcode, len(ops))
	for _, op := range ops {
		if _, exists := table[op.name]; exists {
			panic(fmt.Sprintf("opcode %s is defined twice", op.name))
		}
		if !op.disabled && op.opfunc == nil {
			panic(fmt.Sprintf("opcode %s has no handler", op.name))
		}
		table[op.name] = op
	}
	return table
}

// IsSupported returns whether the interpreter can execute the named opcode.
func IsSupported(name string) bool {
	op, ok := opcodeTable[name]
	return ok && !op.disabled
}

// IsDisabled returns whether the named opcode is known but disabled.
func IsDisabled(name string) bool {
	op, ok := opcodeTable[name]
	return ok && op.disabled
}

// SupportedOpcodes returns the sorted names of every executable opcode.
func SupportedOpcodes() []string {
	names := make([]string, 0, len(opcodeTable))
	for name, op := range opcodeTable {
		if !op.disabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// *******************************************
// Opcode implementation functions start here.
// *******************************************

// opcodeN is a common handler for the small integer opcodes. It pushes the
// opcode's value onto the data stack.
func opcodeN(op *opcode, vm *engine) error {
	vm.dstack.PushNumber(op.value)
	return nil
}

// opcodeNop is a common handler for the NOP family of opcodes.
func opcodeNop(op *opcode, vm *engine) error {
	return nil
}

// opcodeIf treats the top item on the data stack as a boolean and removes
// it.
//
// An appropriate entry is added to the branch stack depending on whether the
// boolean is true and whether this if is on an executing branch in order to
// allow proper execution of further opcodes depending on the conditional
// logic. When the boolean is true, the first branch will be executed (unless
// this opcode is nested in a non-executed branch).
//
// <expression> if [statements] [else [statements]] endif
//
// Note that, unlike for all non-conditional opcodes, this is executed even
// when it is on a non-executing branch so proper nesting is maintained.
//
// Data stack transformation: [... bool] -> [...]
// Branch stack transformation: [...] -> [... OpCondValue]
func opcodeIf(op *opcode, vm *engine) error {
	if !vm.branches.isExecuting() {
		vm.branches.openSkipped()
		return nil
	}
	ok, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	vm.branches.open(ok)
	return nil
}

// opcodeNotIf treats the top item on the data stack as a boolean and removes
// it. It is the inverse of opcodeIf: the first branch executes when the
// boolean is false.
//
// <expression> notif [statements] [else [statements]] endif
//
// Data stack transformation: [... bool] -> [...]
// Branch stack transformation: [...] -> [... OpCondValue]
func opcodeNotIf(op *opcode, vm *engine) error {
	if !vm.branches.isExecuting() {
		vm.branches.openSkipped()
		return nil
	}
	ok, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	vm.branches.open(!ok)
	return nil
}

// opcodeElse inverts conditional execution for other half of if/else/endif.
//
// An error is returned if there has not already been a matching OP_IF, or if
// the matching OP_IF already has an OP_ELSE.
//
// Branch stack transformation: [... OpCondValue] -> [... !OpCondValue]
func opcodeElse(op *opcode, vm *engine) error {
	return vm.branches.toggle()
}

// opcodeEndif terminates a conditional block, removing the value from the
// branch stack.
//
// An error is returned if there has not already been a matching OP_IF.
//
// Branch stack transformation: [... OpCondValue] -> [...]
func opcodeEndif(op *opcode, vm *engine) error {
	return vm.branches.close()
}

// opcodeVerify examines the top item on the data stack as a boolean value and
// verifies it evaluates to true. An error is returned if it does not.
func opcodeVerify(op *opcode, vm *engine) error {
	verified, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !verified {
		return scriptError(ErrVerify, "OP_VERIFY failed: top stack item is false")
	}
	return nil
}

// opcodeReturn returns an appropriate error since it is always an error to
// return early from a script.
func opcodeReturn(op *opcode, vm *engine) error {
	return scriptError(ErrEarlyReturn, "script returned early: OP_RETURN marks the script as unspendable")
}

// opcodeIfDup duplicates the top item of the stack if it is truthy.
//
// Stack transformation (x1==0): [... x1] -> [... x1]
// Stack transformation (x1!=0): [... x1] -> [... x1 x1]
func opcodeIfDup(op *opcode, vm *engine) error {
	item, err := vm.dstack.PeekItem(0)
	if err != nil {
		return err
	}
	if item.IsTruthy() {
		vm.dstack.PushItem(item.Clone())
	}
	return nil
}

// opcodeDepth pushes the depth of the data stack prior to executing this
// opcode, encoded as a number, onto the data stack.
//
// Stack transformation: [...] -> [... <num of items on the stack>]
// Example with 2 items: [x1 x2] -> [x1 x2 2]
// Example with 3 items: [x1 x2 x3] -> [x1 x2 x3 3]
func opcodeDepth(op *opcode, vm *engine) error {
	vm.dstack.PushNumber(int64(vm.dstack.Depth()))
	return nil
}

// opcodeDrop removes the top item from the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x2]
func opcodeDrop(op *opcode, vm *engine) error {
	return vm.dstack.DropN(1)
}

// opcodeDup duplicates the top item on the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x2 x3 x3]
func opcodeDup(op *opcode, vm *engine) error {
	return vm.dstack.DupN(1)
}

// opcodeNip removes the item before the top of the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x3]
func opcodeNip(op *opcode, vm *engine) error {
	return vm.dstack.NipN(1)
}

// opcodeOver duplicates the item before the top of the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x2 x3 x2]
func opcodeOver(op *opcode, vm *engine) error {
	return vm.dstack.OverN(1)
}

// stackIndex pops the index argument of OP_PICK and OP_ROLL once it is known
// to address an item of the remaining stack.
func stackIndex(op *opcode, vm *engine) (int, error) {
	n, err := vm.dstack.PeekNumber(0)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		str := fmt.Sprintf("%s: negative index %d", op.name, n)
		return 0, scriptError(ErrInvalidStackOperation, str)
	}
	if n >= int64(vm.dstack.Depth()-1) {
		str := fmt.Sprintf("stack underflow: %s requires %d items, stack has %d",
			op.name, n+2, vm.dstack.Depth())
		return 0, scriptError(ErrStackUnderflow, str)
	}
	_, err = vm.dstack.PopItem()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// opcodePick treats the top item on the data stack as an integer and
// duplicates the item on the stack that number of items back to the top.
//
// Stack transformation: [xn ... x2 x1 x0 n] -> [xn ... x2 x1 x0 xn]
// Example with n=1: [x2 x1 x0 1] -> [x2 x1 x0 x1]
// Example with n=2: [x2 x1 x0 2] -> [x2 x1 x0 x2]
func opcodePick(op *opcode, vm *engine) error {
	idx, err := stackIndex(op, vm)
	if err != nil {
		return err
	}
	return vm.dstack.PickN(idx)
}

// opcodeRoll treats the top item on the data stack as an integer and moves
// the item on the stack that number of items back to the top.
//
// Stack transformation: [xn ... x2 x1 x0 n] -> [... x2 x1 x0 xn]
// Example with n=1: [x2 x1 x0 1] -> [x2 x0 x1]
// Example with n=2: [x2 x1 x0 2] -> [x1 x0 x2]
func opcodeRoll(op *opcode, vm *engine) error {
	idx, err := stackIndex(op, vm)
	if err != nil {
		return err
	}
	return vm.dstack.RollN(idx)
}

// opcodeRot rotates the top 3 items on the data stack to the left.
//
// Stack transformation: [... x1 x2 x3] -> [... x2 x3 x1]
func opcodeRot(op *opcode, vm *engine) error {
	return vm.dstack.RotN(1)
}

// opcodeSwap swaps the top two items on the stack.
//
// Stack transformation: [... x1 x2] -> [... x2 x1]
func opcodeSwap(op *opcode, vm *engine) error {
	return vm.dstack.SwapN(1)
}

// opcodeTuck inserts a duplicate of the top item of the data stack before the
// second-to-top item.
//
// Stack transformation: [... x1 x2] -> [... x2 x1 x2]
func opcodeTuck(op *opcode, vm *engine) error {
	return vm.dstack.Tuck()
}

// opcode2Drop removes the top 2 items from the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1]
func opcode2Drop(op *opcode, vm *engine) error {
	return vm.dstack.DropN(2)
}

// opcode2Dup duplicates the top 2 items on the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x2 x3 x2 x3]
func opcode2Dup(op *opcode, vm *engine) error {
	return vm.dstack.DupN(2)
}

// opcode3Dup duplicates the top 3 items on the data stack.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x2 x3 x1 x2 x3]
func opcode3Dup(op *opcode, vm *engine) error {
	return vm.dstack.DupN(3)
}

// opcode2Over duplicates the 2 items before the top 2 items on the data stack.
//
// Stack transformation: [... x1 x2 x3 x4] -> [... x1 x2 x3 x4 x1 x2]
func opcode2Over(op *opcode, vm *engine) error {
	return vm.dstack.OverN(2)
}

// opcode2Rot rotates the top 6 items on the data stack to the left twice.
//
// Stack transformation: [... x1 x2 x3 x4 x5 x6] -> [... x3 x4 x5 x6 x1 x2]
func opcode2Rot(op *opcode, vm *engine) error {
	return vm.dstack.RotN(2)
}

// opcode2Swap swaps the top 2 items on the data stack with the 2 that come
// before them.
//
// Stack transformation: [... x1 x2 x3 x4] -> [... x3 x4 x1 x2]
func opcode2Swap(op *opcode, vm *engine) error {
	return vm.dstack.SwapN(2)
}

// opcodeSize pushes the size of the top item of the data stack onto the data
// stack.
//
// Stack transformation: [... x1] -> [... x1 len(x1)]
func opcodeSize(op *opcode, vm *engine) error {
	item, err := vm.dstack.PeekItem(0)
	if err != nil {
		return err
	}
	vm.dstack.PushNumber(int64(item.Size()))
	return nil
}

// opcodeEqual removes the top 2 items of the data stack, compares them as raw
// bytes, and pushes the result, encoded as a boolean, back to the stack.
//
// Stack transformation: [... x1 x2] -> [... bool]
func opcodeEqual(op *opcode, vm *engine) error {
	a, err := vm.dstack.PopItem()
	if err != nil {
		return err
	}
	b, err := vm.dstack.PopItem()
	if err != nil {
		return err
	}
	vm.dstack.PushBool(a.Equal(b))
	return nil
}

// abstractVerify examines the top item on the data stack as a boolean value
// and verifies it evaluates to true. An error is returned either when there
// is no item on the stack or when that item evaluates to false. In the latter
// case where the verification fails specifically due to the top item
// evaluating to false, the returned error will use the passed error code.
func abstractVerify(op *opcode, vm *engine, c ErrorCode) error {
	verified, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !verified {
		str := fmt.Sprintf("%s failed", op.name)
		return scriptError(c, str)
	}
	return nil
}

// opcodeEqualVerify is a combination of opcodeEqual and opcodeVerify.
// Specifically, it removes the top 2 items of the data stack, compares them,
// and pushes the result, encoded as a boolean, back to the stack. Then, it
// examines the top item on the data stack as a boolean value and verifies it
// evaluates to true. An error is returned if it does not.
//
// Stack transformation: [... x1 x2] -> [... bool] -> [...]
func opcodeEqualVerify(op *opcode, vm *engine) error {
	err := opcodeEqual(op, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrEqualVerify)
	}
	return err
}

// boolToNumber encodes a boolean the way PushBool does.
func boolToNumber(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// numericUnary replaces the top number with fn applied to it. The operand
// stays on the stack when it is not a number or the result overflows.
func numericUnary(op *opcode, vm *engine, fn func(int64) (int64, bool)) error {
	m, err := vm.dstack.PeekNumber(0)
	if err != nil {
		return err
	}
	result, ok := fn(m)
	if !ok {
		str := fmt.Sprintf("%s: result of %d overflows", op.name, m)
		return scriptError(ErrNumberOverflow, str)
	}
	_, err = vm.dstack.PopItem()
	if err != nil {
		return err
	}
	vm.dstack.PushNumber(result)
	return nil
}

// opcode1Add treats the top item on the data stack as an integer and replaces
// it with its incremented value (plus 1).
//
// Stack transformation: [... x1 x2] -> [... x1 x2+1]
func opcode1Add(op *opcode, vm *engine) error {
	return numericUnary(op, vm, func(m int64) (int64, bool) {
		return utilMath.AddInt64(m, 1)
	})
}

// opcode1Sub treats the top item on the data stack as an integer and replaces
// it with its decremented value (minus 1).
//
// Stack transformation: [... x1 x2] -> [... x1 x2-1]
func opcode1Sub(op *opcode, vm *engine) error {
	return numericUnary(op, vm, func(m int64) (int64, bool) {
		return utilMath.SubInt64(m, 1)
	})
}

// opcodeNegate treats the top item on the data stack as an integer and
// replaces it with its negation.
//
// Stack transformation: [... x1 x2] -> [... x1 -x2]
func opcodeNegate(op *opcode, vm *engine) error {
	return numericUnary(op, vm, utilMath.NegateInt64)
}

// opcodeAbs treats the top item on the data stack as an integer and replaces
// it it with its absolute value.
//
// Stack transformation: [... x1 x2] -> [... x1 abs(x2)]
func opcodeAbs(op *opcode, vm *engine) error {
	return numericUnary(op, vm, utilMath.AbsInt64)
}

// opcodeNot treats the top item on the data stack as an integer and replaces
// it with its "inverted" value (0 becomes 1, non-zero becomes 0).
//
// NOTE: While it would probably make more sense to treat the top item as a
// boolean, and push the opposite, which is really what the intention of this
// opcode is, it is extremely important that is not done because integers are
// interpreted differently than booleans and the consensus rules for this
// opcode dictate the item is interpreted as an integer.
//
// Stack transformation (x2==0): [... x1 0] -> [... x1 1]
// Stack transformation (x2!=0): [... x1 1] -> [... x1 0]
// Stack transformation (x2!=0): [... x1 17] -> [... x1 0]
func opcodeNot(op *opcode, vm *engine) error {
	return numericUnary(op, vm, func(m int64) (int64, bool) {
		return boolToNumber(m == 0), true
	})
}

// opcode0NotEqual treats the top item on the data stack as an integer and
// replaces it with either a 0 if it is zero, or a 1 if it is not zero.
//
// Stack transformation (x2==0): [... x1 0] -> [... x1 0]
// Stack transformation (x2!=0): [... x1 1] -> [... x1 1]
// Stack transformation (x2!=0): [... x1 17] -> [... x1 1]
func opcode0NotEqual(op *opcode, vm *engine) error {
	return numericUnary(op, vm, func(m int64) (int64, bool) {
		return boolToNumber(m != 0), true
	})
}

// peekNumbers returns the top n items as numbers without removing them.
// numbers[0] is the top item.
func peekNumbers(vm *engine, n int) ([]int64, error) {
	numbers := make([]int64, n)
	for i := range numbers {
		number, err := vm.dstack.PeekNumber(i)
		if err != nil {
			return nil, err
		}
		numbers[i] = number
	}
	return numbers, nil
}

// numericBinary replaces the top two numbers with fn applied to them in stack
// order. The operands stay on the stack when the step fails.
func numericBinary(op *opcode, vm *engine, fn func(x1, x2 int64) (int64, bool)) error {
	operands, err := peekNumbers(vm, 2)
	if err != nil {
		return err
	}
	v0, v1 := operands[0], operands[1]
	result, ok := fn(v1, v0)
	if !ok {
		str := fmt.Sprintf("%s: result of %d and %d overflows", op.name, v1, v0)
		return scriptError(ErrNumberOverflow, str)
	}
	err = vm.dstack.DropN(2)
	if err != nil {
		return err
	}
	vm.dstack.PushNumber(result)
	return nil
}

// numericCompare replaces the top two numbers with the result of comparing
// them in stack order as a boolean.
func numericCompare(vm *engine, cmp func(x1, x2 int64) bool) error {
	operands, err := peekNumbers(vm, 2)
	if err != nil {
		return err
	}
	err = vm.dstack.DropN(2)
	if err != nil {
		return err
	}
	vm.dstack.PushBool(cmp(operands[1], operands[0]))
	return nil
}

// opcodeAdd treats the top two items on the data stack as integers and
// replaces them with their sum.
//
// Stack transformation: [... x1 x2] -> [... x1+x2]
func opcodeAdd(op *opcode, vm *engine) error {
	return numericBinary(op, vm, utilMath.AddInt64)
}

// opcodeSub treats the top two items on the data stack as integers and
// replaces them with the result of subtracting the top entry from the second
// entry.
//
// Stack transformation: [... x1 x2] -> [... x1-x2]
func opcodeSub(op *opcode, vm *engine) error {
	return numericBinary(op, vm, utilMath.SubInt64)
}

// opcodeBoolAnd treats the top two items on the data stack as integers. When
// both of them are not zero, they are replaced with a 1, otherwise a 0.
//
// Stack transformation (x1==0, x2==0): [... 0 0] -> [... 0]
// Stack transformation (x1!=0, x2==0): [... 5 0] -> [... 0]
// Stack transformation (x1==0, x2!=0): [... 0 7] -> [... 0]
// Stack transformation (x1!=0, x2!=0): [... 4 8] -> [... 1]
func opcodeBoolAnd(op *opcode, vm *engine) error {
	return numericCompare(vm, func(x1, x2 int64) bool {
		return x1 != 0 && x2 != 0
	})
}

// opcodeBoolOr treats the top two items on the data stack as integers. When
// either of them are not zero, they are replaced with a 1, otherwise a 0.
//
// Stack transformation (x1==0, x2==0): [... 0 0] -> [... 0]
// Stack transformation (x1!=0, x2==0): [... 5 0] -> [... 1]
// Stack transformation (x1==0, x2!=0): [... 0 7] -> [... 1]
// Stack transformation (x1!=0, x2!=0): [... 4 8] -> [... 1]
func opcodeBoolOr(op *opcode, vm *engine) error {
	return numericCompare(vm, func(x1, x2 int64) bool {
		return x1 != 0 || x2 != 0
	})
}

// opcodeNumEqual treats the top two items on the data stack as integers. When
// they are equal, they are replaced with a 1, otherwise a 0.
//
// Stack transformation (x1==x2): [... 5 5] -> [... 1]
// Stack transformation (x1!=x2): [... 5 7] -> [... 0]
func opcodeNumEqual(op *opcode, vm *engine) error {
	return numericCompare(vm, func(x1, x2 int64) bool {
		return x1 == x2
	})
}

// opcodeNumEqualVerify is a combination of opcodeNumEqual and opcodeVerify.
//
// Stack transformation: [... x1 x2] -> [... bool] -> [...]
func opcodeNumEqualVerify(op *opcode, vm *engine) error {
	err := opcodeNumEqual(op, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrNumEqualVerify)
	}
	return err
}

// opcodeNumNotEqual treats the top two items on the data stack as integers.
// When they are NOT equal, they are replaced with a 1, otherwise a 0.
//
// Stack transformation (x1==x2): [... 5 5] -> [... 0]
// Stack transformation (x1!=x2): [... 5 7] -> [... 1]
func opcodeNumNotEqual(op *opcode, vm *engine) error {
	return numericCompare(vm, func(x1, x2 int64) bool {
		return x1 != x2
	})
}

// opcodeLessThan treats the top two items on the data stack as integers. When
// the second-to-top item is less than the top item, they are replaced with a
// 1, otherwise a 0.
//
// Stack transformation: [... x1 x2] -> [... bool]
func opcodeLessThan(op *opcode, vm *engine) error {
	return numericCompare(vm, func(x1, x2 int64) bool {
		return x1 < x2
	})
}

// opcodeGreaterThan treats the top two items on the data stack as integers.
// When the second-to-top item is greater than the top item, they are replaced
// with a 1, otherwise a 0.
//
// Stack transformation: [... x1 x2] -> [... bool]
func opcodeGreaterThan(op *opcode, vm *engine) error {
	return numericCompare(vm, func(x1, x2 int64) bool {
		return x1 > x2
	})
}

// opcodeLessThanOrEqual treats the top two items on the data stack as
// integers. When the second-to-top item is less than or equal to the top
// item, they are replaced with a 1, otherwise a 0.
//
// Stack transformation: [... x1 x2] -> [... bool]
func opcodeLessThanOrEqual(op *opcode, vm *engine) error {
	return numericCompare(vm, func(x1, x2 int64) bool {
		return x1 <= x2
	})
}

// opcodeGreaterThanOrEqual treats the top two items on the data stack as
// integers. When the second-to-top item is greater than or equal to the top
// item, they are replaced with a 1, otherwise a 0.
//
// Stack transformation: [... x1 x2] -> [... bool]
func opcodeGreaterThanOrEqual(op *opcode, vm *engine) error {
	return numericCompare(vm, func(x1, x2 int64) bool {
		return x1 >= x2
	})
}

// opcodeMin treats the top two items on the data stack as integers and
// replaces them with the minimum of the two.
//
// Stack transformation: [... x1 x2] -> [... min(x1, x2)]
func opcodeMin(op *opcode, vm *engine) error {
	return numericBinary(op, vm, func(x1, x2 int64) (int64, bool) {
		return utilMath.MinInt64(x1, x2), true
	})
}

// opcodeMax treats the top two items on the data stack as integers and
// replaces them with the maximum of the two.
//
// Stack transformation: [... x1 x2] -> [... max(x1, x2)]
func opcodeMax(op *opcode, vm *engine) error {
	return numericBinary(op, vm, func(x1, x2 int64) (int64, bool) {
		return utilMath.MaxInt64(x1, x2), true
	})
}

// opcodeWithin treats the top 3 items on the data stack as integers. When the
// value to test is within the specified range (left inclusive), they are
// replaced with a 1, otherwise a 0.
//
// The top item is the max value, the second-top-item is the minimum value, and
// the third-to-top item is the value to test.
//
// Stack transformation: [... x1 min max] -> [... bool]
func opcodeWithin(op *opcode, vm *engine) error {
	operands, err := peekNumbers(vm, 3)
	if err != nil {
		return err
	}
	err = vm.dstack.DropN(3)
	if err != nil {
		return err
	}
	maxVal, minVal, x := operands[0], operands[1], operands[2]
	vm.dstack.PushBool(x >= minVal && x < maxVal)
	return nil
}

// hashTop replaces the top item with the hash of its canonical encoding.
func hashTop(vm *engine, hash func([]byte) []byte) error {
	item, err := vm.dstack.PopItem()
	if err != nil {
		return err
	}
	vm.dstack.PushItem(stackitem.Bytes(hash(item.Serialize())))
	return nil
}

// opcodeRipemd160 treats the top item of the data stack as raw bytes and
// replaces it with ripemd160(data).
//
// Stack transformation: [... x1] -> [... ripemd160(x1)]
func opcodeRipemd160(op *opcode, vm *engine) error {
	return hashTop(vm, util.HashRipemd160)
}

// opcodeSha1 treats the top item of the data stack as raw bytes and replaces
// it with sha1(data).
//
// Stack transformation: [... x1] -> [... sha1(x1)]
func opcodeSha1(op *opcode, vm *engine) error {
	return hashTop(vm, util.HashSHA1)
}

// opcodeSha256 treats the top item of the data stack as raw bytes and
// replaces it with sha256(data).
//
// Stack transformation: [... x1] -> [... sha256(x1)]
func opcodeSha256(op *opcode, vm *engine) error {
	return hashTop(vm, util.HashSHA256)
}

// opcodeHash160 treats the top item of the data stack as raw bytes and
// replaces it with ripemd160(sha256(data)).
//
// Stack transformation: [... x1] -> [... ripemd160(sha256(x1))]
func opcodeHash160(op *opcode, vm *engine) error {
	return hashTop(vm, util.Hash160)
}

// opcodeHash256 treats the top item of the data stack as raw bytes and
// replaces it with sha256(sha256(data)).
//
// Stack transformation: [... x1] -> [... sha256(sha256(x1))]
func opcodeHash256(op *opcode, vm *engine) error {
	return hashTop(vm, util.DoubleHashSHA256)
}

// opcodeBlake2b treats the top item of the data stack as raw bytes and
// replaces it with blake2b-256(data).
//
// Stack transformation: [... x1] -> [... blake2b(x1)]
func opcodeBlake2b(op *opcode, vm *engine) error {
	return hashTop(vm, util.HashBlake2b)
}

// opcodeCheckSig consumes a public key and a signature and pushes 1. No
// signature is actually verified: there is no transaction to sign.
//
// Stack transformation: [... signature pubkey] -> [... 1]
func opcodeCheckSig(op *opcode, vm *engine) error {
	err := vm.dstack.DropN(2)
	if err != nil {
		return err
	}
	vm.dstack.PushBool(true)
	return nil
}

// opcodeCheckSigVerify is a combination of opcodeCheckSig and opcodeVerify.
//
// Stack transformation: [... signature pubkey] -> [... bool] -> [...]
func opcodeCheckSigVerify(op *opcode, vm *engine) error {
	err := opcodeCheckSig(op, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrCheckSigVerify)
	}
	return err
}

// opcodeCheckMultiSig consumes a multi-signature check the way Bitcoin lays
// it out on the stack and pushes 1. Like opcodeCheckSig no signature is
// verified, but the counts are validated.
//
// The top item is the number of public keys, followed by the keys, the
// number of signatures and the signatures. One extra item below the
// signatures is consumed as well, matching the historic off-by-one of
// Bitcoin's OP_CHECKMULTISIG.
//
// Stack transformation:
// [... dummy [sig ...] numsigs [pubkey ...] numpubkeys] -> [... 1]
func opcodeCheckMultiSig(op *opcode, vm *engine) error {
	numKeys, err := vm.dstack.PopNumber()
	if err != nil {
		return err
	}
	if numKeys < 0 {
		str := fmt.Sprintf("number of pubkeys %d is negative", numKeys)
		return scriptError(ErrInvalidPubKeyCount, str)
	}
	if numKeys > MaxPubKeysPerMultiSig {
		str := fmt.Sprintf("too many pubkeys: %d > %d", numKeys,
			MaxPubKeysPerMultiSig)
		return scriptError(ErrInvalidPubKeyCount, str)
	}
	err = requireDepth(op, vm, int(numKeys)+1, 1)
	if err != nil {
		return err
	}
	for i := int64(0); i < numKeys; i++ {
		_, err = vm.dstack.PopItem()
		if err != nil {
			return err
		}
	}

	numSignatures, err := vm.dstack.PopNumber()
	if err != nil {
		return err
	}
	if numSignatures < 0 {
		str := fmt.Sprintf("number of signatures %d is negative",
			numSignatures)
		return scriptError(ErrInvalidSignatureCount, str)
	}
	if numSignatures > numKeys {
		str := fmt.Sprintf("more signatures than pubkeys: %d > %d",
			numSignatures, numKeys)
		return scriptError(ErrInvalidSignatureCount, str)
	}
	err = requireDepth(op, vm, int(numSignatures)+1, int(numKeys)+2)
	if err != nil {
		return err
	}
	for i := int64(0); i < numSignatures+1; i++ {
		_, err = vm.dstack.PopItem()
		if err != nil {
			return err
		}
	}

	vm.dstack.PushBool(true)
	return nil
}

// requireDepth fails with a stack underflow when fewer than needed items
// remain on the stack. consumed is the number of items the opcode already
// took, so that the error reports the opcode's total requirement.
func requireDepth(op *opcode, vm *engine, needed, consumed int) error {
	depth := vm.dstack.Depth()
	if depth < needed {
		str := fmt.Sprintf("stack underflow: %s requires %d items, stack has %d",
			op.name, needed+consumed, depth+consumed)
		return scriptError(ErrStackUnderflow, str)
	}
	return nil
}

// opcodeCheckMultiSigVerify is a combination of opcodeCheckMultiSig and
// opcodeVerify.
//
// Stack transformation:
// [... dummy [sig ...] numsigs [pubkey ...] numpubkeys] -> [... bool] -> [...]
func opcodeCheckMultiSigVerify(op *opcode, vm *engine) error {
	err := opcodeCheckMultiSig(op, vm)
	if err == nil {
		err = abstractVerify(op, vm, ErrCheckMultiSigVerify)
	}
	return err
}

// verifyLockTimeOperand checks that the top item is a non-negative number
// without removing it.
func verifyLockTimeOperand(op *opcode, vm *engine) error {
	lockTime, err := vm.dstack.PeekNumber(0)
	if err != nil {
		return err
	}
	if lockTime < 0 {
		str := fmt.Sprintf("%s: negative lock time %d", op.name, lockTime)
		return scriptError(ErrNegativeLockTime, str)
	}
	return nil
}

// opcodeCheckLockTimeVerify validates the lock time operand on top of the
// data stack. There is no transaction to compare it against, so a
// non-negative lock time always passes and the stack is left untouched.
//
// Stack transformation: [... locktime] -> [... locktime]
func opcodeCheckLockTimeVerify(op *opcode, vm *engine) error {
	return verifyLockTimeOperand(op, vm)
}

// opcodeCheckSequenceVerify validates the relative lock time operand on top
// of the data stack, in the same simulated manner as
// opcodeCheckLockTimeVerify.
//
// Stack transformation: [... sequence] -> [... sequence]
func opcodeCheckSequenceVerify(op *opcode, vm *engine) error {
	return verifyLockTimeOperand(op, vm)
}
