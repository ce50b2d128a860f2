package interpreter

import (
	"fmt"

	"github.com/kaspanet/stacklab/domain/stacklab/stackitem"
	"github.com/pkg/errors"
)

// stack represents a stack of immutable objects to be used with scripts.
// Objects may be shared, therefore in usage if a value is to be changed it
// *must* be deep-copied first to avoid changing other values on the stack.
type stack struct {
	stk []stackitem.Item
}

// Depth returns the number of items on the stack.
func (s *stack) Depth() int {
	return len(s.stk)
}

// PushItem adds the given item to the top of the stack.
//
// Stack transformation: [... x1 x2] -> [... x1 x2 item]
func (s *stack) PushItem(item stackitem.Item) {
	s.stk = append(s.stk, item)
}

// PushNumber pushes the provided number onto the top of the stack.
//
// Stack transformation: [... x1 x2] -> [... x1 x2 n]
func (s *stack) PushNumber(n int64) {
	s.PushItem(stackitem.Number(n))
}

// PushBool pushes the number 1 for true and 0 for false, which is how
// comparison opcodes report their results.
//
// Stack transformation: [... x1 x2] -> [... x1 x2 bool]
func (s *stack) PushBool(val bool) {
	if val {
		s.PushNumber(1)
		return
	}
	s.PushNumber(0)
}

// PopItem pops the value off the top of the stack and returns it.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x2]
func (s *stack) PopItem() (stackitem.Item, error) {
	return s.nipN(0)
}

// PopNumber pops the value off the top of the stack and interprets it as a
// number.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x2]
func (s *stack) PopNumber() (int64, error) {
	item, err := s.PopItem()
	if err != nil {
		return 0, err
	}
	return asNumber(item)
}

// PopBool pops the value off the top of the stack and interprets it by its
// truthiness.
//
// Stack transformation: [... x1 x2 x3] -> [... x1 x2]
func (s *stack) PopBool() (bool, error) {
	item, err := s.PopItem()
	if err != nil {
		return false, err
	}
	return item.IsTruthy(), nil
}

// PeekItem returns the Nth item on the stack without removing it.
func (s *stack) PeekItem(idx int) (stackitem.Item, error) {
	sz := len(s.stk)
	if idx < 0 || idx >= sz {
		str := fmt.Sprintf("index %d is invalid for stack size %d", idx,
			sz)
		return stackitem.Item{}, scriptError(ErrInvalidStackOperation, str)
	}
	return s.stk[sz-idx-1], nil
}

// PeekNumber returns the Nth item on the stack as a number without removing
// it.
func (s *stack) PeekNumber(idx int) (int64, error) {
	item, err := s.PeekItem(idx)
	if err != nil {
		return 0, err
	}
	return asNumber(item)
}

// nipN is an internal function that removes the nth item on the stack and
// returns it.
//
// Stack transformation:
// nipN(0): [... x1 x2 x3] -> [... x1 x2]
// nipN(1): [... x1 x2 x3] -> [... x1 x3]
// nipN(2): [... x1 x2 x3] -> [... x2 x3]
func (s *stack) nipN(idx int) (stackitem.Item, error) {
	sz := len(s.stk)
	if idx < 0 || idx > sz-1 {
		str := fmt.Sprintf("index %d is invalid for stack size %d", idx,
			sz)
		return stackitem.Item{}, scriptError(ErrInvalidStackOperation, str)
	}

	item := s.stk[sz-idx-1]
	if idx == 0 {
		s.stk = s.stk[:sz-1]
	} else if idx == sz-1 {
		s.stk = s.stk[1:]
	} else {
		s1 := s.stk[sz-idx : sz]
		s.stk = s.stk[:sz-idx-1]
		s.stk = append(s.stk, s1...)
	}
	return item, nil
}

// NipN removes the Nth object on the stack
//
// Stack transformation:
// NipN(0): [... x1 x2 x3] -> [... x1 x2]
// NipN(1): [... x1 x2 x3] -> [... x1 x3]
// NipN(2): [... x1 x2 x3] -> [... x2 x3]
func (s *stack) NipN(idx int) error {
	_, err := s.nipN(idx)
	return err
}

// Tuck copies the item at the top of the stack and inserts it before the 2nd
// to top item.
//
// Stack transformation: [... x1 x2] -> [... x2 x1 x2]
func (s *stack) Tuck() error {
	so2, err := s.PopItem()
	if err != nil {
		return err
	}
	so1, err := s.PopItem()
	if err != nil {
		return err
	}
	s.PushItem(so2) // stack [... x2]
	s.PushItem(so1) // stack [... x2 x1]
	s.PushItem(so2) // stack [... x2 x1 x2]

	return nil
}

// DropN removes the top N items from the stack.
//
// Stack transformation:
// DropN(1): [... x1 x2] -> [... x1]
// DropN(2): [... x1 x2] -> [...]
func (s *stack) DropN(n int) error {
	if n < 1 {
		str := fmt.Sprintf("attempt to drop %d items from stack", n)
		return scriptError(ErrInternal, str)
	}

	for ; n > 0; n-- {
		_, err := s.PopItem()
		if err != nil {
			return err
		}
	}
	return nil
}

// DupN duplicates the top N items on the stack.
//
// Stack transformation:
// DupN(1): [... x1 x2] -> [... x1 x2 x2]
// DupN(2): [... x1 x2] -> [... x1 x2 x1 x2]
func (s *stack) DupN(n int) error {
	if n < 1 {
		str := fmt.Sprintf("attempt to dup %d stack items", n)
		return scriptError(ErrInternal, str)
	}

	// Iteratively duplicate the value n-1 down the stack n times.
	// This leaves an in-order duplicate of the top n items on the stack.
	for i := n; i > 0; i-- {
		item, err := s.PeekItem(n - 1)
		if err != nil {
			return err
		}
		s.PushItem(item.Clone())
	}
	return nil
}

// RotN rotates the top 3N items on the stack to the left N times.
//
// Stack transformation:
// RotN(1): [... x1 x2 x3] -> [... x2 x3 x1]
// RotN(2): [... x1 x2 x3 x4 x5 x6] -> [... x3 x4 x5 x6 x1 x2]
func (s *stack) RotN(n int) error {
	if n < 1 {
		str := fmt.Sprintf("attempt to rotate %d stack items", n)
		return scriptError(ErrInternal, str)
	}

	// Nip the 3n-1th item from the stack to the top n times to rotate
	// them up to the head of the stack.
	entry := 3*n - 1
	for i := n; i > 0; i-- {
		item, err := s.nipN(entry)
		if err != nil {
			return err
		}
		s.PushItem(item)
	}
	return nil
}

// SwapN swaps the top N items on the stack with those below them.
//
// Stack transformation:
// SwapN(1): [... x1 x2] -> [... x2 x1]
// SwapN(2): [... x1 x2 x3 x4] -> [... x3 x4 x1 x2]
func (s *stack) SwapN(n int) error {
	if n < 1 {
		str := fmt.Sprintf("attempt to swap %d stack items", n)
		return scriptError(ErrInternal, str)
	}

	entry := 2*n - 1
	for i := n; i > 0; i-- {
		// Swap 2n-1th entry to top.
		item, err := s.nipN(entry)
		if err != nil {
			return err
		}
		s.PushItem(item)
	}
	return nil
}

// OverN copies N items N items back to the top of the stack.
//
// Stack transformation:
// OverN(1): [... x1 x2 x3] -> [... x1 x2 x3 x2]
// OverN(2): [... x1 x2 x3 x4] -> [... x1 x2 x3 x4 x1 x2]
func (s *stack) OverN(n int) error {
	if n < 1 {
		str := fmt.Sprintf("attempt to perform over on %d stack items",
			n)
		return scriptError(ErrInternal, str)
	}

	// Copy 2n-1th entry to top of the stack.
	entry := 2*n - 1
	for ; n > 0; n-- {
		item, err := s.PeekItem(entry)
		if err != nil {
			return err
		}
		s.PushItem(item.Clone())
	}
	return nil
}

// PickN copies the item N items back in the stack to the top.
//
// Stack transformation:
// PickN(0): [x1 x2 x3] -> [x1 x2 x3 x3]
// PickN(1): [x1 x2 x3] -> [x1 x2 x3 x2]
// PickN(2): [x1 x2 x3] -> [x1 x2 x3 x1]
func (s *stack) PickN(n int) error {
	item, err := s.PeekItem(n)
	if err != nil {
		return err
	}
	s.PushItem(item.Clone())
	return nil
}

// RollN moves the item N items back in the stack to the top.
//
// Stack transformation:
// RollN(0): [x1 x2 x3] -> [x1 x2 x3]
// RollN(1): [x1 x2 x3] -> [x1 x3 x2]
// RollN(2): [x1 x2 x3] -> [x2 x3 x1]
func (s *stack) RollN(n int) error {
	item, err := s.nipN(n)
	if err != nil {
		return err
	}
	s.PushItem(item)
	return nil
}

// Snapshot returns a deep copy of the stack, bottom first.
func (s *stack) Snapshot() []stackitem.Item {
	return stackitem.CloneStack(s.stk)
}

// String returns the stack in a readable format.
func (s *stack) String() string {
	return stackitem.FormatStack(s.stk)
}

// asNumber interprets item as a number, translating the failure into a
// script error.
func asNumber(item stackitem.Item) (int64, error) {
	n, err := item.AsNumber()
	if err == nil {
		return n, nil
	}
	if errors.Is(err, stackitem.ErrNumberTooLong) {
		str := fmt.Sprintf("%s does not fit in a 64-bit number", item)
		return 0, scriptError(ErrNumberOverflow, str)
	}
	str := fmt.Sprintf("%s is not a number", item)
	return 0, scriptError(ErrNotANumber, str)
}
