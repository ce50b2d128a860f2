package interpreter

// branchFrame is the state of one open OP_IF/OP_NOTIF block.
type branchFrame struct {
	// active is whether the current arm of the block runs, given that every
	// enclosing block runs too.
	active bool
	// skip marks a block opened inside a non-executing branch. Its
	// condition was never evaluated and neither of its arms runs.
	skip     bool
	elseSeen bool
}

// branchStack tracks nested conditional blocks.
type branchStack struct {
	frames []branchFrame
}

// isExecuting returns whether instructions at the current position run.
// This is the case when every open block is on its active arm.
func (b *branchStack) isExecuting() bool {
	for _, frame := range b.frames {
		if !frame.active {
			return false
		}
	}
	return true
}

func (b *branchStack) depth() int {
	return len(b.frames)
}

// open pushes a new block whose first arm runs if active is true.
func (b *branchStack) open(active bool) {
	b.frames = append(b.frames, branchFrame{active: active})
}

// openSkipped pushes a block that was opened on a non-executing branch.
func (b *branchStack) openSkipped() {
	b.frames = append(b.frames, branchFrame{skip: true})
}

// toggle switches the innermost block to its OP_ELSE arm.
func (b *branchStack) toggle() error {
	if len(b.frames) == 0 {
		return scriptError(ErrUnbalancedConditional,
			"encountered OP_ELSE with no matching OP_IF")
	}
	frame := &b.frames[len(b.frames)-1]
	if frame.elseSeen {
		return scriptError(ErrUnbalancedConditional,
			"encountered a second OP_ELSE for the same OP_IF")
	}
	frame.elseSeen = true
	if !frame.skip {
		frame.active = !frame.active
	}
	return nil
}

// close pops the innermost block.
func (b *branchStack) close() error {
	if len(b.frames) == 0 {
		return scriptError(ErrUnbalancedConditional,
			"encountered OP_ENDIF with no matching OP_IF")
	}
	b.frames = b.frames[:len(b.frames)-1]
	return nil
}
