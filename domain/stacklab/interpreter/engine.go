package interpreter

import (
	"fmt"

	"github.com/kaspanet/stacklab/domain/stacklab/stackitem"
	"github.com/kaspanet/stacklab/infrastructure/logger"
)

// ExecutionStep records the execution of a single instruction.
type ExecutionStep struct {
	// Index is the position of the instruction in the program.
	Index int
	// OpCode is the opcode name, or the display form of a pushed literal.
	OpCode      string
	StackBefore []stackitem.Item
	StackAfter  []stackitem.Item
	Success     bool
	// Skipped is set for instructions on a non-executing branch. They
	// leave the stack untouched.
	Skipped bool
	Err     error
}

// ErrorMessage returns the step's error message, or "" if it succeeded.
func (s *ExecutionStep) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// ExecutionResult is the outcome of running a program.
type ExecutionResult struct {
	Success    bool
	FinalStack []stackitem.Item
	// Steps holds one entry per processed instruction. Execution halts at
	// the first failing step, which is the last entry in that case.
	Steps []ExecutionStep
	Err   error
}

// ErrorMessage returns the message of the error that decided the verdict, or
// "" if the program succeeded.
func (r *ExecutionResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// FailedStep returns the step that halted execution, if any.
func (r *ExecutionResult) FailedStep() (*ExecutionStep, bool) {
	if len(r.Steps) == 0 {
		return nil, false
	}
	last := &r.Steps[len(r.Steps)-1]
	if last.Success {
		return nil, false
	}
	return last, true
}

// Interpreter executes programs. It holds no state between executions, so a
// single Interpreter may be used from several goroutines.
type Interpreter struct{}

// New returns a new Interpreter.
func New() *Interpreter {
	return &Interpreter{}
}

// Execute runs program on a fresh stack and returns the full trace and
// verdict. Program-level failures are reported through the result and never
// as a panic.
func (i *Interpreter) Execute(program []Instruction) *ExecutionResult {
	vm := &engine{program: program}
	return vm.execute()
}

// Execute runs program with a new Interpreter.
func Execute(program []Instruction) *ExecutionResult {
	return New().Execute(program)
}

// engine is the state of a single execution.
type engine struct {
	program  []Instruction
	dstack   stack
	branches branchStack
}

func (vm *engine) execute() *ExecutionResult {
	onEnd := logger.LogAndMeasureExecutionTime(log, "engine.execute")
	defer onEnd()

	result := &ExecutionResult{Steps: make([]ExecutionStep, 0, len(vm.program))}
	for idx, instruction := range vm.program {
		step := vm.step(idx, instruction)
		result.Steps = append(result.Steps, step)
		log.Tracef("%s", logger.NewLogClosure(func() string {
			return formatStep(&step)
		}))
		if !step.Success {
			log.Debugf("Execution halted at step %d (%s): %s", idx, step.OpCode, step.Err)
			result.Err = step.Err
			break
		}
	}

	result.FinalStack = vm.dstack.Snapshot()
	if result.Err == nil {
		result.Err = vm.checkErrorCondition()
	}
	result.Success = result.Err == nil
	log.Debugf("Executed %d of %d instructions, success: %t",
		len(result.Steps), len(vm.program), result.Success)
	return result
}

// step executes a single instruction and records it.
func (vm *engine) step(idx int, instruction Instruction) ExecutionStep {
	step := ExecutionStep{
		Index:       idx,
		OpCode:      instruction.String(),
		StackBefore: vm.dstack.Snapshot(),
	}
	skipped, err := vm.executeInstruction(instruction)
	step.StackAfter = vm.dstack.Snapshot()
	step.Skipped = skipped
	step.Success = err == nil
	step.Err = err
	return step
}

// executeInstruction performs the instruction. It returns whether the
// instruction was skipped because it lies on a non-executing branch.
func (vm *engine) executeInstruction(instruction Instruction) (skipped bool, err error) {
	executing := vm.branches.isExecuting()
	if !instruction.IsOpcode() {
		if !executing {
			return true, nil
		}
		vm.dstack.PushItem(instruction.Literal())
		return false, nil
	}

	name := instruction.OpcodeName()
	op, ok := opcodeTable[name]
	if !ok {
		str := fmt.Sprintf("unknown opcode %s", name)
		return false, scriptError(ErrUnknownOpcode, str)
	}
	// Disabled opcodes fail even on non-executing branches.
	if op.disabled {
		str := fmt.Sprintf("attempt to execute disabled opcode %s", name)
		return false, scriptError(ErrDisabledOpcode, str)
	}
	if !executing && !op.conditional {
		return true, nil
	}
	if executing && vm.dstack.Depth() < op.minStack {
		str := fmt.Sprintf("stack underflow: %s requires %d items, stack has %d",
			name, op.minStack, vm.dstack.Depth())
		return false, scriptError(ErrStackUnderflow, str)
	}
	return false, op.opfunc(op, vm)
}

// checkErrorCondition is called once all instructions ran successfully. It
// decides the verdict from the final state.
func (vm *engine) checkErrorCondition() error {
	if vm.branches.depth() != 0 {
		str := fmt.Sprintf("end of script reached in conditional execution: "+
			"%d OP_ENDIF missing", vm.branches.depth())
		return scriptError(ErrUnbalancedConditional, str)
	}
	if vm.dstack.Depth() < 1 {
		return scriptError(ErrEmptyStack,
			"stack empty at end of script execution")
	}
	top, err := vm.dstack.PeekItem(0)
	if err != nil {
		return err
	}
	if !top.IsTruthy() {
		str := fmt.Sprintf("false stack entry at end of script execution: %s", top)
		return scriptError(ErrEvalFalse, str)
	}
	return nil
}

func formatStep(step *ExecutionStep) string {
	status := "ok"
	switch {
	case step.Skipped:
		status = "skipped"
	case !step.Success:
		status = "failed: " + step.ErrorMessage()
	}
	return fmt.Sprintf("step %d %s: %s -> %s (%s)", step.Index, step.OpCode,
		stackitem.FormatStack(step.StackBefore), stackitem.FormatStack(step.StackAfter), status)
}
