package interpreter

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCode identifies a kind of script error.
type ErrorCode int

// These constants are used to identify a specific Error.
const (
	// ErrInternal is returned if internal consistency checks fail. In
	// practice this error should never be seen as it would mean there is an
	// error in the engine logic.
	ErrInternal ErrorCode = iota

	// ErrStackUnderflow is returned when an opcode requires more items
	// than the data stack holds.
	ErrStackUnderflow

	// ErrUnbalancedConditional is returned when an OP_ELSE or OP_ENDIF is
	// encountered without a matching OP_IF/OP_NOTIF, when OP_ELSE appears
	// twice in the same conditional, or when the program ends inside a
	// conditional.
	ErrUnbalancedConditional

	// ErrUnknownOpcode is returned when an instruction names an opcode the
	// interpreter has no handler for.
	ErrUnknownOpcode

	// ErrDisabledOpcode is returned when a disabled opcode is encountered,
	// even on a non-executing branch.
	ErrDisabledOpcode

	// ErrEarlyReturn is returned when OP_RETURN is executed.
	ErrEarlyReturn

	// ErrVerify is returned when OP_VERIFY is encountered and the top item
	// on the data stack is false.
	ErrVerify

	// ErrEqualVerify is returned when OP_EQUALVERIFY is encountered and the
	// top two items on the data stack are not equal.
	ErrEqualVerify

	// ErrNumEqualVerify is returned when OP_NUMEQUALVERIFY is encountered
	// and the top two numbers on the data stack are not equal.
	ErrNumEqualVerify

	// ErrCheckSigVerify is returned when OP_CHECKSIGVERIFY fails.
	ErrCheckSigVerify

	// ErrCheckMultiSigVerify is returned when OP_CHECKMULTISIGVERIFY fails.
	ErrCheckMultiSigVerify

	// ErrInvalidStackOperation is returned when a stack operation is
	// attempted with an index that can never be valid, such as a negative
	// OP_PICK or OP_ROLL argument.
	ErrInvalidStackOperation

	// ErrNumberOverflow is returned when an arithmetic result or a decoded
	// number does not fit in 64 bits.
	ErrNumberOverflow

	// ErrNotANumber is returned when an opcode needs a number and the item
	// has no numeric interpretation.
	ErrNotANumber

	// ErrNegativeLockTime is returned when a lock time opcode sees a
	// negative lock time.
	ErrNegativeLockTime

	// ErrInvalidPubKeyCount is returned when the number of public keys
	// given to a multisig opcode is negative or above MaxPubKeysPerMultiSig.
	ErrInvalidPubKeyCount

	// ErrInvalidSignatureCount is returned when the number of signatures
	// given to a multisig opcode is negative or above the number of public
	// keys.
	ErrInvalidSignatureCount

	// ErrEmptyStack is returned when the script evaluated without error,
	// but terminated with an empty top stack element.
	ErrEmptyStack

	// ErrEvalFalse is returned when the script evaluated without error but
	// terminated with a false top stack element.
	ErrEvalFalse

	// numErrorCodes is the maximum error code number used in tests. This
	// entry MUST be the last entry in the enum.
	numErrorCodes
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrInternal:              "ErrInternal",
	ErrStackUnderflow:        "ErrStackUnderflow",
	ErrUnbalancedConditional: "ErrUnbalancedConditional",
	ErrUnknownOpcode:         "ErrUnknownOpcode",
	ErrDisabledOpcode:        "ErrDisabledOpcode",
	ErrEarlyReturn:           "ErrEarlyReturn",
	ErrVerify:                "ErrVerify",
	ErrEqualVerify:           "ErrEqualVerify",
	ErrNumEqualVerify:        "ErrNumEqualVerify",
	ErrCheckSigVerify:        "ErrCheckSigVerify",
	ErrCheckMultiSigVerify:   "ErrCheckMultiSigVerify",
	ErrInvalidStackOperation: "ErrInvalidStackOperation",
	ErrNumberOverflow:        "ErrNumberOverflow",
	ErrNotANumber:            "ErrNotANumber",
	ErrNegativeLockTime:      "ErrNegativeLockTime",
	ErrInvalidPubKeyCount:    "ErrInvalidPubKeyCount",
	ErrInvalidSignatureCount: "ErrInvalidSignatureCount",
	ErrEmptyStack:            "ErrEmptyStack",
	ErrEvalFalse:             "ErrEvalFalse",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error identifies a script-related error. It is used to indicate three
// classes of errors:
//  1) Script execution failures due to violating the rules of a specific
//     opcode
//  2) Failures of the control flow structure, such as an OP_ELSE without an
//     OP_IF
//  3) Failure of the final stack to evaluate to true
//
// The caller can use type assertions or IsErrorCode to determine if an error
// is an Error and access the ErrorCode field to ascertain the specific reason
// for the failure.
type Error struct {
	ErrorCode   ErrorCode
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// scriptError creates an Error given a set of arguments.
func scriptError(c ErrorCode, desc string) Error {
	return Error{ErrorCode: c, Description: desc}
}

// IsErrorCode returns whether or not the provided error is a script error
// with the provided error code.
func IsErrorCode(err error, c ErrorCode) bool {
	var scriptErr Error
	return errors.As(err, &scriptErr) && scriptErr.ErrorCode == c
}
