// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package circuiterr models the toolchain's error taxonomy as a small
// family of typed errors, each reported with errors.As at the call site that
// needs to branch on it and otherwise propagated with fmt.Errorf("...: %w").
package circuiterr

import (
	"errors"
	"fmt"
)

// Location identifies the opcode an error occurred at, and for auxiliary
// bytecode, the inner instruction pointer within it.
type Location struct {
	OpcodeIndex int
	// InnerPC is -1 unless the failure occurred inside an AuxBytecode
	// opcode's embedded VM, in which case it is the instruction pointer at
	// the time of failure (AuxVMFailedError is normalized into
	// UnsatisfiedConstraintError carrying this location).
	InnerPC int
}

func (l Location) String() string {
	if l.InnerPC < 0 {
		return fmt.Sprintf("opcode[%d]", l.OpcodeIndex)
	}
	return fmt.Sprintf("opcode[%d]@brillig[%d]", l.OpcodeIndex, l.InnerPC)
}

func opLocation(idx int) Location { return Location{OpcodeIndex: idx, InnerPC: -1} }

// OpLocation builds a Location for a top-level opcode with no inner pc.
func OpLocation(idx int) Location { return opLocation(idx) }

// BrilligLocation builds a Location for a failure inside an AuxBytecode's VM.
func BrilligLocation(idx, innerPC int) Location {
	return Location{OpcodeIndex: idx, InnerPC: innerPC}
}

// UnsupportedPrimitiveError: backend declines a primitive and no fallback
// expansion exists for it.
type UnsupportedPrimitiveError struct {
	Kind string
}

func (e *UnsupportedPrimitiveError) Error() string {
	return fmt.Sprintf("unsupported primitive: %s (no fallback expansion)", e.Kind)
}

// UnsatisfiedConstraintError: an arithmetic, memory, or primitive constraint
// is demonstrably violated by the current witness map.
type UnsatisfiedConstraintError struct {
	Location Location
	Reason   string
}

func (e *UnsatisfiedConstraintError) Error() string {
	return fmt.Sprintf("unsatisfied constraint at %s: %s", e.Location, e.Reason)
}

// IndexOutOfBoundsError: a memory access fell outside a block's declared
// length.
type IndexOutOfBoundsError struct {
	Index    uint64
	Size     uint64
	Location Location
}

func (e *IndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("index %d out of bounds (size %d) at %s", e.Index, e.Size, e.Location)
}

// MissingAssignment names the witness the solver still needs a value for.
type MissingAssignment struct {
	Witness uint32
}

func (e *MissingAssignment) Error() string {
	return fmt.Sprintf("missing assignment for witness %d", e.Witness)
}

// TooManyUnknowns reports that an opcode could not be solved because more
// than one witness remains unassigned.
type TooManyUnknowns struct{}

func (e *TooManyUnknowns) Error() string { return "expression has too many unknowns" }

// OpcodeNotSolvableError wraps either a MissingAssignment or a
// TooManyUnknowns.
type OpcodeNotSolvableError struct {
	Location Location
	Cause    error // *MissingAssignment or *TooManyUnknowns
}

func (e *OpcodeNotSolvableError) Error() string {
	return fmt.Sprintf("opcode not solvable at %s: %v", e.Location, e.Cause)
}

func (e *OpcodeNotSolvableError) Unwrap() error { return e.Cause }

// PrimitiveFailedError: the capability layer attempted the primitive and
// failed for a domain reason (malformed signature, etc.), as opposed to
// declining to support it.
type PrimitiveFailedError struct {
	Kind   string
	Reason string
}

func (e *PrimitiveFailedError) Error() string {
	return fmt.Sprintf("primitive %s failed: %s", e.Kind, e.Reason)
}

// AuxVMFailedError: a trap or invariant violation inside the auxiliary VM.
// At the PWG boundary it is normalized into an UnsatisfiedConstraintError
// with a brillig-qualified location; NewUnsatisfiedFromAuxVM does that
// normalization.
type AuxVMFailedError struct {
	Reason string
	PC     int
}

func (e *AuxVMFailedError) Error() string {
	return fmt.Sprintf("auxiliary VM failed at pc %d: %s", e.PC, e.Reason)
}

// NewUnsatisfiedFromAuxVM normalizes an AuxVMFailedError into the
// UnsatisfiedConstraintError the PWG surfaces to callers.
func NewUnsatisfiedFromAuxVM(opcodeIdx int, err *AuxVMFailedError) *UnsatisfiedConstraintError {
	return &UnsatisfiedConstraintError{
		Location: BrilligLocation(opcodeIdx, err.PC),
		Reason:   err.Reason,
	}
}

// IOError wraps codec failures; Kind is either "InvalidData" or
// "UnexpectedEof".
type IOError struct {
	Kind string
	Err  error
}

func (e *IOError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("io: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("io: %s", e.Kind)
}

func (e *IOError) Unwrap() error { return e.Err }

// ErrUnexpectedEOF and ErrInvalidData are sentinels an IOError.Err may wrap;
// callers that only care about the broad category can use errors.Is against
// these, while callers that need the location/context use errors.As against
// *IOError itself.
var (
	ErrUnexpectedEOF = errors.New("unexpected end of file")
	ErrInvalidData   = errors.New("invalid data")
)

// NewInvalidData builds an IOError of kind InvalidData wrapping err.
func NewInvalidData(context string, err error) *IOError {
	return &IOError{Kind: "InvalidData", Err: fmt.Errorf("%s: %w", context, errors.Join(err, ErrInvalidData))}
}

// NewUnexpectedEOF builds an IOError of kind UnexpectedEof.
func NewUnexpectedEOF(context string) *IOError {
	return &IOError{Kind: "UnexpectedEof", Err: fmt.Errorf("%s: %w", context, ErrUnexpectedEOF)}
}
