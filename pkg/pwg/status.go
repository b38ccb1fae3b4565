// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package pwg implements the partial-witness generator: a
// single-threaded, cooperative solver that completes a witness map in
// place by walking a circuit's opcode list.
package pwg

import (
	"github.com/logical-mechanism/circuitvm/pkg/brillig"
	"github.com/logical-mechanism/circuitvm/pkg/field"
)

// StatusKind mirrors the auxiliary VM's status machine at the solver's own
// granularity.
type StatusKind uint8

const (
	StatusInProgress StatusKind = iota
	StatusSolved
	StatusFailure
	StatusRequiresForeignCall
)

// OracleRequest names a paused Oracle opcode's inputs, awaiting host-supplied
// outputs.
type OracleRequest struct {
	OpcodeIndex int
	Name        string
	Inputs      []field.Element
}

// AuxForeignCallRequest names a paused AuxBytecode opcode's embedded VM
// foreign-call request.
type AuxForeignCallRequest struct {
	OpcodeIndex int
	Info        brillig.ForeignCallInfo
}

// Status is the solver's result after a Solve/Resolve* call.
type Status struct {
	Kind StatusKind

	// Err is set when Kind == StatusFailure.
	Err error

	// Oracle is set when Kind == StatusRequiresForeignCall and pausing on
	// an Oracle opcode.
	Oracle *OracleRequest
	// Aux is set when Kind == StatusRequiresForeignCall and pausing inside
	// an AuxBytecode opcode's embedded VM.
	Aux *AuxForeignCallRequest
}
