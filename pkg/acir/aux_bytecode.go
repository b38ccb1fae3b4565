// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package acir

import "github.com/logical-mechanism/circuitvm/pkg/brillig"

// AuxInputBinding binds one VM input register to either a single expression
// or an array of expressions, evaluated against the current witness map
// before the embedded VM runs.
type AuxInputBinding struct {
	Register brillig.RegisterIndex
	Single   *Expression
	Array    []*Expression
	IsArray  bool
}

// AuxOutputBinding binds one VM output register (or array of registers) to
// witness(es) the solver must assign once the VM finishes.
type AuxOutputBinding struct {
	Register     brillig.RegisterIndex
	Witness      Witness
	ArrayWitness []Witness
	IsArray      bool
}

// AuxForeignCallResult is one previously-resolved foreign-call result,
// queued onto the package so re-execution can replay it without asking the
// host again.
type AuxForeignCallResult struct {
	Outputs [][]brillig.Value
}

// AuxBytecodePackage bundles a Brillig-style hint program with its
// bindings.
type AuxBytecodePackage struct {
	Inputs  []AuxInputBinding
	Outputs []AuxOutputBinding
	// QueuedResults are foreign-call results already resolved by the host,
	// consumed by the VM in order before a new suspension is raised.
	QueuedResults []AuxForeignCallResult
	Bytecode      []brillig.Opcode
	// Predicate, if non-nil, causes the whole package to be skipped when it
	// evaluates to zero against the current witness map.
	Predicate *Expression
}
