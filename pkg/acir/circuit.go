// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package acir

import "fmt"

// Circuit holds the maximal witness index allocated so far, the ordered
// opcode list, and the private/public/return witness sets. Compilation
// passes consume a Circuit and produce a new one; nothing aliases between
// them.
type Circuit struct {
	CurrentWitnessIndex Witness
	Opcodes             []Opcode
	PrivateParameters   []Witness
	PublicParameters    []Witness
	ReturnValues        []Witness
}

// NewCircuit returns an empty circuit with CurrentWitnessIndex 0, so the
// first NextWitness call returns witness 1.
func NewCircuit() *Circuit {
	return &Circuit{CurrentWitnessIndex: 0}
}

// NextWitness allocates and returns a fresh witness, advancing
// CurrentWitnessIndex.
func (c *Circuit) NextWitness() Witness {
	c.CurrentWitnessIndex++
	return c.CurrentWitnessIndex
}

// Clone deep-copies the circuit's slices so a compilation pass can mutate
// its copy freely.
func (c *Circuit) Clone() *Circuit {
	out := &Circuit{CurrentWitnessIndex: c.CurrentWitnessIndex}
	out.Opcodes = append(out.Opcodes, c.Opcodes...)
	out.PrivateParameters = append(out.PrivateParameters, c.PrivateParameters...)
	out.PublicParameters = append(out.PublicParameters, c.PublicParameters...)
	out.ReturnValues = append(out.ReturnValues, c.ReturnValues...)
	return out
}

// Validate checks the circuit invariants: witness indices in
// opcodes never exceed CurrentWitnessIndex; public and return sets are
// disjoint from each other; every witness in those sets is valid.
func (c *Circuit) Validate() error {
	for i, op := range c.Opcodes {
		for _, w := range op.Witnesses() {
			if w > c.CurrentWitnessIndex {
				return fmt.Errorf("opcode %d references witness %d beyond current_witness_index %d", i, w, c.CurrentWitnessIndex)
			}
		}
	}

	public := make(map[Witness]struct{}, len(c.PublicParameters))
	for _, w := range c.PublicParameters {
		if w > c.CurrentWitnessIndex {
			return fmt.Errorf("public parameter %d exceeds current_witness_index %d", w, c.CurrentWitnessIndex)
		}
		public[w] = struct{}{}
	}
	for _, w := range c.ReturnValues {
		if w > c.CurrentWitnessIndex {
			return fmt.Errorf("return value %d exceeds current_witness_index %d", w, c.CurrentWitnessIndex)
		}
		if _, ok := public[w]; ok {
			return fmt.Errorf("witness %d is in both the public and return sets", w)
		}
	}
	return nil
}
