// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package acir is the circuit intermediate representation: witnesses,
// expressions, opcodes, and the Circuit container, plus their binary codec
// (sub-package codec).
package acir

import (
	"fmt"
	"sort"

	"golang.org/x/exp/slices"

	"github.com/logical-mechanism/circuitvm/pkg/field"
)

// Witness is a stable 32-bit name for a constraint-system variable; it is
// not itself a value. Witness(0) is a distinguished index reserved in some
// backends for the constant one, but this IR does not special-case it.
type Witness uint32

// WitnessMap is a mapping from Witness to field.Element, always iterated in
// ascending witness order.
type WitnessMap struct {
	values map[Witness]field.Element
}

// NewWitnessMap returns an empty map.
func NewWitnessMap() *WitnessMap {
	return &WitnessMap{values: make(map[Witness]field.Element)}
}

// Get returns the value bound to w, if any.
func (m *WitnessMap) Get(w Witness) (field.Element, bool) {
	v, ok := m.values[w]
	return v, ok
}

// Insert binds w to v. A duplicate insertion is permitted only when the
// existing value equals v; a differing insertion is a constraint
// violation, surfaced to the caller as ok=false rather than an error
// type, since not every caller has an opcode index in scope to embed in
// an error.
func (m *WitnessMap) Insert(w Witness, v field.Element) (ok bool) {
	if existing, present := m.values[w]; present {
		return field.Equal(existing, v)
	}
	m.values[w] = v
	return true
}

// Len returns the number of bound witnesses.
func (m *WitnessMap) Len() int { return len(m.values) }

// Keys returns the bound witnesses in ascending order.
func (m *WitnessMap) Keys() []Witness {
	ks := make([]Witness, 0, len(m.values))
	for k := range m.values {
		ks = append(ks, k)
	}
	slices.Sort(ks)
	return ks
}

// Clone makes an independent copy; compile/solve sessions never alias
// witness maps.
func (m *WitnessMap) Clone() *WitnessMap {
	out := make(map[Witness]field.Element, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return &WitnessMap{values: out}
}

// Merge inserts every binding from other into m, returning the first
// witness at which a conflicting value was found, if any.
func (m *WitnessMap) Merge(other *WitnessMap) (conflict Witness, ok bool) {
	for _, w := range other.Keys() {
		v, _ := other.Get(w)
		if !m.Insert(w, v) {
			return w, false
		}
	}
	return 0, true
}

func (m *WitnessMap) String() string {
	ks := m.Keys()
	parts := make([]string, 0, len(ks))
	for _, k := range ks {
		v, _ := m.Get(k)
		parts = append(parts, fmt.Sprintf("w%d=%s", k, v.String()))
	}
	return "{" + joinComma(parts) + "}"
}

func joinComma(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

// FunctionInput declares an implicit range constraint: the witness's field
// value must fit in BitWidth bits when interpreted as a non-negative
// integer.
type FunctionInput struct {
	Witness  Witness
	BitWidth uint32
}

// sortWitnesses returns a sorted copy, used by passes that need
// deterministic iteration over witness sets without a map.
func sortWitnesses(ws []Witness) []Witness {
	out := make([]Witness, len(ws))
	copy(out, ws)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
