// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package acir

import (
	"testing"

	"github.com/logical-mechanism/circuitvm/pkg/field"
)

func TestWitnessMapInsertConflict(t *testing.T) {
	m := NewWitnessMap()
	if !m.Insert(1, field.FromUint64(5)) {
		t.Fatalf("first insert should succeed")
	}
	if !m.Insert(1, field.FromUint64(5)) {
		t.Fatalf("matching re-insert should succeed")
	}
	if m.Insert(1, field.FromUint64(6)) {
		t.Fatalf("conflicting re-insert should fail")
	}
}

func TestWitnessMapKeysSorted(t *testing.T) {
	m := NewWitnessMap()
	m.Insert(5, field.FromUint64(1))
	m.Insert(1, field.FromUint64(1))
	m.Insert(3, field.FromUint64(1))
	ks := m.Keys()
	want := []Witness{1, 3, 5}
	if len(ks) != len(want) {
		t.Fatalf("keys = %v", ks)
	}
	for i := range want {
		if ks[i] != want[i] {
			t.Fatalf("keys = %v, want %v", ks, want)
		}
	}
}

func TestWitnessMapCloneIndependence(t *testing.T) {
	m := NewWitnessMap()
	m.Insert(1, field.FromUint64(1))
	clone := m.Clone()
	clone.Insert(2, field.FromUint64(2))
	if _, ok := m.Get(2); ok {
		t.Fatalf("original map should not see clone's insert")
	}
}
