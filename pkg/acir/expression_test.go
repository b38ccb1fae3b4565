// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package acir

import (
	"testing"

	"github.com/logical-mechanism/circuitvm/pkg/field"
)

func TestSimplifyCollapsesAndDropsZero(t *testing.T) {
	e := &Expression{
		LinTerms: []LinearTerm{
			{Coefficient: field.FromUint64(2), W: 5},
			{Coefficient: field.FromUint64(3), W: 5},
			{Coefficient: field.FromUint64(0), W: 9},
		},
		MulTerms: []MulTerm{
			{Coefficient: field.FromUint64(1), Left: 1, Right: 2},
			{Coefficient: field.FromUint64(1), Left: 1, Right: 2},
		},
	}
	e.Simplify()

	if len(e.LinTerms) != 1 || !field.Equal(e.LinTerms[0].Coefficient, field.FromUint64(5)) {
		t.Fatalf("lin terms = %+v, want single term coeff 5", e.LinTerms)
	}
	if len(e.MulTerms) != 1 || !field.Equal(e.MulTerms[0].Coefficient, field.FromUint64(2)) {
		t.Fatalf("mul terms = %+v, want single term coeff 2", e.MulTerms)
	}
}

func TestToConstAndToWitness(t *testing.T) {
	c := NewConstant(field.FromUint64(42))
	if v, ok := c.ToConst(); !ok || !field.Equal(v, field.FromUint64(42)) {
		t.Fatalf("ToConst = %v,%v", v, ok)
	}
	if _, ok := c.ToWitness(); ok {
		t.Fatalf("constant should not be ToWitness")
	}

	w := NewWitnessExpr(7)
	if got, ok := w.ToWitness(); !ok || got != 7 {
		t.Fatalf("ToWitness = %v,%v, want 7,true", got, ok)
	}
}

func TestIsConstIsLinear(t *testing.T) {
	c := NewConstant(field.FromUint64(1))
	if !c.IsConst() || !c.IsLinear() {
		t.Fatalf("constant should be const and linear")
	}
	lin := NewWitnessExpr(1)
	if lin.IsConst() || !lin.IsLinear() {
		t.Fatalf("single witness should be linear, non-const")
	}
	quad := &Expression{MulTerms: []MulTerm{{Coefficient: field.One(), Left: 1, Right: 2}}}
	if quad.IsConst() || quad.IsLinear() {
		t.Fatalf("quadratic term should not be const or linear")
	}
}

func TestAddSubNeg(t *testing.T) {
	a := NewWitnessExpr(1)
	b := NewWitnessExpr(2)
	sum := Add(a, b)
	sum.Simplify()
	if len(sum.LinTerms) != 2 {
		t.Fatalf("sum terms = %+v", sum.LinTerms)
	}

	diff := Sub(a, a)
	diff.Simplify()
	if !diff.IsConst() {
		t.Fatalf("a - a should simplify to a constant, got %+v", diff)
	}
	if v, _ := diff.ToConst(); !v.IsZero() {
		t.Fatalf("a - a = %v, want 0", v)
	}
}

func TestMulDegreeOneUnivariates(t *testing.T) {
	a := NewWitnessExpr(1)
	b := NewWitnessExpr(2)
	prod, ok := MulDegreeOneUnivariates(a, b)
	if !ok {
		t.Fatalf("expected ok")
	}
	prod.Simplify()
	if len(prod.MulTerms) != 1 || prod.MulTerms[0].Left != 1 || prod.MulTerms[0].Right != 2 {
		t.Fatalf("prod = %+v", prod)
	}

	quad := &Expression{MulTerms: []MulTerm{{Coefficient: field.One(), Left: 1, Right: 2}}}
	if _, ok := MulDegreeOneUnivariates(quad, b); ok {
		t.Fatalf("quadratic * linear should not be supported")
	}
}
