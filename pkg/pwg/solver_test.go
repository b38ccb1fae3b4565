// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package pwg

import (
	"testing"

	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/brillig"
	"github.com/logical-mechanism/circuitvm/pkg/capability"
	"github.com/logical-mechanism/circuitvm/pkg/field"
)

func TestSolveArithmeticSingleUnknown(t *testing.T) {
	// w0 + w1 - 5 = 0, w0 = 2 known, solves w1 = 3.
	e := &acir.Expression{
		QConstant: field.Neg(field.FromUint64(5)),
		LinTerms: []acir.LinearTerm{
			{Coefficient: field.One(), W: 0},
			{Coefficient: field.One(), W: 1},
		},
	}
	c := acir.NewCircuit()
	c.Opcodes = []acir.Opcode{acir.ArithmeticOpcode(e)}
	wm := acir.NewWitnessMap()
	wm.Insert(0, field.FromUint64(2))

	sv := New(c, wm, Options{})
	st := sv.Solve()
	if st.Kind != StatusSolved {
		t.Fatalf("status = %v, want Solved (err=%v)", st.Kind, st.Err)
	}
	got, ok := wm.Get(1)
	if !ok || !field.Equal(got, field.FromUint64(3)) {
		t.Fatalf("w1 = %v (ok=%v), want 3", got, ok)
	}
}

func TestSolveArithmeticUnsatisfied(t *testing.T) {
	// w0 - 5 = 0, w0 = 2 known: constraint violated.
	e := &acir.Expression{
		QConstant: field.Neg(field.FromUint64(5)),
		LinTerms:  []acir.LinearTerm{{Coefficient: field.One(), W: 0}},
	}
	c := acir.NewCircuit()
	c.Opcodes = []acir.Opcode{acir.ArithmeticOpcode(e)}
	wm := acir.NewWitnessMap()
	wm.Insert(0, field.FromUint64(2))

	sv := New(c, wm, Options{})
	st := sv.Solve()
	if st.Kind != StatusFailure {
		t.Fatalf("status = %v, want Failure", st.Kind)
	}
}

func TestSolveDirectiveInvert(t *testing.T) {
	d := &acir.Directive{
		Kind:         acir.DirectiveInvert,
		InvertX:      acir.NewWitnessExpr(0),
		InvertResult: 1,
	}
	c := acir.NewCircuit()
	c.Opcodes = []acir.Opcode{acir.DirectiveOpcode(d)}
	wm := acir.NewWitnessMap()
	wm.Insert(0, field.FromUint64(7))

	sv := New(c, wm, Options{})
	st := sv.Solve()
	if st.Kind != StatusSolved {
		t.Fatalf("status = %v, want Solved (err=%v)", st.Kind, st.Err)
	}
	got, _ := wm.Get(1)
	want := field.Inverse(field.FromUint64(7))
	if !field.Equal(got, want) {
		t.Fatalf("invert result mismatch")
	}
}

func TestSolveDirectiveQuotient(t *testing.T) {
	// 17 / 5 => q=3, r=2, predicate non-zero.
	d := &acir.Directive{
		Kind:              acir.DirectiveQuotient,
		QuotientA:         acir.NewConstant(field.FromUint64(17)),
		QuotientB:         acir.NewConstant(field.FromUint64(5)),
		QuotientQ:         1,
		QuotientR:         2,
		QuotientPredicate: acir.NewConstant(field.One()),
	}
	c := acir.NewCircuit()
	c.Opcodes = []acir.Opcode{acir.DirectiveOpcode(d)}
	wm := acir.NewWitnessMap()

	st := New(c, wm, Options{}).Solve()
	if st.Kind != StatusSolved {
		t.Fatalf("status = %v, want Solved (err=%v)", st.Kind, st.Err)
	}
	q, _ := wm.Get(1)
	r, _ := wm.Get(2)
	if !field.Equal(q, field.FromUint64(3)) || !field.Equal(r, field.FromUint64(2)) {
		t.Fatalf("quotient = (%v, %v), want (3, 2)", q, r)
	}
}

func TestSolveDirectiveQuotientZeroPredicate(t *testing.T) {
	d := &acir.Directive{
		Kind:              acir.DirectiveQuotient,
		QuotientA:         acir.NewConstant(field.FromUint64(17)),
		QuotientB:         acir.NewConstant(field.Zero()),
		QuotientQ:         1,
		QuotientR:         2,
		QuotientPredicate: acir.NewConstant(field.Zero()),
	}
	c := acir.NewCircuit()
	c.Opcodes = []acir.Opcode{acir.DirectiveOpcode(d)}
	wm := acir.NewWitnessMap()

	st := New(c, wm, Options{}).Solve()
	if st.Kind != StatusSolved {
		t.Fatalf("status = %v, want Solved (err=%v)", st.Kind, st.Err)
	}
	q, _ := wm.Get(1)
	r, _ := wm.Get(2)
	if !q.IsZero() || !r.IsZero() {
		t.Fatalf("guarded quotient = (%v, %v), want (0, 0)", q, r)
	}
}

func TestSolveDirectiveToLERadix(t *testing.T) {
	// 42 base 10 => digits [2, 4, 0] little-endian, zero-padded.
	d := &acir.Directive{
		Kind:           acir.DirectiveToLERadix,
		ToLERadixA:     acir.NewConstant(field.FromUint64(42)),
		ToLERadixBits:  []acir.Witness{1, 2, 3},
		ToLERadixRadix: 10,
	}
	c := acir.NewCircuit()
	c.Opcodes = []acir.Opcode{acir.DirectiveOpcode(d)}
	wm := acir.NewWitnessMap()

	st := New(c, wm, Options{}).Solve()
	if st.Kind != StatusSolved {
		t.Fatalf("status = %v, want Solved (err=%v)", st.Kind, st.Err)
	}
	for i, want := range []uint64{2, 4, 0} {
		got, _ := wm.Get(acir.Witness(1 + i))
		if !field.Equal(got, field.FromUint64(want)) {
			t.Fatalf("digit %d = %v, want %d", i, got, want)
		}
	}
}

type stubCapability struct{}

func (stubCapability) SchnorrVerify(capability.Point, field.Element, capability.Point, field.Element) (bool, error) {
	return true, nil
}
func (stubCapability) PedersenCommit([]byte, []field.Element) (capability.Point, error) {
	return capability.Point{X: field.FromUint64(11), Y: field.FromUint64(22)}, nil
}
func (stubCapability) FixedBaseScalarMul(field.Element) (capability.Point, error) {
	return capability.Point{X: field.FromUint64(33), Y: field.FromUint64(44)}, nil
}
func (stubCapability) Hash(acir.PrimitiveKind, []byte) ([]byte, error) {
	return []byte{9, 9}, nil
}
func (stubCapability) HashToField([]field.Element) (field.Element, error) {
	return field.FromUint64(55), nil
}
func (stubCapability) ComputeMerkleRoot(_, _ field.Element, _ []field.Element) (field.Element, error) {
	return field.FromUint64(66), nil
}
func (stubCapability) EcdsaSecp256k1Verify(_, _ [32]byte, _ [32]byte, _, _ [32]byte) (bool, error) {
	return false, nil
}

func TestSolvePrimitiveDelegatesToCapability(t *testing.T) {
	p := &acir.PrimitiveCall{
		Kind:    acir.PrimitiveFixedBaseScalarMul,
		Inputs:  []acir.InputGroup{{Inputs: []acir.FunctionInput{{Witness: 0, BitWidth: 254}}}},
		Outputs: []acir.Witness{1, 2},
	}
	c := acir.NewCircuit()
	c.Opcodes = []acir.Opcode{acir.PrimitiveOpcode(p)}
	wm := acir.NewWitnessMap()
	wm.Insert(0, field.FromUint64(5))

	sv := New(c, wm, Options{Capability: stubCapability{}})
	st := sv.Solve()
	if st.Kind != StatusSolved {
		t.Fatalf("status = %v, want Solved (err=%v)", st.Kind, st.Err)
	}
	x, _ := wm.Get(1)
	y, _ := wm.Get(2)
	if !field.Equal(x, field.FromUint64(33)) || !field.Equal(y, field.FromUint64(44)) {
		t.Fatalf("fixed_base_scalar_mul output mismatch")
	}
}

func TestSolvePrimitiveEcdsaBindsVerdict(t *testing.T) {
	// Five groups of 32 byte-witnesses (pubX, pubY, hash, sigR, sigS),
	// then the boolean verdict witness.
	p := &acir.PrimitiveCall{Kind: acir.PrimitiveEcdsaSecp256k1}
	wm := acir.NewWitnessMap()
	next := acir.Witness(1)
	for g := 0; g < 5; g++ {
		group := acir.InputGroup{}
		for i := 0; i < 32; i++ {
			group.Inputs = append(group.Inputs, acir.FunctionInput{Witness: next, BitWidth: 8})
			wm.Insert(next, field.Zero())
			next++
		}
		p.Inputs = append(p.Inputs, group)
	}
	p.Outputs = []acir.Witness{next}

	c := acir.NewCircuit()
	c.CurrentWitnessIndex = next
	c.Opcodes = []acir.Opcode{acir.PrimitiveOpcode(p)}

	st := New(c, wm, Options{Capability: stubCapability{}}).Solve()
	if st.Kind != StatusSolved {
		t.Fatalf("status = %v, want Solved (err=%v)", st.Kind, st.Err)
	}
	verdict, ok := wm.Get(p.Outputs[0])
	if !ok || !verdict.IsZero() {
		t.Fatalf("verdict = %v (ok=%v), want 0 from the declining stub", verdict, ok)
	}
}

func TestSolvePrimitiveAndBuiltin(t *testing.T) {
	p := &acir.PrimitiveCall{
		Kind: acir.PrimitiveAnd,
		Inputs: []acir.InputGroup{
			{Inputs: []acir.FunctionInput{{Witness: 0, BitWidth: 8}}},
			{Inputs: []acir.FunctionInput{{Witness: 1, BitWidth: 8}}},
		},
		Outputs: []acir.Witness{2},
	}
	c := acir.NewCircuit()
	c.Opcodes = []acir.Opcode{acir.PrimitiveOpcode(p)}
	wm := acir.NewWitnessMap()
	wm.Insert(0, field.FromUint64(0b1100))
	wm.Insert(1, field.FromUint64(0b1010))

	sv := New(c, wm, Options{})
	st := sv.Solve()
	if st.Kind != StatusSolved {
		t.Fatalf("status = %v, want Solved (err=%v)", st.Kind, st.Err)
	}
	got, _ := wm.Get(2)
	if !field.Equal(got, field.FromUint64(0b1000)) {
		t.Fatalf("and result = %v, want 8", got)
	}
}

func TestSolvePrimitiveAndRejectsMismatchedWidths(t *testing.T) {
	p := &acir.PrimitiveCall{
		Kind: acir.PrimitiveAnd,
		Inputs: []acir.InputGroup{
			{Inputs: []acir.FunctionInput{{Witness: 0, BitWidth: 8}}},
			{Inputs: []acir.FunctionInput{{Witness: 1, BitWidth: 16}}},
		},
		Outputs: []acir.Witness{2},
	}
	c := acir.NewCircuit()
	c.Opcodes = []acir.Opcode{acir.PrimitiveOpcode(p)}
	wm := acir.NewWitnessMap()
	wm.Insert(0, field.FromUint64(3))
	wm.Insert(1, field.FromUint64(5))

	st := New(c, wm, Options{}).Solve()
	if st.Kind != StatusFailure {
		t.Fatalf("status = %v, want Failure for mismatched operand widths", st.Kind)
	}
	if _, ok := wm.Get(2); ok {
		t.Fatalf("output witness was assigned despite the malformed call")
	}
}

func TestSolveMemoryBlockRoundTrip(t *testing.T) {
	m := &acir.MemoryBlockOpcode{
		Kind:    acir.MemoryBlock,
		BlockID: 0,
		Len:     2,
		Trace: []acir.MemoryOp{
			{Operation: acir.NewConstant(field.One()), Index: acir.NewConstant(field.Zero()), Value: acir.NewWitnessExpr(0)},
			{Operation: acir.NewConstant(field.Zero()), Index: acir.NewConstant(field.Zero()), Value: acir.NewWitnessExpr(1)},
		},
	}
	c := acir.NewCircuit()
	c.Opcodes = []acir.Opcode{acir.MemoryOpcode(m)}
	wm := acir.NewWitnessMap()
	wm.Insert(0, field.FromUint64(42))

	sv := New(c, wm, Options{})
	st := sv.Solve()
	if st.Kind != StatusSolved {
		t.Fatalf("status = %v, want Solved (err=%v)", st.Kind, st.Err)
	}
	got, ok := wm.Get(1)
	if !ok || !field.Equal(got, field.FromUint64(42)) {
		t.Fatalf("read witness = %v (ok=%v), want 42", got, ok)
	}
}

func TestSolveROMReadMatchesInit(t *testing.T) {
	// ROM block of length 3 initialized to [7, 8, 9]; read index 1 into w4.
	m := &acir.MemoryBlockOpcode{
		Kind:    acir.MemoryROM,
		BlockID: 0,
		Len:     3,
		Init: []*acir.Expression{
			acir.NewConstant(field.FromUint64(7)),
			acir.NewConstant(field.FromUint64(8)),
			acir.NewConstant(field.FromUint64(9)),
		},
		Trace: []acir.MemoryOp{
			{Operation: acir.NewConstant(field.Zero()), Index: acir.NewConstant(field.One()), Value: acir.NewWitnessExpr(4)},
		},
	}
	c := acir.NewCircuit()
	c.Opcodes = []acir.Opcode{acir.MemoryOpcode(m)}
	wm := acir.NewWitnessMap()

	sv := New(c, wm, Options{})
	st := sv.Solve()
	if st.Kind != StatusSolved {
		t.Fatalf("status = %v, want Solved (err=%v)", st.Kind, st.Err)
	}
	got, ok := wm.Get(4)
	if !ok || !field.Equal(got, field.FromUint64(8)) {
		t.Fatalf("read witness = %v (ok=%v), want 8", got, ok)
	}
}

func TestSolveROMRejectsWriteAfterInit(t *testing.T) {
	m := &acir.MemoryBlockOpcode{
		Kind:    acir.MemoryROM,
		BlockID: 0,
		Len:     1,
		Init:    []*acir.Expression{acir.NewConstant(field.FromUint64(7))},
		Trace: []acir.MemoryOp{
			{Operation: acir.NewConstant(field.One()), Index: acir.NewConstant(field.Zero()), Value: acir.NewConstant(field.FromUint64(9))},
		},
	}
	c := acir.NewCircuit()
	c.Opcodes = []acir.Opcode{acir.MemoryOpcode(m)}
	wm := acir.NewWitnessMap()

	sv := New(c, wm, Options{})
	st := sv.Solve()
	if st.Kind != StatusFailure {
		t.Fatalf("status = %v, want Failure", st.Kind)
	}
}

func TestSolveOraclePauseAndResolve(t *testing.T) {
	o := &acir.Oracle{Name: "fetch_price", Inputs: nil, Outputs: []acir.Witness{0}}
	c := acir.NewCircuit()
	c.Opcodes = []acir.Opcode{acir.OracleOpcode(o)}
	wm := acir.NewWitnessMap()

	sv := New(c, wm, Options{})
	st := sv.Solve()
	if st.Kind != StatusRequiresForeignCall || st.Oracle == nil {
		t.Fatalf("status = %v, want RequiresForeignCall", st.Kind)
	}

	st = sv.ResolveOracle([]field.Element{field.FromUint64(100)})
	if st.Kind != StatusSolved {
		t.Fatalf("status after resolve = %v, want Solved (err=%v)", st.Kind, st.Err)
	}
	got, _ := wm.Get(0)
	if !field.Equal(got, field.FromUint64(100)) {
		t.Fatalf("oracle output = %v, want 100", got)
	}
}

func TestSolveAuxBytecodePauseAndResolve(t *testing.T) {
	// A single-instruction program that issues one foreign call and stops.
	bytecode := []brillig.Opcode{
		{
			Kind:           brillig.OpForeignCall,
			ForeignName:    "double",
			ForeignInputs:  []brillig.ValueOrArray{brillig.Single(0)},
			ForeignOutputs: []brillig.ValueOrArray{brillig.Single(1)},
		},
		{Kind: brillig.OpStop},
	}
	pkg := &acir.AuxBytecodePackage{
		Inputs:   []acir.AuxInputBinding{{Register: 0, Single: acir.NewWitnessExpr(0)}},
		Outputs:  []acir.AuxOutputBinding{{Register: 1, Witness: 1}},
		Bytecode: bytecode,
	}
	c := acir.NewCircuit()
	c.Opcodes = []acir.Opcode{acir.AuxBytecodeOpcode(pkg)}
	wm := acir.NewWitnessMap()
	wm.Insert(0, field.FromUint64(21))

	sv := New(c, wm, Options{})
	st := sv.Solve()
	if st.Kind != StatusRequiresForeignCall || st.Aux == nil {
		t.Fatalf("status = %v, want RequiresForeignCall", st.Kind)
	}

	st = sv.ResolveForeignCall([][]brillig.Value{{brillig.FieldValue(field.FromUint64(42))}})
	if st.Kind != StatusSolved {
		t.Fatalf("status after resolve = %v, want Solved (err=%v)", st.Kind, st.Err)
	}
	got, ok := wm.Get(1)
	if !ok || !field.Equal(got, field.FromUint64(42)) {
		t.Fatalf("aux output = %v (ok=%v), want 42", got, ok)
	}
}

// inverseCircuit builds the four-opcode inverse scenario: an aux-bytecode
// package inverts w1+w2 through a foreign call (outputs r0->w6, r1->w3), an
// arithmetic gate derives w4 = w1+w2, an invert directive derives w5 = 1/w4,
// and a final gate checks w4*w5 = 1.
func inverseCircuit() *acir.Circuit {
	pkg := &acir.AuxBytecodePackage{
		Inputs: []acir.AuxInputBinding{
			{Register: 0, Single: acir.Add(acir.NewWitnessExpr(1), acir.NewWitnessExpr(2))},
		},
		Outputs: []acir.AuxOutputBinding{
			{Register: 0, Witness: 6},
			{Register: 1, Witness: 3},
		},
		Bytecode: []brillig.Opcode{
			{
				Kind:           brillig.OpForeignCall,
				ForeignName:    "invert",
				ForeignInputs:  []brillig.ValueOrArray{brillig.Single(0)},
				ForeignOutputs: []brillig.ValueOrArray{brillig.Single(1)},
			},
			{Kind: brillig.OpStop},
		},
	}

	sum := &acir.Expression{
		LinTerms: []acir.LinearTerm{
			{Coefficient: field.One(), W: 1},
			{Coefficient: field.One(), W: 2},
			{Coefficient: field.Neg(field.One()), W: 4},
		},
	}
	product := &acir.Expression{
		MulTerms:  []acir.MulTerm{{Coefficient: field.One(), Left: 4, Right: 5}},
		QConstant: field.Neg(field.One()),
	}

	c := acir.NewCircuit()
	c.CurrentWitnessIndex = 6
	c.PrivateParameters = []acir.Witness{1, 2}
	c.Opcodes = []acir.Opcode{
		acir.AuxBytecodeOpcode(pkg),
		acir.ArithmeticOpcode(sum),
		acir.DirectiveOpcode(&acir.Directive{Kind: acir.DirectiveInvert, InvertX: acir.NewWitnessExpr(4), InvertResult: 5}),
		acir.ArithmeticOpcode(product),
	}
	return c
}

func TestSolveInverseViaAuxBytecode(t *testing.T) {
	c := inverseCircuit()
	wm := acir.NewWitnessMap()
	wm.Insert(1, field.FromUint64(2))
	wm.Insert(2, field.FromUint64(3))

	sv := New(c, wm, Options{})
	st := sv.Solve()
	if st.Kind != StatusRequiresForeignCall || st.Aux == nil {
		t.Fatalf("status = %v, want RequiresForeignCall (err=%v)", st.Kind, st.Err)
	}
	if st.Aux.Info.Name != "invert" {
		t.Fatalf("foreign call name = %q, want invert", st.Aux.Info.Name)
	}
	in := st.Aux.Info.Inputs[0][0].Inner
	if !field.Equal(in, field.FromUint64(5)) {
		t.Fatalf("foreign call input = %v, want 5", in)
	}

	st = sv.ResolveForeignCall([][]brillig.Value{{brillig.FieldValue(field.Inverse(in))}})
	if st.Kind != StatusSolved {
		t.Fatalf("status after resolve = %v, want Solved (err=%v)", st.Kind, st.Err)
	}

	w4, _ := wm.Get(4)
	w5, _ := wm.Get(5)
	w3, _ := wm.Get(3)
	if !field.Equal(w4, field.FromUint64(5)) {
		t.Fatalf("w4 = %v, want 5", w4)
	}
	if !field.Equal(w5, field.Inverse(field.FromUint64(5))) {
		t.Fatalf("w5 != 1/5")
	}
	if !field.Equal(w3, w5) {
		t.Fatalf("w3 != w5")
	}
}

// TestForeignCallReplayFromQueuedResults checks that re-running a solve
// from scratch after a foreign call was resolved reaches the same terminal
// state without pausing: the resolved result was queued onto the package
// and is consumed by position on re-execution.
func TestForeignCallReplayFromQueuedResults(t *testing.T) {
	c := inverseCircuit()
	wm := acir.NewWitnessMap()
	wm.Insert(1, field.FromUint64(2))
	wm.Insert(2, field.FromUint64(3))

	sv := New(c, wm, Options{})
	st := sv.Solve()
	if st.Kind != StatusRequiresForeignCall {
		t.Fatalf("status = %v, want RequiresForeignCall", st.Kind)
	}
	st = sv.ResolveForeignCall([][]brillig.Value{{brillig.FieldValue(field.Inverse(field.FromUint64(5)))}})
	if st.Kind != StatusSolved {
		t.Fatalf("status = %v, want Solved (err=%v)", st.Kind, st.Err)
	}

	replay := acir.NewWitnessMap()
	replay.Insert(1, field.FromUint64(2))
	replay.Insert(2, field.FromUint64(3))
	st2 := New(c, replay, Options{}).Solve()
	if st2.Kind != StatusSolved {
		t.Fatalf("replay status = %v, want Solved without pausing (err=%v)", st2.Kind, st2.Err)
	}
	for _, w := range []acir.Witness{3, 4, 5, 6} {
		a, aok := wm.Get(w)
		b, bok := replay.Get(w)
		if !aok || !bok || !field.Equal(a, b) {
			t.Fatalf("replay diverged at witness %d", w)
		}
	}
}
