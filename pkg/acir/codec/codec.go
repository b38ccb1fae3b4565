// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package codec implements the deterministic binary encoding of circuits
// and witness maps: little-endian integers, big-endian field elements,
// length-prefixed vectors, and a stable small-integer opcode tag.
// Encoding/decoding is hand-rolled with io.Writer/io.Reader and
// encoding/binary rather than through a generic serialization library: the
// wire layout is pinned byte-for-byte and a schema-driven encoder (e.g.
// CBOR) cannot reproduce it.
package codec

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/blang/semver/v4"

	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/brillig"
	"github.com/logical-mechanism/circuitvm/pkg/circuiterr"
	"github.com/logical-mechanism/circuitvm/pkg/field"
)

// FormatVersion is stamped onto every encoded artifact. Bumping the minor
// version must stay wire-compatible; a major bump signals an incompatible
// layout change.
var FormatVersion = semver.MustParse("1.0.0")

const (
	tagArithmetic  = 0
	tagPrimitive   = 1
	tagDirective   = 2
	tagBlock       = 3
	tagROM         = 4
	tagRAM         = 5
	tagOracle      = 6
	tagAuxBytecode = 7
)

// ---- primitive integer/field helpers ----

func writeU8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

func readU8(r io.Reader) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func writeU16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readU16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func writeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func writeU64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func writeField(w io.Writer, e field.Element) error {
	b := e.BytesBE()
	_, err := w.Write(b[:])
	return err
}

func readField(r io.Reader) (field.Element, error) {
	b := make([]byte, field.NumBytes)
	if _, err := io.ReadFull(r, b); err != nil {
		return field.Element{}, err
	}
	return field.FromBytesBE(b)
}

func writeWitness(w io.Writer, wit acir.Witness) error { return writeU32(w, uint32(wit)) }
func readWitness(r io.Reader) (acir.Witness, error) {
	v, err := readU32(r)
	return acir.Witness(v), err
}

func writeBytesLP(w io.Writer, b []byte) error {
	if err := writeU32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytesLP(r io.Reader) ([]byte, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func writeString(w io.Writer, s string) error { return writeBytesLP(w, []byte(s)) }
func readString(r io.Reader) (string, error) {
	b, err := readBytesLP(r)
	return string(b), err
}

// ---- header ----

func writeVersion(w io.Writer) error {
	return writeString(w, FormatVersion.String())
}

func readVersion(r io.Reader) (semver.Version, error) {
	s, err := readString(r)
	if err != nil {
		return semver.Version{}, err
	}
	v, err := semver.Parse(s)
	if err != nil {
		return semver.Version{}, circuiterr.NewInvalidData("parse format version", err)
	}
	if v.Major != FormatVersion.Major {
		return semver.Version{}, circuiterr.NewInvalidData(
			"format version", fmt.Errorf("incompatible major version %s (reader supports %d.x.x)", v, FormatVersion.Major))
	}
	return v, nil
}

// EncodeCircuit serializes c, version-stamped.
func EncodeCircuit(w io.Writer, c *acir.Circuit) error {
	bw := bufio.NewWriter(w)
	if err := writeVersion(bw); err != nil {
		return err
	}
	if err := encodeCircuitBody(bw, c); err != nil {
		return err
	}
	return bw.Flush()
}

func encodeCircuitBody(w io.Writer, c *acir.Circuit) error {
	if err := writeU32(w, uint32(c.CurrentWitnessIndex)); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(c.Opcodes))); err != nil {
		return err
	}
	for _, op := range c.Opcodes {
		if err := encodeOpcode(w, op); err != nil {
			return err
		}
	}
	if err := writeWitnessVec(w, c.PublicParameters); err != nil {
		return err
	}
	if err := writeWitnessVec(w, c.ReturnValues); err != nil {
		return err
	}
	if err := writeWitnessVec(w, c.PrivateParameters); err != nil {
		return err
	}
	return nil
}

func writeWitnessVec(w io.Writer, ws []acir.Witness) error {
	if err := writeU32(w, uint32(len(ws))); err != nil {
		return err
	}
	for _, wit := range ws {
		if err := writeWitness(w, wit); err != nil {
			return err
		}
	}
	return nil
}

func readWitnessVec(r io.Reader) ([]acir.Witness, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]acir.Witness, n)
	for i := range out {
		w, err := readWitness(r)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

// DecodeCircuit deserializes a circuit previously written by EncodeCircuit.
// Malformed or truncated input fails with a *circuiterr.IOError rather than
// panicking.
func DecodeCircuit(r io.Reader) (c *acir.Circuit, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			c = nil
			err = circuiterr.NewInvalidData("decode circuit", fmt.Errorf("panic: %v", rec))
		}
	}()

	br := bufio.NewReader(r)
	if _, verr := readVersion(br); verr != nil {
		return nil, wrapReadErr("format version", verr)
	}

	cur, err := readU32(br)
	if err != nil {
		return nil, wrapReadErr("current_witness_index", err)
	}
	nOpcodes, err := readU32(br)
	if err != nil {
		return nil, wrapReadErr("opcode_count", err)
	}
	out := &acir.Circuit{CurrentWitnessIndex: acir.Witness(cur)}
	out.Opcodes = make([]acir.Opcode, nOpcodes)
	for i := range out.Opcodes {
		op, err := decodeOpcode(br)
		if err != nil {
			return nil, wrapReadErr(fmt.Sprintf("opcode[%d]", i), err)
		}
		out.Opcodes[i] = op
	}
	if out.PublicParameters, err = readWitnessVec(br); err != nil {
		return nil, wrapReadErr("public_parameters", err)
	}
	if out.ReturnValues, err = readWitnessVec(br); err != nil {
		return nil, wrapReadErr("return_values", err)
	}
	if out.PrivateParameters, err = readWitnessVec(br); err != nil {
		return nil, wrapReadErr("private_parameters", err)
	}
	return out, nil
}

func wrapReadErr(context string, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return circuiterr.NewUnexpectedEOF(context)
	}
	if ioErr, ok := err.(*circuiterr.IOError); ok {
		return ioErr
	}
	return circuiterr.NewInvalidData(context, err)
}

// ---- expression ----

func encodeExpression(w io.Writer, e *acir.Expression) error {
	if err := writeU32(w, uint32(len(e.MulTerms))); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(e.LinTerms))); err != nil {
		return err
	}
	for _, t := range e.MulTerms {
		if err := writeField(w, t.Coefficient); err != nil {
			return err
		}
		if err := writeWitness(w, t.Left); err != nil {
			return err
		}
		if err := writeWitness(w, t.Right); err != nil {
			return err
		}
	}
	for _, t := range e.LinTerms {
		if err := writeField(w, t.Coefficient); err != nil {
			return err
		}
		if err := writeWitness(w, t.W); err != nil {
			return err
		}
	}
	return writeField(w, e.QConstant)
}

func decodeExpression(r io.Reader) (*acir.Expression, error) {
	nMul, err := readU32(r)
	if err != nil {
		return nil, err
	}
	nLin, err := readU32(r)
	if err != nil {
		return nil, err
	}
	e := &acir.Expression{
		MulTerms: make([]acir.MulTerm, nMul),
		LinTerms: make([]acir.LinearTerm, nLin),
	}
	for i := range e.MulTerms {
		c, err := readField(r)
		if err != nil {
			return nil, err
		}
		l, err := readWitness(r)
		if err != nil {
			return nil, err
		}
		rr, err := readWitness(r)
		if err != nil {
			return nil, err
		}
		e.MulTerms[i] = acir.MulTerm{Coefficient: c, Left: l, Right: rr}
	}
	for i := range e.LinTerms {
		c, err := readField(r)
		if err != nil {
			return nil, err
		}
		wit, err := readWitness(r)
		if err != nil {
			return nil, err
		}
		e.LinTerms[i] = acir.LinearTerm{Coefficient: c, W: wit}
	}
	e.QConstant, err = readField(r)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ---- witness map ----

// EncodeWitnessMap serializes m as length-prefixed (witness, field) pairs
// sorted by witness.
func EncodeWitnessMap(w io.Writer, m *acir.WitnessMap) error {
	bw := bufio.NewWriter(w)
	if err := writeVersion(bw); err != nil {
		return err
	}
	keys := m.Keys()
	if err := writeU32(bw, uint32(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		v, _ := m.Get(k)
		if err := writeWitness(bw, k); err != nil {
			return err
		}
		if err := writeField(bw, v); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodeWitnessMap deserializes a witness map previously written by
// EncodeWitnessMap.
func DecodeWitnessMap(r io.Reader) (m *acir.WitnessMap, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			m = nil
			err = circuiterr.NewInvalidData("decode witness map", fmt.Errorf("panic: %v", rec))
		}
	}()

	br := bufio.NewReader(r)
	if _, verr := readVersion(br); verr != nil {
		return nil, verr
	}
	n, err := readU32(br)
	if err != nil {
		return nil, wrapReadErr("pair_count", err)
	}
	out := acir.NewWitnessMap()
	for i := uint32(0); i < n; i++ {
		w, err := readWitness(br)
		if err != nil {
			return nil, wrapReadErr(fmt.Sprintf("pair[%d].witness", i), err)
		}
		v, err := readField(br)
		if err != nil {
			return nil, wrapReadErr(fmt.Sprintf("pair[%d].value", i), err)
		}
		if !out.Insert(w, v) {
			return nil, circuiterr.NewInvalidData("decode witness map", fmt.Errorf("duplicate conflicting witness %d", w))
		}
	}
	return out, nil
}

// brilligOpcodeDiscriminant must stay stable across versions (it is part of
// the wire format embedded inside AuxBytecode opcodes).
var brilligOpcodeDiscriminant = map[brillig.OpcodeKind]uint8{
	brillig.OpBinaryFieldOp: 0,
	brillig.OpBinaryIntOp:   1,
	brillig.OpConst:         2,
	brillig.OpMov:           3,
	brillig.OpLoad:          4,
	brillig.OpStore:         5,
	brillig.OpJump:          6,
	brillig.OpJumpIf:        7,
	brillig.OpJumpIfNot:     8,
	brillig.OpCall:          9,
	brillig.OpReturn:        10,
	brillig.OpForeignCall:   11,
	brillig.OpTrap:          12,
	brillig.OpStop:          13,
}

var brilligOpcodeFromDiscriminant = func() map[uint8]brillig.OpcodeKind {
	out := make(map[uint8]brillig.OpcodeKind, len(brilligOpcodeDiscriminant))
	for k, v := range brilligOpcodeDiscriminant {
		out[v] = k
	}
	return out
}()
