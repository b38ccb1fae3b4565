// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package brillig

import (
	"math/big"

	"github.com/logical-mechanism/circuitvm/pkg/field"
)

// Value is a field element tagged with a numeric type: the native field, or
// a signed/unsigned integer of a given bit width.
type Value struct {
	Inner   field.Element
	BitSize BitSize
	// Signed marks an integer value as two's-complement-interpreted;
	// meaningless when BitSize == FieldBitSize.
	Signed bool
}

// FieldValue wraps e as an untyped field value.
func FieldValue(e field.Element) Value {
	return Value{Inner: e, BitSize: FieldBitSize}
}

// UintValue wraps v as an unsigned integer of the given bit size, reducing
// v modulo 2^bits first.
func UintValue(v uint64, bits BitSize) Value {
	return Value{Inner: field.FromBigInt(reduceMod2N(new(big.Int).SetUint64(v), bits)), BitSize: bits}
}

func reduceMod2N(v *big.Int, bits BitSize) *big.Int {
	if bits == FieldBitSize {
		return v
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	out := new(big.Int).Mod(v, mod)
	if out.Sign() < 0 {
		out.Add(out, mod)
	}
	return out
}

// AsBigInt returns the canonical non-negative integer representative.
func (v Value) AsBigInt() *big.Int {
	return v.Inner.ToBigInt()
}

// AsUint64 truncates the value's canonical integer representative to 64
// bits, for opcodes (Jump targets, shift counts) that need a host integer.
func (v Value) AsUint64() uint64 {
	return v.AsBigInt().Uint64()
}

// AsSigned reinterprets the value's integer representative as a
// two's-complement integer within BitSize bits.
func (v Value) AsSigned() *big.Int {
	bi := v.AsBigInt()
	if v.BitSize == FieldBitSize {
		return bi
	}
	half := new(big.Int).Lsh(big.NewInt(1), uint(v.BitSize-1))
	if bi.Cmp(half) >= 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(v.BitSize))
		return new(big.Int).Sub(bi, mod)
	}
	return bi
}

// FromSigned builds a Value from a two's-complement integer at the given
// bit size, wrapping it back into the unsigned representative range.
func FromSigned(v *big.Int, bits BitSize) Value {
	return Value{Inner: field.FromBigInt(reduceMod2N(v, bits)), BitSize: bits, Signed: true}
}

// IsTrue reports whether v is the VM's notion of boolean true: non-zero.
func (v Value) IsTrue() bool {
	return !v.Inner.IsZero()
}
