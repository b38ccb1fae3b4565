// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package field wraps the BLS12-381 scalar field used throughout circuitvm.
// Every witness value, expression coefficient, and directive intermediate is
// an Element; the package exists so the IR, compiler and solver never handle
// gnark-crypto types directly (pkg/capability imports gnark-crypto for its
// curve and hash operations).
package field

import (
	"bytes"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// NumBytes is the canonical big-endian encoding width of an Element.
const NumBytes = fr.Bytes

// Element is a value in the BLS12-381 scalar field.
type Element struct {
	inner fr.Element
}

// Zero returns the additive identity.
func Zero() Element { return Element{} }

// One returns the multiplicative identity.
func One() Element {
	var e Element
	e.inner.SetOne()
	return e
}

// FromUint64 builds an Element from a small non-negative integer.
func FromUint64(v uint64) Element {
	var e Element
	e.inner.SetUint64(v)
	return e
}

// FromBigInt reduces a big.Int into the field. Negative values are
// interpreted mod the field characteristic.
func FromBigInt(v *big.Int) Element {
	var e Element
	e.inner.SetBigInt(v)
	return e
}

// FromBytesBE decodes a canonical big-endian field element.
func FromBytesBE(b []byte) (Element, error) {
	var e Element
	if err := e.inner.SetBytesCanonical(b); err != nil {
		return Element{}, err
	}
	return e, nil
}

// BytesBE returns the canonical big-endian NumBytes-wide encoding.
func (e Element) BytesBE() [NumBytes]byte {
	return e.inner.Bytes()
}

// Add returns a+b.
func Add(a, b Element) Element {
	var r Element
	r.inner.Add(&a.inner, &b.inner)
	return r
}

// Sub returns a-b.
func Sub(a, b Element) Element {
	var r Element
	r.inner.Sub(&a.inner, &b.inner)
	return r
}

// Mul returns a*b.
func Mul(a, b Element) Element {
	var r Element
	r.inner.Mul(&a.inner, &b.inner)
	return r
}

// Neg returns -a.
func Neg(a Element) Element {
	var r Element
	r.inner.Neg(&a.inner)
	return r
}

// Inverse returns 1/a, or zero if a is zero rather than panicking;
// directives like `invert` rely on this.
func Inverse(a Element) Element {
	if a.IsZero() {
		return Element{}
	}
	var r Element
	r.inner.Inverse(&a.inner)
	return r
}

// IsZero reports whether e is the additive identity.
func (e Element) IsZero() bool { return e.inner.IsZero() }

// Equal reports value equality.
func Equal(a, b Element) bool { return a.inner.Equal(&b.inner) }

// Cmp orders by the canonical big-endian byte image.
func Cmp(a, b Element) int {
	ab := a.inner.Bytes()
	bb := b.inner.Bytes()
	return bytes.Compare(ab[:], bb[:])
}

// ToBigInt returns the canonical non-negative integer representative,
// the interpretation directives like `quotient` and `to_le_radix` rely on.
func (e Element) ToBigInt() *big.Int {
	var bi big.Int
	e.inner.BigInt(&bi)
	return &bi
}

// String renders the decimal representative, chiefly for diagnostics.
func (e Element) String() string {
	return e.inner.String()
}
