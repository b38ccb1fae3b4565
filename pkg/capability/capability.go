// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package capability implements the primitive-call capability interface
// consumed by both the compiler's fallback transformer and the
// partial-witness solver.
package capability

import (
	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/field"
)

// Point is an affine curve point over the capability layer's native curve
// (BLS12-381 G1), used by every elliptic-curve-backed primitive.
type Point struct {
	X, Y field.Element
}

// Capability exposes the closed set of primitive operations a backend may
// support natively: Schnorr verification, Pedersen
// commitment, fixed-base scalar multiplication, and the hash primitives.
// Each method either returns the primitive's field-level result or an
// error: *circuiterr.UnsupportedPrimitiveError (caught by the fallback
// transformer) or *circuiterr.PrimitiveFailedError (propagated to the
// caller).
type Capability interface {
	SchnorrVerify(pub Point, msgHash field.Element, sigR Point, sigS field.Element) (bool, error)
	PedersenCommit(domainSeparator []byte, inputs []field.Element) (Point, error)
	FixedBaseScalarMul(scalar field.Element) (Point, error)
	Hash(kind acir.PrimitiveKind, input []byte) ([]byte, error)
	HashToField(inputs []field.Element) (field.Element, error)
	ComputeMerkleRoot(leaf, index field.Element, hashPath []field.Element) (field.Element, error)
	// EcdsaSecp256k1Verify takes big-endian 32-byte coordinates and
	// signature halves rather than field elements: secp256k1's modulus is
	// wider than the circuit field, so coordinates travel as byte arrays
	// (one witness per byte at the opcode level).
	EcdsaSecp256k1Verify(pubX, pubY [32]byte, hash [32]byte, sigR, sigS [32]byte) (bool, error)
}

// Supports reports whether kind is one this package's Reference
// implementation ever handles natively, for use as a Fallback transformer
// SupportsFunc. AND/XOR/range_check are deliberately absent:
// Reference declines them so the fallback library's bit-decomposition
// expansions (pkg/fallback) always apply to those.
func Supports(kind acir.PrimitiveKind) bool {
	switch kind {
	case acir.PrimitiveSha256, acir.PrimitiveBlake2s, acir.PrimitiveBlake2b,
		acir.PrimitiveKeccak256, acir.PrimitiveAES128,
		acir.PrimitiveEcdsaSecp256k1, acir.PrimitiveSchnorrVerify,
		acir.PrimitiveFixedBaseScalarMul, acir.PrimitivePedersenCommit,
		acir.PrimitiveHashToField, acir.PrimitiveComputeMerkleRoot:
		return true
	default:
		return false
	}
}
