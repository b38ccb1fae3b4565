// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package acir

// PrimitiveKind names one of the closed set of primitive operations a
// backend may support natively or decline (falling back to the fallback
// library). Where two names for the same primitive have circulated, this
// set commits to one: compute_merkle_root over merkle_membership,
// hash_to_field over hash_to_field_128_security, aes128 over aes.
type PrimitiveKind uint16

const (
	PrimitiveSha256 PrimitiveKind = iota
	PrimitiveBlake2s
	PrimitiveBlake2b
	PrimitiveKeccak256
	PrimitiveAES128
	PrimitiveAnd
	PrimitiveXor
	PrimitiveRangeCheck
	PrimitiveEcdsaSecp256k1
	PrimitiveSchnorrVerify
	PrimitiveFixedBaseScalarMul
	PrimitivePedersenCommit
	PrimitiveHashToField
	PrimitiveComputeMerkleRoot
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveSha256:
		return "sha256"
	case PrimitiveBlake2s:
		return "blake2s"
	case PrimitiveBlake2b:
		return "blake2b"
	case PrimitiveKeccak256:
		return "keccak256"
	case PrimitiveAES128:
		return "aes128"
	case PrimitiveAnd:
		return "and"
	case PrimitiveXor:
		return "xor"
	case PrimitiveRangeCheck:
		return "range_check"
	case PrimitiveEcdsaSecp256k1:
		return "ecdsa_secp256k1"
	case PrimitiveSchnorrVerify:
		return "schnorr_verify"
	case PrimitiveFixedBaseScalarMul:
		return "fixed_base_scalar_mul"
	case PrimitivePedersenCommit:
		return "pedersen_commit"
	case PrimitiveHashToField:
		return "hash_to_field"
	case PrimitiveComputeMerkleRoot:
		return "compute_merkle_root"
	default:
		return "unknown_primitive"
	}
}

// InputGroup is one positional argument slot of a primitive call: a
// variable-length list of (witness, bit-width) pairs, matching the wire
// encoding. Single-input and pair-input primitives simply use
// groups of length 1 and 2 respectively.
type InputGroup struct {
	Inputs []FunctionInput
}

// OutputShape distinguishes the three output shapes a primitive call may
// produce.
type OutputShape uint8

const (
	OutputSingle OutputShape = iota
	OutputArray
	OutputPair
)

// PrimitiveCall is a tagged record naming one primitive operation, its
// input groups, and its output witnesses.
type PrimitiveCall struct {
	Kind    PrimitiveKind
	Inputs  []InputGroup
	Outputs []Witness
	// OutputShape records which of the three output shapes Outputs
	// represents, purely for codec/validation purposes; solver behavior
	// only cares about the Outputs slice itself.
	OutputShape OutputShape
	// DomainSeparator is used only by PrimitivePedersenCommit.
	DomainSeparator []byte
}
