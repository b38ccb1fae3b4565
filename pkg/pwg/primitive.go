// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package pwg

import (
	"math/big"

	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/capability"
	"github.com/logical-mechanism/circuitvm/pkg/circuiterr"
	"github.com/logical-mechanism/circuitvm/pkg/field"
)

// solvePrimitive verifies every input witness is assigned, then either
// handles AND/XOR/range_check as solver-internal built-ins (capability.
// Supports deliberately declines these, see pkg/capability) or delegates to
// the injected Capability.
func (s *Solver) solvePrimitive(idx int, p *acir.PrimitiveCall) Status {
	inputVals := make([][]field.Element, len(p.Inputs))
	for gi, g := range p.Inputs {
		vals := make([]field.Element, len(g.Inputs))
		for ii, in := range g.Inputs {
			v, ok := s.witnesses.Get(in.Witness)
			if !ok {
				return s.failNow(&circuiterr.OpcodeNotSolvableError{
					Location: circuiterr.OpLocation(idx),
					Cause:    &circuiterr.MissingAssignment{Witness: uint32(in.Witness)},
				})
			}
			if !fitsBitWidth(v, in.BitWidth) {
				return s.failNow(&circuiterr.UnsatisfiedConstraintError{
					Location: circuiterr.OpLocation(idx),
					Reason:   "primitive input exceeds its declared bit width",
				})
			}
			vals[ii] = v
		}
		inputVals[gi] = vals
	}

	switch p.Kind {
	case acir.PrimitiveRangeCheck:
		return Status{Kind: StatusInProgress}

	case acir.PrimitiveAnd, acir.PrimitiveXor:
		if len(inputVals) != 2 || len(inputVals[0]) != 1 || len(inputVals[1]) != 1 || len(p.Outputs) != 1 {
			return s.failNow(&circuiterr.UnsatisfiedConstraintError{Location: circuiterr.OpLocation(idx), Reason: "malformed and/xor primitive call"})
		}
		if p.Inputs[0].Inputs[0].BitWidth != p.Inputs[1].Inputs[0].BitWidth {
			return s.failNow(&circuiterr.UnsatisfiedConstraintError{Location: circuiterr.OpLocation(idx), Reason: "malformed and/xor primitive call: operands declare mismatched bit widths"})
		}
		a, b := inputVals[0][0].ToBigInt(), inputVals[1][0].ToBigInt()
		var out *big.Int
		if p.Kind == acir.PrimitiveAnd {
			out = new(big.Int).And(a, b)
		} else {
			out = new(big.Int).Xor(a, b)
		}
		return s.assign(idx, p.Outputs[0], field.FromBigInt(out))

	default:
		if s.capability == nil {
			return s.failNow(&circuiterr.UnsupportedPrimitiveError{Kind: p.Kind.String()})
		}
		return s.solveCapabilityPrimitive(idx, p, inputVals)
	}
}

func fitsBitWidth(v field.Element, bits uint32) bool {
	if bits == 0 {
		return v.IsZero()
	}
	bound := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	return v.ToBigInt().Cmp(bound) < 0
}

func boolWitness(b bool) field.Element {
	if b {
		return field.One()
	}
	return field.Zero()
}

// solveCapabilityPrimitive delegates to s.capability for every primitive
// outside the solver-internal AND/XOR/range_check set.
func (s *Solver) solveCapabilityPrimitive(idx int, p *acir.PrimitiveCall, in [][]field.Element) Status {
	switch p.Kind {
	case acir.PrimitiveSha256, acir.PrimitiveBlake2s, acir.PrimitiveBlake2b, acir.PrimitiveKeccak256, acir.PrimitiveAES128:
		var input []byte
		for _, b := range flatten(in) {
			bb := b.BytesBE()
			input = append(input, bb[len(bb)-1])
		}
		digest, err := s.capability.Hash(p.Kind, input)
		if err != nil {
			return s.failPrimitive(idx, p.Kind, err)
		}
		if len(digest) != len(p.Outputs) {
			return s.failNow(&circuiterr.PrimitiveFailedError{Kind: p.Kind.String(), Reason: "capability returned a digest of unexpected length"})
		}
		for i, w := range p.Outputs {
			if st := s.assign(idx, w, field.FromUint64(uint64(digest[i]))); st.Kind != StatusInProgress {
				return st
			}
		}
		return Status{Kind: StatusInProgress}

	case acir.PrimitiveEcdsaSecp256k1:
		// Groups: pubX, pubY, hash, sigR, sigS; 32 witnesses each, one
		// byte per witness, big-endian.
		if len(in) != 5 || len(p.Outputs) != 1 {
			return s.failNow(&circuiterr.UnsatisfiedConstraintError{Location: circuiterr.OpLocation(idx), Reason: "malformed ecdsa_secp256k1 primitive call"})
		}
		var groups [5][32]byte
		for gi := range groups {
			if len(in[gi]) != 32 {
				return s.failNow(&circuiterr.UnsatisfiedConstraintError{Location: circuiterr.OpLocation(idx), Reason: "malformed ecdsa_secp256k1 primitive call"})
			}
			for i, b := range in[gi] {
				bb := b.BytesBE()
				groups[gi][i] = bb[len(bb)-1]
			}
		}
		ok, err := s.capability.EcdsaSecp256k1Verify(groups[0], groups[1], groups[2], groups[3], groups[4])
		if err != nil {
			return s.failPrimitive(idx, p.Kind, err)
		}
		return s.assign(idx, p.Outputs[0], boolWitness(ok))

	case acir.PrimitiveSchnorrVerify:
		if len(in) != 3 || len(in[0]) != 2 || len(in[1]) != 2 || len(in[2]) != 2 || len(p.Outputs) != 1 {
			return s.failNow(&circuiterr.UnsatisfiedConstraintError{Location: circuiterr.OpLocation(idx), Reason: "malformed schnorr_verify primitive call"})
		}
		pub := capability.Point{X: in[0][0], Y: in[0][1]}
		sigR := capability.Point{X: in[1][0], Y: in[1][1]}
		ok, err := s.capability.SchnorrVerify(pub, in[2][0], sigR, in[2][1])
		if err != nil {
			return s.failPrimitive(idx, p.Kind, err)
		}
		return s.assign(idx, p.Outputs[0], boolWitness(ok))

	case acir.PrimitiveFixedBaseScalarMul:
		if len(in) != 1 || len(in[0]) != 1 || len(p.Outputs) != 2 {
			return s.failNow(&circuiterr.UnsatisfiedConstraintError{Location: circuiterr.OpLocation(idx), Reason: "malformed fixed_base_scalar_mul primitive call"})
		}
		pt, err := s.capability.FixedBaseScalarMul(in[0][0])
		if err != nil {
			return s.failPrimitive(idx, p.Kind, err)
		}
		if st := s.assign(idx, p.Outputs[0], pt.X); st.Kind != StatusInProgress {
			return st
		}
		return s.assign(idx, p.Outputs[1], pt.Y)

	case acir.PrimitiveHashToField:
		if len(p.Outputs) != 1 {
			return s.failNow(&circuiterr.UnsatisfiedConstraintError{Location: circuiterr.OpLocation(idx), Reason: "malformed hash_to_field primitive call"})
		}
		out, err := s.capability.HashToField(flatten(in))
		if err != nil {
			return s.failPrimitive(idx, p.Kind, err)
		}
		return s.assign(idx, p.Outputs[0], out)

	case acir.PrimitiveComputeMerkleRoot:
		// Groups: leaf, index, hash path.
		if len(in) != 3 || len(in[0]) != 1 || len(in[1]) != 1 || len(p.Outputs) != 1 {
			return s.failNow(&circuiterr.UnsatisfiedConstraintError{Location: circuiterr.OpLocation(idx), Reason: "malformed compute_merkle_root primitive call"})
		}
		root, err := s.capability.ComputeMerkleRoot(in[0][0], in[1][0], in[2])
		if err != nil {
			return s.failPrimitive(idx, p.Kind, err)
		}
		return s.assign(idx, p.Outputs[0], root)

	case acir.PrimitivePedersenCommit:
		if len(p.Outputs) != 2 {
			return s.failNow(&circuiterr.UnsatisfiedConstraintError{Location: circuiterr.OpLocation(idx), Reason: "malformed pedersen_commit primitive call"})
		}
		pt, err := s.capability.PedersenCommit(p.DomainSeparator, flatten(in))
		if err != nil {
			return s.failPrimitive(idx, p.Kind, err)
		}
		if st := s.assign(idx, p.Outputs[0], pt.X); st.Kind != StatusInProgress {
			return st
		}
		return s.assign(idx, p.Outputs[1], pt.Y)

	default:
		return s.failNow(&circuiterr.UnsupportedPrimitiveError{Kind: p.Kind.String()})
	}
}

// failPrimitive surfaces a capability failure as PrimitiveFailedError,
// distinct from the UnsatisfiedConstraintError family used for malformed
// call shapes and directly-violated constraints.
func (s *Solver) failPrimitive(idx int, kind acir.PrimitiveKind, err error) Status {
	return s.failNow(&circuiterr.PrimitiveFailedError{
		Kind:   kind.String(),
		Reason: err.Error(),
	})
}

func flatten(groups [][]field.Element) []field.Element {
	var out []field.Element
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
