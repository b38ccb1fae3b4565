// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package capability

import (
	"crypto/aes"
	"crypto/sha256"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/mimc"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"

	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/circuiterr"
	"github.com/logical-mechanism/circuitvm/pkg/field"
)

// Reference is a capability implementation built on gnark-crypto's
// BLS12-381 group arithmetic, plus the stdlib/x-crypto hash packages for
// the primitive hash functions. It is not a production SNARK-friendly
// gadget set; every operation here runs in the clear, outside any circuit,
// modeling the capability boundary the compiler and solver consume.
type Reference struct{}

// NewReference constructs the reference capability.
func NewReference() *Reference { return &Reference{} }

func g1Base(scalar field.Element) bls12381.G1Affine {
	var p bls12381.G1Affine
	p.ScalarMultiplicationBase(scalar.ToBigInt())
	return p
}

func pointFromG1(p bls12381.G1Affine) Point {
	return Point{X: field.FromBigInt(p.X.BigInt(new(big.Int))), Y: field.FromBigInt(p.Y.BigInt(new(big.Int)))}
}

func g1FromPoint(p Point) bls12381.G1Affine {
	var out bls12381.G1Affine
	out.X.SetBigInt(p.X.ToBigInt())
	out.Y.SetBigInt(p.Y.ToBigInt())
	return out
}

// FixedBaseScalarMul multiplies the G1 generator by scalar.
func (r *Reference) FixedBaseScalarMul(scalar field.Element) (Point, error) {
	return pointFromG1(g1Base(scalar)), nil
}

// PedersenCommit derives one generator per input by multiplying the base
// point by a domain-separated, index-salted scalar, then sums
// input_i * generator_i. Salted base-point generators stand in for a
// hash-to-curve derivation here. Each generator's discrete log is public
// (generatorScalar), so the commitment is not binding, and with no blinding
// input it is deterministic and not hiding.
func (r *Reference) PedersenCommit(domainSeparator []byte, inputs []field.Element) (Point, error) {
	var acc bls12381.G1Affine // point at infinity
	for i, in := range inputs {
		gen := g1Base(generatorScalar(domainSeparator, i))
		var term bls12381.G1Affine
		term.ScalarMultiplication(&gen, in.ToBigInt())
		acc.Add(&acc, &term)
	}
	return pointFromG1(acc), nil
}

// generatorScalar derives the i-th Pedersen generator's discrete log
// relative to the base point, from SHA-256(domainSeparator || i).
func generatorScalar(domainSeparator []byte, i int) field.Element {
	h := sha256.New()
	h.Write(domainSeparator)
	h.Write([]byte{byte(i >> 24), byte(i >> 16), byte(i >> 8), byte(i)})
	sum := h.Sum(nil)
	return field.FromBigInt(new(big.Int).SetBytes(sum))
}

// SchnorrVerify checks s*G == R + e*Pub over G1, with e = SHA-256(R.x ||
// Pub.x || msgHash).
func (r *Reference) SchnorrVerify(pub Point, msgHash field.Element, sigR Point, sigS field.Element) (bool, error) {
	h := sha256.New()
	rb := sigR.X.BytesBE()
	pb := pub.X.BytesBE()
	mb := msgHash.BytesBE()
	h.Write(rb[:])
	h.Write(pb[:])
	h.Write(mb[:])
	e := field.FromBigInt(new(big.Int).SetBytes(h.Sum(nil)))

	lhs := g1Base(sigS)

	pubPoint := g1FromPoint(pub)
	var ePub bls12381.G1Affine
	ePub.ScalarMultiplication(&pubPoint, e.ToBigInt())

	rPoint := g1FromPoint(sigR)
	var rhs bls12381.G1Affine
	rhs.Add(&rPoint, &ePub)

	return lhs.Equal(&rhs), nil
}

// HashToField hashes field elements to a single field element with MiMC.
func (r *Reference) HashToField(inputs []field.Element) (field.Element, error) {
	h := mimc.NewMiMC()
	for _, in := range inputs {
		b := in.BytesBE()
		h.Write(b[:])
	}
	var out big.Int
	out.SetBytes(h.Sum(nil))
	return field.FromBigInt(&out), nil
}

// ComputeMerkleRoot folds a leaf up a MiMC Merkle path: bit i of index
// selects whether the leaf's ancestor sits left or right of its sibling at
// depth i.
func (r *Reference) ComputeMerkleRoot(leaf, index field.Element, hashPath []field.Element) (field.Element, error) {
	idx := index.ToBigInt()
	current := leaf
	for i, sibling := range hashPath {
		var pair []field.Element
		if idx.Bit(i) == 1 {
			pair = []field.Element{sibling, current}
		} else {
			pair = []field.Element{current, sibling}
		}
		next, err := r.HashToField(pair)
		if err != nil {
			return field.Element{}, err
		}
		current = next
	}
	return current, nil
}

// Hash dispatches to the stdlib/x-crypto implementation of the requested
// hash primitive.
func (r *Reference) Hash(kind acir.PrimitiveKind, input []byte) ([]byte, error) {
	switch kind {
	case acir.PrimitiveSha256:
		sum := sha256.Sum256(input)
		return sum[:], nil
	case acir.PrimitiveBlake2s:
		sum := blake2s.Sum256(input)
		return sum[:], nil
	case acir.PrimitiveBlake2b:
		sum := blake2b.Sum512(input)
		return sum[:], nil
	case acir.PrimitiveKeccak256:
		h := sha3.NewLegacyKeccak256()
		h.Write(input)
		return h.Sum(nil), nil
	case acir.PrimitiveAES128:
		return aes128EncryptBlock(input)
	default:
		return nil, &circuiterr.UnsupportedPrimitiveError{Kind: kind.String()}
	}
}

// aes128EncryptBlock encrypts one block with AES-128, the one block cipher
// in the primitive set: the first 16 bytes of input are the key and bytes
// 16..31 the plaintext block, each zero-padded when input is shorter.
func aes128EncryptBlock(input []byte) ([]byte, error) {
	key := make([]byte, 16)
	copy(key, input)
	block := make([]byte, 16)
	if len(input) > 16 {
		copy(block, input[16:])
	}
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, &circuiterr.PrimitiveFailedError{Kind: "aes128", Reason: err.Error()}
	}
	out := make([]byte, 16)
	c.Encrypt(out, block)
	return out, nil
}
