// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package capability

import (
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/field"
)

func TestFixedBaseScalarMulDeterministic(t *testing.T) {
	r := NewReference()
	a, err := r.FixedBaseScalarMul(field.FromUint64(42))
	if err != nil {
		t.Fatalf("FixedBaseScalarMul: %v", err)
	}
	b, err := r.FixedBaseScalarMul(field.FromUint64(42))
	if err != nil {
		t.Fatalf("FixedBaseScalarMul: %v", err)
	}
	if !field.Equal(a.X, b.X) || !field.Equal(a.Y, b.Y) {
		t.Fatalf("FixedBaseScalarMul is not deterministic")
	}
}

func TestPedersenCommitChangesWithInputs(t *testing.T) {
	r := NewReference()
	c1, err := r.PedersenCommit([]byte("ds"), []field.Element{field.FromUint64(1), field.FromUint64(2)})
	if err != nil {
		t.Fatalf("PedersenCommit: %v", err)
	}
	c2, err := r.PedersenCommit([]byte("ds"), []field.Element{field.FromUint64(1), field.FromUint64(3)})
	if err != nil {
		t.Fatalf("PedersenCommit: %v", err)
	}
	if field.Equal(c1.X, c2.X) && field.Equal(c1.Y, c2.Y) {
		t.Fatalf("pedersen commitment did not change with differing inputs")
	}
}

func TestHashSha256KnownVector(t *testing.T) {
	r := NewReference()
	out, err := r.Hash(acir.PrimitiveSha256, []byte(""))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	got := hexEncode(out)
	if got != want {
		t.Fatalf("sha256(\"\") = %s, want %s", got, want)
	}
}

func TestSupportsRangeCheckFallsBackToFallbackLibrary(t *testing.T) {
	if Supports(acir.PrimitiveRangeCheck) {
		t.Fatalf("range_check must be declined so the fallback transformer handles it")
	}
	if !Supports(acir.PrimitiveSha256) {
		t.Fatalf("sha256 should be natively supported")
	}
}

func TestEcdsaSecp256k1VerifyRoundTrip(t *testing.T) {
	r := NewReference()

	// Sign with the textbook equations: key d, nonce k, digest z.
	d := big.NewInt(1234567)
	k := big.NewInt(987654)
	digest := sha256.Sum256([]byte("transfer 100"))
	z := new(big.Int).SetBytes(digest[:])

	pub := secp256k1ScalarMul(secp256k1Generator(), d)
	kG := secp256k1ScalarMul(secp256k1Generator(), k)
	sigR := new(big.Int).Mod(kG.X, secp256k1N)
	kInv := new(big.Int).ModInverse(k, secp256k1N)
	sigS := new(big.Int).Mul(sigR, d)
	sigS.Add(sigS, z)
	sigS.Mul(sigS, kInv)
	sigS.Mod(sigS, secp256k1N)

	be32 := func(v *big.Int) (out [32]byte) {
		v.FillBytes(out[:])
		return out
	}

	ok, err := r.EcdsaSecp256k1Verify(be32(pub.X), be32(pub.Y), digest, be32(sigR), be32(sigS))
	if err != nil {
		t.Fatalf("EcdsaSecp256k1Verify: %v", err)
	}
	if !ok {
		t.Fatalf("well-formed signature did not verify")
	}

	tampered := sha256.Sum256([]byte("transfer 999"))
	ok, err = r.EcdsaSecp256k1Verify(be32(pub.X), be32(pub.Y), tampered, be32(sigR), be32(sigS))
	if err != nil {
		t.Fatalf("EcdsaSecp256k1Verify: %v", err)
	}
	if ok {
		t.Fatalf("signature over a different digest verified")
	}
}

func TestHashToFieldDeterministic(t *testing.T) {
	r := NewReference()
	in := []field.Element{field.FromUint64(1), field.FromUint64(2)}
	a, err := r.HashToField(in)
	if err != nil {
		t.Fatalf("HashToField: %v", err)
	}
	b, err := r.HashToField(in)
	if err != nil {
		t.Fatalf("HashToField: %v", err)
	}
	if !field.Equal(a, b) {
		t.Fatalf("HashToField is not deterministic")
	}
	c, err := r.HashToField([]field.Element{field.FromUint64(1), field.FromUint64(3)})
	if err != nil {
		t.Fatalf("HashToField: %v", err)
	}
	if field.Equal(a, c) {
		t.Fatalf("HashToField collision on differing inputs")
	}
}

func TestComputeMerkleRootMatchesManualFold(t *testing.T) {
	r := NewReference()
	leaf := field.FromUint64(7)
	sibling := field.FromUint64(9)

	// index 0: leaf on the left.
	root, err := r.ComputeMerkleRoot(leaf, field.Zero(), []field.Element{sibling})
	if err != nil {
		t.Fatalf("ComputeMerkleRoot: %v", err)
	}
	want, err := r.HashToField([]field.Element{leaf, sibling})
	if err != nil {
		t.Fatalf("HashToField: %v", err)
	}
	if !field.Equal(root, want) {
		t.Fatalf("root mismatch for index 0")
	}

	// index 1: leaf on the right.
	root, err = r.ComputeMerkleRoot(leaf, field.One(), []field.Element{sibling})
	if err != nil {
		t.Fatalf("ComputeMerkleRoot: %v", err)
	}
	want, err = r.HashToField([]field.Element{sibling, leaf})
	if err != nil {
		t.Fatalf("HashToField: %v", err)
	}
	if !field.Equal(root, want) {
		t.Fatalf("root mismatch for index 1")
	}
}

func hexEncode(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = digits[c>>4]
		out[i*2+1] = digits[c&0xf]
	}
	return string(out)
}
