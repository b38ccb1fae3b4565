// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package field

import (
	"math/big"
	"testing"
)

func TestArithmetic(t *testing.T) {
	a := FromUint64(5)
	b := FromUint64(3)

	if got := Add(a, b); !Equal(got, FromUint64(8)) {
		t.Fatalf("Add(5,3) = %v, want 8", got)
	}
	if got := Sub(a, b); !Equal(got, FromUint64(2)) {
		t.Fatalf("Sub(5,3) = %v, want 2", got)
	}
	if got := Mul(a, b); !Equal(got, FromUint64(15)) {
		t.Fatalf("Mul(5,3) = %v, want 15", got)
	}
}

func TestInverseZeroMapsToZero(t *testing.T) {
	if got := Inverse(Zero()); !got.IsZero() {
		t.Fatalf("Inverse(0) = %v, want 0", got)
	}
	a := FromUint64(7)
	inv := Inverse(a)
	if got := Mul(a, inv); !Equal(got, One()) {
		t.Fatalf("a * inverse(a) = %v, want 1", got)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	a := FromUint64(424242)
	b := a.BytesBE()
	got, err := FromBytesBE(b[:])
	if err != nil {
		t.Fatalf("FromBytesBE: %v", err)
	}
	if !Equal(a, got) {
		t.Fatalf("round-trip mismatch: %v != %v", a, got)
	}
}

func TestCmpOrdersByCanonicalBytes(t *testing.T) {
	a := FromUint64(1)
	b := FromUint64(2)
	if Cmp(a, b) >= 0 {
		t.Fatalf("Cmp(1,2) = %d, want < 0", Cmp(a, b))
	}
	if Cmp(b, a) <= 0 {
		t.Fatalf("Cmp(2,1) = %d, want > 0", Cmp(b, a))
	}
	if Cmp(a, a) != 0 {
		t.Fatalf("Cmp(1,1) != 0")
	}
}

func TestFromBigIntNegativeReduces(t *testing.T) {
	neg := big.NewInt(-1)
	got := FromBigInt(neg)
	if got.IsZero() {
		t.Fatalf("FromBigInt(-1) reduced to 0")
	}
}
