// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package capability

import "math/big"

// secp256k1 point arithmetic, hand-rolled over math/big. gnark-crypto only
// ships the curves gnark itself proves over, none of them secp256k1, so
// the ECDSA capability carries its own affine Weierstrass arithmetic.
var (
	secp256k1P  = mustBig("fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f")
	secp256k1N  = mustBig("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	secp256k1Gx = mustBig("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	secp256k1Gy = mustBig("483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8")
)

func mustBig(hex string) *big.Int {
	v, ok := new(big.Int).SetString(hex, 16)
	if !ok {
		panic("capability: invalid secp256k1 constant " + hex)
	}
	return v
}

type secp256k1Point struct {
	X, Y *big.Int
	// Infinity marks the point at infinity, the additive identity.
	Infinity bool
}

func secp256k1Generator() secp256k1Point {
	return secp256k1Point{X: new(big.Int).Set(secp256k1Gx), Y: new(big.Int).Set(secp256k1Gy)}
}

func secp256k1Add(a, b secp256k1Point) secp256k1Point {
	if a.Infinity {
		return b
	}
	if b.Infinity {
		return a
	}
	p := secp256k1P
	if a.X.Cmp(b.X) == 0 {
		if a.Y.Cmp(b.Y) != 0 || a.Y.Sign() == 0 {
			return secp256k1Point{Infinity: true}
		}
		return secp256k1Double(a)
	}

	// lambda = (b.Y - a.Y) / (b.X - a.X) mod p
	num := new(big.Int).Sub(b.Y, a.Y)
	den := new(big.Int).Sub(b.X, a.X)
	lambda := new(big.Int).Mul(num, modInverse(den, p))
	lambda.Mod(lambda, p)

	x := new(big.Int).Mul(lambda, lambda)
	x.Sub(x, a.X)
	x.Sub(x, b.X)
	x.Mod(x, p)

	y := new(big.Int).Sub(a.X, x)
	y.Mul(y, lambda)
	y.Sub(y, a.Y)
	y.Mod(y, p)

	return secp256k1Point{X: modNorm(x, p), Y: modNorm(y, p)}
}

func secp256k1Double(a secp256k1Point) secp256k1Point {
	if a.Infinity || a.Y.Sign() == 0 {
		return secp256k1Point{Infinity: true}
	}
	p := secp256k1P

	// lambda = (3*x^2) / (2*y) mod p  (secp256k1 has a == 0)
	num := new(big.Int).Mul(a.X, a.X)
	num.Mul(num, big.NewInt(3))
	den := new(big.Int).Mul(a.Y, big.NewInt(2))
	lambda := new(big.Int).Mul(num, modInverse(den, p))
	lambda.Mod(lambda, p)

	x := new(big.Int).Mul(lambda, lambda)
	x.Sub(x, new(big.Int).Mul(a.X, big.NewInt(2)))
	x.Mod(x, p)

	y := new(big.Int).Sub(a.X, x)
	y.Mul(y, lambda)
	y.Sub(y, a.Y)
	y.Mod(y, p)

	return secp256k1Point{X: modNorm(x, p), Y: modNorm(y, p)}
}

func secp256k1ScalarMul(p secp256k1Point, scalar *big.Int) secp256k1Point {
	result := secp256k1Point{Infinity: true}
	base := p
	k := new(big.Int).Mod(scalar, secp256k1N)
	for i := 0; i < k.BitLen(); i++ {
		if k.Bit(i) == 1 {
			result = secp256k1Add(result, base)
		}
		base = secp256k1Double(base)
	}
	return result
}

func modInverse(a, m *big.Int) *big.Int {
	return new(big.Int).ModInverse(modNorm(a, m), m)
}

func modNorm(a, m *big.Int) *big.Int {
	out := new(big.Int).Mod(a, m)
	if out.Sign() < 0 {
		out.Add(out, m)
	}
	return out
}

// EcdsaSecp256k1Verify checks an ECDSA signature (sigR, sigS) over
// secp256k1 against public key (pubX, pubY) and a 32-byte message digest,
// the standard verification equation: u1 = hash/s, u2 = r/s,
// R' = u1*G + u2*Pub, valid iff R'.X mod n == r. Coordinates and
// signature halves arrive as big-endian byte arrays since they do not fit
// the circuit field.
func (r *Reference) EcdsaSecp256k1Verify(pubX, pubY [32]byte, hash [32]byte, sigR, sigS [32]byte) (bool, error) {
	n := secp256k1N
	rBig := new(big.Int).SetBytes(sigR[:])
	sBig := new(big.Int).SetBytes(sigS[:])
	if rBig.Cmp(n) >= 0 || sBig.Cmp(n) >= 0 {
		return false, nil
	}
	if rBig.Sign() == 0 || sBig.Sign() == 0 {
		return false, nil
	}

	z := new(big.Int).SetBytes(hash[:])
	sInv := new(big.Int).ModInverse(sBig, n)
	if sInv == nil {
		return false, nil
	}

	u1 := new(big.Int).Mul(z, sInv)
	u1.Mod(u1, n)
	u2 := new(big.Int).Mul(rBig, sInv)
	u2.Mod(u2, n)

	pub := secp256k1Point{X: new(big.Int).SetBytes(pubX[:]), Y: new(big.Int).SetBytes(pubY[:])}
	p1 := secp256k1ScalarMul(secp256k1Generator(), u1)
	p2 := secp256k1ScalarMul(pub, u2)
	sum := secp256k1Add(p1, p2)
	if sum.Infinity {
		return false, nil
	}

	return new(big.Int).Mod(sum.X, n).Cmp(rBig) == 0, nil
}
