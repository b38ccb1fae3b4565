// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package acir

// DirectiveKind tags a Directive variant. Directives
// produce no constraints; any constraint must be encoded separately by the
// circuit producer.
type DirectiveKind uint16

const (
	DirectiveInvert DirectiveKind = iota
	DirectiveQuotient
	DirectiveTruncate
	DirectiveOddRange
	DirectiveToLERadix
)

func (k DirectiveKind) String() string {
	switch k {
	case DirectiveInvert:
		return "invert"
	case DirectiveQuotient:
		return "quotient"
	case DirectiveTruncate:
		return "truncate"
	case DirectiveOddRange:
		return "odd_range"
	case DirectiveToLERadix:
		return "to_le_radix"
	default:
		return "unknown_directive"
	}
}

// Directive is a hint record the solver may execute to derive witness
// values non-deterministically.
type Directive struct {
	Kind DirectiveKind

	// Invert: x -> result
	InvertX      *Expression
	InvertResult Witness

	// Quotient: (a,b) -> (q,r), guarded by Predicate. When Predicate
	// evaluates to zero, q=r=0 rather than performing the division.
	QuotientA         *Expression
	QuotientB         *Expression
	QuotientQ         Witness
	QuotientR         Witness
	QuotientPredicate *Expression

	// Truncate: truncate A to BitSize bits, writing Result.
	TruncateA       *Expression
	TruncateBitSize uint32
	TruncateResult  Witness

	// OddRange: decompose A (known < 2^BitSize) into (Bits0, Bits1), the
	// noir-style "odd range" hint pair: Bits0 takes the low ceil(BitSize/2)
	// bits and Bits1 the rest.
	OddRangeA       *Expression
	OddRangeBitSize uint32
	OddRangeBits0   Witness
	OddRangeBits1   Witness

	// ToLERadix: write the little-endian base-Radix digits of A into Bits.
	// Radix may be as large as 2^32 (one digit per u32 word), so it does
	// not fit a uint32.
	ToLERadixA     *Expression
	ToLERadixBits  []Witness
	ToLERadixRadix uint64
}
