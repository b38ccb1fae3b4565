// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package codec

import (
	"fmt"
	"io"

	"github.com/logical-mechanism/circuitvm/pkg/brillig"
)

func writeValueOrArray(w io.Writer, voa brillig.ValueOrArray) error {
	if err := writeU8(w, boolByte(voa.IsArray)); err != nil {
		return err
	}
	if voa.IsArray {
		if err := writeU32(w, uint32(voa.Pointer)); err != nil {
			return err
		}
		return writeU32(w, voa.Size)
	}
	return writeU32(w, uint32(voa.Single))
}

func readValueOrArray(r io.Reader) (brillig.ValueOrArray, error) {
	isArr, err := readU8(r)
	if err != nil {
		return brillig.ValueOrArray{}, err
	}
	if isArr != 0 {
		ptr, err := readU32(r)
		if err != nil {
			return brillig.ValueOrArray{}, err
		}
		size, err := readU32(r)
		if err != nil {
			return brillig.ValueOrArray{}, err
		}
		return brillig.Array(brillig.RegisterIndex(ptr), size), nil
	}
	reg, err := readU32(r)
	if err != nil {
		return brillig.ValueOrArray{}, err
	}
	return brillig.Single(brillig.RegisterIndex(reg)), nil
}

func writeValueOrArrayVec(w io.Writer, vs []brillig.ValueOrArray) error {
	if err := writeU32(w, uint32(len(vs))); err != nil {
		return err
	}
	for _, v := range vs {
		if err := writeValueOrArray(w, v); err != nil {
			return err
		}
	}
	return nil
}

func readValueOrArrayVec(r io.Reader) ([]brillig.ValueOrArray, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]brillig.ValueOrArray, n)
	for i := range out {
		if out[i], err = readValueOrArray(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeBrilligValue(w io.Writer, v brillig.Value) error {
	if err := writeU32(w, uint32(v.BitSize)); err != nil {
		return err
	}
	if err := writeU8(w, boolByte(v.Signed)); err != nil {
		return err
	}
	return writeField(w, v.Inner)
}

func readBrilligValue(r io.Reader) (brillig.Value, error) {
	bits, err := readU32(r)
	if err != nil {
		return brillig.Value{}, err
	}
	signed, err := readU8(r)
	if err != nil {
		return brillig.Value{}, err
	}
	inner, err := readField(r)
	if err != nil {
		return brillig.Value{}, err
	}
	return brillig.Value{Inner: inner, BitSize: brillig.BitSize(bits), Signed: signed != 0}, nil
}

func encodeBrilligOpcode(w io.Writer, op brillig.Opcode) error {
	tag, ok := brilligOpcodeDiscriminant[op.Kind]
	if !ok {
		return fmt.Errorf("encode: unknown brillig opcode kind %d", op.Kind)
	}
	if err := writeU8(w, tag); err != nil {
		return err
	}
	switch op.Kind {
	case brillig.OpBinaryFieldOp:
		if err := writeU8(w, uint8(op.FieldOp)); err != nil {
			return err
		}
		if err := writeU32(w, uint32(op.Lhs)); err != nil {
			return err
		}
		if err := writeU32(w, uint32(op.Rhs)); err != nil {
			return err
		}
		return writeU32(w, uint32(op.Dst))
	case brillig.OpBinaryIntOp:
		if err := writeU8(w, uint8(op.IntOp)); err != nil {
			return err
		}
		if err := writeU32(w, uint32(op.BitSize)); err != nil {
			return err
		}
		if err := writeU32(w, uint32(op.Lhs)); err != nil {
			return err
		}
		if err := writeU32(w, uint32(op.Rhs)); err != nil {
			return err
		}
		return writeU32(w, uint32(op.Dst))
	case brillig.OpConst:
		if err := writeU32(w, uint32(op.Dst)); err != nil {
			return err
		}
		return writeBrilligValue(w, op.ConstValue)
	case brillig.OpMov:
		if err := writeU32(w, uint32(op.Dst)); err != nil {
			return err
		}
		return writeU32(w, uint32(op.MovSrc))
	case brillig.OpLoad:
		if err := writeU32(w, uint32(op.Dst)); err != nil {
			return err
		}
		return writeU32(w, uint32(op.Ptr))
	case brillig.OpStore:
		if err := writeU32(w, uint32(op.Ptr)); err != nil {
			return err
		}
		return writeU32(w, uint32(op.Src))
	case brillig.OpJump:
		return writeU64(w, op.Location)
	case brillig.OpJumpIf, brillig.OpJumpIfNot:
		if err := writeU32(w, uint32(op.Cond)); err != nil {
			return err
		}
		return writeU64(w, op.Location)
	case brillig.OpCall:
		return writeU64(w, op.Location)
	case brillig.OpReturn, brillig.OpStop, brillig.OpTrap:
		return nil
	case brillig.OpForeignCall:
		if err := writeString(w, op.ForeignName); err != nil {
			return err
		}
		if err := writeValueOrArrayVec(w, op.ForeignInputs); err != nil {
			return err
		}
		return writeValueOrArrayVec(w, op.ForeignOutputs)
	default:
		return fmt.Errorf("encode: unhandled brillig opcode kind %d", op.Kind)
	}
}

func decodeBrilligOpcode(r io.Reader) (brillig.Opcode, error) {
	tag, err := readU8(r)
	if err != nil {
		return brillig.Opcode{}, err
	}
	kind, ok := brilligOpcodeFromDiscriminant[tag]
	if !ok {
		return brillig.Opcode{}, fmt.Errorf("unknown brillig opcode tag %d", tag)
	}
	op := brillig.Opcode{Kind: kind}
	switch kind {
	case brillig.OpBinaryFieldOp:
		b, err := readU8(r)
		if err != nil {
			return op, err
		}
		op.FieldOp = brillig.BinaryFieldOpKind(b)
		lhs, err := readU32(r)
		if err != nil {
			return op, err
		}
		rhs, err := readU32(r)
		if err != nil {
			return op, err
		}
		dst, err := readU32(r)
		if err != nil {
			return op, err
		}
		op.Lhs, op.Rhs, op.Dst = brillig.RegisterIndex(lhs), brillig.RegisterIndex(rhs), brillig.RegisterIndex(dst)
	case brillig.OpBinaryIntOp:
		b, err := readU8(r)
		if err != nil {
			return op, err
		}
		op.IntOp = brillig.BinaryIntOpKind(b)
		bits, err := readU32(r)
		if err != nil {
			return op, err
		}
		op.BitSize = brillig.BitSize(bits)
		lhs, err := readU32(r)
		if err != nil {
			return op, err
		}
		rhs, err := readU32(r)
		if err != nil {
			return op, err
		}
		dst, err := readU32(r)
		if err != nil {
			return op, err
		}
		op.Lhs, op.Rhs, op.Dst = brillig.RegisterIndex(lhs), brillig.RegisterIndex(rhs), brillig.RegisterIndex(dst)
	case brillig.OpConst:
		dst, err := readU32(r)
		if err != nil {
			return op, err
		}
		val, err := readBrilligValue(r)
		if err != nil {
			return op, err
		}
		op.Dst, op.ConstValue = brillig.RegisterIndex(dst), val
	case brillig.OpMov:
		dst, err := readU32(r)
		if err != nil {
			return op, err
		}
		src, err := readU32(r)
		if err != nil {
			return op, err
		}
		op.Dst, op.MovSrc = brillig.RegisterIndex(dst), brillig.RegisterIndex(src)
	case brillig.OpLoad:
		dst, err := readU32(r)
		if err != nil {
			return op, err
		}
		ptr, err := readU32(r)
		if err != nil {
			return op, err
		}
		op.Dst, op.Ptr = brillig.RegisterIndex(dst), brillig.RegisterIndex(ptr)
	case brillig.OpStore:
		ptr, err := readU32(r)
		if err != nil {
			return op, err
		}
		src, err := readU32(r)
		if err != nil {
			return op, err
		}
		op.Ptr, op.Src = brillig.RegisterIndex(ptr), brillig.RegisterIndex(src)
	case brillig.OpJump:
		loc, err := readU64(r)
		if err != nil {
			return op, err
		}
		op.Location = loc
	case brillig.OpJumpIf, brillig.OpJumpIfNot:
		cond, err := readU32(r)
		if err != nil {
			return op, err
		}
		loc, err := readU64(r)
		if err != nil {
			return op, err
		}
		op.Cond, op.Location = brillig.RegisterIndex(cond), loc
	case brillig.OpCall:
		loc, err := readU64(r)
		if err != nil {
			return op, err
		}
		op.Location = loc
	case brillig.OpReturn, brillig.OpStop, brillig.OpTrap:
		// no body
	case brillig.OpForeignCall:
		name, err := readString(r)
		if err != nil {
			return op, err
		}
		ins, err := readValueOrArrayVec(r)
		if err != nil {
			return op, err
		}
		outs, err := readValueOrArrayVec(r)
		if err != nil {
			return op, err
		}
		op.ForeignName, op.ForeignInputs, op.ForeignOutputs = name, ins, outs
	default:
		return op, fmt.Errorf("unhandled brillig opcode kind %d", kind)
	}
	return op, nil
}
