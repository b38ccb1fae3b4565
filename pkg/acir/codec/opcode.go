// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package codec

import (
	"fmt"
	"io"

	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/brillig"
)

func encodeOpcode(w io.Writer, op acir.Opcode) error {
	switch op.Kind {
	case acir.OpcodeArithmetic:
		if err := writeU8(w, tagArithmetic); err != nil {
			return err
		}
		return encodeExpression(w, op.Arithmetic)
	case acir.OpcodePrimitive:
		if err := writeU8(w, tagPrimitive); err != nil {
			return err
		}
		return encodePrimitiveCall(w, op.Primitive)
	case acir.OpcodeDirective:
		if err := writeU8(w, tagDirective); err != nil {
			return err
		}
		return encodeDirective(w, op.Directive)
	case acir.OpcodeMemoryBlock:
		if err := writeU8(w, tagBlock); err != nil {
			return err
		}
		return encodeMemory(w, op.Memory)
	case acir.OpcodeMemoryROM:
		if err := writeU8(w, tagROM); err != nil {
			return err
		}
		return encodeMemory(w, op.Memory)
	case acir.OpcodeMemoryRAM:
		if err := writeU8(w, tagRAM); err != nil {
			return err
		}
		return encodeMemory(w, op.Memory)
	case acir.OpcodeOracle:
		if err := writeU8(w, tagOracle); err != nil {
			return err
		}
		return encodeOracle(w, op.Oracle)
	case acir.OpcodeAuxBytecode:
		if err := writeU8(w, tagAuxBytecode); err != nil {
			return err
		}
		return encodeAuxBytecode(w, op.AuxBytecode)
	default:
		return fmt.Errorf("encode: unknown opcode kind %d", op.Kind)
	}
}

func decodeOpcode(r io.Reader) (acir.Opcode, error) {
	tag, err := readU8(r)
	if err != nil {
		return acir.Opcode{}, err
	}
	switch tag {
	case tagArithmetic:
		e, err := decodeExpression(r)
		if err != nil {
			return acir.Opcode{}, err
		}
		return acir.ArithmeticOpcode(e), nil
	case tagPrimitive:
		p, err := decodePrimitiveCall(r)
		if err != nil {
			return acir.Opcode{}, err
		}
		return acir.PrimitiveOpcode(p), nil
	case tagDirective:
		d, err := decodeDirective(r)
		if err != nil {
			return acir.Opcode{}, err
		}
		return acir.DirectiveOpcode(d), nil
	case tagBlock:
		m, err := decodeMemory(r, acir.MemoryBlock)
		if err != nil {
			return acir.Opcode{}, err
		}
		return acir.MemoryOpcode(m), nil
	case tagROM:
		m, err := decodeMemory(r, acir.MemoryROM)
		if err != nil {
			return acir.Opcode{}, err
		}
		return acir.MemoryOpcode(m), nil
	case tagRAM:
		m, err := decodeMemory(r, acir.MemoryRAM)
		if err != nil {
			return acir.Opcode{}, err
		}
		return acir.MemoryOpcode(m), nil
	case tagOracle:
		o, err := decodeOracle(r)
		if err != nil {
			return acir.Opcode{}, err
		}
		return acir.OracleOpcode(o), nil
	case tagAuxBytecode:
		p, err := decodeAuxBytecode(r)
		if err != nil {
			return acir.Opcode{}, err
		}
		return acir.AuxBytecodeOpcode(p), nil
	default:
		return acir.Opcode{}, fmt.Errorf("unknown opcode tag %d", tag)
	}
}

// ---- primitive call ----

func encodePrimitiveCall(w io.Writer, p *acir.PrimitiveCall) error {
	if err := writeU16(w, uint16(p.Kind)); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(p.Inputs))); err != nil {
		return err
	}
	for _, g := range p.Inputs {
		if err := writeU32(w, uint32(len(g.Inputs))); err != nil {
			return err
		}
		for _, in := range g.Inputs {
			if err := writeWitness(w, in.Witness); err != nil {
				return err
			}
			if err := writeU32(w, in.BitWidth); err != nil {
				return err
			}
		}
	}
	if err := writeU32(w, uint32(len(p.Outputs))); err != nil {
		return err
	}
	for _, o := range p.Outputs {
		if err := writeWitness(w, o); err != nil {
			return err
		}
	}
	if err := writeU8(w, uint8(p.OutputShape)); err != nil {
		return err
	}
	return writeBytesLP(w, p.DomainSeparator)
}

func decodePrimitiveCall(r io.Reader) (*acir.PrimitiveCall, error) {
	kind, err := readU16(r)
	if err != nil {
		return nil, err
	}
	nGroups, err := readU32(r)
	if err != nil {
		return nil, err
	}
	p := &acir.PrimitiveCall{Kind: acir.PrimitiveKind(kind), Inputs: make([]acir.InputGroup, nGroups)}
	for i := range p.Inputs {
		nInner, err := readU32(r)
		if err != nil {
			return nil, err
		}
		g := acir.InputGroup{Inputs: make([]acir.FunctionInput, nInner)}
		for j := range g.Inputs {
			wit, err := readWitness(r)
			if err != nil {
				return nil, err
			}
			bw, err := readU32(r)
			if err != nil {
				return nil, err
			}
			g.Inputs[j] = acir.FunctionInput{Witness: wit, BitWidth: bw}
		}
		p.Inputs[i] = g
	}
	nOut, err := readU32(r)
	if err != nil {
		return nil, err
	}
	p.Outputs = make([]acir.Witness, nOut)
	for i := range p.Outputs {
		p.Outputs[i], err = readWitness(r)
		if err != nil {
			return nil, err
		}
	}
	shape, err := readU8(r)
	if err != nil {
		return nil, err
	}
	p.OutputShape = acir.OutputShape(shape)
	p.DomainSeparator, err = readBytesLP(r)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ---- directive ----

func encodeDirective(w io.Writer, d *acir.Directive) error {
	if err := writeU16(w, uint16(d.Kind)); err != nil {
		return err
	}
	switch d.Kind {
	case acir.DirectiveInvert:
		if err := encodeExpression(w, d.InvertX); err != nil {
			return err
		}
		return writeWitness(w, d.InvertResult)
	case acir.DirectiveQuotient:
		for _, e := range []*acir.Expression{d.QuotientA, d.QuotientB, d.QuotientPredicate} {
			if err := encodeExpression(w, e); err != nil {
				return err
			}
		}
		if err := writeWitness(w, d.QuotientQ); err != nil {
			return err
		}
		return writeWitness(w, d.QuotientR)
	case acir.DirectiveTruncate:
		if err := encodeExpression(w, d.TruncateA); err != nil {
			return err
		}
		if err := writeU32(w, d.TruncateBitSize); err != nil {
			return err
		}
		return writeWitness(w, d.TruncateResult)
	case acir.DirectiveOddRange:
		if err := encodeExpression(w, d.OddRangeA); err != nil {
			return err
		}
		if err := writeU32(w, d.OddRangeBitSize); err != nil {
			return err
		}
		if err := writeWitness(w, d.OddRangeBits0); err != nil {
			return err
		}
		return writeWitness(w, d.OddRangeBits1)
	case acir.DirectiveToLERadix:
		if err := encodeExpression(w, d.ToLERadixA); err != nil {
			return err
		}
		if err := writeU32(w, uint32(len(d.ToLERadixBits))); err != nil {
			return err
		}
		for _, b := range d.ToLERadixBits {
			if err := writeWitness(w, b); err != nil {
				return err
			}
		}
		return writeU64(w, d.ToLERadixRadix)
	default:
		return fmt.Errorf("encode: unknown directive kind %d", d.Kind)
	}
}

func decodeDirective(r io.Reader) (*acir.Directive, error) {
	kind, err := readU16(r)
	if err != nil {
		return nil, err
	}
	d := &acir.Directive{Kind: acir.DirectiveKind(kind)}
	switch d.Kind {
	case acir.DirectiveInvert:
		d.InvertX, err = decodeExpression(r)
		if err != nil {
			return nil, err
		}
		d.InvertResult, err = readWitness(r)
	case acir.DirectiveQuotient:
		if d.QuotientA, err = decodeExpression(r); err != nil {
			return nil, err
		}
		if d.QuotientB, err = decodeExpression(r); err != nil {
			return nil, err
		}
		if d.QuotientPredicate, err = decodeExpression(r); err != nil {
			return nil, err
		}
		if d.QuotientQ, err = readWitness(r); err != nil {
			return nil, err
		}
		d.QuotientR, err = readWitness(r)
	case acir.DirectiveTruncate:
		if d.TruncateA, err = decodeExpression(r); err != nil {
			return nil, err
		}
		if d.TruncateBitSize, err = readU32(r); err != nil {
			return nil, err
		}
		d.TruncateResult, err = readWitness(r)
	case acir.DirectiveOddRange:
		if d.OddRangeA, err = decodeExpression(r); err != nil {
			return nil, err
		}
		if d.OddRangeBitSize, err = readU32(r); err != nil {
			return nil, err
		}
		if d.OddRangeBits0, err = readWitness(r); err != nil {
			return nil, err
		}
		d.OddRangeBits1, err = readWitness(r)
	case acir.DirectiveToLERadix:
		if d.ToLERadixA, err = decodeExpression(r); err != nil {
			return nil, err
		}
		n, err2 := readU32(r)
		if err2 != nil {
			return nil, err2
		}
		d.ToLERadixBits = make([]acir.Witness, n)
		for i := range d.ToLERadixBits {
			if d.ToLERadixBits[i], err = readWitness(r); err != nil {
				return nil, err
			}
		}
		d.ToLERadixRadix, err = readU64(r)
	default:
		return nil, fmt.Errorf("unknown directive tag %d", kind)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ---- memory ----

func encodeMemory(w io.Writer, m *acir.MemoryBlockOpcode) error {
	if err := writeU32(w, m.BlockID); err != nil {
		return err
	}
	if err := writeU32(w, m.Len); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(m.Init))); err != nil {
		return err
	}
	for _, e := range m.Init {
		if err := encodeExpression(w, e); err != nil {
			return err
		}
	}
	if err := writeU32(w, uint32(len(m.Trace))); err != nil {
		return err
	}
	for _, op := range m.Trace {
		if err := encodeExpression(w, op.Operation); err != nil {
			return err
		}
		if err := encodeExpression(w, op.Index); err != nil {
			return err
		}
		if err := encodeExpression(w, op.Value); err != nil {
			return err
		}
	}
	return nil
}

func decodeMemory(r io.Reader, kind acir.MemoryKind) (*acir.MemoryBlockOpcode, error) {
	m := &acir.MemoryBlockOpcode{Kind: kind}
	var err error
	if m.BlockID, err = readU32(r); err != nil {
		return nil, err
	}
	if m.Len, err = readU32(r); err != nil {
		return nil, err
	}
	nInit, err := readU32(r)
	if err != nil {
		return nil, err
	}
	m.Init = make([]*acir.Expression, nInit)
	for i := range m.Init {
		if m.Init[i], err = decodeExpression(r); err != nil {
			return nil, err
		}
	}
	nTrace, err := readU32(r)
	if err != nil {
		return nil, err
	}
	m.Trace = make([]acir.MemoryOp, nTrace)
	for i := range m.Trace {
		var op, idx, val *acir.Expression
		if op, err = decodeExpression(r); err != nil {
			return nil, err
		}
		if idx, err = decodeExpression(r); err != nil {
			return nil, err
		}
		if val, err = decodeExpression(r); err != nil {
			return nil, err
		}
		m.Trace[i] = acir.MemoryOp{Operation: op, Index: idx, Value: val}
	}
	return m, nil
}

// ---- oracle ----

func encodeOracle(w io.Writer, o *acir.Oracle) error {
	if err := writeString(w, o.Name); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(o.Inputs))); err != nil {
		return err
	}
	for _, e := range o.Inputs {
		if err := encodeExpression(w, e); err != nil {
			return err
		}
	}
	if err := writeU32(w, uint32(len(o.Outputs))); err != nil {
		return err
	}
	for _, wit := range o.Outputs {
		if err := writeWitness(w, wit); err != nil {
			return err
		}
	}
	return nil
}

func decodeOracle(r io.Reader) (*acir.Oracle, error) {
	o := &acir.Oracle{}
	var err error
	if o.Name, err = readString(r); err != nil {
		return nil, err
	}
	nIn, err := readU32(r)
	if err != nil {
		return nil, err
	}
	o.Inputs = make([]*acir.Expression, nIn)
	for i := range o.Inputs {
		if o.Inputs[i], err = decodeExpression(r); err != nil {
			return nil, err
		}
	}
	nOut, err := readU32(r)
	if err != nil {
		return nil, err
	}
	o.Outputs = make([]acir.Witness, nOut)
	for i := range o.Outputs {
		if o.Outputs[i], err = readWitness(r); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// ---- aux bytecode ----

func encodeAuxBytecode(w io.Writer, p *acir.AuxBytecodePackage) error {
	if err := writeU32(w, uint32(len(p.Inputs))); err != nil {
		return err
	}
	for _, b := range p.Inputs {
		if err := writeU32(w, uint32(b.Register)); err != nil {
			return err
		}
		if err := writeU8(w, boolByte(b.IsArray)); err != nil {
			return err
		}
		if b.IsArray {
			if err := writeU32(w, uint32(len(b.Array))); err != nil {
				return err
			}
			for _, e := range b.Array {
				if err := encodeExpression(w, e); err != nil {
					return err
				}
			}
		} else if err := encodeExpression(w, b.Single); err != nil {
			return err
		}
	}

	if err := writeU32(w, uint32(len(p.Outputs))); err != nil {
		return err
	}
	for _, b := range p.Outputs {
		if err := writeU32(w, uint32(b.Register)); err != nil {
			return err
		}
		if err := writeU8(w, boolByte(b.IsArray)); err != nil {
			return err
		}
		if b.IsArray {
			if err := writeU32(w, uint32(len(b.ArrayWitness))); err != nil {
				return err
			}
			for _, wit := range b.ArrayWitness {
				if err := writeWitness(w, wit); err != nil {
					return err
				}
			}
		} else if err := writeWitness(w, b.Witness); err != nil {
			return err
		}
	}

	if err := writeU32(w, uint32(len(p.Bytecode))); err != nil {
		return err
	}
	for _, op := range p.Bytecode {
		if err := encodeBrilligOpcode(w, op); err != nil {
			return err
		}
	}

	hasPredicate := p.Predicate != nil
	if err := writeU8(w, boolByte(hasPredicate)); err != nil {
		return err
	}
	if hasPredicate {
		if err := encodeExpression(w, p.Predicate); err != nil {
			return err
		}
	}
	return nil
}

func decodeAuxBytecode(r io.Reader) (*acir.AuxBytecodePackage, error) {
	p := &acir.AuxBytecodePackage{}

	nIn, err := readU32(r)
	if err != nil {
		return nil, err
	}
	p.Inputs = make([]acir.AuxInputBinding, nIn)
	for i := range p.Inputs {
		reg, err := readU32(r)
		if err != nil {
			return nil, err
		}
		isArr, err := readU8(r)
		if err != nil {
			return nil, err
		}
		b := acir.AuxInputBinding{Register: brillig.RegisterIndex(reg), IsArray: isArr != 0}
		if b.IsArray {
			n, err := readU32(r)
			if err != nil {
				return nil, err
			}
			b.Array = make([]*acir.Expression, n)
			for j := range b.Array {
				if b.Array[j], err = decodeExpression(r); err != nil {
					return nil, err
				}
			}
		} else {
			if b.Single, err = decodeExpression(r); err != nil {
				return nil, err
			}
		}
		p.Inputs[i] = b
	}

	nOut, err := readU32(r)
	if err != nil {
		return nil, err
	}
	p.Outputs = make([]acir.AuxOutputBinding, nOut)
	for i := range p.Outputs {
		reg, err := readU32(r)
		if err != nil {
			return nil, err
		}
		isArr, err := readU8(r)
		if err != nil {
			return nil, err
		}
		b := acir.AuxOutputBinding{Register: brillig.RegisterIndex(reg), IsArray: isArr != 0}
		if b.IsArray {
			n, err := readU32(r)
			if err != nil {
				return nil, err
			}
			b.ArrayWitness = make([]acir.Witness, n)
			for j := range b.ArrayWitness {
				if b.ArrayWitness[j], err = readWitness(r); err != nil {
					return nil, err
				}
			}
		} else {
			if b.Witness, err = readWitness(r); err != nil {
				return nil, err
			}
		}
		p.Outputs[i] = b
	}

	nBytecode, err := readU32(r)
	if err != nil {
		return nil, err
	}
	p.Bytecode = make([]brillig.Opcode, nBytecode)
	for i := range p.Bytecode {
		if p.Bytecode[i], err = decodeBrilligOpcode(r); err != nil {
			return nil, err
		}
	}

	hasPredicate, err := readU8(r)
	if err != nil {
		return nil, err
	}
	if hasPredicate != 0 {
		if p.Predicate, err = decodeExpression(r); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
