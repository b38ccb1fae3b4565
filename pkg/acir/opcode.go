// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package acir

// OpcodeKind tags an Opcode variant. Values are the stable wire tags of
// the binary format.
type OpcodeKind uint8

const (
	OpcodeArithmetic OpcodeKind = iota
	OpcodePrimitive
	OpcodeDirective
	OpcodeMemoryBlock
	OpcodeMemoryROM
	OpcodeMemoryRAM
	OpcodeOracle
	OpcodeAuxBytecode
)

func (k OpcodeKind) String() string {
	switch k {
	case OpcodeArithmetic:
		return "arithmetic"
	case OpcodePrimitive:
		return "primitive"
	case OpcodeDirective:
		return "directive"
	case OpcodeMemoryBlock:
		return "block"
	case OpcodeMemoryROM:
		return "rom"
	case OpcodeMemoryRAM:
		return "ram"
	case OpcodeOracle:
		return "oracle"
	case OpcodeAuxBytecode:
		return "aux_bytecode"
	default:
		return "unknown_opcode"
	}
}

// Oracle is a named external input producer: a request for externally
// supplied witness values, treated like a foreign call by the solver.
type Oracle struct {
	Name    string
	Inputs  []*Expression
	Outputs []Witness
}

// Opcode is one element of the constraint language: every variant's implicit
// contract is that its constraints, together with the current witness map,
// must be satisfiable.
type Opcode struct {
	Kind OpcodeKind

	Arithmetic  *Expression
	Primitive   *PrimitiveCall
	Directive   *Directive
	Memory      *MemoryBlockOpcode
	Oracle      *Oracle
	AuxBytecode *AuxBytecodePackage
}

// ArithmeticOpcode builds an Opcode asserting e = 0.
func ArithmeticOpcode(e *Expression) Opcode {
	return Opcode{Kind: OpcodeArithmetic, Arithmetic: e}
}

// PrimitiveOpcode wraps a primitive call.
func PrimitiveOpcode(p *PrimitiveCall) Opcode {
	return Opcode{Kind: OpcodePrimitive, Primitive: p}
}

// DirectiveOpcode wraps a directive.
func DirectiveOpcode(d *Directive) Opcode {
	return Opcode{Kind: OpcodeDirective, Directive: d}
}

// MemoryOpcode wraps a memory block of the given kind.
func MemoryOpcode(m *MemoryBlockOpcode) Opcode {
	kind := OpcodeMemoryBlock
	switch m.Kind {
	case MemoryROM:
		kind = OpcodeMemoryROM
	case MemoryRAM:
		kind = OpcodeMemoryRAM
	}
	return Opcode{Kind: kind, Memory: m}
}

// OracleOpcode wraps an oracle request.
func OracleOpcode(o *Oracle) Opcode {
	return Opcode{Kind: OpcodeOracle, Oracle: o}
}

// AuxBytecodeOpcode wraps an auxiliary bytecode package.
func AuxBytecodeOpcode(p *AuxBytecodePackage) Opcode {
	return Opcode{Kind: OpcodeAuxBytecode, AuxBytecode: p}
}

// Witnesses returns every witness this opcode reads or writes, used by the
// CSAT transformer's solvability bookkeeping and by general validation.
func (op Opcode) Witnesses() []Witness {
	seen := make(map[Witness]struct{})
	add := func(w Witness) { seen[w] = struct{}{} }
	addExpr := func(e *Expression) {
		if e == nil {
			return
		}
		for _, w := range e.Witnesses() {
			add(w)
		}
	}

	switch op.Kind {
	case OpcodeArithmetic:
		addExpr(op.Arithmetic)
	case OpcodePrimitive:
		for _, g := range op.Primitive.Inputs {
			for _, in := range g.Inputs {
				add(in.Witness)
			}
		}
		for _, w := range op.Primitive.Outputs {
			add(w)
		}
	case OpcodeDirective:
		d := op.Directive
		switch d.Kind {
		case DirectiveInvert:
			addExpr(d.InvertX)
			add(d.InvertResult)
		case DirectiveQuotient:
			addExpr(d.QuotientA)
			addExpr(d.QuotientB)
			addExpr(d.QuotientPredicate)
			add(d.QuotientQ)
			add(d.QuotientR)
		case DirectiveTruncate:
			addExpr(d.TruncateA)
			add(d.TruncateResult)
		case DirectiveOddRange:
			addExpr(d.OddRangeA)
			add(d.OddRangeBits0)
			add(d.OddRangeBits1)
		case DirectiveToLERadix:
			addExpr(d.ToLERadixA)
			for _, w := range d.ToLERadixBits {
				add(w)
			}
		}
	case OpcodeMemoryBlock, OpcodeMemoryROM, OpcodeMemoryRAM:
		for _, e := range op.Memory.Init {
			addExpr(e)
		}
		for _, t := range op.Memory.Trace {
			addExpr(t.Operation)
			addExpr(t.Index)
			addExpr(t.Value)
		}
	case OpcodeOracle:
		for _, e := range op.Oracle.Inputs {
			addExpr(e)
		}
		for _, w := range op.Oracle.Outputs {
			add(w)
		}
	case OpcodeAuxBytecode:
		p := op.AuxBytecode
		for _, b := range p.Inputs {
			if b.IsArray {
				for _, e := range b.Array {
					addExpr(e)
				}
			} else {
				addExpr(b.Single)
			}
		}
		for _, b := range p.Outputs {
			if b.IsArray {
				for _, w := range b.ArrayWitness {
					add(w)
				}
			} else {
				add(b.Witness)
			}
		}
		addExpr(p.Predicate)
	}

	out := make([]Witness, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	return sortWitnesses(out)
}
