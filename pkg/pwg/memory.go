// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package pwg

import (
	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/circuiterr"
	"github.com/logical-mechanism/circuitvm/pkg/field"
)

// solveMemory processes one BLOCK/ROM/RAM opcode's trace against a local
// index-to-value map seeded from Init, in order. ROM's structural rule,
// every operation after the mandatory init phase must be a read, is
// enforced here rather than at
// parse time, since it depends on evaluating Operation against witness
// values that may not be known until solve time.
func (s *Solver) solveMemory(idx int, m *acir.MemoryBlockOpcode) Status {
	cells := make(map[uint64]field.Element, len(m.Init))
	for i, e := range m.Init {
		v, ok := evalExpr(e, s.witnesses)
		if !ok {
			return s.notSolvable(idx)
		}
		cells[uint64(i)] = v
	}

	for _, op := range m.Trace {
		opKind, ok := evalExpr(op.Operation, s.witnesses)
		if !ok {
			return s.notSolvable(idx)
		}
		isWrite := !opKind.IsZero()

		if m.Kind == acir.MemoryROM && isWrite {
			return s.failNow(&circuiterr.UnsatisfiedConstraintError{
				Location: circuiterr.OpLocation(idx),
				Reason:   "rom memory trace wrote after its init phase",
			})
		}

		indexVal, ok := evalExpr(op.Index, s.witnesses)
		if !ok {
			return s.notSolvable(idx)
		}
		index := indexVal.ToBigInt().Uint64()
		if index >= uint64(m.Len) {
			return s.failNow(&circuiterr.IndexOutOfBoundsError{Index: index, Size: uint64(m.Len), Location: circuiterr.OpLocation(idx)})
		}

		if isWrite {
			val, ok := evalExpr(op.Value, s.witnesses)
			if !ok {
				return s.notSolvable(idx)
			}
			cells[index] = val
			continue
		}

		cur, present := cells[index]
		if w, isW := op.Value.ToWitness(); isW {
			if _, bound := s.witnesses.Get(w); !bound {
				if !present {
					return s.notSolvable(idx)
				}
				if !s.witnesses.Insert(w, cur) {
					return s.failNow(&circuiterr.UnsatisfiedConstraintError{Location: circuiterr.OpLocation(idx), Reason: "memory read conflicts with existing witness assignment"})
				}
				continue
			}
		}
		readVal, ok := evalExpr(op.Value, s.witnesses)
		if !ok {
			return s.notSolvable(idx)
		}
		if !present {
			return s.notSolvable(idx)
		}
		if !field.Equal(readVal, cur) {
			return s.failNow(&circuiterr.UnsatisfiedConstraintError{Location: circuiterr.OpLocation(idx), Reason: "memory read does not match stored value"})
		}
	}

	return Status{Kind: StatusInProgress}
}
