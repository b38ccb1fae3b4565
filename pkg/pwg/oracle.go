// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package pwg

import (
	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/circuiterr"
	"github.com/logical-mechanism/circuitvm/pkg/field"
)

// solveOracle pauses with a StatusRequiresForeignCall carrying the oracle's
// evaluated inputs whenever any output witness is still unassigned,
// treating the oracle like a foreign call.
func (s *Solver) solveOracle(idx int, o *acir.Oracle) Status {
	allAssigned := true
	for _, w := range o.Outputs {
		if _, ok := s.witnesses.Get(w); !ok {
			allAssigned = false
			break
		}
	}
	if allAssigned {
		return Status{Kind: StatusInProgress}
	}

	inputs := make([]field.Element, len(o.Inputs))
	for i, e := range o.Inputs {
		v, ok := evalExpr(e, s.witnesses)
		if !ok {
			return s.failNow(&circuiterr.OpcodeNotSolvableError{
				Location: circuiterr.OpLocation(idx),
				Cause:    &circuiterr.MissingAssignment{},
			})
		}
		inputs[i] = v
	}

	s.pendingOracle = o
	return Status{
		Kind:   StatusRequiresForeignCall,
		Oracle: &OracleRequest{OpcodeIndex: idx, Name: o.Name, Inputs: inputs},
	}
}
