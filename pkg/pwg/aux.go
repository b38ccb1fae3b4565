// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package pwg

import (
	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/brillig"
	"github.com/logical-mechanism/circuitvm/pkg/circuiterr"
)

// solveAuxBytecode runs p's embedded VM to completion or to its next
// foreign-call pause, extracting output bindings once finished.
func (s *Solver) solveAuxBytecode(idx int, p *acir.AuxBytecodePackage) Status {
	if p.Predicate != nil {
		v, ok := evalExpr(p.Predicate, s.witnesses)
		if !ok {
			return s.notSolvable(idx)
		}
		if v.IsZero() {
			return Status{Kind: StatusInProgress}
		}
	}

	// Array inputs are staged into the VM's memory bump-wise from address
	// 0, in binding order; hint programs address their inputs through the
	// bound pointer registers rather than absolute addresses.
	vm := brillig.NewVM(p.Bytecode)
	addr := brillig.MemoryAddress(0)
	for _, b := range p.Inputs {
		if !b.IsArray {
			v, ok := evalExpr(b.Single, s.witnesses)
			if !ok {
				return s.notSolvable(idx)
			}
			vm.SetRegister(b.Register, brillig.FieldValue(v))
			continue
		}
		vals := make([]brillig.Value, len(b.Array))
		for i, e := range b.Array {
			v, ok := evalExpr(e, s.witnesses)
			if !ok {
				return s.notSolvable(idx)
			}
			vals[i] = brillig.FieldValue(v)
		}
		vm.Memory().StoreRange(addr, vals)
		vm.SetRegister(b.Register, brillig.UintValue(uint64(addr), 64))
		addr += brillig.MemoryAddress(len(vals))
	}

	for _, queued := range p.QueuedResults {
		if st := vm.InjectForeignCallResult(queued.Outputs); st.Kind == brillig.StatusFailure {
			return s.failNow(circuiterr.NewUnsatisfiedFromAuxVM(idx, &circuiterr.AuxVMFailedError{Reason: st.FailureReason, PC: st.FailurePC}))
		}
	}

	vmStatus := vm.ProcessOpcodes()
	return s.continueAux(idx, p, vm, vmStatus)
}

// continueAux interprets vm's status after a fresh run or a resumed
// InjectForeignCallResult call, extracting outputs on Finished, surfacing a
// new pause on ForeignCallWait, or normalizing a VM failure into an
// UnsatisfiedConstraintError.
func (s *Solver) continueAux(idx int, p *acir.AuxBytecodePackage, vm *brillig.VM, vmStatus brillig.Status) Status {
	switch vmStatus.Kind {
	case brillig.StatusFinished:
		s.pendingVM = nil
		s.pendingAux = nil
		return s.extractAuxOutputs(idx, p, vm)

	case brillig.StatusForeignCallWait:
		s.pendingVM = vm
		s.pendingAux = p
		return Status{
			Kind: StatusRequiresForeignCall,
			Aux:  &AuxForeignCallRequest{OpcodeIndex: idx, Info: vmStatus.Pending},
		}

	case brillig.StatusFailure:
		s.pendingVM = nil
		s.pendingAux = nil
		return s.failNow(circuiterr.NewUnsatisfiedFromAuxVM(idx, &circuiterr.AuxVMFailedError{Reason: vmStatus.FailureReason, PC: vmStatus.FailurePC}))

	default:
		return s.failNow(&circuiterr.UnsatisfiedConstraintError{Location: circuiterr.OpLocation(idx), Reason: "auxiliary vm returned an in-progress status"})
	}
}

func (s *Solver) extractAuxOutputs(idx int, p *acir.AuxBytecodePackage, vm *brillig.VM) Status {
	for _, b := range p.Outputs {
		if !b.IsArray {
			v := vm.Register(b.Register)
			if st := s.assign(idx, b.Witness, v.Inner); st.Kind != StatusInProgress {
				return st
			}
			continue
		}
		ptr := vm.Register(b.Register).AsUint64()
		vals := vm.Memory().LoadRange(brillig.MemoryAddress(ptr), uint32(len(b.ArrayWitness)))
		for i, w := range b.ArrayWitness {
			if st := s.assign(idx, w, vals[i].Inner); st.Kind != StatusInProgress {
				return st
			}
		}
	}
	return Status{Kind: StatusInProgress}
}
