// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package pwg

import (
	"github.com/logical-mechanism/circuitvm/internal/diag"
	"github.com/logical-mechanism/circuitvm/internal/obs"
	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/brillig"
	"github.com/logical-mechanism/circuitvm/pkg/capability"
	"github.com/logical-mechanism/circuitvm/pkg/circuiterr"
	"github.com/logical-mechanism/circuitvm/pkg/field"
)

// Options configures a Solver. Capability is nil-able: a circuit with no
// primitive-call opcodes (or whose opcodes were already fully expanded by
// the fallback transformer) never dereferences it.
type Options struct {
	Capability capability.Capability
	// Profile records per-opcode-kind timing into a pprof profile
	// retrievable via Solver.Profile, when true (internal/diag).
	Profile bool
}

// Solver walks circuit's opcode list, completing witnesses in place. It
// owns its circuit and witness map exclusively; nothing else should
// mutate either while a solve is in progress.
type Solver struct {
	circuit    *acir.Circuit
	witnesses  *acir.WitnessMap
	capability capability.Capability
	profile    *diag.Recorder

	pc     int
	status Status

	// pendingOracle/pendingAux record which opcode a RequiresForeignCall
	// pause belongs to, so Solve can re-surface it idempotently and
	// Resolve* can validate the caller is answering the right request.
	pendingOracle *acir.Oracle
	pendingAux    *acir.AuxBytecodePackage
	pendingVM     *brillig.VM
}

// New constructs a solver over circuit, mutating witnesses in place as it
// derives values.
func New(circuit *acir.Circuit, witnesses *acir.WitnessMap, opts Options) *Solver {
	return &Solver{
		circuit:    circuit,
		witnesses:  witnesses,
		capability: opts.Capability,
		profile:    diag.Start("solve", opts.Profile),
		status:     Status{Kind: StatusInProgress},
	}
}

// Profile returns the solve's profiling recorder, nil unless Options.Profile
// was set.
func (s *Solver) Profile() *diag.Recorder { return s.profile }

// Solve advances the instruction pointer opcode by opcode until the list is
// exhausted (StatusSolved), an opcode fails (StatusFailure), or a foreign
// call is required (StatusRequiresForeignCall, pointer unchanged). Calling
// Solve again after a pause without resolving it re-surfaces the same
// pause.
func (s *Solver) Solve() Status {
	if s.status.Kind == StatusRequiresForeignCall || s.status.Kind == StatusFailure || s.status.Kind == StatusSolved {
		return s.status
	}

	for s.pc < len(s.circuit.Opcodes) {
		op := s.circuit.Opcodes[s.pc]
		st := s.step(s.pc, op)
		if st.Kind == StatusRequiresForeignCall {
			evt := obs.Logger().Debug().Int("opcode", s.pc)
			if st.Oracle != nil {
				evt = evt.Str("name", st.Oracle.Name)
			} else if st.Aux != nil {
				evt = evt.Str("name", st.Aux.Info.Name)
			}
			evt.Msg("solve awaiting foreign call")
		}
		if st.Kind == StatusFailure || st.Kind == StatusRequiresForeignCall {
			s.status = st
			return st
		}
		s.pc++
	}
	s.status = Status{Kind: StatusSolved}
	obs.Logger().Debug().
		Int("opcodes", len(s.circuit.Opcodes)).
		Int("witnesses", s.witnesses.Len()).
		Msg("witness map solved")
	return s.status
}

// ResolveOracle supplies outputs for a paused Oracle opcode and resumes
// solving.
func (s *Solver) ResolveOracle(results []field.Element) Status {
	if s.status.Kind != StatusRequiresForeignCall || s.pendingOracle == nil {
		return s.failNow(&circuiterr.UnsatisfiedConstraintError{Reason: "pwg: ResolveOracle called with no pending oracle"})
	}
	o := s.pendingOracle
	if len(results) != len(o.Outputs) {
		return s.failNow(&circuiterr.UnsatisfiedConstraintError{
			Location: circuiterr.OpLocation(s.pc),
			Reason:   "oracle result count mismatch",
		})
	}
	for i, w := range o.Outputs {
		if !s.witnesses.Insert(w, results[i]) {
			return s.failNow(&circuiterr.UnsatisfiedConstraintError{
				Location: circuiterr.OpLocation(s.pc),
				Reason:   "oracle result conflicts with existing witness assignment",
			})
		}
	}
	s.pendingOracle = nil
	s.status = Status{Kind: StatusInProgress}
	s.pc++
	return s.Solve()
}

// ResolveForeignCall supplies outputs for a paused AuxBytecode opcode's
// embedded VM foreign call (one Value vector per declared output), appends
// the result onto the package's queued-results vector so a from-scratch
// re-execution replays it identically, and resumes the VM in place before
// continuing to drive the outer solve loop.
func (s *Solver) ResolveForeignCall(outputs [][]brillig.Value) Status {
	if s.status.Kind != StatusRequiresForeignCall || s.pendingVM == nil {
		return s.failNow(&circuiterr.UnsatisfiedConstraintError{Reason: "pwg: ResolveForeignCall called with no pending aux call"})
	}
	s.pendingAux.QueuedResults = append(s.pendingAux.QueuedResults, acir.AuxForeignCallResult{Outputs: outputs})
	vmStatus := s.pendingVM.InjectForeignCallResult(outputs)
	st := s.continueAux(s.pc, s.pendingAux, s.pendingVM, vmStatus)
	if st.Kind == StatusFailure || st.Kind == StatusRequiresForeignCall {
		s.status = st
		return st
	}
	s.status = Status{Kind: StatusInProgress}
	s.pc++
	return s.Solve()
}

func (s *Solver) failNow(err error) Status {
	s.status = Status{Kind: StatusFailure, Err: err}
	return s.status
}

// step executes opcode idx exactly once (or resumes an in-flight aux VM at
// idx), returning the resulting status. It does not advance s.pc; the
// caller does that on non-pausing, non-failing results.
func (s *Solver) step(idx int, op acir.Opcode) Status {
	var st Status
	s.profile.Step(op.Kind.String(), func() {
		switch op.Kind {
		case acir.OpcodeArithmetic:
			st = s.solveArithmetic(idx, op.Arithmetic)
		case acir.OpcodeDirective:
			st = s.solveDirective(idx, op.Directive)
		case acir.OpcodePrimitive:
			st = s.solvePrimitive(idx, op.Primitive)
		case acir.OpcodeMemoryBlock, acir.OpcodeMemoryROM, acir.OpcodeMemoryRAM:
			st = s.solveMemory(idx, op.Memory)
		case acir.OpcodeOracle:
			st = s.solveOracle(idx, op.Oracle)
		case acir.OpcodeAuxBytecode:
			st = s.solveAuxBytecode(idx, op.AuxBytecode)
		default:
			st = s.failNow(&circuiterr.UnsatisfiedConstraintError{Location: circuiterr.OpLocation(idx), Reason: "unknown opcode kind"})
		}
	})
	return st
}

// evalExpr evaluates e fully against the current witness map, returning
// ok=false if any witness it references is still unassigned.
func evalExpr(e *acir.Expression, wm *acir.WitnessMap) (field.Element, bool) {
	if e == nil {
		return field.Zero(), true
	}
	val := e.QConstant
	for _, t := range e.MulTerms {
		lv, lok := wm.Get(t.Left)
		rv, rok := wm.Get(t.Right)
		if !lok || !rok {
			return field.Element{}, false
		}
		val = field.Add(val, field.Mul(t.Coefficient, field.Mul(lv, rv)))
	}
	for _, t := range e.LinTerms {
		v, ok := wm.Get(t.W)
		if !ok {
			return field.Element{}, false
		}
		val = field.Add(val, field.Mul(t.Coefficient, v))
	}
	return val, true
}
