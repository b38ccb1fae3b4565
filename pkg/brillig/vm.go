// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package brillig

import (
	"fmt"
	"math/big"

	"github.com/logical-mechanism/circuitvm/pkg/field"
)

// VM is the register-and-memory hint machine. It is
// single-threaded and cooperative: ProcessOpcodes runs until a
// non-in-progress Status, and the host drives suspension by injecting a
// foreign-call result and calling ProcessOpcodes again.
type VM struct {
	Bytecode []Opcode

	registers map[RegisterIndex]Value
	memory    Memory
	callStack []uint64
	pc        uint64

	// results holds foreign-call results queued by the host, consumed in
	// order on re-execution: one entry per resolved call, itself one Value
	// vector per declared output (length 1 for scalar outputs).
	results      [][][]Value
	resultCursor int

	status Status
}

// NewVM constructs a VM over bytecode with no registers or memory bound.
func NewVM(bytecode []Opcode) *VM {
	return &VM{
		Bytecode:  bytecode,
		registers: make(map[RegisterIndex]Value),
		status:    inProgress(),
	}
}

// SetRegister binds a register before execution begins (used to seed
// AuxBytecode input bindings).
func (vm *VM) SetRegister(r RegisterIndex, v Value) {
	vm.registers[r] = v
}

// Register reads a register, zero-valued if unset.
func (vm *VM) Register(r RegisterIndex) Value {
	return vm.registers[r]
}

// Memory exposes the VM's memory for output extraction after Finished.
func (vm *VM) Memory() *Memory { return &vm.memory }

// Status returns the VM's current status.
func (vm *VM) Status() Status { return vm.status }

// InjectForeignCallResult appends a result for the currently pending
// foreign call and resumes execution. outputs carries one Value vector per
// declared output of the call; scalar outputs use a vector of length 1.
func (vm *VM) InjectForeignCallResult(outputs [][]Value) Status {
	vm.results = append(vm.results, outputs)
	return vm.ProcessOpcodes()
}

// ProcessOpcodes runs from the current pc until a non-in-progress state.
func (vm *VM) ProcessOpcodes() Status {
	if vm.status.Kind != StatusInProgress && vm.status.Kind != StatusForeignCallWait {
		return vm.status
	}
	if len(vm.Bytecode) == 0 {
		vm.status = finished()
		return vm.status
	}
	vm.status = inProgress()
	for {
		if vm.pc >= uint64(len(vm.Bytecode)) {
			vm.status = failure(int(vm.pc), "program counter ran off the end of bytecode")
			return vm.status
		}
		op := vm.Bytecode[vm.pc]
		st, advance := vm.step(op)
		if st.Kind != StatusInProgress {
			vm.status = st
			return vm.status
		}
		if advance {
			vm.pc++
		}
	}
}

func (vm *VM) readValOrArray(voa ValueOrArray) []Value {
	if !voa.IsArray {
		return []Value{vm.Register(voa.Single)}
	}
	return vm.memory.LoadRange(MemoryAddress(vm.Register(voa.Pointer).AsUint64()), voa.Size)
}

func (vm *VM) writeValOrArray(voa ValueOrArray, vs []Value) {
	if !voa.IsArray {
		vm.SetRegister(voa.Single, vs[0])
		return
	}
	vm.memory.StoreRange(MemoryAddress(vm.Register(voa.Pointer).AsUint64()), vs)
}

// step executes one opcode, returning the resulting status (InProgress
// unless control should pause/halt/fail) and whether pc should auto-advance.
func (vm *VM) step(op Opcode) (Status, bool) {
	switch op.Kind {
	case OpBinaryFieldOp:
		lhs, rhs := vm.Register(op.Lhs), vm.Register(op.Rhs)
		out, err := evalBinaryFieldOp(op.FieldOp, lhs.Inner, rhs.Inner)
		if err != nil {
			return failure(int(vm.pc), err.Error()), false
		}
		vm.SetRegister(op.Dst, FieldValue(out))
		return inProgress(), true

	case OpBinaryIntOp:
		lhs, rhs := vm.Register(op.Lhs), vm.Register(op.Rhs)
		out, err := evalBinaryIntOp(op.IntOp, op.BitSize, lhs, rhs)
		if err != nil {
			return failure(int(vm.pc), err.Error()), false
		}
		vm.SetRegister(op.Dst, out)
		return inProgress(), true

	case OpConst:
		vm.SetRegister(op.Dst, op.ConstValue)
		return inProgress(), true

	case OpMov:
		vm.SetRegister(op.Dst, vm.Register(op.MovSrc))
		return inProgress(), true

	case OpLoad:
		addr := MemoryAddress(vm.Register(op.Ptr).AsUint64())
		vm.SetRegister(op.Dst, vm.memory.Load(addr))
		return inProgress(), true

	case OpStore:
		addr := MemoryAddress(vm.Register(op.Ptr).AsUint64())
		vm.memory.Store(addr, vm.Register(op.Src))
		return inProgress(), true

	case OpJump:
		vm.pc = op.Location
		return inProgress(), false

	case OpJumpIf:
		if vm.Register(op.Cond).IsTrue() {
			vm.pc = op.Location
			return inProgress(), false
		}
		return inProgress(), true

	case OpJumpIfNot:
		if !vm.Register(op.Cond).IsTrue() {
			vm.pc = op.Location
			return inProgress(), false
		}
		return inProgress(), true

	case OpCall:
		vm.callStack = append(vm.callStack, vm.pc+1)
		vm.pc = op.Location
		return inProgress(), false

	case OpReturn:
		if len(vm.callStack) == 0 {
			return failure(int(vm.pc), "return from empty call stack"), false
		}
		ret := vm.callStack[len(vm.callStack)-1]
		vm.callStack = vm.callStack[:len(vm.callStack)-1]
		vm.pc = ret
		return inProgress(), false

	case OpForeignCall:
		if vm.resultCursor < len(vm.results) {
			outputs := vm.results[vm.resultCursor]
			vm.resultCursor++
			if len(outputs) != len(op.ForeignOutputs) {
				return failure(int(vm.pc), fmt.Sprintf("foreign call %q returned %d values, expected %d", op.ForeignName, len(outputs), len(op.ForeignOutputs))), false
			}
			for i, voa := range op.ForeignOutputs {
				want := 1
				if voa.IsArray {
					want = int(voa.Size)
				}
				if len(outputs[i]) != want {
					return failure(int(vm.pc), fmt.Sprintf("foreign call %q output %d has %d values, expected %d", op.ForeignName, i, len(outputs[i]), want)), false
				}
				vm.writeValOrArray(voa, outputs[i])
			}
			return inProgress(), true
		}
		inputs := make([][]Value, len(op.ForeignInputs))
		for i, voa := range op.ForeignInputs {
			inputs[i] = vm.readValOrArray(voa)
		}
		return foreignCallWait(ForeignCallInfo{Name: op.ForeignName, Inputs: inputs}), false

	case OpTrap:
		return failure(int(vm.pc), "trap"), false

	case OpStop:
		return finished(), false

	default:
		return failure(int(vm.pc), fmt.Sprintf("unknown opcode kind %d", op.Kind)), false
	}
}

func evalBinaryFieldOp(op BinaryFieldOpKind, lhs, rhs field.Element) (field.Element, error) {
	switch op {
	case FieldAdd:
		return field.Add(lhs, rhs), nil
	case FieldSub:
		return field.Sub(lhs, rhs), nil
	case FieldMul:
		return field.Mul(lhs, rhs), nil
	case FieldDiv:
		if rhs.IsZero() {
			return field.Element{}, fmt.Errorf("division by zero")
		}
		return field.Mul(lhs, field.Inverse(rhs)), nil
	case FieldEquals:
		if field.Equal(lhs, rhs) {
			return field.One(), nil
		}
		return field.Zero(), nil
	default:
		return field.Element{}, fmt.Errorf("unknown binary field op %d", op)
	}
}

func evalBinaryIntOp(op BinaryIntOpKind, bits BitSize, lhs, rhs Value) (Value, error) {
	a, b := lhs.AsBigInt(), rhs.AsBigInt()

	wrap := func(v *big.Int) Value {
		return Value{Inner: field.FromBigInt(reduceMod2N(v, bits)), BitSize: bits}
	}
	boolVal := func(v bool) Value {
		if v {
			return UintValue(1, bits)
		}
		return UintValue(0, bits)
	}

	switch op {
	case IntAdd:
		return wrap(new(big.Int).Add(a, b)), nil
	case IntSub:
		return wrap(new(big.Int).Sub(a, b)), nil
	case IntMul:
		return wrap(new(big.Int).Mul(a, b)), nil
	case IntUnsignedDiv:
		if b.Sign() == 0 {
			return Value{}, fmt.Errorf("unsigned division by zero")
		}
		return wrap(new(big.Int).Div(a, b)), nil
	case IntSignedDiv:
		sa, sb := lhs.AsSigned(), rhs.AsSigned()
		if sb.Sign() == 0 {
			return Value{}, fmt.Errorf("signed division by zero")
		}
		q := new(big.Int).Quo(sa, sb) // truncated division
		return FromSigned(q, bits), nil
	case IntEquals:
		return boolVal(a.Cmp(b) == 0), nil
	case IntLessThan:
		return boolVal(a.Cmp(b) < 0), nil
	case IntLessEqual:
		return boolVal(a.Cmp(b) <= 0), nil
	case IntAnd:
		return wrap(new(big.Int).And(a, b)), nil
	case IntOr:
		return wrap(new(big.Int).Or(a, b)), nil
	case IntXor:
		return wrap(new(big.Int).Xor(a, b)), nil
	case IntShl:
		shift := rhs.AsUint64()
		return wrap(new(big.Int).Lsh(a, uint(shift))), nil
	case IntShr:
		shift := rhs.AsUint64()
		return wrap(new(big.Int).Rsh(a, uint(shift))), nil
	default:
		return Value{}, fmt.Errorf("unknown binary int op %d", op)
	}
}
