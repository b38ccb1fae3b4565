// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package brillig

// Memory is the VM's flat memory vector. It grows to the maximum address
// touched.
type Memory struct {
	cells []Value
}

func (m *Memory) ensure(addr MemoryAddress) {
	if int(addr) < len(m.cells) {
		return
	}
	grown := make([]Value, addr+1)
	copy(grown, m.cells)
	m.cells = grown
}

// Load reads one cell, zero-valued if never written.
func (m *Memory) Load(addr MemoryAddress) Value {
	if int(addr) >= len(m.cells) {
		return Value{}
	}
	return m.cells[addr]
}

// Store writes one cell, growing the vector if needed.
func (m *Memory) Store(addr MemoryAddress, v Value) {
	m.ensure(addr)
	m.cells[addr] = v
}

// LoadRange reads size consecutive cells starting at addr.
func (m *Memory) LoadRange(addr MemoryAddress, size uint32) []Value {
	out := make([]Value, size)
	for i := uint32(0); i < size; i++ {
		out[i] = m.Load(addr + MemoryAddress(i))
	}
	return out
}

// StoreRange writes vs starting at addr.
func (m *Memory) StoreRange(addr MemoryAddress, vs []Value) {
	for i, v := range vs {
		m.Store(addr+MemoryAddress(i), v)
	}
}
