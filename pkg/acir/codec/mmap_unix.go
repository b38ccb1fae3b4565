// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

//go:build unix

package codec

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/logical-mechanism/circuitvm/pkg/acir"
)

// LoadCircuitMmap decodes a circuit artifact from path without a full heap
// copy of the file, using a read-only mmap. The returned closer must be
// called once the circuit is no longer needed; it unmaps the backing
// pages.
func LoadCircuitMmap(path string) (c *acir.Circuit, closer func() error, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return nil, nil, fmt.Errorf("mmap %s: empty file", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	c, derr := DecodeCircuit(bytes.NewReader(data))
	if derr != nil {
		_ = unix.Munmap(data)
		return nil, nil, derr
	}
	return c, func() error { return unix.Munmap(data) }, nil
}
