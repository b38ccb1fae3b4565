// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

//go:build !unix

package codec

import (
	"bytes"
	"fmt"
	"os"

	"github.com/logical-mechanism/circuitvm/pkg/acir"
)

// LoadCircuitMmap falls back to a plain read on platforms without a unix
// mmap syscall; the closer is a no-op.
func LoadCircuitMmap(path string) (c *acir.Circuit, closer func() error, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	c, err = DecodeCircuit(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	return c, func() error { return nil }, nil
}
