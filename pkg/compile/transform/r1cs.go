// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package transform

import "github.com/logical-mechanism/circuitvm/pkg/acir"

// R1CS is the trivial pass-through transformer for a rank-1-constraint-system
// target: no re-shaping beyond what the preceding general-optimizer pass
// already did.
func R1CS(c *acir.Circuit) *acir.Circuit {
	return c.Clone()
}
