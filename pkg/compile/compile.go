// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package compile wires the individual optimizer and transformer passes
// (pkg/compile/optimizer, pkg/compile/transform) into a single pipeline:
// general optimization, redundant-range elimination, fallback expansion,
// backend-specific transformation, and a final optimization pass over the
// transformed circuit.
package compile

import (
	"github.com/logical-mechanism/circuitvm/internal/diag"
	"github.com/logical-mechanism/circuitvm/internal/obs"
	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/compile/optimizer"
	"github.com/logical-mechanism/circuitvm/pkg/compile/transform"
)

// Backend selects which transformer produces the final circuit shape.
type Backend uint8

const (
	// BackendCSAT width-fits every gate to Options.Width.
	BackendCSAT Backend = iota
	// BackendR1CS passes the circuit through unchanged.
	BackendR1CS
)

// Options configures a Compile call.
type Options struct {
	Backend  Backend
	Width    transform.Width
	Supports transform.SupportsFunc
	// Profile records per-pass timing into a pprof profile retrievable via
	// Result.Profile, when true (internal/diag).
	Profile bool
}

// Result is the outcome of a Compile call.
type Result struct {
	Circuit *acir.Circuit
	Profile *diag.Recorder
}

// Compile runs c through the full pipeline, returning the transformed
// circuit.
func Compile(c *acir.Circuit, opts Options) (Result, error) {
	rec := diag.Start("compile", opts.Profile)

	var cur *acir.Circuit
	rec.Step("general", func() { cur = optimizer.General(c) })
	rec.Step("redundant_range", func() { cur = optimizer.RedundantRange(cur) })

	var err error
	rec.Step("fallback", func() {
		cur, err = transform.Fallback(cur, opts.Supports)
	})
	if err != nil {
		return Result{}, err
	}

	switch opts.Backend {
	case BackendCSAT:
		rec.Step("csat", func() {
			cur, err = transform.CSAT(cur, opts.Width)
		})
	case BackendR1CS:
		rec.Step("r1cs", func() { cur = transform.R1CS(cur) })
	}
	if err != nil {
		return Result{}, err
	}

	rec.Step("general_final", func() { cur = optimizer.General(cur) })

	if err := cur.Validate(); err != nil {
		return Result{}, err
	}

	logger := obs.Logger()
	logger.Debug().
		Int("opcodes_in", len(c.Opcodes)).
		Int("opcodes_out", len(cur.Opcodes)).
		Uint32("witnesses", uint32(cur.CurrentWitnessIndex)).
		Msg("compiled circuit")
	return Result{Circuit: cur, Profile: rec}, nil
}
