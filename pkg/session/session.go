// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package session offers batch helpers over independent compile/solve
// sessions. Each session owns its circuit and witness map outright, so
// concurrency across sessions is embarrassingly parallel at the host
// layer; this package supplies that host-layer surface, built on
// golang.org/x/sync/errgroup the way a batch of independent proving
// sessions would be fanned out.
package session

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/logical-mechanism/circuitvm/pkg/acir"
	"github.com/logical-mechanism/circuitvm/pkg/capability"
	"github.com/logical-mechanism/circuitvm/pkg/compile"
	"github.com/logical-mechanism/circuitvm/pkg/pwg"
)

// CompileJob is one circuit to compile, paired with its own options so a
// batch can mix backends and widths across sessions.
type CompileJob struct {
	Circuit *acir.Circuit
	Options compile.Options
}

// CompileAll runs every job's Compile concurrently, returning results in
// the same order as jobs. The first job to fail cancels ctx for the rest,
// but every goroutine's own work still runs to completion or cancellation;
// CompileAll itself returns that first error.
func CompileAll(ctx context.Context, jobs []CompileJob) ([]compile.Result, error) {
	results := make([]compile.Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := compile.Compile(job.Circuit, job.Options)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SolveJob is one circuit/witness pair to solve, with its own capability
// implementation (sessions may target different backends).
type SolveJob struct {
	Circuit    *acir.Circuit
	Witnesses  *acir.WitnessMap
	Capability capability.Capability
}

// SolveResult is one job's terminal solver status alongside the witness
// map it mutated in place.
type SolveResult struct {
	Witnesses *acir.WitnessMap
	Status    pwg.Status
}

// SolveAll runs every job's solver concurrently to its first pause or
// terminal status. A job that pauses on a foreign call is
// returned with StatusRequiresForeignCall; resuming it is the caller's
// responsibility, same as a single-session solve.
func SolveAll(ctx context.Context, jobs []SolveJob) ([]SolveResult, error) {
	results := make([]SolveResult, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sv := pwg.New(job.Circuit, job.Witnesses, pwg.Options{Capability: job.Capability})
			st := sv.Solve()
			if st.Kind == pwg.StatusFailure {
				return st.Err
			}
			results[i] = SolveResult{Witnesses: job.Witnesses, Status: st}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
