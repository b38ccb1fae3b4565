// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package diag provides opt-in profiling of compile passes and solve
// opcodes. It records a custom pprof profile (one sample per pass/opcode
// kind, weighted by wall time) using runtime/pprof, the same sampling
// primitive gnark's own internal profile package builds on.
package diag

import (
	"fmt"
	"io"
	"runtime/pprof"
	"sync"
	"sync/atomic"
	"time"
)

// Recorder accumulates named timing samples into a custom pprof profile. A
// nil *Recorder is valid and records nothing, so callers can embed
// `*diag.Recorder` in Options structs and leave it nil when profiling is not
// requested.
type Recorder struct {
	mu      sync.Mutex
	prof    *pprof.Profile
	samples int
}

// profileSeq disambiguates profile names across sessions; pprof.NewProfile
// panics on a duplicate name, and custom profiles live for the process
// lifetime once registered.
var profileSeq uint64

// Start begins profiling under name if enabled is true; otherwise it returns
// a nil Recorder (a no-op). Each call creates a fresh, uniquely named custom
// profile so concurrent sessions (pkg/session) don't collide.
func Start(name string, enabled bool) *Recorder {
	if !enabled {
		return nil
	}
	seq := atomic.AddUint64(&profileSeq, 1)
	return &Recorder{prof: pprof.NewProfile(fmt.Sprintf("circuitvm/%s/%d", name, seq))}
}

// Step records a labelled span; callers pass the pass or opcode-kind name.
// Safe to call on a nil Recorder.
func (r *Recorder) Step(name string, fn func()) {
	if r == nil {
		fn()
		return
	}
	start := time.Now()
	fn()
	elapsed := time.Since(start)
	r.mu.Lock()
	defer r.mu.Unlock()
	// A pointer keeps each sample's value unique; Profile.Add panics if
	// the same value is added twice.
	r.prof.Add(&stepKey{name: name, d: elapsed}, 1)
	r.samples++
}

// stepKey is the value passed to pprof.Profile.Add; its only job is to
// appear in a `go tool pprof -list` listing labelled by name.
type stepKey struct {
	name string
	d    time.Duration
}

// WriteTo serializes the recorded profile. Safe to call on a nil Recorder
// (writes nothing, returns nil).
func (r *Recorder) WriteTo(w io.Writer) error {
	if r == nil {
		return nil
	}
	return r.prof.WriteTo(w, 0)
}

// Stop finalizes the recording session. Custom pprof profiles created via
// pprof.NewProfile live for the process lifetime once registered, so there
// is nothing to tear down; Stop exists for symmetry with Start and so a
// caller can defer it without caring whether profiling was enabled. Safe to
// call on a nil Recorder.
func (r *Recorder) Stop() {}

// Samples reports how many Step calls were recorded; used by tests to
// assert a recorder actually saw activity without asserting on wall-clock
// timing. Safe to call on a nil Recorder (returns 0).
func (r *Recorder) Samples() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.samples
}
