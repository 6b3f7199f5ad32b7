// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package engine is the public entry point of the spectral-index evaluation
// engine: it validates the shape contract, opens (or borrows) a worker pool,
// and hands the request to the dispatcher.
package engine

import (
	"context"
	"fmt"
	"runtime"

	"github.com/eo-tsa/specidx/ard"
	"github.com/eo-tsa/specidx/dispatch"
	"github.com/eo-tsa/specidx/internal/workerpool"
	"github.com/eo-tsa/specidx/sensor"
	"github.com/eo-tsa/specidx/unmix"
)

// Request bundles everything one index computation needs.
type Request struct {
	Stack      *ard.Stack
	GlobalMask []uint8
	Out        *dispatch.Output
	Index      dispatch.IndexID
	Nodata     int16
	SMA        *unmix.Params     // required iff Index == dispatch.SMA
	Endmembers *unmix.Endmembers // required iff Index == dispatch.SMA
	Sensor     sensor.Map
	Registry   dispatch.CitationRegistry // nil -> dispatch.NopRegistry{}

	// Pool, if non-nil, is reused across this and other Compute calls
	// instead of opening and closing a private one per call. A long-lived
	// caller iterating over tiles should hold one pool for all of them.
	Pool *workerpool.Pool
}

// Outcome reports whether the requested index was recognized. An unknown
// index is not an error: Compute still returns a nil error,
// Outcome.Dispatched is false, and out is left untouched.
type Outcome struct {
	Dispatched bool
	Diagnostic string
}

// Compute is the engine's public entry point. On success every cell of
// req.Out.TSS (and req.Out.RMS, when SMA residuals were requested) has been
// written.
func Compute(ctx context.Context, req Request) (Outcome, error) {
	validate(req)

	pool := req.Pool
	if pool == nil {
		pool = workerpool.New(runtime.GOMAXPROCS(0))
		defer pool.Close()
	}

	d := dispatch.New(req.Sensor, req.Registry)
	ok, err := d.Dispatch(ctx, req.Index, req.Stack, req.GlobalMask, req.Out, req.Nodata, req.SMA, req.Endmembers, pool)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{Dispatched: false, Diagnostic: fmt.Sprintf("unknown index identifier %q", req.Index)}, nil
	}
	return Outcome{Dispatched: true}, nil
}

// validate checks the caller-owned-buffer shape contract. Violations here
// are programmer errors on the caller's own buffers, not runtime conditions
// the engine recovers from, so they panic.
func validate(req Request) {
	req.Stack.Validate()
	n, t := req.Stack.N, req.Stack.T()

	if req.GlobalMask != nil && len(req.GlobalMask) != n {
		panic(fmt.Sprintf("engine: global mask length %d, want %d", len(req.GlobalMask), n))
	}
	if len(req.Out.TSS) != t {
		panic(fmt.Sprintf("engine: output TSS has %d date rows, want %d", len(req.Out.TSS), t))
	}
	for i, row := range req.Out.TSS {
		if len(row) != n {
			panic(fmt.Sprintf("engine: output TSS row %d has length %d, want %d", i, len(row), n))
		}
	}
	if req.Out.RMS != nil {
		if len(req.Out.RMS) != t {
			panic(fmt.Sprintf("engine: output RMS has %d date rows, want %d", len(req.Out.RMS), t))
		}
		for i, row := range req.Out.RMS {
			if len(row) != n {
				panic(fmt.Sprintf("engine: output RMS row %d has length %d, want %d", i, len(row), n))
			}
		}
	}
}
