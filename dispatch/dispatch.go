// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package dispatch maps an index identifier to a kernel invocation: it
// resolves the sensor map's band roles to band indices, fills in the
// literal preset parameters for the resistance/MSR/Tasseled Cap families,
// emits a citation token, and invokes the bound kernel.
package dispatch

import (
	"context"
	"fmt"

	"github.com/eo-tsa/specidx/ard"
	"github.com/eo-tsa/specidx/internal/workerpool"
	"github.com/eo-tsa/specidx/kernel"
	"github.com/eo-tsa/specidx/sensor"
	"github.com/eo-tsa/specidx/unmix"
)

// IndexID names a selectable spectral index or the unmixing family.
type IndexID string

// Kind names which kernel family an IndexID binds to.
type Kind int

const (
	KindBand Kind = iota
	KindNormDiff
	KindRatioMinusOne
	KindMSR
	KindKernelNDVI
	KindResistance
	KindTasseled
	KindContinuum
	KindSMA
)

// Binding is everything the dispatcher resolved for one IndexID: which
// kernel family to run and the band indices (in the order that family's
// Func expects) it should read.
type Binding struct {
	Kind      Kind
	BandIdx   []int
	Scalar    kernel.Func // set for every kind except KindTasseled and KindSMA
	Tasseled  kernel.Tasseled
	Citation  string
}

// Dispatcher resolves index identifiers against one sensor map and citation
// registry. A fresh Dispatcher costs nothing to construct; it holds no
// mutable state beyond its injected collaborators.
type Dispatcher struct {
	Sensor   sensor.Map
	Registry CitationRegistry
}

// New builds a Dispatcher. A nil registry defaults to NopRegistry.
func New(sensorMap sensor.Map, registry CitationRegistry) Dispatcher {
	if registry == nil {
		registry = NopRegistry{}
	}
	return Dispatcher{Sensor: sensorMap, Registry: registry}
}

// Dispatch resolves id and, if it is known, runs the bound kernel over the
// stack and writes into out. ok reports whether id was recognized; an
// unrecognized id is not an error — out is left untouched and the caller
// still reports overall success.
func (d Dispatcher) Dispatch(ctx context.Context, id IndexID, stack *ard.Stack, globalMask []uint8, out *Output, nodata int16, sma *unmix.Params, endmembers *unmix.Endmembers, pool *workerpool.Pool) (ok bool, err error) {
	binding, ok := d.resolve(id)
	if !ok {
		return false, nil
	}
	d.Registry.Cite(binding.Citation)

	if binding.Kind == KindSMA {
		if endmembers == nil || sma == nil {
			return true, fmt.Errorf("dispatch: SMA requires endmembers and params")
		}
		if endmembers.L != stack.B {
			return true, fmt.Errorf("%w: endmembers L=%d, stack B=%d", ErrShapeMismatch, endmembers.L, stack.B)
		}
		if sma.SelectedEndmember < 1 || sma.SelectedEndmember > endmembers.M {
			return true, fmt.Errorf("dispatch: selected endmember %d outside [1, %d]", sma.SelectedEndmember, endmembers.M)
		}
		var rms [][]int16
		if sma.EmitRMS {
			rms = out.RMS
		}
		if err := unmix.Run(ctx, *endmembers, *sma, stack, globalMask, out.TSS, rms, nodata, pool); err != nil {
			return true, err
		}
		return true, nil
	}

	if binding.Kind == KindTasseled {
		kernel.Run(binding.Tasseled, binding.BandIdx, stack, globalMask, out.TSS, nodata, kernel.PolicyNodata, pool)
		return true, nil
	}

	policy := kernel.PolicyNodata
	if binding.Kind == KindContinuum {
		policy = kernel.PolicyClamp
	}
	kernel.Run(binding.Scalar, binding.BandIdx, stack, globalMask, out.TSS, nodata, policy, pool)
	return true, nil
}

// Output bundles the engine's two output time series. RMS may be nil when
// the caller did not request SMA residuals.
type Output struct {
	TSS [][]int16
	RMS [][]int16
}

// ErrShapeMismatch reports that the endmember band count L does not equal
// the ARD stack's band count B. It is the engine's one structural failure:
// every other per-cell problem is encoded in the output as nodata.
var ErrShapeMismatch = fmt.Errorf("dispatch: endmember band count does not match ARD band count")

func (d Dispatcher) band(r sensor.Role) int {
	idx, ok := d.Sensor.Band(r)
	if !ok {
		panic(fmt.Sprintf("dispatch: sensor map has no band for role %s", r))
	}
	return idx
}

func (d Dispatcher) wavelength(r sensor.Role) float64 {
	w, ok := d.Sensor.Wavelength(r)
	if !ok {
		panic(fmt.Sprintf("dispatch: sensor map has no wavelength for role %s", r))
	}
	return w
}
