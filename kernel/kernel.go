// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package kernel implements the closed-form, per-pixel scalar index
// formulas, the Tasseled Cap linear combinations, and continuum removal.
// All three share one driver, Run, which owns the masking, date loop, and
// pixel-parallel scheduling; each kernel only supplies Eval, the
// per-(date,pixel) formula.
package kernel

import (
	"math"

	"github.com/eo-tsa/specidx/ard"
	"github.com/eo-tsa/specidx/internal/workerpool"
)

// Output scale factors. Normalized-difference, resistance, kernelized,
// MSR-like, and SMA outputs scale by ReflectanceScale; ratio-minus-one
// outputs scale by RatioScale.
const (
	ReflectanceScale = 10000
	RatioScale       = 1000
)

// Func is a closed-form per-(date,pixel) formula: given the raw band values
// for that cell, in the order the kernel asked for via its band binding, it
// returns the unclamped, already-scaled result and whether the result is
// domain-valid. Run handles masking, 16-bit clamping, and nodata; Eval only
// ever sees cells whose global and frame masks already passed.
type Func interface {
	// NumInputs is the number of band values Eval expects, and therefore the
	// length of the band-index slice the dispatcher must bind.
	NumInputs() int
	// Eval computes the scaled result for one valid cell. ok is false for a
	// domain-invalid result (division by zero, out-of-domain input, ...);
	// Run then writes nodata regardless of scaled's value.
	Eval(v []int16) (scaled float64, ok bool)
}

// Policy controls how Run turns an out-of-range Eval result into an output
// cell: either by nodata substitution (the default for every index family)
// or by clamping to the signed-16-bit range (continuum removal, whose
// difference has no natural nodata trigger of its own beyond mask
// rejection).
type Policy int

const (
	// PolicyNodata writes the nodata sentinel when the scaled result would
	// not fit in a signed 16-bit value.
	PolicyNodata Policy = iota
	// PolicyClamp saturates the scaled result to [-32768, 32767] instead of
	// treating overflow as domain-invalid.
	PolicyClamp
)

// Run evaluates fn over every (date, pixel) cell of stack, honoring the
// global and per-frame masks, and writes the result into out (shape T x N).
// bandIdx names, in Eval's expected order, which band of each frame to read.
// Pixels are partitioned statically across pool's workers: every scalar,
// Tasseled Cap, and continuum-removal kernel has uniform per-pixel cost, so
// static partitioning carries no load-imbalance penalty and avoids the
// atomic-counter overhead SMA's dynamic partition needs.
func Run(fn Func, bandIdx []int, stack *ard.Stack, globalMask []uint8, out [][]int16, nodata int16, policy Policy, pool *workerpool.Pool) {
	n := stack.N
	t := stack.T()

	pool.ParallelFor(n, func(start, end int) {
		values := make([]int16, fn.NumInputs())
		for p := start; p < end; p++ {
			if globalMask != nil && globalMask[p] == 0 {
				for d := 0; d < t; d++ {
					out[d][p] = nodata
				}
				continue
			}
			for d := 0; d < t; d++ {
				frame := stack.Frames[d]
				if frame.Mask[p] == 0 {
					out[d][p] = nodata
					continue
				}
				for i, b := range bandIdx {
					values[i] = frame.Bands[b][p]
				}
				scaled, ok := fn.Eval(values)
				if !ok {
					out[d][p] = nodata
					continue
				}
				cell, fits := toInt16(scaled)
				if !fits {
					if policy == PolicyClamp {
						out[d][p] = clamp16(scaled)
					} else {
						out[d][p] = nodata
					}
					continue
				}
				out[d][p] = cell
			}
		}
	})
}

// toInt16 truncates toward zero and reports whether the truncated value fits
// in the signed-16-bit range.
func toInt16(v float64) (int16, bool) {
	truncated := math.Trunc(v)
	if truncated < math.MinInt16 || truncated > math.MaxInt16 {
		return 0, false
	}
	return int16(truncated), true
}

// clamp16 saturates v to the signed-16-bit range after truncation toward
// zero.
func clamp16(v float64) int16 {
	truncated := math.Trunc(v)
	switch {
	case truncated < math.MinInt16:
		return math.MinInt16
	case truncated > math.MaxInt16:
		return math.MaxInt16
	default:
		return int16(truncated)
	}
}
